package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// Inertia is the spatial inertia of a rigid body: its mass, the position of its center of mass (the lever) in the
// body frame, and its rotational inertia about the center of mass expressed with the body frame axes.
type Inertia struct {
	mass     float64
	lever    r3.Vector
	rotation Matrix3
}

// NewInertia creates a spatial inertia. rotational is the inertia tensor about the center of mass.
func NewInertia(mass float64, lever r3.Vector, rotational Matrix3) Inertia {
	return Inertia{mass: mass, lever: lever, rotation: rotational}
}

// ZeroInertia returns the inertia of a massless body.
func ZeroInertia() Inertia {
	return Inertia{}
}

// Mass returns the mass of the body.
func (y Inertia) Mass() float64 {
	return y.mass
}

// Lever returns the center of mass of the body.
func (y Inertia) Lever() r3.Vector {
	return y.lever
}

// RotationalInertia returns the inertia tensor about the center of mass.
func (y Inertia) RotationalInertia() Matrix3 {
	return y.rotation
}

// Add returns the inertia of the rigid union of y and o, both expressed in the same frame.
func (y Inertia) Add(o Inertia) Inertia {
	total := y.mass + o.mass
	if total == 0 {
		return Inertia{rotation: y.rotation.Add(o.rotation)}
	}
	lever := y.lever.Mul(y.mass).Add(o.lever.Mul(o.mass)).Mul(1 / total)
	d := Skew(y.lever.Sub(o.lever))
	// parallel axis term for the two centers of mass about their common one
	rotation := y.rotation.Add(o.rotation).Sub(d.Mul(d).Scale(y.mass * o.mass / total))
	return Inertia{mass: total, lever: lever, rotation: rotation}
}

// Matrix returns the 6x6 spatial inertia matrix, ordered linear first to match Motion.
func (y Inertia) Matrix() *mat.Dense {
	out := mat.NewDense(6, 6, nil)
	c := Skew(y.lever).Scale(y.mass)
	angular := y.rotation.Sub(Skew(y.lever).Mul(c))
	for i := 0; i < 3; i++ {
		out.Set(i, i, y.mass)
		for j := 0; j < 3; j++ {
			out.Set(i, 3+j, -c.At(i, j))
			out.Set(3+i, j, c.At(i, j))
			out.Set(3+i, 3+j, angular.At(i, j))
		}
	}
	return out
}

// IsPositiveSemidefinite returns whether the mass is non-negative and the rotational inertia has no eigenvalue
// below -tol.
func (y Inertia) IsPositiveSemidefinite(tol float64) bool {
	if y.mass < 0 {
		return false
	}
	sym := mat.NewSymDense(3, nil)
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			sym.SetSym(i, j, (y.rotation.At(i, j)+y.rotation.At(j, i))/2)
		}
	}
	var eig mat.EigenSym
	if !eig.Factorize(sym, false) {
		return false
	}
	for _, v := range eig.Values(nil) {
		if v < -tol {
			return false
		}
	}
	return true
}

// AlmostEqual returns whether mass, lever and rotational inertia agree to within epsilon.
func (y Inertia) AlmostEqual(o Inertia, epsilon float64) bool {
	return Float64AlmostEqual(y.mass, o.mass, epsilon) &&
		R3VectorAlmostEqual(y.lever, o.lever, epsilon) &&
		y.rotation.AlmostEqual(o.rotation, epsilon)
}

// String prints mass, lever and the six independent inertia elements.
func (y Inertia) String() string {
	return fmt.Sprintf("m=%g c=%v I=(%g, %g, %g, %g, %g, %g)", y.mass, y.lever,
		y.rotation.At(0, 0), y.rotation.At(1, 0), y.rotation.At(1, 1),
		y.rotation.At(2, 0), y.rotation.At(2, 1), y.rotation.At(2, 2))
}
