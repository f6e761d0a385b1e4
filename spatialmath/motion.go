package spatialmath

import (
	"github.com/golang/geo/r3"
)

// Motion is a spatial motion vector (twist): a linear and an angular velocity expressed in some frame.
// When flattened to six components the linear part comes first.
type Motion struct {
	Linear  r3.Vector
	Angular r3.Vector
}

// NewMotionFromSlice reads the six components (linear first) from v.
func NewMotionFromSlice(v []float64) Motion {
	return Motion{
		Linear:  r3.Vector{X: v[0], Y: v[1], Z: v[2]},
		Angular: r3.Vector{X: v[3], Y: v[4], Z: v[5]},
	}
}

// Vector returns the six components of the motion, linear first.
func (m Motion) Vector() []float64 {
	return []float64{m.Linear.X, m.Linear.Y, m.Linear.Z, m.Angular.X, m.Angular.Y, m.Angular.Z}
}

// Add returns m+o.
func (m Motion) Add(o Motion) Motion {
	return Motion{Linear: m.Linear.Add(o.Linear), Angular: m.Angular.Add(o.Angular)}
}

// Sub returns m-o.
func (m Motion) Sub(o Motion) Motion {
	return Motion{Linear: m.Linear.Sub(o.Linear), Angular: m.Angular.Sub(o.Angular)}
}

// Scale returns m multiplied by s.
func (m Motion) Scale(s float64) Motion {
	return Motion{Linear: m.Linear.Mul(s), Angular: m.Angular.Mul(s)}
}

// Cross returns the spatial motion cross product m x o.
func (m Motion) Cross(o Motion) Motion {
	return Motion{
		Linear:  m.Angular.Cross(o.Linear).Add(m.Linear.Cross(o.Angular)),
		Angular: m.Angular.Cross(o.Angular),
	}
}

// AlmostEqual returns whether both parts agree to within epsilon.
func (m Motion) AlmostEqual(o Motion, epsilon float64) bool {
	return R3VectorAlmostEqual(m.Linear, o.Linear, epsilon) && R3VectorAlmostEqual(m.Angular, o.Angular, epsilon)
}
