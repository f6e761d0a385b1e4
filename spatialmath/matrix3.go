package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// Matrix3 is a 3x3 matrix stored in row-major order. It is used both for rotations and for
// rotational inertia tensors.
type Matrix3 [9]float64

// Identity3 returns the 3x3 identity matrix.
func Identity3() Matrix3 {
	return Matrix3{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// Diagonal3 returns a matrix with the given diagonal entries.
func Diagonal3(x, y, z float64) Matrix3 {
	return Matrix3{x, 0, 0, 0, y, 0, 0, 0, z}
}

// Skew returns the cross product matrix of v, i.e. Skew(v).MulVec(w) == v.Cross(w).
func Skew(v r3.Vector) Matrix3 {
	return Matrix3{
		0, -v.Z, v.Y,
		v.Z, 0, -v.X,
		-v.Y, v.X, 0,
	}
}

// At returns the element at the given row and column.
func (m Matrix3) At(row, col int) float64 {
	return m[3*row+col]
}

// Row returns the given row as a vector.
func (m Matrix3) Row(row int) r3.Vector {
	return r3.Vector{X: m[3*row], Y: m[3*row+1], Z: m[3*row+2]}
}

// Mul returns the matrix product m*o.
func (m Matrix3) Mul(o Matrix3) Matrix3 {
	var out Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[3*i+j] = m[3*i]*o[j] + m[3*i+1]*o[3+j] + m[3*i+2]*o[6+j]
		}
	}
	return out
}

// MulVec returns m*v.
func (m Matrix3) MulVec(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		Y: m[3]*v.X + m[4]*v.Y + m[5]*v.Z,
		Z: m[6]*v.X + m[7]*v.Y + m[8]*v.Z,
	}
}

// Transpose returns the transpose of m.
func (m Matrix3) Transpose() Matrix3 {
	return Matrix3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// Add returns the elementwise sum m+o.
func (m Matrix3) Add(o Matrix3) Matrix3 {
	var out Matrix3
	for i := range m {
		out[i] = m[i] + o[i]
	}
	return out
}

// Sub returns the elementwise difference m-o.
func (m Matrix3) Sub(o Matrix3) Matrix3 {
	var out Matrix3
	for i := range m {
		out[i] = m[i] - o[i]
	}
	return out
}

// Scale returns m with every element multiplied by s.
func (m Matrix3) Scale(s float64) Matrix3 {
	var out Matrix3
	for i := range m {
		out[i] = s * m[i]
	}
	return out
}

// Congruence returns r*m*r^T.
func (m Matrix3) Congruence(r Matrix3) Matrix3 {
	return r.Mul(m).Mul(r.Transpose())
}

// Dense returns m as a gonum matrix.
func (m Matrix3) Dense() *mat.Dense {
	data := make([]float64, 9)
	copy(data, m[:])
	return mat.NewDense(3, 3, data)
}

// AlmostEqual returns whether every element of m is within epsilon of the matching element of o.
func (m Matrix3) AlmostEqual(o Matrix3, epsilon float64) bool {
	for i := range m {
		if !Float64AlmostEqual(m[i], o[i], epsilon) {
			return false
		}
	}
	return true
}
