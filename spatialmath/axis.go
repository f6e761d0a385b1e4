package spatialmath

import "github.com/golang/geo/r3"

// CartesianAxis classifies a 3D axis as one of the canonical basis vectors or as unaligned.
type CartesianAxis int

// The four possible classifications of an axis.
const (
	AxisX CartesianAxis = iota
	AxisY
	AxisZ
	AxisUnaligned
)

// ExtractCartesianAxis returns AxisX, AxisY or AxisZ only when v is exactly the matching unit basis vector.
// Anything else, including scaled or nearly aligned vectors, is AxisUnaligned.
func ExtractCartesianAxis(v r3.Vector) CartesianAxis {
	switch v {
	case r3.Vector{X: 1}:
		return AxisX
	case r3.Vector{Y: 1}:
		return AxisY
	case r3.Vector{Z: 1}:
		return AxisZ
	default:
		return AxisUnaligned
	}
}

// Vector returns the unit basis vector of an aligned axis, and the zero vector for AxisUnaligned.
func (a CartesianAxis) Vector() r3.Vector {
	switch a {
	case AxisX:
		return r3.Vector{X: 1}
	case AxisY:
		return r3.Vector{Y: 1}
	case AxisZ:
		return r3.Vector{Z: 1}
	case AxisUnaligned:
	}
	return r3.Vector{}
}

func (a CartesianAxis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	case AxisUnaligned:
		return "unaligned"
	}
	return "unknown"
}
