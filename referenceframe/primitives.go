package referenceframe

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// JointLimits holds the optional bounds of a joint, one entry per velocity degree of freedom.
// Each slice is either empty (the bound is unknown) or of length nv.
type JointLimits struct {
	Effort   []float64
	Velocity []float64
	Lower    []float64
	Upper    []float64
}

// NewJointLimits creates the limits of a one degree of freedom joint.
func NewJointLimits(effort, velocity, lower, upper float64) JointLimits {
	return JointLimits{
		Effort:   []float64{effort},
		Velocity: []float64{velocity},
		Lower:    []float64{lower},
		Upper:    []float64{upper},
	}
}

// IsEmpty returns whether no bound is set.
func (l JointLimits) IsEmpty() bool {
	return len(l.Effort) == 0 && len(l.Velocity) == 0 && len(l.Lower) == 0 && len(l.Upper) == 0
}

// Validate checks that every bound is either empty or of length nv.
func (l JointLimits) Validate(nv int) error {
	names := []string{"effort", "velocity", "lower", "upper"}
	for i, v := range [][]float64{l.Effort, l.Velocity, l.Lower, l.Upper} {
		if len(v) != 0 && len(v) != nv {
			return NewPreconditionViolationError("%s limit has %d entries, joint has %d degrees of freedom", names[i], len(v), nv)
		}
	}
	return nil
}

// Contains returns whether the position q lies within the lower and upper bounds. Unset bounds are
// treated as unbounded.
func (l JointLimits) Contains(q []float64) bool {
	for i, v := range q {
		lower, upper := math.Inf(-1), math.Inf(1)
		if i < len(l.Lower) {
			lower = l.Lower[i]
		}
		if i < len(l.Upper) {
			upper = l.Upper[i]
		}
		if v < lower || v > upper {
			return false
		}
	}
	return true
}

// AlmostEqual returns whether both limits have the same shape and agree to within epsilon.
func (l JointLimits) AlmostEqual(o JointLimits, epsilon float64) bool {
	equal := func(a, b []float64) bool {
		return len(a) == len(b) && floats.EqualApprox(a, b, epsilon)
	}
	return equal(l.Effort, o.Effort) && equal(l.Velocity, o.Velocity) && equal(l.Lower, o.Lower) && equal(l.Upper, o.Upper)
}
