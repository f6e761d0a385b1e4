package referenceframe

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/rigidbody/spatialmath"
)

// JointType enumerates the joint models a Model can hold.
type JointType int

// The supported joint types. Aligned revolute and prismatic joints move along one of the axes of
// their own frame; RevoluteUnaligned carries an arbitrary unit axis.
const (
	FreeFlyer JointType = iota
	RevoluteX
	RevoluteY
	RevoluteZ
	RevoluteUnaligned
	PrismaticX
	PrismaticY
	PrismaticZ
	Fixed
)

func (t JointType) String() string {
	switch t {
	case FreeFlyer:
		return "free-flyer"
	case RevoluteX:
		return "revolute-x"
	case RevoluteY:
		return "revolute-y"
	case RevoluteZ:
		return "revolute-z"
	case RevoluteUnaligned:
		return "revolute-unaligned"
	case PrismaticX:
		return "prismatic-x"
	case PrismaticY:
		return "prismatic-y"
	case PrismaticZ:
		return "prismatic-z"
	case Fixed:
		return "fixed"
	}
	return fmt.Sprintf("JointType(%d)", int(t))
}

// IsRevolute returns whether the type rotates about a single axis.
func (t JointType) IsRevolute() bool {
	return t >= RevoluteX && t <= RevoluteUnaligned
}

// IsPrismatic returns whether the type translates along a single axis.
func (t JointType) IsPrismatic() bool {
	return t >= PrismaticX && t <= PrismaticZ
}

// JointModel describes how a joint moves its child body relative to the joint's own frame.
type JointModel struct {
	jointType JointType
	axis      r3.Vector
}

// NewFreeFlyerJoint returns a six degree of freedom joint. Its configuration is a position followed by a
// unit quaternion in (x, y, z, w) order, and its velocity is a spatial motion expressed in the joint frame.
func NewFreeFlyerJoint() JointModel {
	return JointModel{jointType: FreeFlyer}
}

// NewFixedJoint returns a joint without any degree of freedom. It cannot be added to a Model as a body.
func NewFixedJoint() JointModel {
	return JointModel{jointType: Fixed}
}

// NewRevoluteJoint returns a joint rotating about axis. Axes exactly equal to a basis vector give the
// matching aligned type; any other axis is normalized.
func NewRevoluteJoint(axis r3.Vector) (JointModel, error) {
	switch spatialmath.ExtractCartesianAxis(axis) {
	case spatialmath.AxisX:
		return JointModel{jointType: RevoluteX, axis: axis}, nil
	case spatialmath.AxisY:
		return JointModel{jointType: RevoluteY, axis: axis}, nil
	case spatialmath.AxisZ:
		return JointModel{jointType: RevoluteZ, axis: axis}, nil
	case spatialmath.AxisUnaligned:
	}
	aa := spatialmath.NewR4AAFromAxis(axis, 0)
	if err := aa.Normalize(); err != nil {
		return JointModel{}, errors.Wrap(ErrMalformedInput, "revolute joint axis is zero")
	}
	return JointModel{jointType: RevoluteUnaligned, axis: aa.Axis()}, nil
}

// NewPrismaticJoint returns a joint translating along axis, which must be exactly a basis vector.
func NewPrismaticJoint(axis r3.Vector) (JointModel, error) {
	switch spatialmath.ExtractCartesianAxis(axis) {
	case spatialmath.AxisX:
		return JointModel{jointType: PrismaticX, axis: axis}, nil
	case spatialmath.AxisY:
		return JointModel{jointType: PrismaticY, axis: axis}, nil
	case spatialmath.AxisZ:
		return JointModel{jointType: PrismaticZ, axis: axis}, nil
	case spatialmath.AxisUnaligned:
	}
	return JointModel{}, errors.Wrapf(ErrUnsupportedJointType, "prismatic joint with unaligned axis %v", axis)
}

// Type returns the joint type.
func (j JointModel) Type() JointType {
	return j.jointType
}

// Axis returns the unit axis of a revolute or prismatic joint, and the zero vector otherwise.
func (j JointModel) Axis() r3.Vector {
	return j.axis
}

// NQ returns the dimension of the joint's configuration.
func (j JointModel) NQ() int {
	switch j.jointType {
	case FreeFlyer:
		return 7
	case Fixed:
		return 0
	case RevoluteX, RevoluteY, RevoluteZ, RevoluteUnaligned, PrismaticX, PrismaticY, PrismaticZ:
	}
	return 1
}

// NV returns the dimension of the joint's velocity.
func (j JointModel) NV() int {
	switch j.jointType {
	case FreeFlyer:
		return 6
	case Fixed:
		return 0
	case RevoluteX, RevoluteY, RevoluteZ, RevoluteUnaligned, PrismaticX, PrismaticY, PrismaticZ:
	}
	return 1
}

// NeutralConfiguration returns the configuration at which the joint transform is the identity.
func (j JointModel) NeutralConfiguration() []float64 {
	if j.jointType == FreeFlyer {
		return []float64{0, 0, 0, 0, 0, 0, 1}
	}
	return make([]float64, j.NQ())
}

// Transform returns the motion of the joint at configuration q, from the child body frame to the joint frame.
func (j JointModel) Transform(q []float64) (spatialmath.Transform, error) {
	if len(q) != j.NQ() {
		return spatialmath.Transform{}, NewPreconditionViolationError(
			"given configuration length %d does not match %s joint nq %d", len(q), j.jointType, j.NQ())
	}
	switch {
	case j.jointType == FreeFlyer:
		rot := quat.Number{Real: q[6], Imag: q[3], Jmag: q[4], Kmag: q[5]}
		norm := quat.Abs(rot)
		if norm == 0 {
			return spatialmath.Transform{}, NewPreconditionViolationError("free-flyer quaternion is zero")
		}
		return spatialmath.NewTransformFromQuat(quat.Scale(1/norm, rot), r3.Vector{X: q[0], Y: q[1], Z: q[2]}), nil
	case j.jointType.IsRevolute():
		return spatialmath.NewTransform(spatialmath.NewR4AAFromAxis(j.axis, q[0]).RotationMatrix(), r3.Vector{}), nil
	case j.jointType.IsPrismatic():
		return spatialmath.NewTransformFromPoint(j.axis.Mul(q[0])), nil
	}
	return spatialmath.IdentityTransform(), nil
}

// MotionSubspace returns the nv columns of the joint's motion subspace, expressed in the child body frame.
func (j JointModel) MotionSubspace() []spatialmath.Motion {
	switch {
	case j.jointType == FreeFlyer:
		columns := make([]spatialmath.Motion, 6)
		for i := range columns {
			v := make([]float64, 6)
			v[i] = 1
			columns[i] = spatialmath.NewMotionFromSlice(v)
		}
		return columns
	case j.jointType.IsRevolute():
		return []spatialmath.Motion{{Angular: j.axis}}
	case j.jointType.IsPrismatic():
		return []spatialmath.Motion{{Linear: j.axis}}
	}
	return nil
}

// Velocity returns the spatial velocity of the child body relative to the joint frame, expressed in the
// child body frame, for the joint velocity v.
func (j JointModel) Velocity(v []float64) (spatialmath.Motion, error) {
	if len(v) != j.NV() {
		return spatialmath.Motion{}, NewPreconditionViolationError(
			"given velocity length %d does not match %s joint nv %d", len(v), j.jointType, j.NV())
	}
	var out spatialmath.Motion
	for i, column := range j.MotionSubspace() {
		out = out.Add(column.Scale(v[i]))
	}
	return out, nil
}

func (j JointModel) String() string {
	if j.jointType == RevoluteUnaligned {
		return fmt.Sprintf("%s %v", j.jointType, j.axis)
	}
	return j.jointType.String()
}
