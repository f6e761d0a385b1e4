// Package spatialmath defines spatial mathematical operations: rigid transforms, spatial motions and spatial inertias.
package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Transform is a rigid-body transformation (an element of SE3): a rotation followed by a translation.
// A Transform from frame B to frame A maps coordinates expressed in B to coordinates expressed in A.
type Transform struct {
	rotation    Matrix3
	translation r3.Vector
}

// NewTransform creates a transform from a rotation matrix and a translation.
func NewTransform(rotation Matrix3, translation r3.Vector) Transform {
	return Transform{rotation: rotation, translation: translation}
}

// NewTransformFromQuat creates a transform from a unit quaternion and a translation.
func NewTransformFromQuat(q quat.Number, translation r3.Vector) Transform {
	return Transform{rotation: QuatToMatrix3(q), translation: translation}
}

// NewTransformFromPoint creates a pure translation.
func NewTransformFromPoint(translation r3.Vector) Transform {
	return Transform{rotation: Identity3(), translation: translation}
}

// IdentityTransform returns the transform which signifies no rotation and no translation.
func IdentityTransform() Transform {
	return Transform{rotation: Identity3()}
}

// Rotation returns the rotation part of the transform.
func (t Transform) Rotation() Matrix3 {
	return t.rotation
}

// Translation returns the translation part of the transform.
func (t Transform) Translation() r3.Vector {
	return t.translation
}

// Compose returns the product a*b, i.e. the transform that applies b and then a.
func Compose(a, b Transform) Transform {
	return Transform{
		rotation:    a.rotation.Mul(b.rotation),
		translation: a.translation.Add(a.rotation.MulVec(b.translation)),
	}
}

// Inverse returns the inverse transform.
func (t Transform) Inverse() Transform {
	rt := t.rotation.Transpose()
	return Transform{rotation: rt, translation: rt.MulVec(t.translation).Mul(-1)}
}

// ActPoint maps a point from the source frame into the destination frame.
func (t Transform) ActPoint(p r3.Vector) r3.Vector {
	return t.translation.Add(t.rotation.MulVec(p))
}

// ActMotion expresses a spatial motion given in the source frame in the destination frame.
func (t Transform) ActMotion(m Motion) Motion {
	angular := t.rotation.MulVec(m.Angular)
	return Motion{
		Linear:  t.rotation.MulVec(m.Linear).Add(t.translation.Cross(angular)),
		Angular: angular,
	}
}

// ActInvMotion is the inverse of ActMotion: it expresses a motion given in the destination frame in the source frame.
func (t Transform) ActInvMotion(m Motion) Motion {
	rt := t.rotation.Transpose()
	return Motion{
		Linear:  rt.MulVec(m.Linear.Sub(t.translation.Cross(m.Angular))),
		Angular: rt.MulVec(m.Angular),
	}
}

// ActInertia expresses a spatial inertia given in the source frame in the destination frame.
func (t Transform) ActInertia(y Inertia) Inertia {
	return Inertia{
		mass:     y.mass,
		lever:    t.ActPoint(y.lever),
		rotation: y.rotation.Congruence(t.rotation),
	}
}

// AlmostEqual returns whether both the rotations and the translations agree to within epsilon.
func (t Transform) AlmostEqual(o Transform, epsilon float64) bool {
	return t.rotation.AlmostEqual(o.rotation, epsilon) && R3VectorAlmostEqual(t.translation, o.translation, epsilon)
}

// String prints the rotation rows followed by the translation.
func (t Transform) String() string {
	return fmt.Sprintf("R=[%v; %v; %v] p=%v", t.rotation.Row(0), t.rotation.Row(1), t.rotation.Row(2), t.translation)
}
