package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
)

func randomishTransform() Transform {
	return NewTransformFromQuat(QuatFromRPY(0.3, -1.1, 2.4), r3.Vector{X: 0.5, Y: -1.5, Z: 2})
}

// motionMatrix is the 6x6 matrix that maps a motion from the source frame of t into its destination frame.
func motionMatrix(t Transform) *mat.Dense {
	out := mat.NewDense(6, 6, nil)
	r := t.Rotation()
	pr := Skew(t.Translation()).Mul(r)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.Set(i, j, r.At(i, j))
			out.Set(i, 3+j, pr.At(i, j))
			out.Set(3+i, 3+j, r.At(i, j))
		}
	}
	return out
}

func TestIdentityTransform(t *testing.T) {
	id := IdentityTransform()
	test.That(t, id.Rotation(), test.ShouldResemble, Identity3())
	test.That(t, id.Translation(), test.ShouldResemble, r3.Vector{})

	tf := randomishTransform()
	test.That(t, Compose(id, tf).AlmostEqual(tf, 1e-12), test.ShouldBeTrue)
	test.That(t, Compose(tf, id).AlmostEqual(tf, 1e-12), test.ShouldBeTrue)
}

func TestComposeAndInverse(t *testing.T) {
	tf := randomishTransform()
	test.That(t, Compose(tf, tf.Inverse()).AlmostEqual(IdentityTransform(), 1e-12), test.ShouldBeTrue)
	test.That(t, Compose(tf.Inverse(), tf).AlmostEqual(IdentityTransform(), 1e-12), test.ShouldBeTrue)

	a := NewTransformFromPoint(r3.Vector{X: 1})
	b := NewTransformFromQuat(QuatFromRPY(0, 0, math.Pi/2), r3.Vector{X: 1})
	ab := Compose(a, b)
	test.That(t, R3VectorAlmostEqual(ab.Translation(), r3.Vector{X: 2}, 1e-12), test.ShouldBeTrue)
	// the composed transform rotates after translating by a
	p := ab.ActPoint(r3.Vector{X: 1})
	test.That(t, R3VectorAlmostEqual(p, r3.Vector{X: 2, Y: 1}, 1e-12), test.ShouldBeTrue)
	test.That(t, R3VectorAlmostEqual(p, a.ActPoint(b.ActPoint(r3.Vector{X: 1})), 1e-12), test.ShouldBeTrue)
}

func TestMotionAction(t *testing.T) {
	tf := randomishTransform()
	m := Motion{Linear: r3.Vector{X: 1, Y: 2, Z: 3}, Angular: r3.Vector{X: -0.5, Y: 0.25, Z: 1}}

	test.That(t, tf.ActInvMotion(tf.ActMotion(m)).AlmostEqual(m, 1e-12), test.ShouldBeTrue)
	test.That(t, tf.Inverse().ActMotion(m).AlmostEqual(tf.ActInvMotion(m), 1e-12), test.ShouldBeTrue)

	var expected mat.VecDense
	expected.MulVec(motionMatrix(tf), mat.NewVecDense(6, m.Vector()))
	got := tf.ActMotion(m).Vector()
	for i := 0; i < 6; i++ {
		test.That(t, got[i], test.ShouldAlmostEqual, expected.AtVec(i))
	}
}

func TestMotionCross(t *testing.T) {
	a := Motion{Linear: r3.Vector{X: 1}, Angular: r3.Vector{Z: 1}}
	test.That(t, a.Cross(a).AlmostEqual(Motion{}, 1e-12), test.ShouldBeTrue)

	b := Motion{Linear: r3.Vector{Y: 2}, Angular: r3.Vector{X: 1}}
	c := a.Cross(b)
	// wz x (0,2,0) + (1,0,0) x (1,0,0)
	test.That(t, c.Linear, test.ShouldResemble, r3.Vector{X: -2})
	test.That(t, c.Angular, test.ShouldResemble, r3.Vector{Y: 1})

	// the action of a transform commutes with the cross product
	tf := randomishTransform()
	lhs := tf.ActMotion(a.Cross(b))
	rhs := tf.ActMotion(a).Cross(tf.ActMotion(b))
	test.That(t, lhs.AlmostEqual(rhs, 1e-12), test.ShouldBeTrue)
}

func TestQuatToMatrix3(t *testing.T) {
	r := QuatToMatrix3(QuatFromRPY(0, 0, math.Pi/2))
	test.That(t, R3VectorAlmostEqual(r.MulVec(r3.Vector{X: 1}), r3.Vector{Y: 1}, 1e-12), test.ShouldBeTrue)

	// rotations are orthonormal
	r = randomishTransform().Rotation()
	test.That(t, r.Mul(r.Transpose()).AlmostEqual(Identity3(), 1e-12), test.ShouldBeTrue)
	test.That(t, mat.Det(r.Dense()), test.ShouldAlmostEqual, 1.)
}

func TestQuatFromRPY(t *testing.T) {
	roll, pitch, yaw := 0.3, -1.1, 2.4
	rx := NewR4AAFromAxis(r3.Vector{X: 1}, roll).RotationMatrix()
	ry := NewR4AAFromAxis(r3.Vector{Y: 1}, pitch).RotationMatrix()
	rz := NewR4AAFromAxis(r3.Vector{Z: 1}, yaw).RotationMatrix()
	expected := rz.Mul(ry).Mul(rx)
	test.That(t, QuatToMatrix3(QuatFromRPY(roll, pitch, yaw)).AlmostEqual(expected, 1e-12), test.ShouldBeTrue)

	q := QuatFromRPY(0, 0, 0)
	test.That(t, q.Real, test.ShouldEqual, 1.)
	test.That(t, q.Imag, test.ShouldEqual, 0.)
}

func TestR4AANormalize(t *testing.T) {
	aa := &R4AA{Theta: 1, RX: 3, RY: 4}
	test.That(t, aa.Normalize(), test.ShouldBeNil)
	test.That(t, aa.Axis(), test.ShouldResemble, r3.Vector{X: 0.6, Y: 0.8})

	test.That(t, (&R4AA{Theta: 1}).Normalize(), test.ShouldNotBeNil)
}
