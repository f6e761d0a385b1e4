package kinematics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/rigidbody/logging"
	"go.viam.com/rigidbody/referenceframe"
	"go.viam.com/rigidbody/referenceframe/urdf"
	"go.viam.com/rigidbody/spatialmath"
	"go.viam.com/rigidbody/utils"
)

func loadModel(t *testing.T, name string, opts ...urdf.Option) *referenceframe.Model {
	t.Helper()
	model, err := urdf.BuildModel(utils.ResolveFile("referenceframe/urdf/testdata/"+name), logging.NewTestLogger(t), opts...)
	test.That(t, err, test.ShouldBeNil)
	return model
}

func loadFreeFlyerArm(t *testing.T) *referenceframe.Model {
	t.Helper()
	return loadModel(t, "arm.urdf", urdf.WithRootJoint(referenceframe.NewFreeFlyerJoint()))
}

// randomConfiguration returns a configuration with unit free-flyer quaternions.
func randomConfiguration(model *referenceframe.Model, rSeed *rand.Rand) []float64 {
	q := make([]float64, model.NQ())
	for i := range q {
		q[i] = rSeed.Float64()*2 - 1
	}
	for i := 1; i <= model.NumJoints(); i++ {
		if model.Joint(i).Type() != referenceframe.FreeFlyer {
			continue
		}
		rot := q[model.IdxQ(i)+3 : model.IdxQ(i)+7]
		norm := math.Sqrt(rot[0]*rot[0] + rot[1]*rot[1] + rot[2]*rot[2] + rot[3]*rot[3])
		for k := range rot {
			rot[k] /= norm
		}
	}
	return q
}

func randomVelocity(model *referenceframe.Model, rSeed *rand.Rand) []float64 {
	v := make([]float64, model.NV())
	for i := range v {
		v[i] = rSeed.Float64()*2 - 1
	}
	return v
}

// integrate moves q along the velocity v for time dt. Free-flyer velocities are expressed in the body frame.
func integrate(model *referenceframe.Model, q, v []float64, dt float64) []float64 {
	out := append([]float64(nil), q...)
	for i := 1; i <= model.NumJoints(); i++ {
		iq, iv := model.IdxQ(i), model.IdxV(i)
		if model.Joint(i).Type() != referenceframe.FreeFlyer {
			out[iq] += dt * v[iv]
			continue
		}
		rot := quat.Number{Real: q[iq+6], Imag: q[iq+3], Jmag: q[iq+4], Kmag: q[iq+5]}
		linear := spatialmath.QuatToMatrix3(rot).MulVec(r3.Vector{X: v[iv], Y: v[iv+1], Z: v[iv+2]}).Mul(dt)
		half := quat.Number{Imag: dt * v[iv+3] / 2, Jmag: dt * v[iv+4] / 2, Kmag: dt * v[iv+5] / 2}
		rot = quat.Mul(rot, quat.Exp(half))
		out[iq] += linear.X
		out[iq+1] += linear.Y
		out[iq+2] += linear.Z
		out[iq+3], out[iq+4], out[iq+5], out[iq+6] = rot.Imag, rot.Jmag, rot.Kmag, rot.Real
	}
	return out
}

func TestForwardKinematics(t *testing.T) {
	model := loadModel(t, "two_link.urdf")
	data := NewData(model)
	test.That(t, ForwardKinematics(model, data, []float64{math.Pi / 2}), test.ShouldBeNil)
	tf := data.Placement(1)
	test.That(t, spatialmath.R3VectorAlmostEqual(tf.ActPoint(r3.Vector{X: 1}), r3.Vector{Y: 1}, 1e-12), test.ShouldBeTrue)

	// Body frames of a collapsed chain follow the parent.
	model = loadModel(t, "fixed_collapse.urdf")
	data = NewData(model)
	test.That(t, ForwardKinematics(model, data, []float64{1}), test.ShouldBeNil)
	test.That(t, data.Placement(1).Translation(), test.ShouldResemble, r3.Vector{X: 1})
}

// prismaticChain builds a revolute joint about Z at the origin carrying a prismatic joint along X
// placed at (0, 1, 0).
func prismaticChain(t *testing.T) *referenceframe.Model {
	t.Helper()
	model := referenceframe.NewModel("chain")
	rev, err := referenceframe.NewRevoluteJoint(r3.Vector{Z: 1})
	test.That(t, err, test.ShouldBeNil)
	prism, err := referenceframe.NewPrismaticJoint(r3.Vector{X: 1})
	test.That(t, err, test.ShouldBeNil)
	y := spatialmath.NewInertia(1, r3.Vector{}, spatialmath.Identity3())
	id, err := model.AddBody(0, rev, spatialmath.IdentityTransform(), y, referenceframe.JointLimits{}, "turn", "arm", false)
	test.That(t, err, test.ShouldBeNil)
	_, err = model.AddBody(id, prism, spatialmath.NewTransformFromPoint(r3.Vector{Y: 1}), y,
		referenceframe.JointLimits{}, "slide", "slider", false)
	test.That(t, err, test.ShouldBeNil)
	return model
}

func TestJointJacobianByHand(t *testing.T) {
	model := prismaticChain(t)
	data := NewData(model)
	q := []float64{math.Pi / 2, 0.5}

	world, err := JointJacobian(model, data, q, 2, WorldFrame, true)
	test.That(t, err, test.ShouldBeNil)
	expectedWorld := mat.NewDense(6, 2, []float64{
		0, 0,
		0, 1,
		0, 0,
		0, 0,
		0, 0,
		1, 0,
	})
	test.That(t, mat.EqualApprox(world, expectedWorld, 1e-12), test.ShouldBeTrue)

	local, err := JointJacobian(model, data, q, 2, LocalFrame, true)
	test.That(t, err, test.ShouldBeNil)
	expectedLocal := mat.NewDense(6, 2, []float64{
		-1, 1,
		0.5, 0,
		0, 0,
		0, 0,
		0, 0,
		1, 0,
	})
	test.That(t, mat.EqualApprox(local, expectedLocal, 1e-12), test.ShouldBeTrue)

	// The first joint does not depend on the second.
	first, err := JointJacobian(model, data, q, 1, WorldFrame, false)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mat.Col(nil, 1, first), test.ShouldResemble, []float64{0, 0, 0, 0, 0, 0})
}

func TestLocalWorldRelation(t *testing.T) {
	rSeed := rand.New(rand.NewSource(1))
	for _, model := range []*referenceframe.Model{loadModel(t, "arm.urdf"), loadFreeFlyerArm(t)} {
		data := NewData(model)
		for trial := 0; trial < 5; trial++ {
			q := randomConfiguration(model, rSeed)
			test.That(t, ComputeJointJacobians(model, data, q), test.ShouldBeNil)
			for j := 1; j <= model.NumJoints(); j++ {
				world, err := GetJointJacobian(model, data, j, WorldFrame)
				test.That(t, err, test.ShouldBeNil)
				local, err := GetJointJacobian(model, data, j, LocalFrame)
				test.That(t, err, test.ShouldBeNil)

				oMj := data.Placement(j)
				rt := oMj.Rotation().Transpose()
				for col := 0; col < model.NV(); col++ {
					w := spatialmath.NewMotionFromSlice(mat.Col(nil, col, world))
					l := spatialmath.NewMotionFromSlice(mat.Col(nil, col, local))
					// The angular block only rotates; the linear block also moves its reference point from
					// the world origin to the joint origin.
					test.That(t, spatialmath.R3VectorAlmostEqual(l.Angular, rt.MulVec(w.Angular), 1e-12), test.ShouldBeTrue)
					shifted := w.Linear.Sub(oMj.Translation().Cross(w.Angular))
					test.That(t, spatialmath.R3VectorAlmostEqual(l.Linear, rt.MulVec(shifted), 1e-12), test.ShouldBeTrue)
				}
			}
		}
	}
}

func TestJointJacobianMatchesCache(t *testing.T) {
	rSeed := rand.New(rand.NewSource(2))
	model := loadFreeFlyerArm(t)
	oneShot := NewData(model)
	cached := NewData(model)
	q := randomConfiguration(model, rSeed)
	test.That(t, ComputeJointJacobians(model, cached, q), test.ShouldBeNil)

	for j := 1; j <= model.NumJoints(); j++ {
		for _, rf := range []ReferenceFrame{LocalFrame, WorldFrame} {
			expected, err := GetJointJacobian(model, cached, j, rf)
			test.That(t, err, test.ShouldBeNil)
			actual, err := JointJacobian(model, oneShot, q, j, rf, true)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, mat.Equal(actual, expected), test.ShouldBeTrue)

			// Without the update the placements of the last pass are reused.
			actual, err = JointJacobian(model, oneShot, nil, j, rf, false)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, mat.Equal(actual, expected), test.ShouldBeTrue)
		}
	}

	// Columns of joints off the kinematic path are zero.
	wrist, err := model.JointID("wrist")
	test.That(t, err, test.ShouldBeNil)
	slide, err := model.JointID("slide")
	test.That(t, err, test.ShouldBeNil)
	jac, err := GetJointJacobian(model, cached, wrist, WorldFrame)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mat.Col(nil, model.IdxV(slide), jac), test.ShouldResemble, make([]float64, 6))
}

func TestJointJacobianFillsCache(t *testing.T) {
	model := loadFreeFlyerArm(t)
	q := randomConfiguration(model, rand.New(rand.NewSource(6)))
	expected := NewData(model)
	test.That(t, ComputeJointJacobians(model, expected, q), test.ShouldBeNil)

	data := NewData(model)
	oneShot, err := JointJacobian(model, data, q, 2, WorldFrame, true)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, data.J(), test.ShouldNotBeNil)
	test.That(t, mat.Equal(data.J(), expected.J()), test.ShouldBeTrue)

	cached, err := GetJointJacobian(model, data, 2, WorldFrame)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mat.Equal(cached, oneShot), test.ShouldBeTrue)

	// Other joints are served from the same cache.
	for j := 1; j <= model.NumJoints(); j++ {
		actual, err := GetJointJacobian(model, data, j, LocalFrame)
		test.That(t, err, test.ShouldBeNil)
		want, err := GetJointJacobian(model, expected, j, LocalFrame)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, mat.Equal(actual, want), test.ShouldBeTrue)
	}

	// Without the update the cache is left as it is.
	_, err = JointJacobian(model, data, nil, model.NumJoints(), WorldFrame, false)
	test.That(t, err, test.ShouldBeNil)
	_, err = GetJointJacobian(model, data, 1, WorldFrame)
	test.That(t, err, test.ShouldBeNil)
}

func TestComputeJointJacobiansFromKinematics(t *testing.T) {
	rSeed := rand.New(rand.NewSource(3))
	model := loadModel(t, "arm.urdf")
	q := randomConfiguration(model, rSeed)

	direct := NewData(model)
	test.That(t, ComputeJointJacobians(model, direct, q), test.ShouldBeNil)

	data := NewData(model)
	err := ComputeJointJacobiansFromKinematics(model, data)
	test.That(t, errors.Is(err, referenceframe.ErrPreconditionViolation), test.ShouldBeTrue)
	test.That(t, ForwardKinematics(model, data, q), test.ShouldBeNil)
	test.That(t, ComputeJointJacobiansFromKinematics(model, data), test.ShouldBeNil)
	test.That(t, mat.Equal(data.J(), direct.J()), test.ShouldBeTrue)

	// J is returned as a copy.
	j := data.J()
	j.Set(0, 0, 100)
	test.That(t, data.J().At(0, 0), test.ShouldNotEqual, 100.)
}

func TestJointJacobianTimeVariation(t *testing.T) {
	const h = 1e-6
	rSeed := rand.New(rand.NewSource(4))
	for _, model := range []*referenceframe.Model{loadModel(t, "arm.urdf"), loadFreeFlyerArm(t)} {
		data := NewData(model)
		plus := NewData(model)
		minus := NewData(model)
		q := randomConfiguration(model, rSeed)
		v := randomVelocity(model, rSeed)
		test.That(t, ComputeJointJacobiansTimeVariation(model, data, q, v), test.ShouldBeNil)
		test.That(t, ComputeJointJacobians(model, plus, integrate(model, q, v, h)), test.ShouldBeNil)
		test.That(t, ComputeJointJacobians(model, minus, integrate(model, q, v, -h)), test.ShouldBeNil)

		// The world frame cache is differentiated directly.
		var fd mat.Dense
		fd.Sub(plus.J(), minus.J())
		fd.Scale(1/(2*h), &fd)
		test.That(t, mat.EqualApprox(data.DJ(), &fd, 1e-6), test.ShouldBeTrue)

		for j := 1; j <= model.NumJoints(); j++ {
			for _, rf := range []ReferenceFrame{LocalFrame, WorldFrame} {
				dJ, err := GetJointJacobianTimeVariation(model, data, j, rf)
				test.That(t, err, test.ShouldBeNil)
				jPlus, err := GetJointJacobian(model, plus, j, rf)
				test.That(t, err, test.ShouldBeNil)
				jMinus, err := GetJointJacobian(model, minus, j, rf)
				test.That(t, err, test.ShouldBeNil)
				fd.Sub(jPlus, jMinus)
				fd.Scale(1/(2*h), &fd)
				test.That(t, mat.EqualApprox(dJ, &fd, 1e-6), test.ShouldBeTrue)
			}
		}

		// The time variation pass also fills the Jacobian cache.
		expected := NewData(model)
		test.That(t, ComputeJointJacobians(model, expected, q), test.ShouldBeNil)
		test.That(t, mat.EqualApprox(data.J(), expected.J(), 1e-15), test.ShouldBeTrue)
	}
}

func TestPreconditions(t *testing.T) {
	model := loadModel(t, "arm.urdf")
	other := loadModel(t, "two_link.urdf")
	data := NewData(model)
	q := make([]float64, model.NQ())
	v := make([]float64, model.NV())

	shouldViolate := func(err error) {
		t.Helper()
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, errors.Is(err, referenceframe.ErrPreconditionViolation), test.ShouldBeTrue)
	}

	_, err := GetJointJacobian(model, data, 1, WorldFrame)
	shouldViolate(err)
	_, err = GetJointJacobianTimeVariation(model, data, 1, WorldFrame)
	shouldViolate(err)
	_, err = JointJacobian(model, data, nil, 1, LocalFrame, false)
	shouldViolate(err)

	shouldViolate(ComputeJointJacobians(model, data, q[1:]))
	shouldViolate(ComputeJointJacobians(model, data, []float64{0, 0, math.NaN(), 0, 0}))
	shouldViolate(ComputeJointJacobiansTimeVariation(model, data, q, v[1:]))
	shouldViolate(ComputeJointJacobians(other, data, []float64{0}))
	shouldViolate(ForwardKinematics(model, nil, q))

	test.That(t, ComputeJointJacobians(model, data, q), test.ShouldBeNil)
	for _, j := range []int{0, -1, model.NumJoints() + 1} {
		_, err = GetJointJacobian(model, data, j, WorldFrame)
		shouldViolate(err)
		_, err = JointJacobian(model, data, q, j, WorldFrame, true)
		shouldViolate(err)
	}
	// Jacobians alone do not provide the time variation.
	_, err = GetJointJacobianTimeVariation(model, data, 1, LocalFrame)
	shouldViolate(err)

	// A new configuration invalidates the caches.
	test.That(t, ForwardKinematics(model, data, q), test.ShouldBeNil)
	_, err = GetJointJacobian(model, data, 1, WorldFrame)
	shouldViolate(err)

	// A zero free-flyer quaternion has no rotation.
	freeFlyer := loadFreeFlyerArm(t)
	shouldViolate(ForwardKinematics(freeFlyer, NewData(freeFlyer), make([]float64, freeFlyer.NQ())))
}

func TestParallelData(t *testing.T) {
	model := loadFreeFlyerArm(t)
	rSeed := rand.New(rand.NewSource(5))
	const workers = 8
	configurations := make([][]float64, workers)
	velocities := make([][]float64, workers)
	for i := range configurations {
		configurations[i] = randomConfiguration(model, rSeed)
		velocities[i] = randomVelocity(model, rSeed)
	}

	results := make([]*mat.Dense, workers)
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		i := i
		g.Go(func() error {
			data := NewData(model)
			if err := ComputeJointJacobiansTimeVariation(model, data, configurations[i], velocities[i]); err != nil {
				return err
			}
			dJ, err := GetJointJacobianTimeVariation(model, data, model.NumJoints(), LocalFrame)
			results[i] = dJ
			return err
		})
	}
	test.That(t, g.Wait(), test.ShouldBeNil)

	for i := 0; i < workers; i++ {
		data := NewData(model)
		test.That(t, ComputeJointJacobiansTimeVariation(model, data, configurations[i], velocities[i]), test.ShouldBeNil)
		expected, err := GetJointJacobianTimeVariation(model, data, model.NumJoints(), LocalFrame)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, mat.Equal(results[i], expected), test.ShouldBeTrue)
	}
}

func TestReferenceFrameString(t *testing.T) {
	test.That(t, LocalFrame.String(), test.ShouldEqual, "local")
	test.That(t, WorldFrame.String(), test.ShouldEqual, "world")
}
