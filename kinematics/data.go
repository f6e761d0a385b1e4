// Package kinematics computes the placements, velocities and joint Jacobians of a referenceframe.Model.
//
// Results are cached in a Data, which belongs to one Model and to one goroutine at a time. Several Data
// may share a Model concurrently.
package kinematics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/rigidbody/referenceframe"
	"go.viam.com/rigidbody/spatialmath"
)

// ReferenceFrame selects the frame a Jacobian is expressed in.
type ReferenceFrame int

const (
	// LocalFrame expresses motions in the frame of the queried joint.
	LocalFrame ReferenceFrame = iota
	// WorldFrame expresses motions in the world frame, at the world origin.
	WorldFrame
)

func (rf ReferenceFrame) String() string {
	switch rf {
	case LocalFrame:
		return "local"
	case WorldFrame:
		return "world"
	}
	return "unknown"
}

// Data holds the results of kinematic computations on a Model.
type Data struct {
	model *referenceframe.Model

	// oMi[i] places joint i in the world; liMi[i] places it relative to its parent.
	oMi  []spatialmath.Transform
	liMi []spatialmath.Transform
	// v[i] is the spatial velocity of body i in its own frame; ov[i] is the same in the world frame.
	v  []spatialmath.Motion
	ov []spatialmath.Motion

	// jacobian and jacobianDot are 6 x nv, with every column expressed in the world frame.
	jacobian    *mat.Dense
	jacobianDot *mat.Dense

	hasKinematics    bool
	hasJacobians     bool
	hasTimeVariation bool
}

// NewData returns an empty cache for model.
func NewData(model *referenceframe.Model) *Data {
	n := model.NumJoints() + 1
	d := &Data{
		model: model,
		oMi:   make([]spatialmath.Transform, n),
		liMi:  make([]spatialmath.Transform, n),
		v:     make([]spatialmath.Motion, n),
		ov:    make([]spatialmath.Motion, n),
	}
	for i := range d.oMi {
		d.oMi[i] = spatialmath.IdentityTransform()
		d.liMi[i] = spatialmath.IdentityTransform()
	}
	if nv := model.NV(); nv > 0 {
		d.jacobian = mat.NewDense(6, nv, nil)
		d.jacobianDot = mat.NewDense(6, nv, nil)
	}
	return d
}

// J returns a copy of the 6 x nv matrix of joint motion subspaces expressed in the world frame, as filled
// by ComputeJointJacobians. It returns nil for a model without degrees of freedom.
func (d *Data) J() *mat.Dense {
	return denseCopy(d.jacobian)
}

// DJ returns a copy of the time variation of J, as filled by ComputeJointJacobiansTimeVariation.
func (d *Data) DJ() *mat.Dense {
	return denseCopy(d.jacobianDot)
}

// Placement returns the placement of joint i in the world from the last kinematics pass.
func (d *Data) Placement(i int) spatialmath.Transform {
	return d.oMi[i]
}

// Velocity returns the spatial velocity of body i, in its own frame, from the last time variation pass.
func (d *Data) Velocity(i int) spatialmath.Motion {
	return d.v[i]
}

func denseCopy(m *mat.Dense) *mat.Dense {
	if m == nil {
		return nil
	}
	return mat.DenseCopyOf(m)
}

func (d *Data) check(model *referenceframe.Model) error {
	if d == nil || d.model != model {
		return referenceframe.NewPreconditionViolationError("data was not created for model %q", model.Name())
	}
	return nil
}

func checkJoint(model *referenceframe.Model, jointID int) error {
	if jointID < 1 || jointID > model.NumJoints() {
		return referenceframe.NewPreconditionViolationError("joint index %d out of range [1, %d]", jointID, model.NumJoints())
	}
	return nil
}

func checkVector(name string, x []float64, size int) error {
	if len(x) != size {
		return referenceframe.NewPreconditionViolationError("%s has length %d, model expects %d", name, len(x), size)
	}
	if floats.HasNaN(x) {
		return referenceframe.NewPreconditionViolationError("%s contains NaN", name)
	}
	return nil
}

// ForwardKinematics places every joint of model in the world for configuration q.
func ForwardKinematics(model *referenceframe.Model, data *Data, q []float64) error {
	if err := data.check(model); err != nil {
		return err
	}
	if err := checkVector("configuration", q, model.NQ()); err != nil {
		return err
	}
	for i := 1; i <= model.NumJoints(); i++ {
		joint := model.Joint(i)
		start := model.IdxQ(i)
		jointMotion, err := joint.Transform(q[start : start+joint.NQ()])
		if err != nil {
			return err
		}
		data.liMi[i] = spatialmath.Compose(model.Placement(i), jointMotion)
		data.oMi[i] = spatialmath.Compose(data.oMi[model.Parent(i)], data.liMi[i])
	}
	data.hasKinematics = true
	data.hasJacobians = false
	data.hasTimeVariation = false
	return nil
}

// forwardVelocities propagates the joint velocity v from the universe outwards. It needs placements from
// ForwardKinematics.
func forwardVelocities(model *referenceframe.Model, data *Data, v []float64) error {
	for i := 1; i <= model.NumJoints(); i++ {
		joint := model.Joint(i)
		start := model.IdxV(i)
		vj, err := joint.Velocity(v[start : start+joint.NV()])
		if err != nil {
			return err
		}
		data.v[i] = vj.Add(data.liMi[i].ActInvMotion(data.v[model.Parent(i)]))
		data.ov[i] = data.oMi[i].ActMotion(data.v[i])
	}
	return nil
}
