package kinematics

import (
	"gonum.org/v1/gonum/mat"

	"go.viam.com/rigidbody/referenceframe"
	"go.viam.com/rigidbody/spatialmath"
)

// ComputeJointJacobians runs ForwardKinematics for q and fills the Jacobian cache of data.
func ComputeJointJacobians(model *referenceframe.Model, data *Data, q []float64) error {
	if err := ForwardKinematics(model, data, q); err != nil {
		return err
	}
	fillJacobians(model, data)
	return nil
}

// ComputeJointJacobiansFromKinematics fills the Jacobian cache of data from the placements of a previous
// ForwardKinematics call.
func ComputeJointJacobiansFromKinematics(model *referenceframe.Model, data *Data) error {
	if err := data.check(model); err != nil {
		return err
	}
	if !data.hasKinematics {
		return referenceframe.NewPreconditionViolationError("forward kinematics have not been computed")
	}
	fillJacobians(model, data)
	return nil
}

// ComputeJointJacobiansTimeVariation fills both the Jacobian cache of data and its time variation for the
// configuration q moving at velocity v.
func ComputeJointJacobiansTimeVariation(model *referenceframe.Model, data *Data, q, v []float64) error {
	if err := data.check(model); err != nil {
		return err
	}
	if err := checkVector("velocity", v, model.NV()); err != nil {
		return err
	}
	if err := ForwardKinematics(model, data, q); err != nil {
		return err
	}
	if err := forwardVelocities(model, data, v); err != nil {
		return err
	}
	fillJacobians(model, data)
	for i := 1; i <= model.NumJoints(); i++ {
		for c := 0; c < model.Joint(i).NV(); c++ {
			col := model.IdxV(i) + c
			setColumn(data.jacobianDot, col, data.ov[i].Cross(column(data.jacobian, col)))
		}
	}
	data.hasTimeVariation = true
	return nil
}

// JointJacobian returns the 6 x nv Jacobian of joint jointID in frame rf. With updateKinematics it is
// ComputeJointJacobians for q followed by GetJointJacobian, so the Jacobian cache of data is filled as well.
// Otherwise q is ignored and the Jacobian is built from the placements of the last ForwardKinematics call
// without touching the caches.
func JointJacobian(
	model *referenceframe.Model,
	data *Data,
	q []float64,
	jointID int,
	rf ReferenceFrame,
	updateKinematics bool,
) (*mat.Dense, error) {
	if err := data.check(model); err != nil {
		return nil, err
	}
	if err := checkJoint(model, jointID); err != nil {
		return nil, err
	}
	if updateKinematics {
		if err := ComputeJointJacobians(model, data, q); err != nil {
			return nil, err
		}
		return GetJointJacobian(model, data, jointID, rf)
	}
	if !data.hasKinematics {
		return nil, referenceframe.NewPreconditionViolationError("forward kinematics have not been computed")
	}

	out := mat.NewDense(6, model.NV(), nil)
	oMj := data.oMi[jointID]
	for _, k := range model.Supports(jointID) {
		for c, s := range model.Joint(k).MotionSubspace() {
			m := data.oMi[k].ActMotion(s)
			if rf == LocalFrame {
				m = oMj.ActInvMotion(m)
			}
			setColumn(out, model.IdxV(k)+c, m)
		}
	}
	return out, nil
}

// GetJointJacobian extracts the 6 x nv Jacobian of joint jointID in frame rf from the cache filled by
// ComputeJointJacobians. Columns of joints that do not support jointID are zero.
func GetJointJacobian(model *referenceframe.Model, data *Data, jointID int, rf ReferenceFrame) (*mat.Dense, error) {
	if err := data.check(model); err != nil {
		return nil, err
	}
	if err := checkJoint(model, jointID); err != nil {
		return nil, err
	}
	if !data.hasJacobians {
		return nil, referenceframe.NewPreconditionViolationError("joint jacobians have not been computed")
	}

	out := mat.NewDense(6, model.NV(), nil)
	oMj := data.oMi[jointID]
	forEachSupportColumn(model, jointID, func(col int) {
		m := column(data.jacobian, col)
		if rf == LocalFrame {
			m = oMj.ActInvMotion(m)
		}
		setColumn(out, col, m)
	})
	return out, nil
}

// GetJointJacobianTimeVariation extracts the 6 x nv time variation of the Jacobian of joint jointID in
// frame rf from the cache filled by ComputeJointJacobiansTimeVariation.
func GetJointJacobianTimeVariation(model *referenceframe.Model, data *Data, jointID int, rf ReferenceFrame) (*mat.Dense, error) {
	if err := data.check(model); err != nil {
		return nil, err
	}
	if err := checkJoint(model, jointID); err != nil {
		return nil, err
	}
	if !data.hasTimeVariation {
		return nil, referenceframe.NewPreconditionViolationError("joint jacobian time variation has not been computed")
	}

	out := mat.NewDense(6, model.NV(), nil)
	oMj := data.oMi[jointID]
	vj := data.v[jointID]
	forEachSupportColumn(model, jointID, func(col int) {
		m := column(data.jacobianDot, col)
		if rf == LocalFrame {
			// Differentiating oMj.actInv(J) adds the motion of the joint frame itself.
			m = oMj.ActInvMotion(m).Sub(vj.Cross(oMj.ActInvMotion(column(data.jacobian, col))))
		}
		setColumn(out, col, m)
	})
	return out, nil
}

func fillJacobians(model *referenceframe.Model, data *Data) {
	for i := 1; i <= model.NumJoints(); i++ {
		for c, s := range model.Joint(i).MotionSubspace() {
			setColumn(data.jacobian, model.IdxV(i)+c, data.oMi[i].ActMotion(s))
		}
	}
	data.hasJacobians = true
}

func forEachSupportColumn(model *referenceframe.Model, jointID int, fn func(col int)) {
	for _, k := range model.Supports(jointID) {
		for c := 0; c < model.Joint(k).NV(); c++ {
			fn(model.IdxV(k) + c)
		}
	}
}

func column(m *mat.Dense, col int) spatialmath.Motion {
	return spatialmath.NewMotionFromSlice(mat.Col(nil, col, m))
}

func setColumn(m *mat.Dense, col int, motion spatialmath.Motion) {
	m.SetCol(col, motion.Vector())
}
