package urdf

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/rigidbody/referenceframe"
	"go.viam.com/rigidbody/spatialmath"
)

// convertPose turns an origin element into the transform from the child frame to the parent frame.
// A missing origin is the identity.
func convertPose(p *pose) (spatialmath.Transform, error) {
	if p == nil {
		return spatialmath.IdentityTransform(), nil
	}
	xyz, err := parseVector(p.XYZ, r3.Vector{})
	if err != nil {
		return spatialmath.Transform{}, errors.Wrap(err, "origin xyz")
	}
	rpy, err := parseVector(p.RPY, r3.Vector{})
	if err != nil {
		return spatialmath.Transform{}, errors.Wrap(err, "origin rpy")
	}
	return spatialmath.NewTransformFromQuat(spatialmath.QuatFromRPY(rpy.X, rpy.Y, rpy.Z), xyz), nil
}

// convertInertial returns the spatial inertia of a link expressed in the link frame: the lever is the
// inertial origin and the tensor is rotated from the inertial frame into the link frame.
func convertInertial(in *inertial) (spatialmath.Inertia, error) {
	origin, err := convertPose(in.Origin)
	if err != nil {
		return spatialmath.Inertia{}, err
	}
	if in.Mass == nil {
		return spatialmath.Inertia{}, errors.New("inertial has no mass")
	}
	m, err := parseRequiredFloat(in.Mass.Value, "value")
	if err != nil {
		return spatialmath.Inertia{}, errors.Wrap(err, "mass")
	}
	if m < 0 {
		return spatialmath.Inertia{}, errors.Errorf("negative mass %g", m)
	}
	if in.Inertia == nil {
		return spatialmath.Inertia{}, errors.New("inertial has no inertia")
	}
	var elements [6]float64
	attrs := []*string{in.Inertia.IXX, in.Inertia.IXY, in.Inertia.IXZ, in.Inertia.IYY, in.Inertia.IYZ, in.Inertia.IZZ}
	for i, name := range []string{"ixx", "ixy", "ixz", "iyy", "iyz", "izz"} {
		if elements[i], err = parseRequiredFloat(attrs[i], name); err != nil {
			return spatialmath.Inertia{}, errors.Wrap(err, "inertia")
		}
	}
	tensor := spatialmath.Matrix3{
		elements[0], elements[1], elements[2],
		elements[1], elements[3], elements[4],
		elements[2], elements[4], elements[5],
	}
	return spatialmath.NewInertia(m, origin.Translation(), tensor.Congruence(origin.Rotation())), nil
}

// convertAxis returns the joint axis. A joint without an axis element moves along X.
func convertAxis(a *axis) (r3.Vector, error) {
	defaultAxis := r3.Vector{X: 1}
	if a == nil {
		return defaultAxis, nil
	}
	v, err := parseVector(a.XYZ, defaultAxis)
	if err != nil {
		return r3.Vector{}, errors.Wrap(err, "axis xyz")
	}
	if v.Norm2() == 0 {
		return r3.Vector{}, errors.New("axis is zero")
	}
	return v, nil
}

// convertLimits returns one degree of freedom limits, or empty limits when the element is absent.
func convertLimits(l *limit) (referenceframe.JointLimits, error) {
	if l == nil {
		return referenceframe.JointLimits{}, nil
	}
	effort, err := parseRequiredFloat(l.Effort, "effort")
	if err != nil {
		return referenceframe.JointLimits{}, errors.Wrap(err, "limit")
	}
	velocity, err := parseRequiredFloat(l.Velocity, "velocity")
	if err != nil {
		return referenceframe.JointLimits{}, errors.Wrap(err, "limit")
	}
	lower, err := parseFloat(l.Lower, 0)
	if err != nil {
		return referenceframe.JointLimits{}, errors.Wrap(err, "limit lower")
	}
	upper, err := parseFloat(l.Upper, 0)
	if err != nil {
		return referenceframe.JointLimits{}, errors.Wrap(err, "limit upper")
	}
	return referenceframe.NewJointLimits(effort, velocity, lower, upper), nil
}

// jointInfo describes a joint for verbose output, e.g. "joint REVOLUTE with axis along X".
func jointInfo(jm referenceframe.JointModel) string {
	t := jm.Type()
	switch {
	case t == referenceframe.FreeFlyer:
		return "joint FREE FLYER"
	case t == referenceframe.RevoluteUnaligned:
		return "joint REVOLUTE with axis " + jm.Axis().String()
	case t.IsRevolute():
		return "joint REVOLUTE with axis along " + spatialmath.ExtractCartesianAxis(jm.Axis()).String()
	case t.IsPrismatic():
		return "joint PRISMATIC with axis along " + spatialmath.ExtractCartesianAxis(jm.Axis()).String()
	}
	return "fixed joint"
}
