package urdf

import (
	"fmt"

	"github.com/pkg/errors"

	"go.viam.com/rigidbody/logging"
	"go.viam.com/rigidbody/referenceframe"
	"go.viam.com/rigidbody/spatialmath"
)

// RootJointName is the name given to the joint attaching the root link to the universe when a root
// joint is supplied.
const RootJointName = "root_joint"

// The joint types understood by the compiler.
const (
	revoluteType   = "revolute"
	continuousType = "continuous"
	prismaticType  = "prismatic"
	fixedType      = "fixed"
)

// compiler turns a link tree into a Model. Links behind fixed joints are collapsed onto their nearest
// movable ancestor.
type compiler struct {
	model   *referenceframe.Model
	logger  logging.Logger
	verbose bool
}

// compile adds every link below root to the model. With a root joint, the root link becomes the body of
// that joint; otherwise it is the universe itself and its inertia, if any, is anchored there.
func (c *compiler) compile(root *linkNode, rootJoint *referenceframe.JointModel) error {
	y, hasInertial, err := linkInertia(root)
	if err != nil {
		return err
	}

	parentID := 0
	if rootJoint != nil {
		if err := c.reserve(RootJointName, root.link.Name); err != nil {
			return err
		}
		parentID, err = c.model.AddBody(0, *rootJoint, spatialmath.IdentityTransform(), y,
			referenceframe.JointLimits{}, RootJointName, root.link.Name, true)
		if err != nil {
			return err
		}
		c.logLink(root, parentID, *rootJoint, spatialmath.IdentityTransform(), y)
	} else if hasInertial {
		if err := c.model.MergeFixedBody(0, spatialmath.IdentityTransform(), y); err != nil {
			return err
		}
	}

	for _, child := range root.children {
		if err := c.parseTree(child, parentID, spatialmath.IdentityTransform()); err != nil {
			return err
		}
	}
	return nil
}

// parseTree adds node, attached through its parent joint to the model joint parentID, and then its
// descendants. placementOffset is the accumulated placement of fixed joints between parentID and the
// parent joint of node.
func (c *compiler) parseTree(node *linkNode, parentID int, placementOffset spatialmath.Transform) error {
	j := node.parentJoint
	if j == nil {
		return referenceframe.NewMissingJointError(node.link.Name)
	}
	origin, err := convertPose(j.Origin)
	if err != nil {
		return malformedJoint(j, err)
	}
	jointPlacement := spatialmath.Compose(placementOffset, origin)

	y, hasInertial, err := linkInertia(node)
	if err != nil {
		return err
	}
	if !hasInertial && j.Type != fixedType {
		return referenceframe.NewMissingInertiaError(node.link.Name)
	}
	hasVisual := len(node.link.Visual) > 0

	var jm referenceframe.JointModel
	switch j.Type {
	case revoluteType, continuousType:
		jointAxis, err := convertAxis(j.Axis)
		if err != nil {
			return malformedJoint(j, err)
		}
		if jm, err = referenceframe.NewRevoluteJoint(jointAxis); err != nil {
			return malformedJoint(j, err)
		}
	case prismaticType:
		jointAxis, err := convertAxis(j.Axis)
		if err != nil {
			return malformedJoint(j, err)
		}
		if jm, err = referenceframe.NewPrismaticJoint(jointAxis); err != nil {
			return referenceframe.NewUnsupportedJointTypeError(j.Name, j.Type+" with unaligned axis")
		}
	case fixedType:
		if hasInertial {
			if err := c.model.MergeFixedBody(parentID, jointPlacement, y); err != nil {
				return err
			}
		}
		if err := c.reserve("", node.link.Name); err != nil {
			return err
		}
		if err := c.model.AddFixedBody(parentID, jointPlacement, node.link.Name, hasVisual); err != nil {
			return err
		}
		c.logLink(node, parentID, referenceframe.NewFixedJoint(), jointPlacement, y)
		for _, child := range node.children {
			if err := c.parseTree(child, parentID, jointPlacement); err != nil {
				return err
			}
		}
		return nil
	default:
		return referenceframe.NewUnsupportedJointTypeError(j.Name, j.Type)
	}

	if j.Type != continuousType && j.Limit == nil {
		return malformedJoint(j, errors.New("missing limit element"))
	}
	limits, err := convertLimits(j.Limit)
	if err != nil {
		return malformedJoint(j, err)
	}
	if err := c.reserve(j.Name, node.link.Name); err != nil {
		return err
	}
	id, err := c.model.AddBody(parentID, jm, jointPlacement, y, limits, j.Name, node.link.Name, hasVisual)
	if err != nil {
		return err
	}
	c.logLink(node, id, jm, jointPlacement, y)

	for _, child := range node.children {
		if err := c.parseTree(child, id, spatialmath.IdentityTransform()); err != nil {
			return err
		}
	}
	return nil
}

// linkInertia returns the inertia of the link in its own frame, and whether it had an inertial element.
func linkInertia(node *linkNode) (spatialmath.Inertia, bool, error) {
	if node.link.Inertial == nil {
		return spatialmath.ZeroInertia(), false, nil
	}
	y, err := convertInertial(node.link.Inertial)
	if err != nil {
		return spatialmath.Inertia{}, false, referenceframe.NewMalformedElementError(fmt.Sprintf("link %q", node.link.Name), err)
	}
	return y, true, nil
}

func malformedJoint(j *joint, err error) error {
	return referenceframe.NewMalformedElementError(fmt.Sprintf("joint %q", j.Name), err)
}

// reserve fails when a joint or body name of the description is already taken in the model, which happens
// for names the model gives the universe and the root joint. An empty jointName checks only bodyName.
func (c *compiler) reserve(jointName, bodyName string) error {
	if jointName != "" && c.model.ExistJointName(jointName) {
		return referenceframe.NewMalformedElementError(fmt.Sprintf("joint %q", jointName), errors.New("name is reserved"))
	}
	if c.model.ExistBodyName(bodyName) {
		return referenceframe.NewMalformedElementError(fmt.Sprintf("link %q", bodyName), errors.New("name is reserved"))
	}
	return nil
}

func (c *compiler) logLink(node *linkNode, id int, jm referenceframe.JointModel, placement spatialmath.Transform, y spatialmath.Inertia) {
	if !c.verbose {
		return
	}
	parentLink, jointName := "", RootJointName
	if node.parent != nil {
		parentLink = node.parent.link.Name
	}
	if node.parentJoint != nil {
		jointName = node.parentJoint.Name
	}
	rot := y.RotationalInertia()
	c.logger.Infow("adding link",
		"link", node.link.Name,
		"parent_link", parentLink,
		"joint", jointName,
		"joint_id", id,
		"joint_info", jointInfo(jm),
		"placement", placement.String(),
		"mass", y.Mass(),
		"lever", y.Lever().String(),
		"inertia", []float64{rot.At(0, 0), rot.At(1, 0), rot.At(1, 1), rot.At(2, 0), rot.At(2, 1), rot.At(2, 2)},
	)
}
