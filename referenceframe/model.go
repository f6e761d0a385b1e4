// Package referenceframe defines the kinematic tree of a rigid multi-body system: joint models, and the
// append-only Model that stores joints, bodies, placements and inertias in topological order.
package referenceframe

import (
	"fmt"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/rigidbody/spatialmath"
)

// World is the name of the joint and body at index 0.
const World = "universe"

// inertiaTolerance bounds how negative an eigenvalue of a rotational inertia may be before the inertia is rejected.
const inertiaTolerance = 1e-9

// FixedBody is a link that was collapsed onto a movable ancestor because its parent joint is fixed.
// Fixed bodies are kept for visualization and lookups only.
type FixedBody struct {
	Parent    int
	Placement spatialmath.Transform
	Name      string
	HasVisual bool
}

// Model is a kinematic tree of joints in topological order. Index 0 is the universe; every other index i
// holds the joint moving body i, whose parent joint has a smaller index.
// A Model is append-only while it is built and is safe to share for reading afterwards.
type Model struct {
	name string

	joints     []JointModel
	parents    []int
	placements []spatialmath.Transform
	inertias   []spatialmath.Inertia
	limits     []JointLimits
	jointNames []string
	bodyNames  []string
	hasVisual  []bool
	idxQ       []int
	idxV       []int

	fixedBodies []FixedBody
	anchored    spatialmath.Inertia

	jointIDs     map[string]int
	bodyIDs      map[string]int
	fixedBodyIDs map[string]int
	nq, nv       int
}

// NewModel returns a model holding only the universe.
func NewModel(name string) *Model {
	return &Model{
		name:         name,
		joints:       []JointModel{NewFixedJoint()},
		parents:      []int{0},
		placements:   []spatialmath.Transform{spatialmath.IdentityTransform()},
		inertias:     []spatialmath.Inertia{spatialmath.ZeroInertia()},
		limits:       []JointLimits{{}},
		jointNames:   []string{World},
		bodyNames:    []string{World},
		hasVisual:    []bool{false},
		idxQ:         []int{0},
		idxV:         []int{0},
		jointIDs:     map[string]int{World: 0},
		bodyIDs:      map[string]int{World: 0},
		fixedBodyIDs: map[string]int{},
	}
}

// Name returns the name of the model.
func (m *Model) Name() string {
	return m.name
}

// SetName changes the name of the model.
func (m *Model) SetName(name string) {
	m.name = name
}

// AddBody appends a joint moving a new body and returns its index. parent must be an existing index and
// limits must be empty or sized to the joint's degrees of freedom.
func (m *Model) AddBody(
	parent int,
	joint JointModel,
	placement spatialmath.Transform,
	inertia spatialmath.Inertia,
	limits JointLimits,
	jointName, bodyName string,
	hasVisual bool,
) (int, error) {
	if parent < 0 || parent >= len(m.joints) {
		return 0, NewIndexOutOfRangeError(parent, m.NumJoints())
	}
	if joint.Type() == Fixed {
		return 0, NewUnsupportedJointTypeError(jointName, joint.Type().String())
	}
	if m.ExistJointName(jointName) {
		return 0, NewDuplicateNameError("joint", jointName)
	}
	if m.ExistBodyName(bodyName) {
		return 0, NewDuplicateNameError("body", bodyName)
	}
	if err := limits.Validate(joint.NV()); err != nil {
		return 0, err
	}

	id := len(m.joints)
	m.joints = append(m.joints, joint)
	m.parents = append(m.parents, parent)
	m.placements = append(m.placements, placement)
	m.inertias = append(m.inertias, inertia)
	m.limits = append(m.limits, limits)
	m.jointNames = append(m.jointNames, jointName)
	m.bodyNames = append(m.bodyNames, bodyName)
	m.hasVisual = append(m.hasVisual, hasVisual)
	m.idxQ = append(m.idxQ, m.nq)
	m.idxV = append(m.idxV, m.nv)
	m.jointIDs[jointName] = id
	m.bodyIDs[bodyName] = id
	m.nq += joint.NQ()
	m.nv += joint.NV()
	return id, nil
}

// AddFixedBody records a body rigidly attached to the joint parent at placement.
func (m *Model) AddFixedBody(parent int, placement spatialmath.Transform, bodyName string, hasVisual bool) error {
	if parent < 0 || parent >= len(m.joints) {
		return NewIndexOutOfRangeError(parent, m.NumJoints())
	}
	if m.ExistBodyName(bodyName) {
		return NewDuplicateNameError("body", bodyName)
	}
	m.fixedBodyIDs[bodyName] = len(m.fixedBodies)
	m.fixedBodies = append(m.fixedBodies, FixedBody{Parent: parent, Placement: placement, Name: bodyName, HasVisual: hasVisual})
	return nil
}

// MergeFixedBody adds inertia, given in a frame placed at placement relative to the joint parent, to the
// body of parent. Inertia merged onto the universe accumulates in AnchoredInertia.
func (m *Model) MergeFixedBody(parent int, placement spatialmath.Transform, inertia spatialmath.Inertia) error {
	if parent < 0 || parent >= len(m.joints) {
		return NewIndexOutOfRangeError(parent, m.NumJoints())
	}
	moved := placement.ActInertia(inertia)
	if parent == 0 {
		m.anchored = m.anchored.Add(moved)
		return nil
	}
	m.inertias[parent] = m.inertias[parent].Add(moved)
	return nil
}

// NumJoints returns the number of joints, not counting the universe. Valid indices are 0 through NumJoints.
func (m *Model) NumJoints() int {
	return len(m.joints) - 1
}

// NQ returns the dimension of the configuration vector.
func (m *Model) NQ() int {
	return m.nq
}

// NV returns the dimension of the velocity vector.
func (m *Model) NV() int {
	return m.nv
}

// Joint returns the joint model at index i.
func (m *Model) Joint(i int) JointModel {
	return m.joints[i]
}

// Parent returns the index of the parent of joint i. The universe is its own parent.
func (m *Model) Parent(i int) int {
	return m.parents[i]
}

// Placement returns the placement of joint i relative to its parent joint.
func (m *Model) Placement(i int) spatialmath.Transform {
	return m.placements[i]
}

// Inertia returns the inertia of body i expressed in the frame of joint i.
func (m *Model) Inertia(i int) spatialmath.Inertia {
	return m.inertias[i]
}

// Limits returns the limits of joint i.
func (m *Model) Limits(i int) JointLimits {
	return m.limits[i]
}

// JointName returns the name of joint i.
func (m *Model) JointName(i int) string {
	return m.jointNames[i]
}

// BodyName returns the name of body i.
func (m *Model) BodyName(i int) string {
	return m.bodyNames[i]
}

// HasVisual returns whether body i has a visual description.
func (m *Model) HasVisual(i int) bool {
	return m.hasVisual[i]
}

// IdxQ returns the offset of joint i in the configuration vector.
func (m *Model) IdxQ(i int) int {
	return m.idxQ[i]
}

// IdxV returns the offset of joint i in the velocity vector.
func (m *Model) IdxV(i int) int {
	return m.idxV[i]
}

// FixedBodies returns a copy of the bodies collapsed through fixed joints.
func (m *Model) FixedBodies() []FixedBody {
	return append([]FixedBody(nil), m.fixedBodies...)
}

// AnchoredInertia returns the inertia rigidly attached to the universe, expressed in the world frame.
func (m *Model) AnchoredInertia() spatialmath.Inertia {
	return m.anchored
}

// JointNames returns the names of all joints including the universe, in index order.
func (m *Model) JointNames() []string {
	return append([]string(nil), m.jointNames...)
}

// JointID returns the index of the named joint.
func (m *Model) JointID(name string) (int, error) {
	id, ok := m.jointIDs[name]
	if !ok {
		return 0, NewPreconditionViolationError("no joint named %q", name)
	}
	return id, nil
}

// ExistJointName returns whether a joint has the given name.
func (m *Model) ExistJointName(name string) bool {
	_, ok := m.jointIDs[name]
	return ok
}

// BodyID returns the index of the joint that moves the named body. For a fixed body this is the joint
// it was collapsed onto.
func (m *Model) BodyID(name string) (int, error) {
	if id, ok := m.bodyIDs[name]; ok {
		return id, nil
	}
	if id, ok := m.fixedBodyIDs[name]; ok {
		return m.fixedBodies[id].Parent, nil
	}
	return 0, NewPreconditionViolationError("no body named %q", name)
}

// ExistBodyName returns whether a body, movable or fixed, has the given name.
func (m *Model) ExistBodyName(name string) bool {
	_, movable := m.bodyIDs[name]
	_, fixed := m.fixedBodyIDs[name]
	return movable || fixed
}

// Supports returns the joints on the kinematic path from the universe to joint j, in increasing order and
// including j. The universe itself is not included.
func (m *Model) Supports(j int) []int {
	var path []int
	for i := j; i > 0; i = m.parents[i] {
		path = append(path, i)
	}
	slices.Reverse(path)
	return path
}

// Mass returns the total mass of the model, including the anchored inertia.
func (m *Model) Mass() float64 {
	return lo.SumBy(m.inertias, func(y spatialmath.Inertia) float64 { return y.Mass() }) + m.anchored.Mass()
}

// Validate checks the structural invariants of the model and returns every violation found.
func (m *Model) Validate() error {
	var errs error
	nq, nv := 0, 0
	for i := 1; i < len(m.joints); i++ {
		if m.parents[i] < 0 || m.parents[i] >= i {
			errs = multierr.Append(errs, NewPreconditionViolationError("joint %d has parent %d", i, m.parents[i]))
		}
		if m.joints[i].Type() == Fixed {
			errs = multierr.Append(errs, NewPreconditionViolationError("joint %q is fixed", m.jointNames[i]))
		}
		if !m.inertias[i].IsPositiveSemidefinite(inertiaTolerance) {
			errs = multierr.Append(errs, NewPreconditionViolationError("inertia of body %q is not positive semidefinite", m.bodyNames[i]))
		}
		if m.idxQ[i] != nq || m.idxV[i] != nv {
			errs = multierr.Append(errs, NewPreconditionViolationError("joint %q has offsets (%d, %d), want (%d, %d)",
				m.jointNames[i], m.idxQ[i], m.idxV[i], nq, nv))
		}
		if err := m.limits[i].Validate(m.joints[i].NV()); err != nil {
			errs = multierr.Append(errs, err)
		}
		nq += m.joints[i].NQ()
		nv += m.joints[i].NV()
	}
	if nq != m.nq || nv != m.nv {
		errs = multierr.Append(errs, NewPreconditionViolationError("model has nq=%d nv=%d, joints sum to nq=%d nv=%d", m.nq, m.nv, nq, nv))
	}
	if !m.anchored.IsPositiveSemidefinite(inertiaTolerance) {
		errs = multierr.Append(errs, NewPreconditionViolationError("anchored inertia is not positive semidefinite"))
	}
	for _, dup := range lo.FindDuplicates(m.jointNames) {
		errs = multierr.Append(errs, NewDuplicateNameError("joint", dup))
	}
	bodies := append(append([]string(nil), m.bodyNames...), lo.Map(m.fixedBodies, func(b FixedBody, _ int) string { return b.Name })...)
	for _, dup := range lo.FindDuplicates(bodies) {
		errs = multierr.Append(errs, NewDuplicateNameError("body", dup))
	}
	return errs
}

// String prints out a table of each joint in the model, with columns of index, name, type, parent, body and mass.
func (m *Model) String() string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("%s (nq=%d, nv=%d)", m.name, m.nq, m.nv))
	t.AppendHeader(table.Row{"#", "Joint", "Type", "Parent", "Body", "Translation", "Mass"})
	for i := range m.joints {
		jointType := m.joints[i].String()
		parent := m.jointNames[m.parents[i]]
		if i == 0 {
			jointType, parent = "", ""
		}
		tra := m.placements[i].Translation()
		t.AppendRow([]interface{}{
			fmt.Sprintf("%d", i),
			m.jointNames[i],
			jointType,
			parent,
			m.bodyNames[i],
			fmt.Sprintf("X:%.3f, Y:%.3f, Z:%.3f", tra.X, tra.Y, tra.Z),
			fmt.Sprintf("%.3f", m.inertias[i].Mass()),
		})
	}
	for _, body := range m.fixedBodies {
		tra := body.Placement.Translation()
		t.AppendRow([]interface{}{
			"-",
			"",
			Fixed.String(),
			m.jointNames[body.Parent],
			body.Name,
			fmt.Sprintf("X:%.3f, Y:%.3f, Z:%.3f", tra.X, tra.Y, tra.Z),
			"",
		})
	}
	return t.Render()
}
