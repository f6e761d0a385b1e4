package urdf

import (
	"slices"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"go.viam.com/rigidbody/referenceframe"
)

// linkNode is a link of the description together with the joint connecting it to its parent link.
// The root has no parent joint.
type linkNode struct {
	link        *link
	parentJoint *joint
	parent      *linkNode
	children    []*linkNode
}

// buildLinkTree checks the structure of a parsed description and arranges its links into a tree. The root
// is the first link, in document order, without a parent joint. Children are ordered by joint name.
func buildLinkTree(cfg *ModelConfig) (*linkNode, error) {
	if len(cfg.Links) == 0 {
		return nil, errors.New("robot has no links")
	}

	nodes := make(map[string]*linkNode, len(cfg.Links))
	ids := make(map[string]int64, len(cfg.Links))
	g := simple.NewDirectedGraph()
	for i := range cfg.Links {
		l := &cfg.Links[i]
		if l.Name == "" {
			return nil, errors.Errorf("link %d has no name", i)
		}
		if _, ok := nodes[l.Name]; ok {
			return nil, errors.Errorf("duplicate link name %q", l.Name)
		}
		nodes[l.Name] = &linkNode{link: l}
		ids[l.Name] = int64(i)
		g.AddNode(simple.Node(i))
	}

	jointNames := make(map[string]struct{}, len(cfg.Joints))
	for i := range cfg.Joints {
		j := &cfg.Joints[i]
		if j.Name == "" {
			return nil, errors.Errorf("joint %d has no name", i)
		}
		if _, ok := jointNames[j.Name]; ok {
			return nil, errors.Errorf("duplicate joint name %q", j.Name)
		}
		jointNames[j.Name] = struct{}{}
		if j.Parent == nil || j.Child == nil {
			return nil, errors.Errorf("joint %q needs both a parent and a child link", j.Name)
		}
		parent, ok := nodes[j.Parent.Link]
		if !ok {
			return nil, errors.Errorf("joint %q references unknown parent link %q", j.Name, j.Parent.Link)
		}
		child, ok := nodes[j.Child.Link]
		if !ok {
			return nil, errors.Errorf("joint %q references unknown child link %q", j.Name, j.Child.Link)
		}
		if parent == child {
			return nil, errors.Errorf("joint %q connects link %q to itself", j.Name, j.Child.Link)
		}
		if child.parentJoint != nil {
			return nil, errors.Errorf("link %q has two parent joints %q and %q", j.Child.Link, child.parentJoint.Name, j.Name)
		}
		child.parentJoint = j
		child.parent = parent
		parent.children = append(parent.children, child)
		g.SetEdge(g.NewEdge(simple.Node(ids[j.Parent.Link]), simple.Node(ids[j.Child.Link])))
	}

	if _, err := topo.Sort(g); err != nil {
		return nil, errors.Wrap(err, "links do not form a tree")
	}

	var root *linkNode
	for i := range cfg.Links {
		node := nodes[cfg.Links[i].Name]
		if node.parentJoint != nil {
			continue
		}
		if root != nil {
			return nil, referenceframe.NewMissingJointError(node.link.Name)
		}
		root = node
	}
	if root == nil {
		return nil, errors.New("no root link")
	}

	for _, node := range nodes {
		slices.SortFunc(node.children, func(a, b *linkNode) int {
			return strings.Compare(a.parentJoint.Name, b.parentJoint.Name)
		})
	}
	return root, nil
}
