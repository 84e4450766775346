package orgchart

import (
	"maps"
	"slices"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/heart"
	"github.com/matzehuels/orgchart/pkg/layout"
	"github.com/matzehuels/orgchart/pkg/surface"
)

// Node is a box in the chart.
//
// Parent and children are ids resolved through the owning chart; all
// structural edits are made by the chart. A node is tracked once appended
// and stops being tracked when removed.
type Node struct {
	chart *Chart

	id           string
	name         string
	typ          string
	selectable   bool
	contentProps map[string]any

	width, height float64
	x, y          float64
	placed        bool

	mounted bool
	hidden  bool

	parent   string
	children []string
}

func (n *Node) ID() string                   { return n.id }
func (n *Node) Name() string                 { return n.name }
func (n *Node) Type() string                 { return n.typ }
func (n *Node) Selectable() bool             { return n.selectable }
func (n *Node) Chart() *Chart                { return n.chart }
func (n *Node) Width() float64               { return n.width }
func (n *Node) Height() float64              { return n.height }
func (n *Node) X() float64                   { return n.x }
func (n *Node) Y() float64                   { return n.y }
func (n *Node) Placed() bool                 { return n.placed }
func (n *Node) Mounted() bool                { return n.mounted }
func (n *Node) ContentProps() map[string]any { return maps.Clone(n.contentProps) }

// Visible reports whether the node is mounted and not hidden.
func (n *Node) Visible() bool { return n.mounted && !n.hidden }

// Tracked reports whether the node is part of its chart.
func (n *Node) Tracked() bool { return n.chart.tracks(n) }

// Parent returns the parent node, or nil for roots and detached nodes.
func (n *Node) Parent() *Node { return n.chart.lookup(n.parent) }

// Children returns the child nodes in append order.
func (n *Node) Children() []*Node {
	out := make([]*Node, 0, len(n.children))
	for _, id := range n.children {
		if c := n.chart.lookup(id); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Root walks parent links to the topmost ancestor. A root is its own root.
func (n *Node) Root() *Node {
	cur := n
	for steps := 0; steps <= len(n.chart.registry); steps++ {
		p := cur.Parent()
		if p == nil {
			return cur
		}
		cur = p
	}
	return cur
}

// Depth returns the number of ancestors.
func (n *Node) Depth() int {
	d := 0
	for p := n.Parent(); p != nil && d <= len(n.chart.registry); p = p.Parent() {
		d++
	}
	return d
}

// Contains reports whether n is one of nodes, by identity.
func (n *Node) Contains(nodes ...*Node) bool {
	return slices.Contains(nodes, n)
}

// Meta returns the surface projection of the node.
func (n *Node) Meta() surface.NodeMeta {
	component := n.typ
	if component == "" {
		component = "org-node-content"
	}
	return surface.NodeMeta{
		ID:        n.id,
		X:         n.x,
		Y:         n.y,
		Width:     n.width,
		Height:    n.height,
		Shape:     NodeShape,
		Component: component,
		Label:     n.name,
		Visible:   !n.hidden,
		Data:      maps.Clone(n.contentProps),
	}
}

// AppendNodes creates a child per spec and appends each under n in one
// batch. Nested Children are ignored.
func (n *Node) AppendNodes(specs []NodeSpec) ([]*Node, error) {
	c := n.chart
	if err := c.requireSurface(); err != nil {
		return nil, err
	}
	if !c.tracks(n) {
		return nil, errors.New(errors.ErrCodeParentNotFound, "parent %q is not tracked", n.id)
	}
	if err := c.validateSpecs(specs); err != nil {
		return nil, err
	}
	out := make([]*Node, 0, len(specs))
	err := c.batch(func() error {
		for _, s := range specs {
			child := c.newNode(s)
			if err := c.AppendChildNode(child, n); err != nil {
				return err
			}
			out = append(out, child)
		}
		return nil
	})
	return out, err
}

// SetPosition moves the node's top-left corner. Nothing is written when
// the node is already at (x, y). A detached node only records the
// position.
func (n *Node) SetPosition(x, y float64) error {
	if n.placed && n.x == x && n.y == y {
		return nil
	}
	tracked := n.chart.tracks(n)
	if tracked {
		if err := n.chart.requireSurface(); err != nil {
			return err
		}
	}
	n.x, n.y, n.placed = x, y, true
	if !tracked {
		return nil
	}
	return n.chart.SetNodePosition(n)
}

// SetVisible shows or hides the node.
func (n *Node) SetVisible(visible bool) error {
	if n.hidden == !visible {
		return nil
	}
	tracked := n.chart.tracks(n)
	if tracked {
		if err := n.chart.requireSurface(); err != nil {
			return err
		}
	}
	n.hidden = !visible
	if !tracked {
		return nil
	}
	return n.chart.SetNodeVisible(n)
}

// Mount adds the node to the surface. Mounting twice does nothing.
func (n *Node) Mount() error {
	if n.mounted {
		return nil
	}
	c := n.chart
	if err := c.requireSurface(); err != nil {
		return err
	}
	if !c.tracks(n) {
		return errors.New(errors.ErrCodeNodeNotFound, "node %q is not tracked", n.id)
	}
	return c.batch(func() error {
		if _, ok := c.nodeCell(n.id); !ok {
			c.addCell(n)
		}
		n.mounted = true
		return nil
	})
}

// Remove detaches n and its subtree from the chart. Incident edges leave
// the chart, the layout graph and the surface in the same batch, then the
// remaining nodes are laid out again. Descendants are discarded; n itself
// can be reattached with ResetParent.
func (n *Node) Remove() error {
	c := n.chart
	if err := c.requireSurface(); err != nil {
		return err
	}
	if !c.tracks(n) {
		return errors.New(errors.ErrCodeNodeNotFound, "node %q is not tracked", n.id)
	}
	return c.batch(func() error {
		subtree := n.subtree()
		gone := make(map[string]bool, len(subtree))
		for _, s := range subtree {
			gone[s.id] = true
		}
		c.edges = slices.DeleteFunc(c.edges, func(e *Edge) bool {
			if !gone[e.SourceID()] && !gone[e.TargetID()] {
				return false
			}
			c.dropEdge(e)
			return true
		})
		if p := n.Parent(); p != nil {
			p.children = slices.DeleteFunc(p.children, func(id string) bool { return id == n.id })
		}
		for _, s := range subtree {
			c.graph.RemoveNode(s.id)
			c.surface.RemoveNode(s.id)
			c.writes++
			c.untrack(s)
			s.placed = false
			s.parent = ""
			s.children = nil
		}
		if len(c.nodes) == 0 {
			return nil
		}
		return c.layout()
	})
}

// ResetParent moves n, with its subtree, under newParent. A detached node
// is registered again and appended as a leaf.
func (n *Node) ResetParent(newParent *Node) error {
	c := n.chart
	if err := c.requireSurface(); err != nil {
		return err
	}
	if newParent == nil || !c.tracks(newParent) {
		return errors.New(errors.ErrCodeParentNotFound, "parent %s is not tracked", nodeName(newParent))
	}
	if newParent == n || n.isAncestorOf(newParent) {
		return errors.New(errors.ErrCodeCycle, "cannot move %q under its own descendant %q", n.id, newParent.id)
	}
	if !c.tracks(n) {
		return c.AppendChildNode(n, newParent)
	}
	if n.parent == newParent.id {
		return nil
	}
	return c.batch(func() error {
		if old := n.Parent(); old != nil {
			old.children = slices.DeleteFunc(old.children, func(id string) bool { return id == n.id })
			c.edges = slices.DeleteFunc(c.edges, func(e *Edge) bool {
				if e.source != old || e.target != n {
					return false
				}
				c.dropEdge(e)
				return true
			})
		}
		n.parent = newParent.id
		newParent.children = append(newParent.children, n.id)
		if err := c.graph.SetEdge(newParent.id, n.id, layout.EdgeHint{}); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "add edge %q -> %q to layout graph", newParent.id, n.id)
		}
		c.edges = append(c.edges, newEdge(c, newParent, n))
		return c.layout()
	})
}

// subtree returns n and its tracked descendants breadth-first.
func (n *Node) subtree() []*Node {
	out := []*Node{n}
	for i := 0; i < len(out); i++ {
		out = append(out, out[i].Children()...)
	}
	return out
}

// isAncestorOf reports whether n is a proper ancestor of other.
func (n *Node) isAncestorOf(other *Node) bool {
	steps := 0
	for p := other.Parent(); p != nil && steps <= len(n.chart.registry); p = p.Parent() {
		if p == n {
			return true
		}
		steps++
	}
	return false
}

func (n *Node) size() layout.SizeHint {
	return layout.SizeHint{Width: n.width, Height: n.height}
}

// AppendedNodes extracts the nodes carried by an onNodesAppend
// notification.
func AppendedNodes(t heart.LifeCycleType, payload any) []*Node {
	if t != heart.OnNodesAppend {
		return nil
	}
	nodes, _ := payload.([]*Node)
	return nodes
}
