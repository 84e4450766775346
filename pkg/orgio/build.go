package orgio

import (
	"github.com/matzehuels/orgchart/pkg/orgchart"
)

// Build appends every node of def to c and returns them in append order.
//
// Roots are appended first, then children level by level. The chart must
// be bound to a surface.
func Build(c *orgchart.Chart, def Definition) ([]*orgchart.Node, error) {
	roots, err := c.AppendRootNodes(def.Nodes)
	if err != nil {
		return nil, err
	}
	type pending struct {
		node  *orgchart.Node
		specs []orgchart.NodeSpec
	}
	out := append([]*orgchart.Node(nil), roots...)
	queue := make([]pending, 0, len(roots))
	for i, n := range roots {
		queue = append(queue, pending{n, def.Nodes[i].Children})
	}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if len(p.specs) == 0 {
			continue
		}
		kids, err := p.node.AppendNodes(p.specs)
		if err != nil {
			return out, err
		}
		out = append(out, kids...)
		for i, k := range kids {
			queue = append(queue, pending{k, p.specs[i].Children})
		}
	}
	return out, nil
}

// Restore rebuilds a stored snapshot into c and hides the nodes that were
// hidden when it was taken. Positions come from a fresh layout.
func Restore(c *orgchart.Chart, s orgchart.Snapshot) ([]*orgchart.Node, error) {
	nodes, err := Build(c, Definition{Version: CurrentVersion, Nodes: s.Specs()})
	if err != nil {
		return nodes, err
	}
	for _, ns := range s.Nodes {
		if ns.Visible {
			continue
		}
		if n, ok := c.NodeByID(ns.ID); ok {
			if err := n.SetVisible(false); err != nil {
				return nodes, err
			}
		}
	}
	return nodes, nil
}
