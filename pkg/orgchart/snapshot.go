package orgchart

import (
	"maps"

	"github.com/matzehuels/orgchart/pkg/layout"
	"github.com/matzehuels/orgchart/pkg/surface"
)

// Snapshot is a serializable view of a chart.
type Snapshot struct {
	Layout string         `json:"layout" bson:"layout"`
	Nodes  []NodeSnapshot `json:"nodes" bson:"nodes"`
	Edges  []EdgeSnapshot `json:"edges" bson:"edges"`
}

// NodeSnapshot is one node of a Snapshot. X and Y are top-left.
type NodeSnapshot struct {
	ID           string         `json:"id" bson:"id"`
	Name         string         `json:"name" bson:"name"`
	Type         string         `json:"type,omitempty" bson:"type,omitempty"`
	Parent       string         `json:"parent,omitempty" bson:"parent,omitempty"`
	Selectable   bool           `json:"selectable,omitempty" bson:"selectable,omitempty"`
	X            float64        `json:"x" bson:"x"`
	Y            float64        `json:"y" bson:"y"`
	Width        float64        `json:"width" bson:"width"`
	Height       float64        `json:"height" bson:"height"`
	Visible      bool           `json:"visible" bson:"visible"`
	ContentProps map[string]any `json:"contentProps,omitempty" bson:"contentProps,omitempty"`
}

// EdgeSnapshot is one edge of a Snapshot.
type EdgeSnapshot struct {
	ID       string          `json:"id" bson:"id"`
	Source   string          `json:"source" bson:"source"`
	Target   string          `json:"target" bson:"target"`
	Vertices []surface.Point `json:"vertices" bson:"vertices"`
}

// Snapshot captures the tracked nodes and edges.
func (c *Chart) Snapshot() Snapshot {
	s := Snapshot{
		Layout: c.layouter.Name(),
		Nodes:  make([]NodeSnapshot, 0, len(c.nodes)),
		Edges:  make([]EdgeSnapshot, 0, len(c.edges)),
	}
	for _, n := range c.nodes {
		s.Nodes = append(s.Nodes, NodeSnapshot{
			ID:           n.id,
			Name:         n.name,
			Type:         n.typ,
			Parent:       n.parent,
			Selectable:   n.selectable,
			X:            n.x,
			Y:            n.y,
			Width:        n.width,
			Height:       n.height,
			Visible:      n.Visible(),
			ContentProps: maps.Clone(n.contentProps),
		})
	}
	for _, e := range c.edges {
		s.Edges = append(s.Edges, EdgeSnapshot{
			ID:       e.id,
			Source:   e.SourceID(),
			Target:   e.TargetID(),
			Vertices: e.Vertices(),
		})
	}
	return s
}

// Specs rebuilds the nested spec tree of the snapshot. Children keep their
// snapshot order; nodes whose parent is missing become roots.
func (s Snapshot) Specs() []NodeSpec {
	known := make(map[string]bool, len(s.Nodes))
	kids := make(map[string][]NodeSnapshot)
	for _, n := range s.Nodes {
		known[n.ID] = true
	}
	var roots []NodeSnapshot
	for _, n := range s.Nodes {
		if n.Parent == "" || !known[n.Parent] {
			roots = append(roots, n)
			continue
		}
		kids[n.Parent] = append(kids[n.Parent], n)
	}
	var build func(n NodeSnapshot, depth int) NodeSpec
	build = func(n NodeSnapshot, depth int) NodeSpec {
		spec := NodeSpec{
			ID:           n.ID,
			Name:         n.Name,
			Type:         n.Type,
			Selectable:   n.Selectable,
			ContentProps: maps.Clone(n.ContentProps),
			Width:        n.Width,
			Height:       n.Height,
		}
		if depth > len(s.Nodes) {
			return spec
		}
		for _, k := range kids[n.ID] {
			spec.Children = append(spec.Children, build(k, depth+1))
		}
		return spec
	}
	out := make([]NodeSpec, 0, len(roots))
	for _, r := range roots {
		out = append(out, build(r, 0))
	}
	return out
}

// Bounds returns the width and height enclosing every node.
func (s Snapshot) Bounds() (width, height float64) {
	for _, n := range s.Nodes {
		width = max(width, n.X+n.Width)
		height = max(height, n.Y+n.Height)
	}
	return width, height
}

// LayoutGraph rebuilds a layout graph from the snapshot's parent links, for
// readers that need the chart structure without a live chart. Nodes whose
// parent is missing become sources.
func (s Snapshot) LayoutGraph(opts layout.Options) *layout.Graph {
	g := layout.NewGraph(opts)
	for _, n := range s.Nodes {
		_ = g.SetNode(n.ID, layout.SizeHint{Width: n.Width, Height: n.Height})
		g.SetPosition(n.ID, layout.Position{X: n.X + n.Width/2, Y: n.Y + n.Height/2})
	}
	for _, n := range s.Nodes {
		if n.Parent != "" {
			_ = g.SetEdge(n.Parent, n.ID, layout.EdgeHint{})
		}
	}
	return g
}
