package orgchart

import (
	"slices"
	"testing"

	"github.com/matzehuels/orgchart/pkg/layout"
)

func TestSnapshot(t *testing.T) {
	c, _ := newBoundChart(t)
	p, _, _ := buildFamily(t, c)
	if err := p.SetVisible(false); err != nil {
		t.Fatalf("SetVisible: %v", err)
	}

	s := c.Snapshot()
	if s.Layout != "tree" || len(s.Nodes) != 3 || len(s.Edges) != 2 {
		t.Fatalf("Snapshot() = %+v", s)
	}
	if s.Nodes[0].ID != "p" || s.Nodes[0].Visible || s.Nodes[1].Parent != "p" {
		t.Errorf("nodes = %+v", s.Nodes)
	}
	if len(s.Edges[0].Vertices) != 2 {
		t.Errorf("edge vertices = %v", s.Edges[0].Vertices)
	}
	if w, h := s.Bounds(); w != 256 || h != 392 {
		t.Errorf("Bounds() = %v x %v, want 256 x 392", w, h)
	}
}

func TestSnapshotSpecsRebuildChart(t *testing.T) {
	c, _ := newBoundChart(t)
	_, c1, _ := buildFamily(t, c)
	if _, err := c1.AppendNodes([]NodeSpec{{ID: "g"}}); err != nil {
		t.Fatalf("AppendNodes: %v", err)
	}

	specs := c.Snapshot().Specs()
	if len(specs) != 1 || specs[0].ID != "p" || specs[0].Count() != 4 {
		t.Fatalf("Specs() = %+v", specs)
	}
	if got := specs[0].Children[0].Children[0].ID; got != "g" {
		t.Errorf("grandchild = %q, want g", got)
	}
}

func TestSnapshotSpecsOrphans(t *testing.T) {
	s := Snapshot{Nodes: []NodeSnapshot{
		{ID: "a"},
		{ID: "b", Parent: "missing"},
	}}
	if got := len(s.Specs()); got != 2 {
		t.Errorf("Specs() roots = %d, want 2", got)
	}
}

func TestSnapshotLayoutGraph(t *testing.T) {
	c, _ := newBoundChart(t)
	buildFamily(t, c)

	g := c.Snapshot().LayoutGraph(c.Graph().Options())
	if g.NodeCount() != 3 || g.EdgeCount() != 2 {
		t.Fatalf("graph has %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}
	pos, ok := g.Node("p")
	if !ok || pos.X != 128 || pos.Y != 90 {
		t.Errorf("Node(p) = %v, %v, want center (128, 90)", pos, ok)
	}
}

func TestSnapshotLayoutGraphFromParents(t *testing.T) {
	s := Snapshot{Nodes: []NodeSnapshot{
		{ID: "b", Parent: "a"},
		{ID: "a"},
		{ID: "c", Parent: "a"},
		{ID: "orphan", Parent: "gone"},
	}}
	g := s.LayoutGraph(layout.DefaultOptions())
	if g.EdgeCount() != 2 {
		t.Fatalf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
	if got := g.Sources(); !slices.Equal(got, []string{"a", "orphan"}) {
		t.Errorf("Sources() = %v", got)
	}
	if got := g.Children("a"); !slices.Equal(got, []string{"b", "c"}) {
		t.Errorf("Children(a) = %v", got)
	}
}
