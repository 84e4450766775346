package surface

import "testing"

func TestCanvasRendersImmediatelyOutsideBatch(t *testing.T) {
	c := NewCanvas()
	c.AddNode(NodeMeta{ID: "a", Visible: true})
	c.AddNode(NodeMeta{ID: "b", Visible: true})

	if got := c.Renders(); got != 2 {
		t.Errorf("Renders() = %d, want 2", got)
	}
	if got := len(c.Writes()); got != 2 {
		t.Errorf("len(Writes()) = %d, want 2", got)
	}
}

func TestCanvasBatchRendersOnce(t *testing.T) {
	c := NewCanvas()
	var calls int
	c.OnRender = func(*Canvas) { calls++ }

	c.Unfreeze()
	c.AddNode(NodeMeta{ID: "a"})
	c.Unfreeze()
	c.AddNode(NodeMeta{ID: "b"})
	c.Freeze()
	if got := c.Renders(); got != 0 {
		t.Fatalf("inner Freeze rendered: Renders() = %d", got)
	}
	if !c.Batching() {
		t.Fatal("Batching() = false inside outer batch")
	}
	c.Freeze()

	if got := c.Renders(); got != 1 {
		t.Errorf("Renders() = %d, want 1", got)
	}
	if calls != 1 {
		t.Errorf("OnRender calls = %d, want 1", calls)
	}
}

func TestCanvasEmptyBatchDoesNotRender(t *testing.T) {
	c := NewCanvas()
	c.Unfreeze()
	c.Freeze()
	c.Freeze() // unbalanced Freeze is ignored
	if got := c.Renders(); got != 0 {
		t.Errorf("Renders() = %d, want 0", got)
	}
}

func TestCanvasAddNodesIsOneRender(t *testing.T) {
	c := NewCanvas()
	cells := c.AddNodes([]NodeMeta{{ID: "a"}, {ID: "b"}, {ID: "c"}})
	if len(cells) != 3 {
		t.Fatalf("len(cells) = %d, want 3", len(cells))
	}
	if got := c.Renders(); got != 1 {
		t.Errorf("Renders() = %d, want 1", got)
	}
}

func TestCanvasNodeCell(t *testing.T) {
	c := NewCanvas()
	n := c.AddNode(NodeMeta{ID: "a", X: 1, Y: 2, Visible: true})

	n.SetPosition(10, 20)
	n.SetVisible(false)

	if got := n.Position(); got != (Point{X: 10, Y: 20}) {
		t.Errorf("Position() = %v, want {10 20}", got)
	}
	if n.Visible() {
		t.Error("Visible() = true after SetVisible(false)")
	}
	nodes := c.Nodes()
	if len(nodes) != 1 || nodes[0].X != 10 || nodes[0].Visible {
		t.Errorf("Nodes() = %+v", nodes)
	}
	cell, ok := c.GetCellByID("a")
	if !ok || !cell.IsNode() || cell.IsEdge() {
		t.Errorf("GetCellByID(a) = %v, %v", cell, ok)
	}
}

func TestCanvasEdges(t *testing.T) {
	c := NewCanvas()
	c.AddNode(NodeMeta{ID: "a"})
	c.AddNode(NodeMeta{ID: "b"})

	verts := []Point{{X: 1, Y: 2}, {X: 3, Y: 2}}
	e := c.CreateEdge(EdgeDescriptor{ID: "e1", Shape: "org-edge", Source: "a", Target: "b", Vertices: verts})
	if _, ok := c.GetCellByID("e1"); ok {
		t.Fatal("CreateEdge must not add the edge")
	}
	verts[0].X = 99 // the descriptor is copied

	c.AddEdge(e)
	edges := c.Edges()
	if len(edges) != 1 {
		t.Fatalf("len(Edges()) = %d, want 1", len(edges))
	}
	got := edges[0]
	if got.Source != "a" || got.Target != "b" || got.Shape != "org-edge" {
		t.Errorf("edge = %+v", got)
	}
	if got.Vertices[0].X != 1 {
		t.Errorf("vertex aliased caller slice: %v", got.Vertices)
	}

	c.RemoveNode("e1") // wrong kind, ignored
	if _, ok := c.GetCellByID("e1"); !ok {
		t.Fatal("RemoveNode removed an edge")
	}
	c.RemoveEdge("e1")
	if _, ok := c.GetCellByID("e1"); ok {
		t.Fatal("RemoveEdge did not remove the edge")
	}
	if len(c.Edges()) != 0 {
		t.Error("Edges() not empty after removal")
	}
}

func TestCanvasReplaceKeepsOrder(t *testing.T) {
	c := NewCanvas()
	c.AddNode(NodeMeta{ID: "a"})
	c.AddNode(NodeMeta{ID: "b"})
	c.AddNode(NodeMeta{ID: "a", Label: "again"})

	nodes := c.Nodes()
	if len(nodes) != 2 || nodes[0].ID != "a" || nodes[0].Label != "again" {
		t.Errorf("Nodes() = %+v", nodes)
	}

	c.ResetWrites()
	c.RemoveNode("a")
	w := c.Writes()
	if len(w) != 1 || w[0] != (Write{Op: OpRemoveNode, ID: "a"}) {
		t.Errorf("Writes() = %+v", w)
	}
}
