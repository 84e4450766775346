//go:build integration

package layout

import "testing"

func TestGraphvizLayout(t *testing.T) {
	g := buildGraph(t, []string{"p", "c1", "c2"}, [][2]string{{"p", "c1"}, {"p", "c2"}})

	if err := NewGraphviz().Layout(g); err != nil {
		t.Fatalf("Layout: %v", err)
	}

	p, _ := g.Node("p")
	c1, _ := g.Node("c1")
	c2, _ := g.Node("c2")
	if c1.Y <= p.Y {
		t.Errorf("child above parent: p.Y=%v c1.Y=%v", p.Y, c1.Y)
	}
	if c1.Y != c2.Y {
		t.Errorf("siblings on different ranks: %v vs %v", c1.Y, c2.Y)
	}
}
