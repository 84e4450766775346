package svg

import (
	"strings"
	"testing"

	"github.com/matzehuels/orgchart/pkg/orgchart"
	"github.com/matzehuels/orgchart/pkg/surface"
)

func family() ([]Box, []Link) {
	boxes := []Box{
		{ID: "ceo", Label: "Ada", X: 68, Y: 0, W: 120, H: 180, Visible: true},
		{ID: "cto", Label: "Grace", X: 0, Y: 212, W: 120, H: 180, Visible: true},
		{ID: "cfo", Label: "Linus", X: 136, Y: 212, W: 120, H: 180, Visible: false},
	}
	links := []Link{
		{ID: "e1", Source: "ceo", Target: "cto", Vertices: []surface.Point{{X: 128, Y: 196}, {X: 60, Y: 196}}},
		{ID: "e2", Source: "ceo", Target: "cfo", Vertices: []surface.Point{{X: 128, Y: 196}, {X: 196, Y: 196}}},
	}
	return boxes, links
}

func TestRender(t *testing.T) {
	boxes, links := family()
	out := string(Render(boxes, links))

	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg"`) {
		t.Fatalf("missing svg header: %q", out[:40])
	}
	if !strings.Contains(out, `id="node-ceo"`) || !strings.Contains(out, `id="node-cto"`) {
		t.Error("visible nodes not drawn")
	}
	if strings.Contains(out, `id="node-cfo"`) {
		t.Error("hidden node drawn")
	}
	if strings.Contains(out, `id="edge-e2"`) {
		t.Error("edge to hidden node drawn")
	}
	if !strings.Contains(out, `d="M 128.0 180.0 L 128.0 196.0 L 60.0 196.0 L 60.0 212.0"`) {
		t.Errorf("unexpected edge path in %s", out)
	}
	// cfo is hidden so the canvas ends at cto: 188 wide with default padding.
	if !strings.Contains(out, `viewBox="0 0 220.0 424.0"`) {
		t.Errorf("unexpected viewBox in %s", out)
	}
}

func TestRenderOptions(t *testing.T) {
	boxes, links := family()
	boxes[0].Kind = "person"
	boxes[0].Details = map[string]any{"office": "Berlin"}

	out := string(Render(boxes, links, WithPadding(0), WithTitle("Acme & Co"), WithDetails()))
	if !strings.Contains(out, "Acme &amp; Co") {
		t.Error("title not escaped")
	}
	if !strings.Contains(out, ">person</text>") {
		t.Error("kind line missing")
	}
	if !strings.Contains(out, "office: Berlin") {
		t.Error("detail line missing")
	}
	if !strings.Contains(out, `<g transform="translate(0.0 48.0)">`) {
		t.Errorf("title offset missing in %s", out)
	}
}

func TestRenderEmpty(t *testing.T) {
	out := string(Render(nil, nil))
	if !strings.Contains(out, `viewBox="0 0 32.0 32.0"`) {
		t.Errorf("empty chart viewBox = %s", out)
	}
}

func TestFromCanvas(t *testing.T) {
	c := orgchart.New()
	c.Init()
	canvas := surface.NewCanvas()
	if err := c.SetGraph(canvas); err != nil {
		t.Fatal(err)
	}
	if _, err := c.AppendRootNodes([]orgchart.NodeSpec{{
		ID: "ceo", Name: "<Ada>",
		Children: []orgchart.NodeSpec{{ID: "cto"}},
	}}); err != nil {
		t.Fatal(err)
	}

	out := string(FromCanvas(canvas))
	if !strings.Contains(out, "&lt;Ada&gt;") {
		t.Error("label not escaped")
	}
	if !strings.Contains(out, `id="node-cto"`) {
		t.Error("child missing")
	}
	if strings.Count(out, `class="edge"`) != 1 {
		t.Errorf("want one edge in %s", out)
	}
}

func TestFromSnapshot(t *testing.T) {
	s := orgchart.Snapshot{
		Nodes: []orgchart.NodeSnapshot{
			{ID: "a", Name: "A", Width: 100, Height: 50, Visible: true},
			{ID: "b", Name: "B", Y: 80, Width: 100, Height: 50, Visible: true},
		},
		Edges: []orgchart.EdgeSnapshot{{ID: "ab", Source: "a", Target: "b"}},
	}
	out := string(FromSnapshot(s))
	if !strings.Contains(out, `d="M 50.0 50.0 L 50.0 80.0"`) {
		t.Errorf("unexpected path in %s", out)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		label string
		width float64
		want  string
	}{
		{"Ada", 120, "Ada"},
		{"A very long job title indeed", 40, "A ver.."},
	}
	for _, tt := range tests {
		if got := truncate(tt.label, tt.width, 8); got != tt.want {
			t.Errorf("truncate(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestFontSizeBounds(t *testing.T) {
	if got := fontSize(1000, 1000, 1); got != fontSizeMax {
		t.Errorf("large area = %v, want %v", got, fontSizeMax)
	}
	if got := fontSize(10, 10, 100); got != fontSizeMin {
		t.Errorf("small area = %v, want %v", got, fontSizeMin)
	}
}
