package svg

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/orgchart/pkg/orgchart"
	"github.com/matzehuels/orgchart/pkg/surface"
)

const chartCSS = `
    .node { fill: #ffffff; stroke: #334155; stroke-width: 1.5; }
    .node.highlight { stroke-width: 3; }
    .edge { fill: none; stroke: #64748b; stroke-width: 1.5; }
    .label { font-family: system-ui, sans-serif; fill: #0f172a; }
    .detail { font-family: system-ui, sans-serif; fill: #475569; }
    .title { font-family: system-ui, sans-serif; font-weight: bold; fill: #0f172a; }`

const defaultPadding = 16.0

// Box is a node to draw. X and Y are top-left.
type Box struct {
	ID       string
	Label    string
	Kind     string
	X, Y     float64
	W, H     float64
	Visible  bool
	Details  map[string]any
	Selected bool
}

// Link is an edge to draw.
type Link struct {
	ID       string
	Source   string
	Target   string
	Vertices []surface.Point
}

// Option configures rendering.
type Option func(*renderer)

type renderer struct {
	padding float64
	title   string
	details bool
}

func WithPadding(p float64) Option { return func(r *renderer) { r.padding = max(0, p) } }
func WithTitle(s string) Option    { return func(r *renderer) { r.title = s } }
func WithDetails() Option          { return func(r *renderer) { r.details = true } }

// Render draws boxes and links.
func Render(boxes []Box, links []Link, opts ...Option) []byte {
	r := renderer{padding: defaultPadding}
	for _, opt := range opts {
		opt(&r)
	}

	visible := make(map[string]Box, len(boxes))
	for _, b := range boxes {
		if b.Visible {
			visible[b.ID] = b
		}
	}

	titleHeight := 0.0
	if r.title != "" {
		titleHeight = titleFontSize * 2
	}
	width, height := bounds(visible)
	width += 2 * r.padding
	height += 2*r.padding + titleHeight

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", chartCSS)
	if r.title != "" {
		fmt.Fprintf(&buf, `  <text class="title" x="%.1f" y="%.1f" font-size="%.0f" text-anchor="middle">%s</text>`+"\n",
			width/2, r.padding+titleFontSize, titleFontSize, escapeXML(r.title))
	}
	fmt.Fprintf(&buf, `  <g transform="translate(%.1f %.1f)">`+"\n", r.padding, r.padding+titleHeight)

	for _, l := range links {
		src, ok1 := visible[l.Source]
		tgt, ok2 := visible[l.Target]
		if !ok1 || !ok2 {
			continue
		}
		renderLink(&buf, l, src, tgt)
	}
	for _, b := range boxes {
		if b.Visible {
			renderBox(&buf, b, r.details)
		}
	}

	buf.WriteString("  </g>\n</svg>\n")
	return buf.Bytes()
}

func bounds(boxes map[string]Box) (w, h float64) {
	for _, b := range boxes {
		w = max(w, b.X+b.W)
		h = max(h, b.Y+b.H)
	}
	return w, h
}

func renderLink(buf *bytes.Buffer, l Link, src, tgt Box) {
	x1, y1 := src.X+src.W/2, src.Y+src.H
	x2, y2 := tgt.X+tgt.W/2, tgt.Y
	fmt.Fprintf(buf, `    <path id="edge-%s" class="edge" d="M %.1f %.1f`, escapeXML(l.ID), x1, y1)
	for _, v := range l.Vertices {
		fmt.Fprintf(buf, " L %.1f %.1f", v.X, v.Y)
	}
	fmt.Fprintf(buf, ` L %.1f %.1f"/>`+"\n", x2, y2)
}

func renderBox(buf *bytes.Buffer, b Box, details bool) {
	class := "node"
	if b.Selected {
		class += " highlight"
	}
	fmt.Fprintf(buf, `    <rect id="node-%s" class="%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="6"/>`+"\n",
		escapeXML(b.ID), class, b.X, b.Y, b.W, b.H)

	label := b.Label
	if label == "" {
		label = b.ID
	}
	size := fontSize(b.W, b.H/3, len(label))
	cx := b.X + b.W/2
	y := b.Y + b.H/3
	fmt.Fprintf(buf, `    <text class="label" x="%.1f" y="%.1f" font-size="%.1f" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
		cx, y, size, escapeXML(truncate(label, b.W, size)))

	if !details {
		return
	}
	lines := detailLines(b)
	small := max(fontSizeMin, size*0.6)
	for i, line := range lines {
		ly := y + size + float64(i+1)*small*1.4
		if ly > b.Y+b.H-small/2 {
			break
		}
		fmt.Fprintf(buf, `    <text class="detail" x="%.1f" y="%.1f" font-size="%.1f" text-anchor="middle">%s</text>`+"\n",
			cx, ly, small, escapeXML(truncate(line, b.W, small)))
	}
}

func detailLines(b Box) []string {
	var lines []string
	if b.Kind != "" {
		lines = append(lines, b.Kind)
	}
	for _, k := range slices.Sorted(maps.Keys(b.Details)) {
		lines = append(lines, fmt.Sprintf("%s: %v", k, b.Details[k]))
	}
	return lines
}

// FromCanvas draws the current content of an in-memory surface.
func FromCanvas(c *surface.Canvas, opts ...Option) []byte {
	var boxes []Box
	for _, m := range c.Nodes() {
		kind := ""
		if m.Component != "org-node-content" {
			kind = m.Component
		}
		boxes = append(boxes, Box{
			ID: m.ID, Label: m.Label, Kind: kind,
			X: m.X, Y: m.Y, W: m.Width, H: m.Height,
			Visible: m.Visible, Details: m.Data,
		})
	}
	var links []Link
	for _, e := range c.Edges() {
		links = append(links, Link{ID: e.ID, Source: e.Source, Target: e.Target, Vertices: e.Vertices})
	}
	return Render(boxes, links, opts...)
}

// FromSnapshot draws a stored chart snapshot.
func FromSnapshot(s orgchart.Snapshot, opts ...Option) []byte {
	boxes := make([]Box, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		boxes = append(boxes, Box{
			ID: n.ID, Label: n.Name, Kind: n.Type,
			X: n.X, Y: n.Y, W: n.Width, H: n.Height,
			Visible: n.Visible, Details: n.ContentProps,
		})
	}
	links := make([]Link, 0, len(s.Edges))
	for _, e := range s.Edges {
		links = append(links, Link{ID: e.ID, Source: e.Source, Target: e.Target, Vertices: e.Vertices})
	}
	return Render(boxes, links, opts...)
}
