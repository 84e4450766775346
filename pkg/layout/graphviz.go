package layout

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
)

// pointsPerInch converts Graphviz inches to surface pixels.
const pointsPerInch = 72.0

// Graphviz lays out graphs with the Graphviz dot engine.
//
// The graph is written as DOT with fixed-size box nodes, rendered in
// Graphviz "plain" format, and the node centers are read back. Graphviz
// measures y upwards from the bottom; positions are flipped so that y grows
// downwards like every other surface coordinate.
type Graphviz struct{}

// NewGraphviz returns the Graphviz engine.
func NewGraphviz() Graphviz { return Graphviz{} }

// Name implements Layouter.
func (Graphviz) Name() string { return "graphviz" }

// Layout implements Layouter.
func (Graphviz) Layout(g *Graph) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if g.NodeCount() == 0 {
		return nil
	}

	dot, names := ToDOT(g)
	plain, err := renderPlain(dot)
	if err != nil {
		return err
	}
	positions, err := parsePlain(plain)
	if err != nil {
		return err
	}

	for name, id := range names {
		pos, ok := positions[name]
		if !ok {
			return fmt.Errorf("graphviz: node %q missing from output", id)
		}
		g.SetPosition(id, pos)
	}
	return nil
}

// ToDOT writes g as a DOT digraph. Nodes are named n0, n1, ... in insertion
// order so arbitrary ids never need quoting; the returned map resolves DOT
// names back to node ids.
func ToDOT(g *Graph) (string, map[string]string) {
	opts := g.opts
	names := make(map[string]string, len(g.order))
	byID := make(map[string]string, len(g.order))

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", opts.RankDir)
	fmt.Fprintf(&buf, "  nodesep=%s;\n", inches(opts.NodeSep))
	fmt.Fprintf(&buf, "  ranksep=%s;\n", inches(opts.RankSep))
	buf.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n")
	buf.WriteString("\n")

	for i, id := range g.order {
		name := "n" + strconv.Itoa(i)
		names[name] = id
		byID[id] = name
		size := g.nodes[id].size
		fmt.Fprintf(&buf, "  %s [width=%s, height=%s];\n", name, inches(size.Width), inches(size.Height))
	}

	buf.WriteString("\n")
	for _, e := range g.edges {
		fmt.Fprintf(&buf, "  %s -> %s [minlen=%d, weight=%d];\n",
			byID[e.From], byID[e.To], e.Hint.minLen(), max(e.Hint.Weight, 1))
	}
	buf.WriteString("}\n")
	return buf.String(), names
}

func inches(px float64) string {
	return strconv.FormatFloat(px/pointsPerInch, 'f', 4, 64)
}

func renderPlain(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.Format("plain"), &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// parsePlain reads node centers from Graphviz plain output:
//
//	graph scale width height
//	node name x y width height label style shape color fillcolor
//	edge ...
//	stop
func parsePlain(data []byte) (map[string]Position, error) {
	positions := make(map[string]Position)
	var scale, height float64
	haveGraph := false

	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "graph":
			if len(fields) < 4 {
				return nil, fmt.Errorf("graphviz: malformed graph line %q", sc.Text())
			}
			var err error
			if scale, err = strconv.ParseFloat(fields[1], 64); err != nil {
				return nil, fmt.Errorf("graphviz: scale: %w", err)
			}
			if height, err = strconv.ParseFloat(fields[3], 64); err != nil {
				return nil, fmt.Errorf("graphviz: height: %w", err)
			}
			haveGraph = true
		case "node":
			if !haveGraph {
				return nil, fmt.Errorf("graphviz: node before graph line")
			}
			if len(fields) < 4 {
				return nil, fmt.Errorf("graphviz: malformed node line %q", sc.Text())
			}
			x, errX := strconv.ParseFloat(fields[2], 64)
			y, errY := strconv.ParseFloat(fields[3], 64)
			if errX != nil || errY != nil {
				return nil, fmt.Errorf("graphviz: bad coordinates in %q", sc.Text())
			}
			positions[fields[1]] = Position{
				X: x * scale * pointsPerInch,
				Y: (height - y) * scale * pointsPerInch,
			}
		case "stop":
			return positions, nil
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return positions, nil
}
