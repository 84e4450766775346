// Package pkg provides the core libraries for orgchart.
//
// # Overview
//
// orgchart keeps an organization chart as a tree of nodes, lays it out top to
// bottom and keeps a rendering surface in sync with every structural change.
// The pkg directory is organized into four areas:
//
//  1. Model: [orgchart] (chart, nodes, derived edges) and [heart] (lifecycle bus)
//  2. Layout: [layout] (tree and Graphviz engines) and [cache] (layout cache)
//  3. Surfaces: [surface] (the sink a chart writes into) and [render] (SVG, DOT, JSON)
//  4. Persistence: [orgio] (definitions and snapshots) and [store] (named snapshots)
//
// [engine] wraps a chart for interactive editing and [errors] carries the
// error codes shared by every package.
//
// # Architecture
//
// The typical data flow:
//
//	Definition file (JSON, TOML, YAML)
//	         ↓
//	    [orgio] package (parse + build)
//	         ↓
//	    [orgchart] package (append nodes, derive edges)
//	         ↓
//	    [layout] package (positions + edge vertices)
//	         ↓
//	    [surface] package (cells updated in place)
//	         ↓
//	    SVG/DOT/JSON output
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/orgchart/pkg/orgchart"
//	    "github.com/matzehuels/orgchart/pkg/orgio"
//	    "github.com/matzehuels/orgchart/pkg/render"
//	    "github.com/matzehuels/orgchart/pkg/surface"
//	)
//
//	// 1. Create a chart bound to an in-memory canvas
//	c := orgchart.New()
//	c.Init()
//	canvas := surface.NewCanvas()
//	_ = c.SetGraph(canvas)
//
//	// 2. Load and build a definition
//	def, _ := orgio.Load("acme.yaml")
//	_, _ = orgio.Build(c, def)
//
//	// 3. Render the laid out chart
//	svg, _ := render.Render(ctx, c.Snapshot(), render.FormatSVG)
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test -run Example                 # Examples only
//	go test -tags integration ./pkg/...  # Include Graphviz, Redis and MongoDB tests
package pkg
