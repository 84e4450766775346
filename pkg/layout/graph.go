package layout

import (
	"encoding/json"
	"errors"
	"slices"

	"github.com/matzehuels/orgchart/pkg/cache"
)

var (
	// ErrInvalidNodeID is returned by [Graph.SetNode] when the id is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrUnknownSourceNode is returned by [Graph.SetEdge] when the source
	// node does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.SetEdge] when the target
	// node does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrGraphHasCycle is returned by [Graph.Validate] when a directed
	// cycle exists. Ranked layouts need an acyclic graph.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Default spacing and node size constants.
const (
	DefaultNodeSep    = 16.0
	DefaultRankSep    = 32.0
	DefaultNodeWidth  = 120.0
	DefaultNodeHeight = 180.0
)

// RankDir is the direction ranks grow in. Only top-to-bottom is supported
// by the tree engine; Graphviz accepts all four.
type RankDir string

const (
	RankDirTB RankDir = "TB"
	RankDirBT RankDir = "BT"
	RankDirLR RankDir = "LR"
	RankDirRL RankDir = "RL"
)

// Options holds graph-level layout settings.
type Options struct {
	RankDir RankDir `json:"rankdir"`
	NodeSep float64 `json:"nodesep"`
	RankSep float64 `json:"ranksep"`
}

// DefaultOptions returns top-to-bottom layout with the default spacing.
func DefaultOptions() Options {
	return Options{RankDir: RankDirTB, NodeSep: DefaultNodeSep, RankSep: DefaultRankSep}
}

func (o *Options) setDefaults() {
	if o.RankDir == "" {
		o.RankDir = RankDirTB
	}
	if o.NodeSep <= 0 {
		o.NodeSep = DefaultNodeSep
	}
	if o.RankSep <= 0 {
		o.RankSep = DefaultRankSep
	}
}

// SizeHint is the fixed box size a node occupies.
type SizeHint struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// EdgeHint tunes how an edge is ranked. Zero values mean MinLen 1, Weight 1.
type EdgeHint struct {
	MinLen int `json:"minlen,omitempty"`
	Weight int `json:"weight,omitempty"`
}

func (h EdgeHint) minLen() int {
	if h.MinLen < 1 {
		return 1
	}
	return h.MinLen
}

// Position is the center of a laid out node.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge is a directed layout edge.
type Edge struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Hint EdgeHint `json:"hint"`
}

type node struct {
	size   SizeHint
	pos    Position
	placed bool
}

// Graph is a mutable directed graph of sized nodes.
//
// The zero value is not usable - use NewGraph.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	opts     Options
	nodes    map[string]*node
	order    []string
	edges    []Edge
	outgoing map[string][]string
	incoming map[string][]string
}

// NewGraph creates an empty layout graph. Unset options take defaults.
func NewGraph(opts Options) *Graph {
	opts.setDefaults()
	return &Graph{
		opts:     opts,
		nodes:    make(map[string]*node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// Options returns the graph-level layout settings.
func (g *Graph) Options() Options { return g.opts }

// SetNode adds a node or updates the size of an existing one.
// Existing positions are kept until the next layout.
func (g *Graph) SetNode(id string, size SizeHint) error {
	if id == "" {
		return ErrInvalidNodeID
	}
	if n, ok := g.nodes[id]; ok {
		n.size = size
		return nil
	}
	g.nodes[id] = &node{size: size}
	g.order = append(g.order, id)
	return nil
}

// SetEdge adds the edge from→to, or updates its hint if it already exists.
func (g *Graph) SetEdge(from, to string, hint EdgeHint) error {
	if _, ok := g.nodes[from]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[to]; !ok {
		return ErrUnknownTargetNode
	}
	for i := range g.edges {
		if g.edges[i].From == from && g.edges[i].To == to {
			g.edges[i].Hint = hint
			return nil
		}
	}
	g.edges = append(g.edges, Edge{From: from, To: to, Hint: hint})
	g.outgoing[from] = append(g.outgoing[from], to)
	g.incoming[to] = append(g.incoming[to], from)
	return nil
}

// RemoveEdge removes the edge from→to if it exists.
func (g *Graph) RemoveEdge(from, to string) {
	g.edges = slices.DeleteFunc(g.edges, func(e Edge) bool { return e.From == from && e.To == to })
	g.outgoing[from] = slices.DeleteFunc(g.outgoing[from], func(s string) bool { return s == to })
	g.incoming[to] = slices.DeleteFunc(g.incoming[to], func(s string) bool { return s == from })
}

// RemoveNode removes a node together with all incident edges.
// Removing an unknown node is a no-op.
func (g *Graph) RemoveNode(id string) {
	if _, ok := g.nodes[id]; !ok {
		return
	}
	for _, to := range slices.Clone(g.outgoing[id]) {
		g.RemoveEdge(id, to)
	}
	for _, from := range slices.Clone(g.incoming[id]) {
		g.RemoveEdge(from, id)
	}
	delete(g.nodes, id)
	delete(g.outgoing, id)
	delete(g.incoming, id)
	g.order = slices.DeleteFunc(g.order, func(s string) bool { return s == id })
}

// HasNode reports whether id is in the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// HasEdge reports whether the edge from→to is in the graph.
func (g *Graph) HasEdge(from, to string) bool {
	return slices.Contains(g.outgoing[from], to)
}

// Node returns the center position of id and whether it has been placed.
func (g *Graph) Node(id string) (Position, bool) {
	n, ok := g.nodes[id]
	if !ok || !n.placed {
		return Position{}, false
	}
	return n.pos, true
}

// Size returns the size hint of id.
func (g *Graph) Size(id string) (SizeHint, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return SizeHint{}, false
	}
	return n.size, true
}

// SetPosition records the computed center of id. Layout engines call this.
func (g *Graph) SetPosition(id string, pos Position) {
	if n, ok := g.nodes[id]; ok {
		n.pos = pos
		n.placed = true
	}
}

// Nodes returns node ids in insertion order.
func (g *Graph) Nodes() []string { return slices.Clone(g.order) }

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Children returns the targets of id's outgoing edges in insertion order.
// The returned slice should not be modified.
func (g *Graph) Children(id string) []string { return g.outgoing[id] }

// Parents returns the sources of id's incoming edges in insertion order.
// The returned slice should not be modified.
func (g *Graph) Parents(id string) []string { return g.incoming[id] }

// Sources returns nodes without incoming edges in insertion order.
func (g *Graph) Sources() []string {
	var out []string
	for _, id := range g.order {
		if len(g.incoming[id]) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// Validate returns ErrGraphHasCycle if the graph has a directed cycle.
//
// Cycle detection runs in O(N+E) time using depth-first search.
func (g *Graph) Validate() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range g.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
			}
			if hasCycle {
				return
			}
		}
		color[id] = black
	}

	for _, id := range g.order {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}

// Hash returns a SHA-256 over everything that influences layout: options,
// nodes with sizes in order, and edges with hints in order.
func (g *Graph) Hash() string {
	type hashNode struct {
		ID   string   `json:"id"`
		Size SizeHint `json:"size"`
	}
	payload := struct {
		Options Options    `json:"options"`
		Nodes   []hashNode `json:"nodes"`
		Edges   []Edge     `json:"edges"`
	}{Options: g.opts, Edges: g.edges}
	for _, id := range g.order {
		payload.Nodes = append(payload.Nodes, hashNode{ID: id, Size: g.nodes[id].size})
	}
	data, _ := json.Marshal(payload)
	return cache.Hash(data)
}

// Positions returns the centers of all placed nodes.
func (g *Graph) Positions() map[string]Position {
	out := make(map[string]Position, len(g.nodes))
	for id, n := range g.nodes {
		if n.placed {
			out[id] = n.pos
		}
	}
	return out
}
