// Package surface defines the rendering surface a chart synchronizes into.
//
// A surface owns visual cells addressed by id: node cells positioned by
// their top-left corner, and edge cells routed through vertices. Mutations
// are grouped into batches: the chart calls Unfreeze before and Freeze after
// every compound change, and a surface renders once when a batch closes.
//
// [Canvas] is the in-memory implementation used by the CLI, the HTTP server
// and tests. Any diagramming backend can be plugged in by implementing
// [Surface].
package surface

// Point is a surface coordinate. y grows downwards.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeMeta describes a node cell to create.
type NodeMeta struct {
	ID        string         `json:"id"`
	X         float64        `json:"x"`
	Y         float64        `json:"y"`
	Width     float64        `json:"width"`
	Height    float64        `json:"height"`
	Shape     string         `json:"shape"`
	Component string         `json:"component,omitempty"`
	Label     string         `json:"label"`
	Visible   bool           `json:"visible"`
	Data      map[string]any `json:"data,omitempty"`
}

// EdgeDescriptor describes an edge cell to create.
type EdgeDescriptor struct {
	ID       string  `json:"id"`
	Shape    string  `json:"shape"`
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Vertices []Point `json:"vertices"`
}

// Cell is a visual element on the surface.
type Cell interface {
	ID() string
	IsNode() bool
	IsEdge() bool
}

// NodeCell is a positioned node box.
type NodeCell interface {
	Cell
	Position() Point
	SetPosition(x, y float64)
	Visible() bool
	SetVisible(visible bool)
}

// EdgeCell is a routed connector.
type EdgeCell interface {
	Cell
	Source() string
	Target() string
	Vertices() []Point
}

// Surface is the rendering surface contract consumed by the chart.
type Surface interface {
	AddNode(meta NodeMeta) NodeCell
	AddNodes(metas []NodeMeta) []NodeCell
	RemoveNode(id string)

	// CreateEdge builds an edge cell without adding it; AddEdge adds it.
	CreateEdge(desc EdgeDescriptor) EdgeCell
	AddEdge(edge EdgeCell)
	RemoveEdge(id string)

	// GetCellByID returns the cell with id, or nil and false.
	GetCellByID(id string) (Cell, bool)

	// Unfreeze opens a batch; Freeze closes it and renders once.
	Unfreeze()
	Freeze()
}
