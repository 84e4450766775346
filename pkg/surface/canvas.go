package surface

import (
	"slices"
	"sync"
)

// Op names a canvas mutation recorded in the write log.
type Op string

const (
	OpAddNode     Op = "add-node"
	OpRemoveNode  Op = "remove-node"
	OpAddEdge     Op = "add-edge"
	OpRemoveEdge  Op = "remove-edge"
	OpSetPosition Op = "set-position"
	OpSetVisible  Op = "set-visible"
)

// Write is one recorded canvas mutation.
type Write struct {
	Op Op
	ID string
}

// Canvas is an in-memory Surface.
//
// It keeps cells in insertion order, records every mutation, and counts
// renders: a render happens when the outermost Unfreeze/Freeze pair closes
// with at least one write inside it, or immediately for writes made outside
// any batch. OnRender, when set, runs after each render.
//
// Canvas is safe for concurrent use.
type Canvas struct {
	mu      sync.Mutex
	cells   map[string]Cell
	order   []string
	depth   int
	pending int
	writes  []Write
	renders int

	// OnRender is called without the lock held.
	OnRender func(c *Canvas)
}

// NewCanvas returns an empty canvas.
func NewCanvas() *Canvas {
	return &Canvas{cells: make(map[string]Cell)}
}

type canvasNode struct {
	c    *Canvas
	meta NodeMeta
}

func (n *canvasNode) ID() string   { return n.meta.ID }
func (n *canvasNode) IsNode() bool { return true }
func (n *canvasNode) IsEdge() bool { return false }

func (n *canvasNode) Position() Point {
	n.c.mu.Lock()
	defer n.c.mu.Unlock()
	return Point{X: n.meta.X, Y: n.meta.Y}
}

func (n *canvasNode) SetPosition(x, y float64) {
	n.c.mu.Lock()
	n.meta.X, n.meta.Y = x, y
	render := n.c.recordLocked(OpSetPosition, n.meta.ID)
	n.c.mu.Unlock()
	n.c.maybeRender(render)
}

func (n *canvasNode) Visible() bool {
	n.c.mu.Lock()
	defer n.c.mu.Unlock()
	return n.meta.Visible
}

func (n *canvasNode) SetVisible(visible bool) {
	n.c.mu.Lock()
	n.meta.Visible = visible
	render := n.c.recordLocked(OpSetVisible, n.meta.ID)
	n.c.mu.Unlock()
	n.c.maybeRender(render)
}

// Meta returns a copy of the node's current description.
func (n *canvasNode) Meta() NodeMeta {
	n.c.mu.Lock()
	defer n.c.mu.Unlock()
	return n.meta
}

type canvasEdge struct {
	desc EdgeDescriptor
}

func (e *canvasEdge) ID() string        { return e.desc.ID }
func (e *canvasEdge) IsNode() bool      { return false }
func (e *canvasEdge) IsEdge() bool      { return true }
func (e *canvasEdge) Source() string    { return e.desc.Source }
func (e *canvasEdge) Target() string    { return e.desc.Target }
func (e *canvasEdge) Vertices() []Point { return slices.Clone(e.desc.Vertices) }

// AddNode implements Surface. Adding an existing id replaces the cell.
func (c *Canvas) AddNode(meta NodeMeta) NodeCell {
	c.mu.Lock()
	n := &canvasNode{c: c, meta: meta}
	c.putLocked(meta.ID, n)
	render := c.recordLocked(OpAddNode, meta.ID)
	c.mu.Unlock()
	c.maybeRender(render)
	return n
}

// AddNodes implements Surface.
func (c *Canvas) AddNodes(metas []NodeMeta) []NodeCell {
	c.Unfreeze()
	defer c.Freeze()
	out := make([]NodeCell, len(metas))
	for i, m := range metas {
		out[i] = c.AddNode(m)
	}
	return out
}

// RemoveNode implements Surface.
func (c *Canvas) RemoveNode(id string) {
	c.mu.Lock()
	cell, ok := c.cells[id]
	if !ok || !cell.IsNode() {
		c.mu.Unlock()
		return
	}
	c.deleteLocked(id)
	render := c.recordLocked(OpRemoveNode, id)
	c.mu.Unlock()
	c.maybeRender(render)
}

// CreateEdge implements Surface.
func (c *Canvas) CreateEdge(desc EdgeDescriptor) EdgeCell {
	desc.Vertices = slices.Clone(desc.Vertices)
	return &canvasEdge{desc: desc}
}

// AddEdge implements Surface. Adding an existing id replaces the cell.
func (c *Canvas) AddEdge(edge EdgeCell) {
	c.mu.Lock()
	c.putLocked(edge.ID(), edge)
	render := c.recordLocked(OpAddEdge, edge.ID())
	c.mu.Unlock()
	c.maybeRender(render)
}

// RemoveEdge implements Surface.
func (c *Canvas) RemoveEdge(id string) {
	c.mu.Lock()
	cell, ok := c.cells[id]
	if !ok || !cell.IsEdge() {
		c.mu.Unlock()
		return
	}
	c.deleteLocked(id)
	render := c.recordLocked(OpRemoveEdge, id)
	c.mu.Unlock()
	c.maybeRender(render)
}

// GetCellByID implements Surface.
func (c *Canvas) GetCellByID(id string) (Cell, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cell, ok := c.cells[id]
	return cell, ok
}

// Unfreeze implements Surface.
func (c *Canvas) Unfreeze() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.depth++
}

// Freeze implements Surface.
func (c *Canvas) Freeze() {
	c.mu.Lock()
	if c.depth == 0 {
		c.mu.Unlock()
		return
	}
	c.depth--
	render := c.depth == 0 && c.pending > 0
	if render {
		c.pending = 0
		c.renders++
	}
	c.mu.Unlock()
	if render && c.OnRender != nil {
		c.OnRender(c)
	}
}

// Batching reports whether a batch is open.
func (c *Canvas) Batching() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.depth > 0
}

// Renders returns how many times the canvas rendered.
func (c *Canvas) Renders() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renders
}

// Writes returns a copy of the mutation log.
func (c *Canvas) Writes() []Write {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.writes)
}

// ResetWrites clears the mutation log.
func (c *Canvas) ResetWrites() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = nil
}

// Nodes returns the node cells' metadata in insertion order.
func (c *Canvas) Nodes() []NodeMeta {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []NodeMeta
	for _, id := range c.order {
		if n, ok := c.cells[id].(*canvasNode); ok {
			out = append(out, n.meta)
		}
	}
	return out
}

// Edges returns the edge cells' descriptors in insertion order.
func (c *Canvas) Edges() []EdgeDescriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []EdgeDescriptor
	for _, id := range c.order {
		if e, ok := c.cells[id].(EdgeCell); ok && e.IsEdge() {
			out = append(out, EdgeDescriptor{
				ID:       e.ID(),
				Shape:    edgeShape(e),
				Source:   e.Source(),
				Target:   e.Target(),
				Vertices: e.Vertices(),
			})
		}
	}
	return out
}

func edgeShape(e EdgeCell) string {
	if ce, ok := e.(*canvasEdge); ok {
		return ce.desc.Shape
	}
	return ""
}

func (c *Canvas) putLocked(id string, cell Cell) {
	if _, exists := c.cells[id]; !exists {
		c.order = append(c.order, id)
	}
	c.cells[id] = cell
}

func (c *Canvas) deleteLocked(id string) {
	delete(c.cells, id)
	c.order = slices.DeleteFunc(c.order, func(s string) bool { return s == id })
}

// recordLocked logs a write and reports whether it must render right away
// because no batch is open.
func (c *Canvas) recordLocked(op Op, id string) bool {
	c.writes = append(c.writes, Write{Op: op, ID: id})
	if c.depth > 0 {
		c.pending++
		return false
	}
	c.renders++
	return true
}

func (c *Canvas) maybeRender(render bool) {
	if render && c.OnRender != nil {
		c.OnRender(c)
	}
}

var _ Surface = (*Canvas)(nil)
