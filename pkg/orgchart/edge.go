package orgchart

import (
	"slices"

	"github.com/matzehuels/orgchart/pkg/surface"
)

// Edge connects a parent to a child. Endpoints are fixed at creation.
type Edge struct {
	chart    *Chart
	id       string
	source   *Node
	target   *Node
	mounted  bool
	vertices []surface.Point
}

func newEdge(c *Chart, source, target *Node) *Edge {
	return &Edge{chart: c, id: c.newID(), source: source, target: target}
}

func (e *Edge) ID() string       { return e.id }
func (e *Edge) Source() *Node    { return e.source }
func (e *Edge) Target() *Node    { return e.target }
func (e *Edge) SourceID() string { return e.source.id }
func (e *Edge) TargetID() string { return e.target.id }
func (e *Edge) Mounted() bool    { return e.mounted }

// Vertices returns the last route pushed to the surface.
func (e *Edge) Vertices() []surface.Point { return slices.Clone(e.vertices) }

// Mount routes the edge on the surface. Mounting twice does nothing.
// An edge dropped by Remove or ResetParent cannot be mounted again.
func (e *Edge) Mount() error {
	if e.mounted {
		return nil
	}
	return e.chart.SetEdgeVertices(e, e.source, e.target)
}

func (c *Chart) dropEdge(e *Edge) {
	c.graph.RemoveEdge(e.SourceID(), e.TargetID())
	if _, ok := c.surface.GetCellByID(e.id); ok {
		c.surface.RemoveEdge(e.id)
		c.writes++
	}
	e.mounted = false
	e.vertices = nil
}
