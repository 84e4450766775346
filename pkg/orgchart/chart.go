package orgchart

import (
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/heart"
	"github.com/matzehuels/orgchart/pkg/layout"
	"github.com/matzehuels/orgchart/pkg/observability"
	"github.com/matzehuels/orgchart/pkg/surface"
)

// Visual shapes handed to the surface.
const (
	NodeShape = "org-node"
	EdgeShape = "org-edge"
)

// Chart is the aggregate root of an organization chart.
type Chart struct {
	registry map[string]*Node
	nodes    []*Node
	edges    []*Edge
	graph    *layout.Graph

	layouter   layout.Layouter
	layoutOpts layout.Options
	nodeWidth  float64
	nodeHeight float64
	heart      *heart.Heart
	logger     *log.Logger
	newID      func() string

	surface surface.Surface

	initialized bool
	mounted     bool
	unmounted   bool
	editable    bool

	depth    int
	writes   int
	passes   int
	appended []*Node
}

// New creates an empty chart.
func New(opts ...Option) *Chart {
	c := &Chart{
		registry:   make(map[string]*Node),
		layouter:   layout.NewTree(),
		layoutOpts: layout.DefaultOptions(),
		nodeWidth:  layout.DefaultNodeWidth,
		nodeHeight: layout.DefaultNodeHeight,
		newID:      defaultID,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	if c.heart == nil {
		c.heart = heart.New(c.logger)
	}
	c.graph = layout.NewGraph(c.layoutOpts)
	return c
}

// Heart returns the lifecycle bus the chart publishes to.
func (c *Chart) Heart() *heart.Heart { return c.heart }

// Layouter returns the configured layout engine.
func (c *Chart) Layouter() layout.Layouter { return c.layouter }

// Graph returns the layout graph. Callers must not mutate it.
func (c *Chart) Graph() *layout.Graph { return c.graph }

// Surface returns the bound surface, or nil.
func (c *Chart) Surface() surface.Surface { return c.surface }

// Initialized reports whether Init ran.
func (c *Chart) Initialized() bool { return c.initialized }

// Mounted reports whether a surface is bound.
func (c *Chart) Mounted() bool { return c.mounted }

// Unmounted reports whether Unmount ran.
func (c *Chart) Unmounted() bool { return c.unmounted }

// Editable reports whether SetEditable ran.
func (c *Chart) Editable() bool { return c.editable }

// LayoutPasses returns how many times the layouter ran.
func (c *Chart) LayoutPasses() int { return c.passes }

// Init marks the chart initialized and raises onOrgChartInit once.
func (c *Chart) Init() {
	if c.initialized {
		return
	}
	c.initialized = true
	c.Notify(heart.OnOrgChartInit, nil)
}

// SetGraph binds the rendering surface and raises onOrgChartMount.
// Binding the same surface again is a no-op; binding a different one fails.
func (c *Chart) SetGraph(s surface.Surface) error {
	if s == nil {
		return errors.New(errors.ErrCodeInvalidInput, "surface is nil")
	}
	if c.surface != nil {
		if c.surface == s {
			return nil
		}
		return errors.New(errors.ErrCodeSurfaceAlreadyBound, "chart is already bound to a surface")
	}
	c.surface = s
	c.mounted = true
	c.Notify(heart.OnOrgChartMount, nil)
	return nil
}

// SetEditable marks the chart editable and raises onOrgChartEditable once.
func (c *Chart) SetEditable() error {
	if err := c.requireSurface(); err != nil {
		return err
	}
	if c.editable {
		return nil
	}
	c.editable = true
	c.Notify(heart.OnOrgChartEditable, nil)
	return nil
}

// Unmount raises onOrgChartUnmount once. The surface stays bound.
func (c *Chart) Unmount() {
	if c.unmounted {
		return
	}
	c.unmounted = true
	c.Notify(heart.OnOrgChartUnmount, nil)
}

// Notify publishes t to the lifecycle bus. A nil payload becomes the chart.
func (c *Chart) Notify(t heart.LifeCycleType, payload any) {
	if payload == nil {
		payload = c
	}
	c.heart.Publish(t, payload)
}

// NewNode builds a detached node owned by this chart. It is registered
// when appended.
func (c *Chart) NewNode(spec NodeSpec) (*Node, error) {
	if err := errors.ValidateNodeID(spec.ID); err != nil {
		return nil, err
	}
	if spec.Width < 0 || spec.Height < 0 {
		return nil, errors.New(errors.ErrCodeInvalidSpec, "node %q: negative size %gx%g", spec.ID, spec.Width, spec.Height)
	}
	if _, ok := c.registry[spec.ID]; ok {
		return nil, errors.New(errors.ErrCodeDuplicateID, "node id %q already registered", spec.ID)
	}
	return c.newNode(spec), nil
}

// AppendRootNodes creates a parentless node per spec and appends each.
// Nested Children are ignored.
func (c *Chart) AppendRootNodes(specs []NodeSpec) ([]*Node, error) {
	if err := c.requireSurface(); err != nil {
		return nil, err
	}
	if err := c.validateSpecs(specs); err != nil {
		return nil, err
	}
	out := make([]*Node, 0, len(specs))
	err := c.batch(func() error {
		for _, s := range specs {
			n := c.newNode(s)
			if err := c.AppendNode(n); err != nil {
				return err
			}
			out = append(out, n)
		}
		return nil
	})
	return out, err
}

// AppendNode tracks n as a root and reruns layout. Appending a tracked
// node again does nothing.
func (c *Chart) AppendNode(n *Node) error {
	if err := c.requireSurface(); err != nil {
		return err
	}
	if err := c.checkAppendable(n); err != nil {
		return err
	}
	if c.tracks(n) {
		return nil
	}
	return c.batch(func() error {
		c.track(n)
		c.appended = append(c.appended, n)
		if err := c.graph.SetNode(n.id, n.size()); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "add node %q to layout graph", n.id)
		}
		return c.layout()
	})
}

// AppendChildNode tracks child under parent, derives the parent-child edge
// and reruns layout. Appending a tracked child under the same parent again
// does nothing.
func (c *Chart) AppendChildNode(child, parent *Node) error {
	if err := c.requireSurface(); err != nil {
		return err
	}
	if parent == nil || !c.tracks(parent) {
		return errors.New(errors.ErrCodeParentNotFound, "parent %s is not tracked", nodeName(parent))
	}
	if err := c.checkAppendable(child); err != nil {
		return err
	}
	if c.tracks(child) {
		if child.parent == parent.id {
			return nil
		}
		return errors.New(errors.ErrCodeInvalidInput, "node %q already has a parent; use ResetParent", child.id)
	}
	if child == parent || child.isAncestorOf(parent) {
		return errors.New(errors.ErrCodeCycle, "node %q cannot be its own descendant", child.id)
	}
	return c.batch(func() error {
		c.appended = append(c.appended, child)
		return c.attach(child, parent)
	})
}

// attach links child under parent in the tree, registry, layout graph and
// edge list, then relayouts.
func (c *Chart) attach(child, parent *Node) error {
	c.track(child)
	child.parent = parent.id
	if !slices.Contains(parent.children, child.id) {
		parent.children = append(parent.children, child.id)
	}
	if err := c.graph.SetNode(child.id, child.size()); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "add node %q to layout graph", child.id)
	}
	if err := c.graph.SetEdge(parent.id, child.id, layout.EdgeHint{}); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "add edge %q -> %q to layout graph", parent.id, child.id)
	}
	c.edges = append(c.edges, newEdge(c, parent, child))
	return c.layout()
}

// Layout reruns the layouter over the whole layout graph and pushes node
// positions and edge routes to the surface in one batch.
func (c *Chart) Layout() error {
	if err := c.requireSurface(); err != nil {
		return err
	}
	return c.batch(c.layout)
}

func (c *Chart) layout() error {
	name := c.layouter.Name()
	count := c.graph.NodeCount()
	hooks := observability.Layout()
	hooks.OnLayoutStart(name, count)
	start := time.Now()
	err := c.layouter.Layout(c.graph)
	took := time.Since(start)
	hooks.OnLayoutComplete(name, count, took, err)
	c.passes++
	if err != nil {
		return errors.Wrap(errors.ErrCodeLayout, err, "layout %d nodes with %s", count, name)
	}
	c.logger.Debug("layout", "engine", name, "nodes", count, "edges", c.graph.EdgeCount(), "took", took)

	for _, n := range c.nodes {
		pos, ok := c.graph.Node(n.id)
		if !ok {
			return errors.New(errors.ErrCodeLayout, "%s left node %q unplaced", name, n.id)
		}
		if err := n.SetPosition(pos.X-n.width/2, pos.Y-n.height/2); err != nil {
			return err
		}
		if _, ok := c.nodeCell(n.id); !ok {
			c.addCell(n)
		}
	}
	for _, e := range c.edges {
		if err := c.SetEdgeVertices(e, e.source, e.target); err != nil {
			return err
		}
	}
	return nil
}

// SetNodePosition writes n's position to the surface, adding the visual
// node when absent.
func (c *Chart) SetNodePosition(n *Node) error {
	if err := c.requireSurface(); err != nil {
		return err
	}
	if !c.tracks(n) {
		return errors.New(errors.ErrCodeNodeNotFound, "node %s is not tracked", nodeName(n))
	}
	return c.batch(func() error {
		if cell, ok := c.nodeCell(n.id); ok {
			cell.SetPosition(n.x, n.y)
			c.writes++
			return nil
		}
		c.addCell(n)
		return nil
	})
}

// SetNodeVisible writes n's visibility to the surface, adding the visual
// node when absent.
func (c *Chart) SetNodeVisible(n *Node) error {
	if err := c.requireSurface(); err != nil {
		return err
	}
	if !c.tracks(n) {
		return errors.New(errors.ErrCodeNodeNotFound, "node %s is not tracked", nodeName(n))
	}
	return c.batch(func() error {
		if cell, ok := c.nodeCell(n.id); ok {
			cell.SetVisible(!n.hidden)
			c.writes++
			return nil
		}
		c.addCell(n)
		return nil
	})
}

// SetEdgeVertices routes e with two vertices on the horizontal line halfway
// between the bottom of source and the top of target, each under the
// center of its node. The visual edge is replaced only when the route
// changed.
func (c *Chart) SetEdgeVertices(e *Edge, source, target *Node) error {
	if err := c.requireSurface(); err != nil {
		return err
	}
	if e == nil || source == nil || target == nil {
		return errors.New(errors.ErrCodeInvalidInput, "edge and both endpoints are required")
	}
	if !slices.Contains(c.edges, e) {
		return errors.New(errors.ErrCodeInvalidInput, "edge %q is not part of the chart", e.id)
	}
	for _, n := range []*Node{source, target} {
		if !c.tracks(n) {
			return errors.New(errors.ErrCodeNodeNotFound, "edge endpoint %s is not tracked", nodeName(n))
		}
	}
	verts := EdgeVertices(source, target)
	_, exists := c.surface.GetCellByID(e.id)
	if exists && slices.Equal(verts, e.vertices) {
		e.mounted = true
		return nil
	}
	return c.batch(func() error {
		if exists {
			c.surface.RemoveEdge(e.id)
			c.writes++
		}
		cell := c.surface.CreateEdge(surface.EdgeDescriptor{
			ID:       e.id,
			Shape:    EdgeShape,
			Source:   source.id,
			Target:   target.id,
			Vertices: verts,
		})
		c.surface.AddEdge(cell)
		c.writes++
		e.vertices = verts
		e.mounted = true
		return nil
	})
}

// EdgeVertices computes the two-point route between source and target.
func EdgeVertices(source, target *Node) []surface.Point {
	midY := (source.y + source.height + target.y) / 2
	return []surface.Point{
		{X: source.x + source.width/2, Y: midY},
		{X: target.x + target.width/2, Y: midY},
	}
}

// NodeByID returns the tracked node with id.
func (c *Chart) NodeByID(id string) (*Node, bool) {
	for _, n := range c.nodes {
		if n.id == id {
			return n, true
		}
	}
	return nil, false
}

// EdgeByID returns the tracked edge with id.
func (c *Chart) EdgeByID(id string) (*Edge, bool) {
	for _, e := range c.edges {
		if e.id == id {
			return e, true
		}
	}
	return nil, false
}

// EdgeBetween returns the tracked edge from sourceID to targetID.
func (c *Chart) EdgeBetween(sourceID, targetID string) (*Edge, bool) {
	for _, e := range c.edges {
		if e.SourceID() == sourceID && e.TargetID() == targetID {
			return e, true
		}
	}
	return nil, false
}

// Nodes returns the tracked nodes in append order.
func (c *Chart) Nodes() []*Node { return slices.Clone(c.nodes) }

// Edges returns the tracked edges in creation order.
func (c *Chart) Edges() []*Edge { return slices.Clone(c.edges) }

// Roots returns the tracked nodes without a parent, in append order.
func (c *Chart) Roots() []*Node {
	var out []*Node
	for _, n := range c.nodes {
		if n.parent == "" {
			out = append(out, n)
		}
	}
	return out
}

// Len returns the number of tracked nodes.
func (c *Chart) Len() int { return len(c.nodes) }

// Validate checks that registry, tree, edges and layout graph agree.
func (c *Chart) Validate() error {
	if len(c.registry) != len(c.nodes) {
		return errors.New(errors.ErrCodeInternal, "registry holds %d nodes, chart tracks %d", len(c.registry), len(c.nodes))
	}
	if c.graph.NodeCount() != len(c.nodes) {
		return errors.New(errors.ErrCodeInternal, "layout graph holds %d nodes, chart tracks %d", c.graph.NodeCount(), len(c.nodes))
	}
	if c.graph.EdgeCount() != len(c.edges) {
		return errors.New(errors.ErrCodeInternal, "layout graph holds %d edges, chart tracks %d", c.graph.EdgeCount(), len(c.edges))
	}
	for _, n := range c.nodes {
		if c.registry[n.id] != n {
			return errors.New(errors.ErrCodeInternal, "node %q is not registered", n.id)
		}
		if !c.graph.HasNode(n.id) {
			return errors.New(errors.ErrCodeInternal, "node %q missing from layout graph", n.id)
		}
		if n.parent == "" {
			continue
		}
		p, ok := c.registry[n.parent]
		if !ok {
			return errors.New(errors.ErrCodeInternal, "node %q has unknown parent %q", n.id, n.parent)
		}
		if !slices.Contains(p.children, n.id) {
			return errors.New(errors.ErrCodeInternal, "node %q missing from children of %q", n.id, p.id)
		}
		if _, ok := c.EdgeBetween(p.id, n.id); !ok {
			return errors.New(errors.ErrCodeInternal, "no edge %q -> %q", p.id, n.id)
		}
		if n.isAncestorOf(n) {
			return errors.New(errors.ErrCodeCycle, "node %q is its own ancestor", n.id)
		}
	}
	for _, e := range c.edges {
		if !c.tracks(e.source) || !c.tracks(e.target) {
			return errors.New(errors.ErrCodeInternal, "edge %q is dangling", e.id)
		}
		if !c.graph.HasEdge(e.SourceID(), e.TargetID()) {
			return errors.New(errors.ErrCodeInternal, "edge %q missing from layout graph", e.id)
		}
	}
	return nil
}

// batch runs fn between surface.Unfreeze and surface.Freeze. Nested calls
// join the outermost batch. The surface must be bound.
//
// Nodes appended inside the batch are announced with a single
// onNodesAppend once the surface is frozen again, including when fn
// fails after some of them were appended.
func (c *Chart) batch(fn func() error) error {
	if c.depth == 0 {
		c.writes = 0
		c.surface.Unfreeze()
	}
	c.depth++
	defer func() {
		c.depth--
		if c.depth > 0 {
			return
		}
		c.surface.Freeze()
		observability.Layout().OnSurfaceFlush(c.writes)

		appended := slices.DeleteFunc(c.appended, func(n *Node) bool { return !c.tracks(n) })
		c.appended = nil
		if len(appended) > 0 {
			c.Notify(heart.OnNodesAppend, appended)
		}
	}()
	return fn()
}

func (c *Chart) requireSurface() error {
	if c.surface == nil {
		return errors.New(errors.ErrCodeSurfaceNotBound, "no rendering surface bound; call SetGraph first")
	}
	return nil
}

func (c *Chart) newNode(spec NodeSpec) *Node {
	id := spec.ID
	if id == "" {
		id = c.newID()
	}
	w, h := spec.Width, spec.Height
	if w == 0 {
		w = c.nodeWidth
	}
	if h == 0 {
		h = c.nodeHeight
	}
	return &Node{
		chart:        c,
		id:           id,
		name:         spec.Name,
		typ:          spec.Type,
		selectable:   spec.Selectable,
		width:        w,
		height:       h,
		contentProps: spec.ContentProps,
	}
}

func (c *Chart) checkAppendable(n *Node) error {
	if n == nil {
		return errors.New(errors.ErrCodeInvalidInput, "node is nil")
	}
	if n.chart != c {
		return errors.New(errors.ErrCodeInvalidInput, "node %q belongs to another chart", n.id)
	}
	if other, ok := c.registry[n.id]; ok && other != n {
		return errors.New(errors.ErrCodeDuplicateID, "node id %q already registered", n.id)
	}
	return nil
}

func (c *Chart) tracks(n *Node) bool {
	return n != nil && n.chart == c && c.registry[n.id] == n
}

func (c *Chart) track(n *Node) {
	c.registry[n.id] = n
	c.nodes = append(c.nodes, n)
}

func (c *Chart) untrack(n *Node) {
	delete(c.registry, n.id)
	c.nodes = slices.DeleteFunc(c.nodes, func(x *Node) bool { return x == n })
}

func (c *Chart) lookup(id string) *Node {
	if id == "" {
		return nil
	}
	return c.registry[id]
}

func (c *Chart) nodeCell(id string) (surface.NodeCell, bool) {
	cell, ok := c.surface.GetCellByID(id)
	if !ok || !cell.IsNode() {
		return nil, false
	}
	nc, ok := cell.(surface.NodeCell)
	return nc, ok
}

func (c *Chart) addCell(n *Node) {
	c.surface.AddNode(n.Meta())
	c.writes++
	n.mounted = true
}

func nodeName(n *Node) string {
	if n == nil {
		return "<nil>"
	}
	return `"` + n.id + `"`
}
