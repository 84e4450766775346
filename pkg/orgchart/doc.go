// Package orgchart is the model layer of an organization chart.
//
// # Overview
//
// A [Chart] owns a tree of [Node] values connected by derived [Edge] values,
// a [layout.Graph] mirroring that tree with per-node size hints, and the
// binding to a [surface.Surface] the tree is drawn on. Every structural edit
// goes through the chart:
//
//	c := orgchart.New()
//	c.Init()
//	if err := c.SetGraph(surface.NewCanvas()); err != nil {
//	    return err
//	}
//	roots, err := c.AppendRootNodes([]orgchart.NodeSpec{{ID: "ceo", Name: "CEO"}})
//	if err != nil {
//	    return err
//	}
//	_, err = roots[0].AppendNodes([]orgchart.NodeSpec{{Name: "CTO"}, {Name: "CFO"}})
//
// # Structure
//
// Nodes store their parent and children as ids resolved through a registry
// owned by the chart. Two charts never share ids. A node's root is computed
// on demand by walking parent links, so reparenting never leaves a stale
// root behind.
//
// Edges are never authored directly: [Chart.AppendChildNode] derives one
// edge from parent to child, and [Node.Remove] drops every edge incident to
// the removed subtree.
//
// # Layout and Synchronization
//
// Each append or removal updates the layout graph and reruns the configured
// [layout.Layouter] over the whole graph. The resulting centers are
// converted to top-left positions and pushed to the surface through
// [Node.SetPosition], which writes nothing when a node did not move. Edge
// routes are recomputed after every pass; the visual edge is replaced only
// when its vertices changed.
//
// # Batches
//
// Compound mutations run inside a batch: the outermost one unfreezes the
// surface on entry and freezes it on exit, so the surface renders once per
// logical change. Nested batches collapse into the outermost one.
//
// # Errors
//
// Operations that touch the surface fail with
// [errors.ErrCodeSurfaceNotBound] until [Chart.SetGraph] is called, and
// leave the chart unchanged. See the package errors for the other codes.
//
// A Chart is not safe for concurrent use.
package orgchart
