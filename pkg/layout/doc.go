// Package layout computes top-to-bottom hierarchical positions for charts.
//
// # Layout Graph
//
// [Graph] is the size-annotated mirror of a chart that layout engines work
// on. Nodes carry a [SizeHint], edges an [EdgeHint]. After a [Layouter] ran,
// [Graph.Node] reports each node's center [Position], the same convention
// dagre uses; callers that need a top-left corner subtract half the size.
//
// Insertion order is preserved for nodes and edges. Engines rely on it for
// deterministic output: laying out the same graph twice yields identical
// positions.
//
// # Engines
//
//   - [Tree]: pure Go ranked tree layout. Ranks come from longest-path
//     layering; siblings are packed left to right in insertion order and
//     parents are centered over their children.
//   - [Graphviz]: the Graphviz dot engine via github.com/goccy/go-graphviz.
//   - [Cached]: wraps another engine and stores positions in a cache.Cache
//     keyed by the graph hash.
//
// # Spacing
//
// [Options] holds the rank direction and spacing constants. The defaults
// (NodeSep 16, RankSep 32) match the chart's original visual density.
package layout
