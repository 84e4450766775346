package layout

// Layouter assigns positions to every node of a graph.
//
// Implementations must be deterministic: the same graph (same nodes, sizes
// and edges in the same insertion order) always yields the same positions.
type Layouter interface {
	Layout(g *Graph) error
	// Name identifies the engine in logs and cache keys.
	Name() string
}
