package layout

import "slices"

// Tree is the default pure Go layout engine.
//
// Ranks come from [AssignRanks]. Every node's primary parent is its first
// incoming edge; the resulting spanning forest is packed left to right in
// insertion order, each parent centered over its children. Rank rows are as
// tall as their tallest node and separated by RankSep; nodes are vertically
// centered in their row. Only top-to-bottom rank direction is supported;
// other directions are laid out top-to-bottom as well.
type Tree struct{}

// NewTree returns the tree engine.
func NewTree() Tree { return Tree{} }

// Name implements Layouter.
func (Tree) Name() string { return "tree" }

// Layout implements Layouter.
func (Tree) Layout(g *Graph) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if g.NodeCount() == 0 {
		return nil
	}

	t := &treeLayout{
		g:     g,
		ranks: AssignRanks(g),
		kids:  make(map[string][]string, g.NodeCount()),
		span:  make(map[string]float64, g.NodeCount()),
		x:     make(map[string]float64, g.NodeCount()),
	}
	roots := t.buildForest()

	left := 0.0
	for i, id := range roots {
		if i > 0 {
			left += g.opts.NodeSep
		}
		t.measure(id)
		t.place(id, left)
		left += t.span[id]
	}

	rowTop := t.rowOffsets()
	for _, id := range g.order {
		r := t.ranks[id]
		g.SetPosition(id, Position{
			X: t.x[id],
			Y: rowTop[r] + t.rowHeight[r]/2,
		})
	}
	return nil
}

type treeLayout struct {
	g         *Graph
	ranks     map[string]int
	kids      map[string][]string
	span      map[string]float64
	x         map[string]float64
	rowHeight []float64
}

// buildForest keeps each node under its first parent and returns the
// forest roots in insertion order.
func (t *treeLayout) buildForest() []string {
	for _, id := range t.g.order {
		if parents := t.g.Parents(id); len(parents) > 0 {
			t.kids[parents[0]] = append(t.kids[parents[0]], id)
		}
	}
	// Children are listed in edge order, not node order.
	for p, kids := range t.kids {
		order := t.g.Children(p)
		slices.SortStableFunc(kids, func(a, b string) int {
			return slices.Index(order, a) - slices.Index(order, b)
		})
	}
	return t.g.Sources()
}

func (t *treeLayout) childrenWidth(id string) float64 {
	var sum float64
	for i, k := range t.kids[id] {
		if i > 0 {
			sum += t.g.opts.NodeSep
		}
		sum += t.span[k]
	}
	return sum
}

func (t *treeLayout) measure(id string) float64 {
	for _, k := range t.kids[id] {
		t.measure(k)
	}
	w := t.g.nodes[id].size.Width
	if cw := t.childrenWidth(id); cw > w {
		w = cw
	}
	t.span[id] = w
	return w
}

func (t *treeLayout) place(id string, left float64) {
	span := t.span[id]
	kids := t.kids[id]
	if len(kids) == 0 {
		t.x[id] = left + span/2
		return
	}

	total := t.childrenWidth(id)
	cursor := left + (span-total)/2
	for _, k := range kids {
		t.place(k, cursor)
		cursor += t.span[k] + t.g.opts.NodeSep
	}

	if total < t.g.nodes[id].size.Width {
		t.x[id] = left + span/2
		return
	}
	t.x[id] = (t.x[kids[0]] + t.x[kids[len(kids)-1]]) / 2
}

// rowOffsets returns the top y of every rank row.
func (t *treeLayout) rowOffsets() []float64 {
	maxRank := 0
	for _, r := range t.ranks {
		maxRank = max(maxRank, r)
	}
	t.rowHeight = make([]float64, maxRank+1)
	for id, r := range t.ranks {
		t.rowHeight[r] = max(t.rowHeight[r], t.g.nodes[id].size.Height)
	}

	tops := make([]float64, maxRank+1)
	for r := 1; r <= maxRank; r++ {
		tops[r] = tops[r-1] + t.rowHeight[r-1] + t.g.opts.RankSep
	}
	return tops
}
