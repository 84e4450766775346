package layout

// AssignRanks assigns every node a rank (0 = top) with a longest-path
// layering via Kahn's topological sort. Each node is placed at the largest
// rank any parent pushes it to (parent rank + edge MinLen), so:
//   - Source nodes (no incoming edges) are at rank 0
//   - All parents are strictly above their children
//
// AssignRanks assumes the graph is acyclic; nodes on a cycle never reach
// zero in-degree and stay at rank 0. Run [Graph.Validate] first.
//
// Time complexity is O(V + E).
func AssignRanks(g *Graph) map[string]int {
	inDegree := make(map[string]int, len(g.nodes))
	ranks := make(map[string]int, len(g.nodes))
	queue := make([]string, 0, len(g.nodes))

	minLen := make(map[[2]string]int, len(g.edges))
	for _, e := range g.edges {
		minLen[[2]string{e.From, e.To}] = e.Hint.minLen()
	}

	for _, id := range g.order {
		degree := len(g.incoming[id])
		inDegree[id] = degree
		ranks[id] = 0
		if degree == 0 {
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range g.outgoing[curr] {
			if rank := ranks[curr] + minLen[[2]string{curr, child}]; rank > ranks[child] {
				ranks[child] = rank
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
	return ranks
}
