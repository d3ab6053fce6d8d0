package game

// BoundaryGraph is the walkable perimeter of a territory. Nodes are indices
// into the boundary slice it was built from; two nodes are joined when their
// cells are 8-neighbours.
type BoundaryGraph struct {
	nodes []Point
	index map[Point]int
	adj   [][]int
}

// NewBoundaryGraph builds the graph over boundary. The slice is retained and
// must not be modified afterwards.
func NewBoundaryGraph(boundary []Point) *BoundaryGraph {
	g := &BoundaryGraph{
		nodes: boundary,
		index: make(map[Point]int, len(boundary)),
		adj:   make([][]int, len(boundary)),
	}
	for i, p := range boundary {
		g.index[p] = i
	}
	for i, p := range boundary {
		for _, n := range Neighbors8(p) {
			if j, ok := g.index[n]; ok {
				g.adj[i] = append(g.adj[i], j)
			}
		}
	}
	return g
}

// Len is the node count.
func (g *BoundaryGraph) Len() int {
	return len(g.nodes)
}

// Node returns the cell for node i.
func (g *BoundaryGraph) Node(i int) Point {
	return g.nodes[i]
}

// Index returns the node for cell p.
func (g *BoundaryGraph) Index(p Point) (int, bool) {
	i, ok := g.index[p]
	return i, ok
}

// Neighbors returns the adjacency list of node i.
func (g *BoundaryGraph) Neighbors(i int) []int {
	return g.adj[i]
}

// ShortestPath returns the nodes of a shortest path from one node to another,
// both ends included, or nil when they are not connected. Breadth-first search
// over adjacency lists in construction order makes the choice among equal
// length paths stable for a given graph.
func (g *BoundaryGraph) ShortestPath(from, to int) []int {
	if from < 0 || from >= len(g.nodes) || to < 0 || to >= len(g.nodes) {
		return nil
	}
	if from == to {
		return []int{from}
	}
	prev := make([]int, len(g.nodes))
	for i := range prev {
		prev[i] = -1
	}
	prev[from] = from
	queue := []int{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range g.adj[cur] {
			if prev[n] != -1 {
				continue
			}
			prev[n] = cur
			if n == to {
				return g.walkBack(prev, from, to)
			}
			queue = append(queue, n)
		}
	}
	return nil
}

func (g *BoundaryGraph) walkBack(prev []int, from, to int) []int {
	var rev []int
	for n := to; n != from; n = prev[n] {
		rev = append(rev, n)
	}
	rev = append(rev, from)
	path := make([]int, len(rev))
	for i, n := range rev {
		path[len(rev)-1-i] = n
	}
	return path
}

// PathPoints converts node indices to cells.
func (g *BoundaryGraph) PathPoints(path []int) []Point {
	out := make([]Point, len(path))
	for i, n := range path {
		out[i] = g.nodes[n]
	}
	return out
}
