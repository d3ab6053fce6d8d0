package game

import "testing"

func blockBoundary(center Point) []Point {
	return NewTerritory("t", center).Boundary()
}

func TestBoundaryGraphAdjacency(t *testing.T) {
	g := NewBoundaryGraph(blockBoundary(Point{X: 5, Y: 5}))
	if g.Len() != 8 {
		t.Fatalf("expected 8 boundary nodes around a 3x3 block, got %d", g.Len())
	}
	corner, ok := g.Index(Point{X: 4, Y: 4})
	if !ok {
		t.Fatal("corner should be a node")
	}
	// (4,4) touches (5,4) and (4,5) orthogonally; (5,5) is interior
	if n := len(g.Neighbors(corner)); n != 2 {
		t.Errorf("corner should have 2 neighbours, got %d", n)
	}
	edge, _ := g.Index(Point{X: 5, Y: 4})
	if n := len(g.Neighbors(edge)); n != 4 {
		t.Errorf("edge midpoint should have 4 neighbours, got %d", n)
	}
}

func TestShortestPath(t *testing.T) {
	g := NewBoundaryGraph(blockBoundary(Point{X: 5, Y: 5}))
	from, _ := g.Index(Point{X: 4, Y: 4})
	to, _ := g.Index(Point{X: 6, Y: 6})
	path := g.ShortestPath(from, to)
	if len(path) != 4 {
		t.Fatalf("corner to corner should take 3 steps, got path %v", g.PathPoints(path))
	}
	if path[0] != from || path[len(path)-1] != to {
		t.Errorf("path should run from %d to %d, got %v", from, to, path)
	}
	for i := 1; i < len(path); i++ {
		a, b := g.Node(path[i-1]), g.Node(path[i])
		d := a.Sub(b)
		if d.X < -1 || d.X > 1 || d.Y < -1 || d.Y > 1 {
			t.Errorf("step %v -> %v is not 8-adjacent", a, b)
		}
	}

	again := g.ShortestPath(from, to)
	for i := range path {
		if path[i] != again[i] {
			t.Fatalf("shortest path should be stable, got %v then %v", path, again)
		}
	}

	if p := g.ShortestPath(from, from); len(p) != 1 || p[0] != from {
		t.Errorf("path to self should be the single node, got %v", p)
	}
	if p := g.ShortestPath(from, 99); p != nil {
		t.Errorf("out of range node should yield nil, got %v", p)
	}
}

func TestShortestPathDisconnected(t *testing.T) {
	nodes := []Point{{0, 0}, {1, 0}, {5, 5}}
	g := NewBoundaryGraph(nodes)
	if p := g.ShortestPath(0, 2); p != nil {
		t.Errorf("disconnected nodes should yield nil, got %v", p)
	}
	if p := g.ShortestPath(0, 1); len(p) != 2 {
		t.Errorf("adjacent nodes should yield a 2 node path, got %v", p)
	}
}
