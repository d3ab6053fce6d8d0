// Package game implements the Grab The Map rules engine: territories that grow
// by enclosing area with a trail, and the per-tick resolver that moves agents,
// arbitrates simultaneous captures and eliminates agents.
//
// The engine is single-threaded. An Arena is exclusively owned by its caller for
// the duration of a Tick; hosts that share it between goroutines must serialize
// access themselves.
package game

import (
	"cmp"
	"slices"
)

// Point is a grid cell coordinate.
type Point struct {
	X, Y int
}

// Add returns p translated by d.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Sub returns the displacement from q to p.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// comparePoints orders points row-major.
func comparePoints(a, b Point) int {
	if c := cmp.Compare(a.Y, b.Y); c != 0 {
		return c
	}
	return cmp.Compare(a.X, b.X)
}

// Grid is the logical board size in cells.
type Grid struct {
	Width, Height int
}

// Contains reports whether p lies on the grid.
func (g Grid) Contains(p Point) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

// Area is the number of cells on the grid.
func (g Grid) Area() int {
	return g.Width * g.Height
}

var (
	orthogonal = [4]Point{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
	diagonal   = [4]Point{{1, -1}, {1, 1}, {-1, 1}, {-1, -1}}
)

// Neighbors4 returns the orthogonal neighbours of p: up, right, down, left.
func Neighbors4(p Point) [4]Point {
	var out [4]Point
	for i, d := range orthogonal {
		out[i] = p.Add(d)
	}
	return out
}

// Neighbors8 returns the orthogonal neighbours of p followed by the diagonal ones.
func Neighbors8(p Point) [8]Point {
	var out [8]Point
	for i, d := range orthogonal {
		out[i] = p.Add(d)
	}
	for i, d := range diagonal {
		out[4+i] = p.Add(d)
	}
	return out
}

// PointInPolygon is a crossing-number test of p against the closed polygon poly.
// Edges are half-open in y so a vertex shared by two edges is counted once.
// Results for points lying exactly on an edge are unspecified; callers only
// test cells that are not polygon vertices.
func PointInPolygon(p Point, poly []Point) bool {
	inside := false
	j := len(poly) - 1
	for i := range poly {
		a, b := poly[i], poly[j]
		if (a.Y <= p.Y && p.Y < b.Y) || (b.Y <= p.Y && p.Y < a.Y) {
			x := float64(a.X) + float64(p.Y-a.Y)*float64(b.X-a.X)/float64(b.Y-a.Y)
			if float64(p.X) < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// PointSet is an unordered set of cells.
type PointSet map[Point]struct{}

// NewPointSet builds a set from pts.
func NewPointSet(pts ...Point) PointSet {
	s := make(PointSet, len(pts))
	for _, p := range pts {
		s[p] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s PointSet) Has(p Point) bool {
	_, ok := s[p]
	return ok
}

// Add inserts p.
func (s PointSet) Add(p Point) {
	s[p] = struct{}{}
}

// Len is the set size.
func (s PointSet) Len() int {
	return len(s)
}

// Sorted returns the members in row-major order.
func (s PointSet) Sorted() []Point {
	out := make([]Point, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	slices.SortFunc(out, comparePoints)
	return out
}

// Clone returns an independent copy.
func (s PointSet) Clone() PointSet {
	out := make(PointSet, len(s))
	for p := range s {
		out[p] = struct{}{}
	}
	return out
}
