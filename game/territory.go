package game

import (
	"log/slog"
	"slices"
)

// Territory is the set of cells one agent owns.
type Territory struct {
	Owner string

	points  PointSet
	changed bool
	log     *slog.Logger
}

// NewTerritory seeds a territory with the 3x3 block centred on spawn.
func NewTerritory(owner string, spawn Point) *Territory {
	t := &Territory{
		Owner:   owner,
		points:  NewPointSet(spawn),
		changed: true,
		log:     slog.Default(),
	}
	for _, n := range Neighbors8(spawn) {
		t.points.Add(n)
	}
	return t
}

// SetLogger replaces the logger used for recoverable capture anomalies.
func (t *Territory) SetLogger(l *slog.Logger) {
	if l != nil {
		t.log = l
	}
}

// Has reports whether p is owned.
func (t *Territory) Has(p Point) bool {
	return t.points.Has(p)
}

// Len is the number of owned cells.
func (t *Territory) Len() int {
	return len(t.points)
}

// Empty reports whether the territory has been exhausted.
func (t *Territory) Empty() bool {
	return len(t.points) == 0
}

// Points returns the owned cells in row-major order.
func (t *Territory) Points() []Point {
	return t.points.Sorted()
}

// Changed reports whether the cell set mutated since the last MarkClean.
func (t *Territory) Changed() bool {
	return t.changed
}

// MarkClean resets the dirty flag once a consumer has caught up.
func (t *Territory) MarkClean() {
	t.changed = false
}

// Boundary returns every owned cell with at least one unowned 8-neighbour,
// in row-major order. Cells off the grid count as unowned.
func (t *Territory) Boundary() []Point {
	var out []Point
	for p := range t.points {
		for _, n := range Neighbors8(p) {
			if !t.points.Has(n) {
				out = append(out, p)
				break
			}
		}
	}
	slices.SortFunc(out, comparePoints)
	return out
}

// BoundaryGraph builds the perimeter graph of the current cell set.
func (t *Territory) BoundaryGraph() *BoundaryGraph {
	return NewBoundaryGraph(t.Boundary())
}

// Capture computes the cells that trail would annex without modifying the
// territory. The trail must hold at least two cells and end on an owned cell;
// otherwise the result is empty. The result never contains an owned cell.
func (t *Territory) Capture(trail []Point) PointSet {
	captured := make(PointSet)
	if len(trail) < 2 || !t.Has(trail[len(trail)-1]) {
		return captured
	}
	for _, p := range trail {
		if !t.Has(p) {
			captured.Add(p)
		}
	}
	graph := t.BoundaryGraph()
	for _, void := range t.voids(trail, graph) {
		t.fill(void, captured)
	}
	return captured
}

// anchor is the boundary node a trail cell attaches to, or -1.
func (t *Territory) anchor(p Point, g *BoundaryGraph) int {
	if i, ok := g.Index(p); ok {
		return i
	}
	for _, n := range Neighbors8(p) {
		if i, ok := g.Index(n); ok {
			return i
		}
	}
	return -1
}

// voids returns the closed polygons formed by stretches of the trail and the
// boundary path joining their ends. The first polygon spans the whole trail;
// the rest close pockets where the trail leaves the boundary and touches it
// again before the end.
func (t *Territory) voids(trail []Point, g *BoundaryGraph) [][]Point {
	anchors := make([]int, len(trail))
	start := -1
	for i, p := range trail {
		anchors[i] = t.anchor(p, g)
		if start < 0 && anchors[i] >= 0 {
			start = i
		}
	}
	if start < 0 {
		t.log.Warn("no boundary path", "owner", t.Owner, "reason", "trail never touches boundary")
		return nil
	}

	end := -1
	for i := len(trail) - 1; i > start; i-- {
		if _, ok := g.Index(trail[i]); ok {
			end = i
			break
		}
	}
	if end < 0 {
		for i := len(trail) - 1; i > start; i-- {
			if anchors[i] >= 0 {
				end = i
				break
			}
		}
	}
	if end < 0 {
		return nil
	}

	var voids [][]Point
	if v := t.closeVoid(trail, start, end, anchors, g); v != nil {
		voids = append(voids, v)
	}
	departure := start
	for i := start + 1; i <= end; i++ {
		if anchors[i] < 0 {
			continue
		}
		if anchors[i-1] < 0 && !(departure == start && i == end) {
			if v := t.closeVoid(trail, departure, i, anchors, g); v != nil {
				voids = append(voids, v)
			}
		}
		departure = i
	}
	return voids
}

func (t *Territory) closeVoid(trail []Point, from, to int, anchors []int, g *BoundaryGraph) []Point {
	path := g.ShortestPath(anchors[to], anchors[from])
	if path == nil {
		t.log.Warn("no boundary path",
			"owner", t.Owner,
			"from", trail[from],
			"to", trail[to],
		)
		return nil
	}
	edge := g.PathPoints(path)
	if len(edge) > 0 && edge[0] == trail[to] {
		edge = edge[1:]
	}
	if len(edge) > 0 && edge[len(edge)-1] == trail[from] {
		edge = edge[:len(edge)-1]
	}
	poly := make([]Point, 0, to-from+1+len(edge))
	poly = append(poly, trail[from:to+1]...)
	poly = append(poly, edge...)
	if len(poly) < 3 {
		return nil
	}
	return poly
}

// fill adds every unowned cell strictly inside poly to captured. Cells on the
// bounding box rim are polygon vertices or outside, so only the inner box is
// scanned.
func (t *Territory) fill(poly []Point, captured PointSet) {
	minX, minY := poly[0].X, poly[0].Y
	maxX, maxY := minX, minY
	for _, p := range poly[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	for y := minY + 1; y < maxY; y++ {
		for x := minX + 1; x < maxX; x++ {
			p := Point{X: x, Y: y}
			if t.Has(p) || captured.Has(p) {
				continue
			}
			if PointInPolygon(p, poly) {
				captured.Add(p)
			}
		}
	}
}

// Add commits cells into the territory and returns how many were new.
func (t *Territory) Add(points PointSet) int {
	added := 0
	for p := range points {
		if !t.points.Has(p) {
			t.points.Add(p)
			added++
		}
	}
	if added > 0 {
		t.changed = true
	}
	return added
}

// RemovePoints discards the given cells and returns those that were owned,
// in row-major order.
func (t *Territory) RemovePoints(points PointSet) []Point {
	var removed []Point
	for p := range points {
		if t.points.Has(p) {
			delete(t.points, p)
			removed = append(removed, p)
		}
	}
	if len(removed) > 0 {
		t.changed = true
		slices.SortFunc(removed, comparePoints)
	}
	return removed
}

// Split cuts the territory along an enemy line travelling in dir and keeps
// only the side agentPos is on. Nothing happens unless the line crosses the
// territory. Returns the discarded cells.
func (t *Territory) Split(line []Point, dir Direction, agentPos Point) []Point {
	if len(line) == 0 || !slices.ContainsFunc(line, t.Has) {
		return nil
	}
	cut := line[0]
	var removed []Point
	for _, p := range t.points.Sorted() {
		var far bool
		switch dir {
		case DirUp, DirDown:
			if agentPos.X < cut.X {
				far = p.X >= cut.X
			} else {
				far = p.X <= cut.X
			}
		case DirLeft, DirRight:
			if agentPos.Y < cut.Y {
				far = p.Y >= cut.Y
			} else {
				far = p.Y <= cut.Y
			}
		}
		if far {
			delete(t.points, p)
			removed = append(removed, p)
		}
	}
	if len(removed) > 0 {
		t.changed = true
	}
	return removed
}

// Clear releases every cell and returns them.
func (t *Territory) Clear() []Point {
	out := t.points.Sorted()
	if len(out) > 0 {
		t.points = make(PointSet)
		t.changed = true
	}
	return out
}
