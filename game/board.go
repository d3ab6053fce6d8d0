package game

// CellKind is what a board cell shows.
type CellKind uint8

const (
	CellEmpty CellKind = iota
	CellTerritory
	CellTrail
	CellHead
	CellBonus
)

// Cell is one square of the projected board. Owner is the agent ID for
// territory, trail and head cells.
type Cell struct {
	Kind  CellKind
	Owner string
	Bonus BonusKind
}

// Board is a derived view of the arena for renderers. It is rebuilt on every
// call to Arena.Board and never written back.
type Board struct {
	Width  int
	Height int
	Cells  []Cell
}

// At returns the cell at p; off-grid points read as empty.
func (b Board) At(p Point) Cell {
	if p.X < 0 || p.Y < 0 || p.X >= b.Width || p.Y >= b.Height {
		return Cell{}
	}
	return b.Cells[p.Y*b.Width+p.X]
}

func (b Board) set(p Point, c Cell) {
	if p.X < 0 || p.Y < 0 || p.X >= b.Width || p.Y >= b.Height {
		return
	}
	b.Cells[p.Y*b.Width+p.X] = c
}

// Board projects territories, then bonuses, then trails, then heads, so later
// layers win.
func (a *Arena) Board() Board {
	b := Board{
		Width:  a.grid.Width,
		Height: a.grid.Height,
		Cells:  make([]Cell, a.grid.Area()),
	}
	for _, ag := range a.agents {
		for p := range ag.Territory.points {
			b.set(p, Cell{Kind: CellTerritory, Owner: ag.ID})
		}
	}
	for _, bn := range a.bonuses {
		b.set(bn.Pos, Cell{Kind: CellBonus, Bonus: bn.Kind})
	}
	for _, ag := range a.agents {
		if !ag.Active() {
			continue
		}
		for _, p := range ag.Trail {
			b.set(p, Cell{Kind: CellTrail, Owner: ag.ID})
		}
	}
	for _, ag := range a.agents {
		if ag.Active() {
			b.set(ag.Pos, Cell{Kind: CellHead, Owner: ag.ID})
		}
	}
	return b
}
