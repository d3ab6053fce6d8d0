package game

import "slices"

// LifeState is an agent's position in its lifecycle.
type LifeState uint8

const (
	Alive LifeState = iota
	Eliminated
	Respawning
)

func (s LifeState) String() string {
	switch s {
	case Alive:
		return "alive"
	case Eliminated:
		return "eliminated"
	case Respawning:
		return "respawning"
	}
	return "unknown"
}

// EliminationReason records which rule removed an agent.
type EliminationReason uint8

const (
	ReasonNone EliminationReason = iota
	ReasonSelfCross
	ReasonTrailCut
	ReasonBorder
	ReasonHeadOn
	ReasonNoTerritory
	ReasonEnclosed
	ReasonLeft
)

func (r EliminationReason) String() string {
	switch r {
	case ReasonSelfCross:
		return "self_cross"
	case ReasonTrailCut:
		return "trail_cut"
	case ReasonBorder:
		return "border"
	case ReasonHeadOn:
		return "head_on"
	case ReasonNoTerritory:
		return "no_territory"
	case ReasonEnclosed:
		return "enclosed"
	case ReasonLeft:
		return "left"
	}
	return "none"
}

// Colors are opaque tags handed through to renderers.
type Colors struct {
	Head      string
	Territory string
	Trail     string
}

// Agent is one player on the board.
type Agent struct {
	ID     string
	Name   string
	Colors Colors

	Pos     Point
	Prev    Point
	Heading Direction
	Trail   []Point

	// Cadence is the number of ticks per cell step currently in effect.
	Cadence     int
	BaseCadence int

	Score        int
	PendingScore int

	State        LifeState
	Reason       EliminationReason
	EliminatedAt int
	RespawnIn    int

	Territory *Territory

	Kills         int
	CellsCaptured int

	NitroTicks  int
	NitroActive bool

	ticks int
	moved bool
	// annexedBy is the last agent to take cells from this territory.
	annexedBy string
}

func newAgent(spec AgentSpec, cadence int) *Agent {
	return &Agent{
		ID:          spec.ID,
		Name:        spec.Name,
		Colors:      spec.Colors,
		Pos:         spec.Spawn,
		Prev:        spec.Spawn,
		Heading:     DirUp,
		Cadence:     cadence,
		BaseCadence: cadence,
		Territory:   NewTerritory(spec.ID, spec.Spawn),
	}
}

// Active reports whether the agent takes part in ticks.
func (a *Agent) Active() bool {
	return a.State == Alive
}

// TrueDirection is the heading of the last actual displacement, DirNone
// before the first move.
func (a *Agent) TrueDirection() Direction {
	return directionOf(a.Pos.Sub(a.Prev))
}

// ChangeDirection sets the heading unless it reverses the last displacement.
// Rejected commands are ignored. It reports whether the heading was accepted.
func (a *Agent) ChangeDirection(d Direction) bool {
	if d == DirNone {
		return false
	}
	if a.TrueDirection() == d.Opposite() {
		return false
	}
	a.Heading = d
	return true
}

// Move steps one cell along the heading, recording the previous position.
func (a *Agent) Move() {
	a.Prev = a.Pos
	a.Pos = a.Pos.Add(a.Heading.Delta())
}

// UpdateTrail appends the current position when it is outside the agent's
// territory or when a trail is already being drawn.
func (a *Agent) UpdateTrail() {
	if !a.Territory.Has(a.Pos) || len(a.Trail) > 0 {
		a.Trail = append(a.Trail, a.Pos)
	}
}

// TrailHas reports whether p is on the trail, ignoring its newest cell.
func (a *Agent) TrailHas(p Point) bool {
	if len(a.Trail) < 2 {
		return false
	}
	return slices.Contains(a.Trail[:len(a.Trail)-1], p)
}

// GiveNitro adds charge ticks; charges stack.
func (a *Agent) GiveNitro(ticks int) {
	a.NitroTicks += ticks
}

// setBoost turns nitro on or off. Activation needs remaining charge.
func (a *Agent) setBoost(on bool, nitroCadence int) {
	switch {
	case on && a.NitroTicks > 0:
		a.NitroActive = true
		a.Cadence = nitroCadence
	case !on:
		a.NitroActive = false
		a.Cadence = a.BaseCadence
	}
}

// tickNitro burns one tick of charge while nitro is active.
func (a *Agent) tickNitro() {
	if !a.NitroActive {
		return
	}
	a.NitroTicks--
	if a.NitroTicks <= 0 {
		a.NitroTicks = 0
		a.NitroActive = false
		a.Cadence = a.BaseCadence
	}
}

// reset re-seeds the agent at spawn for a respawn.
func (a *Agent) reset(spawn Point, t *Territory) {
	a.Pos, a.Prev = spawn, spawn
	a.Heading = DirUp
	a.Trail = nil
	a.Cadence = a.BaseCadence
	a.NitroActive = false
	a.State = Alive
	a.Reason = ReasonNone
	a.RespawnIn = 0
	a.ticks = 0
	a.annexedBy = ""
	a.Territory = t
}
