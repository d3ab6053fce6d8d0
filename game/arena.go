package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
)

var (
	ErrDuplicateAgent = errors.New("agent already in arena")
	ErrUnknownAgent   = errors.New("no such agent")
	ErrSpawnBlocked   = errors.New("spawn block is occupied")
	ErrOutOfBounds    = errors.New("position outside the grid")
	ErrCellOccupied   = errors.New("cell is occupied")
	ErrArenaOver      = errors.New("arena has finished")
)

// AgentSpec describes an agent joining the arena.
type AgentSpec struct {
	ID     string
	Name   string
	Colors Colors
	Spawn  Point
}

// Toggle is a tri-state switch for auxiliary abilities.
type Toggle uint8

const (
	ToggleKeep Toggle = iota
	ToggleOn
	ToggleOff
)

// Input is one agent's command for a tick.
type Input struct {
	Dir   Direction
	Boost Toggle
}

// Elimination records an agent removed during a tick. By names the agent
// credited with the kill, if any.
type Elimination struct {
	ID     string
	Reason EliminationReason
	By     string
}

// TickResult summarises what a tick changed.
type TickResult struct {
	Tick int
	// Captures maps agent ID to the cells committed to its territory.
	Captures map[string][]Point
	// Annexed maps agent ID to the number of cells taken from opponents.
	Annexed      map[string]int
	Eliminations []Elimination
	Respawns     []string
	Pickups      []Pickup
	Status       Status
}

// Arena is the tick simulation and collision resolver. It is not safe for
// concurrent use; hosts serialise access.
type Arena struct {
	cfg  Config
	grid Grid
	log  *slog.Logger
	rng  *rand.Rand

	tick    int
	agents  []*Agent
	byID    map[string]*Agent
	bonuses []Bonus
	status  Status
}

// NewArena validates cfg and returns an empty arena.
func NewArena(cfg Config) (*Arena, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	l := cfg.Logger
	if l == nil {
		l = slog.Default()
	}
	return &Arena{
		cfg:    cfg,
		grid:   cfg.Grid(),
		log:    l,
		rng:    rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		byID:   make(map[string]*Agent),
		status: Status{Phase: PhaseRunning},
	}, nil
}

func (a *Arena) Config() Config { return a.cfg }

func (a *Arena) Grid() Grid { return a.grid }

// Ticks is the number of ticks simulated so far.
func (a *Arena) Ticks() int { return a.tick }

func (a *Arena) Status() Status { return a.status }

// Agents returns the roster in join order, eliminated agents included.
func (a *Arena) Agents() []*Agent {
	return slices.Clone(a.agents)
}

// Agent looks an agent up by ID.
func (a *Arena) Agent(id string) (*Agent, bool) {
	ag, ok := a.byID[id]
	return ag, ok
}

// Bonuses returns the pickups currently on the board.
func (a *Arena) Bonuses() []Bonus {
	return slices.Clone(a.bonuses)
}

// ActiveCount is the number of agents still in play; in respawn mode agents
// waiting to come back are counted.
func (a *Arena) ActiveCount() int {
	n := 0
	for _, ag := range a.agents {
		if ag.State != Eliminated {
			n++
		}
	}
	return n
}

// AddAgent seeds a new agent with the 3x3 block around spec.Spawn.
func (a *Arena) AddAgent(spec AgentSpec) (*Agent, error) {
	if a.status.Over() {
		return nil, ErrArenaOver
	}
	if _, ok := a.byID[spec.ID]; ok {
		return nil, fmt.Errorf("add %q: %w", spec.ID, ErrDuplicateAgent)
	}
	if !a.spawnInGrid(spec.Spawn) {
		return nil, fmt.Errorf("add %q at %v: %w", spec.ID, spec.Spawn, ErrOutOfBounds)
	}
	if !a.spawnFree(spec.Spawn, a.occupied()) {
		return nil, fmt.Errorf("add %q at %v: %w", spec.ID, spec.Spawn, ErrSpawnBlocked)
	}
	ag := newAgent(spec, a.cfg.MoveCadence)
	ag.Territory.SetLogger(a.log)
	a.agents = append(a.agents, ag)
	a.byID[ag.ID] = ag
	return ag, nil
}

// RemoveAgent takes an agent out immediately, releasing its cells.
func (a *Arena) RemoveAgent(id string) error {
	ag, ok := a.byID[id]
	if !ok {
		return fmt.Errorf("remove %q: %w", id, ErrUnknownAgent)
	}
	if ag.State == Eliminated {
		return nil
	}
	a.eliminate(ag, ReasonLeft, false)
	if !a.status.Over() {
		a.status = a.evaluate()
	}
	return nil
}

// FreeSpawn picks a random centre whose 3x3 block lies on the grid and touches
// no territory, trail, head or bonus.
func (a *Arena) FreeSpawn() (Point, bool) {
	occupied := a.occupied()
	var candidates []Point
	for y := 1; y < a.grid.Height-1; y++ {
		for x := 1; x < a.grid.Width-1; x++ {
			p := Point{X: x, Y: y}
			if a.spawnFree(p, occupied) {
				candidates = append(candidates, p)
			}
		}
	}
	if len(candidates) == 0 {
		return Point{}, false
	}
	return candidates[a.rng.IntN(len(candidates))], true
}

// FreeCell picks a random cell that is not owned and carries nothing.
func (a *Arena) FreeCell() (Point, bool) {
	occupied := a.occupied()
	var candidates []Point
	for y := range a.grid.Height {
		for x := range a.grid.Width {
			p := Point{X: x, Y: y}
			if !occupied.Has(p) {
				candidates = append(candidates, p)
			}
		}
	}
	if len(candidates) == 0 {
		return Point{}, false
	}
	return candidates[a.rng.IntN(len(candidates))], true
}

// PlaceBonus drops a pickup on an empty cell.
func (a *Arena) PlaceBonus(kind BonusKind, pos Point) error {
	if a.status.Over() {
		return ErrArenaOver
	}
	if !a.grid.Contains(pos) {
		return fmt.Errorf("bonus at %v: %w", pos, ErrOutOfBounds)
	}
	if a.occupied().Has(pos) {
		return fmt.Errorf("bonus at %v: %w", pos, ErrCellOccupied)
	}
	a.bonuses = append(a.bonuses, Bonus{Kind: kind, Pos: pos, TTL: a.cfg.BonusLifetime})
	return nil
}

func (a *Arena) spawnInGrid(c Point) bool {
	return c.X >= 1 && c.Y >= 1 && c.X < a.grid.Width-1 && c.Y < a.grid.Height-1
}

func (a *Arena) spawnFree(c Point, occupied PointSet) bool {
	if !a.spawnInGrid(c) {
		return false
	}
	if occupied.Has(c) {
		return false
	}
	for _, n := range Neighbors8(c) {
		if occupied.Has(n) {
			return false
		}
	}
	return true
}

// occupied collects every owned, trailed, head or bonus cell.
func (a *Arena) occupied() PointSet {
	out := make(PointSet)
	for _, ag := range a.agents {
		for p := range ag.Territory.points {
			out.Add(p)
		}
		if !ag.Active() {
			continue
		}
		for _, p := range ag.Trail {
			out.Add(p)
		}
		out.Add(ag.Pos)
	}
	for _, b := range a.bonuses {
		out.Add(b.Pos)
	}
	return out
}

// Tick advances the simulation by one step. Inputs are applied before any
// movement; entries for unknown or inactive agents are ignored. Once the
// arena has finished, Tick changes nothing and reports the final status.
func (a *Arena) Tick(inputs map[string]Input) TickResult {
	if a.status.Over() {
		return TickResult{Tick: a.tick, Status: a.status}
	}
	res := TickResult{
		Captures: make(map[string][]Point),
		Annexed:  make(map[string]int),
	}

	for _, ag := range a.agents {
		if !ag.Active() {
			continue
		}
		in, ok := inputs[ag.ID]
		if !ok {
			continue
		}
		ag.ChangeDirection(in.Dir)
		switch in.Boost {
		case ToggleOn:
			ag.setBoost(true, a.cfg.NitroCadence)
		case ToggleOff:
			ag.setBoost(false, a.cfg.NitroCadence)
		}
	}

	// 1. counters
	a.tick++
	res.Tick = a.tick
	active := make([]*Agent, 0, len(a.agents))
	for _, ag := range a.agents {
		if ag.Active() {
			ag.ticks++
			active = append(active, ag)
		}
	}

	// 2. movement
	for _, ag := range active {
		if ag.Cadence < 1 {
			panic(fmt.Sprintf("game: agent %q has cadence %d", ag.ID, ag.Cadence))
		}
		ag.moved = ag.ticks%ag.Cadence == 0
		if ag.moved {
			ag.Move()
		}
		ag.tickNitro()
	}

	// 3. trails and raw grabs, all against pre-commit territory
	grabs := make(map[string]PointSet, len(active))
	for _, ag := range active {
		if !ag.moved {
			grabs[ag.ID] = make(PointSet)
			continue
		}
		ag.UpdateTrail()
		grabs[ag.ID] = ag.Territory.Capture(ag.Trail)
	}

	// 4. elimination conditions
	losers := make(map[string]bool)
	elims := make(map[string]Elimination)
	lose := func(ag *Agent, reason EliminationReason, by string) {
		if losers[ag.ID] {
			return
		}
		losers[ag.ID] = true
		elims[ag.ID] = Elimination{ID: ag.ID, Reason: reason, By: by}
	}
	for _, ag := range active {
		switch {
		case !a.grid.Contains(ag.Pos):
			lose(ag, ReasonBorder, "")
		case ag.TrailHas(ag.Pos):
			lose(ag, ReasonSelfCross, "")
		case ag.Territory.Empty():
			lose(ag, ReasonNoTerritory, ag.annexedBy)
			if hunter, ok := a.byID[ag.annexedBy]; ok {
				hunter.Kills++
			}
		}
	}
	for _, victim := range active {
		for _, o := range active {
			if o == victim || !victim.TrailHas(o.Pos) {
				continue
			}
			o.PendingScore += a.cfg.TrailKillScore
			o.Kills++
			lose(victim, ReasonTrailCut, o.ID)
		}
	}
	for i, x := range active {
		for _, y := range active[i+1:] {
			if x.Pos != y.Pos {
				continue
			}
			lx, ly := len(x.Trail), len(y.Trail)
			switch {
			case lx == ly:
				lose(x, ReasonHeadOn, y.ID)
				lose(y, ReasonHeadOn, x.ID)
			case lx < ly:
				lose(x, ReasonHeadOn, y.ID)
				y.PendingScore += a.cfg.HeadKillScore
				y.Kills++
			default:
				lose(y, ReasonHeadOn, x.ID)
				x.PendingScore += a.cfg.HeadKillScore
				x.Kills++
			}
		}
	}

	// 5. collision resolution, repeated while survivors get encircled
	resolved := ResolveCollisions(grabs, losers)
	for {
		caught := enclosed(active, resolved, losers)
		if len(caught) == 0 {
			break
		}
		for _, ag := range active {
			if by, ok := caught[ag.ID]; ok {
				lose(ag, ReasonEnclosed, by)
			}
		}
		resolved = ResolveCollisions(grabs, losers)
	}

	// 6. commit territory
	for _, ag := range active {
		if losers[ag.ID] {
			continue
		}
		grab := resolved[ag.ID]
		if len(grab) == 0 {
			continue
		}
		ag.Territory.Add(grab)
		ag.PendingScore += a.cfg.NeutralCellScore * len(grab)
		ag.CellsCaptured += len(grab)
		for _, o := range active {
			if o == ag {
				continue
			}
			removed := o.Territory.RemovePoints(grab)
			if len(removed) > 0 {
				ag.PendingScore += a.cfg.AnnexCellBonus * len(removed)
				res.Annexed[ag.ID] += len(removed)
				o.annexedBy = ag.ID
			}
		}
		ag.Trail = nil
		res.Captures[ag.ID] = grab.Sorted()
	}
	res.Pickups = a.collectBonuses(resolved, losers)

	// 7. remove losers
	for _, ag := range active {
		if losers[ag.ID] {
			a.eliminate(ag, elims[ag.ID].Reason, a.cfg.RespawnTicks > 0)
			res.Eliminations = append(res.Eliminations, elims[ag.ID])
		}
	}

	// 8. settle scores
	for _, ag := range active {
		if !losers[ag.ID] {
			ag.Score += ag.PendingScore
		}
		ag.PendingScore = 0
		ag.moved = false
	}
	res.Respawns = a.respawn()
	a.expireBonuses()

	// 9. continuation
	a.status = a.evaluate()
	res.Status = a.status
	return res
}

// eliminate clears an agent off the board. With respawn the agent waits
// RespawnTicks before it is re-seeded.
func (a *Arena) eliminate(ag *Agent, reason EliminationReason, respawn bool) {
	ag.Territory.Clear()
	ag.Trail = nil
	ag.PendingScore = 0
	ag.NitroActive = false
	ag.NitroTicks = 0
	ag.Cadence = ag.BaseCadence
	ag.Reason = reason
	ag.EliminatedAt = a.tick
	if respawn {
		ag.State = Respawning
		ag.RespawnIn = a.cfg.RespawnTicks
		return
	}
	ag.State = Eliminated
}

// respawn counts waiting agents down and re-seeds those whose delay ran out.
// An agent with no free block waits another tick.
func (a *Arena) respawn() []string {
	var back []string
	for _, ag := range a.agents {
		if ag.State != Respawning || ag.EliminatedAt == a.tick {
			continue
		}
		if ag.RespawnIn > 0 {
			ag.RespawnIn--
		}
		if ag.RespawnIn > 0 {
			continue
		}
		spawn, ok := a.FreeSpawn()
		if !ok {
			a.log.Warn("respawn stalled", "agent", ag.ID, "tick", a.tick)
			continue
		}
		t := NewTerritory(ag.ID, spawn)
		t.SetLogger(a.log)
		ag.reset(spawn, t)
		back = append(back, ag.ID)
	}
	return back
}

func (a *Arena) evaluate() Status {
	owned := 0
	for _, ag := range a.agents {
		owned += ag.Territory.Len()
	}
	if len(a.agents) > 0 && owned >= a.grid.Area() {
		ranking := rank(a.agents)
		return Status{
			Phase:   PhaseEndgame,
			Reason:  EndFullBoard,
			Winner:  fullBoardWinner(ranking),
			Ranking: ranking,
		}
	}
	active := a.ActiveCount()
	if (len(a.agents) >= 2 && active <= 1) || (len(a.agents) == 1 && active == 0) {
		return Status{Phase: PhaseEndgame, Reason: EndLastStanding, Ranking: rank(a.agents)}
	}
	if a.cfg.MaxTicks > 0 && a.tick >= a.cfg.MaxTicks {
		return Status{Phase: PhaseEndgame, Reason: EndTimeLimit, Ranking: rank(a.agents)}
	}
	return Status{Phase: PhaseRunning}
}
