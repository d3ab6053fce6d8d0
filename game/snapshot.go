package game

import "slices"

// AgentView is a copy of one agent's public state.
type AgentView struct {
	ID          string
	Name        string
	Colors      Colors
	Head        Point
	Heading     Direction
	Trail       []Point
	Territory   []Point
	Score       int
	State       LifeState
	Reason      EliminationReason
	RespawnIn   int
	Kills       int
	NitroTicks  int
	NitroActive bool
}

// Snapshot is a consistent copy of the arena between ticks. It shares no
// memory with the arena.
type Snapshot struct {
	Tick    int
	Width   int
	Height  int
	Agents  []AgentView
	Bonuses []Bonus
	Status  Status
}

// Snapshot copies the current state for renderers and hosts.
func (a *Arena) Snapshot() Snapshot {
	s := Snapshot{
		Tick:    a.tick,
		Width:   a.grid.Width,
		Height:  a.grid.Height,
		Agents:  make([]AgentView, 0, len(a.agents)),
		Bonuses: slices.Clone(a.bonuses),
		Status:  a.status,
	}
	s.Status.Ranking = slices.Clone(a.status.Ranking)
	for _, ag := range a.agents {
		s.Agents = append(s.Agents, AgentView{
			ID:          ag.ID,
			Name:        ag.Name,
			Colors:      ag.Colors,
			Head:        ag.Pos,
			Heading:     ag.Heading,
			Trail:       slices.Clone(ag.Trail),
			Territory:   ag.Territory.Points(),
			Score:       ag.Score,
			State:       ag.State,
			Reason:      ag.Reason,
			RespawnIn:   ag.RespawnIn,
			Kills:       ag.Kills,
			NitroTicks:  ag.NitroTicks,
			NitroActive: ag.NitroActive,
		})
	}
	return s
}
