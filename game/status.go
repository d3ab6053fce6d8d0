package game

import (
	"cmp"
	"slices"
)

// Phase is the scene-level state reported to hosts.
type Phase string

const (
	PhaseRunning Phase = "running"
	PhaseMenu    Phase = "menu"
	PhaseEndgame Phase = "endgame"
)

// EndReason says why a game finished.
type EndReason string

const (
	EndNone         EndReason = ""
	EndFullBoard    EndReason = "full_board"
	EndLastStanding EndReason = "last_standing"
	EndTimeLimit    EndReason = "time_limit"
)

// Standing is one row of the final ranking.
type Standing struct {
	ID           string
	Name         string
	Score        int
	Alive        bool
	EliminatedAt int
	Cells        int
	Kills        int
}

// Status is the continuation verdict after a tick.
type Status struct {
	Phase  Phase
	Reason EndReason
	// Winner is the ID of the outright winner of a full board, empty on a tie
	// or for any other ending.
	Winner  string
	Ranking []Standing
}

// Over reports whether the game has ended.
func (s Status) Over() bool {
	return s.Phase == PhaseEndgame
}

// rank orders agents by descending score, survivors before the eliminated,
// later eliminations before earlier ones, then by name and ID.
func rank(agents []*Agent) []Standing {
	out := make([]Standing, 0, len(agents))
	for _, a := range agents {
		out = append(out, Standing{
			ID:           a.ID,
			Name:         a.Name,
			Score:        a.Score,
			Alive:        a.State != Eliminated,
			EliminatedAt: a.EliminatedAt,
			Cells:        a.Territory.Len(),
			Kills:        a.Kills,
		})
	}
	slices.SortFunc(out, func(x, y Standing) int {
		if c := cmp.Compare(y.Score, x.Score); c != 0 {
			return c
		}
		if x.Alive != y.Alive {
			if x.Alive {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(y.EliminatedAt, x.EliminatedAt); c != 0 {
			return c
		}
		if c := cmp.Compare(x.Name, y.Name); c != 0 {
			return c
		}
		return cmp.Compare(x.ID, y.ID)
	})
	return out
}

// fullBoardWinner returns the ID holding the strictly highest score.
func fullBoardWinner(ranking []Standing) string {
	if len(ranking) == 0 {
		return ""
	}
	if len(ranking) > 1 && ranking[1].Score == ranking[0].Score {
		return ""
	}
	return ranking[0].ID
}
