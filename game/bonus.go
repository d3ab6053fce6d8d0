package game

// BonusKind identifies what a pickup grants.
type BonusKind uint8

const (
	BonusNitro BonusKind = iota + 1
)

func (k BonusKind) String() string {
	switch k {
	case BonusNitro:
		return "nitro"
	}
	return "unknown"
}

// Bonus is a pickup lying on the board.
type Bonus struct {
	Kind BonusKind
	Pos  Point
	// TTL is the number of ticks left before the bonus vanishes.
	TTL int
}

// Pickup records a bonus consumed during a tick.
type Pickup struct {
	AgentID string
	Kind    BonusKind
	Pos     Point
}

func (a *Arena) applyBonus(ag *Agent, b Bonus) {
	switch b.Kind {
	case BonusNitro:
		ag.GiveNitro(a.cfg.NitroTicks)
	}
}

// collectBonuses hands each bonus to the first surviving agent, in roster
// order, whose head is on it or whose resolved grab covers it.
func (a *Arena) collectBonuses(grabs map[string]PointSet, losers map[string]bool) []Pickup {
	var picked []Pickup
	kept := a.bonuses[:0]
	for _, b := range a.bonuses {
		var taker *Agent
		for _, ag := range a.agents {
			if !ag.Active() || losers[ag.ID] {
				continue
			}
			if ag.Pos == b.Pos || grabs[ag.ID].Has(b.Pos) {
				taker = ag
				break
			}
		}
		if taker == nil {
			kept = append(kept, b)
			continue
		}
		a.applyBonus(taker, b)
		picked = append(picked, Pickup{AgentID: taker.ID, Kind: b.Kind, Pos: b.Pos})
	}
	a.bonuses = kept
	return picked
}

// expireBonuses counts every bonus down and drops those that ran out. A bonus
// placed with a zero lifetime never expires.
func (a *Arena) expireBonuses() {
	kept := a.bonuses[:0]
	for _, b := range a.bonuses {
		if b.TTL > 0 {
			b.TTL--
			if b.TTL == 0 {
				continue
			}
		}
		kept = append(kept, b)
	}
	a.bonuses = kept
}
