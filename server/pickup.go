package main

import "grabthemap/game"

// maxBoardBonuses caps how many untaken nitros can lie on the board at once
const maxBoardBonuses = 3

// BonusSpawner drops a nitro pickup on a random free cell every few ticks
type BonusSpawner struct {
	Every int
	timer int
}

// NewBonusSpawner creates a spawner firing every `every` ticks; 0 disables it
func NewBonusSpawner(every int) *BonusSpawner {
	return &BonusSpawner{Every: every, timer: every}
}

// Update ticks the spawner once and returns the bonus it placed, if any
func (s *BonusSpawner) Update(a *game.Arena) (game.Bonus, bool) {
	if s.Every <= 0 {
		return game.Bonus{}, false
	}
	s.timer--
	if s.timer > 0 {
		return game.Bonus{}, false
	}
	s.timer = s.Every
	if len(a.Bonuses()) >= maxBoardBonuses {
		return game.Bonus{}, false
	}
	p, ok := a.FreeCell()
	if !ok {
		return game.Bonus{}, false
	}
	if err := a.PlaceBonus(game.BonusNitro, p); err != nil {
		return game.Bonus{}, false
	}
	bs := a.Bonuses()
	return bs[len(bs)-1], true
}

// Reset restarts the countdown for a new match
func (s *BonusSpawner) Reset() {
	s.timer = s.Every
}
