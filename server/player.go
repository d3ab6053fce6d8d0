package main

import "grabthemap/game"

// Seat is a connected player's place in a room. It outlives individual
// matches; the arena agent with the same ID exists only while one is running.
type Seat struct {
	ID           string
	Name         string
	Slot         int // palette index
	AuthPlayerID int64
	Ready        bool
	// InMatch is set when the seat was given an agent in the current match.
	InMatch bool
	Stats   PlayerMatchStats
}

// NewSeat creates a seat with the palette slot's colors
func NewSeat(id, name string, slot int) *Seat {
	return &Seat{
		ID:   id,
		Name: name,
		Slot: slot,
	}
}

// Colors returns the seat's palette colors
func (s *Seat) Colors() game.Colors {
	return Palette[s.Slot].Colors
}

// Spec describes the seat as an arena agent spawning at p
func (s *Seat) Spec(p game.Point) game.AgentSpec {
	return game.AgentSpec{
		ID:     s.ID,
		Name:   s.Name,
		Colors: s.Colors(),
		Spawn:  p,
	}
}

// ToInfo converts to the lobby roster entry
func (s *Seat) ToInfo() SeatInfo {
	return SeatInfo{
		ID:    s.ID,
		Name:  s.Name,
		Color: Palette[s.Slot].Base,
		Ready: s.Ready,
	}
}

// ResetMatch clears per-match state before a new match
func (s *Seat) ResetMatch() {
	s.Ready = false
	s.InMatch = false
	s.Stats = PlayerMatchStats{}
}

// toInput converts a wire command into an arena input. Unknown directions
// become DirNone, which the arena ignores.
func toInput(in ClientInput) game.Input {
	out := game.Input{Dir: game.ParseDirection(in.Dir)}
	if in.Boost != nil {
		if *in.Boost {
			out.Boost = game.ToggleOn
		} else {
			out.Boost = game.ToggleOff
		}
	}
	return out
}

// Binary input flags: [0x01, flags]. Bits 0-2 carry the direction
// (0 none, 1 up, 2 down, 3 left, 4 right); bits 3-4 the boost toggle
// (0 keep, 1 on, 2 off).
const (
	binaryInputMarker = 0x01
	binaryDirMask     = 0x07
	binaryBoostShift  = 3
	binaryBoostMask   = 0x03
)

// decodeBinaryInput decodes a compact 2-byte input message
func decodeBinaryInput(msg []byte) (game.Input, bool) {
	if len(msg) != 2 || msg[0] != binaryInputMarker {
		return game.Input{}, false
	}
	flags := msg[1]
	var in game.Input
	switch flags & binaryDirMask {
	case 1:
		in.Dir = game.DirUp
	case 2:
		in.Dir = game.DirDown
	case 3:
		in.Dir = game.DirLeft
	case 4:
		in.Dir = game.DirRight
	}
	switch (flags >> binaryBoostShift) & binaryBoostMask {
	case 1:
		in.Boost = game.ToggleOn
	case 2:
		in.Boost = game.ToggleOff
	}
	return in, true
}
