package main

import (
	"unicode"

	"github.com/gdamore/tcell/v2"

	"grabthemap/game"
)

// Key is one physical key: a special key, or KeyRune plus a rune.
type Key struct {
	Code tcell.Key
	Rune rune
}

func runeKey(r rune) Key { return Key{Code: tcell.KeyRune, Rune: r} }

// matches compares case-insensitively so Shift or Caps Lock don't lock a
// player out.
func (k Key) matches(code tcell.Key, r rune) bool {
	if k.Code != code {
		return false
	}
	if code != tcell.KeyRune {
		return true
	}
	return unicode.ToLower(k.Rune) == unicode.ToLower(r)
}

// Label is the key's name for the title screen.
func (k Key) Label() string {
	if k.Code == tcell.KeyRune {
		if k.Rune == ' ' {
			return "Space"
		}
		return string(unicode.ToUpper(k.Rune))
	}
	if name, ok := tcell.KeyNames[k.Code]; ok {
		return name
	}
	return "?"
}

// Bindings is one player's controls.
type Bindings struct {
	Up, Down, Left, Right Key
	Boost                 Key
}

// DefaultBindings are handed out in player order.
var DefaultBindings = []Bindings{
	{Up: runeKey('w'), Down: runeKey('s'), Left: runeKey('a'), Right: runeKey('d'), Boost: Key{Code: tcell.KeyTab}},
	{Up: Key{Code: tcell.KeyUp}, Down: Key{Code: tcell.KeyDown}, Left: Key{Code: tcell.KeyLeft}, Right: Key{Code: tcell.KeyRight}, Boost: runeKey(' ')},
	{Up: runeKey('i'), Down: runeKey('k'), Left: runeKey('j'), Right: runeKey('l'), Boost: runeKey('u')},
	{Up: runeKey('8'), Down: runeKey('5'), Left: runeKey('4'), Right: runeKey('6'), Boost: runeKey('0')},
}

// Direction maps a key press to a heading. Boost is reported separately by
// IsBoost because it toggles rather than steers.
func (b Bindings) Direction(code tcell.Key, r rune) (game.Direction, bool) {
	switch {
	case b.Up.matches(code, r):
		return game.DirUp, true
	case b.Down.matches(code, r):
		return game.DirDown, true
	case b.Left.matches(code, r):
		return game.DirLeft, true
	case b.Right.matches(code, r):
		return game.DirRight, true
	}
	return game.DirNone, false
}

// IsBoost reports whether the press is this player's boost key.
func (b Bindings) IsBoost(code tcell.Key, r rune) bool {
	return b.Boost.matches(code, r)
}

// Summary is a one-line description of the controls.
func (b Bindings) Summary() string {
	return b.Up.Label() + b.Left.Label() + b.Down.Label() + b.Right.Label() + " move, " + b.Boost.Label() + " nitro"
}
