package main

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"grabthemap/game"
)

func TestBindingsDirection(t *testing.T) {
	tests := []struct {
		player int
		code   tcell.Key
		r      rune
		want   game.Direction
	}{
		{0, tcell.KeyRune, 'w', game.DirUp},
		{0, tcell.KeyRune, 'A', game.DirLeft},
		{0, tcell.KeyRune, 's', game.DirDown},
		{0, tcell.KeyRune, 'd', game.DirRight},
		{1, tcell.KeyUp, 0, game.DirUp},
		{1, tcell.KeyDown, 0, game.DirDown},
		{1, tcell.KeyLeft, 0, game.DirLeft},
		{1, tcell.KeyRight, 0, game.DirRight},
		{2, tcell.KeyRune, 'i', game.DirUp},
		{2, tcell.KeyRune, 'j', game.DirLeft},
		{3, tcell.KeyRune, '5', game.DirDown},
		{3, tcell.KeyRune, '6', game.DirRight},
	}
	for _, tt := range tests {
		got, ok := DefaultBindings[tt.player].Direction(tt.code, tt.r)
		if !ok || got != tt.want {
			t.Errorf("player %d key %v %q: got %s, %v; want %s", tt.player, tt.code, tt.r, got, ok, tt.want)
		}
	}
	if _, ok := DefaultBindings[0].Direction(tcell.KeyUp, 0); ok {
		t.Error("arrow keys belong to player 2")
	}
	if _, ok := DefaultBindings[1].Direction(tcell.KeyRune, 'w'); ok {
		t.Error("WASD belongs to player 1")
	}
}

func TestBindingsBoost(t *testing.T) {
	if !DefaultBindings[0].IsBoost(tcell.KeyTab, 0) {
		t.Error("Tab should be player 1's boost")
	}
	if !DefaultBindings[1].IsBoost(tcell.KeyRune, ' ') {
		t.Error("Space should be player 2's boost")
	}
	if DefaultBindings[1].IsBoost(tcell.KeyTab, 0) {
		t.Error("Tab is not player 2's boost")
	}
}

func TestDefaultBindingsDisjoint(t *testing.T) {
	owner := make(map[Key]int)
	for i, b := range DefaultBindings {
		for _, k := range []Key{b.Up, b.Down, b.Left, b.Right, b.Boost} {
			if prev, ok := owner[k]; ok {
				t.Errorf("key %s bound to players %d and %d", k.Label(), prev, i)
			}
			owner[k] = i
		}
	}
}

func TestKeyLabel(t *testing.T) {
	if got := runeKey('w').Label(); got != "W" {
		t.Errorf("got %q, want W", got)
	}
	if got := runeKey(' ').Label(); got != "Space" {
		t.Errorf("got %q, want Space", got)
	}
	if got := (Key{Code: tcell.KeyUp}).Label(); got != "Up" {
		t.Errorf("got %q, want Up", got)
	}
	if got := DefaultBindings[0].Summary(); got != "WASD move, Tab nitro" {
		t.Errorf("got %q", got)
	}
}
