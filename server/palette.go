package main

import (
	"github.com/lucasb-eyer/go-colorful"

	"grabthemap/game"
)

// PaletteEntry is one player color scheme
type PaletteEntry struct {
	Name   string      `json:"name"`
	Base   string      `json:"base"` // territory color (hex)
	Colors game.Colors `json:"-"`
}

// Palette is the fixed set of player colors, handed out in join order.
// A room never seats more players than there are entries.
var Palette = []PaletteEntry{
	{Name: "teal", Base: "#5a9f99"},
	{Name: "raspberry", Base: "#d81b60"},
	{Name: "slate", Base: "#607d8b"},
	{Name: "orange", Base: "#f57c00"},
	{Name: "indigo", Base: "#5c6bc0"},
	{Name: "cocoa", Base: "#8d6e63"},
}

func init() {
	black, _ := colorful.Hex("#000000")
	white, _ := colorful.Hex("#ffffff")
	for i, e := range Palette {
		base, err := colorful.Hex(e.Base)
		if err != nil {
			panic("bad palette color " + e.Base)
		}
		// heads darker, trails lighter than the land they grow from
		Palette[i].Colors = game.Colors{
			Head:      base.BlendLab(black, 0.35).Clamped().Hex(),
			Territory: base.Hex(),
			Trail:     base.BlendLab(white, 0.4).Clamped().Hex(),
		}
	}
}

// freeSlot returns the lowest palette index not in use, or -1.
func freeSlot(used map[int]bool) int {
	for i := range Palette {
		if !used[i] {
			return i
		}
	}
	return -1
}
