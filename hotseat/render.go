package main

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"grabthemap/game"
)

// canvas is the drawing surface; tcell.Screen satisfies it.
type canvas interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Size() (int, int)
}

const (
	cellWidth = 2 // terminal columns per board cell
	boardTop  = 2 // rows above the board frame
)

var (
	styleDefault = tcell.StyleDefault
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleTitle   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleBonus   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleFrame   = tcell.StyleDefault.Foreground(tcell.ColorSilver)
)

// agentStyles are the tcell styles for one agent's cells.
type agentStyles struct {
	head, territory, trail tcell.Style
	text                   tcell.Style
}

// hexColor converts a "#rrggbb" string to a tcell color.
func hexColor(hex string) tcell.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return tcell.ColorWhite
	}
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func newAgentStyles(c game.Colors) agentStyles {
	return agentStyles{
		head:      styleDefault.Foreground(hexColor(c.Head)).Background(hexColor(c.Head)),
		territory: styleDefault.Background(hexColor(c.Territory)),
		trail:     styleDefault.Foreground(hexColor(c.Trail)),
		text:      styleDefault.Foreground(hexColor(c.Territory)).Bold(true),
	}
}

// playerColors spreads n hues evenly around the HCL wheel and derives the
// head and trail shades from each territory color.
func playerColors(n int) []game.Colors {
	out := make([]game.Colors, n)
	for i := range out {
		base := colorful.Hcl(float64(i)*360/float64(n)+20, 0.7, 0.55).Clamped()
		out[i] = game.Colors{
			Territory: base.Hex(),
			Head:      base.BlendLab(colorful.Color{R: 1, G: 1, B: 1}, 0.45).Clamped().Hex(),
			Trail:     base.BlendLab(colorful.Color{R: 1, G: 1, B: 1}, 0.25).Clamped().Hex(),
		}
	}
	return out
}

func drawText(c canvas, x, y int, s string, style tcell.Style) int {
	for _, r := range s {
		c.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

func drawCentered(c canvas, y int, s string, style tcell.Style) {
	w, _ := c.Size()
	drawText(c, max(0, (w-len([]rune(s)))/2), y, s, style)
}

// drawFrame outlines the board area with box-drawing runes.
func drawFrame(c canvas, x, y, w, h int) {
	for i := x + 1; i < x+w-1; i++ {
		c.SetContent(i, y, '─', nil, styleFrame)
		c.SetContent(i, y+h-1, '─', nil, styleFrame)
	}
	for j := y + 1; j < y+h-1; j++ {
		c.SetContent(x, j, '│', nil, styleFrame)
		c.SetContent(x+w-1, j, '│', nil, styleFrame)
	}
	c.SetContent(x, y, '┌', nil, styleFrame)
	c.SetContent(x+w-1, y, '┐', nil, styleFrame)
	c.SetContent(x, y+h-1, '└', nil, styleFrame)
	c.SetContent(x+w-1, y+h-1, '┘', nil, styleFrame)
}

// cellGlyph returns the two runes and style for one board cell.
func cellGlyph(cell game.Cell, styles map[string]agentStyles) ([cellWidth]rune, tcell.Style) {
	st, ok := styles[cell.Owner]
	switch cell.Kind {
	case game.CellHead:
		if ok {
			return [cellWidth]rune{'█', '█'}, st.head
		}
	case game.CellTrail:
		if ok {
			return [cellWidth]rune{'░', '░'}, st.trail
		}
	case game.CellTerritory:
		if ok {
			return [cellWidth]rune{' ', ' '}, st.territory
		}
	case game.CellBonus:
		return [cellWidth]rune{'<', '>'}, styleBonus
	}
	return [cellWidth]rune{' ', '·'}, styleDim
}

// drawBoard paints the board inside a frame starting at (x, y).
func drawBoard(c canvas, x, y int, b game.Board, styles map[string]agentStyles) {
	drawFrame(c, x, y, b.Width*cellWidth+2, b.Height+2)
	for row := 0; row < b.Height; row++ {
		for col := 0; col < b.Width; col++ {
			glyph, style := cellGlyph(b.At(game.Point{X: col, Y: row}), styles)
			for k, r := range glyph {
				c.SetContent(x+1+col*cellWidth+k, y+1+row, r, nil, style)
			}
		}
	}
}

// hudLine describes one agent for the score bar.
func hudLine(a *game.Agent) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %d", a.Name, a.Score)
	switch a.State {
	case game.Eliminated:
		sb.WriteString(" ✗")
	case game.Respawning:
		fmt.Fprintf(&sb, " (%d)", a.RespawnIn)
	}
	if a.NitroTicks > 0 {
		fmt.Fprintf(&sb, " N%d", a.NitroTicks)
		if a.NitroActive {
			sb.WriteString("!")
		}
	}
	return sb.String()
}

func drawHUD(c canvas, a *game.Arena, styles map[string]agentStyles) {
	x := 1
	for _, ag := range a.Agents() {
		x = drawText(c, x, 0, hudLine(ag), styles[ag.ID].text) + 3
	}
	cfg := a.Config()
	status := fmt.Sprintf("tick %d", a.Ticks())
	if cfg.MaxTicks > 0 {
		status = fmt.Sprintf("tick %d/%d", a.Ticks(), cfg.MaxTicks)
	}
	drawText(c, 1, 1, status+"   Esc: menu", styleDim)
}

func endReasonText(st game.Status) string {
	switch st.Reason {
	case game.EndFullBoard:
		return "The board is full"
	case game.EndLastStanding:
		return "Last one standing"
	case game.EndTimeLimit:
		return "Time is up"
	}
	return ""
}

// rankingLines formats the final standings, one row per agent.
func rankingLines(st game.Status) []string {
	lines := make([]string, 0, len(st.Ranking))
	for i, s := range st.Ranking {
		state := "alive"
		if !s.Alive {
			state = fmt.Sprintf("out at tick %d", s.EliminatedAt)
		}
		lines = append(lines, fmt.Sprintf("%d. %-10s %5d pts %4d cells %2d kills  %s",
			i+1, s.Name, s.Score, s.Cells, s.Kills, state))
	}
	return lines
}
