package game

import "strings"

// Direction is a heading on the grid.
type Direction uint8

const (
	DirNone Direction = iota
	DirUp
	DirDown
	DirLeft
	DirRight
)

// Delta is the one-cell displacement for d. Y grows downwards.
func (d Direction) Delta() Point {
	switch d {
	case DirUp:
		return Point{0, -1}
	case DirDown:
		return Point{0, 1}
	case DirLeft:
		return Point{-1, 0}
	case DirRight:
		return Point{1, 0}
	}
	return Point{}
}

// Opposite returns the reverse heading.
func (d Direction) Opposite() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	case DirRight:
		return DirLeft
	}
	return DirNone
}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	}
	return "none"
}

// ParseDirection accepts "up", "down", "left" and "right" in any case.
// Anything else yields DirNone.
func ParseDirection(s string) Direction {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "u":
		return DirUp
	case "down", "d":
		return DirDown
	case "left", "l":
		return DirLeft
	case "right", "r":
		return DirRight
	}
	return DirNone
}

// directionOf maps a unit displacement back to a heading.
func directionOf(d Point) Direction {
	switch {
	case d.X > 0:
		return DirRight
	case d.X < 0:
		return DirLeft
	case d.Y > 0:
		return DirDown
	case d.Y < 0:
		return DirUp
	}
	return DirNone
}
