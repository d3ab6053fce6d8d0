package game

import (
	"errors"
	"fmt"
	"log/slog"
)

// Config holds the rules an Arena is played under.
type Config struct {
	Width  int
	Height int

	// MoveCadence is the number of ticks per cell step; NitroCadence replaces
	// it while nitro is active.
	MoveCadence  int
	NitroCadence int
	// NitroTicks is the charge granted by one nitro pickup.
	NitroTicks int
	// BonusLifetime is how many ticks an untaken bonus stays on the board.
	BonusLifetime int

	NeutralCellScore int
	AnnexCellBonus   int
	TrailKillScore   int
	HeadKillScore    int

	// MaxTicks ends the game with a ranked finish; 0 disables the limit.
	MaxTicks int
	// RespawnTicks brings eliminated agents back after a delay; 0 makes
	// elimination final.
	RespawnTicks int

	// Seed feeds the PRNG used for spawn placement.
	Seed uint64

	Logger *slog.Logger
}

// DefaultConfig mirrors the classic 30x30 board.
func DefaultConfig() Config {
	return Config{
		Width:            30,
		Height:           30,
		MoveCadence:      2,
		NitroCadence:     1,
		NitroTicks:       10,
		BonusLifetime:    100,
		NeutralCellScore: 1,
		AnnexCellBonus:   4,
		TrailKillScore:   10,
		HeadKillScore:    5,
		MaxTicks:         0,
		RespawnTicks:     0,
		Seed:             1,
	}
}

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid game config")

// Validate rejects boards too small to seed an agent and negative rates.
func (c Config) Validate() error {
	switch {
	case c.Width < 3 || c.Height < 3:
		return fmt.Errorf("%w: board %dx%d smaller than a spawn block", ErrInvalidConfig, c.Width, c.Height)
	case c.MoveCadence < 1:
		return fmt.Errorf("%w: move cadence %d", ErrInvalidConfig, c.MoveCadence)
	case c.NitroCadence < 1:
		return fmt.Errorf("%w: nitro cadence %d", ErrInvalidConfig, c.NitroCadence)
	case c.NitroTicks < 0 || c.BonusLifetime < 0:
		return fmt.Errorf("%w: negative bonus timing", ErrInvalidConfig)
	case c.NeutralCellScore < 0 || c.AnnexCellBonus < 0 || c.TrailKillScore < 0 || c.HeadKillScore < 0:
		return fmt.Errorf("%w: score rates must not be negative", ErrInvalidConfig)
	case c.MaxTicks < 0 || c.RespawnTicks < 0:
		return fmt.Errorf("%w: negative tick limit", ErrInvalidConfig)
	}
	return nil
}

// Grid returns the board dimensions.
func (c Config) Grid() Grid {
	return Grid{Width: c.Width, Height: c.Height}
}
