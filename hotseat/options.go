package main

import (
	"flag"
	"fmt"
	"time"

	"grabthemap/game"
)

const maxPlayers = 4

// Options configures a hotseat session.
type Options struct {
	Players    int
	Width      int
	Height     int
	TickRate   int // arena ticks per second
	BonusEvery int // ticks between nitro drops, 0 disables
	TimeLimit  int // MaxTicks; 0 plays until one is left
	Respawn    int // RespawnTicks; 0 makes elimination final
	Seed       uint64
	Sound      bool
	LogPath    string
}

// DefaultOptions is a two player duel on a terminal-sized board.
func DefaultOptions() Options {
	return Options{
		Players:    2,
		Width:      36,
		Height:     20,
		TickRate:   12,
		BonusEvery: 60,
		Sound:      true,
	}
}

// ParseOptions reads command-line flags.
func ParseOptions(args []string) (Options, error) {
	o := DefaultOptions()
	fs := flag.NewFlagSet("hotseat", flag.ContinueOnError)
	fs.IntVar(&o.Players, "players", o.Players, "number of players (2-4)")
	fs.IntVar(&o.Width, "width", o.Width, "board width in cells")
	fs.IntVar(&o.Height, "height", o.Height, "board height in cells")
	fs.IntVar(&o.TickRate, "tick-rate", o.TickRate, "ticks per second")
	fs.IntVar(&o.BonusEvery, "bonus-every", o.BonusEvery, "ticks between nitro drops (0 disables)")
	fs.IntVar(&o.TimeLimit, "time-limit", o.TimeLimit, "end after N ticks (0 = last one standing)")
	fs.IntVar(&o.Respawn, "respawn", o.Respawn, "respawn delay in ticks (0 = no respawn)")
	fs.Uint64Var(&o.Seed, "seed", o.Seed, "spawn seed, 0 picks one per game")
	fs.BoolVar(&o.Sound, "sound", o.Sound, "play sound cues")
	fs.StringVar(&o.LogPath, "log", o.LogPath, "write logs to this file")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	return o, o.Validate()
}

// Validate checks the host settings and the rules they produce.
func (o Options) Validate() error {
	switch {
	case o.Players < 2 || o.Players > maxPlayers:
		return fmt.Errorf("players must be in [2,%d], got %d", maxPlayers, o.Players)
	case o.TickRate < 1:
		return fmt.Errorf("tick rate must be positive, got %d", o.TickRate)
	case o.BonusEvery < 0:
		return fmt.Errorf("bonus interval must not be negative, got %d", o.BonusEvery)
	}
	return o.Rules(0).Validate()
}

// Rules converts the options into arena rules for one game.
func (o Options) Rules(seed uint64) game.Config {
	cfg := game.DefaultConfig()
	cfg.Width = o.Width
	cfg.Height = o.Height
	cfg.MaxTicks = o.TimeLimit
	cfg.RespawnTicks = o.Respawn
	cfg.Seed = seed
	return cfg
}

// TickDuration is the wall-clock length of one tick.
func (o Options) TickDuration() time.Duration {
	return time.Second / time.Duration(o.TickRate)
}
