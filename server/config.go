package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"grabthemap/game"
)

// ServerConfig is everything main needs to bring the server up.
type ServerConfig struct {
	Addr      string
	ClientDir string
	DBPath    string
	// BaseURL prefixes session links rendered into QR codes.
	BaseURL string

	TickRate       int // room ticks per second
	BroadcastEvery int // state frames every N ticks
	MaxPlayers     int
	CountdownTicks int
	ResultTicks    int
	BonusEvery     int // spawn a nitro every N playing ticks, 0 disables

	Rules game.Config
}

// DefaultServerConfig returns the settings used when nothing is overridden.
func DefaultServerConfig() ServerConfig {
	rules := game.DefaultConfig()
	rules.Seed = 0
	return ServerConfig{
		Addr:           ":8080",
		DBPath:         "grabthemap.db",
		TickRate:       10,
		BroadcastEvery: 1,
		MaxPlayers:     6,
		CountdownTicks: 30,
		ResultTicks:    100,
		BonusEvery:     50,
		Rules:          rules,
	}
}

// TickDuration is the wall-clock length of one room tick.
func (c ServerConfig) TickDuration() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// Validate checks the server settings and the game rules they carry.
func (c ServerConfig) Validate() error {
	switch {
	case c.TickRate < 1:
		return fmt.Errorf("tick rate must be positive, got %d", c.TickRate)
	case c.BroadcastEvery < 1:
		return fmt.Errorf("broadcast interval must be positive, got %d", c.BroadcastEvery)
	case c.MaxPlayers < 1 || c.MaxPlayers > len(Palette):
		return fmt.Errorf("max players must be in [1,%d], got %d", len(Palette), c.MaxPlayers)
	case c.CountdownTicks < 0 || c.ResultTicks < 0 || c.BonusEvery < 0:
		return errors.New("countdown, result and bonus intervals must not be negative")
	}
	return c.Rules.Validate()
}

// LoadConfig parses command-line flags, then fills anything not given on the
// command line from GRAB_* environment variables. A .env file next to the
// binary is loaded first if present.
func LoadConfig(args []string) (ServerConfig, error) {
	cfg := DefaultServerConfig()

	fsFlags := flag.NewFlagSet("grabthemap", flag.ContinueOnError)
	envFile := fsFlags.String("env", ".env", "dotenv file with GRAB_* overrides")
	fsFlags.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fsFlags.StringVar(&cfg.ClientDir, "client", cfg.ClientDir, "Path to client directory (default: ../client)")
	fsFlags.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path, empty disables persistence")
	fsFlags.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "public URL used in join QR codes")
	fsFlags.IntVar(&cfg.TickRate, "tick-rate", cfg.TickRate, "room ticks per second")
	fsFlags.IntVar(&cfg.BroadcastEvery, "broadcast-every", cfg.BroadcastEvery, "send state every N ticks")
	fsFlags.IntVar(&cfg.MaxPlayers, "max-players", cfg.MaxPlayers, "players per room")
	fsFlags.IntVar(&cfg.BonusEvery, "bonus-every", cfg.BonusEvery, "spawn a nitro every N ticks (0 disables)")
	fsFlags.IntVar(&cfg.Rules.Width, "width", cfg.Rules.Width, "board width in cells")
	fsFlags.IntVar(&cfg.Rules.Height, "height", cfg.Rules.Height, "board height in cells")
	fsFlags.IntVar(&cfg.Rules.MoveCadence, "cadence", cfg.Rules.MoveCadence, "ticks per cell step")
	seed := fsFlags.Uint64("seed", cfg.Rules.Seed, "spawn PRNG seed, 0 picks one per match")
	if err := fsFlags.Parse(args); err != nil {
		return cfg, err
	}
	cfg.Rules.Seed = *seed

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("load %s: %w", *envFile, err)
		}
	}

	explicit := make(map[string]bool)
	fsFlags.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	str := func(name, env string, dst *string) {
		if v, ok := os.LookupEnv(env); ok && !explicit[name] {
			*dst = v
		}
	}
	num := func(name, env string, dst *int) error {
		v, ok := os.LookupEnv(env)
		if !ok || explicit[name] {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", env, err)
		}
		*dst = n
		return nil
	}

	str("addr", "GRAB_ADDR", &cfg.Addr)
	str("client", "GRAB_CLIENT_DIR", &cfg.ClientDir)
	str("db", "GRAB_DB", &cfg.DBPath)
	str("base-url", "GRAB_BASE_URL", &cfg.BaseURL)
	for _, n := range []struct {
		flag, env string
		dst       *int
	}{
		{"tick-rate", "GRAB_TICK_RATE", &cfg.TickRate},
		{"broadcast-every", "GRAB_BROADCAST_EVERY", &cfg.BroadcastEvery},
		{"max-players", "GRAB_MAX_PLAYERS", &cfg.MaxPlayers},
		{"bonus-every", "GRAB_BONUS_EVERY", &cfg.BonusEvery},
		{"width", "GRAB_WIDTH", &cfg.Rules.Width},
		{"height", "GRAB_HEIGHT", &cfg.Rules.Height},
		{"cadence", "GRAB_CADENCE", &cfg.Rules.MoveCadence},
	} {
		if err := num(n.flag, n.env, n.dst); err != nil {
			return cfg, err
		}
	}
	if v, ok := os.LookupEnv("GRAB_SEED"); ok && !explicit["seed"] {
		s, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("GRAB_SEED: %w", err)
		}
		cfg.Rules.Seed = s
	}

	return cfg, cfg.Validate()
}
