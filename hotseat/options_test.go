package main

import (
	"testing"
	"time"
)

func TestDefaultOptionsValid(t *testing.T) {
	if err := DefaultOptions().Validate(); err != nil {
		t.Fatalf("default options should validate: %v", err)
	}
}

func TestParseOptions(t *testing.T) {
	o, err := ParseOptions([]string{
		"-players", "3", "-width", "40", "-height", "22", "-tick-rate", "20",
		"-bonus-every", "0", "-time-limit", "900", "-respawn", "15", "-seed", "42",
		"-sound=false", "-log", "game.log",
	})
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	want := Options{
		Players: 3, Width: 40, Height: 22, TickRate: 20, BonusEvery: 0,
		TimeLimit: 900, Respawn: 15, Seed: 42, Sound: false, LogPath: "game.log",
	}
	if o != want {
		t.Errorf("got %+v, want %+v", o, want)
	}
}

func TestParseOptionsRejects(t *testing.T) {
	for _, args := range [][]string{
		{"-players", "1"},
		{"-players", "5"},
		{"-tick-rate", "0"},
		{"-bonus-every", "-1"},
		{"-width", "2"},
		{"-respawn", "-3"},
		{"-no-such-flag"},
	} {
		if _, err := ParseOptions(args); err == nil {
			t.Errorf("ParseOptions(%v) should fail", args)
		}
	}
}

func TestRules(t *testing.T) {
	o := DefaultOptions()
	o.TimeLimit = 500
	o.Respawn = 8
	cfg := o.Rules(99)
	if cfg.Width != o.Width || cfg.Height != o.Height {
		t.Errorf("board %dx%d, want %dx%d", cfg.Width, cfg.Height, o.Width, o.Height)
	}
	if cfg.MaxTicks != 500 || cfg.RespawnTicks != 8 || cfg.Seed != 99 {
		t.Errorf("unexpected rules %+v", cfg)
	}
	if cfg.MoveCadence < 1 || cfg.NitroTicks == 0 {
		t.Errorf("rules should keep the default cadence and nitro: %+v", cfg)
	}
}

func TestTickDuration(t *testing.T) {
	o := DefaultOptions()
	o.TickRate = 20
	if got := o.TickDuration(); got != 50*time.Millisecond {
		t.Errorf("got %v, want 50ms", got)
	}
}
