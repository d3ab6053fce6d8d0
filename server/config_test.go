package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// noEnv points LoadConfig at a dotenv file that does not exist
func noEnv(t *testing.T) string {
	return "-env=" + filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig([]string{noEnv(t)})
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	def := DefaultServerConfig()
	if cfg.Addr != def.Addr || cfg.TickRate != def.TickRate || cfg.Rules.Width != def.Rules.Width {
		t.Errorf("defaults changed: %+v", cfg)
	}
	if cfg.Rules.Seed != 0 {
		t.Errorf("default seed should pick per match, got %d", cfg.Rules.Seed)
	}
	if cfg.TickDuration() != 100*time.Millisecond {
		t.Errorf("TickDuration = %v", cfg.TickDuration())
	}
}

func TestLoadConfigFlags(t *testing.T) {
	cfg, err := LoadConfig([]string{noEnv(t), "-addr=:9000", "-width=40", "-height=25", "-seed=9", "-max-players=4"})
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.Rules.Width != 40 || cfg.Rules.Height != 25 || cfg.Rules.Seed != 9 || cfg.MaxPlayers != 4 {
		t.Errorf("flags not applied: %+v", cfg)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("GRAB_ADDR", ":7000")
	t.Setenv("GRAB_WIDTH", "50")
	t.Setenv("GRAB_SEED", "11")
	cfg, err := LoadConfig([]string{noEnv(t), "-width=35"})
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr != ":7000" || cfg.Rules.Seed != 11 {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.Rules.Width != 35 {
		t.Errorf("explicit flag should beat env, got width %d", cfg.Rules.Width)
	}

	t.Setenv("GRAB_TICK_RATE", "fast")
	if _, err := LoadConfig([]string{noEnv(t)}); err == nil {
		t.Error("non-numeric GRAB_TICK_RATE should fail")
	}
}

func TestLoadConfigDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	os.WriteFile(path, []byte("GRAB_HEIGHT=44\nGRAB_BASE_URL=http://example.test\n"), 0o644)
	t.Cleanup(func() {
		os.Unsetenv("GRAB_HEIGHT")
		os.Unsetenv("GRAB_BASE_URL")
	})

	cfg, err := LoadConfig([]string{"-env=" + path})
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Rules.Height != 44 || cfg.BaseURL != "http://example.test" {
		t.Errorf("dotenv not applied: %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name  string
		tweak func(*ServerConfig)
	}{
		{"tick rate", func(c *ServerConfig) { c.TickRate = 0 }},
		{"broadcast", func(c *ServerConfig) { c.BroadcastEvery = 0 }},
		{"too many players", func(c *ServerConfig) { c.MaxPlayers = len(Palette) + 1 }},
		{"negative countdown", func(c *ServerConfig) { c.CountdownTicks = -1 }},
		{"tiny board", func(c *ServerConfig) { c.Rules.Width = 2 }},
	}
	for _, tt := range tests {
		cfg := DefaultServerConfig()
		tt.tweak(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
	if err := DefaultServerConfig().Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if _, err := LoadConfig([]string{noEnv(t), "-max-players=99"}); err == nil {
		t.Error("LoadConfig should validate")
	}
}
