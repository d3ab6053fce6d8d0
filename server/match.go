package main

import "grabthemap/game"

// MatchPhase represents the lifecycle of a match
type MatchPhase int

const (
	PhaseLobby     MatchPhase = 0
	PhaseCountdown MatchPhase = 1
	PhasePlaying   MatchPhase = 2
	PhaseResult    MatchPhase = 3
)

func (p MatchPhase) String() string {
	switch p {
	case PhaseCountdown:
		return "countdown"
	case PhasePlaying:
		return "playing"
	case PhaseResult:
		return "result"
	}
	return "lobby"
}

// GameMode defines the type of match
type GameMode int

const (
	// ModeClassic ends on a full board or when one player is left.
	ModeClassic GameMode = 0
	// ModeTimed respawns eliminated players and ranks everyone at the tick limit.
	ModeTimed GameMode = 1
)

func (m GameMode) String() string {
	if m == ModeTimed {
		return "timed"
	}
	return "classic"
}

// ParseMode maps a protocol mode name to a GameMode, falling back to classic.
func ParseMode(s string) GameMode {
	if s == "timed" {
		return ModeTimed
	}
	return ModeClassic
}

const (
	timedMaxTicks     = 2000
	timedRespawnTicks = 20
)

// MatchConfig holds settings for a match
type MatchConfig struct {
	Mode       GameMode
	MaxPlayers int
	// Countdown is the number of room ticks between everyone being ready and play.
	Countdown int
	// ResultTicks is how long the result screen stays up before the lobby reopens.
	ResultTicks int
	Rules       game.Config
}

// NewMatchConfig derives the rules for a mode from the server's base rules.
func NewMatchConfig(mode GameMode, cfg ServerConfig) MatchConfig {
	rules := cfg.Rules
	switch mode {
	case ModeTimed:
		rules.MaxTicks = timedMaxTicks
		rules.RespawnTicks = timedRespawnTicks
	default:
		rules.MaxTicks = 0
		rules.RespawnTicks = 0
	}
	return MatchConfig{
		Mode:        mode,
		MaxPlayers:  cfg.MaxPlayers,
		Countdown:   cfg.CountdownTicks,
		ResultTicks: cfg.ResultTicks,
		Rules:       rules,
	}
}

// MatchState holds the current match state
type MatchState struct {
	Phase       MatchPhase
	Config      MatchConfig
	CountdownT  int
	ResultTimer int
	StartTick   uint64
	Matches     int
}

// NewMatchState creates a new match state for the given config
func NewMatchState(config MatchConfig) MatchState {
	return MatchState{
		Phase:  PhaseLobby,
		Config: config,
	}
}

// PlayerMatchStats tracks per-player stats for a match
type PlayerMatchStats struct {
	Captures int
	Cells    int
	Deaths   int
}
