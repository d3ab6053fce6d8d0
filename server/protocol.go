package main

import "encoding/json"

// Client -> Server message types
const (
	MsgJoin     = "join"
	MsgLeave    = "leave"
	MsgInput    = "input"
	MsgCreate   = "create" // create session
	MsgList     = "list"   // list sessions
	MsgCheck    = "check"  // check if session exists
	MsgReady    = "ready"
	MsgRematch  = "rematch"
	MsgRegister = "register"
	MsgLogin    = "login"
	MsgAuth     = "auth"
	MsgProfile  = "profile"
)

// Server -> Client message types
const (
	MsgState       = "state"
	MsgWelcome     = "welcome"
	MsgDeath       = "death"
	MsgKill        = "kill"
	MsgCapture     = "capture"
	MsgSessions    = "sessions"
	MsgJoined      = "joined"
	MsgCreated     = "created" // session created, client should navigate
	MsgLobby       = "lobby"
	MsgPhase       = "phase"
	MsgResult      = "result"
	MsgError       = "error"
	MsgChecked     = "checked" // session check response
	MsgAuthOK      = "auth_ok"
	MsgProfileData = "profile_data"
	MsgBonus       = "bonus"
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; json.RawMessage avoids double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// ClientInput is a steering command. Boost is nil when the client leaves
// nitro untouched.
type ClientInput struct {
	Dir   string `json:"dir"`
	Boost *bool  `json:"boost,omitempty"`
}

// JoinMsg is sent when player wants to join a session
type JoinMsg struct {
	Name      string `json:"name"`
	SessionID string `json:"sid"`
}

// CreateMsg is sent when player wants to create a session
type CreateMsg struct {
	Name        string `json:"name"`
	SessionName string `json:"sname"`
	Mode        string `json:"mode"`
}

// WelcomeMsg is sent to a player when they join
type WelcomeMsg struct {
	ID     string `json:"id"`
	Color  string `json:"c"`
	Mode   string `json:"mode"`
	Width  int    `json:"w"`
	Height int    `json:"h"`
}

// SeatInfo describes one seat in the lobby
type SeatInfo struct {
	ID    string `json:"id"`
	Name  string `json:"n"`
	Color string `json:"c"`
	Ready bool   `json:"r"`
}

// LobbyMsg is broadcast whenever the lobby roster changes
type LobbyMsg struct {
	Mode  string     `json:"mode"`
	Seats []SeatInfo `json:"seats"`
}

// PhaseMsg announces a match phase change
type PhaseMsg struct {
	Phase     string `json:"phase"`
	Countdown int    `json:"cd,omitempty"` // ticks until play starts
}

// DeathMsg notifies a player they were eliminated
type DeathMsg struct {
	KillerID   string `json:"kid,omitempty"`
	KillerName string `json:"kn,omitempty"`
	Reason     string `json:"reason"`
	RespawnIn  int    `json:"respawn,omitempty"`
}

// KillMsg is broadcast to all players in session
type KillMsg struct {
	KillerID   string `json:"kid,omitempty"`
	KillerName string `json:"kn,omitempty"`
	VictimID   string `json:"vid"`
	VictimName string `json:"vn"`
	Reason     string `json:"reason"`
}

// CaptureMsg tells a player how much land a closed loop won
type CaptureMsg struct {
	Cells   int `json:"cells"`
	Annexed int `json:"annexed"`
	Total   int `json:"total"`
}

// BonusMsg announces a pickup dropped on the board
type BonusMsg struct {
	Kind string `json:"kind"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	TTL  int    `json:"ttl,omitempty"`
}

// ResultRow is one ranked line of a finished match
type ResultRow struct {
	ID    string `json:"id"`
	Name  string `json:"n"`
	Score int    `json:"sc"`
	Cells int    `json:"cells"`
	Kills int    `json:"kills"`
	Alive bool   `json:"a"`
}

// ResultMsg is broadcast when a match ends
type ResultMsg struct {
	Reason  string      `json:"reason"`
	Winner  string      `json:"winner,omitempty"`
	Ranking []ResultRow `json:"ranking"`
}

// AgentFrame is one agent inside a StateFrame. Point lists are flattened
// x,y pairs.
type AgentFrame struct {
	ID        string `msgpack:"id"`
	Name      string `msgpack:"n"`
	Color     string `msgpack:"c"`
	Head      []int  `msgpack:"h"`
	Dir       string `msgpack:"d"`
	Trail     []int  `msgpack:"tr"`
	Territory []int  `msgpack:"te"`
	Score     int    `msgpack:"sc"`
	State     string `msgpack:"st"`
	Nitro     int    `msgpack:"ni,omitempty"`
	Boosting  bool   `msgpack:"b,omitempty"`
}

// BonusFrame is one pickup on the board
type BonusFrame struct {
	Kind string `msgpack:"k"`
	X    int    `msgpack:"x"`
	Y    int    `msgpack:"y"`
}

// StateFrame is the binary state broadcast. An agent's Territory is nil
// when its land is unchanged since the previous frame.
type StateFrame struct {
	Tick    int          `msgpack:"tick"`
	Phase   string       `msgpack:"ph"`
	Width   int          `msgpack:"w"`
	Height  int          `msgpack:"hgt"`
	Agents  []AgentFrame `msgpack:"p"`
	Bonuses []BonusFrame `msgpack:"bn"`
}

// SessionInfo is used in the session list
type SessionInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Mode    string `json:"mode"`
	Phase   string `json:"phase"`
	Players int    `json:"players"`
}

// ErrorMsg sends error to client
type ErrorMsg struct {
	Msg string `json:"msg"`
}

// CheckMsg is sent by client to check if a session exists
type CheckMsg struct {
	SID string `json:"sid"`
}

// CheckedMsg is the response to a session check
type CheckedMsg struct {
	SID     string `json:"sid"`
	Exists  bool   `json:"exists"`
	Name    string `json:"name,omitempty"`
	Players int    `json:"players,omitempty"`
}

// RegisterMsg creates an account
type RegisterMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginMsg authenticates with username and password
type LoginMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthMsg resumes a session from a stored token
type AuthMsg struct {
	Token string `json:"token"`
}

// AuthOKMsg confirms authentication
type AuthOKMsg struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	PlayerID int64  `json:"pid"`
}

// ProfileDataMsg carries an authenticated player's career stats
type ProfileDataMsg struct {
	Username     string        `json:"username"`
	Level        int           `json:"level"`
	XP           int           `json:"xp"`
	NextLevelXP  int           `json:"next_xp"`
	Captures     int           `json:"captures"`
	Cells        int           `json:"cells"`
	Kills        int           `json:"kills"`
	Deaths       int           `json:"deaths"`
	Wins         int           `json:"wins"`
	Losses       int           `json:"losses"`
	BestScore    int           `json:"best"`
	Playtime     float64       `json:"playtime"`
	Achievements []string      `json:"achievements"`
	Recent       []RecentMatch `json:"recent"`
}

// RecentMatch is one line of a player's match history
type RecentMatch struct {
	MatchID int64 `json:"mid"`
	Score   int   `json:"sc"`
	Cells   int   `json:"cells"`
	Kills   int   `json:"kills"`
	Won     bool  `json:"won"`
	XP      int   `json:"xp"`
}
