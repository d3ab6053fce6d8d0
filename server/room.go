package main

import (
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"grabthemap/game"
)

// fullFrameEvery forces every agent's territory into the state frame
// periodically so late joiners and dropped frames converge.
const fullFrameEvery = 50

// Broadcaster interface for sending messages to clients
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// Room hosts one arena and the clients playing in it
type Room struct {
	mu        sync.RWMutex
	id        string
	cfg       ServerConfig
	match     MatchState
	arena     *game.Arena
	seats     map[string]*Seat
	order     []string               // seat IDs in join order
	left      map[string]*Seat       // seats that left mid-match, kept for results
	clients   map[string]Broadcaster // seatID -> client
	inputs    map[string]game.Input
	spawner   *BonusSpawner
	db        *DB
	analytics *Analytics
	tick      uint64
	fullFrame bool
	running   bool
	stop      chan struct{}
	startedAt time.Time
}

// NewRoom creates a room in the lobby phase
func NewRoom(id string, mode GameMode, cfg ServerConfig, db *DB, analytics *Analytics) *Room {
	return &Room{
		id:        id,
		cfg:       cfg,
		match:     NewMatchState(NewMatchConfig(mode, cfg)),
		seats:     make(map[string]*Seat),
		left:      make(map[string]*Seat),
		clients:   make(map[string]Broadcaster),
		inputs:    make(map[string]game.Input),
		spawner:   NewBonusSpawner(cfg.BonusEvery),
		db:        db,
		analytics: analytics,
		stop:      make(chan struct{}),
	}
}

// Run starts the room loop
func (r *Room) Run() {
	r.mu.Lock()
	r.running = true
	r.mu.Unlock()

	ticker := time.NewTicker(r.cfg.TickDuration())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.update()
		case <-r.stop:
			return
		}
	}
}

// Stop terminates the room loop
func (r *Room) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		r.running = false
		close(r.stop)
	}
}

// Mode returns the room's game mode
func (r *Room) Mode() GameMode {
	return r.match.Config.Mode
}

// Phase returns the current match phase
func (r *Room) Phase() MatchPhase {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.match.Phase
}

// AddPlayer seats a new player. Returns nil when the room is full.
// Players joining mid-match wait in the lobby roster for the next one.
func (r *Room) AddPlayer(name string) *Seat {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.seats) >= r.match.Config.MaxPlayers {
		return nil
	}
	used := make(map[int]bool, len(r.seats))
	for _, s := range r.seats {
		used[s.Slot] = true
	}
	slot := freeSlot(used)
	if slot < 0 {
		return nil
	}

	id := GenerateID(4)
	seat := NewSeat(id, name, slot)
	r.seats[id] = seat
	r.order = append(r.order, id)
	r.broadcastLobby()
	return seat
}

// RemovePlayer removes a player from the room, forfeiting any match in progress
func (r *Room) RemovePlayer(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seat, ok := r.seats[id]
	if !ok {
		return
	}
	delete(r.seats, id)
	delete(r.clients, id)
	delete(r.inputs, id)
	for i, sid := range r.order {
		if sid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	switch r.match.Phase {
	case PhasePlaying:
		if !seat.InMatch {
			break
		}
		r.left[id] = seat
		if err := r.arena.RemoveAgent(id); err != nil {
			log.Printf("room %s: remove %s: %v", r.id, id, err)
		}
		if st := r.arena.Status(); st.Over() {
			r.finishMatch(st)
		}
	case PhaseResult:
		r.left[id] = seat
	case PhaseLobby:
		r.broadcastLobby()
		r.maybeStart()
	}
}

// SetClient associates a broadcaster with a seat and brings it up to date
func (r *Room) SetClient(seatID string, client Broadcaster) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[seatID] = client
	r.fullFrame = true
	if r.match.Phase == PhaseLobby {
		client.SendJSON(Envelope{T: MsgLobby, Data: r.lobbyMsg()})
	}
}

// SetAuth links a seat to an account
func (r *Room) SetAuth(seatID string, authPlayerID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.seats[seatID]; ok {
		s.AuthPlayerID = authPlayerID
	}
}

// Rules returns the arena rules matches in this room are played under
func (r *Room) Rules() game.Config {
	return r.match.Config.Rules
}

// PlayerCount returns the number of seats
func (r *Room) PlayerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.seats)
}

// HandleInput latches a command for the next tick. A later direction
// replaces an earlier one; a boost toggle sticks until consumed.
func (r *Room) HandleInput(seatID string, in game.Input) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.seats[seatID]; !ok || r.match.Phase != PhasePlaying {
		return
	}
	cur := r.inputs[seatID]
	if in.Dir != game.DirNone {
		cur.Dir = in.Dir
	}
	if in.Boost != game.ToggleKeep {
		cur.Boost = in.Boost
	}
	r.inputs[seatID] = cur
}

// HandleReady marks a seat ready in the lobby and starts the countdown
// once everyone is
func (r *Room) HandleReady(seatID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seat, ok := r.seats[seatID]
	if !ok || r.match.Phase != PhaseLobby || seat.Ready {
		return
	}
	seat.Ready = true
	r.broadcastLobby()
	r.maybeStart()
}

// HandleRematch reopens the lobby from the result screen with the
// requesting seat already ready
func (r *Room) HandleRematch(seatID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seat, ok := r.seats[seatID]
	if !ok {
		return
	}
	if r.match.Phase == PhaseResult {
		r.openLobby()
	}
	if r.match.Phase == PhaseLobby && !seat.Ready {
		seat.Ready = true
		r.broadcastLobby()
		r.maybeStart()
	}
}

// update runs one room tick
func (r *Room) update() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tick++
	switch r.match.Phase {
	case PhaseCountdown:
		r.match.CountdownT--
		if r.match.CountdownT <= 0 {
			r.startMatch()
		}
	case PhasePlaying:
		r.playTick()
	case PhaseResult:
		r.match.ResultTimer--
		if r.match.ResultTimer <= 0 {
			r.openLobby()
		}
	}
}

func (r *Room) maybeStart() {
	if r.match.Phase != PhaseLobby || len(r.seats) == 0 {
		return
	}
	for _, s := range r.seats {
		if !s.Ready {
			return
		}
	}
	if r.match.Config.Countdown == 0 {
		r.startMatch()
		return
	}
	r.match.Phase = PhaseCountdown
	r.match.CountdownT = r.match.Config.Countdown
	r.broadcastMsg(Envelope{T: MsgPhase, Data: PhaseMsg{Phase: PhaseCountdown.String(), Countdown: r.match.CountdownT}})
}

// startMatch builds a fresh arena and spawns every seat into it
func (r *Room) startMatch() {
	rules := r.match.Config.Rules
	if rules.Seed == 0 {
		rules.Seed = rand.Uint64()
	}
	arena, err := game.NewArena(rules)
	if err != nil {
		log.Printf("room %s: new arena: %v", r.id, err)
		r.openLobby()
		return
	}
	for _, id := range r.order {
		seat := r.seats[id]
		p, ok := arena.FreeSpawn()
		if !ok {
			log.Printf("room %s: no spawn left for %s", r.id, id)
			continue
		}
		if _, err := arena.AddAgent(seat.Spec(p)); err != nil {
			log.Printf("room %s: add %s: %v", r.id, id, err)
			continue
		}
		seat.InMatch = true
		seat.Stats = PlayerMatchStats{}
	}
	if len(arena.Agents()) == 0 {
		r.openLobby()
		return
	}

	r.arena = arena
	r.inputs = make(map[string]game.Input)
	r.spawner.Reset()
	r.match.Phase = PhasePlaying
	r.match.StartTick = r.tick
	r.match.Matches++
	r.startedAt = time.Now()

	r.broadcastMsg(Envelope{T: MsgPhase, Data: PhaseMsg{Phase: PhasePlaying.String()}})
	r.analytics.Track(EvtMatchStart, 0, r.id, fmt.Sprintf(`{"mode":%q,"players":%d}`, r.Mode(), len(arena.Agents())))
	r.fullFrame = true
	r.broadcastState()
}

// playTick advances the arena and fans the results out to clients
func (r *Room) playTick() {
	inputs := r.inputs
	r.inputs = make(map[string]game.Input)
	res := r.arena.Tick(inputs)
	if b, ok := r.spawner.Update(r.arena); ok {
		r.broadcastMsg(Envelope{T: MsgBonus, Data: BonusMsg{Kind: b.Kind.String(), X: b.Pos.X, Y: b.Pos.Y, TTL: b.TTL}})
	}

	for id, cells := range res.Captures {
		seat := r.seats[id]
		if seat == nil {
			continue
		}
		seat.Stats.Captures++
		seat.Stats.Cells += len(cells)
		total := 0
		if ag, ok := r.arena.Agent(id); ok {
			total = ag.Territory.Len()
		}
		r.sendTo(id, Envelope{T: MsgCapture, Data: CaptureMsg{Cells: len(cells), Annexed: res.Annexed[id], Total: total}})
		r.analytics.Track(EvtCapture, seat.AuthPlayerID, r.id, fmt.Sprintf(`{"cells":%d}`, len(cells)))
	}
	for _, e := range res.Eliminations {
		r.onElimination(e)
	}

	if (r.tick-r.match.StartTick)%uint64(r.cfg.BroadcastEvery) == 0 || res.Status.Over() {
		r.broadcastState()
	}
	if res.Status.Over() {
		r.finishMatch(res.Status)
	}
}

func (r *Room) onElimination(e game.Elimination) {
	victim := r.seats[e.ID]
	if victim == nil {
		return
	}
	victim.Stats.Deaths++
	kill := KillMsg{VictimID: e.ID, VictimName: victim.Name, Reason: e.Reason.String()}
	death := DeathMsg{Reason: e.Reason.String()}
	if killer := r.seats[e.By]; killer != nil {
		kill.KillerID, kill.KillerName = killer.ID, killer.Name
		death.KillerID, death.KillerName = killer.ID, killer.Name
		r.analytics.Track(EvtPlayerKill, killer.AuthPlayerID, r.id, "")
	}
	if ag, ok := r.arena.Agent(e.ID); ok {
		death.RespawnIn = ag.RespawnIn
	}
	r.broadcastMsg(Envelope{T: MsgKill, Data: kill})
	r.sendTo(e.ID, Envelope{T: MsgDeath, Data: death})
	r.analytics.Track(EvtPlayerDeath, victim.AuthPlayerID, r.id, "")
}

// matchWinner picks the seat credited with the win: the outright full-board
// winner, or the top of the ranking for any other ending. A full-board tie
// has no winner.
func matchWinner(st game.Status) string {
	if st.Winner != "" {
		return st.Winner
	}
	if st.Reason == game.EndFullBoard || len(st.Ranking) == 0 {
		return ""
	}
	return st.Ranking[0].ID
}

// finishMatch publishes the ranking and persists the results
func (r *Room) finishMatch(st game.Status) {
	r.match.Phase = PhaseResult
	r.match.ResultTimer = r.match.Config.ResultTicks
	winner := matchWinner(st)

	result := ResultMsg{Reason: string(st.Reason), Winner: winner, Ranking: make([]ResultRow, 0, len(st.Ranking))}
	for _, s := range st.Ranking {
		result.Ranking = append(result.Ranking, ResultRow{
			ID:    s.ID,
			Name:  s.Name,
			Score: s.Score,
			Cells: s.Cells,
			Kills: s.Kills,
			Alive: s.Alive,
		})
	}
	r.broadcastMsg(Envelope{T: MsgPhase, Data: PhaseMsg{Phase: PhaseResult.String()}})
	r.broadcastMsg(Envelope{T: MsgResult, Data: result})

	duration := time.Since(r.startedAt).Seconds()
	r.analytics.Track(EvtMatchEnd, 0, r.id, fmt.Sprintf(`{"mode":%q,"duration":%.1f,"reason":%q}`, r.Mode(), duration, st.Reason))
	r.recordResults(st, winner, duration)
}

// recordResults writes the match and each authenticated player's line to the DB
func (r *Room) recordResults(st game.Status, winner string, duration float64) {
	if r.db == nil {
		return
	}
	winnerName := ""
	for _, s := range st.Ranking {
		if s.ID == winner {
			winnerName = s.Name
		}
	}
	matchID, err := r.db.RecordMatch(r.Mode().String(), string(st.Reason), r.arena.Ticks(), duration, winnerName)
	if err != nil {
		log.Printf("room %s: record match: %v", r.id, err)
		return
	}
	for _, s := range st.Ranking {
		seat := r.seats[s.ID]
		if seat == nil {
			seat = r.left[s.ID]
		}
		if seat == nil || seat.AuthPlayerID == 0 {
			continue
		}
		o := MatchOutcome{
			Captures: seat.Stats.Captures,
			Cells:    s.Cells,
			Kills:    s.Kills,
			Deaths:   seat.Stats.Deaths,
			Score:    s.Score,
			Won:      s.ID == winner,
			Duration: duration,
		}
		o.XP = XPForMatch(o)
		if err := r.db.RecordMatchPlayer(matchID, seat.AuthPlayerID, o); err != nil {
			log.Printf("room %s: record player %d: %v", r.id, seat.AuthPlayerID, err)
			continue
		}
		before, err := r.db.GetStats(seat.AuthPlayerID)
		if err != nil {
			log.Printf("room %s: stats before match %d: %v", r.id, seat.AuthPlayerID, err)
		}
		_, level, err := r.db.UpdateStatsAfterMatch(seat.AuthPlayerID, o)
		if err != nil {
			log.Printf("room %s: update stats %d: %v", r.id, seat.AuthPlayerID, err)
			continue
		}
		if before != nil && level > before.Level {
			r.analytics.Track(EvtLevelUp, seat.AuthPlayerID, r.id, fmt.Sprintf(`{"level":%d}`, level))
		}
		for _, a := range CheckAchievements(r.db, seat.AuthPlayerID, o) {
			r.analytics.Track(EvtAchievement, seat.AuthPlayerID, r.id, fmt.Sprintf(`{"id":%q}`, a.ID))
		}
	}
}

// openLobby returns the room to the lobby with everyone unready
func (r *Room) openLobby() {
	r.match.Phase = PhaseLobby
	r.arena = nil
	r.left = make(map[string]*Seat)
	for _, s := range r.seats {
		s.ResetMatch()
	}
	r.broadcastMsg(Envelope{T: MsgPhase, Data: PhaseMsg{Phase: PhaseLobby.String()}})
	r.broadcastLobby()
}

func (r *Room) lobbyMsg() LobbyMsg {
	msg := LobbyMsg{Mode: r.Mode().String(), Seats: make([]SeatInfo, 0, len(r.order))}
	for _, id := range r.order {
		msg.Seats = append(msg.Seats, r.seats[id].ToInfo())
	}
	return msg
}

func (r *Room) broadcastLobby() {
	r.broadcastMsg(Envelope{T: MsgLobby, Data: r.lobbyMsg()})
}

func flatten(pts []game.Point) []int {
	out := make([]int, 0, 2*len(pts))
	for _, p := range pts {
		out = append(out, p.X, p.Y)
	}
	return out
}

// buildFrame encodes the arena for clients. Territory is included only for
// changed agents unless a full frame is due.
func (r *Room) buildFrame() StateFrame {
	grid := r.arena.Grid()
	frame := StateFrame{
		Tick:   r.arena.Ticks(),
		Phase:  r.match.Phase.String(),
		Width:  grid.Width,
		Height: grid.Height,
	}
	full := r.fullFrame || r.arena.Ticks()%fullFrameEvery == 0
	r.fullFrame = false
	for _, ag := range r.arena.Agents() {
		af := AgentFrame{
			ID:       ag.ID,
			Name:     ag.Name,
			Color:    ag.Colors.Territory,
			Head:     []int{ag.Pos.X, ag.Pos.Y},
			Dir:      ag.Heading.String(),
			Trail:    flatten(ag.Trail),
			Score:    ag.Score,
			State:    ag.State.String(),
			Nitro:    ag.NitroTicks,
			Boosting: ag.NitroActive,
		}
		if full || ag.Territory.Changed() {
			af.Territory = flatten(ag.Territory.Points())
			ag.Territory.MarkClean()
		}
		frame.Agents = append(frame.Agents, af)
	}
	for _, b := range r.arena.Bonuses() {
		frame.Bonuses = append(frame.Bonuses, BonusFrame{Kind: b.Kind.String(), X: b.Pos.X, Y: b.Pos.Y})
	}
	return frame
}

// broadcastState sends the current arena to all clients as msgpack
func (r *Room) broadcastState() {
	if r.arena == nil {
		return
	}
	frame := r.buildFrame()
	data, err := msgpack.Marshal(&frame)
	if err != nil {
		log.Printf("room %s: encode state: %v", r.id, err)
		return
	}
	for _, client := range r.clients {
		client.SendBinary(data)
	}
}

// broadcastMsg sends a message to all clients in the room
func (r *Room) broadcastMsg(msg Envelope) {
	for _, client := range r.clients {
		client.SendJSON(msg)
	}
}

func (r *Room) sendTo(seatID string, msg Envelope) {
	if c, ok := r.clients[seatID]; ok {
		c.SendJSON(msg)
	}
}
