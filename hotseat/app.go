package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/gdamore/tcell/v2"

	"grabthemap/game"
)

// maxBoardBonuses caps untaken nitros lying on the board.
const maxBoardBonuses = 2

var errNoSpawn = errors.New("no free spawn block for every player")

// Player is one seat at the keyboard.
type Player struct {
	ID     string
	Name   string
	Keys   Bindings
	Colors game.Colors
}

// App is the hotseat host. It owns the arena and routes each key press to
// the seat bound to it. All methods run on the event loop goroutine.
type App struct {
	opts Options
	cues Cues
	log  *slog.Logger

	scene   game.Phase
	players []Player
	styles  map[string]agentStyles

	arena      *game.Arena
	inputs     map[string]game.Input
	bonusTimer int
	final      game.Status
	games      int
	err        error
	quit       bool
}

// NewApp seats opts.Players players on the title screen. cues may be nil.
func NewApp(opts Options, cues Cues, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	app := &App{
		opts:   opts,
		cues:   cues,
		log:    logger,
		scene:  game.PhaseMenu,
		styles: make(map[string]agentStyles),
		inputs: make(map[string]game.Input),
	}
	colors := playerColors(opts.Players)
	for i := 0; i < opts.Players; i++ {
		p := Player{
			ID:     fmt.Sprintf("p%d", i+1),
			Name:   fmt.Sprintf("Player %d", i+1),
			Keys:   DefaultBindings[i%len(DefaultBindings)],
			Colors: colors[i],
		}
		app.players = append(app.players, p)
		app.styles[p.ID] = newAgentStyles(p.Colors)
	}
	return app
}

// Scene reports which screen is showing.
func (a *App) Scene() game.Phase { return a.scene }

// Quit reports whether the player asked to leave.
func (a *App) Quit() bool { return a.quit }

// Arena is the current game, nil before the first one starts.
func (a *App) Arena() *game.Arena { return a.arena }

// StartGame seats every player in a fresh arena.
func (a *App) StartGame() error {
	seed := a.opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rules := a.opts.Rules(seed)
	rules.Logger = a.log
	arena, err := game.NewArena(rules)
	if err != nil {
		return err
	}
	for _, p := range a.players {
		spawn, ok := arena.FreeSpawn()
		if !ok {
			return errNoSpawn
		}
		if _, err := arena.AddAgent(game.AgentSpec{ID: p.ID, Name: p.Name, Colors: p.Colors, Spawn: spawn}); err != nil {
			return fmt.Errorf("seat %s: %w", p.Name, err)
		}
	}
	a.arena = arena
	a.scene = game.PhaseRunning
	a.final = game.Status{}
	clear(a.inputs)
	a.bonusTimer = a.opts.BonusEvery
	a.games++
	a.log.Info("game started", "game", a.games, "seed", seed, "players", len(a.players))
	return nil
}

func (a *App) start() {
	if err := a.StartGame(); err != nil {
		a.err = err
		a.log.Error("start game", "err", err)
		return
	}
	a.err = nil
}

// HandleKey applies one key press to the current scene.
func (a *App) HandleKey(code tcell.Key, r rune) {
	if code == tcell.KeyCtrlC {
		a.quit = true
		return
	}
	switch a.scene {
	case game.PhaseMenu:
		switch {
		case code == tcell.KeyEnter:
			a.start()
		case code == tcell.KeyEscape, code == tcell.KeyRune && (r == 'q' || r == 'Q'):
			a.quit = true
		}
	case game.PhaseRunning:
		if code == tcell.KeyEscape {
			a.log.Info("game abandoned", "game", a.games, "tick", a.arena.Ticks())
			a.scene = game.PhaseMenu
			return
		}
		a.steer(code, r)
	case game.PhaseEndgame:
		switch {
		case code == tcell.KeyEnter:
			a.start()
		case code == tcell.KeyEscape:
			a.scene = game.PhaseMenu
		case code == tcell.KeyRune && (r == 'q' || r == 'Q'):
			a.quit = true
		}
	}
}

// steer latches the press into the owning player's input for the next tick.
// The last direction pressed before a tick wins.
func (a *App) steer(code tcell.Key, r rune) {
	for _, p := range a.players {
		in := a.inputs[p.ID]
		if dir, ok := p.Keys.Direction(code, r); ok {
			in.Dir = dir
			a.inputs[p.ID] = in
			return
		}
		if p.Keys.IsBoost(code, r) {
			on := true
			switch in.Boost {
			case game.ToggleOn:
				on = false
			case game.ToggleKeep:
				if ag, ok := a.arena.Agent(p.ID); ok {
					on = !ag.NitroActive
				}
			}
			in.Boost = game.ToggleOff
			if on {
				in.Boost = game.ToggleOn
			}
			a.inputs[p.ID] = in
			return
		}
	}
}

// Step advances the running game by one tick.
func (a *App) Step() {
	if a.scene != game.PhaseRunning || a.arena == nil {
		return
	}
	a.dropBonus()
	res := a.arena.Tick(a.inputs)
	clear(a.inputs)

	biggest := 0
	for _, cells := range res.Captures {
		biggest = max(biggest, len(cells))
	}
	if biggest > 0 {
		a.cue(func(c Cues) { c.Capture(biggest) })
	}
	for _, e := range res.Eliminations {
		a.log.Info("eliminated", "agent", e.ID, "reason", e.Reason.String(), "by", e.By, "tick", res.Tick)
		a.cue(func(c Cues) { c.Elimination() })
	}
	if len(res.Pickups) > 0 {
		a.cue(func(c Cues) { c.Pickup() })
	}
	if res.Status.Over() {
		a.final = res.Status
		a.scene = game.PhaseEndgame
		a.log.Info("game over", "game", a.games, "reason", string(res.Status.Reason), "winner", res.Status.Winner, "ticks", res.Tick)
		a.cue(func(c Cues) { c.GameOver() })
	}
}

// dropBonus places a nitro on a free cell every BonusEvery ticks.
func (a *App) dropBonus() {
	if a.opts.BonusEvery <= 0 {
		return
	}
	a.bonusTimer--
	if a.bonusTimer > 0 {
		return
	}
	a.bonusTimer = a.opts.BonusEvery
	if len(a.arena.Bonuses()) >= maxBoardBonuses {
		return
	}
	if p, ok := a.arena.FreeCell(); ok {
		if err := a.arena.PlaceBonus(game.BonusNitro, p); err != nil {
			a.log.Warn("place bonus", "err", err)
		}
	}
}

func (a *App) cue(f func(Cues)) {
	if a.cues != nil {
		f(a.cues)
	}
}

// Draw renders the current scene.
func (a *App) Draw(c canvas) {
	switch a.scene {
	case game.PhaseMenu:
		a.drawTitle(c)
	case game.PhaseRunning:
		a.drawGame(c)
	case game.PhaseEndgame:
		a.drawEnd(c)
	}
}

func (a *App) drawTitle(c canvas) {
	drawCentered(c, 1, "G R A B   T H E   M A P", styleTitle)
	drawCentered(c, 2, "close a loop of trail to claim the land inside it", styleDim)
	y := 4
	for _, p := range a.players {
		drawCentered(c, y, fmt.Sprintf("%-9s %s", p.Name, p.Keys.Summary()), a.styles[p.ID].text)
		y++
	}
	y++
	drawCentered(c, y, "Enter: start   Esc: quit", styleDefault)
	if a.err != nil {
		drawCentered(c, y+2, a.err.Error(), styleDefault.Foreground(tcell.ColorRed))
	}
}

func (a *App) drawGame(c canvas) {
	b := a.arena.Board()
	w, h := c.Size()
	needW, needH := b.Width*cellWidth+2, b.Height+2+boardTop
	if w < needW || h < needH {
		drawText(c, 0, 0, fmt.Sprintf("Terminal too small: need %dx%d, have %dx%d", needW, needH, w, h), styleDefault)
		return
	}
	drawHUD(c, a.arena, a.styles)
	drawBoard(c, 0, boardTop, b, a.styles)
}

func (a *App) drawEnd(c canvas) {
	drawCentered(c, 1, "GAME OVER", styleTitle)
	drawCentered(c, 2, endReasonText(a.final), styleDim)
	y := 4
	for i, line := range rankingLines(a.final) {
		style := styleDefault
		if i < len(a.final.Ranking) {
			style = a.styles[a.final.Ranking[i].ID].text
		}
		drawCentered(c, y, line, style)
		y++
	}
	y++
	drawCentered(c, y, "Enter: rematch   Esc: menu   Q: quit", styleDefault)
}

// Run drives the app on screen until the players quit.
func (a *App) Run(screen tcell.Screen) {
	events := make(chan tcell.Event, 32)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				screen.Fini()
				crash("EVENT POLLER CRASHED", r)
			}
		}()
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(a.opts.TickDuration())
	defer ticker.Stop()

	a.render(screen)
	for !a.quit {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				a.HandleKey(ev.Key(), ev.Rune())
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-ticker.C:
			a.Step()
		}
		a.render(screen)
	}
}

func (a *App) render(screen tcell.Screen) {
	screen.Clear()
	a.Draw(screen)
	screen.Show()
}
