package game

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
)

func newTestArena(t *testing.T, w, h int, tweak func(*Config)) *Arena {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = w, h
	cfg.MoveCadence = 1
	if tweak != nil {
		tweak(&cfg)
	}
	a, err := NewArena(cfg)
	if err != nil {
		t.Fatalf("NewArena: %v", err)
	}
	return a
}

func mustAdd(t *testing.T, a *Arena, id string, spawn Point) *Agent {
	t.Helper()
	ag, err := a.AddAgent(AgentSpec{ID: id, Name: id, Spawn: spawn})
	if err != nil {
		t.Fatalf("AddAgent(%s): %v", id, err)
	}
	return ag
}

// steer returns inputs that give every listed agent the same heading.
func steer(dirs map[string]Direction) map[string]Input {
	in := make(map[string]Input, len(dirs))
	for id, d := range dirs {
		in[id] = Input{Dir: d}
	}
	return in
}

// freeze parks an agent; thaw lets it step every tick again.
func freeze(ag *Agent) { ag.Cadence = 1000 }
func thaw(ag *Agent)   { ag.Cadence = 1 }

func repeat(d Direction, n int) []Direction {
	out := make([]Direction, n)
	for i := range out {
		out[i] = d
	}
	return out
}

// run plays the per-tick headings of every listed agent in lockstep and
// returns the last tick's result.
func run(a *Arena, moves map[string][]Direction) TickResult {
	n := 0
	for _, m := range moves {
		n = max(n, len(m))
	}
	var res TickResult
	for i := 0; i < n; i++ {
		in := make(map[string]Input, len(moves))
		for id, m := range moves {
			if i < len(m) {
				in[id] = Input{Dir: m[i]}
			}
		}
		res = a.Tick(in)
	}
	return res
}

// closingGrab is what ag would capture by stepping onto next.
func closingGrab(ag *Agent, next Point) PointSet {
	return ag.Territory.Capture(append(slices.Clone(ag.Trail), next))
}

func TestScenarioRectangleCapture(t *testing.T) {
	a := newTestArena(t, 10, 10, nil)
	ag := mustAdd(t, a, "a", Point{X: 5, Y: 5})

	moves := []Direction{DirRight, DirRight, DirRight, DirDown, DirDown, DirLeft, DirLeft, DirLeft, DirUp, DirUp}
	captureTick := 0
	var captured []Point
	var score int
	for _, d := range moves {
		res := a.Tick(steer(map[string]Direction{"a": d}))
		if got := res.Captures["a"]; len(got) > 0 {
			if captureTick != 0 {
				t.Fatalf("second capture at tick %d: %v", res.Tick, got)
			}
			captureTick, captured, score = res.Tick, got, ag.Score
		}
	}
	if captureTick != 9 {
		t.Fatalf("expected the loop to close on tick 9, got %d", captureTick)
	}
	if ag.Pos != (Point{X: 5, Y: 5}) {
		t.Errorf("expected head back at the spawn, got %v", ag.Pos)
	}

	want := NewPointSet(Point{7, 5}, Point{8, 5}, Point{8, 6}, Point{8, 7},
		Point{7, 7}, Point{6, 7}, Point{5, 7}, Point{7, 6})
	if len(captured) != want.Len() {
		t.Fatalf("captured %v, want %v", captured, want.Sorted())
	}
	for _, p := range captured {
		if !want.Has(p) {
			t.Errorf("unexpected capture %v", p)
		}
	}
	if ag.Territory.Len() != 17 {
		t.Errorf("expected 17 owned cells, got %d", ag.Territory.Len())
	}
	if len(ag.Trail) != 0 {
		t.Errorf("trail should be cleared after capture, got %v", ag.Trail)
	}
	if wantScore := 8 * a.Config().NeutralCellScore; score != wantScore {
		t.Errorf("expected score %d, got %d", wantScore, score)
	}
	if a.Status().Phase != PhaseRunning {
		t.Errorf("solo arena with a live agent should keep running, got %+v", a.Status())
	}
}

func TestScenarioHeadOnEqualTrails(t *testing.T) {
	a := newTestArena(t, 20, 20, nil)
	x := mustAdd(t, a, "a", Point{X: 3, Y: 10})
	y := mustAdd(t, a, "b", Point{X: 15, Y: 10})

	var res TickResult
	for range 6 {
		res = a.Tick(steer(map[string]Direction{"a": DirRight, "b": DirLeft}))
	}
	if x.Pos != y.Pos {
		t.Fatalf("heads should meet, got %v and %v", x.Pos, y.Pos)
	}
	if x.State != Eliminated || y.State != Eliminated {
		t.Fatalf("equal trails should eliminate both, got %v and %v", x.State, y.State)
	}
	if x.Reason != ReasonHeadOn || y.Reason != ReasonHeadOn {
		t.Errorf("expected head-on, got %v and %v", x.Reason, y.Reason)
	}
	if len(res.Eliminations) != 2 {
		t.Errorf("expected 2 eliminations, got %v", res.Eliminations)
	}
	if res.Status.Phase != PhaseEndgame || res.Status.Reason != EndLastStanding {
		t.Errorf("expected last standing endgame, got %+v", res.Status)
	}
	if x.Territory.Len() != 0 || y.Territory.Len() != 0 {
		t.Error("losers' cells should be cleared")
	}
}

func TestHeadOnLongerTrailWins(t *testing.T) {
	a := newTestArena(t, 20, 20, nil)
	x := mustAdd(t, a, "a", Point{X: 3, Y: 10})
	y := mustAdd(t, a, "b", Point{X: 12, Y: 10})
	x.Prev, x.Pos, x.Heading = Point{X: 7, Y: 10}, Point{X: 8, Y: 10}, DirRight
	x.Trail = []Point{{5, 10}, {6, 10}, {7, 10}, {8, 10}}
	y.Prev, y.Pos, y.Heading = Point{X: 11, Y: 10}, Point{X: 10, Y: 10}, DirLeft
	y.Trail = []Point{{10, 10}}

	res := a.Tick(nil)
	if x.State != Alive {
		t.Fatalf("longer trail should survive, got %v", x.State)
	}
	if y.State != Eliminated || y.Reason != ReasonHeadOn {
		t.Fatalf("shorter trail should lose head-on, got %v/%v", y.State, y.Reason)
	}
	if x.Score != a.Config().HeadKillScore || x.Kills != 1 {
		t.Errorf("winner should get the head kill bonus, score=%d kills=%d", x.Score, x.Kills)
	}
	if len(res.Eliminations) != 1 || res.Eliminations[0].By != "a" {
		t.Errorf("elimination should credit a, got %v", res.Eliminations)
	}
}

func TestScenarioTrailCut(t *testing.T) {
	a := newTestArena(t, 20, 20, nil)
	victim := mustAdd(t, a, "a", Point{X: 5, Y: 5})
	cutter := mustAdd(t, a, "b", Point{X: 8, Y: 10})

	var res TickResult
	for range 5 {
		res = a.Tick(steer(map[string]Direction{"a": DirRight, "b": DirUp}))
	}
	if cutter.Pos != (Point{X: 8, Y: 5}) {
		t.Fatalf("cutter should be on the trail at (8,5), got %v", cutter.Pos)
	}
	if victim.State != Eliminated || victim.Reason != ReasonTrailCut {
		t.Fatalf("victim should be cut, got %v/%v", victim.State, victim.Reason)
	}
	if cutter.State != Alive {
		t.Fatalf("cutter should survive, got %v", cutter.State)
	}
	if cutter.Score != a.Config().TrailKillScore {
		t.Errorf("cutter score = %d, want %d", cutter.Score, a.Config().TrailKillScore)
	}
	if res.Status.Reason != EndLastStanding || res.Status.Ranking[0].ID != "b" {
		t.Errorf("b should top the final ranking, got %+v", res.Status)
	}
}

func TestTrailCutBeatsOwnCapture(t *testing.T) {
	a := newTestArena(t, 20, 20, nil)
	victim := mustAdd(t, a, "a", Point{X: 5, Y: 5})
	cutter := mustAdd(t, a, "b", Point{X: 12, Y: 5})
	// a is about to close a loop back into (6,4) while b steps onto its trail
	victim.Prev, victim.Pos, victim.Heading = Point{X: 8, Y: 4}, Point{X: 7, Y: 4}, DirLeft
	victim.Trail = []Point{{7, 6}, {8, 6}, {8, 5}, {8, 4}, {7, 4}}
	cutter.Prev, cutter.Pos, cutter.Heading = Point{X: 10, Y: 5}, Point{X: 9, Y: 5}, DirLeft
	cutter.Trail = []Point{{10, 5}, {9, 5}}

	if raw := victim.Territory.Capture(append(victim.Trail, Point{X: 6, Y: 4})); raw.Len() == 0 {
		t.Fatal("the loop would capture if left alone")
	}
	res := a.Tick(nil)
	if cutter.Pos != (Point{X: 8, Y: 5}) {
		t.Fatalf("cutter should step onto (8,5), got %v", cutter.Pos)
	}
	if victim.State != Eliminated || victim.Reason != ReasonTrailCut {
		t.Fatalf("victim should be cut, got %v/%v", victim.State, victim.Reason)
	}
	if len(res.Captures["a"]) != 0 {
		t.Errorf("an eliminated agent must not capture, got %v", res.Captures["a"])
	}
	if cutter.Score != a.Config().TrailKillScore {
		t.Errorf("cutter score = %d, want %d", cutter.Score, a.Config().TrailKillScore)
	}
}

func TestAnnexationScoring(t *testing.T) {
	a := newTestArena(t, 20, 20, nil)
	x := mustAdd(t, a, "a", Point{X: 5, Y: 5})
	y := mustAdd(t, a, "b", Point{X: 9, Y: 5})
	freeze(y)

	// out of the top of the block, along row 3, back through b's top row
	moves := slices.Concat(repeat(DirUp, 2), repeat(DirRight, 4), []Direction{DirDown}, repeat(DirLeft, 3))
	res := run(a, map[string][]Direction{"a": moves})

	captured := res.Captures["a"]
	if len(captured) != 8 {
		t.Fatalf("expected the 8 trail cells captured, got %v", captured)
	}
	if res.Annexed["a"] != 2 {
		t.Errorf("annexed = %d, want 2", res.Annexed["a"])
	}
	cfg := a.Config()
	if want := cfg.NeutralCellScore*8 + cfg.AnnexCellBonus*2; x.Score != want {
		t.Errorf("score = %d, want %d", x.Score, want)
	}
	for _, p := range []Point{{X: 8, Y: 4}, {X: 9, Y: 4}} {
		if y.Territory.Has(p) {
			t.Errorf("b still owns annexed cell %v", p)
		}
		if !x.Territory.Has(p) {
			t.Errorf("a should own annexed cell %v", p)
		}
	}
	if y.Territory.Len() != 7 {
		t.Errorf("b should keep 7 cells, has %d", y.Territory.Len())
	}
	if y.State != Alive {
		t.Errorf("losing land is not an elimination, b is %v", y.State)
	}
}

func TestScenarioTerritoryExhausted(t *testing.T) {
	a := newTestArena(t, 20, 20, nil)
	x := mustAdd(t, a, "a", Point{X: 5, Y: 9})
	y := mustAdd(t, a, "b", Point{X: 9, Y: 9})

	// b steps out of its block and waits above it
	run(a, map[string][]Direction{"a": {DirUp, DirRight}, "b": {DirUp, DirUp}})
	freeze(y)
	if y.Pos != (Point{X: 9, Y: 7}) || len(y.Trail) != 1 {
		t.Fatalf("b should wait at (9,7) with a one-cell trail, at %v trail %v", y.Pos, y.Trail)
	}

	// a runs along b's top row and loops round the rest of the block
	moves := slices.Concat(repeat(DirRight, 5), repeat(DirDown, 3), repeat(DirLeft, 4), []Direction{DirUp, DirLeft})
	res := run(a, map[string][]Direction{"a": moves})
	if res.Annexed["a"] != 9 {
		t.Fatalf("expected all 9 of b's cells annexed, got %d", res.Annexed["a"])
	}
	if !y.Territory.Empty() || y.State != Alive {
		t.Fatalf("b should be landless but still in play, has %d cells, state %v", y.Territory.Len(), y.State)
	}

	res = a.Tick(nil)
	if y.State != Eliminated || y.Reason != ReasonNoTerritory {
		t.Fatalf("agent without territory should be eliminated, got %v/%v", y.State, y.Reason)
	}
	if len(res.Eliminations) != 1 || res.Eliminations[0].By != "a" {
		t.Errorf("expected one elimination credited to a, got %+v", res.Eliminations)
	}
	if x.Kills != 1 {
		t.Errorf("a should be credited the kill, has %d", x.Kills)
	}
}

func TestEnclosedAgentForfeitsGrab(t *testing.T) {
	a := newTestArena(t, 20, 20, nil)
	x := mustAdd(t, a, "a", Point{X: 3, Y: 10})
	y := mustAdd(t, a, "b", Point{X: 10, Y: 10})
	freeze(y)

	// a draws a wide rectangle around b's block
	run(a, map[string][]Direction{"a": slices.Concat(
		repeat(DirUp, 5), repeat(DirRight, 12), repeat(DirDown, 9), repeat(DirLeft, 8))})

	// b makes a small loop of its own, closing on the same tick as a
	thaw(y)
	run(a, map[string][]Direction{
		"a": slices.Concat(repeat(DirLeft, 4), repeat(DirUp, 2)),
		"b": {DirUp, DirUp, DirRight, DirRight, DirDown, DirDown},
	})
	contested := Point{X: 12, Y: 9}
	if !closingGrab(y, Point{X: 11, Y: 10}).Has(contested) || !closingGrab(x, Point{X: 3, Y: 11}).Has(contested) {
		t.Fatalf("both loops should claim %v", contested)
	}

	res := a.Tick(map[string]Input{"a": {Dir: DirUp}, "b": {Dir: DirLeft}})
	if x.Pos != (Point{X: 3, Y: 11}) || y.Pos != (Point{X: 11, Y: 10}) {
		t.Fatalf("heads at %v and %v", x.Pos, y.Pos)
	}
	if y.State != Eliminated || y.Reason != ReasonEnclosed {
		t.Fatalf("b should be enclosed, got %v/%v", y.State, y.Reason)
	}
	if len(res.Eliminations) != 1 || res.Eliminations[0].By != "a" {
		t.Errorf("expected b's elimination credited to a, got %+v", res.Eliminations)
	}
	if len(res.Captures["b"]) != 0 {
		t.Errorf("an enclosed agent keeps nothing, got %v", res.Captures["b"])
	}
	for _, p := range []Point{contested, {X: 10, Y: 8}, {X: 12, Y: 10}} {
		if !x.Territory.Has(p) {
			t.Errorf("cell %v claimed by both should go to a once b is out", p)
		}
	}
	if res.Annexed["a"] != 9 {
		t.Errorf("a should annex b's whole block, got %d", res.Annexed["a"])
	}
	if x.State != Alive {
		t.Errorf("a should survive, got %v", x.State)
	}
}

func TestContestedCellStaysUnowned(t *testing.T) {
	a := newTestArena(t, 12, 12, nil)
	x := mustAdd(t, a, "a", Point{X: 5, Y: 5})
	y := mustAdd(t, a, "b", Point{X: 5, Y: 9})

	// a loops over its own block while b cuts up through it and back
	aMoves := slices.Concat([]Direction{DirRight, DirUp, DirRight}, repeat(DirUp, 3),
		repeat(DirLeft, 4), repeat(DirDown, 3))
	bMoves := slices.Concat(repeat(DirUp, 7), []Direction{DirRight}, repeat(DirDown, 5))
	run(a, map[string][]Direction{"a": aMoves, "b": bMoves})

	contested := []Point{{X: 5, Y: 2}, {X: 5, Y: 3}, {X: 6, Y: 2}, {X: 6, Y: 3}}
	ga, gb := closingGrab(x, Point{X: 4, Y: 4}), closingGrab(y, Point{X: 6, Y: 8})
	for _, p := range contested {
		if !ga.Has(p) || !gb.Has(p) {
			t.Fatalf("both loops should claim %v", p)
		}
	}

	res := a.Tick(map[string]Input{"a": {Dir: DirRight}, "b": {Dir: DirDown}})
	if x.State != Alive || y.State != Alive {
		t.Fatalf("both agents should survive, got %v and %v", x.State, y.State)
	}
	if len(res.Captures["a"]) == 0 || len(res.Captures["b"]) == 0 {
		t.Fatalf("both agents should capture, got %v", res.Captures)
	}
	board := a.Board()
	for _, p := range contested {
		if x.Territory.Has(p) || y.Territory.Has(p) {
			t.Errorf("contested cell %v should go to no one", p)
		}
		if c := board.At(p); c.Kind != CellEmpty {
			t.Errorf("contested cell %v shows as %+v", p, c)
		}
	}
	if !x.Territory.Has(Point{X: 4, Y: 2}) {
		t.Error("a should keep the uncontested part of its loop")
	}
	if !y.Territory.Has(Point{X: 5, Y: 5}) || x.Territory.Has(Point{X: 5, Y: 5}) {
		t.Error("b's trail through a's block should annex it")
	}
	if res.Annexed["b"] != 6 {
		t.Errorf("b annexed %d cells, want 6", res.Annexed["b"])
	}
}

func TestScenarioFullBoard(t *testing.T) {
	a := newTestArena(t, 6, 3, func(c *Config) { c.MoveCadence = 2 })
	x := mustAdd(t, a, "a", Point{X: 1, Y: 1})
	mustAdd(t, a, "b", Point{X: 4, Y: 1})
	x.Score = 3

	res := a.Tick(nil)
	if res.Status.Phase != PhaseEndgame || res.Status.Reason != EndFullBoard {
		t.Fatalf("full board should end the game, got %+v", res.Status)
	}
	if res.Status.Winner != "a" {
		t.Errorf("winner = %q, want a", res.Status.Winner)
	}

	// the arena is frozen once finished
	again := a.Tick(nil)
	if again.Tick != res.Tick {
		t.Errorf("finished arena should not advance, tick %d -> %d", res.Tick, again.Tick)
	}
	if _, err := a.AddAgent(AgentSpec{ID: "c"}); !errors.Is(err, ErrArenaOver) {
		t.Errorf("AddAgent after the end: got %v", err)
	}
}

func TestFullBoardTieHasNoWinner(t *testing.T) {
	a := newTestArena(t, 6, 3, func(c *Config) { c.MoveCadence = 2 })
	mustAdd(t, a, "a", Point{X: 1, Y: 1})
	mustAdd(t, a, "b", Point{X: 4, Y: 1})

	res := a.Tick(nil)
	if res.Status.Reason != EndFullBoard {
		t.Fatalf("expected full board, got %+v", res.Status)
	}
	if res.Status.Winner != "" {
		t.Errorf("tied scores should have no winner, got %q", res.Status.Winner)
	}
	if len(res.Status.Ranking) != 2 || res.Status.Ranking[0].ID != "a" {
		t.Errorf("ties rank by name, got %+v", res.Status.Ranking)
	}
}

func TestTimeLimit(t *testing.T) {
	a := newTestArena(t, 10, 10, func(c *Config) {
		c.MoveCadence = 2
		c.MaxTicks = 3
	})
	mustAdd(t, a, "a", Point{X: 2, Y: 5})
	mustAdd(t, a, "b", Point{X: 7, Y: 5})

	var res TickResult
	for range 3 {
		res = a.Tick(nil)
	}
	if res.Status.Phase != PhaseEndgame || res.Status.Reason != EndTimeLimit {
		t.Fatalf("expected time limit at tick 3, got %+v", res.Status)
	}
	if len(res.Status.Ranking) != 2 {
		t.Errorf("ranking should list both agents, got %+v", res.Status.Ranking)
	}
}

func TestRespawnLifecycle(t *testing.T) {
	a := newTestArena(t, 10, 10, func(c *Config) { c.RespawnTicks = 2 })
	x := mustAdd(t, a, "a", Point{X: 1, Y: 1})
	mustAdd(t, a, "b", Point{X: 7, Y: 7})
	x.Score = 4

	up := steer(map[string]Direction{"a": DirUp, "b": DirUp})
	a.Tick(up)
	res := a.Tick(up)
	if x.State != Respawning || x.Reason != ReasonBorder {
		t.Fatalf("expected respawning after border exit, got %v/%v", x.State, x.Reason)
	}
	if res.Status.Phase != PhaseRunning {
		t.Fatalf("respawning agents keep the game running, got %+v", res.Status)
	}
	a.Tick(up)
	if x.State != Respawning {
		t.Fatalf("respawn should wait two ticks, got %v", x.State)
	}
	res = a.Tick(up)
	if x.State != Alive {
		t.Fatalf("agent should be back, got %v", x.State)
	}
	if len(res.Respawns) != 1 || res.Respawns[0] != "a" {
		t.Errorf("expected a in respawns, got %v", res.Respawns)
	}
	if x.Territory.Len() != 9 || len(x.Trail) != 0 {
		t.Errorf("respawned agent should hold a fresh block, got %d cells trail %v", x.Territory.Len(), x.Trail)
	}
	if x.Score != 4 {
		t.Errorf("score should survive a respawn, got %d", x.Score)
	}
}

func TestNitroPickupAndBoost(t *testing.T) {
	a := newTestArena(t, 10, 10, nil)
	ag := mustAdd(t, a, "a", Point{X: 5, Y: 5})
	if err := a.PlaceBonus(BonusNitro, Point{X: 5, Y: 2}); err != nil {
		t.Fatalf("PlaceBonus: %v", err)
	}
	if err := a.PlaceBonus(BonusNitro, Point{X: 5, Y: 5}); !errors.Is(err, ErrCellOccupied) {
		t.Errorf("bonus on territory: got %v", err)
	}
	if err := a.PlaceBonus(BonusNitro, Point{X: 50, Y: 5}); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("bonus off grid: got %v", err)
	}

	var res TickResult
	for range 3 {
		res = a.Tick(nil)
	}
	if len(res.Pickups) != 1 || res.Pickups[0].AgentID != "a" {
		t.Fatalf("expected a to pick up the nitro, got %v", res.Pickups)
	}
	if ag.NitroTicks != a.Config().NitroTicks {
		t.Errorf("nitro ticks = %d, want %d", ag.NitroTicks, a.Config().NitroTicks)
	}
	if len(a.Bonuses()) != 0 {
		t.Error("picked bonus should leave the board")
	}
}

func TestBoostDoublesSpeed(t *testing.T) {
	a := newTestArena(t, 10, 10, func(c *Config) { c.MoveCadence = 2 })
	ag := mustAdd(t, a, "a", Point{X: 5, Y: 5})
	ag.GiveNitro(5)

	a.Tick(map[string]Input{"a": {Dir: DirRight, Boost: ToggleOn}})
	if ag.Pos != (Point{X: 6, Y: 5}) {
		t.Fatalf("boosted agent should move on the first tick, got %v", ag.Pos)
	}
	if ag.NitroTicks != 4 {
		t.Errorf("nitro should burn one tick, got %d", ag.NitroTicks)
	}
	a.Tick(map[string]Input{"a": {Boost: ToggleOff}})
	if ag.Cadence != ag.BaseCadence {
		t.Errorf("boost off should restore cadence, got %d", ag.Cadence)
	}
}

func TestBonusExpires(t *testing.T) {
	a := newTestArena(t, 10, 10, func(c *Config) {
		c.MoveCadence = 2
		c.BonusLifetime = 2
	})
	mustAdd(t, a, "a", Point{X: 5, Y: 5})
	if err := a.PlaceBonus(BonusNitro, Point{X: 0, Y: 9}); err != nil {
		t.Fatalf("PlaceBonus: %v", err)
	}
	a.Tick(nil)
	if len(a.Bonuses()) != 1 {
		t.Fatal("bonus should still be on the board")
	}
	a.Tick(nil)
	if len(a.Bonuses()) != 0 {
		t.Error("bonus should have expired")
	}
}

func TestAddAgentErrors(t *testing.T) {
	a := newTestArena(t, 10, 10, nil)
	mustAdd(t, a, "a", Point{X: 5, Y: 5})
	if _, err := a.AddAgent(AgentSpec{ID: "a", Spawn: Point{X: 1, Y: 1}}); !errors.Is(err, ErrDuplicateAgent) {
		t.Errorf("duplicate: got %v", err)
	}
	if _, err := a.AddAgent(AgentSpec{ID: "b", Spawn: Point{X: 7, Y: 6}}); !errors.Is(err, ErrSpawnBlocked) {
		t.Errorf("overlap: got %v", err)
	}
	if _, err := a.AddAgent(AgentSpec{ID: "c", Spawn: Point{X: 0, Y: 0}}); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("edge: got %v", err)
	}
	if err := a.RemoveAgent("zz"); !errors.Is(err, ErrUnknownAgent) {
		t.Errorf("unknown remove: got %v", err)
	}
}

func TestRemoveAgentEndsDuel(t *testing.T) {
	a := newTestArena(t, 10, 10, nil)
	mustAdd(t, a, "a", Point{X: 2, Y: 2})
	b := mustAdd(t, a, "b", Point{X: 7, Y: 7})
	if err := a.RemoveAgent("b"); err != nil {
		t.Fatalf("RemoveAgent: %v", err)
	}
	if b.State != Eliminated || b.Reason != ReasonLeft || b.Territory.Len() != 0 {
		t.Errorf("leaver should be cleared, got %v/%v with %d cells", b.State, b.Reason, b.Territory.Len())
	}
	if st := a.Status(); st.Reason != EndLastStanding || st.Ranking[0].ID != "a" {
		t.Errorf("expected a to win by last standing, got %+v", st)
	}
}

func TestFreeSpawnDeterministic(t *testing.T) {
	pick := func() Point {
		a := newTestArena(t, 30, 30, func(c *Config) { c.Seed = 42 })
		mustAdd(t, a, "a", Point{X: 5, Y: 5})
		p, ok := a.FreeSpawn()
		if !ok {
			t.Fatal("expected a free spawn")
		}
		return p
	}
	p1, p2 := pick(), pick()
	if p1 != p2 {
		t.Errorf("same seed should pick the same spawn, got %v and %v", p1, p2)
	}
	if d := p1.Sub(Point{X: 5, Y: 5}); d.X > -3 && d.X < 3 && d.Y > -3 && d.Y < 3 {
		t.Errorf("spawn %v overlaps the existing block", p1)
	}

	tiny := newTestArena(t, 3, 3, nil)
	mustAdd(t, tiny, "a", Point{X: 1, Y: 1})
	if _, ok := tiny.FreeSpawn(); ok {
		t.Error("full board has no spawn")
	}
}

func TestBoardProjection(t *testing.T) {
	a := newTestArena(t, 10, 10, nil)
	ag := mustAdd(t, a, "a", Point{X: 5, Y: 5})
	ag.Pos, ag.Prev = Point{X: 5, Y: 3}, Point{X: 5, Y: 4}
	ag.Trail = []Point{{5, 3}}
	if err := a.PlaceBonus(BonusNitro, Point{X: 0, Y: 0}); err != nil {
		t.Fatalf("PlaceBonus: %v", err)
	}

	b := a.Board()
	if c := b.At(Point{X: 5, Y: 3}); c.Kind != CellHead || c.Owner != "a" {
		t.Errorf("head cell = %+v", c)
	}
	if c := b.At(Point{X: 4, Y: 4}); c.Kind != CellTerritory || c.Owner != "a" {
		t.Errorf("territory cell = %+v", c)
	}
	if c := b.At(Point{X: 0, Y: 0}); c.Kind != CellBonus || c.Bonus != BonusNitro {
		t.Errorf("bonus cell = %+v", c)
	}
	if c := b.At(Point{X: 9, Y: 9}); c.Kind != CellEmpty {
		t.Errorf("empty cell = %+v", c)
	}
	if c := b.At(Point{X: -1, Y: 0}); c.Kind != CellEmpty {
		t.Errorf("off grid should read empty, got %+v", c)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	a := newTestArena(t, 10, 10, nil)
	ag := mustAdd(t, a, "a", Point{X: 5, Y: 5})
	ag.Trail = []Point{{5, 3}}
	s := a.Snapshot()
	s.Agents[0].Trail[0] = Point{X: 9, Y: 9}
	if ag.Trail[0] != (Point{X: 5, Y: 3}) {
		t.Error("snapshot shares trail storage with the arena")
	}
	if len(s.Agents[0].Territory) != 9 {
		t.Errorf("snapshot territory = %d cells, want 9", len(s.Agents[0].Territory))
	}
}

// TestRandomPlayInvariants drives several agents with random headings and
// checks that no two territories overlap and no score ever drops.
func TestRandomPlayInvariants(t *testing.T) {
	a := newTestArena(t, 24, 24, func(c *Config) { c.RespawnTicks = 3 })
	ids := []string{"a", "b", "c", "d"}
	spawns := []Point{{4, 4}, {19, 4}, {4, 19}, {19, 19}}
	for i, id := range ids {
		mustAdd(t, a, id, spawns[i])
	}
	rng := rand.New(rand.NewPCG(7, 11))
	dirs := []Direction{DirUp, DirDown, DirLeft, DirRight}
	prev := make(map[string]int)

	for tick := 0; tick < 400 && !a.Status().Over(); tick++ {
		in := make(map[string]Input)
		for _, id := range ids {
			if rng.IntN(3) == 0 {
				in[id] = Input{Dir: dirs[rng.IntN(len(dirs))]}
			}
		}
		res := a.Tick(in)

		owner := make(map[Point]string)
		for _, ag := range a.Agents() {
			if ag.Score < prev[ag.ID] {
				t.Fatalf("tick %d: %s score dropped %d -> %d", res.Tick, ag.ID, prev[ag.ID], ag.Score)
			}
			prev[ag.ID] = ag.Score
			if !ag.Active() && ag.Territory.Len() != 0 {
				t.Fatalf("tick %d: inactive %s still owns cells", res.Tick, ag.ID)
			}
			for _, p := range ag.Territory.Points() {
				if !a.Grid().Contains(p) {
					t.Fatalf("tick %d: %s owns off-grid %v", res.Tick, ag.ID, p)
				}
				if other, ok := owner[p]; ok {
					t.Fatalf("tick %d: %v owned by both %s and %s", res.Tick, p, other, ag.ID)
				}
				owner[p] = ag.ID
			}
		}
	}
}
