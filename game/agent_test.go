package game

import "testing"

func testAgent(spawn Point) *Agent {
	return newAgent(AgentSpec{ID: "a", Name: "A", Spawn: spawn}, 2)
}

func TestChangeDirectionUsesTrueHeading(t *testing.T) {
	a := testAgent(Point{X: 5, Y: 5})
	if !a.ChangeDirection(DirDown) {
		t.Fatal("any heading is allowed before the first move")
	}
	a.Move()
	if a.Pos != (Point{X: 5, Y: 6}) {
		t.Fatalf("expected to move down to (5,6), got %v", a.Pos)
	}

	// nominal heading is right, true heading still down
	if !a.ChangeDirection(DirRight) {
		t.Fatal("turning right should be accepted")
	}
	if a.ChangeDirection(DirUp) {
		t.Error("reversing the last displacement must be ignored")
	}
	if a.Heading != DirRight {
		t.Errorf("rejected command changed heading to %v", a.Heading)
	}
	if a.ChangeDirection(DirNone) {
		t.Error("DirNone is not a command")
	}
}

func TestUpdateTrail(t *testing.T) {
	a := testAgent(Point{X: 5, Y: 5})
	a.ChangeDirection(DirRight)
	a.Move()
	a.UpdateTrail()
	if len(a.Trail) != 0 {
		t.Fatalf("moving inside territory should not start a trail, got %v", a.Trail)
	}
	a.Move()
	a.UpdateTrail()
	a.ChangeDirection(DirLeft) // ignored, would reverse
	a.ChangeDirection(DirUp)
	a.Move()
	a.UpdateTrail()
	a.ChangeDirection(DirLeft)
	a.Move()
	a.UpdateTrail()
	want := []Point{{7, 5}, {7, 4}, {6, 4}}
	if len(a.Trail) != len(want) {
		t.Fatalf("trail = %v, want %v", a.Trail, want)
	}
	for i := range want {
		if a.Trail[i] != want[i] {
			t.Fatalf("trail = %v, want %v", a.Trail, want)
		}
	}
	if !a.Territory.Has(Point{X: 6, Y: 4}) {
		t.Fatal("(6,4) should be owned")
	}
}

func TestTrailHasIgnoresHead(t *testing.T) {
	a := testAgent(Point{X: 5, Y: 5})
	a.Trail = []Point{{1, 1}, {2, 1}, {3, 1}}
	if !a.TrailHas(Point{X: 2, Y: 1}) {
		t.Error("body cell should be on the trail")
	}
	if a.TrailHas(Point{X: 3, Y: 1}) {
		t.Error("newest cell must be ignored")
	}
}

func TestNitroCharge(t *testing.T) {
	a := testAgent(Point{X: 5, Y: 5})
	a.setBoost(true, 1)
	if a.NitroActive || a.Cadence != 2 {
		t.Fatal("boost without charge should do nothing")
	}
	a.GiveNitro(2)
	a.GiveNitro(1)
	if a.NitroTicks != 3 {
		t.Fatalf("charges should stack, got %d", a.NitroTicks)
	}
	a.setBoost(true, 1)
	if !a.NitroActive || a.Cadence != 1 {
		t.Fatalf("boost should switch cadence to 1, got %d", a.Cadence)
	}
	a.tickNitro()
	a.tickNitro()
	a.tickNitro()
	if a.NitroActive || a.Cadence != 2 || a.NitroTicks != 0 {
		t.Errorf("spent nitro should restore base cadence, got active=%v cadence=%d ticks=%d",
			a.NitroActive, a.Cadence, a.NitroTicks)
	}

	a.GiveNitro(5)
	a.setBoost(true, 1)
	a.setBoost(false, 1)
	if a.NitroActive || a.Cadence != 2 || a.NitroTicks != 5 {
		t.Error("switching boost off should keep the remaining charge")
	}
}
