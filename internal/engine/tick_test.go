package engine

import (
	"testing"
	"time"

	"github.com/talgya/gridtown/internal/economy"
	"github.com/talgya/gridtown/internal/world"
)

func TestCatchUpRunsLongTicks(t *testing.T) {
	e := NewEngine()
	e.ShortTicksPerLong = 4
	shorts, longs := 0, 0
	e.OnShortTick = func(uint64) { shorts++ }
	e.OnLongTick = func(uint64) { longs++ }

	if got := e.CatchUp(10); got != 2 {
		t.Fatalf("got %d long ticks, expected 2", got)
	}
	if got := e.CatchUp(2); got != 1 {
		t.Fatalf("the pending short ticks should complete a long tick, got %d", got)
	}
	if shorts != 12 || longs != 3 || e.Tick != 12 {
		t.Fatalf("got shorts=%d longs=%d tick=%d", shorts, longs, e.Tick)
	}
}

func TestCatchUpElapsedHonoursLimit(t *testing.T) {
	e := NewEngine()
	e.Interval = time.Second
	e.CatchUpElapsed(time.Hour, 30)
	if e.Tick != 30 {
		t.Fatalf("got %d ticks, expected the limit of 30", e.Tick)
	}
}

// buildTown lays out a small powered town with a business and a seat of government.
func buildTown(c *City) {
	placeRoads(c, world.Point{X: 1, Y: 0}, world.Point{X: 2, Y: 0}, world.Point{X: 3, Y: 0})
	c.Place(plant(12), 1, 1)
	hall := structure("hall", 1, 1)
	hall.Caps = CapSeatOfGovernment
	c.Place(hall, 4, 0)
	h := house(25)
	h.NeedsPower = true
	h.Behavior.(*testHome).powerUpkeep = 8
	c.Place(h, 3, 1)
	s := shop(40, 30)
	s.NeedsPower = true
	s.Behavior.(*testShop).powerUpkeep = 8
	c.Place(s, 2, 3)
}

func TestCatchUpMatchesRealTime(t *testing.T) {
	live, replay := newTestCity(t), newTestCity(t)
	buildTown(live)
	buildTown(replay)

	// Real time: the host interleaves short and long ticks itself.
	for i := 1; i <= 36; i++ {
		live.ShortTick()
		if i%12 == 0 {
			live.LongTick()
		}
	}

	e := NewEngine()
	e.Drive(replay, nil)
	e.CatchUp(36)

	for _, rt := range []economy.ResourceType{economy.Flunds, economy.Population, economy.Coal} {
		if a, b := live.Resources.Amount(rt), replay.Resources.Amount(rt); a != b {
			t.Fatalf("%s: live %v, replay %v", rt, a, b)
		}
	}
	if live.Tick != replay.Tick || live.Happiness != replay.Happiness {
		t.Fatalf("tick %d/%d happiness %v/%v", live.Tick, replay.Tick, live.Happiness, replay.Happiness)
	}
}

func TestSimTime(t *testing.T) {
	if got := SimTime(25, 12); got != "Day 3, 1/12" {
		t.Fatalf("got %q", got)
	}
}

func TestRunStopsAfterLongTick(t *testing.T) {
	e := NewEngine()
	e.Interval = time.Millisecond
	e.ShortTicksPerLong = 3

	var shorts, longs int
	e.OnShortTick = func(uint64) { shorts++ }
	e.OnLongTick = func(uint64) {
		longs++
		e.Stop()
	}

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		e.Stop()
		t.Fatal("Run did not return after Stop")
	}

	if shorts != 3 || longs != 1 {
		t.Fatalf("got %d short and %d long ticks, expected 3 and 1", shorts, longs)
	}
	if e.Running() {
		t.Fatal("engine still reports running")
	}
}
