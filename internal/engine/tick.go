// Package engine provides the city simulation: placement, network
// connectivity, spatial effects and the short/long tick economy, driven by a
// real-time tick loop that can also replay missed ticks in a batch.
package engine

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// pausePoll is how often a paused loop checks for a new speed.
const pausePoll = 100 * time.Millisecond

// DefaultShortTicksPerLong is how many short ticks make one long tick.
const DefaultShortTicksPerLong = 12

// Engine drives the simulation forward.
type Engine struct {
	Tick              uint64        // Short ticks run (monotonic, never resets)
	Speed             float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval          time.Duration // Base short tick interval
	ShortTicksPerLong int

	running atomic.Bool

	// Callbacks for each tick layer, populated during setup.
	OnShortTick func(tick uint64)
	OnLongTick  func(tick uint64)
}

// NewEngine creates an engine with default settings.
func NewEngine() *Engine {
	return &Engine{
		Speed:             1.0,
		Interval:          time.Second,
		ShortTicksPerLong: DefaultShortTicksPerLong,
	}
}

// Drive wires the engine's callbacks to a city. onReport, if set, receives
// every long tick's report.
func (e *Engine) Drive(c *City, onReport func(TickReport)) {
	e.OnShortTick = func(uint64) { c.ShortTick() }
	e.OnLongTick = func(uint64) {
		report := c.LongTick()
		if onReport != nil {
			onReport(report)
		}
	}
}

// Run drives short ticks at Interval/Speed, with a long tick folded in every
// ShortTicksPerLong. Blocks until Stop.
func (e *Engine) Run() {
	e.running.Store(true)
	slog.Info("tick loop started", "short_tick", e.Tick, "speed", e.Speed, "per_long", e.ShortTicksPerLong)

	for e.running.Load() {
		if e.Speed <= 0 {
			// Zero speed holds the city between short ticks.
			time.Sleep(pausePoll)
			continue
		}

		slot := time.Duration(float64(e.Interval) / e.Speed)
		deadline := time.Now().Add(slot)

		// A long tick runs inside its short tick's slot and shortens the wait.
		e.step()
		if wait := time.Until(deadline); wait > 0 {
			time.Sleep(wait)
		}
	}

	slog.Info("tick loop stopped", "short_tick", e.Tick)
}

// Stop ends Run after the short tick in progress.
func (e *Engine) Stop() {
	e.running.Store(false)
}

// Running reports whether Run is active.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// step advances by one short tick, running a long tick every ShortTicksPerLong.
func (e *Engine) step() bool {
	e.Tick++

	if e.OnShortTick != nil {
		e.OnShortTick(e.Tick)
	}

	perLong := max(e.ShortTicksPerLong, 1)
	if e.Tick%uint64(perLong) != 0 {
		return false
	}
	if e.OnLongTick != nil {
		e.OnLongTick(e.Tick)
	}
	return true
}

// CatchUp replays n short ticks back to back, with the long ticks they
// contain, and returns how many long ticks ran. The end state matches
// running the same ticks in real time.
func (e *Engine) CatchUp(n int) int {
	longs := 0
	for range max(n, 0) {
		if e.step() {
			longs++
		}
	}
	if n > 0 {
		slog.Info("caught up", "short_ticks", n, "long_ticks", longs, "tick", e.Tick)
	}
	return longs
}

// CatchUpElapsed replays the short ticks that would have run during idle,
// at most limit of them (limit <= 0 means no limit).
func (e *Engine) CatchUpElapsed(idle time.Duration, limit int) int {
	if e.Interval <= 0 {
		return 0
	}
	n := int(idle / e.Interval)
	if limit > 0 {
		n = min(n, limit)
	}
	return e.CatchUp(n)
}

// SimTime returns a human-readable simulation time from a short tick number.
func SimTime(tick uint64, shortTicksPerLong int) string {
	perLong := uint64(max(shortTicksPerLong, 1))
	return fmt.Sprintf("Day %d, %d/%d", tick/perLong+1, tick%perLong, perLong)
}
