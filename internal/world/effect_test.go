package world

import "testing"

func TestEffectSpreadStopRoundTrip(t *testing.T) {
	g := NewEffectGrid(8, 8)
	bounds := Rect{Width: 8, Height: 8}

	base := &Effect{Category: EffectPollution, Magnitude: 0.5, Source: 7}
	baseTiles := AreaTiles(bounds, Rect{X: 2, Y: 2, Width: 1, Height: 1}, 2, 2, false)
	g.Spread(base, baseTiles)

	before := g.Sum(3, 3, EffectPollution)

	e := &Effect{Category: EffectPollution, Magnitude: 1.25, Source: 9}
	tiles := AreaTiles(bounds, Rect{X: 3, Y: 3, Width: 2, Height: 2}, 1, 1, true)
	g.Spread(e, tiles)
	if got := g.Sum(3, 3, EffectPollution); got != before+1.25 {
		t.Fatalf("expected %f after spread, got %f", before+1.25, got)
	}

	if n := g.StopSource(9, tiles); n != len(tiles) {
		t.Fatalf("expected %d entries removed, got %d", len(tiles), n)
	}
	if got := g.Sum(3, 3, EffectPollution); got != before {
		t.Fatalf("expected %f after stop, got %f", before, got)
	}
	if got := g.Sum(0, 0, EffectPollution); got != 0.5 {
		t.Fatalf("other source's entries should survive, got %f", got)
	}
}

func TestEffectSharedByReference(t *testing.T) {
	g := NewEffectGrid(4, 4)
	e := &Effect{Category: EffectLandValue, Magnitude: 1}
	g.Spread(e, []Point{{X: 0, Y: 0}, {X: 3, Y: 3}})
	e.Magnitude = 2
	if g.Sum(0, 0, EffectLandValue) != 2 || g.Sum(3, 3, EffectLandValue) != 2 {
		t.Fatal("magnitude change should be visible on every tile")
	}
}

func TestEffectDynamicAndClamp(t *testing.T) {
	g := NewEffectGrid(2, 2)
	traffic := 0.5
	g.Spread(&Effect{Category: EffectNoise, Magnitude: 2, Dynamic: func() float64 { return traffic }}, []Point{{X: 1, Y: 1}})
	if got := g.Sum(1, 1, EffectNoise); got != 1 {
		t.Fatalf("expected 1, got %f", got)
	}
	traffic = 1
	if got := g.Sum(1, 1, EffectNoise); got != 2 {
		t.Fatalf("expected 2, got %f", got)
	}

	g.Spread(&Effect{Category: EffectLandValue, Magnitude: -3}, []Point{{X: 0, Y: 0}})
	if got := g.Sum(0, 0, EffectLandValue); got != 0 {
		t.Fatalf("expected negative total clamped to 0, got %f", got)
	}
}

func TestEffectRemoveSpecific(t *testing.T) {
	g := NewEffectGrid(2, 1)
	a := &Effect{Category: EffectLuxury, Magnitude: 1}
	b := &Effect{Category: EffectLuxury, Magnitude: 2}
	tiles := []Point{{X: 0, Y: 0}, {X: 1, Y: 0}}
	g.Spread(a, tiles)
	g.Spread(b, tiles)
	g.Remove(a, tiles)
	if got := g.Sum(1, 0, EffectLuxury); got != 2 {
		t.Fatalf("expected 2, got %f", got)
	}
}
