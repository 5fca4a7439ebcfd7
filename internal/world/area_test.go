package world

import "testing"

func TestAreaTilesSquare(t *testing.T) {
	bounds := Rect{Width: 10, Height: 10}
	tiles := AreaTiles(bounds, Rect{X: 4, Y: 4, Width: 2, Height: 2}, 1, 1, false)
	if len(tiles) != 16 {
		t.Fatalf("expected 16 tiles, got %d", len(tiles))
	}
}

func TestAreaTilesRounded(t *testing.T) {
	bounds := Rect{Width: 10, Height: 10}
	tiles := AreaTiles(bounds, Rect{X: 4, Y: 4, Width: 1, Height: 1}, 1, 1, true)
	if len(tiles) != 5 {
		t.Fatalf("expected 5 tiles (self + 4 cardinal), got %d", len(tiles))
	}
	for _, p := range tiles {
		if p.X != 4 && p.Y != 4 {
			t.Errorf("corner tile %v should be excluded", p)
		}
	}
}

func TestAreaTilesClipped(t *testing.T) {
	bounds := Rect{Width: 5, Height: 5}
	tiles := AreaTiles(bounds, Rect{X: 0, Y: 0, Width: 1, Height: 1}, 2, 1, false)
	// x in [0,2], y in [0,1]
	if len(tiles) != 6 {
		t.Fatalf("expected 6 tiles, got %d", len(tiles))
	}
	for _, p := range tiles {
		if !bounds.Contains(p.X, p.Y) {
			t.Errorf("tile %v outside bounds", p)
		}
	}
}

func TestAreaTilesRoundedClippedCornerStaysExcluded(t *testing.T) {
	bounds := Rect{Width: 5, Height: 5}
	// The expanded rectangle's corners are outside the grid, so nothing extra is lost.
	tiles := AreaTiles(bounds, Rect{X: 0, Y: 0, Width: 1, Height: 1}, 1, 1, true)
	if len(tiles) != 3 {
		t.Fatalf("expected 3 tiles, got %d", len(tiles))
	}
}

func TestRectIntersect(t *testing.T) {
	got := Rect{X: -2, Y: 3, Width: 5, Height: 5}.Intersect(Rect{Width: 4, Height: 6})
	want := Rect{X: 0, Y: 3, Width: 3, Height: 3}
	if got != want {
		t.Fatalf("got %+v, expected %+v", got, want)
	}
	if empty := (Rect{X: 10, Y: 10, Width: 1, Height: 1}).Intersect(Rect{Width: 4, Height: 4}); empty.Area() != 0 {
		t.Fatalf("expected empty intersection, got %+v", empty)
	}
}
