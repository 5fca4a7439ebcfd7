package engine

import (
	"testing"

	"github.com/talgya/gridtown/internal/economy"
	"github.com/talgya/gridtown/internal/tuning"
	"github.com/talgya/gridtown/internal/world"
)

// testBehavior is a configurable behavior for engine tests.
type testBehavior struct {
	BaseBehavior
	costs       []economy.Flow
	upkeep      []economy.Flow
	production  float64
	powerUpkeep float64
}

func (t *testBehavior) Costs(*Building, *City) []economy.Flow { return t.costs }

func (t *testBehavior) Upkeep(*Building, *City, bool) []economy.Flow { return t.upkeep }

func (t *testBehavior) PowerProduction(b *Building, c *City, ideal bool) float64 {
	if ideal {
		return t.production
	}
	return t.production * c.ConnectedEfficiency(b)
}

func (t *testBehavior) PowerUpkeep(*Building, *City, bool) float64 { return t.powerUpkeep }

type testShop struct {
	testBehavior
	value float64
	cap   float64
}

func (s *testShop) BusinessValue(*Building, *City) float64 { return s.value }
func (s *testShop) PatronCap(*Building, *City) float64     { return s.cap }
func (s *testShop) Revenue(_ *Building, _ *City, patronage float64) float64 {
	if s.cap == InfinitePatrons {
		return 0
	}
	return s.value * patronage
}

type testHome struct {
	testBehavior
	residents float64
}

func (h *testHome) Residents(b *Building, c *City) float64 { return h.residents * c.Efficiency(b) }
func (h *testHome) Tourists(*Building, *City) float64      { return 0 }

func testTuning() tuning.Tuning {
	t := tuning.Default()
	t.Grid = tuning.Grid{Width: 16, Height: 16, RootX: 0, RootY: 0}
	return t
}

func newTestCity(t *testing.T) *City {
	t.Helper()
	return NewCity(testTuning())
}

func road() *Building {
	b := NewBuilding("road", world.SolidFootprint(1, 1, world.TileRoad), &testBehavior{})
	b.IsRoad = true
	b.Owned = true
	return b
}

func structure(kind string, w, h int) *Building {
	b := NewBuilding(kind, world.SolidFootprint(w, h, world.TileOccupied), &testBehavior{})
	b.Owned = true
	return b
}

func house(residents float64) *Building {
	b := NewBuilding("house", world.SolidFootprint(1, 1, world.TileResidence), &testHome{residents: residents})
	b.Owned = true
	b.IsResidence = true
	return b
}

func shop(value, cap float64) *Building {
	b := NewBuilding("shop", world.SolidFootprint(1, 1, world.TileOccupied), &testShop{value: value, cap: cap})
	b.Owned = true
	return b
}

func plant(output float64) *Building {
	b := NewBuilding("plant", world.SolidFootprint(2, 2, world.TileOccupied), &testBehavior{production: output})
	b.Owned = true
	return b
}

func consumer(upkeep float64) *Building {
	b := NewBuilding("consumer", world.SolidFootprint(1, 1, world.TileOccupied), &testBehavior{powerUpkeep: upkeep})
	b.Owned = true
	b.NeedsPower = true
	return b
}

func emitter(cat world.EffectCategory, magnitude float64, radius int) *Building {
	b := structure("emitter", 1, 1)
	b.Effects = []EffectSpec{{Category: cat, Magnitude: magnitude, RadiusX: radius, RadiusY: radius}}
	return b
}

func placeRoads(c *City, points ...world.Point) []*Building {
	out := make([]*Building, 0, len(points))
	for _, p := range points {
		r := road()
		c.Place(r, p.X, p.Y)
		out = append(out, r)
	}
	return out
}

// checkGrid verifies every occupied cell resolves to a placed building whose
// stamp covers it.
func checkGrid(t *testing.T, c *City) {
	t.Helper()
	for y := 0; y < c.Grid.Height; y++ {
		for x := 0; x < c.Grid.Width; x++ {
			id := c.Grid.At(x, y)
			if id == world.NoBuilding {
				continue
			}
			b := c.Building(id)
			if b == nil {
				t.Fatalf("cell (%d,%d) holds stale id %d", x, y, id)
			}
			if !b.Rect().Contains(x, y) || b.Stamp.At(x-b.X, y-b.Y) == world.TileEmpty {
				t.Fatalf("cell (%d,%d) claims building %d outside its stamp", x, y, id)
			}
		}
	}
}
