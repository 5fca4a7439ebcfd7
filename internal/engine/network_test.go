package engine

import (
	"math"
	"math/rand"
	"testing"

	"github.com/talgya/gridtown/internal/economy"
	"github.com/talgya/gridtown/internal/world"
)

func TestRootStartsOnBothNetworks(t *testing.T) {
	c := newTestCity(t)
	if !c.Root.RoadConnected || !c.Root.PowerConnected {
		t.Fatalf("root: got road=%v power=%v, expected both connected",
			c.Root.RoadConnected, c.Root.PowerConnected)
	}

	p := plant(30)
	c.Place(p, 1, 0)
	user := consumer(5)
	c.Place(user, 0, 1)
	if !p.PowerConnected || !user.PowerConnected {
		t.Fatalf("got plant=%v consumer=%v, expected both powered from the root",
			p.PowerConnected, user.PowerConnected)
	}
	if bad := c.VerifyConnectivity(); len(bad) != 0 {
		t.Fatalf("connectivity disagrees with a fresh fill: %v", bad)
	}

	c.ShortTick()
	if !user.Powered {
		t.Fatal("consumer should draw from the plant through the root")
	}
}

func TestConnectingRoadFlipsBoth(t *testing.T) {
	c := newTestCity(t)
	far := road()
	c.Place(far, 2, 0)
	if far.RoadConnected {
		t.Fatal("a road not touching the network must start disconnected")
	}

	link := road()
	c.Place(link, 1, 0)
	if !link.RoadConnected || !far.RoadConnected {
		t.Fatalf("expected both roads connected, got link=%v far=%v", link.RoadConnected, far.RoadConnected)
	}
}

func TestRoadConnectsAdjacentBuildings(t *testing.T) {
	c := newTestCity(t)
	b := structure("shop", 2, 2)
	c.Place(b, 3, 1)
	placeRoads(c, world.Point{X: 3, Y: 0})
	if b.RoadConnected {
		t.Fatal("building next to a disconnected road must stay disconnected")
	}

	placeRoads(c, world.Point{X: 1, Y: 0}, world.Point{X: 2, Y: 0})
	if !b.RoadConnected {
		t.Fatal("building should connect when its road joins the network")
	}
}

func TestRemovingRoadDisconnectsDownstream(t *testing.T) {
	c := newTestCity(t)
	roads := placeRoads(c,
		world.Point{X: 1, Y: 0}, world.Point{X: 2, Y: 0}, world.Point{X: 3, Y: 0}, world.Point{X: 4, Y: 0})
	b := structure("shop", 1, 1)
	c.Place(b, 4, 1)
	if !b.RoadConnected {
		t.Fatal("expected shop connected")
	}

	c.Remove(roads[1])
	for i, r := range roads {
		if i == 1 {
			continue
		}
		if want := i == 0; r.RoadConnected != want {
			t.Errorf("road %d: got %v, expected %v", i, r.RoadConnected, want)
		}
	}
	if b.RoadConnected {
		t.Fatal("shop should lose its connection with the road cut")
	}
	if bad := c.VerifyConnectivity(); len(bad) != 0 {
		t.Fatalf("connectivity disagrees with a fresh fill: %v", bad)
	}
}

func TestCornerAdjacencyDoesNotConnect(t *testing.T) {
	c := newTestCity(t)
	b := structure("shop", 1, 1)
	c.Place(b, 1, 1)
	if b.RoadConnected || b.PowerConnected {
		t.Fatal("diagonal contact with the root must not connect")
	}
}

func TestPowerConductsThroughOwnedBuildings(t *testing.T) {
	c := newTestCity(t)
	p := plant(50)
	c.Place(p, 1, 0)
	chain := structure("block", 1, 1)
	c.Place(chain, 3, 0)
	user := consumer(10)
	c.Place(user, 4, 0)

	power := c.Resources.Get(economy.Power)
	if !p.PowerConnected || !chain.PowerConnected || !user.PowerConnected {
		t.Fatal("expected the chain of owned buildings to conduct power")
	}
	if power.ProductionRate != 50 || power.ConsumptionRate != 10 {
		t.Fatalf("ledger: got production %v consumption %v", power.ProductionRate, power.ConsumptionRate)
	}

	c.Remove(chain)
	if user.PowerConnected {
		t.Fatal("consumer should lose power when its only conductor goes")
	}
	if power.ConsumptionRate != 0 {
		t.Fatalf("retraction left consumption %v", power.ConsumptionRate)
	}
}

func TestUnownedLeafDoesNotConduct(t *testing.T) {
	c := newTestCity(t)
	rock := NewBuilding("rock", world.SolidFootprint(1, 1, world.TileOccupied), &testBehavior{})
	c.Place(rock, 1, 0)
	beyond := consumer(5)
	c.Place(beyond, 2, 0)

	if !rock.PowerConnected {
		t.Fatal("a leaf touching the root is connected")
	}
	if beyond.PowerConnected {
		t.Fatal("power must not pass through an unowned leaf")
	}
}

func TestStackCascadesRoadConnectivity(t *testing.T) {
	c := newTestCity(t)
	placeRoads(c, world.Point{X: 1, Y: 0})
	vent := NewBuilding("vent", world.SolidFootprint(1, 1, world.TileMineVent), &testBehavior{})
	c.Place(vent, 5, 5)
	mine := structure("mine", 1, 1)
	mine.Check = world.SolidFootprint(1, 1, world.TileBuiltOn)
	c.Place(mine, 5, 5)
	if mine.RoadConnected || vent.RoadConnected {
		t.Fatal("stack is not near a road yet")
	}

	placeRoads(c, world.Point{X: 2, Y: 0}, world.Point{X: 3, Y: 0}, world.Point{X: 4, Y: 0},
		world.Point{X: 5, Y: 0}, world.Point{X: 5, Y: 1}, world.Point{X: 5, Y: 2},
		world.Point{X: 5, Y: 3}, world.Point{X: 5, Y: 4})
	if !mine.RoadConnected || !vent.RoadConnected {
		t.Fatalf("got mine=%v vent=%v, expected both connected", mine.RoadConnected, vent.RoadConnected)
	}
	if bad := c.VerifyConnectivity(); len(bad) != 0 {
		t.Fatalf("connectivity disagrees with a fresh fill: %v", bad)
	}
}

func TestRandomPlacementsKeepConnectivitySound(t *testing.T) {
	c := newTestCity(t)
	rng := rand.New(rand.NewSource(3))

	for step := 0; step < 600; step++ {
		if rng.Intn(3) == 0 && len(c.Buildings) > 1 {
			c.Remove(c.Buildings[1+rng.Intn(len(c.Buildings)-1)])
		} else {
			var b *Building
			switch rng.Intn(6) {
			case 0, 1, 2:
				b = road()
			case 3:
				b = plant(float64(10 + rng.Intn(40)))
			case 4:
				b = consumer(float64(1 + rng.Intn(10)))
			default:
				b = NewBuilding("rock", world.SolidFootprint(1, 1, world.TileOccupied), &testBehavior{})
			}
			x, y := rng.Intn(c.Grid.Width), rng.Intn(c.Grid.Height)
			if !fits(c, b, x, y) {
				continue
			}
			c.Place(b, x, y)
		}

		if bad := c.VerifyConnectivity(); len(bad) != 0 {
			t.Fatalf("step %d: incremental flags disagree for %v", step, bad)
		}
		var production, consumption float64
		for _, b := range c.Buildings {
			if b.PowerConnected {
				production += b.Behavior.PowerProduction(b, c, true)
				consumption += b.Behavior.PowerUpkeep(b, c, true)
			}
		}
		power := c.Resources.Get(economy.Power)
		if math.Abs(power.ProductionRate-production) > 1e-9 || math.Abs(power.ConsumptionRate-consumption) > 1e-9 {
			t.Fatalf("step %d: ledger %v/%v, expected %v/%v", step,
				power.ProductionRate, power.ConsumptionRate, production, consumption)
		}
	}
}

func TestRecomputeConnectivityRestoresFlags(t *testing.T) {
	c := newTestCity(t)
	placeRoads(c, world.Point{X: 1, Y: 0}, world.Point{X: 2, Y: 0})
	p := plant(20)
	c.Place(p, 1, 1)

	for _, b := range c.Buildings {
		b.RoadConnected = false
	}
	if len(c.VerifyConnectivity()) == 0 {
		t.Fatal("expected corrupted flags to be reported")
	}
	c.RecomputeConnectivity()
	if bad := c.VerifyConnectivity(); len(bad) != 0 {
		t.Fatalf("still inconsistent after recompute: %v", bad)
	}
	if got := c.Resources.Get(economy.Power).ProductionRate; got != 20 {
		t.Fatalf("recompute must not double count power, got %v", got)
	}
}
