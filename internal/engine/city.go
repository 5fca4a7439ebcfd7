// City ties together the grid, effects, resources and buildings of one settlement.
package engine

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/talgya/gridtown/internal/economy"
	"github.com/talgya/gridtown/internal/tuning"
	"github.com/talgya/gridtown/internal/world"
)

// RootKind is the kind name of the network root building.
const RootKind = "network_root"

// City holds the complete settlement state.
type City struct {
	ID      uuid.UUID
	Tuning  tuning.Tuning
	Grid    *world.Grid
	Effects *world.EffectGrid

	Resources *economy.Ledger
	Market    economy.MarketRules

	Buildings []*Building // Placement order
	Root      *Building

	index      map[world.BuildingID]*Building
	builtUnder map[world.BuildingID]map[world.BuildingID]struct{} // base → buildings on top
	nextID     world.BuildingID

	TaxRate     float64
	Happiness   float64 // 0..1, fed back into residences
	Tick        uint64  // Long ticks processed
	TerrainSeed int64   // Zero until terrain is applied

	shortTicks int // Short ticks since the last long tick

	PowerSupply float64 // Settled at the latest short tick
	PowerDemand float64

	LastPatronage    PatronageResult
	UntappedNotified bool

	Notifications *Notifications

	grants []*grant
}

type grant struct {
	effect *world.Effect
	tiles  []world.Point
}

// NewCity creates an empty city with its network root placed at the tuned position.
func NewCity(t tuning.Tuning) *City {
	resources := economy.DefaultResources()
	ledger := economy.NewLedger(resources)
	ledger.Epsilon = t.Economy.AffordabilityEpsilon
	ledger.Flunds().Amount = t.Economy.StartingFlunds

	c := &City{
		ID:      uuid.New(),
		Tuning:  t,
		Grid:    world.NewGrid(t.Grid.Width, t.Grid.Height),
		Effects: world.NewEffectGrid(t.Grid.Width, t.Grid.Height),

		Resources: ledger,
		Market: economy.MarketRules{
			CapBase:           t.Economy.MarketCapBase,
			CapStepPopulation: t.Economy.MarketCapStepPopulation,
			CapIncrement:      t.Economy.MarketCapIncrement,
			ReplenishFraction: t.Economy.BuyableReplenish,
		},

		index:      make(map[world.BuildingID]*Building),
		builtUnder: make(map[world.BuildingID]map[world.BuildingID]struct{}),

		TaxRate:       t.Economy.TaxRate,
		Happiness:     0.5,
		Notifications: NewNotifications(),
	}
	c.Resources.ReplenishBuyable(c.Market, 0)

	root := NewBuilding(RootKind, world.SolidFootprint(1, 1, world.TileRoad), BaseBehavior{})
	root.IsRoad = true
	root.Locked = true
	root.Caps = CapNetworkRoot
	c.Place(root, t.Grid.RootX, t.Grid.RootY)
	c.Root = root

	slog.Info("city created", "id", c.ID, "width", t.Grid.Width, "height", t.Grid.Height)
	return c
}

// ApplyTerrain grants the terrain's land value as permanent sourceless effects.
func (c *City) ApplyTerrain(t *world.Terrain) {
	c.TerrainSeed = t.Seed
	for y := 0; y < t.Height && y < c.Grid.Height; y++ {
		for x := 0; x < t.Width && x < c.Grid.Width; x++ {
			v := t.LandValue[y][x]
			if v <= 0 {
				continue
			}
			p := world.Point{X: x, Y: y}
			c.Effects.Spread(&world.Effect{Category: world.EffectLandValue, Magnitude: v, At: &p}, []world.Point{p})
		}
	}
}

// Building resolves a weak handle. Returns nil once the building is gone.
func (c *City) Building(id world.BuildingID) *Building {
	return c.index[id]
}

// BuildingAt returns the building occupying a cell, or nil.
func (c *City) BuildingAt(x, y int) *Building {
	return c.index[c.Grid.At(x, y)]
}

// BuiltUnder returns the buildings currently sitting on top of b.
func (c *City) BuiltUnder(b *Building) []*Building {
	var out []*Building
	for id := range c.builtUnder[b.ID] {
		if top := c.index[id]; top != nil {
			out = append(out, top)
		}
	}
	slices.SortFunc(out, byID)
	return out
}

// WithCapability returns the first placed building carrying want, or nil.
func (c *City) WithCapability(want Capability) *Building {
	for _, b := range c.Buildings {
		if b.Has(want) {
			return b
		}
	}
	return nil
}

// ShortTicksSinceLong returns the short ticks accumulated toward the next long tick.
func (c *City) ShortTicksSinceLong() int {
	return c.shortTicks
}

// Population returns the current resident count.
func (c *City) Population() float64 {
	return c.Resources.Amount(economy.Population)
}

// String returns a short city summary.
func (c *City) String() string {
	return fmt.Sprintf("City(%s, buildings=%d, tick=%d, flunds=%.0f)",
		c.ID, len(c.Buildings), c.Tick, c.Resources.Amount(economy.Flunds))
}

func byID(a, b *Building) int {
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}
