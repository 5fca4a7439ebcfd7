package catalog

import (
	"math"

	"github.com/talgya/gridtown/internal/economy"
	"github.com/talgya/gridtown/internal/engine"
	"github.com/talgya/gridtown/internal/world"
)

// trafficPopulation is the population at which road noise peaks.
const trafficPopulation = 2000

// basic covers the cost, upkeep and power figures every kind shares.
type basic struct {
	engine.BaseBehavior
	costs       []economy.Flow
	upkeep      []economy.Flow
	power       float64
	powerUpkeep float64
}

func (s *basic) Costs(*engine.Building, *engine.City) []economy.Flow { return s.costs }

func (s *basic) Upkeep(b *engine.Building, c *engine.City, ideal bool) []economy.Flow {
	if ideal {
		return s.upkeep
	}
	return economy.Scale(s.upkeep, c.Efficiency(b))
}

func (s *basic) PowerProduction(b *engine.Building, c *engine.City, ideal bool) float64 {
	if ideal {
		return s.power
	}
	return s.power * c.Efficiency(b)
}

func (s *basic) PowerUpkeep(*engine.Building, *engine.City, bool) float64 { return s.powerUpkeep }

func (s *basic) DynamicEffect(name string, b *engine.Building, c *engine.City) float64 {
	switch name {
	case "efficiency":
		return c.Efficiency(b)
	case "traffic":
		return min(1, c.Population()/trafficPopulation)
	}
	return 1
}

type residence struct {
	basic
	capacity float64
}

func (r *residence) Residents(b *engine.Building, c *engine.City) float64 {
	return r.capacity * c.Efficiency(b) * (0.5 + 0.5*c.Happiness)
}

func (r *residence) Tourists(*engine.Building, *engine.City) float64 { return 0 }

type attraction struct {
	basic
	visitors float64
}

func (a *attraction) Residents(*engine.Building, *engine.City) float64 { return 0 }

func (a *attraction) Tourists(b *engine.Building, c *engine.City) float64 {
	return a.visitors * c.Efficiency(b)
}

type business struct {
	basic
	value   float64
	patrons float64 // engine.InfinitePatrons for an infinibusiness
}

func (s *business) BusinessValue(b *engine.Building, c *engine.City) float64 {
	return s.value * (1 + 0.5*c.BuildingAverage(b, c.LandValue))
}

func (s *business) PatronCap(*engine.Building, *engine.City) float64 { return s.patrons }

func (s *business) Revenue(b *engine.Building, c *engine.City, patronage float64) float64 {
	return s.value * patronage * c.ConnectedEfficiency(b) * s.EfficiencyEffectMultiplier(b, c)
}

// EfficiencyEffectMultiplier drops with unchecked petty crime.
func (s *business) EfficiencyEffectMultiplier(b *engine.Building, c *engine.City) float64 {
	return 1 - 0.5*min(1, c.BuildingAverage(b, c.NetPettyCrime))
}

// service upkeep grows with the number of buildings it covers beyond its
// nominal load. The max keeps small coverage at base cost.
type service struct {
	basic
	nominal float64
}

func (s *service) Upkeep(b *engine.Building, c *engine.City, ideal bool) []economy.Flow {
	scaled := economy.Scale(s.upkeep, math.Max(1, float64(b.AffectingBuildingCount)/s.nominal))
	if ideal {
		return scaled
	}
	return economy.Scale(scaled, c.Efficiency(b))
}

type mine struct {
	basic
	output float64
}

func (m *mine) OnLongTick(b *engine.Building, c *engine.City) {
	c.Resources.Get(economy.Iron).Produce(m.output * c.Efficiency(b))
}

func flunds(amount float64) economy.Flow { return economy.Flow{Type: economy.Flunds, Amount: amount} }

func owned(kind string, w, h int, tag world.Tile, behavior engine.Behavior) *engine.Building {
	b := engine.NewBuilding(kind, world.SolidFootprint(w, h, tag), behavior)
	b.Owned = true
	b.NeedsRoad = true
	b.NeedsPower = true
	return b
}

func newRoad() *engine.Building {
	b := engine.NewBuilding(Road, world.SolidFootprint(1, 1, world.TileRoad), &basic{
		costs: []economy.Flow{flunds(10)},
	})
	b.Owned = true
	b.IsRoad = true
	b.Effects = []engine.EffectSpec{{Category: world.EffectNoise, Magnitude: 0.05, RadiusX: 1, RadiusY: 1, Rounded: true, Dynamic: "traffic"}}
	return b
}

func newHouse() *engine.Building {
	b := owned(House, 2, 2, world.TileResidence, &residence{
		basic:    basic{costs: []economy.Flow{flunds(80)}, powerUpkeep: 2},
		capacity: 20,
	})
	b.IsResidence = true
	return b
}

func newApartment() *engine.Building {
	b := owned(Apartment, 2, 2, world.TileOccupied, &residence{
		basic: basic{
			costs:       []economy.Flow{flunds(300), {Type: economy.Concrete, Amount: 5}},
			upkeep:      []economy.Flow{flunds(2)},
			powerUpkeep: 6,
		},
		capacity: 60,
	})
	b.Effects = []engine.EffectSpec{{Category: world.EffectNoise, Magnitude: 0.1, RadiusX: 1, RadiusY: 1}}
	return b
}

func newCornerStore() *engine.Building {
	b := owned(CornerStore, 1, 1, world.TileOccupied, &business{
		basic:   basic{costs: []economy.Flow{flunds(120)}, upkeep: []economy.Flow{flunds(1)}, powerUpkeep: 2},
		value:   50,
		patrons: 100,
	})
	b.Effects = []engine.EffectSpec{
		{Category: world.EffectBusinessPresence, Magnitude: 0.1, RadiusX: 2, RadiusY: 2},
		{Category: world.EffectPettyCrime, Magnitude: 0.02, RadiusX: 2, RadiusY: 2, Rounded: true},
	}
	return b
}

func newRestaurant() *engine.Building {
	b := owned(Restaurant, 2, 2, world.TileOccupied, &business{
		basic: basic{
			costs:       []economy.Flow{flunds(250), {Type: economy.Wood, Amount: 4}},
			upkeep:      []economy.Flow{flunds(3), {Type: economy.Food, Amount: 1}},
			powerUpkeep: 4,
		},
		value:   100,
		patrons: 60,
	})
	b.Effects = []engine.EffectSpec{
		{Category: world.EffectBusinessPresence, Magnitude: 0.15, RadiusX: 3, RadiusY: 3},
		{Category: world.EffectLuxury, Magnitude: 0.05, RadiusX: 2, RadiusY: 2, Rounded: true},
	}
	return b
}

func newCasino() *engine.Building {
	b := owned(Casino, 3, 3, world.TileOccupied, &business{
		basic:   basic{costs: []economy.Flow{flunds(1500)}, upkeep: []economy.Flow{flunds(10)}, powerUpkeep: 10},
		value:   400,
		patrons: engine.InfinitePatrons,
	})
	b.Effects = []engine.EffectSpec{
		{Category: world.EffectOrganizedCrime, Magnitude: 0.3, RadiusX: 4, RadiusY: 4, Rounded: true, Dynamic: "efficiency"},
		{Category: world.EffectNoise, Magnitude: 0.15, RadiusX: 2, RadiusY: 2},
	}
	return b
}

func newCoalPlant() *engine.Building {
	b := owned(CoalPlant, 3, 3, world.TileOccupied, &basic{
		costs:  []economy.Flow{flunds(400), {Type: economy.Iron, Amount: 5}},
		upkeep: []economy.Flow{flunds(5), {Type: economy.Coal, Amount: 2}},
		power:  100,
	})
	b.NeedsPower = false
	b.Effects = []engine.EffectSpec{{Category: world.EffectPollution, Magnitude: 0.4, RadiusX: 5, RadiusY: 5, Rounded: true, Dynamic: "efficiency"}}
	return b
}

func newSolarFarm() *engine.Building {
	b := owned(SolarFarm, 3, 3, world.TileOccupied, &basic{
		costs: []economy.Flow{flunds(900)},
		power: 40,
	})
	b.NeedsPower = false
	b.NeedsRoad = false
	return b
}

func newPoliceStation() *engine.Building {
	b := owned(PoliceStation, 2, 2, world.TileOccupied, &basic{
		costs:       []economy.Flow{flunds(300)},
		upkeep:      []economy.Flow{flunds(8)},
		powerUpkeep: 5,
	})
	b.Effects = []engine.EffectSpec{{Category: world.EffectPoliceProtection, Magnitude: 0.6, RadiusX: 6, RadiusY: 6, Rounded: true, Dynamic: "efficiency"}}
	return b
}

func newClinic() *engine.Building {
	b := owned(Clinic, 2, 2, world.TileOccupied, &service{
		basic: basic{
			costs:       []economy.Flow{flunds(350)},
			upkeep:      []economy.Flow{flunds(6)},
			powerUpkeep: 5,
		},
		nominal: 10,
	})
	b.Effects = []engine.EffectSpec{{Category: world.EffectHealthcare, Magnitude: 0.5, RadiusX: 5, RadiusY: 5, Rounded: true, Dynamic: "efficiency"}}
	return b
}

func newPark() *engine.Building {
	b := owned(Park, 2, 2, world.TileOccupied, &attraction{
		basic:    basic{costs: []economy.Flow{flunds(100)}},
		visitors: 5,
	})
	b.NeedsPower = false
	b.NeedsRoad = false
	b.Effects = []engine.EffectSpec{
		{Category: world.EffectLandValue, Magnitude: 0.15, RadiusX: 3, RadiusY: 3, Rounded: true},
		{Category: world.EffectLuxury, Magnitude: 0.1, RadiusX: 3, RadiusY: 3, Rounded: true},
	}
	return b
}

func newCityHall() *engine.Building {
	b := owned(CityHall, 3, 3, world.TileOccupied, &basic{
		costs:       []economy.Flow{flunds(600)},
		upkeep:      []economy.Flow{flunds(5)},
		powerUpkeep: 4,
	})
	b.Caps = engine.CapSeatOfGovernment | engine.CapTreasury
	b.Locked = true
	b.Effects = []engine.EffectSpec{{Category: world.EffectLandValue, Magnitude: 0.1, RadiusX: 4, RadiusY: 4, Rounded: true}}
	return b
}

func newPostOffice() *engine.Building {
	b := owned(PostOffice, 2, 2, world.TileOccupied, &basic{
		costs:       []economy.Flow{flunds(250)},
		upkeep:      []economy.Flow{flunds(4)},
		powerUpkeep: 3,
	})
	b.Caps = engine.CapPostOffice
	return b
}

func newMineVent() *engine.Building {
	b := engine.NewBuilding(MineVent, world.SolidFootprint(1, 1, world.TileMineVent), &basic{})
	b.Locked = true
	return b
}

func newMine() *engine.Building {
	b := owned(Mine, 1, 1, world.TileOccupied, &mine{
		basic:  basic{costs: []economy.Flow{flunds(350)}, upkeep: []economy.Flow{flunds(2)}, powerUpkeep: 3},
		output: 4,
	})
	b.Check = world.SolidFootprint(1, 1, world.TileBuiltOn)
	b.Effects = []engine.EffectSpec{
		{Category: world.EffectPollution, Magnitude: 0.1, RadiusX: 2, RadiusY: 2, Rounded: true, Dynamic: "efficiency"},
		{Category: world.EffectNoise, Magnitude: 0.1, RadiusX: 1, RadiusY: 1},
	}
	return b
}
