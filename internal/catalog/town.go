package catalog

import (
	"log/slog"

	"github.com/talgya/gridtown/internal/economy"
	"github.com/talgya/gridtown/internal/engine"
	"github.com/talgya/gridtown/internal/world"
)

// SeedFormations places a mine vent at every terrain vent cell that is free.
// Returns how many were placed.
func SeedFormations(c *engine.City, t *world.Terrain) int {
	placed := 0
	for _, v := range t.Vents {
		b := newMineVent()
		if err := Validate(c, b, v.X, v.Y); err != nil {
			continue
		}
		c.Place(b, v.X, v.Y)
		placed++
	}
	slog.Info("formations seeded", "vents", placed)
	return placed
}

type plot struct {
	kind string
	dx   int
	dy   int
}

// starterPlan is laid out around a road running east from the network root.
var starterPlan = []plot{
	{CityHall, 1, -3},
	{CoalPlant, 4, -3},
	{House, 7, -2},
	{House, 9, -2},
	{CornerStore, 11, -1},
	{PostOffice, 12, -2},
	{House, 1, 1},
	{House, 3, 1},
	{Restaurant, 5, 1},
	{PoliceStation, 7, 1},
	{Park, 9, 1},
	{Apartment, 11, 1},
	{Clinic, 13, 1},
}

const starterRoadLength = 14

// StarterTown builds a small powered town next to the root and configures
// fuel auto-buying for its coal plant. Plots that do not fit are skipped.
// Returns the buildings placed.
func StarterTown(c *engine.City) []*engine.Building {
	rx, ry := c.Root.X, c.Root.Y
	var placed []*engine.Building
	try := func(kind string, x, y int) {
		b, err := Build(c, kind, x, y)
		if err != nil {
			slog.Warn("starter plot skipped", "kind", kind, "x", x, "y", y, "err", err)
			return
		}
		placed = append(placed, b)
	}

	for i := 1; i <= starterRoadLength; i++ {
		try(Road, rx+i, ry)
	}
	for _, p := range starterPlan {
		try(p.kind, rx+p.dx, ry+p.dy)
	}

	c.Resources.Get(economy.Coal).AutoBuyBelow = 0.1
	c.Resources.Get(economy.Food).AutoBuyBelow = 0.05
	c.Resources.Get(economy.Iron).AutoSellAbove = 0.5

	slog.Info("starter town built", "buildings", len(placed))
	return placed
}
