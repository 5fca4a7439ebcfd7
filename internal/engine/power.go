package engine

import (
	"slices"

	"github.com/talgya/gridtown/internal/economy"
)

// ShortTick settles power supply against demand. When demand exceeds supply,
// consumers are served in ID order until the supply runs out.
func (c *City) ShortTick() {
	var supply, demand float64
	var consumers []*Building
	for _, b := range c.Buildings {
		if !b.PowerConnected {
			continue
		}
		supply += b.Behavior.PowerProduction(b, c, false)
		if b.appliedPowerUpkeep > 0 {
			demand += b.appliedPowerUpkeep
			consumers = append(consumers, b)
		}
	}

	for _, b := range c.Buildings {
		b.Powered = !b.NeedsPower || (b.PowerConnected && b.appliedPowerUpkeep == 0 && supply > 0)
	}
	if demand <= supply {
		for _, b := range consumers {
			b.Powered = true
		}
	} else {
		slices.SortFunc(consumers, byID)
		remaining := supply
		for _, b := range consumers {
			if b.appliedPowerUpkeep <= remaining {
				remaining -= b.appliedPowerUpkeep
				b.Powered = true
			}
		}
	}

	for _, b := range c.Buildings {
		if b.Powered {
			b.PoweredTicks++
		}
	}
	c.PowerSupply, c.PowerDemand = supply, demand
	c.Resources.Get(economy.Power).Amount = max(0, supply-demand)
	c.shortTicks++
}

// PoweredFraction is the share of short ticks since the last long tick in
// which b had power. Before any short tick it reflects the current flag.
func (c *City) PoweredFraction(b *Building) float64 {
	if !b.NeedsPower {
		return 1
	}
	if c.shortTicks == 0 {
		if b.Powered {
			return 1
		}
		return 0
	}
	return min(1, float64(b.PoweredTicks)/float64(c.shortTicks))
}

// ConnectedEfficiency combines road access, power and upkeep payment.
func (c *City) ConnectedEfficiency(b *Building) float64 {
	if b.NeedsRoad && !b.RoadConnected {
		return 0
	}
	return c.PoweredFraction(b) * b.UpkeepEfficiency
}

// Efficiency is how well b is operating, 0..1 before effect multipliers.
func (c *City) Efficiency(b *Building) float64 {
	if b.Failed {
		return 0
	}
	return c.ConnectedEfficiency(b) * b.PatronageEfficiency * b.Behavior.EfficiencyEffectMultiplier(b, c)
}
