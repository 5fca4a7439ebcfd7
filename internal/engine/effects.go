// Effect spreading, timed grants and the aggregation queries built on the effect grid.
package engine

import (
	"fmt"
	"slices"

	"github.com/talgya/gridtown/internal/world"
)

// SpreadEffect registers e on every tile within (rx, ry) of its origin: the
// source building's rectangle, or the coordinates in e.At for sourceless
// effects. Returns the tiles covered.
func (c *City) SpreadEffect(e *world.Effect, rx, ry int, rounded bool) []world.Point {
	tiles := world.AreaTiles(c.Grid.Bounds(), c.effectOrigin(e), rx, ry, rounded)
	c.Effects.Spread(e, tiles)
	return tiles
}

// StopEffects removes every effect b emits within (rx, ry) of it.
func (c *City) StopEffects(b *Building, rx, ry int, rounded bool) int {
	return c.Effects.StopSource(b.ID, c.TilesInArea(b, rx, ry, rounded))
}

// GrantEffect spreads a timed effect that expires after ticks long ticks.
// ticks <= 0 keeps it until RevokeEffect.
func (c *City) GrantEffect(e *world.Effect, rx, ry int, rounded bool, ticks int) {
	e.TicksLeft = max(ticks, 0)
	tiles := c.SpreadEffect(e, rx, ry, rounded)
	c.grants = append(c.grants, &grant{effect: e, tiles: tiles})
}

// RevokeEffect removes a granted effect early. Returns false if it was not active.
func (c *City) RevokeEffect(e *world.Effect) bool {
	i := slices.IndexFunc(c.grants, func(g *grant) bool { return g.effect == e })
	if i < 0 {
		return false
	}
	c.Effects.Remove(e, c.grants[i].tiles)
	c.grants = slices.Delete(c.grants, i, i+1)
	return true
}

// ActiveGrants returns the granted effects still in force.
func (c *City) ActiveGrants() []*world.Effect {
	out := make([]*world.Effect, 0, len(c.grants))
	for _, g := range c.grants {
		out = append(out, g.effect)
	}
	return out
}

func (c *City) expireGrants() {
	kept := c.grants[:0]
	for _, g := range c.grants {
		if g.effect.TicksLeft > 0 {
			g.effect.TicksLeft--
			if g.effect.TicksLeft == 0 {
				c.Effects.Remove(g.effect, g.tiles)
				continue
			}
		}
		kept = append(kept, g)
	}
	c.grants = kept
}

func (c *City) effectOrigin(e *world.Effect) world.Rect {
	if e.At != nil {
		return world.Rect{X: e.At.X, Y: e.At.Y, Width: 1, Height: 1}
	}
	src := c.index[e.Source]
	if src == nil {
		panic(fmt.Sprintf("engine: effect source %d is not placed", e.Source))
	}
	return src.Rect()
}

// spreadBuildingEffects registers b's declared effects and counts the
// distinct non-road buildings they reach.
func (c *City) spreadBuildingEffects(b *Building) {
	reached := make(map[world.BuildingID]bool)
	for _, spec := range b.Effects {
		e := &world.Effect{Category: spec.Category, Magnitude: spec.Magnitude, Source: b.ID}
		if spec.Dynamic != "" {
			name := spec.Dynamic
			e.Dynamic = func() float64 { return b.Behavior.DynamicEffect(name, b, c) }
		}
		for _, p := range c.SpreadEffect(e, spec.RadiusX, spec.RadiusY, spec.Rounded) {
			id := c.Grid.At(p.X, p.Y)
			if id == world.NoBuilding || id == b.ID || reached[id] {
				continue
			}
			if o := c.index[id]; o != nil && !o.IsRoad {
				reached[id] = true
			}
		}
	}
	b.AffectingBuildingCount += len(reached)
}

func (c *City) stopBuildingEffects(b *Building) {
	for _, spec := range b.Effects {
		c.StopEffects(b, spec.RadiusX, spec.RadiusY, spec.Rounded)
	}
	b.AffectingBuildingCount = 0
}

func (c *City) sum(x, y int, cat world.EffectCategory) float64 {
	return c.Effects.Sum(x, y, cat)
}

func (c *City) LandValue(x, y int) float64        { return c.sum(x, y, world.EffectLandValue) }
func (c *City) Pollution(x, y int) float64        { return c.sum(x, y, world.EffectPollution) }
func (c *City) PettyCrime(x, y int) float64       { return c.sum(x, y, world.EffectPettyCrime) }
func (c *City) OrganizedCrime(x, y int) float64   { return c.sum(x, y, world.EffectOrganizedCrime) }
func (c *City) PoliceProtection(x, y int) float64 { return c.sum(x, y, world.EffectPoliceProtection) }
func (c *City) FireHazard(x, y int) float64       { return c.sum(x, y, world.EffectFireHazard) }
func (c *City) FireProtection(x, y int) float64   { return c.sum(x, y, world.EffectFireProtection) }
func (c *City) Healthcare(x, y int) float64       { return c.sum(x, y, world.EffectHealthcare) }
func (c *City) Education(x, y int) float64        { return c.sum(x, y, world.EffectEducation) }
func (c *City) Noise(x, y int) float64            { return c.sum(x, y, world.EffectNoise) }
func (c *City) Luxury(x, y int) float64           { return c.sum(x, y, world.EffectLuxury) }
func (c *City) BusinessPresence(x, y int) float64 { return c.sum(x, y, world.EffectBusinessPresence) }

// NetPettyCrime is petty crime left after police protection.
func (c *City) NetPettyCrime(x, y int) float64 {
	return max(0, c.PettyCrime(x, y)-c.PoliceProtection(x, y))
}

// NetOrganizedCrime is organized crime reduced by half of the police
// protection left over after petty crime.
func (c *City) NetOrganizedCrime(x, y int) float64 {
	spare := max(0, c.PoliceProtection(x, y)-c.PettyCrime(x, y))
	return max(0, c.OrganizedCrime(x, y)-0.5*spare)
}

// BuildingAverage averages query over b's stamped cells.
func (c *City) BuildingAverage(b *Building, query func(x, y int) float64) float64 {
	var total float64
	n := 0
	c.eachStampCell(b, func(gx, gy, _, _ int) {
		total += query(gx, gy)
		n++
	})
	if n == 0 {
		return 0
	}
	return total / float64(n)
}
