package engine

import (
	"fmt"
	"slices"

	"github.com/talgya/gridtown/internal/world"
)

// Place stamps b onto the grid with its top-left corner at (x, y).
// Validity is checked beforehand by the caller; Place trusts its input.
// Residences under the stamp are evicted, anything else becomes part of
// b's built-on set.
func (c *City) Place(b *Building, x, y int) {
	if b.placed {
		panic(fmt.Sprintf("engine: building %d (%s) placed twice", b.ID, b.Kind))
	}
	if b.ID == world.NoBuilding {
		c.nextID++
		b.ID = c.nextID
	} else if b.ID > c.nextID {
		c.nextID = b.ID
	}
	if b.BuiltOn == nil {
		b.BuiltOn = make(map[world.BuildingID]struct{})
	}
	b.X, b.Y = x, y

	for _, r := range c.residencesUnder(b) {
		c.Remove(r)
	}

	b.Behavior.OnPlace(b, c)
	c.index[b.ID] = b
	c.Buildings = append(c.Buildings, b)
	b.placed = true
	b.PlacedTick = c.Tick

	counted := make(map[world.BuildingID]bool)
	c.eachStampCell(b, func(gx, gy, _, _ int) {
		if under := c.Grid.At(gx, gy); under != world.NoBuilding && under != b.ID {
			b.BuiltOn[under] = struct{}{}
			if c.builtUnder[under] == nil {
				c.builtUnder[under] = make(map[world.BuildingID]struct{})
			}
			c.builtUnder[under][b.ID] = struct{}{}
		}
		c.Grid.Set(gx, gy, b.ID)
		if !b.IsRoad {
			c.countAffecting(gx, gy, b.ID, counted, 1)
		}
	})

	c.spreadBuildingEffects(b)
	c.connectOnPlace(b)
	b.Behavior.OnPlaced(b, c)
}

// Remove takes b off the grid, restoring any building it was stacked on,
// and repairs connectivity around it.
func (c *City) Remove(b *Building) {
	if !b.placed {
		panic(fmt.Sprintf("engine: building %d (%s) removed while not placed", b.ID, b.Kind))
	}
	if b.Has(CapNetworkRoot) {
		panic("engine: the network root cannot be removed")
	}
	b.Behavior.OnRemove(b, c)

	neighbors := c.networkNeighbors(b)
	partners := c.stackPartners(b)

	counted := make(map[world.BuildingID]bool)
	c.eachStampCell(b, func(gx, gy, dx, dy int) {
		if c.Grid.At(gx, gy) != b.ID {
			return
		}
		c.Grid.Clear(gx, gy)
		if b.Check.At(dx, dy) == world.TileBuiltOn {
			if under := c.builtOnAt(b, gx, gy); under != nil {
				c.Grid.Set(gx, gy, under.ID)
			}
		}
		if !b.IsRoad {
			c.countAffecting(gx, gy, b.ID, counted, -1)
		}
	})

	c.stopBuildingEffects(b)

	for id := range b.BuiltOn {
		delete(c.builtUnder[id], b.ID)
	}
	for id := range c.builtUnder[b.ID] {
		if top := c.index[id]; top != nil {
			delete(top.BuiltOn, b.ID)
		}
	}
	delete(c.builtUnder, b.ID)

	delete(c.index, b.ID)
	if i := slices.Index(c.Buildings, b); i >= 0 {
		c.Buildings = slices.Delete(c.Buildings, i, i+1)
	}
	b.placed = false

	c.disconnectOnRemove(b, neighbors, partners)
}

// Move relocates b, keeping its identity.
func (c *City) Move(b *Building, x, y int) {
	c.Remove(b)
	c.Place(b, x, y)
}

// TilesInArea returns the in-bounds tiles within (rx, ry) of b's rectangle.
func (c *City) TilesInArea(b *Building, rx, ry int, rounded bool) []world.Point {
	return world.AreaTiles(c.Grid.Bounds(), b.Rect(), rx, ry, rounded)
}

// BuildingsInArea returns the distinct buildings other than b found within
// (rx, ry) of b, in scan order.
func (c *City) BuildingsInArea(b *Building, rx, ry int, rounded, excludeRoads bool) []*Building {
	seen := map[world.BuildingID]bool{b.ID: true}
	var out []*Building
	for _, p := range c.TilesInArea(b, rx, ry, rounded) {
		id := c.Grid.At(p.X, p.Y)
		if id == world.NoBuilding || seen[id] {
			continue
		}
		seen[id] = true
		o := c.index[id]
		if o == nil || (excludeRoads && o.IsRoad) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// residencesUnder lists the distinct residences b's stamp would cover.
func (c *City) residencesUnder(b *Building) []*Building {
	var out []*Building
	c.eachStampCell(b, func(gx, gy, _, _ int) {
		o := c.index[c.Grid.At(gx, gy)]
		if o != nil && o != b && o.IsResidence && !slices.Contains(out, o) {
			out = append(out, o)
		}
	})
	return out
}

// eachStampCell calls fn for every non-empty stamp cell of b that lies on the grid.
func (c *City) eachStampCell(b *Building, fn func(gx, gy, dx, dy int)) {
	for dy := 0; dy < b.Height; dy++ {
		for dx := 0; dx < b.Width; dx++ {
			if b.Stamp.At(dx, dy) == world.TileEmpty {
				continue
			}
			gx, gy := b.X+dx, b.Y+dy
			if !c.Grid.InBounds(gx, gy) {
				continue
			}
			fn(gx, gy, dx, dy)
		}
	}
}

// builtOnAt finds the building in b's built-on set whose stamp covers (x, y).
func (c *City) builtOnAt(b *Building, x, y int) *Building {
	for id := range b.BuiltOn {
		u := c.index[id]
		if u == nil || !u.Rect().Contains(x, y) {
			continue
		}
		if u.Stamp.At(x-u.X, y-u.Y) != world.TileEmpty {
			return u
		}
	}
	return nil
}

// countAffecting adjusts AffectingBuildingCount of every effect source on
// (x, y) other than self, once per source per call.
func (c *City) countAffecting(x, y int, self world.BuildingID, counted map[world.BuildingID]bool, delta int) {
	for _, e := range c.Effects.At(x, y) {
		if e.Source == world.NoBuilding || e.Source == self || counted[e.Source] {
			continue
		}
		counted[e.Source] = true
		if src := c.index[e.Source]; src != nil {
			src.AffectingBuildingCount += delta
		}
	}
}

// stackPartners returns the buildings b sits on and the buildings on top of b.
func (c *City) stackPartners(b *Building) []*Building {
	var out []*Building
	for id := range b.BuiltOn {
		if o := c.index[id]; o != nil {
			out = append(out, o)
		}
	}
	for id := range c.builtUnder[b.ID] {
		if o := c.index[id]; o != nil {
			out = append(out, o)
		}
	}
	slices.SortFunc(out, byID)
	return out
}
