// Road and power connectivity, maintained incrementally by flood fill from
// the network root. Roads carry road connectivity; owned buildings and roads
// conduct power. Anything else is a leaf that connects through a neighbor.
package engine

import (
	"slices"

	"github.com/talgya/gridtown/internal/economy"
	"github.com/talgya/gridtown/internal/world"
)

// maxCascadeHops bounds road connectivity copied through stacked buildings.
const maxCascadeHops = 2

func isRoad(b *Building) bool      { return b.IsRoad }
func isConductor(b *Building) bool { return b.Owned || b.IsRoad }

// networkNeighbors returns the buildings that share a cardinal edge with b
// or with anything stacked with b, together with their own stack partners.
// The relation is symmetric.
func (c *City) networkNeighbors(b *Building) []*Building {
	seen := map[world.BuildingID]bool{b.ID: true}
	var out []*Building
	add := func(o *Building) {
		if !seen[o.ID] {
			seen[o.ID] = true
			out = append(out, o)
		}
	}
	stack := append([]*Building{b}, c.stackPartners(b)...)
	for _, s := range stack[1:] {
		add(s)
	}
	for _, s := range stack {
		for _, n := range c.BuildingsInArea(s, 1, 1, true, false) {
			add(n)
			for _, p := range c.stackPartners(n) {
				add(p)
			}
		}
	}
	return out
}

// connectOnPlace runs after b is stamped.
func (c *City) connectOnPlace(b *Building) {
	if b.Has(CapNetworkRoot) {
		b.RoadConnected = true
		c.connectPower([]*Building{b})
		return
	}
	neighbors := c.networkNeighbors(b)

	if slices.ContainsFunc(neighbors, func(n *Building) bool { return n.IsRoad && n.RoadConnected }) {
		if b.IsRoad {
			c.floodRoads(b)
		} else {
			c.setRoadConnected(b, true)
		}
	} else if !b.IsRoad && slices.ContainsFunc(c.stackPartners(b), func(p *Building) bool { return p.RoadConnected }) {
		c.setRoadConnected(b, true)
	}

	if slices.ContainsFunc(neighbors, func(n *Building) bool { return n.PowerConnected && isConductor(n) }) {
		if isConductor(b) {
			c.connectPower(c.floodPower(b))
		} else {
			c.connectPower([]*Building{b})
		}
	}
}

// floodRoads connects start and every disconnected road reachable from it
// through roads, and marks non-road buildings touching those roads.
func (c *City) floodRoads(start *Building) {
	c.setRoadConnected(start, true)
	queue := []*Building{start}
	for len(queue) > 0 {
		r := queue[0]
		queue = queue[1:]
		for _, n := range c.networkNeighbors(r) {
			if n.RoadConnected {
				continue
			}
			c.setRoadConnected(n, true)
			if n.IsRoad {
				queue = append(queue, n)
			}
		}
	}
}

// floodPower marks start and every disconnected building reachable through
// conductors as power connected. Returns the newly connected buildings.
func (c *City) floodPower(start *Building) []*Building {
	start.PowerConnected = true
	newly := []*Building{start}
	queue := []*Building{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range c.networkNeighbors(cur) {
			if n.PowerConnected {
				continue
			}
			n.PowerConnected = true
			newly = append(newly, n)
			if isConductor(n) {
				queue = append(queue, n)
			}
		}
	}
	return newly
}

// setRoadConnected sets b's flag and copies it across its stack.
func (c *City) setRoadConnected(b *Building, v bool) {
	b.RoadConnected = v
	c.cascadeRoad(b, 0)
}

func (c *City) cascadeRoad(b *Building, hops int) {
	if hops >= maxCascadeHops {
		return
	}
	for _, p := range c.stackPartners(b) {
		if p.RoadConnected == b.RoadConnected || p.IsRoad {
			continue
		}
		p.RoadConnected = b.RoadConnected
		c.cascadeRoad(p, hops+1)
	}
}

// disconnectOnRemove repairs connectivity after b left the grid. neighbors
// are the buildings b touched before removal, partners the ones it was
// stacked with.
func (c *City) disconnectOnRemove(b *Building, neighbors, partners []*Building) {
	wasPowered := b.PowerConnected
	if wasPowered {
		c.retractPower(b)
		b.PowerConnected = false
	}

	neighbors = append(neighbors, partners...)
	if (b.IsRoad && b.RoadConnected) || slices.ContainsFunc(partners, isRoad) {
		reach := c.flood(c.Root, isRoad)
		for _, o := range c.Buildings {
			if o.IsRoad && o.RoadConnected && !reach[o.ID] {
				o.RoadConnected = false
				neighbors = append(neighbors, c.networkNeighbors(o)...)
			}
		}
	}
	b.RoadConnected = false
	for _, n := range neighbors {
		if n.placed && !n.IsRoad && n.RoadConnected && !c.touchesConnectedRoad(n) {
			c.setRoadConnected(n, false)
		}
	}

	if wasPowered && (isConductor(b) || len(partners) > 0) {
		reach := c.flood(c.Root, isConductor)
		for _, o := range c.Buildings {
			if o.PowerConnected && !c.poweredBy(o, reach) {
				c.retractPower(o)
				o.PowerConnected = false
			}
		}
	}
}

// touchesConnectedRoad reports whether a non-road building still has a road
// connected neighbor, directly or through its stack.
func (c *City) touchesConnectedRoad(b *Building) bool {
	return slices.ContainsFunc(c.networkNeighbors(b), func(n *Building) bool {
		return n.IsRoad && n.RoadConnected
	})
}

// flood returns the set of buildings reachable from start through buildings accepted by pass.
func (c *City) flood(start *Building, pass func(*Building) bool) map[world.BuildingID]bool {
	reach := map[world.BuildingID]bool{start.ID: true}
	queue := []*Building{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range c.networkNeighbors(cur) {
			if reach[n.ID] || !pass(n) {
				continue
			}
			reach[n.ID] = true
			queue = append(queue, n)
		}
	}
	return reach
}

// poweredBy reports whether b belongs to the conductor set reach, or is a
// leaf touching it.
func (c *City) poweredBy(b *Building, reach map[world.BuildingID]bool) bool {
	if isConductor(b) {
		return reach[b.ID]
	}
	return slices.ContainsFunc(c.networkNeighbors(b), func(n *Building) bool {
		return isConductor(n) && reach[n.ID]
	})
}

// expectedConnectivity computes both networks from scratch.
func (c *City) expectedConnectivity() (road, power map[world.BuildingID]bool) {
	roads := c.flood(c.Root, isRoad)
	conductors := c.flood(c.Root, isConductor)
	road = make(map[world.BuildingID]bool, len(c.Buildings))
	power = make(map[world.BuildingID]bool, len(c.Buildings))
	for _, b := range c.Buildings {
		power[b.ID] = c.poweredBy(b, conductors)
		if b.IsRoad {
			road[b.ID] = roads[b.ID]
			continue
		}
		road[b.ID] = slices.ContainsFunc(c.networkNeighbors(b), func(n *Building) bool {
			return n.IsRoad && roads[n.ID]
		})
	}
	return road, power
}

// RecomputeConnectivity rebuilds both networks from scratch, keeping the
// power ledger consistent with the result.
func (c *City) RecomputeConnectivity() {
	road, power := c.expectedConnectivity()
	var connect []*Building
	for _, b := range c.Buildings {
		b.RoadConnected = road[b.ID]
		switch {
		case power[b.ID] && !b.PowerConnected:
			b.PowerConnected = true
			connect = append(connect, b)
		case !power[b.ID] && b.PowerConnected:
			c.retractPower(b)
			b.PowerConnected = false
		}
	}
	c.connectPower(connect)
}

// VerifyConnectivity returns the buildings whose incremental flags disagree
// with a from-scratch flood fill. Empty means the networks are sound.
func (c *City) VerifyConnectivity() []world.BuildingID {
	road, power := c.expectedConnectivity()
	var bad []world.BuildingID
	for _, b := range c.Buildings {
		if b.RoadConnected != road[b.ID] || b.PowerConnected != power[b.ID] {
			bad = append(bad, b.ID)
		}
	}
	return bad
}

// connectPower marks each building power connected and applies its ideal
// power figures to the ledger once.
func (c *City) connectPower(list []*Building) {
	power := c.Resources.Get(economy.Power)
	for _, b := range list {
		b.PowerConnected = true
		if b.appliedPowerProduction != 0 || b.appliedPowerUpkeep != 0 {
			continue
		}
		b.appliedPowerProduction = b.Behavior.PowerProduction(b, c, true)
		b.appliedPowerUpkeep = b.Behavior.PowerUpkeep(b, c, true)
		power.ProductionRate += b.appliedPowerProduction
		power.ConsumptionRate += b.appliedPowerUpkeep
	}
}

// retractPower removes b's recorded contribution from the ledger.
func (c *City) retractPower(b *Building) {
	power := c.Resources.Get(economy.Power)
	power.ProductionRate -= b.appliedPowerProduction
	power.ConsumptionRate -= b.appliedPowerUpkeep
	b.appliedPowerProduction = 0
	b.appliedPowerUpkeep = 0
}
