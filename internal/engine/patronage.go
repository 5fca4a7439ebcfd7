// Business patronage: the people pool (population plus tourists) is shared
// among capped businesses in two passes, and the resulting revenue is taxed.
package engine

import (
	"cmp"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/dustin/go-humanize"

	"github.com/talgya/gridtown/internal/economy"
	"github.com/talgya/gridtown/internal/world"
)

// PatronageResult is the outcome of one allocation.
type PatronageResult struct {
	People   float64                      `json:"people"`
	Assigned map[world.BuildingID]float64 `json:"assigned"`
	Order    []world.BuildingID           `json:"order"` // Capped businesses, highest weight first
	Untapped float64                      `json:"untapped"`
	Revenue  float64                      `json:"revenue"` // Pre-tax, including infinibusinesses
}

type patronCandidate struct {
	b      *Building
	biz    Business
	cap    float64
	weight float64 // value × connected efficiency
}

// DistributePatronage assigns people to businesses and sets each eligible
// business's PatronageEfficiency. It does not move any resources.
func (c *City) DistributePatronage() PatronageResult {
	people := c.Population() + c.Resources.Amount(economy.Tourists)
	res := PatronageResult{People: people, Assigned: make(map[world.BuildingID]float64)}

	var capped []patronCandidate
	infini := make(map[string][]*Building)
	for _, b := range c.Buildings {
		biz, ok := b.Behavior.(Business)
		if !ok || b.Failed {
			continue
		}
		limit := biz.PatronCap(b, c)
		if limit < 0 && limit != InfinitePatrons {
			panic(fmt.Sprintf("engine: business %d (%s) has patron cap %v", b.ID, b.Kind, limit))
		}
		ce := c.ConnectedEfficiency(b)
		if ce <= 0 || limit == 0 {
			b.PatronageEfficiency = 0
			continue
		}
		if limit == InfinitePatrons {
			infini[b.Kind] = append(infini[b.Kind], b)
			continue
		}
		capped = append(capped, patronCandidate{b: b, biz: biz, cap: limit, weight: biz.BusinessValue(b, c) * ce})
	}

	slices.SortStableFunc(capped, func(x, y patronCandidate) int {
		if d := cmp.Compare(y.weight, x.weight); d != 0 {
			return d
		}
		if d := cmp.Compare(y.cap, x.cap); d != 0 {
			return d
		}
		return byID(x.b, y.b)
	})

	var total float64
	for _, p := range capped {
		total += p.weight
	}

	assigned := make([]float64, len(capped))
	remaining := people

	// First pass: proportional share of the whole pool, rounded up.
	for i, p := range capped {
		if remaining <= 0 {
			break
		}
		var share float64
		if total > 0 {
			share = math.Ceil(people * p.weight / total)
		}
		n := min(share, p.cap, remaining)
		assigned[i] = n
		remaining -= n
	}

	// Overflow: fill spare capacity in the same order.
	for i, p := range capped {
		if remaining <= 0 {
			break
		}
		spare := p.cap - assigned[i]
		if spare <= 0 {
			continue
		}
		n := min(spare, remaining)
		assigned[i] += n
		remaining -= n
	}
	res.Untapped = max(remaining, 0)

	for i, p := range capped {
		res.Order = append(res.Order, p.b.ID)
		res.Assigned[p.b.ID] = assigned[i]
		fraction := patronageFraction(p.b, assigned[i], p.cap)
		p.b.PatronageEfficiency = fraction
		res.Revenue += p.biz.Revenue(p.b, c, fraction)
	}

	kinds := make([]string, 0, len(infini))
	for kind := range infini {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	for _, kind := range kinds {
		res.Revenue += c.infinibusinessPool(infini[kind])
	}
	return res
}

func patronageFraction(b *Building, assigned, limit float64) float64 {
	if limit <= 0 {
		panic(fmt.Sprintf("engine: business %d (%s) reached revenue with patron cap %v", b.ID, b.Kind, limit))
	}
	return assigned / limit
}

// infinibusinessPool computes the shared revenue of one infinibusiness kind
// and splits it by connected efficiency.
func (c *City) infinibusinessPool(list []*Building) float64 {
	var summed float64
	for _, b := range list {
		summed += c.ConnectedEfficiency(b)
	}
	first := list[0]
	value := first.Behavior.(Business).BusinessValue(first, c)
	revenue := InfinibusinessRevenue(value, c.Population(), summed, c.Tuning.Business)
	for _, b := range list {
		b.PatronageEfficiency = 1
	}
	return revenue
}

// collectTaxes runs the allocation and credits the taxed revenue.
func (c *City) collectTaxes() PatronageResult {
	res := c.DistributePatronage()
	c.Resources.Flunds().Produce(res.Revenue * c.TaxRate)
	c.LastPatronage = res

	if !c.UntappedNotified && res.Untapped >= c.Tuning.Business.UntappedNotifyAt {
		c.UntappedNotified = true
		c.Notify("Untapped patronage",
			fmt.Sprintf("%s people found no open business. Build more shops.", humanize.Commaf(math.Round(res.Untapped))))
		slog.Warn("untapped patronage", "people", res.Untapped, "tick", c.Tick)
	}
	return res
}

// checkBusinessFailures closes capped businesses that have struggled for too
// many consecutive long ticks.
func (c *City) checkBusinessFailures() []world.BuildingID {
	rules := c.Tuning.Business
	var failed []world.BuildingID
	for _, b := range c.Buildings {
		biz, ok := b.Behavior.(Business)
		if !ok || b.Failed || biz.PatronCap(b, c) == InfinitePatrons {
			continue
		}
		if b.PatronageEfficiency < rules.FailPatronage || b.UpkeepEfficiency < rules.FailUpkeep {
			b.StrugglingTicks++
		} else {
			b.StrugglingTicks = 0
		}
		if b.StrugglingTicks >= rules.FailAfterTicks {
			c.fail(b)
			failed = append(failed, b.ID)
		}
	}
	return failed
}

func (c *City) fail(b *Building) {
	b.Failed = true
	b.PatronageEfficiency = 0
	c.Notify("Business closed", fmt.Sprintf("The %s at (%d, %d) went out of business.", b.Kind, b.X, b.Y))
	slog.Warn("business failed", "id", b.ID, "kind", b.Kind, "tick", c.Tick)
}

// Reopen pays to reopen a failed business. Returns false if b has not
// failed or the city cannot afford it.
func (c *City) Reopen(b *Building) bool {
	if !b.Failed {
		return false
	}
	cost := economy.Scale(b.Behavior.Costs(b, c), c.Tuning.Business.ReopenCostFactor)
	if !c.Resources.CheckAndSpendResources(cost, false) {
		return false
	}
	b.Failed = false
	b.StrugglingTicks = 0
	b.PatronageEfficiency = 1
	b.UpkeepEfficiency = 1
	slog.Info("business reopened", "id", b.ID, "kind", b.Kind)
	return true
}
