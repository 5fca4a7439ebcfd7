package economy

import (
	"fmt"
	"math"
	"sort"
)

// DefaultEpsilon is the convergence tolerance of CalculateAffordablePortion.
const DefaultEpsilon = 1e-4

// Ledger holds every resource of one city.
type Ledger struct {
	Resources map[ResourceType]*Resource
	Epsilon   float64
}

// NewLedger builds a ledger from resource entries.
func NewLedger(resources []*Resource) *Ledger {
	l := &Ledger{
		Resources: make(map[ResourceType]*Resource, len(resources)),
		Epsilon:   DefaultEpsilon,
	}
	for _, r := range resources {
		l.Resources[r.Type] = r
	}
	return l
}

// Get returns a resource, or nil if the ledger does not track it.
func (l *Ledger) Get(rt ResourceType) *Resource {
	return l.Resources[rt]
}

// Amount returns the current stock of rt, zero if untracked.
func (l *Ledger) Amount(rt ResourceType) float64 {
	if r := l.Resources[rt]; r != nil {
		return r.Amount
	}
	return 0
}

// Flunds returns the currency resource.
func (l *Ledger) Flunds() *Resource {
	r := l.Resources[Flunds]
	if r == nil {
		panic("economy: ledger has no currency resource")
	}
	return r
}

// Types returns the tracked resource types in a stable order.
func (l *Ledger) Types() []ResourceType {
	types := make([]ResourceType, 0, len(l.Resources))
	for rt := range l.Resources {
		types = append(types, rt)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// currencyCost returns the flunds needed to cover costs×f, buying any stock
// shortfall at market price. ok is false if some shortfall cannot be bought.
func (l *Ledger) currencyCost(costs []Flow, f float64) (cost float64, ok bool) {
	ok = true
	for _, c := range costs {
		amount := c.Amount * f
		if c.Type == Flunds {
			cost += amount
			continue
		}
		if amount <= 0 {
			continue
		}
		r := l.Resources[c.Type]
		if r == nil {
			ok = false
			continue
		}
		shortfall := amount - math.Max(r.Amount, 0)
		if shortfall <= 0 {
			continue
		}
		if r.IsSpecial || shortfall > r.BuyableAmount+1e-9 {
			ok = false
		}
		cost += shortfall * r.EffectiveBuyPrice()
	}
	return cost, ok
}

// HasResources reports whether costs can be paid now: every non-currency cost
// is covered by stock plus what the market will still sell, and the resulting
// currency cost fits in the treasury unless allowDebt is set.
func (l *Ledger) HasResources(costs []Flow, allowDebt bool) bool {
	cost, ok := l.currencyCost(Sum(costs), 1)
	if !ok {
		return false
	}
	return allowDebt || cost <= l.Flunds().Amount
}

// CheckAndSpendResources pays costs if HasResources allows it, buying any
// stock shortfall at market price. Returns false without mutating otherwise.
func (l *Ledger) CheckAndSpendResources(costs []Flow, allowDebt bool) bool {
	if !l.HasResources(costs, allowDebt) {
		return false
	}
	l.Spend(costs)
	return true
}

// Spend pays costs unconditionally. Shortfalls are bought up to the market's
// remaining buyable amount; anything beyond that is dropped from the stock.
func (l *Ledger) Spend(costs []Flow) {
	flunds := l.Flunds()
	for _, c := range Sum(costs) {
		if c.Amount <= 0 {
			continue
		}
		if c.Type == Flunds {
			flunds.Consume(c.Amount)
			continue
		}
		r := l.Resources[c.Type]
		if r == nil {
			continue
		}
		shortfall := c.Amount - math.Max(r.Amount, 0)
		if shortfall > 0 && !r.IsSpecial {
			bought := math.Min(shortfall, r.BuyableAmount)
			r.BuyableAmount -= bought
			r.Amount += bought
			flunds.Consume(bought * r.EffectiveBuyPrice())
		}
		r.Consume(math.Min(c.Amount, math.Max(r.Amount, 0)))
	}
}

// CalculateAffordablePortion returns the largest uniform fraction f in [0, 1]
// of costs that can be paid now. The per-resource limit is computed directly;
// the currency limit is found by bisection when the per-resource bound is
// still too expensive, converging within Epsilon.
func (l *Ledger) CalculateAffordablePortion(costs []Flow, allowDebt bool) float64 {
	costs = Sum(costs)
	f := 1.0
	for _, c := range costs {
		if c.Type == Flunds || c.Amount <= 0 {
			continue
		}
		r := l.Resources[c.Type]
		if r == nil {
			return 0
		}
		available := math.Max(r.Amount, 0)
		if !r.IsSpecial {
			available += r.BuyableAmount
		}
		f = math.Min(f, available/c.Amount)
	}
	if f <= 0 {
		return 0
	}
	if allowDebt {
		return f
	}

	budget := l.Flunds().Amount
	if cost, _ := l.currencyCost(costs, f); cost <= budget || cost <= 0 {
		return f
	}
	if budget <= 0 {
		return 0
	}

	eps := l.Epsilon
	if eps <= 0 {
		eps = DefaultEpsilon
	}
	lo, hi := 0.0, f
	for hi-lo > eps {
		mid := (lo + hi) / 2
		if cost, _ := l.currencyCost(costs, mid); cost <= budget {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

// ClampToCapacity enforces capacity bounds on every resource.
func (l *Ledger) ClampToCapacity() {
	for _, r := range l.Resources {
		r.ClampToCapacity()
	}
}

// ResetRates zeroes the per-tick production and consumption counters of
// tradeable resources. Power rates are maintained incrementally and kept.
func (l *Ledger) ResetRates() {
	for _, r := range l.Resources {
		if r.Type == Power {
			continue
		}
		r.ProductionRate = 0
		r.ConsumptionRate = 0
	}
}

// String returns a short ledger summary.
func (l *Ledger) String() string {
	return fmt.Sprintf("Ledger(resources=%d, flunds=%.2f)", len(l.Resources), l.Amount(Flunds))
}
