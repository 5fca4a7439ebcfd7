// Market trading: manual buy/sell, threshold auto-trading and the
// population-bound buy capacity replenished every long tick.
package economy

import "math"

// MarketRules are the tuning constants of the import market.
type MarketRules struct {
	CapBase           float64 // Buy capacity with no population
	CapStepPopulation float64 // Population per capacity increment
	CapIncrement      float64 // Capacity gained per step
	ReplenishFraction float64 // Share of the cap restored each long tick
}

// DefaultMarketRules returns the shipped market constants.
func DefaultMarketRules() MarketRules {
	return MarketRules{
		CapBase:           20,
		CapStepPopulation: 100,
		CapIncrement:      10,
		ReplenishFraction: 0.25,
	}
}

// MarketCap is the most of any one resource the market will hold for sale.
// It grows in whole increments as population crosses each step threshold.
func (m MarketRules) MarketCap(population float64) float64 {
	if m.CapStepPopulation <= 0 || population <= 0 {
		return m.CapBase
	}
	return m.CapBase + m.CapIncrement*math.Floor(population/m.CapStepPopulation)
}

// ReplenishBuyable restores part of every tradeable resource's buy budget,
// never above the population-derived cap. Repeated calls compose the same way
// whether driven in real time or replayed.
func (l *Ledger) ReplenishBuyable(rules MarketRules, population float64) {
	capacity := rules.MarketCap(population)
	for _, r := range l.Resources {
		if r.IsSpecial {
			continue
		}
		r.BuyableAmount = math.Min(capacity, r.BuyableAmount+capacity*rules.ReplenishFraction)
	}
}

// Buy purchases up to amount of rt without going into debt.
// Returns the quantity actually bought.
func (l *Ledger) Buy(rt ResourceType, amount float64) float64 {
	r := l.Resources[rt]
	if r == nil || r.IsSpecial || amount <= 0 {
		return 0
	}
	qty := math.Min(amount, r.BuyableAmount)
	if r.Capacity > 0 {
		qty = math.Min(qty, math.Max(0, r.Capacity-r.Amount))
	}
	if price := r.EffectiveBuyPrice(); price > 0 {
		qty = math.Min(qty, math.Max(0, l.Flunds().Amount)/price)
	}
	if qty <= 0 {
		return 0
	}
	r.BuyableAmount -= qty
	r.Amount += qty
	l.Flunds().Consume(qty * r.EffectiveBuyPrice())
	return qty
}

// Sell sells up to amount of rt from stock. Returns the quantity sold.
func (l *Ledger) Sell(rt ResourceType, amount float64) float64 {
	r := l.Resources[rt]
	if r == nil || r.IsSpecial || amount <= 0 {
		return 0
	}
	qty := math.Min(amount, math.Max(0, r.Amount))
	if qty <= 0 {
		return 0
	}
	r.Amount -= qty
	l.Flunds().Produce(qty * r.EffectiveSellPrice())
	return qty
}

// AutoTrade buys every tradeable resource up to its auto-buy threshold, then
// sells everything above its auto-sell threshold.
func (l *Ledger) AutoTrade() (bought, sold map[ResourceType]float64) {
	bought = make(map[ResourceType]float64)
	sold = make(map[ResourceType]float64)
	types := l.Types()

	for _, rt := range types {
		r := l.Resources[rt]
		if r.IsSpecial || r.AutoBuyBelow <= 0 || r.Capacity <= 0 {
			continue
		}
		target := r.AutoBuyBelow * r.Capacity
		if r.Amount < target {
			if q := l.Buy(rt, target-r.Amount); q > 0 {
				bought[rt] = q
			}
		}
	}
	for _, rt := range types {
		r := l.Resources[rt]
		if r.IsSpecial || r.AutoSellAbove <= 0 || r.Capacity <= 0 {
			continue
		}
		target := r.AutoSellAbove * r.Capacity
		if r.Amount > target {
			if q := l.Sell(rt, r.Amount-target); q > 0 {
				sold[rt] = q
			}
		}
	}
	return bought, sold
}
