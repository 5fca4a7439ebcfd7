// Package economy provides city resources, cost lists, market trading and
// the affordability primitives used by the tick engine.
package economy

import "math"

// ResourceType identifies a resource in the city ledger.
type ResourceType string

const (
	Flunds     ResourceType = "flunds" // Currency
	Power      ResourceType = "power"
	Population ResourceType = "population"
	Tourists   ResourceType = "tourists"
	Food       ResourceType = "food"
	Coal       ResourceType = "coal"
	Iron       ResourceType = "iron"
	Concrete   ResourceType = "concrete"
	Wood       ResourceType = "wood"
)

// Resource is the stock and market state of one resource type.
// Amount stays within [0, Capacity] at tick boundaries; mid-tick it may
// overshoot until ClampToCapacity runs.
type Resource struct {
	Type     ResourceType `json:"type"`
	Amount   float64      `json:"amount"`
	Capacity float64      `json:"capacity"`

	ProductionRate  float64 `json:"production_rate"`
	ConsumptionRate float64 `json:"consumption_rate"`

	BuyPrice            float64 `json:"buy_price"`
	SellPrice           float64 `json:"sell_price"`
	BuyPriceMultiplier  float64 `json:"buy_price_multiplier"`
	SellPriceMultiplier float64 `json:"sell_price_multiplier"`

	// BuyableAmount is how much the market will still sell this long tick.
	BuyableAmount float64 `json:"buyable_amount"`

	// Auto-trade thresholds as fractions of capacity. Zero disables.
	AutoBuyBelow  float64 `json:"auto_buy_below"`
	AutoSellAbove float64 `json:"auto_sell_above"`

	// IsSpecial resources (population, power, currency) are never traded.
	IsSpecial bool `json:"is_special"`
}

// EffectiveBuyPrice is the per-unit price the city pays.
func (r *Resource) EffectiveBuyPrice() float64 {
	return r.BuyPrice * r.BuyPriceMultiplier
}

// EffectiveSellPrice is the per-unit price the city receives.
func (r *Resource) EffectiveSellPrice() float64 {
	return r.SellPrice * r.SellPriceMultiplier
}

// Produce adds to the stock and records the flow for this tick.
func (r *Resource) Produce(amount float64) {
	r.Amount += amount
	r.ProductionRate += amount
}

// Consume removes from the stock and records the flow for this tick.
// The stock may go negative only for currency.
func (r *Resource) Consume(amount float64) {
	r.Amount -= amount
	r.ConsumptionRate += amount
}

// ClampToCapacity enforces 0 <= Amount <= Capacity. Currency may stay negative (debt).
func (r *Resource) ClampToCapacity() {
	if r.Type != Flunds && r.Amount < 0 {
		r.Amount = 0
	}
	if r.Capacity > 0 && r.Amount > r.Capacity {
		r.Amount = r.Capacity
	}
}

// Flow is one entry of a cost or production list.
type Flow struct {
	Type   ResourceType `json:"type"`
	Amount float64      `json:"amount"`
}

// Scale returns a copy of flows multiplied by f.
func Scale(flows []Flow, f float64) []Flow {
	out := make([]Flow, len(flows))
	for i, fl := range flows {
		out[i] = Flow{Type: fl.Type, Amount: fl.Amount * f}
	}
	return out
}

// Sum collapses duplicate types into one entry each, preserving first-seen order.
func Sum(flows []Flow) []Flow {
	index := make(map[ResourceType]int, len(flows))
	var out []Flow
	for _, fl := range flows {
		if i, ok := index[fl.Type]; ok {
			out[i].Amount += fl.Amount
			continue
		}
		index[fl.Type] = len(out)
		out = append(out, fl)
	}
	return out
}

// DefaultResources returns the starting ledger entries with base prices.
func DefaultResources() []*Resource {
	market := map[ResourceType][2]float64{ // buy, sell
		Food:     {3, 1.5},
		Coal:     {4, 2},
		Iron:     {6, 3},
		Concrete: {5, 2.5},
		Wood:     {3, 1.5},
	}

	resources := []*Resource{
		{Type: Flunds, Capacity: math.Inf(1), IsSpecial: true},
		{Type: Power, Capacity: math.Inf(1), IsSpecial: true},
		{Type: Population, Capacity: math.Inf(1), IsSpecial: true},
		{Type: Tourists, Capacity: math.Inf(1), IsSpecial: true},
	}
	for _, rt := range []ResourceType{Food, Coal, Iron, Concrete, Wood} {
		prices := market[rt]
		resources = append(resources, &Resource{
			Type:                rt,
			Capacity:            100,
			BuyPrice:            prices[0],
			SellPrice:           prices[1],
			BuyPriceMultiplier:  1,
			SellPriceMultiplier: 1,
		})
	}
	for _, r := range resources {
		if r.IsSpecial {
			r.BuyPriceMultiplier = 1
			r.SellPriceMultiplier = 1
		}
	}
	return resources
}
