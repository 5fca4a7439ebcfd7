// Long tick: the fixed sequence of market replenishment, population,
// production and taxation, upkeep, happiness, auto-trade and settlement.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/dustin/go-humanize"

	"github.com/talgya/gridtown/internal/economy"
	"github.com/talgya/gridtown/internal/world"
)

const (
	postOfficeReplenishBonus = 0.5 // Extra buyable replenishment at full post office efficiency
	happinessSmoothing       = 0.5 // Share of the gap to target happiness closed per long tick
)

// ErrNoTreasury is returned when a deposit finds no treasury building.
var ErrNoTreasury = errors.New("engine: no treasury building")

// TickReport summarises one long tick.
type TickReport struct {
	Tick         uint64                           `json:"tick"`
	Population   float64                          `json:"population"`
	Tourists     float64                          `json:"tourists"`
	Flunds       float64                          `json:"flunds"`
	Revenue      float64                          `json:"revenue"`
	Taxes        float64                          `json:"taxes"`
	Untapped     float64                          `json:"untapped"`
	Happiness    float64                          `json:"happiness"`
	PowerSupply  float64                          `json:"power_supply"`
	PowerDemand  float64                          `json:"power_demand"`
	TreasuryDraw float64                          `json:"treasury_draw"`
	Bought       map[economy.ResourceType]float64 `json:"bought,omitempty"`
	Sold         map[economy.ResourceType]float64 `json:"sold,omitempty"`
	Failed       []world.BuildingID               `json:"failed,omitempty"`
}

// LongTick advances the economy by one long tick. Callers must not mutate
// the city while it runs.
func (c *City) LongTick() TickReport {
	c.Tick++
	c.Resources.ResetRates()
	before := c.Resources.Flunds().Amount

	// 1. Market buy capacity.
	rules := c.Market
	if po := c.WithCapability(CapPostOffice); po != nil {
		rules.ReplenishFraction *= 1 + postOfficeReplenishBonus*c.Efficiency(po)
	}
	c.Resources.ReplenishBuyable(rules, c.Population())

	// 2. Population and tourism.
	c.updatePopulation()

	// 3. Production hooks, then taxation by the seat of government.
	for _, b := range slices.Clone(c.Buildings) {
		if b.placed {
			b.Behavior.OnLongTick(b, c)
		}
	}
	var patronage PatronageResult
	if c.WithCapability(CapSeatOfGovernment) != nil {
		patronage = c.collectTaxes()
	} else {
		c.LastPatronage = PatronageResult{}
	}

	// 4. Upkeep at whatever fraction can be paid, debt allowed.
	for _, b := range c.Buildings {
		c.payUpkeep(b)
	}
	failed := c.checkBusinessFailures()

	// 5. Happiness feedback.
	c.updateHappiness()

	// 6. Auto-trade.
	bought, sold := c.Resources.AutoTrade()

	// 7. Settlement.
	draw := c.settleTreasury(before)

	c.expireGrants()
	c.Resources.ClampToCapacity()
	for _, b := range c.Buildings {
		b.PoweredTicks = 0
	}
	c.shortTicks = 0

	report := TickReport{
		Tick:         c.Tick,
		Population:   c.Population(),
		Tourists:     c.Resources.Amount(economy.Tourists),
		Flunds:       c.Resources.Amount(economy.Flunds),
		Revenue:      patronage.Revenue,
		Taxes:        patronage.Revenue * c.TaxRate,
		Untapped:     patronage.Untapped,
		Happiness:    c.Happiness,
		PowerSupply:  c.PowerSupply,
		PowerDemand:  c.PowerDemand,
		TreasuryDraw: draw,
		Bought:       bought,
		Sold:         sold,
		Failed:       failed,
	}
	slog.Info("long tick",
		"tick", c.Tick,
		"population", humanize.Commaf(math.Round(report.Population)),
		"flunds", humanize.Commaf(math.Round(report.Flunds)),
		"taxes", report.Taxes,
		"happiness", report.Happiness,
	)
	return report
}

func (c *City) updatePopulation() {
	var residents, tourists float64
	for _, b := range c.Buildings {
		p, ok := b.Behavior.(Populator)
		if !ok || b.Failed {
			continue
		}
		residents += p.Residents(b, c)
		tourists += p.Tourists(b, c)
	}
	c.Resources.Get(economy.Population).Amount = residents
	c.Resources.Get(economy.Tourists).Amount = tourists
}

func (c *City) payUpkeep(b *Building) {
	if b.Failed {
		return
	}
	upkeep := b.Behavior.Upkeep(b, c, true)
	if len(upkeep) == 0 {
		b.UpkeepEfficiency = 1
		return
	}
	f := c.Resources.CalculateAffordablePortion(upkeep, true)
	c.Resources.Spend(economy.Scale(upkeep, f))
	b.UpkeepEfficiency = f
}

// Desirability scores a residence's surroundings, 0..1.
func (c *City) Desirability(b *Building) float64 {
	avg := func(q func(x, y int) float64) float64 { return c.BuildingAverage(b, q) }
	score := 0.5 +
		avg(c.LandValue) +
		0.5*avg(c.Luxury) +
		0.25*(avg(c.Healthcare)+avg(c.Education)) -
		avg(c.Pollution) -
		0.5*avg(c.NetPettyCrime) -
		avg(c.NetOrganizedCrime) -
		0.25*avg(c.Noise)
	return min(1, max(0, score))
}

// updateHappiness moves city happiness toward the resident-weighted
// desirability of every occupied residence.
func (c *City) updateHappiness() {
	var weighted, weight float64
	for _, b := range c.Buildings {
		p, ok := b.Behavior.(Populator)
		if !ok || b.Failed {
			continue
		}
		r := p.Residents(b, c)
		if r <= 0 {
			continue
		}
		weighted += r * c.Desirability(b)
		weight += r
	}
	if weight > 0 {
		c.Happiness += (weighted/weight - c.Happiness) * happinessSmoothing
	}
}

// settleTreasury covers this tick's net currency loss from the treasury
// reserve before it reaches the general ledger. Returns the amount drawn.
func (c *City) settleTreasury(before float64) float64 {
	flunds := c.Resources.Flunds()
	net := flunds.Amount - before
	treasury := c.WithCapability(CapTreasury)
	if net >= 0 || treasury == nil || treasury.Reserve <= 0 {
		return 0
	}
	draw := min(-net, treasury.Reserve)
	treasury.Reserve -= draw
	flunds.Amount += draw
	if treasury.Reserve <= 0 {
		c.Notify("Treasury depleted", "The city treasury reserve is empty; losses now hit the budget directly.")
	}
	return draw
}

// DepositToTreasury moves flunds into the treasury reserve.
func (c *City) DepositToTreasury(amount float64) error {
	treasury := c.WithCapability(CapTreasury)
	if treasury == nil {
		return ErrNoTreasury
	}
	flunds := c.Resources.Flunds()
	if amount <= 0 || flunds.Amount < amount {
		return fmt.Errorf("cannot deposit %.2f with %.2f flunds", amount, flunds.Amount)
	}
	flunds.Amount -= amount
	treasury.Reserve += amount
	return nil
}
