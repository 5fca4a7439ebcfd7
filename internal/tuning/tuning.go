// Package tuning provides the simulation's balance constants, loadable from yaml.
// Defaults are the shipped game balance; a file only needs the keys it overrides.
package tuning

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning is the full set of simulation constants.
type Tuning struct {
	Grid     Grid     `yaml:"grid"`
	Terrain  Terrain  `yaml:"terrain"`
	Economy  Economy  `yaml:"economy"`
	Business Business `yaml:"business"`
	Ticks    Ticks    `yaml:"ticks"`
}

type Grid struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	RootX  int `yaml:"root_x"` // Network root position
	RootY  int `yaml:"root_y"`
}

type Terrain struct {
	Seed           int64   `yaml:"seed"`
	LandValueScale float64 `yaml:"land_value_scale"`
	VentCount      int     `yaml:"vent_count"`
	VentSpacing    int     `yaml:"vent_spacing"`
}

type Economy struct {
	StartingFlunds       float64 `yaml:"starting_flunds"`
	TaxRate              float64 `yaml:"tax_rate"`
	AffordabilityEpsilon float64 `yaml:"affordability_epsilon"`

	// Import market buy capacity: base + increment per population step.
	MarketCapBase           float64 `yaml:"market_cap_base"`
	MarketCapStepPopulation float64 `yaml:"market_cap_step_population"`
	MarketCapIncrement      float64 `yaml:"market_cap_increment"`
	BuyableReplenish        float64 `yaml:"buyable_replenish"`
}

type Business struct {
	FailPatronage      float64 `yaml:"fail_patronage"`       // Patronage fraction considered unsustainable
	FailUpkeep         float64 `yaml:"fail_upkeep"`          // Upkeep fraction considered unsustainable
	FailAfterTicks     int     `yaml:"fail_after_ticks"`     // Consecutive long ticks before closing
	ReopenCostFactor   float64 `yaml:"reopen_cost_factor"`   // Share of build cost paid to reopen
	UntappedNotifyAt   float64 `yaml:"untapped_notify_at"`   // Untapped patronage that triggers the advisory
	InfiniSaturation   float64 `yaml:"infini_saturation"`    // Diminishing-returns rate per unit of summed efficiency
	InfiniPopDivisor   float64 `yaml:"infini_pop_divisor"`   // Population scale of infinibusiness revenue
	InfiniBaseFraction float64 `yaml:"infini_base_fraction"` // Revenue at zero population, as a share of value
}

type Ticks struct {
	ShortIntervalMs   int `yaml:"short_interval_ms"`
	ShortTicksPerLong int `yaml:"short_ticks_per_long"`
}

// Default returns the shipped balance.
func Default() Tuning {
	return Tuning{
		Grid: Grid{Width: 64, Height: 64, RootX: 32, RootY: 32},
		Terrain: Terrain{
			Seed:           42,
			LandValueScale: 0.5,
			VentCount:      6,
			VentSpacing:    8,
		},
		Economy: Economy{
			StartingFlunds:          5000,
			TaxRate:                 0.1,
			AffordabilityEpsilon:    1e-4,
			MarketCapBase:           20,
			MarketCapStepPopulation: 100,
			MarketCapIncrement:      10,
			BuyableReplenish:        0.25,
		},
		Business: Business{
			FailPatronage:      0.1,
			FailUpkeep:         0.25,
			FailAfterTicks:     3,
			ReopenCostFactor:   0.5,
			UntappedNotifyAt:   100,
			InfiniSaturation:   0.35,
			InfiniPopDivisor:   500,
			InfiniBaseFraction: 0.2,
		},
		Ticks: Ticks{ShortIntervalMs: 1000, ShortTicksPerLong: 12},
	}
}

// Load reads a yaml file over the defaults.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning %s: %w", path, err)
	}
	return t, nil
}

// Validate rejects settings the engine cannot run with.
func (t Tuning) Validate() error {
	var errs []error
	if t.Grid.Width <= 0 || t.Grid.Height <= 0 {
		errs = append(errs, fmt.Errorf("grid size %dx%d must be positive", t.Grid.Width, t.Grid.Height))
	}
	if t.Grid.RootX < 0 || t.Grid.RootY < 0 || t.Grid.RootX >= t.Grid.Width || t.Grid.RootY >= t.Grid.Height {
		errs = append(errs, fmt.Errorf("network root (%d,%d) outside the grid", t.Grid.RootX, t.Grid.RootY))
	}
	if t.Economy.AffordabilityEpsilon <= 0 {
		errs = append(errs, errors.New("affordability_epsilon must be positive"))
	}
	if t.Economy.TaxRate < 0 || t.Economy.TaxRate > 1 {
		errs = append(errs, fmt.Errorf("tax_rate %v outside [0,1]", t.Economy.TaxRate))
	}
	if t.Ticks.ShortTicksPerLong <= 0 {
		errs = append(errs, errors.New("short_ticks_per_long must be positive"))
	}
	if t.Business.InfiniSaturation <= 0 {
		errs = append(errs, errors.New("infini_saturation must be positive"))
	}
	return errors.Join(errs...)
}
