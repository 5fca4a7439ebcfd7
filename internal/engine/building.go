package engine

import (
	"github.com/talgya/gridtown/internal/economy"
	"github.com/talgya/gridtown/internal/world"
)

// Capability flags name the few buildings the engine treats specially,
// so the engine never has to know a concrete catalog type.
type Capability uint8

const (
	CapNetworkRoot Capability = 1 << iota
	CapTreasury
	CapPostOffice
	CapSeatOfGovernment
)

// InfinitePatrons is the patron cap of an infinibusiness.
const InfinitePatrons = -1

// EffectSpec declares one effect a building emits while placed.
type EffectSpec struct {
	Category  world.EffectCategory
	Magnitude float64
	RadiusX   int
	RadiusY   int
	Rounded   bool
	Dynamic   string // Name passed to Behavior.DynamicEffect; empty for a constant magnitude
}

// Building is one placeable entity. Identity (ID) persists across moves.
type Building struct {
	ID     world.BuildingID
	Kind   string
	X, Y   int
	Width  int
	Height int
	Stamp  world.Footprint
	Check  world.Footprint

	Owned       bool // Player-controlled, as opposed to a natural formation
	Locked      bool // Cannot be demolished or moved by the player
	IsRoad      bool
	IsResidence bool
	NeedsPower  bool
	NeedsRoad   bool
	Caps        Capability
	Effects     []EffectSpec

	RoadConnected  bool
	PowerConnected bool
	Powered        bool // Result of the latest short tick
	PoweredTicks   int  // Short ticks powered since the last long tick

	// BuiltOn holds the buildings this one sits atop. Relation only.
	BuiltOn map[world.BuildingID]struct{}

	// AffectingBuildingCount is how many distinct non-road buildings sit in this building's effect areas.
	AffectingBuildingCount int

	UpkeepEfficiency    float64 // Fraction of upkeep paid last long tick
	PatronageEfficiency float64 // Assigned patrons / patron cap for businesses
	Failed              bool
	StrugglingTicks     int
	Reserve             float64 // Treasury reserve for CapTreasury buildings
	PlacedTick          uint64

	appliedPowerProduction float64
	appliedPowerUpkeep     float64
	placed                 bool

	Behavior Behavior
}

// Has reports whether the building carries a capability.
func (b *Building) Has(c Capability) bool {
	return b.Caps&c != 0
}

// Rect returns the building's rectangle on the grid.
func (b *Building) Rect() world.Rect {
	return world.Rect{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
}

// Placed reports whether the building is currently on a city grid.
func (b *Building) Placed() bool {
	return b.placed
}

// Behavior is the capability surface a catalog entry provides. The ideal
// flag asks for the full-efficiency figure instead of the current one.
type Behavior interface {
	Costs(b *Building, c *City) []economy.Flow
	Upkeep(b *Building, c *City, ideal bool) []economy.Flow
	PowerProduction(b *Building, c *City, ideal bool) float64
	PowerUpkeep(b *Building, c *City, ideal bool) float64
	EfficiencyEffectMultiplier(b *Building, c *City) float64
	DynamicEffect(name string, b *Building, c *City) float64

	OnPlace(b *Building, c *City)
	OnPlaced(b *Building, c *City)
	OnRemove(b *Building, c *City)
	OnLongTick(b *Building, c *City)
}

// Business is implemented by behaviors that take patrons and pay tax.
type Business interface {
	BusinessValue(b *Building, c *City) float64
	PatronCap(b *Building, c *City) float64 // InfinitePatrons for an infinibusiness
	Revenue(b *Building, c *City, patronage float64) float64
}

// Populator is implemented by behaviors that house residents or draw tourists.
type Populator interface {
	Residents(b *Building, c *City) float64
	Tourists(b *Building, c *City) float64
}

// BaseBehavior supplies neutral defaults; catalog entries embed it.
type BaseBehavior struct{}

func (BaseBehavior) Costs(*Building, *City) []economy.Flow               { return nil }
func (BaseBehavior) Upkeep(*Building, *City, bool) []economy.Flow        { return nil }
func (BaseBehavior) PowerProduction(*Building, *City, bool) float64      { return 0 }
func (BaseBehavior) PowerUpkeep(*Building, *City, bool) float64          { return 0 }
func (BaseBehavior) EfficiencyEffectMultiplier(*Building, *City) float64 { return 1 }
func (BaseBehavior) DynamicEffect(string, *Building, *City) float64      { return 1 }
func (BaseBehavior) OnPlace(*Building, *City)                            {}
func (BaseBehavior) OnPlaced(*Building, *City)                           {}
func (BaseBehavior) OnRemove(*Building, *City)                           {}
func (BaseBehavior) OnLongTick(*Building, *City)                         {}

// NewBuilding creates an unplaced building sized from its stamp footprint.
func NewBuilding(kind string, stamp world.Footprint, behavior Behavior) *Building {
	w, h := stamp.Size()
	return &Building{
		Kind:                kind,
		Width:               w,
		Height:              h,
		Stamp:               stamp,
		Check:               world.SolidFootprint(w, h, world.TileEmpty),
		BuiltOn:             make(map[world.BuildingID]struct{}),
		UpkeepEfficiency:    1,
		PatronageEfficiency: 1,
		Behavior:            behavior,
	}
}
