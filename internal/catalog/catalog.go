// Package catalog defines the concrete building kinds and the placement
// validation that runs before anything touches the city grid.
package catalog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/talgya/gridtown/internal/engine"
	"github.com/talgya/gridtown/internal/world"
)

var (
	ErrUnknownKind     = errors.New("catalog: unknown building kind")
	ErrOutOfBounds     = errors.New("catalog: footprint leaves the grid")
	ErrBlocked         = errors.New("catalog: footprint blocked")
	ErrNeedsFoundation = errors.New("catalog: must be built on a matching formation")
	ErrUnaffordable    = errors.New("catalog: cannot afford construction")
	ErrLocked          = errors.New("catalog: building cannot be demolished")
)

// Building kinds.
const (
	Road          = "road"
	House         = "house"
	Apartment     = "apartment"
	CornerStore   = "corner_store"
	Restaurant    = "restaurant"
	Casino        = "casino"
	CoalPlant     = "coal_plant"
	SolarFarm     = "solar_farm"
	PoliceStation = "police_station"
	Clinic        = "clinic"
	Park          = "park"
	CityHall      = "city_hall"
	PostOffice    = "post_office"
	MineVent      = "mine_vent"
	Mine          = "mine"
)

var registry = map[string]func() *engine.Building{
	Road:          newRoad,
	House:         newHouse,
	Apartment:     newApartment,
	CornerStore:   newCornerStore,
	Restaurant:    newRestaurant,
	Casino:        newCasino,
	CoalPlant:     newCoalPlant,
	SolarFarm:     newSolarFarm,
	PoliceStation: newPoliceStation,
	Clinic:        newClinic,
	Park:          newPark,
	CityHall:      newCityHall,
	PostOffice:    newPostOffice,
	MineVent:      newMineVent,
	Mine:          newMine,
}

// foundations names the stamp tag a TileBuiltOn check cell requires.
var foundations = map[string]world.Tile{
	Mine: world.TileMineVent,
}

// New creates an unplaced building of the given kind.
func New(kind string) (*engine.Building, error) {
	build, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return build(), nil
}

// Kinds returns every known kind in alphabetical order.
func Kinds() []string {
	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Validate checks that b may be placed at (x, y) without mutating anything.
func Validate(c *engine.City, b *engine.Building, x, y int) error {
	for dy := 0; dy < b.Height; dy++ {
		for dx := 0; dx < b.Width; dx++ {
			if b.Stamp.At(dx, dy) == world.TileEmpty {
				continue
			}
			gx, gy := x+dx, y+dy
			if !c.Grid.InBounds(gx, gy) {
				return fmt.Errorf("%w at (%d, %d)", ErrOutOfBounds, gx, gy)
			}
			occ := c.BuildingAt(gx, gy)
			if b.Check.At(dx, dy) == world.TileBuiltOn {
				want, ok := foundations[b.Kind]
				if occ == nil || !ok || occ.Stamp.At(gx-occ.X, gy-occ.Y) != want {
					return fmt.Errorf("%w at (%d, %d)", ErrNeedsFoundation, gx, gy)
				}
				continue
			}
			if occ != nil && (!occ.IsResidence || b.IsResidence) {
				return fmt.Errorf("%w by %s at (%d, %d)", ErrBlocked, occ.Kind, gx, gy)
			}
		}
	}
	return nil
}

// Build validates, pays for and places a new building of kind at (x, y).
func Build(c *engine.City, kind string, x, y int) (*engine.Building, error) {
	b, err := New(kind)
	if err != nil {
		return nil, err
	}
	if err := Validate(c, b, x, y); err != nil {
		return nil, err
	}
	if !c.Resources.CheckAndSpendResources(b.Behavior.Costs(b, c), false) {
		return nil, fmt.Errorf("%w: %s", ErrUnaffordable, kind)
	}
	c.Place(b, x, y)
	return b, nil
}

// Demolish removes a player building.
func Demolish(c *engine.City, b *engine.Building) error {
	if b.Locked || !b.Owned {
		return fmt.Errorf("%w: %s %d", ErrLocked, b.Kind, b.ID)
	}
	c.Remove(b)
	return nil
}

// Relocate moves a player building after validating the destination with the
// building lifted off the grid.
func Relocate(c *engine.City, b *engine.Building, x, y int) error {
	if b.Locked || !b.Owned {
		return fmt.Errorf("%w: %s %d", ErrLocked, b.Kind, b.ID)
	}
	fromX, fromY := b.X, b.Y
	c.Remove(b)
	if err := Validate(c, b, x, y); err != nil {
		c.Place(b, fromX, fromY)
		return err
	}
	c.Place(b, x, y)
	return nil
}
