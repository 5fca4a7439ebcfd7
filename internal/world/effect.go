package world

// EffectCategory enumerates the kinds of spatial influence a tile can carry.
type EffectCategory uint8

const (
	EffectLandValue EffectCategory = iota
	EffectPollution
	EffectPettyCrime
	EffectOrganizedCrime
	EffectPoliceProtection
	EffectFireHazard
	EffectFireProtection
	EffectHealthcare
	EffectEducation
	EffectNoise
	EffectLuxury
	EffectBusinessPresence
)

// Effect is one radius-bound contribution. The same *Effect is shared by
// every tile it was spread to, so changing Magnitude is visible everywhere.
type Effect struct {
	Category  EffectCategory
	Magnitude float64

	// Dynamic scales Magnitude at query time (e.g. noise following traffic).
	Dynamic func() float64

	// Source is the emitting building; NoBuilding for grants such as terrain land value.
	Source BuildingID

	// At anchors a sourceless effect to fixed coordinates.
	At *Point

	// TicksLeft counts down once per long tick; zero means permanent.
	TicksLeft int
}

// Value evaluates the effect's current magnitude.
func (e *Effect) Value() float64 {
	if e.Dynamic != nil {
		return e.Magnitude * e.Dynamic()
	}
	return e.Magnitude
}

// EffectGrid keeps an unordered list of active effects for every tile.
type EffectGrid struct {
	Width  int
	Height int
	cells  [][][]*Effect
}

// NewEffectGrid creates an effect grid with no entries.
func NewEffectGrid(width, height int) *EffectGrid {
	cells := make([][][]*Effect, height)
	for y := range cells {
		cells[y] = make([][]*Effect, width)
	}
	return &EffectGrid{Width: width, Height: height, cells: cells}
}

// At returns the effects registered on a tile. The slice must not be modified.
func (g *EffectGrid) At(x, y int) []*Effect {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return nil
	}
	return g.cells[y][x]
}

// Spread appends e to every listed tile.
func (g *EffectGrid) Spread(e *Effect, tiles []Point) {
	for _, p := range tiles {
		g.cells[p.Y][p.X] = append(g.cells[p.Y][p.X], e)
	}
}

// StopSource removes the entries emitted by source from the listed tiles.
// Entries from other sources are untouched. Returns the number removed.
func (g *EffectGrid) StopSource(source BuildingID, tiles []Point) int {
	return g.removeWhere(tiles, func(e *Effect) bool { return e.Source == source })
}

// Remove drops one specific effect from the listed tiles.
func (g *EffectGrid) Remove(target *Effect, tiles []Point) int {
	return g.removeWhere(tiles, func(e *Effect) bool { return e == target })
}

func (g *EffectGrid) removeWhere(tiles []Point, match func(*Effect) bool) int {
	removed := 0
	for _, p := range tiles {
		list := g.cells[p.Y][p.X]
		kept := list[:0]
		for _, e := range list {
			if match(e) {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		for i := len(kept); i < len(list); i++ {
			list[i] = nil
		}
		g.cells[p.Y][p.X] = kept
	}
	return removed
}

// Sum adds up a tile's effects of one category, clamped to non-negative.
func (g *EffectGrid) Sum(x, y int, cat EffectCategory) float64 {
	total := 0.0
	for _, e := range g.At(x, y) {
		if e.Category == cat {
			total += e.Value()
		}
	}
	if total < 0 {
		return 0
	}
	return total
}

// EffectCategoryName returns a human-readable name for a category.
func EffectCategoryName(c EffectCategory) string {
	switch c {
	case EffectLandValue:
		return "LandValue"
	case EffectPollution:
		return "Pollution"
	case EffectPettyCrime:
		return "PettyCrime"
	case EffectOrganizedCrime:
		return "OrganizedCrime"
	case EffectPoliceProtection:
		return "PoliceProtection"
	case EffectFireHazard:
		return "FireHazard"
	case EffectFireProtection:
		return "FireProtection"
	case EffectHealthcare:
		return "Healthcare"
	case EffectEducation:
		return "Education"
	case EffectNoise:
		return "Noise"
	case EffectLuxury:
		return "Luxury"
	case EffectBusinessPresence:
		return "BusinessPresence"
	default:
		return "Unknown"
	}
}
