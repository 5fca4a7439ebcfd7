package world

// Tile tags one cell of a footprint. Stamp footprints describe what a building
// occupies; check footprints describe what a cell must offer before placement.
type Tile uint8

const (
	TileEmpty     Tile = iota // Not part of the building
	TileResidence             // Evicted silently by anything placed over it
	TileRoad
	TileOccupied // Generic structure
	TileMineVent // Natural resource vent
	TileBuiltOn  // Check only: the cell must already hold a building to stack on
)

// Footprint is a per-cell tag matrix indexed [y][x], relative to the building's top-left.
type Footprint [][]Tile

// SolidFootprint returns a w × h footprint filled with one tag.
func SolidFootprint(w, h int, tag Tile) Footprint {
	fp := make(Footprint, h)
	for y := range fp {
		fp[y] = make([]Tile, w)
		for x := range fp[y] {
			fp[y][x] = tag
		}
	}
	return fp
}

// At returns the tag at a local offset, TileEmpty outside the footprint.
func (f Footprint) At(dx, dy int) Tile {
	if dy < 0 || dy >= len(f) || dx < 0 || dx >= len(f[dy]) {
		return TileEmpty
	}
	return f[dy][dx]
}

// Size returns the footprint's width and height.
func (f Footprint) Size() (w, h int) {
	if len(f) == 0 {
		return 0, 0
	}
	return len(f[0]), len(f)
}

// Clone returns a deep copy.
func (f Footprint) Clone() Footprint {
	out := make(Footprint, len(f))
	for y := range f {
		out[y] = append([]Tile(nil), f[y]...)
	}
	return out
}

// TileName returns a human-readable name for a tag.
func TileName(t Tile) string {
	switch t {
	case TileEmpty:
		return "Empty"
	case TileResidence:
		return "Residence"
	case TileRoad:
		return "Road"
	case TileOccupied:
		return "Occupied"
	case TileMineVent:
		return "MineVent"
	case TileBuiltOn:
		return "BuiltOn"
	default:
		return "Unknown"
	}
}
