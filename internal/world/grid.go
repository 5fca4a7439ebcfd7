package world

import "fmt"

// BuildingID is a stable, non-owning handle to a building. Zero means "no building".
type BuildingID uint64

// NoBuilding is the empty cell value.
const NoBuilding BuildingID = 0

// Grid is a Height × Width matrix of building handles.
// A non-zero cell always lies inside the rectangle of the building it names,
// at an offset where that building's stamp footprint is non-empty.
type Grid struct {
	Width  int
	Height int
	cells  [][]BuildingID
}

// NewGrid creates an empty grid.
func NewGrid(width, height int) *Grid {
	cells := make([][]BuildingID, height)
	for y := range cells {
		cells[y] = make([]BuildingID, width)
	}
	return &Grid{Width: width, Height: height, cells: cells}
}

// Bounds returns the rectangle covering the whole grid.
func (g *Grid) Bounds() Rect {
	return Rect{Width: g.Width, Height: g.Height}
}

// InBounds returns true if the cell exists.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// At returns the building occupying (x, y), or NoBuilding when empty or out of bounds.
func (g *Grid) At(x, y int) BuildingID {
	if !g.InBounds(x, y) {
		return NoBuilding
	}
	return g.cells[y][x]
}

// Set claims a cell for a building.
func (g *Grid) Set(x, y int, id BuildingID) {
	g.cells[y][x] = id
}

// Clear empties a cell.
func (g *Grid) Clear(x, y int) {
	g.cells[y][x] = NoBuilding
}

// Occupied returns the number of non-empty cells.
func (g *Grid) Occupied() int {
	n := 0
	for _, row := range g.cells {
		for _, id := range row {
			if id != NoBuilding {
				n++
			}
		}
	}
	return n
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%dx%d, occupied=%d)", g.Width, g.Height, g.Occupied())
}
