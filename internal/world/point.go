// Package world provides the settlement grid, building footprints, area
// queries and the per-tile effect grid.
package world

// Point is a cell position on the grid. X grows east, Y grows south.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// CardinalDirections are the four orthogonal neighbor offsets. Network
// connectivity only ever travels along these.
var CardinalDirections = [4]Point{
	{X: 1, Y: 0},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
	{X: 0, Y: -1},
}

// Neighbors returns the four cardinally adjacent positions.
func (p Point) Neighbors() [4]Point {
	var result [4]Point
	for i, dir := range CardinalDirections {
		result[i] = Point{X: p.X + dir.X, Y: p.Y + dir.Y}
	}
	return result
}

// Rect is an axis-aligned rectangle of cells, X/Y being the top-left corner.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Contains reports whether (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Expand grows the rectangle by rx columns left and right and ry rows above and below.
func (r Rect) Expand(rx, ry int) Rect {
	return Rect{X: r.X - rx, Y: r.Y - ry, Width: r.Width + 2*rx, Height: r.Height + 2*ry}
}

// Intersect clips r to o. The result may have zero area.
func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.X+r.Width, o.X+o.Width), min(r.Y+r.Height, o.Y+o.Height)
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Area returns the cell count.
func (r Rect) Area() int {
	return r.Width * r.Height
}
