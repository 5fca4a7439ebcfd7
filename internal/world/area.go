package world

// AreaRect returns r expanded by the radii and clipped to bounds.
func AreaRect(bounds, r Rect, rx, ry int) Rect {
	return r.Expand(rx, ry).Intersect(bounds)
}

// AreaTiles lists the cells of r expanded by rx/ry, clipped to bounds.
// With rounded set, the four outermost corners of the expanded rectangle are
// skipped, which turns a radius-1 area into strict cardinal adjacency.
func AreaTiles(bounds, r Rect, rx, ry int, rounded bool) []Point {
	full := r.Expand(rx, ry)
	clipped := full.Intersect(bounds)
	tiles := make([]Point, 0, clipped.Area())
	for y := clipped.Y; y < clipped.Y+clipped.Height; y++ {
		for x := clipped.X; x < clipped.X+clipped.Width; x++ {
			if rounded && isCorner(full, x, y) {
				continue
			}
			tiles = append(tiles, Point{X: x, Y: y})
		}
	}
	return tiles
}

func isCorner(r Rect, x, y int) bool {
	if r.Width <= 0 || r.Height <= 0 {
		return false
	}
	right, bottom := r.X+r.Width-1, r.Y+r.Height-1
	return (x == r.X || x == right) && (y == r.Y || y == bottom)
}
