package world

import "iter"

// DrawOrder yields every building on the grid once, back to front for an
// isometric view: cells are walked by anti-diagonal (x+y ascending) and a
// building is yielded at its bottom-right-most stamped cell, so anything it
// overlaps has already been drawn. The sequence is lazy; callers may stop early.
func DrawOrder(g *Grid) iter.Seq[BuildingID] {
	return func(yield func(BuildingID) bool) {
		seen := make(map[BuildingID]bool)
		for diag := 0; diag <= g.Width+g.Height-2; diag++ {
			for x := max(0, diag-g.Height+1); x <= min(diag, g.Width-1); x++ {
				y := diag - x
				id := g.At(x, y)
				if id == NoBuilding || seen[id] {
					continue
				}
				if !isFrontCell(g, id, x, y) {
					continue
				}
				seen[id] = true
				if !yield(id) {
					return
				}
			}
		}
	}
}

// isFrontCell reports whether no cell of the same building lies further
// forward (higher x+y) among its right and bottom neighbors.
func isFrontCell(g *Grid, id BuildingID, x, y int) bool {
	return g.At(x+1, y) != id && g.At(x, y+1) != id
}
