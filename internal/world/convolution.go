package world

// Convolve slides a winW × winH window over every position where it touches
// footprint r, clipped to bounds. The scan is serpentine: left to right on
// even rows, right to left on odd rows, stepping down one row between them.
// Only the cells entering or leaving the window are passed to add and remove,
// so each step costs one window edge. checkpoint runs after every full window
// update; the scan stops and returns true as soon as it does.
func Convolve(bounds, r Rect, winW, winH int, add, remove func(x, y int), checkpoint func() bool) bool {
	if winW <= 0 || winH <= 0 || r.Width <= 0 || r.Height <= 0 {
		return false
	}

	minX, maxX := r.X-winW+1, r.X+r.Width-1
	minY, maxY := r.Y-winH+1, r.Y+r.Height-1

	inBounds := func(x, y int) bool {
		return bounds.Contains(x, y)
	}
	column := func(fn func(x, y int), x, y0 int) {
		for y := y0; y < y0+winH; y++ {
			if inBounds(x, y) {
				fn(x, y)
			}
		}
	}
	row := func(fn func(x, y int), y, x0 int) {
		for x := x0; x < x0+winW; x++ {
			if inBounds(x, y) {
				fn(x, y)
			}
		}
	}

	wx, wy := minX, minY
	for y := wy; y < wy+winH; y++ {
		row(add, y, wx)
	}
	if checkpoint() {
		return true
	}

	step := 1
	for {
		// Slide horizontally across the current row.
		for {
			next := wx + step
			if next < minX || next > maxX {
				break
			}
			if step > 0 {
				column(remove, wx, wy)
				column(add, wx+winW, wy)
			} else {
				column(remove, wx+winW-1, wy)
				column(add, next, wy)
			}
			wx = next
			if checkpoint() {
				return true
			}
		}

		if wy == maxY {
			return false
		}
		row(remove, wy, wx)
		row(add, wy+winH, wx)
		wy++
		if checkpoint() {
			return true
		}
		step = -step
	}
}
