package editor

import "github.com/aretw0/rescuegrid/pkg/domain"

// Clamp moves pos into [0,cols) x [0,rows). Values below zero become zero,
// values at or past a bound become the last valid index.
func Clamp(pos domain.Coord, cols, rows int) domain.Coord {
	return domain.C(clampAxis(pos.X, cols), clampAxis(pos.Y, rows))
}

func clampAxis(v, n int) int {
	if v >= n {
		v = n - 1
	}
	if v < 0 {
		v = 0
	}
	return v
}

// Rect is an inclusive, axis-aligned cell rectangle with Min <= Max on both axes.
type Rect struct {
	Min domain.Coord
	Max domain.Coord
}

// NewRect spans the two corners. Argument order does not matter.
func NewRect(a, b domain.Coord) Rect {
	return Rect{
		Min: domain.C(min(a.X, b.X), min(a.Y, b.Y)),
		Max: domain.C(max(a.X, b.X), max(a.Y, b.Y)),
	}
}

// Width is the number of columns covered.
func (r Rect) Width() int {
	return r.Max.X - r.Min.X + 1
}

// Height is the number of rows covered.
func (r Rect) Height() int {
	return r.Max.Y - r.Min.Y + 1
}

// Contains reports whether c lies inside the rectangle.
func (r Rect) Contains(c domain.Coord) bool {
	return c.X >= r.Min.X && c.X <= r.Max.X && c.Y >= r.Min.Y && c.Y <= r.Max.Y
}

// Each calls fn for every cell of the rectangle, column by column.
func (r Rect) Each(fn func(domain.Coord)) {
	for x := r.Min.X; x <= r.Max.X; x++ {
		for y := r.Min.Y; y <= r.Max.Y; y++ {
			fn(domain.C(x, y))
		}
	}
}
