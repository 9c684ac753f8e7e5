package histogram

import (
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Scale maps value linearly from [oldMin, oldMax] onto [newMin, newMax].
//
// Values outside the source range are extrapolated along the same line.
// The result is undefined (Inf or NaN) when oldMin == oldMax.
func Scale(value, oldMin, oldMax, newMin, newMax float64) float64 {
	return (value-oldMin)/(oldMax-oldMin)*(newMax-newMin) + newMin
}

// Clamp limits index to [0, dimension-1].
func Clamp(index, dimension int) int {
	if index < 0 {
		return 0
	}
	if index >= dimension {
		return dimension - 1
	}
	return index
}

// Mapper converts points in a data-space rectangle to grid cells.
//
// The x axis maps onto columns and the y axis onto rows, each by Scale
// followed by floor. The resulting indices are always clamped into the grid,
// so points on the far edge of Bounds, or outside it entirely, land in the
// nearest border cell.
type Mapper struct {
	Bounds rect.Rect
	Width  int
	Height int
}

// Cell returns the row and column for p.
func (m Mapper) Cell(p vec.Vec2) (row, col int) {
	col = Clamp(floorIndex(Scale(p.X, m.Bounds.LLx, m.Bounds.URx, 0, float64(m.Width))), m.Width)
	row = Clamp(floorIndex(Scale(p.Y, m.Bounds.LLy, m.Bounds.URy, 0, float64(m.Height))), m.Height)
	return row, col
}

// floorIndex converts a mapped coordinate to an int, saturating values that
// do not fit so that Clamp still sees the correct side.
func floorIndex(v float64) int {
	f := math.Floor(v)
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int(f)
}
