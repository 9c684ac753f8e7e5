// Package histogram accumulates visit counts on a fixed grid.
//
// A Histogram is the intermediate structure between a point generator and a
// raster: points are mapped to cells with a Mapper, counted with Increment
// or Plot, and later turned into pixels by a normalization policy. The grid
// is indexed by (row, col) at row*Width + col, like the raster, but the two
// types share no state.
package histogram

import (
	"fmt"
	"math"

	"seehuhn.de/go/geom/vec"
)

// Histogram is a Width×Height grid of visit counts.
//
// The zero value is not usable; create histograms with New.
type Histogram struct {
	width  int
	height int
	counts []uint64
	max    uint64
}

// New allocates a zero-filled histogram.
//
// New panics if width or height is negative or if width*height does not fit
// in an int.
func New(width, height int) *Histogram {
	if width < 0 || height < 0 {
		panic(fmt.Sprintf("histogram: negative dimensions %dx%d", width, height))
	}
	if height != 0 && width > math.MaxInt/height {
		panic(fmt.Sprintf("histogram: dimensions %dx%d overflow", width, height))
	}
	return &Histogram{
		width:  width,
		height: height,
		counts: make([]uint64, width*height),
	}
}

// Width returns the number of columns.
func (h *Histogram) Width() int {
	return h.width
}

// Height returns the number of rows.
func (h *Histogram) Height() int {
	return h.height
}

// Increment adds one visit to (row, col) and updates the running maximum.
//
// Coordinates are not checked; callers clamp them first, usually through
// Mapper.Cell. This runs once per generated point.
func (h *Histogram) Increment(row, col int) {
	i := row*h.width + col
	h.counts[i]++
	if h.counts[i] > h.max {
		h.max = h.counts[i]
	}
}

// Plot maps p through m and counts it.
func (h *Histogram) Plot(m Mapper, p vec.Vec2) {
	h.Increment(m.Cell(p))
}

// Count returns the number of visits to (row, col).
func (h *Histogram) Count(row, col int) uint64 {
	return h.counts[row*h.width+col]
}

// Counts returns the backing slice in row-major order. It must not be
// modified.
func (h *Histogram) Counts() []uint64 {
	return h.counts
}

// Max returns the largest count seen so far.
func (h *Histogram) Max() uint64 {
	return h.max
}

// Total returns the sum of all counts.
func (h *Histogram) Total() uint64 {
	var total uint64
	for _, c := range h.counts {
		total += c
	}
	return total
}

// Merge adds other's counts into h cell by cell.
//
// It is meant for combining private histograms filled by independent
// accumulation batches.
func (h *Histogram) Merge(other *Histogram) error {
	if other.width != h.width || other.height != h.height {
		return fmt.Errorf("cannot merge %dx%d histogram into %dx%d", other.width, other.height, h.width, h.height)
	}
	for i, c := range other.counts {
		h.counts[i] += c
		if h.counts[i] > h.max {
			h.max = h.counts[i]
		}
	}
	return nil
}

// Stats summarises all cells of a histogram, zeros included.
type Stats struct {
	N          int     `json:"n"`           // Number of cells
	Sum        float64 `json:"sum"`         // Σx
	SumSquares float64 `json:"sum_squares"` // Σx²
	Max        uint64  `json:"max"`
	Mean       float64 `json:"mean"`
	// Sigma is sqrt(n·Σx² − (Σx)²) / n. This is the spread measure the
	// stddev policy has always used; it is kept as is so that rendered
	// images do not change contrast.
	Sigma float64 `json:"sigma"`
}

// Stats computes mean and sigma from running sums in a single pass.
//
// For an empty histogram Mean and Sigma are 0.
func (h *Histogram) Stats() Stats {
	s := Stats{N: len(h.counts), Max: h.max}
	for _, c := range h.counts {
		x := float64(c)
		s.Sum += x
		s.SumSquares += x * x
	}
	if s.N == 0 {
		return s
	}

	n := float64(s.N)
	s.Mean = s.Sum / n
	if v := n*s.SumSquares - s.Sum*s.Sum; v > 0 {
		s.Sigma = math.Sqrt(v) / n
	}
	return s
}
