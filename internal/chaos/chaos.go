// Package chaos generates point sequences with the chaos game.
//
// An iterated function system (IFS) is a set of affine maps, each with a
// selection weight. Starting from the origin, the iterator repeatedly picks
// a map at random, in proportion to its weight, and applies it to the
// current point. The points visited form the system's attractor, for
// example the Barnsley fern.
//
// Random numbers come from a *rand.Rand owned by the caller. There is no
// package-level random state, so equal seeds give equal sequences.
package chaos

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Map is one affine transformation of a system.
//
// Transform uses the geom matrix layout [a b c d e f]:
//
//	x' = a*x + c*y + e
//	y' = b*x + d*y + f
type Map struct {
	Transform matrix.Matrix
	Weight    float64
}

// System is an iterated function system together with the data-space
// rectangle that contains its attractor.
type System struct {
	Name   string
	Maps   []Map
	Bounds rect.Rect
}

// Validate reports whether the system can be iterated.
func (s System) Validate() error {
	if len(s.Maps) == 0 {
		return errors.New("system has no maps")
	}
	for i, m := range s.Maps {
		if !(m.Weight > 0) {
			return fmt.Errorf("map %d: weight must be positive, got %v", i, m.Weight)
		}
	}
	if !(s.Bounds.Dx() > 0) || !(s.Bounds.Dy() > 0) {
		return fmt.Errorf("bounds %v have no area", s.Bounds)
	}
	return nil
}

// Run iterates the system n times and calls visit with every point.
func (s System) Run(rng *rand.Rand, n int, visit func(vec.Vec2)) error {
	it, err := NewIterator(s, rng)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		visit(it.Next())
	}
	return nil
}

// Iterator walks the attractor of a System one point at a time.
//
// An Iterator is not safe for concurrent use.
type Iterator struct {
	maps       []Map
	cumulative []float64
	rng        *rand.Rand
	point      vec.Vec2
}

// NewIterator prepares an iterator starting at the origin.
func NewIterator(s System, rng *rand.Rand) (*Iterator, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid system %q: %w", s.Name, err)
	}
	if rng == nil {
		return nil, errors.New("nil random source")
	}

	cumulative := make([]float64, len(s.Maps))
	var total float64
	for i, m := range s.Maps {
		total += m.Weight
		cumulative[i] = total
	}
	for i := range cumulative {
		cumulative[i] /= total
	}

	return &Iterator{
		maps:       s.Maps,
		cumulative: cumulative,
		rng:        rng,
	}, nil
}

// Next applies one randomly chosen map and returns the new point.
func (it *Iterator) Next() vec.Vec2 {
	m := it.maps[it.pick(it.rng.Float64())]
	x, y := m.Transform.Apply(it.point.X, it.point.Y)
	it.point = vec.Vec2{X: x, Y: y}
	return it.point
}

// pick returns the index of the map selected by u in [0, 1).
func (it *Iterator) pick(u float64) int {
	for i, c := range it.cumulative {
		if u < c {
			return i
		}
	}
	// Rounding can leave the last bound fractionally below 1.
	return len(it.cumulative) - 1
}
