package chaos

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func TestBarnsleyFern_Valid(t *testing.T) {
	fern := BarnsleyFern()
	if err := fern.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if len(fern.Maps) != 4 {
		t.Errorf("maps: got %d, want 4", len(fern.Maps))
	}

	var total float64
	for _, m := range fern.Maps {
		total += m.Weight
	}
	if math.Abs(total-1) > 1e-12 {
		t.Errorf("weights sum to %v, want 1", total)
	}
}

func TestBarnsleyFern_Leaflets(t *testing.T) {
	m := BarnsleyFern().Maps[1].Transform

	x, y := m.Apply(1, 0)
	if math.Abs(x-0.85) > 1e-12 || math.Abs(y-1.56) > 1e-12 {
		t.Errorf("Apply(1, 0): got (%v, %v), want (0.85, 1.56)", x, y)
	}

	x, y = m.Apply(0, 1)
	if math.Abs(x-0.04) > 1e-12 || math.Abs(y-2.45) > 1e-12 {
		t.Errorf("Apply(0, 1): got (%v, %v), want (0.04, 2.45)", x, y)
	}
}

func TestRun_StaysInBounds(t *testing.T) {
	fern := BarnsleyFern()
	const tolerance = 0.01
	b := fern.Bounds

	count := 0
	err := fern.Run(newRand(1), 200000, func(p vec.Vec2) {
		count++
		if p.X < b.LLx-tolerance || p.X > b.URx+tolerance || p.Y < b.LLy-tolerance || p.Y > b.URy+tolerance {
			t.Fatalf("point %v outside bounds %v", p, b)
		}
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if count != 200000 {
		t.Errorf("visits: got %d, want 200000", count)
	}
}

func TestRun_Deterministic(t *testing.T) {
	collect := func(seed uint64) []vec.Vec2 {
		var points []vec.Vec2
		if err := BarnsleyFern().Run(newRand(seed), 1000, func(p vec.Vec2) {
			points = append(points, p)
		}); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		return points
	}

	a := collect(42)
	b := collect(42)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed produced different points (-first +second):\n%s", diff)
	}

	c := collect(43)
	if cmp.Equal(a, c) {
		t.Error("different seeds produced identical points")
	}
}

func TestIterator_SingleMap(t *testing.T) {
	s := System{
		Name:   "halve",
		Maps:   []Map{{Transform: matrix.Matrix{0.5, 0, 0, 0.5, 1, 1}, Weight: 3}},
		Bounds: rect.Rect{LLx: 0, LLy: 0, URx: 2, URy: 2},
	}

	it, err := NewIterator(s, newRand(7))
	if err != nil {
		t.Fatalf("NewIterator failed: %v", err)
	}

	want := []vec.Vec2{{X: 1, Y: 1}, {X: 1.5, Y: 1.5}, {X: 1.75, Y: 1.75}}
	for i, w := range want {
		if got := it.Next(); got != w {
			t.Errorf("step %d: got %v, want %v", i, got, w)
		}
	}
}

func TestIterator_Pick(t *testing.T) {
	it, err := NewIterator(BarnsleyFern(), newRand(1))
	if err != nil {
		t.Fatalf("NewIterator failed: %v", err)
	}

	tests := []struct {
		u    float64
		want int
	}{
		{0, 0},
		{0.0099, 0},
		{0.01, 1},
		{0.5, 1},
		{0.86, 2},
		{0.93, 3},
		{0.999999, 3},
		{1, 3},
	}

	for _, tt := range tests {
		if got := it.pick(tt.u); got != tt.want {
			t.Errorf("pick(%v): got %d, want %d", tt.u, got, tt.want)
		}
	}
}

func TestValidate_Errors(t *testing.T) {
	good := rect.Rect{LLx: 0, LLy: 0, URx: 1, URy: 1}
	identity := Map{Transform: matrix.Identity, Weight: 1}

	tests := []struct {
		name string
		s    System
	}{
		{"no maps", System{Bounds: good}},
		{"zero weight", System{Maps: []Map{{Transform: matrix.Identity}}, Bounds: good}},
		{"negative weight", System{Maps: []Map{{Transform: matrix.Identity, Weight: -1}}, Bounds: good}},
		{"nan weight", System{Maps: []Map{{Transform: matrix.Identity, Weight: math.NaN()}}, Bounds: good}},
		{"empty bounds", System{Maps: []Map{identity}}},
		{"flat bounds", System{Maps: []Map{identity}, Bounds: rect.Rect{URx: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.s.Validate(); err == nil {
				t.Error("Validate should fail")
			}
			if _, err := NewIterator(tt.s, newRand(1)); err == nil {
				t.Error("NewIterator should fail")
			}
		})
	}
}

func TestNewIterator_NilRand(t *testing.T) {
	if _, err := NewIterator(BarnsleyFern(), nil); err == nil {
		t.Error("NewIterator should fail without a random source")
	}
}
