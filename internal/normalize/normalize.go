// Package normalize turns histogram counts into pixel values.
//
// Every policy writes the green channel only and leaves cells with a count
// of zero black. They differ in how a non-zero count becomes a level:
//
//   - Modulo: count % 255. The histogram maximum is ignored, so the peak is
//     not emphasised and counts that are multiples of 255 come out black.
//   - MeanSigma: clamp to [mean-sigma, mean+sigma], then scale linearly to
//     [0, 255].
//   - MaxScaled: scale linearly from [0, max] to [0, 255]. Opt-in only.
package normalize

import (
	"fmt"
	"sort"

	"github.com/ironsheep/fern-ppm/internal/histogram"
	"github.com/ironsheep/fern-ppm/internal/raster"
)

// DegenerateLevel is the level MeanSigma assigns to every visited cell when
// sigma is zero and the clamp range is empty.
const DegenerateLevel = 127

// Policy converts a histogram into a raster of the same dimensions.
type Policy interface {
	Name() string
	Render(h *histogram.Histogram) *raster.Raster
}

// levelFunc maps a non-zero count to a green level.
type levelFunc func(count uint64) uint8

// render applies level to every visited cell.
func render(h *histogram.Histogram, level levelFunc) *raster.Raster {
	dst := raster.New(h.Width(), h.Height())
	counts := h.Counts()
	for row := 0; row < h.Height(); row++ {
		pixels, _ := dst.Row(row)
		cells := counts[row*h.Width() : (row+1)*h.Width()]
		for col, c := range cells {
			if c != 0 {
				pixels[col].G = level(c)
			}
		}
	}
	return dst
}

// Modulo is the max-based policy: level = count % 255.
type Modulo struct{}

func (Modulo) Name() string { return "modulo" }

func (Modulo) Render(h *histogram.Histogram) *raster.Raster {
	return render(h, func(c uint64) uint8 {
		return uint8(c % 255)
	})
}

// MeanSigma clamps counts to one sigma around the mean and stretches that
// band over the full channel range.
//
// Mean and sigma come from histogram.Stats and cover every cell, including
// unvisited ones. When sigma is not positive every visited cell gets
// DegenerateLevel.
type MeanSigma struct{}

func (MeanSigma) Name() string { return "stddev" }

func (MeanSigma) Render(h *histogram.Histogram) *raster.Raster {
	s := h.Stats()
	if !(s.Sigma > 0) {
		return render(h, func(uint64) uint8 { return DegenerateLevel })
	}

	lo := s.Mean - s.Sigma
	hi := s.Mean + s.Sigma
	return render(h, func(c uint64) uint8 {
		v := float64(c)
		if v < lo {
			v = lo
		} else if v > hi {
			v = hi
		}
		return uint8(histogram.Scale(v, lo, hi, 0, 255))
	})
}

// MaxScaled scales counts proportionally to the histogram maximum.
type MaxScaled struct{}

func (MaxScaled) Name() string { return "max-scaled" }

func (MaxScaled) Render(h *histogram.Histogram) *raster.Raster {
	max := float64(h.Max())
	return render(h, func(c uint64) uint8 {
		return uint8(histogram.Scale(float64(c), 0, max, 0, 255))
	})
}

var policies = map[string]Policy{
	"modulo":     Modulo{},
	"max":        Modulo{},
	"stddev":     MeanSigma{},
	"max-scaled": MaxScaled{},
}

// ByName returns the policy registered under name.
func ByName(name string) (Policy, error) {
	p, ok := policies[name]
	if !ok {
		return nil, fmt.Errorf("unknown normalization policy: %s", name)
	}
	return p, nil
}

// Names lists the accepted policy names in sorted order.
func Names() []string {
	names := make([]string, 0, len(policies))
	for name := range policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
