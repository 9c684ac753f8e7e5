// Package render drives the raster, histogram and normalization packages
// to produce finished images.
//
// Fern runs a chaos game into a histogram and normalizes it; Gradient draws
// the red test ramp. Both return a *raster.Raster and leave writing it to
// the caller, usually export.Save. The kong commands in cmd.go wrap both
// for the command line.
package render

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/ironsheep/fern-ppm/internal/chaos"
	"github.com/ironsheep/fern-ppm/internal/histogram"
	"github.com/ironsheep/fern-ppm/internal/normalize"
	"github.com/ironsheep/fern-ppm/internal/raster"
	"seehuhn.de/go/geom/vec"
)

// Options configures a chaos-game render.
type Options struct {
	Width      int
	Height     int
	Iterations int
	Seed       uint64
	// Policy defaults to normalize.Modulo when nil.
	Policy normalize.Policy
	// System defaults to chaos.BarnsleyFern when it has no maps.
	System chaos.System
}

// Result is a finished render. Visits is the histogram total, which equals
// the iteration count because out-of-range points are clamped to the edge.
type Result struct {
	Raster  *raster.Raster
	Stats   histogram.Stats
	Visits  uint64
	Policy  string
	Elapsed time.Duration
}

// Fern renders opts.System into a histogram of opts.Width×opts.Height cells
// and converts it with opts.Policy.
//
// Histogram row 0 holds the lowest y values of the system bounds, so the
// returned raster is upside down when written as is. Flip it on export to
// get the usual orientation.
//
// The same seed always gives the same raster.
func Fern(logger *slog.Logger, opts Options) (*Result, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", opts.Width, opts.Height)
	}
	if opts.Iterations < 0 {
		return nil, fmt.Errorf("invalid iteration count: %d", opts.Iterations)
	}
	if len(opts.System.Maps) == 0 {
		opts.System = chaos.BarnsleyFern()
	}
	if opts.Policy == nil {
		opts.Policy = normalize.Modulo{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("system", opts.System.Name, "policy", opts.Policy.Name())

	start := time.Now()
	h := histogram.New(opts.Width, opts.Height)
	m := histogram.Mapper{Bounds: opts.System.Bounds, Width: opts.Width, Height: opts.Height}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))

	logger.Debug("accumulating", "width", opts.Width, "height", opts.Height,
		"iterations", opts.Iterations, "seed", opts.Seed)
	if err := opts.System.Run(rng, opts.Iterations, func(p vec.Vec2) {
		h.Plot(m, p)
	}); err != nil {
		return nil, fmt.Errorf("failed to run chaos game: %w", err)
	}

	stats := h.Stats()
	visits := h.Total()
	r := opts.Policy.Render(h)
	elapsed := time.Since(start)

	logger.Info("rendered", "iterations", opts.Iterations, "visits", visits, "max", stats.Max,
		"mean", stats.Mean, "sigma", stats.Sigma, "elapsed", elapsed)

	return &Result{
		Raster:  r,
		Stats:   stats,
		Visits:  visits,
		Policy:  opts.Policy.Name(),
		Elapsed: elapsed,
	}, nil
}

// GradientStep is the red increase per row of the test gradient.
const GradientStep = 2

// Gradient draws the test image: every pixel in row r has red = r*2,
// truncated to 8 bits, and green and blue zero.
func Gradient(width, height int) (*raster.Raster, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", width, height)
	}

	r := raster.New(width, height)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			p, err := r.Pixel(row, col)
			if err != nil {
				return nil, err
			}
			p.R = uint8(row * GradientStep)
		}
	}
	return r, nil
}
