package render

import (
	"fmt"
	"log/slog"

	"github.com/alecthomas/kong"

	"github.com/ironsheep/fern-ppm/internal/export"
	"github.com/ironsheep/fern-ppm/internal/normalize"
	"github.com/ironsheep/fern-ppm/internal/raster"
)

// OutputFlags are the output options shared by every render command.
type OutputFlags struct {
	Format  string  `help:"Output format. 'auto' picks it from the file extension." enum:"auto,ppm,png,jpeg,bmp,tiff" default:"auto" env:"FERN_FORMAT"`
	Scale   float64 `help:"Resize the output by this factor" default:"1" env:"FERN_SCALE"`
	Quality int     `help:"JPEG quality (1-100)" default:"95" env:"FERN_QUALITY"`

	format export.Format
}

func (o *OutputFlags) validate() error {
	if o.Format != "auto" {
		f, err := export.ParseFormat(o.Format)
		if err != nil {
			return err
		}
		o.format = f
	}
	if !(o.Scale > 0) {
		return fmt.Errorf("invalid scale factor: %v", o.Scale)
	}
	if o.Quality < 1 || o.Quality > 100 {
		return fmt.Errorf("invalid JPEG quality: %d", o.Quality)
	}
	return nil
}

func (o *OutputFlags) save(logger *slog.Logger, r *raster.Raster, path string, flip bool) error {
	res, err := export.Save(r, path, export.Options{
		Format:       o.format,
		FlipVertical: flip,
		Scale:        o.Scale,
		Quality:      o.Quality,
	})
	if err != nil {
		return err
	}
	logger.Info("saved", "path", res.Path, "format", res.Format, "width", res.Width, "height", res.Height)
	return nil
}

// FernCmd renders the Barnsley fern.
type FernCmd struct {
	Out        string `arg:"" optional:"" help:"Output file" default:"fern.ppm" type:"path"`
	Width      int    `help:"Image width in pixels" default:"500" env:"FERN_WIDTH"`
	Height     int    `help:"Image height in pixels" default:"1000" env:"FERN_HEIGHT"`
	Iterations int    `help:"Number of chaos game iterations" default:"5000000" env:"FERN_ITERATIONS"`
	Seed       uint64 `help:"Random seed" default:"1" env:"FERN_SEED"`
	Policy     string `help:"Normalization policy (modulo, max, stddev, max-scaled)" default:"modulo" env:"FERN_POLICY"`
	Flip       bool   `help:"Write the fern upright (y axis pointing up)" default:"true" negatable:""`

	OutputFlags `embed:""`

	policy normalize.Policy
}

func (c *FernCmd) Validate(kctx *kong.Context) error {
	switch {
	case c.Width <= 0:
		return fmt.Errorf("invalid width: %d", c.Width)
	case c.Height <= 0:
		return fmt.Errorf("invalid height: %d", c.Height)
	case c.Iterations < 0:
		return fmt.Errorf("invalid iteration count: %d", c.Iterations)
	}

	p, err := normalize.ByName(c.Policy)
	if err != nil {
		return err
	}
	c.policy = p

	return c.OutputFlags.validate()
}

func (c *FernCmd) Run(logger *slog.Logger) error {
	res, err := Fern(logger, Options{
		Width:      c.Width,
		Height:     c.Height,
		Iterations: c.Iterations,
		Seed:       c.Seed,
		Policy:     c.policy,
	})
	if err != nil {
		return err
	}
	return c.save(logger, res.Raster, c.Out, c.Flip)
}

// GradientCmd writes the red test gradient.
type GradientCmd struct {
	Out    string `arg:"" optional:"" help:"Output file" default:"test.ppm" type:"path"`
	Width  int    `help:"Image width in pixels" default:"100"`
	Height int    `help:"Image height in pixels" default:"100"`
	Flip   bool   `help:"Write the last row first" default:"false" negatable:""`

	OutputFlags `embed:""`
}

func (c *GradientCmd) Validate(kctx *kong.Context) error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid image size %dx%d", c.Width, c.Height)
	}
	return c.OutputFlags.validate()
}

func (c *GradientCmd) Run(logger *slog.Logger) error {
	r, err := Gradient(c.Width, c.Height)
	if err != nil {
		return err
	}
	return c.save(logger, r, c.Out, c.Flip)
}
