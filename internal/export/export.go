// Package export writes rasters to disk in PPM or one of the common
// container formats, with optional vertical flip and scaling.
//
// PPM output goes through the ppm package byte for byte. The other formats
// use bild's imgio encoders and golang.org/x/image/tiff.
package export

import (
	"fmt"
	"image"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
	"golang.org/x/image/tiff"

	"github.com/ironsheep/fern-ppm/internal/ppm"
	"github.com/ironsheep/fern-ppm/internal/raster"
)

// Format names an output file format.
type Format string

const (
	PPM  Format = "ppm"
	PNG  Format = "png"
	JPEG Format = "jpeg"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

// Formats lists the supported formats, PPM first.
var Formats = []Format{PPM, PNG, JPEG, BMP, TIFF}

// DefaultJPEGQuality is used when Options.Quality is zero.
const DefaultJPEGQuality = 95

// ParseFormat accepts a format name or a common file extension, with or
// without the leading dot.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "ppm":
		return PPM, nil
	case "png":
		return PNG, nil
	case "jpeg", "jpg":
		return JPEG, nil
	case "bmp":
		return BMP, nil
	case "tiff", "tif":
		return TIFF, nil
	}
	return "", fmt.Errorf("unsupported output format: %s", s)
}

// FormatFromPath picks the format matching the file extension of path.
// Unknown or missing extensions give PPM.
func FormatFromPath(path string) Format {
	f, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return PPM
	}
	return f
}

// Options controls how a raster is written.
type Options struct {
	// Format defaults to FormatFromPath when empty.
	Format Format
	// FlipVertical writes the last row first.
	FlipVertical bool
	// Scale resizes the image by this factor with a Lanczos filter. Zero and
	// one leave the size unchanged.
	Scale float64
	// Quality is the JPEG quality, 1-100.
	Quality int
}

// Result describes a written file.
type Result struct {
	Path   string `json:"path"`
	Format Format `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Transform applies the flip and scale from opts. It returns r itself when
// neither is requested.
func Transform(r *raster.Raster, opts Options) (image.Image, error) {
	if math.IsNaN(opts.Scale) || opts.Scale < 0 {
		return nil, fmt.Errorf("invalid scale factor: %v", opts.Scale)
	}

	var img image.Image = r
	if opts.FlipVertical {
		img = imaging.FlipV(img)
	}

	if opts.Scale != 0 && opts.Scale != 1 {
		width := int(float64(r.Width()) * opts.Scale)
		height := int(float64(r.Height()) * opts.Scale)
		if width < 1 || height < 1 {
			return nil, fmt.Errorf("scale %v reduces %dx%d image to nothing", opts.Scale, r.Width(), r.Height())
		}
		img = imaging.Resize(img, width, height, imaging.Lanczos)
	}
	return img, nil
}

// Save writes r to path.
//
// Like ppm.WriteFile, Save is not atomic; a failed encode leaves whatever
// was written so far.
func Save(r *raster.Raster, path string, opts Options) (*Result, error) {
	format := opts.Format
	if format == "" {
		format = FormatFromPath(path)
	}

	img, err := Transform(r, opts)
	if err != nil {
		return nil, err
	}

	switch format {
	case PPM:
		out, ok := img.(*raster.Raster)
		if !ok {
			out = raster.FromImage(img)
		}
		err = ppm.WriteFile(out, path)
	case PNG:
		err = imgio.Save(path, img, imgio.PNGEncoder())
	case JPEG:
		quality := opts.Quality
		if quality == 0 {
			quality = DefaultJPEGQuality
		}
		if quality < 1 || quality > 100 {
			return nil, fmt.Errorf("invalid JPEG quality: %d", quality)
		}
		err = imgio.Save(path, img, imgio.JPEGEncoder(quality))
	case BMP:
		err = imgio.Save(path, img, imgio.BMPEncoder())
	case TIFF:
		err = imgio.Save(path, img, tiffEncoder())
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save %s image %s: %w", format, path, err)
	}

	b := img.Bounds()
	return &Result{
		Path:   path,
		Format: format,
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

// tiffEncoder writes uncompressed TIFF.
func tiffEncoder() imgio.Encoder {
	return func(w io.Writer, img image.Image) error {
		return tiff.Encode(w, img, nil)
	}
}
