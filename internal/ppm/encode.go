package ppm

import (
	"bufio"
	"fmt"
	"io"
	"os"

	pnm "github.com/jbuchbinder/gopnm"

	"github.com/ironsheep/fern-ppm/internal/raster"
)

// Magic is the P6 magic number.
const Magic = "P6"

// Maxval is the only maximum sample value written or accepted.
const Maxval = 255

// Header returns the ASCII header for a width×height P6 image. It is the
// exact prefix Encode writes, so len(Header(w, h)) is the offset of the first
// sample in files produced by this package.
func Header(width, height int) string {
	return fmt.Sprintf("%s\n%d %d\n%d\n", Magic, width, height, Maxval)
}

// Encode writes r to w as a binary PPM image.
//
// Rows are written from 0 to Height-1 and pixels within a row from column 0
// to Width-1, three bytes each. Pixel values are not validated; every uint8
// is a legal sample.
func Encode(w io.Writer, r *raster.Raster) error {
	bw := bufio.NewWriter(w)

	// Raster reports color.RGBAModel, so gopnm picks maxval 255 and one byte
	// per sample.
	if err := pnm.Encode(bw, r, pnm.PPM); err != nil {
		return fmt.Errorf("failed to write image data: %w", err)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush image data: %w", err)
	}
	return nil
}

// WriteFile encodes r into filename, creating or truncating it.
//
// # Errors
//
//   - Returns an error wrapping the *fs.PathError if the file cannot be created
//   - Returns an error if any write, flush or the final close fails
//
// A failure after the file was created leaves the partial file in place.
func WriteFile(r *raster.Raster, filename string) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close image file: %w", closeErr)
		}
	}()

	if err := Encode(f, r); err != nil {
		return fmt.Errorf("failed to encode %s: %w", filename, err)
	}
	return nil
}
