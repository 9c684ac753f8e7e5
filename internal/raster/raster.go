package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
)

// Pixel is an RGB color with 8-bit components.
//
// The zero value is black.
type Pixel struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// Hex returns the pixel in "#RRGGBB" form.
func (p Pixel) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", p.R, p.G, p.B)
}

// ErrOutOfBounds is matched by every *OutOfBoundsError.
var ErrOutOfBounds = errors.New("pixel out of bounds")

// OutOfBoundsError reports an access outside the raster.
type OutOfBoundsError struct {
	Row    int // Requested row
	Col    int // Requested column
	Width  int // Raster width
	Height int // Raster height
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("pixel (row %d, col %d) outside %dx%d raster", e.Row, e.Col, e.Width, e.Height)
}

func (e *OutOfBoundsError) Unwrap() error {
	return ErrOutOfBounds
}

// Raster is a Width×Height grid of pixels stored in row-major order.
type Raster struct {
	width  int
	height int
	pix    []Pixel
}

// Make sure Raster can be passed to encoders and transforms.
var _ image.Image = &Raster{}

// New allocates a raster with all pixels black.
//
// New panics if width or height is negative or if width*height does not fit
// in an int. A raster with a zero dimension is valid and holds no pixels.
func New(width, height int) *Raster {
	if width < 0 || height < 0 {
		panic(fmt.Sprintf("raster: negative dimensions %dx%d", width, height))
	}
	if height != 0 && width > math.MaxInt/height {
		panic(fmt.Sprintf("raster: dimensions %dx%d overflow", width, height))
	}
	return &Raster{
		width:  width,
		height: height,
		pix:    make([]Pixel, width*height),
	}
}

// Width returns the number of columns.
func (r *Raster) Width() int {
	return r.width
}

// Height returns the number of rows.
func (r *Raster) Height() int {
	return r.height
}

// Pixel returns the pixel at (row, col).
//
// The returned pointer refers to the raster's own storage: writing through it
// changes the raster, and it stays valid for the raster's lifetime.
//
// # Errors
//
//   - Returns *OutOfBoundsError if row is outside [0, Height) or col is
//     outside [0, Width)
func (r *Raster) Pixel(row, col int) (*Pixel, error) {
	if row < 0 || row >= r.height || col < 0 || col >= r.width {
		return nil, &OutOfBoundsError{Row: row, Col: col, Width: r.width, Height: r.height}
	}
	return &r.pix[row*r.width+col], nil
}

// Row returns the pixels of one row, left to right.
//
// The slice aliases the raster's storage. Its capacity is limited to the row
// so appending to it never spills into the next row.
func (r *Raster) Row(row int) ([]Pixel, error) {
	if row < 0 || row >= r.height {
		return nil, &OutOfBoundsError{Row: row, Col: 0, Width: r.width, Height: r.height}
	}
	start := row * r.width
	end := start + r.width
	return r.pix[start:end:end], nil
}

// ColorModel returns color.RGBAModel. All pixels are opaque.
func (r *Raster) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds returns (0,0)-(Width,Height).
func (r *Raster) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.width, r.height)
}

// At returns the color of the pixel at column x, row y.
func (r *Raster) At(x, y int) color.Color {
	p, err := r.Pixel(y, x)
	if err != nil {
		return color.RGBA{}
	}
	return color.RGBA{R: p.R, G: p.G, B: p.B, A: 0xff}
}

// FromImage copies img into a new raster of the same size.
//
// The image's Min point becomes (row 0, col 0). Alpha is discarded; channel
// values are taken from the non-premultiplied color so a translucent source
// keeps its hue instead of darkening.
func FromImage(img image.Image) *Raster {
	bounds := img.Bounds()
	dst := New(bounds.Dx(), bounds.Dy())

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := dst.pix[(y-bounds.Min.Y)*dst.width:]
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			row[x-bounds.Min.X] = Pixel{R: c.R, G: c.G, B: c.B}
		}
	}

	return dst
}
