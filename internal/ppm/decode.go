package ppm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	pnm "github.com/jbuchbinder/gopnm"

	"github.com/ironsheep/fern-ppm/internal/raster"
)

// ErrUnsupportedFormat is returned for anything other than a P6 image with
// a maxval of 255.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// MaxPixels bounds the size Decode is willing to allocate.
const MaxPixels = 1 << 28

// Info describes a PPM file without its pixel data.
type Info struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Maxval is the maximum sample value declared in the header.
	Maxval int `json:"maxval"`

	// FileSizeBytes is the size of the file on disk. Only set by Stat.
	FileSizeBytes int64 `json:"file_size_bytes,omitempty"`
}

// checkMagic peeks at the first two bytes without consuming them.
func checkMagic(br *bufio.Reader) error {
	magic, err := br.Peek(len(Magic))
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("failed to read magic number: %w", err)
	}
	if string(magic) != Magic {
		return fmt.Errorf("%w: magic %q", ErrUnsupportedFormat, magic)
	}
	return nil
}

// DecodeConfig reads the header of a P6 image.
func DecodeConfig(r io.Reader) (Info, error) {
	br := bufio.NewReader(r)
	if err := checkMagic(br); err != nil {
		return Info{}, err
	}

	c, err := pnm.DecodeConfigPNM(br)
	if err != nil {
		return Info{}, fmt.Errorf("failed to parse header: %w", err)
	}
	if c.Maxval != Maxval {
		return Info{}, fmt.Errorf("%w: maxval %d", ErrUnsupportedFormat, c.Maxval)
	}

	return Info{Width: c.Width, Height: c.Height, Maxval: c.Maxval}, nil
}

// Stat returns header information and the on-disk size of filename.
func Stat(filename string) (*Info, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	info, err := DecodeConfig(f)
	if err != nil {
		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	info.FileSizeBytes = stat.Size()

	return &info, nil
}

// maxTokenLen bounds a single header token.
const maxTokenLen = 20

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// readToken skips leading whitespace and returns the next header token. The
// single whitespace byte ending the token is consumed, so after the maxval
// token br is positioned at the first sample.
func readToken(br *bufio.Reader) (string, error) {
	var tok []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return "", err
		}
		if isSpace(b) {
			if len(tok) == 0 {
				continue
			}
			return string(tok), nil
		}
		if len(tok) == maxTokenLen {
			return "", fmt.Errorf("header token %q... too long", tok)
		}
		tok = append(tok, b)
	}
}

// readDecimal reads a header token made of ASCII digits only.
func readDecimal(br *bufio.Reader, field string) (int, error) {
	tok, err := readToken(br)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", field, err)
	}
	for i := 0; i < len(tok); i++ {
		if tok[i] < '0' || tok[i] > '9' {
			return 0, fmt.Errorf("invalid %s %q", field, tok)
		}
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, tok, err)
	}
	return n, nil
}

// Decode reads a P6 image written in the layout produced by Encode.
//
// Width, height and maxval must be plain decimal digits. The header tokens
// may be separated by any whitespace, but comment lines are not accepted and
// exactly one whitespace byte must separate the maxval from the pixel data.
// Images with more than MaxPixels pixels, or with a single dimension above
// MaxPixels, are rejected before anything is allocated.
func Decode(r io.Reader) (*raster.Raster, error) {
	br := bufio.NewReader(r)
	if err := checkMagic(br); err != nil {
		return nil, err
	}

	magic, err := readToken(br)
	if err != nil {
		return nil, fmt.Errorf("failed to read magic number: %w", err)
	}
	if magic != Magic {
		return nil, fmt.Errorf("%w: magic %q", ErrUnsupportedFormat, magic)
	}

	width, err := readDecimal(br, "width")
	if err != nil {
		return nil, err
	}
	height, err := readDecimal(br, "height")
	if err != nil {
		return nil, err
	}
	if width > MaxPixels || height > MaxPixels || (width > 0 && height > MaxPixels/width) {
		return nil, fmt.Errorf("image %dx%d exceeds %d pixels", width, height, MaxPixels)
	}

	maxval, err := readDecimal(br, "maxval")
	if err != nil {
		return nil, err
	}
	if maxval != Maxval {
		return nil, fmt.Errorf("%w: maxval %d", ErrUnsupportedFormat, maxval)
	}

	dst := raster.New(width, height)
	line := make([]byte, 3*width)
	for row := 0; row < height; row++ {
		if _, err := io.ReadFull(br, line); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("failed to read row %d: %w", row, err)
		}
		pixels, _ := dst.Row(row)
		for col := range pixels {
			pixels[col] = raster.Pixel{R: line[3*col], G: line[3*col+1], B: line[3*col+2]}
		}
	}

	return dst, nil
}

// ReadFile decodes the P6 image stored in filename.
func ReadFile(filename string) (*raster.Raster, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	r, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return r, nil
}
