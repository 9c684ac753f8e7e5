// Package ppm writes and reads binary PPM (P6) images.
//
// Only the P6 variant with a maxval of 255 is supported. The encoder emits
// exactly:
//
//	"P6" '\n' <width> ' ' <height> '\n' "255" '\n'
//
// followed by Height rows, top to bottom, each holding Width pixels left to
// right as three raw bytes R, G, B. There are no comment lines and nothing
// follows the last pixel.
//
// # Writing
//
// WriteFile creates or truncates the target and streams the header and body
// through a buffered writer. The write is not atomic: when an error occurs
// midway the partially written file is left on disk and the error is
// returned to the caller.
//
// # Reading
//
// Decode is a strict reader for files in the layout above. DecodeConfig and
// Stat read only the header and are backed by the gopnm decoder, so they
// also recognise other netpbm magics well enough to reject them with
// ErrUnsupportedFormat.
//
// # Caching
//
// Cache keeps decoded rasters keyed by path and is safe for concurrent use.
package ppm
