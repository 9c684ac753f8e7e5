// Package raster provides a fixed-size RGB pixel buffer.
//
// A Raster owns a contiguous, row-major sequence of Width×Height pixels.
// Dimensions are set by New and never change afterwards. Pixels are
// addressed by (row, col), where row 0 is the top row as written to file
// and col 0 is the leftmost column.
//
// # Bounds
//
// Every access through Pixel or Row is bounds-checked:
//   - Valid row range: 0 to Height-1
//   - Valid col range: 0 to Width-1
//
// Out-of-range coordinates return an *OutOfBoundsError carrying the
// requested coordinate and the raster's dimensions. Coordinates are never
// clamped or wrapped; callers that want clamping must clamp before calling.
//
// # image.Image
//
// Raster also implements image.Image with x = col and y = row, so it can be
// handed to any encoder or transform that accepts the standard interface.
// The At method follows the image.Image contract and returns the zero color
// outside the bounds instead of an error.
//
// # Thread Safety
//
// A Raster is owned by the code that created it. Concurrent mutation is not
// supported.
package raster
