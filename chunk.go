package main

import (
	"fmt"

	"github.com/x448/float16"
)

// ElevationChunk is one rectangular tile of a chunked DEM mosaic and the unit
// of persistence. Elevation samples are stored as half-precision bit patterns
// of the normalized fraction [0,1]; multiplying a decoded fraction with the
// profile's MaxElevation yields meters. A chunk is a value: it is filled once
// during baking and read-only afterwards, so concurrent sampling needs no
// synchronization.
type ElevationChunk struct {
	// OffsetX/OffsetY locate the chunk's top-left pixel within the full mosaic.
	OffsetX uint32
	OffsetY uint32
	// Width/Height are the actual chunk dimensions; trailing chunks may be
	// smaller than the nominal chunk size.
	Width  uint32
	Height uint32
	// Profile is a copy (not a shared reference) of the mosaic profile.
	Profile ChunkProfile
	// Grid holds Width*Height half-precision bit patterns, row-major.
	Grid []uint16
}

/*
newElevationChunk allocates a zero-initialized chunk for the given tile
rectangle, carrying a copy of the mosaic profile.
*/
func newElevationChunk(rect TileRect, profile ChunkProfile) *ElevationChunk {
	return &ElevationChunk{
		OffsetX: rect.X,
		OffsetY: rect.Y,
		Width:   rect.Width,
		Height:  rect.Height,
		Profile: profile,
		Grid:    make([]uint16, rect.Width*rect.Height),
	}
}

/*
Elevation returns the elevation in meters at chunk-local pixel (x, y).
Out-of-range coordinates yield ErrIndexOutOfBounds.
*/
func (c *ElevationChunk) Elevation(x, y uint32) (float32, error) {
	if x >= c.Width || y >= c.Height {
		return 0.0, fmt.Errorf("pixel (%d, %d) outside chunk of %dx%d pixels: %w", x, y, c.Width, c.Height, ErrIndexOutOfBounds)
	}
	return c.fraction(x, y) * c.Profile.MaxElevation, nil
}

/*
fraction decodes the stored half-precision elevation fraction at (x, y).
Coordinates must be in range; all callers check or clamp beforehand.
*/
func (c *ElevationChunk) fraction(x, y uint32) float32 {
	return float16.Frombits(c.Grid[y*c.Width+x]).Float32()
}

/*
setFraction quantizes an elevation fraction to half precision
(round-to-nearest-even) and stores it at chunk-local pixel (x, y).
Only the ingestion pipeline writes to a chunk.
*/
func (c *ElevationChunk) setFraction(x, y uint32, fraction float32) {
	c.Grid[y*c.Width+x] = float16.Fromfloat32(fraction).Bits()
}

/*
validate checks the structural invariants of a chunk, typically after loading
it from a file. A grid length that does not match the chunk dimensions means
the chunk is corrupt and unusable.
*/
func (c *ElevationChunk) validate() error {
	if c.Width == 0 || c.Height == 0 {
		return fmt.Errorf("chunk of %dx%d pixels: %w", c.Width, c.Height, ErrCorruptChunk)
	}
	if uint64(len(c.Grid)) != uint64(c.Width)*uint64(c.Height) {
		return fmt.Errorf("grid length %d for chunk of %dx%d pixels: %w", len(c.Grid), c.Width, c.Height, ErrCorruptChunk)
	}
	return c.Profile.validate()
}
