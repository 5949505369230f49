package main

import "math"

/*
SampleGeographic samples the elevation in meters at (latitude, longitude),
both in radians, via bilinear interpolation. The chunk is assumed to span the
full equirectangular unit square: longitude [-180°, 180°] west to east,
latitude [90°, -90°] top to bottom. Callers sampling a partial chunk of a
larger mosaic must translate coordinates into the chunk's local unit square
themselves (see chunkStore); there is no cross-chunk stitching here.
*/
func (c *ElevationChunk) SampleGeographic(latitude, longitude float64) float32 {
	lonDegrees := longitude * (180.0 / math.Pi)
	latDegrees := latitude * (180.0 / math.Pi)

	u := (lonDegrees + 180.0) / 360.0
	v := (90.0 - latDegrees) / 180.0

	return c.SampleUnitSquare(u, v)
}

/*
SampleUnitSquare samples the elevation in meters at unit-square coordinates
(u, v) via bilinear interpolation of the four surrounding grid samples.

Out-of-range coordinates are clamped into [0,1] rather than rejected;
geographic queries at the poles or the antimeridian are a normal case, not an
error. Corner indices are clamped (not wrapped), so sampling at u=1 or v=1
degenerates to the edge pixel. A chunk with a single-pixel axis degenerates to
a plain lookup along that axis: the pixel-space scale factor is zero, both
interpolation corners collapse onto pixel 0 and the fractional weight is zero.
*/
func (c *ElevationChunk) SampleUnitSquare(u, v float64) float32 {
	u = clampUnit(u)
	v = clampUnit(v)

	// scale UV to chunk pixel coordinates
	fx := u * float64(c.Width-1)
	fy := v * float64(c.Height-1)

	// integer parts
	x0f := math.Floor(fx)
	y0f := math.Floor(fy)
	x0 := uint32(x0f)
	y0 := uint32(y0f)

	// clamp to valid indices, never read out of bounds
	x1 := min(x0+1, c.Width-1)
	y1 := min(y0+1, c.Height-1)

	// fractional parts
	tx := fx - x0f
	ty := fy - y0f

	// sample the four surrounding texels (not yet scaled to meters)
	v00 := float64(c.fraction(x0, y0)) // top-left
	v10 := float64(c.fraction(x1, y0)) // top-right
	v01 := float64(c.fraction(x0, y1)) // bottom-left
	v11 := float64(c.fraction(x1, y1)) // bottom-right

	// bilinear interpolation
	top := v00*(1.0-tx) + v10*tx
	bottom := v01*(1.0-tx) + v11*tx
	bilinear := top*(1.0-ty) + bottom*ty

	return float32(bilinear) * c.Profile.MaxElevation
}

/*
clampUnit clamps a unit-square coordinate into [0,1].
*/
func clampUnit(value float64) float64 {
	if value < 0.0 {
		return 0.0
	}
	if value > 1.0 {
		return 1.0
	}
	return value
}
