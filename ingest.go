package main

import "fmt"

// ProgressFunc reports ingestion progress after each completed raster row.
// Implementations decide their own cadence (e.g. log every n-th row).
type ProgressFunc func(rowsDone, rowsTotal uint32)

/*
ingestChunks partitions a decoded raster into chunks of chunkWidth x
chunkHeight pixels and quantizes every pixel's elevation fraction into the
owning chunk's half-precision grid. Chunks are returned in row-major tile
order (top row of tiles first, left to right); trailing tiles are clipped at
the mosaic edges.

The raster dimensions must match the profile's total dimensions, otherwise the
configured profile does not belong to the decoded image and ingestion fails
with ErrDimensionMismatch. The progress callback may be nil.
*/
func ingestChunks(raster Raster, chunkWidth, chunkHeight uint32, profile ChunkProfile, progress ProgressFunc) ([]*ElevationChunk, error) {
	if chunkWidth == 0 || chunkHeight == 0 {
		return nil, fmt.Errorf("chunk size %dx%d: %w", chunkWidth, chunkHeight, ErrInvalidChunkSize)
	}

	width, height := raster.Dimensions()
	if width != profile.TotalWidth || height != profile.TotalHeight {
		return nil, fmt.Errorf("raster is %dx%d pixels, profile expects %dx%d: %w",
			width, height, profile.TotalWidth, profile.TotalHeight, ErrDimensionMismatch)
	}

	numTilesX := numTiles(width, chunkWidth)
	numTilesY := numTiles(height, chunkHeight)

	// allocate one zero-initialized chunk per tile rectangle
	chunks := make([]*ElevationChunk, 0, numTilesX*numTilesY)
	for ty := uint32(0); ty < numTilesY; ty++ {
		for tx := uint32(0); tx < numTilesX; tx++ {
			rect := tileRect(tx, ty, chunkWidth, chunkHeight, width, height)
			chunks = append(chunks, newElevationChunk(rect, profile))
		}
	}

	// quantize every pixel into the owning chunk's grid
	for y := uint32(0); y < height; y++ {
		for x := uint32(0); x < width; x++ {
			chunk := chunks[(y/chunkHeight)*numTilesX+(x/chunkWidth)]
			chunk.setFraction(x-chunk.OffsetX, y-chunk.OffsetY, raster.Fraction(x, y))
		}
		if progress != nil {
			progress(y+1, height)
		}
	}

	return chunks, nil
}
