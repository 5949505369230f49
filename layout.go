package main

// TileRect is the pixel rectangle of one tile within the full mosaic.
// Trailing tiles may be narrower/shorter than the nominal chunk size when the
// mosaic dimensions do not divide evenly.
type TileRect struct {
	X      uint32 // pixel offset of the left edge
	Y      uint32 // pixel offset of the top edge
	Width  uint32
	Height uint32
}

/*
numTiles returns the number of tiles needed to cover 'total' pixels with tiles
of 'chunk' pixels (ceiling division). 'chunk' must be positive.
*/
func numTiles(total, chunk uint32) uint32 {
	return (total + chunk - 1) / chunk
}

/*
tileRect returns the pixel rectangle of tile (tx, ty) for a mosaic of
totalWidth x totalHeight pixels partitioned into chunkWidth x chunkHeight
tiles. The rectangle is clipped at the trailing mosaic edges. Tile indices
iterate row-major (ty outer, tx inner); this order determines the sequence of
baked chunks and their file names.
*/
func tileRect(tx, ty, chunkWidth, chunkHeight, totalWidth, totalHeight uint32) TileRect {
	xStart := tx * chunkWidth
	yStart := ty * chunkHeight
	xEnd := min(xStart+chunkWidth, totalWidth)
	yEnd := min(yStart+chunkHeight, totalHeight)

	return TileRect{
		X:      xStart,
		Y:      yStart,
		Width:  xEnd - xStart,
		Height: yEnd - yStart,
	}
}
