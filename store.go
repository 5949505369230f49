package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/maypok86/otter/v2"
)

// chunkKey identifies a chunk by its pixel offset within the mosaic.
type chunkKey struct {
	X uint32
	Y uint32
}

// chunkStore answers geographic elevation queries from a directory of baked
// chunk files. Chunks are loaded lazily and kept in a bounded cache; a loaded
// chunk is immutable, so concurrent queries need no synchronization beyond
// the cache itself.
type chunkStore struct {
	entry     DatasetEntry
	directory string
	index     map[chunkKey]string // chunk offset -> file path (readonly after initialization)
	cache     *otter.Cache[chunkKey, *ElevationChunk]
}

/*
newChunkStore scans a chunk directory for files following the
'<stem>_<x-offset>_<y-offset>.dem' convention and builds the offset index for
the given dataset. Files whose offsets do not lie on the dataset's chunk grid
are rejected (they belong to a different bake configuration).
*/
func newChunkStore(entry DatasetEntry, directory string, cacheSize int) (*chunkStore, error) {
	dirEntries, err := os.ReadDir(directory)
	if err != nil {
		return nil, fmt.Errorf("error [%w] at os.ReadDir(), directory = [%s]", err, directory)
	}

	index := make(map[chunkKey]string, len(dirEntries))
	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() {
			continue
		}
		offsetX, offsetY, ok := parseChunkFileName(dirEntry.Name())
		if !ok {
			continue
		}
		if offsetX%entry.ChunkWidth != 0 || offsetY%entry.ChunkHeight != 0 {
			return nil, fmt.Errorf("chunk file [%s] has offset %d_%d outside the %dx%d chunk grid of dataset [%s]",
				dirEntry.Name(), offsetX, offsetY, entry.ChunkWidth, entry.ChunkHeight, entry.Name)
		}
		index[chunkKey{X: offsetX, Y: offsetY}] = filepath.Join(directory, dirEntry.Name())
	}

	if len(index) == 0 {
		return nil, fmt.Errorf("no chunk files (*%s) found in directory [%s]", ChunkFileExtension, directory)
	}

	if cacheSize <= 0 {
		cacheSize = 16
	}
	cache, err := otter.New(&otter.Options[chunkKey, *ElevationChunk]{
		MaximumSize: cacheSize,
	})
	if err != nil {
		return nil, fmt.Errorf("error [%w] at otter.New()", err)
	}

	slog.Info("chunk store successfully built", "dataset", entry.Name, "directory", directory,
		"chunk files", len(index), "cache size", cacheSize)

	return &chunkStore{
		entry:     entry,
		directory: directory,
		index:     index,
		cache:     cache,
	}, nil
}

/*
chunkAt loads the chunk with the given offset, from the cache if possible. The
loaded chunk must describe exactly the offset it was indexed under and carry
the dataset's mosaic dimensions, anything else is a corrupt bake.
*/
func (s *chunkStore) chunkAt(key chunkKey) (*ElevationChunk, error) {
	chunk, found := s.cache.GetIfPresent(key)
	if found {
		return chunk, nil
	}

	path, found := s.index[key]
	if !found {
		return nil, fmt.Errorf("chunk %d_%d of dataset [%s] not found in directory [%s]", key.X, key.Y, s.entry.Name, s.directory)
	}

	chunk, err := readChunkFile(path)
	if err != nil {
		return nil, err
	}
	if chunk.OffsetX != key.X || chunk.OffsetY != key.Y {
		return nil, fmt.Errorf("chunk file [%s] encodes offset %d_%d, expected %d_%d: %w",
			path, chunk.OffsetX, chunk.OffsetY, key.X, key.Y, ErrCorruptChunk)
	}
	if chunk.Profile.TotalWidth != s.entry.Profile.TotalWidth || chunk.Profile.TotalHeight != s.entry.Profile.TotalHeight {
		return nil, fmt.Errorf("chunk file [%s] was baked for a %dx%d mosaic, dataset [%s] expects %dx%d: %w",
			path, chunk.Profile.TotalWidth, chunk.Profile.TotalHeight, s.entry.Name,
			s.entry.Profile.TotalWidth, s.entry.Profile.TotalHeight, ErrCorruptChunk)
	}

	s.cache.Set(key, chunk)
	return chunk, nil
}

/*
elevationForPoint retrieves the elevation in meters for lon/lat coordinates in
degrees. The global coordinate is mapped onto the equirectangular mosaic, the
owning chunk is resolved, and the query is translated into that chunk's local
unit square before bilinear sampling. Interpolation near a chunk seam clamps
to the chunk edge (no cross-chunk stitching).
*/
func (s *chunkStore) elevationForPoint(longitude, latitude float64) (float64, string, error) {
	profile := s.entry.Profile

	u := clampUnit((longitude + 180.0) / 360.0)
	v := clampUnit((90.0 - latitude) / 180.0)

	// global pixel-space coordinate of the query
	fx := u * float64(profile.TotalWidth-1)
	fy := v * float64(profile.TotalHeight-1)

	// owning chunk of the base pixel
	px := uint32(math.Floor(fx))
	py := uint32(math.Floor(fy))
	key := chunkKey{
		X: (px / s.entry.ChunkWidth) * s.entry.ChunkWidth,
		Y: (py / s.entry.ChunkHeight) * s.entry.ChunkHeight,
	}

	chunk, err := s.chunkAt(key)
	if err != nil {
		return 0.0, "", err
	}

	// translate into the chunk-local unit square
	localU := 0.0
	if chunk.Width > 1 {
		localU = clampUnit((fx - float64(chunk.OffsetX)) / float64(chunk.Width-1))
	}
	localV := 0.0
	if chunk.Height > 1 {
		localV = clampUnit((fy - float64(chunk.OffsetY)) / float64(chunk.Height-1))
	}

	elevation := chunk.SampleUnitSquare(localU, localV)
	chunkIndex := fmt.Sprintf("%d_%d", chunk.OffsetX, chunk.OffsetY)

	return float64(elevation), chunkIndex, nil
}
