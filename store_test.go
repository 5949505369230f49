package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

// testDatasetEntry describes an 8x8 mosaic baked in 4x4 chunks, so the chunk
// grid has four tiles and every pixel value equals its elevation in meters.
func testDatasetEntry() DatasetEntry {
	return DatasetEntry{
		Name:        "test-mosaic",
		ChunkWidth:  4,
		ChunkHeight: 4,
		Profile: ChunkProfile{
			TotalWidth:     8,
			TotalHeight:    8,
			MetersPerPixel: 100.0,
			MaxElevation:   255.0,
		},
	}
}

func testPixelValue(x, y uint32) uint8 {
	return uint8(y*8 + x)
}

/*
bakeTestMosaic ingests a synthetic 8x8 raster and writes all chunk files into
the given directory, mirroring what the bake mode does.
*/
func bakeTestMosaic(t *testing.T, directory string, entry DatasetEntry) {
	t.Helper()
	raster := makeGrayRaster(t, entry.Profile.TotalWidth, entry.Profile.TotalHeight, testPixelValue)
	chunks, err := ingestChunks(raster, entry.ChunkWidth, entry.ChunkHeight, entry.Profile, nil)
	if err != nil {
		t.Fatalf("ingestChunks returned error: %v", err)
	}
	for _, chunk := range chunks {
		path := filepath.Join(directory, chunkFileName("mosaic", chunk))
		if err := writeChunkFile(path, chunk); err != nil {
			t.Fatalf("writeChunkFile returned error: %v", err)
		}
	}
}

func TestStoreElevationForPoint(t *testing.T) {
	entry := testDatasetEntry()
	directory := t.TempDir()
	bakeTestMosaic(t, directory, entry)

	store, err := newChunkStore(entry, directory, 0)
	if err != nil {
		t.Fatalf("newChunkStore returned error: %v", err)
	}

	// geographic coordinates that land exactly on mosaic pixels
	lonForPixel := func(x uint32) float64 { return float64(x)/7.0*360.0 - 180.0 }
	latForPixel := func(y uint32) float64 { return 90.0 - float64(y)/7.0*180.0 }

	tests := []struct {
		name      string
		px, py    uint32
		wantChunk string
	}{
		{name: "north west corner pixel", px: 0, py: 0, wantChunk: "0_0"},
		{name: "interior pixel first chunk", px: 2, py: 1, wantChunk: "0_0"},
		{name: "pixel in second chunk column", px: 6, py: 0, wantChunk: "4_0"},
		{name: "pixel in second chunk row", px: 1, py: 5, wantChunk: "0_4"},
		{name: "south east corner pixel", px: 7, py: 7, wantChunk: "4_4"},
	}

	// pixel values are elevations, allow half-precision quantization plus a
	// little slack for the degree round trip
	tolerance := 255.0*halfPrecisionRelError + 1e-3

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			elevation, chunkIndex, err := store.elevationForPoint(lonForPixel(tt.px), latForPixel(tt.py))
			if err != nil {
				t.Fatalf("elevationForPoint returned error: %v", err)
			}
			want := float64(testPixelValue(tt.px, tt.py))
			if diff := math.Abs(elevation - want); diff > tolerance {
				t.Errorf("elevation at pixel (%d, %d) = %g, want %g", tt.px, tt.py, elevation, want)
			}
			if chunkIndex != tt.wantChunk {
				t.Errorf("chunk index at pixel (%d, %d) = %q, want %q", tt.px, tt.py, chunkIndex, tt.wantChunk)
			}
		})
	}
}

func TestStoreCachesLoadedChunks(t *testing.T) {
	entry := testDatasetEntry()
	directory := t.TempDir()
	bakeTestMosaic(t, directory, entry)

	store, err := newChunkStore(entry, directory, 4)
	if err != nil {
		t.Fatalf("newChunkStore returned error: %v", err)
	}

	key := chunkKey{X: 4, Y: 4}
	first, err := store.chunkAt(key)
	if err != nil {
		t.Fatalf("chunkAt returned error: %v", err)
	}
	second, err := store.chunkAt(key)
	if err != nil {
		t.Fatalf("chunkAt on cached chunk returned error: %v", err)
	}
	if first != second {
		t.Error("second chunkAt returned a different chunk instance, cache miss")
	}
}

func TestStoreMissingChunk(t *testing.T) {
	entry := testDatasetEntry()
	fullDirectory := t.TempDir()
	bakeTestMosaic(t, fullDirectory, entry)

	// keep only the first chunk, queries into the other tiles must fail
	partialDirectory := t.TempDir()
	data, err := os.ReadFile(filepath.Join(fullDirectory, "mosaic_0_0.dem"))
	if err != nil {
		t.Fatalf("reading baked chunk: %v", err)
	}
	if err = os.WriteFile(filepath.Join(partialDirectory, "mosaic_0_0.dem"), data, 0o644); err != nil {
		t.Fatalf("writing partial chunk set: %v", err)
	}

	store, err := newChunkStore(entry, partialDirectory, 0)
	if err != nil {
		t.Fatalf("newChunkStore returned error: %v", err)
	}

	if _, _, err = store.elevationForPoint(0.0, 0.0); err != nil {
		t.Errorf("query into the present chunk returned error: %v", err)
	}
	if _, _, err = store.elevationForPoint(180.0, -90.0); err == nil {
		t.Error("query into a missing chunk returned no error")
	}
}

func TestNewChunkStoreRejections(t *testing.T) {
	entry := testDatasetEntry()

	t.Run("empty directory", func(t *testing.T) {
		if _, err := newChunkStore(entry, t.TempDir(), 0); err == nil {
			t.Error("newChunkStore on empty directory returned no error")
		}
	})

	t.Run("off-grid chunk file", func(t *testing.T) {
		directory := t.TempDir()
		bakeTestMosaic(t, directory, entry)
		// offset 3 is not a multiple of the 4x4 chunk grid
		if err := os.WriteFile(filepath.Join(directory, "mosaic_3_0.dem"), []byte{0x00}, 0o644); err != nil {
			t.Fatalf("writing off-grid file: %v", err)
		}
		if _, err := newChunkStore(entry, directory, 0); err == nil {
			t.Error("newChunkStore accepted off-grid chunk file")
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		if _, err := newChunkStore(entry, filepath.Join(t.TempDir(), "nope"), 0); err == nil {
			t.Error("newChunkStore on missing directory returned no error")
		}
	})
}
