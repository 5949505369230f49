package main

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func TestChunkEncodeDecodeRoundTrip(t *testing.T) {
	fractions := []float32{0.0, 0.25, 0.5, 0.75, 1.0, 0.125}
	original := buildTestChunk(t, 3, 2, fractions, 21241.0)
	original.OffsetX = 8192
	original.OffsetY = 16384

	data, err := encodeChunk(original)
	if err != nil {
		t.Fatalf("encodeChunk returned error: %v", err)
	}

	decoded, err := decodeChunk(data)
	if err != nil {
		t.Fatalf("decodeChunk returned error: %v", err)
	}

	if !reflect.DeepEqual(original, decoded) {
		t.Errorf("decoded chunk differs from original:\ngot  %+v\nwant %+v", decoded, original)
	}
}

func TestDecodeChunkRejectsCorruptGrid(t *testing.T) {
	chunk := buildTestChunk(t, 3, 2, make([]float32, 6), 100.0)
	chunk.Grid = chunk.Grid[:4] // grid no longer matches the encoded dimensions

	data, err := encodeChunk(chunk)
	if err != nil {
		t.Fatalf("encodeChunk returned error: %v", err)
	}

	_, err = decodeChunk(data)
	if !errors.Is(err, ErrCorruptChunk) {
		t.Errorf("decodeChunk error = %v, want ErrCorruptChunk", err)
	}
}

func TestDecodeChunkRejectsGarbage(t *testing.T) {
	_, err := decodeChunk([]byte("this is not a chunk"))
	if err == nil {
		t.Error("decodeChunk on garbage input returned no error")
	}
}

func TestChunkFileNameConvention(t *testing.T) {
	chunk := buildTestChunk(t, 2, 2, make([]float32, 4), 1.0)
	chunk.OffsetX = 24576
	chunk.OffsetY = 8192

	name := chunkFileName("Mars_MGS_MOLA_DEM_mosaic_global_463m", chunk)
	want := "Mars_MGS_MOLA_DEM_mosaic_global_463m_24576_8192.dem"
	if name != want {
		t.Fatalf("chunkFileName = %q, want %q", name, want)
	}

	offsetX, offsetY, ok := parseChunkFileName(name)
	if !ok {
		t.Fatalf("parseChunkFileName(%q) = not ok, want offsets", name)
	}
	if offsetX != 24576 || offsetY != 8192 {
		t.Errorf("parseChunkFileName(%q) = (%d, %d), want (24576, 8192)", name, offsetX, offsetY)
	}
}

func TestParseChunkFileNameRejections(t *testing.T) {
	tests := []string{
		"readme.txt",
		"mosaic.dem",        // no offsets
		"mosaic_12.dem",     // single offset
		"mosaic_a_b.dem",    // non-numeric offsets
		"mosaic_12_34.demx", // wrong extension
		"mosaic_12_34",      // no extension
		"mosaic_-12_34.dem", // negative offset
		"mosaic_12_99999999999999999999.dem", // offset exceeds uint32 range
	}

	for _, name := range tests {
		if _, _, ok := parseChunkFileName(name); ok {
			t.Errorf("parseChunkFileName(%q) = ok, want rejection", name)
		}
	}
}

func TestChunkFileRoundTrip(t *testing.T) {
	chunk := buildTestChunk(t, 4, 3, make([]float32, 12), 100.0)
	chunk.OffsetX = 4
	chunk.OffsetY = 0

	path := filepath.Join(t.TempDir(), chunkFileName("mosaic", chunk))
	if err := writeChunkFile(path, chunk); err != nil {
		t.Fatalf("writeChunkFile returned error: %v", err)
	}

	loaded, err := readChunkFile(path)
	if err != nil {
		t.Fatalf("readChunkFile returned error: %v", err)
	}
	if !reflect.DeepEqual(chunk, loaded) {
		t.Errorf("loaded chunk differs from written chunk:\ngot  %+v\nwant %+v", loaded, chunk)
	}
}

func TestReadChunkFileMissing(t *testing.T) {
	_, err := readChunkFile(filepath.Join(t.TempDir(), "missing_0_0.dem"))
	if err == nil {
		t.Error("readChunkFile on missing file returned no error")
	}
}
