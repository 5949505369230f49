package main

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/fxamacker/cbor/v2"
)

// chunk file name convention: <stem>_<x-offset>_<y-offset>.dem
const ChunkFileExtension = ".dem"

// chunkFileNamePattern matches the file name convention (stem is greedy,
// offsets are the last two underscore-separated fields).
var chunkFileNamePattern = regexp.MustCompile(`^(.+)_(\d+)_(\d+)\.dem$`)

/*
chunkFileName builds the conventional file name for one baked chunk.
*/
func chunkFileName(stem string, chunk *ElevationChunk) string {
	return fmt.Sprintf("%s_%d_%d%s", stem, chunk.OffsetX, chunk.OffsetY, ChunkFileExtension)
}

/*
parseChunkFileName extracts the pixel offsets from a conventional chunk file
name. It returns false for file names outside the convention.
*/
func parseChunkFileName(filename string) (offsetX, offsetY uint32, ok bool) {
	matches := chunkFileNamePattern.FindStringSubmatch(filename)
	if matches == nil {
		return 0, 0, false
	}

	// \d+ already guarantees digits, only range errors remain
	x, err := strconv.ParseUint(matches[2], 10, 32)
	if err != nil {
		return 0, 0, false
	}
	y, err := strconv.ParseUint(matches[3], 10, 32)
	if err != nil {
		return 0, 0, false
	}

	return uint32(x), uint32(y), true
}

/*
encodeChunk serializes a chunk's logical fields (offset, size, profile, grid)
to a byte stream.
*/
func encodeChunk(chunk *ElevationChunk) ([]byte, error) {
	data, err := cbor.Marshal(chunk)
	if err != nil {
		return nil, fmt.Errorf("error [%w] at cbor.Marshal()", err)
	}
	return data, nil
}

/*
decodeChunk deserializes a chunk and checks its structural invariants. A grid
length that does not match the encoded dimensions surfaces ErrCorruptChunk.
*/
func decodeChunk(data []byte) (*ElevationChunk, error) {
	chunk := &ElevationChunk{}
	err := cbor.Unmarshal(data, chunk)
	if err != nil {
		return nil, fmt.Errorf("error [%w] at cbor.Unmarshal()", err)
	}

	err = chunk.validate()
	if err != nil {
		return nil, err
	}

	return chunk, nil
}

/*
writeChunkFile bakes one chunk to disk.
*/
func writeChunkFile(path string, chunk *ElevationChunk) error {
	data, err := encodeChunk(chunk)
	if err != nil {
		return fmt.Errorf("encoding chunk for [%s]: %w", path, err)
	}

	err = os.WriteFile(path, data, 0o644)
	if err != nil {
		return fmt.Errorf("error [%w] at os.WriteFile(), file = [%s]", err, path)
	}

	return nil
}

/*
readChunkFile loads and validates one baked chunk.
*/
func readChunkFile(path string) (*ElevationChunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error [%w] at os.ReadFile(), file = [%s]", err, path)
	}

	chunk, err := decodeChunk(data)
	if err != nil {
		return nil, fmt.Errorf("decoding chunk file [%s]: %w", path, err)
	}

	return chunk, nil
}
