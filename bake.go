package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/airbusgeo/godal"
)

// BakeConfig defines the 'bake' mode configuration.
type BakeConfig struct {
	Dataset         string `yaml:"Dataset"`         // registry name, e.g. mars-mgs-mola
	RasterFile      string `yaml:"RasterFile"`      // source mosaic to partition
	OutputDirectory string `yaml:"OutputDirectory"` // default: <raster directory>/<raster stem>
	Decoder         string `yaml:"Decoder"`         // "image" (default) or "gdal"
	ChunkWidth      uint32 `yaml:"ChunkWidth"`      // override of the dataset chunk width (0 = dataset default)
	ChunkHeight     uint32 `yaml:"ChunkHeight"`     // override of the dataset chunk height (0 = dataset default)
}

// progress log cadence during ingestion (rows)
const bakeProgressRows = 1024

/*
runBake partitions the configured raster into quantized elevation chunks and
writes one '<stem>_<x-offset>_<y-offset>.dem' file per chunk.
*/
func runBake() error {
	cfg := progConfig.Bake

	if cfg.Dataset == "" {
		return fmt.Errorf("bake configuration: Dataset must be set")
	}
	if cfg.RasterFile == "" {
		return fmt.Errorf("bake configuration: RasterFile must be set")
	}

	entry, err := getDatasetEntry(cfg.Dataset)
	if err != nil {
		return err
	}

	// chunk dimensions: dataset defaults, overridable per bake
	chunkWidth := entry.ChunkWidth
	if cfg.ChunkWidth > 0 {
		chunkWidth = cfg.ChunkWidth
	}
	chunkHeight := entry.ChunkHeight
	if cfg.ChunkHeight > 0 {
		chunkHeight = cfg.ChunkHeight
	}

	// initialize GDAL only when the bake actually uses it
	if cfg.Decoder == DecoderGDAL {
		godal.RegisterAll()
	}

	slog.Info("loading raster", "file", cfg.RasterFile, "decoder", cfg.Decoder, "dataset", entry.Name)
	raster, err := openRaster(cfg.RasterFile, cfg.Decoder)
	if err != nil {
		return fmt.Errorf("loading raster: %w", err)
	}
	width, height := raster.Dimensions()
	slog.Info("raster successfully loaded", "file", cfg.RasterFile, "width", width, "height", height)

	// report progress at a fixed row cadence
	progress := func(rowsDone, rowsTotal uint32) {
		if rowsDone%bakeProgressRows == 0 || rowsDone == rowsTotal {
			slog.Info("parsing raster", "rows done", rowsDone, "rows total", rowsTotal)
		}
	}

	start := time.Now()
	chunks, err := ingestChunks(raster, chunkWidth, chunkHeight, entry.Profile, progress)
	if err != nil {
		return fmt.Errorf("ingesting raster [%s]: %w", cfg.RasterFile, err)
	}
	slog.Info("raster successfully ingested", "chunks", len(chunks), "elapsed (ms)", int64(time.Since(start)/time.Millisecond))

	// output directory defaults to a sibling directory named like the raster
	stem := strings.TrimSuffix(filepath.Base(cfg.RasterFile), filepath.Ext(cfg.RasterFile))
	outputDirectory := cfg.OutputDirectory
	if outputDirectory == "" {
		outputDirectory = filepath.Join(filepath.Dir(cfg.RasterFile), stem)
	}
	err = os.MkdirAll(outputDirectory, 0o755)
	if err != nil {
		return fmt.Errorf("error [%w] at os.MkdirAll(), directory = [%s]", err, outputDirectory)
	}

	// write chunks in row-major tile order
	for _, chunk := range chunks {
		path := filepath.Join(outputDirectory, chunkFileName(stem, chunk))
		err = writeChunkFile(path, chunk)
		if err != nil {
			return err
		}
	}

	slog.Info("bake finished", "dataset", entry.Name, "chunks", len(chunks),
		"chunk size", fmt.Sprintf("%dx%d", chunkWidth, chunkHeight), "output directory", outputDirectory)

	return nil
}
