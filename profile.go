package main

import (
	"errors"
	"fmt"
)

// ChunkProfile describes the full (unchunked) source mosaic. Every chunk baked
// from one mosaic carries a copy, so a single chunk file is self-describing.
type ChunkProfile struct {
	// TotalWidth is the width of the total mosaic in pixels.
	TotalWidth uint32 `yaml:"TotalWidth"`
	// TotalHeight is the height of the total mosaic in pixels.
	TotalHeight uint32 `yaml:"TotalHeight"`
	// MetersPerPixel is the ground distance a single pixel represents.
	MetersPerPixel float32 `yaml:"MetersPerPixel"`
	// MaxElevation rescales the stored elevation fraction [0,1] to meters.
	// It must be identical during baking and sampling.
	MaxElevation float32 `yaml:"MaxElevation"`
}

/*
validate checks a profile for obviously broken values.
*/
func (p ChunkProfile) validate() error {
	if p.TotalWidth == 0 || p.TotalHeight == 0 {
		return fmt.Errorf("invalid mosaic dimensions [%dx%d], both must be positive", p.TotalWidth, p.TotalHeight)
	}
	if p.MetersPerPixel <= 0.0 {
		return fmt.Errorf("invalid MetersPerPixel [%f], must be positive", p.MetersPerPixel)
	}
	if p.MaxElevation <= 0.0 {
		return errors.New("invalid MaxElevation, must be positive")
	}
	return nil
}
