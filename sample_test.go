package main

import (
	"math"
	"testing"
)

func TestBilinearExactAtGridPoints(t *testing.T) {
	// 5x5 grid: u = x/4 and v = y/4 are exact binary fractions, so the
	// interpolation weights collapse to 0/1 exactly at the grid points
	const width, height = 5, 5
	fractions := make([]float32, width*height)
	for i := range fractions {
		fractions[i] = float32(i) / 32.0 // exactly representable in half precision
	}
	chunk := buildTestChunk(t, width, height, fractions, 1000.0)

	for y := uint32(0); y < height; y++ {
		for x := uint32(0); x < width; x++ {
			want, err := chunk.Elevation(x, y)
			if err != nil {
				t.Fatalf("Elevation(%d, %d) returned error: %v", x, y, err)
			}
			got := chunk.SampleUnitSquare(float64(x)/(width-1), float64(y)/(height-1))
			if got != want {
				t.Errorf("SampleUnitSquare at grid point (%d, %d) = %g, want exactly %g", x, y, got, want)
			}
		}
	}
}

func TestSampleEdgeClamping(t *testing.T) {
	const width, height = 4, 4
	fractions := make([]float32, width*height)
	for i := range fractions {
		fractions[i] = float32(i) / 16.0
	}
	chunk := buildTestChunk(t, width, height, fractions, 100.0)

	corner, err := chunk.Elevation(width-1, height-1)
	if err != nil {
		t.Fatalf("Elevation returned error: %v", err)
	}
	topRight, err := chunk.Elevation(width-1, 0)
	if err != nil {
		t.Fatalf("Elevation returned error: %v", err)
	}

	tests := []struct {
		name string
		u, v float64
		want float32
	}{
		{name: "exact far corner", u: 1.0, v: 1.0, want: corner},
		{name: "u and v beyond range are clamped", u: 2.5, v: 17.0, want: corner},
		{name: "negative v is clamped", u: 1.0, v: -0.25, want: topRight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := chunk.SampleUnitSquare(tt.u, tt.v)
			if got != tt.want {
				t.Errorf("SampleUnitSquare(%g, %g) = %g, want %g", tt.u, tt.v, got, tt.want)
			}
		})
	}
}

func TestSampleDegenerateAxis(t *testing.T) {
	// single-column chunk: any u must resolve to column 0 without NaN
	column := buildTestChunk(t, 1, 4, []float32{0.0, 0.25, 0.5, 1.0}, 100.0)

	for _, u := range []float64{0.0, 0.3, 0.7, 1.0} {
		for y := uint32(0); y < 4; y++ {
			want, err := column.Elevation(0, y)
			if err != nil {
				t.Fatalf("Elevation returned error: %v", err)
			}
			got := column.SampleUnitSquare(u, float64(y)/3.0*1.0)
			if math.IsNaN(float64(got)) {
				t.Fatalf("SampleUnitSquare(%g, v for row %d) = NaN", u, y)
			}
			// rows 0 and 3 are exact; interior rows involve v = y/3 which is
			// inexact in binary, allow a small tolerance
			if diff := math.Abs(float64(got - want)); diff > 1e-3 {
				t.Errorf("SampleUnitSquare(%g, v for row %d) = %g, want %g", u, y, got, want)
			}
		}
	}

	// single-pixel chunk degenerates on both axes
	pixel := buildTestChunk(t, 1, 1, []float32{0.5}, 100.0)
	for _, uv := range []float64{0.0, 0.5, 1.0} {
		got := pixel.SampleUnitSquare(uv, uv)
		if got != 50.0 {
			t.Errorf("SampleUnitSquare(%g, %g) on 1x1 chunk = %g, want 50", uv, uv, got)
		}
	}
}

func TestSampleInterpolatesBetweenNeighbors(t *testing.T) {
	// u = 0.5 on a 4-wide grid lands halfway between columns 1 and 2
	chunk := buildTestChunk(t, 4, 1, []float32{0.0, 0.2, 0.6, 1.0}, 100.0)

	left, _ := chunk.Elevation(1, 0)
	right, _ := chunk.Elevation(2, 0)
	got := chunk.SampleUnitSquare(0.5, 0.0)

	if got <= left || got >= right {
		t.Errorf("SampleUnitSquare(0.5, 0) = %g, want strictly between %g and %g", got, left, right)
	}
	want := (left + right) / 2.0
	if diff := math.Abs(float64(got - want)); diff > 1e-3 {
		t.Errorf("SampleUnitSquare(0.5, 0) = %g, want midpoint %g", got, want)
	}
}

func TestSampleGeographic(t *testing.T) {
	// 3x3 chunk spanning the full equirectangular square; the center pixel
	// sits at lat 0, lon 0
	fractions := []float32{
		0.1, 0.2, 0.3,
		0.4, 0.5, 0.6,
		0.7, 0.8, 0.9,
	}
	chunk := buildTestChunk(t, 3, 3, fractions, 100.0)

	degree := math.Pi / 180.0
	tests := []struct {
		name      string
		latitude  float64 // radians
		longitude float64
		want      float32
	}{
		{name: "north west corner", latitude: 90.0 * degree, longitude: -180.0 * degree, want: 10.0},
		{name: "center", latitude: 0.0, longitude: 0.0, want: 50.0},
		{name: "south east corner", latitude: -90.0 * degree, longitude: 180.0 * degree, want: 90.0},
		{name: "south edge midpoint", latitude: -90.0 * degree, longitude: 0.0, want: 80.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := chunk.SampleGeographic(tt.latitude, tt.longitude)
			// quantized fractions plus radian/degree conversion, allow the
			// half-precision tolerance scaled to meters
			if diff := math.Abs(float64(got - tt.want)); diff > 100.0*halfPrecisionRelError+1e-3 {
				t.Errorf("SampleGeographic(%g, %g) = %g, want %g", tt.latitude, tt.longitude, got, tt.want)
			}
		})
	}
}
