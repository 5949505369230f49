package main

import (
	"fmt"
	"image"
	"os"

	"github.com/airbusgeo/godal"

	// decoders for the pure Go raster path
	_ "image/png"

	_ "golang.org/x/image/tiff"
)

// Raster is the decoded source mosaic as seen by the ingestion pipeline.
// Implementations normalize the elevation-carrying channel (by convention the
// first band) to a fraction of its maximum representable value.
type Raster interface {
	// Dimensions returns the raster size in pixels.
	Dimensions() (width, height uint32)
	// Fraction returns the first-channel value at (x, y) normalized to [0,1].
	// Coordinates must be within the raster dimensions.
	Fraction(x, y uint32) float32
}

// raster decoder selection (configuration value Bake.Decoder)
const (
	DecoderImage = "image"
	DecoderGDAL  = "gdal"
)

/*
openRaster decodes the raster file with the configured decoder. The "image"
decoder covers PNG and baseline TIFF heightmaps with pure Go; the "gdal"
decoder handles everything GDAL can read, in particular the BigTIFF planetary
mosaics. Decode failures are fatal and surfaced verbatim.
*/
func openRaster(filename string, decoder string) (Raster, error) {
	if !FileExists(filename) {
		return nil, fmt.Errorf("raster file [%s] does not exist", filename)
	}

	switch decoder {
	case DecoderImage, "":
		return openImageRaster(filename)
	case DecoderGDAL:
		return openGDALRaster(filename)
	default:
		return nil, fmt.Errorf("unknown raster decoder [%s], expected '%s' or '%s'", decoder, DecoderImage, DecoderGDAL)
	}
}

// imageRaster adapts a decoded image.Image. Color values arrive through the
// color.Color interface scaled to 16 bit, so 8-bit and 16-bit channels
// normalize uniformly against the 16-bit maximum.
type imageRaster struct {
	img image.Image
}

/*
newImageRaster wraps an already decoded image.
*/
func newImageRaster(img image.Image) *imageRaster {
	return &imageRaster{img: img}
}

/*
openImageRaster decodes a raster file with the registered pure Go image
decoders (PNG, TIFF).
*/
func openImageRaster(filename string) (*imageRaster, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("error [%w] at os.Open(), file = [%s]", err, filename)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("error [%w] at image.Decode(), file = [%s]", err, filename)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("decoded image [%s] (format %s) is empty", filename, format)
	}

	return newImageRaster(img), nil
}

func (r *imageRaster) Dimensions() (uint32, uint32) {
	bounds := r.img.Bounds()
	return uint32(bounds.Dx()), uint32(bounds.Dy())
}

func (r *imageRaster) Fraction(x, y uint32) float32 {
	bounds := r.img.Bounds()
	// first channel only; 8-bit sources are scaled by 0x101, so the ratio is
	// exactly value/255 for them and value/65535 for 16-bit sources
	red, _, _, _ := r.img.At(bounds.Min.X+int(x), bounds.Min.Y+int(y)).RGBA()
	return float32(red) / 65535.0
}

// gdalRaster holds the first band of a GDAL dataset, already normalized.
type gdalRaster struct {
	width     uint32
	height    uint32
	fractions []float32
}

/*
openGDALRaster opens a raster file via GDAL and reads the complete first band
into memory, normalizing Byte and UInt16 samples to fractions of the channel
maximum. godal.RegisterAll() must have been called before.
*/
func openGDALRaster(filename string) (*gdalRaster, error) {
	dataset, err := godal.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("error [%w] at godal.Open(), file = [%s]", err, filename)
	}
	defer dataset.Close()

	structure := dataset.Structure()
	width := structure.SizeX
	height := structure.SizeY
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("raster [%s] has invalid size %dx%d", filename, width, height)
	}

	bands := dataset.Bands()
	if len(bands) == 0 {
		return nil, fmt.Errorf("no raster bands found in file [%s]", filename)
	}
	band := bands[0]
	bandStructure := band.Structure()

	// read the complete first band; normalize against the data type maximum
	fractions := make([]float32, width*height)

	switch bandStructure.DataType {
	case godal.Byte:
		buffer := make([]byte, width*height)
		if err = band.Read(0, 0, buffer, width, height); err != nil {
			return nil, fmt.Errorf("error [%w] reading band 1 of [%s] as Byte", err, filename)
		}
		for i, value := range buffer {
			fractions[i] = float32(value) / 255.0
		}
	case godal.UInt16:
		buffer := make([]uint16, width*height)
		if err = band.Read(0, 0, buffer, width, height); err != nil {
			return nil, fmt.Errorf("error [%w] reading band 1 of [%s] as UInt16", err, filename)
		}
		for i, value := range buffer {
			fractions[i] = float32(value) / 65535.0
		}
	default:
		return nil, fmt.Errorf("unsupported data type '%s' for band 1 in file [%s], expected Byte or UInt16", bandStructure.DataType, filename)
	}

	return &gdalRaster{
		width:     uint32(width),
		height:    uint32(height),
		fractions: fractions,
	}, nil
}

func (r *gdalRaster) Dimensions() (uint32, uint32) {
	return r.width, r.height
}

func (r *gdalRaster) Fraction(x, y uint32) float32 {
	return r.fractions[y*r.width+x]
}
