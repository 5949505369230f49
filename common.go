package main

import (
	"errors"
	"os"
)

// --------------------------------------------------------------------------------
// Constants.
// --------------------------------------------------------------------------------

// HTTP Accept headers
const (
	JSONAPIMediaType   = "application/json; charset=utf-8"
	TextPlainMediaType = "text/html; charset=utf-8"
)

// JSON API types
const (
	TypePointRequest             = "PointRequest"
	TypePointResponse            = "PointResponse"
	TypeElevationProfileRequest  = "ElevationProfileRequest"
	TypeElevationProfileResponse = "ElevationProfileResponse"
	TypeGPXRequest               = "GPXRequest"
	TypeGPXResponse              = "GPXResponse"
	TypeDatasetsResponse         = "DatasetsResponse"
)

// request body limits (in bytes, for security reasons)
const (
	MaxPointRequestBodySize            = 4 * 1024
	MaxElevationProfileRequestBodySize = 16 * 1024
	MaxGpxRequestBodySize              = 24 * 1024 * 1024
)

// core error kinds
var (
	// ErrDimensionMismatch: the decoded raster does not match the configured profile.
	ErrDimensionMismatch = errors.New("raster dimensions do not match profile dimensions")
	// ErrInvalidChunkSize: requested chunk dimensions are zero.
	ErrInvalidChunkSize = errors.New("chunk dimensions must be positive")
	// ErrIndexOutOfBounds: exact pixel lookup outside the chunk grid.
	ErrIndexOutOfBounds = errors.New("pixel coordinates outside chunk bounds")
	// ErrCorruptChunk: loaded chunk whose grid length does not match its dimensions.
	ErrCorruptChunk = errors.New("chunk grid length does not match chunk dimensions")
)

// ErrorObject represents error details.
type ErrorObject struct {
	Code   string
	Title  string
	Detail string
}

// --------------------------------------------------------------------------------
// Request  : Client -> PointRequest  -> Service
// Response : Client <- PointResponse <- Service
// --------------------------------------------------------------------------------

// PointRequest represents lon/lat coordinates (degrees) for point request.
type PointRequest struct {
	Type       string
	ID         string
	Attributes struct {
		Longitude float64
		Latitude  float64
	}
}

// PointResponse represents elevation for point response.
type PointResponse struct {
	Type       string
	ID         string
	Attributes struct {
		Longitude   float64
		Latitude    float64
		Elevation   float64
		Dataset     string
		Attribution string
		ChunkIndex  string
		IsError     bool
		Error       ErrorObject
	}
}

// --------------------------------------------------------------------------------
// Request  : Client -> ElevationProfileRequest  -> Service
// Response : Client <- ElevationProfileResponse <- Service
// --------------------------------------------------------------------------------

// ElevationProfileRequest represents a start/end segment (degrees) for profile request.
type ElevationProfileRequest struct {
	Type       string
	ID         string
	Attributes struct {
		StartLongitude float64
		StartLatitude  float64
		EndLongitude   float64
		EndLatitude    float64
		Samples        int
	}
}

// ProfilePoint represents one sampled point of an elevation profile.
type ProfilePoint struct {
	Longitude float64
	Latitude  float64
	Elevation float64
}

// ElevationProfileResponse represents sampled points for profile response.
type ElevationProfileResponse struct {
	Type       string
	ID         string
	Attributes struct {
		Dataset     string
		Attribution string
		Points      []ProfilePoint
		IsError     bool
		Error       ErrorObject
	}
}

// --------------------------------------------------------------------------------
// Request  : Client -> GPXRequest  -> Service
// Response : Client <- GPXResponse <- Service
// --------------------------------------------------------------------------------

// GPXRequest represents GPX data for GPX request.
type GPXRequest struct {
	Type       string
	ID         string
	Attributes struct {
		GPXData string // Base64 encoded GPX XML string
	}
}

// GPXResponse represents modified GPX data for GPX response.
type GPXResponse struct {
	Type       string
	ID         string
	Attributes struct {
		GPXData     string // Base64 encoded GPX XML string
		GPXPoints   int
		DEMPoints   int
		Attribution string
		IsError     bool
		Error       ErrorObject
	}
}

// --------------------------------------------------------------------------------
// Response : Client <- DatasetsResponse <- Service
// --------------------------------------------------------------------------------

// DatasetsResponse represents the dataset catalog for datasets response.
type DatasetsResponse struct {
	Type       string
	Attributes struct {
		Datasets []DatasetEntry
	}
}

/*
FileExists checks if a file already exists.
It returns true if the file exists, and false otherwise.
*/
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	// check if it's actually a file and not a directory
	return !info.IsDir()
}
