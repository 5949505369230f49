package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
)

// sample count limits for one elevation profile
const (
	MinProfileSamples = 2
	MaxProfileSamples = 8192
)

/*
elevationprofileRequest handles 'elevationprofile request' from client. It
accepts start and end points in lon/lat coordinates (degrees) and samples an
evenly spaced elevation profile along the straight segment between them.
*/
func elevationprofileRequest(writer http.ResponseWriter, request *http.Request) {
	var profileResponse = ElevationProfileResponse{Type: TypeElevationProfileResponse, ID: "unknown"}
	profileResponse.Attributes.IsError = true

	// statistics
	atomic.AddUint64(&ElevationProfileRequests, 1)

	// limit overall request body size
	request.Body = http.MaxBytesReader(writer, request.Body, MaxElevationProfileRequestBodySize)

	// read request
	bodyData, err := io.ReadAll(request.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			slog.Warn("elevationprofile request: request body too large", "limit", maxBytesErr.Limit, "ID", "unknown")
			profileResponse.Attributes.Error.Code = "3000"
			profileResponse.Attributes.Error.Title = "request body too large"
			profileResponse.Attributes.Error.Detail = fmt.Sprintf("request body exceeds limit of %d bytes", maxBytesErr.Limit)
			buildElevationProfileResponse(writer, http.StatusRequestEntityTooLarge, profileResponse)
		} else {
			slog.Warn("elevationprofile request: error reading request body", "error", err, "ID", "unknown")
			profileResponse.Attributes.Error.Code = "3020"
			profileResponse.Attributes.Error.Title = "error reading request body"
			profileResponse.Attributes.Error.Detail = err.Error()
			buildElevationProfileResponse(writer, http.StatusBadRequest, profileResponse)
		}
		return
	}

	// unmarshal request
	profileRequest := ElevationProfileRequest{}
	err = json.Unmarshal(bodyData, &profileRequest)
	if err != nil {
		slog.Warn("elevationprofile request: error unmarshaling request body", "error", err, "ID", "unknown")
		profileResponse.Attributes.Error.Code = "3040"
		profileResponse.Attributes.Error.Title = "error unmarshaling request body"
		profileResponse.Attributes.Error.Detail = err.Error()
		buildElevationProfileResponse(writer, http.StatusBadRequest, profileResponse)
		return
	}

	// copy request parameters into response
	profileResponse.ID = profileRequest.ID

	// verify request data
	err = verifyElevationProfileRequestData(request, profileRequest)
	if err != nil {
		slog.Warn("elevationprofile request: error verifying request data", "error", err, "ID", profileRequest.ID)
		profileResponse.Attributes.Error.Code = "3060"
		profileResponse.Attributes.Error.Title = "error verifying request data"
		profileResponse.Attributes.Error.Detail = err.Error()
		buildElevationProfileResponse(writer, http.StatusBadRequest, profileResponse)
		return
	}

	// sample evenly spaced points along the segment (linear in lon/lat, which
	// matches the equirectangular mosaic mapping)
	attributes := profileRequest.Attributes
	points := make([]ProfilePoint, 0, attributes.Samples)
	for i := 0; i < attributes.Samples; i++ {
		t := float64(i) / float64(attributes.Samples-1)
		longitude := attributes.StartLongitude + t*(attributes.EndLongitude-attributes.StartLongitude)
		latitude := attributes.StartLatitude + t*(attributes.EndLatitude-attributes.StartLatitude)

		elevation, _, err := store.elevationForPoint(longitude, latitude)
		if err != nil {
			slog.Debug("elevationprofile request: error getting elevation for point", "error", err,
				"longitude", longitude, "latitude", latitude, "ID", profileRequest.ID)
			profileResponse.Attributes.Error.Code = "3080"
			profileResponse.Attributes.Error.Title = "error getting elevation"
			profileResponse.Attributes.Error.Detail = err.Error()
			buildElevationProfileResponse(writer, http.StatusBadRequest, profileResponse)
			return
		}

		points = append(points, ProfilePoint{Longitude: longitude, Latitude: latitude, Elevation: elevation})
	}

	// success response
	profileResponse.Attributes.Dataset = store.entry.Name
	profileResponse.Attributes.Attribution = store.entry.Attribution
	profileResponse.Attributes.Points = points
	profileResponse.Attributes.IsError = false
	buildElevationProfileResponse(writer, http.StatusOK, profileResponse)
}

/*
verifyElevationProfileRequestData verifies 'elevationprofile' request data.
It performs several checks on the request data to ensure its validity.
*/
func verifyElevationProfileRequestData(request *http.Request, profileRequest ElevationProfileRequest) error {
	// verify HTTP header
	contentType := request.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(contentType), "application/json") {
		return fmt.Errorf("unexpected or missing HTTP header field Content-Type, value = [%s], expected 'application/json'", contentType)
	}

	// verify HTTP header
	accept := request.Header.Get("Accept")
	if !strings.HasPrefix(strings.ToLower(accept), "application/json") {
		return fmt.Errorf("unexpected or missing HTTP header field Accept, value = [%s], expected 'application/json'", accept)
	}

	// verify Type
	if profileRequest.Type != TypeElevationProfileRequest {
		return fmt.Errorf("unexpected request Type [%v]", profileRequest.Type)
	}

	// verify ID
	if len(profileRequest.ID) > 1024 {
		return errors.New("ID must be 0-1024 characters long")
	}

	// verify coordinates
	attributes := profileRequest.Attributes
	for _, latitude := range []float64{attributes.StartLatitude, attributes.EndLatitude} {
		if latitude > 90.0 || latitude < -90.0 {
			return errors.New("latitude must be within [-90, 90] degrees")
		}
	}
	for _, longitude := range []float64{attributes.StartLongitude, attributes.EndLongitude} {
		if longitude > 180.0 || longitude < -180.0 {
			return errors.New("longitude must be within [-180, 180] degrees")
		}
	}

	// verify sample count
	if attributes.Samples < MinProfileSamples || attributes.Samples > MaxProfileSamples {
		return fmt.Errorf("Samples must be within [%d, %d]", MinProfileSamples, MaxProfileSamples)
	}

	return nil
}

/*
buildElevationProfileResponse builds HTTP responses with specified status and body.
*/
func buildElevationProfileResponse(writer http.ResponseWriter, httpStatus int, profileResponse ElevationProfileResponse) {
	// log limit length of body (the point list can be large)
	maxBodyLength := 1024

	// CORS: allow requests from any origin
	writer.Header().Set("Access-Control-Allow-Origin", "*")
	// CORS: allowed methods
	writer.Header().Set("Access-Control-Allow-Methods", "POST")
	// CORS: allowed headers
	writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	// marshal response
	body, err := json.MarshalIndent(profileResponse, "", "  ")
	if err != nil {
		slog.Error("error marshaling elevationprofile response", "error", err, "body length", len(body),
			fmt.Sprintf("body (limited to first %d bytes)", maxBodyLength), body[:min(len(body), maxBodyLength)])
		http.Error(writer, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// send response
	writer.Header().Set("Content-Type", JSONAPIMediaType)
	writer.WriteHeader(httpStatus)
	_, err = writer.Write(body)
	if err != nil {
		slog.Error("error writing HTTP response body", "error", err, "body length", len(body),
			fmt.Sprintf("body (limited to first %d bytes)", maxBodyLength), body[:min(len(body), maxBodyLength)])
	}
}
