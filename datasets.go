package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
)

/*
datasetsRequest handles 'datasets request' from client. It returns the
catalog of all known DEM datasets.
*/
func datasetsRequest(writer http.ResponseWriter, _ *http.Request) {
	// statistics
	atomic.AddUint64(&DatasetsRequests, 1)

	datasetsResponse := DatasetsResponse{Type: TypeDatasetsResponse}
	datasetsResponse.Attributes.Datasets = datasetCatalog()

	// CORS: allow requests from any origin
	writer.Header().Set("Access-Control-Allow-Origin", "*")
	// CORS: allowed methods
	writer.Header().Set("Access-Control-Allow-Methods", "GET")
	// CORS: allowed headers
	writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	// marshal response
	body, err := json.MarshalIndent(datasetsResponse, "", "  ")
	if err != nil {
		slog.Error("error marshaling datasets response", "error", err)
		http.Error(writer, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// send response
	writer.Header().Set("Content-Type", JSONAPIMediaType)
	writer.WriteHeader(http.StatusOK)
	_, err = writer.Write(body)
	if err != nil {
		slog.Error("error writing HTTP response body", "error", err, "body length", len(body),
			fmt.Sprintf("body (limited to first %d bytes)", 1024), body[:min(len(body), 1024)])
	}
}
