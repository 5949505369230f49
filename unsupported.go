package main

import (
	"fmt"
	"log/slog"
	"net/http"
)

/*
unsupportedRequest handles 'unsupported' requests from clients.
It sends a "400 Bad Request" error message for unexpected HTTP requests.
*/
func unsupportedRequest(writer http.ResponseWriter, request *http.Request) {
	// prepare response
	writer.Header().Set("Content-Type", TextPlainMediaType)
	writer.WriteHeader(http.StatusBadRequest)
	errorMessage := "unsupported http request (e.g. route or method)"
	slog.Warn(errorMessage, "method", request.Method, "path", request.URL.Path)
	fmt.Fprint(writer, errorMessage)
}
