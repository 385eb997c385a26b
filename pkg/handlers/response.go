// Package handlers contains the HTTP surface of adlens-engine: upload intake,
// import status, flash messages, report listings and health checks.
package handlers

import (
	"encoding/json"
	"net/http"
)

// WriteJSON encodes data as the response body with the given status code and
// returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// ErrorResponse writes a machine-readable error code plus a human-readable
// message as JSON.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"error":   errorCode,
		"message": message,
	})
}
