// Package api implements HTTP handlers for the currency exchange quote service.
package api

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse carries a single opaque error message.
type ErrorResponse struct {
	Error string `json:"error" example:"The service is temporarily down for maintenance."`
}

// ValidationErrorResponse carries every validation problem found in a request.
type ValidationErrorResponse struct {
	Error []string `json:"error" example:"The 'from_currency_code'=XXX is not supported."`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
