package error

import (
	"net/http"

	"github.com/goccy/go-json"
)

type ErrorMessage struct {
	Error string `json:"error"`
}

func ReturnJSONError(rw http.ResponseWriter, errorMessage string, statusCode int) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(statusCode)

	errorResponse := ErrorMessage{Error: errorMessage}
	jsonResponse, err := json.Marshal(errorResponse)
	if err != nil {
		http.Error(rw, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	rw.Write(jsonResponse)
}

// ErrorDetails is the envelope for failures carrying structure beyond a
// message: field errors, warnings, or the conflicting bookings themselves.
type ErrorDetails struct {
	Error     string   `json:"error"`
	Errors    []string `json:"errors,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
	Conflicts any      `json:"conflicts,omitempty"`
}

func ReturnJSONDetails(rw http.ResponseWriter, details ErrorDetails, statusCode int) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(statusCode)

	jsonResponse, err := json.Marshal(details)
	if err != nil {
		http.Error(rw, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	rw.Write(jsonResponse)
}
