package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error is the only shape ever serialized to the client on failure.
type Error struct {
	// StatusCode is the HTTP status code of the failure.
	StatusCode int `json:"status_code"`

	// Message is a human-readable description safe to show to clients.
	Message string `json:"message"`
}

// Error implements the error interface.
func (e Error) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// WriteError serializes an Error as the response body with its status code.
func WriteError(w http.ResponseWriter, apiErr Error) {
	WriteJSON(w, apiErr.StatusCode, apiErr)
}

// WriteJSON renders v as a JSON response with the given status code.
// The body is encoded up front so Content-Length is always set, which the
// compression middleware relies on for its size predicate.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"status_code":500,"message":"internal server error"}`)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", fmt.Sprint(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
