// Package httpjson holds the JSON request/response helpers shared by the HTTP
// handlers.
package httpjson

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Decode reads the request body into dest, rejecting unknown fields.
func Decode(r *http.Request, dest any) error {
	if r.Body == nil {
		return errors.New("request body required")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

// Respond writes payload as JSON with the given status. A nil payload writes
// the status line only.
func Respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// RespondError writes {"error": ...} with the given status.
func RespondError(w http.ResponseWriter, status int, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	Respond(w, status, map[string]any{"error": err.Error()})
}
