// Package shared centralizes JSON encoding and domain error translation for
// HTTP handlers so every endpoint returns the same envelopes.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "campusconnect/pkg/domain-errors"
)

// WriteJSON encodes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the structured error envelope
// {"error": code, "error_description": message}. Untyped errors become 500
// internal without leaking detail.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(dErrors.ToHTTPStatus(code))
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             string(code),
		"error_description": dErrors.MessageOf(err),
	})
}

// DecodeJSON decodes a request body into dst, returning a bad-request domain
// error on malformed input.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}
