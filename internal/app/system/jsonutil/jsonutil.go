// Package jsonutil provides helper functions for JSON API responses.
//
// Success responses carry {"success": true, ...}; failures carry
// {"error": message} with the status code derived from the error's kind.
package jsonutil

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/folio/internal/app/system/apperr"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// OK writes a 200 response with the success envelope. Extra fields from
// payload are merged beside "success".
//
// Usage:
//
//	jsonutil.OK(w, map[string]any{"post": post})
//	→ {"success": true, "post": {...}}
func OK(w http.ResponseWriter, payload map[string]any) {
	JSON(w, http.StatusOK, envelope(payload))
}

// Created writes a 201 response with the success envelope.
func Created(w http.ResponseWriter, payload map[string]any) {
	JSON(w, http.StatusCreated, envelope(payload))
}

// NoContent writes a 204 No Content response (no body).
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func envelope(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload)+1)
	out["success"] = true
	for k, v := range payload {
		out[k] = v
	}
	return out
}

// Error writes an error response with the given status code.
// The response body is {"error": message}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// FromError writes the response for a classified application error: the
// status comes from the error's kind and the body carries its client-safe
// message. Unclassified errors become a generic 500; log those separately.
func FromError(w http.ResponseWriter, err error) {
	Error(w, apperr.Status(err), apperr.Message(err))
}

// BadRequest writes a 400 Bad Request error response.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// Unauthorized writes a 401 Unauthorized error response.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

// Forbidden writes a 403 Forbidden error response.
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message)
}

// NotFound writes a 404 Not Found error response.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// InternalError writes a 500 Internal Server Error response.
// Do not expose internal details to clients - log the actual error separately.
func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, message)
}

// ValidationError writes a 400 Bad Request response with field-level errors.
func ValidationError(w http.ResponseWriter, errors map[string]string) {
	JSON(w, http.StatusBadRequest, map[string]any{
		"error":  "validation failed",
		"fields": errors,
	})
}

// Decode reads and decodes JSON from the request body into v.
// Returns an error that can be passed to BadRequest if decoding fails.
func Decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
