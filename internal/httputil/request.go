package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// maxJSONBody caps JSON request bodies. File uploads go through multipart
// with their own limit.
const maxJSONBody = 1 << 20 // 1MB

// ParseJSON decodes JSON from the request body into dest, with a body
// size cap so oversized payloads fail with 413 instead of exhausting
// memory.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// QueryInt reads an integer query parameter, returning 0 when absent or
// malformed.
func QueryInt(r *http.Request, name string) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

// OptionalQuery reads a string query parameter as a nullable value:
// absent or empty yields nil.
func OptionalQuery(r *http.Request, name string) *string {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	return &raw
}
