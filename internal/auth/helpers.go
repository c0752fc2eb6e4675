package auth

import (
	"net/http"
	"strings"
)

// MutationTokenHeader carries the per-session mutation token on state
// changing requests.
const MutationTokenHeader = "X-Homeboard-Token"

// ExtractAPIKey extracts the API key from the Authorization header.
// Expects "Bearer <api_key>" format.
func ExtractAPIKey(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrMissingAPIKey
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", ErrInvalidAPIKey
	}
	return parts[1], nil
}

// ExtractMutationToken returns the mutation token header value, or "".
func ExtractMutationToken(r *http.Request) string {
	return r.Header.Get(MutationTokenHeader)
}
