// Package middleware provides HTTP middleware for request validation and processing.
package middleware

import (
	"context"
	"net/http"

	"revenue-split-engine/internal/api/response"
)

type contextKey string

// callerKey stores the authenticated caller address in the request context.
const callerKey contextKey = "caller"

// Authenticator resolves an API key to a caller address.
// Implemented by service.AccountService.
type Authenticator interface {
	Authenticate(apiKey string) (string, bool)
}

// Identity authenticates the X-API-Key header and stores the resolved
// caller address in the request context. State-mutating routes use this;
// read-only routes do not.
func Identity(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get("X-API-Key")
			if apiKey == "" {
				response.RespondError(w, http.StatusUnauthorized, "authentication required", "Missing API key")
				return
			}

			address, ok := auth.Authenticate(apiKey)
			if !ok {
				response.RespondError(w, http.StatusUnauthorized, "authentication required", "Invalid API key")
				return
			}

			next.ServeHTTP(w, WithCaller(r, address))
		})
	}
}

// WithCaller returns a copy of the request carrying the caller address.
// The identity middleware uses it; handler tests use it to skip the
// authentication step.
func WithCaller(r *http.Request, address string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), callerKey, address))
}

// Caller returns the authenticated caller address from the request context,
// or an empty string when the route carries no identity.
func Caller(r *http.Request) string {
	address, _ := r.Context().Value(callerKey).(string)
	return address
}
