package middleware

import (
	"github.com/go-chi/cors"
)

// NewCORS creates the CORS middleware with the given allowed origins.
// Authentication rides in the X-API-Key header rather than cookies, so
// credentialed requests are not allowed.
func NewCORS(allowedOrigins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{
			"Content-Type",
			"X-API-Key",
		},
		ExposedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	})
}
