package http

import (
	"net/http"

	"membership_webapp/internal/http/middleware"

	"github.com/rs/cors"
)

// WithCORS wraps h with the API's CORS policy. Auth travels in the
// Authorization header, so credentialed requests are not allowed.
func WithCORS(h http.Handler, origins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", middleware.HeaderRequestID},
	}).Handler(h)
}
