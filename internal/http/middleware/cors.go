package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/tuanvumaihuynh/bipagem/pkg/correlationid"
)

// Cors lets the catalog front-end, served from another origin, call the API
// and read the download filename of exports.
func Cors() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", correlationid.Header, "traceparent", "tracestate"},
		ExposedHeaders:   []string{"Content-Disposition", correlationid.Header},
		AllowCredentials: false,
		MaxAge:           300,
	})
}
