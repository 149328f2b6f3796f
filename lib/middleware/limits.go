package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/icco/moodpick/lib/validation"
)

var errTooManyRequests = errors.New("Too many requests")

// CORS allows cross-origin GETs from origins. With no origins configured the
// routes stay same-origin only.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return passthrough
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// RateLimit limits each client IP to requests per window. Rejections use the
// proxy's {"error": ...} body.
func RateLimit(disabled bool, requests int, window time.Duration) func(http.Handler) http.Handler {
	if disabled {
		return passthrough
	}
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			validation.WriteError(w, errTooManyRequests, http.StatusTooManyRequests)
		}),
	)
}

func passthrough(next http.Handler) http.Handler { return next }
