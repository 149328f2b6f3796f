package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/icco/moodpick/lib/metrics"
	"github.com/icco/moodpick/lib/middleware"
	"github.com/icco/moodpick/lib/tmdb"
	"github.com/icco/moodpick/lib/upstream"
	"github.com/icco/moodpick/lib/validation"
	"github.com/icco/moodpick/models"
)

const (
	routeMovies    = "movies"
	routeProviders = "providers"
	routeBooks     = "books"

	errConfig = "API configuration error"

	maxLoggedBody = 512
)

// Catalog is what the proxy routes need from the catalog service.
type Catalog interface {
	HasMovieCredential() bool
	Movies(ctx context.Context, q models.MovieQuery) (*models.MovieList, error)
	Providers(ctx context.Context, movieID int) (*models.WatchProviders, error)
	Books(ctx context.Context, q models.BookQuery) (*models.BookList, error)
}

type movieError struct {
	Error   string         `json:"error"`
	Results []models.Movie `json:"results"`
}

type bookError struct {
	Error string        `json:"error"`
	Items []models.Book `json:"items"`
}

// HandleMovies serves GET /api/movies?genreId=&page=&sort=.
func HandleMovies(c Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fail := func(status int, msg string) {
			respond(w, routeMovies, status, movieError{Error: msg, Results: []models.Movie{}})
		}

		q, err := validation.MovieParamsFrom(r.URL.Query()).Query()
		if err != nil {
			fail(http.StatusBadRequest, err.Error())
			return
		}
		if !c.HasMovieCredential() {
			middleware.LoggerFrom(r.Context()).ErrorContext(r.Context(), "TMDB API key is missing, set TMDB_API_KEY")
			fail(http.StatusInternalServerError, errConfig)
			return
		}

		list, err := c.Movies(r.Context(), q)
		if err != nil {
			status, msg := upstreamFailure(r.Context(), err, "TMDB", "Failed to fetch movies")
			fail(status, msg)
			return
		}
		if list.Results == nil {
			list.Results = []models.Movie{}
		}
		respond(w, routeMovies, http.StatusOK, list)
	}
}

// HandleProviders serves GET /api/movies/providers?movieId=.
func HandleProviders(c Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fail := func(status int, msg string) {
			metrics.ProxyResponses.WithLabelValues(routeProviders, strconv.Itoa(status)).Inc()
			validation.WriteError(w, errors.New(msg), status)
		}

		movieID, err := validation.ProviderParamsFrom(r.URL.Query()).MovieIDValue()
		if err != nil {
			fail(http.StatusBadRequest, err.Error())
			return
		}
		if !c.HasMovieCredential() {
			middleware.LoggerFrom(r.Context()).ErrorContext(r.Context(), "TMDB API key is missing, set TMDB_API_KEY")
			fail(http.StatusInternalServerError, errConfig)
			return
		}

		providers, err := c.Providers(r.Context(), movieID)
		if err != nil {
			status, msg := upstreamFailure(r.Context(), err, "TMDB", "Failed to fetch providers")
			fail(status, msg)
			return
		}
		respond(w, routeProviders, http.StatusOK, providers)
	}
}

// HandleBooks serves GET /api/books?subject=&maxResults=&orderBy=.
func HandleBooks(c Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fail := func(status int, msg string) {
			respond(w, routeBooks, status, bookError{Error: msg, Items: []models.Book{}})
		}

		q, err := validation.BookParamsFrom(r.URL.Query()).Query()
		if err != nil {
			fail(http.StatusBadRequest, err.Error())
			return
		}

		list, err := c.Books(r.Context(), q)
		if err != nil {
			status, msg := upstreamFailure(r.Context(), err, "Google Books", "Failed to fetch books")
			fail(status, msg)
			return
		}
		respond(w, routeBooks, http.StatusOK, list)
	}
}

// upstreamFailure maps a catalog error to the status and message relayed to
// the caller, and logs it.
func upstreamFailure(ctx context.Context, err error, upstreamName, fallback string) (int, string) {
	logger := middleware.LoggerFrom(ctx)

	var se *upstream.StatusError
	switch {
	case errors.As(err, &se):
		logger.ErrorContext(ctx, "Upstream returned an error",
			slog.String("upstream", upstreamName),
			slog.Int("status", se.StatusCode),
			slog.String("body", truncate(se.Body, maxLoggedBody)))
		return se.StatusCode, fmt.Sprintf("%s API responded with status: %d", upstreamName, se.StatusCode)
	case errors.Is(err, tmdb.ErrMissingAPIKey):
		logger.ErrorContext(ctx, "TMDB API key is missing, set TMDB_API_KEY")
		return http.StatusInternalServerError, errConfig
	case upstream.IsTransport(err):
		logger.ErrorContext(ctx, "Failed to reach upstream",
			slog.String("upstream", upstreamName),
			slog.Any("error", err))
		return http.StatusInternalServerError, fallback
	default:
		logger.ErrorContext(ctx, "Unexpected upstream failure",
			slog.String("upstream", upstreamName),
			slog.Any("error", err))
		return http.StatusInternalServerError, fallback
	}
}

func respond(w http.ResponseWriter, route string, status int, body any) {
	metrics.ProxyResponses.WithLabelValues(route, strconv.Itoa(status)).Inc()
	validation.WriteJSON(w, status, body)
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
