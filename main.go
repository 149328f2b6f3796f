package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/icco/moodpick/handlers"
	"github.com/icco/moodpick/lib/books"
	"github.com/icco/moodpick/lib/catalog"
	"github.com/icco/moodpick/lib/config"
	"github.com/icco/moodpick/lib/health"
	"github.com/icco/moodpick/lib/middleware"
	"github.com/icco/moodpick/lib/selection"
	"github.com/icco/moodpick/lib/tmdb"
	"github.com/icco/moodpick/lib/upstream"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	logger := setupLogger(cfg.Env)
	slog.SetDefault(logger)
	logger.Info("Starting moodpick", slog.String("env", cfg.Env))

	svc := newCatalog(cfg, logger)
	if !svc.HasMovieCredential() {
		logger.Warn("TMDB API key is missing; movie routes will answer 500 until TMDB_API_KEY is set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           newRouter(cfg, svc, logger),
		ReadHeaderTimeout: 5 * time.Second,
		// Outbound calls are bounded by the upstream timeout; leave room to answer.
		WriteTimeout: cfg.Upstream.Timeout + 10*time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown requested")
	case err := <-serveErr:
		if err != nil {
			logger.Error("Server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case config.EnvDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case config.EnvProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

func newCatalog(cfg *config.Config, logger *slog.Logger) *catalog.Service {
	opts := upstream.Options{
		Timeout:         cfg.Upstream.Timeout,
		BreakerFailures: cfg.Upstream.BreakerFailures,
		BreakerTimeout:  cfg.Upstream.BreakerTimeout,
	}
	movies := tmdb.NewClient(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language,
		upstream.New("tmdb", opts, logger), logger)
	bks := books.NewClient(cfg.Books.APIKey, cfg.Books.BaseURL, cfg.Books.LangRestrict,
		upstream.New("google-books", opts, logger), logger)
	return catalog.New(movies, bks)
}

func newRouter(cfg *config.Config, svc *catalog.Service, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(chimw.Recoverer)

	upstreams := make([]health.Upstream, 0, 2)
	for _, u := range svc.Upstreams() {
		upstreams = append(upstreams, u)
	}
	r.Get("/health", health.Check(upstreams, map[string]bool{"tmdb": svc.HasMovieCredential()}))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
		r.Use(middleware.RateLimit(cfg.RateLimit.Disabled, cfg.RateLimit.Requests, cfg.RateLimit.Window))
		r.Get("/movies", handlers.HandleMovies(svc))
		r.Get("/movies/providers", handlers.HandleProviders(svc))
		r.Get("/books", handlers.HandleBooks(svc))
	})

	planner := selection.NewPlanner(nil, nil, logger)
	r.Get("/", handlers.HandleHome())
	r.Get("/mood/{mood}", handlers.HandleMood(svc, planner))
	r.Get("/movie/{id}/providers", handlers.HandleMovieProviders(svc))
	r.NotFound(handlers.HandleNotFound())

	return r
}
