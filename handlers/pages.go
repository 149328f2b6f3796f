package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/icco/moodpick/lib/middleware"
	"github.com/icco/moodpick/lib/mood"
	"github.com/icco/moodpick/lib/selection"
	"github.com/icco/moodpick/models"
)

// Finder is the catalog as seen by the HTML pages.
type Finder interface {
	selection.Source
	Providers(ctx context.Context, movieID int) (*models.WatchProviders, error)
}

type homeData struct {
	Moods   []mood.Mood
	Default mood.Mood
}

type moodData struct {
	Mood   mood.Mood
	Moods  []mood.Mood
	Movies selection.MovieSelection
	Books  selection.BookSelection
}

type providersData struct {
	MovieID   int
	Title     string
	Country   string
	Countries []selection.Country
	Providers models.CountryProviders
	Error     string
}

func HandleHome() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, "home.html", homeData{
			Moods:   mood.All(),
			Default: mood.MustLookup(mood.Default),
		})
	}
}

// HandleMood renders movies and books for /mood/{mood}. ?refresh=1 draws a
// new movie page away from ?page=. ?books=1 redraws only the books and keeps
// the movies at ?page= and ?sort=.
func HandleMood(src Finder, planner *selection.Planner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := mood.Lookup(chi.URLParam(r, "mood"))
		if !ok {
			renderError(w, r, "Unknown mood. Pick one from the home page.", http.StatusNotFound)
			return
		}

		query := r.URL.Query()
		refresh := query.Get("refresh") == "1"
		booksOnly := query.Get("books") == "1"
		current, _ := strconv.Atoi(query.Get("page"))

		data := moodData{Mood: m, Moods: mood.All()}
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			if booksOnly {
				data.Movies = planner.KeepMovies(r.Context(), src, m.GenreID, current, query.Get("sort"))
				return
			}
			data.Movies = planner.SelectMovies(r.Context(), src, m.GenreID, current, refresh)
		}()
		go func() {
			defer wg.Done()
			data.Books = planner.SelectBooks(r.Context(), src, m.BookSubject)
		}()
		wg.Wait()

		logger := middleware.LoggerFrom(r.Context())
		if data.Movies.Err != nil {
			logger.WarnContext(r.Context(), "No movies to show", slog.String("mood", m.Key), slog.Any("error", data.Movies.Err))
		}
		if data.Books.Err != nil {
			logger.WarnContext(r.Context(), "No books to show", slog.String("mood", m.Key), slog.Any("error", data.Books.Err))
		}

		render(w, r, "mood.html", data)
	}
}

// HandleMovieProviders renders where a movie can be watched in one country.
func HandleMovieProviders(src Finder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		movieID, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil || movieID <= 0 {
			renderError(w, r, "Invalid movie id.", http.StatusBadRequest)
			return
		}

		country := r.URL.Query().Get("country")
		if country == "" {
			country = selection.DefaultCountry
		}
		data := providersData{
			MovieID:   movieID,
			Title:     r.URL.Query().Get("title"),
			Country:   country,
			Countries: selection.Countries,
		}

		wp, err := src.Providers(r.Context(), movieID)
		if err != nil {
			middleware.LoggerFrom(r.Context()).ErrorContext(r.Context(), "Failed to fetch providers",
				slog.Int("movie_id", movieID), slog.Any("error", err))
			data.Error = "Erreur lors de la récupération des fournisseurs"
			render(w, r, "providers.html", data)
			return
		}

		if cp, err := selection.ProvidersFor(wp, country); err != nil {
			data.Error = "Aucun fournisseur disponible pour ce film au " + selection.CountryName(country)
		} else {
			data.Providers = cp
		}
		render(w, r, "providers.html", data)
	}
}
