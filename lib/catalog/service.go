// Package catalog ties the movie and book upstreams together behind one
// service used by the proxy routes and the HTML pages.
package catalog

import (
	"context"
	"time"

	"github.com/icco/moodpick/lib/books"
	"github.com/icco/moodpick/lib/tmdb"
	"github.com/icco/moodpick/lib/upstream"
	"github.com/icco/moodpick/models"
)

const dateLayout = "2006-01-02"

type Service struct {
	movies *tmdb.Client
	books  *books.Client
	now    func() time.Time
}

func New(movies *tmdb.Client, books *books.Client) *Service {
	return &Service{
		movies: movies,
		books:  books,
		now:    time.Now,
	}
}

// WithClock replaces the clock used to compute today's date.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Today is the server date in YYYY-MM-DD.
func (s *Service) Today() string {
	return s.now().Format(dateLayout)
}

// HasMovieCredential reports whether the movie upstream can be called at all.
func (s *Service) HasMovieCredential() bool {
	return s.movies.HasCredential()
}

func (s *Service) Movies(ctx context.Context, q models.MovieQuery) (*models.MovieList, error) {
	return s.movies.DiscoverMovies(ctx, q, s.Today())
}

func (s *Service) Providers(ctx context.Context, movieID int) (*models.WatchProviders, error) {
	return s.movies.WatchProviders(ctx, movieID)
}

func (s *Service) Books(ctx context.Context, q models.BookQuery) (*models.BookList, error) {
	return s.books.SearchBySubject(ctx, q)
}

// Upstreams lists the transports behind the service.
func (s *Service) Upstreams() []*upstream.Client {
	return []*upstream.Client{s.movies.Upstream(), s.books.Upstream()}
}
