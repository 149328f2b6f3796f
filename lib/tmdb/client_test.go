package tmdb

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/icco/moodpick/lib/upstream"
	"github.com/icco/moodpick/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, apiKey string, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	up := upstream.New("tmdb", upstream.Options{Timeout: 2 * time.Second, BreakerFailures: 5, BreakerTimeout: time.Minute}, slog.Default())
	return NewClient(apiKey, srv.URL, "fr-FR", up, slog.Default())
}

func strPtr(s string) *string { return &s }

func TestDiscoverMovies_QueryAndFilter(t *testing.T) {
	c := newTestClient(t, "k123", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/discover/movie", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "k123", q.Get("api_key"))
		assert.Equal(t, "35", q.Get("with_genres"))
		assert.Equal(t, "fr-FR", q.Get("language"))
		assert.Equal(t, "vote_average.desc", q.Get("sort_by"))
		assert.Equal(t, "7", q.Get("page"))
		assert.Equal(t, "6", q.Get("vote_average.gte"))
		assert.Equal(t, "2026-10-18", q.Get("release_date.lte"))
		_, _ = w.Write([]byte(`{
			"page": 7,
			"total_pages": 40,
			"total_results": 800,
			"results": [
				{"id": 550, "title": "Fight Club", "poster_path": "/p.jpg", "vote_average": 8.4, "release_date": "1999-10-15", "overview": "..."},
				{"id": 1, "title": "Too Low", "vote_average": 5.9, "release_date": "2001-01-01"},
				{"id": 2, "title": "Future", "vote_average": 7.1, "release_date": "2027-01-01"},
				{"id": 3, "title": "Today", "vote_average": 6.0, "release_date": "2026-10-18"}
			]
		}`))
	})

	list, err := c.DiscoverMovies(context.Background(), models.MovieQuery{GenreID: 35, Page: 7, Sort: "vote_average.desc"}, "2026-10-18")
	require.NoError(t, err)
	assert.Equal(t, 7, list.Page)
	assert.Equal(t, 40, list.TotalPages)
	require.Len(t, list.Results, 2)
	assert.Equal(t, 550, list.Results[0].ID)
	assert.Equal(t, "/p.jpg", *list.Results[0].PosterPath)
	assert.Equal(t, 3, list.Results[1].ID)
}

func TestDiscoverMovies_MissingKeyNoCall(t *testing.T) {
	called := false
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := c.DiscoverMovies(context.Background(), models.MovieQuery{GenreID: 35, Page: 1, Sort: "popularity.desc"}, "2026-10-18")
	require.ErrorIs(t, err, ErrMissingAPIKey)
	assert.False(t, called)
}

func TestDiscoverMovies_StatusErrorWrapped(t *testing.T) {
	c := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.DiscoverMovies(context.Background(), models.MovieQuery{GenreID: 35, Page: 1, Sort: "popularity.desc"}, "2026-10-18")
	var se *upstream.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
}

func TestWatchProviders(t *testing.T) {
	c := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/550/watch/providers", r.URL.Path)
		assert.Equal(t, "k", r.URL.Query().Get("api_key"))
		_, _ = w.Write([]byte(`{"id":550,"results":{"CA":{"link":"https://tmdb/ca","flatrate":[{"provider_id":8,"provider_name":"Netflix","logo_path":"/n.jpg"}]}}}`))
	})

	wp, err := c.WatchProviders(context.Background(), 550)
	require.NoError(t, err)
	assert.Equal(t, 550, wp.ID)
	require.Contains(t, wp.Results, "CA")
	assert.Equal(t, "Netflix", wp.Results["CA"].Flatrate[0].ProviderName)
}

func TestWatchProviders_EmptyResults(t *testing.T) {
	c := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1}`))
	})

	wp, err := c.WatchProviders(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, wp.Results)
	assert.Empty(t, wp.Results)
}

func TestFilterReleased(t *testing.T) {
	movies := []models.Movie{
		{ID: 1, VoteAverage: 6, ReleaseDate: "2026"},
		{ID: 2, VoteAverage: 9, ReleaseDate: ""},
		{ID: 3, VoteAverage: 9, ReleaseDate: "2026-10-19"},
		{ID: 4, VoteAverage: 5.99, ReleaseDate: "1990-01-01"},
	}
	got := FilterReleased(movies, "2026-10-18")
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 2, got[1].ID)
}

func TestGetPosterURL(t *testing.T) {
	assert.Equal(t, "", GetPosterURL(nil))
	assert.Equal(t, "", GetPosterURL(strPtr("")))
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/x.jpg", GetPosterURL(strPtr("/x.jpg")))
	assert.Equal(t, "https://image.tmdb.org/t/p/w92/n.jpg", GetLogoURL("/n.jpg"))
}
