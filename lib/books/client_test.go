package books

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
	up := upstream.New("google-books", upstream.Options{Timeout: 2 * time.Second, BreakerTimeout: time.Minute}, slog.Default())
	return NewClient(apiKey, srv.URL, "fr", up, slog.Default())
}

const volumesJSON = `{
	"kind": "books#volumes",
	"totalItems": 2,
	"items": [
		{
			"id": "zyTCAlFPjgYC",
			"volumeInfo": {
				"title": "Le Petit Prince",
				"authors": ["Antoine de Saint-Exupéry"],
				"publishedDate": "1943",
				"description": "Un conte.",
				"categories": ["Fiction"],
				"imageLinks": {"smallThumbnail": "http://books.google.com/s.jpg", "thumbnail": "http://books.google.com/t.jpg"},
				"averageRating": 4.5,
				"ratingsCount": 120,
				"pageCount": 96,
				"language": "fr",
				"publisher": "Gallimard",
				"industryIdentifiers": [{"type": "ISBN_13", "identifier": "9782070612758"}],
				"infoLink": "https://books.google.com/info",
				"previewLink": "https://books.google.com/preview"
			}
		},
		{"id": "abc", "volumeInfo": {"title": "Sans couverture"}}
	]
}`

func TestSearchBySubject_Reshapes(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/volumes", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "subject:humor", q.Get("q"))
		assert.Equal(t, "15", q.Get("maxResults"))
		assert.Equal(t, "newest", q.Get("orderBy"))
		assert.Equal(t, "fr", q.Get("langRestrict"))
		assert.False(t, q.Has("key"))
		_, _ = w.Write([]byte(volumesJSON))
	})

	list, err := c.SearchBySubject(context.Background(), models.BookQuery{Subject: "humor", MaxResults: 15, OrderBy: OrderNewest})
	require.NoError(t, err)
	assert.Equal(t, "books#volumes", list.Kind)
	assert.Equal(t, 2, list.TotalItems)
	require.Len(t, list.Items, 2)

	b := list.Items[0]
	assert.Equal(t, "zyTCAlFPjgYC", b.ID)
	assert.Equal(t, "Le Petit Prince", b.Title)
	assert.Equal(t, []string{"Antoine de Saint-Exupéry"}, b.Authors)
	assert.Equal(t, "1943", b.PublishedDate)
	assert.Equal(t, "http://books.google.com/t.jpg", b.CoverURL())
	require.NotNil(t, b.AverageRating)
	assert.InDelta(t, 4.5, *b.AverageRating, 0.001)
	require.NotNil(t, b.PageCount)
	assert.Equal(t, 96, *b.PageCount)
	assert.Equal(t, "Gallimard", b.Publisher)
	assert.Equal(t, "9782070612758", b.IndustryIdentifiers[0].Identifier)
	assert.Equal(t, "https://books.google.com/preview", b.PreviewLink)

	assert.Equal(t, "", list.Items[1].CoverURL())
}

func TestSearchBySubject_WithKeyAndNoItems(t *testing.T) {
	c := newTestClient(t, "gb-key", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gb-key", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"kind":"books#volumes","totalItems":0}`))
	})

	list, err := c.SearchBySubject(context.Background(), models.BookQuery{Subject: "drama", MaxResults: 20, OrderBy: OrderRelevance})
	require.NoError(t, err)
	assert.NotNil(t, list.Items)
	assert.Empty(t, list.Items)
}

func TestSearchBySubject_StatusError(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.SearchBySubject(context.Background(), models.BookQuery{Subject: "drama", MaxResults: 20, OrderBy: OrderRelevance})
	var se *upstream.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
}
