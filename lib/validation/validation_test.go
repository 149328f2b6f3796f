package validation

import (
	"errors"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/icco/moodpick/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovieParams(t *testing.T) {
	tests := []struct {
		name    string
		query   url.Values
		want    models.MovieQuery
		wantErr string
	}{
		{
			name:  "defaults",
			query: url.Values{"genreId": {"35"}},
			want:  models.MovieQuery{GenreID: 35, Page: 1, Sort: "popularity.desc"},
		},
		{
			name:  "explicit",
			query: url.Values{"genreId": {"18"}, "page": {"7"}, "sort": {"revenue.desc"}},
			want:  models.MovieQuery{GenreID: 18, Page: 7, Sort: "revenue.desc"},
		},
		{
			name:    "missing genre",
			query:   url.Values{"page": {"2"}},
			wantErr: "Genre ID is required",
		},
		{
			name:    "non numeric genre",
			query:   url.Values{"genreId": {"comedy"}},
			wantErr: "Genre ID must be a positive integer",
		},
		{
			name:    "non numeric page",
			query:   url.Values{"genreId": {"35"}, "page": {"two"}},
			wantErr: "Page must be a positive integer",
		},
		{
			name:    "overflowing page",
			query:   url.Values{"genreId": {"35"}, "page": {strings.Repeat("9", 30)}},
			wantErr: "Page is out of range",
		},
		{
			name:    "sort too long",
			query:   url.Values{"genreId": {"35"}, "sort": {strings.Repeat("x", 65)}},
			wantErr: "Sort is too long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MovieParamsFrom(tt.query).Query()
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProviderParams(t *testing.T) {
	id, err := ProviderParamsFrom(url.Values{"movieId": {"550"}}).MovieIDValue()
	require.NoError(t, err)
	assert.Equal(t, 550, id)

	_, err = ProviderParamsFrom(url.Values{}).MovieIDValue()
	require.EqualError(t, err, "Movie ID is required")

	_, err = ProviderParamsFrom(url.Values{"movieId": {"-1"}}).MovieIDValue()
	require.EqualError(t, err, "Movie ID must be a positive integer")
}

func TestBookParams(t *testing.T) {
	q, err := BookParamsFrom(url.Values{"subject": {"humor"}}).Query()
	require.NoError(t, err)
	assert.Equal(t, models.BookQuery{Subject: "humor", MaxResults: 20, OrderBy: "relevance"}, q)

	q, err = BookParamsFrom(url.Values{"subject": {"mystery"}, "maxResults": {"15"}, "orderBy": {"newest"}}).Query()
	require.NoError(t, err)
	assert.Equal(t, 15, q.MaxResults)
	assert.Equal(t, "newest", q.OrderBy)

	_, err = BookParamsFrom(url.Values{}).Query()
	require.EqualError(t, err, "Subject is required")

	_, err = BookParamsFrom(url.Values{"subject": {"drama"}, "orderBy": {"oldest"}}).Query()
	require.EqualError(t, err, "Order must be one of: relevance, newest")

	_, err = BookParamsFrom(url.Values{"subject": {"drama"}, "maxResults": {"lots"}}).Query()
	require.EqualError(t, err, "Max results must be a positive integer")
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("Subject is required"), 400)

	assert.Equal(t, 400, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Subject is required", body["error"])
}
