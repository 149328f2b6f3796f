package favorites

import (
	"testing"

	"github.com/icco/moodpick/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookFavoriteID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want int
	}{
		{"digits are used", "ab12c3", -123},
		{"no digits sums char codes", "abc", -(97 + 98 + 99)},
		{"all zeros sums char codes", "00", -(48 + 48)},
		{"empty is never zero", "", -1},
		{"overflowing digits fall back", "99999999999999999999999", -(57 * 23)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BookFavoriteID(tt.id))
		})
	}
}

func TestBookFavoriteIDAlwaysNegative(t *testing.T) {
	for _, id := range []string{"", "0", "x", "zyTCAlFPjgYC", "1", "é", "-5"} {
		got := BookFavoriteID(id)
		assert.Less(t, got, 0, "id %q", id)
	}
}

func TestFromBook(t *testing.T) {
	rating := 4.5
	b := models.Book{
		ID:            "abc123",
		Title:         "Dune",
		Description:   "Spice",
		PublishedDate: "1965",
		AverageRating: &rating,
		ImageLinks:    &models.ImageLinks{SmallThumbnail: "http://books.google.com/s.jpg"},
	}

	e := FromBook(b)
	assert.Equal(t, -123, e.ID)
	assert.Equal(t, KindBook, e.Kind)
	assert.Equal(t, "abc123", e.BookID)
	assert.Equal(t, 4.5, e.VoteAverage)
	assert.Equal(t, "1965", e.ReleaseDate)
	assert.Equal(t, "Spice", e.Overview)
	require.NotNil(t, e.PosterPath)
	assert.Equal(t, "https://books.google.com/s.jpg", *e.PosterPath)
	assert.True(t, e.IsBook())

	bare := FromBook(models.Book{ID: "x", Title: "No cover"})
	assert.Nil(t, bare.PosterPath)
	assert.Zero(t, bare.VoteAverage)
}

func TestIsBookFallsBackToSign(t *testing.T) {
	assert.True(t, Entry{ID: -3}.IsBook())
	assert.False(t, Entry{ID: 3}.IsBook())
	assert.False(t, Entry{ID: -3, Kind: KindMovie}.IsBook())
	assert.False(t, FromMovie(models.Movie{ID: 550}).IsBook())
}
