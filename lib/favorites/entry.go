package favorites

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/icco/moodpick/models"
)

type Kind string

// ErrInvalidID is returned for entries whose id does not match their kind:
// movies are positive, books negative, and zero is never stored.
var ErrInvalidID = errors.New("invalid favorite id")

const (
	KindMovie Kind = "movie"
	KindBook  Kind = "book"
)

// Entry is one favorite. Movies keep their upstream id; books get a
// synthetic negative id from BookFavoriteID and keep their real id in BookID.
type Entry struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	PosterPath  *string `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `json:"overview"`
	Kind        Kind    `json:"kind,omitempty"`
	BookID      string  `json:"book_id,omitempty"`
}

// IsBook reports whether the entry is a book. Entries saved without a kind
// are told apart by the sign of their id.
func (e Entry) IsBook() bool {
	if e.Kind != "" {
		return e.Kind == KindBook
	}
	return e.ID < 0
}

// Validate checks the id against the entry's kind.
func (e Entry) Validate() error {
	switch {
	case e.ID == 0:
		return fmt.Errorf("%w: 0", ErrInvalidID)
	case e.Kind == KindMovie && e.ID < 0:
		return fmt.Errorf("%w: movie ids are positive, got %d", ErrInvalidID, e.ID)
	case e.Kind == KindBook && e.ID > 0:
		return fmt.Errorf("%w: book ids are negative, got %d", ErrInvalidID, e.ID)
	}
	return nil
}

// FromMovie converts a movie into a favorite.
func FromMovie(m models.Movie) Entry {
	return Entry{
		ID:          m.ID,
		Title:       m.Title,
		PosterPath:  m.PosterPath,
		VoteAverage: m.VoteAverage,
		ReleaseDate: m.ReleaseDate,
		Overview:    m.Overview,
		Kind:        KindMovie,
	}
}

// FromBook converts a book into a favorite. The cover becomes the poster,
// upgraded to https.
func FromBook(b models.Book) Entry {
	e := Entry{
		ID:          BookFavoriteID(b.ID),
		Title:       b.Title,
		ReleaseDate: b.PublishedDate,
		Overview:    b.Description,
		Kind:        KindBook,
		BookID:      b.ID,
	}
	if b.AverageRating != nil {
		e.VoteAverage = *b.AverageRating
	}
	if cover := b.CoverURL(); cover != "" {
		cover = models.SecureURL(cover)
		e.PosterPath = &cover
	}
	return e
}

// BookFavoriteID derives the negative id a book is stored under: the digits
// of its id, or the sum of its character codes when the digits give nothing
// usable. Never returns zero.
func BookFavoriteID(bookID string) int {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, bookID)

	if n, err := strconv.Atoi(digits); err == nil && n > 0 {
		return -n
	}

	sum := 0
	for _, r := range bookID {
		sum += int(r)
		if sum > math.MaxInt32 {
			sum %= math.MaxInt32
		}
	}
	if sum == 0 {
		return -1
	}
	return -sum
}
