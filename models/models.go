package models

import (
	"strings"
	"time"
)

// Movie is a TMDB discover result.
type Movie struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	PosterPath       *string `json:"poster_path"`
	VoteAverage      float64 `json:"vote_average"`
	ReleaseDate      string  `json:"release_date"`
	Overview         string  `json:"overview"`
	BackdropPath     *string `json:"backdrop_path,omitempty"`
	GenreIDs         []int   `json:"genre_ids,omitempty"`
	OriginalLanguage string  `json:"original_language,omitempty"`
	OriginalTitle    string  `json:"original_title,omitempty"`
	Popularity       float64 `json:"popularity,omitempty"`
	VoteCount        int     `json:"vote_count,omitempty"`
	Video            bool    `json:"video,omitempty"`
	Adult            bool    `json:"adult,omitempty"`
}

// Year returns the year part of the release date, or "N/A".
func (m Movie) Year() string {
	if len(m.ReleaseDate) < 4 {
		return "N/A"
	}
	return m.ReleaseDate[:4]
}

// MovieList is the discover payload relayed by /api/movies.
type MovieList struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

type ImageLinks struct {
	Thumbnail      string `json:"thumbnail,omitempty"`
	SmallThumbnail string `json:"smallThumbnail,omitempty"`
}

type IndustryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// VolumeInfo is the nested record Google Books returns for each volume.
type VolumeInfo struct {
	Title               string               `json:"title"`
	Authors             []string             `json:"authors,omitempty"`
	Description         string               `json:"description,omitempty"`
	PublishedDate       string               `json:"publishedDate,omitempty"`
	Categories          []string             `json:"categories,omitempty"`
	ImageLinks          *ImageLinks          `json:"imageLinks,omitempty"`
	AverageRating       *float64             `json:"averageRating,omitempty"`
	RatingsCount        *int                 `json:"ratingsCount,omitempty"`
	PageCount           *int                 `json:"pageCount,omitempty"`
	Language            string               `json:"language,omitempty"`
	Publisher           string               `json:"publisher,omitempty"`
	IndustryIdentifiers []IndustryIdentifier `json:"industryIdentifiers,omitempty"`
	InfoLink            string               `json:"infoLink,omitempty"`
	PreviewLink         string               `json:"previewLink,omitempty"`
}

// Book is the flattened record served by /api/books.
type Book struct {
	ID                  string               `json:"id"`
	Title               string               `json:"title"`
	Authors             []string             `json:"authors,omitempty"`
	Description         string               `json:"description,omitempty"`
	PublishedDate       string               `json:"publishedDate,omitempty"`
	Categories          []string             `json:"categories,omitempty"`
	ImageLinks          *ImageLinks          `json:"imageLinks,omitempty"`
	AverageRating       *float64             `json:"averageRating,omitempty"`
	RatingsCount        *int                 `json:"ratingsCount,omitempty"`
	PageCount           *int                 `json:"pageCount,omitempty"`
	Language            string               `json:"language,omitempty"`
	Publisher           string               `json:"publisher,omitempty"`
	IndustryIdentifiers []IndustryIdentifier `json:"industryIdentifiers,omitempty"`
	InfoLink            string               `json:"infoLink,omitempty"`
	PreviewLink         string               `json:"previewLink,omitempty"`
}

// NewBook flattens a volume into a Book.
func NewBook(id string, info VolumeInfo) Book {
	return Book{
		ID:                  id,
		Title:               info.Title,
		Authors:             info.Authors,
		Description:         info.Description,
		PublishedDate:       info.PublishedDate,
		Categories:          info.Categories,
		ImageLinks:          info.ImageLinks,
		AverageRating:       info.AverageRating,
		RatingsCount:        info.RatingsCount,
		PageCount:           info.PageCount,
		Language:            info.Language,
		Publisher:           info.Publisher,
		IndustryIdentifiers: info.IndustryIdentifiers,
		InfoLink:            info.InfoLink,
		PreviewLink:         info.PreviewLink,
	}
}

// CoverURL returns the best available cover image, preferring the larger
// thumbnail. Empty when the book has no cover.
func (b Book) CoverURL() string {
	if b.ImageLinks == nil {
		return ""
	}
	if b.ImageLinks.Thumbnail != "" {
		return b.ImageLinks.Thumbnail
	}
	return b.ImageLinks.SmallThumbnail
}

// SecureURL upgrades an http: URL to https:. Google Books serves covers over
// plain http.
func SecureURL(u string) string {
	if rest, ok := strings.CutPrefix(u, "http:"); ok {
		return "https:" + rest
	}
	return u
}

// BookList is the payload served by /api/books.
type BookList struct {
	Kind       string `json:"kind,omitempty"`
	TotalItems int    `json:"totalItems"`
	Items      []Book `json:"items"`
}

type Provider struct {
	ProviderID      int    `json:"provider_id"`
	ProviderName    string `json:"provider_name"`
	LogoPath        string `json:"logo_path"`
	DisplayPriority int    `json:"display_priority,omitempty"`
}

// CountryProviders lists where a movie can be watched in one country.
type CountryProviders struct {
	Link     string     `json:"link,omitempty"`
	Flatrate []Provider `json:"flatrate,omitempty"`
	Rent     []Provider `json:"rent,omitempty"`
	Buy      []Provider `json:"buy,omitempty"`
}

// WatchProviders is TMDB's watch/providers payload keyed by ISO country code.
type WatchProviders struct {
	ID      int                         `json:"id"`
	Results map[string]CountryProviders `json:"results"`
}

// MovieQuery selects one page of movies for a genre.
type MovieQuery struct {
	GenreID int
	Page    int
	Sort    string
}

// BookQuery selects books for a subject. CacheBust, when nonzero, is sent
// along so intermediaries don't serve a stale list.
type BookQuery struct {
	Subject    string
	MaxResults int
	OrderBy    string
	CacheBust  int64
}

// KeyValue is one row of the client-local store.
type KeyValue struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}
