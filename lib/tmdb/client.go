package tmdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/icco/moodpick/lib/upstream"
	"github.com/icco/moodpick/models"
)

// MinVoteAverage is the lowest rating the discover endpoint is allowed to return.
const MinVoteAverage = 6.0

// ErrMissingAPIKey is returned before any request when no key is configured.
var ErrMissingAPIKey = errors.New("tmdb api key is not configured")

type Client struct {
	apiKey   string
	baseURL  string
	language string
	http     *upstream.Client
	logger   *slog.Logger
}

func NewClient(apiKey, baseURL, language string, http *upstream.Client, logger *slog.Logger) *Client {
	return &Client{
		apiKey:   apiKey,
		baseURL:  baseURL,
		language: language,
		http:     http,
		logger:   logger,
	}
}

// HasCredential reports whether an API key is configured.
func (c *Client) HasCredential() bool {
	return c.apiKey != ""
}

// Upstream exposes the transport, for health reporting.
func (c *Client) Upstream() *upstream.Client {
	return c.http
}

// DiscoverMovies lists one page of released, well-rated movies of a genre.
// today is the server date (YYYY-MM-DD); nothing released after it or rated
// below MinVoteAverage is returned, even if the upstream lets it through.
func (c *Client) DiscoverMovies(ctx context.Context, q models.MovieQuery, today string) (*models.MovieList, error) {
	if !c.HasCredential() {
		return nil, ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("with_genres", strconv.Itoa(q.GenreID))
	params.Set("language", c.language)
	params.Set("sort_by", q.Sort)
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("vote_average.gte", strconv.FormatFloat(MinVoteAverage, 'f', -1, 64))
	params.Set("release_date.lte", today)

	var result models.MovieList
	if err := c.http.GetJSON(ctx, c.baseURL+"/discover/movie?"+params.Encode(), &result); err != nil {
		return nil, fmt.Errorf("failed to discover movies: %w", err)
	}

	result.Results = FilterReleased(result.Results, today)
	c.logger.DebugContext(ctx, "Discovered movies",
		slog.Int("genre_id", q.GenreID),
		slog.Int("page", q.Page),
		slog.String("sort", q.Sort),
		slog.Int("count", len(result.Results)))
	return &result, nil
}

// WatchProviders returns streaming/rent/buy options for a movie.
func (c *Client) WatchProviders(ctx context.Context, movieID int) (*models.WatchProviders, error) {
	if !c.HasCredential() {
		return nil, ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	endpoint := fmt.Sprintf("%s/movie/%d/watch/providers?%s", c.baseURL, movieID, params.Encode())

	var result models.WatchProviders
	if err := c.http.GetJSON(ctx, endpoint, &result); err != nil {
		return nil, fmt.Errorf("failed to get watch providers: %w", err)
	}
	if result.Results == nil {
		result.Results = map[string]models.CountryProviders{}
	}
	return &result, nil
}

// FilterReleased drops movies rated below MinVoteAverage or dated after today.
// Movies without a release date are kept.
func FilterReleased(movies []models.Movie, today string) []models.Movie {
	out := make([]models.Movie, 0, len(movies))
	for _, m := range movies {
		if m.VoteAverage < MinVoteAverage {
			continue
		}
		if m.ReleaseDate != "" && m.ReleaseDate > today {
			continue
		}
		out = append(out, m)
	}
	return out
}

// GetPosterURL returns the w500 image URL for a poster path.
func GetPosterURL(posterPath *string) string {
	if posterPath == nil || *posterPath == "" {
		return ""
	}
	return fmt.Sprintf("https://image.tmdb.org/t/p/w500%s", *posterPath)
}

// GetLogoURL returns the w92 image URL for a provider logo.
func GetLogoURL(logoPath string) string {
	if logoPath == "" {
		return ""
	}
	return fmt.Sprintf("https://image.tmdb.org/t/p/w92%s", logoPath)
}
