// Package proxyclient calls the moodpick catalog routes over HTTP.
package proxyclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/icco/moodpick/models"
)

// APIError is a non-2xx answer from the proxy.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("proxy responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("proxy responded with status %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *Client) Movies(ctx context.Context, q models.MovieQuery) (*models.MovieList, error) {
	params := url.Values{}
	params.Set("genreId", strconv.Itoa(q.GenreID))
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}

	var out models.MovieList
	if err := c.get(ctx, "/api/movies", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Providers(ctx context.Context, movieID int) (*models.WatchProviders, error) {
	params := url.Values{}
	params.Set("movieId", strconv.Itoa(movieID))

	var out models.WatchProviders
	if err := c.get(ctx, "/api/movies/providers", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Books(ctx context.Context, q models.BookQuery) (*models.BookList, error) {
	params := url.Values{}
	params.Set("subject", q.Subject)
	if q.MaxResults > 0 {
		params.Set("maxResults", strconv.Itoa(q.MaxResults))
	}
	if q.OrderBy != "" {
		params.Set("orderBy", q.OrderBy)
	}
	if q.CacheBust != 0 {
		params.Set("_", strconv.FormatInt(q.CacheBust, 10))
	}

	var out models.BookList
	if err := c.get(ctx, "/api/books", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("Failed to close response body", slog.Any("error", err))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &payload) == nil {
			apiErr.Message = payload.Error
		}
		c.logger.DebugContext(ctx, "Proxy returned an error",
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.String("message", apiErr.Message))
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
