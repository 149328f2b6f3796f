// Package books is a Google Books volumes client.
package books

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/icco/moodpick/lib/upstream"
	"github.com/icco/moodpick/models"
)

const (
	OrderRelevance = "relevance"
	OrderNewest    = "newest"
)

// volumesResponse is the raw /volumes payload.
type volumesResponse struct {
	Kind       string `json:"kind"`
	TotalItems int    `json:"totalItems"`
	Items      []struct {
		ID         string            `json:"id"`
		VolumeInfo models.VolumeInfo `json:"volumeInfo"`
	} `json:"items"`
}

type Client struct {
	apiKey       string
	baseURL      string
	langRestrict string
	http         *upstream.Client
	logger       *slog.Logger
}

// NewClient returns a client. apiKey may be empty; Google Books serves
// anonymous requests under a lower quota.
func NewClient(apiKey, baseURL, langRestrict string, http *upstream.Client, logger *slog.Logger) *Client {
	return &Client{
		apiKey:       apiKey,
		baseURL:      baseURL,
		langRestrict: langRestrict,
		http:         http,
		logger:       logger,
	}
}

func (c *Client) Upstream() *upstream.Client {
	return c.http
}

// SearchBySubject lists volumes for a subject, flattened into Books.
func (c *Client) SearchBySubject(ctx context.Context, q models.BookQuery) (*models.BookList, error) {
	params := url.Values{}
	params.Set("q", "subject:"+q.Subject)
	params.Set("maxResults", strconv.Itoa(q.MaxResults))
	params.Set("orderBy", q.OrderBy)
	params.Set("langRestrict", c.langRestrict)
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	var raw volumesResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/volumes?"+params.Encode(), &raw); err != nil {
		return nil, fmt.Errorf("failed to search books: %w", err)
	}

	list := &models.BookList{
		Kind:       raw.Kind,
		TotalItems: raw.TotalItems,
		Items:      make([]models.Book, 0, len(raw.Items)),
	}
	for _, item := range raw.Items {
		list.Items = append(list.Items, models.NewBook(item.ID, item.VolumeInfo))
	}

	c.logger.DebugContext(ctx, "Searched books",
		slog.String("subject", q.Subject),
		slog.String("order_by", q.OrderBy),
		slog.Int("count", len(list.Items)))
	return list, nil
}
