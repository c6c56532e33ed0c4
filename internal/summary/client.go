package summary

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"boe-rag/internal/fetch"
	"boe-rag/internal/models"
)

// ErrNotPublished is returned when the API has no summary for the date.
var ErrNotPublished = errors.New("no summary published")

// Fetcher is the slice of fetch.Fetcher the client needs.
type Fetcher interface {
	FetchAccept(ctx context.Context, url, accept string) ([]byte, error)
}

// Client downloads raw summary documents.
type Client struct {
	fetcher     Fetcher
	urlTemplate string
}

func NewClient(f Fetcher) *Client {
	return &Client{fetcher: f, urlTemplate: models.SummaryURLTemplate}
}

// WithURLTemplate points the client at another host, keeping the %s date placeholder.
func (c *Client) WithURLTemplate(tmpl string) *Client {
	c.urlTemplate = tmpl
	return c
}

// URL returns the summary endpoint for date.
func (c *Client) URL(date time.Time) string {
	return fmt.Sprintf(c.urlTemplate, date.Format(models.SummaryDateLayout))
}

// Get returns the raw JSON summary for date. A date the API answers with 404
// (weekends, holidays) yields ErrNotPublished.
func (c *Client) Get(ctx context.Context, date time.Time) ([]byte, error) {
	body, err := c.fetcher.FetchAccept(ctx, c.URL(date), "application/json")
	var fe *fetch.FetchError
	if errors.As(err, &fe) && fe.LastStatus == http.StatusNotFound {
		return nil, fmt.Errorf("%w for %s", ErrNotPublished, date.Format(time.DateOnly))
	}
	if err != nil {
		return nil, fmt.Errorf("fetching summary for %s: %w", date.Format(time.DateOnly), err)
	}
	return body, nil
}
