// Package openlibrary implements the Open Library Books API as a catalog source.
package openlibrary

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/shelfmark/shelfmark-server/internal/catalog"
)

const (
	sourceName     = "open-library"
	defaultTimeout = 30 * time.Second
)

// Sentinel errors for Open Library API operations.
var (
	ErrRateLimited = errors.New("openlibrary: rate limited by server")
	ErrServer      = errors.New("openlibrary: server error")
	ErrMalformed   = errors.New("openlibrary: malformed payload")
)

// Client queries the Open Library Books API (jscmd=data).
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	baseURL string
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client (used in tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRate overrides the outbound request rate.
func WithRate(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// New creates an Open Library client. baseURL is the site root, e.g.
// "https://openlibrary.org".
func New(baseURL string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: defaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(1), 3),
		baseURL: baseURL,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements catalog.Source.
func (c *Client) Name() string { return sourceName }

// Lookup implements catalog.Source. The Books API returns a JSON object
// keyed by "ISBN:<isbn>"; an empty object means the catalog has no record.
func (c *Client) Lookup(ctx context.Context, isbn string) (*catalog.Record, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, c.retryable(fmt.Errorf("rate limit wait: %w", err))
	}

	bibkey := "ISBN:" + isbn
	query := url.Values{}
	query.Set("bibkeys", bibkey)
	query.Set("format", "json")
	query.Set("jscmd", "data")

	u := c.baseURL + "/api/books?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, c.permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Shelfmark/1.0")

	c.logger.Debug("open library request", "bibkey", bibkey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.retryable(fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// Fall through to parsing.
	case resp.StatusCode == http.StatusNotFound:
		return nil, catalog.ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, c.retryable(ErrRateLimited)
	case resp.StatusCode >= 500:
		return nil, c.retryable(ErrServer)
	default:
		return nil, c.permanent(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var payload map[string]rawBook
	if err := json.UnmarshalRead(resp.Body, &payload); err != nil {
		return nil, c.permanent(fmt.Errorf("%w: %v", ErrMalformed, err))
	}

	book, ok := payload[bibkey]
	if !ok {
		return nil, catalog.ErrNotFound
	}

	return recordFromBook(isbn, &book), nil
}

func (c *Client) retryable(err error) error {
	return &catalog.SourceError{Source: sourceName, Retryable: true, Err: err}
}

func (c *Client) permanent(err error) error {
	return &catalog.SourceError{Source: sourceName, Retryable: false, Err: err}
}

// recordFromBook maps an Open Library data record, leaving absent fields nil.
func recordFromBook(isbn string, b *rawBook) *catalog.Record {
	rec := &catalog.Record{ISBN: isbn}

	if b.Title != "" {
		rec.Title = &b.Title
	}
	if author := joinNames(b.Authors); author != "" {
		rec.Author = &author
	}
	if publisher := joinNames(b.Publishers); publisher != "" {
		rec.Publisher = &publisher
	}
	if b.PublishDate != "" {
		rec.PublishedAt = &b.PublishDate
	}
	if b.NumberOfPages > 0 {
		pages := b.NumberOfPages
		rec.PageCount = &pages
	}
	if b.Cover.Medium != "" {
		rec.Thumbnail = &b.Cover.Medium
	}
	return rec
}

// joinNames flattens a list of named entities into a comma-separated string.
func joinNames(entries []rawNamed) string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Name != "" {
			names = append(names, e.Name)
		}
	}
	return strings.Join(names, ", ")
}

// Raw API response types (internal).

type rawBook struct {
	Title         string     `json:"title"`
	Authors       []rawNamed `json:"authors"`
	Publishers    []rawNamed `json:"publishers"`
	PublishDate   string     `json:"publish_date"`
	NumberOfPages int        `json:"number_of_pages"`
	Cover         rawCover   `json:"cover"`
}

type rawNamed struct {
	Name string `json:"name"`
}

type rawCover struct {
	Medium string `json:"medium"`
}
