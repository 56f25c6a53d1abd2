// Package googlebooks implements the Google Books volumes API as a catalog source.
package googlebooks

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/shelfmark/shelfmark-server/internal/catalog"
)

const (
	sourceName     = "google-books"
	defaultTimeout = 30 * time.Second
)

// Sentinel errors for Google Books API operations.
var (
	ErrRateLimited = errors.New("googlebooks: rate limited by server")
	ErrBadRequest  = errors.New("googlebooks: bad request")
	ErrQuota       = errors.New("googlebooks: quota or auth failure")
	ErrServer      = errors.New("googlebooks: server error")
	ErrMalformed   = errors.New("googlebooks: malformed payload")
)

// Client is a rate-limited Google Books API client.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	baseURL string
	apiKey  string
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

// New creates a Google Books client. baseURL is the API root, e.g.
// "https://www.googleapis.com/books/v1". apiKey may be empty; the volumes
// endpoint works unauthenticated at a lower quota.
func New(baseURL, apiKey string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: defaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(1), 3),
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements catalog.Source.
func (c *Client) Name() string { return sourceName }

// Lookup implements catalog.Source. It queries the volumes endpoint by ISBN
// and maps the first matching volume into a catalog.Record.
func (c *Client) Lookup(ctx context.Context, isbn string) (*catalog.Record, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, c.retryable(fmt.Errorf("rate limit wait: %w", err))
	}

	query := url.Values{}
	query.Set("q", "isbn:"+isbn)
	query.Set("maxResults", "1")
	if c.apiKey != "" {
		query.Set("key", c.apiKey)
	}

	body, err := c.doRequest(ctx, "/volumes", query)
	if err != nil {
		return nil, err
	}

	var resp volumesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, c.permanent(fmt.Errorf("%w: %v", ErrMalformed, err))
	}

	if resp.TotalItems == 0 || len(resp.Items) == 0 {
		return nil, catalog.ErrNotFound
	}

	return recordFromVolume(isbn, &resp.Items[0]), nil
}

// doRequest executes a GET and maps HTTP status to the source error taxonomy.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, c.permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Shelfmark/1.0")

	c.logger.Debug("google books request", "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.retryable(fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.retryable(fmt.Errorf("read response: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, catalog.ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, c.retryable(ErrRateLimited)
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, c.permanent(ErrQuota)
	case resp.StatusCode == http.StatusBadRequest:
		return nil, c.permanent(ErrBadRequest)
	case resp.StatusCode >= 500:
		return nil, c.retryable(ErrServer)
	default:
		return nil, c.permanent(fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body)))
	}
}

func (c *Client) retryable(err error) error {
	return &catalog.SourceError{Source: sourceName, Retryable: true, Err: err}
}

func (c *Client) permanent(err error) error {
	return &catalog.SourceError{Source: sourceName, Retryable: false, Err: err}
}

// recordFromVolume maps a volume into a Record, setting only the fields the
// API actually returned.
func recordFromVolume(isbn string, v *rawVolume) *catalog.Record {
	rec := &catalog.Record{ISBN: isbn}
	info := v.VolumeInfo

	if info.Title != "" {
		rec.Title = &info.Title
	}
	if len(info.Authors) > 0 {
		author := joinAuthors(info.Authors)
		rec.Author = &author
	}
	if info.Publisher != "" {
		rec.Publisher = &info.Publisher
	}
	if info.PublishedDate != "" {
		rec.PublishedAt = &info.PublishedDate
	}
	if info.Description != "" {
		rec.Description = &info.Description
	}
	if info.PageCount > 0 {
		pages := info.PageCount
		rec.PageCount = &pages
	}
	if info.ImageLinks.Thumbnail != "" {
		rec.Thumbnail = &info.ImageLinks.Thumbnail
	}
	if v.SaleInfo.ListPrice.Amount > 0 {
		price := int(v.SaleInfo.ListPrice.Amount)
		rec.Price = &price
	}
	return rec
}

// joinAuthors flattens the author list into the catalog's single-author form.
func joinAuthors(authors []string) string {
	out := authors[0]
	for _, a := range authors[1:] {
		out += ", " + a
	}
	return out
}

// Raw API response types (internal).

type volumesResponse struct {
	TotalItems int         `json:"totalItems"`
	Items      []rawVolume `json:"items"`
}

type rawVolume struct {
	VolumeInfo rawVolumeInfo `json:"volumeInfo"`
	SaleInfo   rawSaleInfo   `json:"saleInfo"`
}

type rawVolumeInfo struct {
	Title         string        `json:"title"`
	Authors       []string      `json:"authors"`
	Publisher     string        `json:"publisher"`
	PublishedDate string        `json:"publishedDate"`
	Description   string        `json:"description"`
	PageCount     int           `json:"pageCount"`
	ImageLinks    rawImageLinks `json:"imageLinks"`
}

type rawImageLinks struct {
	Thumbnail string `json:"thumbnail"`
}

type rawSaleInfo struct {
	ListPrice rawPrice `json:"listPrice"`
}

type rawPrice struct {
	Amount float64 `json:"amount"`
}
