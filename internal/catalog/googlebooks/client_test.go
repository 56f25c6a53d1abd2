package googlebooks

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark-server/internal/catalog"
)

const testISBN = "9784797382570"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(srv.URL, "", slog.New(slog.DiscardHandler),
		WithHTTPClient(srv.Client()),
		WithRate(1000, 1000),
	)
}

func TestLookup_MapsVolume(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/volumes", r.URL.Path)
		assert.Equal(t, "isbn:"+testISBN, r.URL.Query().Get("q"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"totalItems": 1,
			"items": [{
				"volumeInfo": {
					"title": "Example Title",
					"authors": ["First Author", "Second Author"],
					"publisher": "Example Press",
					"publishedDate": "2012-06-23",
					"description": "A description.",
					"pageCount": 320,
					"imageLinks": {"thumbnail": "https://example.com/t.jpg"}
				},
				"saleInfo": {"listPrice": {"amount": 2800}}
			}]
		}`))
	})

	rec, err := c.Lookup(context.Background(), testISBN)
	require.NoError(t, err)

	assert.Equal(t, testISBN, rec.ISBN)
	require.NotNil(t, rec.Title)
	assert.Equal(t, "Example Title", *rec.Title)
	require.NotNil(t, rec.Author)
	assert.Equal(t, "First Author, Second Author", *rec.Author)
	require.NotNil(t, rec.Publisher)
	assert.Equal(t, "Example Press", *rec.Publisher)
	require.NotNil(t, rec.PageCount)
	assert.Equal(t, 320, *rec.PageCount)
	require.NotNil(t, rec.Price)
	assert.Equal(t, 2800, *rec.Price)
	assert.True(t, rec.Usable())
}

func TestLookup_SparseVolumeLeavesFieldsNil(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"totalItems":1,"items":[{"volumeInfo":{"title":"Bare"}}]}`))
	})

	rec, err := c.Lookup(context.Background(), testISBN)
	require.NoError(t, err)

	require.NotNil(t, rec.Title)
	assert.Nil(t, rec.Author)
	assert.Nil(t, rec.Publisher)
	assert.Nil(t, rec.PageCount)
	assert.Nil(t, rec.Price)
	assert.False(t, rec.Usable())
}

func TestLookup_ZeroItemsIsNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"totalItems":0}`))
	})

	_, err := c.Lookup(context.Background(), testISBN)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestLookup_StatusMapping(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
		notFound  bool
	}{
		{"404 is not found", http.StatusNotFound, false, true},
		{"429 is retryable", http.StatusTooManyRequests, true, false},
		{"500 is retryable", http.StatusInternalServerError, true, false},
		{"503 is retryable", http.StatusServiceUnavailable, true, false},
		{"403 is permanent", http.StatusForbidden, false, false},
		{"401 is permanent", http.StatusUnauthorized, false, false},
		{"400 is permanent", http.StatusBadRequest, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := c.Lookup(context.Background(), testISBN)
			require.Error(t, err)

			if tt.notFound {
				assert.ErrorIs(t, err, catalog.ErrNotFound)
				return
			}

			var srcErr *catalog.SourceError
			require.ErrorAs(t, err, &srcErr)
			assert.Equal(t, "google-books", srcErr.Source)
			assert.Equal(t, tt.retryable, srcErr.Retryable)
		})
	}
}

func TestLookup_MalformedPayloadIsPermanent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"totalItems": "not a number"`))
	})

	_, err := c.Lookup(context.Background(), testISBN)

	var srcErr *catalog.SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.False(t, srcErr.Retryable)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestLookup_APIKeyAddedToQuery(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		_, _ = w.Write([]byte(`{"totalItems":0}`))
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, "secret-key", slog.New(slog.DiscardHandler),
		WithHTTPClient(srv.Client()),
		WithRate(1000, 1000),
	)

	_, _ = c.Lookup(context.Background(), testISBN)
	assert.Equal(t, "secret-key", gotKey)
}
