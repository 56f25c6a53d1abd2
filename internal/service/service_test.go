package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark-server/internal/catalog"
	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/store/sqlite"
)

const testISBN13 = "9784797382570"

// stubSource is a scriptable catalog source. calls counts lookups so tests
// can assert the local-catalog fast path skips the network entirely.
type stubSource struct {
	name   string
	record *catalog.Record
	err    error
	calls  atomic.Int32
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Lookup(_ context.Context, _ string) (*catalog.Record, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	if s.record == nil {
		return nil, catalog.ErrNotFound
	}
	return s.record, nil
}

func stubRecord(isbn, title, author string) *catalog.Record {
	return &catalog.Record{ISBN: isbn, Title: &title, Author: &author}
}

type testEnv struct {
	store   *sqlite.Store
	books   *BookService
	library *LibraryService
	shelves *ShelfService
	social  *SocialService
}

// newTestEnv wires the full service stack over a throwaway database and the
// given catalog sources (priority order).
func newTestEnv(t *testing.T, sources ...catalog.Source) *testEnv {
	t.Helper()

	log := slog.New(slog.DiscardHandler)

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	resolver := catalog.NewResolver(sources, 200*time.Millisecond, 500*time.Millisecond, log)
	books := NewBookService(s, resolver, log)

	return &testEnv{
		store:   s,
		books:   books,
		library: NewLibraryService(s, books, log),
		shelves: NewShelfService(s, log),
		social:  NewSocialService(s, log),
	}
}

// seedUser mirrors an identity-provider user into the store.
func (e *testEnv) seedUser(t *testing.T, displayName string) string {
	t.Helper()

	userID := "usr-" + displayName
	require.NoError(t, e.store.EnsureUser(context.Background(), &domain.User{
		ID:          userID,
		DisplayName: displayName,
	}))
	return userID
}
