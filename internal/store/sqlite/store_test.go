package sqlite

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/id"
)

// setupTestStore creates a store backed by a throwaway database file.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	return s, func() {
		_ = s.Close()
	}
}

// seedUser inserts a user and returns its ID.
func seedUser(t *testing.T, s *Store, displayName string) string {
	t.Helper()

	userID := id.MustNew(id.PrefixUser)
	err := s.EnsureUser(context.Background(), &domain.User{
		ID:          userID,
		DisplayName: displayName,
	})
	require.NoError(t, err)
	return userID
}

// seedBook inserts a catalog book with the given ISBN and returns the
// persisted row.
func seedBook(t *testing.T, s *Store, isbn string) *domain.Book {
	t.Helper()

	book, err := s.CreateBookIfAbsent(context.Background(), &domain.Book{
		ID:     id.MustNew(id.PrefixBook),
		ISBN:   isbn,
		Title:  "Test Book " + isbn,
		Author: "Test Author",
	})
	require.NoError(t, err)
	return book
}

// seedLibraryEntry adds a book to a user's library and returns the entry.
func seedLibraryEntry(t *testing.T, s *Store, userID, bookID string) *domain.LibraryEntry {
	t.Helper()

	entry := &domain.LibraryEntry{
		ID:      id.MustNew(id.PrefixEntry),
		UserID:  userID,
		BookID:  bookID,
		AddedAt: time.Now(),
	}
	require.NoError(t, s.CreateLibraryEntry(context.Background(), entry))
	return entry
}

// seedShelf creates a shelf for a user and returns it.
func seedShelf(t *testing.T, s *Store, ownerID, name string) *domain.Shelf {
	t.Helper()

	now := time.Now()
	shelf := &domain.Shelf{
		ID:        id.MustNew(id.PrefixShelf),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.CreateShelf(context.Background(), shelf))
	return shelf
}

// seedShelfEntry places a library entry on a shelf and returns the membership.
func seedShelfEntry(t *testing.T, s *Store, shelfID, entryID string) *domain.ShelfEntry {
	t.Helper()

	se := &domain.ShelfEntry{
		ID:      id.MustNew(id.PrefixShelfEntry),
		ShelfID: shelfID,
		EntryID: entryID,
		AddedAt: time.Now(),
	}
	require.NoError(t, s.AddShelfEntry(context.Background(), se))
	return se
}
