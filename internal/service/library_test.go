package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark-server/internal/errors"
)

func TestAddBook(t *testing.T) {
	env := newTestEnv(t, &stubSource{name: "primary", record: stubRecord(testISBN13, "Example", "Author")})
	alice := env.seedUser(t, "alice")

	entry, err := env.library.AddBook(context.Background(), alice, testISBN13)
	require.NoError(t, err)

	assert.Equal(t, alice, entry.UserID)
	assert.False(t, entry.Read)
	assert.Nil(t, entry.ReadAt)
}

func TestAddBook_DuplicateRejected(t *testing.T) {
	env := newTestEnv(t, &stubSource{name: "primary", record: stubRecord(testISBN13, "Example", "Author")})
	alice := env.seedUser(t, "alice")

	_, err := env.library.AddBook(context.Background(), alice, testISBN13)
	require.NoError(t, err)

	// Same book through a differently formatted ISBN is still a duplicate.
	_, err = env.library.AddBook(context.Background(), alice, "978-4-7973-8257-0")
	assert.ErrorIs(t, err, errors.ErrAlreadyExists)
}

func TestAddBook_UnresolvableISBNAborts(t *testing.T) {
	env := newTestEnv(t, &stubSource{name: "primary"})
	alice := env.seedUser(t, "alice")

	_, err := env.library.AddBook(context.Background(), alice, testISBN13)
	assert.ErrorIs(t, err, errors.ErrNotFound)

	entries, listErr := env.library.List(context.Background(), alice)
	require.NoError(t, listErr)
	assert.Empty(t, entries)
}

func TestSetReadStatus(t *testing.T) {
	env := newTestEnv(t, &stubSource{name: "primary", record: stubRecord(testISBN13, "Example", "Author")})
	alice := env.seedUser(t, "alice")

	entry, err := env.library.AddBook(context.Background(), alice, testISBN13)
	require.NoError(t, err)

	read, err := env.library.SetReadStatus(context.Background(), alice, entry.ID, true)
	require.NoError(t, err)
	assert.True(t, read.Read)
	require.NotNil(t, read.ReadAt)

	unread, err := env.library.SetReadStatus(context.Background(), alice, entry.ID, false)
	require.NoError(t, err)
	assert.False(t, unread.Read)
	assert.Nil(t, unread.ReadAt)
}

func TestSetReadStatus_NoChangeIsConflict(t *testing.T) {
	env := newTestEnv(t, &stubSource{name: "primary", record: stubRecord(testISBN13, "Example", "Author")})
	alice := env.seedUser(t, "alice")

	entry, err := env.library.AddBook(context.Background(), alice, testISBN13)
	require.NoError(t, err)

	// Entries start unread; marking unread again is a no-op conflict.
	_, err = env.library.SetReadStatus(context.Background(), alice, entry.ID, false)
	assert.ErrorIs(t, err, errors.ErrConflict)
}

func TestSetReadStatus_ForeignEntryForbidden(t *testing.T) {
	env := newTestEnv(t, &stubSource{name: "primary", record: stubRecord(testISBN13, "Example", "Author")})
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	entry, err := env.library.AddBook(context.Background(), alice, testISBN13)
	require.NoError(t, err)

	_, err = env.library.SetReadStatus(context.Background(), bob, entry.ID, true)
	assert.ErrorIs(t, err, errors.ErrForbidden)
}

func TestRemoveBook(t *testing.T) {
	env := newTestEnv(t, &stubSource{name: "primary", record: stubRecord(testISBN13, "Example", "Author")})
	alice := env.seedUser(t, "alice")

	entry, err := env.library.AddBook(context.Background(), alice, testISBN13)
	require.NoError(t, err)

	// Shelved entries disappear from shelves when the book leaves the library.
	shelf, err := env.shelves.Create(context.Background(), alice, "favorites", "")
	require.NoError(t, err)
	_, err = env.shelves.AddEntry(context.Background(), alice, shelf.ID, entry.ID)
	require.NoError(t, err)

	require.NoError(t, env.library.RemoveBook(context.Background(), alice, testISBN13))

	entries, err := env.library.List(context.Background(), alice)
	require.NoError(t, err)
	assert.Empty(t, entries)

	got, err := env.shelves.Get(context.Background(), alice, shelf.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Entries)
}

func TestRemoveBook_NotInLibrary(t *testing.T) {
	env := newTestEnv(t, &stubSource{name: "primary", record: stubRecord(testISBN13, "Example", "Author")})
	alice := env.seedUser(t, "alice")

	err := env.library.RemoveBook(context.Background(), alice, testISBN13)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestRemoveBook_DoesNotTouchOtherUsers(t *testing.T) {
	env := newTestEnv(t, &stubSource{name: "primary", record: stubRecord(testISBN13, "Example", "Author")})
	alice := env.seedUser(t, "alice")
	bob := env.seedUser(t, "bob")

	_, err := env.library.AddBook(context.Background(), alice, testISBN13)
	require.NoError(t, err)
	_, err = env.library.AddBook(context.Background(), bob, testISBN13)
	require.NoError(t, err)

	require.NoError(t, env.library.RemoveBook(context.Background(), alice, testISBN13))

	bobEntries, err := env.library.List(context.Background(), bob)
	require.NoError(t, err)
	assert.Len(t, bobEntries, 1)
}
