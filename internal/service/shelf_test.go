package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark-server/internal/catalog"
	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/errors"
)

// multiStub serves a usable record for any ISBN it is asked about.
type multiStub struct{}

func (m *multiStub) Name() string { return "multi" }

func (m *multiStub) Lookup(_ context.Context, isbn string) (*catalog.Record, error) {
	return stubRecord(isbn, "Title "+isbn, "Author "+isbn), nil
}

// shelfEnv seeds a user with three library entries for shelf tests.
func shelfEnv(t *testing.T) (*testEnv, string, []*domain.LibraryEntry) {
	t.Helper()

	env := newTestEnv(t, &multiStub{})
	alice := env.seedUser(t, "alice")

	var entries []*domain.LibraryEntry
	for _, isbn := range []string{"9784797382570", "9780132350884", "9780201616224"} {
		entry, err := env.library.AddBook(context.Background(), alice, isbn)
		require.NoError(t, err)
		entries = append(entries, entry)
	}
	return env, alice, entries
}

func TestCreateShelf(t *testing.T) {
	env, alice, _ := shelfEnv(t)

	shelf, err := env.shelves.Create(context.Background(), alice, "favorites", "books I love")
	require.NoError(t, err)

	assert.Equal(t, alice, shelf.OwnerID)
	assert.Equal(t, "favorites", shelf.Name)
	assert.False(t, shelf.Public, "new shelves start private")
	assert.Empty(t, shelf.Entries)
}

func TestCreateShelf_EmptyName(t *testing.T) {
	env, alice, _ := shelfEnv(t)

	_, err := env.shelves.Create(context.Background(), alice, "", "")
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestAddEntry_AppendsInOrder(t *testing.T) {
	env, alice, entries := shelfEnv(t)
	ctx := context.Background()

	shelf, err := env.shelves.Create(ctx, alice, "favorites", "")
	require.NoError(t, err)

	for _, entry := range entries {
		_, err := env.shelves.AddEntry(ctx, alice, shelf.ID, entry.ID)
		require.NoError(t, err)
	}

	got, err := env.shelves.Get(ctx, alice, shelf.ID)
	require.NoError(t, err)
	require.Len(t, got.Entries, 3)
	for i, se := range got.Entries {
		assert.Equal(t, i, se.Position)
		assert.Equal(t, entries[i].ID, se.EntryID)
	}
}

func TestAddEntry_DuplicateRejected(t *testing.T) {
	env, alice, entries := shelfEnv(t)
	ctx := context.Background()

	shelf, err := env.shelves.Create(ctx, alice, "favorites", "")
	require.NoError(t, err)

	_, err = env.shelves.AddEntry(ctx, alice, shelf.ID, entries[0].ID)
	require.NoError(t, err)

	_, err = env.shelves.AddEntry(ctx, alice, shelf.ID, entries[0].ID)
	assert.ErrorIs(t, err, errors.ErrAlreadyExists)
}

func TestAddEntry_ForeignLibraryEntryForbidden(t *testing.T) {
	env, _, entries := shelfEnv(t)
	ctx := context.Background()
	bob := env.seedUser(t, "bob")

	bobShelf, err := env.shelves.Create(ctx, bob, "stolen", "")
	require.NoError(t, err)

	// Bob cannot shelve Alice's library entry.
	_, err = env.shelves.AddEntry(ctx, bob, bobShelf.ID, entries[0].ID)
	assert.ErrorIs(t, err, errors.ErrForbidden)
}

func TestShelfMutation_NonOwnerForbidden(t *testing.T) {
	env, alice, entries := shelfEnv(t)
	ctx := context.Background()
	bob := env.seedUser(t, "bob")

	shelf, err := env.shelves.Create(ctx, alice, "favorites", "")
	require.NoError(t, err)

	_, err = env.shelves.Rename(ctx, bob, shelf.ID, "hijacked", "")
	assert.ErrorIs(t, err, errors.ErrForbidden)

	_, err = env.shelves.AddEntry(ctx, bob, shelf.ID, entries[0].ID)
	assert.ErrorIs(t, err, errors.ErrForbidden)

	err = env.shelves.Delete(ctx, bob, shelf.ID)
	assert.ErrorIs(t, err, errors.ErrForbidden)
}

func TestGetShelf_Visibility(t *testing.T) {
	env, alice, _ := shelfEnv(t)
	ctx := context.Background()
	bob := env.seedUser(t, "bob")

	shelf, err := env.shelves.Create(ctx, alice, "favorites", "")
	require.NoError(t, err)

	// Private shelves are hidden from non-owners.
	_, err = env.shelves.Get(ctx, bob, shelf.ID)
	assert.ErrorIs(t, err, errors.ErrNotFound)

	_, err = env.shelves.SetVisibility(ctx, alice, shelf.ID, true)
	require.NoError(t, err)

	got, err := env.shelves.Get(ctx, bob, shelf.ID)
	require.NoError(t, err)
	assert.Equal(t, shelf.ID, got.ID)
}

func TestListUserPublic(t *testing.T) {
	env, alice, _ := shelfEnv(t)
	ctx := context.Background()

	_, err := env.shelves.Create(ctx, alice, "private", "")
	require.NoError(t, err)
	public, err := env.shelves.Create(ctx, alice, "public", "")
	require.NoError(t, err)
	_, err = env.shelves.SetVisibility(ctx, alice, public.ID, true)
	require.NoError(t, err)

	shelves, err := env.shelves.ListUserPublic(ctx, alice)
	require.NoError(t, err)
	require.Len(t, shelves, 1)
	assert.Equal(t, public.ID, shelves[0].ID)
}

func TestReorder(t *testing.T) {
	env, alice, entries := shelfEnv(t)
	ctx := context.Background()

	shelf, err := env.shelves.Create(ctx, alice, "favorites", "")
	require.NoError(t, err)
	for _, entry := range entries {
		_, err := env.shelves.AddEntry(ctx, alice, shelf.ID, entry.ID)
		require.NoError(t, err)
	}

	reversed := []string{entries[2].ID, entries[1].ID, entries[0].ID}
	got, err := env.shelves.Reorder(ctx, alice, shelf.ID, reversed)
	require.NoError(t, err)
	assert.Equal(t, reversed, got.EntryIDs())
}

func TestReorder_BadPermutation(t *testing.T) {
	env, alice, entries := shelfEnv(t)
	ctx := context.Background()

	shelf, err := env.shelves.Create(ctx, alice, "favorites", "")
	require.NoError(t, err)
	for _, entry := range entries {
		_, err := env.shelves.AddEntry(ctx, alice, shelf.ID, entry.ID)
		require.NoError(t, err)
	}

	_, err = env.shelves.Reorder(ctx, alice, shelf.ID, []string{entries[0].ID, entries[1].ID})
	assert.ErrorIs(t, err, errors.ErrValidation)

	// Order is untouched after the rejected request.
	got, err := env.shelves.Get(ctx, alice, shelf.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{entries[0].ID, entries[1].ID, entries[2].ID}, got.EntryIDs())
}

func TestRemoveEntry(t *testing.T) {
	env, alice, entries := shelfEnv(t)
	ctx := context.Background()

	shelf, err := env.shelves.Create(ctx, alice, "favorites", "")
	require.NoError(t, err)
	for _, entry := range entries {
		_, err := env.shelves.AddEntry(ctx, alice, shelf.ID, entry.ID)
		require.NoError(t, err)
	}

	require.NoError(t, env.shelves.RemoveEntry(ctx, alice, shelf.ID, entries[0].ID))

	got, err := env.shelves.Get(ctx, alice, shelf.ID)
	require.NoError(t, err)
	require.Len(t, got.Entries, 2)
	assert.Equal(t, 0, got.Entries[0].Position)
	assert.Equal(t, 1, got.Entries[1].Position)

	err = env.shelves.RemoveEntry(ctx, alice, shelf.ID, entries[0].ID)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestDeleteShelf_LibrarySurvives(t *testing.T) {
	env, alice, entries := shelfEnv(t)
	ctx := context.Background()

	shelf, err := env.shelves.Create(ctx, alice, "favorites", "")
	require.NoError(t, err)
	_, err = env.shelves.AddEntry(ctx, alice, shelf.ID, entries[0].ID)
	require.NoError(t, err)

	require.NoError(t, env.shelves.Delete(ctx, alice, shelf.ID))

	library, err := env.library.List(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, library, 3)
}
