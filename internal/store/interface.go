// Package store defines the persistence interface for the Shelfmark server.
package store

import (
	"context"

	"github.com/shelfmark/shelfmark-server/internal/domain"
)

// Store defines the interface for all persistence operations. Every method
// executes within a single transaction; no call spans a user round trip or
// an external catalog lookup.
type Store interface {
	// Lifecycle
	Close() error

	// Users
	EnsureUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)

	// Books (catalog)
	// CreateBookIfAbsent inserts the book unless a row with the same ISBN
	// already exists, and returns the persisted row either way. Two
	// concurrent first-time resolutions of one ISBN both get the same row.
	CreateBookIfAbsent(ctx context.Context, book *domain.Book) (*domain.Book, error)
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	GetBookByISBN(ctx context.Context, isbn string) (*domain.Book, error)
	UpdateBookFields(ctx context.Context, id string, patch *domain.BookPatch) (*domain.Book, error)

	// Library entries
	CreateLibraryEntry(ctx context.Context, entry *domain.LibraryEntry) error
	GetLibraryEntry(ctx context.Context, id string) (*domain.LibraryEntry, error)
	GetLibraryEntryByUserAndBook(ctx context.Context, userID, bookID string) (*domain.LibraryEntry, error)
	ListLibraryEntries(ctx context.Context, userID string) ([]*domain.LibraryEntry, error)
	UpdateLibraryEntry(ctx context.Context, entry *domain.LibraryEntry) error
	// DeleteLibraryEntry removes the entry and every shelf entry that
	// references it in one transaction; no orphaned shelf entry survives.
	DeleteLibraryEntry(ctx context.Context, id string) error

	// Shelves
	CreateShelf(ctx context.Context, shelf *domain.Shelf) error
	GetShelf(ctx context.Context, id string) (*domain.Shelf, error)
	UpdateShelf(ctx context.Context, shelf *domain.Shelf) error
	DeleteShelf(ctx context.Context, id string) error
	ListShelvesByOwner(ctx context.Context, ownerID string) ([]*domain.Shelf, error)
	ListPublicShelvesByOwner(ctx context.Context, ownerID string) ([]*domain.Shelf, error)
	// AddShelfEntry assigns the next position (max+1, 0 when empty) inside
	// the insert transaction and sets it on the passed entry.
	AddShelfEntry(ctx context.Context, entry *domain.ShelfEntry) error
	RemoveShelfEntry(ctx context.Context, shelfID, entryID string) error
	// ReorderShelf rewrites positions 0..n-1 in the given sequence. The
	// supplied IDs must be exactly the shelf's current membership;
	// otherwise ErrInvalidInput, and the prior order is kept.
	ReorderShelf(ctx context.Context, shelfID string, entryIDs []string) error

	// Social graph
	// CreateFollow checks for a block from the target toward the follower
	// and inserts the edge in one transaction; ErrBlocked when blocked.
	CreateFollow(ctx context.Context, follow *domain.Follow) error
	DeleteFollow(ctx context.Context, followerID, followingID string) error
	FollowExists(ctx context.Context, followerID, followingID string) (bool, error)
	ListFollowing(ctx context.Context, followerID string) ([]*domain.Follow, error)
	ListFollowers(ctx context.Context, followingID string) ([]*domain.Follow, error)
	// CreateBlock removes any follow edge in either direction between the
	// pair and inserts the block, all in one transaction.
	CreateBlock(ctx context.Context, block *domain.Block) error
	DeleteBlock(ctx context.Context, blockerID, blockedID string) error
	BlockExists(ctx context.Context, blockerID, blockedID string) (bool, error)
	ListBlocked(ctx context.Context, blockerID string) ([]*domain.Block, error)
}
