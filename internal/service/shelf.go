package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/errors"
	"github.com/shelfmark/shelfmark-server/internal/id"
	"github.com/shelfmark/shelfmark-server/internal/store"
)

// ShelfService manages named, ordered collections of library entries.
// Shelves are strictly personal: only the owner mutates them, and a shelf
// can only ever hold entries from the owner's own library.
type ShelfService struct {
	store  store.Store
	logger *slog.Logger
}

// NewShelfService creates a new shelf service.
func NewShelfService(s store.Store, logger *slog.Logger) *ShelfService {
	return &ShelfService{store: s, logger: logger}
}

// Create makes a new private shelf for the user.
func (s *ShelfService) Create(ctx context.Context, userID, name, description string) (*domain.Shelf, error) {
	if name == "" {
		return nil, errors.Validation("shelf name cannot be empty")
	}

	shelfID, err := id.New(id.PrefixShelf)
	if err != nil {
		return nil, errors.Internal("failed to generate shelf ID").WithCause(err)
	}

	now := time.Now()
	shelf := &domain.Shelf{
		ID:          shelfID,
		OwnerID:     userID,
		Name:        name,
		Description: description,
		Public:      false,
		CreatedAt:   now,
		UpdatedAt:   now,
		Entries:     []domain.ShelfEntry{},
	}

	if err := s.store.CreateShelf(ctx, shelf); err != nil {
		return nil, errors.Internal("failed to create shelf").WithCause(err)
	}

	s.logger.Info("shelf created", "user_id", userID, "shelf_id", shelf.ID, "name", name)
	return shelf, nil
}

// Get retrieves a shelf. The owner always sees it; anyone else only when it
// is public.
func (s *ShelfService) Get(ctx context.Context, viewerID, shelfID string) (*domain.Shelf, error) {
	shelf, err := s.getShelf(ctx, shelfID)
	if err != nil {
		return nil, err
	}
	if shelf.OwnerID != viewerID && !shelf.Public {
		return nil, errors.NotFound("shelf not found")
	}
	return shelf, nil
}

// Rename changes a shelf's name and optional description.
func (s *ShelfService) Rename(ctx context.Context, userID, shelfID, name, description string) (*domain.Shelf, error) {
	if name == "" {
		return nil, errors.Validation("shelf name cannot be empty")
	}

	shelf, err := s.getOwnedShelf(ctx, userID, shelfID)
	if err != nil {
		return nil, err
	}

	shelf.Name = name
	shelf.Description = description
	shelf.UpdatedAt = time.Now()

	if err := s.store.UpdateShelf(ctx, shelf); err != nil {
		return nil, errors.Internal("failed to rename shelf").WithCause(err)
	}
	return shelf, nil
}

// SetVisibility toggles a shelf between private and public. Entries are
// untouched either way.
func (s *ShelfService) SetVisibility(ctx context.Context, userID, shelfID string, public bool) (*domain.Shelf, error) {
	shelf, err := s.getOwnedShelf(ctx, userID, shelfID)
	if err != nil {
		return nil, err
	}

	if shelf.Public != public {
		shelf.Public = public
		shelf.UpdatedAt = time.Now()
		if err := s.store.UpdateShelf(ctx, shelf); err != nil {
			return nil, errors.Internal("failed to update shelf visibility").WithCause(err)
		}
	}
	return shelf, nil
}

// Delete removes a shelf and its memberships. Library entries survive;
// deleting a shelf never deletes books from the library.
func (s *ShelfService) Delete(ctx context.Context, userID, shelfID string) error {
	if _, err := s.getOwnedShelf(ctx, userID, shelfID); err != nil {
		return err
	}

	if err := s.store.DeleteShelf(ctx, shelfID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errors.NotFound("shelf not found")
		}
		return errors.Internal("failed to delete shelf").WithCause(err)
	}

	s.logger.Info("shelf deleted", "user_id", userID, "shelf_id", shelfID)
	return nil
}

// ListMine returns all of the user's own shelves.
func (s *ShelfService) ListMine(ctx context.Context, userID string) ([]*domain.Shelf, error) {
	shelves, err := s.store.ListShelvesByOwner(ctx, userID)
	if err != nil {
		return nil, errors.Internal("failed to list shelves").WithCause(err)
	}
	if shelves == nil {
		shelves = []*domain.Shelf{}
	}
	return shelves, nil
}

// ListUserPublic returns another user's public shelves.
func (s *ShelfService) ListUserPublic(ctx context.Context, ownerID string) ([]*domain.Shelf, error) {
	shelves, err := s.store.ListPublicShelvesByOwner(ctx, ownerID)
	if err != nil {
		return nil, errors.Internal("failed to list public shelves").WithCause(err)
	}
	if shelves == nil {
		shelves = []*domain.Shelf{}
	}
	return shelves, nil
}

// AddEntry places one of the user's library entries at the end of the shelf.
// The entry must come from the shelf owner's own library.
func (s *ShelfService) AddEntry(ctx context.Context, userID, shelfID, entryID string) (*domain.ShelfEntry, error) {
	shelf, err := s.getOwnedShelf(ctx, userID, shelfID)
	if err != nil {
		return nil, err
	}

	entry, err := s.store.GetLibraryEntry(ctx, entryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("library entry not found")
		}
		return nil, errors.Internal("failed to get library entry").WithCause(err)
	}
	if entry.UserID != userID {
		return nil, errors.Forbidden("library entry belongs to another user")
	}

	if shelf.ContainsEntry(entryID) {
		return nil, errors.AlreadyExists("entry already on shelf")
	}

	shelfEntryID, err := id.New(id.PrefixShelfEntry)
	if err != nil {
		return nil, errors.Internal("failed to generate shelf entry ID").WithCause(err)
	}

	shelfEntry := &domain.ShelfEntry{
		ID:      shelfEntryID,
		ShelfID: shelfID,
		EntryID: entryID,
		AddedAt: time.Now(),
	}

	if err := s.store.AddShelfEntry(ctx, shelfEntry); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, errors.AlreadyExists("entry already on shelf")
		}
		return nil, errors.Internal("failed to add entry to shelf").WithCause(err)
	}
	return shelfEntry, nil
}

// RemoveEntry takes a library entry off the shelf. Remaining positions are
// re-compacted so they stay dense.
func (s *ShelfService) RemoveEntry(ctx context.Context, userID, shelfID, entryID string) error {
	if _, err := s.getOwnedShelf(ctx, userID, shelfID); err != nil {
		return err
	}

	if err := s.store.RemoveShelfEntry(ctx, shelfID, entryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errors.NotFound("entry not on shelf")
		}
		return errors.Internal("failed to remove entry from shelf").WithCause(err)
	}
	return nil
}

// Reorder rewrites the shelf's display order. The supplied IDs must be
// exactly the current membership, each exactly once; anything else is
// rejected and the previous order is preserved.
func (s *ShelfService) Reorder(ctx context.Context, userID, shelfID string, entryIDs []string) (*domain.Shelf, error) {
	if _, err := s.getOwnedShelf(ctx, userID, shelfID); err != nil {
		return nil, err
	}

	if err := s.store.ReorderShelf(ctx, shelfID, entryIDs); err != nil {
		if errors.Is(err, store.ErrInvalidInput) {
			return nil, errors.Validation("reorder must include every shelf entry exactly once")
		}
		return nil, errors.Internal("failed to reorder shelf").WithCause(err)
	}

	return s.getShelf(ctx, shelfID)
}

func (s *ShelfService) getShelf(ctx context.Context, shelfID string) (*domain.Shelf, error) {
	shelf, err := s.store.GetShelf(ctx, shelfID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("shelf not found")
		}
		return nil, errors.Internal("failed to get shelf").WithCause(err)
	}
	return shelf, nil
}

// getOwnedShelf loads a shelf and enforces ownership for mutation.
func (s *ShelfService) getOwnedShelf(ctx context.Context, userID, shelfID string) (*domain.Shelf, error) {
	shelf, err := s.getShelf(ctx, shelfID)
	if err != nil {
		return nil, err
	}
	if shelf.OwnerID != userID {
		return nil, errors.Forbidden("shelf belongs to another user")
	}
	return shelf, nil
}
