package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/errors"
	"github.com/shelfmark/shelfmark-server/internal/id"
	"github.com/shelfmark/shelfmark-server/internal/isbn"
	"github.com/shelfmark/shelfmark-server/internal/store"
)

// LibraryService manages each user's personal library of catalog books.
type LibraryService struct {
	store  store.Store
	books  *BookService
	logger *slog.Logger
}

// NewLibraryService creates a new library service.
func NewLibraryService(s store.Store, books *BookService, logger *slog.Logger) *LibraryService {
	return &LibraryService{
		store:  s,
		books:  books,
		logger: logger,
	}
}

// AddBook resolves the ISBN and adds the book to the user's library as
// unread. Resolution failures surface unchanged: an invalid ISBN, a book no
// catalog knows, or an undetermined search all abort the add.
func (l *LibraryService) AddBook(ctx context.Context, userID, rawISBN string) (*domain.LibraryEntry, error) {
	book, err := l.books.Resolve(ctx, rawISBN)
	if err != nil {
		return nil, err
	}

	entryID, err := id.New(id.PrefixEntry)
	if err != nil {
		return nil, errors.Internal("failed to generate entry ID").WithCause(err)
	}

	entry := &domain.LibraryEntry{
		ID:      entryID,
		UserID:  userID,
		BookID:  book.ID,
		Read:    false,
		AddedAt: time.Now(),
	}

	if err := l.store.CreateLibraryEntry(ctx, entry); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, errors.AlreadyExists("book already in library")
		}
		return nil, errors.Internal("failed to add book to library").WithCause(err)
	}

	l.logger.Info("book added to library",
		"user_id", userID,
		"book_id", book.ID,
		"entry_id", entry.ID,
	)
	return entry, nil
}

// SetReadStatus flips an entry's read flag. Setting the flag to its current
// value is rejected as a conflict so callers notice no-op requests. ReadAt
// always changes together with the flag: stamped on read, cleared on unread.
func (l *LibraryService) SetReadStatus(ctx context.Context, userID, entryID string, read bool) (*domain.LibraryEntry, error) {
	entry, err := l.getOwnedEntry(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}

	if entry.Read == read {
		return nil, errors.Conflict("read status unchanged")
	}

	if read {
		entry.MarkRead(time.Now())
	} else {
		entry.MarkUnread()
	}

	if err := l.store.UpdateLibraryEntry(ctx, entry); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("library entry not found")
		}
		return nil, errors.Internal("failed to update read status").WithCause(err)
	}
	return entry, nil
}

// RemoveBook removes a book from the user's library by ISBN. Every shelf
// entry referencing the library entry is removed in the same transaction.
func (l *LibraryService) RemoveBook(ctx context.Context, userID, rawISBN string) error {
	canonical, err := isbn.Normalize(rawISBN)
	if err != nil {
		return err
	}

	book, err := l.store.GetBookByISBN(ctx, canonical)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errors.NotFound("book not in library")
		}
		return errors.Internal("failed to look up book").WithCause(err)
	}

	entry, err := l.store.GetLibraryEntryByUserAndBook(ctx, userID, book.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errors.NotFound("book not in library")
		}
		return errors.Internal("failed to look up library entry").WithCause(err)
	}

	if err := l.store.DeleteLibraryEntry(ctx, entry.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errors.NotFound("book not in library")
		}
		return errors.Internal("failed to remove book from library").WithCause(err)
	}

	l.logger.Info("book removed from library",
		"user_id", userID,
		"book_id", book.ID,
		"entry_id", entry.ID,
	)
	return nil
}

// GetEntry retrieves one of the user's library entries.
func (l *LibraryService) GetEntry(ctx context.Context, userID, entryID string) (*domain.LibraryEntry, error) {
	return l.getOwnedEntry(ctx, userID, entryID)
}

// List returns the user's library entries, newest first.
func (l *LibraryService) List(ctx context.Context, userID string) ([]*domain.LibraryEntry, error) {
	entries, err := l.store.ListLibraryEntries(ctx, userID)
	if err != nil {
		return nil, errors.Internal("failed to list library").WithCause(err)
	}
	if entries == nil {
		entries = []*domain.LibraryEntry{}
	}
	return entries, nil
}

// getOwnedEntry loads an entry and enforces ownership. A foreign entry is
// forbidden, not hidden: the ID space is unguessable, so leaking existence
// is harmless and the clearer error helps debugging.
func (l *LibraryService) getOwnedEntry(ctx context.Context, userID, entryID string) (*domain.LibraryEntry, error) {
	entry, err := l.store.GetLibraryEntry(ctx, entryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("library entry not found")
		}
		return nil, errors.Internal("failed to get library entry").WithCause(err)
	}

	if entry.UserID != userID {
		return nil, errors.Forbidden("library entry belongs to another user")
	}
	return entry, nil
}
