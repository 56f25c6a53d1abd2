// Package service implements the business logic for the Shelfmark server.
package service

import (
	"context"
	"log/slog"

	"github.com/shelfmark/shelfmark-server/internal/catalog"
	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/errors"
	"github.com/shelfmark/shelfmark-server/internal/id"
	"github.com/shelfmark/shelfmark-server/internal/isbn"
	"github.com/shelfmark/shelfmark-server/internal/store"
)

// BookService resolves ISBNs to catalog books. A book already in the local
// catalog is served from there; otherwise the external catalog sources are
// consulted and the result is persisted for every later request.
type BookService struct {
	store    store.Store
	resolver *catalog.Resolver
	logger   *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(s store.Store, resolver *catalog.Resolver, logger *slog.Logger) *BookService {
	return &BookService{
		store:    s,
		resolver: resolver,
		logger:   logger,
	}
}

// Resolve turns raw ISBN input into a persisted catalog book.
//
// The raw input is normalized to canonical ISBN-13 first; two requests for
// "0-9752298-0-X" and "9780975229804" hit the same row. The local catalog is
// checked before any external source, so a hit here makes zero network calls.
func (s *BookService) Resolve(ctx context.Context, rawISBN string) (*domain.Book, error) {
	canonical, err := isbn.Normalize(rawISBN)
	if err != nil {
		return nil, err
	}

	book, err := s.store.GetBookByISBN(ctx, canonical)
	if err == nil {
		return book, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, errors.Internal("failed to query catalog").WithCause(err)
	}

	record, err := s.resolver.Lookup(ctx, canonical)
	if err != nil {
		return nil, mapLookupError(canonical, err)
	}

	book, err = bookFromRecord(record)
	if err != nil {
		return nil, err
	}

	persisted, err := s.store.CreateBookIfAbsent(ctx, book)
	if err != nil {
		return nil, errors.Internal("failed to persist book").WithCause(err)
	}

	s.logger.Info("resolved book",
		"isbn", canonical,
		"book_id", persisted.ID,
		"title", persisted.Title,
	)
	return persisted, nil
}

// GetBook retrieves a catalog book by ID.
func (s *BookService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("book not found")
		}
		return nil, errors.Internal("failed to get book").WithCause(err)
	}
	return book, nil
}

// UpdateBookFields applies an admin correction to a book's descriptive
// fields. The ISBN is identity and can never change.
func (s *BookService) UpdateBookFields(ctx context.Context, bookID string, patch *domain.BookPatch) (*domain.Book, error) {
	if patch == nil || patch.Empty() {
		return nil, errors.Validation("no fields to update")
	}
	if patch.Title != nil && *patch.Title == "" {
		return nil, errors.Validation("title cannot be empty")
	}
	if patch.Author != nil && *patch.Author == "" {
		return nil, errors.Validation("author cannot be empty")
	}

	book, err := s.store.UpdateBookFields(ctx, bookID, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("book not found")
		}
		return nil, errors.Internal("failed to update book").WithCause(err)
	}
	return book, nil
}

// mapLookupError translates resolver failures into domain errors. Confirmed
// absence and undetermined existence map to different codes so clients can
// tell "this book does not exist" from "try again later".
func mapLookupError(canonical string, err error) error {
	if errors.Is(err, catalog.ErrNotFound) {
		return errors.NotFoundf("book %s not found in any catalog", canonical)
	}

	var searchErr *catalog.SearchFailedError
	if errors.As(err, &searchErr) {
		details := make(map[string]string, len(searchErr.Errors))
		for source, srcErr := range searchErr.Errors {
			details[source] = srcErr.Error()
		}
		return errors.Unavailablef("catalog search failed for %s", canonical).
			WithDetails(details).
			WithCause(err)
	}

	return errors.Internal("catalog lookup failed").WithCause(err)
}

// bookFromRecord builds a new catalog book from a source record. Usability
// (title and author present) is enforced by the resolver before a record
// can win.
func bookFromRecord(record *catalog.Record) (*domain.Book, error) {
	bookID, err := id.New(id.PrefixBook)
	if err != nil {
		return nil, errors.Internal("failed to generate book ID").WithCause(err)
	}

	return &domain.Book{
		ID:          bookID,
		ISBN:        record.ISBN,
		Title:       *record.Title,
		Author:      *record.Author,
		Publisher:   record.Publisher,
		PublishedAt: record.PublishedAt,
		Description: record.Description,
		PageCount:   record.PageCount,
		Thumbnail:   record.Thumbnail,
		Price:       record.Price,
		Series:      record.Series,
	}, nil
}
