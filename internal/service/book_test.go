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

func TestResolve_PersistsFromCatalog(t *testing.T) {
	src := &stubSource{name: "primary", record: stubRecord(testISBN13, "Example Title", "Example Author")}
	env := newTestEnv(t, src)

	book, err := env.books.Resolve(context.Background(), testISBN13)
	require.NoError(t, err)

	assert.Equal(t, testISBN13, book.ISBN)
	assert.Equal(t, "Example Title", book.Title)
	assert.Equal(t, "Example Author", book.Author)
	assert.NotEmpty(t, book.ID)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestResolve_NormalizesBeforeLookup(t *testing.T) {
	// 0-9752298-0-X normalizes to 9780975229804.
	src := &stubSource{name: "primary", record: stubRecord("9780975229804", "Example", "Author")}
	env := newTestEnv(t, src)

	book, err := env.books.Resolve(context.Background(), "0-9752298-0-X")
	require.NoError(t, err)
	assert.Equal(t, "9780975229804", book.ISBN)
}

func TestResolve_LocalCatalogFastPath(t *testing.T) {
	src := &stubSource{name: "primary", record: stubRecord(testISBN13, "Example", "Author")}
	env := newTestEnv(t, src)

	first, err := env.books.Resolve(context.Background(), testISBN13)
	require.NoError(t, err)
	require.Equal(t, int32(1), src.calls.Load())

	// A second resolve, even through a different raw spelling, must be
	// served locally without touching any source.
	second, err := env.books.Resolve(context.Background(), "978-4-7973-8257-0")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestResolve_InvalidISBN(t *testing.T) {
	src := &stubSource{name: "primary", record: stubRecord(testISBN13, "Example", "Author")}
	env := newTestEnv(t, src)

	_, err := env.books.Resolve(context.Background(), "not-an-isbn")
	assert.ErrorIs(t, err, errors.ErrValidation)
	assert.Equal(t, int32(0), src.calls.Load())
}

func TestResolve_NotFoundAnywhere(t *testing.T) {
	env := newTestEnv(t,
		&stubSource{name: "primary"},
		&stubSource{name: "secondary"},
	)

	_, err := env.books.Resolve(context.Background(), testISBN13)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestResolve_SearchFailureIsUnavailable(t *testing.T) {
	env := newTestEnv(t, &stubSource{
		name: "primary",
		err:  &catalog.SourceError{Source: "primary", Retryable: false, Err: assert.AnError},
	})

	_, err := env.books.Resolve(context.Background(), testISBN13)

	// Undetermined existence must not be reported as a confirmed miss.
	assert.NotErrorIs(t, err, errors.ErrNotFound)
	assert.ErrorIs(t, err, errors.ErrUnavailable)

	var domainErr *errors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.NotNil(t, domainErr.Details)
}

func TestUpdateBookFields(t *testing.T) {
	src := &stubSource{name: "primary", record: stubRecord(testISBN13, "Original", "Author")}
	env := newTestEnv(t, src)

	book, err := env.books.Resolve(context.Background(), testISBN13)
	require.NoError(t, err)

	title := "Corrected"
	updated, err := env.books.UpdateBookFields(context.Background(), book.ID, &domain.BookPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Corrected", updated.Title)
	assert.Equal(t, book.ISBN, updated.ISBN)
}

func TestUpdateBookFields_EmptyPatch(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.books.UpdateBookFields(context.Background(), "book-x", &domain.BookPatch{})
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestUpdateBookFields_BlankTitleRejected(t *testing.T) {
	env := newTestEnv(t)

	blank := ""
	_, err := env.books.UpdateBookFields(context.Background(), "book-x", &domain.BookPatch{Title: &blank})
	assert.ErrorIs(t, err, errors.ErrValidation)
}
