package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, isbn, title, author, publisher, published_at, description,
	page_count, thumbnail, price, series, created_at, updated_at`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book

	var (
		publisher   sql.NullString
		publishedAt sql.NullString
		description sql.NullString
		pageCount   sql.NullInt64
		thumbnail   sql.NullString
		price       sql.NullInt64
		series      sql.NullString
		createdAt   string
		updatedAt   string
	)

	err := scanner.Scan(
		&b.ID,
		&b.ISBN,
		&b.Title,
		&b.Author,
		&publisher,
		&publishedAt,
		&description,
		&pageCount,
		&thumbnail,
		&price,
		&series,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Publisher = stringPtr(publisher)
	b.PublishedAt = stringPtr(publishedAt)
	b.Description = stringPtr(description)
	b.PageCount = intPtr(pageCount)
	b.Thumbnail = stringPtr(thumbnail)
	b.Price = intPtr(price)
	b.Series = stringPtr(series)

	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &b, nil
}

// CreateBookIfAbsent inserts a catalog book keyed by ISBN. When a row with
// the same ISBN already exists (including one inserted by a concurrent
// resolution between our insert and select), the existing row is returned
// and the attempted insert is discarded. Runs as one transaction.
func (s *Store) CreateBookIfAbsent(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	now := time.Now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	if book.UpdatedAt.IsZero() {
		book.UpdatedAt = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO books (
			id, isbn, title, author, publisher, published_at, description,
			page_count, thumbnail, price, series, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(isbn) DO NOTHING`,
		book.ID,
		book.ISBN,
		book.Title,
		book.Author,
		nullableString(book.Publisher),
		nullableString(book.PublishedAt),
		nullableString(book.Description),
		nullableInt(book.PageCount),
		nullableString(book.Thumbnail),
		nullableInt(book.Price),
		nullableString(book.Series),
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
	)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE isbn = ?`, book.ISBN)
	persisted, err := scanBook(row)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return persisted, nil
}

// GetBook retrieves a book by ID.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, id)

	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound.WithMessage("book not found")
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetBookByISBN retrieves a book by its canonical ISBN-13.
// Returns store.ErrNotFound if no book with this ISBN exists.
func (s *Store) GetBookByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE isbn = ?`, isbn)

	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound.WithMessage("book not found")
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBookFields applies an admin correction to descriptive fields. The
// ISBN is identity and never changes. Returns the updated row.
func (s *Store) UpdateBookFields(ctx context.Context, id string, patch *domain.BookPatch) (*domain.Book, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, id)
	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound.WithMessage("book not found")
	}
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		b.Title = *patch.Title
	}
	if patch.Author != nil {
		b.Author = *patch.Author
	}
	if patch.Publisher != nil {
		b.Publisher = patch.Publisher
	}
	if patch.PublishedAt != nil {
		b.PublishedAt = patch.PublishedAt
	}
	if patch.Description != nil {
		b.Description = patch.Description
	}
	if patch.PageCount != nil {
		b.PageCount = patch.PageCount
	}
	if patch.Thumbnail != nil {
		b.Thumbnail = patch.Thumbnail
	}
	if patch.Price != nil {
		b.Price = patch.Price
	}
	if patch.Series != nil {
		b.Series = patch.Series
	}
	b.UpdatedAt = time.Now()

	_, err = tx.ExecContext(ctx, `
		UPDATE books SET
			title = ?, author = ?, publisher = ?, published_at = ?,
			description = ?, page_count = ?, thumbnail = ?, price = ?,
			series = ?, updated_at = ?
		WHERE id = ?`,
		b.Title,
		b.Author,
		nullableString(b.Publisher),
		nullableString(b.PublishedAt),
		nullableString(b.Description),
		nullableInt(b.PageCount),
		nullableString(b.Thumbnail),
		nullableInt(b.Price),
		nullableString(b.Series),
		formatTime(b.UpdatedAt),
		id,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return b, nil
}
