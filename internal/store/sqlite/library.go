package sqlite

import (
	"context"
	"database/sql"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/store"
)

const entryColumns = `id, user_id, book_id, read, added_at, read_at`

// scanLibraryEntry scans a row into a domain.LibraryEntry.
func scanLibraryEntry(scanner interface{ Scan(dest ...any) error }) (*domain.LibraryEntry, error) {
	var e domain.LibraryEntry

	var (
		read    int
		addedAt string
		readAt  sql.NullString
	)

	err := scanner.Scan(&e.ID, &e.UserID, &e.BookID, &read, &addedAt, &readAt)
	if err != nil {
		return nil, err
	}

	e.Read = read != 0
	if e.AddedAt, err = parseTime(addedAt); err != nil {
		return nil, err
	}
	if e.ReadAt, err = parseNullableTime(readAt); err != nil {
		return nil, err
	}

	return &e, nil
}

// CreateLibraryEntry inserts a library entry.
// Returns store.ErrAlreadyExists when the user already has this book.
func (s *Store) CreateLibraryEntry(ctx context.Context, entry *domain.LibraryEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO library_entries (id, user_id, book_id, read, added_at, read_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.UserID,
		entry.BookID,
		boolToInt(entry.Read),
		formatTime(entry.AddedAt),
		nullTimeString(entry.ReadAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("book already in library")
	}
	return err
}

// GetLibraryEntry retrieves a library entry by ID.
func (s *Store) GetLibraryEntry(ctx context.Context, id string) (*domain.LibraryEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM library_entries WHERE id = ?`, id)

	e, err := scanLibraryEntry(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound.WithMessage("library entry not found")
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetLibraryEntryByUserAndBook retrieves the (user, book) entry if one exists.
func (s *Store) GetLibraryEntryByUserAndBook(ctx context.Context, userID, bookID string) (*domain.LibraryEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM library_entries WHERE user_id = ? AND book_id = ?`,
		userID, bookID)

	e, err := scanLibraryEntry(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound.WithMessage("library entry not found")
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListLibraryEntries returns a user's entries, newest first.
func (s *Store) ListLibraryEntries(ctx context.Context, userID string) ([]*domain.LibraryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM library_entries WHERE user_id = ? ORDER BY added_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.LibraryEntry
	for rows.Next() {
		e, err := scanLibraryEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UpdateLibraryEntry writes the read flag and read timestamp together so the
// pair can never be observed out of sync.
func (s *Store) UpdateLibraryEntry(ctx context.Context, entry *domain.LibraryEntry) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE library_entries SET read = ?, read_at = ? WHERE id = ?`,
		boolToInt(entry.Read),
		nullTimeString(entry.ReadAt),
		entry.ID,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage("library entry not found")
	}
	return nil
}

// DeleteLibraryEntry removes an entry and cascades removal of every shelf
// entry referencing it, re-compacting positions on affected shelves, all in
// one transaction.
func (s *Store) DeleteLibraryEntry(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Shelves that will lose a member need their positions re-compacted.
	rows, err := tx.QueryContext(ctx,
		`SELECT DISTINCT shelf_id FROM shelf_entries WHERE entry_id = ?`, id)
	if err != nil {
		return err
	}
	var shelfIDs []string
	for rows.Next() {
		var shelfID string
		if err := rows.Scan(&shelfID); err != nil {
			rows.Close()
			return err
		}
		shelfIDs = append(shelfIDs, shelfID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM shelf_entries WHERE entry_id = ?`, id); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM library_entries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage("library entry not found")
	}

	for _, shelfID := range shelfIDs {
		if err := compactShelfPositions(ctx, tx, shelfID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
