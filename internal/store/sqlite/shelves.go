package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/store"
)

// shelfColumns is the ordered list of columns selected in shelf queries.
// Must match the scan order in scanShelf.
const shelfColumns = `id, owner_id, name, description, public, created_at, updated_at`

// scanShelf scans a row into a domain.Shelf (without entries).
func scanShelf(scanner interface{ Scan(dest ...any) error }) (*domain.Shelf, error) {
	var sh domain.Shelf

	var (
		description sql.NullString
		public      int
		createdAt   string
		updatedAt   string
	)

	err := scanner.Scan(
		&sh.ID,
		&sh.OwnerID,
		&sh.Name,
		&description,
		&public,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		sh.Description = description.String
	}
	sh.Public = public != 0

	if sh.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if sh.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &sh, nil
}

// loadShelfEntries loads a shelf's entries in display order.
func (s *Store) loadShelfEntries(ctx context.Context, shelfID string) ([]domain.ShelfEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, shelf_id, entry_id, position, added_at
		FROM shelf_entries WHERE shelf_id = ? ORDER BY position`, shelfID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []domain.ShelfEntry{}
	for rows.Next() {
		var e domain.ShelfEntry
		var addedAt string
		if err := rows.Scan(&e.ID, &e.ShelfID, &e.EntryID, &e.Position, &addedAt); err != nil {
			return nil, err
		}
		if e.AddedAt, err = parseTime(addedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CreateShelf inserts a new shelf.
func (s *Store) CreateShelf(ctx context.Context, shelf *domain.Shelf) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shelves (id, owner_id, name, description, public, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		shelf.ID,
		shelf.OwnerID,
		shelf.Name,
		sql.NullString{String: shelf.Description, Valid: shelf.Description != ""},
		boolToInt(shelf.Public),
		formatTime(shelf.CreatedAt),
		formatTime(shelf.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// GetShelf retrieves a shelf with its ordered entries.
// Returns store.ErrNotFound if the shelf does not exist.
func (s *Store) GetShelf(ctx context.Context, id string) (*domain.Shelf, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shelfColumns+` FROM shelves WHERE id = ?`, id)

	sh, err := scanShelf(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound.WithMessage("shelf not found")
	}
	if err != nil {
		return nil, err
	}

	if sh.Entries, err = s.loadShelfEntries(ctx, id); err != nil {
		return nil, fmt.Errorf("load shelf entries: %w", err)
	}
	return sh, nil
}

// UpdateShelf updates shelf metadata (name, description, visibility).
// Returns store.ErrNotFound if the shelf does not exist.
func (s *Store) UpdateShelf(ctx context.Context, shelf *domain.Shelf) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE shelves SET name = ?, description = ?, public = ?, updated_at = ?
		WHERE id = ?`,
		shelf.Name,
		sql.NullString{String: shelf.Description, Valid: shelf.Description != ""},
		boolToInt(shelf.Public),
		formatTime(shelf.UpdatedAt),
		shelf.ID,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage("shelf not found")
	}
	return nil
}

// DeleteShelf performs a hard delete. ON DELETE CASCADE removes the shelf's
// entries. Returns store.ErrNotFound if the shelf does not exist.
func (s *Store) DeleteShelf(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM shelves WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage("shelf not found")
	}
	return nil
}

// ListShelvesByOwner returns all shelves owned by a user, oldest first,
// entries included.
func (s *Store) ListShelvesByOwner(ctx context.Context, ownerID string) ([]*domain.Shelf, error) {
	return s.listShelves(ctx,
		`SELECT `+shelfColumns+` FROM shelves WHERE owner_id = ? ORDER BY created_at`, ownerID)
}

// ListPublicShelvesByOwner returns only the public shelves of a user.
func (s *Store) ListPublicShelvesByOwner(ctx context.Context, ownerID string) ([]*domain.Shelf, error) {
	return s.listShelves(ctx,
		`SELECT `+shelfColumns+` FROM shelves WHERE owner_id = ? AND public = 1 ORDER BY created_at`, ownerID)
}

func (s *Store) listShelves(ctx context.Context, query string, args ...any) ([]*domain.Shelf, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shelves []*domain.Shelf
	for rows.Next() {
		sh, err := scanShelf(rows)
		if err != nil {
			return nil, err
		}
		shelves = append(shelves, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, sh := range shelves {
		if sh.Entries, err = s.loadShelfEntries(ctx, sh.ID); err != nil {
			return nil, fmt.Errorf("load shelf entries for %s: %w", sh.ID, err)
		}
	}
	return shelves, nil
}

// AddShelfEntry inserts a shelf membership at the next position (current
// max + 1, 0 when empty), assigned inside the insert transaction.
// Returns store.ErrAlreadyExists if the library entry is already a member.
func (s *Store) AddShelfEntry(ctx context.Context, entry *domain.ShelfEntry) error {
	if entry.AddedAt.IsZero() {
		entry.AddedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var maxPos sql.NullInt64
	err = tx.QueryRowContext(ctx,
		`SELECT MAX(position) FROM shelf_entries WHERE shelf_id = ?`, entry.ShelfID).Scan(&maxPos)
	if err != nil {
		return err
	}

	entry.Position = 0
	if maxPos.Valid {
		entry.Position = int(maxPos.Int64) + 1
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO shelf_entries (id, shelf_id, entry_id, position, added_at)
		VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.ShelfID, entry.EntryID, entry.Position, formatTime(entry.AddedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("entry already on shelf")
	}
	if err != nil {
		return err
	}

	return tx.Commit()
}

// RemoveShelfEntry deletes a membership and re-compacts the shelf's
// positions in one transaction.
// Returns store.ErrNotFound if the entry is not on the shelf.
func (s *Store) RemoveShelfEntry(ctx context.Context, shelfID, entryID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM shelf_entries WHERE shelf_id = ? AND entry_id = ?`, shelfID, entryID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage("entry not on shelf")
	}

	if err := compactShelfPositions(ctx, tx, shelfID); err != nil {
		return err
	}

	return tx.Commit()
}

// ReorderShelf rewrites display positions 0..n-1 in the supplied sequence.
// The transaction validates inside itself that the supplied IDs are exactly
// the current membership; on mismatch it returns store.ErrInvalidInput and
// leaves the previous order untouched.
func (s *Store) ReorderShelf(ctx context.Context, shelfID string, entryIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT entry_id FROM shelf_entries WHERE shelf_id = ?`, shelfID)
	if err != nil {
		return err
	}
	current := make(map[string]bool)
	for rows.Next() {
		var entryID string
		if err := rows.Scan(&entryID); err != nil {
			rows.Close()
			return err
		}
		current[entryID] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if len(entryIDs) != len(current) {
		return store.ErrInvalidInput.WithMessage("reorder must include every shelf entry exactly once")
	}
	seen := make(map[string]bool, len(entryIDs))
	for _, entryID := range entryIDs {
		if !current[entryID] || seen[entryID] {
			return store.ErrInvalidInput.WithMessage("reorder must include every shelf entry exactly once")
		}
		seen[entryID] = true
	}

	for pos, entryID := range entryIDs {
		if _, err := tx.ExecContext(ctx,
			`UPDATE shelf_entries SET position = ? WHERE shelf_id = ? AND entry_id = ?`,
			pos, shelfID, entryID); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE shelves SET updated_at = ? WHERE id = ?`,
		formatTime(time.Now()), shelfID); err != nil {
		return err
	}

	return tx.Commit()
}

// compactShelfPositions rewrites a shelf's positions to 0..n-1 preserving
// the current order. Runs inside the caller's transaction.
func compactShelfPositions(ctx context.Context, tx *sql.Tx, shelfID string) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM shelf_entries WHERE shelf_id = ? ORDER BY position`, shelfID)
	if err != nil {
		return err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for pos, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`UPDATE shelf_entries SET position = ? WHERE id = ?`, pos, id); err != nil {
			return err
		}
	}
	return nil
}
