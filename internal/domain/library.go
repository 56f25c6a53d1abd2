package domain

import "time"

// LibraryEntry is a user's personal record of a catalog book. At most one
// entry exists per (user, book) pair; only the owning user may mutate it.
type LibraryEntry struct {
	AddedAt time.Time  `json:"added_at"`
	ReadAt  *time.Time `json:"read_at,omitempty"` // set iff Read is true
	ID      string     `json:"id"`
	UserID  string     `json:"user_id"`
	BookID  string     `json:"book_id"`
	Read    bool       `json:"read"`
}

// MarkRead sets the read flag and stamps ReadAt.
func (e *LibraryEntry) MarkRead(now time.Time) {
	e.Read = true
	e.ReadAt = &now
}

// MarkUnread clears the read flag and ReadAt together, keeping the pair
// consistent.
func (e *LibraryEntry) MarkUnread() {
	e.Read = false
	e.ReadAt = nil
}
