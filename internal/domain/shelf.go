package domain

import "time"

// Shelf is a named, orderable collection of a user's library entries.
// Shelves are personal: each belongs to exactly one user, who is the only
// one allowed to rename, reorder, or delete it. Public shelves are readable
// by anyone; toggling visibility never touches the entries themselves.
type Shelf struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Public      bool      `json:"public"`
	Entries     []ShelfEntry `json:"entries"`
}

// ShelfEntry is a shelf↔library-entry membership. Position values within a
// shelf are dense: a permutation of 0..count-1 after any reorder.
type ShelfEntry struct {
	AddedAt  time.Time `json:"added_at"`
	ID       string    `json:"id"`
	ShelfID  string    `json:"shelf_id"`
	EntryID  string    `json:"entry_id"` // library entry ID
	Position int       `json:"position"`
}

// ContainsEntry reports whether the library entry is already on this shelf.
func (s *Shelf) ContainsEntry(entryID string) bool {
	for i := range s.Entries {
		if s.Entries[i].EntryID == entryID {
			return true
		}
	}
	return false
}

// EntryIDs returns the shelf's library entry IDs in display order.
func (s *Shelf) EntryIDs() []string {
	ids := make([]string, len(s.Entries))
	for i := range s.Entries {
		ids[i] = s.Entries[i].EntryID
	}
	return ids
}
