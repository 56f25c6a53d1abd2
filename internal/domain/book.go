// Package domain contains the core business entities for the Shelfmark library.
package domain

import "time"

// Book is a catalog record keyed by its canonical ISBN-13. Identity (ISBN)
// is immutable once created; descriptive fields may be corrected by admins.
// Books belong to the shared catalog, never to a user.
type Book struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ID          string    `json:"id"`
	ISBN        string    `json:"isbn"` // canonical 13-digit form
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Publisher   *string   `json:"publisher,omitempty"`
	PublishedAt *string   `json:"published_at,omitempty"` // as supplied by the source, e.g. "2012-06-23" or "2012"
	Description *string   `json:"description,omitempty"`
	PageCount   *int      `json:"page_count,omitempty"`
	Thumbnail   *string   `json:"thumbnail,omitempty"`
	Price       *int      `json:"price,omitempty"` // smallest currency unit
	Series      *string   `json:"series,omitempty"`
}

// BookPatch carries admin corrections to a book's descriptive fields.
// Nil fields are left untouched; ISBN is never patchable.
type BookPatch struct {
	Title       *string `json:"title,omitempty"`
	Author      *string `json:"author,omitempty"`
	Publisher   *string `json:"publisher,omitempty"`
	PublishedAt *string `json:"published_at,omitempty"`
	Description *string `json:"description,omitempty"`
	PageCount   *int    `json:"page_count,omitempty"`
	Thumbnail   *string `json:"thumbnail,omitempty"`
	Price       *int    `json:"price,omitempty"`
	Series      *string `json:"series,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p *BookPatch) Empty() bool {
	return p.Title == nil && p.Author == nil && p.Publisher == nil &&
		p.PublishedAt == nil && p.Description == nil && p.PageCount == nil &&
		p.Thumbnail == nil && p.Price == nil && p.Series == nil
}
