// Package catalog defines the external book catalog contract and the
// resolver that queries multiple catalogs with priority-ordered fallback.
package catalog

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound means the upstream catalog confirmed it has no record for the
// ISBN. This is an answer, not a failure: it lets the resolver fall through
// to the next source and, when every source agrees, report a terminal
// "book not found" instead of a transient error.
var ErrNotFound = errors.New("catalog: not found")

// SourceError is a lookup failure from one catalog source. Retryable
// failures (timeout, 5xx, rate limit) may be retried once within the
// resolution budget; non-retryable failures (auth, quota, malformed
// payload) are final for the request.
type SourceError struct {
	Source    string
	Retryable bool
	Err       error
}

func (e *SourceError) Error() string {
	kind := "permanent"
	if e.Retryable {
		kind = "retryable"
	}
	return fmt.Sprintf("catalog %s: %s failure: %v", e.Source, kind, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Record is raw book metadata from one catalog source. Fields the source
// did not supply stay nil; they are never defaulted to zero values so that
// downstream merging can tell "absent" from "empty".
type Record struct {
	ISBN        string
	Title       *string
	Author      *string
	Publisher   *string
	PublishedAt *string
	Description *string
	PageCount   *int
	Thumbnail   *string
	Price       *int
	Series      *string
}

// Usable reports whether the record carries the fields a catalog Book
// requires (title and author). Sources that return a shell record without
// them are treated as having no record.
func (r *Record) Usable() bool {
	return r != nil && r.Title != nil && *r.Title != "" && r.Author != nil && *r.Author != ""
}

// Source is one external catalog. Lookup returns the source's record for a
// canonical ISBN-13, ErrNotFound when the catalog has no record, or a
// *SourceError. Implementations must honor ctx cancellation and deadline.
type Source interface {
	Name() string
	Lookup(ctx context.Context, isbn string) (*Record, error)
}
