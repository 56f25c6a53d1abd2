// Package id generates prefixed unique identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Entity prefixes used across the application. Keeping them in one place
// makes IDs self-describing in logs and foreign keys obvious in the schema.
const (
	PrefixUser       = "usr"
	PrefixBook       = "book"
	PrefixEntry      = "ent"
	PrefixShelf      = "shf"
	PrefixShelfEntry = "se"
)

// New creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "shf-V1StGXR8_Z5jdHi6B-myT").
//
// Returns an error if the system lacks entropy for secure random generation.
func New(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustNew is like New but panics on failure. Use only where a generation
// failure should crash the program, such as initialization.
func MustNew(prefix string) string {
	id, err := New(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}
