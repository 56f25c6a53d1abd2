// Package isbn normalizes and validates ISBN-10 and ISBN-13 identifiers.
//
// All downstream code works with the canonical 13-digit form; valid ISBN-10
// input is converted to its ISBN-13 equivalent (978 prefix, recomputed check
// digit) before being returned. The package is pure: no I/O, no state.
package isbn

import (
	"strings"

	"github.com/shelfmark/shelfmark-server/internal/errors"
)

// ErrInvalidFormat is returned for any input that is not a well-formed,
// checksum-valid ISBN-10 or ISBN-13.
var ErrInvalidFormat = errors.Validation("invalid ISBN format")

// Normalize strips separators, validates length and checksum, and returns
// the canonical ISBN-13 string.
//
// Accepted input: 10 or 13 digits after removing hyphens and spaces. A
// trailing 'X' (or 'x') is allowed as the ISBN-10 check digit. Everything
// else fails with ErrInvalidFormat.
func Normalize(raw string) (string, error) {
	cleaned := strip(raw)

	switch len(cleaned) {
	case 10:
		if !validISBN10(cleaned) {
			return "", ErrInvalidFormat
		}
		return toISBN13(cleaned), nil
	case 13:
		if !validISBN13(cleaned) {
			return "", ErrInvalidFormat
		}
		return cleaned, nil
	default:
		return "", ErrInvalidFormat
	}
}

// Valid reports whether raw normalizes to a canonical ISBN-13.
func Valid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}

// strip removes hyphens and spaces and uppercases a trailing x.
func strip(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch r {
		case '-', ' ':
			continue
		case 'x':
			b.WriteRune('X')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// validISBN10 checks the weighted-sum-mod-11 checksum (weights 10..1).
// 'X' is only legal as the final character, where it counts as 10.
func validISBN10(s string) bool {
	sum := 0
	for i, r := range s {
		var v int
		switch {
		case r >= '0' && r <= '9':
			v = int(r - '0')
		case r == 'X' && i == 9:
			v = 10
		default:
			return false
		}
		sum += v * (10 - i)
	}
	return sum%11 == 0
}

// validISBN13 checks the alternating 1,3 weighted checksum mod 10.
func validISBN13(s string) bool {
	sum := 0
	for i, r := range s {
		if r < '0' || r > '9' {
			return false
		}
		v := int(r - '0')
		if i%2 == 1 {
			v *= 3
		}
		sum += v
	}
	return sum%10 == 0
}

// toISBN13 converts a validated ISBN-10 to its 978-prefixed ISBN-13 form.
func toISBN13(s string) string {
	body := "978" + s[:9]
	sum := 0
	for i, r := range body {
		v := int(r - '0')
		if i%2 == 1 {
			v *= 3
		}
		sum += v
	}
	check := (10 - sum%10) % 10
	return body + string(rune('0'+check))
}
