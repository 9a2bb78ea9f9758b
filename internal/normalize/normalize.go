// Package normalize provides utilities for normalizing identity fields
// before they are used as index keys or compared for uniqueness.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Email normalizes an email address for storage and index lookup.
// Addresses differing only in case or surrounding whitespace refer to
// the same account.
func Email(raw string) string {
	return strings.ToLower(strings.TrimSpace(sanitize(raw)))
}

// Pseudonym normalizes a pseudonym for uniqueness comparison.
// Unicode is NFKC-folded so visually identical names collide, but the
// stored display form keeps the author's original casing.
func Pseudonym(raw string) string {
	s := norm.NFKC.String(sanitize(raw))
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims and NFC-normalizes a display name (first name, last name,
// place). Interior whitespace runs collapse to a single space.
func Name(raw string) string {
	s := norm.NFC.String(sanitize(raw))
	return strings.Join(strings.Fields(s), " ")
}

// sanitize removes null bytes and other control characters that can
// corrupt index keys and JSON documents.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 || (unicode.IsControl(r) && r != '\n' && r != '\t') {
			return -1
		}
		return r
	}, s)
}
