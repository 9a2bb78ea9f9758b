// Package domain contains the core entities and pure domain logic for the
// Scrap service: authors, books, scraps, actions, and the geometry and
// relationship rules that tie them together.
package domain

import "time"

// Record provides common fields for every stored entity.
// It gets embedded in any domain type that is persisted.
type Record struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
}

// Touch updates the UpdatedAt timestamp to the current time.
// Call this whenever the underlying entity changes.
func (r *Record) Touch() {
	r.UpdatedAt = time.Now()
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
// Call this when creating a new entity.
func (r *Record) InitTimestamps() {
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
}

// Kind identifies a storable entity type. The set is closed: generic
// lookups dispatch over this enum instead of resolving type names at
// runtime, so an unknown kind is a validation error, not a panic.
type Kind string

const (
	KindAuthor Kind = "author"
	KindBook   Kind = "book"
	KindScrap  Kind = "scrap"
	KindAction Kind = "action"
)

// Valid reports whether k names a known entity kind.
func (k Kind) Valid() bool {
	switch k {
	case KindAuthor, KindBook, KindScrap, KindAction:
		return true
	}
	return false
}
