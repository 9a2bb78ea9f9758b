// Package search provides full-text search over authors and books using
// Bleve. Authors match on pseudonym and real name, books on title,
// place, and description.
package search

import (
	"github.com/scrapapp/scrap-server/internal/domain"
)

// DocType represents the type of document in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeAuthor DocType = "author"
	DocTypeBook   DocType = "book"
)

// SearchDocument is the unified document structure for the Bleve index.
// Both entity kinds share one index with a type discriminator; the
// owner id and visibility flag are denormalized onto book documents so
// result filtering never needs a store round-trip.
type SearchDocument struct {
	ID   string  `json:"id"`
	Type DocType `json:"type"`

	// Primary searchable text: pseudonym for authors, title for books.
	Name string `json:"name"`

	// Author-specific fields
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`

	// Book-specific fields
	Place       string `json:"place,omitempty"`
	Description string `json:"description,omitempty"`
	Author      string `json:"author,omitempty"` // Owner id, for visibility filtering
	IsPublic    bool   `json:"is_public"`

	// Timestamps for sorting. Unix millis.
	BeginDate int64 `json:"begin_date,omitempty"`
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// ToMap converts the document to a map with lowercase field names so
// they match the index mapping. Bleve would otherwise index under the
// capitalized Go field names.
func (d *SearchDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"type":       string(d.Type),
		"name":       d.Name,
		"is_public":  d.IsPublic,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	if d.FirstName != "" {
		m["first_name"] = d.FirstName
	}
	if d.LastName != "" {
		m["last_name"] = d.LastName
	}
	if d.Place != "" {
		m["place"] = d.Place
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Author != "" {
		m["author"] = d.Author
	}
	if d.BeginDate != 0 {
		m["begin_date"] = d.BeginDate
	}

	return m
}

// AuthorToSearchDocument converts a domain Author to a SearchDocument.
func AuthorToSearchDocument(a *domain.Author) *SearchDocument {
	return &SearchDocument{
		ID:        a.ID,
		Type:      DocTypeAuthor,
		Name:      a.Pseudonym,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		CreatedAt: a.CreatedAt.UnixMilli(),
		UpdatedAt: a.UpdatedAt.UnixMilli(),
	}
}

// BookToSearchDocument converts a domain Book to a SearchDocument.
func BookToSearchDocument(b *domain.Book) *SearchDocument {
	doc := &SearchDocument{
		ID:          b.ID,
		Type:        DocTypeBook,
		Name:        b.Title,
		Place:       b.Place,
		Description: b.Description,
		Author:      b.Author,
		IsPublic:    b.IsPublic,
		CreatedAt:   b.CreatedAt.UnixMilli(),
		UpdatedAt:   b.UpdatedAt.UnixMilli(),
	}
	if !b.BeginDate.IsZero() {
		doc.BeginDate = b.BeginDate.UnixMilli()
	}
	return doc
}
