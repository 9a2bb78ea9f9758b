package domain

import "time"

// Book is a trip: an ordered collection of scraps by a single author,
// with derived mileage and date range.
type Book struct {
	Record
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Place       string `json:"place,omitempty"`
	IsPublic    bool   `json:"is_public"`

	// Representative is the scrap shown as the book's cover.
	Representative string `json:"representative,omitempty"`

	// Scraps is ordered by scrap creation time, ascending.
	Scraps []string `json:"scraps"`
	// Threads are scraps by other authors attached to this book.
	// Mirrors Scrap.Threads.
	Threads []string `json:"threads"`
	// Likes mirrors Author.LikedBooks.
	Likes []string `json:"likes"`

	// Miles, BeginDate, and EndDate are derived from the scrap membership.
	// Stored on every membership change, never computed on read.
	Miles     float64   `json:"miles"`
	BeginDate time.Time `json:"begin_date"`
	EndDate   time.Time `json:"end_date"`
}

// HasScrap reports whether the scrap is a member of this book.
func (b *Book) HasScrap(scrapID string) bool {
	return Contains(b.Scraps, scrapID)
}

// LikedBy reports whether the author has liked this book.
func (b *Book) LikedBy(authorID string) bool {
	return Contains(b.Likes, authorID)
}
