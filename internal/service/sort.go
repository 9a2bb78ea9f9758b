package service

import (
	"slices"
	"strings"

	"github.com/scrapapp/scrap-server/internal/domain"
)

// sortScrapsByCreation orders scraps chronologically, oldest first. Ties
// break on id so the order is deterministic.
func sortScrapsByCreation(scraps []*domain.Scrap) {
	slices.SortStableFunc(scraps, func(a, b *domain.Scrap) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// sortBooksByBeginDateDesc orders books newest trip first.
func sortBooksByBeginDateDesc(books []*domain.Book) {
	slices.SortStableFunc(books, func(a, b *domain.Book) int {
		if c := b.BeginDate.Compare(a.BeginDate); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func scrapIDs(scraps []*domain.Scrap) []string {
	ids := make([]string, len(scraps))
	for i, s := range scraps {
		ids[i] = s.ID
	}
	return ids
}

func scrapCoordinates(scraps []*domain.Scrap) []domain.Coordinate {
	coords := make([]domain.Coordinate, len(scraps))
	for i, s := range scraps {
		coords[i] = s.Coordinate()
	}
	return coords
}
