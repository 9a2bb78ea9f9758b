package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/scrapapp/scrap-server/internal/domain"
	domainerrors "github.com/scrapapp/scrap-server/internal/errors"
	"github.com/scrapapp/scrap-server/internal/search"
	"github.com/scrapapp/scrap-server/internal/store"
)

// resultCap is the number of ids a search returns at most.
const resultCap = 10

// overfetchFactor widens the index query so visibility filtering still
// leaves enough results to fill the cap.
const overfetchFactor = 5

// SearchService answers author and book searches, filtering book
// results by what the searching author is allowed to see.
type SearchService struct {
	store  *store.Store
	index  *search.SearchIndex
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(store *store.Store, index *search.SearchIndex, logger *slog.Logger) *SearchService {
	return &SearchService{
		store:  store,
		index:  index,
		logger: logger,
	}
}

// AuthorSearch returns up to ten author ids matching the query.
func (s *SearchService) AuthorSearch(ctx context.Context, authorID, queryString string) ([]string, error) {
	if _, err := s.getSearcher(ctx, authorID); err != nil {
		return nil, err
	}
	return s.index.SearchAuthors(ctx, queryString, resultCap)
}

// Book result filters. Each names a category the caller wants removed
// from the results.
const (
	RemoveSelfBooks       = "selfBooks"
	RemovePrivateBooks    = "privateBooks"
	RemoveRestrictedBooks = "restrictedBooks"
)

// BookSearch returns up to ten book ids matching the query, newest trip
// first, with the requested categories removed. restrictedBooks drops
// private books whose owner is neither the searcher nor a friend.
func (s *SearchService) BookSearch(ctx context.Context, authorID, queryString string, remove []string) ([]string, error) {
	searcher, err := s.getSearcher(ctx, authorID)
	if err != nil {
		return nil, err
	}

	hits, err := s.index.SearchBooks(ctx, queryString, resultCap*overfetchFactor)
	if err != nil {
		return nil, err
	}

	filtered := make([]search.BookHit, 0, len(hits))
	for _, hit := range hits {
		if slices.Contains(remove, RemoveSelfBooks) && hit.Author == authorID {
			continue
		}
		if slices.Contains(remove, RemovePrivateBooks) && !hit.IsPublic {
			continue
		}
		if slices.Contains(remove, RemoveRestrictedBooks) && !hit.IsPublic {
			relationship := searcher.RelationshipWith(hit.Author)
			if relationship != domain.RelationshipSelf && relationship != domain.RelationshipFriend {
				continue
			}
		}
		filtered = append(filtered, hit)
	}

	slices.SortStableFunc(filtered, func(a, b search.BookHit) int {
		switch {
		case b.BeginDate < a.BeginDate:
			return -1
		case b.BeginDate > a.BeginDate:
			return 1
		default:
			return 0
		}
	})

	if len(filtered) > resultCap {
		filtered = filtered[:resultCap]
	}

	ids := make([]string, len(filtered))
	for i, hit := range filtered {
		ids[i] = hit.ID
	}
	return ids, nil
}

// Reindex rebuilds the search index from the store. Used at startup
// when the index was rebuilt with a new mapping, and by the admin
// reindex endpoint.
func (s *SearchService) Reindex(ctx context.Context) error {
	docs := []*search.SearchDocument{}

	for author, err := range s.store.Authors.List(ctx) {
		if err != nil {
			return fmt.Errorf("listing authors: %w", err)
		}
		docs = append(docs, search.AuthorToSearchDocument(author))
	}
	for book, err := range s.store.Books.List(ctx) {
		if err != nil {
			return fmt.Errorf("listing books: %w", err)
		}
		docs = append(docs, search.BookToSearchDocument(book))
	}

	if err := s.index.IndexDocuments(docs); err != nil {
		return fmt.Errorf("indexing documents: %w", err)
	}

	s.logger.Info("search reindex complete", "documents", len(docs))
	return nil
}

func (s *SearchService) getSearcher(ctx context.Context, authorID string) (*domain.Author, error) {
	author, err := s.store.Authors.Get(ctx, authorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("author: %q doesn't exist", authorID)
		}
		return nil, fmt.Errorf("getting author %s: %w", authorID, err)
	}
	return author, nil
}
