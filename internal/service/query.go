package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/scrapapp/scrap-server/internal/domain"
	domainerrors "github.com/scrapapp/scrap-server/internal/errors"
	"github.com/scrapapp/scrap-server/internal/store"
)

// QueryService answers the derived read queries: relationships, book
// visibility filtering, the friend feed, and coordinate lookups.
type QueryService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewQueryService creates a new query service.
func NewQueryService(store *store.Store, logger *slog.Logger) *QueryService {
	return &QueryService{
		store:  store,
		logger: logger,
	}
}

func (s *QueryService) getAuthor(ctx context.Context, authorID string) (*domain.Author, error) {
	author, err := s.store.Authors.Get(ctx, authorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("author: %q doesn't exist", authorID)
		}
		return nil, fmt.Errorf("getting author %s: %w", authorID, err)
	}
	return author, nil
}

// Relationship classifies how user stands to other.
func (s *QueryService) Relationship(ctx context.Context, userID, otherID string) (domain.Relationship, error) {
	user, err := s.getAuthor(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.RelationshipWith(otherID), nil
}

// PublicBooks returns the author's public book ids in sequence order.
func (s *QueryService) PublicBooks(ctx context.Context, authorID string) ([]string, error) {
	author, err := s.getAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}

	public := []string{}
	for _, bookID := range author.Books {
		book, err := s.store.Books.Get(ctx, bookID)
		if err != nil {
			s.logger.Debug("skipping unresolvable book", "book_id", bookID, "error", err)
			continue
		}
		if book.IsPublic {
			public = append(public, bookID)
		}
	}
	return public, nil
}

// ProfileBooks returns the author's book ids as visible to user: the
// whole sequence for self, public plus friend-visible books otherwise.
func (s *QueryService) ProfileBooks(ctx context.Context, userID, authorID string) ([]string, error) {
	user, err := s.getAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}
	author, err := s.getAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}

	relationship := user.RelationshipWith(authorID)
	if relationship == domain.RelationshipSelf {
		return author.Books, nil
	}

	visible := []string{}
	for _, bookID := range author.Books {
		book, err := s.store.Books.Get(ctx, bookID)
		if err != nil {
			s.logger.Debug("skipping unresolvable book", "book_id", bookID, "error", err)
			continue
		}
		if book.IsPublic || relationship == domain.RelationshipFriend {
			visible = append(visible, bookID)
		}
	}
	return visible, nil
}

// Feed returns book ids by the author and their friends, newest trip
// first.
func (s *QueryService) Feed(ctx context.Context, authorID string) ([]string, error) {
	author, err := s.getAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}

	writers := make(map[string]bool, len(author.Friends)+1)
	writers[authorID] = true
	for _, friendID := range author.Friends {
		writers[friendID] = true
	}

	books, err := s.store.Books.Find(ctx, func(b *domain.Book) bool {
		return writers[b.Author]
	})
	if err != nil {
		return nil, fmt.Errorf("finding feed books: %w", err)
	}
	sortBooksByBeginDateDesc(books)

	ids := make([]string, len(books))
	for i, book := range books {
		ids[i] = book.ID
	}
	return ids, nil
}

// UnbookedScraps returns the author's scraps that belong to no book, in
// sequence order.
func (s *QueryService) UnbookedScraps(ctx context.Context, authorID string) ([]string, error) {
	author, err := s.getAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}

	unbooked := []string{}
	for _, scrapID := range author.Scraps {
		scrap, err := s.store.Scraps.Get(ctx, scrapID)
		if err != nil {
			s.logger.Debug("skipping unresolvable scrap", "scrap_id", scrapID, "error", err)
			continue
		}
		if scrap.Book == "" {
			unbooked = append(unbooked, scrapID)
		}
	}
	return unbooked, nil
}

// ScrapCoordinates resolves scrap ids to positions, skipping ids that
// don't resolve.
func (s *QueryService) ScrapCoordinates(ctx context.Context, scrapIDs []string) ([]domain.Coordinate, error) {
	coords := []domain.Coordinate{}
	for _, scrapID := range scrapIDs {
		scrap, err := s.store.Scraps.Get(ctx, scrapID)
		if err != nil {
			s.logger.Debug("skipping unresolvable scrap", "scrap_id", scrapID, "error", err)
			continue
		}
		coords = append(coords, scrap.Coordinate())
	}
	return coords, nil
}

// BookCoordinates resolves book ids to the positions of their
// representative scraps. Books without a resolvable representative are
// skipped.
func (s *QueryService) BookCoordinates(ctx context.Context, bookIDs []string) ([]domain.Coordinate, error) {
	coords := []domain.Coordinate{}
	for _, bookID := range bookIDs {
		book, err := s.store.Books.Get(ctx, bookID)
		if err != nil {
			s.logger.Debug("skipping unresolvable book", "book_id", bookID, "error", err)
			continue
		}
		if book.Representative == "" {
			continue
		}
		scrap, err := s.store.Scraps.Get(ctx, book.Representative)
		if err != nil {
			s.logger.Debug("skipping unresolvable representative", "scrap_id", book.Representative, "error", err)
			continue
		}
		coords = append(coords, scrap.Coordinate())
	}
	return coords, nil
}
