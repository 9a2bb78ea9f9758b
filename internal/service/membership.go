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

// MembershipService maintains Book<->Scrap containment and the derived
// statistics that depend on it. Scrap sequences stay sorted by creation
// time ascending; an author's book sequence stays sorted by begin date
// descending, most recent trip first. Miles and date ranges are stored on
// every membership change rather than computed on read.
type MembershipService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewMembershipService creates a new membership service.
func NewMembershipService(store *store.Store, logger *slog.Logger) *MembershipService {
	return &MembershipService{
		store:  store,
		logger: logger,
	}
}

// AddScrapToBook places a scrap in a book. If the scrap already belongs
// to a different book this is a move: the scrap leaves its old book,
// which gets its own recompute, before joining the new one. The book's
// scrap sequence is re-sorted and its miles and date range recomputed,
// then the owner's book sequence is re-sorted.
func (s *MembershipService) AddScrapToBook(ctx context.Context, bookID, scrapID string) error {
	book, scrap, err := s.getBookAndScrap(ctx, bookID, scrapID)
	if err != nil {
		return err
	}

	if scrap.Book != "" && scrap.Book != bookID {
		if err := s.detachFromOldBook(ctx, scrap); err != nil {
			return err
		}
	}

	scrap.Book = bookID
	scrap.Touch()
	if err := s.store.Scraps.Update(ctx, scrapID, scrap); err != nil {
		return fmt.Errorf("saving scrap %s: %w", scrapID, err)
	}

	book.Scraps = domain.Push(book.Scraps, scrapID)
	if err := s.refreshBook(ctx, book); err != nil {
		return err
	}

	return s.resortAuthorBooks(ctx, book.Author)
}

// RemoveScrapFromBook takes a scrap out of its book: the scrap's book
// reference is cleared, any thread between the pair is dropped, and the
// book's derived state is recomputed. A scrap that is not a member
// repairs both sides before reporting.
func (s *MembershipService) RemoveScrapFromBook(ctx context.Context, bookID, scrapID string) error {
	book, scrap, err := s.getBookAndScrap(ctx, bookID, scrapID)
	if err != nil {
		return err
	}

	if !book.HasScrap(scrapID) || scrap.Book != bookID {
		book.Scraps = domain.Pull(book.Scraps, scrapID)
		scrap.Book = ""
		scrap.Touch()
		if err := s.store.Scraps.Update(ctx, scrapID, scrap); err != nil {
			return fmt.Errorf("saving scrap %s: %w", scrapID, err)
		}
		if err := s.refreshBook(ctx, book); err != nil {
			return err
		}
		return domainerrors.InvalidState("Scrap does not belong to that book")
	}

	book.Scraps = domain.Pull(book.Scraps, scrapID)
	book.Threads = domain.Pull(book.Threads, scrapID)
	scrap.Book = ""
	scrap.Threads = domain.Pull(scrap.Threads, bookID)
	scrap.Touch()
	if err := s.store.Scraps.Update(ctx, scrapID, scrap); err != nil {
		return fmt.Errorf("saving scrap %s: %w", scrapID, err)
	}
	if err := s.refreshBook(ctx, book); err != nil {
		return err
	}

	return s.resortAuthorBooks(ctx, book.Author)
}

// AddScrapToAuthor appends a scrap to the author's chronological scrap
// sequence and recomputes the author's lifetime miles.
func (s *MembershipService) AddScrapToAuthor(ctx context.Context, authorID, scrapID string) error {
	author, err := s.store.Authors.Get(ctx, authorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFoundf("author: %q doesn't exist", authorID)
		}
		return fmt.Errorf("getting author %s: %w", authorID, err)
	}

	author.Scraps = domain.Push(author.Scraps, scrapID)
	return s.refreshAuthor(ctx, author)
}

// RecalculateBook reloads a book's member scraps, re-sorts the sequence,
// and stores fresh miles and date range.
func (s *MembershipService) RecalculateBook(ctx context.Context, bookID string) error {
	book, err := s.store.Books.Get(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFoundf("book: %q doesn't exist", bookID)
		}
		return fmt.Errorf("getting book %s: %w", bookID, err)
	}
	return s.refreshBook(ctx, book)
}

// RecalculateAuthor re-sorts the author's scrap sequence and stores fresh
// lifetime miles.
func (s *MembershipService) RecalculateAuthor(ctx context.Context, authorID string) error {
	author, err := s.store.Authors.Get(ctx, authorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFoundf("author: %q doesn't exist", authorID)
		}
		return fmt.Errorf("getting author %s: %w", authorID, err)
	}
	return s.refreshAuthor(ctx, author)
}

// SortAuthorBooks re-sorts an author's book sequence by begin date,
// newest trip first, and persists the author.
func (s *MembershipService) SortAuthorBooks(ctx context.Context, authorID string) error {
	return s.resortAuthorBooks(ctx, authorID)
}

func (s *MembershipService) getBookAndScrap(ctx context.Context, bookID, scrapID string) (*domain.Book, *domain.Scrap, error) {
	book, err := s.store.Books.Get(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, domainerrors.NotFoundf("book: %q doesn't exist", bookID)
		}
		return nil, nil, fmt.Errorf("getting book %s: %w", bookID, err)
	}
	scrap, err := s.store.Scraps.Get(ctx, scrapID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, domainerrors.NotFoundf("scrap: %q doesn't exist", scrapID)
		}
		return nil, nil, fmt.Errorf("getting scrap %s: %w", scrapID, err)
	}
	return book, scrap, nil
}

// detachFromOldBook runs the remove side of a move. A missing old book is
// treated as already detached.
func (s *MembershipService) detachFromOldBook(ctx context.Context, scrap *domain.Scrap) error {
	old, err := s.store.Books.Get(ctx, scrap.Book)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Debug("old book already gone during move", "book_id", scrap.Book, "scrap_id", scrap.ID)
			return nil
		}
		return fmt.Errorf("getting book %s: %w", scrap.Book, err)
	}

	old.Scraps = domain.Pull(old.Scraps, scrap.ID)
	if err := s.refreshBook(ctx, old); err != nil {
		return err
	}
	return s.resortAuthorBooks(ctx, old.Author)
}

// loadScraps resolves scrap ids, sorted by creation time ascending.
// Missing scraps are skipped, not fatal: a half-finished cascade must not
// wedge every later recompute.
func (s *MembershipService) loadScraps(ctx context.Context, ids []string) []*domain.Scrap {
	scraps := make([]*domain.Scrap, 0, len(ids))
	for _, id := range ids {
		scrap, err := s.store.Scraps.Get(ctx, id)
		if err != nil {
			s.logger.Debug("skipping unresolvable scrap", "scrap_id", id, "error", err)
			continue
		}
		scraps = append(scraps, scrap)
	}
	sortScrapsByCreation(scraps)
	return scraps
}

// refreshBook recomputes everything derived from the book's membership
// and persists the book. An empty book keeps its previous date range.
func (s *MembershipService) refreshBook(ctx context.Context, book *domain.Book) error {
	scraps := s.loadScraps(ctx, book.Scraps)

	book.Scraps = scrapIDs(scraps)
	book.Miles = domain.TotalMiles(scrapCoordinates(scraps))
	if len(scraps) > 0 {
		book.BeginDate = scraps[0].CreatedAt
		book.EndDate = scraps[len(scraps)-1].CreatedAt
	}

	book.Touch()
	if err := s.store.Books.Update(ctx, book.ID, book); err != nil {
		return fmt.Errorf("saving book %s: %w", book.ID, err)
	}
	return nil
}

// refreshAuthor re-sorts the author's scraps and recomputes lifetime
// miles, then persists the author.
func (s *MembershipService) refreshAuthor(ctx context.Context, author *domain.Author) error {
	scraps := s.loadScraps(ctx, author.Scraps)

	author.Scraps = scrapIDs(scraps)
	author.Miles = domain.TotalMiles(scrapCoordinates(scraps))

	author.Touch()
	if err := s.store.Authors.Update(ctx, author.ID, author); err != nil {
		return fmt.Errorf("saving author %s: %w", author.ID, err)
	}
	return nil
}

func (s *MembershipService) resortAuthorBooks(ctx context.Context, authorID string) error {
	author, err := s.store.Authors.Get(ctx, authorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFoundf("author: %q doesn't exist", authorID)
		}
		return fmt.Errorf("getting author %s: %w", authorID, err)
	}

	books := make([]*domain.Book, 0, len(author.Books))
	for _, id := range author.Books {
		book, err := s.store.Books.Get(ctx, id)
		if err != nil {
			s.logger.Debug("skipping unresolvable book", "book_id", id, "error", err)
			continue
		}
		books = append(books, book)
	}
	sortBooksByBeginDateDesc(books)

	author.Books = make([]string, len(books))
	for i, book := range books {
		author.Books[i] = book.ID
	}

	author.Touch()
	if err := s.store.Authors.Update(ctx, author.ID, author); err != nil {
		return fmt.Errorf("saving author %s: %w", author.ID, err)
	}
	return nil
}
