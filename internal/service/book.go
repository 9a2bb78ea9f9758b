package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/scrapapp/scrap-server/internal/domain"
	domainerrors "github.com/scrapapp/scrap-server/internal/errors"
	"github.com/scrapapp/scrap-server/internal/id"
	"github.com/scrapapp/scrap-server/internal/store"
)

// BookService creates books and manages their visibility.
type BookService struct {
	store      *store.Store
	membership *MembershipService
	actions    ActionRecorder
	search     store.SearchIndexer
	logger     *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(
	store *store.Store,
	membership *MembershipService,
	actions ActionRecorder,
	search store.SearchIndexer,
	logger *slog.Logger,
) *BookService {
	return &BookService{
		store:      store,
		membership: membership,
		actions:    actions,
		search:     search,
		logger:     logger,
	}
}

// CreateBookInput is the payload for book creation.
type CreateBookInput struct {
	Author         string   `json:"author" validate:"required"`
	Title          string   `json:"title" validate:"required,max=256"`
	Description    string   `json:"description" validate:"omitempty,max=4096"`
	Place          string   `json:"place" validate:"omitempty,max=256"`
	IsPublic       bool     `json:"is_public"`
	Representative string   `json:"representative"`
	Scraps         []string `json:"scraps"`

	// CreatedAt backdates the book, for imports. Zero means now.
	CreatedAt time.Time `json:"created_at"`
}

// CreateBook persists a new book, moves the initial scraps into it, and
// announces a public book to the author's acquaintances.
func (s *BookService) CreateBook(ctx context.Context, input CreateBookInput) (*domain.Book, error) {
	if err := validate.Struct(input); err != nil {
		return nil, domainerrors.ValidationWithDetails("invalid book input", err.Error())
	}

	author, err := s.store.Authors.Get(ctx, input.Author)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("author: %q doesn't exist", input.Author)
		}
		return nil, fmt.Errorf("getting author %s: %w", input.Author, err)
	}

	book := &domain.Book{
		Record:         domain.Record{ID: id.MustGenerate("book")},
		Author:         input.Author,
		Title:          input.Title,
		Description:    input.Description,
		Place:          input.Place,
		IsPublic:       input.IsPublic,
		Representative: input.Representative,
		Scraps:         []string{},
		Threads:        []string{},
		Likes:          []string{},
	}
	book.InitTimestamps()
	if !input.CreatedAt.IsZero() {
		book.CreatedAt = input.CreatedAt
	}

	if err := s.store.Books.Create(ctx, book.ID, book); err != nil {
		return nil, fmt.Errorf("creating book: %w", err)
	}

	author.Books = domain.Push(author.Books, book.ID)
	author.Touch()
	if err := s.store.Authors.Update(ctx, author.ID, author); err != nil {
		return nil, fmt.Errorf("saving author %s: %w", author.ID, err)
	}

	// Each initial scrap goes through the same move path as a later add,
	// so the derived state and sequence sorting stay uniform.
	for _, scrapID := range input.Scraps {
		if err := s.membership.AddScrapToBook(ctx, book.ID, scrapID); err != nil {
			if domainerrors.Is(err, domainerrors.ErrNotFound) {
				s.logger.Debug("skipping missing scrap during book creation", "scrap_id", scrapID)
				continue
			}
			return nil, err
		}
	}

	if err := s.membership.SortAuthorBooks(ctx, author.ID); err != nil {
		return nil, err
	}

	if input.IsPublic && s.actions != nil {
		if err := s.actions.Record(ctx, domain.ActionPostBook,
			domain.Ref{Author: input.Author},
			domain.Ref{Author: input.Author, Book: book.ID}); err != nil {
			s.logger.Error("failed to record postBook action", "book_id", book.ID, "error", err)
		}
	}

	// Reload so the returned book carries the recomputed derived state.
	created, err := s.store.Books.Get(ctx, book.ID)
	if err != nil {
		return nil, fmt.Errorf("reloading book %s: %w", book.ID, err)
	}

	if err := s.search.IndexBook(ctx, created); err != nil {
		s.logger.Error("failed to index book", "book_id", book.ID, "error", err)
	}

	return created, nil
}

// GetBook returns one book.
func (s *BookService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.Books.Get(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("book: %q doesn't exist", bookID)
		}
		return nil, fmt.Errorf("getting book %s: %w", bookID, err)
	}
	return book, nil
}

// SetPublished flips a book's visibility. Turning a private book public
// announces it to the author's acquaintances, same as publishing at
// creation.
func (s *BookService) SetPublished(ctx context.Context, bookID string, isPublic bool) (*domain.Book, error) {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	wasPublic := book.IsPublic
	book.IsPublic = isPublic
	book.Touch()
	if err := s.store.Books.Update(ctx, bookID, book); err != nil {
		return nil, fmt.Errorf("saving book %s: %w", bookID, err)
	}

	if isPublic && !wasPublic && s.actions != nil {
		if err := s.actions.Record(ctx, domain.ActionPostBook,
			domain.Ref{Author: book.Author},
			domain.Ref{Author: book.Author, Book: bookID}); err != nil {
			s.logger.Error("failed to record postBook action", "book_id", bookID, "error", err)
		}
	}

	if err := s.search.IndexBook(ctx, book); err != nil {
		s.logger.Error("failed to index book", "book_id", bookID, "error", err)
	}

	return book, nil
}

// Exists reports whether a book id resolves.
func (s *BookService) Exists(ctx context.Context, bookID string) (bool, error) {
	return s.store.Books.Exists(ctx, bookID)
}
