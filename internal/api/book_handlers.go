package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/scrapapp/scrap-server/internal/domain"
	domainerrors "github.com/scrapapp/scrap-server/internal/errors"
	"github.com/scrapapp/scrap-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books",
		Summary:     "Create book",
		Description: "Creates a trip book, optionally moving initial scraps into it.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "publishBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/publish",
		Summary:     "Publish or unpublish book",
		Description: "Toggles public visibility. Going public announces the book to acquaintances.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handlePublishBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}",
		Summary:     "Delete book",
		Description: "Deletes the book and detaches every scrap, thread, like, and action that references it.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "addScrapToBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{bookID}/scraps/{scrapID}",
		Summary:     "Add scrap to book",
		Description: "Moves the scrap into the book, leaving its previous book if it had one.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddScrapToBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeScrapFromBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{bookID}/scraps/{scrapID}",
		Summary:     "Remove scrap from book",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveScrapFromBook)
}

// === DTOs ===

// CreateBookRequest is the request body for book creation.
type CreateBookRequest struct {
	Title          string   `json:"title" validate:"required,max=256" doc:"Book title"`
	Description    string   `json:"description,omitempty" validate:"omitempty,max=4096" doc:"Book description"`
	Place          string   `json:"place,omitempty" validate:"omitempty,max=256" doc:"Trip location name"`
	IsPublic       bool     `json:"is_public" required:"false" doc:"Whether the book is publicly visible"`
	Representative string   `json:"representative,omitempty" doc:"Cover scrap ID"`
	Scraps         []string `json:"scraps,omitempty" doc:"Initial scrap IDs to move into the book"`

	CreatedAt FlexTime `json:"created_at,omitzero" doc:"Backdated creation time, for imports. RFC3339 or epoch milliseconds."`
}

// CreateBookInput wraps the creation request for Huma.
type CreateBookInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateBookRequest
}

// BookResponse is the public shape of a book document.
type BookResponse struct {
	ID             string    `json:"id" doc:"Book ID"`
	Author         string    `json:"author" doc:"Owning author ID"`
	Title          string    `json:"title" doc:"Book title"`
	Description    string    `json:"description,omitempty" doc:"Book description"`
	Place          string    `json:"place,omitempty" doc:"Trip location name"`
	IsPublic       bool      `json:"is_public" doc:"Whether the book is publicly visible"`
	Representative string    `json:"representative,omitempty" doc:"Cover scrap ID"`
	Scraps         []string  `json:"scraps" doc:"Member scrap IDs, oldest first"`
	Threads        []string  `json:"threads" doc:"Threaded scrap IDs"`
	Likes          []string  `json:"likes" doc:"Author IDs who liked the book"`
	Miles          float64   `json:"miles" doc:"Trip mileage"`
	BeginDate      time.Time `json:"begin_date" doc:"First scrap's creation time"`
	EndDate        time.Time `json:"end_date" doc:"Last scrap's creation time"`
	CreatedAt      time.Time `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt      time.Time `json:"updated_at" doc:"Last update timestamp"`
}

// BookOutput wraps a book response for Huma.
type BookOutput struct {
	Body BookResponse
}

// GetBookInput addresses a single book.
type GetBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

// PublishBookRequest is the request body for a visibility toggle.
type PublishBookRequest struct {
	IsPublic bool `json:"is_public" doc:"New visibility"`
}

// PublishBookInput wraps the publish request for Huma.
type PublishBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
	Body          PublishBookRequest
}

// BookScrapInput addresses a membership operation at a book/scrap pair.
type BookScrapInput struct {
	Authorization string `header:"Authorization"`
	BookID        string `path:"bookID" doc:"Book ID"`
	ScrapID       string `path:"scrapID" doc:"Scrap ID"`
}

// === Handlers ===

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.CreateBook(ctx, service.CreateBookInput{
		Author:         userID,
		Title:          input.Body.Title,
		Description:    input.Body.Description,
		Place:          input.Body.Place,
		IsPublic:       input.Body.IsPublic,
		Representative: input.Body.Representative,
		Scraps:         input.Body.Scraps,
		CreatedAt:      input.Body.CreatedAt.ToTime(),
	})
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBook(book)}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if err := s.requireBookVisible(ctx, userID, book); err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBook(book)}, nil
}

func (s *Server) handlePublishBook(ctx context.Context, input *PublishBookInput) (*BookOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.requireBookOwner(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	book, err := s.services.Book.SetPublished(ctx, input.ID, input.Body.IsPublic)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBook(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *GetBookInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.requireBookOwner(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	if err := s.services.Cascade.DeleteBook(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Book deleted"}}, nil
}

func (s *Server) handleAddScrapToBook(ctx context.Context, input *BookScrapInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.requireBookOwner(ctx, userID, input.BookID); err != nil {
		return nil, err
	}

	if err := s.services.Membership.AddScrapToBook(ctx, input.BookID, input.ScrapID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Scrap added to book"}}, nil
}

func (s *Server) handleRemoveScrapFromBook(ctx context.Context, input *BookScrapInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.requireBookOwner(ctx, userID, input.BookID); err != nil {
		return nil, err
	}

	if err := s.services.Membership.RemoveScrapFromBook(ctx, input.BookID, input.ScrapID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Scrap removed from book"}}, nil
}

// === Helpers ===

// requireBookOwner rejects operations on books the caller doesn't own.
func (s *Server) requireBookOwner(ctx context.Context, userID, bookID string) error {
	book, err := s.services.Book.GetBook(ctx, bookID)
	if err != nil {
		return err
	}
	if book.Author != userID {
		return domainerrors.Forbidden("Only the book's author can do that")
	}
	return nil
}

// requireBookVisible rejects reads of private books by authors outside
// the owner's friend circle.
func (s *Server) requireBookVisible(ctx context.Context, userID string, book *domain.Book) error {
	if book.IsPublic || book.Author == userID {
		return nil
	}

	owner, err := s.store.Authors.Get(ctx, book.Author)
	if err != nil {
		return err
	}
	if !owner.IsFriend(userID) {
		return domainerrors.Forbidden("That book is private")
	}
	return nil
}

func mapBook(b *domain.Book) BookResponse {
	return BookResponse{
		ID:             b.ID,
		Author:         b.Author,
		Title:          b.Title,
		Description:    b.Description,
		Place:          b.Place,
		IsPublic:       b.IsPublic,
		Representative: b.Representative,
		Scraps:         b.Scraps,
		Threads:        b.Threads,
		Likes:          b.Likes,
		Miles:          b.Miles,
		BeginDate:      b.BeginDate,
		EndDate:        b.EndDate,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}
