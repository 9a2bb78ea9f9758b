package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchAuthors",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/authors",
		Summary:     "Search authors",
		Description: "Full-text search over pseudonyms and names. Returns up to ten author IDs.",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchAuthors)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/books",
		Summary:     "Search books",
		Description: "Full-text search over titles, descriptions, and places. Returns up to ten book IDs, newest trip first, filtered by the remove categories.",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchBooks)
}

// === DTOs ===

// AuthorSearchInput contains parameters for an author search.
type AuthorSearchInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" required:"true" validate:"required,min=1,max=200" doc:"Search query"`
}

// BookSearchInput contains parameters for a book search.
type BookSearchInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" required:"true" validate:"required,min=1,max=200" doc:"Search query"`
	Remove        string `query:"remove" validate:"omitempty,max=100" doc:"Comma-separated categories to drop: selfBooks, privateBooks, restrictedBooks"`
}

// SearchOutput wraps matched entity IDs for Huma.
type SearchOutput struct {
	Body IDListResponse
}

// === Handlers ===

func (s *Server) handleSearchAuthors(ctx context.Context, input *AuthorSearchInput) (*SearchOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	ids, err := s.services.Search.AuthorSearch(ctx, userID, input.Query)
	if err != nil {
		s.logger.Error("Author search failed", "error", err, "query", input.Query)
		return nil, err
	}

	return &SearchOutput{Body: IDListResponse{IDs: ids}}, nil
}

func (s *Server) handleSearchBooks(ctx context.Context, input *BookSearchInput) (*SearchOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	var remove []string
	if input.Remove != "" {
		for category := range strings.SplitSeq(input.Remove, ",") {
			category = strings.TrimSpace(category)
			if category != "" {
				remove = append(remove, category)
			}
		}
	}

	ids, err := s.services.Search.BookSearch(ctx, userID, input.Query, remove)
	if err != nil {
		s.logger.Error("Book search failed", "error", err, "query", input.Query)
		return nil, err
	}

	return &SearchOutput{Body: IDListResponse{IDs: ids}}, nil
}
