package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/scrapapp/scrap-server/internal/domain"
)

func (s *Server) registerQueryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getAuthor",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors/{authorID}",
		Summary:     "Get author profile",
		Tags:        []string{"Authors"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRelationship",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors/{authorID}/relationship",
		Summary:     "Classify relationship",
		Description: "Reports how the caller stands to the target author: self, friend, requested, pending, or none.",
		Tags:        []string{"Authors"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetRelationship)

	huma.Register(s.api, huma.Operation{
		OperationID: "getProfileBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors/{authorID}/books",
		Summary:     "List an author's visible books",
		Description: "Returns the full sequence for the caller's own profile, public plus friend-visible books otherwise.",
		Tags:        []string{"Authors"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetProfileBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFeed",
		Method:      http.MethodGet,
		Path:        "/api/v1/feed",
		Summary:     "Get book feed",
		Description: "Returns books by the caller and their friends, newest trip first.",
		Tags:        []string{"Feed"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetFeed)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUnbookedScraps",
		Method:      http.MethodGet,
		Path:        "/api/v1/scraps/unbooked",
		Summary:     "List unbooked scraps",
		Description: "Returns the caller's scraps that belong to no book, in sequence order.",
		Tags:        []string{"Scraps"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetUnbookedScraps)

	huma.Register(s.api, huma.Operation{
		OperationID: "getScrapCoordinates",
		Method:      http.MethodGet,
		Path:        "/api/v1/coordinates/scraps",
		Summary:     "Resolve scrap coordinates",
		Description: "Resolves scrap IDs to map positions. IDs that don't resolve are skipped.",
		Tags:        []string{"Coordinates"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetScrapCoordinates)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookCoordinates",
		Method:      http.MethodGet,
		Path:        "/api/v1/coordinates/books",
		Summary:     "Resolve book coordinates",
		Description: "Resolves book IDs to the positions of their representative scraps.",
		Tags:        []string{"Coordinates"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBookCoordinates)
}

// === DTOs ===

// AuthorPathInput addresses a read at another author.
type AuthorPathInput struct {
	Authorization string `header:"Authorization"`
	AuthorID      string `path:"authorID" doc:"Author ID"`
}

// RelationshipResponse carries a relationship classification.
type RelationshipResponse struct {
	Relationship domain.Relationship `json:"relationship" doc:"self, friend, requested, pending, or none"`
}

// RelationshipOutput wraps the relationship response for Huma.
type RelationshipOutput struct {
	Body RelationshipResponse
}

// IDListResponse carries an ordered list of entity IDs.
type IDListResponse struct {
	IDs []string `json:"ids" doc:"Entity IDs"`
}

// IDListOutput wraps an ID list for Huma.
type IDListOutput struct {
	Body IDListResponse
}

// CoordinatesInput carries the IDs to resolve to positions.
type CoordinatesInput struct {
	Authorization string   `header:"Authorization"`
	IDs           []string `query:"ids" doc:"Entity IDs to resolve"`
}

// CoordinatesResponse carries resolved map positions.
type CoordinatesResponse struct {
	Coordinates []domain.Coordinate `json:"coordinates" doc:"Resolved positions, input order"`
}

// CoordinatesOutput wraps the coordinates response for Huma.
type CoordinatesOutput struct {
	Body CoordinatesResponse
}

// === Handlers ===

func (s *Server) handleGetAuthor(ctx context.Context, input *AuthorPathInput) (*AuthorOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	author, err := s.store.Authors.Get(ctx, input.AuthorID)
	if err != nil {
		return nil, err
	}

	return &AuthorOutput{Body: mapAuthor(author, userID == input.AuthorID)}, nil
}

func (s *Server) handleGetRelationship(ctx context.Context, input *AuthorPathInput) (*RelationshipOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	relationship, err := s.services.Query.Relationship(ctx, userID, input.AuthorID)
	if err != nil {
		return nil, err
	}

	return &RelationshipOutput{Body: RelationshipResponse{Relationship: relationship}}, nil
}

func (s *Server) handleGetProfileBooks(ctx context.Context, input *AuthorPathInput) (*IDListOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	ids, err := s.services.Query.ProfileBooks(ctx, userID, input.AuthorID)
	if err != nil {
		return nil, err
	}

	return &IDListOutput{Body: IDListResponse{IDs: ids}}, nil
}

func (s *Server) handleGetFeed(ctx context.Context, input *CurrentAuthorInput) (*IDListOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	ids, err := s.services.Query.Feed(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &IDListOutput{Body: IDListResponse{IDs: ids}}, nil
}

func (s *Server) handleGetUnbookedScraps(ctx context.Context, input *CurrentAuthorInput) (*IDListOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	ids, err := s.services.Query.UnbookedScraps(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &IDListOutput{Body: IDListResponse{IDs: ids}}, nil
}

func (s *Server) handleGetScrapCoordinates(ctx context.Context, input *CoordinatesInput) (*CoordinatesOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	coords, err := s.services.Query.ScrapCoordinates(ctx, input.IDs)
	if err != nil {
		return nil, err
	}

	return &CoordinatesOutput{Body: CoordinatesResponse{Coordinates: coords}}, nil
}

func (s *Server) handleGetBookCoordinates(ctx context.Context, input *CoordinatesInput) (*CoordinatesOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	coords, err := s.services.Query.BookCoordinates(ctx, input.IDs)
	if err != nil {
		return nil, err
	}

	return &CoordinatesOutput{Body: CoordinatesResponse{Coordinates: coords}}, nil
}
