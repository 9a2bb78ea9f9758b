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

func (s *Server) registerScrapRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createScrap",
		Method:      http.MethodPost,
		Path:        "/api/v1/scraps",
		Summary:     "Create scrap",
		Description: "Stores both photos and appends the scrap to the author's sequence. Set book to file it into a book immediately.",
		Tags:        []string{"Scraps"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateScrap)

	huma.Register(s.api, huma.Operation{
		OperationID: "getScrap",
		Method:      http.MethodGet,
		Path:        "/api/v1/scraps/{id}",
		Summary:     "Get scrap",
		Tags:        []string{"Scraps"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetScrap)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteScrap",
		Method:      http.MethodDelete,
		Path:        "/api/v1/scraps/{id}",
		Summary:     "Delete scrap",
		Description: "Deletes the scrap, its photos, and every book membership, thread, and action that references it.",
		Tags:        []string{"Scraps"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteScrap)
}

// === DTOs ===

// CreateScrapRequest is the request body for scrap creation. Photos are
// base64-encoded in transit and re-encoded server side.
type CreateScrapRequest struct {
	Title       string  `json:"title,omitempty" validate:"omitempty,max=256" doc:"Scrap title"`
	Description string  `json:"description,omitempty" validate:"omitempty,max=4096" doc:"Scrap description"`
	Latitude    float64 `json:"latitude" minimum:"-90" maximum:"90" doc:"WGS84 latitude"`
	Longitude   float64 `json:"longitude" minimum:"-180" maximum:"180" doc:"WGS84 longitude"`
	Place       string  `json:"place,omitempty" validate:"omitempty,max=256" doc:"Place name"`
	Location    string  `json:"location,omitempty" validate:"omitempty,max=256" doc:"Broader location name"`
	Book        string  `json:"book,omitempty" doc:"Book to file the scrap into"`
	Prograph    []byte  `json:"prograph" doc:"Forward-facing photo, base64"`
	Retrograph  []byte  `json:"retrograph" doc:"Rear-facing photo, base64"`

	CreatedAt FlexTime `json:"created_at,omitzero" doc:"Backdated creation time, for imports. RFC3339 or epoch milliseconds."`
}

// CreateScrapInput wraps the creation request for Huma.
type CreateScrapInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateScrapRequest
}

// ScrapResponse is the public shape of a scrap document. Photos are
// referenced by key, resolvable through the photo endpoint.
type ScrapResponse struct {
	ID                 string    `json:"id" doc:"Scrap ID"`
	Author             string    `json:"author" doc:"Owning author ID"`
	Book               string    `json:"book,omitempty" doc:"Owning book ID, empty while unbooked"`
	Title              string    `json:"title,omitempty" doc:"Scrap title"`
	Description        string    `json:"description,omitempty" doc:"Scrap description"`
	Prograph           string    `json:"prograph,omitempty" doc:"Forward photo key"`
	Retrograph         string    `json:"retrograph,omitempty" doc:"Rear photo key"`
	PrographBlurhash   string    `json:"prograph_blurhash,omitempty" doc:"Forward photo blurhash"`
	RetrographBlurhash string    `json:"retrograph_blurhash,omitempty" doc:"Rear photo blurhash"`
	Latitude           float64   `json:"latitude" doc:"WGS84 latitude"`
	Longitude          float64   `json:"longitude" doc:"WGS84 longitude"`
	Place              string    `json:"place,omitempty" doc:"Place name"`
	Location           string    `json:"location,omitempty" doc:"Broader location name"`
	Threads            []string  `json:"threads" doc:"Books this scrap is threaded into"`
	CreatedAt          time.Time `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt          time.Time `json:"updated_at" doc:"Last update timestamp"`
}

// ScrapOutput wraps a scrap response for Huma.
type ScrapOutput struct {
	Body ScrapResponse
}

// GetScrapInput addresses a single scrap.
type GetScrapInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Scrap ID"`
}

// === Handlers ===

func (s *Server) handleCreateScrap(ctx context.Context, input *CreateScrapInput) (*ScrapOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if input.Body.Book != "" {
		if err := s.requireBookOwner(ctx, userID, input.Body.Book); err != nil {
			return nil, err
		}
	}

	scrap, err := s.services.Scrap.CreateScrap(ctx, service.CreateScrapInput{
		Author:      userID,
		Title:       input.Body.Title,
		Description: input.Body.Description,
		Latitude:    input.Body.Latitude,
		Longitude:   input.Body.Longitude,
		Place:       input.Body.Place,
		Location:    input.Body.Location,
		Book:        input.Body.Book,
		Prograph:    input.Body.Prograph,
		Retrograph:  input.Body.Retrograph,
		CreatedAt:   input.Body.CreatedAt.ToTime(),
	})
	if err != nil {
		return nil, err
	}

	return &ScrapOutput{Body: mapScrap(scrap)}, nil
}

func (s *Server) handleGetScrap(ctx context.Context, input *GetScrapInput) (*ScrapOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	scrap, err := s.services.Scrap.GetScrap(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &ScrapOutput{Body: mapScrap(scrap)}, nil
}

func (s *Server) handleDeleteScrap(ctx context.Context, input *GetScrapInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	scrap, err := s.services.Scrap.GetScrap(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if scrap.Author != userID {
		return nil, domainerrors.Forbidden("Only the scrap's author can delete it")
	}

	if err := s.services.Cascade.DeleteScrap(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Scrap deleted"}}, nil
}

// === Helpers ===

func mapScrap(sc *domain.Scrap) ScrapResponse {
	return ScrapResponse{
		ID:                 sc.ID,
		Author:             sc.Author,
		Book:               sc.Book,
		Title:              sc.Title,
		Description:        sc.Description,
		Prograph:           sc.Prograph,
		Retrograph:         sc.Retrograph,
		PrographBlurhash:   sc.PrographBlurhash,
		RetrographBlurhash: sc.RetrographBlurhash,
		Latitude:           sc.Latitude,
		Longitude:          sc.Longitude,
		Place:              sc.Place,
		Location:           sc.Location,
		Threads:            sc.Threads,
		CreatedAt:          sc.CreatedAt,
		UpdatedAt:          sc.UpdatedAt,
	}
}
