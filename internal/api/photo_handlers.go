package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/scrapapp/scrap-server/internal/http/response"
)

func (s *Server) registerPhotoRoutes() {
	// Photo routes use chi directly for streaming, not huma, but the
	// scrap-level lookups are still registered for OpenAPI documentation.
	huma.Register(s.api, huma.Operation{
		OperationID: "getScrapPrograph",
		Method:      http.MethodGet,
		Path:        "/api/v1/scraps/{id}/prograph",
		Summary:     "Get scrap's forward photo",
		Description: "Redirects to the stored JPEG for the scrap's forward-facing photo.",
		Tags:        []string{"Photos"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetPrograph)

	huma.Register(s.api, huma.Operation{
		OperationID: "getScrapRetrograph",
		Method:      http.MethodGet,
		Path:        "/api/v1/scraps/{id}/retrograph",
		Summary:     "Get scrap's rear photo",
		Description: "Redirects to the stored JPEG for the scrap's rear-facing photo.",
		Tags:        []string{"Photos"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetRetrograph)

	// Direct chi route for photo streaming.
	s.router.Get("/photos/{key}", s.handleServePhoto)
}

// === DTOs ===

// PhotoRedirectOutput redirects the client to the streaming route.
type PhotoRedirectOutput struct {
	Status   int
	Location string `header:"Location"`
}

// StatusCode implements huma.StatusError's status override.
func (o *PhotoRedirectOutput) StatusCode() int {
	return o.Status
}

// === Handlers ===

func (s *Server) handleGetPrograph(ctx context.Context, input *GetScrapInput) (*PhotoRedirectOutput, error) {
	return s.photoRedirect(ctx, input, false)
}

func (s *Server) handleGetRetrograph(ctx context.Context, input *GetScrapInput) (*PhotoRedirectOutput, error) {
	return s.photoRedirect(ctx, input, true)
}

func (s *Server) photoRedirect(ctx context.Context, input *GetScrapInput, rear bool) (*PhotoRedirectOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	scrap, err := s.services.Scrap.GetScrap(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	key := scrap.Prograph
	if rear {
		key = scrap.Retrograph
	}
	if key == "" {
		return nil, huma.Error404NotFound("Scrap has no stored photo")
	}

	return &PhotoRedirectOutput{
		Status:   http.StatusTemporaryRedirect,
		Location: "/photos/" + key + ".jpg",
	}, nil
}

// handleServePhoto streams a stored photo. An optional size query bounds
// the longer edge; oversized or missing values serve the stored file.
func (s *Server) handleServePhoto(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		response.BadRequest(w, "key required", s.logger)
		return
	}
	key = strings.TrimSuffix(key, ".jpg")

	size := 0
	if raw := r.URL.Query().Get("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			response.BadRequest(w, "size must be a positive integer", s.logger)
			return
		}
		size = parsed
	}

	data, err := s.storage.Photos.Resized(r.Context(), key, size)
	if err != nil {
		response.NotFound(w, "photo not found", s.logger)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", CacheOneDay)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.Write(data)
}
