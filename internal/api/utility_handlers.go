package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/scrapapp/scrap-server/internal/domain"
	domainerrors "github.com/scrapapp/scrap-server/internal/errors"
)

func (s *Server) registerUtilityRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getField",
		Method:      http.MethodGet,
		Path:        "/api/v1/utility/{kind}/{id}/{key}",
		Summary:     "Read one field",
		Description: "Reads one JSON field of any entity. Author keys relationship, publicBooks, profileBooks, feed, and unbookedScraps are computed relative to the caller.",
		Tags:        []string{"Utility"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetField)

	huma.Register(s.api, huma.Operation{
		OperationID: "setField",
		Method:      http.MethodPut,
		Path:        "/api/v1/utility/{kind}/{id}/{key}",
		Summary:     "Write one field",
		Description: "Writes one JSON field of an entity the caller owns. Guarded keys run their side effects: password re-hashes, email deactivates and re-confirms, autobiography notifies friends, is_public announces the book.",
		Tags:        []string{"Utility"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetField)
}

// === DTOs ===

// FieldInput addresses one field of one entity.
type FieldInput struct {
	Authorization string `header:"Authorization"`
	Kind          string `path:"kind" enum:"author,book,scrap,action" doc:"Entity kind"`
	ID            string `path:"id" doc:"Entity ID"`
	Key           string `path:"key" doc:"JSON field name"`
}

// SetFieldInput addresses one field and carries its new value.
type SetFieldInput struct {
	Authorization string `header:"Authorization"`
	Kind          string `path:"kind" enum:"author,book,scrap,action" doc:"Entity kind"`
	ID            string `path:"id" doc:"Entity ID"`
	Key           string `path:"key" doc:"JSON field name"`
	Body          struct {
		Value any `json:"value" doc:"New field value"`
	}
}

// FieldResponse carries one field value.
type FieldResponse struct {
	Value any `json:"value" doc:"Field value"`
}

// FieldOutput wraps a field value for Huma.
type FieldOutput struct {
	Body FieldResponse
}

// === Handlers ===

func (s *Server) handleGetField(ctx context.Context, input *FieldInput) (*FieldOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	kind := domain.Kind(input.Kind)
	if !kind.Valid() {
		return nil, domainerrors.Validationf("unknown kind %q", input.Kind)
	}

	value, err := s.services.Utility.Get(ctx, kind, input.ID, input.Key, userID)
	if err != nil {
		return nil, err
	}

	return &FieldOutput{Body: FieldResponse{Value: value}}, nil
}

func (s *Server) handleSetField(ctx context.Context, input *SetFieldInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	kind := domain.Kind(input.Kind)
	if !kind.Valid() {
		return nil, domainerrors.Validationf("unknown kind %q", input.Kind)
	}

	if err := s.requireFieldOwner(ctx, userID, kind, input.ID); err != nil {
		return nil, err
	}

	if err := s.services.Utility.Set(ctx, kind, input.ID, input.Key, input.Body.Value); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Field updated"}}, nil
}

// requireFieldOwner rejects writes against entities the caller doesn't
// own. Actions are writable by their sender only.
func (s *Server) requireFieldOwner(ctx context.Context, userID string, kind domain.Kind, entityID string) error {
	switch kind {
	case domain.KindAuthor:
		if entityID != userID {
			return domainerrors.Forbidden("Only your own profile is writable")
		}
	case domain.KindBook:
		return s.requireBookOwner(ctx, userID, entityID)
	case domain.KindScrap:
		scrap, err := s.services.Scrap.GetScrap(ctx, entityID)
		if err != nil {
			return err
		}
		if scrap.Author != userID {
			return domainerrors.Forbidden("Only the scrap's author can do that")
		}
	case domain.KindAction:
		action, err := s.store.Actions.Get(ctx, entityID)
		if err != nil {
			return err
		}
		if action.Sender.Author != userID {
			return domainerrors.Forbidden("Only the action's sender can do that")
		}
	}
	return nil
}
