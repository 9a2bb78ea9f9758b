package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/scrapapp/scrap-server/internal/domain"
)

func (s *Server) registerActionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listActions",
		Method:      http.MethodGet,
		Path:        "/api/v1/actions",
		Summary:     "List notification feed",
		Description: "Returns the caller's action feed, oldest first. Actions whose records are gone are skipped.",
		Tags:        []string{"Actions"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListActions)

	huma.Register(s.api, huma.Operation{
		OperationID: "dismissAction",
		Method:      http.MethodDelete,
		Path:        "/api/v1/actions/{id}",
		Summary:     "Dismiss action",
		Description: "Drops the action from the caller's feed and deletes its record.",
		Tags:        []string{"Actions"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDismissAction)
}

// === DTOs ===

// ActionResponse is the public shape of an action record.
type ActionResponse struct {
	ID        string            `json:"id" doc:"Action ID"`
	Type      domain.ActionType `json:"type" doc:"Action type"`
	Sender    domain.Ref        `json:"sender" doc:"Who did it"`
	Target    domain.Ref        `json:"target,omitempty" doc:"What it concerns"`
	CreatedAt time.Time         `json:"created_at" doc:"Creation timestamp"`
}

// ActionListOutput wraps the feed for Huma.
type ActionListOutput struct {
	Body struct {
		Actions []ActionResponse `json:"actions" doc:"Feed entries, oldest first"`
	}
}

// ActionPathInput addresses a single action in the caller's feed.
type ActionPathInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Action ID"`
}

// === Handlers ===

func (s *Server) handleListActions(ctx context.Context, input *CurrentAuthorInput) (*ActionListOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	author, err := s.store.Authors.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &ActionListOutput{}
	out.Body.Actions = []ActionResponse{}
	for _, actionID := range author.Actions {
		action, err := s.store.Actions.Get(ctx, actionID)
		if err != nil {
			s.logger.Debug("skipping unresolvable action", "action_id", actionID, "error", err)
			continue
		}
		out.Body.Actions = append(out.Body.Actions, ActionResponse{
			ID:        action.ID,
			Type:      action.Type,
			Sender:    action.Sender,
			Target:    action.Target,
			CreatedAt: action.CreatedAt,
		})
	}
	return out, nil
}

func (s *Server) handleDismissAction(ctx context.Context, input *ActionPathInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Action.RemoveAction(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Action dismissed"}}, nil
}
