package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerSocialRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "sendFriendRequest",
		Method:      http.MethodPost,
		Path:        "/api/v1/friends/requests",
		Summary:     "Send friend request",
		Description: "Adds a pending request between the caller and the target author.",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSendFriendRequest)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeFriendRequest",
		Method:      http.MethodDelete,
		Path:        "/api/v1/friends/requests/{authorID}",
		Summary:     "Withdraw friend request",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveFriendRequest)

	huma.Register(s.api, huma.Operation{
		OperationID: "acceptFriendRequest",
		Method:      http.MethodPost,
		Path:        "/api/v1/friends/requests/{authorID}/accept",
		Summary:     "Accept friend request",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAcceptFriendRequest)

	huma.Register(s.api, huma.Operation{
		OperationID: "rejectFriendRequest",
		Method:      http.MethodPost,
		Path:        "/api/v1/friends/requests/{authorID}/reject",
		Summary:     "Reject friend request",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRejectFriendRequest)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeFriend",
		Method:      http.MethodDelete,
		Path:        "/api/v1/friends/{authorID}",
		Summary:     "Remove friend",
		Tags:        []string{"Friends"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveFriend)

	huma.Register(s.api, huma.Operation{
		OperationID: "likeBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/like",
		Summary:     "Like a book",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleLikeBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "unlikeBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}/like",
		Summary:     "Remove a like",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUnlikeBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "threadScrap",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{bookID}/threads/{scrapID}",
		Summary:     "Thread a scrap into a book",
		Description: "Attaches another author's scrap to the book without changing its owning book.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleThreadScrap)

	huma.Register(s.api, huma.Operation{
		OperationID: "unthreadScrap",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{bookID}/threads/{scrapID}",
		Summary:     "Remove a thread",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUnthreadScrap)
}

// === DTOs ===

// SendFriendRequestRequest is the request body for sending a request.
type SendFriendRequestRequest struct {
	AuthorID string `json:"author_id" validate:"required" doc:"Target author ID"`
}

// SendFriendRequestInput wraps the request for Huma.
type SendFriendRequestInput struct {
	Authorization string `header:"Authorization"`
	Body          SendFriendRequestRequest
}

// FriendTargetInput addresses a friend operation at another author.
type FriendTargetInput struct {
	Authorization string `header:"Authorization"`
	AuthorID      string `path:"authorID" doc:"Other author ID"`
}

// BookLikeInput addresses a like operation at a book.
type BookLikeInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

// ThreadInput addresses a thread operation at a book/scrap pair.
type ThreadInput struct {
	Authorization string `header:"Authorization"`
	BookID        string `path:"bookID" doc:"Book ID"`
	ScrapID       string `path:"scrapID" doc:"Scrap ID"`
}

// === Handlers ===

func (s *Server) handleSendFriendRequest(ctx context.Context, input *SendFriendRequestInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Social.SendFriendRequest(ctx, userID, input.Body.AuthorID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Friend request sent"}}, nil
}

func (s *Server) handleRemoveFriendRequest(ctx context.Context, input *FriendTargetInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Social.RemoveFriendRequest(ctx, userID, input.AuthorID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Friend request withdrawn"}}, nil
}

func (s *Server) handleAcceptFriendRequest(ctx context.Context, input *FriendTargetInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Social.AcceptFriendRequest(ctx, userID, input.AuthorID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Friend request accepted"}}, nil
}

func (s *Server) handleRejectFriendRequest(ctx context.Context, input *FriendTargetInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Social.RejectFriendRequest(ctx, userID, input.AuthorID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Friend request rejected"}}, nil
}

func (s *Server) handleRemoveFriend(ctx context.Context, input *FriendTargetInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Social.RemoveFriend(ctx, userID, input.AuthorID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Friend removed"}}, nil
}

func (s *Server) handleLikeBook(ctx context.Context, input *BookLikeInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Social.Like(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Book liked"}}, nil
}

func (s *Server) handleUnlikeBook(ctx context.Context, input *BookLikeInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Social.Unlike(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Like removed"}}, nil
}

func (s *Server) handleThreadScrap(ctx context.Context, input *ThreadInput) (*MessageOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Social.Thread(ctx, input.BookID, input.ScrapID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Scrap threaded"}}, nil
}

func (s *Server) handleUnthreadScrap(ctx context.Context, input *ThreadInput) (*MessageOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Social.Unthread(ctx, input.BookID, input.ScrapID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Thread removed"}}, nil
}
