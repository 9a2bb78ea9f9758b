package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/scrapapp/scrap-server/internal/domain"
	"github.com/scrapapp/scrap-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "signUp",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/signup",
		Summary:     "Create account",
		Description: "Creates a new author account and sends an activation email.",
		Tags:        []string{"Authentication"},
	}, s.handleSignUp)

	huma.Register(s.api, huma.Operation{
		OperationID: "signIn",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/signin",
		Summary:     "Sign in",
		Description: "Authenticates by email or pseudonym and returns an access token.",
		Tags:        []string{"Authentication"},
	}, s.handleSignIn)

	huma.Register(s.api, huma.Operation{
		OperationID: "activate",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/activate",
		Summary:     "Activate account",
		Description: "Consumes a confirmation token and marks the account's email confirmed.",
		Tags:        []string{"Authentication"},
	}, s.handleActivate)

	huma.Register(s.api, huma.Operation{
		OperationID: "forgotPassword",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/forgot-password",
		Summary:     "Request password reset",
		Description: "Emails a password reset link. At most one reset request is active per email.",
		Tags:        []string{"Authentication"},
	}, s.handleForgotPassword)

	huma.Register(s.api, huma.Operation{
		OperationID: "resetPassword",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/reset-password",
		Summary:     "Reset password",
		Description: "Consumes a password reset token and sets a new password.",
		Tags:        []string{"Authentication"},
	}, s.handleResetPassword)

	huma.Register(s.api, huma.Operation{
		OperationID: "changePassword",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/change-password",
		Summary:     "Change password",
		Tags:        []string{"Authentication"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleChangePassword)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentAuthor",
		Method:      http.MethodGet,
		Path:        "/api/v1/auth/me",
		Summary:     "Get current author",
		Tags:        []string{"Authentication"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteAccount",
		Method:      http.MethodDelete,
		Path:        "/api/v1/auth/me",
		Summary:     "Delete account",
		Description: "Deletes the account, its scraps, books, photos, and every reference other authors hold to it.",
		Tags:        []string{"Authentication"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteAccount)
}

// === DTOs ===

// SignUpRequest is the request body for account creation.
type SignUpRequest struct {
	Pseudonym string `json:"pseudonym" validate:"required,min=2,max=64" doc:"Unique public handle"`
	Email     string `json:"email" validate:"required,email" doc:"Email address"`
	Password  string `json:"password" validate:"required,min=8,max=128" doc:"Password"`
	FirstName string `json:"first_name,omitempty" validate:"omitempty,max=64" doc:"First name"`
	LastName  string `json:"last_name,omitempty" validate:"omitempty,max=64" doc:"Last name"`
	PushToken string `json:"push_token,omitempty" validate:"omitempty,max=256" doc:"Expo push token"`
}

// SignUpInput wraps the sign-up request for Huma.
type SignUpInput struct {
	Body SignUpRequest
}

// SignInRequest is the request body for sign-in.
type SignInRequest struct {
	Value    string `json:"value" validate:"required" doc:"Email or pseudonym"`
	Password string `json:"password" validate:"required,max=1024" doc:"Password"`
}

// SignInInput wraps the sign-in request for Huma.
type SignInInput struct {
	Body SignInRequest
}

// AuthorResponse is the public shape of an author document.
type AuthorResponse struct {
	ID                     string    `json:"id" doc:"Author ID"`
	Pseudonym              string    `json:"pseudonym" doc:"Public handle"`
	Email                  string    `json:"email,omitempty" doc:"Email (own profile only)"`
	Activated              bool      `json:"activated" doc:"Whether the email is confirmed"`
	FirstName              string    `json:"first_name,omitempty" doc:"First name"`
	LastName               string    `json:"last_name,omitempty" doc:"Last name"`
	Autobiography          string    `json:"autobiography,omitempty" doc:"Profile text"`
	HeadshotAndCover       string    `json:"headshot_and_cover,omitempty" doc:"Profile scrap ID"`
	Friends                []string  `json:"friends" doc:"Friend author IDs"`
	IncomingFriendRequests []string  `json:"incoming_friend_requests" doc:"Authors who sent a request"`
	OutgoingFriendRequests []string  `json:"outgoing_friend_requests" doc:"Authors a request was sent to"`
	Scraps                 []string  `json:"scraps" doc:"Scrap IDs, oldest first"`
	Books                  []string  `json:"books" doc:"Book IDs, newest trip first"`
	LikedBooks             []string  `json:"liked_books" doc:"Liked book IDs"`
	Actions                []string  `json:"actions" doc:"Notification feed action IDs"`
	Miles                  float64   `json:"miles" doc:"Lifetime miles traveled"`
	CreatedAt              time.Time `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt              time.Time `json:"updated_at" doc:"Last update timestamp"`
}

// AuthResponse contains the access token and the signed-in author.
type AuthResponse struct {
	AccessToken string         `json:"access_token" doc:"PASETO access token"`
	TokenType   string         `json:"token_type" doc:"Token type (Bearer)"`
	ExpiresIn   int            `json:"expires_in" doc:"Token expiry in seconds"`
	Author      AuthorResponse `json:"author" doc:"Authenticated author"`
}

// AuthOutput wraps the auth response for Huma.
type AuthOutput struct {
	Body AuthResponse
}

// AuthorOutput wraps an author response for Huma.
type AuthorOutput struct {
	Body AuthorResponse
}

// ActivateRequest is the request body for account activation.
type ActivateRequest struct {
	Token string `json:"token" validate:"required" doc:"Confirmation token"`
}

// ActivateInput wraps the activation request for Huma.
type ActivateInput struct {
	Body ActivateRequest
}

// ForgotPasswordRequest is the request body for a reset request.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email" doc:"Account email"`
}

// ForgotPasswordInput wraps the request for Huma.
type ForgotPasswordInput struct {
	Body ForgotPasswordRequest
}

// ResetPasswordRequest is the request body for completing a reset.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required" doc:"Password reset token"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128" doc:"New password"`
}

// ResetPasswordInput wraps the request for Huma.
type ResetPasswordInput struct {
	Body ResetPasswordRequest
}

// ChangePasswordRequest is the request body for an authenticated
// password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required" doc:"Current password"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128" doc:"New password"`
}

// ChangePasswordInput wraps the request for Huma.
type ChangePasswordInput struct {
	Authorization string `header:"Authorization"`
	Body          ChangePasswordRequest
}

// CurrentAuthorInput carries only the bearer token.
type CurrentAuthorInput struct {
	Authorization string `header:"Authorization"`
}

// MessageResponse contains a simple message.
type MessageResponse struct {
	Message string `json:"message" doc:"Status message"`
}

// MessageOutput wraps the message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleSignUp(ctx context.Context, input *SignUpInput) (*AuthOutput, error) {
	author, err := s.services.Auth.SignUp(ctx, service.SignUpInput{
		Pseudonym: input.Body.Pseudonym,
		Email:     input.Body.Email,
		Password:  input.Body.Password,
		FirstName: input.Body.FirstName,
		LastName:  input.Body.LastName,
		PushToken: input.Body.PushToken,
	})
	if err != nil {
		return nil, err
	}

	// Sign the fresh account straight in so the client doesn't bounce
	// through a second request.
	author, token, err := s.services.Auth.SignIn(ctx, author.Email, input.Body.Password)
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: s.authResponse(author, token)}, nil
}

func (s *Server) handleSignIn(ctx context.Context, input *SignInInput) (*AuthOutput, error) {
	author, token, err := s.services.Auth.SignIn(ctx, input.Body.Value, input.Body.Password)
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: s.authResponse(author, token)}, nil
}

func (s *Server) handleActivate(ctx context.Context, input *ActivateInput) (*AuthorOutput, error) {
	author, err := s.services.Auth.Activate(ctx, input.Body.Token)
	if err != nil {
		return nil, err
	}

	return &AuthorOutput{Body: mapAuthor(author, true)}, nil
}

func (s *Server) handleForgotPassword(ctx context.Context, input *ForgotPasswordInput) (*MessageOutput, error) {
	if err := s.services.Auth.ForgotPassword(ctx, input.Body.Email); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Password reset email sent"}}, nil
}

func (s *Server) handleResetPassword(ctx context.Context, input *ResetPasswordInput) (*MessageOutput, error) {
	if err := s.services.Auth.ResetPassword(ctx, input.Body.Token, input.Body.NewPassword); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Password updated"}}, nil
}

func (s *Server) handleChangePassword(ctx context.Context, input *ChangePasswordInput) (*MessageOutput, error) {
	authorID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Auth.ChangePassword(ctx, authorID, input.Body.CurrentPassword, input.Body.NewPassword); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Password updated"}}, nil
}

func (s *Server) handleGetCurrentAuthor(ctx context.Context, input *CurrentAuthorInput) (*AuthorOutput, error) {
	authorID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	author, err := s.store.Authors.Get(ctx, authorID)
	if err != nil {
		return nil, err
	}

	return &AuthorOutput{Body: mapAuthor(author, true)}, nil
}

func (s *Server) handleDeleteAccount(ctx context.Context, input *CurrentAuthorInput) (*MessageOutput, error) {
	authorID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Cascade.DeleteAuthor(ctx, authorID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Account deleted"}}, nil
}

// === Helpers ===

func (s *Server) authResponse(author *domain.Author, token string) AuthResponse {
	return AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.services.Auth.AccessTokenDuration().Seconds()),
		Author:      mapAuthor(author, true),
	}
}

// mapAuthor converts an author document to its API shape. The email is
// included only for the author's own profile.
func mapAuthor(a *domain.Author, ownProfile bool) AuthorResponse {
	resp := AuthorResponse{
		ID:                     a.ID,
		Pseudonym:              a.Pseudonym,
		Activated:              a.Activated,
		FirstName:              a.FirstName,
		LastName:               a.LastName,
		Autobiography:          a.Autobiography,
		HeadshotAndCover:       a.HeadshotAndCover,
		Friends:                a.Friends,
		IncomingFriendRequests: a.IncomingFriendRequests,
		OutgoingFriendRequests: a.OutgoingFriendRequests,
		Scraps:                 a.Scraps,
		Books:                  a.Books,
		LikedBooks:             a.LikedBooks,
		Actions:                a.Actions,
		Miles:                  a.Miles,
		CreatedAt:              a.CreatedAt,
		UpdatedAt:              a.UpdatedAt,
	}
	if ownProfile {
		resp.Email = a.Email
	}
	return resp
}
