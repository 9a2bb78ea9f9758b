package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/scrapapp/scrap-server/internal/auth"
	"github.com/scrapapp/scrap-server/internal/domain"
	domainerrors "github.com/scrapapp/scrap-server/internal/errors"
	"github.com/scrapapp/scrap-server/internal/id"
	"github.com/scrapapp/scrap-server/internal/normalize"
	"github.com/scrapapp/scrap-server/internal/store"
)

// validate is a shared validator instance for request validation.
var validate = func() *validator.Validate {
	v := validator.New()
	// Use JSON tag names for field names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		// Remove any options (like omitempty, -)
		for i := range len(name) {
			if name[i] == ',' {
				return name[:i]
			}
		}
		return name
	})
	return v
}()

// Mailer sends the account-lifecycle emails. Delivery failures are
// logged, never propagated: the account mutation is authoritative.
type Mailer interface {
	SendActivation(ctx context.Context, email, firstName, token string) error
	SendPasswordReset(ctx context.Context, email, firstName, token string) error
}

// AuthService handles account lifecycle: sign-up, sign-in, activation,
// and password management.
type AuthService struct {
	store            *store.Store
	tokens           *auth.TokenService
	mailer           Mailer
	search           store.SearchIndexer
	passwordTokenTTL time.Duration
	logger           *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store *store.Store,
	tokens *auth.TokenService,
	mailer Mailer,
	search store.SearchIndexer,
	passwordTokenTTL time.Duration,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:            store,
		tokens:           tokens,
		mailer:           mailer,
		search:           search,
		passwordTokenTTL: passwordTokenTTL,
		logger:           logger,
	}
}

// SignUpInput is the payload for account creation.
type SignUpInput struct {
	Pseudonym string `json:"pseudonym" validate:"required,min=2,max=64"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	FirstName string `json:"first_name" validate:"omitempty,max=64"`
	LastName  string `json:"last_name" validate:"omitempty,max=64"`
	PushToken string `json:"push_token" validate:"omitempty,max=256"`
}

// SignUp creates a new, not-yet-activated account and emails an
// activation link. Pseudonym and email uniqueness is case-insensitive.
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (*domain.Author, error) {
	if err := validate.Struct(input); err != nil {
		return nil, domainerrors.ValidationWithDetails("invalid sign-up input", err.Error())
	}

	pseudonym := normalize.Name(input.Pseudonym)
	email := normalize.Email(input.Email)

	if _, err := s.store.Authors.GetByIndex(ctx, "pseudonym", pseudonym); err == nil {
		return nil, domainerrors.AlreadyExists("That pseudonym is already taken")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("checking pseudonym: %w", err)
	}

	if _, err := s.store.Authors.GetByIndex(ctx, "email", email); err == nil {
		return nil, domainerrors.AlreadyExists("That email is already registered with another account")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("checking email: %w", err)
	}

	hashed, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	author := &domain.Author{
		Record:       domain.Record{ID: id.MustGenerate("author")},
		Pseudonym:    pseudonym,
		Email:        email,
		PasswordHash: hashed,
		FirstName:    normalize.Name(input.FirstName),
		LastName:     normalize.Name(input.LastName),
		PushToken:    input.PushToken,

		Friends:                []string{},
		IncomingFriendRequests: []string{},
		OutgoingFriendRequests: []string{},
		Scraps:                 []string{},
		Books:                  []string{},
		LikedBooks:             []string{},
		Actions:                []string{},
	}
	author.InitTimestamps()

	if err := s.store.Authors.Create(ctx, author.ID, author); err != nil {
		return nil, fmt.Errorf("creating author: %w", err)
	}

	token := &domain.ConfirmationToken{
		Record: domain.Record{ID: id.MustGenerate("ctoken")},
		Author: author.ID,
	}
	token.InitTimestamps()
	if err := s.store.ConfirmationTokens.Create(ctx, token.ID, token); err != nil {
		return nil, fmt.Errorf("creating confirmation token: %w", err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendActivation(ctx, author.Email, author.FirstName, token.ID); err != nil {
			s.logger.Error("failed to send activation email", "author_id", author.ID, "error", err)
		}
	}

	if err := s.search.IndexAuthor(ctx, author); err != nil {
		s.logger.Error("failed to index author", "author_id", author.ID, "error", err)
	}

	return author, nil
}

// SignIn authenticates by email or pseudonym and returns the author with
// a fresh access token. Unknown identity and wrong password report
// identically.
func (s *AuthService) SignIn(ctx context.Context, value, password string) (*domain.Author, string, error) {
	author, err := s.lookupByIdentity(ctx, value)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", domainerrors.InvalidCredentials("Invalid credentials")
		}
		return nil, "", err
	}

	ok, err := auth.VerifyPassword(author.PasswordHash, password)
	if err != nil {
		return nil, "", fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return nil, "", domainerrors.InvalidCredentials("Invalid credentials")
	}

	token, err := s.tokens.GenerateAccessToken(author)
	if err != nil {
		return nil, "", fmt.Errorf("generating access token: %w", err)
	}

	return author, token, nil
}

// CheckCredentials verifies an author's password without issuing a
// token.
func (s *AuthService) CheckCredentials(ctx context.Context, authorID, password string) error {
	author, err := s.store.Authors.Get(ctx, authorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.InvalidCredentials("Invalid credentials")
		}
		return fmt.Errorf("getting author %s: %w", authorID, err)
	}

	ok, err := auth.VerifyPassword(author.PasswordHash, password)
	if err != nil {
		return fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return domainerrors.InvalidCredentials("Invalid credentials")
	}
	return nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, authorID, currentPassword, newPassword string) error {
	if err := s.CheckCredentials(ctx, authorID, currentPassword); err != nil {
		return err
	}

	hashed, err := auth.HashPassword(newPassword)
	if err != nil {
		return domainerrors.Validation(err.Error())
	}

	author, err := s.store.Authors.Get(ctx, authorID)
	if err != nil {
		return fmt.Errorf("getting author %s: %w", authorID, err)
	}
	author.PasswordHash = hashed
	author.Touch()
	if err := s.store.Authors.Update(ctx, authorID, author); err != nil {
		return fmt.Errorf("saving author %s: %w", authorID, err)
	}
	return nil
}

// ForgotPassword issues a reset token for the email and mails it. At
// most one live token exists per email; an expired one is replaced.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = normalize.Email(email)

	author, err := s.store.Authors.GetByIndex(ctx, "email", email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFoundf("email: %q isn't associated with an account", email)
		}
		return fmt.Errorf("looking up email: %w", err)
	}

	if existing, err := s.store.PasswordTokens.GetByIndex(ctx, "email", email); err == nil {
		if !existing.Expired(time.Now()) {
			return domainerrors.InvalidState("You already have an active password reset request. Please check your email or wait until your current request expires before making another.")
		}
		if err := s.store.PasswordTokens.Delete(ctx, existing.ID); err != nil {
			return fmt.Errorf("deleting expired password token: %w", err)
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("looking up password token: %w", err)
	}

	token := &domain.PasswordToken{
		Record:    domain.Record{ID: id.MustGenerate("ptoken")},
		Email:     email,
		ExpiresAt: time.Now().Add(s.passwordTokenTTL),
	}
	token.InitTimestamps()
	if err := s.store.PasswordTokens.Create(ctx, token.ID, token); err != nil {
		return fmt.Errorf("creating password token: %w", err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendPasswordReset(ctx, email, author.FirstName, token.ID); err != nil {
			s.logger.Error("failed to send password reset email", "email", email, "error", err)
		}
	}

	return nil
}

// ResetPassword consumes a reset token and sets a new password.
func (s *AuthService) ResetPassword(ctx context.Context, tokenID, newPassword string) error {
	token, err := s.store.PasswordTokens.Get(ctx, tokenID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFoundf("password token: %q doesn't exist", tokenID)
		}
		return fmt.Errorf("getting password token: %w", err)
	}

	if token.Expired(time.Now()) {
		if err := s.store.PasswordTokens.Delete(ctx, token.ID); err != nil {
			s.logger.Error("failed to delete expired password token", "token_id", token.ID, "error", err)
		}
		return domainerrors.TokenExpired("Your password reset request has expired")
	}

	author, err := s.store.Authors.GetByIndex(ctx, "email", token.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFoundf("email: %q isn't associated with an account", token.Email)
		}
		return fmt.Errorf("looking up email: %w", err)
	}

	hashed, err := auth.HashPassword(newPassword)
	if err != nil {
		return domainerrors.Validation(err.Error())
	}
	author.PasswordHash = hashed
	author.Touch()
	if err := s.store.Authors.Update(ctx, author.ID, author); err != nil {
		return fmt.Errorf("saving author %s: %w", author.ID, err)
	}

	if err := s.store.PasswordTokens.Delete(ctx, token.ID); err != nil {
		return fmt.Errorf("deleting password token: %w", err)
	}
	return nil
}

// Activate consumes a confirmation token and marks the account
// activated.
func (s *AuthService) Activate(ctx context.Context, tokenID string) (*domain.Author, error) {
	token, err := s.store.ConfirmationTokens.Get(ctx, tokenID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("confirmation token: %q doesn't exist", tokenID)
		}
		return nil, fmt.Errorf("getting confirmation token: %w", err)
	}

	author, err := s.store.Authors.Get(ctx, token.Author)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("author: %q doesn't exist", token.Author)
		}
		return nil, fmt.Errorf("getting author %s: %w", token.Author, err)
	}

	author.Activated = true
	author.Touch()
	if err := s.store.Authors.Update(ctx, author.ID, author); err != nil {
		return nil, fmt.Errorf("saving author %s: %w", author.ID, err)
	}

	if err := s.store.ConfirmationTokens.Delete(ctx, token.ID); err != nil {
		return nil, fmt.Errorf("deleting confirmation token: %w", err)
	}

	return author, nil
}

// VerifyAccessToken resolves a bearer token to its author.
func (s *AuthService) VerifyAccessToken(ctx context.Context, tokenString string) (*domain.Author, error) {
	claims, err := s.tokens.VerifyAccessToken(tokenString)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid or expired token")
	}

	author, err := s.store.Authors.Get(ctx, claims.AuthorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthorized("invalid or expired token")
		}
		return nil, fmt.Errorf("getting author %s: %w", claims.AuthorID, err)
	}
	return author, nil
}

// Exists reports whether an author id resolves.
func (s *AuthService) Exists(ctx context.Context, authorID string) (bool, error) {
	return s.store.Authors.Exists(ctx, authorID)
}

// AccessTokenDuration returns the configured access token lifetime.
func (s *AuthService) AccessTokenDuration() time.Duration {
	return s.tokens.AccessTokenDuration()
}

// lookupByIdentity resolves email first, then pseudonym.
func (s *AuthService) lookupByIdentity(ctx context.Context, value string) (*domain.Author, error) {
	author, err := s.store.Authors.GetByIndex(ctx, "email", value)
	if err == nil {
		return author, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("looking up email: %w", err)
	}
	return s.store.Authors.GetByIndex(ctx, "pseudonym", value)
}
