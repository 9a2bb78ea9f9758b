package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrapapp/scrap-server/internal/auth"
	domainerrors "github.com/scrapapp/scrap-server/internal/errors"
	"github.com/scrapapp/scrap-server/internal/service"
	"github.com/scrapapp/scrap-server/internal/store"
)

type authFixture struct {
	auth   *service.AuthService
	mailer *fakeMailer
	store  *store.Store
}

func newAuthFixture(t *testing.T, tokenTTL time.Duration) (*authFixture, func()) {
	t.Helper()

	s, cleanup := setupTestStore(t)
	tokens, err := auth.NewTokenService(strings.Repeat("ab", 32), time.Hour)
	require.NoError(t, err)

	mailer := &fakeMailer{}
	return &authFixture{
		auth:   service.NewAuthService(s, tokens, mailer, store.NewNoopSearchIndexer(), tokenTTL, testLogger()),
		mailer: mailer,
		store:  s,
	}, cleanup
}

func signUp(t *testing.T, f *authFixture, pseudonym, email, password string) *authSignUpResult {
	t.Helper()

	author, err := f.auth.SignUp(context.Background(), service.SignUpInput{
		Pseudonym: pseudonym,
		Email:     email,
		Password:  password,
		FirstName: "Test",
	})
	require.NoError(t, err)
	return &authSignUpResult{author.ID, author.Email, author.Pseudonym}
}

type authSignUpResult struct {
	ID        string
	Email     string
	Pseudonym string
}

func TestSignUp_CreatesInactiveAccountAndMailsToken(t *testing.T) {
	f, cleanup := newAuthFixture(t, time.Hour)
	defer cleanup()
	ctx := context.Background()

	author, err := f.auth.SignUp(ctx, service.SignUpInput{
		Pseudonym: "Wanderer",
		Email:     "Wanderer@Example.COM",
		Password:  "longenoughpass",
	})
	require.NoError(t, err)

	assert.Equal(t, "wanderer@example.com", author.Email)
	assert.False(t, author.Activated)
	assert.NotEqual(t, "longenoughpass", author.PasswordHash)
	assert.NotNil(t, author.Friends)

	require.Len(t, f.mailer.activations, 1)
	assert.Equal(t, author.Email, f.mailer.activations[0].Email)
	token, err := f.store.ConfirmationTokens.Get(ctx, f.mailer.activations[0].Token)
	require.NoError(t, err)
	assert.Equal(t, author.ID, token.Author)
}

func TestSignUp_DuplicateIdentity(t *testing.T) {
	f, cleanup := newAuthFixture(t, time.Hour)
	defer cleanup()
	ctx := context.Background()

	signUp(t, f, "wanderer", "wanderer@example.com", "longenoughpass")

	_, err := f.auth.SignUp(ctx, service.SignUpInput{
		Pseudonym: "Wanderer",
		Email:     "other@example.com",
		Password:  "longenoughpass",
	})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrAlreadyExists))

	_, err = f.auth.SignUp(ctx, service.SignUpInput{
		Pseudonym: "someone-else",
		Email:     "WANDERER@example.com",
		Password:  "longenoughpass",
	})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrAlreadyExists))
}

func TestSignUp_Validation(t *testing.T) {
	f, cleanup := newAuthFixture(t, time.Hour)
	defer cleanup()

	_, err := f.auth.SignUp(context.Background(), service.SignUpInput{
		Pseudonym: "wanderer",
		Email:     "not-an-email",
		Password:  "short",
	})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestSignIn_ByEmailOrPseudonym(t *testing.T) {
	f, cleanup := newAuthFixture(t, time.Hour)
	defer cleanup()
	ctx := context.Background()

	created := signUp(t, f, "wanderer", "wanderer@example.com", "longenoughpass")

	byEmail, token, err := f.auth.SignIn(ctx, "wanderer@example.com", "longenoughpass")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.NotEmpty(t, token)

	byPseudonym, _, err := f.auth.SignIn(ctx, "wanderer", "longenoughpass")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byPseudonym.ID)
}

func TestSignIn_WrongPasswordAndUnknownIdentityLookAlike(t *testing.T) {
	f, cleanup := newAuthFixture(t, time.Hour)
	defer cleanup()
	ctx := context.Background()

	signUp(t, f, "wanderer", "wanderer@example.com", "longenoughpass")

	_, _, errWrong := f.auth.SignIn(ctx, "wanderer@example.com", "wrongpassword")
	_, _, errUnknown := f.auth.SignIn(ctx, "nobody@example.com", "longenoughpass")

	assert.True(t, domainerrors.Is(errWrong, domainerrors.ErrInvalidCredentials))
	assert.True(t, domainerrors.Is(errUnknown, domainerrors.ErrInvalidCredentials))
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
}

func TestVerifyAccessToken(t *testing.T) {
	f, cleanup := newAuthFixture(t, time.Hour)
	defer cleanup()
	ctx := context.Background()

	created := signUp(t, f, "wanderer", "wanderer@example.com", "longenoughpass")
	_, token, err := f.auth.SignIn(ctx, "wanderer", "longenoughpass")
	require.NoError(t, err)

	author, err := f.auth.VerifyAccessToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, author.ID)

	_, err = f.auth.VerifyAccessToken(ctx, "v4.local.garbage")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))
}

func TestCheckCredentialsAndChangePassword(t *testing.T) {
	f, cleanup := newAuthFixture(t, time.Hour)
	defer cleanup()
	ctx := context.Background()

	created := signUp(t, f, "wanderer", "wanderer@example.com", "longenoughpass")

	require.NoError(t, f.auth.CheckCredentials(ctx, created.ID, "longenoughpass"))
	assert.True(t, domainerrors.Is(
		f.auth.CheckCredentials(ctx, created.ID, "wrongpassword"),
		domainerrors.ErrInvalidCredentials))

	err := f.auth.ChangePassword(ctx, created.ID, "wrongpassword", "newlongenough")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidCredentials))

	require.NoError(t, f.auth.ChangePassword(ctx, created.ID, "longenoughpass", "newlongenough"))
	require.NoError(t, f.auth.CheckCredentials(ctx, created.ID, "newlongenough"))
}

func TestForgotPassword_SingleLiveToken(t *testing.T) {
	f, cleanup := newAuthFixture(t, time.Hour)
	defer cleanup()
	ctx := context.Background()

	signUp(t, f, "wanderer", "wanderer@example.com", "longenoughpass")

	require.NoError(t, f.auth.ForgotPassword(ctx, "wanderer@example.com"))
	require.Len(t, f.mailer.resets, 1)

	// A live token blocks a second request.
	err := f.auth.ForgotPassword(ctx, "wanderer@example.com")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidState))

	assert.True(t, domainerrors.Is(
		f.auth.ForgotPassword(ctx, "nobody@example.com"),
		domainerrors.ErrNotFound))
}

func TestForgotPassword_ReplacesExpiredToken(t *testing.T) {
	f, cleanup := newAuthFixture(t, -time.Minute)
	defer cleanup()
	ctx := context.Background()

	signUp(t, f, "wanderer", "wanderer@example.com", "longenoughpass")

	// The negative TTL makes every issued token already expired, so a
	// second request replaces the first instead of being blocked.
	require.NoError(t, f.auth.ForgotPassword(ctx, "wanderer@example.com"))
	require.NoError(t, f.auth.ForgotPassword(ctx, "wanderer@example.com"))
	require.Len(t, f.mailer.resets, 2)

	_, err := f.store.PasswordTokens.Get(ctx, f.mailer.resets[0].Token)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestResetPassword_ConsumesToken(t *testing.T) {
	f, cleanup := newAuthFixture(t, time.Hour)
	defer cleanup()
	ctx := context.Background()

	created := signUp(t, f, "wanderer", "wanderer@example.com", "longenoughpass")
	require.NoError(t, f.auth.ForgotPassword(ctx, "wanderer@example.com"))
	tokenID := f.mailer.resets[0].Token

	require.NoError(t, f.auth.ResetPassword(ctx, tokenID, "brandnewsecret"))
	require.NoError(t, f.auth.CheckCredentials(ctx, created.ID, "brandnewsecret"))

	// Consumed tokens are gone.
	err := f.auth.ResetPassword(ctx, tokenID, "anotherone")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestResetPassword_Expired(t *testing.T) {
	f, cleanup := newAuthFixture(t, -time.Minute)
	defer cleanup()
	ctx := context.Background()

	signUp(t, f, "wanderer", "wanderer@example.com", "longenoughpass")
	require.NoError(t, f.auth.ForgotPassword(ctx, "wanderer@example.com"))
	tokenID := f.mailer.resets[0].Token

	err := f.auth.ResetPassword(ctx, tokenID, "brandnewsecret")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrTokenExpired))

	// The expired token is deleted on the way out.
	_, err = f.store.PasswordTokens.Get(ctx, tokenID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestActivate(t *testing.T) {
	f, cleanup := newAuthFixture(t, time.Hour)
	defer cleanup()
	ctx := context.Background()

	signUp(t, f, "wanderer", "wanderer@example.com", "longenoughpass")
	tokenID := f.mailer.activations[0].Token

	author, err := f.auth.Activate(ctx, tokenID)
	require.NoError(t, err)
	assert.True(t, author.Activated)

	_, err = f.auth.Activate(ctx, tokenID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}
