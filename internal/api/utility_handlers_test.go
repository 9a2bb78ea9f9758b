package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFieldEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.signUp(t, "alice")

	var book BookResponse
	rec := ts.do(t, http.MethodPost, "/api/v1/books", alice.Token, map[string]any{
		"title": "Tour de France",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeData(t, rec, &book)

	var field FieldResponse
	decodeData(t, ts.do(t, http.MethodGet,
		"/api/v1/utility/book/"+book.ID+"/title", alice.Token, nil), &field)
	assert.Equal(t, "Tour de France", field.Value)
}

func TestGetFieldEndpoint_PasswordHashForbidden(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.signUp(t, "alice")

	rec := ts.do(t, http.MethodGet,
		"/api/v1/utility/author/"+alice.ID+"/password_hash", alice.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetFieldEndpoint_DerivedKey(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.signUp(t, "alice")
	bob := ts.signUp(t, "bob")
	ts.befriend(t, alice, bob)

	var field FieldResponse
	decodeData(t, ts.do(t, http.MethodGet,
		"/api/v1/utility/author/"+bob.ID+"/relationship", alice.Token, nil), &field)
	assert.Equal(t, "friend", field.Value)
}

func TestSetFieldEndpoint_OwnerOnly(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.signUp(t, "alice")
	bob := ts.signUp(t, "bob")

	rec := ts.do(t, http.MethodPut,
		"/api/v1/utility/author/"+alice.ID+"/autobiography", bob.Token,
		map[string]any{"value": "Not yours to write"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodPut,
		"/api/v1/utility/author/"+alice.ID+"/autobiography", alice.Token,
		map[string]any{"value": "Out wandering."})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var field FieldResponse
	decodeData(t, ts.do(t, http.MethodGet,
		"/api/v1/utility/author/"+alice.ID+"/autobiography", alice.Token, nil), &field)
	assert.Equal(t, "Out wandering.", field.Value)
}

func TestSetFieldEndpoint_ImmutableKey(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.signUp(t, "alice")

	rec := ts.do(t, http.MethodPut,
		"/api/v1/utility/author/"+alice.ID+"/id", alice.Token,
		map[string]any{"value": "author:forged"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetFieldEndpoint_EmailSideEffects(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.signUp(t, "alice")
	require.Len(t, ts.mailer.activations, 1)

	rec := ts.do(t, http.MethodPut,
		"/api/v1/utility/author/"+alice.ID+"/email", alice.Token,
		map[string]any{"value": "fresh@example.com"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var me AuthorResponse
	decodeData(t, ts.do(t, http.MethodGet, "/api/v1/auth/me", alice.Token, nil), &me)
	assert.Equal(t, "fresh@example.com", me.Email)
	assert.False(t, me.Activated)

	// A fresh confirmation went out to the new address.
	assert.Len(t, ts.mailer.activations, 2)
}

func TestFieldEndpoints_UnknownKind(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.signUp(t, "alice")

	rec := ts.do(t, http.MethodGet,
		"/api/v1/utility/potato/some-id/title", alice.Token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
