package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBookEndpoint_WithInitialScraps(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.signUp(t, "alice")

	first := ts.createScrap(t, alice, 48.8584, 2.2945, "")
	second := ts.createScrap(t, alice, 41.4036, 2.1744, "")

	rec := ts.do(t, http.MethodPost, "/api/v1/books", alice.Token, map[string]any{
		"title":     "Southbound",
		"place":     "Europe",
		"is_public": true,
		"scraps":    []string{first.ID, second.ID},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var book BookResponse
	decodeData(t, rec, &book)
	assert.Equal(t, alice.ID, book.Author)
	assert.Equal(t, []string{first.ID, second.ID}, book.Scraps)
	assert.Greater(t, book.Miles, 0.0)

	var aliceNow AuthorResponse
	decodeData(t, ts.do(t, http.MethodGet, "/api/v1/auth/me", alice.Token, nil), &aliceNow)
	assert.Contains(t, aliceNow.Books, book.ID)
}

func TestCreateBookEndpoint_TitleRequired(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.signUp(t, "alice")

	rec := ts.do(t, http.MethodPost, "/api/v1/books", alice.Token, map[string]any{
		"place": "Nowhere",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPublishBookEndpoint_OwnerOnly(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.signUp(t, "alice")
	bob := ts.signUp(t, "bob")

	var book BookResponse
	rec := ts.do(t, http.MethodPost, "/api/v1/books", alice.Token, map[string]any{"title": "Trip"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeData(t, rec, &book)
	require.False(t, book.IsPublic)

	rec = ts.do(t, http.MethodPost, "/api/v1/books/"+book.ID+"/publish", bob.Token,
		map[string]any{"is_public": true})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/books/"+book.ID+"/publish", alice.Token,
		map[string]any{"is_public": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var published BookResponse
	decodeData(t, rec, &published)
	assert.True(t, published.IsPublic)
}

func TestBookMembershipEndpoints(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.signUp(t, "alice")

	var book BookResponse
	rec := ts.do(t, http.MethodPost, "/api/v1/books", alice.Token, map[string]any{"title": "Trip"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeData(t, rec, &book)

	scrap := ts.createScrap(t, alice, 48.8584, 2.2945, "")

	rec = ts.do(t, http.MethodPost, "/api/v1/books/"+book.ID+"/scraps/"+scrap.ID, alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var bookNow BookResponse
	decodeData(t, ts.do(t, http.MethodGet, "/api/v1/books/"+book.ID, alice.Token, nil), &bookNow)
	assert.Equal(t, []string{scrap.ID}, bookNow.Scraps)

	rec = ts.do(t, http.MethodDelete, "/api/v1/books/"+book.ID+"/scraps/"+scrap.ID, alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	decodeData(t, ts.do(t, http.MethodGet, "/api/v1/books/"+book.ID, alice.Token, nil), &bookNow)
	assert.Empty(t, bookNow.Scraps)

	var scrapNow ScrapResponse
	decodeData(t, ts.do(t, http.MethodGet, "/api/v1/scraps/"+scrap.ID, alice.Token, nil), &scrapNow)
	assert.Empty(t, scrapNow.Book)
}

func TestDeleteBookEndpoint_ScrapsSurvive(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.signUp(t, "alice")

	var book BookResponse
	rec := ts.do(t, http.MethodPost, "/api/v1/books", alice.Token, map[string]any{"title": "Trip"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeData(t, rec, &book)

	scrap := ts.createScrap(t, alice, 48.8584, 2.2945, book.ID)
	require.Equal(t, book.ID, scrap.Book)

	rec = ts.do(t, http.MethodDelete, "/api/v1/books/"+book.ID, alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/v1/books/"+book.ID, alice.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var scrapNow ScrapResponse
	decodeData(t, ts.do(t, http.MethodGet, "/api/v1/scraps/"+scrap.ID, alice.Token, nil), &scrapNow)
	assert.Empty(t, scrapNow.Book)
}
