package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateScrapEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.signUp(t, "alice")

	scrap := ts.createScrap(t, alice, 48.8584, 2.2945, "")

	assert.Equal(t, alice.ID, scrap.Author)
	assert.NotEmpty(t, scrap.Prograph)
	assert.NotEmpty(t, scrap.Retrograph)
	assert.NotEmpty(t, scrap.PrographBlurhash)
	assert.InDelta(t, 48.8584, scrap.Latitude, 0.0001)

	var aliceNow AuthorResponse
	decodeData(t, ts.do(t, http.MethodGet, "/api/v1/auth/me", alice.Token, nil), &aliceNow)
	assert.Equal(t, []string{scrap.ID}, aliceNow.Scraps)
}

func TestCreateScrapEndpoint_Backdated(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.signUp(t, "alice")

	past := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := ts.do(t, http.MethodPost, "/api/v1/scraps", alice.Token, map[string]any{
		"latitude":   41.8902,
		"longitude":  12.4922,
		"prograph":   testJPEG(t, jpegRed),
		"retrograph": testJPEG(t, jpegBlue),
		"created_at": past.Format(time.RFC3339),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var scrap ScrapResponse
	decodeData(t, rec, &scrap)
	assert.WithinDuration(t, past, scrap.CreatedAt, time.Second)
}

func TestCreateScrapEndpoint_IntoForeignBookForbidden(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.signUp(t, "alice")
	bob := ts.signUp(t, "bob")

	var book BookResponse
	rec := ts.do(t, http.MethodPost, "/api/v1/books", bob.Token, map[string]any{"title": "Bob's"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeData(t, rec, &book)

	rec = ts.do(t, http.MethodPost, "/api/v1/scraps", alice.Token, map[string]any{
		"latitude":   0.0,
		"longitude":  0.0,
		"book":       book.ID,
		"prograph":   testJPEG(t, jpegRed),
		"retrograph": testJPEG(t, jpegBlue),
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteScrapEndpoint_OwnerOnly(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.signUp(t, "alice")
	bob := ts.signUp(t, "bob")

	scrap := ts.createScrap(t, alice, 48.8584, 2.2945, "")

	rec := ts.do(t, http.MethodDelete, "/api/v1/scraps/"+scrap.ID, bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/v1/scraps/"+scrap.ID, alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/v1/scraps/"+scrap.ID, alice.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScrapPhotoRoundTrip(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.signUp(t, "alice")
	scrap := ts.createScrap(t, alice, 48.8584, 2.2945, "")

	// Scrap-level lookup redirects to the streaming route.
	rec := ts.do(t, http.MethodGet, "/api/v1/scraps/"+scrap.ID+"/prograph", alice.Token, nil)
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code, rec.Body.String())
	location := rec.Header().Get("Location")
	assert.Equal(t, "/photos/"+scrap.Prograph+".jpg", location)

	rec = ts.do(t, http.MethodGet, location, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, CacheOneDay, rec.Header().Get("Cache-Control"))
	assert.NotZero(t, rec.Body.Len())

	// Downscaled variant still decodes to a JPEG payload.
	rec = ts.do(t, http.MethodGet, location+"?size=16", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotZero(t, rec.Body.Len())

	rec = ts.do(t, http.MethodGet, "/photos/missing-key.jpg", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`,
		"photo errors use the JSON envelope")
}
