package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/scrapapp/scrap-server/internal/errors"
	"github.com/scrapapp/scrap-server/internal/service"
	"github.com/scrapapp/scrap-server/internal/store"
)

func newScrapService(s *store.Store) (*service.ScrapService, *fakePhotoStore) {
	photos := newFakePhotoStore()
	membership := service.NewMembershipService(s, testLogger())
	return service.NewScrapService(s, photos, membership, testLogger()), photos
}

func TestCreateScrap_StoresPhotosAndSequences(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	scraps, photos := newScrapService(s)
	alice := seedAuthor(t, s, "alice")

	scrap, err := scraps.CreateScrap(ctx, service.CreateScrapInput{
		Author:     alice.ID,
		Title:      "Eiffel Tower",
		Latitude:   paris.Latitude,
		Longitude:  paris.Longitude,
		Place:      "Paris",
		Prograph:   []byte("front-jpeg"),
		Retrograph: []byte("back-jpeg"),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, scrap.Prograph)
	assert.NotEmpty(t, scrap.Retrograph)
	assert.NotEqual(t, scrap.Prograph, scrap.Retrograph)
	assert.Equal(t, "blur-"+scrap.Prograph, scrap.PrographBlurhash)
	assert.Equal(t, "blur-"+scrap.Retrograph, scrap.RetrographBlurhash)
	assert.Equal(t, 2, photos.stored())

	assert.Equal(t, []string{scrap.ID}, getAuthor(t, s, alice.ID).Scraps)
}

func TestCreateScrap_Backdated(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	scraps, _ := newScrapService(s)
	alice := seedAuthor(t, s, "alice")

	past := now().AddDate(0, -1, 0)
	scrap, err := scraps.CreateScrap(context.Background(), service.CreateScrapInput{
		Author:     alice.ID,
		Latitude:   paris.Latitude,
		Longitude:  paris.Longitude,
		Prograph:   []byte("front"),
		Retrograph: []byte("back"),
		CreatedAt:  past,
	})
	require.NoError(t, err)
	assert.WithinDuration(t, past, scrap.CreatedAt, time.Second)
}

func TestCreateScrap_FilesIntoBook(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	scraps, _ := newScrapService(s)
	alice := seedAuthor(t, s, "alice")
	book := seedBook(t, s, alice.ID, "Tour", true)

	scrap, err := scraps.CreateScrap(ctx, service.CreateScrapInput{
		Author:     alice.ID,
		Latitude:   paris.Latitude,
		Longitude:  paris.Longitude,
		Book:       book.ID,
		Prograph:   []byte("front"),
		Retrograph: []byte("back"),
	})
	require.NoError(t, err)

	assert.Equal(t, book.ID, scrap.Book)
	assert.Equal(t, []string{scrap.ID}, getBook(t, s, book.ID).Scraps)
}

func TestCreateScrap_Validation(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	scraps, _ := newScrapService(s)
	alice := seedAuthor(t, s, "alice")

	// Latitude out of range.
	_, err := scraps.CreateScrap(ctx, service.CreateScrapInput{
		Author:     alice.ID,
		Latitude:   91,
		Longitude:  0,
		Prograph:   []byte("front"),
		Retrograph: []byte("back"),
	})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	// Missing photos.
	_, err = scraps.CreateScrap(ctx, service.CreateScrapInput{
		Author:    alice.ID,
		Latitude:  paris.Latitude,
		Longitude: paris.Longitude,
	})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestCreateScrap_UnknownAuthor(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	scraps, _ := newScrapService(s)
	_, err := scraps.CreateScrap(context.Background(), service.CreateScrapInput{
		Author:     "author:missing",
		Latitude:   paris.Latitude,
		Longitude:  paris.Longitude,
		Prograph:   []byte("front"),
		Retrograph: []byte("back"),
	})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestGetScrap(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	scraps, _ := newScrapService(s)
	alice := seedAuthor(t, s, "alice")
	seeded := seedScrap(t, s, alice.ID, paris.Latitude, paris.Longitude, now())

	got, err := scraps.GetScrap(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, got.ID)

	_, err = scraps.GetScrap(ctx, "scrap:missing")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestScrapPhoto(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	scraps, _ := newScrapService(s)
	alice := seedAuthor(t, s, "alice")

	scrap, err := scraps.CreateScrap(ctx, service.CreateScrapInput{
		Author:     alice.ID,
		Latitude:   paris.Latitude,
		Longitude:  paris.Longitude,
		Prograph:   []byte("front-jpeg"),
		Retrograph: []byte("back-jpeg"),
	})
	require.NoError(t, err)

	data, err := scraps.Photo(ctx, scrap.Prograph)
	require.NoError(t, err)
	assert.Equal(t, []byte("front-jpeg"), data)

	_, err = scraps.Photo(ctx, "missing-key")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}
