package service_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scrapapp/scrap-server/internal/domain"
	"github.com/scrapapp/scrap-server/internal/id"
	"github.com/scrapapp/scrap-server/internal/store"
)

func setupTestStore(t *testing.T) (*store.Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "service-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := store.New(dbPath, nil)
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return s, cleanup
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func now() time.Time {
	return time.Now().Truncate(time.Millisecond)
}

var authorSeq int

// seedAuthor creates an activated author with a unique pseudonym and
// email.
func seedAuthor(t *testing.T, s *store.Store, name string) *domain.Author {
	t.Helper()

	authorSeq++
	author := &domain.Author{
		Record:       domain.Record{ID: id.MustGenerate("author")},
		Pseudonym:    fmt.Sprintf("%s-%d", name, authorSeq),
		Email:        fmt.Sprintf("%s-%d@example.com", name, authorSeq),
		PasswordHash: "not-a-real-hash",
		Activated:    true,
		FirstName:    name,

		Friends:                []string{},
		IncomingFriendRequests: []string{},
		OutgoingFriendRequests: []string{},
		Scraps:                 []string{},
		Books:                  []string{},
		LikedBooks:             []string{},
		Actions:                []string{},
	}
	author.InitTimestamps()
	require.NoError(t, s.Authors.Create(context.Background(), author.ID, author))
	return author
}

// seedScrap creates a bare scrap record owned by the author. Membership
// wiring is left to the caller.
func seedScrap(t *testing.T, s *store.Store, authorID string, lat, lon float64, createdAt time.Time) *domain.Scrap {
	t.Helper()

	scrap := &domain.Scrap{
		Record:    domain.Record{ID: id.MustGenerate("scrap")},
		Author:    authorID,
		Latitude:  lat,
		Longitude: lon,
		Threads:   []string{},
	}
	scrap.InitTimestamps()
	scrap.CreatedAt = createdAt
	require.NoError(t, s.Scraps.Create(context.Background(), scrap.ID, scrap))
	return scrap
}

// seedBook creates a bare book record and appends it to the owner's
// sequence.
func seedBook(t *testing.T, s *store.Store, authorID, title string, isPublic bool) *domain.Book {
	t.Helper()

	ctx := context.Background()
	book := &domain.Book{
		Record:   domain.Record{ID: id.MustGenerate("book")},
		Author:   authorID,
		Title:    title,
		IsPublic: isPublic,
		Scraps:   []string{},
		Threads:  []string{},
		Likes:    []string{},
	}
	book.InitTimestamps()
	require.NoError(t, s.Books.Create(ctx, book.ID, book))

	author, err := s.Authors.Get(ctx, authorID)
	require.NoError(t, err)
	author.Books = domain.Push(author.Books, book.ID)
	require.NoError(t, s.Authors.Update(ctx, authorID, author))

	return book
}

func getAuthor(t *testing.T, s *store.Store, id string) *domain.Author {
	t.Helper()
	author, err := s.Authors.Get(context.Background(), id)
	require.NoError(t, err)
	return author
}

func getBook(t *testing.T, s *store.Store, id string) *domain.Book {
	t.Helper()
	book, err := s.Books.Get(context.Background(), id)
	require.NoError(t, err)
	return book
}

func getScrap(t *testing.T, s *store.Store, id string) *domain.Scrap {
	t.Helper()
	scrap, err := s.Scraps.Get(context.Background(), id)
	require.NoError(t, err)
	return scrap
}

// fakePhotoStore keeps photos in memory and returns a deterministic
// blurhash per key.
type fakePhotoStore struct {
	mu      sync.Mutex
	photos  map[string][]byte
	deleted []string
}

func newFakePhotoStore() *fakePhotoStore {
	return &fakePhotoStore{photos: map[string][]byte{}}
}

func (f *fakePhotoStore) Save(_ context.Context, key string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.photos[key] = data
	return "blur-" + key, nil
}

func (f *fakePhotoStore) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.photos[key]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func (f *fakePhotoStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.photos, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakePhotoStore) stored() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.photos)
}

// fakePusher records queued notifications.
type fakePusher struct {
	mu     sync.Mutex
	pushes []pushRecord
}

type pushRecord struct {
	Token string
	Title string
	Body  string
}

func (f *fakePusher) Push(token, title, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, pushRecord{Token: token, Title: title, Body: body})
}

func (f *fakePusher) sent() []pushRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]pushRecord(nil), f.pushes...)
}

// fakeMailer records outbound mail instead of sending it.
type fakeMailer struct {
	mu          sync.Mutex
	activations []mailRecord
	resets      []mailRecord
}

type mailRecord struct {
	Email string
	Token string
}

func (f *fakeMailer) SendActivation(_ context.Context, email, _, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activations = append(f.activations, mailRecord{Email: email, Token: token})
	return nil
}

func (f *fakeMailer) SendPasswordReset(_ context.Context, email, _, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, mailRecord{Email: email, Token: token})
	return nil
}
