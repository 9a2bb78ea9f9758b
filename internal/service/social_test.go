package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/scrapapp/scrap-server/internal/errors"
	"github.com/scrapapp/scrap-server/internal/service"
)

func TestSendFriendRequest_PairedLists(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	social := service.NewSocialService(s, nil, testLogger())
	alice := seedAuthor(t, s, "alice")
	bob := seedAuthor(t, s, "bob")

	require.NoError(t, social.SendFriendRequest(ctx, alice.ID, bob.ID))

	assert.Equal(t, []string{bob.ID}, getAuthor(t, s, alice.ID).OutgoingFriendRequests)
	assert.Equal(t, []string{alice.ID}, getAuthor(t, s, bob.ID).IncomingFriendRequests)
}

func TestSendFriendRequest_ToSelf(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	social := service.NewSocialService(s, nil, testLogger())
	alice := seedAuthor(t, s, "alice")

	err := social.SendFriendRequest(context.Background(), alice.ID, alice.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidState))
}

func TestSendFriendRequest_Duplicate(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	social := service.NewSocialService(s, nil, testLogger())
	alice := seedAuthor(t, s, "alice")
	bob := seedAuthor(t, s, "bob")

	require.NoError(t, social.SendFriendRequest(ctx, alice.ID, bob.ID))

	err := social.SendFriendRequest(ctx, alice.ID, bob.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidState))

	// The repair path must not have accumulated duplicates.
	assert.Equal(t, []string{bob.ID}, getAuthor(t, s, alice.ID).OutgoingFriendRequests)
	assert.Equal(t, []string{alice.ID}, getAuthor(t, s, bob.ID).IncomingFriendRequests)
}

func TestAcceptFriendRequest_MovesPairToFriends(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	social := service.NewSocialService(s, nil, testLogger())
	alice := seedAuthor(t, s, "alice")
	bob := seedAuthor(t, s, "bob")

	require.NoError(t, social.SendFriendRequest(ctx, alice.ID, bob.ID))
	require.NoError(t, social.AcceptFriendRequest(ctx, bob.ID, alice.ID))

	aliceNow := getAuthor(t, s, alice.ID)
	bobNow := getAuthor(t, s, bob.ID)
	assert.Equal(t, []string{bob.ID}, aliceNow.Friends)
	assert.Equal(t, []string{alice.ID}, bobNow.Friends)
	assert.Empty(t, aliceNow.OutgoingFriendRequests)
	assert.Empty(t, bobNow.IncomingFriendRequests)
}

func TestAcceptFriendRequest_WithoutPending(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	social := service.NewSocialService(s, nil, testLogger())
	alice := seedAuthor(t, s, "alice")
	bob := seedAuthor(t, s, "bob")

	err := social.AcceptFriendRequest(context.Background(), bob.ID, alice.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidState))
}

func TestRejectFriendRequest_ClearsPending(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	social := service.NewSocialService(s, nil, testLogger())
	alice := seedAuthor(t, s, "alice")
	bob := seedAuthor(t, s, "bob")

	require.NoError(t, social.SendFriendRequest(ctx, alice.ID, bob.ID))
	require.NoError(t, social.RejectFriendRequest(ctx, bob.ID, alice.ID))

	assert.Empty(t, getAuthor(t, s, alice.ID).OutgoingFriendRequests)
	assert.Empty(t, getAuthor(t, s, bob.ID).IncomingFriendRequests)
	assert.Empty(t, getAuthor(t, s, bob.ID).Friends)
}

func TestRemoveFriend_BothSides(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	social := service.NewSocialService(s, nil, testLogger())
	alice := seedAuthor(t, s, "alice")
	bob := seedAuthor(t, s, "bob")

	require.NoError(t, social.SendFriendRequest(ctx, alice.ID, bob.ID))
	require.NoError(t, social.AcceptFriendRequest(ctx, bob.ID, alice.ID))
	require.NoError(t, social.RemoveFriend(ctx, alice.ID, bob.ID))

	assert.Empty(t, getAuthor(t, s, alice.ID).Friends)
	assert.Empty(t, getAuthor(t, s, bob.ID).Friends)
}

func TestRemoveFriend_NotFriends(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	social := service.NewSocialService(s, nil, testLogger())
	alice := seedAuthor(t, s, "alice")
	bob := seedAuthor(t, s, "bob")

	err := social.RemoveFriend(context.Background(), alice.ID, bob.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidState))
}

func TestLike_PairedAndIdempotentOnRetry(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	social := service.NewSocialService(s, nil, testLogger())
	alice := seedAuthor(t, s, "alice")
	bob := seedAuthor(t, s, "bob")
	book := seedBook(t, s, bob.ID, "Tour", true)

	require.NoError(t, social.Like(ctx, alice.ID, book.ID))
	assert.Equal(t, []string{alice.ID}, getBook(t, s, book.ID).Likes)
	assert.Equal(t, []string{book.ID}, getAuthor(t, s, alice.ID).LikedBooks)

	err := social.Like(ctx, alice.ID, book.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidState))
	assert.Equal(t, []string{alice.ID}, getBook(t, s, book.ID).Likes)
}

func TestUnlike(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	social := service.NewSocialService(s, nil, testLogger())
	alice := seedAuthor(t, s, "alice")
	bob := seedAuthor(t, s, "bob")
	book := seedBook(t, s, bob.ID, "Tour", true)

	require.NoError(t, social.Like(ctx, alice.ID, book.ID))
	require.NoError(t, social.Unlike(ctx, alice.ID, book.ID))

	assert.Empty(t, getBook(t, s, book.ID).Likes)
	assert.Empty(t, getAuthor(t, s, alice.ID).LikedBooks)

	err := social.Unlike(context.Background(), alice.ID, book.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidState))
}

func TestThread_MirroredOnBothSides(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	social := service.NewSocialService(s, nil, testLogger())
	alice := seedAuthor(t, s, "alice")
	bob := seedAuthor(t, s, "bob")
	book := seedBook(t, s, bob.ID, "Tour", true)
	scrap := seedScrap(t, s, alice.ID, 48.85, 2.29, now())

	require.NoError(t, social.Thread(ctx, book.ID, scrap.ID))
	assert.Equal(t, []string{scrap.ID}, getBook(t, s, book.ID).Threads)
	assert.Equal(t, []string{book.ID}, getScrap(t, s, scrap.ID).Threads)

	err := social.Thread(ctx, book.ID, scrap.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidState))
}

func TestThread_RejectsOwnBookMember(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	social := service.NewSocialService(s, nil, testLogger())
	membership := service.NewMembershipService(s, testLogger())
	bob := seedAuthor(t, s, "bob")
	book := seedBook(t, s, bob.ID, "Tour", true)
	scrap := seedScrap(t, s, bob.ID, 48.85, 2.29, now())
	require.NoError(t, membership.AddScrapToBook(ctx, book.ID, scrap.ID))

	err := social.Thread(ctx, book.ID, scrap.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidState))
}

func TestUnthread(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	social := service.NewSocialService(s, nil, testLogger())
	alice := seedAuthor(t, s, "alice")
	bob := seedAuthor(t, s, "bob")
	book := seedBook(t, s, bob.ID, "Tour", true)
	scrap := seedScrap(t, s, alice.ID, 48.85, 2.29, now())

	require.NoError(t, social.Thread(ctx, book.ID, scrap.ID))
	require.NoError(t, social.Unthread(ctx, book.ID, scrap.ID))

	assert.Empty(t, getBook(t, s, book.ID).Threads)
	assert.Empty(t, getScrap(t, s, scrap.ID).Threads)

	err := social.Unthread(ctx, book.ID, scrap.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInvalidState))
}

func TestSocial_UnknownAuthor(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	social := service.NewSocialService(s, nil, testLogger())
	alice := seedAuthor(t, s, "alice")

	err := social.SendFriendRequest(context.Background(), alice.ID, "author:missing")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}
