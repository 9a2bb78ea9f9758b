package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrapapp/scrap-server/internal/domain"
	domainerrors "github.com/scrapapp/scrap-server/internal/errors"
	"github.com/scrapapp/scrap-server/internal/service"
)

func TestRelationship(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	query := service.NewQueryService(s, testLogger())
	social := service.NewSocialService(s, nil, testLogger())

	alice := seedAuthor(t, s, "alice")
	bob := seedAuthor(t, s, "bob")
	carol := seedAuthor(t, s, "carol")
	dave := seedAuthor(t, s, "dave")

	require.NoError(t, social.SendFriendRequest(ctx, alice.ID, bob.ID))
	require.NoError(t, social.AcceptFriendRequest(ctx, bob.ID, alice.ID))
	require.NoError(t, social.SendFriendRequest(ctx, alice.ID, carol.ID))
	require.NoError(t, social.SendFriendRequest(ctx, dave.ID, alice.ID))

	cases := map[string]domain.Relationship{
		alice.ID: domain.RelationshipSelf,
		bob.ID:   domain.RelationshipFriend,
		carol.ID: domain.RelationshipOutgoing,
		dave.ID:  domain.RelationshipIncoming,
	}
	for otherID, want := range cases {
		got, err := query.Relationship(ctx, alice.ID, otherID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	got, err := query.Relationship(ctx, alice.ID, "author:stranger")
	require.NoError(t, err)
	assert.Equal(t, domain.RelationshipNone, got)
}

func TestProfileBooks_VisibilityMatrix(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	query := service.NewQueryService(s, testLogger())
	social := service.NewSocialService(s, nil, testLogger())

	owner := seedAuthor(t, s, "owner")
	friend := seedAuthor(t, s, "friend")
	stranger := seedAuthor(t, s, "stranger")
	require.NoError(t, social.SendFriendRequest(ctx, owner.ID, friend.ID))
	require.NoError(t, social.AcceptFriendRequest(ctx, friend.ID, owner.ID))

	public := seedBook(t, s, owner.ID, "Public trip", true)
	private := seedBook(t, s, owner.ID, "Private trip", false)

	self, err := query.ProfileBooks(ctx, owner.ID, owner.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{public.ID, private.ID}, self)

	asFriend, err := query.ProfileBooks(ctx, friend.ID, owner.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{public.ID, private.ID}, asFriend)

	asStranger, err := query.ProfileBooks(ctx, stranger.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{public.ID}, asStranger)
}

func TestPublicBooks(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	query := service.NewQueryService(s, testLogger())
	owner := seedAuthor(t, s, "owner")
	public := seedBook(t, s, owner.ID, "Public trip", true)
	seedBook(t, s, owner.ID, "Private trip", false)

	got, err := query.PublicBooks(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{public.ID}, got)
}

func TestFeed_SelfAndFriendsNewestFirst(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	query := service.NewQueryService(s, testLogger())
	social := service.NewSocialService(s, nil, testLogger())
	membership := service.NewMembershipService(s, testLogger())

	alice := seedAuthor(t, s, "alice")
	bob := seedAuthor(t, s, "bob")
	carol := seedAuthor(t, s, "carol")
	require.NoError(t, social.SendFriendRequest(ctx, alice.ID, bob.ID))
	require.NoError(t, social.AcceptFriendRequest(ctx, bob.ID, alice.ID))

	mine := seedBook(t, s, alice.ID, "Mine", true)
	friends := seedBook(t, s, bob.ID, "Friend's", true)
	seedBook(t, s, carol.ID, "Not in feed", true)

	base := now()
	older := seedScrap(t, s, alice.ID, paris.Latitude, paris.Longitude, base.Add(-24*time.Hour))
	newer := seedScrap(t, s, bob.ID, rome.Latitude, rome.Longitude, base)
	require.NoError(t, membership.AddScrapToBook(ctx, mine.ID, older.ID))
	require.NoError(t, membership.AddScrapToBook(ctx, friends.ID, newer.ID))

	got, err := query.Feed(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{friends.ID, mine.ID}, got)
}

func TestUnbookedScraps(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	query := service.NewQueryService(s, testLogger())
	membership := service.NewMembershipService(s, testLogger())

	alice := seedAuthor(t, s, "alice")
	book := seedBook(t, s, alice.ID, "Tour", true)

	booked := seedScrap(t, s, alice.ID, paris.Latitude, paris.Longitude, now())
	loose := seedScrap(t, s, alice.ID, rome.Latitude, rome.Longitude, now().Add(time.Hour))
	require.NoError(t, membership.AddScrapToAuthor(ctx, alice.ID, booked.ID))
	require.NoError(t, membership.AddScrapToAuthor(ctx, alice.ID, loose.ID))
	require.NoError(t, membership.AddScrapToBook(ctx, book.ID, booked.ID))

	got, err := query.UnbookedScraps(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{loose.ID}, got)
}

func TestScrapCoordinates_SkipsUnresolvable(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	query := service.NewQueryService(s, testLogger())
	alice := seedAuthor(t, s, "alice")
	scrap := seedScrap(t, s, alice.ID, paris.Latitude, paris.Longitude, now())

	got, err := query.ScrapCoordinates(ctx, []string{scrap.ID, "scrap:missing"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, paris.Latitude, got[0].Latitude, 0.0001)
	assert.InDelta(t, paris.Longitude, got[0].Longitude, 0.0001)
}

func TestBookCoordinates_UsesRepresentative(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	query := service.NewQueryService(s, testLogger())
	alice := seedAuthor(t, s, "alice")

	scrap := seedScrap(t, s, alice.ID, rome.Latitude, rome.Longitude, now())
	withRep := seedBook(t, s, alice.ID, "Has cover", true)
	withRep.Representative = scrap.ID
	require.NoError(t, s.Books.Update(ctx, withRep.ID, withRep))
	noRep := seedBook(t, s, alice.ID, "No cover", true)

	got, err := query.BookCoordinates(ctx, []string{withRep.ID, noRep.ID, "book:missing"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, rome.Latitude, got[0].Latitude, 0.0001)
}

func TestQuery_UnknownAuthor(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	query := service.NewQueryService(s, testLogger())
	_, err := query.Feed(context.Background(), "author:missing")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}
