package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionType_Audience(t *testing.T) {
	tests := []struct {
		actionType ActionType
		expected   Audience
	}{
		{ActionSendRequest, AudienceTarget},
		{ActionAcceptRequest, AudienceTarget},
		{ActionLikeBook, AudienceTarget},
		{ActionPostBook, AudienceAcquaintances},
		{ActionUpdateAutobiography, AudienceFriends},
	}

	for _, tt := range tests {
		t.Run(string(tt.actionType), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.actionType.Audience())
		})
	}
}

func TestTruncateBody(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"short text unchanged", "short", "short"},
		{"exactly at limit", strings.Repeat("x", 30), strings.Repeat("x", 30)},
		{"long text truncated", strings.Repeat("x", 31), strings.Repeat("x", 30) + ". . ."},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateBody(tt.input))
		})
	}
}

func TestActionType_NotificationText(t *testing.T) {
	title, body := ActionLikeBook.NotificationText("Marco Polo", "Silk Road")
	assert.Equal(t, "New like", title)
	assert.Equal(t, "Marco Polo liked Silk Road", body)

	title, body = ActionSendRequest.NotificationText("Marco Polo", "")
	assert.Equal(t, "New friend request", title)
	assert.Equal(t, "Marco Polo sent you a friend request", body)

	longBio := strings.Repeat("a", 50)
	title, body = ActionUpdateAutobiography.NotificationText("Marco Polo", longBio)
	assert.Equal(t, "Marco Polo", title)
	assert.Equal(t, longBio[:30]+". . .", body)
}

func TestAction_References(t *testing.T) {
	action := &Action{
		Type:   ActionLikeBook,
		Sender: Ref{Author: "author-1"},
		Target: Ref{Author: "author-2", Book: "book-1"},
	}

	assert.True(t, action.References(KindAuthor, "author-1"))
	assert.True(t, action.References(KindAuthor, "author-2"))
	assert.True(t, action.References(KindBook, "book-1"))
	assert.False(t, action.References(KindBook, "book-2"))
	assert.False(t, action.References(KindScrap, "scrap-1"))
}

func TestKind_Valid(t *testing.T) {
	assert.True(t, KindAuthor.Valid())
	assert.True(t, KindBook.Valid())
	assert.True(t, KindScrap.Valid())
	assert.True(t, KindAction.Valid())
	assert.False(t, Kind("library").Valid())
	assert.False(t, Kind("").Valid())
}
