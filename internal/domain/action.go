package domain

import "fmt"

// ActionType names a social event that produces an action record and a
// push notification.
type ActionType string

const (
	ActionSendRequest         ActionType = "sendRequest"
	ActionAcceptRequest       ActionType = "acceptRequest"
	ActionLikeBook            ActionType = "likeBook"
	ActionPostBook            ActionType = "postBook"
	ActionUpdateAutobiography ActionType = "updateAutobiography"
)

// Valid reports whether t names a known action type.
func (t ActionType) Valid() bool {
	switch t {
	case ActionSendRequest, ActionAcceptRequest, ActionLikeBook,
		ActionPostBook, ActionUpdateAutobiography:
		return true
	}
	return false
}

// Audience identifies who receives an action in their feed.
type Audience int

const (
	// AudienceTarget delivers to the single target author.
	AudienceTarget Audience = iota
	// AudienceAcquaintances delivers to friends plus both pending
	// request directions.
	AudienceAcquaintances
	// AudienceFriends delivers to confirmed friends only.
	AudienceFriends
)

// Audience returns the delivery audience for this action type.
func (t ActionType) Audience() Audience {
	switch t {
	case ActionPostBook:
		return AudienceAcquaintances
	case ActionUpdateAutobiography:
		return AudienceFriends
	default:
		return AudienceTarget
	}
}

// Ref points at the entities an action concerns. Fields are sparse;
// which ones are set depends on the action type.
type Ref struct {
	Author string `json:"author,omitempty"`
	Book   string `json:"book,omitempty"`
	Scrap  string `json:"scrap,omitempty"`
}

// Action records a social event. The persisted record is authoritative;
// push delivery is best-effort on top of it.
type Action struct {
	Record
	Type   ActionType `json:"type"`
	Sender Ref        `json:"sender"`
	Target Ref        `json:"target,omitempty"`
}

// References reports whether the action mentions the entity on either
// its sender or target side. Used when cascading deletions.
func (a *Action) References(kind Kind, id string) bool {
	for _, ref := range []Ref{a.Sender, a.Target} {
		switch kind {
		case KindAuthor:
			if ref.Author == id {
				return true
			}
		case KindBook:
			if ref.Book == id {
				return true
			}
		case KindScrap:
			if ref.Scrap == id {
				return true
			}
		}
	}
	return false
}

// notificationBodyLimit is where notification body text gets cut off.
const notificationBodyLimit = 30

// TruncateBody shortens free text for a notification body.
func TruncateBody(s string) string {
	if len(s) <= notificationBodyLimit {
		return s
	}
	return s[:notificationBodyLimit] + ". . ."
}

// NotificationText renders the push title and body for an action.
// senderName is the sender's display name; subject is the liked or
// posted book's title, or the new autobiography text.
func (t ActionType) NotificationText(senderName, subject string) (title, body string) {
	switch t {
	case ActionSendRequest:
		return "New friend request", fmt.Sprintf("%s sent you a friend request", senderName)
	case ActionAcceptRequest:
		return "Request accepted", fmt.Sprintf("%s accepted your friend request", senderName)
	case ActionLikeBook:
		return "New like", fmt.Sprintf("%s liked %s", senderName, TruncateBody(subject))
	case ActionPostBook:
		return "New book", fmt.Sprintf("%s posted %s", senderName, TruncateBody(subject))
	case ActionUpdateAutobiography:
		return senderName, TruncateBody(subject)
	default:
		return "", ""
	}
}
