package domain

// Relationship describes how one author stands to another, from the
// perspective of the first.
type Relationship string

const (
	RelationshipSelf     Relationship = "self"
	RelationshipFriend   Relationship = "friend"
	RelationshipIncoming Relationship = "incomingFriendRequest"
	RelationshipOutgoing Relationship = "outgoingFriendRequest"
	RelationshipNone     Relationship = "none"
)

// RelationshipWith classifies the other author relative to a.
// The pair lists are disjoint by invariant, so the first match wins.
func (a *Author) RelationshipWith(otherID string) Relationship {
	switch {
	case a.ID == otherID:
		return RelationshipSelf
	case Contains(a.Friends, otherID):
		return RelationshipFriend
	case Contains(a.IncomingFriendRequests, otherID):
		return RelationshipIncoming
	case Contains(a.OutgoingFriendRequests, otherID):
		return RelationshipOutgoing
	default:
		return RelationshipNone
	}
}
