package domain

// Author is an account holder. All social state is denormalized onto the
// author document as id lists so profile reads never need joins; the
// services are responsible for keeping the paired lists symmetric.
type Author struct {
	Record
	Pseudonym     string `json:"pseudonym"`
	Email         string `json:"email"`
	PasswordHash  string `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	Activated     bool   `json:"activated"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	Autobiography string `json:"autobiography,omitempty"`

	// HeadshotAndCover points at the scrap whose photos serve as profile
	// headshot and cover image.
	HeadshotAndCover string `json:"headshot_and_cover,omitempty"`

	// PushToken is the device token for push notifications, if the author
	// has registered one.
	PushToken string `json:"push_token,omitempty"`

	// Friends, IncomingFriendRequests, and OutgoingFriendRequests are
	// mutually disjoint. A pair of authors appears in each other's lists
	// symmetrically: my outgoing is their incoming, my friend is their friend.
	Friends                []string `json:"friends"`
	IncomingFriendRequests []string `json:"incoming_friend_requests"`
	OutgoingFriendRequests []string `json:"outgoing_friend_requests"`

	// Scraps is ordered by scrap creation time, ascending.
	Scraps []string `json:"scraps"`
	// Books is ordered by book begin date, descending (newest trip first).
	Books []string `json:"books"`
	// LikedBooks mirrors Book.Likes.
	LikedBooks []string `json:"liked_books"`
	// Actions is the author's notification feed, append-ordered.
	Actions []string `json:"actions"`

	// Miles is derived from the author's scrap sequence. Stored, never
	// computed on read.
	Miles float64 `json:"miles"`
}

// DisplayName returns the name shown in notifications and search results:
// first and last name when available, otherwise the pseudonym.
func (a *Author) DisplayName() string {
	switch {
	case a.FirstName != "" && a.LastName != "":
		return a.FirstName + " " + a.LastName
	case a.FirstName != "":
		return a.FirstName
	case a.LastName != "":
		return a.LastName
	default:
		return a.Pseudonym
	}
}

// Acquaintances returns the union of friends and both pending request
// directions. This is the postBook notification audience.
func (a *Author) Acquaintances() []string {
	seen := make(map[string]bool, len(a.Friends)+len(a.IncomingFriendRequests)+len(a.OutgoingFriendRequests))
	out := make([]string, 0, len(seen))
	for _, group := range [][]string{a.Friends, a.IncomingFriendRequests, a.OutgoingFriendRequests} {
		for _, id := range group {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// IsFriend reports whether the given author id is in the friends list.
func (a *Author) IsFriend(authorID string) bool {
	return Contains(a.Friends, authorID)
}
