package domain

import "time"

// ConfirmationToken activates an account or confirms an email change.
// It lives until used or until its author is deleted.
type ConfirmationToken struct {
	Record
	Author string `json:"author"`
}

// PasswordToken authorizes a password reset for the given email.
// At most one unexpired token exists per email.
type PasswordToken struct {
	Record
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the token is past its expiry.
func (t *PasswordToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
