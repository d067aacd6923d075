package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Field limits for User.
const (
	MaxUserIDLength      = 64
	MaxEmailLength       = 255
	MaxDisplayNameLength = 100

	// FallbackDisplayName is used when the identity provider supplies neither a name nor an email.
	FallbackDisplayName = "User"
)

// User is an account known to this service. Its ID is the subject claim of the
// identity provider's tokens; users are provisioned on first successful authentication.
type User struct {
	ID          string
	Email       string
	DisplayName string
	CreatedAt   time.Time
}

// NewUser creates a validated User. An over-long display name is truncated rather than rejected
// since it comes from the identity provider, not from the caller.
func NewUser(id, email, displayName string, now time.Time) (*User, error) {
	if utf8.RuneCountInString(displayName) > MaxDisplayNameLength {
		displayName = string([]rune(displayName)[:MaxDisplayNameLength])
	}
	u := &User{
		ID:          id,
		Email:       strings.TrimSpace(email),
		DisplayName: displayName,
		CreatedAt:   now.UTC(),
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == "" {
		return NewValidationError("id", "must not be empty", nil)
	}
	if len(u.ID) > MaxUserIDLength {
		return NewValidationError("id", "must be at most 64 characters", nil)
	}
	if len(u.Email) > MaxEmailLength {
		return NewValidationError("email", "must be at most 255 characters", nil)
	}
	if u.DisplayName == "" {
		return NewValidationError("display_name", "must not be empty", nil)
	}
	return nil
}

// DeriveDisplayName picks a display name from identity claims: the name if present,
// else the part of the email before the first "@" (the whole email when it has
// none), else FallbackDisplayName.
func DeriveDisplayName(name, email string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	if local, _, _ := strings.Cut(strings.TrimSpace(email), "@"); local != "" {
		return local
	}
	return FallbackDisplayName
}
