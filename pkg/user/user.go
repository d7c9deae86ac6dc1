package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is the authenticated identity supplied by the session provider.
type User struct {
	Id          uuid.UUID
	Email       string
	DisplayName string
}

// Profile is the locally stored record for a user.
type Profile struct {
	Id        uuid.UUID
	Email     string
	FullName  string
	CreatedAt time.Time
}

// DisplayNameOrEmail returns the profile's full name, falling back to the email.
func (p Profile) DisplayNameOrEmail() string {
	if strings.TrimSpace(p.FullName) != "" {
		return p.FullName
	}
	return p.Email
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
