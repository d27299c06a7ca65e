package domain

import "strings"

// User is a registered account.
type User struct {
	Base
	Name  string `json:"name"`
	Email string `json:"email"`
	// PasswordHash is persisted but must never be rendered in an API response.
	PasswordHash string `json:"passwordHash,omitempty"`
}

// Ref returns the public projection attached to reviews.
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserRef is the public part of a user embedded in other views.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// NormalizeEmail lowercases and trims an email for lookups and uniqueness.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
