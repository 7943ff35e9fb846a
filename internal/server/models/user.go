// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is the credential record. Email is the natural unique key, ID the
// stable reference carried in tokens. Records are deactivated, never deleted.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Active       bool
}

// UserSummary is the public projection of a User returned by the API.
type UserSummary struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName *string   `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Identity is the subset of a user the client caches next to its token.
type Identity struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	DisplayName *string `json:"displayName"`
}

// Summary projects the record without its password hash.
func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// Identity projects the record down to what a session needs.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName}
}

// Identity projects a summary down to what a session needs.
func (s *UserSummary) Identity() Identity {
	return Identity{ID: s.ID, Email: s.Email, DisplayName: s.DisplayName}
}
