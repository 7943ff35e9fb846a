// Package models defines client-side data models.
package models

// Identity is the user profile cached next to the session token so it can be
// shown before the token is re-validated.
type Identity struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	DisplayName *string `json:"displayName"`
}

// Name returns the display name, falling back to the email.
func (i Identity) Name() string {
	if i.DisplayName != nil && *i.DisplayName != "" {
		return *i.DisplayName
	}
	return i.Email
}

// Profile is the full public view of the account returned by /users/me.
type Profile struct {
	Identity
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}
