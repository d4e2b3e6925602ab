package models

import "time"

// SessionUser is the authenticated identity as issued by the hosted auth
// service, together with the session tokens needed to act on its behalf.
// The locally cached copy is a best-effort mirror: a SessionUser whose access
// token is missing or expired must be treated as absent.
type SessionUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Valid reports whether the session carries a usable access token.
// A zero ExpiresAt means the expiry is only encoded inside the token itself;
// callers should fall back to inspecting the JWT exp claim in that case.
func (u *SessionUser) Valid(now time.Time) bool {
	if u == nil || u.AccessToken == "" {
		return false
	}
	if u.ExpiresAt.IsZero() {
		return true
	}
	return now.Before(u.ExpiresAt)
}

// Profile is the application-level user record, one per SessionUser,
// keyed by the same ID. Canonically owned by the hosted service.
type Profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Bio       string `json:"bio,omitempty"`
}

// ProfilePatch is a partial profile update. Nil fields are left untouched.
type ProfilePatch struct {
	Username  *string `json:"username,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Bio       *string `json:"bio,omitempty"`
}

// Apply returns a copy of p with the patch fields applied.
func (patch ProfilePatch) Apply(p Profile) Profile {
	if patch.Username != nil {
		p.Username = *patch.Username
	}
	if patch.FirstName != nil {
		p.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		p.LastName = *patch.LastName
	}
	if patch.Bio != nil {
		p.Bio = *patch.Bio
	}
	return p
}

// PendingRegistration records a registration whose identity step succeeded
// but whose profile step did not. It is persisted locally so a later attempt
// can detect the half-finished state and resume instead of guessing.
type PendingRegistration struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
