package auth

import (
	"time"

	"github.com/yadgarautos/jobfiles/internal/types"
)

// Session is what a successful sign in hands back to the client
type Session struct {
	UserID    string             `json:"user_id"`
	Email     string             `json:"email"`
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	Provider  types.AuthProvider `json:"provider"`
}

// Claims are read back from a validated token
type Claims struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// SessionChange is published on every sign in and sign out
type SessionChange struct {
	Event  types.SessionEvent `json:"event"`
	UserID string             `json:"user_id"`
	Email  string             `json:"email,omitempty"`
	At     time.Time          `json:"at"`
}
