package domain

import "time"

// Session is a server-side session bound to an authenticated principal.
// Sessions are persisted and survive process restarts.
type Session struct {
	ID        string // Opaque session identifier
	UserID    int64
	Username  string
	Role      string
	CreatedAt int64 // Unix timestamp
	ExpiresAt int64 // Unix timestamp
}

// Principal returns the authenticated identity the session represents.
func (s *Session) Principal() Principal {
	return Principal{
		ID:       s.UserID,
		Username: s.Username,
		Role:     s.Role,
	}
}

// Expired reports whether the session has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt <= now.Unix()
}
