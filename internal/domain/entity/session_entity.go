package entity

import "time"

// Session is the server-side record bound to a session cookie.
type Session struct {
	UserID    string    `json:"userId"`
	Role      Role      `json:"role"`
	Name      string    `json:"name"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its fixed expiry.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
