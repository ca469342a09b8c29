package model

import "time"

// User is an authenticated account. PasswordHash is never serialized.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	CompanyName  string     `json:"company_name"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	IsActive     bool       `json:"is_active"`
}

// Session is a server-side login session resolved from a cookie token.
type Session struct {
	Token     string    `json:"-"`
	UserID    int64     `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
