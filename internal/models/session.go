package models

import "time"

// Session is the process-wide identity: who is signed in and with which token.
type Session struct {
	Token     string    `json:"token"`
	User      *User     `json:"user,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsAuthenticated reports whether the session carries both a token and a user.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.Token != "" && s.User != nil
}
