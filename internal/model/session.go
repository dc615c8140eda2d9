package model

import "time"

type Session struct {
	ID              int64     `json:"id"`
	Identity        Identity  `json:"identity"`
	WorkOSSessionID *string   `json:"workos_session_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	ExpiresAt       time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
