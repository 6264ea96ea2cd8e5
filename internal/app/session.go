package app

import "github.com/google/uuid"

// Session is the per-browser state the rate limiter and identity resolver
// work on. The HTTP layer loads it from the session cookie before a request
// and saves it afterwards.
type Session struct {
	UserID            uuid.UUID
	RequestsRemaining int
}

// Clear forgets the identity and quota, as on logout.
func (s *Session) Clear() {
	s.UserID = uuid.Nil
	s.RequestsRemaining = 0
}
