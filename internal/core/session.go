package core

import "time"

// Session is an authenticated handle bound to exactly one site. The batch
// executor owns it for the duration of one site's processing and closes it
// before moving on; it is never shared across sites. Admin tokens are
// resource-scoped on the backend, so there is no cross-site reuse to be had.
type Session struct {
	Site     string
	Tenant   string
	Token    string
	Acquired time.Time

	closed bool
}

// Closed reports whether the session has been released.
func (s *Session) Closed() bool {
	return s.closed
}

// Close releases the session. The token is dropped so a stale handle cannot
// be replayed against another site by accident.
func (s *Session) Close() {
	s.closed = true
	s.Token = ""
}
