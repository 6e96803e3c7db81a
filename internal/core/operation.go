package core

import "context"

// Operation is a single remote action applied to one site through an
// authenticated session. Each concrete action (read a policy, write a
// policy, submit a purge job, poll a job) is its own implementation rather
// than a captured closure, so the executor and the tests can treat them
// uniformly.
type Operation interface {
	// Apply performs the action against the session's site. The returned
	// Result carries the human-readable outcome; err carries the failure.
	Apply(ctx context.Context, s *Session) (Result, error)

	// Describe names the action for logs and reports ("set version policy").
	Describe() string
}

// Result is what an Operation hands back on success.
type Result struct {
	// Changed: did the call mutate anything remotely?
	Changed bool

	// Message: human readable outcome for the report.
	Message string

	// Payload: optional operation-specific value (a fetched policy, a job
	// reference) for commands that render more than the message.
	Payload any
}

// SuccessChange returns a result for a call that mutated remote state.
func SuccessChange(msg string) Result {
	return Result{Changed: true, Message: msg}
}

// SuccessNoChange returns a result for a read or a no-op write.
func SuccessNoChange(msg string) Result {
	return Result{Changed: false, Message: msg}
}
