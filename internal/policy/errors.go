package policy

import "errors"

// Resolver-time failures. Any of these aborts the whole configuration action
// before the first site is touched: a partially specified fleet-wide change
// must never reach the executor.
var (
	// ErrInvalidBound marks a value under the backend's minimum.
	ErrInvalidBound = errors.New("value under minimum bound")

	// ErrAmbiguousSource marks a tenant configuration that carries both a
	// version-count limit and an expiration-day limit with no explicit
	// choice between them.
	ErrAmbiguousSource = errors.New("ambiguous settings source")

	// ErrMissingSource marks an interactive entry the user abandoned.
	ErrMissingSource = errors.New("settings entry abandoned")
)
