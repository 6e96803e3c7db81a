package batch

import (
	"context"
	"errors"
	"time"

	"github.com/verkeep/verkeep/internal/remote"
	"github.com/verkeep/verkeep/internal/retry"
	"github.com/verkeep/verkeep/internal/session"
)

// ErrEmptyBatch distinguishes "nothing to do" from a report in which every
// site happened to fail: discovery returning zero sites is not a run.
var ErrEmptyBatch = errors.New("no sites to process")

type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
)

// ErrorKind buckets a per-site failure for the final report.
type ErrorKind string

const (
	KindNone      ErrorKind = ""
	KindAuth      ErrorKind = "auth"
	KindExhausted ErrorKind = "retry-exhausted"
	KindFault     ErrorKind = "remote-fault"
	KindCancelled ErrorKind = "cancelled"
	KindOther     ErrorKind = "error"
)

// Classify maps an error onto the report taxonomy.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCancelled
	}
	var authErr *session.AuthError
	if errors.As(err, &authErr) {
		return KindAuth
	}
	if errors.Is(err, retry.ErrExhausted) {
		return KindExhausted
	}
	if remote.IsFault(err) {
		return KindFault
	}
	return KindOther
}

// OperationResult is one site's outcome. Exactly one is recorded per input
// site, in input order.
type OperationResult struct {
	Site     string
	Outcome  Outcome
	Kind     ErrorKind
	Message  string
	Err      error
	Attempts int
	Changed  bool
	Payload  any
}

// Report aggregates a whole run. Results has the same cardinality and order
// as the input site list.
type Report struct {
	RunID    string
	Action   string
	Started  time.Time
	Finished time.Time
	Results  []OperationResult
}

func (r *Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == OutcomeSuccess {
			n++
		}
	}
	return n
}

func (r *Report) Failed() int {
	return len(r.Results) - r.Succeeded()
}
