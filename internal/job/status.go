package job

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/verkeep/verkeep/internal/remote"
)

// State is the canonical lifecycle of a purge job:
// Queued → Processing → {Completed, Failed}. Transitions happen entirely on
// the backend; this package only projects what the status payload says.
type State string

const (
	StateQueued     State = "queued"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
	StateUnknown    State = "unknown"
)

// Status is a read-only projection of a purge job's remote lifecycle.
type Status struct {
	JobID         string
	State         State
	CompletedAt   time.Time // zero until the job reaches a terminal state
	BytesReleased uint64
}

// Project maps a raw status payload into the canonical state. Backends have
// renamed their states over API revisions, so parsing is tolerant; anything
// unrecognized maps to StateUnknown rather than a guess.
func Project(p remote.JobStatusPayload) Status {
	s := Status{
		JobID:         p.ID,
		State:         parseState(p.State),
		BytesReleased: p.BytesReleased,
	}
	if p.CompletedAt != nil {
		s.CompletedAt = *p.CompletedAt
	}
	return s
}

func parseState(raw string) State {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "queued", "new", "pending":
		return StateQueued
	case "processing", "inprogress", "in_progress", "running":
		return StateProcessing
	case "completed", "complete", "succeeded":
		return StateCompleted
	case "failed", "error":
		return StateFailed
	}
	return StateUnknown
}

// Terminal reports whether the job has finished, either way.
func (s Status) Terminal() bool {
	return s.State == StateCompleted || s.State == StateFailed
}

// ReleasedHuman renders the freed storage for display.
func (s Status) ReleasedHuman() string {
	return humanize.Bytes(s.BytesReleased)
}

func (s Status) String() string {
	switch s.State {
	case StateCompleted:
		return fmt.Sprintf("completed at %s, released %s", s.CompletedAt.Format(time.RFC3339), s.ReleasedHuman())
	case StateFailed:
		return "failed"
	case StateProcessing:
		return "processing"
	case StateQueued:
		return "queued"
	}
	return "unknown"
}
