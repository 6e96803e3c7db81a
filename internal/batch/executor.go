package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/verkeep/verkeep/internal/core"
	"github.com/verkeep/verkeep/internal/retry"
	"github.com/verkeep/verkeep/internal/session"
)

// Executor drives one operation across an ordered site list, strictly
// sequentially. One site's failure is recorded and never stops the loop:
// the remaining fleet still gets its configuration. Parallel fan-out is
// deliberately absent — the backend's per-application rate ceiling turns
// uncoordinated concurrent calls into overlapping throttling storms that
// cannot be backed off coherently.
type Executor struct {
	Sessions session.Provider
	Retry    *retry.Caller
	Log      core.Logger
}

func NewExecutor(sessions session.Provider, caller *retry.Caller, log core.Logger) *Executor {
	if log == nil {
		log = core.NoOpLogger{}
	}
	return &Executor{Sessions: sessions, Retry: caller, Log: log}
}

// Run applies op to every site in order and returns the aggregated report.
// The report always carries exactly len(sites) results in input order. An
// empty site list returns ErrEmptyBatch. Cancellation is honored between
// sites and inside retry waits; a cancelled run returns the partial report
// together with the context error, with the untouched sites marked
// cancelled so none is silently skipped.
func (e *Executor) Run(ctx context.Context, sites []string, op core.Operation) (*Report, error) {
	if len(sites) == 0 {
		return nil, ErrEmptyBatch
	}

	report := &Report{
		RunID:   uuid.New().String(),
		Action:  op.Describe(),
		Started: time.Now(),
		Results: make([]OperationResult, 0, len(sites)),
	}

	e.Log.Info(fmt.Sprintf("starting %s across %d sites", op.Describe(), len(sites)),
		"run", report.RunID, "sites", len(sites))

	for i, site := range sites {
		if ctx.Err() != nil {
			report.Results = append(report.Results, OperationResult{
				Site:    site,
				Outcome: OutcomeCancelled,
				Kind:    KindCancelled,
				Message: "run cancelled before this site was reached",
				Err:     ctx.Err(),
			})
			continue
		}

		res := e.runOne(ctx, site, op)
		report.Results = append(report.Results, res)

		switch res.Outcome {
		case OutcomeSuccess:
			e.Log.Info(fmt.Sprintf("[%d/%d] %s: %s", i+1, len(sites), site, res.Message),
				"run", report.RunID, "attempts", res.Attempts)
		default:
			e.Log.Error(fmt.Sprintf("[%d/%d] %s: %v", i+1, len(sites), site, res.Err),
				"run", report.RunID, "kind", string(res.Kind), "attempts", res.Attempts)
		}
	}

	report.Finished = time.Now()
	e.Log.Info(fmt.Sprintf("finished %s: %d ok, %d failed", op.Describe(), report.Succeeded(), report.Failed()),
		"run", report.RunID)

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (e *Executor) runOne(ctx context.Context, site string, op core.Operation) OperationResult {
	s, err := e.Sessions.Acquire(ctx, site)
	if err != nil {
		return OperationResult{
			Site:    site,
			Outcome: OutcomeFailed,
			Kind:    Classify(err),
			Err:     err,
		}
	}
	defer s.Close()

	var result core.Result
	attempts, err := e.Retry.Call(ctx, fmt.Sprintf("%s on %s", op.Describe(), site), func() error {
		r, applyErr := op.Apply(ctx, s)
		if applyErr != nil {
			return applyErr
		}
		result = r
		return nil
	})
	if err != nil {
		outcome := OutcomeFailed
		kind := Classify(err)
		if kind == KindCancelled {
			outcome = OutcomeCancelled
		}
		return OperationResult{
			Site:     site,
			Outcome:  outcome,
			Kind:     kind,
			Err:      err,
			Attempts: attempts,
		}
	}

	return OperationResult{
		Site:     site,
		Outcome:  OutcomeSuccess,
		Message:  result.Message,
		Attempts: attempts,
		Changed:  result.Changed,
		Payload:  result.Payload,
	}
}
