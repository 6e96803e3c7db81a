// Package ops holds the concrete operations the batch executor can drive.
// Every remote action is its own type with a single Apply contract, so the
// executor, the retry layer and the tests treat them uniformly.
package ops

import (
	"context"
	"fmt"

	"github.com/verkeep/verkeep/internal/core"
	"github.com/verkeep/verkeep/internal/job"
	"github.com/verkeep/verkeep/internal/policy"
	"github.com/verkeep/verkeep/internal/remote"
)

// GetPolicy reads a site's current version policy.
type GetPolicy struct {
	API remote.API
}

func (o GetPolicy) Apply(ctx context.Context, s *core.Session) (core.Result, error) {
	p, err := o.API.GetPolicy(ctx, s)
	if err != nil {
		return core.Result{}, err
	}
	r := core.SuccessNoChange(p.String())
	r.Payload = p
	return r, nil
}

func (o GetPolicy) Describe() string { return "get version policy" }

// SetPolicy applies one resolved version policy to a site. The policy is
// captured by value at construction and never mutated afterwards, so every
// site in a batch sees the identical configuration. Re-applying the same
// policy is safe and repeatable.
type SetPolicy struct {
	API    remote.API
	Policy policy.VersionPolicy
}

func (o SetPolicy) Apply(ctx context.Context, s *core.Session) (core.Result, error) {
	if err := o.API.SetPolicy(ctx, s, o.Policy); err != nil {
		return core.Result{}, err
	}
	return core.SuccessChange(fmt.Sprintf("applied: %s", o.Policy)), nil
}

func (o SetPolicy) Describe() string { return "set version policy" }

// PolicyStatus reads how far the backend has gotten applying a submitted
// policy to a site's libraries.
type PolicyStatus struct {
	API remote.API
}

func (o PolicyStatus) Apply(ctx context.Context, s *core.Session) (core.Result, error) {
	st, err := o.API.GetPolicyStatus(ctx, s)
	if err != nil {
		return core.Result{}, err
	}
	r := core.SuccessNoChange(st.State)
	r.Payload = st
	return r, nil
}

func (o PolicyStatus) Describe() string { return "get policy status" }

// CreateDeleteJob submits one purge job per site. Submission is NOT
// idempotent — every call creates a new job and purged versions cannot be
// recovered — so nothing above the retry layer's rate-limit handling may
// re-run it. A throttled request never executed and is safe to resend.
type CreateDeleteJob struct {
	API  remote.API
	Spec policy.DeleteSpec
}

func (o CreateDeleteJob) Apply(ctx context.Context, s *core.Session) (core.Result, error) {
	ref, err := o.API.CreateDeleteJob(ctx, s, o.Spec)
	if err != nil {
		return core.Result{}, err
	}
	r := core.SuccessChange(fmt.Sprintf("submitted purge job %s", ref.ID))
	r.Payload = ref
	return r, nil
}

func (o CreateDeleteJob) Describe() string { return "create purge job" }

// DeleteJobStatus polls a site's most recent purge job and projects its
// lifecycle.
type DeleteJobStatus struct {
	API remote.API
}

func (o DeleteJobStatus) Apply(ctx context.Context, s *core.Session) (core.Result, error) {
	payload, err := o.API.GetDeleteJobStatus(ctx, s)
	if err != nil {
		return core.Result{}, err
	}
	st := job.Project(payload)
	r := core.SuccessNoChange(st.String())
	r.Payload = st
	return r, nil
}

func (o DeleteJobStatus) Describe() string { return "get purge job status" }
