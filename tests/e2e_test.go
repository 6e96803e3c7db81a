package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verkeep/verkeep/internal/batch"
	"github.com/verkeep/verkeep/internal/ops"
	"github.com/verkeep/verkeep/internal/policy"
	"github.com/verkeep/verkeep/internal/remote"
	"github.com/verkeep/verkeep/internal/retry"
	"github.com/verkeep/verkeep/internal/session"
)

// newRig wires a resolver and an executor against the mock control plane,
// the way the commands wire the real ones.
func newRig(api *remote.Mock) (*policy.Resolver, *batch.Executor) {
	caller := retry.NewCaller(nil, nil)
	caller.BaseDelay = time.Millisecond
	resolver := policy.NewResolver(api, nil, nil)
	exec := batch.NewExecutor(&session.StaticProvider{Token: "tok"}, caller, nil)
	return resolver, exec
}

// The canonical fleet run: resolve once, then apply across the fleet with
// continue-on-error. B fails fatally; A and C still get the policy.
func TestPolicyRolloutContinuesPastFailure(t *testing.T) {
	api := remote.NewMock()
	api.Fail("set-policy https://t.example.com/sites/b", &remote.FaultError{Status: 500, Detail: "storage backend down"})

	resolver, exec := newRig(api)

	resolved, err := resolver.ResolveCustomPolicy(200, 90, policy.ScopeSite)
	require.NoError(t, err)

	sites := []string{
		"https://t.example.com/sites/a",
		"https://t.example.com/sites/b",
		"https://t.example.com/sites/c",
	}
	rep, err := exec.Run(context.Background(), sites, ops.SetPolicy{API: api, Policy: resolved})
	require.NoError(t, err)

	require.Len(t, rep.Results, 3)
	assert.Equal(t, batch.OutcomeSuccess, rep.Results[0].Outcome)
	assert.Equal(t, batch.OutcomeFailed, rep.Results[1].Outcome)
	assert.Equal(t, batch.KindFault, rep.Results[1].Kind)
	assert.Equal(t, batch.OutcomeSuccess, rep.Results[2].Outcome)

	// The two healthy sites really received the resolved policy.
	assert.Equal(t, resolved, api.Policies["https://t.example.com/sites/a"])
	assert.Equal(t, resolved, api.Policies["https://t.example.com/sites/c"])
	_, touched := api.Policies["https://t.example.com/sites/b"]
	assert.False(t, touched)
}

// Throttled sites retry and recover without affecting their neighbors.
func TestPolicyRolloutRecoversFromThrottling(t *testing.T) {
	api := remote.NewMock()
	site := "https://t.example.com/sites/busy"
	api.Fail("set-policy "+site, &remote.RateLimitError{})
	api.Fail("set-policy "+site, &remote.RateLimitError{})

	_, exec := newRig(api)

	rep, err := exec.Run(context.Background(), []string{site}, ops.SetPolicy{API: api, Policy: policy.AutomaticPolicy()})
	require.NoError(t, err)

	assert.Equal(t, batch.OutcomeSuccess, rep.Results[0].Outcome)
	assert.Equal(t, 3, rep.Results[0].Attempts)
}

// A resolver abort means the executor never runs: fail closed.
func TestAmbiguousTenantConfigAbortsBeforeAnySiteIsTouched(t *testing.T) {
	api := remote.NewMock()
	api.Tenant = policy.TenantConfig{MajorVersionLimit: 300, ExpireAfterDays: 180}

	resolver, _ := newRig(api)

	_, err := resolver.ResolveDeleteSpec(context.Background(), policy.SourceTenant)
	require.ErrorIs(t, err, policy.ErrAmbiguousSource)

	assert.Empty(t, api.CallsFor("create-delete-job"), "no purge job may be submitted after a resolver abort")
}

// Purge flow end to end: resolve from tenant, submit, then project statuses.
func TestPurgeSubmitAndStatus(t *testing.T) {
	api := remote.NewMock()
	api.Tenant = policy.TenantConfig{ExpireAfterDays: 365}

	resolver, exec := newRig(api)

	spec, err := resolver.ResolveDeleteSpec(context.Background(), policy.SourceTenant)
	require.NoError(t, err)
	assert.Equal(t, policy.DeleteByAge(365), spec)

	sites := []string{"https://t.example.com/sites/a", "https://t.example.com/sites/b"}
	rep, err := exec.Run(context.Background(), sites, ops.CreateDeleteJob{API: api, Spec: spec})
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Succeeded())
	require.Len(t, api.CreatedJobs, 2)

	done := time.Now().UTC()
	api.JobStatuses[sites[0]] = remote.JobStatusPayload{ID: api.CreatedJobs[0].ID, State: "Completed", CompletedAt: &done, BytesReleased: 1 << 30}
	api.JobStatuses[sites[1]] = remote.JobStatusPayload{ID: api.CreatedJobs[1].ID, State: "Queued"}

	statusRep, err := exec.Run(context.Background(), sites, ops.DeleteJobStatus{API: api})
	require.NoError(t, err)
	assert.Contains(t, statusRep.Results[0].Message, "released 1.1 GB")
	assert.Equal(t, "queued", statusRep.Results[1].Message)
}
