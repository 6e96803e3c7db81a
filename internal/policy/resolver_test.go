package policy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verkeep/verkeep/internal/policy"
	"github.com/verkeep/verkeep/internal/remote"
)

// scriptPrompt replays canned answers. A nil entry list means the user
// walked away from that question.
type scriptPrompt struct {
	selects []string
	ints    []int
}

func (p *scriptPrompt) Select(label string, options []string) (string, error) {
	if len(p.selects) == 0 {
		return "", errors.New("prompt abandoned")
	}
	pick := p.selects[0]
	p.selects = p.selects[1:]
	return pick, nil
}

func (p *scriptPrompt) Int(label string, def int) (int, error) {
	if len(p.ints) == 0 {
		return 0, errors.New("prompt abandoned")
	}
	v := p.ints[0]
	p.ints = p.ints[1:]
	return v, nil
}

func TestResolvePolicyAutomatic(t *testing.T) {
	r := policy.NewResolver(remote.NewMock(), nil, nil)

	p, err := r.ResolvePolicy(context.Background(), policy.SourceAutomatic, policy.ScopeSite)
	require.NoError(t, err)
	assert.True(t, p.Automatic)
}

func TestResolvePolicyFromTenantReadsConfigOnce(t *testing.T) {
	api := remote.NewMock()
	api.Tenant = policy.TenantConfig{MajorVersionLimit: 400, ExpireAfterDays: 120}
	r := policy.NewResolver(api, nil, nil)

	p, err := r.ResolvePolicy(context.Background(), policy.SourceTenant, policy.ScopeSite)
	require.NoError(t, err)
	assert.Equal(t, policy.ManualPolicy(400, 120), p)
	assert.Equal(t, 1, api.TenantReads, "tenant configuration is read exactly once and frozen")
}

func TestResolvePolicyFromTenantAutoTrim(t *testing.T) {
	api := remote.NewMock()
	api.Tenant = policy.TenantConfig{AutoTrim: true}
	r := policy.NewResolver(api, nil, nil)

	p, err := r.ResolvePolicy(context.Background(), policy.SourceTenant, policy.ScopeSite)
	require.NoError(t, err)
	assert.True(t, p.Automatic)
}

func TestResolveCustomPolicyClampsForTenantScope(t *testing.T) {
	r := policy.NewResolver(remote.NewMock(), nil, nil)

	p, err := r.ResolveCustomPolicy(150, 10, policy.ScopeTenant)
	require.NoError(t, err)
	assert.Equal(t, 30, p.ExpireAfterDays, "tenant entry is clamped, never rejected")
}

func TestResolveCustomPolicyRejectsShortSiteExpiration(t *testing.T) {
	r := policy.NewResolver(remote.NewMock(), nil, nil)

	_, err := r.ResolveCustomPolicy(150, 29, policy.ScopeSite)
	assert.ErrorIs(t, err, policy.ErrInvalidBound)

	p, err := r.ResolveCustomPolicy(150, 30, policy.ScopeSite)
	require.NoError(t, err)
	assert.Equal(t, 30, p.ExpireAfterDays)
}

func TestPromptedPolicyRepromptsOnInvalidBound(t *testing.T) {
	// 99 is under the version-limit minimum, 29 under the expiration floor;
	// both are re-asked rather than coerced.
	prompt := &scriptPrompt{
		selects: []string{"manual"},
		ints:    []int{99, 150, 29, 90},
	}
	r := policy.NewResolver(remote.NewMock(), prompt, nil)

	p, err := r.ResolvePolicy(context.Background(), policy.SourceCustom, policy.ScopeSite)
	require.NoError(t, err)
	assert.Equal(t, policy.ManualPolicy(150, 90), p)
	assert.Empty(t, prompt.ints, "every scripted answer was consumed")
}

func TestPromptedPolicyAbandonedIsMissingSource(t *testing.T) {
	prompt := &scriptPrompt{selects: []string{"manual"}} // no ints: user walks away
	r := policy.NewResolver(remote.NewMock(), prompt, nil)

	_, err := r.ResolvePolicy(context.Background(), policy.SourceCustom, policy.ScopeSite)
	assert.ErrorIs(t, err, policy.ErrMissingSource)
}

func TestCustomPolicyWithoutTerminalIsMissingSource(t *testing.T) {
	r := policy.NewResolver(remote.NewMock(), nil, nil)

	_, err := r.ResolvePolicy(context.Background(), policy.SourceCustom, policy.ScopeSite)
	assert.ErrorIs(t, err, policy.ErrMissingSource)
}

func TestDeleteSpecFromTenantSingleThreshold(t *testing.T) {
	api := remote.NewMock()
	api.Tenant = policy.TenantConfig{ExpireAfterDays: 180}
	r := policy.NewResolver(api, nil, nil)

	spec, err := r.ResolveDeleteSpec(context.Background(), policy.SourceTenant)
	require.NoError(t, err)
	assert.Equal(t, policy.DeleteByAge(180), spec)
}

func TestDeleteSpecFromTenantBothThresholdsNeedsExplicitChoice(t *testing.T) {
	api := remote.NewMock()
	api.Tenant = policy.TenantConfig{MajorVersionLimit: 300, ExpireAfterDays: 180}

	// Non-interactive: never guess which threshold to purge by.
	r := policy.NewResolver(api, nil, nil)
	_, err := r.ResolveDeleteSpec(context.Background(), policy.SourceTenant)
	assert.ErrorIs(t, err, policy.ErrAmbiguousSource)

	// Interactive: the user's pick decides.
	prompt := &scriptPrompt{selects: []string{"age threshold (older than 180 days)"}}
	r = policy.NewResolver(api, prompt, nil)
	spec, err := r.ResolveDeleteSpec(context.Background(), policy.SourceTenant)
	require.NoError(t, err)
	assert.Equal(t, policy.DeleteByAge(180), spec)

	// Interactive but abandoned.
	r = policy.NewResolver(api, &scriptPrompt{}, nil)
	_, err = r.ResolveDeleteSpec(context.Background(), policy.SourceTenant)
	assert.ErrorIs(t, err, policy.ErrMissingSource)
}

func TestDeleteSpecFromTenantBelowMinimumAborts(t *testing.T) {
	api := remote.NewMock()
	api.Tenant = policy.TenantConfig{MajorVersionLimit: 50}
	r := policy.NewResolver(api, nil, nil)

	_, err := r.ResolveDeleteSpec(context.Background(), policy.SourceTenant)
	assert.ErrorIs(t, err, policy.ErrInvalidBound)
}

func TestDeleteSpecFromEmptyTenantIsMissingSource(t *testing.T) {
	r := policy.NewResolver(remote.NewMock(), nil, nil)

	_, err := r.ResolveDeleteSpec(context.Background(), policy.SourceTenant)
	assert.ErrorIs(t, err, policy.ErrMissingSource)
}

func TestPromptedDeleteSpecByCount(t *testing.T) {
	prompt := &scriptPrompt{
		selects: []string{"count"},
		ints:    []int{99, 250}, // 99 re-asked, 250 accepted
	}
	r := policy.NewResolver(remote.NewMock(), prompt, nil)

	spec, err := r.ResolveDeleteSpec(context.Background(), policy.SourceCustom)
	require.NoError(t, err)
	assert.Equal(t, policy.DeleteByCount(250), spec)
}
