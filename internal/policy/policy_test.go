package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verkeep/verkeep/internal/policy"
)

func TestManualPolicyBounds(t *testing.T) {
	cases := []struct {
		name    string
		limit   int
		days    int
		scope   policy.Scope
		wantErr error
	}{
		{"limit just under minimum", 99, 0, policy.ScopeSite, policy.ErrInvalidBound},
		{"limit at minimum", 100, 0, policy.ScopeSite, nil},
		{"site expiration under floor", 100, 29, policy.ScopeSite, policy.ErrInvalidBound},
		{"site expiration at floor", 100, 30, policy.ScopeSite, nil},
		{"zero days means never expire", 100, 0, policy.ScopeSite, nil},
		{"large values fine", 5000, 3650, policy.ScopeSite, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := policy.ManualPolicy(tc.limit, tc.days).Validate(tc.scope)
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestAutomaticPolicySkipsBounds(t *testing.T) {
	assert.NoError(t, policy.AutomaticPolicy().Validate(policy.ScopeSite))
	assert.NoError(t, policy.AutomaticPolicy().Validate(policy.ScopeTenant))
}

func TestClampForTenant(t *testing.T) {
	p, clamped := policy.ManualPolicy(100, 10).ClampForTenant()
	assert.True(t, clamped)
	assert.Equal(t, 30, p.ExpireAfterDays)

	p, clamped = policy.ManualPolicy(100, 30).ClampForTenant()
	assert.False(t, clamped)
	assert.Equal(t, 30, p.ExpireAfterDays)

	p, clamped = policy.ManualPolicy(100, 0).ClampForTenant()
	assert.False(t, clamped, "never-expire is not clamped")
	assert.Equal(t, 0, p.ExpireAfterDays)
}

func TestDeleteSpecMutualExclusivity(t *testing.T) {
	both := policy.DeleteSpec{OlderThanDays: 60, KeepVersions: 200}
	assert.ErrorIs(t, both.Validate(), policy.ErrAmbiguousSource)

	autoAndAge := policy.DeleteSpec{Automatic: true, OlderThanDays: 60}
	assert.ErrorIs(t, autoAndAge.Validate(), policy.ErrAmbiguousSource)

	none := policy.DeleteSpec{}
	assert.ErrorIs(t, none.Validate(), policy.ErrMissingSource)
}

func TestDeleteSpecBounds(t *testing.T) {
	assert.ErrorIs(t, policy.DeleteByAge(29).Validate(), policy.ErrInvalidBound)
	assert.NoError(t, policy.DeleteByAge(30).Validate())
	assert.ErrorIs(t, policy.DeleteByCount(99).Validate(), policy.ErrInvalidBound)
	assert.NoError(t, policy.DeleteByCount(100).Validate())
	assert.NoError(t, policy.AutomaticDelete().Validate())
}
