package policy

import "fmt"

// Backend minimums. The control plane rejects anything below these, so the
// resolver enforces them before a single site is touched.
const (
	MinMajorVersionLimit = 100
	MinExpireAfterDays   = 30
	MinPurgeAgeDays      = 30
	MinKeepVersions      = 100
)

// Scope distinguishes site-level from tenant-level settings. The bounds
// behave differently per scope: site entry rejects a short expiration,
// tenant entry clamps it up to the floor.
type Scope string

const (
	ScopeSite   Scope = "site"
	ScopeTenant Scope = "tenant"
)

// VersionPolicy is the resolved version-retention configuration applied to a
// site or to the tenant. ExpireAfterDays == 0 means versions never expire;
// the wire format uses the same encoding.
type VersionPolicy struct {
	Automatic         bool `yaml:"automatic" json:"automatic"`
	MajorVersionLimit int  `yaml:"majorVersionLimit" json:"majorVersionLimit"`
	ExpireAfterDays   int  `yaml:"expireAfterDays" json:"expireAfterDays"`
}

// AutomaticPolicy returns the policy that lets the backend trim versions on
// its own.
func AutomaticPolicy() VersionPolicy {
	return VersionPolicy{Automatic: true}
}

// ManualPolicy returns an explicit count/expiration policy. expireAfterDays 0
// means never expire.
func ManualPolicy(majorVersionLimit, expireAfterDays int) VersionPolicy {
	return VersionPolicy{
		MajorVersionLimit: majorVersionLimit,
		ExpireAfterDays:   expireAfterDays,
	}
}

// Validate checks the policy against the bounds for the given scope.
// Tenant-scope expiration is not rejected here; callers are expected to have
// run ClampForTenant first (the documented 30-day floor clamp).
func (p VersionPolicy) Validate(scope Scope) error {
	if p.Automatic {
		return nil
	}
	if p.MajorVersionLimit < MinMajorVersionLimit {
		return fmt.Errorf("major version limit %d is below the minimum %d: %w",
			p.MajorVersionLimit, MinMajorVersionLimit, ErrInvalidBound)
	}
	if p.ExpireAfterDays != 0 && p.ExpireAfterDays < MinExpireAfterDays {
		if scope == ScopeSite {
			return fmt.Errorf("expiration of %d days is below the minimum %d: %w",
				p.ExpireAfterDays, MinExpireAfterDays, ErrInvalidBound)
		}
	}
	return nil
}

// ClampForTenant raises a short expiration to the 30-day floor. Tenant-level
// entry is never rejected for this; the backend applies the same floor, so we
// surface it as a warning instead of a round trip that fails.
func (p VersionPolicy) ClampForTenant() (VersionPolicy, bool) {
	if p.Automatic || p.ExpireAfterDays == 0 || p.ExpireAfterDays >= MinExpireAfterDays {
		return p, false
	}
	p.ExpireAfterDays = MinExpireAfterDays
	return p, true
}

// Equal reports whether two policies would serialize identically.
func (p VersionPolicy) Equal(o VersionPolicy) bool {
	return p == o
}

func (p VersionPolicy) String() string {
	if p.Automatic {
		return "automatic"
	}
	if p.ExpireAfterDays == 0 {
		return fmt.Sprintf("keep %d major versions, never expire", p.MajorVersionLimit)
	}
	return fmt.Sprintf("keep %d major versions, expire after %d days", p.MajorVersionLimit, p.ExpireAfterDays)
}

// DeleteSpec selects which historical versions a purge job removes. Exactly
// one of the three modes may be set; constructing two at once is a contract
// violation surfaced by Validate.
type DeleteSpec struct {
	Automatic     bool `yaml:"automatic" json:"automatic"`
	OlderThanDays int  `yaml:"olderThanDays" json:"olderThanDays"`
	KeepVersions  int  `yaml:"keepVersions" json:"keepVersions"`
}

func AutomaticDelete() DeleteSpec {
	return DeleteSpec{Automatic: true}
}

func DeleteByAge(olderThanDays int) DeleteSpec {
	return DeleteSpec{OlderThanDays: olderThanDays}
}

func DeleteByCount(keepVersions int) DeleteSpec {
	return DeleteSpec{KeepVersions: keepVersions}
}

// Validate enforces mutual exclusivity and the per-mode minimums.
func (d DeleteSpec) Validate() error {
	set := 0
	if d.Automatic {
		set++
	}
	if d.OlderThanDays != 0 {
		set++
	}
	if d.KeepVersions != 0 {
		set++
	}
	switch {
	case set == 0:
		return fmt.Errorf("no purge mode selected: %w", ErrMissingSource)
	case set > 1:
		return fmt.Errorf("age and count thresholds are mutually exclusive: %w", ErrAmbiguousSource)
	}
	if d.OlderThanDays != 0 && d.OlderThanDays < MinPurgeAgeDays {
		return fmt.Errorf("age threshold %d days is below the minimum %d: %w",
			d.OlderThanDays, MinPurgeAgeDays, ErrInvalidBound)
	}
	if d.KeepVersions != 0 && d.KeepVersions < MinKeepVersions {
		return fmt.Errorf("keep-versions threshold %d is below the minimum %d: %w",
			d.KeepVersions, MinKeepVersions, ErrInvalidBound)
	}
	return nil
}

func (d DeleteSpec) String() string {
	switch {
	case d.Automatic:
		return "automatic trim"
	case d.OlderThanDays != 0:
		return fmt.Sprintf("delete versions older than %d days", d.OlderThanDays)
	case d.KeepVersions != 0:
		return fmt.Sprintf("delete versions beyond the newest %d", d.KeepVersions)
	}
	return "unset"
}

// TenantConfig is the tenant-scope retention configuration as read from the
// control plane. Both limits can be non-zero at once; the resolver treats
// that as ambiguous when deriving a purge spec.
type TenantConfig struct {
	AutoTrim          bool `json:"autoTrim"`
	MajorVersionLimit int  `json:"majorVersionLimit"`
	ExpireAfterDays   int  `json:"expireAfterDays"`
}
