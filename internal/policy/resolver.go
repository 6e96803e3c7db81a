package policy

import (
	"context"
	"fmt"

	"github.com/verkeep/verkeep/internal/core"
)

// Source names where the resolved settings come from.
type Source string

const (
	// SourceAutomatic lets the backend manage trimming on its own.
	SourceAutomatic Source = "automatic"
	// SourceTenant derives the settings from the tenant configuration.
	SourceTenant Source = "tenant"
	// SourceCustom takes explicit values, interactively when no flags were given.
	SourceCustom Source = "custom"
)

// TenantReader is the one slice of the control-plane API the resolver needs.
type TenantReader interface {
	GetTenantConfig(ctx context.Context) (TenantConfig, error)
}

// Prompter abstracts the interactive questions so tests can script answers
// and non-interactive runs can refuse them cleanly.
type Prompter interface {
	// Select asks the user to pick one of options; returns the picked option.
	Select(label string, options []string) (string, error)
	// Int asks for an integer with a default.
	Int(label string, def int) (int, error)
}

// Resolver turns a chosen settings source into exactly one valid policy
// object. It runs once per user action, before the batch executor starts,
// and the object it returns is immutable for the rest of the run.
type Resolver struct {
	Tenant TenantReader
	Prompt Prompter // nil means non-interactive
	Log    core.Logger
}

func NewResolver(tenant TenantReader, prompt Prompter, log core.Logger) *Resolver {
	if log == nil {
		log = core.NoOpLogger{}
	}
	return &Resolver{Tenant: tenant, Prompt: prompt, Log: log}
}

// ResolvePolicy produces the VersionPolicy for the given source and scope.
func (r *Resolver) ResolvePolicy(ctx context.Context, source Source, scope Scope) (VersionPolicy, error) {
	switch source {
	case SourceAutomatic:
		return AutomaticPolicy(), nil

	case SourceTenant:
		// Read the tenant configuration exactly once; the derived object is
		// frozen for the whole batch.
		cfg, err := r.Tenant.GetTenantConfig(ctx)
		if err != nil {
			return VersionPolicy{}, fmt.Errorf("reading tenant configuration: %w", err)
		}
		if cfg.AutoTrim {
			return AutomaticPolicy(), nil
		}
		p := ManualPolicy(cfg.MajorVersionLimit, cfg.ExpireAfterDays)
		if scope == ScopeTenant {
			p = r.clampTenant(p)
		}
		if err := p.Validate(scope); err != nil {
			return VersionPolicy{}, fmt.Errorf("tenant configuration is not usable as-is: %w", err)
		}
		return p, nil

	case SourceCustom:
		return r.promptPolicy(scope)

	default:
		return VersionPolicy{}, fmt.Errorf("unknown settings source %q: %w", source, ErrMissingSource)
	}
}

// ResolveCustomPolicy validates explicit (flag-provided) values without any
// prompting. Site scope rejects a short expiration; tenant scope clamps it.
func (r *Resolver) ResolveCustomPolicy(majorVersionLimit, expireAfterDays int, scope Scope) (VersionPolicy, error) {
	p := ManualPolicy(majorVersionLimit, expireAfterDays)
	if scope == ScopeTenant {
		p = r.clampTenant(p)
	}
	if err := p.Validate(scope); err != nil {
		return VersionPolicy{}, err
	}
	return p, nil
}

func (r *Resolver) clampTenant(p VersionPolicy) VersionPolicy {
	clamped, did := p.ClampForTenant()
	if did {
		r.Log.Warn(fmt.Sprintf("expiration of %d days is below the tenant floor, raising to %d",
			p.ExpireAfterDays, MinExpireAfterDays),
			"entered", p.ExpireAfterDays, "applied", MinExpireAfterDays)
	}
	return clamped
}

func (r *Resolver) promptPolicy(scope Scope) (VersionPolicy, error) {
	if r.Prompt == nil {
		return VersionPolicy{}, fmt.Errorf("custom entry needs an interactive terminal: %w", ErrMissingSource)
	}

	mode, err := r.Prompt.Select("Version trimming mode", []string{"automatic", "manual"})
	if err != nil {
		return VersionPolicy{}, fmt.Errorf("mode selection: %w", ErrMissingSource)
	}
	if mode == "automatic" {
		return AutomaticPolicy(), nil
	}

	limit, err := r.promptBounded("Major version limit", 500, MinMajorVersionLimit)
	if err != nil {
		return VersionPolicy{}, err
	}

	// 0 means never expire. Site scope rejects 1..29 and re-prompts; tenant
	// scope takes the entry and clamps.
	var days int
	for {
		days, err = r.Prompt.Int("Expire versions after days (0 = never)", 0)
		if err != nil {
			return VersionPolicy{}, fmt.Errorf("expiration entry: %w", ErrMissingSource)
		}
		if scope == ScopeSite && days != 0 && days < MinExpireAfterDays {
			r.Log.Warn(fmt.Sprintf("expiration must be 0 or at least %d days", MinExpireAfterDays))
			continue
		}
		break
	}

	p := ManualPolicy(limit, days)
	if scope == ScopeTenant {
		p = r.clampTenant(p)
	}
	if err := p.Validate(scope); err != nil {
		return VersionPolicy{}, err
	}
	return p, nil
}

// ResolveDeleteSpec produces the purge specification for the given source.
func (r *Resolver) ResolveDeleteSpec(ctx context.Context, source Source) (DeleteSpec, error) {
	switch source {
	case SourceAutomatic:
		return AutomaticDelete(), nil

	case SourceTenant:
		cfg, err := r.Tenant.GetTenantConfig(ctx)
		if err != nil {
			return DeleteSpec{}, fmt.Errorf("reading tenant configuration: %w", err)
		}
		return r.specFromTenant(cfg)

	case SourceCustom:
		return r.promptDeleteSpec()

	default:
		return DeleteSpec{}, fmt.Errorf("unknown settings source %q: %w", source, ErrMissingSource)
	}
}

// specFromTenant maps the tenant configuration onto a purge spec. When the
// tenant carries both a count limit and an expiration limit there is no
// documented precedence, so the user must pick one explicitly; guessing here
// would purge the wrong versions fleet-wide.
func (r *Resolver) specFromTenant(cfg TenantConfig) (DeleteSpec, error) {
	if cfg.AutoTrim {
		return AutomaticDelete(), nil
	}

	hasCount := cfg.MajorVersionLimit != 0
	hasAge := cfg.ExpireAfterDays != 0

	var spec DeleteSpec
	switch {
	case hasCount && hasAge:
		if r.Prompt == nil {
			return DeleteSpec{}, fmt.Errorf(
				"tenant configuration sets both a version-count limit (%d) and an expiration limit (%d days): %w",
				cfg.MajorVersionLimit, cfg.ExpireAfterDays, ErrAmbiguousSource)
		}
		byAge := fmt.Sprintf("age threshold (older than %d days)", cfg.ExpireAfterDays)
		byCount := fmt.Sprintf("count threshold (keep newest %d)", cfg.MajorVersionLimit)
		pick, err := r.Prompt.Select("Tenant configuration sets both thresholds, purge by", []string{byAge, byCount})
		if err != nil {
			return DeleteSpec{}, fmt.Errorf("threshold selection: %w", ErrMissingSource)
		}
		if pick == byAge {
			spec = DeleteByAge(cfg.ExpireAfterDays)
		} else {
			spec = DeleteByCount(cfg.MajorVersionLimit)
		}
	case hasAge:
		spec = DeleteByAge(cfg.ExpireAfterDays)
	case hasCount:
		spec = DeleteByCount(cfg.MajorVersionLimit)
	default:
		return DeleteSpec{}, fmt.Errorf("tenant configuration carries no thresholds: %w", ErrMissingSource)
	}

	if err := spec.Validate(); err != nil {
		return DeleteSpec{}, fmt.Errorf("tenant-derived purge settings: %w", err)
	}
	return spec, nil
}

func (r *Resolver) promptDeleteSpec() (DeleteSpec, error) {
	if r.Prompt == nil {
		return DeleteSpec{}, fmt.Errorf("custom entry needs an interactive terminal: %w", ErrMissingSource)
	}

	mode, err := r.Prompt.Select("Purge versions by", []string{"age", "count", "automatic"})
	if err != nil {
		return DeleteSpec{}, fmt.Errorf("mode selection: %w", ErrMissingSource)
	}

	switch mode {
	case "automatic":
		return AutomaticDelete(), nil
	case "age":
		days, err := r.promptBounded("Delete versions older than days", MinPurgeAgeDays, MinPurgeAgeDays)
		if err != nil {
			return DeleteSpec{}, err
		}
		return DeleteByAge(days), nil
	default:
		keep, err := r.promptBounded("Keep newest versions", 500, MinKeepVersions)
		if err != nil {
			return DeleteSpec{}, err
		}
		return DeleteByCount(keep), nil
	}
}

// promptBounded asks until the entry meets the minimum. The entry can only
// end in a valid value or an abandoned prompt, never a silently coerced one.
func (r *Resolver) promptBounded(label string, def, min int) (int, error) {
	for {
		v, err := r.Prompt.Int(label, def)
		if err != nil {
			return 0, fmt.Errorf("%s entry: %w", label, ErrMissingSource)
		}
		if v < min {
			r.Log.Warn(fmt.Sprintf("%s must be at least %d", label, min))
			continue
		}
		return v, nil
	}
}
