package session

import (
	"context"
	"fmt"
	"time"

	"github.com/verkeep/verkeep/internal/auth"
	"github.com/verkeep/verkeep/internal/core"
)

// AuthError marks a site whose session could not be established. It is fatal
// for that site's iteration only; the batch continues past it.
type AuthError struct {
	Site string
	Err  error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed for %s: %v", e.Site, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Provider yields an authenticated session bound to one site. The executor
// takes one per site and closes it before moving on; injecting a provider
// lets tests substitute a fixed, non-interactive session.
type Provider interface {
	Acquire(ctx context.Context, site string) (*core.Session, error)
}

// Manager is the default provider. It re-authenticates for every site, even
// when consecutive sites share the tenant context: tokens are site-scoped on
// the backend and are never reused across sites.
type Manager struct {
	Tenant string
	Auth   auth.Authenticator
	Log    core.Logger
}

func NewManager(tenant string, authenticator auth.Authenticator, log core.Logger) *Manager {
	if log == nil {
		log = core.NoOpLogger{}
	}
	return &Manager{Tenant: tenant, Auth: authenticator, Log: log}
}

func (m *Manager) Acquire(ctx context.Context, site string) (*core.Session, error) {
	m.Log.Debug("acquiring session", "site", site, "tenant", m.Tenant)

	tok, err := m.Auth.Authenticate(ctx, m.Tenant, site)
	if err != nil {
		return nil, &AuthError{Site: site, Err: err}
	}

	return &core.Session{
		Site:     site,
		Tenant:   m.Tenant,
		Token:    tok.Value,
		Acquired: time.Now(),
	}, nil
}

// StaticProvider hands out sessions with a fixed token. Test use only.
type StaticProvider struct {
	Token string
	Err   error

	Acquired []string
}

func (s *StaticProvider) Acquire(ctx context.Context, site string) (*core.Session, error) {
	s.Acquired = append(s.Acquired, site)
	if s.Err != nil {
		return nil, &AuthError{Site: site, Err: s.Err}
	}
	return &core.Session{Site: site, Token: s.Token, Acquired: time.Now()}, nil
}
