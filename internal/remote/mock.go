package remote

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/verkeep/verkeep/internal/core"
	"github.com/verkeep/verkeep/internal/policy"
)

// Mock implements API for tests. Calls are recorded as "<op> <site>" and
// failures are scripted per key: each queued error is consumed by one call,
// so a throttle-then-succeed sequence is just a queue of RateLimitErrors.
type Mock struct {
	mu    sync.Mutex
	Calls []string

	Policies    map[string]policy.VersionPolicy
	Statuses    map[string]PolicyStatus
	JobStatuses map[string]JobStatusPayload
	CreatedJobs []JobRef

	Tenant      policy.TenantConfig
	TenantReads int

	Sites []SiteInfo

	Script map[string][]error
}

func NewMock() *Mock {
	return &Mock{
		Policies:    make(map[string]policy.VersionPolicy),
		Statuses:    make(map[string]PolicyStatus),
		JobStatuses: make(map[string]JobStatusPayload),
		Script:      make(map[string][]error),
	}
}

// Fail queues an error for the next call matching key.
func (m *Mock) Fail(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Script[key] = append(m.Script[key], err)
}

func (m *Mock) record(op, site string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := op
	if site != "" {
		key = fmt.Sprintf("%s %s", op, site)
	}
	m.Calls = append(m.Calls, key)

	if queue := m.Script[key]; len(queue) > 0 {
		err := queue[0]
		m.Script[key] = queue[1:]
		return err
	}
	return nil
}

func (m *Mock) GetPolicy(ctx context.Context, s *core.Session) (policy.VersionPolicy, error) {
	if err := m.record("get-policy", s.Site); err != nil {
		return policy.VersionPolicy{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Policies[s.Site], nil
}

func (m *Mock) SetPolicy(ctx context.Context, s *core.Session, p policy.VersionPolicy) error {
	if err := m.record("set-policy", s.Site); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Policies[s.Site] = p
	return nil
}

func (m *Mock) GetPolicyStatus(ctx context.Context, s *core.Session) (PolicyStatus, error) {
	if err := m.record("get-policy-status", s.Site); err != nil {
		return PolicyStatus{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Statuses[s.Site], nil
}

func (m *Mock) CreateDeleteJob(ctx context.Context, s *core.Session, spec policy.DeleteSpec) (JobRef, error) {
	if err := m.record("create-delete-job", s.Site); err != nil {
		return JobRef{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ref := JobRef{ID: uuid.New().String(), Site: s.Site, SubmittedAt: time.Now()}
	m.CreatedJobs = append(m.CreatedJobs, ref)
	return ref, nil
}

func (m *Mock) GetDeleteJobStatus(ctx context.Context, s *core.Session) (JobStatusPayload, error) {
	if err := m.record("get-delete-job-status", s.Site); err != nil {
		return JobStatusPayload{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.JobStatuses[s.Site], nil
}

func (m *Mock) ListSites(ctx context.Context) ([]SiteInfo, error) {
	if err := m.record("list-sites", ""); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SiteInfo(nil), m.Sites...), nil
}

func (m *Mock) GetTenantConfig(ctx context.Context) (policy.TenantConfig, error) {
	if err := m.record("get-tenant-config", ""); err != nil {
		return policy.TenantConfig{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TenantReads++
	return m.Tenant, nil
}

func (m *Mock) SetTenantConfig(ctx context.Context, p policy.VersionPolicy) error {
	if err := m.record("set-tenant-config", ""); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tenant = policy.TenantConfig{
		AutoTrim:          p.Automatic,
		MajorVersionLimit: p.MajorVersionLimit,
		ExpireAfterDays:   p.ExpireAfterDays,
	}
	return nil
}

// CallsFor returns the recorded calls whose key starts with op.
func (m *Mock) CallsFor(op string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, c := range m.Calls {
		if len(c) >= len(op) && c[:len(op)] == op {
			out = append(out, c)
		}
	}
	return out
}
