package remote

import (
	"context"
	"time"

	"github.com/verkeep/verkeep/internal/core"
	"github.com/verkeep/verkeep/internal/policy"
)

// SiteInfo is the discovery metadata the control plane exposes per site.
// Catalog filters run against these fields.
type SiteInfo struct {
	URL              string `json:"url"`
	Title            string `json:"title"`
	Template         string `json:"template"`
	StorageUsedBytes int64  `json:"storageUsedBytes"`
}

// PolicyStatus reports how far the backend has gotten applying a previously
// submitted version policy to a site's existing libraries.
type PolicyStatus struct {
	State     string    `json:"state"` // "new", "scheduled", "completed"
	UpdatedAt time.Time `json:"updatedAt"`
}

// JobRef identifies a submitted purge job.
type JobRef struct {
	ID          string    `json:"id"`
	Site        string    `json:"site"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// JobStatusPayload is the raw lifecycle snapshot of a purge job as the
// backend reports it. The job package projects it into a canonical state.
type JobStatusPayload struct {
	ID            string     `json:"id"`
	State         string     `json:"state"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	BytesReleased uint64     `json:"bytesReleased"`
}

// API is the control-plane surface the engine drives. Site-scope calls take
// the session the executor acquired for that site; tenant-scope calls
// authenticate through the client's own tenant credential. Any call may fail
// with *RateLimitError or *FaultError.
type API interface {
	GetPolicy(ctx context.Context, s *core.Session) (policy.VersionPolicy, error)
	SetPolicy(ctx context.Context, s *core.Session, p policy.VersionPolicy) error
	GetPolicyStatus(ctx context.Context, s *core.Session) (PolicyStatus, error)
	CreateDeleteJob(ctx context.Context, s *core.Session, spec policy.DeleteSpec) (JobRef, error)
	GetDeleteJobStatus(ctx context.Context, s *core.Session) (JobStatusPayload, error)
	ListSites(ctx context.Context) ([]SiteInfo, error)
	GetTenantConfig(ctx context.Context) (policy.TenantConfig, error)
	SetTenantConfig(ctx context.Context, p policy.VersionPolicy) error
}
