package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/verkeep/verkeep/internal/core"
	"github.com/verkeep/verkeep/internal/policy"
)

// TokenSource yields the tenant-scope bearer token for calls that are not
// bound to a single site's session.
type TokenSource func(ctx context.Context) (string, error)

// Client is the HTTP implementation of the control-plane API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tenantToken TokenSource
	log         core.Logger
}

func NewClient(baseURL string, tenantToken TokenSource, log core.Logger) *Client {
	if log == nil {
		log = core.NoOpLogger{}
	}
	return &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		tenantToken: tenantToken,
		log:         log,
	}
}

// wirePolicy is the control plane's JSON encoding of a version policy.
// A zero expireAfterDays means "never expire" on the wire as well.
type wirePolicy struct {
	AutoTrim          bool `json:"autoTrim"`
	MajorVersionLimit int  `json:"majorVersionLimit"`
	ExpireAfterDays   int  `json:"expireAfterDays"`
}

func toWire(p policy.VersionPolicy) wirePolicy {
	return wirePolicy{
		AutoTrim:          p.Automatic,
		MajorVersionLimit: p.MajorVersionLimit,
		ExpireAfterDays:   p.ExpireAfterDays,
	}
}

func fromWire(w wirePolicy) policy.VersionPolicy {
	return policy.VersionPolicy{
		Automatic:         w.AutoTrim,
		MajorVersionLimit: w.MajorVersionLimit,
		ExpireAfterDays:   w.ExpireAfterDays,
	}
}

// wireSpec is the purge-job request body. Exactly one field is non-zero.
type wireSpec struct {
	AutoTrim      bool `json:"autoTrim,omitempty"`
	OlderThanDays int  `json:"olderThanDays,omitempty"`
	KeepVersions  int  `json:"keepVersions,omitempty"`
}

func (c *Client) GetPolicy(ctx context.Context, s *core.Session) (policy.VersionPolicy, error) {
	var w wirePolicy
	q := url.Values{"site": {s.Site}}
	if err := c.do(ctx, http.MethodGet, "/api/v1/sites/policy", q, s.Token, nil, &w); err != nil {
		return policy.VersionPolicy{}, err
	}
	return fromWire(w), nil
}

func (c *Client) SetPolicy(ctx context.Context, s *core.Session, p policy.VersionPolicy) error {
	q := url.Values{"site": {s.Site}}
	return c.do(ctx, http.MethodPut, "/api/v1/sites/policy", q, s.Token, toWire(p), nil)
}

func (c *Client) GetPolicyStatus(ctx context.Context, s *core.Session) (PolicyStatus, error) {
	var st PolicyStatus
	q := url.Values{"site": {s.Site}}
	if err := c.do(ctx, http.MethodGet, "/api/v1/sites/policy/status", q, s.Token, nil, &st); err != nil {
		return PolicyStatus{}, err
	}
	return st, nil
}

func (c *Client) CreateDeleteJob(ctx context.Context, s *core.Session, spec policy.DeleteSpec) (JobRef, error) {
	body := wireSpec{
		AutoTrim:      spec.Automatic,
		OlderThanDays: spec.OlderThanDays,
		KeepVersions:  spec.KeepVersions,
	}
	var ref JobRef
	q := url.Values{"site": {s.Site}}
	if err := c.do(ctx, http.MethodPost, "/api/v1/sites/purge-jobs", q, s.Token, body, &ref); err != nil {
		return JobRef{}, err
	}
	return ref, nil
}

func (c *Client) GetDeleteJobStatus(ctx context.Context, s *core.Session) (JobStatusPayload, error) {
	var payload JobStatusPayload
	q := url.Values{"site": {s.Site}}
	if err := c.do(ctx, http.MethodGet, "/api/v1/sites/purge-jobs/latest", q, s.Token, nil, &payload); err != nil {
		return JobStatusPayload{}, err
	}
	return payload, nil
}

func (c *Client) ListSites(ctx context.Context) ([]SiteInfo, error) {
	token, err := c.tenantToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring tenant token: %w", err)
	}
	var out struct {
		Sites []SiteInfo `json:"sites"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/sites", nil, token, nil, &out); err != nil {
		return nil, err
	}
	return out.Sites, nil
}

func (c *Client) GetTenantConfig(ctx context.Context) (policy.TenantConfig, error) {
	token, err := c.tenantToken(ctx)
	if err != nil {
		return policy.TenantConfig{}, fmt.Errorf("acquiring tenant token: %w", err)
	}
	var cfg policy.TenantConfig
	if err := c.do(ctx, http.MethodGet, "/api/v1/tenant/policy", nil, token, nil, &cfg); err != nil {
		return policy.TenantConfig{}, err
	}
	return cfg, nil
}

func (c *Client) SetTenantConfig(ctx context.Context, p policy.VersionPolicy) error {
	token, err := c.tenantToken(ctx)
	if err != nil {
		return fmt.Errorf("acquiring tenant token: %w", err)
	}
	return c.do(ctx, http.MethodPut, "/api/v1/tenant/policy", nil, token, toWire(p), nil)
}

// do performs one request and maps the response onto the error taxonomy:
// 429 becomes *RateLimitError (with the Retry-After header when present),
// any other non-2xx becomes *FaultError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return rateLimitFrom(resp)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &FaultError{Status: resp.StatusCode, Detail: faultDetail(resp.Body)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response from %s: %w", path, err)
		}
	}
	return nil
}

func rateLimitFrom(resp *http.Response) *RateLimitError {
	e := &RateLimitError{}
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			e.RetryAfter = time.Duration(secs) * time.Second
			e.HasRetryAfter = true
		}
	}
	return e
}

func faultDetail(body io.Reader) string {
	var payload struct {
		Error string `json:"error"`
	}
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return ""
}
