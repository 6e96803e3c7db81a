// Package catalog supplies the ordered site list a batch run works through,
// either from a static YAML file or from a filtered discovery query against
// the control plane's site metadata.
package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"gopkg.in/yaml.v3"

	"github.com/verkeep/verkeep/internal/core"
	"github.com/verkeep/verkeep/internal/remote"
)

// file is the static site-list format:
//
//	sites:
//	  - https://tenant.example.com/sites/alpha
//	  - https://tenant.example.com/sites/beta
type file struct {
	Sites []string `yaml:"sites"`
}

// LoadStatic reads an ordered site list from a YAML file. Order is
// preserved; duplicates keep their first position.
func LoadStatic(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading site list: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing site list %s: %w", path, err)
	}

	return dedupe(f.Sites), nil
}

// Discoverer queries the control plane for sites and filters them with an
// expression over the per-site metadata, e.g.
//
//	Template == "TEAMSITE" && StorageUsedBytes > 1073741824
type Discoverer struct {
	API remote.API
	Log core.Logger
}

func NewDiscoverer(api remote.API, log core.Logger) *Discoverer {
	if log == nil {
		log = core.NoOpLogger{}
	}
	return &Discoverer{API: api, Log: log}
}

// Discover lists the tenant's sites and returns the URLs matching filter,
// in the order the control plane reported them. An empty filter matches
// everything.
func (d *Discoverer) Discover(ctx context.Context, filter string) ([]string, error) {
	sites, err := d.API.ListSites(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sites: %w", err)
	}
	d.Log.Debug(fmt.Sprintf("discovery returned %d sites", len(sites)))

	var program *vm.Program
	if filter != "" {
		program, err = expr.Compile(filter, expr.Env(remote.SiteInfo{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("invalid site filter %q: %w", filter, err)
		}
	}

	var urls []string
	for _, site := range sites {
		if program != nil {
			out, err := expr.Run(program, site)
			if err != nil {
				return nil, fmt.Errorf("evaluating filter against %s: %w", site.URL, err)
			}
			if keep, ok := out.(bool); !ok || !keep {
				continue
			}
		}
		urls = append(urls, site.URL)
	}

	return dedupe(urls), nil
}

func dedupe(sites []string) []string {
	seen := make(map[string]bool, len(sites))
	out := make([]string, 0, len(sites))
	for _, s := range sites {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
