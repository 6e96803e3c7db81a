package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verkeep/verkeep/internal/catalog"
	"github.com/verkeep/verkeep/internal/remote"
)

func TestLoadStaticPreservesOrderAndDedupes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.yaml")
	content := `sites:
  - https://tenant.example.com/sites/alpha
  - https://tenant.example.com/sites/beta
  - https://tenant.example.com/sites/alpha
  - https://tenant.example.com/sites/gamma
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	sites, err := catalog.LoadStatic(path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://tenant.example.com/sites/alpha",
		"https://tenant.example.com/sites/beta",
		"https://tenant.example.com/sites/gamma",
	}, sites)
}

func TestLoadStaticMissingFile(t *testing.T) {
	_, err := catalog.LoadStatic(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDiscoverFiltersOnMetadata(t *testing.T) {
	api := remote.NewMock()
	api.Sites = []remote.SiteInfo{
		{URL: "https://t.example.com/sites/a", Template: "TEAMSITE", StorageUsedBytes: 5 << 30},
		{URL: "https://t.example.com/sites/b", Template: "PROJECT", StorageUsedBytes: 9 << 30},
		{URL: "https://t.example.com/sites/c", Template: "TEAMSITE", StorageUsedBytes: 1 << 20},
	}
	d := catalog.NewDiscoverer(api, nil)

	sites, err := d.Discover(context.Background(), `Template == "TEAMSITE" && StorageUsedBytes > 1073741824`)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://t.example.com/sites/a"}, sites)
}

func TestDiscoverEmptyFilterKeepsEverything(t *testing.T) {
	api := remote.NewMock()
	api.Sites = []remote.SiteInfo{
		{URL: "https://t.example.com/sites/a"},
		{URL: "https://t.example.com/sites/b"},
	}
	d := catalog.NewDiscoverer(api, nil)

	sites, err := d.Discover(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, sites, 2)
}

func TestDiscoverRejectsBadFilter(t *testing.T) {
	d := catalog.NewDiscoverer(remote.NewMock(), nil)

	_, err := d.Discover(context.Background(), `Template ==`)
	assert.Error(t, err)
}
