package plugin

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var indexListing = []string{
	"numpy",
	"snakemake-executor-plugin-slurm",
	"snakemake-storage-plugin-s3",
	"snakemake-executor-plugin-",
	"snakemake-executor-plugin-cluster-generic",
	"snakemake-interface-executor-plugins",
	"snakemake-report-plugin-html",
	"snakemake-executor-plugin-slurm-jobstep",
	"my-snakemake-executor-plugin-fake",
}

func TestDiscoverFiltersByPrefixInIndexOrder(t *testing.T) {
	got := Discover(indexListing, "snakemake", CategoryExecutor)

	require.Len(t, got, 3)
	assert.Equal(t, Candidate{Package: "snakemake-executor-plugin-slurm", Name: "slurm", Category: CategoryExecutor}, got[0])
	assert.Equal(t, "cluster-generic", got[1].Name)
	assert.Equal(t, "slurm-jobstep", got[2].Name)
}

func TestDiscoverIsDeterministic(t *testing.T) {
	first := Discover(indexListing, "snakemake", CategoryExecutor)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Discover(indexListing, "snakemake", CategoryExecutor))
	}
}

func TestDiscoverPrefixProperty(t *testing.T) {
	for _, category := range Categories {
		prefix := category.Prefix("snakemake")
		byPackage := make(map[string]Candidate)
		for _, c := range Discover(indexListing, "snakemake", category) {
			byPackage[c.Package] = c
		}

		for _, pkg := range indexListing {
			c, found := byPackage[pkg]
			want := strings.HasPrefix(pkg, prefix) && len(pkg) > len(prefix)
			assert.Equal(t, want, found, "category %s package %s", category, pkg)
			if found {
				assert.Equal(t, strings.TrimPrefix(pkg, prefix), c.Name)
				assert.Equal(t, category, c.Category)
			}
		}
	}
}

func TestDiscoverAll(t *testing.T) {
	all := DiscoverAll(indexListing, "snakemake", Categories)

	assert.Len(t, all[CategoryExecutor], 3)
	assert.Len(t, all[CategoryStorage], 1)
	assert.Len(t, all[CategoryReport], 1)
	assert.Empty(t, all[CategoryLogger])
	assert.Empty(t, all[CategoryScheduler])
}

func TestFilterAllowed(t *testing.T) {
	candidates := Discover(indexListing, "snakemake", CategoryExecutor)

	assert.Equal(t, candidates, FilterAllowed(candidates, nil))

	got := FilterAllowed(candidates, map[string]bool{"snakemake-executor-plugin-slurm": true})
	require.Len(t, got, 1)
	assert.Equal(t, "slurm", got[0].Name)
}

func TestCategoryNaming(t *testing.T) {
	assert.Equal(t, "snakemake-storage-plugin-", CategoryStorage.Prefix("snakemake"))
	assert.Equal(t, "snakemake_interface_storage_plugins.registry", CategoryStorage.RegistryModule("snakemake"))
	assert.Equal(t, "StoragePluginRegistry", CategoryStorage.RegistryType())
	assert.Equal(t, "scheduler_plugin", CategoryScheduler.PageType())

	c, err := ParseCategory(" Logger ")
	require.NoError(t, err)
	assert.Equal(t, CategoryLogger, c)

	_, err = ParseCategory("deployment")
	assert.Error(t, err)
}

func TestDetectRepositoryKind(t *testing.T) {
	kind, ok := DetectRepositoryKind("https://github.com/snakemake/snakemake-executor-plugin-slurm")
	assert.True(t, ok)
	assert.Equal(t, RepositoryGitHub, kind)

	kind, ok = DetectRepositoryKind("https://gitlab.com/group/plugin")
	assert.True(t, ok)
	assert.Equal(t, RepositoryGitLab, kind)

	_, ok = DetectRepositoryKind("https://codeberg.org/x/y")
	assert.False(t, ok)
}
