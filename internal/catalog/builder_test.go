package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/snakemake/plugin-catalog/internal/config"
	"github.com/snakemake/plugin-catalog/internal/docs"
	"github.com/snakemake/plugin-catalog/internal/extract"
	"github.com/snakemake/plugin-catalog/internal/plugin"
	"github.com/snakemake/plugin-catalog/internal/pypi"
	"github.com/snakemake/plugin-catalog/internal/render"
	"github.com/snakemake/plugin-catalog/internal/workenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndex struct {
	packages []string
	releases map[string]*plugin.Release
	listErr  error
}

func (f *fakeIndex) ListPackages(ctx context.Context) ([]string, error) {
	return f.packages, f.listErr
}

func (f *fakeIndex) FetchRelease(ctx context.Context, pkg string) (*plugin.Release, error) {
	rel, ok := f.releases[pkg]
	if !ok {
		return nil, &pypi.MetadataError{Package: pkg, Status: 404}
	}
	copied := *rel
	copied.Package = pkg
	return &copied, nil
}

type fakeProvisioner struct {
	mu       sync.Mutex
	acquired int
	released int
	failing  map[string]bool
}

func (f *fakeProvisioner) Acquire(ctx context.Context, pkg, version string) (*workenv.Environment, error) {
	f.mu.Lock()
	f.acquired++
	f.mu.Unlock()
	if f.failing[pkg] {
		return nil, &workenv.ProvisioningError{Package: pkg, Version: version, Attempts: []workenv.Attempt{
			{Strategy: "binary", Err: &workenv.CommandError{Output: "nothing provides " + pkg}},
			{Strategy: "python=3.12", Err: &workenv.CommandError{Output: "ResolutionImpossible for " + pkg}},
		}}
	}
	return &workenv.Environment{Name: "pc-" + pkg, Package: pkg, Version: version, Strategy: "binary"}, nil
}

func (f *fakeProvisioner) Release(ctx context.Context, env *workenv.Environment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released++
	return nil
}

type fakeExtractor struct {
	settings   map[string][]plugin.Setting
	aux        map[string]plugin.Auxiliary
	failing    map[string]error
	auxFailing map[string]error
	panics     map[string]bool
}

func (f *fakeExtractor) Settings(ctx context.Context, env *workenv.Environment, c plugin.Candidate) ([]plugin.Setting, error) {
	if f.panics[c.Package] {
		panic("plugin exploded")
	}
	if err := f.failing[c.Package]; err != nil {
		return nil, err
	}
	if s, ok := f.settings[c.Package]; ok {
		return s, nil
	}
	return []plugin.Setting{}, nil
}

func (f *fakeExtractor) Auxiliary(ctx context.Context, env *workenv.Environment, c plugin.Candidate) (plugin.Auxiliary, error) {
	if err := f.auxFailing[c.Package]; err != nil {
		return nil, err
	}
	if a, ok := f.aux[c.Package]; ok {
		return a, nil
	}
	return plugin.Auxiliary{}, nil
}

type fakeDocs struct {
	docs map[string]string // "<repo> <section>"
}

func (f *fakeDocs) Fetch(ctx context.Context, repoURL string, section docs.Section) (string, bool) {
	text, ok := f.docs[repoURL+" "+string(section)]
	return text, ok
}

// failingRenderer fails the pages of the given plugin names
type failingRenderer struct {
	Renderer
	names map[string]bool
}

func (r *failingRenderer) Render(pageType string, data any) (string, error) {
	if page, ok := data.(*render.PluginPage); ok && r.names[page.Name] {
		return "", errors.New("template: executor_plugin: unexpected EOF")
	}
	return r.Renderer.Render(pageType, data)
}

type fixture struct {
	index       *fakeIndex
	provisioner *fakeProvisioner
	extractor   *fakeExtractor
	docs        *fakeDocs
	failPages   map[string]bool
	opts        Options
}

func newFixture(t *testing.T) *fixture {
	return &fixture{
		index:       &fakeIndex{releases: map[string]*plugin.Release{}},
		provisioner: &fakeProvisioner{failing: map[string]bool{}},
		extractor: &fakeExtractor{
			settings:   map[string][]plugin.Setting{},
			aux:        map[string]plugin.Auxiliary{},
			failing:    map[string]error{},
			auxFailing: map[string]error{},
			panics:     map[string]bool{},
		},
		docs:      &fakeDocs{docs: map[string]string{}},
		failPages: map[string]bool{},
		opts: Options{
			Host:       "snakemake",
			Categories: []plugin.Category{plugin.CategoryExecutor, plugin.CategoryStorage},
			OutputDir:  t.TempDir(),
		},
	}
}

func (f *fixture) release(pkg, repo string) {
	f.index.packages = append(f.index.packages, pkg)
	f.index.releases[pkg] = &plugin.Release{Version: "1.0.0", Summary: "summary of " + pkg, RepositoryURL: repo}
}

func (f *fixture) build(t *testing.T) *Report {
	t.Helper()
	renderer, err := render.New("")
	require.NoError(t, err)

	b := NewBuilder(f.index, f.provisioner, f.extractor, f.docs, &failingRenderer{renderer, f.failPages}, f.opts, nil)
	report, err := b.Build(context.Background())
	require.NoError(t, err)
	return report
}

func (f *fixture) page(t *testing.T, category plugin.Category, name string) string {
	t.Helper()
	data, err := os.ReadFile(config.PagePath(f.opts.OutputDir, string(category), name))
	require.NoError(t, err)
	return string(data)
}

func resultFor(report *Report, name string) *CollectionResult {
	for _, res := range report.Results {
		if res.Candidate.Name == name {
			return res
		}
	}
	return nil
}

func strptr(s string) *string { return &s }

func TestBuildCleanAndFailingPackages(t *testing.T) {
	f := newFixture(t)
	f.release("snakemake-executor-plugin-bar", "https://github.com/acme/bar")
	f.release("numpy", "")
	f.release("snakemake-executor-plugin-foo", "")
	f.provisioner.failing["snakemake-executor-plugin-bar"] = true
	f.extractor.settings["snakemake-executor-plugin-foo"] = []plugin.Setting{
		{Name: "threads", Type: strptr("int"), Default: float64(4)},
	}

	report := f.build(t)

	foo := resultFor(report, "foo")
	require.NotNil(t, foo)
	assert.Equal(t, StatusOK, foo.Status)
	assert.Empty(t, foo.Error)
	require.Len(t, foo.Settings, 1)

	bar := resultFor(report, "bar")
	require.NotNil(t, bar)
	assert.Equal(t, StatusProvisioningFailed, bar.Status)
	assert.Contains(t, bar.Error, "ResolutionImpossible")
	assert.Contains(t, bar.ErrorHint, "https://github.com/acme/bar/issues")
	assert.Empty(t, bar.Settings)

	fooPage := f.page(t, plugin.CategoryExecutor, "foo")
	assert.Contains(t, fooPage, "``--foo-threads``")
	assert.NotContains(t, fooPage, ".. error::")

	barPage := f.page(t, plugin.CategoryExecutor, "bar")
	assert.Contains(t, barPage, ".. error::")
	assert.Contains(t, barPage, "This plugin declares no settings.")

	index, err := os.ReadFile(config.IndexPath(f.opts.OutputDir))
	require.NoError(t, err)
	assert.Regexp(t, `plugins/executor/bar\n\s+plugins/executor/foo`, string(index))

	assert.Equal(t, 2, f.provisioner.acquired)
	assert.Equal(t, f.provisioner.acquired, f.provisioner.released)
}

func TestBuildDocumentationWarnings(t *testing.T) {
	f := newFixture(t)
	f.release("snakemake-executor-plugin-x", "https://github.com/acme/plugin-x")
	f.release("snakemake-executor-plugin-y", "https://gitlab.com/acme/plugin-y")
	f.release("snakemake-executor-plugin-z", "")
	f.docs.docs["https://github.com/acme/plugin-x intro"] = "Intro\n^^^^^\n"

	report := f.build(t)

	x := resultFor(report, "x")
	assert.True(t, x.HasIntro())
	assert.False(t, x.HasFurther())
	assert.Empty(t, x.DocsWarning)

	y := resultFor(report, "y")
	assert.Contains(t, y.DocsWarning, "docs/intro.md")
	assert.Contains(t, y.DocsWarning, "https://gitlab.com/acme/plugin-y")

	z := resultFor(report, "z")
	assert.Contains(t, z.DocsWarning, "'repository'")
	assert.Empty(t, z.Release.RepositoryKind)
	assert.Contains(t, f.page(t, plugin.CategoryExecutor, "z"), ".. warning::")
}

func TestBuildSkipsPackagesWithoutMetadata(t *testing.T) {
	f := newFixture(t)
	f.release("snakemake-storage-plugin-a", "")
	f.index.packages = append(f.index.packages, "snakemake-storage-plugin-ghost")
	f.release("snakemake-storage-plugin-b", "")

	report := f.build(t)

	ghost := resultFor(report, "ghost")
	require.NotNil(t, ghost)
	assert.Equal(t, StatusMetadataFailed, ghost.Status)
	assert.NoFileExists(t, config.PagePath(f.opts.OutputDir, "storage", "ghost"))

	catalog, err := LoadCatalog(config.CatalogPath(f.opts.OutputDir))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, catalog.Index["storage"])
	assert.Equal(t, []string{}, catalog.Index["executor"])
	assert.Equal(t, 2, f.provisioner.acquired, "no environment for a package without metadata")
}

func TestBuildIsolatesExtractionFailures(t *testing.T) {
	f := newFixture(t)
	f.release("snakemake-storage-plugin-broken", "")
	f.release("snakemake-storage-plugin-crash", "")
	f.release("snakemake-storage-plugin-fine", "")
	f.extractor.failing["snakemake-storage-plugin-broken"] = &extract.ExtractionError{
		Op: extract.OpGetSettings, Package: "snakemake-storage-plugin-broken", Output: "ModuleNotFoundError",
	}
	f.extractor.panics["snakemake-storage-plugin-crash"] = true
	f.extractor.aux["snakemake-storage-plugin-fine"] = plugin.Auxiliary{"example_queries": []any{
		map[string]any{"query": "fine://x", "description": "x", "type": "input"},
	}}

	report := f.build(t)

	broken := resultFor(report, "broken")
	assert.Equal(t, StatusExtractionFailed, broken.Status)
	assert.Contains(t, broken.Error, "ModuleNotFoundError")
	assert.Contains(t, broken.ErrorHint, "contact the authors")
	assert.Empty(t, broken.Auxiliary)

	crash := resultFor(report, "crash")
	assert.Equal(t, StatusExtractionFailed, crash.Status)
	assert.Contains(t, crash.Error, "plugin exploded")

	fine := resultFor(report, "fine")
	assert.Equal(t, StatusOK, fine.Status)
	assert.Contains(t, f.page(t, plugin.CategoryStorage, "fine"), "``fine://x``")

	assert.Equal(t, 3, f.provisioner.acquired)
	assert.Equal(t, 3, f.provisioner.released)
}

func TestBuildAuxiliaryFailureDiscardsSettings(t *testing.T) {
	f := newFixture(t)
	f.release("snakemake-storage-plugin-half", "https://github.com/acme/half")
	f.extractor.settings["snakemake-storage-plugin-half"] = []plugin.Setting{{Name: "bucket"}}
	f.extractor.auxFailing["snakemake-storage-plugin-half"] = &extract.ExtractionError{
		Op: extract.OpGetAuxiliary, Package: "snakemake-storage-plugin-half", Output: "AttributeError: example_queries",
	}

	report := f.build(t)

	half := resultFor(report, "half")
	require.NotNil(t, half)
	assert.Equal(t, StatusExtractionFailed, half.Status)
	assert.Contains(t, half.Error, "AttributeError")
	assert.Contains(t, half.ErrorHint, "https://github.com/acme/half/issues")
	assert.Empty(t, half.Settings)
	assert.Empty(t, half.Auxiliary)

	page := f.page(t, plugin.CategoryStorage, "half")
	assert.Contains(t, page, ".. error::")
	assert.NotContains(t, page, "bucket")

	assert.Equal(t, 1, f.provisioner.acquired)
	assert.Equal(t, f.provisioner.acquired, f.provisioner.released)
}

func TestBuildIndexesPackagesWhosePageFailed(t *testing.T) {
	f := newFixture(t)
	f.release("snakemake-executor-plugin-a", "")
	f.release("snakemake-executor-plugin-broken", "https://github.com/acme/broken")
	f.release("snakemake-executor-plugin-c", "")
	f.extractor.settings["snakemake-executor-plugin-broken"] = []plugin.Setting{{Name: "threads"}}
	f.failPages["broken"] = true

	report := f.build(t)

	broken := resultFor(report, "broken")
	require.NotNil(t, broken)
	assert.Equal(t, StatusFailed, broken.Status)
	assert.Contains(t, broken.Error, "unexpected EOF")
	assert.Empty(t, broken.Settings)
	assert.Contains(t, broken.ErrorHint, "could not be generated")

	page := f.page(t, plugin.CategoryExecutor, "broken")
	assert.Contains(t, page, ".. _executor-plugin-broken:")
	assert.Contains(t, page, ".. error::")
	assert.Contains(t, page, "https://github.com/acme/broken/issues")

	catalog, err := LoadCatalog(config.CatalogPath(f.opts.OutputDir))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "broken", "c"}, catalog.Index["executor"])

	index, err := os.ReadFile(config.IndexPath(f.opts.OutputDir))
	require.NoError(t, err)
	assert.Contains(t, string(index), "plugins/executor/broken")
}

func TestBuildOutcomesAreExclusive(t *testing.T) {
	f := newFixture(t)
	f.release("snakemake-executor-plugin-ok", "")
	f.release("snakemake-executor-plugin-noprov", "")
	f.release("snakemake-executor-plugin-noext", "")
	f.provisioner.failing["snakemake-executor-plugin-noprov"] = true
	f.extractor.failing["snakemake-executor-plugin-noext"] = errors.New("boom")
	f.extractor.settings["snakemake-executor-plugin-ok"] = []plugin.Setting{{Name: "a"}}

	report := f.build(t)

	for _, res := range report.Results {
		if res.Error != "" {
			assert.Empty(t, res.Settings, res.Candidate.Name)
			assert.Empty(t, res.Auxiliary, res.Candidate.Name)
		}
	}
	assert.Len(t, report.Failed(), 2)
}

func TestBuildPreservesOrderWithJobs(t *testing.T) {
	f := newFixture(t)
	f.opts.Jobs = 4
	names := []string{"f", "e", "d", "c", "b", "a"}
	for _, n := range names {
		f.release("snakemake-executor-plugin-"+n, "")
	}

	f.build(t)

	catalog, err := LoadCatalog(config.CatalogPath(f.opts.OutputDir))
	require.NoError(t, err)
	assert.Equal(t, names, catalog.Index["executor"])
	assert.Equal(t, 6, f.provisioner.released)
}

func TestBuildAllowList(t *testing.T) {
	f := newFixture(t)
	f.release("snakemake-executor-plugin-slurm", "")
	f.release("snakemake-executor-plugin-lsf", "")
	f.opts.AllowList = []string{"snakemake-executor-plugin-slurm", "snakemake-executor-plugin-slurn"}

	report := f.build(t)

	require.Len(t, report.Results, 1)
	assert.Equal(t, "slurm", report.Results[0].Candidate.Name)
	assert.Contains(t, report.Unknown, "snakemake-executor-plugin-slurn")
	assert.Equal(t, 1, f.provisioner.acquired)
}

func TestBuildResetsCategoryDirectory(t *testing.T) {
	f := newFixture(t)
	stale := config.PagePath(f.opts.OutputDir, "executor", "removed")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))
	f.release("snakemake-executor-plugin-kept", "")

	f.build(t)

	assert.NoFileExists(t, stale)
	assert.FileExists(t, config.PagePath(f.opts.OutputDir, "executor", "kept"))
}

func TestBuildDiscoveryErrorIsFatal(t *testing.T) {
	f := newFixture(t)
	f.index.listErr = &pypi.DiscoveryError{URL: "https://pypi.org/simple/", Status: 503}

	renderer, err := render.New("")
	require.NoError(t, err)
	_, err = NewBuilder(f.index, f.provisioner, f.extractor, f.docs, renderer, f.opts, nil).Build(context.Background())

	var discErr *pypi.DiscoveryError
	assert.ErrorAs(t, err, &discErr)
	assert.NoFileExists(t, config.IndexPath(f.opts.OutputDir))
}

func TestBuildWithoutCategories(t *testing.T) {
	f := newFixture(t)
	f.opts.Categories = nil

	renderer, err := render.New("")
	require.NoError(t, err)
	_, err = NewBuilder(f.index, f.provisioner, f.extractor, f.docs, renderer, f.opts, nil).Build(context.Background())

	assert.ErrorIs(t, err, ErrNoCategories)
}
