// Package catalog drives the collection of every plugin package into
// rendered catalog pages.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hashicorp/go-hclog"
	"github.com/snakemake/plugin-catalog/internal/config"
	"github.com/snakemake/plugin-catalog/internal/docs"
	"github.com/snakemake/plugin-catalog/internal/i18n"
	"github.com/snakemake/plugin-catalog/internal/logging"
	"github.com/snakemake/plugin-catalog/internal/markup"
	"github.com/snakemake/plugin-catalog/internal/plugin"
	"github.com/snakemake/plugin-catalog/internal/pypi"
	"github.com/snakemake/plugin-catalog/internal/render"
	"github.com/snakemake/plugin-catalog/internal/workenv"
	"golang.org/x/sync/errgroup"
)

// ErrNoCategories is returned when a build is asked to process nothing
var ErrNoCategories = errors.New("no plugin categories to build")

// descriptionMarkers places description headings at the page's section level
const descriptionMarkers = `-^"'`

// Provisioner acquires and releases one environment per package version
type Provisioner interface {
	Acquire(ctx context.Context, pkg, version string) (*workenv.Environment, error)
	Release(ctx context.Context, env *workenv.Environment) error
}

// Extractor introspects a plugin inside its environment
type Extractor interface {
	Settings(ctx context.Context, env *workenv.Environment, c plugin.Candidate) ([]plugin.Setting, error)
	Auxiliary(ctx context.Context, env *workenv.Environment, c plugin.Candidate) (plugin.Auxiliary, error)
}

// DocFetcher retrieves documentation sections from repositories
type DocFetcher interface {
	Fetch(ctx context.Context, repoURL string, section docs.Section) (string, bool)
}

// Renderer renders pages by type
type Renderer interface {
	Render(pageType string, data any) (string, error)
}

// Options configures a build
type Options struct {
	Host       string
	Categories []plugin.Category
	OutputDir  string
	Jobs       int      // packages collected at once, at least 1
	AllowList  []string // when set, only these packages are collected
}

// Builder collects and renders the catalog
type Builder struct {
	index       pypi.Index
	provisioner Provisioner
	extractor   Extractor
	docs        DocFetcher
	renderer    Renderer
	opts        Options
	logger      hclog.Logger
}

// NewBuilder wires a builder from its collaborators
func NewBuilder(index pypi.Index, provisioner Provisioner, extractor Extractor, fetcher DocFetcher, renderer Renderer, opts Options, logger hclog.Logger) *Builder {
	if opts.Jobs < 1 {
		opts.Jobs = 1
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	return &Builder{
		index:       index,
		provisioner: provisioner,
		extractor:   extractor,
		docs:        fetcher,
		renderer:    renderer,
		opts:        opts,
		logger:      logging.OrNull(logger),
	}
}

// Build lists the index, collects every candidate of every category and
// writes the pages, the aggregate index and catalog.json. Only a failing
// index listing or a cancelled context abort the build; everything else
// is reported per package.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	if len(b.opts.Categories) == 0 {
		return nil, ErrNoCategories
	}

	packages, err := b.index.ListPackages(ctx)
	if err != nil {
		return nil, err
	}
	b.logger.Info("listed package index", "packages", len(packages))

	report := &Report{Started: time.Now()}
	allowed := NewAllowList(b.opts.AllowList)
	index := Index{}

	var all []plugin.Candidate
	for _, category := range b.opts.Categories {
		candidates := plugin.Discover(packages, b.opts.Host, category)
		all = append(all, candidates...)
		candidates = plugin.FilterAllowed(candidates, allowed.Set())

		if err := config.ResetDir(config.PluginsDir(b.opts.OutputDir, string(category))); err != nil {
			return report, fmt.Errorf("failed to reset %s pages: %w", category, err)
		}

		b.logger.Info("collecting category", "category", category, "candidates", len(candidates))
		results := b.collectAll(ctx, candidates)
		if err := ctx.Err(); err != nil {
			return report, err
		}

		for _, res := range results {
			report.add(res)
			if res.Indexed() {
				index.Add(category, res.Candidate.Name)
			}
		}
	}
	report.Unknown = allowed.Unknown(all)
	for name, suggestions := range report.Unknown {
		b.logger.Warn("allowed package is not a plugin of any built category", "package", name, "suggestions", suggestions)
	}

	if err := b.writeIndex(index); err != nil {
		return report, err
	}
	if err := WriteCatalog(config.CatalogPath(b.opts.OutputDir), NewCatalog(b.opts.Host, b.opts.Categories, report)); err != nil {
		return report, err
	}

	report.Finished = time.Now()
	return report, nil
}

// collectAll processes candidates with up to Jobs at once and returns the
// results in candidate order
func (b *Builder) collectAll(ctx context.Context, candidates []plugin.Candidate) []*CollectionResult {
	results := make([]*CollectionResult, len(candidates))

	var g errgroup.Group
	g.SetLimit(b.opts.Jobs)
	for i, c := range candidates {
		if ctx.Err() != nil {
			break
		}
		i, c := i, c
		g.Go(func() error {
			results[i] = b.Process(ctx, c)
			return nil
		})
	}
	_ = g.Wait()

	collected := results[:0]
	for _, res := range results {
		if res != nil {
			collected = append(collected, res)
		}
	}
	return collected
}

// Process runs the whole pipeline for one candidate and writes its page.
// It never panics; failures are folded into the result.
func (b *Builder) Process(ctx context.Context, c plugin.Candidate) (res *CollectionResult) {
	started := time.Now()
	logger := b.logger.With("package", c.Package)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("collection panicked", "panic", r, "stack", string(debug.Stack()))
			if res == nil {
				res = &CollectionResult{Candidate: c, Status: StatusFailed, Error: fmt.Sprint(r)}
			} else {
				b.salvage(res, fmt.Errorf("collection panicked: %v", r), logger)
			}
		}
		res.Duration = time.Since(started)
	}()

	release, err := b.index.FetchRelease(ctx, c.Package)
	if err != nil {
		logger.Error("failed to fetch metadata, skipping", "error", err)
		return &CollectionResult{Candidate: c, Status: StatusMetadataFailed, Error: err.Error()}
	}

	res = &CollectionResult{
		Candidate: c,
		Release:   release,
		Settings:  []plugin.Setting{},
		Auxiliary: plugin.Auxiliary{},
		Status:    StatusOK,
	}

	b.introspect(ctx, res, logger)
	b.document(ctx, res)

	if err := b.writePage(res); err != nil {
		logger.Error("failed to write page", "error", err)
		b.salvage(res, err, logger)
		return res
	}

	logger.Info("collected", "version", release.Version, "status", res.Status, "settings", len(res.Settings))
	return res
}

// introspect provisions the package and extracts its settings and
// auxiliary data. The environment is released on every path.
func (b *Builder) introspect(ctx context.Context, res *CollectionResult, logger hclog.Logger) {
	c := res.Candidate

	env, err := b.provisioner.Acquire(ctx, c.Package, res.Release.Version)
	defer func() {
		if rerr := b.provisioner.Release(ctx, env); rerr != nil {
			logger.Warn("failed to release environment", "error", rerr)
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("introspection panicked", "panic", r)
			res.fail(StatusExtractionFailed, fmt.Errorf("introspection panicked: %v", r), b.hint(msgExtractionFailed, res))
		}
	}()

	if err != nil {
		logger.Error("failed to provision environment", "version", res.Release.Version, "error", err)
		res.fail(StatusProvisioningFailed, provisioningDetail(err), b.hint(msgProvisioningFailed, res))
		return
	}
	res.Environment = env.Strategy

	settings, err := b.extractor.Settings(ctx, env, c)
	if err != nil {
		logger.Error("failed to extract settings", "error", err)
		res.fail(StatusExtractionFailed, err, b.hint(msgExtractionFailed, res))
		return
	}

	aux, err := b.extractor.Auxiliary(ctx, env, c)
	if err != nil {
		logger.Error("failed to extract auxiliary data", "error", err)
		res.fail(StatusExtractionFailed, err, b.hint(msgExtractionFailed, res))
		return
	}

	res.Settings = settings
	res.Auxiliary = aux
}

// provisioningDetail keeps the installer output of the last attempt
func provisioningDetail(err error) error {
	var provErr *workenv.ProvisioningError
	if errors.As(err, &provErr) {
		if out := provErr.LastOutput(); out != "" {
			return errors.New(out)
		}
	}
	return err
}

// document fetches the optional docs sections and sets the warning the
// maintainer should act on
func (b *Builder) document(ctx context.Context, res *CollectionResult) {
	rel := res.Release
	if !rel.HasRepository() {
		res.DocsWarning = i18n.M(msgNoRepository, nil)
		return
	}

	res.DocsIntro, _ = b.docs.Fetch(ctx, rel.RepositoryURL, docs.SectionIntro)
	res.DocsFurther, _ = b.docs.Fetch(ctx, rel.RepositoryURL, docs.SectionFurther)
	if !res.HasIntro() && !res.HasFurther() {
		res.DocsWarning = i18n.M(msgNoDocs, map[string]interface{}{"Repository": rel.RepositoryURL})
	}
}

func (b *Builder) hint(reason *i18n.Message, res *CollectionResult) string {
	data := map[string]interface{}{
		"Host":       b.opts.Host,
		"Category":   string(res.Candidate.Category),
		"Repository": res.Release.RepositoryURL,
	}
	hint := i18n.M(reason, data) + " "
	if res.Release.HasRepository() {
		return hint + i18n.M(msgFileIssue, data)
	}
	return hint + i18n.M(msgContactAuthors, data)
}

// Page converts a result into the data of its page template
func (b *Builder) Page(res *CollectionResult) *render.PluginPage {
	return &render.PluginPage{
		Host:        b.opts.Host,
		Category:    res.Candidate.Category,
		Name:        res.Candidate.Name,
		Package:     res.Candidate.Package,
		Release:     res.Release,
		Description: markup.ToRST(res.Release.Description, descriptionMarkers),
		DocsIntro:   res.DocsIntro,
		DocsFurther: res.DocsFurther,
		DocsWarning: res.DocsWarning,
		Error:       res.Error,
		ErrorHint:   res.ErrorHint,
		Settings:    res.Settings,
		Auxiliary:   res.Auxiliary,
	}
}

func (b *Builder) writePage(res *CollectionResult) error {
	c := res.Candidate
	text, err := b.renderer.Render(c.Category.PageType(), b.Page(res))
	if err != nil {
		return err
	}
	return os.WriteFile(config.PagePath(b.opts.OutputDir, string(c.Category), c.Name), []byte(text), 0644)
}

// salvage marks res failed and replaces its page with a bare error page,
// so the index entry of the package still resolves
func (b *Builder) salvage(res *CollectionResult, err error, logger hclog.Logger) {
	res.fail(StatusFailed, err, b.hint(msgPageFailed, res))

	c := res.Candidate
	path := config.PagePath(b.opts.OutputDir, string(c.Category), c.Name)
	if werr := os.WriteFile(path, []byte(errorPage(b.opts.Host, res)), 0644); werr != nil {
		logger.Error("failed to write error page", "error", werr)
	}
}

// errorPage is written without templates, for pages whose template failed
func errorPage(host string, res *CollectionResult) string {
	c := res.Candidate
	heading := fmt.Sprintf("%s %s plugin: %s", host, c.Category, c.Name)
	line := strings.Repeat("#", utf8.RuneCountInString(heading))

	var sb strings.Builder
	fmt.Fprintf(&sb, ".. _%s-plugin-%s:\n\n", c.Category, c.Name)
	fmt.Fprintf(&sb, "%s\n%s\n%s\n\n", line, heading, line)
	fmt.Fprintf(&sb, ".. error::\n\n   %s\n", res.ErrorHint)
	return sb.String()
}

func (b *Builder) writeIndex(index Index) error {
	page := render.IndexPage{Host: b.opts.Host}
	for _, category := range b.opts.Categories {
		page.Categories = append(page.Categories, render.IndexSection{
			Category: category,
			Plugins:  index[category],
		})
	}

	text, err := b.renderer.Render(render.IndexTemplate, page)
	if err != nil {
		return fmt.Errorf("failed to render index: %w", err)
	}
	if err := config.EnsureDir(b.opts.OutputDir); err != nil {
		return err
	}
	return os.WriteFile(config.IndexPath(b.opts.OutputDir), []byte(text), 0644)
}
