// Package docs retrieves the optional documentation sections a plugin
// keeps in its source repository.
package docs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/snakemake/plugin-catalog/internal/logging"
	"github.com/snakemake/plugin-catalog/internal/markup"
	"github.com/snakemake/plugin-catalog/internal/plugin"
)

// Section is a documentation file below docs/ in a plugin repository
type Section string

const (
	SectionIntro   Section = "intro"
	SectionFurther Section = "further"
)

// Markers returns the heading adornments a section's headings are
// remapped to. Both sections sit right below a "-" page section, so their
// top headings take the next level.
func (s Section) Markers() string {
	switch s {
	case SectionIntro, SectionFurther:
		return `^"'~`
	}
	return markup.DefaultMarkers
}

// DefaultBranches are tried in order
var DefaultBranches = []string{"main", "master"}

// maxDocumentSize bounds a single fetched document
const maxDocumentSize = 1 << 20

// Fetcher downloads documentation sections from repository hosts
type Fetcher struct {
	HTTPClient *http.Client
	Branches   []string
	Logger     hclog.Logger
}

// NewFetcher creates a new fetcher trying branches in order
func NewFetcher(branches []string, timeout time.Duration, logger hclog.Logger) *Fetcher {
	if len(branches) == 0 {
		branches = DefaultBranches
	}
	return &Fetcher{
		HTTPClient: &http.Client{Timeout: timeout},
		Branches:   branches,
		Logger:     logging.OrNull(logger),
	}
}

// RawURL builds the raw-content URL of a docs file for the given host kind
func RawURL(kind plugin.RepositoryKind, repoURL, branch string, section Section) (string, bool) {
	repoURL = strings.TrimRight(repoURL, "/")
	switch kind {
	case plugin.RepositoryGitHub:
		return fmt.Sprintf("%s/blob/%s/docs/%s.md?raw=true", repoURL, branch, section), true
	case plugin.RepositoryGitLab:
		return fmt.Sprintf("%s/-/raw/%s/docs/%s.md?raw=true", repoURL, branch, section), true
	}
	return "", false
}

// Fetch returns the section of the repository at repoURL converted to
// reStructuredText. Missing documents, unknown hosts and transport errors
// all report absence.
func (f *Fetcher) Fetch(ctx context.Context, repoURL string, section Section) (string, bool) {
	kind, ok := plugin.DetectRepositoryKind(repoURL)
	if !ok {
		return "", false
	}
	return f.FetchFrom(ctx, kind, repoURL, section)
}

// FetchFrom is Fetch for a repository whose host kind is already known
func (f *Fetcher) FetchFrom(ctx context.Context, kind plugin.RepositoryKind, repoURL string, section Section) (string, bool) {
	for _, branch := range f.Branches {
		url, ok := RawURL(kind, repoURL, branch, section)
		if !ok {
			return "", false
		}

		body, err := f.get(ctx, url)
		if err != nil {
			f.Logger.Trace("no documentation", "url", url, "error", err)
			if ctx.Err() != nil {
				return "", false
			}
			continue
		}

		f.Logger.Debug("found documentation", "url", url, "section", section)
		return markup.ToRST(body, section.Markers()), true
	}
	return "", false
}

func (f *Fetcher) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
