package pypi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/snakemake/plugin-catalog/internal/logging"
	"github.com/snakemake/plugin-catalog/internal/plugin"
)

const (
	// UserAgent identifies the catalog to the index
	UserAgent = "plugin-catalog (https://github.com/snakemake/snakemake-plugin-catalog)"

	acceptSimpleJSON = "application/vnd.pypi.simple.v1+json"
	acceptJSON       = "application/json"
)

// Index is the package index as the catalog sees it
type Index interface {
	ListPackages(ctx context.Context) ([]string, error)
	FetchRelease(ctx context.Context, pkg string) (*plugin.Release, error)
}

// Client talks to a PyPI-compatible index
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Limiter    *Limiter
	Logger     hclog.Logger
}

// NewClient creates a new index client. The limiter is shared by all calls
// made through the returned client.
func NewClient(baseURL string, limiter *Limiter, logger hclog.Logger) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: time.Minute},
		Limiter:    limiter,
		Logger:     logging.OrNull(logger),
	}
}

// ListPackages returns every project name of the index, in index order
func (c *Client) ListPackages(ctx context.Context) ([]string, error) {
	endpoint := c.BaseURL + "/simple/"

	body, status, err := c.get(ctx, endpoint, acceptSimpleJSON)
	if err != nil {
		return nil, &DiscoveryError{URL: endpoint, Err: err}
	}
	if status != http.StatusOK {
		return nil, &DiscoveryError{URL: endpoint, Status: status}
	}

	var index simpleIndex
	if err := json.Unmarshal(body, &index); err != nil {
		return nil, &DiscoveryError{URL: endpoint, Err: fmt.Errorf("malformed listing: %w", err)}
	}

	packages := make([]string, 0, len(index.Projects))
	for _, p := range index.Projects {
		packages = append(packages, p.Name)
	}

	c.Logger.Debug("listed index", "url", endpoint, "packages", len(packages))
	return packages, nil
}

// FetchRelease returns the metadata of the latest release of pkg
func (c *Client) FetchRelease(ctx context.Context, pkg string) (*plugin.Release, error) {
	endpoint := fmt.Sprintf("%s/pypi/%s/json", c.BaseURL, url.PathEscape(pkg))

	body, status, err := c.get(ctx, endpoint, acceptJSON)
	if err != nil {
		return nil, &MetadataError{Package: pkg, Err: err}
	}
	if status != http.StatusOK {
		return nil, &MetadataError{Package: pkg, Status: status}
	}

	var doc projectDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &MetadataError{Package: pkg, Err: fmt.Errorf("malformed metadata: %w", err)}
	}
	if doc.Info.Version == "" {
		return nil, &MetadataError{Package: pkg, Err: fmt.Errorf("metadata has no version")}
	}

	release := &plugin.Release{
		Package:       pkg,
		Version:       doc.Info.Version,
		Summary:       doc.Info.Summary,
		Description:   plugin.DropTitle(doc.Info.Description),
		Authors:       plugin.ParseAuthors(doc.Info.Author, doc.Info.AuthorEmail),
		License:       doc.Info.License,
		RepositoryURL: strings.TrimRight(doc.Info.repository(), "/"),
	}
	if kind, ok := plugin.DetectRepositoryKind(release.RepositoryURL); ok {
		release.RepositoryKind = kind
	}

	return release, nil
}

func (c *Client) get(ctx context.Context, endpoint, accept string) ([]byte, int, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	c.Logger.Trace("index request", "url", endpoint, "status", resp.StatusCode)
	return body, resp.StatusCode, nil
}
