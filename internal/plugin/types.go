package plugin

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Category is the kind of extension point a plugin implements
type Category string

const (
	CategoryExecutor  Category = "executor"
	CategoryStorage   Category = "storage"
	CategoryReport    Category = "report"
	CategoryLogger    Category = "logger"
	CategoryScheduler Category = "scheduler"
)

// Categories lists every known category in catalog order
var Categories = []Category{
	CategoryExecutor,
	CategoryStorage,
	CategoryReport,
	CategoryLogger,
	CategoryScheduler,
}

// ParseCategory validates a category name
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == strings.ToLower(strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown plugin category %q", s)
}

// Prefix returns the index name prefix of this category,
// e.g. "snakemake-executor-plugin-"
func (c Category) Prefix(host string) string {
	return fmt.Sprintf("%s-%s-plugin-", host, c)
}

// RegistryModule returns the module holding the category's plugin registry
func (c Category) RegistryModule(host string) string {
	return fmt.Sprintf("%s_interface_%s_plugins.registry", host, c)
}

// RegistryType returns the class name of the category's plugin registry
func (c Category) RegistryType() string {
	s := string(c)
	if s == "" {
		return "PluginRegistry"
	}
	return strings.ToUpper(s[:1]) + s[1:] + "PluginRegistry"
}

// PageType returns the template name used to render plugins of this category
func (c Category) PageType() string {
	return string(c) + "_plugin"
}

// Candidate is an index package that follows a category's naming convention
type Candidate struct {
	Package  string   `json:"package"`  // full index name
	Name     string   `json:"name"`     // display name, prefix stripped
	Category Category `json:"category"`
}

// RepositoryKind identifies the source-control host of a repository URL
type RepositoryKind string

const (
	RepositoryGitHub RepositoryKind = "github"
	RepositoryGitLab RepositoryKind = "gitlab"
)

// DetectRepositoryKind matches the URL prefix against known hosts
func DetectRepositoryKind(url string) (RepositoryKind, bool) {
	switch {
	case strings.HasPrefix(url, "https://github.com"):
		return RepositoryGitHub, true
	case strings.HasPrefix(url, "https://gitlab.com"):
		return RepositoryGitLab, true
	}
	return "", false
}

// Release is the index metadata of the latest release of a package
type Release struct {
	Package        string         `json:"package"`
	Version        string         `json:"version"`
	Summary        string         `json:"summary,omitempty"`
	Description    string         `json:"description,omitempty"`
	Authors        []string       `json:"authors,omitempty"`
	License        string         `json:"license,omitempty"`
	RepositoryURL  string         `json:"repository,omitempty"`
	RepositoryKind RepositoryKind `json:"repositoryKind,omitempty"`
}

// HasRepository reports whether the release declares a repository URL
func (r *Release) HasRepository() bool {
	return r != nil && r.RepositoryURL != ""
}

// ExampleQuery is one usage example a storage provider declares
type ExampleQuery struct {
	Query       string `json:"query"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// Auxiliary holds category-specific data beyond settings
type Auxiliary map[string]any

// ExampleQueries decodes the storage example queries, if any
func (a Auxiliary) ExampleQueries() []ExampleQuery {
	raw, ok := a["example_queries"]
	if !ok {
		return nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var queries []ExampleQuery
	if err := json.Unmarshal(data, &queries); err != nil {
		return nil
	}
	return queries
}
