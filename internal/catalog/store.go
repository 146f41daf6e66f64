package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/snakemake/plugin-catalog/internal/config"
	"github.com/snakemake/plugin-catalog/internal/plugin"
)

// Catalog is the machine-readable summary written next to the pages
type Catalog struct {
	Host      string              `json:"host"`
	Generated time.Time           `json:"generated"`
	Index     map[string][]string `json:"index"`
	Plugins   []Entry             `json:"plugins"`
}

// Entry summarizes one indexed plugin
type Entry struct {
	Category    plugin.Category `json:"category"`
	Name        string          `json:"name"`
	Package     string          `json:"package"`
	Version     string          `json:"version"`
	Summary     string          `json:"summary,omitempty"`
	Authors     []string        `json:"authors,omitempty"`
	Repository  string          `json:"repository,omitempty"`
	Status      Status          `json:"status"`
	Error       string          `json:"error,omitempty"`
	DocsWarning string          `json:"docsWarning,omitempty"`
	Settings    []string        `json:"settings"`
	Page        string          `json:"page"`
}

// NewCatalog summarizes the indexed results of a report
func NewCatalog(host string, categories []plugin.Category, report *Report) *Catalog {
	c := &Catalog{
		Host:      host,
		Generated: time.Now().UTC(),
		Index:     make(map[string][]string, len(categories)),
		Plugins:   []Entry{},
	}
	for _, category := range categories {
		c.Index[string(category)] = []string{}
	}

	for _, res := range report.Results {
		if !res.Indexed() {
			continue
		}
		cand := res.Candidate
		c.Index[string(cand.Category)] = append(c.Index[string(cand.Category)], cand.Name)

		entry := Entry{
			Category:    cand.Category,
			Name:        cand.Name,
			Package:     cand.Package,
			Status:      res.Status,
			Error:       res.Error,
			DocsWarning: res.DocsWarning,
			Settings:    make([]string, 0, len(res.Settings)),
			Page:        path.Join("plugins", string(cand.Category), cand.Name+config.PageExt),
		}
		if rel := res.Release; rel != nil {
			entry.Version = rel.Version
			entry.Summary = rel.Summary
			entry.Authors = rel.Authors
			entry.Repository = rel.RepositoryURL
		}
		for _, s := range res.Settings {
			entry.Settings = append(entry.Settings, s.Name)
		}
		c.Plugins = append(c.Plugins, entry)
	}
	return c
}

// WriteCatalog writes c as indented JSON
func WriteCatalog(file string, c *Catalog) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if err := config.EnsureDir(filepath.Dir(file)); err != nil {
		return err
	}
	return os.WriteFile(file, append(data, '\n'), 0644)
}

// LoadCatalog reads a catalog written by a previous build
func LoadCatalog(file string) (*Catalog, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", file, err)
	}

	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", file, err)
	}
	return &c, nil
}
