package config

import (
	"os"
	"path/filepath"
)

const (
	// DefaultConfigFile is looked up in the working directory
	DefaultConfigFile = "plugin-catalog.yaml"
	// DotEnvFile is loaded from the working directory when present
	DotEnvFile = ".env"
	// PageExt is the extension of generated pages
	PageExt = ".rst"
)

// PluginsDir returns the directory holding the pages of one category
// <output>/plugins/<category>/
func PluginsDir(outputDir, category string) string {
	return filepath.Join(outputDir, "plugins", category)
}

// PagePath returns the page path of one plugin
// <output>/plugins/<category>/<name>.rst
func PagePath(outputDir, category, name string) string {
	return filepath.Join(PluginsDir(outputDir, category), name+PageExt)
}

// IndexPath returns the aggregate index page path
// <output>/index.rst
func IndexPath(outputDir string) string {
	return filepath.Join(outputDir, "index"+PageExt)
}

// CatalogPath returns the machine-readable catalog path
// <output>/catalog.json
func CatalogPath(outputDir string) string {
	return filepath.Join(outputDir, "catalog.json")
}

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// ResetDir removes a directory with its content and recreates it empty
func ResetDir(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return err
	}
	return EnsureDir(path)
}
