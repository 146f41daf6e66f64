package render

import "github.com/snakemake/plugin-catalog/internal/plugin"

// PluginPage is the data of one plugin page
type PluginPage struct {
	Host        string
	Category    plugin.Category
	Name        string
	Package     string
	Release     *plugin.Release
	Description string // reStructuredText
	DocsIntro   string // reStructuredText, may be empty
	DocsFurther string // reStructuredText, may be empty
	DocsWarning string
	Error       string
	ErrorHint   string
	Settings    []plugin.Setting
	Auxiliary   plugin.Auxiliary
}

// ExampleQueries is a shortcut for templates of storage pages
func (p PluginPage) ExampleQueries() []plugin.ExampleQuery {
	return p.Auxiliary.ExampleQueries()
}

// IndexPage is the data of the aggregate index
type IndexPage struct {
	Host       string
	Categories []IndexSection
}

// IndexSection lists the pages of one category in catalog order
type IndexSection struct {
	Category plugin.Category
	Plugins  []string
}
