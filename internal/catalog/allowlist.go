package catalog

import (
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/snakemake/plugin-catalog/internal/plugin"
)

// maxSuggestions bounds the "did you mean" list of an unknown package
const maxSuggestions = 3

// AllowList restricts a build to named packages. An empty list allows all.
type AllowList struct {
	names []string
	set   map[string]bool
}

// NewAllowList creates an allow-list from package names, ignoring blanks
// and duplicates
func NewAllowList(names []string) *AllowList {
	a := &AllowList{set: make(map[string]bool)}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || a.set[name] {
			continue
		}
		a.set[name] = true
		a.names = append(a.names, name)
	}
	return a
}

// Empty reports whether everything is allowed
func (a *AllowList) Empty() bool {
	return len(a.names) == 0
}

// Set returns the allowed names for plugin.FilterAllowed
func (a *AllowList) Set() map[string]bool {
	return a.set
}

// Unknown returns the allowed names that match none of the candidates,
// each with the closest candidate packages
func (a *AllowList) Unknown(candidates []plugin.Candidate) map[string][]string {
	known := make(map[string]bool, len(candidates))
	packages := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if !known[c.Package] {
			known[c.Package] = true
			packages = append(packages, c.Package)
		}
	}

	unknown := make(map[string][]string)
	for _, name := range a.names {
		if known[name] {
			continue
		}
		unknown[name] = Suggest(name, packages)
	}
	return unknown
}

// Suggest returns up to three of packages that fuzzily match name, best first
func Suggest(name string, packages []string) []string {
	matches := fuzzy.Find(name, packages)
	if len(matches) == 0 {
		// retry with the display name only
		if i := strings.LastIndex(name, "-plugin-"); i >= 0 {
			matches = fuzzy.Find(name[i+len("-plugin-"):], packages)
		}
	}

	suggestions := []string{}
	for _, m := range matches {
		if len(suggestions) == maxSuggestions {
			break
		}
		suggestions = append(suggestions, m.Str)
	}
	return suggestions
}
