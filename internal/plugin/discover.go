package plugin

import "strings"

// Discover returns the packages that follow the naming convention of
// category, in index order, with their display names.
func Discover(packages []string, host string, category Category) []Candidate {
	prefix := category.Prefix(host)

	var candidates []Candidate
	for _, pkg := range packages {
		if !strings.HasPrefix(pkg, prefix) {
			continue
		}
		name := strings.TrimPrefix(pkg, prefix)
		if name == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			Package:  pkg,
			Name:     name,
			Category: category,
		})
	}
	return candidates
}

// DiscoverAll groups the candidates of every given category
func DiscoverAll(packages []string, host string, categories []Category) map[Category][]Candidate {
	result := make(map[Category][]Candidate, len(categories))
	for _, c := range categories {
		result[c] = Discover(packages, host, c)
	}
	return result
}

// FilterAllowed keeps only the candidates whose package is allowed.
// An empty allow-list keeps everything.
func FilterAllowed(candidates []Candidate, allowed map[string]bool) []Candidate {
	if len(allowed) == 0 {
		return candidates
	}
	var out []Candidate
	for _, c := range candidates {
		if allowed[c.Package] {
			out = append(out, c)
		}
	}
	return out
}
