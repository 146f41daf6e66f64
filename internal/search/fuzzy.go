package search

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/snakemake/plugin-catalog/internal/catalog"
)

// SearchResult represents a search result
type SearchResult struct {
	Entry catalog.Entry
	Score int // Higher is better
}

// EntrySearchable wraps catalog entries for fuzzy searching
type EntrySearchable struct {
	Entries []catalog.Entry
}

// String returns the searchable string for an entry
func (e EntrySearchable) String(i int) string {
	return Text(e.Entries[i])
}

// Len returns the number of entries
func (e EntrySearchable) Len() int {
	return len(e.Entries)
}

// Text is the lower-cased text an entry is matched against
func Text(entry catalog.Entry) string {
	parts := []string{entry.Name, entry.Package, string(entry.Category)}

	if entry.Summary != "" {
		parts = append(parts, entry.Summary)
	}

	parts = append(parts, entry.Authors...)
	parts = append(parts, entry.Settings...)

	return strings.ToLower(strings.Join(parts, " "))
}

// FuzzySearch performs a fuzzy search across all catalog entries
func FuzzySearch(entries []catalog.Entry, query string) []SearchResult {
	query = strings.ToLower(query)
	if query == "" || len(entries) == 0 {
		return nil
	}

	matches := fuzzy.FindFrom(query, EntrySearchable{Entries: entries})

	results := make([]SearchResult, 0, len(matches))
	for _, match := range matches {
		results = append(results, SearchResult{
			Entry: entries[match.Index],
			Score: match.Score,
		})
	}

	// Sort by score (descending)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

// SimpleSearch performs a simple substring search
func SimpleSearch(entries []catalog.Entry, query string) []SearchResult {
	var results []SearchResult
	query = strings.ToLower(query)

	for _, entry := range entries {
		if strings.Contains(Text(entry), query) {
			results = append(results, SearchResult{
				Entry: entry,
				Score: 100, // Default score for simple matches
			})
		}
	}

	return results
}

// Search prefers substring matches and falls back to fuzzy matching
func Search(entries []catalog.Entry, query string) []SearchResult {
	if results := SimpleSearch(entries, query); len(results) > 0 {
		return results
	}
	return FuzzySearch(entries, query)
}
