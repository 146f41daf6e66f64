package catalog

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Report lists the outcome of every collected package
type Report struct {
	Started  time.Time
	Finished time.Time
	Results  []*CollectionResult
	Unknown  map[string][]string // allowed names without candidate, with suggestions
}

func (r *Report) add(res *CollectionResult) {
	r.Results = append(r.Results, res)
}

// Counts returns the number of packages per status
func (r *Report) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, res := range r.Results {
		counts[res.Status]++
	}
	return counts
}

// Failed returns the results that did not fully succeed
func (r *Report) Failed() []*CollectionResult {
	var failed []*CollectionResult
	for _, res := range r.Results {
		if res.Status != StatusOK {
			failed = append(failed, res)
		}
	}
	return failed
}

// WriteTable renders the report as a table
func (r *Report) WriteTable(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Category", "Plugin", "Version", "Status", "Settings", "Docs", "Time"})
	for _, res := range r.Results {
		version := ""
		if res.Release != nil {
			version = res.Release.Version
		}
		t.AppendRow(table.Row{
			res.Candidate.Category,
			res.Candidate.Name,
			version,
			res.Status,
			len(res.Settings),
			docsColumn(res),
			res.Duration.Round(time.Second),
		})
	}

	counts := r.Counts()
	statuses := make([]string, 0, len(counts))
	for status, n := range counts {
		statuses = append(statuses, fmt.Sprintf("%s: %d", status, n))
	}
	sort.Strings(statuses)
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d packages", len(r.Results)), "", strings.Join(statuses, ", ")})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
	})
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
}

func docsColumn(res *CollectionResult) string {
	var parts []string
	if res.HasIntro() {
		parts = append(parts, "intro")
	}
	if res.HasFurther() {
		parts = append(parts, "further")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "+")
}
