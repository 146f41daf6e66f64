package catalog

import (
	"time"

	"github.com/snakemake/plugin-catalog/internal/plugin"
)

// Status is the outcome of collecting one package
type Status string

const (
	StatusOK                 Status = "ok"
	StatusProvisioningFailed Status = "provisioning-failed"
	StatusExtractionFailed   Status = "extraction-failed"
	StatusMetadataFailed     Status = "metadata-failed" // skipped, not indexed
	StatusFailed             Status = "failed"          // page replaced by a bare error page
)

// CollectionResult is everything gathered about one package. Either Error
// is empty, or Settings and Auxiliary are.
type CollectionResult struct {
	Candidate   plugin.Candidate
	Release     *plugin.Release
	Settings    []plugin.Setting
	Auxiliary   plugin.Auxiliary
	DocsIntro   string
	DocsFurther string
	DocsWarning string
	Error       string
	ErrorHint   string
	Status      Status
	Environment string // strategy that provisioned the package
	Duration    time.Duration
}

// Indexed reports whether the package made it past the metadata fetch.
// Every such package has a page and an index entry.
func (r *CollectionResult) Indexed() bool { return r.Release != nil }

// HasIntro reports whether docs/intro.md was found
func (r *CollectionResult) HasIntro() bool { return r.DocsIntro != "" }

// HasFurther reports whether docs/further.md was found
func (r *CollectionResult) HasFurther() bool { return r.DocsFurther != "" }

// fail records an introspection failure, discarding any partial data
func (r *CollectionResult) fail(status Status, err error, hint string) {
	r.Status = status
	r.Error = err.Error()
	r.ErrorHint = hint
	r.Settings = []plugin.Setting{}
	r.Auxiliary = plugin.Auxiliary{}
}

// Index maps each category to its page names in processing order
type Index map[plugin.Category][]string

// Add appends name to the category unless already present
func (idx Index) Add(category plugin.Category, name string) {
	for _, existing := range idx[category] {
		if existing == name {
			return
		}
	}
	idx[category] = append(idx[category], name)
}
