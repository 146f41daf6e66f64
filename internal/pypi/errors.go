package pypi

import "fmt"

// DiscoveryError means the index listing could not be obtained.
// It aborts a catalog run.
type DiscoveryError struct {
	URL    string
	Status int
	Err    error
}

func (e *DiscoveryError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("listing packages from %s failed with status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("listing packages from %s failed: %v", e.URL, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// MetadataError means the release metadata of one package could not be
// obtained. The package is skipped.
type MetadataError struct {
	Package string
	Status  int
	Err     error
}

func (e *MetadataError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetching metadata of %s failed with status %d", e.Package, e.Status)
	}
	return fmt.Sprintf("fetching metadata of %s failed: %v", e.Package, e.Err)
}

func (e *MetadataError) Unwrap() error {
	return e.Err
}
