package extract

import (
	"fmt"
	"strings"
)

// ExtractionError means the plugin could not be introspected: it is not a
// valid plugin, is incompatible with the host framework, or crashed.
type ExtractionError struct {
	Op      Op
	Package string
	Output  string
	Err     error
}

func (e *ExtractionError) Error() string {
	msg := fmt.Sprintf("%s of %s failed", e.Op, e.Package)
	if out := strings.TrimSpace(e.Output); out != "" {
		return msg + ": " + out
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
