package workenv

import (
	"errors"
	"fmt"
	"strings"
)

// ErrReleased is returned when an environment is used after Release
var ErrReleased = errors.New("environment already released")

// CommandError represents a failed environment-manager invocation
type CommandError struct {
	Args     []string
	Output   string // combined output, or stderr for Run
	Stdout   string // stdout for Run
	ExitCode int
	TimedOut bool
	Err      error
}

func (e *CommandError) Error() string {
	cmd := strings.Join(e.Args, " ")
	if e.TimedOut {
		return fmt.Sprintf("'%s' timed out: %s", cmd, e.Output)
	}
	return fmt.Sprintf("'%s' exited with code %d: %s", cmd, e.ExitCode, e.Output)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Attempt records one failed provisioning strategy
type Attempt struct {
	Strategy string // "binary" or "python=3.X"
	Err      error
}

// ProvisioningError means no runtime configuration could install a package
// together with the host framework
type ProvisioningError struct {
	Package  string
	Version  string
	Attempts []Attempt
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("cannot install %s==%s with the host framework (%d attempts): %s",
		e.Package, e.Version, len(e.Attempts), e.LastOutput())
}

// LastOutput returns the captured output of the last failed attempt
func (e *ProvisioningError) LastOutput() string {
	if len(e.Attempts) == 0 {
		return ""
	}
	last := e.Attempts[len(e.Attempts)-1].Err
	var cmdErr *CommandError
	if errors.As(last, &cmdErr) {
		return strings.TrimSpace(cmdErr.Output)
	}
	if last != nil {
		return last.Error()
	}
	return ""
}

func (e *ProvisioningError) Unwrap() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1].Err
}
