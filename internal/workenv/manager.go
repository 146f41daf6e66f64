package workenv

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/snakemake/plugin-catalog/internal/logging"
)

// Manager is the interface for environment-manager operations
type Manager interface {
	// Create materializes a new named environment with the given specs
	Create(ctx context.Context, env string, channels []string, specs ...string) error
	// Install installs packages into an environment with pip
	Install(ctx context.Context, env string, pkgs ...string) error
	// Run executes a command inside an environment and returns its stdout
	Run(ctx context.Context, env string, args ...string) ([]byte, error)
	// Remove deletes an environment
	Remove(ctx context.Context, env string) error
}

// Micromamba drives the micromamba command line
type Micromamba struct {
	Binary  string
	Timeout time.Duration
	Logger  hclog.Logger
}

// NewMicromamba creates a new micromamba manager
func NewMicromamba(binary string, timeout time.Duration, logger hclog.Logger) *Micromamba {
	if binary == "" {
		binary = "micromamba"
	}
	return &Micromamba{
		Binary:  binary,
		Timeout: timeout,
		Logger:  logging.OrNull(logger),
	}
}

// Create runs `micromamba create -n <env> -y [-c <channel>]... <specs>`
func (m *Micromamba) Create(ctx context.Context, env string, channels []string, specs ...string) error {
	args := []string{"create", "-n", env, "-y"}
	for _, ch := range channels {
		args = append(args, "-c", ch)
	}
	args = append(args, specs...)

	_, err := m.exec(ctx, args, true)
	return err
}

// Install runs `micromamba run -n <env> pip install <pkgs>`
func (m *Micromamba) Install(ctx context.Context, env string, pkgs ...string) error {
	args := append([]string{"run", "-n", env, "pip", "install"}, pkgs...)

	_, err := m.exec(ctx, args, true)
	return err
}

// Run runs `micromamba run -n <env> <args>` and returns stdout only
func (m *Micromamba) Run(ctx context.Context, env string, args ...string) ([]byte, error) {
	return m.exec(ctx, append([]string{"run", "-n", env}, args...), false)
}

// Remove runs `micromamba env remove -n <env> -y`
func (m *Micromamba) Remove(ctx context.Context, env string) error {
	_, err := m.exec(ctx, []string{"env", "remove", "-n", env, "-y"}, true)
	return err
}

// exec runs one blocking invocation. The child is always waited for; on
// timeout it is killed first. With combined, stderr is merged into the
// returned output, otherwise only stderr is attached to errors.
func (m *Micromamba) exec(ctx context.Context, args []string, combined bool) ([]byte, error) {
	if m.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, m.Binary, args...)
	cmd.WaitDelay = 10 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if combined {
		cmd.Stderr = &stdout
	} else {
		cmd.Stderr = &stderr
	}

	m.Logger.Debug("running environment manager", "args", args)
	start := time.Now()
	err := cmd.Run()
	m.Logger.Trace("environment manager finished", "args", args, "elapsed", time.Since(start))

	if err != nil {
		cmdErr := &CommandError{
			Args:     append([]string{m.Binary}, args...),
			Output:   stdout.String(),
			ExitCode: -1,
			Err:      err,
		}
		if !combined {
			cmdErr.Output = stderr.String()
			cmdErr.Stdout = stdout.String()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitCode()
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			cmdErr.TimedOut = true
		}
		return nil, cmdErr
	}

	return stdout.Bytes(), nil
}
