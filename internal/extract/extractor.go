// Package extract introspects installed plugins through a small driver
// program executed inside their provisioned environment.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/snakemake/plugin-catalog/internal/logging"
	"github.com/snakemake/plugin-catalog/internal/plugin"
	"github.com/snakemake/plugin-catalog/internal/workenv"
)

// Runner executes a command inside a named environment
type Runner interface {
	Run(ctx context.Context, env string, args ...string) ([]byte, error)
}

// Extractor runs driver queries against plugins
type Extractor struct {
	runner  Runner
	host    string
	python  string
	timeout time.Duration
	logger  hclog.Logger
}

// NewExtractor creates a new extractor for plugins of host
func NewExtractor(runner Runner, host string, timeout time.Duration, logger hclog.Logger) *Extractor {
	return &Extractor{
		runner:  runner,
		host:    host,
		python:  "python",
		timeout: timeout,
		logger:  logging.OrNull(logger),
	}
}

// Extract runs q against the plugin c installed in env and returns the raw
// JSON result. Plugin and registry names travel as arguments, never as code.
func (e *Extractor) Extract(ctx context.Context, env *workenv.Environment, c plugin.Candidate, q Query) (json.RawMessage, error) {
	if env == nil {
		return nil, &ExtractionError{Op: q.Op, Package: c.Package, Err: errors.New("no environment")}
	}
	if env.Released() {
		return nil, &ExtractionError{Op: q.Op, Package: c.Package, Err: workenv.ErrReleased}
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	args := []string{
		e.python, "-c", driverSource,
		fmt.Sprint(ProtocolVersion),
		string(q.Op),
		c.Category.RegistryModule(e.host),
		c.Category.RegistryType(),
		c.Name,
	}
	if q.Selector != "" {
		args = append(args, q.Selector)
	}

	e.logger.Debug("querying plugin", "package", c.Package, "op", q.Op, "env", env.Name)
	stdout, err := e.runner.Run(ctx, env.Name, args...)
	if err != nil {
		extErr := &ExtractionError{Op: q.Op, Package: c.Package, Err: err}
		// a failing driver still reports the traceback in its envelope
		if envl, perr := parseEnvelope(commandStdout(err, stdout)); perr == nil && !envl.OK {
			extErr.Output = envl.Error
		} else {
			var cmdErr *workenv.CommandError
			if errors.As(err, &cmdErr) {
				extErr.Output = cmdErr.Output
			}
		}
		return nil, extErr
	}

	envl, err := parseEnvelope(stdout)
	if err != nil {
		return nil, &ExtractionError{Op: q.Op, Package: c.Package, Output: string(stdout), Err: err}
	}
	if !envl.OK {
		return nil, &ExtractionError{Op: q.Op, Package: c.Package, Output: envl.Error, Err: errors.New("plugin rejected query")}
	}

	return envl.Result, nil
}

// Settings returns the declared settings of plugin c
func (e *Extractor) Settings(ctx context.Context, env *workenv.Environment, c plugin.Candidate) ([]plugin.Setting, error) {
	raw, err := e.Extract(ctx, env, c, Query{Op: OpGetSettings})
	if err != nil {
		return nil, err
	}

	var settings []plugin.Setting
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, &ExtractionError{Op: OpGetSettings, Package: c.Package, Output: string(raw), Err: err}
	}
	if settings == nil {
		settings = []plugin.Setting{}
	}
	return settings, nil
}

// Auxiliary returns the category-specific data of plugin c. Categories
// without auxiliary data yield an empty map.
func (e *Extractor) Auxiliary(ctx context.Context, env *workenv.Environment, c plugin.Candidate) (plugin.Auxiliary, error) {
	fn, ok := auxiliaryTable[c.Category]
	if !ok {
		fn = noAuxiliary
	}
	return fn(ctx, e, env, c)
}

// commandStdout returns whatever stdout a failed command produced
func commandStdout(err error, stdout []byte) []byte {
	var cmdErr *workenv.CommandError
	if len(stdout) == 0 && errors.As(err, &cmdErr) {
		return []byte(cmdErr.Stdout)
	}
	return stdout
}
