// Package workenv provisions disposable, isolated runtime environments in
// which a single plugin package is installed for introspection.
package workenv

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/snakemake/plugin-catalog/internal/logging"
)

// Environment is a provisioned environment holding one package version
type Environment struct {
	Name     string
	Package  string
	Version  string
	Strategy string

	mu       sync.Mutex
	released bool
}

// Released reports whether the environment has been torn down
func (e *Environment) Released() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.released
}

// Options configures the provisioning fallback search
type Options struct {
	Channels           []string
	HostPackage        string          // installed with pip
	HostMinimalPackage string          // installed from the binary channels
	Python             *semver.Version // newest interpreter tried
	Span               int             // number of minor versions tried
}

// Provisioner creates and destroys one environment per package version
type Provisioner struct {
	manager Manager
	opts    Options
	logger  hclog.Logger
	newName func() string
}

// NewProvisioner creates a new provisioner on top of manager
func NewProvisioner(manager Manager, opts Options, logger hclog.Logger) *Provisioner {
	return &Provisioner{
		manager: manager,
		opts:    opts,
		logger:  logging.OrNull(logger),
		newName: func() string {
			return "pc-" + strings.ReplaceAll(uuid.NewString(), "-", "")
		},
	}
}

// Acquire provisions an environment with pkg pinned to version. It first
// tries the binary channels, then a fresh pip environment per Python minor
// version, newest first. Every failed attempt is torn down before the next.
func (p *Provisioner) Acquire(ctx context.Context, pkg, version string) (*Environment, error) {
	pinned := fmt.Sprintf("%s==%s", pkg, version)
	provErr := &ProvisioningError{Package: pkg, Version: version}

	name := p.newName()
	p.logger.Debug("trying binary channels", "package", pkg, "version", version, "env", name)
	err := p.manager.Create(ctx, name, p.opts.Channels, pinned, p.opts.HostMinimalPackage)
	if err == nil {
		return &Environment{Name: name, Package: pkg, Version: version, Strategy: "binary"}, nil
	}
	provErr.Attempts = append(provErr.Attempts, Attempt{Strategy: "binary", Err: err})
	p.discard(name)

	for _, py := range PythonCandidates(p.opts.Python, p.opts.Span) {
		if ctx.Err() != nil {
			provErr.Attempts = append(provErr.Attempts, Attempt{Strategy: "python=" + py, Err: ctx.Err()})
			return nil, provErr
		}

		name = p.newName()
		strategy := "python=" + py
		p.logger.Debug("trying pip install", "package", pkg, "version", version, "python", py, "env", name)

		if err := p.manager.Create(ctx, name, p.opts.Channels, strategy, "pip"); err != nil {
			provErr.Attempts = append(provErr.Attempts, Attempt{Strategy: strategy, Err: err})
			p.discard(name)
			continue
		}
		if err := p.manager.Install(ctx, name, p.opts.HostPackage, pinned); err != nil {
			provErr.Attempts = append(provErr.Attempts, Attempt{Strategy: strategy, Err: err})
			p.discard(name)
			continue
		}

		return &Environment{Name: name, Package: pkg, Version: version, Strategy: strategy}, nil
	}

	return nil, provErr
}

// Release removes the environment. Releasing nil or an already released
// environment does nothing.
func (p *Provisioner) Release(ctx context.Context, env *Environment) error {
	if env == nil {
		return nil
	}

	env.mu.Lock()
	if env.released {
		env.mu.Unlock()
		return nil
	}
	env.released = true
	env.mu.Unlock()

	// teardown must outlive a cancelled run
	if err := p.manager.Remove(context.WithoutCancel(ctx), env.Name); err != nil {
		p.logger.Warn("failed to remove environment", "env", env.Name, "package", env.Package, "error", err)
		return err
	}
	p.logger.Debug("removed environment", "env", env.Name, "package", env.Package)
	return nil
}

// discard tears down a failed attempt, logging instead of failing
func (p *Provisioner) discard(name string) {
	if err := p.manager.Remove(context.Background(), name); err != nil {
		p.logger.Debug("failed to remove partial environment", "env", name, "error", err)
	}
}

// PythonCandidates returns "3.N", "3.N-1", ... for span minor versions
// starting at current, never going below minor 0.
func PythonCandidates(current *semver.Version, span int) []string {
	if current == nil || span < 1 {
		return nil
	}
	minor := int(current.Minor())
	versions := make([]string, 0, span)
	for i := 0; i < span && minor-i >= 0; i++ {
		versions = append(versions, fmt.Sprintf("%d.%d", current.Major(), minor-i))
	}
	return versions
}
