package cmd

import (
	"github.com/snakemake/plugin-catalog/internal/config"
	"github.com/snakemake/plugin-catalog/internal/docs"
	"github.com/snakemake/plugin-catalog/internal/extract"
	"github.com/snakemake/plugin-catalog/internal/pypi"
	"github.com/snakemake/plugin-catalog/internal/workenv"
)

// pipeline holds the collaborators shared by build and inspect
type pipeline struct {
	index       *pypi.Client
	manager     *workenv.Micromamba
	provisioner *workenv.Provisioner
	extractor   *extract.Extractor
	fetcher     *docs.Fetcher
}

func newPipeline(cfg *config.Config) (*pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	python, err := cfg.PythonVersion()
	if err != nil {
		return nil, err
	}

	limiter := pypi.NewLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Period.Std())
	manager := workenv.NewMicromamba(cfg.Provision.Binary, cfg.Provision.Timeout.Std(), logger.Named("workenv"))

	return &pipeline{
		index:   pypi.NewClient(cfg.IndexURL, limiter, logger.Named("pypi")),
		manager: manager,
		provisioner: workenv.NewProvisioner(manager, workenv.Options{
			Channels:           cfg.Provision.Channels,
			HostPackage:        cfg.Provision.HostPackage,
			HostMinimalPackage: cfg.Provision.HostMinimalPackage,
			Python:             python,
			Span:               cfg.Python.Span,
		}, logger.Named("workenv")),
		extractor: extract.NewExtractor(manager, cfg.Host, cfg.Extract.Timeout.Std(), logger.Named("extract")),
		fetcher:   docs.NewFetcher(cfg.Docs.Branches, cfg.Docs.Timeout.Std(), logger.Named("docs")),
	}, nil
}
