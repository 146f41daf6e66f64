package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/snakemake/plugin-catalog/internal/catalog"
	"github.com/snakemake/plugin-catalog/internal/config"
	"github.com/snakemake/plugin-catalog/internal/i18n"
	"github.com/snakemake/plugin-catalog/internal/render"
	"github.com/spf13/cobra"
)

var (
	buildOnly       []string
	buildJobs       int
	buildOutput     string
	buildCategories []string
	buildTemplates  string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Collect every plugin and write the catalog pages",
	Long: `Collect every plugin of the configured categories and write one page per
plugin, the aggregate index.rst and catalog.json into the output directory.

Each category directory is wiped before its plugins are collected.

Example:
  plugin-catalog build
  plugin-catalog build --category executor --jobs 4
  plugin-catalog build --only snakemake-executor-plugin-slurm`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringSliceVar(&buildOnly, "only", nil, "only collect these packages (default $"+config.EnvPackages+")")
	buildCmd.Flags().IntVarP(&buildJobs, "jobs", "j", 0, "packages collected at once (default from config)")
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "output directory (default from config)")
	buildCmd.Flags().StringSliceVar(&buildCategories, "category", nil, "categories to build (default from config)")
	buildCmd.Flags().StringVar(&buildTemplates, "templates", "", "directory with page templates overriding the built-in ones")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	if buildJobs > 0 {
		cfg.Jobs = buildJobs
	}
	if buildOutput != "" {
		cfg.OutputDir = buildOutput
	}
	if len(buildOnly) > 0 {
		cfg.Packages = buildOnly
	}
	if buildTemplates != "" {
		cfg.TemplatesDir = buildTemplates
	}

	cats, err := categories(buildCategories)
	if err != nil {
		return err
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	renderer, err := render.New(cfg.TemplatesDir)
	if err != nil {
		return err
	}

	builder := catalog.NewBuilder(p.index, p.provisioner, p.extractor, p.fetcher, renderer, catalog.Options{
		Host:       cfg.Host,
		Categories: cats,
		OutputDir:  cfg.OutputDir,
		Jobs:       cfg.Jobs,
		AllowList:  cfg.Packages,
	}, logger.Named("catalog"))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	report, err := builder.Build(ctx)
	if report != nil && len(report.Results) > 0 {
		fmt.Println()
		report.WriteTable(os.Stdout)
	}
	if err != nil {
		return err
	}

	for name, suggestions := range report.Unknown {
		fmt.Println(i18n.T("UnknownPackage", map[string]any{"Package": name}))
		for _, s := range suggestions {
			fmt.Printf("  %s\n", s)
		}
	}

	fmt.Println()
	fmt.Println(i18n.T("BuildDone", map[string]any{
		"Count":  len(report.Results),
		"Failed": len(report.Failed()),
		"Output": cfg.OutputDir,
	}, len(report.Results)))
	return nil
}
