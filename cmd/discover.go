package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/snakemake/plugin-catalog/internal/config"
	"github.com/snakemake/plugin-catalog/internal/i18n"
	"github.com/snakemake/plugin-catalog/internal/plugin"
	"github.com/snakemake/plugin-catalog/internal/progress"
	"github.com/snakemake/plugin-catalog/internal/pypi"
	"github.com/spf13/cobra"
)

var discoverCmd = &cobra.Command{
	Use:   "discover [category...]",
	Short: "List the plugin packages of the index",
	Long: `List the packages of the index that follow the naming convention of a
plugin category, in index order. Nothing is installed.

Example:
  plugin-catalog discover
  plugin-catalog discover executor storage`,
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	cats, err := categories(args)
	if err != nil {
		return err
	}

	limiter := pypi.NewLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Period.Std())
	client := pypi.NewClient(cfg.IndexURL, limiter, logger.Named("pypi"))

	spinner := progress.NewSpinner(os.Stderr, i18n.T("ListingIndex", map[string]any{"URL": cfg.IndexURL}))
	spinner.Start()
	packages, err := client.ListPackages(cmd.Context())
	spinner.Stop(err == nil)
	if err != nil {
		return err
	}

	grouped := plugin.DiscoverAll(packages, cfg.Host, cats)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Category", "Plugin", "Package"})
	total := 0
	for _, c := range cats {
		for _, cand := range grouped[c] {
			t.AppendRow(table.Row{c, cand.Name, cand.Package})
			total++
		}
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
	})
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()

	fmt.Println()
	fmt.Println(i18n.T("DiscoveredPlugins", map[string]any{"Count": total, "Packages": len(packages)}, total))
	return nil
}
