package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/snakemake/plugin-catalog/internal/catalog"
	"github.com/snakemake/plugin-catalog/internal/config"
	"github.com/snakemake/plugin-catalog/internal/i18n"
	"github.com/snakemake/plugin-catalog/internal/tui"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the last built catalog interactively",
	Long: `Open an interactive finder over the last built catalog.json. Type to
filter, Tab to mark plugins and Enter to print the page paths of the
marked plugins.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func runBrowse(cmd *cobra.Command, args []string) error {
	outputDir := config.Get().OutputDir

	c, err := catalog.LoadCatalog(config.CatalogPath(outputDir))
	if err != nil {
		return fmt.Errorf("%s: %w", i18n.T("NoCatalog", nil), err)
	}

	result, err := tui.RunCatalogFinder(c)
	if err != nil {
		return err
	}
	if result.Cancelled {
		return nil
	}

	for _, e := range result.Selected {
		fmt.Println(filepath.Join(outputDir, filepath.FromSlash(e.Page)))
	}
	return nil
}
