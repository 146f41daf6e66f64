package cmd

import (
	"fmt"

	"github.com/snakemake/plugin-catalog/internal/catalog"
	"github.com/snakemake/plugin-catalog/internal/config"
	"github.com/snakemake/plugin-catalog/internal/i18n"
	"github.com/snakemake/plugin-catalog/internal/search"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Search the last built catalog",
	Long: `Search the plugins of the last built catalog.json using substring and
fuzzy matching.

The search looks through plugin names, packages, summaries, authors and
setting names.

Example:
  plugin-catalog search slurm
  plugin-catalog search s3`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	keyword := args[0]

	c, err := catalog.LoadCatalog(config.CatalogPath(config.Get().OutputDir))
	if err != nil {
		return fmt.Errorf("%s: %w", i18n.T("NoCatalog", nil), err)
	}

	results := search.Search(c.Plugins, keyword)

	if len(results) == 0 {
		fmt.Println(i18n.T("NoResults", map[string]any{"Keyword": keyword}))
		return nil
	}

	// Print results
	fmt.Println(i18n.T("SearchResults", map[string]any{"Count": len(results)}, len(results)))
	fmt.Println()

	for _, r := range results {
		e := r.Entry
		fmt.Printf("  %s/%s (v%s)\n", e.Category, e.Name, e.Version)

		if e.Summary != "" {
			fmt.Printf("    %s\n", e.Summary)
		}

		if e.Status != catalog.StatusOK {
			fmt.Printf("    Status: %s\n", e.Status)
		}

		fmt.Printf("    Page: %s\n", e.Page)
		fmt.Println()
	}

	return nil
}
