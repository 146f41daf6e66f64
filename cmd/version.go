package cmd

import (
	"fmt"

	"github.com/snakemake/plugin-catalog/internal/extract"
	"github.com/snakemake/plugin-catalog/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("plugin-catalog %s\n", version.Version)
		if version.GitCommit != "" {
			fmt.Printf("  commit:   %s\n", version.GitCommit)
		}
		if version.BuildDate != "" {
			fmt.Printf("  built:    %s\n", version.BuildDate)
		}
		fmt.Printf("  protocol: %d\n", extract.ProtocolVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
