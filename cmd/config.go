package cmd

import (
	"fmt"
	"os"

	"github.com/snakemake/plugin-catalog/internal/config"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage plugin-catalog configuration",
	Long: `Manage plugin-catalog configuration settings.

The configuration is read from plugin-catalog.yaml (or --config), then
.env and the PLUGIN_CATALOG_* environment variables are applied.

Example:
  plugin-catalog config show
  plugin-catalog config init`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default values",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(data))

	if err := cfg.Validate(); err != nil {
		fmt.Println()
		fmt.Printf("Invalid configuration:\n%v\n", err)
	}

	// Explain current settings
	fmt.Println()
	fmt.Println("Locale:")
	if cfg.Locale == "auto" {
		fmt.Printf("  auto: System locale is auto-detected (%s)\n", resolveLocale(cfg.Locale))
	} else {
		fmt.Printf("  %s: Using fixed locale\n", cfg.Locale)
	}

	fmt.Println()
	fmt.Println("Packages:")
	if len(cfg.Packages) == 0 {
		fmt.Println("  all plugin packages of the index are collected")
	} else {
		fmt.Printf("  only %d allowed packages are collected\n", len(cfg.Packages))
	}

	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configFile); err == nil && !configForce {
		return fmt.Errorf("%s already exists, use --force to overwrite", configFile)
	}

	if err := config.Save(configFile, config.NewConfig()); err != nil {
		return err
	}
	fmt.Printf("Wrote default configuration to %s\n", configFile)
	return nil
}
