package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/jeandeaual/go-locale"
	"github.com/snakemake/plugin-catalog/internal/config"
	"github.com/snakemake/plugin-catalog/internal/i18n"
	"github.com/snakemake/plugin-catalog/internal/logging"
	"github.com/snakemake/plugin-catalog/internal/plugin"
	"github.com/snakemake/plugin-catalog/internal/pypi"
	"github.com/spf13/cobra"
)

var (
	configFile string
	logLevel   string
	verbose    bool

	localeFS fs.FS
	logger   hclog.Logger = hclog.NewNullLogger()

	rootCmd = &cobra.Command{
		Use:           "plugin-catalog",
		Short:         "Build the documentation catalog of workflow plugins",
		SilenceErrors: true,
		SilenceUsage:  true,
		Long: `plugin-catalog discovers the plugins published on a package index,
installs each one into a throwaway micromamba environment to read its
settings, fetches its documentation from its repository and renders one
reStructuredText page per plugin plus an index.

Commands:
  build     Collect every plugin and write the catalog pages
  discover  List the plugin packages of the index
  inspect   Install one package and show its settings
  search    Search the last built catalog
  browse    Browse the last built catalog interactively
  config    Manage configuration`,
		PersistentPreRunE: setup,
	}
)

// Execute runs the root command
func Execute(locales fs.FS) {
	localeFS = locales
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode separates an unreachable index from other failures
func exitCode(err error) int {
	var discErr *pypi.DiscoveryError
	if errors.As(err, &discErr) {
		return 2
	}
	return 1
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultConfigFile, "configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output, same as --log-level debug")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(configCmd)
}

// setup loads the configuration, then the locale and the logger
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if err := cfg.LoadEnv(config.DotEnvFile); err != nil {
		return err
	}
	config.Set(cfg)

	if localeFS != nil {
		if err := i18n.Init(localeFS, resolveLocale(cfg.Locale)); err != nil {
			return err
		}
	}

	level := logging.GetLogLevel(logLevel)
	if verbose && logLevel == "" {
		level = "debug"
	}
	logger = logging.NewLogger("plugin-catalog", level, os.Stderr)
	return nil
}

// resolveLocale returns the locale based on config
func resolveLocale(configLocale string) string {
	// If "auto", detect system locale
	if configLocale == "auto" || configLocale == "" {
		userLocale, err := locale.GetLocale()
		if err != nil || userLocale == "" {
			return "en-US"
		}
		return userLocale
	}
	return configLocale
}

// categories parses names, defaulting to the configured categories
func categories(names []string) ([]plugin.Category, error) {
	if len(names) == 0 {
		names = config.Get().Categories
	}
	out := make([]plugin.Category, 0, len(names))
	for _, name := range names {
		c, err := plugin.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
