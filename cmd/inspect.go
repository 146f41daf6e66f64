package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/snakemake/plugin-catalog/internal/config"
	"github.com/snakemake/plugin-catalog/internal/i18n"
	"github.com/snakemake/plugin-catalog/internal/plugin"
	"github.com/snakemake/plugin-catalog/internal/progress"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var inspectOutput string

var inspectCmd = &cobra.Command{
	Use:   "inspect <package>",
	Short: "Install one package and show its settings",
	Long: `Provision an environment for the latest release of one plugin package,
read its settings and auxiliary data, and remove the environment again.

Example:
  plugin-catalog inspect snakemake-executor-plugin-slurm
  plugin-catalog inspect snakemake-storage-plugin-s3 -o yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectOutput, "output", "o", "table", "output format (table, json, yaml)")
}

// inspection is what inspect prints
type inspection struct {
	Release   *plugin.Release  `json:"release"`
	Category  plugin.Category  `json:"category"`
	Name      string           `json:"name"`
	Strategy  string           `json:"environment"`
	Settings  []plugin.Setting `json:"settings"`
	Auxiliary plugin.Auxiliary `json:"auxiliary,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) (err error) {
	pkg := args[0]
	cfg := config.Get()

	cand, ok := candidateOf(pkg, cfg.Host)
	if !ok {
		return fmt.Errorf("%s", i18n.T("NotAPluginPackage", map[string]any{"Package": pkg, "Host": cfg.Host}))
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	release, err := p.index.FetchRelease(ctx, pkg)
	if err != nil {
		return err
	}

	spinner := progress.NewSpinner(os.Stderr, i18n.T("Provisioning", map[string]any{"Package": pkg, "Version": release.Version}))
	spinner.Start()
	defer func() { spinner.Stop(err == nil) }()

	env, err := p.provisioner.Acquire(ctx, pkg, release.Version)
	defer func() { _ = p.provisioner.Release(ctx, env) }()
	if err != nil {
		return err
	}

	spinner.SetMessage(i18n.T("Extracting", map[string]any{"Package": pkg}))
	settings, err := p.extractor.Settings(ctx, env, cand)
	if err != nil {
		return err
	}
	aux, err := p.extractor.Auxiliary(ctx, env, cand)
	if err != nil {
		return err
	}
	spinner.Stop(true)

	return printInspection(&inspection{
		Release:   release,
		Category:  cand.Category,
		Name:      cand.Name,
		Strategy:  env.Strategy,
		Settings:  settings,
		Auxiliary: aux,
	})
}

// candidateOf finds the category whose prefix pkg carries
func candidateOf(pkg, host string) (plugin.Candidate, bool) {
	for _, c := range plugin.Categories {
		if found := plugin.Discover([]string{pkg}, host, c); len(found) == 1 {
			return found[0], true
		}
	}
	return plugin.Candidate{}, false
}

func printInspection(in *inspection) error {
	switch inspectOutput {
	case "json":
		data, err := json.MarshalIndent(in, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	case "yaml":
		data, err := yaml.Marshal(in)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	case "table":
	default:
		return fmt.Errorf("unknown output format %q", inspectOutput)
	}

	fmt.Printf("%s %s (%s, %s)\n\n", in.Release.Package, in.Release.Version, in.Category, in.Strategy)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Setting", "Type", "Default", "Required", "Help"})
	for _, s := range in.Settings {
		t.AppendRow(table.Row{
			s.Name,
			plugin.FormatMeta(nullable(s.TypeName()), "-", false),
			plugin.PyRepr(s.Default),
			plugin.FormatMeta(s.Required, "", false),
			s.Help,
		})
	}
	t.SetStyle(table.StyleLight)
	t.Render()

	if queries := in.Auxiliary.ExampleQueries(); len(queries) > 0 {
		fmt.Println()
		for _, q := range queries {
			fmt.Printf("  %s (%s)\n    %s\n", q.Query, q.Type, strings.TrimSpace(q.Description))
		}
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
