package main

import (
	"embed"

	"github.com/snakemake/plugin-catalog/cmd"
)

//go:embed locales/*.json
var localeFS embed.FS

func main() {
	cmd.Execute(localeFS)
}
