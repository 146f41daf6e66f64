package catalog

import "github.com/snakemake/plugin-catalog/internal/i18n"

var (
	msgNoRepository = &i18n.Message{
		ID: "catalog.warning.noRepository",
		Other: "No repository URL found in the package index metadata. The plugin should " +
			"specify a repository URL in its pyproject.toml (key 'repository' in [project.urls]).",
	}
	msgNoDocs = &i18n.Message{
		ID: "catalog.warning.noDocs",
		Other: "No documentation found in repository {{.Repository}}. The plugin should " +
			"provide a docs/intro.md with some introductory sentences and optionally a " +
			"docs/further.md file with details beyond the auto-generated usage instructions " +
			"presented in this catalog.",
	}
	msgProvisioningFailed = &i18n.Message{
		ID:    "catalog.error.provisioning",
		Other: "This plugin cannot be installed together with the latest stable {{.Host}}.",
	}
	msgExtractionFailed = &i18n.Message{
		ID:    "catalog.error.extraction",
		Other: "This package is not a valid {{.Host}} {{.Category}} plugin or failed to report its settings.",
	}
	msgPageFailed = &i18n.Message{
		ID:    "catalog.error.page",
		Other: "The catalog page of this plugin could not be generated.",
	}
	msgFileIssue = &i18n.Message{
		ID:    "catalog.error.fileIssue",
		Other: "Please file an issue at {{.Repository}}/issues.",
	}
	msgContactAuthors = &i18n.Message{
		ID:    "catalog.error.contactAuthors",
		Other: "Please contact the authors of the plugin.",
	}
)
