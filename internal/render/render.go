// Package render turns catalog data into reStructuredText pages using
// text/template. Built-in templates can be overridden from a directory.
package render

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/snakemake/plugin-catalog/internal/plugin"
)

//go:embed templates/*.rst.tmpl
var builtin embed.FS

const templateExt = ".rst.tmpl"

// IndexTemplate is the page type of the aggregate index
const IndexTemplate = "index"

// Renderer renders named page templates
type Renderer struct {
	tmpl *template.Template
}

// New parses the built-in templates, then any *.rst.tmpl file of
// overrideDir, whose templates replace built-ins of the same name.
func New(overrideDir string) (*Renderer, error) {
	tmpl, err := template.New("catalog").Funcs(Funcs()).ParseFS(builtin, "templates/*"+templateExt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse built-in templates: %w", err)
	}

	if overrideDir != "" {
		matches, err := filepath.Glob(filepath.Join(overrideDir, "*"+templateExt))
		if err != nil {
			return nil, err
		}
		for _, path := range matches {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			if _, err := tmpl.New(filepath.Base(path)).Parse(string(data)); err != nil {
				return nil, fmt.Errorf("failed to parse template %s: %w", path, err)
			}
		}
	}

	return &Renderer{tmpl: tmpl}, nil
}

// Render executes the template of pageType, e.g. "executor_plugin" or "index"
func (r *Renderer) Render(pageType string, data any) (string, error) {
	t := r.tmpl.Lookup(pageType + templateExt)
	if t == nil {
		return "", fmt.Errorf("no template for page type %q", pageType)
	}

	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", pageType, err)
	}
	return b.String(), nil
}

// Funcs returns the helpers available to every template
func Funcs() template.FuncMap {
	return template.FuncMap{
		"setting_meta": settingMeta,
		"heading":      heading,
		"title":        title,
		"indent":       indent,
		"cli_arg":      cliArg,
		"env_var":      envVar,
		"capitalize":   capitalize,
		"join":         strings.Join,
	}
}

// settingMeta formats attribute key of s, see plugin.FormatMeta
func settingMeta(s plugin.Setting, key, fallback string, verbatim ...bool) string {
	value, ok := s.Attr(key)
	if !ok {
		value = nil
	}
	verb := len(verbatim) > 0 && verbatim[0]
	if verb && value == nil && fallback != "" {
		return fallback
	}
	return plugin.FormatMeta(value, fallback, verb)
}

// heading underlines text with marker
func heading(marker, text string) string {
	return text + "\n" + strings.Repeat(marker, utf8.RuneCountInString(text))
}

// title over- and underlines text with marker
func title(marker, text string) string {
	line := strings.Repeat(marker, utf8.RuneCountInString(text))
	return line + "\n" + text + "\n" + line
}

// indent prefixes every line but the first with n spaces
func indent(n int, s string) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = pad + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

// settingPath returns the words naming a setting on the command line
func settingPath(category plugin.Category, name, setting string) []string {
	var parts []string
	if category != plugin.CategoryExecutor {
		parts = append(parts, string(category))
	}
	return append(parts, name, setting)
}

// cliArg returns the command line flag of a plugin setting
func cliArg(category plugin.Category, name, setting string) string {
	return "--" + strings.ReplaceAll(strings.Join(settingPath(category, name, setting), "-"), "_", "-")
}

// envVar returns the environment variable of a plugin setting
func envVar(host string, category plugin.Category, name, setting string) string {
	parts := append([]string{host}, settingPath(category, name, setting)...)
	return strings.ToUpper(strings.ReplaceAll(strings.Join(parts, "_"), "-", "_"))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return strings.ToUpper(string(r)) + s[size:]
}
