package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/joho/godotenv"
	"sigs.k8s.io/yaml"
)

const (
	// EnvPackages is the comma-separated allow-list of index package names
	EnvPackages = "PLUGIN_CATALOG_PACKAGES"
	// EnvIndexURL overrides the package index base URL
	EnvIndexURL = "PLUGIN_CATALOG_INDEX_URL"
	// EnvLocale overrides the configured locale
	EnvLocale = "PLUGIN_CATALOG_LOCALE"
)

// Duration is a time.Duration that reads and writes as "90s", "20m", ...
type Duration time.Duration

// MarshalJSON implements json.Marshaler
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON accepts a duration string or a number of seconds
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var secs float64
	if err := json.Unmarshal(data, &secs); err != nil {
		return fmt.Errorf("invalid duration %s", string(data))
	}
	*d = Duration(time.Duration(secs * float64(time.Second)))
	return nil
}

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// RateLimitConfig caps requests against the package index
type RateLimitConfig struct {
	Requests int      `json:"requests"` // requests allowed per period
	Period   Duration `json:"period"`
}

// PythonConfig bounds the interpreter versions tried during provisioning
type PythonConfig struct {
	Current string `json:"current"` // e.g. "3.12"
	Span    int    `json:"span"`    // number of minor versions tried, current included
}

// ProvisionConfig configures the environment manager
type ProvisionConfig struct {
	Binary             string   `json:"binary"`
	Channels           []string `json:"channels"`
	HostPackage        string   `json:"hostPackage"`        // pip package of the host framework
	HostMinimalPackage string   `json:"hostMinimalPackage"` // conda package of the host framework
	Timeout            Duration `json:"timeout"`            // per environment-manager call
}

// ExtractConfig configures plugin introspection
type ExtractConfig struct {
	Timeout Duration `json:"timeout"`
}

// DocsConfig configures the repository documentation fetch
type DocsConfig struct {
	Branches []string `json:"branches"`
	Timeout  Duration `json:"timeout"`
}

// Config represents the catalog configuration file structure
type Config struct {
	Host         string          `json:"host"`
	Categories   []string        `json:"categories"`
	IndexURL     string          `json:"indexURL"`
	OutputDir    string          `json:"outputDir"`
	TemplatesDir string          `json:"templatesDir,omitempty"`
	Locale       string          `json:"locale"` // "auto" or ISO format (e.g., "ko-KR", "en-US")
	Jobs         int             `json:"jobs"`
	Packages     []string        `json:"packages,omitempty"` // allow-list, empty means all
	RateLimit    RateLimitConfig `json:"rateLimit"`
	Python       PythonConfig    `json:"python"`
	Provision    ProvisionConfig `json:"provision"`
	Extract      ExtractConfig   `json:"extract"`
	Docs         DocsConfig      `json:"docs"`
}

var (
	cfg   *Config
	cfgMu sync.RWMutex
)

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Host:       "snakemake",
		Categories: []string{"executor", "storage", "report", "logger", "scheduler"},
		IndexURL:   "https://pypi.org",
		OutputDir:  ".",
		Locale:     "auto",
		Jobs:       1,
		RateLimit: RateLimitConfig{
			Requests: 20,
			Period:   Duration(time.Second),
		},
		Python: PythonConfig{
			Current: "3.12",
			Span:    8,
		},
		Provision: ProvisionConfig{
			Binary:             "micromamba",
			Channels:           []string{"conda-forge", "bioconda"},
			HostPackage:        "snakemake",
			HostMinimalPackage: "snakemake-minimal",
			Timeout:            Duration(20 * time.Minute),
		},
		Extract: ExtractConfig{
			Timeout: Duration(2 * time.Minute),
		},
		Docs: DocsConfig{
			Branches: []string{"main", "master"},
			Timeout:  Duration(30 * time.Second),
		},
	}
}

// Load reads the configuration file at path on top of the defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	config := NewConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return config, nil
}

// LoadEnv loads a .env file when present and applies environment overrides
func (c *Config) LoadEnv(dotenv string) error {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", dotenv, err)
		}
	}

	if v := os.Getenv(EnvPackages); v != "" {
		c.Packages = SplitList(v)
	}
	if v := os.Getenv(EnvIndexURL); v != "" {
		c.IndexURL = v
	}
	if v := os.Getenv(EnvLocale); v != "" {
		c.Locale = v
	}
	return nil
}

// Save writes the configuration as YAML
func Save(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error

	if c.Host == "" {
		errs = append(errs, errors.New("host must not be empty"))
	}
	if len(c.Categories) == 0 {
		errs = append(errs, errors.New("at least one category is required"))
	}
	if c.IndexURL == "" {
		errs = append(errs, errors.New("indexURL must not be empty"))
	}
	if c.Jobs < 1 {
		errs = append(errs, fmt.Errorf("jobs must be at least 1, got %d", c.Jobs))
	}
	if c.RateLimit.Requests < 1 || c.RateLimit.Period <= 0 {
		errs = append(errs, errors.New("rateLimit needs positive requests and period"))
	}
	if _, err := c.PythonVersion(); err != nil {
		errs = append(errs, err)
	}
	if c.Python.Span < 1 {
		errs = append(errs, fmt.Errorf("python.span must be at least 1, got %d", c.Python.Span))
	}
	if c.Provision.Binary == "" {
		errs = append(errs, errors.New("provision.binary must not be empty"))
	}
	if len(c.Docs.Branches) == 0 {
		errs = append(errs, errors.New("docs.branches must not be empty"))
	}

	return errors.Join(errs...)
}

// PythonVersion parses python.current
func (c *Config) PythonVersion() (*semver.Version, error) {
	v, err := semver.NewVersion(c.Python.Current)
	if err != nil {
		return nil, fmt.Errorf("invalid python.current %q: %w", c.Python.Current, err)
	}
	return v, nil
}

// Set replaces the process-wide configuration
func Set(config *Config) {
	cfgMu.Lock()
	defer cfgMu.Unlock()
	cfg = config
}

// Get returns the process-wide configuration, defaults if none was set
func Get() *Config {
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	if cfg == nil {
		return NewConfig()
	}
	return cfg
}

// SplitList splits a comma-separated list, dropping blanks
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
