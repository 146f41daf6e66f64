package extract

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/snakemake/plugin-catalog/internal/plugin"
	"github.com/snakemake/plugin-catalog/internal/workenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pythonRunner runs the driver with a local interpreter instead of inside
// a provisioned environment, importing registries from path
type pythonRunner struct {
	python string
	path   string
}

func (r *pythonRunner) Run(ctx context.Context, env string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.python, args[1:]...)
	cmd.Env = append(os.Environ(), "PYTHONPATH="+r.path)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		cmdErr := &workenv.CommandError{Args: args[:2], Output: stderr.String(), Stdout: stdout.String(), Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitCode()
		}
		return stdout.Bytes(), cmdErr
	}
	return stdout.Bytes(), nil
}

const executorRegistry = `
import enum


class Mode(enum.Enum):
    FAST = 1
    SAFE = 2


class Plugin:
    def get_settings_info(self):
        return [
            {"name": "max_jobs", "type": int, "default": 4, "help": "Jobs at once.", "env_var": True},
            {"name": "ratio", "type": float, "default": 4.0, "required": False},
            {"name": "mode", "type": Mode, "default": Mode.FAST, "choices": [Mode.FAST, Mode.SAFE]},
            {"name": "queue", "type": None, "default": None, "choices": ("short", "long"), "parse_func": len},
        ]


class ExecutorPluginRegistry:
    def get_plugin(self, name):
        if name != "fake":
            raise KeyError("no executor plugin named " + name)
        return Plugin()
`

const storageRegistry = `
import enum


class QueryType(enum.Enum):
    INPUT = 1
    OUTPUT = 2


class Query:
    def __init__(self, query, description, type):
        self.query = query
        self.description = description
        self.type = type


class Provider:
    @staticmethod
    def example_queries():
        return [Query("fake://bucket/file.txt", "A file in a bucket.", QueryType.INPUT)]


class Plugin:
    storage_provider = Provider

    def get_settings_info(self):
        return []


class StoragePluginRegistry:
    def get_plugin(self, name):
        return Plugin()
`

func writeRegistry(t *testing.T, root string, category plugin.Category, source string) {
	t.Helper()
	dir := filepath.Join(root, "snakemake_interface_"+string(category)+"_plugins")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "__init__.py"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "registry.py"), []byte(source), 0o644))
}

func newDriverExtractor(t *testing.T) *Extractor {
	t.Helper()
	python, err := exec.LookPath("python3")
	if err != nil {
		t.Skip("python3 not available")
	}

	root := t.TempDir()
	writeRegistry(t, root, plugin.CategoryExecutor, executorRegistry)
	writeRegistry(t, root, plugin.CategoryStorage, storageRegistry)
	return NewExtractor(&pythonRunner{python: python, path: root}, "snakemake", 0, nil)
}

var (
	fakeExecutor = plugin.Candidate{Package: "snakemake-executor-plugin-fake", Name: "fake", Category: plugin.CategoryExecutor}
	fakeStorage  = plugin.Candidate{Package: "snakemake-storage-plugin-fake", Name: "fake", Category: plugin.CategoryStorage}
)

func TestDriverReportsSettings(t *testing.T) {
	e := newDriverExtractor(t)

	settings, err := e.Settings(context.Background(), testEnv, fakeExecutor)
	require.NoError(t, err)
	require.Len(t, settings, 4)

	jobs := settings[0]
	assert.Equal(t, "max_jobs", jobs.Name)
	assert.Equal(t, "int", jobs.TypeName())
	assert.Equal(t, "4", plugin.PyRepr(jobs.Default))
	assert.True(t, jobs.EnvVar)
	assert.Equal(t, "Jobs at once.", jobs.Help)

	ratio := settings[1]
	assert.Equal(t, "float", ratio.TypeName())
	assert.Equal(t, "4.0", plugin.PyRepr(ratio.Default))

	mode := settings[2]
	assert.Equal(t, "Mode", mode.TypeName())
	assert.Equal(t, "<Mode.FAST: 1>", mode.Default)
	assert.Equal(t, "<Mode.FAST: 1>, <Mode.SAFE: 2>", plugin.FormatMeta(mode.Choices, "", false))

	queue := settings[3]
	assert.Nil(t, queue.Type)
	assert.Nil(t, queue.Default)
	assert.Equal(t, "short, long", plugin.FormatMeta(queue.Choices, "", false))
	assert.Equal(t, "<built-in function len>", queue.Extra["parse_func"])
}

func TestDriverReportsExampleQueries(t *testing.T) {
	e := newDriverExtractor(t)

	aux, err := e.Auxiliary(context.Background(), testEnv, fakeStorage)
	require.NoError(t, err)
	assert.Equal(t, []plugin.ExampleQuery{
		{Query: "fake://bucket/file.txt", Description: "A file in a bucket.", Type: "input"},
	}, aux.ExampleQueries())
}

func TestDriverReportsPluginErrors(t *testing.T) {
	e := newDriverExtractor(t)
	missing := plugin.Candidate{Package: "snakemake-executor-plugin-missing", Name: "missing", Category: plugin.CategoryExecutor}

	_, err := e.Settings(context.Background(), testEnv, missing)

	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, OpGetSettings, extErr.Op)
	assert.Contains(t, extErr.Output, "Traceback")
	assert.Contains(t, extErr.Output, "no executor plugin named missing")
}

func TestDriverRejectsUnknownProtocol(t *testing.T) {
	python, err := exec.LookPath("python3")
	if err != nil {
		t.Skip("python3 not available")
	}

	out, err := exec.Command(python, "-c", driverSource, "2", "get_settings", "m", "T", "p").Output()
	require.Error(t, err)

	envl, perr := parseEnvelope(out)
	require.NoError(t, perr)
	assert.False(t, envl.OK)
	assert.Contains(t, envl.Error, "unsupported protocol 2")
}
