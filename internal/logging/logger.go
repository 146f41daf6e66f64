package logging

import (
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	// EnvLogLevel selects the log level when no flag is given
	EnvLogLevel = "PLUGIN_CATALOG_LOG_LEVEL"
	// EnvJSONLog switches to JSON log lines when set to "1"
	EnvJSONLog = "PLUGIN_CATALOG_JSON_LOG"
)

// NewLogger creates a new hclog logger with standard settings
func NewLogger(name string, level string, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}

	jsonFormat := os.Getenv(EnvJSONLog) == "1"

	if !jsonFormat {
		output = NewPrefixWriter("📚 ", output)
	}

	opts := &hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(level),
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z",
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	}

	return hclog.New(opts)
}

// GetLogLevel returns the log level from the flag value or the environment
func GetLogLevel(flag string) string {
	if flag != "" {
		return flag
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		return level
	}
	return "info"
}

// OrNull returns logger, or a discarding logger when it is nil
func OrNull(logger hclog.Logger) hclog.Logger {
	if logger == nil {
		return hclog.NewNullLogger()
	}
	return logger
}
