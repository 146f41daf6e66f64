package extract

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
)

// ProtocolVersion is the version of the driver command vocabulary
const ProtocolVersion = 1

// Op is an operation the driver understands
type Op string

const (
	OpGetSettings  Op = "get_settings"
	OpGetAuxiliary Op = "get_auxiliary"
)

// driverSource runs inside the environment's interpreter via `python -c`
//
//go:embed driver.py
var driverSource string

// Query is one request to the driver
type Query struct {
	Op       Op
	Selector string // auxiliary data set, for OpGetAuxiliary
}

// envelope is the single JSON line the driver prints last
type envelope struct {
	Protocol int             `json:"protocol"`
	OK       bool            `json:"ok"`
	Result   json.RawMessage `json:"result"`
	Error    string          `json:"error"`
}

// parseEnvelope decodes the last non-empty line of stdout. Plugins may
// print on import, so earlier lines are ignored.
func parseEnvelope(stdout []byte) (*envelope, error) {
	lines := bytes.Split(bytes.TrimSpace(stdout), []byte("\n"))
	last := bytes.TrimSpace(lines[len(lines)-1])
	if len(last) == 0 {
		return nil, fmt.Errorf("driver printed nothing")
	}

	var env envelope
	if err := json.Unmarshal(last, &env); err != nil {
		return nil, fmt.Errorf("malformed driver output: %w", err)
	}
	if env.Protocol != ProtocolVersion {
		return nil, fmt.Errorf("driver speaks protocol %d, want %d", env.Protocol, ProtocolVersion)
	}
	return &env, nil
}
