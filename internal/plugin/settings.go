package plugin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Setting describes one configuration setting a plugin declares
type Setting struct {
	Name     string         `json:"name"`
	Type     *string        `json:"type,omitempty"` // display name of the declared type
	Default  any            `json:"default,omitempty"`
	Required bool           `json:"required,omitempty"`
	EnvVar   bool           `json:"env_var,omitempty"`
	Help     string         `json:"help,omitempty"`
	Metavar  string         `json:"metavar,omitempty"`
	Nargs    any            `json:"nargs,omitempty"`
	Choices  any            `json:"choices,omitempty"` // usually a list, a repr string when not serialisable
	Extra    map[string]any `json:"-"` // any other declared attribute
}

var knownSettingKeys = map[string]bool{
	"name": true, "type": true, "default": true, "required": true, "env_var": true,
	"help": true, "metavar": true, "nargs": true, "choices": true,
}

// decodeNumbers unmarshals data keeping numbers as json.Number, so a
// default of 4.0 stays distinct from 4
func decodeNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// UnmarshalJSON keeps unknown attributes in Extra
func (s *Setting) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	type plain Setting
	var p plain
	if err := decodeNumbers(data, &p); err != nil {
		return err
	}
	*s = Setting(p)

	for key, value := range raw {
		if knownSettingKeys[key] {
			continue
		}
		var v any
		if err := decodeNumbers(value, &v); err != nil {
			return fmt.Errorf("setting attribute %q: %w", key, err)
		}
		if s.Extra == nil {
			s.Extra = make(map[string]any)
		}
		s.Extra[key] = v
	}
	return nil
}

// MarshalJSON writes Extra back as top-level attributes
func (s Setting) MarshalJSON() ([]byte, error) {
	type plain Setting
	data, err := json.Marshal(plain(s))
	if err != nil || len(s.Extra) == 0 {
		return data, err
	}

	var merged map[string]any
	if err := decodeNumbers(data, &merged); err != nil {
		return nil, err
	}
	for key, value := range s.Extra {
		if !knownSettingKeys[key] {
			merged[key] = value
		}
	}
	return json.Marshal(merged)
}

// TypeName returns the declared type or an empty string
func (s Setting) TypeName() string {
	if s.Type == nil {
		return ""
	}
	return *s.Type
}

// Attr returns any attribute by its declared key
func (s Setting) Attr(key string) (any, bool) {
	switch key {
	case "name":
		return s.Name, true
	case "type":
		if s.Type == nil {
			return nil, true
		}
		return *s.Type, true
	case "default":
		return s.Default, true
	case "required":
		return s.Required, true
	case "env_var":
		return s.EnvVar, true
	case "help":
		return s.Help, true
	case "metavar":
		if s.Metavar == "" {
			return nil, true
		}
		return s.Metavar, true
	case "nargs":
		return s.Nargs, true
	case "choices":
		if s.Choices == nil {
			return nil, true
		}
		return s.Choices, true
	}
	v, ok := s.Extra[key]
	return v, ok
}

// FormatMeta formats a setting attribute for a page table cell.
// Lists are comma-joined, booleans become ✓/✗ and a missing value falls
// back. With verbatim the value is shown as an inline literal of its
// Python representation.
func FormatMeta(value any, fallback string, verbatim bool) string {
	if verbatim {
		return "``" + PyRepr(value) + "``"
	}
	switch v := value.(type) {
	case nil:
		return fallback
	case bool:
		if v {
			return "✓"
		}
		return "✗"
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(v, ", ")
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprint(value)
}

// PyRepr renders a decoded JSON value the way Python's repr would
func PyRepr(value any) string {
	switch v := value.(type) {
	case nil:
		return "None"
	case bool:
		if v {
			return "True"
		}
		return "False"
	case string:
		return "'" + strings.ReplaceAll(strings.ReplaceAll(v, `\`, `\\`), "'", `\'`) + "'"
	case json.Number:
		return v.String()
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	case int:
		return strconv.Itoa(v)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = PyRepr(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = PyRepr(k) + ": " + PyRepr(v[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return fmt.Sprint(value)
}
