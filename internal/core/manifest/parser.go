package manifest

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Manifest Parsing
// =============================================================================

// Options is a string-keyed option set (defaults and per-project overrides).
// YAML scalars of any type are accepted and normalized to strings, so a
// document may say `workers: 4` as well as `workers: "4"`; value validation
// happens during resolution, with project and field context.
type Options map[string]string

// UnmarshalYAML implements yaml.Unmarshaler.
func (o *Options) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string]any
	if err := value.Decode(&raw); err != nil {
		return err
	}

	out := make(Options, len(raw))
	for k, v := range raw {
		switch v.(type) {
		case nil:
			out[k] = ""
		case map[string]any, []any:
			return fmt.Errorf("option %q: expected a scalar value", k)
		default:
			out[k] = fmt.Sprintf("%v", v)
		}
	}
	*o = out
	return nil
}

// Parse parses a raw manifest document into its typed schema.
// It validates syntax and structure only; field-level validation and
// defaults resolution happen in Resolve.
func Parse(raw []byte) (*Manifest, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, NewConfigError("", "", "manifest is empty", ErrEmptyInput)
	}

	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, NewConfigError("", "", err.Error(), ErrInvalidYAML)
	}

	if len(m.Projects) == 0 {
		return nil, NewConfigError("", "projects", "no projects defined", ErrNoProjects)
	}

	return &m, nil
}
