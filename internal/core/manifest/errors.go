// Package manifest contains pure functions for parsing and resolving the
// StageOps project manifest. This is part of the Functional Core - all
// functions are pure with no I/O.
package manifest

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// Input validation errors
	ErrEmptyInput = errors.New("manifest is empty")

	// YAML parsing errors
	ErrInvalidYAML = errors.New("invalid YAML syntax")

	// Manifest structure errors
	ErrNoProjects = errors.New("manifest must define at least one project")

	// Project validation errors
	ErrMissingName     = errors.New("project must have a name")
	ErrUnknownTier     = errors.New("unknown tier")
	ErrDuplicateName   = errors.New("duplicate project name")
	ErrDuplicateDomain = errors.New("duplicate domain")
	ErrMissingDomain   = errors.New("non-dormant project must have a domain")

	// Option resolution errors
	ErrMissingOption = errors.New("option has no value at project or server level")
	ErrInvalidOption = errors.New("invalid option value")
)

// ConfigError wraps errors with context about which project and field failed
// validation or resolution.
type ConfigError struct {
	Project string // e.g., "newsradar"
	Field   string // e.g., "workers"
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Project != "" && e.Field != "" {
		return fmt.Sprintf("project %s: %s: %s", e.Project, e.Field, e.Message)
	}
	if e.Project != "" {
		return fmt.Sprintf("project %s: %s", e.Project, e.Message)
	}
	return e.Message
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(project, field, message string, err error) *ConfigError {
	return &ConfigError{
		Project: project,
		Field:   field,
		Message: message,
		Err:     err,
	}
}
