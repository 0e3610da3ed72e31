// Package render produces the concrete configuration artifacts for a
// project from its resolved record and tier decision. This is part of the
// Functional Core - rendering is deterministic and does no I/O beyond the
// injected template source.
package render

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrTemplateMissing is returned when the template source has no
	// template for a required artifact.
	ErrTemplateMissing = errors.New("template not found")

	// ErrTemplateInvalid is returned when a template fails to execute.
	ErrTemplateInvalid = errors.New("template execution failed")
)

// TemplateError wraps template failures with the artifact they were
// rendering.
type TemplateError struct {
	Template string       // template name, e.g. "app.service"
	Kind     ArtifactKind // artifact kind being rendered
	Err      error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("render %s (%s): %v", e.Template, e.Kind, e.Err)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}

// NewTemplateError creates a new TemplateError.
func NewTemplateError(template string, kind ArtifactKind, err error) *TemplateError {
	return &TemplateError{Template: template, Kind: kind, Err: err}
}
