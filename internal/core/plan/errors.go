// Package plan computes the ordered, idempotent set of remote operations
// needed to bring selected projects in line with their declared
// configuration. This is part of the Functional Core - planning never
// contacts the remote host.
package plan

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// Error Types
// =============================================================================

// ErrUnknownProjects is returned when a filter names projects that are not
// in the manifest.
var ErrUnknownProjects = errors.New("filter names unknown projects")

// SelectionError reports which filter names matched no project.
type SelectionError struct {
	Unknown []string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("unknown projects: %s", strings.Join(e.Unknown, ", "))
}

func (e *SelectionError) Unwrap() error {
	return ErrUnknownProjects
}
