// Package remote executes deployment primitives on the target host over
// SSH. It is part of the imperative shell; everything above it operates on
// plans and values only.
package remote

import "context"

// Subsystem identifies a reloadable remote subsystem.
type Subsystem string

const (
	// SubsystemServiceManager re-reads unit definitions (daemon-reload).
	SubsystemServiceManager Subsystem = "service-manager"

	// SubsystemProxy validates and reloads the reverse proxy.
	SubsystemProxy Subsystem = "proxy"
)

// Host exposes the remote primitives the executor needs. Each call is
// synchronous and bounded by the client's command timeout. Implementations
// must be idempotent: repeating a call that already succeeded succeeds.
type Host interface {
	// EnsureDir creates the directory (and parents) if missing.
	EnsureDir(ctx context.Context, path string) error

	// WriteFile replaces the file at path with content.
	WriteFile(ctx context.Context, path, content string) error

	// RemoveFile deletes the file at path; a missing file is not an error.
	RemoveFile(ctx context.Context, path string) error

	// SetUnitState enables and starts, or disables and stops, a unit.
	// Disabling a unit that does not exist is not an error.
	SetUnitState(ctx context.Context, unit string, enabled bool) error

	// Reload reloads the given subsystem.
	Reload(ctx context.Context, subsystem Subsystem) error

	// Close releases the connection.
	Close() error
}
