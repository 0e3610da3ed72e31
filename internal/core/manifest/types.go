package manifest

import "path"

// =============================================================================
// Tier
// =============================================================================

// Tier is the declared operational mode of a project.
type Tier string

const (
	// TierHot keeps the project's primary service always running.
	TierHot Tier = "hot"

	// TierCold starts the primary service on demand via socket activation.
	TierCold Tier = "cold"

	// TierDormant leaves the project undeployed: no units, no proxy entry.
	TierDormant Tier = "dormant"
)

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	switch t {
	case TierHot, TierCold, TierDormant:
		return true
	}
	return false
}

// Dormant reports whether the tier is dormant.
func (t Tier) Dormant() bool {
	return t == TierDormant
}

// =============================================================================
// Manifest Schema
// =============================================================================

// Manifest is the parsed declarative document: server connection info,
// server-wide option defaults, and the project set.
type Manifest struct {
	Server   Server    `yaml:"server"`
	Defaults Options   `yaml:"defaults"`
	Projects []Project `yaml:"projects"`
}

// Server holds remote host connection info.
type Server struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	User   string `yaml:"user"`
	SSHKey string `yaml:"ssh_key"`
}

// Project is one project's declared configuration, before defaults are
// applied.
type Project struct {
	Name         string            `yaml:"name"`
	Domain       string            `yaml:"domain"`
	Tier         Tier              `yaml:"tier"`
	Node         bool              `yaml:"node"`
	Worker       bool              `yaml:"worker"`
	WorkerQueue  string            `yaml:"worker_queue"`
	BackendPaths []string `yaml:"backend_paths"`
	Overrides    Options  `yaml:"overrides"`
	Tasks        []Task   `yaml:"tasks"`
}

// Task is one scheduled task line: a cron schedule expression plus a command
// string that may contain placeholders or a short-form application command.
type Task struct {
	Schedule string `yaml:"schedule"`
	Command  string `yaml:"command"`
}

// =============================================================================
// Resolved Project
// =============================================================================

// Option names recognized in defaults and per-project overrides.
const (
	OptionWorkers     = "workers"
	OptionTimeout     = "timeout"
	OptionMemoryLimit = "memory_limit"
	OptionNodePort    = "node_port"
)

// Server filesystem layout. Fixed base directories; everything else is
// derived from the project name.
const (
	BaseAppDir = "/srv/apps"
	BaseLogDir = "/var/log"
	BaseRunDir = "/run"
)

// ResolvedProject is a project with every resource option materialized.
// It is the only form the rest of the pipeline consumes and is never
// mutated after resolution.
type ResolvedProject struct {
	Name         string
	Domain       string
	Tier         Tier
	Node         bool
	Worker       bool
	WorkerQueue  string
	BackendPaths []string
	Tasks        []Task

	Workers     int
	Timeout     int
	MemoryLimit string
	NodePort    int
}

// ProjectDir returns the project's root directory on the server.
func (p ResolvedProject) ProjectDir() string {
	return path.Join(BaseAppDir, p.Name)
}

// VenvBin returns the project's virtualenv bin directory.
func (p ResolvedProject) VenvBin() string {
	return path.Join(p.ProjectDir(), "venv", "bin")
}

// LogDir returns the project's log directory.
func (p ResolvedProject) LogDir() string {
	return path.Join(BaseLogDir, p.Name)
}

// RunDir returns the project's runtime directory.
func (p ResolvedProject) RunDir() string {
	return path.Join(BaseRunDir, p.Name)
}

// GunicornSocket returns the path of the project's application socket.
func (p ResolvedProject) GunicornSocket() string {
	return path.Join(p.RunDir(), "gunicorn.sock")
}
