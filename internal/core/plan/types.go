package plan

// =============================================================================
// Plan Types
// =============================================================================

// Op identifies one kind of remote operation.
type Op string

const (
	OpEnsureDir    Op = "ensure-dir"
	OpWriteFile    Op = "write-file"
	OpRemoveFile   Op = "remove-file"
	OpEnableUnit   Op = "enable-unit"
	OpDisableUnit  Op = "disable-unit"
	OpReloadDaemon Op = "reload-daemon"
	OpReloadProxy  Op = "reload-proxy"
)

// Step is one remote operation, tagged with its owning project for failure
// isolation and logging. Shared steps carry an empty project.
type Step struct {
	Project string
	Op      Op
	Path    string // ensure-dir, write-file, remove-file
	Content string // write-file
	Unit    string // enable-unit, disable-unit
}

// Target returns what the step acts on, for logs and reports.
func (s Step) Target() string {
	if s.Unit != "" {
		return s.Unit
	}
	return s.Path
}

// Group is the ordered steps of one project. Later steps assume earlier
// ones succeeded. A group whose steps could not be computed (a broken
// template) carries Err instead of steps; the executor reports such a
// group as failed without touching the host.
type Group struct {
	Project string
	Steps   []Step
	Err     error
}

// Plan is the full ordered deployment plan: one group per selected project,
// then the deduplicated shared steps.
type Plan struct {
	Groups []Group
	Shared []Step
}

// Empty reports whether the plan does nothing.
func (p Plan) Empty() bool {
	return len(p.Groups) == 0
}

// StepCount returns the total number of steps including shared ones.
func (p Plan) StepCount() int {
	n := len(p.Shared)
	for _, g := range p.Groups {
		n += len(g.Steps)
	}
	return n
}
