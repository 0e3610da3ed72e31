// Package executor applies a deployment plan against a remote host, one
// project group at a time. A failing group never blocks the groups after it.
package executor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/onurmatik/StageOps/internal/core/plan"
	"github.com/onurmatik/StageOps/internal/shell/remote"
)

// =============================================================================
// Execution Report
// =============================================================================

// Status is the outcome of one project group.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// ProjectResult is the outcome of one project's group.
type ProjectResult struct {
	Project string
	Status  Status

	// FailedOp and Reason are set when Status is failed.
	FailedOp plan.Op
	Reason   string
}

// Report is the result of one run.
type Report struct {
	Results []ProjectResult

	// SharedApplied is true when the deferred shared steps ran successfully.
	SharedApplied bool

	// Success is true when every group succeeded and the shared steps,
	// if any, applied.
	Success bool
}

// Counts returns how many projects succeeded, failed and were skipped.
func (r Report) Counts() (succeeded, failed, skipped int) {
	for _, res := range r.Results {
		switch res.Status {
		case StatusSucceeded:
			succeeded++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	return succeeded, failed, skipped
}

// =============================================================================
// Executor
// =============================================================================

// Executor applies plans to a host.
type Executor struct {
	host   remote.Host
	logger *slog.Logger
}

// New creates an executor.
func New(host remote.Host, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{host: host, logger: logger}
}

// Execute applies the plan group by group, in plan order. Steps within a
// group run sequentially; the first failure aborts the rest of that group
// and execution moves on to the next group. The shared steps run once at
// the end, and only if at least one group fully succeeded.
//
// Cancellation is honored between groups only: a group in progress always
// runs to completion or failure so no project is left half-configured.
// Steps run detached from the caller's cancellation; the host's per-command
// timeout still bounds each one.
func (e *Executor) Execute(ctx context.Context, p plan.Plan) Report {
	var report Report

	stepCtx := context.WithoutCancel(ctx)

	cancelled := false
	for _, group := range p.Groups {
		if cancelled || ctx.Err() != nil {
			cancelled = true
			report.Results = append(report.Results, ProjectResult{
				Project: group.Project,
				Status:  StatusSkipped,
				Reason:  "run cancelled",
			})
			continue
		}

		report.Results = append(report.Results, e.executeGroup(stepCtx, group))
	}

	succeeded, failed, skipped := report.Counts()

	// Shared steps apply only when they have something to finalize.
	if len(p.Shared) > 0 && succeeded > 0 && !cancelled {
		report.SharedApplied = true
		for _, step := range p.Shared {
			if err := e.applyStep(stepCtx, step); err != nil {
				e.logger.Error("shared step failed", "op", string(step.Op), "error", err)
				report.SharedApplied = false
				break
			}
		}
	}

	report.Success = failed == 0 && skipped == 0 &&
		(len(p.Shared) == 0 || len(p.Groups) == 0 || report.SharedApplied)

	e.logger.Info("run finished",
		"succeeded", succeeded,
		"failed", failed,
		"skipped", skipped,
		"success", report.Success,
	)

	return report
}

// executeGroup runs one project's steps sequentially, stopping at the
// first failure. A group that arrived pre-failed from planning is reported
// without touching the host.
func (e *Executor) executeGroup(ctx context.Context, group plan.Group) ProjectResult {
	if group.Err != nil {
		e.logger.Error("project has no executable plan", "project", group.Project, "error", group.Err)
		return ProjectResult{
			Project: group.Project,
			Status:  StatusFailed,
			Reason:  group.Err.Error(),
		}
	}

	e.logger.Info("deploying project", "project", group.Project, "steps", len(group.Steps))

	for _, step := range group.Steps {
		if err := e.applyStep(ctx, step); err != nil {
			e.logger.Error("step failed",
				"project", group.Project,
				"op", string(step.Op),
				"target", step.Target(),
				"error", err,
			)
			return ProjectResult{
				Project:  group.Project,
				Status:   StatusFailed,
				FailedOp: step.Op,
				Reason:   err.Error(),
			}
		}
		e.logger.Debug("step applied",
			"project", group.Project,
			"op", string(step.Op),
			"target", step.Target(),
		)
	}

	return ProjectResult{Project: group.Project, Status: StatusSucceeded}
}

// applyStep dispatches one step to the matching host primitive.
func (e *Executor) applyStep(ctx context.Context, step plan.Step) error {
	switch step.Op {
	case plan.OpEnsureDir:
		return e.host.EnsureDir(ctx, step.Path)
	case plan.OpWriteFile:
		return e.host.WriteFile(ctx, step.Path, step.Content)
	case plan.OpRemoveFile:
		return e.host.RemoveFile(ctx, step.Path)
	case plan.OpEnableUnit:
		return e.host.SetUnitState(ctx, step.Unit, true)
	case plan.OpDisableUnit:
		return e.host.SetUnitState(ctx, step.Unit, false)
	case plan.OpReloadDaemon:
		return e.host.Reload(ctx, remote.SubsystemServiceManager)
	case plan.OpReloadProxy:
		return e.host.Reload(ctx, remote.SubsystemProxy)
	default:
		return fmt.Errorf("unknown plan op %q", step.Op)
	}
}
