package plan

import (
	"github.com/onurmatik/StageOps/internal/core/manifest"
	"github.com/onurmatik/StageOps/internal/core/render"
	"github.com/onurmatik/StageOps/internal/core/tier"
)

// =============================================================================
// Plan Building
// =============================================================================

// Build computes the deployment plan for the selected projects. An empty
// filter selects every project; otherwise the filter must name existing
// projects (unmatched names fail with a SelectionError). Selection keeps
// manifest declaration order.
//
// Per project, the step order is: ensure directories, write artifacts,
// reconcile unit enablement. Dormant projects instead get their artifacts
// removed and all units disabled. The shared daemon and proxy reloads are
// appended once, after every group.
//
// A template failure condemns only the affected project: its group carries
// the error and no steps, and planning continues with the next project.
func Build(projects []manifest.ResolvedProject, src render.TemplateSource, filter []string) (Plan, error) {
	selected, err := selectProjects(projects, filter)
	if err != nil {
		return Plan{}, err
	}

	var p Plan
	needDaemonReload := false
	needProxyReload := false

	for _, proj := range selected {
		decision := tier.Decide(proj)

		var group Group
		if decision.Empty() {
			group = teardownGroup(proj)
		} else {
			group = deployGroup(proj, decision, src)
		}

		if group.Err == nil && len(group.Steps) == 0 {
			continue
		}
		p.Groups = append(p.Groups, group)

		for _, step := range group.Steps {
			switch step.Op {
			case OpWriteFile, OpRemoveFile:
				if step.Path == render.ProxyPath(proj.Name) {
					needProxyReload = true
				} else {
					needDaemonReload = true
				}
			case OpEnableUnit, OpDisableUnit:
				needDaemonReload = true
			}
		}
	}

	// Shared steps run once after all per-project groups, regardless of how
	// many projects requested them.
	if needDaemonReload {
		p.Shared = append(p.Shared, Step{Op: OpReloadDaemon})
	}
	if needProxyReload {
		p.Shared = append(p.Shared, Step{Op: OpReloadProxy})
	}

	return p, nil
}

// selectProjects applies the optional name filter, preserving declaration
// order and rejecting names that match nothing.
func selectProjects(projects []manifest.ResolvedProject, filter []string) ([]manifest.ResolvedProject, error) {
	if len(filter) == 0 {
		return projects, nil
	}

	wanted := make(map[string]bool, len(filter))
	for _, name := range filter {
		wanted[name] = true
	}

	var selected []manifest.ResolvedProject
	for _, p := range projects {
		if wanted[p.Name] {
			selected = append(selected, p)
			delete(wanted, p.Name)
		}
	}

	if len(wanted) > 0 {
		unknown := make([]string, 0, len(wanted))
		for _, name := range filter {
			if wanted[name] {
				unknown = append(unknown, name)
			}
		}
		return nil, &SelectionError{Unknown: unknown}
	}

	return selected, nil
}

// deployGroup produces the steps that converge a non-dormant project. A
// render failure yields a step-less group carrying the error.
func deployGroup(p manifest.ResolvedProject, d tier.Decision, src render.TemplateSource) Group {
	artifacts, err := render.Render(p, d, src)
	if err != nil {
		return Group{Project: p.Name, Err: err}
	}

	g := Group{Project: p.Name}

	for _, dir := range []string{p.ProjectDir(), p.LogDir(), p.RunDir()} {
		g.Steps = append(g.Steps, Step{Project: p.Name, Op: OpEnsureDir, Path: dir})
	}

	written := make(map[string]bool, len(artifacts))
	for _, a := range artifacts {
		g.Steps = append(g.Steps, Step{Project: p.Name, Op: OpWriteFile, Path: a.Path, Content: a.Content})
		written[a.Path] = true
	}

	// Stale artifacts from an earlier, richer configuration must not linger.
	for _, path := range render.AllArtifactPaths(p.Name) {
		if !written[path] {
			g.Steps = append(g.Steps, Step{Project: p.Name, Op: OpRemoveFile, Path: path})
		}
	}

	// Enable exactly the units the decision requires, disable the rest.
	enabled := make(map[string]bool)
	for _, unit := range d.EnabledUnitNames(p.Name) {
		g.Steps = append(g.Steps, Step{Project: p.Name, Op: OpEnableUnit, Unit: unit})
		enabled[unit] = true
	}
	for _, unit := range tier.AllUnitNames(p.Name) {
		if !enabled[unit] {
			g.Steps = append(g.Steps, Step{Project: p.Name, Op: OpDisableUnit, Unit: unit})
		}
	}

	return g
}

// teardownGroup produces the steps that retire a dormant project: disable
// every unit it could own, then remove every artifact it could have written.
func teardownGroup(p manifest.ResolvedProject) Group {
	g := Group{Project: p.Name}

	for _, unit := range tier.AllUnitNames(p.Name) {
		g.Steps = append(g.Steps, Step{Project: p.Name, Op: OpDisableUnit, Unit: unit})
	}
	for _, path := range render.AllArtifactPaths(p.Name) {
		g.Steps = append(g.Steps, Step{Project: p.Name, Op: OpRemoveFile, Path: path})
	}

	return g
}
