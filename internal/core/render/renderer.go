package render

import (
	"fmt"
	"strings"

	"github.com/onurmatik/StageOps/internal/core/expand"
	"github.com/onurmatik/StageOps/internal/core/manifest"
	"github.com/onurmatik/StageOps/internal/core/tier"
)

// =============================================================================
// Artifact Paths
// =============================================================================

// UnitPath returns the remote path of a systemd unit file.
func UnitPath(unit string) string {
	return UnitDir + "/" + unit
}

// ProxyPath returns the remote path of a project's proxy config.
func ProxyPath(project string) string {
	return ProxyDir + "/" + project + ".conf"
}

// CronPath returns the remote path of a project's cron file.
func CronPath(project string) string {
	return CronDir + "/" + project
}

// AllArtifactPaths returns every path an artifact of the project could
// occupy, used when tearing down a dormant project. Absence, not a
// disabled-but-present file, is the representation of dormancy.
func AllArtifactPaths(project string) []string {
	paths := make([]string, 0, 6)
	for _, unit := range tier.AllUnitNames(project) {
		paths = append(paths, UnitPath(unit))
	}
	return append(paths, ProxyPath(project), CronPath(project))
}

// =============================================================================
// Rendering
// =============================================================================

// Render produces the artifacts for one project given its tier decision.
// Dormant projects (empty decision) produce no artifacts. Output order is
// fixed: primary unit, socket, worker, frontend, proxy, cron.
func Render(p manifest.ResolvedProject, d tier.Decision, src TemplateSource) ([]Artifact, error) {
	if d.Empty() {
		return nil, nil
	}

	ctx := buildContext(p, d)
	var artifacts []Artifact

	add := func(template string, kind ArtifactKind, path, unit string) error {
		content, err := src.Render(template, ctx)
		if err != nil {
			return NewTemplateError(template, kind, err)
		}
		artifacts = append(artifacts, Artifact{Kind: kind, Path: path, Content: content, Unit: unit})
		return nil
	}

	appUnit := tier.UnitName(tier.ServiceApp, p.Name)
	if err := add(TemplateAppService, KindServiceUnit, UnitPath(appUnit), appUnit); err != nil {
		return nil, err
	}

	if d.SocketActivated() {
		socketUnit := tier.SocketUnitName(p.Name)
		if err := add(TemplateAppSocket, KindSocketUnit, UnitPath(socketUnit), socketUnit); err != nil {
			return nil, err
		}
	}

	if d.Has(tier.ServiceWorker) {
		workerUnit := tier.UnitName(tier.ServiceWorker, p.Name)
		if err := add(TemplateCeleryService, KindServiceUnit, UnitPath(workerUnit), workerUnit); err != nil {
			return nil, err
		}
	}

	if d.Has(tier.ServiceFrontend) {
		nodeUnit := tier.UnitName(tier.ServiceFrontend, p.Name)
		if err := add(TemplateNodeService, KindServiceUnit, UnitPath(nodeUnit), nodeUnit); err != nil {
			return nil, err
		}
	}

	if err := add(TemplateNginx, KindProxyConfig, ProxyPath(p.Name), ""); err != nil {
		return nil, err
	}

	if len(p.Tasks) > 0 {
		if err := add(TemplateCron, KindCronFile, CronPath(p.Name), ""); err != nil {
			return nil, err
		}
	}

	return artifacts, nil
}

// buildContext assembles the template context for a project. All derived
// text (proxy locations, cron lines) is produced here so templates stay
// purely declarative.
func buildContext(p manifest.ResolvedProject, d tier.Decision) Context {
	ctx := Context{
		ProjectName:    p.Name,
		Domain:         p.Domain,
		ProjectDir:     p.ProjectDir(),
		VenvBin:        p.VenvBin(),
		LogDir:         p.LogDir(),
		RunDir:         p.RunDir(),
		GunicornSocket: p.GunicornSocket(),
		Workers:        p.Workers,
		Timeout:        p.Timeout,
		MemoryLimit:    p.MemoryLimit,
		WorkerQueue:    p.WorkerQueue,
		NodePort:       p.NodePort,
	}

	appUpstream := "http://unix:" + p.GunicornSocket() + ":"
	if d.Has(tier.ServiceFrontend) {
		ctx.FrontendUpstream = fmt.Sprintf("http://127.0.0.1:%d", p.NodePort)
	} else {
		ctx.FrontendUpstream = appUpstream
	}

	ctx.BackendLocations = backendLocations(p.BackendPaths, appUpstream)
	ctx.CronLines = cronLines(p)

	return ctx
}

// backendLocations renders one proxy rule per backend path prefix, routing
// it to the primary service. Paths keep their declared order.
func backendLocations(paths []string, upstream string) string {
	var b strings.Builder
	for _, path := range paths {
		fmt.Fprintf(&b, `    location ^~ %s/ {
        proxy_pass %s;
        proxy_set_header Host $host;
        proxy_set_header X-Real-IP $remote_addr;
        proxy_set_header X-Forwarded-For $proxy_add_x_forwarded_for;
        proxy_set_header X-Forwarded-Proto $scheme;
    }
`, path, upstream)
	}
	return b.String()
}

// cronLines expands each scheduled task into a cron.d line.
func cronLines(p manifest.ResolvedProject) string {
	if len(p.Tasks) == 0 {
		return ""
	}
	var b strings.Builder
	for _, task := range p.Tasks {
		fmt.Fprintf(&b, "%s www-data %s\n", task.Schedule, expand.ExpandTask(task.Command, p))
	}
	return b.String()
}
