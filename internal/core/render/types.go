package render

// =============================================================================
// Artifact Types
// =============================================================================

// ArtifactKind classifies a rendered artifact.
type ArtifactKind string

const (
	KindServiceUnit ArtifactKind = "service-unit"
	KindSocketUnit  ArtifactKind = "socket-unit"
	KindProxyConfig ArtifactKind = "proxy-config"
	KindCronFile    ArtifactKind = "cron-file"
)

// Artifact is one rendered file destined for the remote host. A prior
// artifact at the same path is always fully overwritten.
type Artifact struct {
	Kind    ArtifactKind
	Path    string // absolute target path on the remote host
	Content string
	Unit    string // systemd unit name, empty for proxy and cron artifacts
}

// Template names understood by a TemplateSource.
const (
	TemplateAppService    = "app.service"
	TemplateAppSocket     = "app.socket"
	TemplateNodeService   = "node.service"
	TemplateCeleryService = "celery.service"
	TemplateNginx         = "nginx.conf"
	TemplateCron          = "cron"
)

// Remote directories artifacts are written to.
const (
	UnitDir  = "/etc/systemd/system"
	ProxyDir = "/etc/nginx/conf.d"
	CronDir  = "/etc/cron.d"
)

// TemplateSource supplies rendered text for a named template. Implementations
// live in the shell; the renderer treats any failure as a TemplateError.
type TemplateSource interface {
	Render(template string, ctx Context) (string, error)
}

// Context is the value record handed to templates. Every field is fully
// materialized before rendering so identical inputs always produce
// byte-identical output.
type Context struct {
	ProjectName    string
	Domain         string
	ProjectDir     string
	VenvBin        string
	LogDir         string
	RunDir         string
	GunicornSocket string

	Workers     int
	Timeout     int
	MemoryLimit string
	WorkerQueue string
	NodePort    int

	// FrontendUpstream is where the proxy's root location routes.
	FrontendUpstream string

	// BackendLocations is the assembled block of per-path proxy rules.
	BackendLocations string

	// CronLines is the assembled block of scheduled task lines.
	CronLines string
}
