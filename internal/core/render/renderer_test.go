package render

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onurmatik/StageOps/internal/core/manifest"
	"github.com/onurmatik/StageOps/internal/core/tier"
)

// =============================================================================
// Fake Template Source
// =============================================================================

// fakeSource renders templates as "<name>|<a few context fields>" so tests
// can check which templates were used and what context they saw.
type fakeSource struct {
	missing map[string]bool
}

func (f *fakeSource) Render(template string, ctx Context) (string, error) {
	if f.missing[template] {
		return "", ErrTemplateMissing
	}
	return fmt.Sprintf("%s|%s|%s|%s", template, ctx.ProjectName, ctx.FrontendUpstream, ctx.BackendLocations), nil
}

func coldProject() manifest.ResolvedProject {
	return manifest.ResolvedProject{
		Name:         "mevzuat",
		Domain:       "mevzuat.example.com",
		Tier:         manifest.TierCold,
		Worker:       true,
		WorkerQueue:  "docs",
		BackendPaths: []string{"/api", "/admin"},
		Workers:      2,
		Timeout:      30,
		MemoryLimit:  "512M",
	}
}

// =============================================================================
// Render Tests
// =============================================================================

func TestRender_DormantProducesNothing(t *testing.T) {
	p := manifest.ResolvedProject{Name: "parked", Tier: manifest.TierDormant, Node: true, Worker: true}

	artifacts, err := Render(p, tier.Decide(p), &fakeSource{})
	require.NoError(t, err)
	assert.Empty(t, artifacts)
}

func TestRender_HotHasNoSocketArtifact(t *testing.T) {
	p := manifest.ResolvedProject{
		Name: "newsradar", Domain: "newsradar.example.com", Tier: manifest.TierHot,
		Workers: 4, Timeout: 30, MemoryLimit: "1G",
	}

	artifacts, err := Render(p, tier.Decide(p), &fakeSource{})
	require.NoError(t, err)

	kinds := artifactKinds(artifacts)
	assert.Equal(t, []ArtifactKind{KindServiceUnit, KindProxyConfig}, kinds)
}

func TestRender_ColdIncludesSocketAndWorker(t *testing.T) {
	p := coldProject()

	artifacts, err := Render(p, tier.Decide(p), &fakeSource{})
	require.NoError(t, err)

	kinds := artifactKinds(artifacts)
	assert.Equal(t, []ArtifactKind{KindServiceUnit, KindSocketUnit, KindServiceUnit, KindProxyConfig}, kinds)

	assert.Equal(t, "/etc/systemd/system/app@mevzuat.service", artifacts[0].Path)
	assert.Equal(t, "app@mevzuat.service", artifacts[0].Unit)
	assert.Equal(t, "/etc/systemd/system/app@mevzuat.socket", artifacts[1].Path)
	assert.Equal(t, "/etc/systemd/system/celery@mevzuat.service", artifacts[2].Path)
	assert.Equal(t, "/etc/nginx/conf.d/mevzuat.conf", artifacts[3].Path)
	assert.Empty(t, artifacts[3].Unit)
}

func TestRender_ExactlyOneProxyArtifact(t *testing.T) {
	p := coldProject()

	artifacts, err := Render(p, tier.Decide(p), &fakeSource{})
	require.NoError(t, err)

	count := 0
	for _, a := range artifacts {
		if a.Kind == KindProxyConfig {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestRender_Deterministic(t *testing.T) {
	p := coldProject()
	d := tier.Decide(p)

	first, err := Render(p, d, &fakeSource{})
	require.NoError(t, err)
	second, err := Render(p, d, &fakeSource{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRender_FrontendUpstream(t *testing.T) {
	p := coldProject()
	p.Node = true
	p.NodePort = 3000

	artifacts, err := Render(p, tier.Decide(p), &fakeSource{})
	require.NoError(t, err)

	proxy := artifacts[len(artifacts)-1]
	require.Equal(t, KindProxyConfig, proxy.Kind)
	assert.Contains(t, proxy.Content, "http://127.0.0.1:3000")
	// Backend paths still route to the application socket.
	assert.Contains(t, proxy.Content, "location ^~ /api/")
	assert.Contains(t, proxy.Content, "proxy_pass http://unix:/run/mevzuat/gunicorn.sock:")
}

func TestRender_NoFrontendRoutesRootToApp(t *testing.T) {
	p := coldProject()

	artifacts, err := Render(p, tier.Decide(p), &fakeSource{})
	require.NoError(t, err)

	proxy := artifacts[len(artifacts)-1]
	assert.Contains(t, proxy.Content, "|http://unix:/run/mevzuat/gunicorn.sock:|")
}

func TestRender_CronArtifactOnlyWithTasks(t *testing.T) {
	p := coldProject()
	p.Tasks = []manifest.Task{{Schedule: "0 3 * * *", Command: "fetch_new_docs"}}

	artifacts, err := Render(p, tier.Decide(p), &fakeSource{})
	require.NoError(t, err)

	last := artifacts[len(artifacts)-1]
	assert.Equal(t, KindCronFile, last.Kind)
	assert.Equal(t, "/etc/cron.d/mevzuat", last.Path)
}

func TestRender_MissingTemplate(t *testing.T) {
	p := coldProject()
	src := &fakeSource{missing: map[string]bool{TemplateAppSocket: true}}

	_, err := Render(p, tier.Decide(p), src)
	require.Error(t, err)

	var tmplErr *TemplateError
	require.ErrorAs(t, err, &tmplErr)
	assert.Equal(t, TemplateAppSocket, tmplErr.Template)
	assert.Equal(t, KindSocketUnit, tmplErr.Kind)
	assert.True(t, errors.Is(err, ErrTemplateMissing))
}

// =============================================================================
// Context Tests
// =============================================================================

func TestBuildContext_CronLinesExpanded(t *testing.T) {
	p := coldProject()
	p.Tasks = []manifest.Task{
		{Schedule: "0 3 * * *", Command: "fetch_new_docs"},
		{Schedule: "*/10 * * * *", Command: "/usr/bin/uptime"},
	}

	ctx := buildContext(p, tier.Decide(p))
	assert.Equal(t,
		"0 3 * * * www-data /srv/apps/mevzuat/venv/bin/python manage.py fetch_new_docs\n"+
			"*/10 * * * * www-data /usr/bin/uptime\n",
		ctx.CronLines)
}

func TestAllArtifactPaths(t *testing.T) {
	paths := AllArtifactPaths("mevzuat")

	assert.Equal(t, []string{
		"/etc/systemd/system/app@mevzuat.service",
		"/etc/systemd/system/app@mevzuat.socket",
		"/etc/systemd/system/celery@mevzuat.service",
		"/etc/systemd/system/node@mevzuat.service",
		"/etc/nginx/conf.d/mevzuat.conf",
		"/etc/cron.d/mevzuat",
	}, paths)
}

func artifactKinds(artifacts []Artifact) []ArtifactKind {
	kinds := make([]ArtifactKind, 0, len(artifacts))
	for _, a := range artifacts {
		kinds = append(kinds, a.Kind)
	}
	return kinds
}
