package expand

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/onurmatik/StageOps/internal/core/manifest"
)

func testProject() manifest.ResolvedProject {
	return manifest.ResolvedProject{Name: "mevzuat"}
}

// =============================================================================
// Expand Tests
// =============================================================================

func TestExpand_TableDriven(t *testing.T) {
	p := testProject()

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{
			name:  "project name",
			value: "{PROJECT_NAME}",
			want:  "mevzuat",
		},
		{
			name:  "project dir",
			value: "{PROJECT_DIR}/media",
			want:  "/srv/apps/mevzuat/media",
		},
		{
			name:  "venv bin",
			value: "{VENV_BIN}/python",
			want:  "/srv/apps/mevzuat/venv/bin/python",
		},
		{
			name:  "multiple tokens",
			value: "{VENV_BIN}/python {PROJECT_DIR}/manage.py",
			want:  "/srv/apps/mevzuat/venv/bin/python /srv/apps/mevzuat/manage.py",
		},
		{
			name:  "no placeholders is identity",
			value: "/usr/bin/certbot renew",
			want:  "/usr/bin/certbot renew",
		},
		{
			name:  "unknown placeholder kept verbatim",
			value: "{FUTURE_TOKEN}/run",
			want:  "{FUTURE_TOKEN}/run",
		},
		{
			name:  "unknown next to known",
			value: "{PROJECT_DIR}/{SOMETHING_ELSE}",
			want:  "/srv/apps/mevzuat/{SOMETHING_ELSE}",
		},
		{
			name:  "empty string",
			value: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Expand(tt.value, p))
		})
	}
}

func TestExpand_Idempotent(t *testing.T) {
	p := testProject()
	once := Expand("{PROJECT_DIR}/cron.log", p)
	assert.Equal(t, once, Expand(once, p))
}

// =============================================================================
// ExpandTask Tests
// =============================================================================

func TestExpandTask_ShortFormRewritten(t *testing.T) {
	got := ExpandTask("fetch_new_docs", testProject())
	assert.Equal(t, "/srv/apps/mevzuat/venv/bin/python manage.py fetch_new_docs", got)
}

func TestExpandTask_ShortFormWithArguments(t *testing.T) {
	got := ExpandTask("clearsessions --verbosity 0", testProject())
	assert.Equal(t, "/srv/apps/mevzuat/venv/bin/python manage.py clearsessions --verbosity 0", got)
}

func TestExpandTask_AbsolutePathUntouched(t *testing.T) {
	cmd := "/srv/apps/mevzuat/venv/bin/python manage.py cleanup"
	assert.Equal(t, cmd, ExpandTask(cmd, testProject()))
}

func TestExpandTask_InterpreterPrefixUntouched(t *testing.T) {
	got := ExpandTask("bash {PROJECT_DIR}/scripts/backup.sh", testProject())
	assert.Equal(t, "bash /srv/apps/mevzuat/scripts/backup.sh", got)
}

func TestExpandTask_PlaceholdersExpandedAfterRewrite(t *testing.T) {
	got := ExpandTask("{VENV_BIN}/celery inspect ping", testProject())
	assert.Equal(t, "/srv/apps/mevzuat/venv/bin/celery inspect ping", got)
}

func TestExpandTask_Empty(t *testing.T) {
	assert.Equal(t, "", ExpandTask("   ", testProject()))
}
