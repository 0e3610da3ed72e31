// Package expand substitutes project placeholders inside arbitrary strings.
// This is part of the Functional Core - all functions are pure with no I/O.
//
// Substitution is a whitelist over a fixed set of named tokens; it is
// deliberately not a general expression language.
package expand

import (
	"regexp"
	"strings"

	"github.com/onurmatik/StageOps/internal/core/manifest"
)

// =============================================================================
// Placeholder Substitution
// =============================================================================

// Recognized placeholder tokens.
const (
	TokenProjectName = "PROJECT_NAME"
	TokenProjectDir  = "PROJECT_DIR"
	TokenVenvBin     = "VENV_BIN"
)

// placeholderRegex matches {TOKEN} occurrences.
var placeholderRegex = regexp.MustCompile(`\{([A-Z_][A-Z0-9_]*)\}`)

// Expand replaces recognized {TOKEN} placeholders with values derived from
// the project. Unrecognized placeholders are left untouched so templates
// written against a newer token set keep working.
//
// Examples:
//
//	Expand("{PROJECT_DIR}/media", p)  // "/srv/apps/mevzuat/media"
//	Expand("{FUTURE_TOKEN}", p)       // "{FUTURE_TOKEN}"
func Expand(value string, p manifest.ResolvedProject) string {
	return placeholderRegex.ReplaceAllStringFunc(value, func(match string) string {
		token := match[1 : len(match)-1]
		switch token {
		case TokenProjectName:
			return p.Name
		case TokenProjectDir:
			return p.ProjectDir()
		case TokenVenvBin:
			return p.VenvBin()
		}
		return match
	})
}

// =============================================================================
// Scheduled Task Commands
// =============================================================================

// interpreterPrefixes are command tokens that mark a task line as already
// fully spelled out. The check is purely syntactic.
var interpreterPrefixes = map[string]bool{
	"sh":      true,
	"bash":    true,
	"python":  true,
	"python3": true,
	"flock":   true,
	"nice":    true,
}

// ExpandTask expands a scheduled-task command string. A command whose first
// token is neither an absolute path, a placeholder, nor a recognized
// interpreter is treated
// as a short-form application command and rewritten to a full management
// command invocation before placeholder expansion.
//
// Examples:
//
//	ExpandTask("fetch_new_docs", p)
//	// "/srv/apps/mevzuat/venv/bin/python manage.py fetch_new_docs"
//
//	ExpandTask("/srv/apps/mevzuat/venv/bin/python manage.py cleanup", p)
//	// unchanged
func ExpandTask(command string, p manifest.ResolvedProject) string {
	command = strings.TrimSpace(command)
	if command == "" {
		return ""
	}

	first := command
	if idx := strings.IndexAny(command, " \t"); idx != -1 {
		first = command[:idx]
	}

	// A leading "{" means the command starts with a placeholder that will
	// expand to a path, so it is already qualified.
	if !strings.HasPrefix(first, "/") && !strings.HasPrefix(first, "{") && !interpreterPrefixes[first] {
		command = "{" + TokenVenvBin + "}/python manage.py " + command
	}

	return Expand(command, p)
}
