// Package templates provides the built-in artifact templates, embedded in
// the binary and rendered with text/template. It implements the render
// package's TemplateSource collaborator.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"text/template"

	"github.com/onurmatik/StageOps/internal/core/render"
)

//go:embed templates/*.tmpl
var builtinFS embed.FS

// Source renders named templates from a parsed template set.
type Source struct {
	set *template.Template
}

// Default returns a Source backed by the embedded built-in templates.
// The embedded set is parsed at startup; a parse failure is a programming
// error and panics.
func Default() *Source {
	src, err := NewFromFS(builtinFS, "templates")
	if err != nil {
		panic(fmt.Sprintf("templates: parsing built-in templates: %v", err))
	}
	return src
}

// NewFromFS parses every *.tmpl file under dir in fsys. Template names are
// the file names without the .tmpl suffix, matching the names the render
// package asks for (e.g. "app.service").
func NewFromFS(fsys fs.FS, dir string) (*Source, error) {
	set := template.New("stageops")

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read template dir: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || len(name) < 6 || name[len(name)-5:] != ".tmpl" {
			continue
		}
		raw, err := fs.ReadFile(fsys, dir+"/"+name)
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", name, err)
		}
		if _, err := set.New(name[:len(name)-5]).Parse(string(raw)); err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
	}

	return &Source{set: set}, nil
}

// Render executes the named template with the given context.
func (s *Source) Render(name string, ctx render.Context) (string, error) {
	tmpl := s.set.Lookup(name)
	if tmpl == nil {
		return "", fmt.Errorf("template %q: %w", name, render.ErrTemplateMissing)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("template %q: %v: %w", name, err, render.ErrTemplateInvalid)
	}
	return buf.String(), nil
}
