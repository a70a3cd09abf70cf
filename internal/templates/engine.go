package templates

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

var (
	// ErrTemplateNotFound is returned when no template file exists for a name.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrTemplateRender wraps parse and execution failures.
	ErrTemplateRender = errors.New("template error")
)

// Engine renders a named template with a context.
type Engine interface {
	Render(name string, ctx Context) (string, error)
}

// Pongo2Engine loads templates from a single directory. Names starting with
// an underscore are partials: they are never rendered by the pipeline but
// stay reachable from `{% include %}` and `{% extends %}`.
type Pongo2Engine struct {
	dir string
	set *pongo2.TemplateSet
}

// pongo2 keeps the autoescape default in a package variable.
var disableAutoescape sync.Once

// NewPongo2Engine creates an engine rooted at dir. Templates are cached for
// the engine's lifetime, so watch mode builds a fresh engine per run.
//
// Output of {{ }} is not escaped: feed fields carrying HTML reach the page
// as-is. Templates opt in per value with the escape filter or per block
// with {% autoescape on %}.
func NewPongo2Engine(dir string) (*Pongo2Engine, error) {
	disableAutoescape.Do(func() { pongo2.SetAutoescape(false) })

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve template dir: %w", err)
	}
	loader, err := pongo2.NewLocalFileSystemLoader(abs)
	if err != nil {
		return nil, fmt.Errorf("template loader: %w", err)
	}
	return &Pongo2Engine{
		dir: abs,
		set: pongo2.NewSet("sitegen", loader),
	}, nil
}

// Dir returns the template root.
func (e *Pongo2Engine) Dir() string { return e.dir }

// Render resolves name relative to the template root and executes it.
func (e *Pongo2Engine) Render(name string, ctx Context) (string, error) {
	if name == "" || filepath.IsAbs(name) || strings.Contains(filepath.ToSlash(name), "..") {
		return "", fmt.Errorf("%w: invalid name %q", ErrTemplateNotFound, name)
	}

	info, err := os.Stat(filepath.Join(e.dir, name))
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	tpl, err := e.set.FromFile(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrTemplateRender, name, err)
	}

	out, err := tpl.Execute(pongo2.Context(ctx))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrTemplateRender, name, err)
	}
	return out, nil
}
