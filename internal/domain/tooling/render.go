// Where: internal/domain/tooling/render.go
// What: Render command specs into concrete invocations.
// Why: Keep package paths and tunables out of the hard-coded argument lists.
package tooling

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Layout is the data available to argument templates.
type Layout struct {
	PackageDir      string
	GeneratedConfig string
	NodeMemoryMB    int
	Token           string
}

// Invocation is a fully rendered child process.
type Invocation struct {
	Dir     string
	Program string
	Args    []string
	Env     []string
}

// CommandLine renders the invocation for display.
func (i Invocation) CommandLine() string {
	parts := append([]string{i.Program}, i.Args...)
	return strings.Join(parts, " ")
}

var templateCache sync.Map

// Render expands spec against layout and appends forwarded verbatim.
// lookupEnv reports variables already present in the wrapper's environment;
// Env entries whose key is set there are skipped.
func Render(
	spec Spec,
	layout Layout,
	forwarded []string,
	lookupEnv func(string) (string, bool),
) (Invocation, error) {
	if strings.TrimSpace(spec.Program) == "" {
		return Invocation{}, errProgramRequired
	}
	inv := Invocation{Program: spec.Program}
	for _, src := range spec.Args {
		arg, err := renderTemplate(src, layout)
		if err != nil {
			return Invocation{}, fmt.Errorf("render %s args: %w", spec.Name, err)
		}
		inv.Args = append(inv.Args, arg)
	}
	inv.Args = append(inv.Args, forwarded...)

	for _, src := range spec.Env {
		entry, err := renderTemplate(src, layout)
		if err != nil {
			return Invocation{}, fmt.Errorf("render %s env: %w", spec.Name, err)
		}
		key, _, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			return Invocation{}, fmt.Errorf("%w: %q", errInvalidEnvEntry, entry)
		}
		if lookupEnv != nil {
			if _, set := lookupEnv(key); set {
				continue
			}
		}
		inv.Env = append(inv.Env, entry)
	}
	return inv, nil
}

func renderTemplate(src string, layout Layout) (string, error) {
	if !strings.Contains(src, "{{") {
		return src, nil
	}
	tmpl, err := loadTemplate(src)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, layout); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func loadTemplate(src string) (*template.Template, error) {
	if cached, ok := templateCache.Load(src); ok {
		tmpl, ok := cached.(*template.Template)
		if !ok {
			return nil, fmt.Errorf("template cache type mismatch for %q", src)
		}
		return tmpl, nil
	}
	tmpl, err := template.New("arg").Option("missingkey=error").Funcs(sprig.TxtFuncMap()).Parse(src)
	if err != nil {
		return nil, err
	}
	templateCache.Store(src, tmpl)
	return tmpl, nil
}
