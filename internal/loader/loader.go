// Package loader builds a validated config.Project from the layered
// configuration files under a project's directory.
//
// Every file is parsed and every cross-reference checked before Load
// returns, so a project either loads completely or not at all. Nothing
// outside the process is touched.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/GNPower/Vitis/internal/config"
	"github.com/GNPower/Vitis/internal/ctxlog"
	"github.com/GNPower/Vitis/internal/ini"
	"github.com/GNPower/Vitis/internal/layout"
	"github.com/GNPower/Vitis/internal/vars"
)

// PackageResolver locates versioned libraries and drivers inside the
// toolchain installation.
type PackageResolver interface {
	LibraryPath(name, version string) (string, error)
	DriverPath(name, version string) (string, error)
}

// Loader reads projects laid out by a layout.Layout.
type Loader struct {
	layout   layout.Layout
	vars     *vars.Context
	packages PackageResolver
}

var _ config.Loader = (*Loader)(nil)

// New creates a Loader. base holds the invocation-wide variables; packages
// may be nil, in which case versioned packages keep an empty Path and the
// toolchain default location applies.
func New(l layout.Layout, base *vars.Context, packages PackageResolver) *Loader {
	return &Loader{layout: l, vars: base, packages: packages}
}

// Projects lists every directory under the top directory that holds a
// top-level configuration file.
func (l *Loader) Projects(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.layout.TopDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects in %s: %w", l.layout.TopDir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(l.layout.TopFile(e.Name())); err == nil {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	ctxlog.FromContext(ctx).Debug("Discovered projects.", "count", len(names))
	return names, nil
}

// Load composes and validates the named project.
func (l *Loader) Load(ctx context.Context, project string) (*config.Project, error) {
	logger := ctxlog.FromContext(ctx).With("project", project)
	logger.Debug("Loading project configuration.", "dir", l.layout.ProjectConfigDir(project))

	r := &reader{
		loader:  l,
		project: project,
	}

	proj, err := r.read()
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", project, err)
	}
	if err := r.problems.err(); err != nil {
		return nil, fmt.Errorf("project %s: %w", project, err)
	}

	logger.Debug("Project configuration loaded.",
		"platform", proj.Platform.Name,
		"domains", len(proj.Platform.Domains),
		"applications", len(proj.Applications),
	)
	return proj, nil
}

// problems accumulates validation errors so a single run reports all of them.
type problems struct {
	errs []error
}

func (p *problems) add(field, format string, args ...any) {
	p.errs = append(p.errs, config.Invalid(field, format, args...))
}

func (p *problems) addErr(err error) {
	p.errs = append(p.errs, err)
}

func (p *problems) err() error {
	return errors.Join(p.errs...)
}

type reader struct {
	loader   *Loader
	project  string
	problems problems
}

// field names a key inside a configuration file for error messages.
func field(doc *ini.Document, section, key string) string {
	f := fmt.Sprintf("%s[%s]", filepath.Base(doc.File), section)
	if key != "" {
		f += "." + key
	}
	return f
}

// parse loads a referenced configuration file. Syntax errors abort loading;
// a missing file is recorded as a validation problem.
func (r *reader) parse(refField, ref string) (*ini.Document, error) {
	path := r.loader.layout.ConfigFile(r.project, ref)
	if _, err := os.Stat(path); err != nil {
		r.problems.add(refField, "configuration file %s does not exist", path)
		return nil, nil
	}
	doc, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// collection returns the entries of a numbered-section collection. ok is
// false when the collection itself is malformed.
func (r *reader) collection(doc *ini.Document, base string) (entries []*ini.Section, ok bool) {
	entries, err := doc.Collection(base)
	if err != nil {
		var colErr *ini.CollectionError
		if errors.As(err, &colErr) {
			r.problems.addErr(&config.ValidationError{
				Field: field(doc, colErr.Section, ""),
				Msg:   colErr.Msg,
				Err:   err,
			})
			return nil, false
		}
		r.problems.addErr(err)
		return nil, false
	}
	return entries, true
}

func (r *reader) required(doc *ini.Document, sec *ini.Section, key string) string {
	v, _ := sec.Get(key)
	if v == "" {
		r.problems.add(field(doc, sec.Name, key), "required value is missing")
	}
	return v
}

func (r *reader) boolean(doc *ini.Document, sec *ini.Section, key string, fallback bool) bool {
	v, err := sec.Bool(key, fallback)
	if err != nil {
		r.problems.add(field(doc, sec.Name, key), "%v", err)
		return fallback
	}
	return v
}

func (r *reader) optBool(doc *ini.Document, sec *ini.Section, key string) *bool {
	if sec == nil || !sec.Has(key) {
		return nil
	}
	v := r.boolean(doc, sec, key, false)
	return &v
}

func optString(sec *ini.Section, key string) *string {
	if sec == nil {
		return nil
	}
	v, ok := sec.Get(key)
	if !ok {
		return nil
	}
	return &v
}

// optList returns nil when the key is absent and a non-nil, possibly empty,
// slice when it is declared. Each item is resolved on its own.
func optList(sec *ini.Section, key string, ctx *vars.Context) []string {
	if sec == nil || !sec.Has(key) {
		return nil
	}
	items := sec.List(key)
	if ctx != nil {
		items = ctx.ResolveList(items)
	}
	if items == nil {
		items = []string{}
	}
	return items
}

func (r *reader) read() (*config.Project, error) {
	l := r.loader.layout
	topPath := l.TopFile(r.project)
	if _, err := os.Stat(topPath); err != nil {
		return nil, config.Invalid(layout.TopFileName, "project %q has no %s (looked in %s)", r.project, layout.TopFileName, l.ProjectConfigDir(r.project))
	}
	top, err := ini.Load(topPath)
	if err != nil {
		return nil, err
	}

	proj := &config.Project{
		Name:      r.project,
		ConfigDir: l.ProjectConfigDir(r.project),
	}

	platSec, ok := top.Section("platform")
	if !ok {
		return nil, config.Invalid(field(top, "platform", ""), "section is required")
	}
	plat, err := r.readPlatform(top, platSec)
	if err != nil {
		return nil, err
	}
	proj.Platform = plat

	appSecs, ok := r.collection(top, "application")
	if ok && len(appSecs) == 0 {
		r.problems.add(field(top, "application", ""), "at least one application is required")
	}
	seen := make(map[string]string)
	for _, sec := range appSecs {
		app, err := r.readApplication(top, sec, plat)
		if err != nil {
			return nil, err
		}
		if app == nil {
			continue
		}
		if prev, dup := seen[app.Name]; dup {
			r.problems.add(field(top, sec.Name, "NAME"), "application %q is already declared in [%s]", app.Name, prev)
			continue
		}
		seen[app.Name] = sec.Name
		proj.Applications = append(proj.Applications, app)
	}

	return proj, nil
}
