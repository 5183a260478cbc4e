package activeproject

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/GNPower/Vitis/internal/config"
	"github.com/GNPower/Vitis/internal/ctxlog"
	"github.com/GNPower/Vitis/internal/filelock"
	"github.com/GNPower/Vitis/internal/fsutil"
	"github.com/GNPower/Vitis/internal/layout"
	"github.com/GNPower/Vitis/internal/vars"
)

var (
	// ErrNotBuilt is returned when the project to activate has no compiler
	// database yet.
	ErrNotBuilt = errors.New("no compiler database found; build it first")
	// ErrNoActive is returned by Refresh when no project has been activated.
	ErrNoActive = errors.New("no active project")
)

// DefaultClangdAdd and DefaultClangdRemove are the flag adjustments written
// to .clangd when none are configured. The cross compiler's target flags
// confuse clang, so they are stripped.
var (
	DefaultClangdAdd    = []string{"-Wno-unknown-warning-option", "-U__linux__", "-U__clang__"}
	DefaultClangdRemove = []string{"-m*", "-f*"}
)

// DefaultDebounce is how long Watch waits for a burst of database writes to
// settle.
const DefaultDebounce = 500 * time.Millisecond

// Options tune activation.
type Options struct {
	ClangdAdd    []string
	ClangdRemove []string
	Lock         filelock.Options
	Debounce     time.Duration
}

func (o Options) withDefaults() Options {
	if o.ClangdAdd == nil {
		o.ClangdAdd = DefaultClangdAdd
	}
	if o.ClangdRemove == nil {
		o.ClangdRemove = DefaultClangdRemove
	}
	if o.Lock == (filelock.Options{}) {
		o.Lock = filelock.DefaultOptions
	}
	if o.Debounce <= 0 {
		o.Debounce = DefaultDebounce
	}
	return o
}

// Manager activates projects.
type Manager struct {
	Layout  layout.Layout
	Loader  config.Loader
	Options Options
}

// New returns a Manager with default options.
func New(l layout.Layout, loader config.Loader) *Manager {
	return &Manager{Layout: l, Loader: loader}
}

// Result describes one activation.
type Result struct {
	Project string
	// Ancestor is the directory holding the derived files.
	Ancestor string
	// Projects lists the projects whose databases were merged.
	Projects []string
	// Databases lists every per-application database read.
	Databases []string
	Entries   int

	ClangdWritten   bool
	DatabaseWritten bool
}

// Active returns the name of the active project, or "" when none has been
// activated.
func (m *Manager) Active() (string, error) {
	data, err := os.ReadFile(m.Layout.ActiveFile())
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read active project: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Refresh regenerates the derived files for the current active project.
func (m *Manager) Refresh(ctx context.Context) (*Result, error) {
	name, err := m.Active()
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, ErrNoActive
	}
	return m.Activate(ctx, name)
}

// known is a loaded project together with its compiler databases.
type known struct {
	project   *config.Project
	databases []string
}

// Activate marks name as the active project and regenerates the derived
// files. Running it again for the same project changes nothing.
func (m *Manager) Activate(ctx context.Context, name string) (*Result, error) {
	opts := m.Options.withDefaults()
	logger := ctxlog.FromContext(ctx).With("project", name)

	projects, err := m.load(ctx, name)
	if err != nil {
		return nil, err
	}
	active := projects[0]
	if len(active.databases) == 0 {
		return nil, fmt.Errorf("project %s: %w", name, ErrNotBuilt)
	}

	res := &Result{Project: name, Ancestor: m.ancestor(projects)}
	logger.Debug("Resolved tooling directory.", "path", res.Ancestor)

	clangd, err := renderClangd(opts, includeDirs(active.project))
	if err != nil {
		return nil, err
	}

	// Every write happens under the lock. The pointer is written last.
	lock, err := filelock.Acquire(ctx, filepath.Join(res.Ancestor, layout.LockFileName), opts.Lock)
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	// Inactive projects first so the active project's records overwrite.
	order := append(append([]*known{}, projects[1:]...), active)
	merged := newDatabase()
	for _, k := range order {
		for _, path := range k.databases {
			n, err := merged.read(ctx, path)
			if err != nil {
				if k == active {
					return nil, err
				}
				logger.Warn("Skipping unreadable compiler database.", "path", path, "error", err)
				continue
			}
			res.Databases = append(res.Databases, path)
			logger.Debug("Merged compiler database.", "path", path, "entries", n)
		}
		res.Projects = append(res.Projects, k.project.Name)
	}

	data, err := merged.marshal()
	if err != nil {
		return nil, err
	}
	res.Entries = merged.len()
	res.DatabaseWritten, err = fsutil.WriteFileIfChanged(filepath.Join(res.Ancestor, layout.CompileDBName), data, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", layout.CompileDBName, err)
	}

	res.ClangdWritten, err = fsutil.WriteFileIfChanged(filepath.Join(res.Ancestor, layout.ClangdName), clangd, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", layout.ClangdName, err)
	}

	if err := os.MkdirAll(m.Layout.WorkspaceDir, 0755); err != nil {
		return nil, err
	}
	if _, err := fsutil.WriteFileIfChanged(m.Layout.ActiveFile(), []byte(name+"\n"), 0644); err != nil {
		return nil, fmt.Errorf("failed to record active project: %w", err)
	}

	logger.Info("Project is active.",
		"path", res.Ancestor,
		"projects", len(res.Projects),
		"entries", res.Entries,
		"clangd_written", res.ClangdWritten,
		"database_written", res.DatabaseWritten,
	)
	return res, nil
}

// load returns the active project first, then every other known project
// that loads. Projects that fail to load are skipped; the active one must
// load.
func (m *Manager) load(ctx context.Context, name string) ([]*known, error) {
	logger := ctxlog.FromContext(ctx)

	active, err := m.Loader.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	out := []*known{{project: active, databases: m.databases(active)}}

	names, err := m.Loader.Projects(ctx)
	if err != nil {
		return nil, err
	}
	for _, n := range names {
		if n == name {
			continue
		}
		p, err := m.Loader.Load(ctx, n)
		if err != nil {
			logger.Warn("Skipping project that does not load.", "project", n, "error", err)
			continue
		}
		out = append(out, &known{project: p, databases: m.databases(p)})
	}
	return out, nil
}

// databases returns the first existing compiler database of each
// application.
func (m *Manager) databases(p *config.Project) []string {
	var out []string
	for _, app := range p.Applications {
		for _, c := range m.Layout.CompileDBCandidates(app.Name) {
			if info, err := os.Stat(c); err == nil && !info.IsDir() {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// ancestor is the deepest directory holding the workspace and every
// declared source location of every known project.
func (m *Manager) ancestor(projects []*known) string {
	dirs := []string{m.Layout.WorkspaceDir}
	for _, k := range projects {
		for _, app := range k.project.Applications {
			dirs = append(dirs, m.Layout.AppDir(app.Name))
			for _, d := range app.Compiler.SourceFolders {
				if !vars.Unresolved(d) {
					dirs = append(dirs, d)
				}
			}
			for _, f := range app.Compiler.SourceFiles {
				if !vars.Unresolved(f) {
					dirs = append(dirs, filepath.Dir(f))
				}
			}
		}
	}
	if a := fsutil.CommonAncestor(dirs...); a != "" {
		return a
	}
	return m.Layout.SourceRoot
}
