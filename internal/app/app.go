package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/GNPower/Vitis/internal/activeproject"
	"github.com/GNPower/Vitis/internal/ctxlog"
	"github.com/GNPower/Vitis/internal/layout"
	"github.com/GNPower/Vitis/internal/loader"
	"github.com/GNPower/Vitis/internal/settings"
	"github.com/GNPower/Vitis/internal/toolchain"
	"github.com/GNPower/Vitis/internal/toolchain/vitiscli"
	"github.com/GNPower/Vitis/internal/vars"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	logger   *slog.Logger
	logFile  *os.File
	settings *settings.Settings
	layout   layout.Layout

	install  *toolchain.Installation
	client   toolchain.Client
	loader   *loader.Loader
	runner   toolchain.Runner
	lookPath toolchain.LookPathFunc
}

// Option customizes an App. Tests use options to replace the vendor CLI.
type Option func(*App)

// WithClient replaces the vendor CLI client.
func WithClient(c toolchain.Client) Option {
	return func(a *App) { a.client = c }
}

// WithRunner replaces the process runner used for ninja and the vendor CLI.
func WithRunner(r toolchain.Runner) Option {
	return func(a *App) { a.runner = r }
}

// WithLookPath replaces executable lookup on PATH.
func WithLookPath(f toolchain.LookPathFunc) Option {
	return func(a *App) { a.lookPath = f }
}

// NewApp reads the settings file, configures logging and locates the
// toolchain. A toolchain that cannot be found is not an error until a
// command needs it; one that is found but too old is.
func NewApp(outW io.Writer, cfg *Config, opts ...Option) (*App, error) {
	s, err := settings.Load(cfg.SettingsPath, cfg.SourceRoot)
	if err != nil {
		return nil, err
	}
	if cfg.LogLevel != "" {
		s.Logging.Level = cfg.LogLevel
	}
	if cfg.LogFormat != "" {
		s.Logging.Format = cfg.LogFormat
	}

	a := &App{
		settings: s,
		layout:   s.ProjectLayout(),
		runner:   toolchain.ExecRunner{},
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(a)
	}

	w := outW
	if s.Logging.File != "" {
		f, err := openLogFile(s.Logging.File)
		if err != nil {
			return nil, err
		}
		a.logFile = f
		w = io.MultiWriter(outW, f)
	}
	a.logger = newLogger(s.Logging.Level, s.Logging.Format, w)
	a.logger.Debug("Logger configured successfully.", "settings", s.Path, "log_file", s.Logging.File)

	if err := a.detectToolchain(); err != nil {
		a.Close()
		return nil, err
	}

	base := map[string]string{
		vars.ProjectDir: a.layout.WorkspaceDir,
		vars.ParentDir:  a.layout.SourceRoot,
	}
	var packages loader.PackageResolver
	if a.install != nil {
		base[vars.VitisInstallDir] = a.install.Root
		packages = a.install
	}
	vctx, err := vars.NewContext(base)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("invalid path layout: %w", err)
	}
	a.loader = loader.New(a.layout, vctx, packages)

	if a.client == nil {
		a.client = vitiscli.New(a.layout, s.Toolchain.Command, a.runner, filepath.Join(a.layout.WorkspaceDir, ".vitisgen"))
	}
	return a, nil
}

func (a *App) detectToolchain() error {
	var (
		inst *toolchain.Installation
		err  error
	)
	if root := a.settings.Toolchain.VitisRoot; root != "" {
		inst, err = toolchain.FromRoot(root)
		if err != nil {
			return err
		}
	} else {
		inst, err = toolchain.Detect(a.lookPath, a.settings.Toolchain.Command)
		if errors.Is(err, toolchain.ErrUnsupportedVersion) {
			return err
		}
		if err != nil {
			a.logger.Warn("Toolchain installation not detected.", "error", err)
			return nil
		}
	}
	a.install = inst
	a.logger.Debug("Toolchain installation detected.", "root", inst.Root, "version", inst.Version)
	return nil
}

// Close releases the log file.
func (a *App) Close() error {
	if a.logFile == nil {
		return nil
	}
	err := a.logFile.Close()
	a.logFile = nil
	return err
}

// Layout returns the path convention in use.
func (a *App) Layout() layout.Layout {
	return a.layout
}

func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

func (a *App) activeProjects() *activeproject.Manager {
	m := activeproject.New(a.layout, a.loader)
	m.Options = activeproject.Options{
		ClangdAdd:    a.settings.Tooling.ClangdAdd,
		ClangdRemove: a.settings.Tooling.ClangdRemove,
		Lock:         a.settings.LockOptions(),
	}
	return m
}
