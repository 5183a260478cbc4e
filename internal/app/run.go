package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/GNPower/Vitis/internal/activeproject"
	"github.com/GNPower/Vitis/internal/build"
	"github.com/GNPower/Vitis/internal/ctxlog"
	"github.com/GNPower/Vitis/internal/materialize"
	"github.com/GNPower/Vitis/internal/settings"
	"github.com/GNPower/Vitis/internal/synth"
)

// UpdateOptions scope an update. Setting both Platform and Application is
// the same as setting neither.
type UpdateOptions struct {
	Platform    bool
	Application bool
	NoBuild     bool
}

// BuildOptions select the build executor. Fields set here add to the
// settings file; they never turn a setting off.
type BuildOptions struct {
	Ninja       bool
	SystemNinja bool
	Clean       bool
}

// Create synthesizes the whole project, then activates it.
func (a *App) Create(ctx context.Context, project string) (*synth.Report, error) {
	return a.synthesize(ctx, project, synth.Options{}, BuildOptions{})
}

// Update re-runs synthesis against entities that must already exist.
func (a *App) Update(ctx context.Context, project string, opts UpdateOptions) (*synth.Report, error) {
	so := synth.Options{SkipBuild: opts.NoBuild, RequireExisting: true}
	switch {
	case opts.Platform && !opts.Application:
		so.Scope = synth.ScopePlatform
	case opts.Application && !opts.Platform:
		so.Scope = synth.ScopeApplications
	}
	return a.synthesize(ctx, project, so, BuildOptions{})
}

// Build builds the platform and applications of an existing project, then
// activates it.
func (a *App) Build(ctx context.Context, project string, opts BuildOptions) (*synth.Report, error) {
	return a.synthesize(ctx, project, synth.Options{BuildOnly: true}, opts)
}

func (a *App) synthesize(ctx context.Context, project string, opts synth.Options, bo BuildOptions) (*synth.Report, error) {
	ctx = a.context(ctx)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("App.synthesize started.", "project", project)

	p, err := a.loader.Load(ctx, project)
	if err != nil {
		return nil, err
	}

	orch := synth.New(a.layout, a.client)
	orch.Materializer = materialize.New(a.settings.Tooling.SourcePatterns...)
	builds := !opts.SkipBuild || opts.BuildOnly
	if builds {
		orch.Builder, err = a.builder(ctx, bo)
		if err != nil {
			return nil, err
		}
	}

	report, err := orch.Run(ctx, p, opts)
	if err != nil {
		return report, err
	}

	if builds {
		if _, err := a.activeProjects().Activate(ctx, project); err != nil {
			logger.Warn("Project built but could not be activated.", "project", project, "error", err)
		}
	}
	return report, nil
}

// builder selects the build executor from the settings and bo.
func (a *App) builder(ctx context.Context, bo BuildOptions) (build.Executor, error) {
	s := a.settings.Build
	ninja := bo.Ninja || bo.SystemNinja || s.Backend == settings.BackendNinja
	if !ninja {
		if bo.Clean || s.Clean {
			ctxlog.FromContext(ctx).Warn("Clean builds need the ninja executor; ignoring.")
		}
		return build.Integrated{Client: a.client}, nil
	}

	path, err := build.FindNinja(ctx, a.runner, a.lookPath, a.install, bo.SystemNinja || s.SystemNinja)
	if err != nil {
		return nil, fmt.Errorf("cannot build with ninja: %w", err)
	}
	return &build.Ninja{
		Layout: a.layout,
		Path:   path,
		Runner: a.runner,
		Clean:  bo.Clean || s.Clean,
	}, nil
}

// Activate makes project the active project for the shared IDE tooling.
func (a *App) Activate(ctx context.Context, project string) (*activeproject.Result, error) {
	ctx = a.context(ctx)
	res, err := a.activeProjects().Activate(ctx, project)
	if errors.Is(err, activeproject.ErrNotBuilt) {
		return nil, fmt.Errorf("%w (run build %s)", err, project)
	}
	return res, err
}

// Watch activates project and keeps the shared tooling files current until
// ctx is done.
func (a *App) Watch(ctx context.Context, project string) error {
	ctx = a.context(ctx)
	logger := ctxlog.FromContext(ctx)
	return a.activeProjects().Watch(ctx, project, func(res *activeproject.Result, err error) {
		if err == nil {
			logger.Info("Refreshed shared tooling files.", "project", project, "entries", res.Entries)
		}
	})
}
