package synth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/GNPower/Vitis/internal/bsp"
	"github.com/GNPower/Vitis/internal/build"
	"github.com/GNPower/Vitis/internal/config"
	"github.com/GNPower/Vitis/internal/ctxlog"
	"github.com/GNPower/Vitis/internal/launch"
	"github.com/GNPower/Vitis/internal/materialize"
	"github.com/GNPower/Vitis/internal/toolchain"
	"github.com/GNPower/Vitis/internal/usercfg"
)

// ErrMissing is returned when an entity must already exist but does not.
var ErrMissing = errors.New("does not exist; run create first")

func (o *Orchestrator) stepWorkspace(ctx context.Context, r *run) (Outcome, string, error) {
	_, err := os.Stat(o.Layout.WorkspaceDir)
	existed := err == nil
	if !existed && r.plan.Options.RequireExisting {
		return "", "", fmt.Errorf("workspace %s %w", o.Layout.WorkspaceDir, ErrMissing)
	}
	if err := o.Client.SetWorkspace(ctx, o.Layout.WorkspaceDir); err != nil {
		return "", "", err
	}
	if existed {
		return Reused, o.Layout.WorkspaceDir, nil
	}
	return Created, o.Layout.WorkspaceDir, nil
}

func (o *Orchestrator) stepPlatformCreate(ctx context.Context, r *run) (Outcome, string, error) {
	p := r.plan.Project.Platform
	ok, err := o.Client.PlatformExists(ctx, p)
	if err != nil {
		return "", "", err
	}
	if ok {
		return Reused, "", nil
	}
	if r.plan.Options.RequireExisting {
		return "", "", fmt.Errorf("platform %s %w", p.ComponentName(), ErrMissing)
	}
	if err := o.Client.CreatePlatform(ctx, p); err != nil {
		return "", "", err
	}
	return Created, string(p.Source), nil
}

func (o *Orchestrator) stepDomainCreate(ctx context.Context, r *run, d *config.Domain) (Outcome, string, error) {
	p := r.plan.Project.Platform
	ok, err := o.Client.DomainExists(ctx, p, d)
	if err != nil {
		return "", "", err
	}
	if ok {
		return Reused, d.Processor, nil
	}
	if r.plan.Options.RequireExisting {
		return "", "", fmt.Errorf("domain %s %w", d.Name, ErrMissing)
	}
	if err := o.Client.CreateDomain(ctx, p, d); err != nil {
		return "", "", err
	}
	return Created, d.Processor, nil
}

// stepDomainConfigure applies the domain's settings through the toolchain
// and patches the state file for every declared category the toolchain did
// not persist. A failed apply call leaves all declared categories to the
// patcher.
func (o *Orchestrator) stepDomainConfigure(ctx context.Context, r *run, d *config.Domain) (Outcome, string, error) {
	logger := ctxlog.FromContext(ctx)
	if !d.HasSettings() {
		return Unchanged, "no settings declared", nil
	}
	p := r.plan.Project.Platform
	declared := toolchain.Declared(d)

	res, applyErr := o.Client.ConfigureDomain(ctx, p, d)
	var terr *toolchain.Error
	switch {
	case errors.As(applyErr, &terr):
		logger.Warn("Toolchain failed to apply domain settings, patching the state file instead.", "error", applyErr)
		res = toolchain.ApplyResult{}
	case applyErr != nil:
		return "", "", applyErr
	}

	missing := res.Unpersisted(declared)
	if len(missing) == 0 {
		return Configured, categories(declared), nil
	}

	path := o.Layout.BSPFile(p.ComponentName(), d.Processor, d.Name)
	logger.Debug("Patching board support package state.", "path", path, "categories", categories(missing))
	patch, err := bsp.PatchFile(path, bsp.SettingsFor(d, missing))
	if err != nil {
		return "", "", errors.Join(err, applyErr)
	}
	if !patch.Changed {
		return Unchanged, "patched " + categories(missing), nil
	}
	if err := o.Client.RegenerateDomain(ctx, p, d); err != nil {
		return "", "", err
	}
	return Patched, fmt.Sprintf("patched %s (%d keys)", categories(missing), len(patch.Keys)), nil
}

func categories(cs []toolchain.Category) string {
	s := make([]string, len(cs))
	for i, c := range cs {
		s[i] = string(c)
	}
	return strings.Join(s, ",")
}

func (o *Orchestrator) stepApplicationCreate(ctx context.Context, r *run, app *config.Application) (Outcome, string, error) {
	p := r.plan.Project.Platform
	ok, err := o.Client.ApplicationExists(ctx, app)
	if err != nil {
		return "", "", err
	}
	if ok {
		return Reused, "", nil
	}
	if r.plan.Options.RequireExisting {
		return "", "", fmt.Errorf("application %s %w", app.Name, ErrMissing)
	}
	if _, err := os.Stat(o.Layout.XPFM(p.ComponentName())); err != nil {
		return "", "", fmt.Errorf("platform %s %w", p.ComponentName(), ErrMissing)
	}
	if err := o.Client.CreateApplication(ctx, p, app); err != nil {
		return "", "", err
	}
	return Created, app.Domain, nil
}

func (o *Orchestrator) stepApplicationSources(ctx context.Context, r *run, app *config.Application) (Outcome, string, error) {
	logger := ctxlog.FromContext(ctx)
	m := o.Materializer
	if m == nil {
		m = materialize.New()
	}
	root := o.Layout.AppSrcDir(app.Name)

	res, err := m.Materialize(ctx, materialize.Request{
		Root:    root,
		Files:   app.Compiler.SourceFiles,
		Folders: app.Compiler.SourceFolders,
	})
	if err != nil {
		return "", "", err
	}

	if app.Linker.Script != "" {
		sres, err := m.Materialize(ctx, materialize.Request{Root: root, LinkerScript: app.Linker.Script})
		switch {
		case err == nil:
			r.scripts[app.Name] = usercfg.LinkerScriptRef
			res.Entries = append(res.Entries, sres.Entries...)
		case errors.Is(err, materialize.ErrMissingSource):
			return "", "", err
		default:
			logger.Warn("Could not project the linker script, referencing it by absolute path.", "error", err)
			r.scripts[app.Name] = `"` + app.Linker.Script + `"`
		}
	}

	placed := res.Count(materialize.Linked) + res.Count(materialize.Copied) + res.Count(materialize.Replaced)
	detail := fmt.Sprintf("%d linked, %d copied, %d recreated, %d reused",
		res.Count(materialize.Linked), res.Count(materialize.Copied)+res.Count(materialize.Replaced),
		res.Count(materialize.Recreated), res.Count(materialize.Reused))
	if placed == 0 {
		return Unchanged, detail, nil
	}
	return Configured, detail, nil
}

func (o *Orchestrator) stepApplicationConfigure(ctx context.Context, r *run, app *config.Application) (Outcome, string, error) {
	script, ok := r.scripts[app.Name]
	if !ok && app.Linker.Script != "" {
		script = `"` + app.Linker.Script + `"`
	}

	changed, err := usercfg.ApplyFile(o.Layout.UserConfigFile(app.Name), usercfg.Settings(app, script))
	if err != nil {
		return "", "", err
	}
	globbed, err := usercfg.PatchCMakeListsFile(o.Layout.CMakeListsFile(app.Name))
	if err != nil {
		return "", "", err
	}
	if globbed {
		changed = append(changed, "CMakeLists.txt")
	}
	if len(changed) == 0 {
		return Unchanged, "", nil
	}
	return Configured, strings.Join(changed, ","), nil
}

func (o *Orchestrator) builder() build.Executor {
	if o.Builder != nil {
		return o.Builder
	}
	return build.Integrated{Client: o.Client}
}

func (o *Orchestrator) stepPlatformBuild(ctx context.Context, r *run) (Outcome, string, error) {
	p := r.plan.Project.Platform
	if r.plan.Options.BuildOnly {
		ok, err := o.Client.PlatformExists(ctx, p)
		if err != nil {
			return "", "", err
		}
		if !ok {
			return "", "", fmt.Errorf("platform %s %w", p.ComponentName(), ErrMissing)
		}
	}
	if err := o.builder().BuildPlatform(ctx, p); err != nil {
		return "", "", err
	}
	return Built, "", nil
}

func (o *Orchestrator) stepApplicationBuild(ctx context.Context, r *run, app *config.Application) (Outcome, string, error) {
	if r.plan.Options.BuildOnly {
		ok, err := o.Client.ApplicationExists(ctx, app)
		if err != nil {
			return "", "", err
		}
		if !ok {
			return "", "", fmt.Errorf("application %s %w", app.Name, ErrMissing)
		}
	}
	if err := o.builder().BuildApplication(ctx, r.plan.Project.Platform, app); err != nil {
		return "", "", err
	}
	return Built, "", nil
}

func (o *Orchestrator) stepApplicationLaunch(ctx context.Context, r *run, app *config.Application) (Outcome, string, error) {
	g := launch.Generator{Layout: o.Layout, PlatformComponent: r.plan.Project.Platform.ComponentName()}
	configs, err := g.Configurations(app)
	if err != nil {
		return "", "", err
	}
	written, err := launch.WriteFile(o.Layout.LaunchFile(app.Name), configs)
	if err != nil {
		return "", "", err
	}
	names := make([]string, len(configs))
	for i, c := range configs {
		names[i] = c.Name
	}
	if !written {
		return Unchanged, strings.Join(names, ","), nil
	}
	return Configured, strings.Join(names, ","), nil
}
