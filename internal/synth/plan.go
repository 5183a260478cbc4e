package synth

import (
	"context"
	"fmt"

	"github.com/GNPower/Vitis/internal/config"
	"github.com/GNPower/Vitis/internal/dag"
)

// Kind names a synthesis step.
type Kind string

const (
	KindWorkspace            Kind = "workspace"
	KindPlatformCreate       Kind = "platform.create"
	KindDomainCreate         Kind = "domain.create"
	KindDomainConfigure      Kind = "domain.configure"
	KindApplicationCreate    Kind = "application.create"
	KindApplicationSources   Kind = "application.sources"
	KindApplicationConfigure Kind = "application.configure"
	KindPlatformBuild        Kind = "platform.build"
	KindApplicationBuild     Kind = "application.build"
	KindApplicationLaunch    Kind = "application.launch"
)

// Scope limits a plan to part of the project.
type Scope int

const (
	ScopeAll Scope = iota
	ScopePlatform
	ScopeApplications
)

// Options select the steps of a plan.
type Options struct {
	Scope Scope
	// SkipBuild leaves out the platform and application builds.
	SkipBuild bool
	// BuildOnly plans only the builds.
	BuildOnly bool
	// RequireExisting turns a missing entity into an error instead of
	// creating it.
	RequireExisting bool
}

// Step is one planned unit of work.
type Step struct {
	ID     string
	Kind   Kind
	Entity string

	run func(ctx context.Context, r *run) (Outcome, string, error)
}

// Plan is an ordered, validated set of steps for one project.
type Plan struct {
	Project *config.Project
	Options Options
	Steps   []*Step

	graph *dag.Graph
	byID  map[string]*Step
}

func stepID(k Kind, entity string) string {
	return string(k) + ":" + entity
}

type planner struct {
	p     *Plan
	graph *dag.Graph
	err   error
}

func (pl *planner) add(k Kind, entity string, fn func(ctx context.Context, r *run) (Outcome, string, error), deps ...string) string {
	id := stepID(k, entity)
	pl.graph.AddNode(id)
	for _, d := range deps {
		if d == "" || !pl.graph.Has(d) {
			continue
		}
		if err := pl.graph.AddEdge(d, id); err != nil && pl.err == nil {
			pl.err = err
		}
	}
	s := &Step{ID: id, Kind: k, Entity: entity, run: fn}
	pl.p.byID[id] = s
	return id
}

// Plan validates the project's cross references and lays out the steps
// selected by opts. Nothing is executed.
func (o *Orchestrator) Plan(project *config.Project, opts Options) (*Plan, error) {
	if err := Validate(project); err != nil {
		return nil, err
	}

	pl := &planner{
		p:     &Plan{Project: project, Options: opts, byID: make(map[string]*Step)},
		graph: dag.New(),
	}
	platform := project.Platform
	component := platform.ComponentName()
	withPlatform := opts.Scope != ScopeApplications
	withApps := opts.Scope != ScopePlatform
	create := !opts.BuildOnly
	build := !opts.SkipBuild || opts.BuildOnly

	ws := pl.add(KindWorkspace, project.Name, o.stepWorkspace)

	platformID := ""
	domainIDs := make(map[string]string)
	if withPlatform && create {
		platformID = pl.add(KindPlatformCreate, component, o.stepPlatformCreate, ws)
		for _, d := range platform.Domains {
			d := d
			created := pl.add(KindDomainCreate, d.Name, func(ctx context.Context, r *run) (Outcome, string, error) {
				return o.stepDomainCreate(ctx, r, d)
			}, platformID)
			domainIDs[d.Name] = pl.add(KindDomainConfigure, d.Name, func(ctx context.Context, r *run) (Outcome, string, error) {
				return o.stepDomainConfigure(ctx, r, d)
			}, created)
		}
	}

	appReady := make(map[string]string)
	if withApps && create {
		for _, app := range project.Applications {
			app := app
			last := pl.add(KindApplicationCreate, app.Name, func(ctx context.Context, r *run) (Outcome, string, error) {
				return o.stepApplicationCreate(ctx, r, app)
			}, ws, platformID, domainIDs[app.Domain])
			if app.HasSources() {
				last = pl.add(KindApplicationSources, app.Name, func(ctx context.Context, r *run) (Outcome, string, error) {
					return o.stepApplicationSources(ctx, r, app)
				}, last)
			}
			appReady[app.Name] = pl.add(KindApplicationConfigure, app.Name, func(ctx context.Context, r *run) (Outcome, string, error) {
				return o.stepApplicationConfigure(ctx, r, app)
			}, last)
		}
	}

	platformBuild := ""
	if withPlatform && build {
		deps := []string{ws, platformID}
		for _, d := range platform.Domains {
			deps = append(deps, domainIDs[d.Name])
		}
		platformBuild = pl.add(KindPlatformBuild, component, o.stepPlatformBuild, deps...)
	}
	if withApps && build {
		for _, app := range project.Applications {
			app := app
			id := pl.add(KindApplicationBuild, app.Name, func(ctx context.Context, r *run) (Outcome, string, error) {
				return o.stepApplicationBuild(ctx, r, app)
			}, ws, platformBuild, appReady[app.Name])
			appReady[app.Name] = id
		}
	}
	if withApps && create {
		for _, app := range project.Applications {
			if len(app.Launches) == 0 {
				continue
			}
			app := app
			pl.add(KindApplicationLaunch, app.Name, func(ctx context.Context, r *run) (Outcome, string, error) {
				return o.stepApplicationLaunch(ctx, r, app)
			}, appReady[app.Name])
		}
	}

	if pl.err != nil {
		return nil, pl.err
	}
	order, err := pl.graph.TopologicalOrder()
	if err != nil {
		return nil, fmt.Errorf("invalid synthesis plan: %w", err)
	}
	for _, id := range order {
		pl.p.Steps = append(pl.p.Steps, pl.p.byID[id])
	}
	pl.p.graph = pl.graph
	return pl.p, nil
}

// Validate checks the cross references synthesis relies on. Loaded projects
// already satisfy them; the check guards projects built by other means.
func Validate(p *config.Project) error {
	if p == nil || p.Platform == nil {
		return config.Invalid("platform", "project has no platform")
	}
	if len(p.Platform.Domains) == 0 {
		return config.Invalid("platform.domains", "platform %s declares no domain", p.Platform.Name)
	}
	for _, app := range p.Applications {
		if app.Platform != p.Platform.Name {
			return config.Invalid("application."+app.Name+".PLATFORM",
				"%q does not match the project platform %q", app.Platform, p.Platform.Name)
		}
		if _, ok := p.Platform.Domain(app.Domain); !ok {
			return config.Invalid("application."+app.Name+".DOMAIN",
				"%q does not match any domain of platform %s", app.Domain, p.Platform.Name)
		}
	}
	return nil
}
