package synth

import (
	"context"
	"errors"
	"time"

	"github.com/GNPower/Vitis/internal/build"
	"github.com/GNPower/Vitis/internal/config"
	"github.com/GNPower/Vitis/internal/ctxlog"
	"github.com/GNPower/Vitis/internal/layout"
	"github.com/GNPower/Vitis/internal/materialize"
	"github.com/GNPower/Vitis/internal/toolchain"
	"github.com/google/uuid"
)

// Orchestrator plans and executes synthesis runs.
type Orchestrator struct {
	Layout layout.Layout
	Client toolchain.Client
	// Builder performs the builds. Defaults to building through Client.
	Builder build.Executor
	// Materializer projects application sources. Defaults to symbolic
	// links with the default source patterns.
	Materializer *materialize.Materializer
}

// New returns an Orchestrator with the default builder and materializer.
func New(l layout.Layout, client toolchain.Client) *Orchestrator {
	return &Orchestrator{
		Layout:       l,
		Client:       client,
		Builder:      build.Integrated{Client: client},
		Materializer: materialize.New(),
	}
}

// run holds the state shared by the steps of one execution.
type run struct {
	plan *Plan
	// scripts maps an application to its USER_LINKER_SCRIPT value.
	scripts map[string]string
}

// Run plans and executes in one call.
func (o *Orchestrator) Run(ctx context.Context, project *config.Project, opts Options) (*Report, error) {
	plan, err := o.Plan(project, opts)
	if err != nil {
		return nil, err
	}
	return o.Execute(ctx, plan)
}

// Execute runs the steps of plan in order. A failed step skips every step
// depending on it; the others still run. The returned error joins the
// StepError of every failed step. The report is always returned.
func (o *Orchestrator) Execute(ctx context.Context, plan *Plan) (*Report, error) {
	report := &Report{RunID: uuid.NewString(), Project: plan.Project.Name}
	ctx = ctxlog.With(ctx, "run_id", report.RunID, "project", plan.Project.Name)
	logger := ctxlog.FromContext(ctx)
	logger.Info("Starting synthesis.", "steps", len(plan.Steps))

	r := &run{plan: plan, scripts: make(map[string]string)}
	skipped := make(map[string]string)
	start := time.Now()

	for _, s := range plan.Steps {
		res := StepResult{ID: s.ID, Kind: s.Kind, Entity: s.Entity}

		if cause, ok := skipped[s.ID]; ok {
			res.Outcome = Skipped
			res.Detail = "after failed " + cause
			report.Steps = append(report.Steps, res)
			logger.Warn("Skipping step.", "step", s.Kind, "entity", s.Entity, "cause", cause)
			continue
		}
		if err := ctx.Err(); err != nil {
			res.Outcome = Skipped
			res.Detail = "canceled"
			report.Steps = append(report.Steps, res)
			continue
		}

		stepCtx := ctxlog.With(ctx, "step", string(s.Kind), "entity", s.Entity)
		stepStart := time.Now()
		outcome, detail, err := s.run(stepCtx, r)
		res.Duration = time.Since(stepStart)
		res.Detail = detail

		if err != nil {
			res.Outcome = Failed
			res.Err = &StepError{Project: plan.Project.Name, Entity: s.Entity, Step: s.Kind, Err: err}
			report.Steps = append(report.Steps, res)
			logger.Error("Step failed.", "step", s.Kind, "entity", s.Entity, "error", err)

			descendants, derr := plan.graph.Descendants(s.ID)
			if derr != nil {
				return report, derr
			}
			for _, id := range descendants {
				if _, ok := skipped[id]; !ok {
					skipped[id] = s.ID
				}
			}
			continue
		}

		res.Outcome = outcome
		report.Steps = append(report.Steps, res)
		logger.Info("Step finished.", "step", s.Kind, "entity", s.Entity, "outcome", outcome, "detail", detail, "duration", res.Duration)
	}

	err := report.Err()
	if cerr := ctx.Err(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	if err != nil {
		logger.Error("Synthesis finished with errors.", "duration", time.Since(start))
		return report, err
	}
	logger.Info("Synthesis finished.", "duration", time.Since(start))
	return report, nil
}
