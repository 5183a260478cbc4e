package synth

import (
	"errors"
	"time"
)

// Outcome is what a step did.
type Outcome string

const (
	Created    Outcome = "created"
	Reused     Outcome = "reused"
	Configured Outcome = "configured"
	Patched    Outcome = "patched"
	Unchanged  Outcome = "unchanged"
	Built      Outcome = "built"
	Failed     Outcome = "failed"
	Skipped    Outcome = "skipped"
)

// StepResult records one executed or skipped step.
type StepResult struct {
	ID       string
	Kind     Kind
	Entity   string
	Outcome  Outcome
	Detail   string
	Err      error
	Duration time.Duration
}

// Report is the ordered log of a run.
type Report struct {
	RunID   string
	Project string
	Steps   []StepResult
}

// Err joins the errors of every failed step, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, s := range r.Steps {
		if s.Err != nil {
			errs = append(errs, s.Err)
		}
	}
	return errors.Join(errs...)
}

// OK reports whether no step failed or was skipped.
func (r *Report) OK() bool {
	for _, s := range r.Steps {
		if s.Outcome == Failed || s.Outcome == Skipped {
			return false
		}
	}
	return true
}

// Kinds returns the kind of every step in order.
func (r *Report) Kinds() []Kind {
	out := make([]Kind, len(r.Steps))
	for i, s := range r.Steps {
		out[i] = s.Kind
	}
	return out
}

// Result returns the result of the step with the given kind and entity.
func (r *Report) Result(k Kind, entity string) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Kind == k && s.Entity == entity {
			return s, true
		}
	}
	return StepResult{}, false
}
