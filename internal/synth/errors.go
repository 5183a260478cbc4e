package synth

import "fmt"

// StepError identifies the failed step of a run.
type StepError struct {
	Project string
	Entity  string
	Step    Kind
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("project %s: %s %s: %v", e.Project, e.Step, e.Entity, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
