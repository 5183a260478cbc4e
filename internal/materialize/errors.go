package materialize

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict marks a generated path that already holds something other
	// than what would be created there.
	ErrConflict = errors.New("conflicting generated path")
	// ErrMissingSource marks a configured source that does not exist.
	ErrMissingSource = errors.New("source does not exist")
)

// Error describes a failure to place a source into the application tree.
type Error struct {
	Path   string
	Source string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to materialize %s at %s: %v", e.Source, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
