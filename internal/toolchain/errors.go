package toolchain

import "fmt"

// Error reports a failed toolchain call.
type Error struct {
	Op     string
	Entity string
	Output string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("toolchain %s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
