package config

import "fmt"

// ValidationError reports a constraint or cross-reference violation. Field
// is a path such as `platform.conf[domain_1].PROCESSOR_INSTANCE`.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Invalid is shorthand for constructing a ValidationError.
func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}
