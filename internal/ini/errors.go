package ini

import "fmt"

// SyntaxError reports malformed configuration text with file and line context.
type SyntaxError struct {
	File string
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

// CollectionError reports a malformed numbered-section collection, such as a
// gap in the suffix sequence. Callers usually translate it into a validation
// error naming the offending section.
type CollectionError struct {
	File    string
	Base    string
	Section string
	Msg     string
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("%s: [%s]: %s", e.File, e.Section, e.Msg)
}
