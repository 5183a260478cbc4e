// Package cli defines the vitisgen command tree: create, update, build and
// activate. Flags become an app.Config, results are rendered as a step
// report, and errors map to exit codes (2 for configuration and usage
// problems, 1 for failed toolchain work).
package cli
