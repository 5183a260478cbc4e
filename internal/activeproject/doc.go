// Package activeproject keeps the shared IDE tooling files in step with the
// active project.
//
// The active project is named in <workspace>/.active_project. Activation
// writes two derived files at the common ancestor of every known project's
// source directories: a .clangd configuration carrying the active project's
// include directories, and a compile_commands.json formed as the union of
// every known project's per-application compiler databases. When two
// projects describe the same source file, the active project's record wins.
// Project-owned generated files are never modified.
package activeproject
