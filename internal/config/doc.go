// Package config defines the format-agnostic, validated model of one project
// (config.Project) together with the Loader interface that produces it.
//
// A Project is constructed fresh per invocation, never mutated afterwards and
// consumed read-only by synthesis and activation. All path-like values held
// by the model have already been expanded by the vars package; placeholders
// that belong to the build backend remain verbatim.
//
// Concrete loaders live in separate packages. The loader package composes
// the layered key/value files found under a project's configuration
// directory.
package config
