// Package app wires the engine together. It owns the tool settings, the
// logger, the path layout and the toolchain client, and exposes one method
// per command, decoupled from the CLI that invokes it.
package app
