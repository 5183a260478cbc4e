// Package build runs the platform and application builds of a synthesized
// project.
//
// Two executors are available. Integrated delegates to the toolchain client,
// the same collaborator that created the entities. Ninja runs the generated
// build.ninja files directly with either the ninja shipped in the toolchain
// installation or one found on PATH, and needs no toolchain session.
// Choosing one changes who performs the build, never which builds run or in
// what order.
package build
