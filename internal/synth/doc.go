// Package synth drives the synthesis of a project against the toolchain.
//
// A run is planned first: every step is a node in a dependency graph,
// inserted in the fixed synthesis order.
//
//  1. open the workspace
//  2. create the platform
//  3. per domain: create it, then configure it
//  4. per application: create it, project its sources, configure it
//  5. build the platform
//  6. build every application
//  7. write the launch configurations
//
// Execution walks the graph in topological order, which for this graph is
// the order above. Every step first looks for an existing entity and reuses
// it, so running a plan twice creates nothing new. A failing step marks
// every step that depends on it as skipped; steps of unrelated entities
// still run and nothing already done is undone.
//
// Domain configuration asks the toolchain which setting categories it
// persisted and hands the rest to the board support package patcher.
package synth
