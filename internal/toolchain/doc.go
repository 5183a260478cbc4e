// Package toolchain defines the contract between the synthesis engine and the
// vendor toolchain that creates, configures and builds platform, domain and
// application components.
//
// # Capability negotiation
//
// The vendor's domain configuration call is known to report success for
// settings it never persists. Rather than branching on error text, a Client
// reports, per Category, whether the settings were persisted. The caller
// routes every category that was not persisted through the board support
// package patcher. A returned error is a real failure and is fatal for the
// domain.
//
// # Installation
//
// Installation locates the toolchain root, enforces the minimum supported
// version and resolves versioned library and driver sources inside it.
package toolchain
