// Package dag orders synthesis steps.
//
// An edge from a to b means step b needs step a. The topological order is
// deterministic: steps that do not depend on each other keep the order in
// which they were added. Descendants finds every step that must be skipped
// when a step fails.
package dag
