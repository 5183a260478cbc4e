// Package ini parses the layered key/value configuration files that describe
// a project: the top-level file, the platform file, one file per domain, one
// per application and one per launch configuration.
//
// # Syntax
//
// The format follows the conventions of Python's configparser, which is how
// these files have historically been written:
//
//   - `[name]` opens a section. Section names are case-sensitive.
//   - `key = value` or `key: value` assigns a value. Keys are case-insensitive.
//   - Lines whose first non-blank character is `#` or `;` are comments.
//   - An indented line following a key continues that key's value. The
//     continuation is joined with a newline, so multi-line lists survive
//     until ListValue splitting.
//   - A `[DEFAULT]` section supplies fallback values for every other section.
//
// # Collections
//
// Repeated sections of the same kind are written with a numeric suffix:
// `domain`, `domain_1`, `domain_2`. Collection returns them as an ordered
// slice, parsed once, so callers never re-derive order from names. The bare
// name is entry 0. Suffixes must be contiguous from 1.
package ini
