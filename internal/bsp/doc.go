// Package bsp merges domain settings directly into a generated
// board-support-package state file (bsp.yaml).
//
// The toolchain's own configuration call reports success for several
// categories of settings it does not persist. Those categories are applied
// here instead. The file is edited as a YAML node tree, never as text:
//
//   - proc_config.<processor>.proc_extra_compiler_flags.value
//   - os_config.<os>.<os>_stdin.value and <os>_stdout.value
//   - lib_info.<library> path and version, or removal when disabled
//   - lib_config.<library>.<param>.value
//   - drv_info.<instance> ver and path for instances of a declared driver
//   - drv_config.<instance>.<param>.value
//
// Nothing outside those keys is touched. When any value changes, the
// top-level `config` key is set to `reconfig` so the next regeneration picks
// the changes up. Applying the same settings twice leaves the file
// byte-identical after the first application.
package bsp
