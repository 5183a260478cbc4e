package testutil

import (
	"path/filepath"
	"testing"

	"github.com/GNPower/Vitis/internal/layout"
	"github.com/GNPower/Vitis/internal/vars"
	"github.com/stretchr/testify/require"
)

// ProjectFiles returns the configuration tree of a minimal project: one
// platform built from `design_wrapper` with one standalone domain on
// ps7_cortexa9_0, and one application without launch configuration. Keys
// are relative to the source root.
func ProjectFiles(project string) map[string]string {
	dir := "Top/" + project + "/"
	return map[string]string{
		dir + "vitis.conf": `
[platform]
NAME = my_platform
DESCRIPTION = Zybo Z7 platform
CONFIG = platform

[application]
NAME = hello
CONFIG = application
`,
		dir + "platform.conf": `
[flow]
SOURCE = xsa
XSA = design_wrapper

[boot]
BOOT_COMPONENTS = true

[domain]
NAME = standalone_domain
DISPLAY_NAME = Standalone
PROCESSOR_INSTANCE = ps7_cortexa9_0
CONFIG = domain
`,
		dir + "domain.conf": `
[domain]
OS = standalone
`,
		dir + "application.conf": `
[application]
PLATFORM = my_platform
DOMAIN = standalone_domain
TEMPLATE =
`,
	}
}

// Workspace is a temporary source root with its derived layout.
type Workspace struct {
	Root   string
	Layout layout.Layout
	Vars   *vars.Context
}

// NewWorkspace creates a temporary source root, writes files below it and
// returns the layout and base variable context for it.
func NewWorkspace(t *testing.T, files map[string]string) *Workspace {
	t.Helper()
	root := filepath.Join(t.TempDir(), "src")
	WriteFiles(t, root, files)

	l := layout.New(root)
	v, err := vars.NewContext(map[string]string{
		vars.ProjectDir: l.WorkspaceDir,
		vars.ParentDir:  l.SourceRoot,
	})
	require.NoError(t, err)

	return &Workspace{Root: root, Layout: l, Vars: v}
}
