package layout

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_DefaultRoots(t *testing.T) {
	l := New(filepath.FromSlash("/repo/src"))

	assert.Equal(t, filepath.FromSlash("/repo/src/Top"), l.TopDir)
	assert.Equal(t, filepath.FromSlash("/repo/src/Projects"), l.WorkspaceDir)
	assert.Equal(t, filepath.FromSlash("/repo/hdl/data"), l.HDLDataDir)
}

func TestLayout_Paths(t *testing.T) {
	l := New(filepath.FromSlash("/repo/src"))
	p := filepath.FromSlash

	assert.Equal(t, p("/repo/src/Top/blinky/vitis.conf"), l.TopFile("blinky"))
	assert.Equal(t, p("/repo/src/Top/blinky/platform.conf"), l.ConfigFile("blinky", "platform"))
	assert.Equal(t, p("/repo/hdl/data/design_wrapper.xsa"), l.HardwareDesign("design_wrapper"))
	assert.Equal(t,
		p("/repo/src/Projects/zybo_platform/ps7_cortexa9_0/standalone_domain/bsp/bsp.yaml"),
		l.BSPFile("zybo_platform", "ps7_cortexa9_0", "standalone_domain"))
	assert.Equal(t,
		p("/repo/src/Projects/zybo_platform/export/zybo_platform/zybo_platform.xpfm"),
		l.XPFM("zybo_platform"))
	assert.Equal(t, p("/repo/src/Projects/hello/src/UserConfig.cmake"), l.UserConfigFile("hello"))
	assert.Equal(t, p("/repo/src/Projects/hello/_ide/.theia/launch.json"), l.LaunchFile("hello"))
	assert.Equal(t, p("/repo/src/Projects/.active_project"), l.ActiveFile())
	assert.Equal(t, []string{
		p("/repo/src/Projects/hello/build/compile_commands.json"),
		p("/repo/src/Projects/hello/compile_commands.json"),
	}, l.CompileDBCandidates("hello"))
}
