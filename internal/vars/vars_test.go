package vars

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	ctx, err := NewContext(map[string]string{
		VitisInstallDir: `C:\Xilinx\Vitis\2024.1`,
		ProjectDir:      "/work/src/Projects",
		ParentDir:       "/work/src",
	})
	require.NoError(t, err)
	return ctx
}

func TestResolve(t *testing.T) {
	ctx := newTestContext(t)

	testCases := []struct {
		name string
		in   string
		want string
	}{
		{"known name", "${PARENT_DIR}/drivers", "/work/src/drivers"},
		{"two known names", "${PROJECT_DIR}:${PARENT_DIR}", "/work/src/Projects:/work/src"},
		{"windows install root", "${VITIS_INSTALL_DIR}/data", "C:/Xilinx/Vitis/2024.1/data"},
		{"backslashes in value", `${PARENT_DIR}\lib\inc`, "/work/src/lib/inc"},
		{"unknown build-time name", "${CMAKE_SOURCE_DIR}/lscript.ld", "${CMAKE_SOURCE_DIR}/lscript.ld"},
		{"mixed known and unknown", "${PARENT_DIR}/${CMAKE_BUILD_TYPE}", "/work/src/${CMAKE_BUILD_TYPE}"},
		{"traversal is not a bare name", "${PARENT_DIR.x}", "${PARENT_DIR.x}"},
		{"unterminated token", "${PARENT_DIR", "${PARENT_DIR"},
		{"empty token", "${}", "${}"},
		{"no placeholders", "plain/path", "plain/path"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ctx.Resolve(tc.in))
		})
	}
}

func TestResolve_Idempotent(t *testing.T) {
	ctx := newTestContext(t)
	inputs := []string{
		"${PARENT_DIR}/a",
		"${CMAKE_SOURCE_DIR}/b",
		`${VITIS_INSTALL_DIR}\data\${XILINX_VERSION}`,
		"${PROJECT_DIR}${PARENT_DIR}",
	}
	for _, in := range inputs {
		once := ctx.Resolve(in)
		assert.Equal(t, once, ctx.Resolve(once), "input %q", in)
	}
}

func TestResolve_UnknownNeverAltered(t *testing.T) {
	ctx, err := NewContext(map[string]string{"CMAKE": "/nope", "SOURCE_DIR": "/nope"})
	require.NoError(t, err)
	assert.Equal(t, "${CMAKE_SOURCE_DIR}", ctx.Resolve("${CMAKE_SOURCE_DIR}"))
}

func TestResolveList_ItemByItem(t *testing.T) {
	ctx := newTestContext(t)
	got := ctx.ResolveList([]string{"${PARENT_DIR}/a", "${PARENT_DIR}/b"})
	assert.Equal(t, []string{"/work/src/a", "/work/src/b"}, got)
	assert.Nil(t, ctx.ResolveList(nil))
}

func TestNewContext_Rejects(t *testing.T) {
	_, err := NewContext(map[string]string{"A": "${B}/x", "B": "/b"})
	assert.ErrorContains(t, err, "must be fully resolved")

	_, err = NewContext(map[string]string{"not valid": "/x"})
	assert.ErrorContains(t, err, "invalid variable name")
}

func TestWith(t *testing.T) {
	base := newTestContext(t)
	ext, err := base.With(map[string]string{AppDir: "/work/src/Projects/hello"})
	require.NoError(t, err)

	assert.Equal(t, "/work/src/Projects/hello/src", ext.Resolve("${APP_DIR}/src"))
	assert.Equal(t, "${APP_DIR}", base.Resolve("${APP_DIR}"), "base context is unchanged")
	assert.Contains(t, ext.Names(), AppDir)
}

func TestUnresolved(t *testing.T) {
	assert.True(t, Unresolved("${CMAKE_SOURCE_DIR}/inc"))
	assert.True(t, Unresolved("/src/${workspaceFolder}"))
	assert.False(t, Unresolved("/src/common/inc"))
	assert.False(t, Unresolved("$HOME/inc"))
}
