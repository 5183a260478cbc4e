package vitiscli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/GNPower/Vitis/internal/config"
	"github.com/GNPower/Vitis/internal/layout"
	"github.com/GNPower/Vitis/internal/testutil"
	"github.com/GNPower/Vitis/internal/toolchain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptRun struct {
	dir    string
	name   string
	args   []string
	script string
}

// scriptRunner captures each generated script at the time it is run.
type scriptRunner struct {
	mu   sync.Mutex
	runs []scriptRun
	out  []byte
	err  error
}

func (r *scriptRunner) Run(_ context.Context, dir, name string, args ...string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run := scriptRun{dir: dir, name: name, args: args}
	if len(args) == 2 {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return nil, err
		}
		run.script = string(data)
	}
	r.runs = append(r.runs, run)
	return r.out, r.err
}

func newClient(t *testing.T) (*Client, *scriptRunner, layout.Layout, context.Context) {
	t.Helper()
	lay := layout.New(filepath.Join(t.TempDir(), "src"))
	runner := &scriptRunner{}
	c := New(lay, "", runner, filepath.Join(lay.WorkspaceDir, ".vitisgen"))
	return c, runner, lay, testutil.Context(t, nil)
}

func zyboPlatform() *config.Platform {
	return &config.Platform{
		Name:               "zybo",
		Source:             config.SourceXSA,
		HardwareDesignPath: "/hdl/data/zybo.xsa",
		BootComponents:     true,
		Domains: []*config.Domain{
			{Name: "standalone_ps7_cortexa9_0", DisplayName: "Bare metal", Processor: "ps7_cortexa9_0", OS: "standalone"},
		},
	}
}

func TestClient_CreatePlatform(t *testing.T) {
	c, runner, lay, ctx := newClient(t)

	require.NoError(t, c.CreatePlatform(ctx, zyboPlatform()))
	require.Len(t, runner.runs, 1)

	run := runner.runs[0]
	assert.Equal(t, lay.WorkspaceDir, run.dir)
	assert.Equal(t, "vitis", run.name)
	assert.Equal(t, "-s", run.args[0])
	assert.Equal(t, filepath.Join(lay.WorkspaceDir, ".vitisgen", "create_platform_zybo_platform.py"), run.args[1])

	assert.Contains(t, run.script, "import vitis\n")
	assert.Contains(t, run.script, `name="zybo_platform",`)
	assert.Contains(t, run.script, `hw_design="/hdl/data/zybo.xsa",`)
	assert.Contains(t, run.script, `cpu="ps7_cortexa9_0",`)
	assert.Contains(t, run.script, "no_boot_bsp=False,")
	assert.Contains(t, run.script, "platform.generate_boot_bsp(")
	assert.Contains(t, run.script, "vitis.dispose()")

	t.Run("without boot components", func(t *testing.T) {
		p := zyboPlatform()
		p.BootComponents = false
		require.NoError(t, c.CreatePlatform(ctx, p))
		script := runner.runs[len(runner.runs)-1].script
		assert.Contains(t, script, "no_boot_bsp=True,")
		assert.NotContains(t, script, "generate_boot_bsp")
	})

	t.Run("fixed hardware is rejected", func(t *testing.T) {
		before := len(runner.runs)
		p := zyboPlatform()
		p.Source = config.SourceFixed

		err := c.CreatePlatform(ctx, p)
		var tcErr *toolchain.Error
		require.ErrorAs(t, err, &tcErr)
		assert.Equal(t, "create_platform", tcErr.Op)
		assert.Len(t, runner.runs, before)
	})
}

func TestClient_ConfigureDomain(t *testing.T) {
	t.Run("nothing to configure", func(t *testing.T) {
		c, runner, _, ctx := newClient(t)
		p := zyboPlatform()
		p.Domains[0].Libraries = []*config.Package{{Name: "xilffs", Enabled: true}}

		res, err := c.ConfigureDomain(ctx, p, p.Domains[0])
		require.NoError(t, err)
		assert.Empty(t, runner.runs)
		assert.Equal(t, []toolchain.Category{toolchain.CategoryCompilerFlags, toolchain.CategoryLibraryParams},
			res.Unpersisted([]toolchain.Category{
				toolchain.CategoryCompilerFlags,
				toolchain.CategoryLibraries,
				toolchain.CategoryLibraryParams,
				toolchain.CategoryDrivers,
			}))
	})

	t.Run("packages", func(t *testing.T) {
		c, runner, _, ctx := newClient(t)
		p := zyboPlatform()
		d := p.Domains[0]
		d.Libraries = []*config.Package{
			{Name: "xilffs", Version: "5.2", Enabled: true, Path: "/opt/Xilinx/2024.2/data/embeddedsw/lib/sw_services/xilffs_5.2"},
			{Name: "lwip220", Enabled: false},
			{Name: "xilrsa", Enabled: true},
		}
		d.Drivers = []*config.Package{
			{Name: "uartps", Version: "3.13", Enabled: true, Path: "/opt/drivers/uartps_3.13"},
		}

		_, err := c.ConfigureDomain(ctx, p, d)
		require.NoError(t, err)
		require.Len(t, runner.runs, 1)

		script := runner.runs[0].script
		assert.Contains(t, script, `domain = platform.get_domain(name="standalone_ps7_cortexa9_0")`)
		assert.Contains(t, script, `domain.set_lib(lib_name="xilffs", path="/opt/Xilinx/2024.2/data/embeddedsw/lib/sw_services/xilffs_5.2")`)
		assert.Contains(t, script, `domain.remove_lib(lib_name="lwip220")`)
		assert.NotContains(t, script, "xilrsa")
		assert.Contains(t, script, `domain.update_path(option="DRIVER", name="uartps", new_path="/opt/drivers/uartps_3.13")`)
	})
}

func TestClient_RunFailure(t *testing.T) {
	c, runner, _, ctx := newClient(t)
	runner.out = []byte("ERROR: component not found")
	runner.err = errors.New("exit status 1")

	app := &config.Application{Name: "hello"}
	err := c.BuildApplication(ctx, app)

	var tcErr *toolchain.Error
	require.ErrorAs(t, err, &tcErr)
	assert.Equal(t, "build_application", tcErr.Op)
	assert.Equal(t, "hello", tcErr.Entity)
	assert.Equal(t, "ERROR: component not found", tcErr.Output)
	assert.Contains(t, runner.runs[0].script, "raise SystemExit(1)")
}

func TestClient_Exists(t *testing.T) {
	c, _, lay, ctx := newClient(t)
	p := zyboPlatform()
	d := p.Domains[0]
	app := &config.Application{Name: "hello"}

	for _, check := range []func() (bool, error){
		func() (bool, error) { return c.PlatformExists(ctx, p) },
		func() (bool, error) { return c.DomainExists(ctx, p, d) },
		func() (bool, error) { return c.ApplicationExists(ctx, app) },
	} {
		ok, err := check()
		require.NoError(t, err)
		assert.False(t, ok)
	}

	require.NoError(t, os.MkdirAll(lay.DomainDir(p.ComponentName(), d.Processor, d.Name), 0755))
	require.NoError(t, os.MkdirAll(lay.AppDir(app.Name), 0755))

	ok, err := c.PlatformExists(ctx, p)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = c.DomainExists(ctx, p, d)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = c.ApplicationExists(ctx, app)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPy(t *testing.T) {
	testCases := []struct {
		in   any
		want string
	}{
		{true, "True"},
		{false, "False"},
		{"/opt/Xilinx/2024.2", `"/opt/Xilinx/2024.2"`},
		{"say \"hi\"", `"say \"hi\""`},
		{3, "3"},
	}
	for _, tc := range testCases {
		got, err := py(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}
