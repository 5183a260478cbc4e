package app

import (
	"os"
	"testing"

	"github.com/GNPower/Vitis/internal/testutil"
	"github.com/stretchr/testify/require"
)

// TestApp bundles an App with the fixtures it runs against.
type TestApp struct {
	*App
	Workspace *testutil.Workspace
	Fake      *testutil.FakeToolchain
	Logs      *testutil.SafeBuffer
}

// SetupAppTest creates an App over a temporary source root holding files.
// The App drives a FakeToolchain instead of the vendor CLI and detects no
// toolchain installation unless opts say otherwise.
func SetupAppTest(t *testing.T, files map[string]string, opts ...Option) *TestApp {
	t.Helper()

	ws := testutil.NewWorkspace(t, files)
	fake := testutil.NewFakeToolchain(ws.Layout)
	cfg, err := NewConfig(Config{SourceRoot: ws.Root, LogLevel: "debug"})
	require.NoError(t, err)

	logBuffer := &testutil.SafeBuffer{}
	notFound := func(string) (string, error) { return "", os.ErrNotExist }
	opts = append([]Option{WithClient(fake), WithLookPath(notFound)}, opts...)
	a, err := NewApp(logBuffer, cfg, opts...)
	require.NoError(t, err)

	t.Cleanup(func() {
		a.Close()
		testutil.DumpLogs(t, logBuffer)
	})
	return &TestApp{App: a, Workspace: ws, Fake: fake, Logs: logBuffer}
}
