package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/GNPower/Vitis/internal/app"
	"github.com/GNPower/Vitis/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, files map[string]string) (*testutil.Workspace, *testutil.FakeToolchain, []app.Option) {
	t.Helper()
	ws := testutil.NewWorkspace(t, files)
	fake := testutil.NewFakeToolchain(ws.Layout)
	notFound := func(string) (string, error) { return "", os.ErrNotExist }
	return ws, fake, []app.Option{app.WithClient(fake), app.WithLookPath(notFound)}
}

func TestExecute_Create(t *testing.T) {
	ws, fake, opts := setup(t, testutil.ProjectFiles("blinky"))
	out, logs := &bytes.Buffer{}, &bytes.Buffer{}

	err := Execute(context.Background(), out, logs, []string{"create", "--source-root", ws.Root, "blinky"}, opts...)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Project blinky")
	assert.Contains(t, out.String(), "platform.create")
	assert.Contains(t, out.String(), "created")
	assert.Contains(t, logs.String(), "Synthesis finished.")
	assert.Contains(t, fake.CallStrings(), "build_application hello")

	out.Reset()
	err = Execute(context.Background(), out, logs, []string{"activate", "--source-root", ws.Root, "blinky"}, opts...)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "blinky")
	assert.Contains(t, out.String(), "is active")
}

func TestExecute_ExitCodes(t *testing.T) {
	testCases := []struct {
		name  string
		files map[string]string
		fail  string
		args  []string
		code  int
		msg   string
	}{
		{
			name:  "syntax error",
			files: map[string]string{"Top/blinky/vitis.conf": "NAME = orphan\n"},
			args:  []string{"create", "blinky"},
			code:  ExitUsage,
		},
		{
			name: "validation error",
			files: func() map[string]string {
				f := testutil.ProjectFiles("blinky")
				f["Top/blinky/application.conf"] = "[application]\nPLATFORM = my_platform\nDOMAIN = nope\n"
				return f
			}(),
			args: []string{"create", "blinky"},
			code: ExitUsage,
			msg:  "DOMAIN",
		},
		{
			name:  "step failure",
			files: testutil.ProjectFiles("blinky"),
			fail:  "create_platform my_platform_platform",
			args:  []string{"create", "blinky"},
			code:  ExitFailure,
			msg:   "platform.create",
		},
		{
			name:  "missing entity on update",
			files: testutil.ProjectFiles("blinky"),
			args:  []string{"update", "--platform", "blinky"},
			code:  ExitFailure,
			msg:   "run create first",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ws, fake, opts := setup(t, tc.files)
			if tc.fail != "" {
				fake.Fail[tc.fail] = errors.New("boom")
			}
			args := append([]string{tc.args[0], "--source-root", ws.Root}, tc.args[1:]...)

			out := &bytes.Buffer{}
			err := Execute(context.Background(), out, &bytes.Buffer{}, args, opts...)

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, tc.code, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.msg)
			if tc.code == ExitFailure {
				assert.Contains(t, out.String(), "error:")
			}
		})
	}
}
