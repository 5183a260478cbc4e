package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/GNPower/Vitis/internal/cli"
	"github.com/stretchr/testify/require"
)

func TestRun_Help(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"--help"})

	require.NoError(t, err, "run() should return a nil error for --help")
	require.Contains(t, out.String(), "Usage:")
	require.Contains(t, out.String(), "activate")
}

func TestRun_UsageErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		args []string
		msg  string
	}{
		{"unknown flag", []string{"create", "--this-is-not-a-valid-flag", "p"}, "unknown flag: --this-is-not-a-valid-flag"},
		{"missing project", []string{"build"}, "requires exactly one project name"},
		{"unknown command", []string{"destroy", "p"}, "unknown command"},
		{"bad log level", []string{"create", "--source-root", t.TempDir(), "--log-level", "loud", "p"}, "invalid log level"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, tc.args)

			var exitErr *cli.ExitError
			require.True(t, errors.As(err, &exitErr), "expected an ExitError, got %v", err)
			require.Equal(t, cli.ExitUsage, exitErr.Code)
			require.Contains(t, exitErr.Message, tc.msg)
		})
	}
}
