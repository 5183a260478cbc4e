package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertLogged checks that captured log output contains every fragment on a
// single line. It keeps tests independent of attribute ordering.
func AssertLogged(t *testing.T, logs string, fragments ...string) {
	t.Helper()

	for _, line := range strings.Split(logs, "\n") {
		matched := true
		for _, f := range fragments {
			if !strings.Contains(line, f) {
				matched = false
				break
			}
		}
		if matched {
			return
		}
	}
	require.Failf(t, "log line not found", "no log line contains all of %q", fragments)
}
