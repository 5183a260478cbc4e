package settings

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/GNPower/Vitis/internal/filelock"
	"github.com/GNPower/Vitis/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	root := t.TempDir()

	s, err := Load("", root)
	require.NoError(t, err)
	assert.Empty(t, s.Path)
	assert.Equal(t, Defaults(root), s)

	l := s.ProjectLayout()
	assert.Equal(t, filepath.Join(root, "Top"), l.TopDir)
	assert.Equal(t, filepath.Join(root, "Projects"), l.WorkspaceDir)
	assert.Equal(t, filepath.Join(filepath.Dir(root), "hdl", "data"), l.HDLDataDir)
	assert.Equal(t, filepath.Join(root, "logs", LogFileName), s.Logging.File)
	assert.Equal(t, filelock.DefaultOptions, s.LockOptions())
	assert.Equal(t, BackendVitis, s.Build.Backend)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.hcl"), t.TempDir())
	assert.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{
		FileName: `
layout {
  projects_dir = "ws"
  hdl_data_dir = "/data/hdl"
}

toolchain {
  vitis_root = "/tools/Xilinx/2024.2/Vitis"
}

build {
  backend      = "ninja"
  system_ninja = true
}

logging {
  level = "debug"
  file  = ""
}

tooling {
  lock_retries    = 3
  lock_interval   = "250ms"
  source_patterns = ["**/*.c", "**/*.{S,s}"]
  clangd_add      = ["-Wno-unknown-warning-option"]
}
`,
	})

	s, err := Load("", root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, FileName), s.Path)

	assert.Equal(t, filepath.Join(root, "Top"), s.Layout.TopDir)
	assert.Equal(t, filepath.Join(root, "ws"), s.Layout.ProjectsDir)
	assert.Equal(t, "/data/hdl", s.Layout.HDLDataDir)
	assert.Equal(t, "/tools/Xilinx/2024.2/Vitis", s.Toolchain.VitisRoot)
	assert.Equal(t, "vitis", s.Toolchain.Command)
	assert.Equal(t, Build{Backend: BackendNinja, SystemNinja: true}, s.Build)
	assert.Equal(t, Logging{Level: "debug", Format: "text"}, s.Logging)
	assert.Equal(t, filelock.Options{Retries: 3, Interval: 250 * time.Millisecond}, s.LockOptions())
	assert.Equal(t, []string{"**/*.c", "**/*.{S,s}"}, s.Tooling.SourcePatterns)
	assert.Equal(t, []string{"-Wno-unknown-warning-option"}, s.Tooling.ClangdAdd)
	assert.Nil(t, s.Tooling.ClangdRemove)
}

func TestLoad_SourceRootMovesDerivedDirs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf", "tool.hcl")
	testutil.WriteFiles(t, dir, map[string]string{
		"conf/tool.hcl": "layout {\n  source_root = \"../src\"\n}\n",
	})

	s, err := Load(path, "/ignored")
	require.NoError(t, err)
	src := filepath.Join(dir, "src")
	assert.Equal(t, src, s.Layout.SourceRoot)
	assert.Equal(t, filepath.Join(src, "Projects"), s.Layout.ProjectsDir)
	assert.Equal(t, filepath.Join(src, "logs", LogFileName), s.Logging.File)
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"syntax", "layout {", "failed to parse"},
		{"unknown attribute", "build {\n  jobs = 4\n}\n", "failed to decode"},
		{"backend", "build {\n  backend = \"make\"\n}\n", "build.backend"},
		{"interval", "tooling {\n  lock_interval = \"soon\"\n}\n", "tooling.lock_interval"},
		{"retries", "tooling {\n  lock_retries = -1\n}\n", "tooling.lock_retries"},
		{"empty patterns", "tooling {\n  source_patterns = []\n}\n", "tooling.source_patterns"},
		{"bad pattern", "tooling {\n  source_patterns = [\"[\"]\n}\n", "invalid pattern"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			testutil.WriteFiles(t, root, map[string]string{FileName: tc.content})
			_, err := Load("", root)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}
