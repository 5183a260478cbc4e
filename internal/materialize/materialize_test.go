package materialize

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/GNPower/Vitis/internal/fsutil"
	"github.com/GNPower/Vitis/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ext  string
	root string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	base := t.TempDir()
	f := fixture{ext: filepath.Join(base, "external"), root: filepath.Join(base, "ws", "hello", "src")}
	testutil.WriteFiles(t, f.ext, map[string]string{
		"main.c":                   "int main(void) { return 0; }\n",
		"lib/util.c":               "void util(void) {}\n",
		"drivers/uart/src/uart.c":  "void uart(void) {}\n",
		"drivers/uart/src/uart.h":  "void uart(void);\n",
		"drivers/uart/asm/entry.S": ".global entry\n",
		"drivers/uart/README.md":   "docs\n",
		"drivers/gpio/gpio.c":      "void gpio(void) {}\n",
		"ld/custom.ld":             "MEMORY {}\n",
	})
	require.NoError(t, os.MkdirAll(filepath.Join(f.ext, "drivers", "empty"), 0755))
	require.NoError(t, os.MkdirAll(f.root, 0755))
	return f
}

func (f fixture) path(rel string) string {
	return fsutil.Rel(f.ext, rel)
}

func (f fixture) request() Request {
	return Request{
		Root:         f.root,
		Files:        []string{f.path("main.c"), f.path("lib/util.c")},
		Folders:      []string{f.path("drivers")},
		LinkerScript: f.path("ld/custom.ld"),
	}
}

func refuse(oldname, newname string) error {
	return &os.LinkError{Op: "symlink", Old: oldname, New: newname, Err: os.ErrPermission}
}

func refuseDirs(oldname, newname string) error {
	if fi, err := os.Stat(oldname); err == nil && fi.IsDir() {
		return refuse(oldname, newname)
	}
	return os.Symlink(oldname, newname)
}

func assertLink(t *testing.T, path, want string) {
	t.Helper()
	dest, err := os.Readlink(path)
	require.NoError(t, err, "%s is not a link", path)
	assert.Equal(t, want, dest)
}

func TestMaterialize_Symlinks(t *testing.T) {
	f := newFixture(t)
	ctx := testutil.Context(t, nil)
	m := New()

	res, err := m.Materialize(ctx, f.request())
	require.NoError(t, err)

	assertLink(t, filepath.Join(f.root, "main.c"), f.path("main.c"))
	assertLink(t, filepath.Join(f.root, "util.c"), f.path("lib/util.c"))
	assertLink(t, filepath.Join(f.root, "drivers"), f.path("drivers"))
	assertLink(t, filepath.Join(f.root, LinkerScriptName), f.path("ld/custom.ld"))
	assert.Equal(t, 4, res.Count(Linked))

	// Edits to the original are visible through the tree.
	require.NoError(t, os.WriteFile(f.path("drivers/gpio/gpio.c"), []byte("// edited\n"), 0644))
	assert.Equal(t, "// edited\n", testutil.ReadFile(t, filepath.Join(f.root, "drivers", "gpio", "gpio.c")))

	t.Run("second run reuses everything", func(t *testing.T) {
		res, err := m.Materialize(ctx, f.request())
		require.NoError(t, err)
		assert.Equal(t, len(res.Entries), res.Count(Reused))
	})
}

func TestMaterialize_FallbackRecreatesStructure(t *testing.T) {
	f := newFixture(t)
	ctx := testutil.Context(t, nil)
	m := &Materializer{Symlink: refuseDirs}

	_, err := m.Materialize(ctx, f.request())
	require.NoError(t, err)

	info, err := os.Lstat(filepath.Join(f.root, "drivers"))
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "folder should be a real directory")

	dirs, err := fsutil.FindDirs(filepath.Join(f.root, "drivers"))
	require.NoError(t, err)
	want, err := fsutil.FindDirs(f.path("drivers"))
	require.NoError(t, err)
	assert.Equal(t, want, dirs)

	assertLink(t, filepath.Join(f.root, "drivers", "uart", "src", "uart.c"), f.path("drivers/uart/src/uart.c"))
	assertLink(t, filepath.Join(f.root, "drivers", "uart", "asm", "entry.S"), f.path("drivers/uart/asm/entry.S"))
	assertLink(t, filepath.Join(f.root, "drivers", "gpio", "gpio.c"), f.path("drivers/gpio/gpio.c"))
	assert.NoFileExists(t, filepath.Join(f.root, "drivers", "uart", "src", "uart.h"))
	assert.NoFileExists(t, filepath.Join(f.root, "drivers", "uart", "README.md"))

	t.Run("rerun reconciles the recreated folder", func(t *testing.T) {
		res, err := m.Materialize(ctx, f.request())
		require.NoError(t, err)
		assert.Equal(t, 1, res.Count(Recreated))
		assert.Equal(t, len(res.Entries)-1, res.Count(Reused))
	})
}

func TestMaterialize_FallbackCopiesWithoutLinks(t *testing.T) {
	f := newFixture(t)
	ctx := testutil.Context(t, nil)
	m := &Materializer{Symlink: refuse}

	res, err := m.Materialize(ctx, f.request())
	require.NoError(t, err)

	got, err := fsutil.FindFiles(f.root, "**")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"drivers/gpio/gpio.c",
		"drivers/uart/asm/entry.S",
		"drivers/uart/src/uart.c",
		LinkerScriptName,
		"main.c",
		"util.c",
	}, got)
	assert.Equal(t, "MEMORY {}\n", testutil.ReadFile(t, filepath.Join(f.root, LinkerScriptName)))
	assert.Equal(t, 6, res.Count(Copied))

	t.Run("identical copies are reused", func(t *testing.T) {
		res, err := m.Materialize(ctx, f.request())
		require.NoError(t, err)
		assert.Zero(t, res.Count(Copied))
	})

	t.Run("modified copy is a conflict", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(f.root, "drivers", "gpio", "gpio.c"), []byte("local change\n"), 0644))
		_, err := m.Materialize(ctx, f.request())
		var merr *Error
		require.ErrorAs(t, err, &merr)
		assert.ErrorIs(t, err, ErrConflict)
		assert.Equal(t, filepath.Join(f.root, "drivers", "gpio", "gpio.c"), merr.Path)
	})
}

func TestMaterialize_Conflicts(t *testing.T) {
	testCases := []struct {
		name    string
		prepare func(t *testing.T, f fixture) Request
		wantErr error
	}{
		{
			name: "existing file differs",
			prepare: func(t *testing.T, f fixture) Request {
				require.NoError(t, os.WriteFile(filepath.Join(f.root, "main.c"), []byte("generated\n"), 0644))
				return Request{Root: f.root, Files: []string{f.path("main.c")}}
			},
			wantErr: ErrConflict,
		},
		{
			name: "existing link points elsewhere",
			prepare: func(t *testing.T, f fixture) Request {
				require.NoError(t, os.Symlink(f.path("lib/util.c"), filepath.Join(f.root, "main.c")))
				return Request{Root: f.root, Files: []string{f.path("main.c")}}
			},
			wantErr: ErrConflict,
		},
		{
			name: "folder target is a file",
			prepare: func(t *testing.T, f fixture) Request {
				require.NoError(t, os.WriteFile(filepath.Join(f.root, "drivers"), nil, 0644))
				return Request{Root: f.root, Folders: []string{f.path("drivers")}}
			},
			wantErr: ErrConflict,
		},
		{
			name: "two files with the same name",
			prepare: func(t *testing.T, f fixture) Request {
				testutil.WriteFiles(t, f.ext, map[string]string{"other/main.c": "x\n"})
				return Request{Root: f.root, Files: []string{f.path("main.c"), f.path("other/main.c")}}
			},
			wantErr: ErrConflict,
		},
		{
			name: "file and folder with the same name",
			prepare: func(t *testing.T, f fixture) Request {
				testutil.WriteFiles(t, f.ext, map[string]string{"flat/drivers": "x\n"})
				return Request{Root: f.root, Files: []string{f.path("flat/drivers")}, Folders: []string{f.path("drivers")}}
			},
			wantErr: ErrConflict,
		},
		{
			name: "missing source file",
			prepare: func(t *testing.T, f fixture) Request {
				return Request{Root: f.root, Files: []string{f.path("nope.c")}}
			},
			wantErr: ErrMissingSource,
		},
		{
			name: "missing linker script",
			prepare: func(t *testing.T, f fixture) Request {
				return Request{Root: f.root, LinkerScript: f.path("nope.ld")}
			},
			wantErr: ErrMissingSource,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			req := tc.prepare(t, f)
			before, err := fsutil.FindFiles(f.root, "**")
			require.NoError(t, err)

			_, err = New().Materialize(testutil.Context(t, nil), req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)

			after, err := fsutil.FindFiles(f.root, "**")
			require.NoError(t, err)
			assert.Equal(t, before, after, "a failed request must not change the tree")
		})
	}
}

func TestMaterialize_DuplicateEntriesCollapse(t *testing.T) {
	f := newFixture(t)
	res, err := New().Materialize(testutil.Context(t, nil), Request{
		Root:  f.root,
		Files: []string{f.path("main.c"), f.path("main.c")},
	})
	require.NoError(t, err)
	assert.Len(t, res.Entries, 1)
}

func TestMaterialize_LinkerScriptReplacesTemplateDefault(t *testing.T) {
	f := newFixture(t)
	target := filepath.Join(f.root, LinkerScriptName)
	require.NoError(t, os.WriteFile(target, []byte("/* template default */\n"), 0644))

	res, err := New().Materialize(testutil.Context(t, nil), Request{Root: f.root, LinkerScript: f.path("ld/custom.ld")})
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, Replaced, res.Entries[0].Action)
	assertLink(t, target, f.path("ld/custom.ld"))
}

func TestMaterialize_MissingRoot(t *testing.T) {
	f := newFixture(t)
	_, err := New().Materialize(testutil.Context(t, nil), Request{Root: filepath.Join(f.root, "absent")})
	assert.Error(t, err)
}

func TestUnsupported(t *testing.T) {
	assert.True(t, Unsupported(refuse("a", "b")))
	assert.True(t, Unsupported(&os.LinkError{Op: "symlink", Err: errors.ErrUnsupported}))
	assert.False(t, Unsupported(&os.LinkError{Op: "symlink", Err: os.ErrExist}))
}
