package ini

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SectionsAndKeys(t *testing.T) {
	doc, err := ParseString("vitis.conf", `
# top-level project file
[platform]
NAME = my_platform
Description: board support
CONFIG=platform

; applications
[application]
NAME = hello
CONFIG = application
`)
	require.NoError(t, err)

	names := []string{}
	for _, s := range doc.Sections() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"platform", "application"}, names)

	plat, ok := doc.Section("platform")
	require.True(t, ok)
	assert.Equal(t, "my_platform", plat.String("name", ""))
	assert.Equal(t, "board support", plat.String("DESCRIPTION", ""))
	assert.Equal(t, "platform", plat.String("Config", ""))
	assert.Equal(t, []string{"name", "description", "config"}, plat.Keys())
	assert.Equal(t, 4, plat.KeyLine("NAME"))
}

func TestParse_ContinuationAndDefault(t *testing.T) {
	doc, err := ParseString("app.conf", `
[DEFAULT]
optimization_level = O2

[compiler]
include_directories =
    ${PARENT_DIR}/inc
    ${PARENT_DIR}/drivers, ${PARENT_DIR}/common

    ${PARENT_DIR}/last
other_flags = -ffunction-sections
`)
	require.NoError(t, err)

	sec, ok := doc.Section("compiler")
	require.True(t, ok)
	raw, _ := sec.Get("include_directories")
	assert.Equal(t, "${PARENT_DIR}/inc\n${PARENT_DIR}/drivers, ${PARENT_DIR}/common\n${PARENT_DIR}/last", raw)
	assert.Equal(t, "O2", sec.String("optimization_level", ""))
	assert.Equal(t, []string{"include_directories", "other_flags", "optimization_level"}, sec.Keys())

	assert.False(t, doc.Has(DefaultSection), "DEFAULT is not a regular section")
}

func TestParse_SyntaxErrors(t *testing.T) {
	testCases := []struct {
		name string
		text string
		line int
		msg  string
	}{
		{"key before section", "NAME = x\n[platform]\n", 1, "before any section"},
		{"unterminated header", "[platform\nNAME = x\n", 1, "malformed section header"},
		{"empty header", "[]\n", 1, "malformed section header"},
		{"missing separator", "[platform]\nNAME x\n", 2, "expected 'key = value'"},
		{"duplicate section", "[a]\nk=1\n[a]\n", 3, "duplicate section"},
		{"duplicate key", "[a]\nk=1\nK=2\n", 3, "duplicate key"},
		{"empty key", "[a]\n= value\n", 2, "empty key"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseString("bad.conf", tc.text)
			require.Error(t, err)

			var synErr *SyntaxError
			require.True(t, errors.As(err, &synErr))
			assert.Equal(t, "bad.conf", synErr.File)
			assert.Equal(t, tc.line, synErr.Line)
			assert.Contains(t, synErr.Msg, tc.msg)
		})
	}
}

func TestSplitList_SeparatorForms(t *testing.T) {
	want := []string{"a.c", "b.c", "a.c", "dir/c.S"}
	inputs := map[string]string{
		"comma":   "a.c, b.c,a.c , dir/c.S",
		"newline": "a.c\nb.c\na.c\ndir/c.S",
		"mixed":   "a.c,\n b.c ,,\na.c\n\n,dir/c.S,",
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			if diff := cmp.Diff(want, SplitList(in)); diff != "" {
				t.Errorf("SplitList() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	assert.Empty(t, SplitList(" , \n ,"))
}

func TestSection_Bool(t *testing.T) {
	doc, err := ParseString("launch.conf", "[behavior]\na = yes\nb = Off\nc = 1\nd = maybe\n")
	require.NoError(t, err)
	sec, _ := doc.Section("behavior")

	v, err := sec.Bool("a", false)
	require.NoError(t, err)
	assert.True(t, v)

	v, err = sec.Bool("b", true)
	require.NoError(t, err)
	assert.False(t, v)

	v, err = sec.Bool("c", false)
	require.NoError(t, err)
	assert.True(t, v)

	v, err = sec.Bool("missing", true)
	require.NoError(t, err)
	assert.True(t, v)

	_, err = sec.Bool("d", false)
	assert.ErrorContains(t, err, "not a boolean")
}

func TestDocument_Collection(t *testing.T) {
	t.Run("ordered by numeric suffix", func(t *testing.T) {
		doc, err := ParseString("platform.conf", `
[domain_10]
NAME = j
[domain_2]
NAME = b
[domain]
NAME = zero
[domain_1]
NAME = a
[domain_3]
NAME = c
[domain_4]
NAME = d
[domain_5]
NAME = e
[domain_6]
NAME = f
[domain_7]
NAME = g
[domain_8]
NAME = h
[domain_9]
NAME = i
[domains]
NAME = unrelated
`)
		require.NoError(t, err)

		entries, err := doc.Collection("domain")
		require.NoError(t, err)
		var got []string
		for _, s := range entries {
			got = append(got, s.String("name", ""))
		}
		assert.Equal(t, []string{"zero", "a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}, got)
	})

	t.Run("gap is an error", func(t *testing.T) {
		doc, err := ParseString("platform.conf", "[domain]\nNAME=a\n[domain_2]\nNAME=b\n")
		require.NoError(t, err)

		_, err = doc.Collection("domain")
		var colErr *CollectionError
		require.True(t, errors.As(err, &colErr))
		assert.Equal(t, "domain_2", colErr.Section)
		assert.Contains(t, colErr.Msg, "[domain_1] is missing")
	})

	t.Run("explicit zero suffix is an error", func(t *testing.T) {
		doc, err := ParseString("platform.conf", "[domain_0]\nNAME=a\n")
		require.NoError(t, err)
		_, err = doc.Collection("domain")
		assert.ErrorContains(t, err, "suffix 0 is implicit")
	})

	t.Run("non-canonical suffix is an error", func(t *testing.T) {
		doc, err := ParseString("platform.conf", "[domain]\nNAME=a\n[domain_01]\nNAME=b\n")
		require.NoError(t, err)
		_, err = doc.Collection("domain")
		assert.ErrorContains(t, err, "non-canonical")
	})

	t.Run("numbered entries without bare section", func(t *testing.T) {
		doc, err := ParseString("domain.conf", "[library_1]\nname=xilffs\n[library_2]\nname=xilrsa\n")
		require.NoError(t, err)
		entries, err := doc.Collection("library")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "library_1", entries[0].Name)
	})

	t.Run("absent collection is empty", func(t *testing.T) {
		doc, err := ParseString("domain.conf", "[domain]\nOS=standalone\n")
		require.NoError(t, err)
		entries, err := doc.Collection("driver")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
