package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, ids []string, edges [][2]string) *Graph {
	t.Helper()
	g := New()
	for _, id := range ids {
		g.AddNode(id)
	}
	for _, e := range edges {
		require.NoError(t, g.AddEdge(e[0], e[1]))
	}
	return g
}

func TestGraph_AddNode(t *testing.T) {
	g := New()
	assert.False(t, g.Has("workspace"))

	g.AddNode("workspace")
	g.AddNode("workspace")
	g.AddNode("platform.create")

	assert.True(t, g.Has("workspace"))
	assert.Equal(t, []string{"workspace", "platform.create"}, g.ids)
}

func TestGraph_AddEdge(t *testing.T) {
	g := build(t, []string{"a", "b"}, [][2]string{{"a", "b"}, {"a", "b"}})
	assert.Equal(t, []int{0}, g.deps[1])
	assert.Equal(t, []int{1}, g.dependents[0])

	testCases := []struct {
		name     string
		from, to string
		want     string
	}{
		{"missing dependency", "zz", "a", "unknown dependency zz of step a"},
		{"missing step", "a", "zz", "unknown step zz"},
		{"self edge", "a", "a", "cannot depend on itself"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorContains(t, g.AddEdge(tc.from, tc.to), tc.want)
		})
	}
}

func TestGraph_TopologicalOrder(t *testing.T) {
	testCases := []struct {
		name  string
		ids   []string
		edges [][2]string
		want  []string
	}{
		{
			name: "empty",
			want: []string{},
		},
		{
			name: "independent steps keep insertion order",
			ids:  []string{"c", "a", "b"},
			want: []string{"c", "a", "b"},
		},
		{
			name: "dependencies first",
			ids:  []string{"app.build", "workspace", "platform.build", "platform.create", "app.create"},
			edges: [][2]string{
				{"workspace", "platform.create"},
				{"platform.create", "app.create"},
				{"platform.create", "platform.build"},
				{"platform.build", "app.build"},
				{"app.create", "app.build"},
			},
			want: []string{"workspace", "platform.create", "platform.build", "app.create", "app.build"},
		},
		{
			name:  "diamond",
			ids:   []string{"a", "b", "c", "d"},
			edges: [][2]string{{"a", "c"}, {"a", "b"}, {"b", "d"}, {"c", "d"}},
			want:  []string{"a", "b", "c", "d"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := build(t, tc.ids, tc.edges).TopologicalOrder()
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("cycle", func(t *testing.T) {
		g := build(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "b"}})
		_, err := g.TopologicalOrder()
		assert.ErrorContains(t, err, "dependency cycle through step b")
	})
}

func TestGraph_Descendants(t *testing.T) {
	g := build(t, []string{"a", "b", "c", "d", "e"}, [][2]string{
		{"a", "c"}, {"c", "d"}, {"b", "d"}, {"a", "b"},
	})

	got, err := g.Descendants("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "d"}, got)

	got, err = g.Descendants("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, got)

	got, err = g.Descendants("e")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = g.Descendants("zz")
	assert.ErrorContains(t, err, "unknown step zz")
}
