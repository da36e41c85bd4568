package observe

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestObject_SetEqualValueIsSilent(t *testing.T) {
	calls := 0
	root := Bind(map[string]any{"title": "new room"}, Record{
		Base: func() { calls++ },
		Fields: map[string]Node{
			"title": Leaf{OnSet: func(_, _ any) { calls++ }},
		},
	}, nil).(*Object)

	for i := 0; i < 3; i++ {
		require.False(t, root.Set("title", "new room"))
	}
	require.Zero(t, calls)

	require.True(t, root.Set("title", "other"))
	require.Equal(t, 2, calls) // field callback + base
}

func TestObject_SetReportsNewAndOld(t *testing.T) {
	var gotNew, gotOld any
	root := Bind(map[string]any{"color": "red"}, Record{
		Fields: map[string]Node{
			"color": Leaf{OnSet: func(newValue, oldValue any) {
				gotNew, gotOld = newValue, oldValue
			}},
		},
	}, nil).(*Object)

	root.Set("color", "blue")
	require.Equal(t, "blue", gotNew)
	require.Equal(t, "red", gotOld)
	require.Equal(t, "blue", root.Get("color"))
}

func TestObject_BaseChainFiresInnermostFirst(t *testing.T) {
	var order []string
	root := Bind(map[string]any{
		"settings": map[string]any{"intro": "says"},
	}, Record{
		Base: func() { order = append(order, "root") },
		Fields: map[string]Node{
			"settings": Record{
				Base: func() { order = append(order, "settings") },
				Fields: map[string]Node{
					"intro": Leaf{OnSet: func(_, _ any) { order = append(order, "field") }},
				},
			},
		},
	}, nil).(*Object)

	settings := root.Get("settings").(*Object)
	settings.Set("intro", "whispers")
	require.Equal(t, []string{"field", "settings", "root"}, order)
}

func TestObject_UnobservedNestedWriteStillReachesAncestors(t *testing.T) {
	calls := 0
	root := Bind(map[string]any{
		"settings": map[string]any{"intro": "says"},
	}, Record{
		Base: func() { calls++ },
	}, nil).(*Object)

	root.Get("settings").(*Object).Set("intro", "shouts")
	require.Equal(t, 1, calls)
}

func TestObject_Snapshot(t *testing.T) {
	root := Bind(map[string]any{
		"title": "t",
		"tags":  []any{"a", "b"},
		"inner": map[string]any{"n": 1},
	}, Record{}, nil).(*Object)

	snap := root.Snapshot()
	require.Equal(t, "t", snap["title"])
	require.Equal(t, []any{"a", "b"}, snap["tags"])
	require.Equal(t, map[string]any{"n": 1}, snap["inner"])
}
