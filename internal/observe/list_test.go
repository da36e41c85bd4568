package observe

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func boundList(t *testing.T, items []any, col Collection) *List {
	t.Helper()
	l, ok := Bind(items, col, nil).(*List)
	require.True(t, ok)
	return l
}

func TestList_AppendReportsOpThenBase(t *testing.T) {
	var order []string
	l := boundList(t, nil, Collection{
		Base: func() { order = append(order, "base") },
		Ops: map[Op]OpFunc{
			OpAppend: func(_ any) { order = append(order, "append") },
		},
	})

	require.Equal(t, 1, l.Append("a"))
	require.Equal(t, []string{"append", "base"}, order)
}

func TestList_AppendBindsItemTreeBeforeReporting(t *testing.T) {
	base := 0
	renames := 0
	l := boundList(t, nil, Collection{
		Base: func() { base++ },
		Item: func(_ any) Node {
			return Record{Fields: map[string]Node{
				"name": Leaf{OnSet: func(_, _ any) { renames++ }},
			}}
		},
	})

	l.Append(map[string]any{"name": "n"})
	require.Equal(t, 1, base)
	require.Zero(t, renames) // binding itself never fires

	it, ok := l.At(0)
	require.True(t, ok)
	obj, ok := it.(*Object)
	require.True(t, ok)

	obj.Set("name", "renamed")
	require.Equal(t, 1, renames)
	require.Equal(t, 2, base) // element writes climb to the collection base
}

func TestList_EachMutationFiresBaseExactlyOnce(t *testing.T) {
	base := 0
	l := boundList(t, []any{"a", "b", "c"}, Collection{
		Base: func() { base++ },
	})
	require.Zero(t, base) // binding existing items is silent

	l.Append("d")
	l.InsertAt(1, "x")
	l.RemoveAt(0)
	l.ReplaceRange(0, 1, "y")
	l.ClearRange(0, 2)
	l.Reverse()
	l.SortStable(func(a, b any) bool { return a.(string) < b.(string) })
	l.Rotate(1)
	l.SetAll([]any{"z"})
	require.Equal(t, 9, base)
}

func TestList_OutOfRangeMutationsAreSilent(t *testing.T) {
	base := 0
	l := boundList(t, []any{"a"}, Collection{
		Base: func() { base++ },
	})

	require.False(t, l.InsertAt(5, "x"))
	_, ok := l.RemoveAt(3)
	require.False(t, ok)
	require.Nil(t, l.ReplaceRange(-1, 1, "x"))
	require.Nil(t, l.ClearRange(0, 0))
	l.Reverse() // single element
	l.Rotate(1) // lands back on itself
	require.Zero(t, base)
	require.Equal(t, 1, l.Len())
}

func TestList_DeleteReportsThroughRemoveOnly(t *testing.T) {
	var removes, sets int
	base := 0
	l := boundList(t, []any{"a", "b"}, Collection{
		Base: func() { base++ },
		Ops: map[Op]OpFunc{
			OpRemove: func(_ any) { removes++ },
			OpSet:    func(_ any) { sets++ },
		},
	})

	require.True(t, l.Delete("a"))
	require.Equal(t, 1, removes)
	require.Equal(t, 1, base)

	require.False(t, l.Delete("missing"))
	require.Equal(t, 1, removes)
	require.Equal(t, 1, base)
	require.Zero(t, sets)
}

func TestList_ToggleAddsAndRemoves(t *testing.T) {
	var appends, removes int
	l := boundList(t, nil, Collection{
		Ops: map[Op]OpFunc{
			OpAppend: func(_ any) { appends++ },
			OpRemove: func(_ any) { removes++ },
		},
	})

	require.True(t, l.Toggle("a"))
	require.False(t, l.Toggle("a"))
	require.True(t, l.Toggle("a"))
	require.Equal(t, 2, appends)
	require.Equal(t, 1, removes)
	require.Equal(t, []any{"a"}, l.Snapshot())
}

func TestList_ReplaceRangeClampsAndReturnsRemoved(t *testing.T) {
	l := boundList(t, []any{"a", "b", "c"}, Collection{})
	removed := l.ReplaceRange(1, 5, "x")
	require.Equal(t, []any{"b", "c"}, removed)
	require.Equal(t, []any{"a", "x"}, l.Snapshot())
}

func TestList_SetAllRebindsItems(t *testing.T) {
	fired := 0
	l := boundList(t, nil, Collection{
		Item: func(_ any) Node {
			return Record{Fields: map[string]Node{
				"v": Leaf{OnSet: func(_, _ any) { fired++ }},
			}}
		},
	})

	l.SetAll([]any{map[string]any{"v": 1}})
	it, _ := l.At(0)
	it.(*Object).Set("v", 2)
	require.Equal(t, 1, fired)
}

func TestList_RotateAndReverseOrder(t *testing.T) {
	l := boundList(t, []any{"a", "b", "c", "d"}, Collection{})
	l.Rotate(1)
	require.Equal(t, []any{"b", "c", "d", "a"}, l.Snapshot())
	l.Reverse()
	require.Equal(t, []any{"a", "d", "c", "b"}, l.Snapshot())
	l.SortStable(func(a, b any) bool { return a.(string) < b.(string) })
	require.Equal(t, []any{"a", "b", "c", "d"}, l.Snapshot())
}
