package observe

import "sort"

// List is an observable ordered collection. Elements added through any
// operation are bound to the collection's item sub-tree before callbacks fire,
// so mutations on a fresh element are observed immediately. Every primitive
// operation reports once: the per-operation callback, then the base chain.
type List struct {
	items []any
	base  []BaseFunc // innermost first
	ops   map[Op]OpFunc
	item  func(item any) Node
}

func (l *List) Len() int { return len(l.items) }

// At returns the element at i, or false when out of range.
func (l *List) At(i int) (any, bool) {
	if i < 0 || i >= len(l.items) {
		return nil, false
	}
	return l.items[i], true
}

// Items returns a copy of the backing slice. Elements are the live bound
// values, not snapshots.
func (l *List) Items() []any {
	out := make([]any, len(l.items))
	copy(out, l.items)
	return out
}

// Snapshot deep-copies the collection back into plain values.
func (l *List) Snapshot() []any {
	out := make([]any, len(l.items))
	for i, v := range l.items {
		out[i] = unwrap(v)
	}
	return out
}

func (l *List) IndexFunc(pred func(item any) bool) int {
	for i, v := range l.items {
		if pred(v) {
			return i
		}
	}
	return -1
}

func (l *List) Find(pred func(item any) bool) (any, bool) {
	if i := l.IndexFunc(pred); i >= 0 {
		return l.items[i], true
	}
	return nil, false
}

// Append adds elements at the end and returns the new length.
func (l *List) Append(items ...any) int {
	if len(items) == 0 {
		return len(l.items)
	}
	l.items = append(l.items, l.bindItems(items)...)
	l.notify(OpAppend, len(l.items))
	return len(l.items)
}

// InsertAt adds elements at index i. Out-of-range indices are a silent no-op.
func (l *List) InsertAt(i int, items ...any) bool {
	if i < 0 || i > len(l.items) || len(items) == 0 {
		return false
	}
	bound := l.bindItems(items)
	out := make([]any, 0, len(l.items)+len(bound))
	out = append(out, l.items[:i]...)
	out = append(out, bound...)
	out = append(out, l.items[i:]...)
	l.items = out
	l.notify(OpInsert, i)
	return true
}

// RemoveAt removes and returns the element at i. Out-of-range indices are a
// silent no-op.
func (l *List) RemoveAt(i int) (any, bool) {
	if i < 0 || i >= len(l.items) {
		return nil, false
	}
	removed := l.items[i]
	l.items = append(l.items[:i], l.items[i+1:]...)
	l.notify(OpRemove, removed)
	return removed, true
}

// ReplaceRange replaces the n elements starting at i with items and returns
// the replaced elements. n is clamped to the remaining length; replacing
// nothing with nothing is a silent no-op.
func (l *List) ReplaceRange(i, n int, items ...any) []any {
	if i < 0 || i > len(l.items) {
		return nil
	}
	if n > len(l.items)-i {
		n = len(l.items) - i
	}
	if n <= 0 && len(items) == 0 {
		return nil
	}
	if n < 0 {
		n = 0
	}
	removed := make([]any, n)
	copy(removed, l.items[i:i+n])
	bound := l.bindItems(items)
	out := make([]any, 0, len(l.items)-n+len(bound))
	out = append(out, l.items[:i]...)
	out = append(out, bound...)
	out = append(out, l.items[i+n:]...)
	l.items = out
	l.notify(OpReplace, removed)
	return removed
}

// ClearRange removes the n elements starting at i and returns them. Clearing
// an empty range is a silent no-op.
func (l *List) ClearRange(i, n int) []any {
	if i < 0 || i > len(l.items) {
		return nil
	}
	if n > len(l.items)-i {
		n = len(l.items) - i
	}
	if n <= 0 {
		return nil
	}
	removed := make([]any, n)
	copy(removed, l.items[i:i+n])
	l.items = append(l.items[:i], l.items[i+n:]...)
	l.notify(OpClear, removed)
	return removed
}

// SetAll replaces the whole collection contents and returns the previous
// elements. Replacing empty with empty is a silent no-op.
func (l *List) SetAll(items []any) []any {
	if len(l.items) == 0 && len(items) == 0 {
		return nil
	}
	old := l.items
	l.items = l.bindItems(items)
	l.notify(OpSet, old)
	return old
}

// Reverse reverses the collection in place. Fewer than two elements is a
// silent no-op.
func (l *List) Reverse() {
	if len(l.items) < 2 {
		return
	}
	for i, j := 0, len(l.items)-1; i < j; i, j = i+1, j-1 {
		l.items[i], l.items[j] = l.items[j], l.items[i]
	}
	l.notify(OpReverse, nil)
}

// SortStable stable-sorts the collection by less.
func (l *List) SortStable(less func(a, b any) bool) {
	if len(l.items) < 2 {
		return
	}
	sort.SliceStable(l.items, func(i, j int) bool { return less(l.items[i], l.items[j]) })
	l.notify(OpSort, nil)
}

// Rotate moves every element n positions towards the front, wrapping around.
// A rotation that lands back on the current order is a silent no-op.
func (l *List) Rotate(n int) {
	size := len(l.items)
	if size < 2 {
		return
	}
	n %= size
	if n < 0 {
		n += size
	}
	if n == 0 {
		return
	}
	out := make([]any, 0, size)
	out = append(out, l.items[n:]...)
	out = append(out, l.items[:n]...)
	l.items = out
	l.notify(OpRotate, n)
}

// Delete removes the first element identical to value. Defined purely in
// terms of RemoveAt, which already reports; Delete itself never re-reports.
func (l *List) Delete(value any) bool {
	return l.DeleteFunc(func(item any) bool { return identical(item, value) })
}

// DeleteFunc removes the first element matching pred. See Delete.
func (l *List) DeleteFunc(pred func(item any) bool) bool {
	i := l.IndexFunc(pred)
	if i < 0 {
		return false
	}
	_, ok := l.RemoveAt(i)
	return ok
}

// Toggle removes value when present, appends it otherwise, and reports true
// when the value was added. Defined purely in terms of Delete and Append.
func (l *List) Toggle(value any) bool {
	if l.Delete(value) {
		return false
	}
	l.Append(value)
	return true
}

func (l *List) bindItems(items []any) []any {
	bound := make([]any, len(items))
	for i, it := range items {
		bound[i] = l.bindItem(it)
	}
	return bound
}

func (l *List) bindItem(v any) any {
	var n Node
	if l.item != nil {
		n = l.item(v)
	}
	return Bind(v, n, l.base)
}

func (l *List) notify(op Op, result any) {
	if fn := l.ops[op]; fn != nil {
		fn(result)
	}
	for _, base := range l.base {
		base()
	}
}
