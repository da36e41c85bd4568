// Package observe wraps plain nested state (records and ordered collections)
// so that every write is intercepted and reported to callbacks declared in a
// tree mirroring the state's shape. Mutations go through an explicit, closed
// set of operations; there is no method patching and no reflection over user
// types.
package observe

import "reflect"

// BaseFunc fires once per mutation at or below the node it is attached to.
type BaseFunc func()

// FieldFunc fires after a scalar field commits a new value.
type FieldFunc func(newValue, oldValue any)

// Op names a primitive collection mutation.
type Op string

const (
	OpAppend  Op = "append"
	OpInsert  Op = "insert"
	OpRemove  Op = "remove"
	OpReplace Op = "replace"
	OpClear   Op = "clear"
	OpReverse Op = "reverse"
	OpSort    Op = "sort"
	OpRotate  Op = "rotate"
	OpSet     Op = "set"
)

// OpFunc fires after the named mutation with that operation's natural result
// (removed elements, new length, and so on; see the List methods).
type OpFunc func(result any)

// Node is one vertex of an observer tree. The three variants mirror the three
// value shapes: Leaf for scalar fields, Record for field maps, Collection for
// ordered collections.
type Node interface{ node() }

// Leaf observes a single scalar field of the enclosing record.
type Leaf struct {
	OnSet FieldFunc
}

// Record observes a field map. Fields may be sparse; unlisted fields still
// propagate to Base and to ancestor bases.
type Record struct {
	Base   BaseFunc
	Fields map[string]Node
}

// Collection observes an ordered collection. Item, when set, is invoked with
// each element added to the collection and returns the sub-tree to bind to
// that element before any callback fires.
type Collection struct {
	Base BaseFunc
	Ops  map[Op]OpFunc
	Item func(item any) Node
}

func (Leaf) node()       {}
func (Record) node()     {}
func (Collection) node() {}

// identical is the no-op short-circuit check: comparable values of the same
// dynamic type compare with ==, everything else is treated as distinct.
func identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

func prepend(fn BaseFunc, chain []BaseFunc) []BaseFunc {
	out := make([]BaseFunc, 0, len(chain)+1)
	out = append(out, fn)
	return append(out, chain...)
}
