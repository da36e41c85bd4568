package observe

import "sort"

// Object is an observable record. Reads are plain map lookups; Set is the only
// write path and reports the mutation to the field callback and the base
// chain.
type Object struct {
	fields map[string]any
	onSet  map[string]FieldFunc
	base   []BaseFunc // innermost first
}

// Get returns the current value of key: a scalar, *Object or *List.
func (o *Object) Get(key string) any { return o.fields[key] }

func (o *Object) Has(key string) bool {
	_, ok := o.fields[key]
	return ok
}

func (o *Object) Keys() []string {
	keys := make([]string, 0, len(o.fields))
	for k := range o.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set writes a scalar field. Writing a value identical to the current one is
// a silent no-op: no callback fires and Set reports false. Otherwise the write
// commits, the field callback fires with (new, old), then every base fires
// innermost to outermost, once.
func (o *Object) Set(key string, value any) bool {
	old := o.fields[key]
	if identical(old, value) {
		return false
	}
	o.fields[key] = value
	if fn := o.onSet[key]; fn != nil {
		fn(value, old)
	}
	for _, base := range o.base {
		base()
	}
	return true
}

// Snapshot deep-copies the record back into plain values.
func (o *Object) Snapshot() map[string]any {
	out := make(map[string]any, len(o.fields))
	for k, v := range o.fields {
		out[k] = unwrap(v)
	}
	return out
}

func unwrap(v any) any {
	switch t := v.(type) {
	case *Object:
		return t.Snapshot()
	case *List:
		return t.Snapshot()
	default:
		return v
	}
}
