package observe

// Bind walks value and tree together and returns the observable form of value:
// *Object for field maps, *List for slices, the value itself for scalars.
// Ancestors is the base-callback chain of the enclosing nodes, innermost
// first; a nil tree still produces wrapped children so that writes anywhere in
// the graph reach ancestor bases. Binding never fires callbacks.
func Bind(value any, tree Node, ancestors []BaseFunc) any {
	switch v := value.(type) {
	case map[string]any:
		var rec Record
		if r, ok := tree.(Record); ok {
			rec = r
		}
		return bindObject(v, rec, ancestors)
	case []any:
		var col Collection
		if c, ok := tree.(Collection); ok {
			col = c
		}
		return bindList(v, col, ancestors)
	default:
		return value
	}
}

func bindObject(fields map[string]any, rec Record, ancestors []BaseFunc) *Object {
	chain := ancestors
	if rec.Base != nil {
		chain = prepend(rec.Base, ancestors)
	}
	o := &Object{
		fields: make(map[string]any, len(fields)),
		onSet:  make(map[string]FieldFunc),
		base:   chain,
	}
	for key, v := range fields {
		if leaf, ok := rec.Fields[key].(Leaf); ok {
			o.onSet[key] = leaf.OnSet
			o.fields[key] = v
			continue
		}
		o.fields[key] = Bind(v, rec.Fields[key], chain)
	}
	return o
}

func bindList(items []any, col Collection, ancestors []BaseFunc) *List {
	chain := ancestors
	if col.Base != nil {
		chain = prepend(col.Base, ancestors)
	}
	l := &List{
		base: chain,
		ops:  col.Ops,
		item: col.Item,
	}
	l.items = make([]any, len(items))
	for i, it := range items {
		l.items[i] = l.bindItem(it)
	}
	return l
}
