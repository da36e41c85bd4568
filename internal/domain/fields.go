package domain

// Field-map access helpers. The observable graph stores plain strings and
// bools; missing or mistyped keys read as zero values.

func str(f map[string]any, key string) string {
	s, _ := f[key].(string)
	return s
}

func boolean(f map[string]any, key string) bool {
	b, _ := f[key].(bool)
	return b
}

func strs(f map[string]any, key string) []string {
	raw, _ := f[key].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func actorIDs(f map[string]any, key string) []ActorID {
	ids := strs(f, key)
	out := make([]ActorID, len(ids))
	for i, s := range ids {
		out[i] = ActorID(s)
	}
	return out
}

func anyStrings[T ~string](in []T) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}
