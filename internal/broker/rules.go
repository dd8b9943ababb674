package broker

// Rule is one entry of an ordered classification table. Match must be a
// pure predicate; Apply emits zero or more trades (zero means "drop").
type Rule[R any] struct {
	Name  string
	Match func(R) bool
	Apply func(R, *Emitter)
}

// ApplyFirst runs the first rule whose Match accepts rec and reports its
// name. Rows matched by no rule are dropped and reported as "".
func ApplyFirst[R any](rules []Rule[R], rec R, out *Emitter) string {
	if r, ok := FirstMatch(rules, rec); ok {
		r.Apply(rec, out)
		return r.Name
	}
	return ""
}

// FirstMatch returns the first rule accepting rec without applying it.
func FirstMatch[R any](rules []Rule[R], rec R) (Rule[R], bool) {
	for _, r := range rules {
		if r.Match(rec) {
			return r, true
		}
	}
	return Rule[R]{}, false
}

// Drop is an Apply that emits nothing.
func Drop[R any](R, *Emitter) {}
