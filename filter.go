package xbus

// Thresholds is an immutable snapshot of configured minimum levels: a
// global default plus per-category overrides. The bus swaps snapshots
// atomically on change so the per-call check stays allocation-free and
// lock-free.
type Thresholds struct {
	def   Level
	byCat map[Category]Level
}

// NewThresholds builds a snapshot with the given global default.
func NewThresholds(def Level) *Thresholds {
	return &Thresholds{def: def}
}

// WithCategory returns a new snapshot with an override for cat. The
// receiver is unchanged.
func (t *Thresholds) WithCategory(cat Category, min Level) *Thresholds {
	next := &Thresholds{def: t.def, byCat: make(map[Category]Level, len(t.byCat)+1)}
	for c, l := range t.byCat {
		next.byCat[c] = l
	}
	next.byCat[cat] = min
	return next
}

// WithDefault returns a new snapshot with a different global default.
func (t *Thresholds) WithDefault(min Level) *Thresholds {
	next := &Thresholds{def: min, byCat: t.byCat}
	return next
}

// Min returns the effective threshold for cat.
func (t *Thresholds) Min(cat Category) Level {
	if l, ok := t.byCat[cat]; ok {
		return l
	}
	return t.def
}

// Enabled reports whether an event at the given level and category is
// eligible for dispatch. No side effects, no allocation.
func (t *Thresholds) Enabled(l Level, cat Category) bool {
	return l.enabledAt(t.Min(cat))
}
