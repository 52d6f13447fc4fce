package catalog

// FeatureTally counts features by kind.
type FeatureTally struct {
	counts   map[string]int
	order    []string
	maxWidth int
}

// NewFeatureTally creates an empty tally.
func NewFeatureTally() *FeatureTally {
	return &FeatureTally{counts: make(map[string]int)}
}

// Add counts one feature of the given kind.
func (t *FeatureTally) Add(kind string) {
	if _, ok := t.counts[kind]; !ok {
		t.order = append(t.order, kind)
		if len(kind) > t.maxWidth {
			t.maxWidth = len(kind)
		}
	}
	t.counts[kind]++
}

// Count returns the number of features of kind.
func (t *FeatureTally) Count(kind string) int {
	return t.counts[kind]
}

// Kinds returns the kinds in first-seen order.
func (t *FeatureTally) Kinds() []string {
	return append([]string(nil), t.order...)
}

// MaxWidth returns the length of the longest kind label.
func (t *FeatureTally) MaxWidth() int {
	return t.maxWidth
}

// Total returns the number of features counted.
func (t *FeatureTally) Total() int {
	n := 0
	for _, c := range t.counts {
		n += c
	}
	return n
}
