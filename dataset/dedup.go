package dataset

// Entry is one observed triangulation reduced to training data: the GKZ
// vector with its constant origin coordinate dropped, and the base-10 log of
// the CY volume at the tip of the stretched Kähler cone.
type Entry struct {
	Features []float64
	Label    float64
}

// DedupTable accumulates entries keyed by CY fingerprint. Different
// triangulations of the same polytope can resolve to the same CY phase; the
// table groups them so the train/test split can operate at the manifold
// level. The table is owned by the orchestrator and mutated from a single
// goroutine only, after each round's worker barrier, so it needs no locking.
type DedupTable struct {
	order  []string
	groups map[string][]Entry
	total  int
}

// NewDedupTable returns an empty table.
func NewDedupTable() *DedupTable {
	return &DedupTable{groups: make(map[string][]Entry)}
}

// Add appends an entry under the given fingerprint, creating the group on
// first sight. Insertion order of fingerprints is preserved.
func (t *DedupTable) Add(fingerprint string, e Entry) {
	if _, ok := t.groups[fingerprint]; !ok {
		t.order = append(t.order, fingerprint)
	}
	t.groups[fingerprint] = append(t.groups[fingerprint], e)
	t.total++
}

// Unique returns the number of distinct CY fingerprints seen so far.
func (t *DedupTable) Unique() int {
	return len(t.order)
}

// Total returns the number of entries across all groups.
func (t *DedupTable) Total() int {
	return t.total
}

// Fingerprints returns the fingerprints in insertion order.
func (t *DedupTable) Fingerprints() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Groups returns the entry groups in fingerprint insertion order. The
// returned slices alias the table's storage; callers take ownership once the
// table is frozen.
func (t *DedupTable) Groups() [][]Entry {
	out := make([][]Entry, len(t.order))
	for i, fp := range t.order {
		out[i] = t.groups[fp]
	}
	return out
}
