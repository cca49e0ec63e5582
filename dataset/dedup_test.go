package dataset

import "testing"

func TestDedupTableGroupsByFingerprint(t *testing.T) {
	table := NewDedupTable()
	table.Add("a", Entry{Features: []float64{1}, Label: 0.1})
	table.Add("b", Entry{Features: []float64{2}, Label: 0.2})
	table.Add("a", Entry{Features: []float64{3}, Label: 0.1})
	table.Add("c", Entry{Features: []float64{4}, Label: 0.3})
	table.Add("a", Entry{Features: []float64{5}, Label: 0.1})

	if got := table.Unique(); got != 3 {
		t.Fatalf("Unique = %d, want 3", got)
	}
	if got := table.Total(); got != 5 {
		t.Fatalf("Total = %d, want 5", got)
	}

	fps := table.Fingerprints()
	want := []string{"a", "b", "c"}
	for i, fp := range want {
		if fps[i] != fp {
			t.Fatalf("Fingerprints[%d] = %q, want %q (insertion order)", i, fps[i], fp)
		}
	}

	groups := table.Groups()
	if len(groups) != 3 {
		t.Fatalf("Groups returned %d groups, want 3", len(groups))
	}
	if len(groups[0]) != 3 || len(groups[1]) != 1 || len(groups[2]) != 1 {
		t.Fatalf("unexpected group sizes: %d, %d, %d", len(groups[0]), len(groups[1]), len(groups[2]))
	}
	if groups[0][1].Features[0] != 3 {
		t.Fatalf("entries within a group must preserve arrival order")
	}
}

func TestDedupTableEmpty(t *testing.T) {
	table := NewDedupTable()
	if table.Unique() != 0 || table.Total() != 0 || len(table.Groups()) != 0 {
		t.Fatalf("fresh table is not empty")
	}
}
