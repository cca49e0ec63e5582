package dataset

import (
	"math"
	"path/filepath"
	"sort"
	"testing"
)

// writeSampleDataset emits a small split and returns the train file pair.
func writeSampleDataset(t *testing.T) (featuresPath, labelsPath string) {
	t.Helper()
	dir := t.TempDir()
	s := &Split{
		TrainFeatures: [][]float64{
			{1, 2, 3},
			{4, 5, 6},
			{7, 8, 9},
			{10, 11, 12},
		},
		TrainLabels:  []float64{0.1, 0.2, 0.3, 0.4},
		TestFeatures: [][]float64{{0, 0, 0}},
		TestLabels:   []float64{0.5},
	}
	if err := WriteSplit(dir, s); err != nil {
		t.Fatalf("WriteSplit error: %v", err)
	}
	return filepath.Join(dir, TrainFeaturesFile), filepath.Join(dir, TrainLabelsFile)
}

func TestGKZDatasetRoundTrip(t *testing.T) {
	features, labels := writeSampleDataset(t)
	ds, err := NewGKZDataset(features, labels)
	if err != nil {
		t.Fatalf("NewGKZDataset error: %v", err)
	}

	if ds.Len() != 4 {
		t.Fatalf("Len = %d, want 4", ds.Len())
	}
	if ds.FeatureDim() != 3 {
		t.Fatalf("FeatureDim = %d, want 3", ds.FeatureDim())
	}

	in, label, err := ds.Example(2)
	if err != nil {
		t.Fatalf("Example error: %v", err)
	}
	if in[0] != 7 || in[1] != 8 || in[2] != 9 {
		t.Fatalf("Example(2) features = %v, want [7 8 9]", in)
	}
	if math.Abs(float64(label)-0.3) > 1e-6 {
		t.Fatalf("Example(2) label = %v, want 0.3", label)
	}
}

func TestGKZDatasetBatch(t *testing.T) {
	features, labels := writeSampleDataset(t)
	ds, err := NewGKZDataset(features, labels)
	if err != nil {
		t.Fatalf("NewGKZDataset error: %v", err)
	}

	// Out of order and with a repeated index.
	ins, labs, err := ds.Batch([]int{3, 0, 3})
	if err != nil {
		t.Fatalf("Batch error: %v", err)
	}
	if len(ins) != 3 || len(labs) != 3 {
		t.Fatalf("batch sizes: inputs=%d labels=%d, want 3", len(ins), len(labs))
	}
	if ins[0][0] != 10 || ins[1][0] != 1 || ins[2][0] != 10 {
		t.Fatalf("unexpected batch features: %v", ins)
	}
	if math.Abs(float64(labs[1][0])-0.1) > 1e-6 {
		t.Fatalf("unexpected batch label: %v", labs[1])
	}

	if _, _, err := ds.Batch([]int{4}); err == nil {
		t.Fatalf("expected out-of-range error")
	}
}

func TestGKZDatasetShufflePreservesPairs(t *testing.T) {
	features, labels := writeSampleDataset(t)
	ds, err := NewGKZDataset(features, labels)
	if err != nil {
		t.Fatalf("NewGKZDataset error: %v", err)
	}
	ds.Shuffle(99)

	indices := []int{0, 1, 2, 3}
	ins, labs, err := ds.Batch(indices)
	if err != nil {
		t.Fatalf("Batch error: %v", err)
	}

	// Feature row i must still carry label row i after shuffling, and all
	// four labels must still be present exactly once.
	var got []float64
	for i := range ins {
		switch ins[i][0] {
		case 1:
			if labs[i][0] != 0.1 {
				t.Fatalf("row starting 1 paired with label %v", labs[i][0])
			}
		case 4:
			if labs[i][0] != 0.2 {
				t.Fatalf("row starting 4 paired with label %v", labs[i][0])
			}
		case 7:
			if labs[i][0] != 0.3 {
				t.Fatalf("row starting 7 paired with label %v", labs[i][0])
			}
		case 10:
			if labs[i][0] != 0.4 {
				t.Fatalf("row starting 10 paired with label %v", labs[i][0])
			}
		default:
			t.Fatalf("unexpected feature row: %v", ins[i])
		}
		got = append(got, float64(labs[i][0]))
	}
	sort.Float64s(got)
	want := []float64{0.1, 0.2, 0.3, 0.4}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-6 {
			t.Fatalf("labels after shuffle = %v, want a permutation of %v", got, want)
		}
	}
}

func TestGKZDatasetRowMismatch(t *testing.T) {
	features, _ := writeSampleDataset(t)
	_, labels := func() (string, string) {
		dir := t.TempDir()
		s := &Split{
			TrainFeatures: [][]float64{{1}},
			TrainLabels:   []float64{1},
			TestFeatures:  [][]float64{{1}},
			TestLabels:    []float64{1},
		}
		if err := WriteSplit(dir, s); err != nil {
			t.Fatalf("WriteSplit error: %v", err)
		}
		return filepath.Join(dir, TrainFeaturesFile), filepath.Join(dir, TrainLabelsFile)
	}()

	if _, err := NewGKZDataset(features, labels); err == nil {
		t.Fatalf("expected row-count mismatch error")
	}
}
