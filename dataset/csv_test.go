package dataset

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func sampleSplit() *Split {
	return &Split{
		TrainFeatures: [][]float64{{0.5, -1.25, 3}, {1, 2, -0.0625}, {-4, 0, 1e-3}},
		TrainLabels:   []float64{1.5, 2.25, -0.75},
		TestFeatures:  [][]float64{{9, 8, 7}},
		TestLabels:    []float64{0.125},
		FeatureMean:   []float64{0, 0, 0},
		FeatureStd:    []float64{1, 1, 1},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return records
}

func TestWriteSplitShapes(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out") // must be created
	s := sampleSplit()
	if err := WriteSplit(dir, s); err != nil {
		t.Fatalf("WriteSplit error: %v", err)
	}

	trainFeatures := readCSV(t, filepath.Join(dir, TrainFeaturesFile))
	trainLabels := readCSV(t, filepath.Join(dir, TrainLabelsFile))
	testFeatures := readCSV(t, filepath.Join(dir, TestFeaturesFile))
	testLabels := readCSV(t, filepath.Join(dir, TestLabelsFile))

	if len(trainFeatures) != len(trainLabels) {
		t.Fatalf("train rows: features=%d labels=%d", len(trainFeatures), len(trainLabels))
	}
	if len(testFeatures) != len(testLabels) {
		t.Fatalf("test rows: features=%d labels=%d", len(testFeatures), len(testLabels))
	}
	if len(trainFeatures) != 3 || len(testFeatures) != 1 {
		t.Fatalf("unexpected row counts: train=%d test=%d", len(trainFeatures), len(testFeatures))
	}
	for i, row := range trainFeatures {
		if len(row) != 3 {
			t.Fatalf("train feature row %d has %d columns, want 3", i, len(row))
		}
	}
	for i, row := range trainLabels {
		if len(row) != 1 {
			t.Fatalf("train label row %d has %d columns, want 1", i, len(row))
		}
	}
	// Headerless: first row must already be data.
	if trainLabels[0][0] != "1.5" {
		t.Fatalf("first train label = %q, want 1.5 (no header row)", trainLabels[0][0])
	}
}

func TestWriteMetadata(t *testing.T) {
	dir := t.TempDir()
	meta := Metadata{
		H11:             30,
		H21:             42,
		TargetUnique:    1000,
		UniqueManifolds: 37,
		TrainSize:       80,
		TestSize:        20,
		FeatureDim:      33,
	}
	if err := WriteMetadata(dir, meta); err != nil {
		t.Fatalf("WriteMetadata error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	var got Metadata
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode metadata: %v", err)
	}
	if got.RunID == "" {
		t.Fatalf("RunID not assigned")
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("CreatedAt not assigned")
	}
	if got.H11 != 30 || got.UniqueManifolds != 37 || got.FeatureDim != 33 {
		t.Fatalf("metadata round trip mismatch: %+v", got)
	}
}
