package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// File names of the emitted dataset. The files are headerless delimited
// tables: one row per entry, one column per feature dimension (labels are a
// single column).
const (
	TrainFeaturesFile = "train_features.csv"
	TrainLabelsFile   = "train_labels.csv"
	TestFeaturesFile  = "test_features.csv"
	TestLabelsFile    = "test_labels.csv"
	MetadataFile      = "run_metadata.json"
)

// WriteSplit writes the four dataset tables into dir, creating the directory
// if it does not exist.
func WriteSplit(dir string, s *Split) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create dataset dir %s: %w", dir, err)
	}
	if err := writeMatrix(filepath.Join(dir, TrainFeaturesFile), s.TrainFeatures); err != nil {
		return err
	}
	if err := writeColumn(filepath.Join(dir, TrainLabelsFile), s.TrainLabels); err != nil {
		return err
	}
	if err := writeMatrix(filepath.Join(dir, TestFeaturesFile), s.TestFeatures); err != nil {
		return err
	}
	return writeColumn(filepath.Join(dir, TestLabelsFile), s.TestLabels)
}

func writeMatrix(path string, rows [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	record := []string{}
	for _, row := range rows {
		record = record[:0]
		for _, v := range row {
			record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

func writeColumn(path string, vals []float64) error {
	rows := make([][]float64, len(vals))
	for i, v := range vals {
		rows[i] = []float64{v}
	}
	return writeMatrix(path, rows)
}

// Metadata records the parameters and outcome of a generation run alongside
// the CSV files, so a dataset directory is self-describing.
type Metadata struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`

	H11          int     `json:"h11"`
	H21          int     `json:"h21"`
	TargetUnique int     `json:"target_unique"`
	MaxSamples   int     `json:"max_samples"`
	Workers      int     `json:"workers"`
	ChunkSize    int     `json:"chunk_size"`
	SplitRatio   float64 `json:"split_ratio"`
	Seed         int64   `json:"seed"`

	UniqueManifolds int `json:"unique_manifolds"`
	TotalSampled    int `json:"total_sampled"`
	FailedTasks     int `json:"failed_tasks"`
	TrainSize       int `json:"train_size"`
	TestSize        int `json:"test_size"`
	FeatureDim      int `json:"feature_dim"`
}

// WriteMetadata writes meta as run_metadata.json into dir, assigning a fresh
// run ID and timestamp when they are unset.
func WriteMetadata(dir string, meta Metadata) error {
	if meta.RunID == "" {
		meta.RunID = uuid.NewString()
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create dataset dir %s: %w", dir, err)
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	path := filepath.Join(dir, MetadataFile)
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
