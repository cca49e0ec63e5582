package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// GKZDataset lazily reads one side of an emitted dataset (a feature CSV and
// its parallel label CSV) and presents it as examples suitable for model
// training. Files are headerless; row i of the label file labels row i of the
// feature file. Rows are only read when a batch asks for them, so large
// datasets do not have to fit in memory.
//
// The Tensors/Yield methods export batches as gomlx tensors so the dataset
// plugs directly into gomlx training loops.
type GKZDataset struct {
	FeaturesPath string
	LabelsPath   string

	// BatchSize used by Yield.
	BatchSize int

	featureDim int
	numRows    int

	// order maps presentation order to file row; Shuffle permutes it.
	order []int

	// cursor tracks Yield's position within order.
	cursor int

	rand *rand.Rand
}

// NewGKZDataset opens a feature/label CSV pair. Both files are scanned once
// to establish the row count and feature width; data rows are read lazily.
func NewGKZDataset(featuresPath, labelsPath string) (*GKZDataset, error) {
	featureRows, featureDim, err := scanTable(featuresPath)
	if err != nil {
		return nil, fmt.Errorf("scan features %s: %w", featuresPath, err)
	}
	labelRows, labelDim, err := scanTable(labelsPath)
	if err != nil {
		return nil, fmt.Errorf("scan labels %s: %w", labelsPath, err)
	}
	if featureRows != labelRows {
		return nil, fmt.Errorf("feature/label row mismatch: %d features vs %d labels", featureRows, labelRows)
	}
	if labelDim != 1 {
		return nil, fmt.Errorf("label file %s must have one column, got %d", labelsPath, labelDim)
	}

	d := &GKZDataset{
		FeaturesPath: featuresPath,
		LabelsPath:   labelsPath,
		BatchSize:    32,
		featureDim:   featureDim,
		numRows:      featureRows,
		order:        make([]int, featureRows),
		rand:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for i := range d.order {
		d.order[i] = i
	}
	return d, nil
}

// scanTable counts data rows and returns the column count of the first row.
func scanTable(path string) (rows, cols int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, 0, err
		}
		if rows == 0 {
			cols = len(record)
		}
		rows++
	}
	return rows, cols, nil
}

// Len returns the number of examples.
func (d *GKZDataset) Len() int {
	return d.numRows
}

// FeatureDim returns the number of feature columns.
func (d *GKZDataset) FeatureDim() int {
	return d.featureDim
}

// Example reads a single example by presentation index.
func (d *GKZDataset) Example(i int) (features []float32, label float32, err error) {
	ins, labs, err := d.Batch([]int{i})
	if err != nil {
		return nil, 0, err
	}
	return ins[0], labs[0][0], nil
}

// Batch reads the examples at the given presentation indices. Both files are
// streamed once per call, collecting only the requested rows.
func (d *GKZDataset) Batch(indices []int) (features [][]float32, labels [][]float32, err error) {
	rowToPos := make(map[int][]int, len(indices))
	for pos, idx := range indices {
		if idx < 0 || idx >= d.numRows {
			return nil, nil, fmt.Errorf("index %d out of range [0, %d)", idx, d.numRows)
		}
		row := d.order[idx]
		rowToPos[row] = append(rowToPos[row], pos)
	}

	features = make([][]float32, len(indices))
	labels = make([][]float32, len(indices))

	if err := d.collectRows(d.FeaturesPath, rowToPos, d.featureDim, features); err != nil {
		return nil, nil, err
	}
	if err := d.collectRows(d.LabelsPath, rowToPos, 1, labels); err != nil {
		return nil, nil, err
	}
	return features, labels, nil
}

// collectRows streams path and parses the rows named in rowToPos into out at
// each of the row's batch positions.
func (d *GKZDataset) collectRows(path string, rowToPos map[int][]int, width int, out [][]float32) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	remaining := len(rowToPos)
	for row := 0; remaining > 0; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			return fmt.Errorf("%s ended before all requested rows were read", path)
		}
		if err != nil {
			return fmt.Errorf("read %s row %d: %w", path, row, err)
		}
		positions, ok := rowToPos[row]
		if !ok {
			continue
		}
		remaining--
		if len(record) != width {
			return fmt.Errorf("%s row %d: expected %d columns, got %d", path, row, width, len(record))
		}
		vals := make([]float32, width)
		for j, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
			if err != nil {
				return fmt.Errorf("%s row %d col %d: %w", path, row, j, err)
			}
			vals[j] = float32(v)
		}
		for _, pos := range positions {
			v := vals
			if len(positions) > 1 {
				v = append([]float32(nil), vals...)
			}
			out[pos] = v
		}
	}
	return nil
}

// Shuffle permutes the presentation order of examples and rewinds Yield.
func (d *GKZDataset) Shuffle(seed int64) {
	d.rand.Seed(seed)
	d.rand.Shuffle(len(d.order), func(i, j int) {
		d.order[i], d.order[j] = d.order[j], d.order[i]
	})
	d.cursor = 0
}

// Tensors reads a batch of examples and returns them as gomlx tensors.
func (d *GKZDataset) Tensors(indices []int) (features *tensors.Tensor, labels *tensors.Tensor, err error) {
	ins, labs, err := d.Batch(indices)
	if err != nil {
		return nil, nil, err
	}
	flat, err := MakeBatchFlat(ins, labs)
	if err != nil {
		return nil, nil, err
	}
	return flat.ToGomlxTensors()
}

// Name returns the name of the dataset.
func (d *GKZDataset) Name() string {
	return "GKZDataset"
}

// Yield returns the next batch for the gomlx Dataset interface, advancing a
// cursor through the current presentation order. It returns io.EOF once the
// epoch is exhausted; Restart begins a new epoch.
func (d *GKZDataset) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	if d.cursor >= d.numRows {
		return nil, nil, nil, io.EOF
	}
	end := d.cursor + d.BatchSize
	if end > d.numRows {
		end = d.numRows
	}
	indices := make([]int, 0, end-d.cursor)
	for i := d.cursor; i < end; i++ {
		indices = append(indices, i)
	}
	d.cursor = end

	in, lab, err := d.Tensors(indices)
	if err != nil {
		return nil, nil, nil, err
	}
	return nil, []*tensors.Tensor{in}, []*tensors.Tensor{lab}, nil
}

// Restart resets the dataset for a new epoch.
func (d *GKZDataset) Restart() error {
	d.cursor = 0
	return nil
}

// BatchFlat stores a batch in flat contiguous buffers along with its shape,
// ready for conversion into tensors.
type BatchFlat struct {
	Features  []float32
	Labels    []float32
	BatchSize int
	InputDim  int
	LabelDim  int
}

// MakeBatchFlat flattens a batch into contiguous buffers, validating that all
// rows share the same dimensions.
func MakeBatchFlat(features, labels [][]float32) (*BatchFlat, error) {
	if len(features) != len(labels) {
		return nil, fmt.Errorf("feature and label batch sizes don't match: %d != %d", len(features), len(labels))
	}
	if len(features) == 0 {
		return &BatchFlat{}, nil
	}

	batchSize := len(features)
	inputDim := len(features[0])
	labelDim := len(labels[0])

	flatFeatures := make([]float32, batchSize*inputDim)
	flatLabels := make([]float32, batchSize*labelDim)
	for i := range batchSize {
		if len(features[i]) != inputDim {
			return nil, fmt.Errorf("inconsistent feature dimensions at example %d: expected %d, got %d",
				i, inputDim, len(features[i]))
		}
		if len(labels[i]) != labelDim {
			return nil, fmt.Errorf("inconsistent label dimensions at example %d: expected %d, got %d",
				i, labelDim, len(labels[i]))
		}
		copy(flatFeatures[i*inputDim:], features[i])
		copy(flatLabels[i*labelDim:], labels[i])
	}

	return &BatchFlat{
		Features:  flatFeatures,
		Labels:    flatLabels,
		BatchSize: batchSize,
		InputDim:  inputDim,
		LabelDim:  labelDim,
	}, nil
}

// ToGomlxTensors converts the flat batch to gomlx tensors.
func (b *BatchFlat) ToGomlxTensors() (*tensors.Tensor, *tensors.Tensor, error) {
	if b.BatchSize == 0 || b.InputDim == 0 || b.LabelDim == 0 {
		emptyFeatures := make([][]float32, 0)
		emptyLabels := make([][]float32, 0)
		return tensors.FromAnyValue(emptyFeatures), tensors.FromAnyValue(emptyLabels), nil
	}
	features := make([][]float32, b.BatchSize)
	labels := make([][]float32, b.BatchSize)
	for i := range b.BatchSize {
		features[i] = b.Features[i*b.InputDim : (i+1)*b.InputDim]
		labels[i] = b.Labels[i*b.LabelDim : (i+1)*b.LabelDim]
	}
	return tensors.FromAnyValue(features), tensors.FromAnyValue(labels), nil
}
