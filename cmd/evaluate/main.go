// Command evaluate sanity-checks an emitted dataset directory and exercises
// the predictor's forward pass against it.
//
// It loads the test split through the lazy CSV dataset, reports label
// statistics, and compares an (untrained) ResDenseNet forward pass against
// the trivial baseline of predicting the training-label mean. Useful as a
// smoke test of a freshly generated dataset and as scaffolding for wiring in
// a trained model.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/Noofbiz/gkzvol/dataset"
	"github.com/Noofbiz/gkzvol/model"
)

func main() {
	dir := flag.String("dir", "datasets/gkz", "dataset directory produced by the generate command")
	width := flag.Int("width", 64, "hidden width of the predictor")
	depth := flag.Int("depth", 4, "number of residual layers")
	dropout := flag.Float64("dropout", 0.0, "dropout rate (unused in evaluation-mode forward passes)")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed for weight initialization")
	n := flag.Int("n", 0, "evaluate at most n test examples (0 = all)")
	flag.Parse()

	trainDS, err := dataset.NewGKZDataset(
		filepath.Join(*dir, dataset.TrainFeaturesFile),
		filepath.Join(*dir, dataset.TrainLabelsFile),
	)
	if err != nil {
		log.Fatalf("failed to open train split: %v", err)
	}
	testDS, err := dataset.NewGKZDataset(
		filepath.Join(*dir, dataset.TestFeaturesFile),
		filepath.Join(*dir, dataset.TestLabelsFile),
	)
	if err != nil {
		log.Fatalf("failed to open test split: %v", err)
	}
	if trainDS.FeatureDim() != testDS.FeatureDim() {
		log.Fatalf("feature width mismatch: train=%d test=%d", trainDS.FeatureDim(), testDS.FeatureDim())
	}
	log.Printf("Dataset loaded: train=%d test=%d features=%d", trainDS.Len(), testDS.Len(), testDS.FeatureDim())

	trainLabels, err := allLabels(trainDS)
	if err != nil {
		log.Fatalf("failed to read train labels: %v", err)
	}
	trainMean := stat.Mean(trainLabels, nil)
	fmt.Printf("Train labels: mean=%.4f std=%.4f\n", trainMean, stat.StdDev(trainLabels, nil))

	evalCount := testDS.Len()
	if *n > 0 && *n < evalCount {
		evalCount = *n
	}
	indices := make([]int, evalCount)
	for i := range indices {
		indices[i] = i
	}
	features, labels, err := testDS.Batch(indices)
	if err != nil {
		log.Fatalf("failed to read test batch: %v", err)
	}

	net, err := model.New(model.Config{
		InputSize: testDS.FeatureDim(),
		Width:     *width,
		Depth:     *depth,
		Dropout:   *dropout,
		Seed:      *seed,
	})
	if err != nil {
		log.Fatalf("failed to create model: %v", err)
	}

	preds, err := net.PredictBatch(features)
	if err != nil {
		log.Fatalf("prediction failed: %v", err)
	}

	var sumSqModel, sumSqBase float64
	for i, p := range preds {
		truth := float64(labels[i][0])
		dModel := float64(p) - truth
		dBase := trainMean - truth
		sumSqModel += dModel * dModel
		sumSqBase += dBase * dBase
	}
	rmseModel := math.Sqrt(sumSqModel / float64(evalCount))
	rmseBase := math.Sqrt(sumSqBase / float64(evalCount))

	fmt.Printf("Evaluated %d test examples\n", evalCount)
	fmt.Printf("RMSE model (untrained) = %.6f\n", rmseModel)
	fmt.Printf("RMSE baseline (train mean) = %.6f\n", rmseBase)
}

// allLabels streams every label of a split into a float64 slice.
func allLabels(ds *dataset.GKZDataset) ([]float64, error) {
	indices := make([]int, ds.Len())
	for i := range indices {
		indices[i] = i
	}
	_, labels, err := ds.Batch(indices)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(labels))
	for i, l := range labels {
		out[i] = float64(l[0])
	}
	return out, nil
}
