package dataset

import (
	"fmt"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/stat"
)

// normTol is added to per-column standard deviations before dividing, so
// constant feature columns scale by 1/normTol instead of dividing by zero.
const normTol = 1e-10

// SplitOptions controls SplitNormalize. Zero values fall back to defaults.
type SplitOptions struct {
	// Ratio is the fraction of manifolds assigned to the training side
	// (default 0.8). The split is exact at the manifold level; entry
	// counts on each side depend on triangulation multiplicity.
	Ratio float64

	// OnePerManifold keeps only the first observed entry of each manifold
	// instead of every triangulation. The default (false) matches the
	// dataset's historical behavior: manifolds reached by many
	// triangulations are weighted by their multiplicity.
	OnePerManifold bool

	// Seed controls the manifold-level shuffle. If zero, a time-based
	// seed is used.
	Seed int64
}

// Split holds the four normalized tables plus the training-set statistics
// used to normalize them.
type Split struct {
	TrainFeatures [][]float64
	TrainLabels   []float64
	TestFeatures  [][]float64
	TestLabels    []float64

	// FeatureMean and FeatureStd are the per-column training statistics.
	// Test features are normalized with these same constants; test
	// statistics never enter the normalization.
	FeatureMean []float64
	FeatureStd  []float64
}

// SplitNormalize shuffles the manifold groups, splits them into train and
// test sides, flattens each side into entries, and z-score normalizes the
// features using training statistics only. Shuffling happens at the manifold
// level so that all triangulations of a manifold land on the same side of the
// split; train and test can never share a CY phase.
//
// The groups slice is shuffled in place. Callers should drop their reference
// to the originating DedupTable before calling, so the grouped copies are the
// only resident ones during flattening.
func SplitNormalize(groups [][]Entry, opts SplitOptions) (*Split, error) {
	if len(groups) == 0 {
		return nil, fmt.Errorf("no manifold groups to split")
	}
	if opts.Ratio == 0 {
		opts.Ratio = 0.8
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	rng.Shuffle(len(groups), func(i, j int) {
		groups[i], groups[j] = groups[j], groups[i]
	})

	cut := int(float64(len(groups)) * opts.Ratio)
	trainFeatures, trainLabels := flatten(groups[:cut], opts.OnePerManifold)
	testFeatures, testLabels := flatten(groups[cut:], opts.OnePerManifold)

	if len(trainFeatures) == 0 {
		return nil, fmt.Errorf("training side is empty after split (groups=%d ratio=%g)", len(groups), opts.Ratio)
	}
	width := len(trainFeatures[0])
	for i, f := range trainFeatures {
		if len(f) != width {
			return nil, fmt.Errorf("inconsistent feature width in train entry %d: expected %d, got %d", i, width, len(f))
		}
	}
	for i, f := range testFeatures {
		if len(f) != width {
			return nil, fmt.Errorf("inconsistent feature width in test entry %d: expected %d, got %d", i, width, len(f))
		}
	}

	mean := make([]float64, width)
	std := make([]float64, width)
	col := make([]float64, len(trainFeatures))
	for j := 0; j < width; j++ {
		for i, f := range trainFeatures {
			col[i] = f[j]
		}
		mean[j] = stat.Mean(col, nil)
		std[j] = stat.PopStdDev(col, nil)
	}

	normalize(trainFeatures, mean, std)
	normalize(testFeatures, mean, std)

	return &Split{
		TrainFeatures: trainFeatures,
		TrainLabels:   trainLabels,
		TestFeatures:  testFeatures,
		TestLabels:    testLabels,
		FeatureMean:   mean,
		FeatureStd:    std,
	}, nil
}

// flatten concatenates the entries of each group, or keeps only the first
// entry per group when onePerManifold is set.
func flatten(groups [][]Entry, onePerManifold bool) ([][]float64, []float64) {
	var features [][]float64
	var labels []float64
	for _, group := range groups {
		if onePerManifold && len(group) > 1 {
			group = group[:1]
		}
		for _, e := range group {
			features = append(features, e.Features)
			labels = append(labels, e.Label)
		}
	}
	return features, labels
}

func normalize(features [][]float64, mean, std []float64) {
	for _, f := range features {
		for j := range f {
			f[j] = (f[j] - mean[j]) / (std[j] + normTol)
		}
	}
}
