// Package model implements a residual dense network that maps a normalized
// GKZ feature vector to a scalar log-volume estimate.
//
// The architecture is an input projection to a hidden width, a stack of
// gated residual layers, and a scalar output projection. Each residual layer
// computes ReLU(x + dropout(alpha*(Wx+b))) where alpha is a learned scalar
// gate initialized to zero, so every layer starts out as the identity and the
// network behaves like a single linear-ReLU-linear map at initialization.
//
// The package is purely a function approximator: it exposes construction
// parameters and the forward transform. Training is driven externally.
package model

import (
	"errors"
	"math"
	"math/rand"
	"time"
)

// Config holds the construction parameters. Zero values are replaced with
// defaults by New.
type Config struct {
	// InputSize is the feature dimensionality. Required.
	InputSize int

	// Width is the hidden width (default 64).
	Width int

	// Depth is the number of residual layers (default 4).
	Depth int

	// Dropout is the dropout rate applied to each layer's gated residual
	// branch during training-mode forward passes. Zero disables dropout.
	Dropout float64

	// Seed controls weight initialization and dropout masks. If zero, a
	// time-based seed is used.
	Seed int64
}

// dense is a fully connected layer: weights[out][in] and a bias per output.
type dense struct {
	weights [][]float32
	bias    []float32
}

// resLayer is one gated residual layer.
type resLayer struct {
	dense dense
	alpha float32
}

// ResDenseNet is the residual dense network.
type ResDenseNet struct {
	Config Config

	first  dense
	layers []resLayer
	last   dense

	rng *rand.Rand
}

// New creates a ResDenseNet with the provided configuration, initializing the
// projection weights randomly and every residual gate to zero.
func New(cfg Config) (*ResDenseNet, error) {
	if cfg.InputSize <= 0 {
		return nil, errors.New("InputSize must be positive")
	}
	if cfg.Width == 0 {
		cfg.Width = 64
	}
	if cfg.Depth == 0 {
		cfg.Depth = 4
	}
	if cfg.Dropout < 0 || cfg.Dropout >= 1 {
		return nil, errors.New("Dropout must be in [0, 1)")
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	n := &ResDenseNet{
		Config: cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
	}
	n.first = n.newDense(cfg.InputSize, cfg.Width)
	n.layers = make([]resLayer, cfg.Depth)
	for i := range n.layers {
		// alpha starts at zero so the layer is the identity at init.
		n.layers[i] = resLayer{dense: n.newDense(cfg.Width, cfg.Width)}
	}
	n.last = n.newDense(cfg.Width, 1)
	return n, nil
}

// newDense allocates a dense layer with Xavier/Glorot uniform initialization.
func (n *ResDenseNet) newDense(in, out int) dense {
	limit := float32(math.Sqrt(6.0 / float64(in+out)))
	weights := make([][]float32, out)
	for j := range weights {
		row := make([]float32, in)
		for i := range row {
			row[i] = (n.rng.Float32()*2.0 - 1.0) * limit
		}
		weights[j] = row
	}
	return dense{weights: weights, bias: make([]float32, out)}
}

// apply computes Wx+b.
func (d *dense) apply(x []float32) []float32 {
	out := make([]float32, len(d.bias))
	for j, row := range d.weights {
		sum := d.bias[j]
		for i, w := range row {
			sum += w * x[i]
		}
		out[j] = sum
	}
	return out
}

func relu(x []float32) {
	for i := range x {
		if x[i] < 0 {
			x[i] = 0
		}
	}
}

// Forward runs one forward pass. With train set, dropout (if configured) is
// applied to each residual branch using inverted scaling; in evaluation mode
// the pass is deterministic. Train-mode passes draw from the model's RNG and
// must not run concurrently.
func (n *ResDenseNet) Forward(x []float32, train bool) (float32, error) {
	if len(x) != n.Config.InputSize {
		return 0, errors.New("input has incorrect dimension")
	}

	h := n.first.apply(x)
	relu(h)

	for i := range n.layers {
		layer := &n.layers[i]
		y := layer.dense.apply(h)
		for j := range y {
			y[j] *= layer.alpha
		}
		if train && n.Config.Dropout > 0 {
			keep := float32(1.0 - n.Config.Dropout)
			for j := range y {
				if n.rng.Float64() < n.Config.Dropout {
					y[j] = 0
				} else {
					y[j] /= keep
				}
			}
		}
		for j := range y {
			y[j] += h[j]
		}
		relu(y)
		h = y
	}

	out := n.last.apply(h)
	return out[0], nil
}

// Predict runs an evaluation-mode forward pass for a single feature vector.
func (n *ResDenseNet) Predict(x []float32) (float32, error) {
	return n.Forward(x, false)
}

// PredictBatch runs evaluation-mode forward passes for a batch of feature
// vectors, returning one scalar per input.
func (n *ResDenseNet) PredictBatch(xs [][]float32) ([]float32, error) {
	out := make([]float32, len(xs))
	for i, x := range xs {
		y, err := n.Forward(x, false)
		if err != nil {
			return nil, err
		}
		out[i] = y
	}
	return out, nil
}
