package dataset

import (
	"errors"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/Noofbiz/gkzvol/geometry"
)

// Sampler produces random triangulations of a fixed polytope. It is the only
// thing the generator needs from the geometry service, so tests can inject a
// fake without a network. geometry.Client satisfies this interface.
type Sampler interface {
	RandomTriangulations(polyID, n int, concentration float64, seed int64, backend string) ([]geometry.Triangulation, error)
}

// Config holds the generation parameters. Zero values are replaced with
// defaults by NewGenerator.
type Config struct {
	// TargetUnique is the number of distinct CY phases to collect before
	// stopping (default 1000).
	TargetUnique int

	// MaxSamples is the hard cap on total triangulations sampled,
	// duplicates included (default 100 * TargetUnique).
	MaxSamples int

	// Workers is the number of sampling tasks dispatched per round
	// (default 16).
	Workers int

	// ChunkSize is the number of triangulations each task requests per
	// call (default 100).
	ChunkSize int

	// Concentration is the c parameter of the fast random triangulation
	// sampler (default 2.5).
	Concentration float64

	// Seed controls the RNG used for per-task seeds. If zero, a
	// time-based seed is used.
	Seed int64
}

// Report summarizes a finished generation run.
type Report struct {
	UniqueManifolds int
	TotalSampled    int
	Rounds          int
	FailedTasks     int
}

// Generator drives rounds of parallel triangulation sampling against a fixed
// base polytope and deduplicates the results by CY fingerprint.
type Generator struct {
	cfg     Config
	sampler Sampler
	polyID  int
	rng     *rand.Rand
}

// triple is the plain-data payload a sampling task emits per triangulation.
// Workers never return engine objects, only numbers, so payloads can cross
// goroutine (or process) boundaries freely.
type triple struct {
	fingerprint string
	features    []float64
	label       float64
}

// taskResult is the explicit per-task outcome for one sampling call. A task
// that failed on both backends reports err instead of silently contributing
// an empty payload, so the failure rate is visible in the round logs.
type taskResult struct {
	triples []triple
	backend string
	err     error
}

// NewGenerator creates a Generator sampling triangulations of the polytope
// identified by polyID through the provided sampler.
func NewGenerator(sampler Sampler, polyID int, cfg Config) (*Generator, error) {
	if sampler == nil {
		return nil, errors.New("sampler cannot be nil")
	}
	if cfg.TargetUnique == 0 {
		cfg.TargetUnique = 1000
	}
	if cfg.MaxSamples == 0 {
		cfg.MaxSamples = 100 * cfg.TargetUnique
	}
	if cfg.Workers == 0 {
		cfg.Workers = 16
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = 100
	}
	if cfg.Concentration == 0 {
		cfg.Concentration = 2.5
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return &Generator{
		cfg:     cfg,
		sampler: sampler,
		polyID:  polyID,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Run samples triangulations in rounds until either TargetUnique distinct CY
// phases have been collected or MaxSamples total triangulations have been
// requested, whichever comes first. Each round dispatches Workers tasks, each
// asking for ChunkSize triangulations under a fresh seed; the round is a full
// barrier, so the stopping condition is only re-checked between rounds and a
// round in flight always runs to completion. The returned table is frozen.
func (g *Generator) Run() (*DedupTable, Report, error) {
	table := NewDedupTable()
	var report Report

	for table.Unique() < g.cfg.TargetUnique && report.TotalSampled < g.cfg.MaxSamples {
		// Seeds are drawn serially from the orchestrator RNG so tasks
		// within a round never share a seed and rounds stay
		// reproducible for a fixed Config.Seed.
		seeds := make([]int64, g.cfg.Workers)
		for i := range seeds {
			seeds[i] = g.rng.Int63()
		}

		results := make(chan taskResult, g.cfg.Workers)
		var wg sync.WaitGroup
		wg.Add(g.cfg.Workers)
		for w := 0; w < g.cfg.Workers; w++ {
			go func(seed int64) {
				defer wg.Done()
				results <- g.sampleChunk(seed)
			}(seeds[w])
		}
		wg.Wait()
		close(results)

		roundFailed := 0
		for res := range results {
			if res.err != nil {
				roundFailed++
				continue
			}
			for _, tr := range res.triples {
				table.Add(tr.fingerprint, Entry{Features: tr.features, Label: tr.label})
			}
		}
		report.FailedTasks += roundFailed

		// The cap counts requested triangulations, not delivered ones:
		// a failed task still burned its share of the budget.
		report.TotalSampled += g.cfg.Workers * g.cfg.ChunkSize
		report.Rounds++

		log.Printf("[Generate] round %d: unique=%d/%d sampled=%d/%d failed_tasks=%d",
			report.Rounds, table.Unique(), g.cfg.TargetUnique,
			report.TotalSampled, g.cfg.MaxSamples, roundFailed)
	}

	report.UniqueManifolds = table.Unique()
	return table, report, nil
}

// sampleChunk runs one sampling task: request ChunkSize triangulations on the
// primary backend, retry once on the fallback backend, and reduce every
// triangulation to its (fingerprint, features, label) triple. A task that
// fails on both backends is wasted compute, not a run failure.
func (g *Generator) sampleChunk(seed int64) taskResult {
	backend := geometry.BackendCGAL
	tris, err := g.sampler.RandomTriangulations(g.polyID, g.cfg.ChunkSize, g.cfg.Concentration, seed, backend)
	if err != nil {
		backend = geometry.BackendQhull
		tris, err = g.sampler.RandomTriangulations(g.polyID, g.cfg.ChunkSize, g.cfg.Concentration, seed, backend)
		if err != nil {
			return taskResult{backend: backend, err: err}
		}
	}

	triples := make([]triple, 0, len(tris))
	for _, t := range tris {
		// The first GKZ coordinate belongs to the origin and is the
		// same for every triangulation of a fixed polytope.
		features := make([]float64, len(t.GKZ)-1)
		copy(features, t.GKZ[1:])
		triples = append(triples, triple{
			fingerprint: geometry.Fingerprint(t.IntersectionNumbers),
			features:    features,
			label:       math.Log10(t.CYVolume),
		})
	}
	return taskResult{triples: triples, backend: backend}
}
