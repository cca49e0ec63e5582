// Command generate produces a labeled GKZ → log-volume dataset from random
// triangulations of a single reflexive polytope.
//
// It fetches the base polytope from an external geometry service, samples
// triangulations in parallel rounds, deduplicates Calabi-Yau phases by their
// intersection-number fingerprint, splits at the manifold level, normalizes
// features with training statistics, and writes headerless CSV tables plus a
// run metadata file into the output directory.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/Noofbiz/gkzvol/dataset"
	"github.com/Noofbiz/gkzvol/geometry"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

func main() {
	// .env may provide GKZVOL_GEOMETRY_URL; absence is fine.
	_ = godotenv.Load()

	geometryURL := flag.String("geometry-url", envOr("GKZVOL_GEOMETRY_URL", "http://localhost:8000"), "base URL of the toric geometry service")
	h11 := flag.Int("h11", 30, "target h11 Hodge number of the base polytope")
	h21 := flag.Int("h21", 42, "target h21 Hodge number of the base polytope")
	numCYs := flag.Int("num-cys", 1_000_000, "number of unique Calabi-Yau manifolds to collect")
	maxDatasetSize := flag.Int("max-dataset-size", 10_000_000_000, "hard cap on total triangulations sampled, duplicates included")
	split := flag.Float64("split", 0.8, "fraction of manifolds assigned to the training set")
	threads := flag.Int("threads", 16, "number of parallel sampling tasks per round")
	chunkSize := flag.Int("chunk-size", 100, "triangulations requested per task per round")
	outDir := flag.String("out", "datasets/gkz", "output directory for the dataset CSVs")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed for sampling and the split shuffle")
	onePerManifold := flag.Bool("one-per-manifold", false, "keep one entry per manifold instead of one per triangulation")
	plotHist := flag.Bool("plot", false, "also write a histogram of training labels to the output directory")
	flag.Parse()

	if *numCYs <= 0 || *maxDatasetSize <= 0 || *threads <= 0 || *chunkSize <= 0 {
		log.Fatalf("num-cys, max-dataset-size, threads and chunk-size must all be positive")
	}
	if *split <= 0 || *split > 1 {
		log.Fatalf("split must be in (0, 1], got %g", *split)
	}

	client := geometry.NewClient(*geometryURL)

	log.Printf("Fetching base polytope (h11=%d, h21=%d) from %s", *h11, *h21, *geometryURL)
	polys, err := client.FetchPolytopes(geometry.FetchOptions{
		H11:       *h11,
		H21:       *h21,
		Lattice:   "N",
		Limit:     1,
		Favorable: true,
	})
	if err != nil {
		log.Fatalf("failed to fetch polytopes: %v", err)
	}
	if len(polys) == 0 {
		log.Fatalf("no polytope found for h11=%d h21=%d", *h11, *h21)
	}
	poly := polys[0]
	log.Printf("Using polytope id=%d (h11=%d, h21=%d, rays=%d)", poly.ID, poly.H11, poly.H21, poly.NRays)

	gen, err := dataset.NewGenerator(client, poly.ID, dataset.Config{
		TargetUnique: *numCYs,
		MaxSamples:   *maxDatasetSize,
		Workers:      *threads,
		ChunkSize:    *chunkSize,
		Seed:         *seed,
	})
	if err != nil {
		log.Fatalf("failed to create generator: %v", err)
	}

	start := time.Now()
	table, report, err := gen.Run()
	if err != nil {
		log.Fatalf("generation failed: %v", err)
	}
	log.Printf("Sampling finished in %v: unique=%d sampled=%d rounds=%d failed_tasks=%d",
		time.Since(start), report.UniqueManifolds, report.TotalSampled, report.Rounds, report.FailedTasks)

	// Release the table before flattening so only the grouped entries stay
	// resident through normalization.
	groups := table.Groups()
	table = nil

	splitSeed := *seed + 1
	result, err := dataset.SplitNormalize(groups, dataset.SplitOptions{
		Ratio:          *split,
		OnePerManifold: *onePerManifold,
		Seed:           splitSeed,
	})
	if err != nil {
		log.Fatalf("split/normalize failed: %v", err)
	}

	fmt.Printf("Number of unique CYs: %d\n", report.UniqueManifolds)
	fmt.Printf("Training set size: %d\n", len(result.TrainLabels))
	fmt.Printf("Testing set size: %d\n", len(result.TestLabels))

	fmt.Println("Saving dataset...")
	if err := dataset.WriteSplit(*outDir, result); err != nil {
		log.Fatalf("failed to write dataset: %v", err)
	}

	meta := dataset.Metadata{
		H11:             *h11,
		H21:             *h21,
		TargetUnique:    *numCYs,
		MaxSamples:      *maxDatasetSize,
		Workers:         *threads,
		ChunkSize:       *chunkSize,
		SplitRatio:      *split,
		Seed:            *seed,
		UniqueManifolds: report.UniqueManifolds,
		TotalSampled:    report.TotalSampled,
		FailedTasks:     report.FailedTasks,
		TrainSize:       len(result.TrainLabels),
		TestSize:        len(result.TestLabels),
		FeatureDim:      len(result.FeatureMean),
	}
	if err := dataset.WriteMetadata(*outDir, meta); err != nil {
		log.Fatalf("failed to write metadata: %v", err)
	}

	if *plotHist {
		if err := plotLabelHistogram(*outDir, result.TrainLabels); err != nil {
			log.Printf("warning: failed to plot label histogram: %v", err)
		} else {
			log.Printf("Label histogram written to %s", filepath.Join(*outDir, "train_labels_hist.png"))
		}
	}

	fmt.Println("Done!")
}

// plotLabelHistogram writes a PNG histogram of the training labels so a
// finished run can be eyeballed for degenerate label distributions.
func plotLabelHistogram(outDir string, labels []float64) error {
	p := plot.New()
	p.Title.Text = "Training labels: log10 CY volume at stretched cone tip"
	p.X.Label.Text = "log10(volume)"
	p.Y.Label.Text = "count"

	hist, err := plotter.NewHist(plotter.Values(labels), 40)
	if err != nil {
		return err
	}
	p.Add(hist)

	outPath := filepath.Join(outDir, "train_labels_hist.png")
	return p.Save(8*vg.Inch, 6*vg.Inch, outPath)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
