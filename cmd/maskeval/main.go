package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nvr-ai/go-maskeval/batch"
	"github.com/nvr-ai/go-maskeval/config"
	"github.com/nvr-ai/go-maskeval/evaluation"
	"github.com/nvr-ai/go-maskeval/images"
	"github.com/nvr-ai/go-maskeval/masks"
	"github.com/nvr-ai/go-maskeval/util"
)

func main() {
	var (
		configFile   = flag.String("config", "", "Path to a JSON or YAML configuration file")
		computedPath = flag.String("computed", "", "Computed mask file (default ./computed.png)")
		goldPath     = flag.String("gold", "", "Gold mask file (default ./gold.png)")
		computedDir  = flag.String("computed-dir", "", "Directory of computed masks (batch mode)")
		goldDir      = flag.String("gold-dir", "", "Directory of gold masks (batch mode)")
		threshold    = flag.Float64("threshold", 0, "Overlap threshold in (0, 1] (default 0.5)")
		connectivity = flag.Int("connectivity", 0, "Labeling connectivity, 4 or 8 (default 8)")
		labeler      = flag.String("labeler", "", "Connected component labeler: floodfill or opencv")
		align        = flag.Bool("align", false, "Resample computed masks to the gold shape on mismatch")
		workers      = flag.Int("workers", 0, "Pairs evaluated concurrently in batch mode")
		reportPath   = flag.String("report", "", "Write a JSON report to this path")
		verbose      = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// Load configuration if provided
	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	// Flags override the configuration file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "computed":
			cfg.ComputedPath = *computedPath
		case "gold":
			cfg.GoldPath = *goldPath
		case "computed-dir":
			cfg.ComputedDir = *computedDir
		case "gold-dir":
			cfg.GoldDir = *goldDir
		case "threshold":
			cfg.OverlapThreshold = *threshold
		case "connectivity":
			cfg.Connectivity = *connectivity
		case "labeler":
			cfg.Labeler = strings.ToLower(*labeler)
		case "align":
			cfg.Align = *align
		case "workers":
			cfg.Workers = *workers
		case "report":
			cfg.ReportPath = *reportPath
		}
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	runner, err := newRunner(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create evaluator: %v", err)
	}

	ctx := context.Background()

	if !cfg.Batch() {
		pair := util.MaskPair{
			Name:         filepath.Base(cfg.ComputedPath),
			ComputedPath: cfg.ComputedPath,
			GoldPath:     cfg.GoldPath,
		}
		result, err := runner.EvaluatePair(ctx, pair)
		if err != nil {
			log.Fatalf("Evaluation failed: %v", err)
		}

		fmt.Printf("Number of computed and groundtruth objects: %d, %d.\n", result.ComputedObjects, result.GoldObjects)
		fmt.Println(result.Counts)
		fmt.Println(result.Metrics)

		if cfg.ReportPath != "" {
			report := batch.NewReport([]batch.PairResult{result}, cfg.OverlapThreshold,
				masks.Connectivity(cfg.Connectivity), runner.Timings(), time.Now())
			if err := report.Save(cfg.ReportPath); err != nil {
				log.Fatalf("Failed to save report: %v", err)
			}
		}
		return
	}

	pairs, unmatched, err := util.LoadMaskPairs(cfg.ComputedDir, cfg.GoldDir)
	if err != nil {
		log.Fatalf("Failed to load mask pairs: %v", err)
	}
	for _, name := range unmatched {
		logger.Warn("mask has no counterpart, skipping", "name", name)
	}
	if len(pairs) == 0 {
		log.Fatalf("No mask pairs found in %s and %s", cfg.ComputedDir, cfg.GoldDir)
	}

	report, err := runner.Run(ctx, pairs)
	if err != nil {
		log.Fatalf("Batch evaluation failed: %v", err)
	}
	report.Unmatched = unmatched

	fmt.Printf("\n=== EVALUATION SUMMARY ===\n")
	fmt.Printf("Mask pairs: %d\n", len(report.Pairs))
	for _, res := range report.Pairs {
		fmt.Printf("  %s: %s\n", res.Name, res.Counts)
	}
	fmt.Printf("\nTotal %s\n", report.Total)
	fmt.Printf("Micro %s\n", report.Micro)
	fmt.Printf("Macro F1-score: mean=%.4f, std=%.4f, min=%.4f, max=%.4f\n",
		report.Macro.F1.Mean, report.Macro.F1.StdDev, report.Macro.F1.Min, report.Macro.F1.Max)

	if cfg.ReportPath != "" {
		if err := report.Save(cfg.ReportPath); err != nil {
			log.Fatalf("Failed to save report: %v", err)
		}
		fmt.Printf("Report saved to: %s\n", cfg.ReportPath)
	}
}

// newRunner wires the matcher, normaliser and runner from the configuration.
func newRunner(cfg *config.Config, logger *slog.Logger) (*batch.Runner, error) {
	matcher, err := evaluation.NewMatcher(
		evaluation.WithOverlapThreshold(cfg.OverlapThreshold),
		evaluation.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	conn, err := masks.ParseConnectivity(cfg.Connectivity)
	if err != nil {
		return nil, err
	}

	var labeler masks.Labeler = masks.FloodFill{}
	if cfg.Labeler == config.LabelerOpenCV {
		labeler = images.OpenCVLabeler{}
	}

	normalizer := masks.NewNormalizer(
		masks.WithLabeler(labeler),
		masks.WithConnectivity(conn),
		masks.WithLogger(logger),
	)

	return batch.NewRunner(matcher, normalizer,
		batch.WithWorkers(cfg.Workers),
		batch.WithAlign(cfg.Align),
		batch.WithLogger(logger),
	), nil
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "Object-level evaluation of segmentation masks against ground truth.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -computed ./computed.png -gold ./gold.png\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(
			os.Stderr,
			"  %s -computed-dir ./predictions -gold-dir ./annotations -report ./report.json\n",
			filepath.Base(os.Args[0]),
		)
		fmt.Fprintf(os.Stderr, "  %s -config ./eval.yaml -threshold 0.6 -connectivity 4\n", filepath.Base(os.Args[0]))
	}
}
