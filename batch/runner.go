// Package batch - Evaluation of mask pairs, one at a time or over whole directories.
package batch

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/nvr-ai/go-maskeval/evaluation"
	"github.com/nvr-ai/go-maskeval/images"
	"github.com/nvr-ai/go-maskeval/masks"
	"github.com/nvr-ai/go-maskeval/profiler"
	"github.com/nvr-ai/go-maskeval/util"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Operation names recorded by the runner's profiler.
const (
	OperationDecode    = "decode"
	OperationNormalize = "normalize"
	OperationAlign     = "align"
	OperationMatch     = "match"
)

// Loader decodes a mask file into a raw mask.
type Loader func(path string) (masks.Raw, error)

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers bounds the number of pairs evaluated concurrently (default: runtime.NumCPU()).
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithAlign resamples computed masks to the gold shape when they differ.
func WithAlign(align bool) Option {
	return func(r *Runner) {
		r.align = align
	}
}

// WithLoader replaces the mask file decoder (default: images.LoadMask).
func WithLoader(l Loader) Option {
	return func(r *Runner) {
		if l != nil {
			r.loader = l
		}
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// Runner loads, normalises and evaluates mask pairs.
type Runner struct {
	matcher    *evaluation.Matcher
	normalizer *masks.Normalizer
	loader     Loader
	align      bool
	workers    int
	logger     *slog.Logger
	profiler   *profiler.Profiler
}

// PairResult is the evaluation of one mask pair.
type PairResult struct {
	util.MaskPair
	evaluation.Result

	// ComputedChecksum identifies the normalised computed mask.
	ComputedChecksum string `json:"computed_checksum" yaml:"computed_checksum"`
	// GoldChecksum identifies the normalised gold mask.
	GoldChecksum string `json:"gold_checksum"     yaml:"gold_checksum"`
	// Aligned is true when the computed mask was resampled to the gold shape.
	Aligned bool `json:"aligned"           yaml:"aligned"`
}

// NewRunner creates a Runner.
//
// Arguments:
//   - matcher: The matcher applied to every pair.
//   - normalizer: The normaliser applied to both masks of every pair.
//   - opts: Optional workers, alignment, loader and logger overrides.
//
// Returns:
//   - *Runner: The configured runner.
func NewRunner(matcher *evaluation.Matcher, normalizer *masks.Normalizer, opts ...Option) *Runner {
	r := &Runner{
		matcher:    matcher,
		normalizer: normalizer,
		workers:    runtime.NumCPU(),
		logger:     slog.Default(),
		profiler:   profiler.New(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.loader == nil {
		logger := r.logger
		r.loader = func(path string) (masks.Raw, error) {
			return images.LoadMask(path, logger)
		}
	}
	return r
}

// Timings returns the stage timings accumulated so far.
func (r *Runner) Timings() []profiler.OperationStats {
	return r.profiler.Summary()
}

// EvaluatePair loads both masks of a pair, normalises them and evaluates them.
//
// Arguments:
//   - ctx: Checked before any work starts.
//   - pair: The mask files to compare.
//
// Returns:
//   - PairResult: The evaluation of the pair.
//   - error: Decoding errors, or evaluation.ErrShapeMismatch when the shapes differ
//     and alignment is off.
func (r *Runner) EvaluatePair(ctx context.Context, pair util.MaskPair) (PairResult, error) {
	if err := ctx.Err(); err != nil {
		return PairResult{}, err
	}

	computed, err := r.load(pair.ComputedPath)
	if err != nil {
		return PairResult{}, errors.Wrap(err, "loading computed mask")
	}
	gold, err := r.load(pair.GoldPath)
	if err != nil {
		return PairResult{}, errors.Wrap(err, "loading gold mask")
	}

	result := PairResult{MaskPair: pair}

	if r.align && !computed.SameShape(gold) {
		done := r.profiler.StartOperation(OperationAlign)
		r.logger.Warn("aligning computed mask to gold shape",
			"pair", pair.Name, "computed", computed.Shape(), "gold", gold.Shape())
		computed, err = images.AlignTo(computed, gold.Width, gold.Height)
		done()
		if err != nil {
			return PairResult{}, errors.Wrap(err, "aligning computed mask")
		}
		result.Aligned = true
	}

	done := r.profiler.StartOperation(OperationMatch)
	result.Result, err = r.matcher.Evaluate(computed, gold)
	done()
	if err != nil {
		return PairResult{}, err
	}

	result.ComputedChecksum = images.ComputeMaskChecksum(computed)
	result.GoldChecksum = images.ComputeMaskChecksum(gold)
	return result, nil
}

// load decodes and normalises one mask file.
func (r *Runner) load(path string) (masks.LabeledMask, error) {
	done := r.profiler.StartOperation(OperationDecode)
	raw, err := r.loader(path)
	done()
	if err != nil {
		return masks.LabeledMask{}, err
	}

	done = r.profiler.StartOperation(OperationNormalize)
	defer done()
	return r.normalizer.Normalize(raw)
}

// Run evaluates every pair with at most the configured number of workers and builds
// a report. Results keep the order of pairs. The first failing pair cancels the rest.
//
// Arguments:
//   - ctx: Cancels the remaining pairs when done.
//   - pairs: The mask pairs to evaluate.
//
// Returns:
//   - *Report: Per-pair results and aggregates.
//   - error: The first pair error, wrapped with the pair name.
func (r *Runner) Run(ctx context.Context, pairs []util.MaskPair) (*Report, error) {
	results := make([]PairResult, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, pair := range pairs {
		g.Go(func() error {
			res, err := r.EvaluatePair(gctx, pair)
			if err != nil {
				return errors.Wrapf(err, "pair %s", pair.Name)
			}
			results[i] = res
			r.logger.Info("evaluated mask pair",
				"pair", pair.Name, "tp", res.Counts.TP, "f1", res.Metrics.F1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return NewReport(results, r.matcher.Threshold(), r.normalizer.Connectivity(), r.Timings(), time.Now()), nil
}
