package batch

import (
	"encoding/json"
	"os"
	"time"

	"github.com/nvr-ai/go-maskeval/evaluation"
	"github.com/nvr-ai/go-maskeval/masks"
	"github.com/nvr-ai/go-maskeval/profiler"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Statistic summarises one per-pair score across a batch.
type Statistic struct {
	Mean   float64 `json:"mean"    yaml:"mean"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
	Min    float64 `json:"min"     yaml:"min"`
	Max    float64 `json:"max"     yaml:"max"`
}

// Summary holds the macro statistics of a batch: every pair weighs the same.
type Summary struct {
	Precision Statistic `json:"precision" yaml:"precision"`
	Recall    Statistic `json:"recall"    yaml:"recall"`
	F1        Statistic `json:"f1"        yaml:"f1"`
}

// Report is the outcome of a batch run.
type Report struct {
	Timestamp        time.Time                 `json:"timestamp"         yaml:"timestamp"`
	OverlapThreshold float64                   `json:"overlap_threshold" yaml:"overlap_threshold"`
	Connectivity     int                       `json:"connectivity"      yaml:"connectivity"`
	Pairs            []PairResult              `json:"pairs"             yaml:"pairs"`
	Unmatched        []string                  `json:"unmatched"         yaml:"unmatched"`
	Total            evaluation.Counts         `json:"total"             yaml:"total"`
	Micro            evaluation.Metrics        `json:"micro"             yaml:"micro"`
	Macro            Summary                   `json:"macro"             yaml:"macro"`
	Timings          []profiler.OperationStats `json:"timings"           yaml:"timings"`
}

// NewReport aggregates pair results.
//
// Total sums the counts of all pairs and Micro scores that sum, so large images weigh
// more. Macro averages the per-pair scores.
//
// Arguments:
//   - results: The pair results, in report order.
//   - threshold: The overlap threshold used.
//   - conn: The labeling connectivity used.
//   - timings: Stage timings to include.
//   - now: The report timestamp.
//
// Returns:
//   - *Report: The aggregated report.
func NewReport(
	results []PairResult,
	threshold float64,
	conn masks.Connectivity,
	timings []profiler.OperationStats,
	now time.Time,
) *Report {
	var total evaluation.Counts
	for _, res := range results {
		total = total.Add(res.Counts)
	}

	return &Report{
		Timestamp:        now,
		OverlapThreshold: threshold,
		Connectivity:     int(conn),
		Pairs:            results,
		Total:            total,
		Micro:            evaluation.CalculateMetrics(total),
		Macro:            Summarize(results),
		Timings:          timings,
	}
}

// Summarize computes mean, sample standard deviation, minimum and maximum of the
// per-pair precision, recall and F1. Fewer than two pairs give a zero deviation.
func Summarize(results []PairResult) Summary {
	precision := make([]float64, len(results))
	recall := make([]float64, len(results))
	f1 := make([]float64, len(results))
	for i, res := range results {
		precision[i] = res.Metrics.Precision
		recall[i] = res.Metrics.Recall
		f1[i] = res.Metrics.F1
	}

	return Summary{
		Precision: describe(precision),
		Recall:    describe(recall),
		F1:        describe(f1),
	}
}

// describe summarises a sample, guarding the cases gonum leaves undefined.
func describe(x []float64) Statistic {
	switch len(x) {
	case 0:
		return Statistic{}
	case 1:
		return Statistic{Mean: x[0], Min: x[0], Max: x[0]}
	}

	mean, std := stat.MeanStdDev(x, nil)
	return Statistic{
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(x),
		Max:    floats.Max(x),
	}
}

// Save writes the report as indented JSON.
func (r *Report) Save(filename string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal report")
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write report file")
	}
	return nil
}
