// Package evaluation - Object-level comparison of a computed labeled mask against a
// ground truth (gold) labeled mask.
//
// Every computed and gold connected component is matched through an asymmetric area
// overlap criterion applied in both directions: computed component i hits gold component
// j when at least the overlap threshold of i's area lies inside j, or at least the
// threshold of j's area lies inside i. The resulting hit relation is classified into
// true positives, oversegmentations, undersegmentations, misses and false positives.
//
// Usage:
//
//	matcher, err := evaluation.NewMatcher(evaluation.WithOverlapThreshold(0.5))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := matcher.Evaluate(computed, gold)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Counts, result.Metrics)
package evaluation

import (
	"log/slog"

	"github.com/nvr-ai/go-maskeval/masks"
	"github.com/pkg/errors"
)

// DefaultOverlapThreshold is the fraction of a component's area that must lie inside
// another component for a hit.
const DefaultOverlapThreshold = 0.5

// Option configures a Matcher.
type Option func(*Matcher)

// WithOverlapThreshold sets the overlap threshold (default: 0.5).
func WithOverlapThreshold(t float64) Option {
	return func(m *Matcher) {
		m.threshold = t
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(m *Matcher) {
		if l != nil {
			m.logger = l
		}
	}
}

// Matcher builds hit relations and classifies them. It holds no mutable state and is
// safe for concurrent use.
type Matcher struct {
	threshold float64
	logger    *slog.Logger
}

// Result is the outcome of one evaluation.
type Result struct {
	// ComputedObjects is the number of computed components (max computed label).
	ComputedObjects int `json:"computed_objects" yaml:"computed_objects"`
	// GoldObjects is the number of gold components (max gold label).
	GoldObjects int `json:"gold_objects" yaml:"gold_objects"`
	// Counts holds the five classification tallies.
	Counts Counts `json:"counts" yaml:"counts"`
	// Metrics holds precision, recall and F1 derived from Counts.
	Metrics Metrics `json:"metrics" yaml:"metrics"`
}

// NewMatcher creates a Matcher.
//
// Arguments:
//   - opts: Optional threshold and logger overrides.
//
// Returns:
//   - *Matcher: The configured matcher.
//   - error: ErrInvalidThreshold if the threshold is outside (0, 1].
func NewMatcher(opts ...Option) (*Matcher, error) {
	m := &Matcher{
		threshold: DefaultOverlapThreshold,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if !(m.threshold > 0 && m.threshold <= 1) {
		return nil, errors.Wrapf(ErrInvalidThreshold, "got %v", m.threshold)
	}
	return m, nil
}

// Threshold returns the overlap threshold.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// ComputeHitRelation matches computed components against gold components.
//
// Entry (i, j) is set when computed label i+1 covers at least the threshold of its
// area with gold label j+1, or gold label j+1 covers at least the threshold of its
// area with computed label i+1. Areas and intersections come from a single pass
// contingency table; only intersecting pairs are examined because a positive
// threshold can never be met by an empty intersection.
//
// Arguments:
//   - computed: The computed labeled mask.
//   - gold: The ground truth labeled mask.
//
// Returns:
//   - *HitRelation: A MaxLabel(computed) x MaxLabel(gold) relation.
//   - error: ErrShapeMismatch if the masks differ in shape.
func (m *Matcher) ComputeHitRelation(computed, gold masks.LabeledMask) (*HitRelation, error) {
	if !computed.SameShape(gold) || len(computed.Labels) != len(gold.Labels) {
		return nil, errors.Wrapf(ErrShapeMismatch, "computed %s, gold %s", computed.Shape(), gold.Shape())
	}

	table := NewContingency(computed, gold)
	rel := NewHitRelation(len(table.CompAreas)-1, len(table.GoldAreas)-1)

	for p, inter := range table.intersections {
		c, g := int(p.comp), int(p.gold)
		if Hits(inter, table.CompAreas[c], m.threshold) || Hits(inter, table.GoldAreas[g], m.threshold) {
			rel.Set(c-1, g-1)
		}
	}

	return rel, nil
}

// Evaluate matches, classifies and scores a computed mask against a gold mask.
//
// Arguments:
//   - computed: The computed labeled mask.
//   - gold: The ground truth labeled mask.
//
// Returns:
//   - Result: Object counts, classification counts and metrics.
//   - error: ErrShapeMismatch if the masks differ in shape.
func (m *Matcher) Evaluate(computed, gold masks.LabeledMask) (Result, error) {
	rel, err := m.ComputeHitRelation(computed, gold)
	if err != nil {
		return Result{}, err
	}

	m.logger.Debug("number of computed and groundtruth objects",
		"computed", rel.Rows(), "gold", rel.Cols())

	counts := Classify(rel)
	return Result{
		ComputedObjects: rel.Rows(),
		GoldObjects:     rel.Cols(),
		Counts:          counts,
		Metrics:         CalculateMetrics(counts),
	}, nil
}
