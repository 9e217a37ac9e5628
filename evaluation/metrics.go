package evaluation

import (
	"fmt"
	"strconv"
	"strings"
)

// Metrics holds the scores derived from Counts.
type Metrics struct {
	Precision float64 `json:"precision" yaml:"precision"`
	Recall    float64 `json:"recall"    yaml:"recall"`
	F1        float64 `json:"f1"        yaml:"f1"`
}

// String formats the metrics the way the command line reports them.
func (m Metrics) String() string {
	return fmt.Sprintf("Precision:%s, Recall:%s, F1-score:%s",
		formatScore(m.Precision), formatScore(m.Recall), formatScore(m.F1))
}

// formatScore prints the shortest representation of v, keeping a ".0" on integral values.
func formatScore(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if strings.ContainsAny(s, ".eIN") {
		return s
	}
	return s + ".0"
}

// CalculateMetrics derives precision, recall and F1 from the counts.
//
// precision = TP / (TP + Overseg + FP) and recall = TP / (TP + Underseg + Miss). A zero
// denominator yields 0, and F1 is 0 when precision and recall are both 0.
//
// Arguments:
//   - c: The classification counts.
//
// Returns:
//   - Metrics: The derived scores.
func CalculateMetrics(c Counts) Metrics {
	var m Metrics

	if d := c.TP + c.Overseg + c.FP; d > 0 {
		m.Precision = float64(c.TP) / float64(d)
	}
	if d := c.TP + c.Underseg + c.Miss; d > 0 {
		m.Recall = float64(c.TP) / float64(d)
	}
	if m.Precision != 0 || m.Recall != 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}

	return m
}
