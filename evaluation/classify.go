package evaluation

import "fmt"

// Counts holds the classification tallies of one evaluation.
type Counts struct {
	// TP counts one-to-one matches, counted once from the computed side.
	TP int `json:"tp" yaml:"tp"`
	// Overseg counts computed components hitting more than one gold component.
	Overseg int `json:"overseg" yaml:"overseg"`
	// Underseg counts gold components hit by more than one computed component.
	Underseg int `json:"underseg" yaml:"underseg"`
	// Miss counts gold components hit by no computed component.
	Miss int `json:"miss" yaml:"miss"`
	// FP counts computed components hitting no gold component.
	FP int `json:"fp" yaml:"fp"`
}

// Add returns the element-wise sum of two tallies.
func (c Counts) Add(o Counts) Counts {
	return Counts{
		TP:       c.TP + o.TP,
		Overseg:  c.Overseg + o.Overseg,
		Underseg: c.Underseg + o.Underseg,
		Miss:     c.Miss + o.Miss,
		FP:       c.FP + o.FP,
	}
}

// String formats the counts the way the command line reports them.
func (c Counts) String() string {
	return fmt.Sprintf("TP:%d, Oversegmentation:%d, Undersegmentation:%d, Miss:%d, False positive:%d",
		c.TP, c.Overseg, c.Underseg, c.Miss, c.FP)
}

// Classify tallies a hit relation.
//
// Rows: a single hit is a true positive when that gold column has no other hit,
// several hits are an oversegmentation, none is a false positive. A row with a single
// hit into a shared column is not counted on the computed side at all; its gold
// column is reported as an undersegmentation instead.
//
// Columns: several hits are an undersegmentation, none is a miss, one adds nothing.
//
// Arguments:
//   - rel: The hit relation.
//
// Returns:
//   - Counts: The five tallies.
func Classify(rel *HitRelation) Counts {
	var c Counts

	for i := 0; i < rel.Rows(); i++ {
		switch hits := rel.RowHits(i); {
		case hits == 1:
			if rel.ColHits(rel.FirstHit(i)) == 1 {
				c.TP++
			}
		case hits > 1:
			c.Overseg++
		default:
			c.FP++
		}
	}

	for j := 0; j < rel.Cols(); j++ {
		switch hits := rel.ColHits(j); {
		case hits > 1:
			c.Underseg++
		case hits == 0:
			c.Miss++
		}
	}

	return c
}
