package evaluation

import "github.com/nvr-ai/go-maskeval/masks"

// pair identifies a (computed label, gold label) combination, both positive.
type pair struct {
	comp uint32
	gold uint32
}

// Contingency holds the component areas of both masks and the area of every
// non-empty pairwise intersection, gathered in one pass over the grids.
type Contingency struct {
	// CompAreas is indexed by computed label, index 0 is background.
	CompAreas []int
	// GoldAreas is indexed by gold label, index 0 is background.
	GoldAreas []int

	intersections map[pair]int
}

// NewContingency builds the table for two masks of identical shape.
func NewContingency(computed, gold masks.LabeledMask) *Contingency {
	t := &Contingency{
		CompAreas:     make([]int, computed.MaxLabel()+1),
		GoldAreas:     make([]int, gold.MaxLabel()+1),
		intersections: make(map[pair]int),
	}

	for k, c := range computed.Labels {
		g := gold.Labels[k]
		t.CompAreas[c]++
		t.GoldAreas[g]++
		if c > 0 && g > 0 {
			t.intersections[pair{comp: c, gold: g}]++
		}
	}
	return t
}

// Hits reports whether at least threshold of an area lies inside the other
// component. A zero area never hits.
//
// Arguments:
//   - inter: The intersection area.
//   - area: The area of the component being tested.
//   - threshold: The minimum covered fraction, inclusive.
//
// Returns:
//   - bool: true when inter/area >= threshold.
func Hits(inter, area int, threshold float64) bool {
	if area <= 0 {
		return false
	}
	return float64(inter)/float64(area) >= threshold
}
