package evaluation

import "strings"

// HitRelation is a boolean matrix of computed components (rows) against gold
// components (columns). Entry (i, j) refers to computed label i+1 and gold label j+1.
//
// Entries are only ever set, never cleared.
type HitRelation struct {
	rows  int
	cols  int
	cells []bool
}

// NewHitRelation allocates an empty relation with the given dimensions.
func NewHitRelation(rows, cols int) *HitRelation {
	return &HitRelation{
		rows:  rows,
		cols:  cols,
		cells: make([]bool, rows*cols),
	}
}

// Rows returns the number of computed components.
func (r *HitRelation) Rows() int { return r.rows }

// Cols returns the number of gold components.
func (r *HitRelation) Cols() int { return r.cols }

// Hit reports whether computed row i and gold column j are matched.
func (r *HitRelation) Hit(i, j int) bool {
	return r.cells[i*r.cols+j]
}

// Set marks computed row i and gold column j as matched.
func (r *HitRelation) Set(i, j int) {
	r.cells[i*r.cols+j] = true
}

// RowHits returns the number of gold components matched by computed row i.
func (r *HitRelation) RowHits(i int) int {
	n := 0
	for _, hit := range r.cells[i*r.cols : (i+1)*r.cols] {
		if hit {
			n++
		}
	}
	return n
}

// ColHits returns the number of computed components matched by gold column j.
func (r *HitRelation) ColHits(j int) int {
	n := 0
	for i := 0; i < r.rows; i++ {
		if r.cells[i*r.cols+j] {
			n++
		}
	}
	return n
}

// FirstHit returns the first gold column matched by row i, or -1.
func (r *HitRelation) FirstHit(i int) int {
	for j, hit := range r.cells[i*r.cols : (i+1)*r.cols] {
		if hit {
			return j
		}
	}
	return -1
}

// Equal reports whether both relations have the same shape and entries.
func (r *HitRelation) Equal(o *HitRelation) bool {
	if r.rows != o.rows || r.cols != o.cols {
		return false
	}
	for k := range r.cells {
		if r.cells[k] != o.cells[k] {
			return false
		}
	}
	return true
}

// String renders the relation as rows of 0/1, mostly for debugging.
func (r *HitRelation) String() string {
	var sb strings.Builder
	for i := 0; i < r.rows; i++ {
		for j := 0; j < r.cols; j++ {
			if r.Hit(i, j) {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
