// Package masks - Labeled instance masks and the normalisation of raw masks into them.
package masks

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// ErrInvalidShape is returned when the label data does not match the declared dimensions.
var ErrInvalidShape = errors.New("masks: invalid shape")

// LabeledMask is a 2D grid of component labels stored in row-major order.
//
// Label 0 is background and every positive value k marks membership in connected
// component k. Labels are expected to be drawn from 1..N, but gaps are tolerated and
// simply behave as components without any cells.
type LabeledMask struct {
	// Width is the number of columns in the grid.
	Width int `json:"width" yaml:"width"`
	// Height is the number of rows in the grid.
	Height int `json:"height" yaml:"height"`
	// Labels holds Width*Height labels, row by row.
	Labels []uint32 `json:"-" yaml:"-"`
}

// New creates a LabeledMask from row-major label data.
//
// Arguments:
//   - width: The number of columns.
//   - height: The number of rows.
//   - labels: The row-major labels, len(labels) must equal width*height.
//
// Returns:
//   - LabeledMask: The labeled mask sharing the given slice.
//   - error: ErrInvalidShape if the dimensions and data disagree.
func New(width, height int, labels []uint32) (LabeledMask, error) {
	if width < 0 || height < 0 || len(labels) != width*height {
		return LabeledMask{}, errors.Wrapf(ErrInvalidShape, "%dx%d grid with %d labels", width, height, len(labels))
	}
	return LabeledMask{Width: width, Height: height, Labels: labels}, nil
}

// FromRows builds a LabeledMask from a slice of equally sized rows.
func FromRows(rows [][]uint32) (LabeledMask, error) {
	if len(rows) == 0 {
		return LabeledMask{}, nil
	}
	width := len(rows[0])
	labels := make([]uint32, 0, width*len(rows))
	for y, row := range rows {
		if len(row) != width {
			return LabeledMask{}, errors.Wrapf(ErrInvalidShape, "row %d has %d columns, want %d", y, len(row), width)
		}
		labels = append(labels, row...)
	}
	return LabeledMask{Width: width, Height: len(rows), Labels: labels}, nil
}

// At returns the label at column x, row y.
func (m LabeledMask) At(x, y int) uint32 {
	return m.Labels[y*m.Width+x]
}

// Size returns the number of cells in the grid.
func (m LabeledMask) Size() int {
	return m.Width * m.Height
}

// SameShape reports whether both masks have identical dimensions.
func (m LabeledMask) SameShape(o LabeledMask) bool {
	return m.Width == o.Width && m.Height == o.Height
}

// Shape formats the dimensions as WIDTHxHEIGHT.
func (m LabeledMask) Shape() string {
	return fmt.Sprintf("%dx%d", m.Width, m.Height)
}

// MaxLabel returns the largest label present, which is the component count N for a
// mask labeled without gaps. An empty or all-background mask returns 0.
func (m LabeledMask) MaxLabel() int {
	var maxLabel uint32
	for _, l := range m.Labels {
		if l > maxLabel {
			maxLabel = l
		}
	}
	return int(maxLabel)
}

// Areas returns the number of cells per label, indexed by label. The slice has
// MaxLabel()+1 entries and index 0 holds the background area.
func (m LabeledMask) Areas() []int {
	areas := make([]int, m.MaxLabel()+1)
	for _, l := range m.Labels {
		areas[l]++
	}
	return areas
}

// Binary returns the foreground membership of every cell (label > 0).
func (m LabeledMask) Binary() []bool {
	binary := make([]bool, len(m.Labels))
	for i, l := range m.Labels {
		binary[i] = l > 0
	}
	return binary
}

// Compact renumbers the labels present in the mask to 1..K, keeping their relative
// order. The receiver is left untouched.
func (m LabeledMask) Compact() LabeledMask {
	present := make(map[uint32]struct{})
	for _, l := range m.Labels {
		if l > 0 {
			present[l] = struct{}{}
		}
	}

	ordered := make([]uint32, 0, len(present))
	for l := range present {
		ordered = append(ordered, l)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	remap := make(map[uint32]uint32, len(ordered))
	for i, l := range ordered {
		remap[l] = uint32(i + 1)
	}

	labels := make([]uint32, len(m.Labels))
	for i, l := range m.Labels {
		if l > 0 {
			labels[i] = remap[l]
		}
	}
	return LabeledMask{Width: m.Width, Height: m.Height, Labels: labels}
}
