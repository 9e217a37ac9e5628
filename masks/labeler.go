package masks

import "github.com/pkg/errors"

// Connectivity selects the neighbourhood used when grouping foreground cells.
type Connectivity int

const (
	// Four joins cells sharing an edge.
	Four Connectivity = 4
	// Eight joins cells sharing an edge or a corner.
	Eight Connectivity = 8
)

// ErrInvalidConnectivity is returned when parsing a connectivity other than 4 or 8.
var ErrInvalidConnectivity = errors.New("masks: connectivity must be 4 or 8")

// ParseConnectivity converts 4 or 8 into a Connectivity.
func ParseConnectivity(n int) (Connectivity, error) {
	switch Connectivity(n) {
	case Four, Eight:
		return Connectivity(n), nil
	default:
		return 0, errors.Wrapf(ErrInvalidConnectivity, "got %d", n)
	}
}

// offsets returns the neighbour displacements as (dx, dy) pairs.
func (c Connectivity) offsets() [][2]int {
	if c == Four {
		return [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	}
	return [][2]int{
		{1, 0}, {-1, 0}, {0, 1}, {0, -1},
		{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
	}
}

// Labeler turns a binary grid into a labeled mask.
//
// Implementations may number components in any order; consumers only rely on
// component identity. Output labels must be contiguous from 1.
type Labeler interface {
	Label(binary []bool, width, height int, conn Connectivity) LabeledMask
}

// FloodFill labels connected components with a breadth-first flood fill. Components
// are numbered in raster order of their first cell.
type FloodFill struct{}

// Label implements Labeler.
//
// Time:   O(W·H·d), where d = 4 or 8.
// Memory: O(W·H) for the label grid and the queue.
func (FloodFill) Label(binary []bool, width, height int, conn Connectivity) LabeledMask {
	labels := make([]uint32, width*height)
	offsets := conn.offsets()
	var next uint32
	var queue []int

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i0 := y*width + x
			if !binary[i0] || labels[i0] != 0 {
				continue
			}
			next++
			labels[i0] = next
			queue = append(queue[:0], i0)

			for qi := 0; qi < len(queue); qi++ {
				u := queue[qi]
				ux, uy := u%width, u/width
				for _, d := range offsets {
					vx, vy := ux+d[0], uy+d[1]
					if vx < 0 || vy < 0 || vx >= width || vy >= height {
						continue
					}
					vi := vy*width + vx
					if binary[vi] && labels[vi] == 0 {
						labels[vi] = next
						queue = append(queue, vi)
					}
				}
			}
		}
	}

	return LabeledMask{Width: width, Height: height, Labels: labels}
}
