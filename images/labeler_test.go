package images

import (
	"math/rand"
	"testing"

	"github.com/nvr-ai/go-maskeval/masks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// samePartition reports whether two labelings group the cells identically.
func samePartition(a, b masks.LabeledMask) bool {
	forward := make(map[uint32]uint32)
	backward := make(map[uint32]uint32)
	for k := range a.Labels {
		la, lb := a.Labels[k], b.Labels[k]
		if (la == 0) != (lb == 0) {
			return false
		}
		if la == 0 {
			continue
		}
		if v, ok := forward[la]; ok && v != lb {
			return false
		}
		if v, ok := backward[lb]; ok && v != la {
			return false
		}
		forward[la] = lb
		backward[lb] = la
	}
	return true
}

func TestOpenCVLabelerMatchesFloodFill(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for _, conn := range []masks.Connectivity{masks.Four, masks.Eight} {
		for trial := 0; trial < 10; trial++ {
			width, height := 16+rng.Intn(16), 8+rng.Intn(16)
			binary := make([]bool, width*height)
			for k := range binary {
				binary[k] = rng.Float64() < 0.35
			}

			want := masks.FloodFill{}.Label(binary, width, height, conn)
			got := OpenCVLabeler{}.Label(binary, width, height, conn)

			require.Equal(t, want.MaxLabel(), got.MaxLabel(), "conn %d trial %d", conn, trial)
			assert.True(t, samePartition(want, got), "conn %d trial %d", conn, trial)
		}
	}
}

func TestOpenCVLabelerEmpty(t *testing.T) {
	m := OpenCVLabeler{}.Label(nil, 0, 0, masks.Eight)
	assert.Equal(t, 0, m.MaxLabel())

	m = OpenCVLabeler{}.Label(make([]bool, 6), 3, 2, masks.Eight)
	assert.Equal(t, 0, m.MaxLabel())
	assert.Len(t, m.Labels, 6)
}
