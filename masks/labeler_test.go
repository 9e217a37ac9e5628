package masks

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// grid parses rows of '#' (foreground) and '.' (background).
func grid(rows ...string) ([]bool, int, int) {
	width, height := len(rows[0]), len(rows)
	binary := make([]bool, 0, width*height)
	for _, row := range rows {
		for _, c := range row {
			binary = append(binary, c == '#')
		}
	}
	return binary, width, height
}

func TestParseConnectivity(t *testing.T) {
	conn, err := ParseConnectivity(4)
	require.NoError(t, err)
	assert.Equal(t, Four, conn)

	conn, err = ParseConnectivity(8)
	require.NoError(t, err)
	assert.Equal(t, Eight, conn)

	_, err = ParseConnectivity(6)
	assert.True(t, errors.Is(err, ErrInvalidConnectivity))
}

func TestFloodFill(t *testing.T) {
	tests := []struct {
		name  string
		rows  []string
		conn  Connectivity
		count int
		want  []uint32
	}{
		{
			name:  "diagonal joined with eight",
			rows:  []string{"#..", ".#.", "..#"},
			conn:  Eight,
			count: 1,
			want:  []uint32{1, 0, 0, 0, 1, 0, 0, 0, 1},
		},
		{
			name:  "diagonal split with four",
			rows:  []string{"#..", ".#.", "..#"},
			conn:  Four,
			count: 3,
			want:  []uint32{1, 0, 0, 0, 2, 0, 0, 0, 3},
		},
		{
			name:  "raster order numbering",
			rows:  []string{"..#", "#.#", "#.."},
			conn:  Four,
			count: 2,
			want:  []uint32{0, 0, 1, 2, 0, 1, 2, 0, 0},
		},
		{
			name:  "u shape is one component",
			rows:  []string{"#.#", "#.#", "###"},
			conn:  Four,
			count: 1,
			want:  []uint32{1, 0, 1, 1, 0, 1, 1, 1, 1},
		},
		{
			name:  "empty",
			rows:  []string{"...", "..."},
			conn:  Eight,
			count: 0,
			want:  []uint32{0, 0, 0, 0, 0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			binary, w, h := grid(tt.rows...)
			m := FloodFill{}.Label(binary, w, h, tt.conn)

			assert.Equal(t, w, m.Width)
			assert.Equal(t, h, m.Height)
			assert.Equal(t, tt.count, m.MaxLabel())
			assert.Equal(t, tt.want, m.Labels)
		})
	}
}
