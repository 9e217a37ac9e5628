package masks

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	m, err := New(3, 2, []uint32{0, 1, 1, 2, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, uint32(2), m.At(0, 1))
	assert.Equal(t, 6, m.Size())
	assert.Equal(t, "3x2", m.Shape())

	_, err = New(3, 3, []uint32{0, 1})
	assert.True(t, errors.Is(err, ErrInvalidShape))
}

func TestFromRows(t *testing.T) {
	m, err := FromRows([][]uint32{
		{0, 1},
		{2, 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Width)
	assert.Equal(t, 2, m.Height)
	assert.Equal(t, []uint32{0, 1, 2, 2}, m.Labels)

	_, err = FromRows([][]uint32{{0, 1}, {2}})
	assert.True(t, errors.Is(err, ErrInvalidShape))

	empty, err := FromRows(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.MaxLabel())
}

func TestMaxLabelAndAreas(t *testing.T) {
	m, err := FromRows([][]uint32{
		{0, 3, 3},
		{1, 0, 3},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, m.MaxLabel())
	// Label 2 is a gap and has no cells.
	assert.Equal(t, []int{2, 1, 0, 3}, m.Areas())
	assert.Equal(t, []bool{false, true, true, true, false, true}, m.Binary())
}

func TestSameShape(t *testing.T) {
	a := LabeledMask{Width: 2, Height: 3, Labels: make([]uint32, 6)}
	b := LabeledMask{Width: 3, Height: 2, Labels: make([]uint32, 6)}

	assert.True(t, a.SameShape(a))
	assert.False(t, a.SameShape(b))
}

func TestCompact(t *testing.T) {
	m, err := FromRows([][]uint32{
		{0, 7, 7},
		{4, 0, 9},
	})
	require.NoError(t, err)

	compact := m.Compact()
	assert.Equal(t, []uint32{0, 2, 2, 1, 0, 3}, compact.Labels)
	assert.Equal(t, 3, compact.MaxLabel())
	// The receiver is untouched.
	assert.Equal(t, []uint32{0, 7, 7, 4, 0, 9}, m.Labels)
}
