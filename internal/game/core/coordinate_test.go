package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoordinate(t *testing.T) {
	c := NewCoordinate(3, 5)
	assert.Equal(t, 3, c.X)
	assert.Equal(t, 5, c.Y)
}

func TestCoordinate_FromIndex(t *testing.T) {
	tests := []struct {
		name     string
		index    int
		width    int
		expected Coordinate
	}{
		{"TopLeft", 0, 10, Coordinate{0, 0}},
		{"TopRight", 9, 10, Coordinate{9, 0}},
		{"SecondRow", 10, 10, Coordinate{0, 1}},
		{"Middle", 55, 10, Coordinate{5, 5}},
		{"BottomRight", 99, 10, Coordinate{9, 9}},
		{"SmallBoard", 7, 4, Coordinate{3, 1}},
		{"SingleColumn", 3, 1, Coordinate{0, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FromIndex(tt.index, tt.width))
		})
	}
}

func TestCoordinate_RoundTrip(t *testing.T) {
	dims := []struct{ w, h int }{{1, 1}, {2, 2}, {7, 3}, {3, 7}, {18, 18}}
	for _, d := range dims {
		for i := 0; i < d.w*d.h; i++ {
			coord := FromIndex(i, d.w)
			require.True(t, coord.IsValid(d.w, d.h), "index %d on %dx%d", i, d.w, d.h)
			assert.Equal(t, i, coord.ToIndex(d.w), "round trip failed for index %d on %dx%d", i, d.w, d.h)
		}
	}
}

func TestCoordinate_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		coord Coordinate
		valid bool
	}{
		{"Valid_Origin", Coordinate{0, 0}, true},
		{"Valid_Edge", Coordinate{9, 9}, true},
		{"Invalid_NegativeX", Coordinate{-1, 5}, false},
		{"Invalid_NegativeY", Coordinate{5, -1}, false},
		{"Invalid_TooLargeX", Coordinate{10, 5}, false},
		{"Invalid_TooLargeY", Coordinate{5, 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.coord.IsValid(10, 10))
		})
	}
}

func TestCoordinate_Distances(t *testing.T) {
	tests := []struct {
		name      string
		from, to  Coordinate
		manhattan int
		axis      int
	}{
		{"Same", Coordinate{5, 5}, Coordinate{5, 5}, 0, 0},
		{"Horizontal", Coordinate{1, 5}, Coordinate{4, 5}, 3, 3},
		{"Vertical", Coordinate{5, 6}, Coordinate{5, 1}, 5, 5},
		{"Diagonal", Coordinate{0, 0}, Coordinate{2, 1}, 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.manhattan, tt.from.DistanceTo(tt.to))
			assert.Equal(t, tt.manhattan, tt.to.DistanceTo(tt.from), "Distance not symmetric")
			assert.Equal(t, tt.axis, tt.from.AxisDistanceTo(tt.to))
			assert.Equal(t, tt.axis, tt.to.AxisDistanceTo(tt.from), "Axis distance not symmetric")
		})
	}
}

func TestCoordinate_ValidNeighbors(t *testing.T) {
	assert.ElementsMatch(t, []Coordinate{{1, 0}, {0, 1}}, Coordinate{0, 0}.ValidNeighbors(3, 3))
	assert.Len(t, Coordinate{1, 1}.ValidNeighbors(3, 3), 4)
	assert.Empty(t, Coordinate{0, 0}.ValidNeighbors(1, 1))
}

func TestDirection_String(t *testing.T) {
	assert.Equal(t, "left", Left.String())
	assert.Equal(t, "right", Right.String())
	assert.Equal(t, "up", Up.String())
	assert.Equal(t, "down", Down.String())
	assert.Equal(t, "Direction(9)", Direction(9).String())
}

func TestDirectionOf(t *testing.T) {
	tests := []struct {
		name     string
		prev     Coordinate
		after    Coordinate
		expected Direction
	}{
		{"Left", Coordinate{3, 2}, Coordinate{2, 2}, Left},
		{"Right", Coordinate{0, 0}, Coordinate{1, 0}, Right},
		{"Up", Coordinate{1, 4}, Coordinate{1, 3}, Up},
		{"Down", Coordinate{1, 0}, Coordinate{1, 1}, Down},
		{"LongRight", Coordinate{0, 5}, Coordinate{6, 5}, Right},
		{"DiagonalColumnWins", Coordinate{2, 2}, Coordinate{1, 3}, Left},
		{"DiagonalColumnWinsRight", Coordinate{2, 2}, Coordinate{3, 1}, Right},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := DirectionOf(tt.prev, tt.after)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d)
		})
	}
}

func TestDirectionOf_SamePosition_ReturnsErrInvalidMove(t *testing.T) {
	for i := 0; i < 9; i++ {
		c := FromIndex(i, 3)
		_, err := DirectionOf(c, c)
		assert.ErrorIs(t, err, ErrInvalidMove, "index %d", i)
	}
}

func TestDirectionOf_ErrorIffIdentical(t *testing.T) {
	const w, h = 4, 3
	for a := 0; a < w*h; a++ {
		for b := 0; b < w*h; b++ {
			prev, after := FromIndex(a, w), FromIndex(b, w)
			d, err := DirectionOf(prev, after)
			if a == b {
				assert.True(t, errors.Is(err, ErrInvalidMove))
				continue
			}
			require.NoError(t, err)
			assert.Contains(t, []Direction{Left, Right, Up, Down}, d)

			again, err := DirectionOf(prev, after)
			require.NoError(t, err)
			assert.Equal(t, d, again)
		}
	}
}
