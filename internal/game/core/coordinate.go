package core

import "fmt"

// Coordinate represents a position on the replay map: X is the column, Y the row
type Coordinate struct {
	X, Y int
}

// NewCoordinate creates a new coordinate with the given x and y values
func NewCoordinate(x, y int) Coordinate {
	return Coordinate{X: x, Y: y}
}

// FromIndex creates a coordinate from a tile index using row-major ordering
func FromIndex(idx, width int) Coordinate {
	return Coordinate{
		X: idx % width,
		Y: idx / width,
	}
}

// IsValid checks if the coordinate is within the given bounds
func (c Coordinate) IsValid(width, height int) bool {
	return c.X >= 0 && c.X < width && c.Y >= 0 && c.Y < height
}

// ToIndex converts the coordinate to a tile index using row-major ordering
func (c Coordinate) ToIndex(width int) int {
	return c.Y*width + c.X
}

// DistanceTo calculates the Manhattan distance to another coordinate
func (c Coordinate) DistanceTo(other Coordinate) int {
	return abs(c.X-other.X) + abs(c.Y-other.Y)
}

// AxisDistanceTo returns the Chebyshev distance to another coordinate. For
// the axis-aligned moves found in replays this is the number of tiles covered.
func (c Coordinate) AxisDistanceTo(other Coordinate) int {
	dx := abs(c.X - other.X)
	dy := abs(c.Y - other.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// Neighbors returns the four orthogonal neighbors of this coordinate
func (c Coordinate) Neighbors() []Coordinate {
	return []Coordinate{
		{X: c.X, Y: c.Y - 1}, // Up
		{X: c.X + 1, Y: c.Y}, // Right
		{X: c.X, Y: c.Y + 1}, // Down
		{X: c.X - 1, Y: c.Y}, // Left
	}
}

// ValidNeighbors returns only the neighbors that are within the given bounds
func (c Coordinate) ValidNeighbors(width, height int) []Coordinate {
	valid := make([]Coordinate, 0, 4)
	for _, n := range c.Neighbors() {
		if n.IsValid(width, height) {
			valid = append(valid, n)
		}
	}
	return valid
}

// Equal checks if two coordinates are equal
func (c Coordinate) Equal(other Coordinate) bool {
	return c.X == other.X && c.Y == other.Y
}

// String returns a string representation of the coordinate
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Direction is the heading of a move command
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

var directionNames = [...]string{
	Left:  "left",
	Right: "right",
	Up:    "up",
	Down:  "down",
}

// String returns the direction keyword used in move commands
func (d Direction) String() string {
	if d < Left || d > Down {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// DirectionOf derives the heading of a move from prev to after.
// Columns are compared first; rows only decide when the columns are equal.
// Identical positions are rejected with ErrInvalidMove.
func DirectionOf(prev, after Coordinate) (Direction, error) {
	switch {
	case prev.X > after.X:
		return Left, nil
	case prev.X < after.X:
		return Right, nil
	case prev.Y > after.Y:
		return Up, nil
	case prev.Y < after.Y:
		return Down, nil
	default:
		return 0, ErrInvalidMove
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
