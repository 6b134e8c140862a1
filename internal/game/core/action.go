package core

import "fmt"

// Is50Magnitude is the fixed magnitude written for is50 moves; every other
// move gets 0.
const Is50Magnitude = 65535

// MoveCommand is one directional command in a player's move list
type MoveCommand struct {
	X, Y      int // column and row of the source tile, already offset by the position base
	Direction Direction
	Magnitude int
}

// String renders the command as "Move <col> <row> <direction> <magnitude>"
func (m MoveCommand) String() string {
	return fmt.Sprintf("Move %d %d %s %d", m.X, m.Y, m.Direction, m.Magnitude)
}
