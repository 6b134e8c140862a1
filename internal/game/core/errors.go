package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidMove        = errors.New("invalid move: start and end are the same tile")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// InvalidMoveError identifies the replay move that could not be turned into a
// direction.
type InvalidMoveError struct {
	Index int // player ordinal
	Start int // tile index
	End   int // tile index
}

func (e *InvalidMoveError) Error() string {
	return fmt.Sprintf("player %d: move from tile %d to tile %d: %v", e.Index, e.Start, e.End, ErrInvalidMove)
}

// Is lets errors.Is match ErrInvalidMove
func (e *InvalidMoveError) Is(target error) bool {
	return target == ErrInvalidMove
}
