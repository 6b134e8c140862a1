package transcoder

import (
	"errors"
	"fmt"
)

// ErrInvalidOptions is returned when Options fail validation
var ErrInvalidOptions = errors.New("invalid transcoder options")

// MagnitudeMode selects the number written at the end of each move command
type MagnitudeMode string

const (
	// MagnitudeFixed writes 65535 for is50 moves and 0 otherwise
	MagnitudeFixed MagnitudeMode = "fixed"
	// MagnitudeDistance writes the number of tiles the move covers
	MagnitudeDistance MagnitudeMode = "distance"
)

// CellEncoding selects how each grid cell is emitted
type CellEncoding string

const (
	// CellScalar emits the terrain code only
	CellScalar CellEncoding = "scalar"
	// CellTriple emits [terrain, owner, army]
	CellTriple CellEncoding = "triple"
)

// GridFormat selects the textual layout of the grid
type GridFormat string

const (
	// GridJSON emits compact JSON nested arrays on one line
	GridJSON GridFormat = "json"
	// GridBracketed emits one bracketed row per line
	GridBracketed GridFormat = "bracketed"
)

// Options controls every output variant of the transcoder. The grid is always
// emitted as [row][col].
type Options struct {
	MagnitudeMode MagnitudeMode
	PositionBase  int // 0 or 1, added to column and row in move commands
	CellEncoding  CellEncoding
	GridFormat    GridFormat
	TurnPadding   bool // insert empty entries for idle turns
}

// DefaultOptions returns the default output settings
func DefaultOptions() Options {
	return Options{
		MagnitudeMode: MagnitudeFixed,
		PositionBase:  0,
		CellEncoding:  CellScalar,
		GridFormat:    GridJSON,
		TurnPadding:   true,
	}
}

// Validate checks every option against its allowed values
func (o Options) Validate() error {
	switch o.MagnitudeMode {
	case MagnitudeFixed, MagnitudeDistance:
	default:
		return fmt.Errorf("%w: magnitude mode %q must be fixed or distance", ErrInvalidOptions, o.MagnitudeMode)
	}
	if o.PositionBase != 0 && o.PositionBase != 1 {
		return fmt.Errorf("%w: position base must be 0 or 1, got %d", ErrInvalidOptions, o.PositionBase)
	}
	switch o.CellEncoding {
	case CellScalar, CellTriple:
	default:
		return fmt.Errorf("%w: cell encoding %q must be scalar or triple", ErrInvalidOptions, o.CellEncoding)
	}
	switch o.GridFormat {
	case GridJSON, GridBracketed:
	default:
		return fmt.Errorf("%w: grid format %q must be json or bracketed", ErrInvalidOptions, o.GridFormat)
	}
	return nil
}
