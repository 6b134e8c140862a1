package replay

import (
	"encoding/json"
	"fmt"

	"github.com/mitchelldurbincs/GeneralsReplayTranscoder/internal/game/core"
)

// MaxTiles bounds the map area a replay may declare
const MaxTiles = 1 << 22

// Record is a decoded replay: the map layout plus every move in the order it
// was played.
type Record struct {
	MapWidth   int
	MapHeight  int
	Cities     []int // tile indices
	CityArmies []int // parallel to Cities; nil when the replay predates army counts
	Generals   []int // tile index per player ordinal
	Usernames  []string
	Moves      []Move
}

// Move is a single replayed move. Turn is 0 when the replay format does not
// record turns.
type Move struct {
	Index int // player ordinal
	Start int // tile index
	End   int // tile index
	Is50  bool
	Turn  int
}

// HasTurn reports whether the move carries a turn number
func (m Move) HasTurn() bool { return m.Turn > 0 }

// Flag is a boolean that older replays encode as 0/1 and newer ones as
// true/false.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*f = Flag(t)
	case float64:
		*f = t != 0
	default:
		return fmt.Errorf("expected boolean or number, got %s", string(b))
	}
	return nil
}

// CityArmy returns the starting army of the i-th city, 0 when unknown
func (r *Record) CityArmy(i int) int {
	if i < 0 || i >= len(r.CityArmies) {
		return 0
	}
	return r.CityArmies[i]
}

// PlayerCount returns the number of player ordinals in the replay
func (r *Record) PlayerCount() int {
	return len(r.Usernames)
}

// Position converts a tile index into a column/row coordinate
func (r *Record) Position(tile int) core.Coordinate {
	return core.FromIndex(tile, r.MapWidth)
}

// Validate checks the invariants the transcoder relies on. It never inspects
// move geometry; zero-length moves are reported later as core.InvalidMoveError.
func (r *Record) Validate() error {
	if r.MapWidth <= 0 {
		return &InputFormatError{Key: "mapWidth", Err: fmt.Errorf("must be positive, got %d", r.MapWidth)}
	}
	if r.MapHeight <= 0 {
		return &InputFormatError{Key: "mapHeight", Err: fmt.Errorf("must be positive, got %d", r.MapHeight)}
	}

	if r.MapWidth > MaxTiles/r.MapHeight {
		return &InputFormatError{
			Key: "mapWidth",
			Err: fmt.Errorf("%dx%d map exceeds %d tiles", r.MapWidth, r.MapHeight, MaxTiles),
		}
	}

	tiles := r.MapWidth * r.MapHeight
	checkTile := func(key string, tile int) error {
		if tile < 0 || tile >= tiles {
			return &InputFormatError{
				Key: key,
				Err: fmt.Errorf("tile %d outside %dx%d map: %w", tile, r.MapWidth, r.MapHeight, core.ErrInvalidCoordinates),
			}
		}
		return nil
	}

	for i, tile := range r.Cities {
		if err := checkTile(fmt.Sprintf("cities[%d]", i), tile); err != nil {
			return err
		}
	}
	for i, tile := range r.Generals {
		if err := checkTile(fmt.Sprintf("generals[%d]", i), tile); err != nil {
			return err
		}
	}

	for i, m := range r.Moves {
		if m.Index < 0 || m.Index >= len(r.Usernames) {
			return &InputFormatError{
				Key: fmt.Sprintf("moves[%d].index", i),
				Err: fmt.Errorf("player %d not in usernames (%d players)", m.Index, len(r.Usernames)),
			}
		}
		if err := checkTile(fmt.Sprintf("moves[%d].start", i), m.Start); err != nil {
			return err
		}
		if err := checkTile(fmt.Sprintf("moves[%d].end", i), m.End); err != nil {
			return err
		}
		if m.Turn < 0 {
			return &InputFormatError{
				Key: fmt.Sprintf("moves[%d].turn", i),
				Err: fmt.Errorf("must be at least 1, got %d", m.Turn),
			}
		}
	}
	return nil
}
