package transcoder

import (
	"bytes"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/GeneralsReplayTranscoder/internal/game/core"
	"github.com/mitchelldurbincs/GeneralsReplayTranscoder/internal/replay"
)

// Transcoder turns a replay record into the map grid and per-player move
// lists. It holds no state between calls.
type Transcoder struct {
	opts   Options
	logger zerolog.Logger
}

// New creates a transcoder after validating opts
func New(opts Options, logger zerolog.Logger) (*Transcoder, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Transcoder{
		opts:   opts,
		logger: logger.With().Str("component", "transcoder").Logger(),
	}, nil
}

// Options returns the settings the transcoder was built with
func (t *Transcoder) Options() Options {
	return t.opts
}

// BuildMapGrid places cities and then generals on an empty grid. A general
// standing on a city tile overwrites the city.
func (t *Transcoder) BuildMapGrid(rec *replay.Record) (*core.Grid, error) {
	grid := core.NewGrid(rec.MapWidth, rec.MapHeight)

	if rec.CityArmies != nil && len(rec.CityArmies) != len(rec.Cities) {
		t.logger.Warn().
			Int("cities", len(rec.Cities)).
			Int("city_armies", len(rec.CityArmies)).
			Msg("cityArmies not aligned with cities, unmatched cities get 0")
	}

	for i, tile := range rec.Cities {
		cell := core.Cell{Type: core.TileCity, Owner: core.NeutralID, Army: rec.CityArmy(i)}
		if err := grid.Set(tile, cell); err != nil {
			return nil, fmt.Errorf("city %d at tile %d: %w", i, tile, err)
		}
	}
	for i, tile := range rec.Generals {
		if pos := rec.Position(tile); pos.IsValid(grid.W, grid.H) && grid.Cell(pos).IsCity() {
			t.logger.Debug().Int("player", i).Int("tile", tile).Msg("general placed on a city tile")
		}
		cell := core.Cell{Type: core.TileGeneral, Owner: i + 1, Army: 0}
		if err := grid.Set(tile, cell); err != nil {
			return nil, fmt.Errorf("general %d at tile %d: %w", i, tile, err)
		}
	}
	return grid, nil
}

// BuildMoveCommand renders one move given its decoded start and end positions
func (t *Transcoder) BuildMoveCommand(move replay.Move, prev, after core.Coordinate) (core.MoveCommand, error) {
	dir, err := core.DirectionOf(prev, after)
	if err != nil {
		return core.MoveCommand{}, &core.InvalidMoveError{Index: move.Index, Start: move.Start, End: move.End}
	}

	var magnitude int
	switch t.opts.MagnitudeMode {
	case MagnitudeDistance:
		magnitude = prev.AxisDistanceTo(after)
	default:
		if move.Is50 {
			magnitude = core.Is50Magnitude
		}
	}

	return core.MoveCommand{
		X:         prev.X + t.opts.PositionBase,
		Y:         prev.Y + t.opts.PositionBase,
		Direction: dir,
		Magnitude: magnitude,
	}, nil
}

// GroupMovesByUser walks the moves in input order and appends each command to
// its player's list. With turn padding, idle turns become empty entries so
// that after a gap the entry for turn t is the (t-1)-th element.
// Every player ordinal gets an entry, even when it stays empty.
func (t *Transcoder) GroupMovesByUser(rec *replay.Record) (map[int][]string, error) {
	byUser := make(map[int][]string, rec.PlayerCount())
	currentTurn := make(map[int]int, rec.PlayerCount())
	for i := 0; i < rec.PlayerCount(); i++ {
		byUser[i] = []string{}
		currentTurn[i] = 1
	}

	for n, move := range rec.Moves {
		cmd, err := t.BuildMoveCommand(move, rec.Position(move.Start), rec.Position(move.End))
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", n, err)
		}

		if t.opts.TurnPadding {
			cur := currentTurn[move.Index]
			if move.HasTurn() && move.Turn > cur+1 {
				idle := move.Turn - 1 - cur
				for i := 0; i < idle; i++ {
					byUser[move.Index] = append(byUser[move.Index], "")
				}
				t.logger.Debug().
					Int("player", move.Index).
					Int("turn", move.Turn).
					Int("idle_turns", idle).
					Msg("padded idle turns")
				cur = move.Turn - 1
			}
			currentTurn[move.Index] = cur + 1
		}

		byUser[move.Index] = append(byUser[move.Index], cmd.String())
	}
	return byUser, nil
}

// Transcode runs the whole conversion in memory. Nothing is returned unless
// every step succeeded.
func (t *Transcoder) Transcode(rec *replay.Record) ([]byte, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	grid, err := t.BuildMapGrid(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to build map grid: %w", err)
	}
	grouped, err := t.GroupMovesByUser(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to build move lists: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Serialize(&buf, grid, grouped, rec.Usernames); err != nil {
		return nil, fmt.Errorf("failed to serialize: %w", err)
	}
	return buf.Bytes(), nil
}
