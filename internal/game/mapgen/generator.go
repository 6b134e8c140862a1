package mapgen

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/mitchelldurbincs/GeneralsReplayTranscoder/internal/game/core"
	"github.com/mitchelldurbincs/GeneralsReplayTranscoder/internal/replay"
)

// ErrMapTooSmall is returned when the map cannot hold one general per player
var ErrMapTooSmall = errors.New("map too small for player count")

// MapConfig holds configuration for synthetic replay generation
type MapConfig struct {
	Width             int
	Height            int
	PlayerCount       int
	CityRatio         int // 1 city per N tiles
	CityStartArmy     int
	MinGeneralSpacing int
	Turns             int     // number of turns to simulate
	MoveChance        float64 // probability a player moves on a given turn
}

// DefaultMapConfig returns a sensible default configuration
func DefaultMapConfig(w, h, players int) MapConfig {
	return MapConfig{
		Width:             w,
		Height:            h,
		PlayerCount:       players,
		CityRatio:         20,
		CityStartArmy:     40,
		MinGeneralSpacing: 5,
		Turns:             50,
		MoveChance:        0.6,
	}
}

// Generator builds synthetic replays with a deterministic RNG
type Generator struct {
	config MapConfig
	rng    *rand.Rand
}

// NewGenerator creates a new replay generator
func NewGenerator(config MapConfig, rng *rand.Rand) *Generator {
	return &Generator{
		config: config,
		rng:    rng,
	}
}

// GenerateReplay creates a valid replay record: cities, generals and a random
// walk of single-step moves per player with increasing turns.
func (g *Generator) GenerateReplay() (*replay.Record, error) {
	w, h := g.config.Width, g.config.Height
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("map dimensions must be positive, got %dx%d", w, h)
	}
	if g.config.PlayerCount <= 0 {
		return nil, fmt.Errorf("player count must be positive, got %d", g.config.PlayerCount)
	}
	if g.config.PlayerCount > w*h {
		return nil, fmt.Errorf("%w: %d players on %dx%d", ErrMapTooSmall, g.config.PlayerCount, w, h)
	}

	rec := &replay.Record{
		MapWidth:  w,
		MapHeight: h,
		Usernames: make([]string, g.config.PlayerCount),
	}
	for i := range rec.Usernames {
		rec.Usernames[i] = fmt.Sprintf("bot_%d", i)
	}

	occupied := make(map[int]bool)
	g.placeCities(rec, occupied)
	placements := g.placeGenerals(rec, occupied)
	g.simulateMoves(rec, placements)

	return rec, nil
}

func (g *Generator) placeCities(rec *replay.Record, occupied map[int]bool) {
	tiles := rec.MapWidth * rec.MapHeight
	want := 0
	if g.config.CityRatio > 0 {
		want = tiles / g.config.CityRatio
	}
	// leave room for every general
	if free := tiles - g.config.PlayerCount; want > free {
		want = free
	}

	rec.Cities = make([]int, 0, want)
	rec.CityArmies = make([]int, 0, want)

	// Use a maximum attempt counter to avoid infinite loops
	maxAttempts := want * 10
	for attempts := 0; len(rec.Cities) < want && attempts < maxAttempts; attempts++ {
		idx := g.rng.Intn(tiles)
		if occupied[idx] {
			continue
		}
		occupied[idx] = true
		rec.Cities = append(rec.Cities, idx)
		rec.CityArmies = append(rec.CityArmies, g.config.CityStartArmy+g.rng.Intn(10))
	}
}

func (g *Generator) placeGenerals(rec *replay.Record, occupied map[int]bool) []GeneralPlacement {
	placements := make([]GeneralPlacement, g.config.PlayerCount)
	rec.Generals = make([]int, g.config.PlayerCount)

	for pid := 0; pid < g.config.PlayerCount; pid++ {
		placement := g.findGeneralLocation(rec, occupied, placements[:pid])
		occupied[placement.Idx] = true
		rec.Generals[pid] = placement.Idx
		placements[pid] = placement
	}

	return placements
}

func (g *Generator) findGeneralLocation(rec *replay.Record, occupied map[int]bool, existing []GeneralPlacement) GeneralPlacement {
	tiles := rec.MapWidth * rec.MapHeight

	for attempts := 0; attempts < tiles; attempts++ {
		idx := g.rng.Intn(tiles)
		if occupied[idx] {
			continue
		}

		pos := core.FromIndex(idx, rec.MapWidth)
		validLocation := true
		for _, other := range existing {
			if pos.DistanceTo(other.Pos) < g.config.MinGeneralSpacing {
				validLocation = false
				break
			}
		}

		if validLocation {
			return GeneralPlacement{Idx: idx, Pos: pos}
		}
	}

	// Fallback: first free tile, ignoring spacing. placeCities always leaves
	// one free tile per player.
	for idx := 0; idx < tiles; idx++ {
		if !occupied[idx] {
			return GeneralPlacement{Idx: idx, Pos: core.FromIndex(idx, rec.MapWidth)}
		}
	}

	panic("Unable to place general - no valid locations")
}

// simulateMoves walks each player's army from its general, one tile per
// move, skipping turns at random
func (g *Generator) simulateMoves(rec *replay.Record, placements []GeneralPlacement) {
	positions := make([]core.Coordinate, len(placements))
	for i, p := range placements {
		positions[i] = p.Pos
	}

	for turn := 1; turn <= g.config.Turns; turn++ {
		for pid := range positions {
			if g.rng.Float64() >= g.config.MoveChance {
				continue
			}
			neighbors := positions[pid].ValidNeighbors(rec.MapWidth, rec.MapHeight)
			if len(neighbors) == 0 {
				continue
			}
			next := neighbors[g.rng.Intn(len(neighbors))]
			rec.Moves = append(rec.Moves, replay.Move{
				Index: pid,
				Start: positions[pid].ToIndex(rec.MapWidth),
				End:   next.ToIndex(rec.MapWidth),
				Is50:  g.rng.Intn(4) == 0,
				Turn:  turn,
			})
			positions[pid] = next
		}
	}
}

// GeneralPlacement tracks where a general was placed
type GeneralPlacement struct {
	Idx int
	Pos core.Coordinate
}
