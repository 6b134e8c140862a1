package transcoder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/GeneralsReplayTranscoder/internal/game/mapgen"
	"github.com/mitchelldurbincs/GeneralsReplayTranscoder/internal/replay"
	"github.com/mitchelldurbincs/GeneralsReplayTranscoder/internal/testutil"
)

func generatedReplay(t *testing.T, seed int64, w, h, players int) *replay.Record {
	t.Helper()
	config := mapgen.DefaultMapConfig(w, h, players)
	config.Turns = 120
	config.MoveChance = 0.35
	rec, err := mapgen.NewGenerator(config, testutil.NewTestRNG(seed)).GenerateReplay()
	require.NoError(t, err)
	return rec
}

func TestGenerated_TurnPaddingAlignsWithTurns(t *testing.T) {
	tr := newTestTranscoder(t, nil)

	for seed := int64(1); seed <= 5; seed++ {
		rec := generatedReplay(t, seed, 15, 12, 3)
		grouped, err := tr.GroupMovesByUser(rec)
		require.NoError(t, err)

		perPlayer := make(map[int][]replay.Move)
		for _, m := range rec.Moves {
			perPlayer[m.Index] = append(perPlayer[m.Index], m)
		}

		for pid, moves := range perPlayer {
			entries := grouped[pid]
			nonEmpty := 0
			for _, e := range entries {
				if e != "" {
					nonEmpty++
				}
			}
			assert.Equal(t, len(moves), nonEmpty, "seed %d player %d", seed, pid)

			// the generator emits at most one move per player per turn, so
			// once a gap has been padded the list length tracks turn-1
			last := moves[len(moves)-1]
			if last.Turn > len(moves)+1 {
				assert.Equal(t, last.Turn-1, len(entries), "seed %d player %d", seed, pid)
			}
		}
	}
}

func TestGenerated_OrderPreservedWithoutPadding(t *testing.T) {
	tr := newTestTranscoder(t, func(o *Options) { o.TurnPadding = false })
	rec := generatedReplay(t, 42, 10, 10, 2)

	grouped, err := tr.GroupMovesByUser(rec)
	require.NoError(t, err)

	next := make(map[int]int)
	for _, m := range rec.Moves {
		cmd, err := tr.BuildMoveCommand(m, rec.Position(m.Start), rec.Position(m.End))
		require.NoError(t, err)
		require.Less(t, next[m.Index], len(grouped[m.Index]))
		assert.Equal(t, cmd.String(), grouped[m.Index][next[m.Index]])
		next[m.Index]++
	}
	for pid, entries := range grouped {
		assert.Len(t, entries, next[pid])
	}
}

func TestGenerated_SerializeShape(t *testing.T) {
	tr := newTestTranscoder(t, func(o *Options) { o.GridFormat = GridBracketed })
	rec := generatedReplay(t, 3, 9, 7, 2)

	out, err := tr.Transcode(rec)
	require.NoError(t, err)

	text := string(out)
	assert.NotContains(t, text, "\r")
	assert.True(t, strings.HasSuffix(text, "\n"))

	lines := strings.Split(text, "\n")
	assert.Equal(t, "[", lines[0])
	assert.Equal(t, "]", lines[rec.MapHeight+1])
	for y := 1; y <= rec.MapHeight; y++ {
		row := strings.TrimSuffix(strings.TrimSpace(lines[y]), ",")
		assert.Len(t, strings.Split(strings.Trim(row, "[]"), ","), rec.MapWidth)
	}
	for _, name := range rec.Usernames {
		assert.Contains(t, text, "|"+name+":\n")
	}
}
