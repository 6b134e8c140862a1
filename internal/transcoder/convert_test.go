package transcoder

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/GeneralsReplayTranscoder/internal/game/core"
	"github.com/mitchelldurbincs/GeneralsReplayTranscoder/internal/replay"
	"github.com/mitchelldurbincs/GeneralsReplayTranscoder/internal/testutil"
)

func TestConvertFile_Example(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteFile(t, dir, "replay.json", []byte(testutil.ExampleReplayJSON))
	out := filepath.Join(dir, "replay.txt")

	tr := newTestTranscoder(t, nil)
	stats, err := tr.ConvertFile(context.Background(), in, out, replay.CompressionAuto)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Players)
	assert.Equal(t, 1, stats.Moves)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "[[2,2],[0,3]]\n|A:\nMove 0 0 right 0\n", string(got))
	assert.Equal(t, len(got), stats.Bytes)
}

func TestConvertFile_Idempotent(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteFile(t, dir, "replay.json", []byte(testutil.ExampleReplayJSON))
	first := filepath.Join(dir, "first.txt.zst")
	second := filepath.Join(dir, "second.txt.zst")

	tr := newTestTranscoder(t, func(o *Options) { o.CellEncoding = CellTriple })
	_, err := tr.ConvertFile(context.Background(), in, first, replay.CompressionAuto)
	require.NoError(t, err)
	_, err = tr.ConvertFile(context.Background(), in, second, replay.CompressionAuto)
	require.NoError(t, err)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestConvertFile_InvalidMoveWritesNothing(t *testing.T) {
	dir := t.TempDir()
	input := `{"mapWidth":2,"mapHeight":2,"cities":[3],"generals":[0,1],"usernames":["A","B"],` +
		`"moves":[{"index":0,"start":0,"end":1,"is50":0,"turn":1},{"index":1,"start":1,"end":1,"is50":1,"turn":2}]}`
	in := testutil.WriteFile(t, dir, "replay.json", []byte(input))
	out := filepath.Join(dir, "replay.txt")

	tr := newTestTranscoder(t, nil)
	_, err := tr.ConvertFile(context.Background(), in, out, replay.CompressionAuto)
	require.ErrorIs(t, err, core.ErrInvalidMove)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no output may be written")
}

func TestConvertFile_InvalidMoveKeepsPreviousOutput(t *testing.T) {
	dir := t.TempDir()
	input := `{"mapWidth":2,"mapHeight":1,"cities":[],"generals":[0],"usernames":["A"],` +
		`"moves":[{"index":0,"start":1,"end":1,"is50":0}]}`
	in := testutil.WriteFile(t, dir, "replay.json", []byte(input))
	out := testutil.WriteFile(t, dir, "replay.txt", []byte("previous run"))

	tr := newTestTranscoder(t, nil)
	_, err := tr.ConvertFile(context.Background(), in, out, replay.CompressionNone)
	require.ErrorIs(t, err, core.ErrInvalidMove)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "previous run", string(got))
}

func TestConvertFile_InputFormatError(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteFile(t, dir, "replay.json", []byte(`{"mapWidth":2,"mapHeight":2}`))
	out := filepath.Join(dir, "replay.txt")

	tr := newTestTranscoder(t, nil)
	_, err := tr.ConvertFile(context.Background(), in, out, replay.CompressionAuto)
	require.ErrorIs(t, err, replay.ErrInputFormat)
	assert.ErrorIs(t, err, replay.ErrMissingKey)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestConvertFile_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteFile(t, dir, "replay.json", []byte(testutil.ExampleReplayJSON))
	out := filepath.Join(dir, "replay.txt")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := newTestTranscoder(t, nil)
	_, err := tr.ConvertFile(ctx, in, out, replay.CompressionAuto)
	require.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}
