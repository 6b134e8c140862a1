package transcoder

import (
	"context"
	"fmt"
	"time"

	"github.com/mitchelldurbincs/GeneralsReplayTranscoder/internal/replay"
)

// Stats summarizes one file conversion
type Stats struct {
	Players  int
	Moves    int
	Bytes    int
	Duration time.Duration
}

// ConvertFile reads the replay at inPath, transcodes it and atomically writes
// the result to outPath. outPath is not touched when any step fails.
func (t *Transcoder) ConvertFile(ctx context.Context, inPath, outPath string, compression replay.Compression) (Stats, error) {
	start := time.Now()
	logger := t.logger.With().Str("input", inPath).Str("output", outPath).Logger()

	rec, err := replay.LoadFile(inPath)
	if err != nil {
		return Stats{}, err
	}
	logger.Debug().
		Int("width", rec.MapWidth).
		Int("height", rec.MapHeight).
		Int("players", rec.PlayerCount()).
		Int("moves", len(rec.Moves)).
		Msg("Replay loaded")

	data, err := t.Transcode(rec)
	if err != nil {
		return Stats{}, err
	}

	if err := ctx.Err(); err != nil {
		return Stats{}, fmt.Errorf("conversion cancelled before write: %w", err)
	}
	if err := replay.WriteFile(outPath, data, compression); err != nil {
		return Stats{}, err
	}

	stats := Stats{
		Players:  rec.PlayerCount(),
		Moves:    len(rec.Moves),
		Bytes:    len(data),
		Duration: time.Since(start),
	}
	logger.Debug().
		Int("bytes", stats.Bytes).
		Str("compression", string(compression.Resolve(outPath))).
		Msg("Output written")
	return stats, nil
}
