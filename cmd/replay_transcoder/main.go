package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/mitchelldurbincs/GeneralsReplayTranscoder/internal/config"
	"github.com/mitchelldurbincs/GeneralsReplayTranscoder/internal/game/mapgen"
	"github.com/mitchelldurbincs/GeneralsReplayTranscoder/internal/replay"
	"github.com/mitchelldurbincs/GeneralsReplayTranscoder/internal/transcoder"
)

const (
	convertUsage = "replay_transcoder [flags] <input.json> <output.txt>"
	sampleUsage  = "replay_transcoder sample [flags] <output.json>"
)

// usageError marks bad invocations; they exit with status 2 before any I/O
type usageError struct {
	usage string
	err   error
}

func (e usageError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return "usage: " + e.usage
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI and maps the outcome to a process exit status
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	// errors raised before the config is loaded still use the console format
	setupLogging("info", "console", stderr)

	app := newApp(stdout, stderr)
	err := app.Run(ctx, args)
	if err == nil {
		return 0
	}

	var uerr usageError
	if errors.As(err, &uerr) {
		if uerr.err != nil {
			fmt.Fprintf(stderr, "error: %v\n", uerr.err)
		}
		fmt.Fprintf(stderr, "usage: %s\n", uerr.usage)
		return 2
	}

	log.Error().Err(err).Msg("Conversion failed")
	return 1
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "replay_transcoder",
		Usage:     "convert a Generals JSON replay into grid and move-command text",
		UsageText: convertUsage,
		ArgsUsage: "<input.json> <output.txt>",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to config file"},
			&cli.StringFlag{Name: "log-level", Usage: "log level (debug, info, warn, error)"},
			&cli.StringFlag{Name: "log-format", Usage: "log format (console, json)"},
			&cli.StringFlag{Name: "compression", Usage: "output compression (auto, none, gzip, zstd, snappy)"},
			&cli.StringFlag{Name: "magnitude-mode", Usage: "move magnitude (fixed, distance)"},
			&cli.IntFlag{Name: "position-base", Usage: "added to column and row in move commands (0 or 1)"},
			&cli.StringFlag{Name: "cell-encoding", Usage: "grid cell encoding (scalar, triple)"},
			&cli.StringFlag{Name: "grid-format", Usage: "grid layout (json, bracketed)"},
			&cli.BoolFlag{Name: "turn-padding", Usage: "insert empty entries for idle turns", Value: true},
			&cli.BoolFlag{Name: "watch", Usage: "convert again whenever the input file changes"},
		},
		OnUsageError: func(ctx context.Context, cmd *cli.Command, err error, isSubcommand bool) error {
			return usageError{usage: convertUsage, err: err}
		},
		Action: convertAction,
		Commands: []*cli.Command{
			{
				Name:      "sample",
				Usage:     "write a synthetic replay JSON file",
				UsageText: sampleUsage,
				ArgsUsage: "<output.json>",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "seed", Usage: "random seed (0 picks one from the clock)"},
					&cli.IntFlag{Name: "width", Usage: "map width"},
					&cli.IntFlag{Name: "height", Usage: "map height"},
					&cli.IntFlag{Name: "players", Usage: "number of players"},
					&cli.IntFlag{Name: "turns", Usage: "number of turns to simulate"},
				},
				OnUsageError: func(ctx context.Context, cmd *cli.Command, err error, isSubcommand bool) error {
					return usageError{usage: sampleUsage, err: err}
				},
				Action: sampleAction,
			},
		},
	}
}

// loadConfig reads the config file and applies flag overrides on top
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	if err := config.Init(cmd.String("config")); err != nil {
		return nil, err
	}
	cfg := config.Get()

	overrides := map[string]any{}
	if cmd.IsSet("log-level") {
		overrides["logging.level"] = cmd.String("log-level")
	}
	if cmd.IsSet("log-format") {
		overrides["logging.format"] = cmd.String("log-format")
	}
	if cmd.IsSet("compression") {
		overrides["output.compression"] = cmd.String("compression")
	}
	if cmd.IsSet("magnitude-mode") {
		overrides["transcoder.magnitude_mode"] = cmd.String("magnitude-mode")
	}
	if cmd.IsSet("position-base") {
		overrides["transcoder.position_base"] = cmd.Int("position-base")
	}
	if cmd.IsSet("cell-encoding") {
		overrides["transcoder.cell_encoding"] = cmd.String("cell-encoding")
	}
	if cmd.IsSet("grid-format") {
		overrides["transcoder.grid_format"] = cmd.String("grid-format")
	}
	if cmd.IsSet("turn-padding") {
		overrides["transcoder.turn_padding"] = cmd.Bool("turn-padding")
	}
	for key, value := range overrides {
		if err := config.Set(key, value); err != nil {
			return nil, fmt.Errorf("flag override %s: %w", key, err)
		}
		cfg = config.Get()
	}
	return cfg, nil
}

func convertAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 2 {
		return usageError{usage: convertUsage}
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLogging(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrWriter)

	job, err := newConvertJob(cfg, cmd.Args().Get(0), cmd.Args().Get(1))
	if err != nil {
		return err
	}

	if !cmd.Bool("watch") {
		return job.run(ctx)
	}

	reloads := make(chan *config.Config, 1)
	config.WatchConfig(
		func(c *config.Config) {
			// keep only the newest config if the loop is busy
			select {
			case <-reloads:
			default:
			}
			reloads <- c
		},
		func(err error) {
			log.Warn().Err(err).Msg("Config reload rejected, keeping previous settings")
		},
	)
	return watch(ctx, job, reloads)
}

// convertJob is one input/output pair with the settings used to convert it
type convertJob struct {
	tr          *transcoder.Transcoder
	inPath      string
	outPath     string
	compression replay.Compression
}

func newConvertJob(cfg *config.Config, inPath, outPath string) (convertJob, error) {
	tr, err := transcoder.New(cfg.TranscoderOptions(), log.Logger)
	if err != nil {
		return convertJob{}, err
	}
	return convertJob{tr: tr, inPath: inPath, outPath: outPath, compression: cfg.Compression()}, nil
}

func (j convertJob) run(ctx context.Context) error {
	runID := uuid.NewString()
	logger := log.With().Str("run_id", runID).Logger()
	logger.Debug().
		Str("input", j.inPath).
		Str("output", j.outPath).
		Str("compression", string(j.compression)).
		Msg("Starting conversion")

	stats, err := j.tr.ConvertFile(ctx, j.inPath, j.outPath, j.compression)
	if err != nil {
		return fmt.Errorf("run %s: %w", runID, err)
	}
	logger.Info().
		Str("output", j.outPath).
		Int("players", stats.Players).
		Int("moves", stats.Moves).
		Dur("duration", stats.Duration).
		Msg("Conversion complete")
	return nil
}

// watch converts once and then again on every write to the input file or
// config reload until ctx is cancelled. Failed runs are logged and leave the
// previous output in place.
func watch(ctx context.Context, job convertJob, reloads <-chan *config.Config) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// editors often replace files by rename, so watch the directory
	if err := watcher.Add(filepath.Dir(job.inPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", job.inPath, err)
	}
	target := filepath.Clean(job.inPath)

	if err := job.run(ctx); err != nil {
		log.Error().Err(err).Msg("Conversion failed")
	}
	log.Info().Str("input", job.inPath).Msg("Watching for changes")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Watch stopped")
			return nil
		case c := <-reloads:
			next, err := newConvertJob(c, job.inPath, job.outPath)
			if err != nil {
				log.Warn().Err(err).Msg("Config reload rejected, keeping previous settings")
				continue
			}
			job = next
			opts := job.tr.Options()
			log.Info().
				Str("magnitude_mode", string(opts.MagnitudeMode)).
				Int("position_base", opts.PositionBase).
				Str("grid_format", string(opts.GridFormat)).
				Str("compression", string(job.compression)).
				Msg("Config reloaded")
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("Watcher error")
			continue
		}

		if err := job.run(ctx); err != nil {
			log.Error().Err(err).Msg("Conversion failed")
		}
	}
}

func sampleAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 1 {
		return usageError{usage: sampleUsage}
	}
	outPath := cmd.Args().Get(0)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLogging(cfg.Logging.Level, cfg.Logging.Format, cmd.Root().ErrWriter)

	mapConfig := mapgen.MapConfig{
		Width:             cfg.Sample.Width,
		Height:            cfg.Sample.Height,
		PlayerCount:       cfg.Sample.Players,
		CityRatio:         cfg.Sample.CityRatio,
		CityStartArmy:     cfg.Sample.CityStartArmy,
		MinGeneralSpacing: cfg.Sample.MinGeneralSpacing,
		Turns:             cfg.Sample.Turns,
		MoveChance:        cfg.Sample.MoveChance,
	}
	if cmd.IsSet("width") {
		mapConfig.Width = cmd.Int("width")
	}
	if cmd.IsSet("height") {
		mapConfig.Height = cmd.Int("height")
	}
	if cmd.IsSet("players") {
		mapConfig.PlayerCount = cmd.Int("players")
	}
	if cmd.IsSet("turns") {
		mapConfig.Turns = cmd.Int("turns")
	}

	seed := cmd.Int64("seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rec, err := mapgen.NewGenerator(mapConfig, newRNG(seed)).GenerateReplay()
	if err != nil {
		return fmt.Errorf("failed to generate replay: %w", err)
	}

	var buf bytes.Buffer
	if err := replay.Encode(&buf, rec); err != nil {
		return fmt.Errorf("failed to encode replay: %w", err)
	}
	if err := replay.WriteFile(outPath, buf.Bytes(), cfg.Compression()); err != nil {
		return err
	}

	log.Info().
		Str("run_id", uuid.NewString()).
		Str("output", outPath).
		Int64("seed", seed).
		Int("width", rec.MapWidth).
		Int("height", rec.MapHeight).
		Int("players", rec.PlayerCount()).
		Int("moves", len(rec.Moves)).
		Msg("Sample replay written")
	return nil
}

func newRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func setupLogging(level, format string, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}

	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	if format == "json" {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}
