package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mitchelldurbincs/GeneralsReplayTranscoder/internal/replay"
	"github.com/mitchelldurbincs/GeneralsReplayTranscoder/internal/transcoder"
)

// Config holds all configuration for the application
type Config struct {
	Transcoder TranscoderConfig `mapstructure:"transcoder"`
	Output     OutputConfig     `mapstructure:"output"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Sample     SampleConfig     `mapstructure:"sample"`
}

// TranscoderConfig holds output variant settings
type TranscoderConfig struct {
	MagnitudeMode string `mapstructure:"magnitude_mode"`
	PositionBase  int    `mapstructure:"position_base"`
	CellEncoding  string `mapstructure:"cell_encoding"`
	GridFormat    string `mapstructure:"grid_format"`
	TurnPadding   bool   `mapstructure:"turn_padding"`
}

// OutputConfig holds output file settings
type OutputConfig struct {
	Compression string `mapstructure:"compression"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SampleConfig holds synthetic replay generation settings
type SampleConfig struct {
	Width             int     `mapstructure:"width"`
	Height            int     `mapstructure:"height"`
	Players           int     `mapstructure:"players"`
	Turns             int     `mapstructure:"turns"`
	CityRatio         int     `mapstructure:"city_ratio"`
	CityStartArmy     int     `mapstructure:"city_start_army"`
	MinGeneralSpacing int     `mapstructure:"min_general_spacing"`
	MoveChance        float64 `mapstructure:"move_chance"`
}

var (
	// Global config instance, guarded by mu since WatchConfig swaps it
	// from the watcher goroutine
	mu  sync.RWMutex
	cfg *Config
	v   *viper.Viper
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	defaults := transcoder.DefaultOptions()
	v.SetDefault("transcoder.magnitude_mode", string(defaults.MagnitudeMode))
	v.SetDefault("transcoder.position_base", defaults.PositionBase)
	v.SetDefault("transcoder.cell_encoding", string(defaults.CellEncoding))
	v.SetDefault("transcoder.grid_format", string(defaults.GridFormat))
	v.SetDefault("transcoder.turn_padding", defaults.TurnPadding)

	v.SetDefault("output.compression", string(replay.CompressionAuto))

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("sample.width", 20)
	v.SetDefault("sample.height", 15)
	v.SetDefault("sample.players", 2)
	v.SetDefault("sample.turns", 50)
	v.SetDefault("sample.city_ratio", 20)
	v.SetDefault("sample.city_start_army", 40)
	v.SetDefault("sample.min_general_spacing", 5)
	v.SetDefault("sample.move_chance", 0.6)
}

// Load builds a fresh Config from defaults, the optional file at configPath
// and GRT_ environment variables. It does not touch the global instance.
func Load(configPath string) (*Config, *viper.Viper, error) {
	nv := viper.New()
	setViperDefaults(nv)

	if configPath != "" {
		nv.SetConfigFile(configPath)
	} else {
		nv.SetConfigName("config")
		nv.SetConfigType("yaml")
		nv.AddConfigPath(".")
		nv.AddConfigPath("./config")
	}

	nv.SetEnvPrefix("GRT")
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	nv.AutomaticEnv()

	if err := nv.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// an explicit path must exist, default locations are optional
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	c := &Config{}
	if err := nv.Unmarshal(c); err != nil {
		return nil, nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := Validate(c); err != nil {
		return nil, nil, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nv, nil
}

// Init initializes the global configuration
func Init(configPath string) error {
	c, nv, err := Load(configPath)
	if err != nil {
		return err
	}
	mu.Lock()
	cfg, v = c, nv
	mu.Unlock()
	return nil
}

// Get returns the global config instance
func Get() *Config {
	mu.RLock()
	c := cfg
	mu.RUnlock()
	if c != nil {
		return c
	}
	// Initialize with defaults if not already initialized
	if err := Init(""); err != nil {
		panic("failed to initialize config with defaults: " + err.Error())
	}
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// Set allows runtime config updates. The value is kept across file reloads.
func Set(key string, value interface{}) error {
	mu.Lock()
	defer mu.Unlock()
	if v == nil {
		return fmt.Errorf("config not initialized - call Init() first")
	}
	prev := v.Get(key)
	v.Set(key, value)
	next := &Config{}
	err := v.Unmarshal(next)
	if err != nil {
		err = fmt.Errorf("unable to decode config into struct: %w", err)
	} else {
		err = Validate(next)
	}
	if err != nil {
		v.Set(key, prev)
		return err
	}
	cfg = next
	return nil
}

// ConfigFilePath returns the path of the loaded config file, empty when only
// defaults and environment variables are in use
func ConfigFilePath() string {
	mu.RLock()
	defer mu.RUnlock()
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of the config file. Invalid edits are
// reported to onError and the previous config stays active. It is a no-op
// when no config file was loaded.
func WatchConfig(onChange func(*Config), onError func(error)) {
	mu.RLock()
	wv := v
	mu.RUnlock()
	if wv == nil || wv.ConfigFileUsed() == "" {
		return
	}

	wv.OnConfigChange(func(e fsnotify.Event) {
		mu.Lock()
		next := &Config{}
		err := wv.Unmarshal(next)
		if err == nil {
			err = Validate(next)
		}
		if err == nil && v == wv {
			cfg = next
		}
		mu.Unlock()

		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("reload %s: %w", e.Name, err))
			}
			return
		}
		if onChange != nil {
			onChange(next)
		}
	})
	wv.WatchConfig()
}

// TranscoderOptions converts the transcoder section into transcoder.Options
func (c *Config) TranscoderOptions() transcoder.Options {
	return transcoder.Options{
		MagnitudeMode: transcoder.MagnitudeMode(c.Transcoder.MagnitudeMode),
		PositionBase:  c.Transcoder.PositionBase,
		CellEncoding:  transcoder.CellEncoding(c.Transcoder.CellEncoding),
		GridFormat:    transcoder.GridFormat(c.Transcoder.GridFormat),
		TurnPadding:   c.Transcoder.TurnPadding,
	}
}

// Compression returns the configured output compression
func (c *Config) Compression() replay.Compression {
	// Validate has already rejected unknown names
	comp, _ := replay.ParseCompression(c.Output.Compression)
	return comp
}

// Validate validates the configuration values
func Validate(c *Config) error {
	if err := c.TranscoderOptions().Validate(); err != nil {
		return fmt.Errorf("transcoder: %w", err)
	}
	if _, err := replay.ParseCompression(c.Output.Compression); err != nil {
		return fmt.Errorf("output.compression: %w", err)
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil || c.Logging.Level == "" {
		return fmt.Errorf("logging.level %q is not a known level", c.Logging.Level)
	}

	if c.Sample.Width <= 0 || c.Sample.Height <= 0 {
		return fmt.Errorf("sample dimensions must be positive")
	}
	if c.Sample.Width > replay.MaxTiles/c.Sample.Height {
		return fmt.Errorf("sample map exceeds %d tiles", replay.MaxTiles)
	}
	if c.Sample.Players < 1 {
		return fmt.Errorf("sample.players must be at least 1")
	}
	if c.Sample.Players > c.Sample.Width*c.Sample.Height {
		return fmt.Errorf("sample.players must fit on the sample map")
	}
	if c.Sample.Turns < 0 {
		return fmt.Errorf("sample.turns must be non-negative")
	}
	if c.Sample.CityRatio <= 0 {
		return fmt.Errorf("sample.city_ratio must be positive")
	}
	if c.Sample.CityStartArmy < 0 {
		return fmt.Errorf("sample.city_start_army must be non-negative")
	}
	if c.Sample.MinGeneralSpacing < 1 {
		return fmt.Errorf("sample.min_general_spacing must be at least 1")
	}
	if c.Sample.MoveChance < 0 || c.Sample.MoveChance > 1 {
		return fmt.Errorf("sample.move_chance must be between 0 and 1")
	}

	return nil
}
