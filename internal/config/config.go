// Package config holds the engine settings fixed at construction.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is copied by value into the engine and never changed afterwards.
type Config struct {
	SmallTimeout  time.Duration `yaml:"small_timeout"  json:"small_timeout"`
	LargeTimeout  time.Duration `yaml:"large_timeout"  json:"large_timeout"`
	Scroll        bool          `yaml:"scroll"         json:"scroll"`
	Pause         time.Duration `yaml:"pause"          json:"pause"`
	MiniPause     time.Duration `yaml:"mini_pause"     json:"mini_pause"`
	SyncInterval  time.Duration `yaml:"sync_interval"  json:"sync_interval"`
	SearchTimeout time.Duration `yaml:"search_timeout" json:"search_timeout"`
	ScreenWait    time.Duration `yaml:"screen_wait"    json:"screen_wait"` // 0 waits for a screen indefinitely
	Backend       string        `yaml:"backend"        json:"backend"`
	Scene         string        `yaml:"scene"          json:"scene"`
	Log           Log           `yaml:"log"            json:"log"`
}

// Log configures the zap logger.
type Log struct {
	Level       string `yaml:"level"       json:"level"`
	Development bool   `yaml:"development" json:"development"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		SmallTimeout:  10 * time.Second,
		LargeTimeout:  20 * time.Second,
		Scroll:        true,
		Pause:         500 * time.Millisecond,
		MiniPause:     300 * time.Millisecond,
		SyncInterval:  50 * time.Millisecond,
		SearchTimeout: 5 * time.Second,
		Backend:       "scene",
		Log:           Log{Level: "warn"},
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects non-positive pauses and timeouts, a negative screen
// wait, an unknown log level and an empty backend name.
func (c Config) Validate() error {
	positive := []struct {
		name string
		d    time.Duration
	}{
		{"small_timeout", c.SmallTimeout},
		{"large_timeout", c.LargeTimeout},
		{"pause", c.Pause},
		{"mini_pause", c.MiniPause},
		{"sync_interval", c.SyncInterval},
		{"search_timeout", c.SearchTimeout},
	}
	for _, p := range positive {
		if p.d <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalid, p.name, p.d)
		}
	}
	if c.ScreenWait < 0 {
		return fmt.Errorf("%w: screen_wait must not be negative, got %v", ErrInvalid, c.ScreenWait)
	}
	if c.Backend == "" {
		return fmt.Errorf("%w: backend must be set", ErrInvalid)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}
	return nil
}
