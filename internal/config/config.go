package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

const (
	defaultPrompt       = "noah@jenkins-terminal:~$"
	defaultTitle        = "noah@jenkins-terminal:~"
	defaultVariant      = VariantWindow
	defaultLogLevel     = "info"
	defaultLogMaxFiles  = 10
	defaultCharInterval = 5 * time.Millisecond
	defaultLinePause    = 20 * time.Millisecond
	defaultWidth        = 80
	defaultHeight       = 20
	defaultMinWidth     = 30
	defaultMinHeight    = 8
)

const (
	// VariantWindow is the dedicated terminal that opens immediately.
	VariantWindow = "window"
	// VariantOverlay is the hidden terminal toggled by a key chord.
	VariantOverlay = "overlay"
)

// Dir is the per-user and per-project configuration directory name.
const Dir = ".termfolio"

// Config stores runtime settings loaded from TOML files.
type Config struct {
	Prompt       string
	Title        string
	Variant      string
	LogLevel     string
	LogMaxFiles  int
	CharInterval time.Duration
	LinePause    time.Duration
	Window       WindowConfig
	OTel         OTelConfig
}

// WindowConfig stores the initial terminal window size in cells.
type WindowConfig struct {
	Width     int
	Height    int
	MinWidth  int
	MinHeight int
}

// OTelConfig stores the trace export settings.
type OTelConfig struct {
	Endpoint string
}

type fileConfig struct {
	Prompt       *string           `toml:"prompt"`
	Title        *string           `toml:"title"`
	Variant      *string           `toml:"variant"`
	LogLevel     *string           `toml:"log_level"`
	LogMaxFiles  *int              `toml:"log_max_files"`
	CharInterval *string           `toml:"char_interval"`
	LinePause    *string           `toml:"line_pause"`
	Window       *windowFileConfig `toml:"window"`
	OTel         *otelFileConfig   `toml:"otel"`
}

type windowFileConfig struct {
	Width     *int `toml:"width"`
	Height    *int `toml:"height"`
	MinWidth  *int `toml:"min_width"`
	MinHeight *int `toml:"min_height"`
}

type otelFileConfig struct {
	Endpoint *string `toml:"endpoint"`
}

// Load reads config from ~/.termfolio/config.toml and overlays a
// project-local .termfolio/config.toml.
func Load(ctx context.Context) (*Config, error) {
	cfg := Defaults()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	workingDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	paths := []string{
		filepath.Join(homeDir, Dir, "config.toml"),
		filepath.Join(workingDir, Dir, "config.toml"),
	}

	for _, path := range paths {
		if err := overlayFromFile(&cfg, path); err != nil {
			return nil, err
		}
	}

	cfg.raiseToMinimum()
	_ = ctx
	return &cfg, nil
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Prompt:       defaultPrompt,
		Title:        defaultTitle,
		Variant:      defaultVariant,
		LogLevel:     defaultLogLevel,
		LogMaxFiles:  defaultLogMaxFiles,
		CharInterval: defaultCharInterval,
		LinePause:    defaultLinePause,
		Window: WindowConfig{
			Width:     defaultWidth,
			Height:    defaultHeight,
			MinWidth:  defaultMinWidth,
			MinHeight: defaultMinHeight,
		},
	}
}

// Level returns the parsed log level, falling back to info.
func (c *Config) Level() log.Level {
	if c == nil {
		return log.InfoLevel
	}
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

func overlayFromFile(cfg *Config, path string) error {
	if cfg == nil {
		return errors.New("config must not be nil")
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat config file %q: %w", path, err)
	}

	var decoded fileConfig
	meta, err := toml.DecodeFile(path, &decoded)
	if err != nil {
		return fmt.Errorf("decode config file %q: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("decode config file %q: unsupported key %q", path, undecoded[0].String())
	}

	if err := applyScalarOverrides(cfg, decoded, path); err != nil {
		return err
	}
	if err := applyDurationOverrides(cfg, decoded, path); err != nil {
		return err
	}
	if err := applyWindowOverrides(cfg, decoded.Window, path); err != nil {
		return err
	}
	if decoded.OTel != nil && decoded.OTel.Endpoint != nil {
		cfg.OTel.Endpoint = strings.TrimSpace(*decoded.OTel.Endpoint)
	}

	return nil
}

func applyScalarOverrides(cfg *Config, decoded fileConfig, path string) error {
	if decoded.Prompt != nil {
		cfg.Prompt = strings.TrimSpace(*decoded.Prompt)
	}
	if decoded.Title != nil {
		cfg.Title = strings.TrimSpace(*decoded.Title)
	}
	if decoded.Variant != nil {
		variant := normalizeKey(*decoded.Variant)
		if variant != VariantWindow && variant != VariantOverlay {
			return fmt.Errorf("parse variant in %q: must be %q or %q", path, VariantWindow, VariantOverlay)
		}
		cfg.Variant = variant
	}
	if decoded.LogLevel != nil {
		level := normalizeKey(*decoded.LogLevel)
		if _, err := log.ParseLevel(level); err != nil {
			return fmt.Errorf("parse log_level in %q: %w", path, err)
		}
		cfg.LogLevel = level
	}
	if decoded.LogMaxFiles != nil {
		if *decoded.LogMaxFiles <= 0 {
			return fmt.Errorf("parse log_max_files in %q: must be > 0", path)
		}
		cfg.LogMaxFiles = *decoded.LogMaxFiles
	}
	return nil
}

func applyDurationOverrides(cfg *Config, decoded fileConfig, path string) error {
	if decoded.CharInterval != nil {
		value, err := parseDuration(*decoded.CharInterval, "char_interval", path)
		if err != nil {
			return err
		}
		cfg.CharInterval = value
	}
	if decoded.LinePause != nil {
		value, err := parseDuration(*decoded.LinePause, "line_pause", path)
		if err != nil {
			return err
		}
		cfg.LinePause = value
	}
	return nil
}

func applyWindowOverrides(cfg *Config, window *windowFileConfig, path string) error {
	if window == nil {
		return nil
	}
	fields := []struct {
		key    string
		value  *int
		target *int
	}{
		{key: "window.width", value: window.Width, target: &cfg.Window.Width},
		{key: "window.height", value: window.Height, target: &cfg.Window.Height},
		{key: "window.min_width", value: window.MinWidth, target: &cfg.Window.MinWidth},
		{key: "window.min_height", value: window.MinHeight, target: &cfg.Window.MinHeight},
	}
	for _, field := range fields {
		if field.value == nil {
			continue
		}
		if *field.value <= 0 {
			return fmt.Errorf("parse %s in %q: must be > 0", field.key, path)
		}
		*field.target = *field.value
	}
	return nil
}

func (c *Config) raiseToMinimum() {
	c.Window.Width = max(c.Window.Width, c.Window.MinWidth)
	c.Window.Height = max(c.Window.Height, c.Window.MinHeight)
}

// ParseDuration parses a non-negative duration flag or config value.
func ParseDuration(value, key string) (time.Duration, error) {
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("parse %s: must be >= 0", key)
	}
	return parsed, nil
}

func parseDuration(value, key, path string) (time.Duration, error) {
	parsed, err := ParseDuration(value, key)
	if err != nil {
		return 0, fmt.Errorf("%w in %q", err, path)
	}
	return parsed, nil
}

func normalizeKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
