// Package config loads the TOML configuration file.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"SketchBoard/internal/logging"
	"SketchBoard/internal/render"
	"SketchBoard/internal/state"
	"SketchBoard/internal/surface"
)

// Duration is a time.Duration written as a string such as "15s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type Canvas struct {
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	Background string `toml:"background"`
}

type Tools struct {
	Color             string  `toml:"color"`
	Width             int     `toml:"width"`
	EraserFactor      float64 `toml:"eraser_factor"`
	InterpolateEraser bool    `toml:"interpolate_eraser"`
}

type Describe struct {
	MaxWidth  int `toml:"max_width"`
	MaxHeight int `toml:"max_height"`
}

type Export struct {
	Format string `toml:"format"`
}

type Suggest struct {
	Addr     string   `toml:"addr"`
	Discover bool     `toml:"discover"`
	Timeout  Duration `toml:"timeout"`
}

type Log struct {
	Level string `toml:"level"`
}

// Config is the whole configuration file.
type Config struct {
	Canvas   Canvas   `toml:"canvas"`
	Tools    Tools    `toml:"tools"`
	Describe Describe `toml:"describe"`
	Export   Export   `toml:"export"`
	Suggest  Suggest  `toml:"suggest"`
	Log      Log      `toml:"log"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Canvas:   Canvas{Width: 1024, Height: 618, Background: "#FFFFFF"},
		Tools:    Tools{Color: "#000000", Width: state.DefaultWidth, EraserFactor: render.DefaultEraserFactor},
		Describe: Describe{MaxWidth: surface.DescribeMaxWidth, MaxHeight: surface.DescribeMaxHeight},
		Export:   Export{Format: string(surface.PNG)},
		Suggest:  Suggest{Discover: true, Timeout: Duration{15 * time.Second}},
		Log:      Log{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
// Keys the file sets but Config does not know are logged and ignored.
func Load(path string, logger *slog.Logger) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	return parse(string(data), logging.OrNop(logger))
}

func parse(data string, logger *slog.Logger) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	for _, key := range md.Undecoded() {
		logger.Warn("unknown config key", "key", key.String())
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports every invalid value at once.
func (c Config) Validate() error {
	var errs []error
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		errs = append(errs, fmt.Errorf("canvas size %dx%d must be positive", c.Canvas.Width, c.Canvas.Height))
	}
	if _, err := state.ParseHex(c.Canvas.Background); err != nil {
		errs = append(errs, fmt.Errorf("canvas.background: %w", err))
	}
	if _, err := state.ParseHex(c.Tools.Color); err != nil {
		errs = append(errs, fmt.Errorf("tools.color: %w", err))
	}
	if c.Tools.Width < state.MinWidth || c.Tools.Width > state.MaxWidth {
		errs = append(errs, fmt.Errorf("tools.width %d outside [%d, %d]", c.Tools.Width, state.MinWidth, state.MaxWidth))
	}
	if c.Tools.EraserFactor <= 0 {
		errs = append(errs, fmt.Errorf("tools.eraser_factor %v must be positive", c.Tools.EraserFactor))
	}
	if c.Describe.MaxWidth <= 0 || c.Describe.MaxHeight <= 0 {
		errs = append(errs, fmt.Errorf("describe limits %dx%d must be positive", c.Describe.MaxWidth, c.Describe.MaxHeight))
	}
	if _, err := surface.ParseFormat(c.Export.Format); err != nil {
		errs = append(errs, fmt.Errorf("export.format: %w", err))
	}
	if c.Suggest.Timeout.Duration <= 0 {
		errs = append(errs, fmt.Errorf("suggest.timeout %v must be positive", c.Suggest.Timeout))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

// Background returns the parsed canvas background, white if invalid.
func (c Config) Background() color.RGBA {
	bg, err := state.ParseHex(c.Canvas.Background)
	if err != nil {
		return surface.DefaultBackground
	}
	return bg
}

// ToolState returns the initial tool state described by [tools].
func (c Config) ToolState() state.ToolState {
	ts := state.NewToolState()
	_ = ts.SetColor(c.Tools.Color)
	ts.SetWidth(c.Tools.Width)
	return ts
}

// ExportFormat returns the parsed default export format.
func (c Config) ExportFormat() surface.Format {
	f, err := surface.ParseFormat(strings.TrimSpace(c.Export.Format))
	if err != nil {
		return surface.PNG
	}
	return f
}
