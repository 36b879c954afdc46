// Package config holds the settings of the animrig command: the asset to load, how to
// drive it and where to draw it.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

// Output formats for rendered frames.
const (
	FormatPNG  = "png"
	FormatWebP = "webp"
)

// Defaults applied by Resolve to fields left empty.
const (
	DefaultSampleRate  float32 = 30
	DefaultFrameRate   float32 = 30
	DefaultOutputDir           = "frames"
	DefaultImageSize           = 512
	DefaultSupersample         = 2
	DefaultFormat              = FormatPNG
	DefaultLogLevel            = "info"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all configurable paths, evaluation and render settings.
type Config struct {
	// Asset
	GLTFPath            string             `json:"gltf_path"`
	SkinIndex           *int               `json:"skin_index,omitempty"`
	AnimationSampleRate float32            `json:"animation_sample_rate"`
	BlendTreePath       string             `json:"blend_tree_path"`
	ClipDurations       map[string]float32 `json:"clip_durations,omitempty"`

	// Playback
	Params    map[string]float32 `json:"params,omitempty"`
	StartTime float32            `json:"start_time"`
	EndTime   float32            `json:"end_time"`
	FrameRate float32            `json:"frame_rate"`

	// Output
	OutputDir    string `json:"output_dir"`
	ImageSize    int    `json:"image_size"`
	Supersample  int    `json:"supersample"`
	OutputFormat string `json:"output_format"`
	DrawLabels   bool   `json:"draw_labels"`
	Terminal     bool   `json:"terminal"`

	// Crowd
	CrowdSize int `json:"crowd_size"`
	Workers   int `json:"workers"`

	LogLevel string `json:"log_level"`
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	GLTFPath  string
	TreePath  string
	OutputDir string
	Format    string
	Terminal  bool
	Crowd     int
	Workers   int
	Verbose   bool
}

// Load reads a JSON config file.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns a config with every default applied and no asset.
func Default() Config {
	var cfg Config
	cfg.Resolve(Flags{})
	return cfg
}

// Resolve applies CLI flags over the file values, then fills empty fields with defaults.
func (c *Config) Resolve(flags Flags) {
	c.GLTFPath = common.Coalesce(flags.GLTFPath, c.GLTFPath)
	c.BlendTreePath = common.Coalesce(flags.TreePath, c.BlendTreePath)
	c.OutputDir = common.Coalesce(flags.OutputDir, c.OutputDir, DefaultOutputDir)
	c.OutputFormat = strings.ToLower(common.Coalesce(flags.Format, c.OutputFormat, DefaultFormat))
	c.Terminal = c.Terminal || flags.Terminal
	c.CrowdSize = common.Coalesce(flags.Crowd, c.CrowdSize)
	c.Workers = common.Coalesce(flags.Workers, c.Workers)
	if flags.Verbose {
		c.LogLevel = "debug"
	}

	c.AnimationSampleRate = common.Coalesce(c.AnimationSampleRate, DefaultSampleRate)
	c.FrameRate = common.Coalesce(c.FrameRate, DefaultFrameRate)
	c.ImageSize = common.Coalesce(c.ImageSize, DefaultImageSize)
	c.Supersample = common.Coalesce(c.Supersample, DefaultSupersample)
	c.LogLevel = common.Coalesce(c.LogLevel, DefaultLogLevel)
	if c.SkinIndex == nil {
		auto := -1
		c.SkinIndex = &auto
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch {
	case c.GLTFPath == "":
		return fmt.Errorf("gltf_path is required: %w", ErrInvalidConfig)
	case c.AnimationSampleRate <= 0:
		return fmt.Errorf("animation_sample_rate %v must be positive: %w", c.AnimationSampleRate, ErrInvalidConfig)
	case c.FrameRate <= 0:
		return fmt.Errorf("frame_rate %v must be positive: %w", c.FrameRate, ErrInvalidConfig)
	case c.StartTime < 0:
		return fmt.Errorf("start_time %v must not be negative: %w", c.StartTime, ErrInvalidConfig)
	case c.EndTime != 0 && c.EndTime < c.StartTime:
		return fmt.Errorf("end_time %v is before start_time %v: %w", c.EndTime, c.StartTime, ErrInvalidConfig)
	case c.ImageSize <= 0:
		return fmt.Errorf("image_size %d must be positive: %w", c.ImageSize, ErrInvalidConfig)
	case c.Supersample < 1 || c.Supersample > 8:
		return fmt.Errorf("supersample %d must be between 1 and 8: %w", c.Supersample, ErrInvalidConfig)
	case c.OutputFormat != FormatPNG && c.OutputFormat != FormatWebP:
		return fmt.Errorf("output_format %q must be %s or %s: %w", c.OutputFormat, FormatPNG, FormatWebP, ErrInvalidConfig)
	case c.CrowdSize < 0:
		return fmt.Errorf("crowd_size %d must not be negative: %w", c.CrowdSize, ErrInvalidConfig)
	case c.Workers < 0:
		return fmt.Errorf("workers %d must not be negative: %w", c.Workers, ErrInvalidConfig)
	}
	for name, d := range c.ClipDurations {
		if d <= 0 {
			return fmt.Errorf("clip_durations[%q] %v must be positive: %w", name, d, ErrInvalidConfig)
		}
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level %q: %w", c.LogLevel, ErrInvalidConfig)
	}
	return l, nil
}

// Skin returns the configured skin index, -1 for automatic selection.
func (c *Config) Skin() int {
	if c.SkinIndex == nil {
		return -1
	}
	return *c.SkinIndex
}
