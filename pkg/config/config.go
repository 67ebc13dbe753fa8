// Package config provides configuration loading and management.
package config

import (
	"os"

	"github.com/user/clipforge/pkg/adapters/ffmpegcodec"
	"github.com/user/clipforge/pkg/engine"
	"github.com/user/clipforge/pkg/ports"
	"gopkg.in/yaml.v3"
)

// Config represents the engine configuration for clipforge.
type Config struct {
	// Codec backend
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`

	// Scheduling
	MaxConcurrentJobs int `yaml:"max_concurrent_jobs"`

	// Defaults for jobs that leave these unset
	DefaultFPS   float64 `yaml:"default_fps"`
	ImageQuality int     `yaml:"image_quality"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	opts := engine.DefaultOptions()
	return Config{
		MaxConcurrentJobs: opts.MaxConcurrentJobs,
		DefaultFPS:        opts.DefaultFPS,
		ImageQuality:      85,
		LogLevel:          "info",
		DebugDir:          "./debug",
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// ToEngineOptions converts Config to engine.Options.
// Non-positive values fall back to the engine defaults.
func (c Config) ToEngineOptions() engine.Options {
	opts := engine.DefaultOptions()
	if c.MaxConcurrentJobs > 0 {
		opts.MaxConcurrentJobs = c.MaxConcurrentJobs
	}
	if c.DefaultFPS > 0 {
		opts.DefaultFPS = c.DefaultFPS
	}
	if c.ImageQuality > 0 && c.ImageQuality <= 100 {
		opts.ImageQuality = c.ImageQuality
	}
	return opts
}

// Locator returns the ffmpeg binary locator for this configuration.
func (c Config) Locator() ffmpegcodec.Locator {
	return ffmpegcodec.Locator{
		FFmpegPath:  c.FFmpegPath,
		FFprobePath: c.FFprobePath,
	}
}

// Level returns the parsed log level.
func (c Config) Level() ports.LogLevel {
	return ports.ParseLogLevel(c.LogLevel)
}
