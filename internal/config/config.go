// Package config handles exporter configuration loading and management.
package config

import (
	"fmt"
	"strings"

	"github.com/Faultbox/export3dy/internal/logger"
	"github.com/Faultbox/export3dy/pkg/formats"
)

// Config holds all exporter settings.
type Config struct {
	Output   OutputConfig  `yaml:"output" toml:"output"`
	Textures TextureConfig `yaml:"textures" toml:"textures"`
	Export   ExportConfig  `yaml:"export" toml:"export"`
	Logging  LoggingConfig `yaml:"logging" toml:"logging"`
}

// OutputConfig holds where and how the document and blob are written.
type OutputConfig struct {
	Dir    string `yaml:"dir" toml:"dir"`
	Name   string `yaml:"name" toml:"name"`     // base name of the document and blob
	Format string `yaml:"format" toml:"format"` // json or yaml
	Indent int    `yaml:"indent" toml:"indent"`
}

// TextureConfig holds image export settings.
type TextureConfig struct {
	Dir      string `yaml:"dir" toml:"dir"`       // relative to the output directory
	Format   string `yaml:"format" toml:"format"` // encoding of generated images: png or webp
	Validate bool   `yaml:"validate" toml:"validate"`
}

// ExportConfig selects the optional parts of the document.
type ExportConfig struct {
	Materials  bool `yaml:"materials" toml:"materials"`
	Lights     bool `yaml:"lights" toml:"lights"`
	Animations bool `yaml:"animations" toml:"animations"`
	Progress   bool `yaml:"progress" toml:"progress"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
	JSON    bool   `yaml:"json" toml:"json"` // structured entries in the log file
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Dir:    ".",
			Name:   "",
			Format: "json",
			Indent: 1,
		},
		Textures: TextureConfig{
			Dir:      "textures",
			Format:   "png",
			Validate: true,
		},
		Export: ExportConfig{
			Materials:  true,
			Lights:     true,
			Animations: true,
			Progress:   true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings that cannot be used for an export.
func (c *Config) Validate() error {
	if _, err := formats.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	if c.Output.Indent < 0 {
		return fmt.Errorf("output.indent: negative value %d", c.Output.Indent)
	}
	switch strings.ToLower(c.Textures.Format) {
	case "png", "webp":
	default:
		return fmt.Errorf("textures.format: unknown image format %q", c.Textures.Format)
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}
