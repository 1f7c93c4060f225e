// Package config loads fyles settings.
//
// Settings are layered: built-in defaults, then a TOML file (an explicit path
// or ./fyles.toml when present), then FYLES_* environment variables. The CLI
// applies its flags on top of the result.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/camalot/fyles/pkg/errors"
	"github.com/camalot/fyles/pkg/pipeline"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "fyles.toml"

// Config holds every user-facing setting.
type Config struct {
	// Input
	SourceDir   string `toml:"source_dir" env:"FYLES_SOURCE_DIR"`
	Manifest    string `toml:"manifest" env:"FYLES_MANIFEST"`
	DefaultIcon string `toml:"default_icon" env:"FYLES_DEFAULT_ICON"`
	Resample    bool   `toml:"resample" env:"FYLES_RESAMPLE"`

	// Output
	OutputDir string `toml:"output_dir" env:"FYLES_OUTPUT_DIR"`
	ImagePath string `toml:"image_path" env:"FYLES_IMAGE_PATH"`
	CSSPath   string `toml:"css_path" env:"FYLES_CSS_PATH"`
	IconsDir  string `toml:"icons_dir" env:"FYLES_ICONS_DIR"`

	// Sprite
	MaxSize     int    `toml:"max_size" env:"FYLES_MAX_SIZE"`
	SlotsPerRow int    `toml:"slots_per_row" env:"FYLES_SLOTS_PER_ROW"`
	Padding     int    `toml:"padding" env:"FYLES_PADDING"`
	RowRounding string `toml:"row_rounding" env:"FYLES_ROW_ROUNDING"`
	Palette     int    `toml:"palette" env:"FYLES_PALETTE"`

	// Stylesheet
	Namespace   string `toml:"namespace" env:"FYLES_NAMESPACE"`
	ImageURL    string `toml:"image_url" env:"FYLES_IMAGE_URL"`
	InlineImage bool   `toml:"inline_image" env:"FYLES_INLINE_IMAGE"`
	CompatCSS   bool   `toml:"compat_css" env:"FYLES_COMPAT_CSS"`
}

// Default returns the built-in settings.
func Default() Config {
	opts := pipeline.DefaultOptions()
	return Config{
		SourceDir:   "icons",
		DefaultIcon: "default",
		Resample:    true,
		OutputDir:   "dist",
		MaxSize:     opts.MaxSize,
		SlotsPerRow: opts.SlotsPerRow,
		Padding:     opts.Padding,
		RowRounding: "nearest",
		Namespace:   opts.Namespace,
	}
}

// Load builds the effective configuration. An empty path falls back to
// DefaultFile if it exists; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(&cfg, path, data); err != nil {
			return Config{}, err
		}
	case explicit || !os.IsNotExist(err):
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse env")
	}
	return cfg, nil
}

func decode(cfg *Config, path string, data []byte) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Options converts the configuration into pipeline options. The logger is
// left for the runner to fill in.
func (c Config) Options() pipeline.Options {
	return pipeline.Options{
		MaxSize:     c.MaxSize,
		SlotsPerRow: c.SlotsPerRow,
		Padding:     c.Padding,
		RowRounding: c.RowRounding,
		Namespace:   c.Namespace,
		ImageURL:    c.ImageURL,
		InlineImage: c.InlineImage,
		CompatCSS:   c.CompatCSS,
		Palette:     c.Palette,
	}
}

// Sprite returns the sprite output path.
func (c Config) Sprite() string {
	if c.ImagePath != "" {
		return c.ImagePath
	}
	return filepath.Join(c.OutputDir, "images", c.namespace()+".png")
}

// Stylesheet returns the stylesheet output path.
func (c Config) Stylesheet() string {
	if c.CSSPath != "" {
		return c.CSSPath
	}
	return filepath.Join(c.OutputDir, "css", c.namespace()+".css")
}

func (c Config) namespace() string {
	if c.Namespace == "" {
		return pipeline.DefaultNamespace
	}
	return c.Namespace
}

// Encode renders c as TOML.
func (c Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}
