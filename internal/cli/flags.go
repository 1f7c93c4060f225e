package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/camalot/fyles/internal/config"
)

// configFlag maps one command-line flag onto a config field.
type configFlag struct {
	name  string
	apply func(dst, src *config.Config)
}

var configFlags = []configFlag{
	{"source", func(d, s *config.Config) { d.SourceDir = s.SourceDir }},
	{"manifest", func(d, s *config.Config) { d.Manifest = s.Manifest }},
	{"default-icon", func(d, s *config.Config) { d.DefaultIcon = s.DefaultIcon }},
	{"resample", func(d, s *config.Config) { d.Resample = s.Resample }},
	{"output", func(d, s *config.Config) { d.OutputDir = s.OutputDir }},
	{"image", func(d, s *config.Config) { d.ImagePath = s.ImagePath }},
	{"css", func(d, s *config.Config) { d.CSSPath = s.CSSPath }},
	{"icons-dir", func(d, s *config.Config) { d.IconsDir = s.IconsDir }},
	{"max-size", func(d, s *config.Config) { d.MaxSize = s.MaxSize }},
	{"slots", func(d, s *config.Config) { d.SlotsPerRow = s.SlotsPerRow }},
	{"padding", func(d, s *config.Config) { d.Padding = s.Padding }},
	{"row-rounding", func(d, s *config.Config) { d.RowRounding = s.RowRounding }},
	{"palette", func(d, s *config.Config) { d.Palette = s.Palette }},
	{"namespace", func(d, s *config.Config) { d.Namespace = s.Namespace }},
	{"image-url", func(d, s *config.Config) { d.ImageURL = s.ImageURL }},
	{"inline", func(d, s *config.Config) { d.InlineImage = s.InlineImage }},
	{"compat", func(d, s *config.Config) { d.CompatCSS = s.CompatCSS }},
}

// addConfigFlags registers a flag for every setting. The returned config
// receives the flag values; only flags set on the command line are applied
// over the loaded configuration.
func addConfigFlags(cmd *cobra.Command) *config.Config {
	f := &config.Config{}
	d := config.Default()
	fs := cmd.Flags()

	fs.StringVarP(&f.SourceDir, "source", "s", d.SourceDir, "directory of icon files")
	fs.StringVarP(&f.Manifest, "manifest", "m", "", "TOML manifest mapping extensions to icon files (overrides --source)")
	fs.StringVar(&f.DefaultIcon, "default-icon", d.DefaultIcon, "file name (without extension) of the unknown-type icon")
	fs.BoolVar(&f.Resample, "resample", d.Resample, "downscale larger frames when a size is missing")

	fs.StringVarP(&f.OutputDir, "output", "o", d.OutputDir, "output directory")
	fs.StringVar(&f.ImagePath, "image", "", "sprite image path (default <output>/images/<namespace>.png)")
	fs.StringVar(&f.CSSPath, "css", "", "stylesheet path (default <output>/css/<namespace>.css)")
	fs.StringVar(&f.IconsDir, "icons-dir", "", "also export every unique icon into this directory")

	fs.IntVar(&f.MaxSize, "max-size", d.MaxSize, "largest icon width kept, in pixels")
	fs.IntVar(&f.SlotsPerRow, "slots", d.SlotsPerRow, "slots per row for each distinct width")
	fs.IntVar(&f.Padding, "padding", d.Padding, "gap between icons, in pixels")
	fs.StringVar(&f.RowRounding, "row-rounding", d.RowRounding, "row count rounding: nearest, ceil")
	fs.IntVar(&f.Palette, "palette", 0, "quantize the sprite to this many colors (0 keeps full color)")

	fs.StringVarP(&f.Namespace, "namespace", "n", d.Namespace, "CSS class prefix")
	fs.StringVar(&f.ImageURL, "image-url", "", "sprite URL used in the stylesheet (default ../images/<namespace>.png)")
	fs.BoolVar(&f.InlineImage, "inline", false, "embed the sprite in the stylesheet as a data URL")
	fs.BoolVar(&f.CompatCSS, "compat", false, "write the stylesheet in the legacy single-line layout")

	return f
}

// loadConfig loads the configuration and applies the flags that were set.
func (c *CLI) loadConfig(fs *pflag.FlagSet, flags *config.Config) (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	for _, f := range configFlags {
		if fs.Lookup(f.name) != nil && fs.Changed(f.name) {
			f.apply(&cfg, flags)
		}
	}
	return cfg, nil
}
