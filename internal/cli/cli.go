// Package cli implements the fyles command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/camalot/fyles/internal/config"
	"github.com/camalot/fyles/pkg/buildinfo"
	"github.com/camalot/fyles/pkg/errors"
	"github.com/camalot/fyles/pkg/icon"
	"github.com/camalot/fyles/pkg/pipeline"
	"github.com/camalot/fyles/pkg/sink"
	"github.com/camalot/fyles/pkg/source/dir"
	"github.com/camalot/fyles/pkg/source/manifest"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "fyles"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is bound to the persistent --config flag.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "fyles builds a file-type icon sprite and its stylesheet",
		Long:          `fyles collects an icon per file extension and size, merges pixel-identical icons, packs them into one sprite image and writes a stylesheet with a selector per extension and size.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default ./"+config.DefaultFile+" when present)")

	// Register all subcommands
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// iconSource is both halves of an icon input.
type iconSource interface {
	icon.Source
	icon.Registry
}

// openSource opens the manifest when one is configured, the icon directory
// otherwise.
func openSource(cfg config.Config) (iconSource, error) {
	if cfg.Manifest != "" {
		m, err := manifest.Load(cfg.Manifest)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	d, err := dir.New(cfg.SourceDir,
		dir.WithFallback(cfg.DefaultIcon),
		dir.WithResample(cfg.Resample))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open icon source")
	}
	return d, nil
}

// newRunner creates a pipeline runner for CLI use. A nil sink keeps the
// artifacts in memory.
func (c *CLI) newRunner(cfg config.Config, snk sink.Sink) (*pipeline.Runner, error) {
	src, err := openSource(cfg)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(src, src, snk, c.Logger), nil
}

// fileSink creates the sink that writes the configured output files.
func fileSink(cfg config.Config) *sink.FileSink {
	opts := []sink.FileOption{sink.WithPalette(cfg.Palette)}
	if cfg.IconsDir != "" {
		opts = append(opts, sink.WithIconsDir(cfg.IconsDir))
	}
	return sink.NewFileSink(cfg.Sprite(), cfg.Stylesheet(), opts...)
}
