package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/camalot/fyles/internal/config"
	"github.com/camalot/fyles/pkg/pipeline"
)

// generateCommand creates the generate command, which writes the sprite
// image and the stylesheet.
func (c *CLI) generateCommand() *cobra.Command {
	var flags *config.Config

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build the sprite image and stylesheet",
		Long: `Build the sprite image and stylesheet from an icon directory or manifest.

Icons are read for every extension at the large, small, extra-large,
system-small and jumbo sizes. Icons wider than --max-size are skipped and
pixel-identical icons share one sprite slot and one rule.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd.Flags(), flags)
			if err != nil {
				return err
			}
			return c.runGenerate(cmd.Context(), cfg)
		},
	}
	flags = addConfigFlags(cmd)

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, cfg config.Config) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(cfg, fileSink(cfg))
	if err != nil {
		return err
	}
	logger.Debug("generating", "source", sourceName(cfg), "image", cfg.Sprite(), "css", cfg.Stylesheet())

	prog := newProgress(logger)
	var st *pipeline.State
	err = withSpinner(ctx, "Extracting icons", func() error {
		var runErr error
		st, runErr = runner.Execute(ctx, cfg.Options())
		return runErr
	})
	if st != nil {
		warnLayout(st)
	}
	if err != nil {
		return err
	}
	prog.done("Generated sprite")

	printSuccess("Generated %s", StyleHighlight.Render(st.Options.Namespace))
	printStats(st.Stats)
	printFile(cfg.Sprite())
	printFile(cfg.Stylesheet())
	if cfg.IconsDir != "" {
		printFile(cfg.IconsDir)
	}
	if cfg.InlineImage {
		printInfo("Sprite is embedded in the stylesheet")
	}
	printNextStep("Preview the sprite", appName+" preview "+cfg.Sprite())
	return nil
}

// warnLayout reports sprite geometry that clips icons.
func warnLayout(st *pipeline.State) {
	switch {
	case st.Catalog.Len() == 0:
		printWarning("No icons were found")
	case st.Layout.CanvasHeight == 0:
		printWarning("The sprite has no rows: %d icons round down to zero rows of %d slots",
			st.Catalog.Len(), len(st.Layout.Widths)*st.Options.SlotsPerRow)
		printDetail("set row_rounding = \"ceil\" or lower slots_per_row")
	case st.Stats.Overflow > 0:
		printWarning("%d icons fall below the sprite and will not display", st.Stats.Overflow)
		printDetail("set row_rounding = \"ceil\" to allocate a row for every icon")
	}
}

func sourceName(cfg config.Config) string {
	if cfg.Manifest != "" {
		return cfg.Manifest
	}
	return cfg.SourceDir
}
