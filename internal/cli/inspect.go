package cli

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/camalot/fyles/internal/config"
	"github.com/camalot/fyles/pkg/pipeline"
)

// inspectCommand creates the inspect command, which renders a run in
// memory and browses its rules and duplicate groups.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		flags *config.Config
		plain bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Browse the rules and duplicate groups of a run",
		Long: `Run the pipeline without writing any files and browse the generated
stylesheet rules, the per-size fallback rules and the groups of
pixel-identical icons.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd.Flags(), flags)
			if err != nil {
				return err
			}
			st, err := c.render(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if plain {
				return printTables(cmd.OutOrStdout(), st)
			}
			_, err = tea.NewProgram(NewInspectModel(st), tea.WithAltScreen()).Run()
			return err
		},
	}
	flags = addConfigFlags(cmd)
	cmd.Flags().BoolVar(&plain, "plain", false, "print tables instead of the interactive browser")

	return cmd
}

// render runs the pipeline in memory.
func (c *CLI) render(ctx context.Context, cfg config.Config) (*pipeline.State, error) {
	runner, err := c.newRunner(cfg, nil)
	if err != nil {
		return nil, err
	}
	var st *pipeline.State
	err = withSpinner(ctx, "Extracting icons", func() error {
		var runErr error
		st, runErr = runner.Render(ctx, cfg.Options())
		return runErr
	})
	return st, err
}

// printTables writes every inspector table to w.
func printTables(w io.Writer, st *pipeline.State) error {
	m := NewInspectModel(st)
	plainRow := func(int) lipgloss.Style { return lipgloss.NewStyle() }
	for i, name := range tabNames {
		tab := inspectTab(i)
		if _, err := fmt.Fprintf(w, "%s (%d)\n", name, len(m.tables[tab])); err != nil {
			return err
		}
		if len(m.tables[tab]) == 0 {
			continue
		}
		if _, err := fmt.Fprintln(w, newTable(headers(tab), m.tables[tab], plainRow).Render()); err != nil {
			return err
		}
	}
	return nil
}
