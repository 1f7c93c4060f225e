package cli

import (
	"github.com/spf13/cobra"

	"github.com/camalot/fyles/internal/config"
)

// configCommand creates the config command, which prints the effective
// configuration after the file, environment and flags are applied.
func (c *CLI) configCommand() *cobra.Command {
	var flags *config.Config

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the effective configuration as TOML. The output is a valid
` + config.DefaultFile + ` and can be redirected into one to start from the defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd.Flags(), flags)
			if err != nil {
				return err
			}
			opts := cfg.Options()
			if err := opts.ValidateAndSetDefaults(); err != nil {
				loggerFromContext(cmd.Context()).Warn("configuration is invalid", "error", err)
			}
			data, err := cfg.Encode()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	flags = addConfigFlags(cmd)

	return cmd
}
