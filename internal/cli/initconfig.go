package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"spantable/internal/app"
	"spantable/internal/tui"
)

// runWizard is replaced in tests.
var runWizard = tui.Run

func newInitConfigCommand(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: "Create a config file interactively",
		Long: `Walk through the settings in a form, starting from the current
configuration, and save them as YAML. Optionally dump right away.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := load(cmd)
			if err != nil {
				return err
			}
			res, err := runWizard(cmd.ErrOrStderr(), loaded.Config)
			if err != nil {
				return err
			}
			if res.SaveConfig {
				fmt.Fprintf(cmd.ErrOrStderr(), "Saved config: %s\n", res.ConfigPath)
			}
			if !res.RunNow {
				return nil
			}
			opts, err := commandOptions(cmd, res.Config, nil)
			if err != nil {
				return err
			}
			return app.Dump(cmd.Context(), opts)
		},
	}
}
