package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"spantable/internal/app"
)

func newInspectCommand(load loadFunc) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect [FILE|URL|-]",
		Short: "Describe every table in a document",
		Long: `List the tables of a document with their sections, dimensions and
any problems found while resolving spans: overlapping cells, ragged rows,
duplicate ids and empty tables.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := load(cmd)
			if err != nil {
				return err
			}
			opts, err := commandOptions(cmd, loaded.Config, args)
			if err != nil {
				return err
			}
			rep, err := app.Inspect(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			app.PrintTables(cmd.OutOrStdout(), rep)
			return nil
		},
	}

	addSourceFlags(cmd.Flags())
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}
