package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"spantable/internal/app"
	"spantable/internal/config"
	"spantable/internal/output"
)

func newDumpCommand(load loadFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump [FILE|URL|-]",
		Short: "Print a resolved table",
		Long: `Resolve the spans of one table (or every table with --all) and print
it in the chosen format. The source defaults to the configured one.`,
		Example: `  spantable dump page.html
  spantable dump --table 2 --format markdown https://example.com/stats
  curl -s https://example.com | spantable dump --all --format json -
  spantable dump --all --out tables/ page.html`,
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
			return app.Dump(cmd.Context(), opts)
		},
	}

	addSourceFlags(cmd.Flags())
	cmd.Flags().Int("table", 0, "0-based index of the table to print")
	cmd.Flags().Bool("all", false, "Print every table in the document")
	cmd.Flags().StringP("format", "f", "", "Output format ("+strings.Join(output.Formats(), "|")+")")
	cmd.Flags().String("section", "", "Section to print (all|head|body|foot)")
	cmd.Flags().String("null", "", "Text for positions no cell covers")
	cmd.Flags().StringP("out", "o", "", "Write one file per table plus index.jsonl to this directory")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return output.Formats(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("section", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"all", "head", "body", "foot"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

// addSourceFlags registers the flags shared by commands that read a document.
func addSourceFlags(fs *pflag.FlagSet) {
	fs.StringP("selector", "s", "", "CSS selector narrowing the document before tables are found")
	fs.String("exclude", "", "CSS selector of nodes to remove first")
	fs.String("mode", "", "Fetch mode for URLs (auto|static|dynamic)")
	fs.Int("timeout", 0, "Fetch timeout in seconds")
	fs.String("user-agent", "", "User-Agent for fetches")
	fs.String("wait-for", "", "CSS selector to wait for in dynamic mode")
	fs.Bool("headless", true, "Run the browser headless in dynamic mode")
	fs.String("cache", "", "Directory caching fetched pages")
	fs.Float64("rate-limit", 0, "Requests per second (0 disables)")
	fs.String("proxy", "", "Proxy URL for fetches")
}

// commandOptions applies the positional source, if any, and maps the
// configuration onto app options wired to the command's streams.
func commandOptions(cmd *cobra.Command, cfg config.Config, args []string) (app.Options, error) {
	if len(args) > 0 {
		cfg.Source = args[0]
	}
	if strings.TrimSpace(cfg.Source) == "" {
		return app.Options{}, ExitError{Code: 2, Err: app.ErrSourceRequired}
	}
	opts, err := app.OptionsFromConfig(cfg)
	if err != nil {
		return app.Options{}, usageError("%v", err)
	}
	opts.Stdin = cmd.InOrStdin()
	opts.Out = cmd.OutOrStdout()
	opts.Logger = getLogger(cmd.Context())
	return opts, nil
}
