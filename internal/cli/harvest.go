package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"spantable/internal/app"
)

func newHarvestCommand(load loadFunc) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "harvest URL",
		Short: "Crawl a site and save every table",
		Long: `Follow links from URL (and optionally the pages of a sitemap) and
write the tables of each page to its own directory under --out, with an
index.jsonl per page and a pages.jsonl listing every page visited.`,
		Example: `  spantable harvest --out tables/ --depth 3 --match '/stats/' https://example.com/
  spantable harvest --out tables/ --sitemap https://example.com/sitemap.xml https://example.com/`,
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
			if opts.OutDir == "" {
				return ExitError{Code: 2, Err: app.ErrOutDirRequired}
			}
			summary, err := app.Harvest(cmd.Context(), app.HarvestOptions{
				Options:    opts,
				Depth:      loaded.Depth,
				MaxPages:   loaded.MaxPages,
				Match:      loaded.Match,
				Sitemap:    loaded.Sitemap,
				AllDomains: loaded.AllDomains,
			})
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Crawled %d page(s), %d failed; wrote %d table(s); index: %s\n",
				summary.Stats.PagesCrawled, summary.Stats.PagesFailed, summary.Tables, summary.Index)
			return err
		},
	}

	addSourceFlags(cmd.Flags())
	cmd.Flags().StringP("format", "f", "", "Output format of the table files")
	cmd.Flags().String("section", "", "Section to write (all|head|body|foot)")
	cmd.Flags().String("null", "", "Text for positions no cell covers")
	cmd.Flags().StringP("out", "o", "", "Output directory (required)")
	cmd.Flags().Int("depth", 0, "Link depth to follow; the start page is 1")
	cmd.Flags().Int("max-pages", 0, "Maximum pages to request")
	cmd.Flags().String("match", "", "Only follow links matching this regular expression")
	cmd.Flags().String("sitemap", "", "Sitemap URL whose pages are crawled too")
	cmd.Flags().Bool("all-domains", false, "Follow links to other hosts")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the crawl summary as JSON")
	return cmd
}
