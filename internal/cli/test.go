package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"spantable/internal/fixture"
	"spantable/internal/report"
)

var (
	passStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	skipStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func newTestCommand(load loadFunc) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "test [DIR]",
		Short: "Run the HTML fixtures",
		Long: `Run every <prefix>*.html fixture in DIR (default: the configured
fixtures directory). Each fixture holds a table and a <pre> block with the
expected frame as JSON. Files named with SKIP are skipped unless --no-skip
is given. Exits 1 when any fixture fails.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := load(cmd)
			if err != nil {
				return err
			}
			cfg := loaded.Config
			if len(args) > 0 {
				cfg.FixturesDir = args[0]
			}
			if noSkip, _ := cmd.Flags().GetBool("no-skip"); noSkip {
				cfg.Skip = false
			}

			logger := getLogger(cmd.Context())
			todo, skipped, err := fixture.Find(cfg.FixturesDir, cfg.Prefix, cfg.Skip)
			if err != nil {
				return err
			}
			if len(todo) == 0 && len(skipped) == 0 {
				return fmt.Errorf("no fixtures matching %q in %s", cfg.Prefix+"*.html", cfg.FixturesDir)
			}

			runner := fixture.Runner{Parallel: cfg.Parallel, Logger: logger}
			results, err := runner.Run(cmd.Context(), todo)
			if err != nil {
				return err
			}
			rep := report.AnalyzeRun(results, skipped)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(rep); err != nil {
					return err
				}
			} else {
				printRun(cmd.OutOrStdout(), rep)
			}
			if !rep.OK() {
				return ExitError{Code: 1, Err: fmt.Errorf("%d of %d fixture(s) failed", len(rep.Failed)+len(rep.Errored), rep.Total)}
			}
			return nil
		},
	}

	cmd.Flags().String("prefix", "", "Only run fixtures whose name starts with this")
	cmd.Flags().Bool("skip", true, "Skip fixtures marked "+fixture.SkipMarker)
	cmd.Flags().Bool("no-skip", false, "Run fixtures marked "+fixture.SkipMarker+" too")
	cmd.Flags().Bool("loud", false, "Log expected values and mismatches while running")
	cmd.Flags().IntP("parallel", "p", 0, "Fixtures checked concurrently")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the run report as JSON")
	return cmd
}

func printRun(w io.Writer, rep report.Report) {
	for _, res := range rep.Results {
		switch {
		case res.Error != "":
			fmt.Fprintf(w, "%s %s: %s\n", failStyle.Render("ERROR"), res.Name, res.Error)
		case res.Passed:
			fmt.Fprintf(w, "%s %s\n", passStyle.Render("PASS"), res.Name)
		default:
			fmt.Fprintf(w, "%s %s\n", failStyle.Render("FAIL"), res.Name)
			for _, m := range res.Mismatches {
				fmt.Fprintf(w, "    %s\n", m.Error())
			}
		}
	}
	for _, name := range rep.Skipped {
		fmt.Fprintf(w, "%s %s\n", skipStyle.Render("SKIP"), name)
	}

	parts := []string{fmt.Sprintf("%d passed", len(rep.Passed))}
	if n := len(rep.Failed); n > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", n))
	}
	if n := len(rep.Errored); n > 0 {
		parts = append(parts, fmt.Sprintf("%d errored", n))
	}
	if n := len(rep.Skipped); n > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", n))
	}
	fmt.Fprintf(w, "\n%s\n", strings.Join(parts, ", "))
}
