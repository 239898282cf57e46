// Package cli provides the spantable command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"spantable/internal/config"
)

// Version is set at build time.
var Version = "0.1.0"

type loggerKey struct{}

// ExitError carries the process exit code for an error.
type ExitError struct {
	Code int
	Err  error
}

func (e ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "error"
}

func (e ExitError) Unwrap() error { return e.Err }

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "spantable",
		Short: "Resolve rowspan and colspan in HTML tables",
		Long: `spantable reads HTML from a file, a URL or stdin and resolves every
rowspan and colspan into a plain grid of cells, section by section.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return ExitError{Code: 2, Err: err}
	})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./spantable.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	load := func(cmd *cobra.Command) (config.Loaded, error) {
		loaded, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return config.Loaded{}, err
		}
		logger := newLogger(loaded.Verbose)
		if loaded.File != "" {
			logger.Debug("using config file", "path", loaded.File)
		}
		cmd.SetContext(context.WithValue(cmd.Context(), loggerKey{}, logger))
		return loaded, nil
	}

	rootCmd.AddCommand(newDumpCommand(load))
	rootCmd.AddCommand(newInspectCommand(load))
	rootCmd.AddCommand(newHarvestCommand(load))
	rootCmd.AddCommand(newTestCommand(load))
	rootCmd.AddCommand(newInitConfigCommand(load))
	rootCmd.AddCommand(newVersionCommand(Version))
	return rootCmd
}

// loadFunc resolves the configuration for a command and stores its logger
// in the command context.
type loadFunc func(cmd *cobra.Command) (config.Loaded, error)

// Execute runs the command line and maps the outcome to an exit code.
func Execute(ctx context.Context, args []string) (int, error) {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0, nil
	}
	var exitErr ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, exitErr.Err
	}
	return 1, err
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// getLogger retrieves the logger from the command context.
func getLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

func usageError(format string, args ...any) error {
	return ExitError{Code: 2, Err: fmt.Errorf(format, args...)}
}
