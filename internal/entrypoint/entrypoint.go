package entrypoint

import (
	"context"
	"os/signal"
	"syscall"

	"spantable/internal/cli"
)

// Execute runs the command line for args (without the program name) and
// returns the exit code.
func Execute(args []string) (int, error) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return cli.Execute(ctx, args)
}
