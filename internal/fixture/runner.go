package fixture

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

type Result struct {
	Path       string        `json:"path"`
	Name       string        `json:"name"`
	Passed     bool          `json:"passed"`
	Mismatches []Mismatch    `json:"mismatches,omitempty"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
}

type Runner struct {
	// Parallel bounds concurrent fixtures; values below 1 mean 1.
	Parallel int
	Logger   *slog.Logger
}

// Run checks every fixture in paths and returns one Result per path, in
// input order. Fixtures that fail to load are failed results, not errors.
// The error is non-nil only when ctx ends before all fixtures ran.
func (r Runner) Run(ctx context.Context, paths []string) ([]Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	results := make([]Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.Parallel, 1))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = runOne(path, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func runOne(path string, logger *slog.Logger) Result {
	start := time.Now()
	logger.Info("running fixture", "path", path)

	c, err := Load(path)
	if err != nil {
		logger.Error("fixture failed to load", "path", path, "error", err)
		return Result{Path: path, Name: fixtureName(path), Error: err.Error(), Duration: time.Since(start)}
	}

	for _, key := range c.Expect.Keys() {
		logger.Debug("expected", "fixture", c.Name, "key", key, "value", c.Expect.Describe(key))
	}
	logger.Debug("frame", "fixture", c.Name, "frame", c.Frame.String())

	mismatches := c.Check()
	for _, m := range mismatches {
		logger.Debug(m.Message, "fixture", c.Name, "got", m.Got, "want", m.Want)
	}
	res := Result{
		Path:       path,
		Name:       c.Name,
		Passed:     len(mismatches) == 0,
		Mismatches: mismatches,
		Duration:   time.Since(start),
	}
	logger.Info("fixture done", "fixture", c.Name, "passed", res.Passed, "mismatches", len(mismatches))
	return res
}
