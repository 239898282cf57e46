package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"spantable/internal/config"
	"spantable/internal/fetch"
	"spantable/internal/output"
)

const (
	DefaultTimeoutSeconds = 45
	DefaultUserAgent      = fetch.DefaultUserAgent
	// StdinSource reads the document from standard input.
	StdinSource = "-"
)

var ErrSourceRequired = errors.New("a file, url or - is required")

type Options struct {
	Source     string
	Selector   string
	Exclude    string
	TableIndex int
	All        bool
	Output     output.Options
	OutDir     string

	Mode               fetch.Mode
	Timeout            time.Duration
	UserAgent          string
	WaitFor            string
	Headless           bool
	RateLimitPerSecond float64
	ProxyURL           string
	Headers            map[string]string
	CacheDir           string

	Stdin  io.Reader
	Out    io.Writer
	Logger *slog.Logger
}

// OptionsFromConfig maps a resolved configuration onto Options.
func OptionsFromConfig(cfg config.Config) (Options, error) {
	format, err := output.ParseFormat(cfg.Format)
	if err != nil {
		return Options{}, err
	}
	part, err := output.ParsePart(cfg.Section)
	if err != nil {
		return Options{}, err
	}
	mode := fetch.Mode(strings.ToLower(cfg.Mode))
	switch mode {
	case "", fetch.ModeAuto, fetch.ModeStatic, fetch.ModeDynamic:
	default:
		return Options{}, fmt.Errorf("unknown mode %q (want auto, static or dynamic)", cfg.Mode)
	}
	return Options{
		Source:             cfg.Source,
		Selector:           cfg.Selector,
		Exclude:            cfg.Exclude,
		TableIndex:         cfg.TableIndex,
		All:                cfg.All,
		Output:             output.Options{Format: format, Part: part, NullText: cfg.NullText},
		OutDir:             cfg.OutDir,
		Mode:               mode,
		Timeout:            time.Duration(cfg.TimeoutSeconds) * time.Second,
		UserAgent:          cfg.UserAgent,
		WaitFor:            cfg.WaitForSelector,
		Headless:           cfg.Headless,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		ProxyURL:           cfg.ProxyURL,
		Headers:            cfg.Headers,
		CacheDir:           cfg.CacheDir,
	}, nil
}

func normalizeOptions(opts Options) (Options, error) {
	if strings.TrimSpace(opts.Source) == "" {
		return opts, ErrSourceRequired
	}
	if opts.TableIndex < 0 {
		return opts, fmt.Errorf("table index must be >= 0, got %d", opts.TableIndex)
	}
	if opts.Mode == "" {
		opts.Mode = fetch.ModeAuto
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Duration(DefaultTimeoutSeconds) * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return opts, nil
}

// isURL reports whether source names an http(s) resource rather than a
// local file.
func isURL(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
