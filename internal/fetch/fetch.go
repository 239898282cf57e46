package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

type Mode string

const (
	ModeAuto    Mode = "auto"
	ModeStatic  Mode = "static"
	ModeDynamic Mode = "dynamic"
)

const DefaultUserAgent = "spantable/1.0"

// maxBody bounds how much of a response is read.
const maxBody = 32 << 20

var ErrURLRequired = errors.New("url is required")

type Options struct {
	URL                string
	Mode               Mode
	Timeout            time.Duration
	UserAgent          string
	WaitForSelector    string
	Headless           bool
	RateLimitPerSecond float64
	Headers            map[string]string
	ProxyURL           string
	// CacheDir enables the on-disk page cache when non-empty.
	CacheDir string
	Logger   *slog.Logger
}

type Result struct {
	HTML string
	// ContentType is the response Content-Type; it carries the charset
	// used to decode HTML.
	ContentType string
	FinalMode   Mode
	SourceInfo  string
}

var staticFetch = fetchStatic
var dynamicFetch = fetchDynamic

func Fetch(ctx context.Context, opts Options) (Result, error) {
	if opts.URL == "" {
		return Result{}, ErrURLRequired
	}
	if opts.Timeout == 0 {
		opts.Timeout = 45 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Mode == "" {
		opts.Mode = ModeAuto
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var cachePath string
	if opts.CacheDir != "" {
		cachePath = CachePath(opts.CacheDir, opts.URL)
		if html, ok := LoadCache(cachePath); ok {
			logger.Debug("cache hit", "url", opts.URL, "path", cachePath)
			// Pages are cached as fetched; the charset is sniffed again on read.
			return Result{HTML: html, FinalMode: opts.Mode, SourceInfo: "cache"}, nil
		}
	}

	res, err := fetchMode(ctx, opts)
	if err != nil {
		return Result{}, err
	}
	logger.Debug("fetched page", "url", opts.URL, "source", res.SourceInfo, "bytes", len(res.HTML))

	if cachePath != "" {
		if err := SaveToCache(cachePath, res.HTML); err != nil {
			logger.Warn("cache write failed", "path", cachePath, "error", err)
		}
	}
	return res, nil
}

func fetchMode(ctx context.Context, opts Options) (Result, error) {
	switch opts.Mode {
	case ModeStatic:
		res, err := staticFetch(ctx, opts)
		if err != nil {
			return Result{}, err
		}
		res.FinalMode, res.SourceInfo = ModeStatic, "static"
		return res, nil
	case ModeDynamic:
		res, err := dynamicFetch(ctx, opts)
		if err != nil {
			return Result{}, err
		}
		res.FinalMode, res.SourceInfo = ModeDynamic, "dynamic"
		return res, nil
	case ModeAuto:
		res, err := staticFetch(ctx, opts)
		if err == nil && !looksDynamic(res.HTML) {
			res.FinalMode, res.SourceInfo = ModeStatic, "auto:static"
			return res, nil
		}
		res, derr := dynamicFetch(ctx, opts)
		if derr != nil {
			if err != nil {
				return Result{}, fmt.Errorf("static failed: %v; dynamic failed: %w", err, derr)
			}
			return Result{}, derr
		}
		res.FinalMode, res.SourceInfo = ModeDynamic, "auto:dynamic"
		return res, nil
	default:
		return Result{}, fmt.Errorf("unknown mode: %s", opts.Mode)
	}
}

func fetchStatic(ctx context.Context, opts Options) (Result, error) {
	if err := waitForRateLimit(ctx, opts.RateLimitPerSecond); err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("User-Agent", opts.UserAgent)
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	client := &http.Client{Timeout: opts.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Result{}, fmt.Errorf("static fetch timed out after %s", opts.Timeout)
		}
		return Result{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("http status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return Result{}, err
	}
	return Result{HTML: string(body), ContentType: resp.Header.Get("Content-Type")}, nil
}

func waitForRateLimit(ctx context.Context, ratePerSecond float64) error {
	if ratePerSecond <= 0 {
		return nil
	}
	interval := time.Duration(float64(time.Second) / ratePerSecond)
	if interval <= 0 {
		return nil
	}
	timer := time.NewTimer(interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// looksDynamic reports whether a statically fetched page probably renders
// its tables client side.
func looksDynamic(html string) bool {
	lower := strings.ToLower(html)
	if strings.Contains(lower, "<table") {
		return false
	}
	return strings.Contains(lower, "id=\"root\"") ||
		strings.Contains(lower, "id=\"app\"") ||
		strings.Contains(lower, "data-reactroot") ||
		strings.Contains(lower, "<noscript")
}
