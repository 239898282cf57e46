package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"spantable/internal/fetch"
	"spantable/internal/parse"
)

var fetchPage = fetch.Fetch

// loadDocument reads the source, narrows it to the selector and drops
// excluded nodes. It returns the document and a short description of where
// it came from.
func loadDocument(ctx context.Context, opts Options) (*goquery.Document, string, error) {
	var (
		doc  *goquery.Document
		info string
		err  error
	)
	switch {
	case opts.Source == StdinSource:
		doc, err = parse.ReadDocument(opts.Stdin, "")
		info = "stdin"
	case isURL(opts.Source):
		var res fetch.Result
		res, err = fetchResult(ctx, opts)
		if err == nil {
			doc, err = parse.ReadDocument(strings.NewReader(res.HTML), res.ContentType)
			info = res.SourceInfo
		}
	default:
		doc, err = parse.OpenFile(opts.Source)
		info = "file"
	}
	if err != nil {
		return nil, "", err
	}
	opts.Logger.Debug("document loaded", "source", opts.Source, "via", info)

	doc, err = narrow(doc, opts)
	if err != nil {
		return nil, "", err
	}
	return doc, info, nil
}

func narrow(doc *goquery.Document, opts Options) (*goquery.Document, error) {
	doc, err := parse.ExtractBySelector(doc, opts.Selector)
	if err != nil {
		return nil, err
	}
	parse.RemoveSelectors(doc, opts.Exclude)
	return doc, nil
}

func fetchResult(ctx context.Context, opts Options) (fetch.Result, error) {
	var (
		result fetch.Result
		err    error
	)
	backoffs := []time.Duration{0, time.Second, 2 * time.Second}
	for attempt := range backoffs {
		if attempt > 0 {
			opts.Logger.Warn("fetch failed, retrying", "attempt", attempt, "error", err)
			if werr := sleep(ctx, backoffs[attempt]); werr != nil {
				return fetch.Result{}, werr
			}
		}
		result, err = fetchPage(ctx, buildFetchOptions(opts))
		if err == nil || ctx.Err() != nil {
			break
		}
	}
	if err != nil {
		return fetch.Result{}, fmt.Errorf("fetching %s: %w", opts.Source, err)
	}
	return result, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func buildFetchOptions(opts Options) fetch.Options {
	return fetch.Options{
		URL:                opts.Source,
		Mode:               opts.Mode,
		Timeout:            opts.Timeout,
		UserAgent:          opts.UserAgent,
		WaitForSelector:    opts.WaitFor,
		Headless:           opts.Headless,
		RateLimitPerSecond: opts.RateLimitPerSecond,
		ProxyURL:           opts.ProxyURL,
		Headers:            opts.Headers,
		CacheDir:           opts.CacheDir,
		Logger:             opts.Logger,
	}
}
