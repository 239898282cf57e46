package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"spantable/internal/crawler"
	"spantable/internal/output"
	"spantable/internal/parse"
)

var ErrOutDirRequired = errors.New("an output directory is required")

// HarvestOptions drives a crawl. Source is the start URL; OutDir receives
// one directory per page that has tables.
type HarvestOptions struct {
	Options
	Depth      int
	MaxPages   int
	Match      string
	Sitemap    string
	AllDomains bool
}

type PageRecord struct {
	URL    string `json:"url"`
	Dir    string `json:"dir,omitempty"`
	Tables int    `json:"tables"`
	Error  string `json:"error,omitempty"`
}

type HarvestSummary struct {
	Stats  crawler.Stats `json:"stats"`
	Pages  []PageRecord  `json:"pages"`
	Tables int           `json:"tables"`
	Index  string        `json:"index"`
}

// Harvest crawls from the start URL and writes the tables of every page it
// reaches, split the same way as Dump with OutDir. A pages.jsonl in OutDir
// lists every page visited.
func Harvest(ctx context.Context, opts HarvestOptions) (HarvestSummary, error) {
	base, err := normalizeOptions(opts.Options)
	if err != nil {
		return HarvestSummary{}, err
	}
	if !isURL(base.Source) {
		return HarvestSummary{}, fmt.Errorf("harvest needs an http(s) start URL, got %q", base.Source)
	}
	if strings.TrimSpace(base.OutDir) == "" {
		return HarvestSummary{}, ErrOutDirRequired
	}

	var match *regexp.Regexp
	if opts.Match != "" {
		if match, err = regexp.Compile(opts.Match); err != nil {
			return HarvestSummary{}, fmt.Errorf("invalid match pattern: %w", err)
		}
	}

	var seeds []string
	if opts.Sitemap != "" {
		seeds, err = crawler.ParseSitemap(ctx, opts.Sitemap, crawler.SitemapOptions{
			UserAgent: base.UserAgent,
			Timeout:   base.Timeout,
			Limit:     opts.MaxPages,
		})
		if err != nil {
			return HarvestSummary{}, err
		}
		base.Logger.Info("sitemap loaded", "sitemap", opts.Sitemap, "urls", len(seeds))
	}

	c, err := crawler.New(crawler.Options{
		StartURL:        base.Source,
		RateLimit:       base.RateLimitPerSecond,
		UserAgent:       base.UserAgent,
		Headers:         base.Headers,
		MaxDepth:        opts.Depth,
		MaxPages:        opts.MaxPages,
		Match:           match,
		Timeout:         base.Timeout,
		AllowAllDomains: opts.AllDomains,
		Logger:          base.Logger,
	})
	if err != nil {
		return HarvestSummary{}, err
	}

	summary := HarvestSummary{Pages: []PageRecord{}}
	stats, err := c.Crawl(ctx, seeds, func(p crawler.Page) {
		if ctx.Err() != nil {
			return
		}
		rec := harvestPage(p, base)
		summary.Pages = append(summary.Pages, rec)
		summary.Tables += rec.Tables
	})
	if err != nil {
		return HarvestSummary{Stats: stats}, err
	}
	summary.Stats = stats

	sort.Slice(summary.Pages, func(i, j int) bool { return summary.Pages[i].URL < summary.Pages[j].URL })
	summary.Index, err = writePages(base.OutDir, summary.Pages)
	if err != nil {
		return summary, err
	}
	base.Logger.Info("harvest done", "pages", len(summary.Pages), "tables", summary.Tables, "failed", stats.PagesFailed)
	return summary, nil
}

// harvestPage resolves the tables of one crawled page. Page level problems
// end up in the record rather than stopping the crawl.
func harvestPage(p crawler.Page, opts Options) PageRecord {
	rec := PageRecord{URL: p.URL}
	if p.Err != nil {
		rec.Error = p.Err.Error()
		return rec
	}

	doc, err := parse.ReadDocument(bytes.NewReader(p.Body), p.ContentType)
	if err == nil {
		doc, err = narrow(doc, opts)
	}
	if err != nil {
		rec.Error = err.Error()
		return rec
	}

	tables := parse.Tables(doc)
	rec.Tables = len(tables)
	if len(tables) == 0 {
		return rec
	}

	dir := output.StableID(p.URL, "")
	if _, err := output.WriteSplit(filepath.Join(opts.OutDir, dir), p.URL, tables, opts.Output); err != nil {
		opts.Logger.Error("writing page tables failed", "url", p.URL, "error", err)
		rec.Error = err.Error()
		return rec
	}
	rec.Dir = dir
	opts.Logger.Debug("page harvested", "url", p.URL, "tables", len(tables), "dir", dir)
	return rec
}

func writePages(outDir string, pages []PageRecord) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, p := range pages {
		if err := enc.Encode(p); err != nil {
			return "", err
		}
	}
	path := filepath.Join(outDir, "pages.jsonl")
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return "", err
	}
	return path, nil
}
