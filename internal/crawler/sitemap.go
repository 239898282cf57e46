package crawler

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"spantable/internal/fetch"
)

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type sitemapIndex struct {
	XMLName  xml.Name          `xml:"sitemapindex"`
	Sitemaps []sitemapLocation `xml:"sitemap"`
}

type sitemapLocation struct {
	Loc string `xml:"loc"`
}

type SitemapOptions struct {
	UserAgent string
	Timeout   time.Duration
	// Limit caps the number of URLs returned; 0 means no cap.
	Limit int
}

// maxSitemapDepth bounds how many sitemap indexes may nest.
const maxSitemapDepth = 3

// ParseSitemap returns the page URLs listed by a sitemap or sitemap index,
// de-duplicated and in document order. Child sitemaps that fail are skipped.
func ParseSitemap(ctx context.Context, sitemapURL string, opts SitemapOptions) ([]string, error) {
	if opts.UserAgent == "" {
		opts.UserAgent = fetch.DefaultUserAgent
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	seen := map[string]bool{}
	urls, err := parseSitemap(ctx, sitemapURL, opts, 0, seen)
	if err != nil {
		return nil, err
	}
	if opts.Limit > 0 && len(urls) > opts.Limit {
		urls = urls[:opts.Limit]
	}
	return urls, nil
}

func parseSitemap(ctx context.Context, sitemapURL string, opts SitemapOptions, depth int, seen map[string]bool) ([]string, error) {
	body, err := fetchSitemapContent(ctx, sitemapURL, opts)
	if err != nil {
		return nil, err
	}

	if children, ok := parseSitemapIndex(body); ok {
		if depth >= maxSitemapDepth {
			return nil, fmt.Errorf("sitemap index %s nested too deep", sitemapURL)
		}
		var all []string
		for _, child := range children {
			urls, err := parseSitemap(ctx, child, opts, depth+1, seen)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				continue
			}
			all = append(all, urls...)
		}
		return all, nil
	}

	locs, err := parseURLSet(body)
	if err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(locs))
	for _, loc := range locs {
		if seen[loc] {
			continue
		}
		seen[loc] = true
		urls = append(urls, loc)
	}
	return urls, nil
}

func fetchSitemapContent(ctx context.Context, url string, opts SitemapOptions) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", opts.UserAgent)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch sitemap: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sitemap %s returned status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read sitemap body: %w", err)
	}
	return body, nil
}

// parseSitemapIndex reports ok=false when body is not a sitemap index.
func parseSitemapIndex(body []byte) ([]string, bool) {
	var index sitemapIndex
	if err := xml.Unmarshal(body, &index); err != nil || len(index.Sitemaps) == 0 {
		return nil, false
	}
	var locs []string
	for _, s := range index.Sitemaps {
		if loc := strings.TrimSpace(s.Loc); loc != "" {
			locs = append(locs, loc)
		}
	}
	return locs, true
}

func parseURLSet(body []byte) ([]string, error) {
	var set urlset
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("parse sitemap XML: %w", err)
	}

	urls := make([]string, 0, len(set.URLs))
	for _, u := range set.URLs {
		if loc := strings.TrimSpace(u.Loc); loc != "" {
			urls = append(urls, loc)
		}
	}
	return urls, nil
}
