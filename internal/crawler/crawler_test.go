package crawler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"spantable/internal/crawler"
)

func TestNew_Validation(t *testing.T) {
	if _, err := crawler.New(crawler.Options{StartURL: "https://example.com", MaxPages: 10}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := crawler.New(crawler.Options{}); err != crawler.ErrStartURLRequired {
		t.Fatalf("expected ErrStartURLRequired, got %v", err)
	}
	for _, bad := range []string{"://invalid", "ftp://example.com", "page.html"} {
		if _, err := crawler.New(crawler.Options{StartURL: bad}); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func newCrawler(t *testing.T, opts crawler.Options) *crawler.Crawler {
	t.Helper()
	opts.RateLimit = 50
	opts.Timeout = 5 * time.Second
	opts.AllowAllDomains = true
	c, err := crawler.New(opts)
	if err != nil {
		t.Fatalf("create crawler: %v", err)
	}
	return c
}

func collect(t *testing.T, c *crawler.Crawler, seeds []string) ([]crawler.Page, crawler.Stats) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var pages []crawler.Page
	stats, err := c.Crawl(ctx, seeds, func(p crawler.Page) {
		pages = append(pages, p)
	})
	if err != nil {
		t.Fatalf("crawl failed: %v", err)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].URL < pages[j].URL })
	return pages, stats
}

func TestCrawl_SinglePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Test") != "yes" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body><table><tr><td>x</td></tr></table></body></html>`))
	}))
	defer srv.Close()

	c := newCrawler(t, crawler.Options{StartURL: srv.URL, MaxPages: 1, Headers: map[string]string{"X-Test": "yes"}})
	pages, stats := collect(t, c, nil)

	if stats.PagesCrawled != 1 {
		t.Errorf("expected 1 page crawled, got %d", stats.PagesCrawled)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	if !strings.Contains(string(pages[0].Body), "<table>") {
		t.Errorf("expected raw body, got %q", pages[0].Body)
	}
	if !strings.Contains(pages[0].ContentType, "charset=utf-8") {
		t.Errorf("expected content type to be kept, got %q", pages[0].ContentType)
	}
}

func TestCrawl_FollowsMatchingLinks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>
			<a href="/stats/2024">2024</a>
			<a href="/about">about</a>
			<a href="#top">top</a>
			<a href="mailto:x@example.com">mail</a>
		</body></html>`))
	})
	mux.HandleFunc("/stats/2024", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><table><tr><td>1</td></tr></table></body></html>`))
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request for %s", r.URL.Path)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newCrawler(t, crawler.Options{
		StartURL: srv.URL + "/",
		MaxPages: 10,
		MaxDepth: 2,
		Match:    regexp.MustCompile(`/stats/`),
	})
	pages, _ := collect(t, c, nil)

	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if !strings.HasSuffix(pages[1].URL, "/stats/2024") {
		t.Errorf("unexpected page %s", pages[1].URL)
	}
	if pages[1].Depth != 2 {
		t.Errorf("expected depth 2, got %d", pages[1].Depth)
	}
}

func TestCrawl_RespectsMaxPages(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>
			<a href="/page1">1</a>
			<a href="/page2">2</a>
			<a href="/page3">3</a>
			<a href="/page4">4</a>
			<a href="/page5">5</a>
		</body></html>`))
	}))
	defer srv.Close()

	c := newCrawler(t, crawler.Options{StartURL: srv.URL, MaxPages: 3, MaxDepth: 2})
	_, stats := collect(t, c, nil)

	if stats.PagesCrawled > 3 {
		t.Errorf("expected at most 3 pages crawled, got %d", stats.PagesCrawled)
	}
	if n := requests.Load(); n > 3 {
		t.Errorf("expected at most 3 requests, got %d", n)
	}
}

func TestCrawl_SeedsAndErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>home</body></html>`))
	})
	mux.HandleFunc("/data.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newCrawler(t, crawler.Options{StartURL: srv.URL + "/", MaxPages: 10, MaxDepth: 1})
	pages, stats := collect(t, c, []string{srv.URL + "/data.json", srv.URL + "/missing"})

	if stats.PagesCrawled != 1 || stats.PagesFailed != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(pages) != 2 {
		t.Fatalf("expected home page and failed page, got %d", len(pages))
	}
	if pages[1].Err == nil || !strings.HasSuffix(pages[1].URL, "/missing") {
		t.Errorf("expected failed /missing page, got %+v", pages[1])
	}
	if len(stats.Errors) != 1 {
		t.Errorf("expected one recorded error, got %v", stats.Errors)
	}
}

func TestCrawl_NoVisitAfterCancel(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><table><tr><td>late</td></tr></table></body></html>`))
	}))

	c := newCrawler(t, crawler.Options{StartURL: srv.URL, MaxPages: 1})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-entered
		cancel()
	}()

	var visits atomic.Int32
	_, err := c.Crawl(ctx, nil, func(crawler.Page) { visits.Add(1) })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	close(release)
	srv.Close()
	time.Sleep(100 * time.Millisecond)

	if n := visits.Load(); n != 0 {
		t.Errorf("expected no visits after Crawl returned, got %d", n)
	}
}
