package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"

	"spantable/internal/fetch"
)

var (
	ErrStartURLRequired = errors.New("start URL is required")
	ErrPageLimit        = errors.New("max pages limit reached")
)

type Options struct {
	StartURL    string
	RateLimit   float64 // requests per second per domain
	Parallelism int
	UserAgent   string
	Headers     map[string]string
	MaxDepth    int            // link depth, the start page is depth 1
	MaxPages    int            // pages requested, start page included
	Match       *regexp.Regexp // only follow links matching this
	Timeout     time.Duration
	// AllowAllDomains follows links off the start host.
	AllowAllDomains bool
	Logger          *slog.Logger
}

// Page is one fetched document. Body is the raw response body, to be
// decoded with ContentType.
type Page struct {
	URL         string
	Depth       int
	Body        []byte
	ContentType string
	Err         error
}

type Stats struct {
	StartedAt    time.Time `json:"started_at"`
	CompletedAt  time.Time `json:"completed_at"`
	PagesCrawled int       `json:"pages_crawled"`
	PagesFailed  int       `json:"pages_failed"`
	Errors       []string  `json:"errors,omitempty"`
}

// Crawler walks a site breadth-first from a start URL and hands every
// HTML response to a visit function. Visits are serialised.
type Crawler struct {
	collector *colly.Collector
	opts      Options
	logger    *slog.Logger

	mu       sync.Mutex
	stats    Stats
	urlCount int
	visit    func(Page)
	ctx      context.Context
}

func New(opts Options) (*Crawler, error) {
	baseURL, err := validateAndNormalizeOptions(&opts)
	if err != nil {
		return nil, err
	}

	collectorOpts := []colly.CollectorOption{
		colly.MaxDepth(opts.MaxDepth),
		colly.Async(true),
		colly.UserAgent(opts.UserAgent),
	}
	if !opts.AllowAllDomains {
		collectorOpts = append(collectorOpts, colly.AllowedDomains(baseURL.Hostname()))
	}
	c := colly.NewCollector(collectorOpts...)
	configureRateLimiting(c, opts)

	cr := &Crawler{
		collector: c,
		opts:      opts,
		logger:    opts.Logger,
		ctx:       context.Background(),
	}
	cr.setupCallbacks(c)
	return cr, nil
}

func validateAndNormalizeOptions(opts *Options) (*url.URL, error) {
	if strings.TrimSpace(opts.StartURL) == "" {
		return nil, ErrStartURLRequired
	}
	baseURL, err := url.Parse(opts.StartURL)
	if err != nil {
		return nil, fmt.Errorf("invalid start URL: %w", err)
	}
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid start URL %q: want http or https", opts.StartURL)
	}

	if opts.Parallelism <= 0 {
		opts.Parallelism = 2
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 2
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 100
	}
	if opts.UserAgent == "" {
		opts.UserAgent = fetch.DefaultUserAgent
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 1.0
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return baseURL, nil
}

func configureRateLimiting(c *colly.Collector, opts Options) {
	delay := time.Duration(float64(time.Second) / opts.RateLimit)
	_ = c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: opts.Parallelism,
		Delay:       delay,
	})

	if opts.Timeout > 0 {
		c.SetRequestTimeout(opts.Timeout)
	}
}

func (cr *Crawler) setupCallbacks(c *colly.Collector) {
	c.OnRequest(cr.handleRequest)
	c.OnResponse(cr.handleResponse)
	c.OnHTML("a[href]", cr.handleLink)
	c.OnError(cr.handleError)
}

func (cr *Crawler) handleRequest(r *colly.Request) {
	if cr.ctx.Err() != nil {
		r.Abort()
		return
	}
	for k, v := range cr.opts.Headers {
		r.Headers.Set(k, v)
	}
	cr.logger.Debug("crawling", "url", r.URL.String(), "depth", r.Depth)
}

func (cr *Crawler) handleResponse(r *colly.Response) {
	contentType := r.Headers.Get("Content-Type")
	if contentType != "" && !strings.Contains(strings.ToLower(contentType), "html") {
		cr.logger.Debug("skipping non-HTML response", "url", r.Request.URL.String(), "content_type", contentType)
		return
	}

	cr.mu.Lock()
	defer cr.mu.Unlock()
	cr.stats.PagesCrawled++
	if cr.visit != nil {
		cr.visit(Page{
			URL:         r.Request.URL.String(),
			Depth:       r.Request.Depth,
			Body:        r.Body,
			ContentType: contentType,
		})
	}
}

func (cr *Crawler) handleLink(e *colly.HTMLElement) {
	link := e.Attr("href")
	if !isValidLink(link) {
		return
	}

	absURL := e.Request.AbsoluteURL(link)
	if absURL == "" {
		return
	}
	if cr.opts.Match != nil && !cr.opts.Match.MatchString(absURL) {
		return
	}
	if !cr.incrementURLCount() {
		return
	}
	_ = e.Request.Visit(absURL)
}

func (cr *Crawler) handleError(r *colly.Response, err error) {
	urlStr := r.Request.URL.String()
	cr.logger.Warn("crawl request failed", "url", urlStr, "status", r.StatusCode, "error", err)

	cr.mu.Lock()
	defer cr.mu.Unlock()
	cr.stats.PagesFailed++
	cr.stats.Errors = append(cr.stats.Errors, fmt.Sprintf("%s: %v", urlStr, err))
	if cr.visit != nil {
		cr.visit(Page{URL: urlStr, Depth: r.Request.Depth, Err: err})
	}
}

func (cr *Crawler) incrementURLCount() bool {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	if cr.urlCount >= cr.opts.MaxPages {
		return false
	}
	cr.urlCount++
	return true
}

func isValidLink(link string) bool {
	if link == "" {
		return false
	}
	return !strings.HasPrefix(link, "#") &&
		!strings.HasPrefix(link, "javascript:") &&
		!strings.HasPrefix(link, "mailto:")
}

// Crawl visits the start URL plus any extra seeds, follows links up to the
// configured depth and page count, and calls visit for every page. A
// Crawler runs once.
func (cr *Crawler) Crawl(ctx context.Context, seeds []string, visit func(Page)) (Stats, error) {
	cr.mu.Lock()
	cr.ctx = ctx
	cr.visit = visit
	cr.stats = Stats{StartedAt: time.Now()}
	cr.urlCount = 1
	cr.mu.Unlock()

	if err := cr.collector.Visit(cr.opts.StartURL); err != nil {
		return cr.snapshot(), fmt.Errorf("failed to start crawl: %w", err)
	}
	for _, seed := range seeds {
		if seed == cr.opts.StartURL {
			continue
		}
		if err := cr.addURL(seed); err != nil {
			if errors.Is(err, ErrPageLimit) {
				break
			}
			cr.logger.Warn("skipping seed", "url", seed, "error", err)
		}
	}

	done := make(chan struct{})
	go func() {
		cr.collector.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		// Requests still in flight finish in the background; none of them
		// reach visit once Crawl has returned.
		cr.mu.Lock()
		cr.visit = nil
		cr.mu.Unlock()
		return cr.snapshot(), ctx.Err()
	case <-done:
	}

	cr.mu.Lock()
	cr.stats.CompletedAt = time.Now()
	cr.mu.Unlock()
	return cr.snapshot(), nil
}

func (cr *Crawler) addURL(u string) error {
	if !cr.incrementURLCount() {
		return ErrPageLimit
	}
	return cr.collector.Visit(u)
}

func (cr *Crawler) snapshot() Stats {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	s := cr.stats
	s.Errors = append([]string(nil), cr.stats.Errors...)
	return s
}
