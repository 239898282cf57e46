package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// DefaultWaitFor is the selector a rendered page must contain before its DOM
// is captured when no other selector is configured.
const DefaultWaitFor = "table"

// renderRequest is what a browser session needs to capture one page.
type renderRequest struct {
	URL       string
	UserAgent string
	Headers   map[string]string
	WaitFor   string
	Timeout   time.Duration
}

func newRenderRequest(opts Options) renderRequest {
	req := renderRequest{
		URL:       opts.URL,
		UserAgent: opts.UserAgent,
		Headers:   opts.Headers,
		WaitFor:   opts.WaitForSelector,
		Timeout:   opts.Timeout,
	}
	if req.WaitFor == "" {
		req.WaitFor = DefaultWaitFor
	}
	return req
}

type browserEngine interface {
	Start(headless bool, proxyURL string) (browserSession, error)
}

type browserSession interface {
	Render(req renderRequest) (string, error)
	Close() error
}

var (
	errNavigate = errors.New("navigate")
	errWaitFor  = errors.New("wait for selector")
)

// chromium drives a headless Chromium through playwright. The driver is
// installed on first use.
type chromium struct{}

func (chromium) Start(headless bool, proxyURL string) (browserSession, error) {
	if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
		return nil, fmt.Errorf("install playwright: %w", err)
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	launch := playwright.BrowserTypeLaunchOptions{Headless: playwright.Bool(headless)}
	if proxyURL != "" {
		launch.Proxy = &playwright.Proxy{Server: proxyURL}
	}
	browser, err := pw.Chromium.Launch(launch)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	return &chromiumSession{pw: pw, browser: browser}, nil
}

type chromiumSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

func (s *chromiumSession) Render(req renderRequest) (string, error) {
	page, err := s.browser.NewPage(playwright.BrowserNewPageOptions{
		UserAgent: playwright.String(req.UserAgent),
	})
	if err != nil {
		return "", err
	}
	defer func() {
		_ = page.Close()
	}()

	if len(req.Headers) > 0 {
		if err := page.SetExtraHTTPHeaders(req.Headers); err != nil {
			return "", err
		}
	}
	timeout := playwright.Float(float64(req.Timeout.Milliseconds()))
	if _, err := page.Goto(req.URL, playwright.PageGotoOptions{
		Timeout:   timeout,
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	}); err != nil {
		return "", fmt.Errorf("%w: %w", errNavigate, err)
	}
	if err := page.Locator(req.WaitFor).First().WaitFor(playwright.LocatorWaitForOptions{Timeout: timeout}); err != nil {
		return "", fmt.Errorf("%w %q: %w", errWaitFor, req.WaitFor, err)
	}
	return page.Content()
}

func (s *chromiumSession) Close() error {
	return errors.Join(s.browser.Close(), s.pw.Stop())
}

func fetchDynamic(ctx context.Context, opts Options) (Result, error) {
	return fetchDynamicWith(ctx, opts, chromium{})
}

// fetchDynamicWith renders the page in a browser and returns the serialized
// DOM once the network is idle and the wait-for selector has appeared.
func fetchDynamicWith(ctx context.Context, opts Options, engine browserEngine) (Result, error) {
	if err := waitForRateLimit(ctx, opts.RateLimitPerSecond); err != nil {
		return Result{}, err
	}

	session, err := engine.Start(opts.Headless, opts.ProxyURL)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		_ = session.Close()
	}()

	req := newRenderRequest(opts)
	html, err := session.Render(req)
	if err != nil {
		if errors.Is(err, playwright.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
			return Result{}, fmt.Errorf("dynamic fetch timed out after %s (try --timeout or --wait-for): %w", req.Timeout, err)
		}
		return Result{}, err
	}
	// page.Content serializes the DOM as UTF-8 whatever the source charset.
	return Result{HTML: html, ContentType: "text/html; charset=utf-8"}, nil
}
