package quotes

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

const (
	defaultRenderTimeout = 30 * time.Second
	defaultSettle        = 1500 * time.Millisecond
)

// Renderer returns the markup of a page.
type Renderer interface {
	Render(ctx context.Context, url string) ([]byte, error)
}

// Render returns the markup as served, without running scripts.
func (f *Fetcher) Render(ctx context.Context, url string) ([]byte, error) {
	return f.Get(ctx, url)
}

// BrowserRenderer loads a page in headless Chrome so rate boards filled in by
// scripts are present in the returned markup. If the browser cannot start or
// the page does not load in time, the static markup from fallback is used.
type BrowserRenderer struct {
	execPath  string
	userAgent string
	timeout   time.Duration
	settle    time.Duration
	fallback  *Fetcher
}

func (b *BrowserRenderer) Render(ctx context.Context, url string) ([]byte, error) {
	page, err := b.render(ctx, url)
	if err == nil {
		return page, nil
	}
	if b.fallback == nil {
		return nil, err
	}
	logrus.WithError(err).WithField("url", url).Warn("Headless render failed; using static markup")
	return b.fallback.Get(ctx, url)
}

func (b *BrowserRenderer) render(ctx context.Context, url string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)
	if b.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(b.userAgent))
	}
	if b.execPath != "" {
		opts = append(opts, chromedp.ExecPath(b.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()
	tabCtx, cancel := context.WithTimeout(tabCtx, b.timeout)
	defer cancel()

	var markup string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// rate boards are filled by scripts after load
		chromedp.Sleep(b.settle),
		chromedp.OuterHTML("html", &markup, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("headless render of %q: %w", url, err)
	}
	return []byte(markup), nil
}

// NewBrowserRenderer starts Chrome from execPath, or from the default install
// locations when execPath is empty. fallback may be nil.
func NewBrowserRenderer(execPath, userAgent string, timeout, settle time.Duration, fallback *Fetcher) *BrowserRenderer {
	if timeout <= 0 {
		timeout = defaultRenderTimeout
	}
	if settle < 0 {
		settle = defaultSettle
	}
	return &BrowserRenderer{
		execPath:  execPath,
		userAgent: userAgent,
		timeout:   timeout,
		settle:    settle,
		fallback:  fallback,
	}
}
