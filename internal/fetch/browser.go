package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserFetcher renders a page in headless Chrome before returning its
// HTML. Some document viewers populate the page body from script, so a
// plain GET sees an empty shell; rendering first recovers the content.
//
// The returned bytes are the serialized DOM and are always UTF-8.
type BrowserFetcher struct {
	Timeout time.Duration
}

// NewBrowserFetcher returns a browser fetcher with the given timeout;
// zero means DefaultTimeout.
func NewBrowserFetcher(timeout time.Duration) *BrowserFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &BrowserFetcher{Timeout: timeout}
}

// Fetch navigates to rawURL, waits for the document to become ready and
// returns the rendered outer HTML.
func (f *BrowserFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, f.Timeout)
	defer cancelRun()

	var rendered string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &rendered, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", rawURL, err)
	}
	return []byte(rendered), nil
}
