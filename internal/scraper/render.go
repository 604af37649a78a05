package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// ChromeRenderer loads pages in headless Chromium so agenda markup built by
// scripts is present in the returned HTML.
type ChromeRenderer struct {
	// Timeout bounds a single render. Zero means Timeout.
	Timeout time.Duration
	// WaitSelector is waited for before the HTML is read. Empty means "body".
	WaitSelector string
	// ExecPath overrides the Chromium binary chromedp would find.
	ExecPath string
}

// Render navigates to url and returns the page's outer HTML.
func (r *ChromeRenderer) Render(parentCtx context.Context, url string) (string, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = Timeout
	}
	wait := r.WaitSelector
	if wait == "" {
		wait = "body"
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.UserAgent(UserAgent))
	if r.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(r.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parentCtx, allocOpts...)
	defer allocCancel()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, timeout)
	defer timeoutCancel()

	var html string
	tasks := chromedp.Tasks{
		chromedp.Navigate(url),
		chromedp.WaitReady(wait, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(ctx, tasks); err != nil {
		return "", fmt.Errorf("chromedp run failed for %s: %w", url, err)
	}
	return html, nil
}
