package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// MinContentLength is the minimum extracted text length to consider an HTTP fetch successful.
// Shorter pages are likely client-rendered and are retried in a headless browser.
const MinContentLength = 500

// ShouldUseBrowser returns true if the extracted text is too short to be the real page.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// Render loads a page in headless Chrome and returns the rendered HTML.
// Requires Chrome/Chromium to be installed on the system.
func (f *Fetcher) Render(ctx context.Context, url string) (string, error) {
	timeout := f.opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	f.logger.Info("rendering page in headless browser", zap.String("url", url))

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(f.opts.UserAgent),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", transient(url, "browser rendering failed", err)
	}

	if DetectSignInWall(html) {
		return "", accessDenied(url, "document requires sign-in")
	}

	f.logger.Debug("rendered page", zap.String("url", url), zap.Int("bytes", len(html)))
	return html, nil
}

// RenderText renders url and extracts its main text with the given selectors.
func (f *Fetcher) RenderText(ctx context.Context, url string, contentSelectors []string, noiseSelectors ...string) (string, error) {
	html, err := f.Render(ctx, url)
	if err != nil {
		return "", err
	}
	text, err := ExtractMainText(html, contentSelectors, noiseSelectors...)
	if err != nil {
		return "", fmt.Errorf("extract rendered text: %w", err)
	}
	return text, nil
}
