// Package fetch resolves user-supplied document URLs and retrieves their raw content.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; InterviewCoach/1.0)"

// DefaultMaxRedirects bounds manual redirect probing.
const DefaultMaxRedirects = 5

// DefaultMaxBodyBytes caps how much of a response body is read.
const DefaultMaxBodyBytes = 20 << 20

// Result holds the raw content retrieved for a URL.
type Result struct {
	URL         string // URL as supplied
	ResolvedURL string // URL actually fetched
	Body        []byte
	ContentType string
	StatusCode  int
}

// Options configures the fetch behavior.
type Options struct {
	Timeout      time.Duration
	UserAgent    string
	Headers      map[string]string
	MaxRedirects int
	MaxBodyBytes int64
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:      DefaultTimeout,
		UserAgent:    DefaultUserAgent,
		MaxRedirects: DefaultMaxRedirects,
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

// Fetcher retrieves documents over HTTP.
type Fetcher struct {
	opts   *Options
	client *http.Client
	probe  *http.Client
	logger *zap.Logger
}

// New creates a Fetcher. A nil opts uses DefaultOptions.
func New(opts *Options, logger *zap.Logger) *Fetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
		probe: &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: logger,
	}
}

// Resolve maps a user-supplied URL to the URL that should be downloaded.
// Share links are rewritten to direct-download form; other URLs have their
// redirect chain probed with HEAD requests. Probing is best effort: any error
// returns the input unchanged.
func (f *Fetcher) Resolve(ctx context.Context, rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if IsShareLink(rawURL) {
		return RewriteShareLink(rawURL)
	}

	resolved, err := f.followRedirects(ctx, rawURL)
	if err != nil {
		f.logger.Debug("redirect probe failed, using original url",
			zap.String("url", rawURL), zap.Error(err))
		return rawURL
	}
	return resolved
}

func (f *Fetcher) followRedirects(ctx context.Context, rawURL string) (string, error) {
	current, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	for i := 0; i < f.opts.MaxRedirects; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, current.String(), nil)
		if err != nil {
			return "", err
		}
		req.Header.Set("User-Agent", f.opts.UserAgent)

		resp, err := f.probe.Do(req)
		if err != nil {
			return "", err
		}
		_ = resp.Body.Close()

		if resp.StatusCode < 300 || resp.StatusCode >= 400 {
			break
		}
		location := resp.Header.Get("Location")
		if location == "" {
			break
		}
		next, err := current.Parse(location)
		if err != nil {
			return "", err
		}
		if next.String() == current.String() {
			break
		}
		current = next
	}

	return current.String(), nil
}

// Fetch resolves rawURL and downloads it. HTML responses that turn out to be a
// sign-in wall fail with ErrAccessDenied.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	rawURL = strings.TrimSpace(rawURL)
	parsedURL, err := url.Parse(rawURL)
	if rawURL == "" || err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, invalidInput(rawURL, "invalid URL", err)
	}

	resolved := f.Resolve(ctx, rawURL)
	result, err := f.get(ctx, resolved)
	if err != nil {
		return result, err
	}
	result.URL = rawURL

	if IsHTML(result.ContentType) && DetectSignInWall(string(result.Body)) {
		return nil, accessDenied(resolved, "document requires sign-in")
	}

	f.logger.Debug("fetched document",
		zap.String("url", rawURL),
		zap.String("resolved_url", resolved),
		zap.String("content_type", result.ContentType),
		zap.Int("bytes", len(result.Body)))
	return result, nil
}

func (f *Fetcher) get(ctx context.Context, urlStr string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, invalidInput(urlStr, "failed to create request", err)
	}

	req.Header.Set("User-Agent", f.opts.UserAgent)
	for key, value := range f.opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, transient(urlStr, "HTTP request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodyBytes))
	if err != nil {
		return nil, transient(urlStr, "failed to read response body", err)
	}

	result := &Result{
		URL:         urlStr,
		ResolvedURL: resp.Request.URL.String(),
		Body:        bodyBytes,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return result, accessDenied(urlStr, fmt.Sprintf("HTTP status %d", resp.StatusCode))
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return result, transient(urlStr, fmt.Sprintf("HTTP status %d", resp.StatusCode), nil)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return result, invalidInput(urlStr, fmt.Sprintf("HTTP status %d", resp.StatusCode), nil)
	}

	return result, nil
}

// ExtractMainText parses HTML and returns the main body text.
// It removes noise elements using noiseSelectors, then finds content using contentSelectors.
// If no content selectors match, it falls back to the body element.
func ExtractMainText(html string, contentSelectors []string, noiseSelectors ...string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("nav, footer, header, script, style, noscript, .ad, .advertisement, .ads, .sidebar, .cookie-banner, .popup").Remove()

	if len(noiseSelectors) > 0 {
		noiseSelector := strings.Join(noiseSelectors, ", ")
		if noiseSelector != "" {
			doc.Find(noiseSelector).Remove()
		}
	}

	var mainContent *goquery.Selection
	for _, selector := range contentSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			mainContent = selection.First()
			break
		}
	}

	if mainContent == nil {
		mainContent = doc.Find("body")
	}

	return cleanWhitespace(mainContent.Text()), nil
}

// DefaultTextSelectors returns standard selectors for general web content.
func DefaultTextSelectors() []string {
	return []string{
		"main",
		"article",
		".content",
		"#content",
		".main-content",
		"#main-content",
	}
}

// JobPostingSelectors returns selectors optimized for job board pages.
func JobPostingSelectors() []string {
	return []string{
		".job-description",
		".job-content",
		"#job-description",
		"#job-content",
		".posting-content",
		".job-details",
		"[data-testid='job-description']",
		"main",
		"article",
		".content",
		"#content",
	}
}

// cleanWhitespace drops blank lines and trims the rest.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
