// Package ingestion turns fetched resumes and job postings into clean prompt-ready text.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/interview-coach/internal/fetch"
	"go.uber.org/zap"
)

// ErrConversion is returned when the document-conversion tool yields no usable result.
var ErrConversion = errors.New("document conversion failed")

// Converter converts the document at a URI to markdown.
type Converter interface {
	ConvertToMarkdown(ctx context.Context, uri string) (string, error)
}

// Normalizer produces normalized document text from URLs or raw bytes.
type Normalizer struct {
	fetcher    *fetch.Fetcher
	converter  Converter
	useBrowser bool
	logger     *zap.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithConverter routes URL normalization through a conversion tool.
func WithConverter(c Converter) Option {
	return func(n *Normalizer) { n.converter = c }
}

// WithBrowserFallback enables headless rendering for pages whose HTTP text is too short.
func WithBrowserFallback(enabled bool) Option {
	return func(n *Normalizer) { n.useBrowser = enabled }
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(n *Normalizer) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// NewNormalizer creates a Normalizer backed by fetcher.
func NewNormalizer(fetcher *fetch.Fetcher, opts ...Option) *Normalizer {
	n := &Normalizer{
		fetcher: fetcher,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.fetcher == nil {
		n.fetcher = fetch.New(nil, n.logger)
	}
	return n
}

// NormalizeURL resolves rawURL and returns its normalized text. With a converter
// configured the resolved URI is handed to it; otherwise the document is
// downloaded and decoded locally.
func (n *Normalizer) NormalizeURL(ctx context.Context, rawURL string) (*Document, error) {
	if n.converter != nil {
		return n.convert(ctx, rawURL)
	}

	result, err := n.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	text, err := n.NormalizeBytes(result.Body, result.ContentType, result.ResolvedURL)
	if err != nil {
		return nil, err
	}
	source := SourceHTTP

	if n.useBrowser && fetch.IsHTML(result.ContentType) && fetch.ShouldUseBrowser(text) {
		content, noise := fetch.SelectorsFor(result.ResolvedURL)
		rendered, renderErr := n.fetcher.RenderText(ctx, result.ResolvedURL, content, noise...)
		switch {
		case renderErr != nil:
			n.logger.Warn("browser fallback failed, keeping http text",
				zap.String("url", rawURL), zap.Error(renderErr))
		case len(rendered) > len(text):
			text = CleanText(rendered)
			source = SourceBrowser
		}
	}

	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s produced no text", ErrConversion, rawURL)
	}

	meta := NewMetadata(text, rawURL, source)
	meta.ResolvedURL = result.ResolvedURL
	meta.ContentType = result.ContentType
	meta.Platform = string(fetch.DetectPlatform(result.ResolvedURL))

	n.logger.Info("normalized document",
		zap.String("url", rawURL),
		zap.String("source", string(source)),
		zap.Int("chars", len(text)))
	return &Document{Text: text, Metadata: meta}, nil
}

func (n *Normalizer) convert(ctx context.Context, rawURL string) (*Document, error) {
	resolved := n.fetcher.Resolve(ctx, rawURL)

	markdown, err := n.converter.ConvertToMarkdown(ctx, resolved)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrConversion, err)
	}

	text := CleanText(markdown)
	if text == "" {
		return nil, fmt.Errorf("%w: converter returned no text for %s", ErrConversion, resolved)
	}

	meta := NewMetadata(text, rawURL, SourceConverter)
	meta.ResolvedURL = resolved
	meta.ContentType = "text/markdown"
	meta.Platform = string(fetch.DetectPlatform(resolved))

	n.logger.Info("converted document",
		zap.String("url", rawURL),
		zap.String("resolved_url", resolved),
		zap.Int("chars", len(text)))
	return &Document{Text: text, Metadata: meta}, nil
}

// NormalizeBytes decodes raw content and reduces it to clean text. HTML is
// stripped to its main content using selectors chosen for sourceURL.
func (n *Normalizer) NormalizeBytes(raw []byte, contentType, sourceURL string) (string, error) {
	text, err := Decode(raw, contentType)
	if err != nil {
		return "", err
	}

	if fetch.IsHTML(contentType) || looksLikeHTML(text) {
		content, noise := fetch.SelectorsFor(sourceURL)
		extracted, err := fetch.ExtractMainText(text, content, noise...)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrConversion, err)
		}
		text = extracted
	}

	return CleanText(text), nil
}

func looksLikeHTML(text string) bool {
	head := strings.ToLower(strings.TrimSpace(text))
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}
