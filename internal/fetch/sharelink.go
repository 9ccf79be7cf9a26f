package fetch

import (
	"net/url"
	"regexp"
	"strings"
)

// DirectDownloadBase is the direct-download endpoint share links are rewritten to.
const DirectDownloadBase = "https://drive.google.com/uc?export=download&id="

var shareLinkHosts = []string{"drive.google.com", "docs.google.com"}

// shareLinkPatterns are tried in order; the first capture wins.
var shareLinkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/file/d/([\w-]+)`),
	regexp.MustCompile(`[?&]id=([\w-]+)`),
	regexp.MustCompile(`/(?:document|spreadsheets|presentation)/d/([\w-]+)`),
	regexp.MustCompile(`/open\?.*?id=([\w-]+)`),
}

// IsShareLink reports whether the URL belongs to a known cloud-drive share host.
func IsShareLink(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range shareLinkHosts {
		if host == h {
			return true
		}
	}
	return false
}

// ShareLinkID extracts the file identifier from a share link.
func ShareLinkID(rawURL string) (string, bool) {
	for _, pattern := range shareLinkPatterns {
		if m := pattern.FindStringSubmatch(rawURL); len(m) == 2 {
			return m[1], true
		}
	}
	return "", false
}

// RewriteShareLink rewrites a drive share link to its direct-download form.
// Non-share URLs and share links without an identifier are returned unchanged.
// Rewriting an already-direct link yields the same URL.
func RewriteShareLink(rawURL string) string {
	if !IsShareLink(rawURL) {
		return rawURL
	}
	id, ok := ShareLinkID(rawURL)
	if !ok {
		return rawURL
	}
	return DirectDownloadBase + id
}
