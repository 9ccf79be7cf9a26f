package fetch

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// signInMarkers are page fragments that identify a login interstitial.
var signInMarkers = []string{
	"accounts.google.com/servicelogin",
	"accounts.google.com/v3/signin",
	"sign in - google accounts",
	"you need permission",
	"to continue to google drive",
}

// maxWallTextRunes is the most page text, outside forms and site chrome,
// that a sign-in interstitial is expected to carry.
const maxWallTextRunes = 200

// DetectSignInWall reports whether an HTML page is a sign-in wall rather than content.
func DetectSignInWall(html string) bool {
	lower := strings.ToLower(html)
	for _, marker := range signInMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}

	forms := doc.Find("form").FilterFunction(func(_ int, form *goquery.Selection) bool {
		if form.ParentsFiltered("header, nav, footer").Length() > 0 {
			return false
		}
		action := strings.ToLower(form.AttrOr("action", ""))
		return strings.Contains(action, "signin") || strings.Contains(action, "login") ||
			form.Find(`input[type="password"]`).Length() > 0
	})
	if forms.Length() == 0 {
		return false
	}

	// A login form next to real content is site chrome, not a wall.
	doc.Find("form, header, nav, footer, script, style, noscript").Remove()
	return utf8.RuneCountInString(cleanWhitespace(doc.Find("body").Text())) < maxWallTextRunes
}

// IsHTML reports whether a Content-Type header describes an HTML document.
func IsHTML(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml")
}
