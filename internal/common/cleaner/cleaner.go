package cleaner

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/chainjobs-ke/go-scraper/internal/common/validate"
)

const (
	maxTitleLen       = 255
	maxCompanyLen     = 200
	maxLocationLen    = 100
	maxDescriptionLen = 5000
	minDescriptionLen = 10
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	// Whitelist for short fields: word chars, space, and common punctuation
	// that appears in legitimate titles and company names.
	disallowedRe = regexp.MustCompile(`[^\w\s\-&().,]`)

	// CDATA markers arrive in several encodings because upstream feed
	// generators double-encode. Open and close markers are stripped
	// independently; a feed may emit one without the other.
	cdataOpenRe  = regexp.MustCompile(`(?i)(<!\[CDATA\[|&lt;!\[CDATA\[|&#60;!\[CDATA\[|&#x3C;!\[CDATA\[)`)
	cdataCloseRe = regexp.MustCompile(`(\]\]>|\]\]&gt;|\]\]&#62;|\]\]&#x3E;)`)

	strictPolicy = bluemonday.StrictPolicy()
)

// Title normalizes a scraped job title: whitespace collapse, character
// whitelist, trim, truncate.
func Title(s string) string {
	return cleanShortField(s, maxTitleLen)
}

// CompanyName normalizes a scraped company name.
func CompanyName(s string) string {
	return cleanShortField(s, maxCompanyLen)
}

// Location normalizes a scraped location string.
func Location(s string) string {
	return cleanShortField(s, maxLocationLen)
}

// JobDescription strips markup from an HTML-scraped description and
// normalizes whitespace. Residual content under 10 characters, or content
// that classifies as placeholder, yields an empty string.
func JobDescription(s string) string {
	text := strictPolicy.Sanitize(s)
	text = html.UnescapeString(text)
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	if len(text) < minDescriptionLen || validate.IsPlaceholderText(text) {
		return ""
	}
	return truncate(text, maxDescriptionLen)
}

// FeedDescription cleans a description taken from an XML/RSS feed. Feeds
// wrap descriptions in CDATA sections that upstream generators frequently
// double-encode, so the markers are removed across all known encodings
// before tags are stripped and entities decoded.
func FeedDescription(s string) string {
	text := cdataOpenRe.ReplaceAllString(s, "")
	text = cdataCloseRe.ReplaceAllString(text, "")

	// Decode first so entity-encoded tags become real tags, then strip.
	text = html.UnescapeString(text)
	text = strictPolicy.Sanitize(text)
	text = html.UnescapeString(text)

	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// StripHTML removes all markup and returns plain text.
func StripHTML(s string) string {
	return html.UnescapeString(strictPolicy.Sanitize(s))
}

func cleanShortField(s string, maxLen int) string {
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = disallowedRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return truncate(s, maxLen)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	// Back off to a rune boundary so the cut never splits a multi-byte
	// character into invalid UTF-8.
	for maxLen > 0 && !utf8.RuneStart(s[maxLen]) {
		maxLen--
	}
	return strings.TrimSpace(s[:maxLen])
}
