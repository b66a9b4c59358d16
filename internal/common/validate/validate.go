package validate

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	placeholderRunRe = regexp.MustCompile(`^[\*\-\(\)\s]+$`)
	doubleAsteriskRe = regexp.MustCompile(`\*{2,}`)
	letterRe         = regexp.MustCompile(`[a-zA-Z]`)
	digitsOnlyRe     = regexp.MustCompile(`^\d+$`)
	nonWordOnlyRe    = regexp.MustCompile(`^[\W_]+$`)
)

// nonJobTerms disqualify a title outright. These are navigation chrome and
// ad copy that generic fallback selectors routinely match.
var nonJobTerms = []string{
	"advertisement",
	"sponsored",
	"click here",
	"load more",
	"sign up",
	"log in",
	"subscribe",
	"newsletter",
	"cookie",
	"privacy policy",
	"terms of service",
	"related articles",
	"see more",
	"view all",
}

// jobURLTokens mark a path as plausibly pointing at a job posting.
var jobURLTokens = []string{
	"job", "career", "vacancy", "position", "opportunity",
	"hiring", "employment", "recruit",
}

// supplyChainKeywords gate feed-derived records, since feeds are topically
// unfiltered at the source.
var supplyChainKeywords = []string{
	"supply", "chain", "logistics", "procurement", "warehouse",
	"inventory", "shipping", "distribution", "operations", "sourcing",
	"purchasing", "freight", "transport",
}

// IsPlaceholderText reports whether s is a scraping artifact rather than
// real content: asterisk runs, "null", pure punctuation, digits-only, and
// the like. Deliberately conservative; letting garbage through is worse
// than rejecting an ambiguous short string.
func IsPlaceholderText(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return true
	}
	if placeholderRunRe.MatchString(trimmed) {
		return true
	}
	if doubleAsteriskRe.MatchString(trimmed) {
		return true
	}
	lower := strings.ToLower(trimmed)
	if lower == "null" || lower == "undefined" {
		return true
	}
	if !letterRe.MatchString(trimmed) {
		return true
	}
	if digitsOnlyRe.MatchString(trimmed) {
		return true
	}
	if nonWordOnlyRe.MatchString(trimmed) {
		return true
	}
	return false
}

// IsValidJobData is the single gate between a raw extraction and record
// construction. Title must be substantive and not blocklisted; company and
// location may be empty but must not be placeholder garbage.
func IsValidJobData(title, company, location, source string) bool {
	trimmed := strings.TrimSpace(title)
	if len(trimmed) < 3 {
		return false
	}
	if countLetters(trimmed) < 3 {
		return false
	}
	if IsPlaceholderText(trimmed) {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, term := range nonJobTerms {
		if strings.Contains(lower, term) {
			return false
		}
	}
	if c := strings.TrimSpace(company); c != "" && IsPlaceholderText(c) {
		return false
	}
	if l := strings.TrimSpace(location); l != "" && IsPlaceholderText(l) {
		return false
	}
	return true
}

// IsValidJobURL resolves raw against base and accepts only absolute
// http(s) URLs whose path or query carries a job-related token.
func IsValidJobURL(raw, base string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	resolved := ref
	if !ref.IsAbs() {
		baseURL, err := url.Parse(base)
		if err != nil {
			return "", false
		}
		resolved = baseURL.ResolveReference(ref)
	}

	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	if resolved.Host == "" {
		return "", false
	}

	lower := strings.ToLower(resolved.Path + "?" + resolved.RawQuery)
	for _, token := range jobURLTokens {
		if strings.Contains(lower, token) {
			return resolved.String(), true
		}
	}
	return "", false
}

// HasSupplyChainKeywords reports whether s mentions any supply-chain term.
func HasSupplyChainKeywords(s string) bool {
	lower := strings.ToLower(s)
	for _, kw := range supplyChainKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func countLetters(s string) int {
	count := 0
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			count++
		}
	}
	return count
}
