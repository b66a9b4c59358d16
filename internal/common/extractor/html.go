package extractor

import (
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/chainjobs-ke/go-scraper/internal/common/cleaner"
	"github.com/chainjobs-ke/go-scraper/internal/common/validate"
	"github.com/chainjobs-ke/go-scraper/internal/domain"
	"github.com/chainjobs-ke/go-scraper/internal/registry"
)

const (
	// A fallback selector matching more elements than this has almost
	// certainly matched page chrome rather than job cards.
	maxContainerMatches = 500

	defaultCompany  = "Company Name Available on Site"
	defaultLocation = "Kenya"
)

// genericContainerSelectors are tried in rank order when none of a site's
// configured container selectors match.
var genericContainerSelectors = []string{
	`[class*="job"]`,
	`[class*="vacancy"]`,
	`[class*="listing"]`,
	`[class*="position"]`,
	`[class*="card"]`,
	"article",
	"li",
}

// genericFieldSelectors are content-type-keyed fallbacks applied when a
// site's configured field selectors all fail.
var genericFieldSelectors = map[string][]string{
	"title":    {"h1", "h2", "h3", "h4", "h5", ".title", `[class*="title"]`, "a"},
	"company":  {".company", `[class*="company"]`, `[class*="employer"]`},
	"location": {".location", `[class*="location"]`, `[class*="place"]`},
}

// ExtractJobsFromHTML parses a fetched page and extracts every container
// element that passes validation. A page where nothing matches yields an
// empty slice, never an error, so one misbehaving site cannot poison a run.
func ExtractJobsFromHTML(htmlText string, site *registry.JobSiteDefinition) ([]*domain.JobRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil, err
	}

	containers := findContainers(doc, site)
	if containers == nil {
		log.Printf("[%s] no job containers matched", site.Name)
		return nil, nil
	}

	var jobs []*domain.JobRecord
	containers.Each(func(_ int, el *goquery.Selection) {
		raw := extractRaw(el, site)

		if !validate.IsValidJobData(raw.Title, raw.Company, raw.Location, site.Name) {
			log.Printf("[%s] rejected candidate %q", site.Name, snippet(raw.Title))
			return
		}

		jobs = append(jobs, buildRecord(raw, site))
	})

	return jobs, nil
}

// findContainers resolves the repeating job element. The site's configured
// selectors win; generic fallbacks are accepted only at a plausible match
// count.
func findContainers(doc *goquery.Document, site *registry.JobSiteDefinition) *goquery.Selection {
	for _, sel := range splitSelectors(site.Selector("container")) {
		if matches := doc.Find(sel); matches.Length() > 0 {
			return matches
		}
	}

	for _, sel := range genericContainerSelectors {
		matches := doc.Find(sel)
		if n := matches.Length(); n > 0 && n <= maxContainerMatches {
			log.Printf("[%s] using generic container selector %q (%d matches)", site.Name, sel, n)
			return matches
		}
	}
	return nil
}

func extractRaw(el *goquery.Selection, site *registry.JobSiteDefinition) domain.RawExtraction {
	return domain.RawExtraction{
		Title:       extractTextWithFallbacks(el, site.Selector("title"), "title"),
		Company:     extractTextWithFallbacks(el, site.Selector("company"), "company"),
		Location:    extractTextWithFallbacks(el, site.Selector("location"), "location"),
		Link:        extractJobLink(el, site),
		JobType:     extractTextWithFallbacks(el, site.Selector("jobType"), ""),
		Deadline:    extractTextWithFallbacks(el, site.Selector("deadline"), ""),
		Description: extractFieldHTML(el, site.Selector("description")),
		PostedAt:    extractPostedAt(el, site),
	}
}

// extractTextWithFallbacks tries each configured selector, then the
// generic list for the field's content type. Every candidate is filtered
// through the placeholder classifier; first real text wins.
func extractTextWithFallbacks(el *goquery.Selection, configured, fieldKind string) string {
	for _, sel := range splitSelectors(configured) {
		text := strings.TrimSpace(el.Find(sel).First().Text())
		if text != "" && !validate.IsPlaceholderText(text) {
			return text
		}
	}

	for _, sel := range genericFieldSelectors[fieldKind] {
		text := strings.TrimSpace(el.Find(sel).First().Text())
		if text != "" && !validate.IsPlaceholderText(text) {
			return text
		}
	}
	return ""
}

// extractFieldHTML returns inner HTML for fields that may carry markup.
func extractFieldHTML(el *goquery.Selection, configured string) string {
	for _, sel := range splitSelectors(configured) {
		if node := el.Find(sel).First(); node.Length() > 0 {
			if h, err := node.Html(); err == nil && strings.TrimSpace(h) != "" {
				return h
			}
		}
	}
	return ""
}

// extractJobLink resolves the posting URL. Candidates failing the
// job-token check are discarded; a record without a URL keeps the site's
// listing URL instead.
func extractJobLink(el *goquery.Selection, site *registry.JobSiteDefinition) string {
	selectors := splitSelectors(site.Selector("link"))
	selectors = append(selectors, "a")

	for _, sel := range selectors {
		href, ok := el.Find(sel).First().Attr("href")
		if !ok {
			if sel == "a" {
				// The container itself may be the anchor.
				href, ok = el.Attr("href")
			}
			if !ok {
				continue
			}
		}
		if resolved, valid := validate.IsValidJobURL(href, site.URL); valid {
			return resolved
		}
	}
	return ""
}

func extractPostedAt(el *goquery.Selection, site *registry.JobSiteDefinition) string {
	if text := extractTextWithFallbacks(el, site.Selector("postedAt"), ""); text != "" {
		return text
	}
	if dt, ok := el.Find("time[datetime]").First().Attr("datetime"); ok {
		return dt
	}
	return ""
}

func buildRecord(raw domain.RawExtraction, site *registry.JobSiteDefinition) *domain.JobRecord {
	now := time.Now()

	company := cleaner.CompanyName(raw.Company)
	if company == "" {
		company = defaultCompany
	}
	location := cleaner.Location(raw.Location)
	if location == "" {
		location = defaultLocation
	}

	jobURL := raw.Link
	if jobURL == "" {
		jobURL = site.URL
	}

	return &domain.JobRecord{
		Title:          cleaner.Title(raw.Title),
		Company:        company,
		Location:       location,
		JobType:        domain.ParseJobType(raw.JobType),
		Description:    cleaner.JobDescription(raw.Description),
		JobURL:         jobURL,
		ApplicationURL: raw.Link,
		Source:         site.Name,
		Deadline:       parseLooseDate(raw.Deadline),
		SourcePostedAt: parsePostedAt(raw.PostedAt, now),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// parsePostedAt tries the formats seen across the registry's sites and
// defaults to the run time when nothing parses.
func parsePostedAt(s string, fallback time.Time) time.Time {
	if t := parseLooseDate(s); !t.IsZero() {
		return t
	}
	return fallback
}

func parseLooseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
		"02/01/2006",
		"Jan 2, 2006",
		"2 Jan 2006",
		"January 2, 2006",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func splitSelectors(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func snippet(s string) string {
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}
