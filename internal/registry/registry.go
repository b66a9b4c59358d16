package registry

// JobSiteDefinition describes how to fetch and parse one job source.
// Selector values are comma-separated alternatives tried in order.
// Definitions are loaded once per run and never mutated.
type JobSiteDefinition struct {
	Name      string
	URL       string
	IsXMLFeed bool
	Selectors map[string]string

	// Per-site tuning; zero values fall back to the scraper defaults.
	TimeoutSec    int
	RetryAttempts int
	RateLimitMS   int
}

// Selector returns the configured selector string for a field, or "".
func (s *JobSiteDefinition) Selector(field string) string {
	if s.Selectors == nil {
		return ""
	}
	return s.Selectors[field]
}

// Sites returns the static source catalog. Adding or removing a source is
// an edit here, not a change to the extractors.
func Sites() []JobSiteDefinition {
	return []JobSiteDefinition{
		{
			Name: "BrighterMonday",
			URL:  "https://www.brightermonday.co.ke/jobs/supply-chain-logistics",
			Selectors: map[string]string{
				"container": "[data-cy='listing-cards-components'], .search-result, article",
				"title":     "p[data-cy='listing-title-link'], .search-result__job-title, h3 a",
				"company":   "p[data-cy='listing-company-link'], .search-result__job-meta a",
				"location":  ".search-result__location, [data-cy='listing-location']",
				"link":      "a[data-cy='listing-title-link'], h3 a",
				"jobType":   ".search-result__job-type",
				"postedAt":  ".search-result__posted-date, time",
			},
		},
		{
			Name: "MyJobMag",
			URL:  "https://www.myjobmag.co.ke/jobs-by-field/logistics-transportation",
			Selectors: map[string]string{
				"container":   "li.job-list-li, .job-list .mag-b",
				"title":       "h2 a, .job-title-text a",
				"company":     ".job-comp-name, h2 a span",
				"location":    ".job-location, li.loc",
				"link":        "h2 a, .job-title-text a",
				"description": ".job-desc, .job-details",
				"postedAt":    "#job-date, .job-date",
			},
			TimeoutSec: 60,
		},
		{
			Name: "JobWebKenya",
			URL:  "https://jobwebkenya.com/job-category/supply-chain-jobs/feed/",
			Selectors: map[string]string{
				"container": "item",
			},
			IsXMLFeed: true,
		},
		{
			Name: "KenyaJobLink",
			URL:  "https://www.kenyajoblink.com/jobs/category/procurement-supply-chain",
			Selectors: map[string]string{
				"container": ".job-item, .listing-item, article",
				"title":     ".job-title a, h2 a, h3 a",
				"company":   ".company-name, .job-company",
				"location":  ".job-location, .location",
				"link":      ".job-title a, h2 a",
			},
			RetryAttempts: 2,
		},
		{
			Name: "CareerPointKenya",
			URL:  "https://www.careerpointkenya.co.ke/category/procurement-logistics-jobs/feed/",
			Selectors: map[string]string{
				"container": "item",
			},
			IsXMLFeed: true,
		},
	}
}
