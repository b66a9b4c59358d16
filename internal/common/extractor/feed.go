package extractor

import (
	"encoding/xml"
	"log"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/chainjobs-ke/go-scraper/internal/common/cleaner"
	"github.com/chainjobs-ke/go-scraper/internal/common/validate"
	"github.com/chainjobs-ke/go-scraper/internal/domain"
	"github.com/chainjobs-ke/go-scraper/internal/registry"
)

// feedDeadlineGrace is added to a feed item's publish date when the feed
// carries no explicit deadline tag.
const feedDeadlineGrace = 30 * 24 * time.Hour

const maxFeedDescriptionLen = 5000

// structuredJob mirrors a <job> element from custom job feeds.
type structuredJob struct {
	Title       string `xml:"title"`
	Company     string `xml:"company"`
	Location    string `xml:"location"`
	Description string `xml:"description"`
	Link        string `xml:"link"`
	JobType     string `xml:"job_type"`
	Deadline    string `xml:"deadline"`
}

type structuredFeed struct {
	Jobs []structuredJob `xml:"job"`
}

// rssItem mirrors an RSS 2.0 <item>.
type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

// ExtractJobsFromFeed parses feed text through three tiers of decreasing
// specificity: structured <job> elements, RSS <item> elements, then a
// permissive positional tag scan. Feed-derived records must additionally
// mention a supply-chain keyword, since feeds are topically unfiltered at
// the source.
func ExtractJobsFromFeed(xmlText string, site *registry.JobSiteDefinition) ([]*domain.JobRecord, error) {
	if jobs := extractStructuredJobs(xmlText, site); len(jobs) > 0 {
		return jobs, nil
	}
	if jobs := extractRSSItems(xmlText, site); len(jobs) > 0 {
		return jobs, nil
	}
	jobs := extractGenericTags(xmlText, site)
	if len(jobs) > 0 {
		log.Printf("[%s] generic tag scan yielded %d jobs", site.Name, len(jobs))
	}
	return jobs, nil
}

func extractStructuredJobs(xmlText string, site *registry.JobSiteDefinition) []*domain.JobRecord {
	var feed structuredFeed
	if err := lenientUnmarshal(xmlText, &feed); err != nil || len(feed.Jobs) == 0 {
		return nil
	}

	var jobs []*domain.JobRecord
	for _, item := range feed.Jobs {
		title := cleaner.FeedDescription(item.Title)
		desc := cleaner.FeedDescription(item.Description)
		company := cleaner.FeedDescription(item.Company)
		location := cleaner.FeedDescription(item.Location)

		if !validate.IsValidJobData(title, company, location, site.Name) {
			continue
		}
		if !validate.HasSupplyChainKeywords(title) && !validate.HasSupplyChainKeywords(desc) {
			continue
		}

		jobs = append(jobs, buildFeedRecord(title, company, location, desc, item.Link, item.JobType, parseLooseDate(item.Deadline), time.Time{}, site))
	}
	return jobs
}

func extractRSSItems(xmlText string, site *registry.JobSiteDefinition) []*domain.JobRecord {
	var feed rssFeed
	if err := lenientUnmarshal(xmlText, &feed); err != nil || len(feed.Channel.Items) == 0 {
		return nil
	}

	var jobs []*domain.JobRecord
	for _, item := range feed.Channel.Items {
		if job := rssItemToRecord(item, site); job != nil {
			jobs = append(jobs, job)
		}
	}
	return jobs
}

func rssItemToRecord(item rssItem, site *registry.JobSiteDefinition) *domain.JobRecord {
	title := cleaner.FeedDescription(item.Title)
	desc := cleaner.FeedDescription(item.Description)

	// RSS items rarely carry company/location tags; infer from the body.
	company := inferCompany(desc)
	location := inferLocation(desc)

	if !validate.IsValidJobData(title, company, location, site.Name) {
		return nil
	}
	if !validate.HasSupplyChainKeywords(title) && !validate.HasSupplyChainKeywords(desc) {
		return nil
	}

	published := parseFeedDate(item.PubDate)
	var deadline time.Time
	if !published.IsZero() {
		deadline = published.Add(feedDeadlineGrace)
	}

	return buildFeedRecord(title, company, location, desc, item.Link, "", deadline, published, site)
}

var genericTagRe = regexp.MustCompile(`(?is)<(title|link|description|company|location|pubDate)\b[^>]*>(.*?)</\s*(?:title|link|description|company|location|pubDate)\s*>`)

// extractGenericTags is the scanner of last resort for feeds that match
// neither known shape: same-named tags are collected positionally and
// zipped into candidate records by index.
func extractGenericTags(xmlText string, site *registry.JobSiteDefinition) []*domain.JobRecord {
	fields := map[string][]string{}
	for _, m := range genericTagRe.FindAllStringSubmatch(xmlText, -1) {
		tag := strings.ToLower(m[1])
		fields[tag] = append(fields[tag], m[2])
	}

	titles := fields["title"]
	if len(titles) == 0 {
		return nil
	}

	var jobs []*domain.JobRecord
	for i, rawTitle := range titles {
		item := rssItem{
			Title:       rawTitle,
			Link:        at(fields["link"], i),
			Description: at(fields["description"], i),
			PubDate:     at(fields["pubdate"], i),
		}
		job := rssItemToRecord(item, site)
		if job == nil {
			continue
		}
		// Honor discrete company/location tags when the feed has them.
		if c := cleaner.FeedDescription(at(fields["company"], i)); c != "" && !validate.IsPlaceholderText(c) {
			job.Company = cleaner.CompanyName(c)
		}
		if l := cleaner.FeedDescription(at(fields["location"], i)); l != "" && !validate.IsPlaceholderText(l) {
			job.Location = cleaner.Location(l)
		}
		jobs = append(jobs, job)
	}
	return jobs
}

func buildFeedRecord(title, company, location, desc, link, jobType string, deadline, published time.Time, site *registry.JobSiteDefinition) *domain.JobRecord {
	now := time.Now()

	cleanCompany := cleaner.CompanyName(company)
	if cleanCompany == "" {
		cleanCompany = defaultCompany
	}
	cleanLocation := cleaner.Location(location)
	if cleanLocation == "" {
		cleanLocation = defaultLocation
	}

	// Same rule as the HTML path: a link that fails the job-URL check is
	// discarded and the record keeps the site's listing URL.
	jobURL := site.URL
	if resolved, ok := validate.IsValidJobURL(link, site.URL); ok {
		jobURL = resolved
	}

	if jobType == "" {
		jobType = extractEmploymentType(desc)
	}
	if published.IsZero() {
		published = now
	}

	return &domain.JobRecord{
		Title:              cleaner.Title(title),
		Company:            cleanCompany,
		Location:           cleanLocation,
		JobType:            domain.ParseJobType(jobType),
		Description:        truncate(desc, maxFeedDescriptionLen),
		JobURL:             jobURL,
		ApplicationURL:     jobURL,
		Source:             site.Name,
		Deadline:           deadline,
		Salary:             extractSalary(desc),
		Skills:             extractSkills(desc),
		ExperienceLevel:    extractExperienceLevel(desc),
		EmploymentType:     extractEmploymentType(desc),
		IsRemote:           isRemote(title + " " + desc),
		CompanyWebsite:     extractCompanyWebsite(desc),
		CompanyDescription: extractCompanyDescription(desc),
		SourcePostedAt:     published,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// parseFeedDate handles the pubDate formats seen in the wild.
func parseFeedDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	formats := []string{
		time.RFC1123Z,
		time.RFC1123,
		time.RFC822Z,
		time.RFC822,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// lenientUnmarshal decodes XML tolerating the encoding sloppiness real
// feeds exhibit (unknown charsets, unescaped entities).
func lenientUnmarshal(xmlText string, v any) error {
	dec := xml.NewDecoder(strings.NewReader(xmlText))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity
	return dec.Decode(v)
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	// Never cut in the middle of a multi-byte rune.
	for maxLen > 0 && !utf8.RuneStart(s[maxLen]) {
		maxLen--
	}
	return strings.TrimSpace(s[:maxLen])
}
