package domain

import (
	"strings"
	"time"
)

// JobType classifies the employment arrangement of a posting.
type JobType string

const (
	JobTypeFullTime   JobType = "full_time"
	JobTypePartTime   JobType = "part_time"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
	JobTypeTemporary  JobType = "temporary"
)

// ParseJobType maps free-form employment text from a scraped page or feed
// to a JobType. Unknown text defaults to full_time, the dominant case on
// the sources we scrape.
func ParseJobType(s string) JobType {
	lower := strings.ToLower(strings.ReplaceAll(s, "_", " "))
	switch {
	case strings.Contains(lower, "part-time"), strings.Contains(lower, "part time"):
		return JobTypePartTime
	case strings.Contains(lower, "intern"):
		return JobTypeInternship
	case strings.Contains(lower, "contract"), strings.Contains(lower, "freelance"):
		return JobTypeContract
	case strings.Contains(lower, "temporary"), strings.Contains(lower, "casual"):
		return JobTypeTemporary
	default:
		return JobTypeFullTime
	}
}

// JobRecord is a validated, cleaned job posting ready for persistence.
// Records are constructed by the extractors only after the raw fields pass
// validation; unvalidated scraped data never reaches this type.
type JobRecord struct {
	Title              string    `json:"title"`
	Company            string    `json:"company"`
	Location           string    `json:"location"`
	JobType            JobType   `json:"job_type"`
	Description        string    `json:"description"`
	JobURL             string    `json:"job_url"`
	ApplicationURL     string    `json:"application_url"`
	Source             string    `json:"source"`
	Deadline           time.Time `json:"deadline,omitempty"`
	Salary             string    `json:"salary,omitempty"`
	Tags               []string  `json:"tags,omitempty"`
	Skills             []string  `json:"skills,omitempty"`
	ExperienceLevel    string    `json:"experience_level,omitempty"`
	EmploymentType     string    `json:"employment_type,omitempty"`
	IsRemote           bool      `json:"is_remote"`
	CompanyWebsite     string    `json:"company_website,omitempty"`
	CompanyDescription string    `json:"company_description,omitempty"`
	SourcePostedAt     time.Time `json:"source_posted_at"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// RawExtraction holds the as-extracted text for one candidate job element
// before cleaning. It lives only while a single container element is being
// processed.
type RawExtraction struct {
	Title       string
	Company     string
	Location    string
	Link        string
	JobType     string
	Deadline    string
	Description string
	PostedAt    string
}

// SiteStats summarizes one site's contribution to a run.
type SiteStats struct {
	Fetched  int  `json:"fetched"`
	Valid    int  `json:"valid"`
	Rejected int  `json:"rejected"`
	Failed   bool `json:"failed"`
}

// ScrapeRunResult aggregates one coordinator invocation across all sites.
type ScrapeRunResult struct {
	Jobs         []*JobRecord         `json:"jobs"`
	PerSite      map[string]SiteStats `json:"per_site"`
	Elapsed      time.Duration        `json:"elapsed"`
	FallbackUsed bool                 `json:"fallback_used"`
}
