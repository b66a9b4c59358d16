package extractor

import (
	"regexp"
	"strings"
)

// Regex heuristics applied to feed description bodies. Each returns its
// zero value on no match; none are required for record validity.
var (
	companyLabelRe  = regexp.MustCompile(`(?i)\bcompany\s*:\s*([^,.;\n]{2,80})`)
	companyAtRe     = regexp.MustCompile(`(?i)\bat\s+([A-Z][A-Za-z0-9&'.\- ]{2,60})(?:\s+(?:is|are|seeks|requires|in)\b|[,.;]|$)`)
	locationLabelRe = regexp.MustCompile(`(?i)\blocation\s*:\s*([^,.;\n]{2,80})`)
	locationInRe    = regexp.MustCompile(`(?i)\bin\s+([A-Z][A-Za-z\- ]{2,40},\s*Kenya)`)

	skillsLabelRe     = regexp.MustCompile(`(?i)(?:required skills|skills required|key skills|qualifications)\s*:\s*([^.\n]{3,300})`)
	experienceRe      = regexp.MustCompile(`(?i)(\d+)\s*\+?\s*years?(?:\s+of)?\s+experience`)
	salaryAmountRe    = regexp.MustCompile(`(?i)(?:KSH|KES)\.?\s*[\d,]+(?:\s*(?:-|to)\s*(?:KSH|KES)?\.?\s*[\d,]+)?`)
	salaryLabelRe     = regexp.MustCompile(`(?i)\bsalary\s*:\s*([^,.;\n]{2,80})`)
	companyWebsiteRe  = regexp.MustCompile(`(?i)(?:website|visit)\s*:?\s*(https?://[^\s<>"]+)`)
	aboutUsRe         = regexp.MustCompile(`(?i)(?:about us|about the company|who we are)\s*:?\s*([^\n]{10,400})`)
	employmentTypeRes = []struct {
		re    *regexp.Regexp
		label string
	}{
		{regexp.MustCompile(`(?i)\bfull[\s-]?time\b`), "full_time"},
		{regexp.MustCompile(`(?i)\bpart[\s-]?time\b`), "part_time"},
		{regexp.MustCompile(`(?i)\b(?:contract|fixed[\s-]?term)\b`), "contract"},
		{regexp.MustCompile(`(?i)\bintern(?:ship)?\b`), "internship"},
		{regexp.MustCompile(`(?i)\b(?:freelance|consultant)\b`), "contract"},
		{regexp.MustCompile(`(?i)\b(?:temporary|casual)\b`), "temporary"},
	}
)

func inferCompany(desc string) string {
	if m := companyLabelRe.FindStringSubmatch(desc); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := companyAtRe.FindStringSubmatch(desc); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func inferLocation(desc string) string {
	if m := locationLabelRe.FindStringSubmatch(desc); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := locationInRe.FindStringSubmatch(desc); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func extractSkills(desc string) []string {
	m := skillsLabelRe.FindStringSubmatch(desc)
	if m == nil {
		return nil
	}

	parts := strings.FieldsFunc(m[1], func(r rune) bool {
		return r == ',' || r == ';'
	})

	var skills []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			skills = append(skills, trimmed)
		}
	}
	return skills
}

func extractExperienceLevel(desc string) string {
	if m := experienceRe.FindStringSubmatch(desc); m != nil {
		return m[1] + " years"
	}
	return ""
}

func extractSalary(desc string) string {
	if m := salaryAmountRe.FindString(desc); m != "" {
		return strings.TrimSpace(m)
	}
	if m := salaryLabelRe.FindStringSubmatch(desc); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func extractEmploymentType(desc string) string {
	for _, et := range employmentTypeRes {
		if et.re.MatchString(desc) {
			return et.label
		}
	}
	return ""
}

func isRemote(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "remote") || strings.Contains(lower, "work from home")
}

func extractCompanyWebsite(desc string) string {
	if m := companyWebsiteRe.FindStringSubmatch(desc); m != nil {
		return strings.TrimRight(m[1], ".,;)")
	}
	return ""
}

func extractCompanyDescription(desc string) string {
	if m := aboutUsRe.FindStringSubmatch(desc); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
