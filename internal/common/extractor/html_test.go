package extractor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainjobs-ke/go-scraper/internal/registry"
)

func htmlSite(selectors map[string]string) *registry.JobSiteDefinition {
	return &registry.JobSiteDefinition{
		Name:      "test-site",
		URL:       "https://example.com/jobs",
		Selectors: selectors,
	}
}

func TestExtractJobsFromHTMLConfiguredSelectors(t *testing.T) {
	html := `
	<html><body>
		<div class="vacancy-row">
			<h3 class="role">Supply Chain Analyst</h3>
			<span class="employer">Acme Ltd</span>
			<span class="where">Nairobi</span>
			<a class="apply" href="/careers/123">Apply</a>
		</div>
		<div class="vacancy-row">
			<h3 class="role">Procurement Officer</h3>
			<span class="employer">Beta Co</span>
			<span class="where">Mombasa</span>
			<a class="apply" href="https://example.com/jobs/456">Apply</a>
		</div>
	</body></html>`

	site := htmlSite(map[string]string{
		"container": ".no-match, .vacancy-row",
		"title":     ".role",
		"company":   ".employer",
		"location":  ".where",
		"link":      "a.apply",
	})

	jobs, err := ExtractJobsFromHTML(html, site)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "Supply Chain Analyst", jobs[0].Title)
	assert.Equal(t, "Acme Ltd", jobs[0].Company)
	assert.Equal(t, "Nairobi", jobs[0].Location)
	assert.Equal(t, "https://example.com/careers/123", jobs[0].JobURL)
	assert.Equal(t, "test-site", jobs[0].Source)

	assert.Equal(t, "Procurement Officer", jobs[1].Title)
	assert.Equal(t, "https://example.com/jobs/456", jobs[1].JobURL)
}

func TestExtractJobsFromHTMLFallbackContainer(t *testing.T) {
	// Primary container selector matches nothing; the generic
	// class-substring fallback picks up the job cards.
	html := `
	<html><body>
		<div class="job-card"><h3>Warehouse Supervisor</h3></div>
		<div class="job-card"><h3>Logistics Coordinator</h3></div>
		<div class="job-card"><h3>****</h3></div>
	</body></html>`

	site := htmlSite(map[string]string{
		"container": ".does-not-exist",
	})

	jobs, err := ExtractJobsFromHTML(html, site)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "Warehouse Supervisor", jobs[0].Title)
	assert.Equal(t, "Logistics Coordinator", jobs[1].Title)
}

func TestExtractJobsFromHTMLFieldFallbacks(t *testing.T) {
	// Configured field selectors fail; the content-type generic lists
	// recover title, company and location.
	html := `
	<html><body>
		<article>
			<h2>Fleet Operations Manager</h2>
			<div class="company-name">Gamma Logistics</div>
			<div class="job-location">Kisumu</div>
		</article>
	</body></html>`

	site := htmlSite(map[string]string{
		"container": "article",
		"title":     ".missing-title",
		"company":   ".missing-company",
		"location":  ".missing-location",
	})

	jobs, err := ExtractJobsFromHTML(html, site)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Fleet Operations Manager", jobs[0].Title)
	assert.Equal(t, "Gamma Logistics", jobs[0].Company)
	assert.Equal(t, "Kisumu", jobs[0].Location)
}

func TestExtractJobsFromHTMLDefaults(t *testing.T) {
	html := `
	<html><body>
		<div class="listing"><h3 class="t">Inventory Clerk</h3></div>
	</body></html>`

	site := htmlSite(map[string]string{
		"container": ".listing",
		"title":     ".t",
	})

	jobs, err := ExtractJobsFromHTML(html, site)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Company Name Available on Site", jobs[0].Company)
	assert.Equal(t, "Kenya", jobs[0].Location)
	// No valid job link: the record keeps the site's listing URL.
	assert.Equal(t, site.URL, jobs[0].JobURL)
}

func TestExtractJobsFromHTMLRejectsNonJobURLs(t *testing.T) {
	html := `
	<html><body>
		<div class="listing">
			<h3 class="t">Shipping Coordinator</h3>
			<a href="https://example.com/about">About us</a>
		</div>
	</body></html>`

	site := htmlSite(map[string]string{
		"container": ".listing",
		"title":     ".t",
		"link":      "a",
	})

	jobs, err := ExtractJobsFromHTML(html, site)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, site.URL, jobs[0].JobURL)
	assert.Empty(t, jobs[0].ApplicationURL)
}

func TestExtractJobsFromHTMLPostedAt(t *testing.T) {
	html := `
	<html><body>
		<div class="listing">
			<h3 class="t">Distribution Planner</h3>
			<time datetime="2026-03-15T09:00:00Z">15 March</time>
		</div>
	</body></html>`

	site := htmlSite(map[string]string{
		"container": ".listing",
		"title":     ".t",
	})

	jobs, err := ExtractJobsFromHTML(html, site)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	want := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	assert.True(t, jobs[0].SourcePostedAt.Equal(want), "got %s", jobs[0].SourcePostedAt)
}

func TestExtractJobsFromHTMLNothingMatches(t *testing.T) {
	site := htmlSite(map[string]string{"container": ".jobs"})
	jobs, err := ExtractJobsFromHTML("<html><body><p>maintenance page</p></body></html>", site)
	assert.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestExtractJobsFromHTMLInvalidCandidatesDropped(t *testing.T) {
	html := `
	<html><body>
		<div class="listing"><h3 class="t">Advertisement</h3></div>
		<div class="listing"><h3 class="t">null</h3></div>
		<div class="listing"><h3 class="t">Sourcing Specialist</h3></div>
	</body></html>`

	site := htmlSite(map[string]string{
		"container": ".listing",
		"title":     ".t",
	})

	jobs, err := ExtractJobsFromHTML(html, site)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Sourcing Specialist", jobs[0].Title)
}
