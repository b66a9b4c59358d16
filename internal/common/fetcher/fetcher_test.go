package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainjobs-ke/go-scraper/internal/registry"
)

func pageOf(n int) string {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	sb.WriteString(strings.Repeat("<p>filler content for plausibility checks</p>", n))
	sb.WriteString("</body></html>")
	return sb.String()
}

func TestFetchSuccess(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		// The fetcher must send browser-like headers.
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("Accept"))
		w.Write([]byte(pageOf(50)))
	}))
	defer srv.Close()

	f := New(Config{})
	site := &registry.JobSiteDefinition{Name: "test", URL: srv.URL}

	body, err := f.Fetch(context.Background(), site)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(body), minHTMLBodyLen)
	assert.Equal(t, int32(1), requests.Load())
}

func TestFetchShortBodyExhaustsRetries(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte("blocked"))
	}))
	defer srv.Close()

	f := New(Config{})
	site := &registry.JobSiteDefinition{Name: "test", URL: srv.URL, RetryAttempts: 1}

	_, err := f.Fetch(context.Background(), site)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too short")
	assert.Equal(t, int32(1), requests.Load())
}

func TestFetchErrorStatusExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "go away", http.StatusForbidden)
	}))
	defer srv.Close()

	f := New(Config{})
	site := &registry.JobSiteDefinition{Name: "test", URL: srv.URL, RetryAttempts: 1}

	_, err := f.Fetch(context.Background(), site)
	require.Error(t, err)
}

func TestFetchFeedThreshold(t *testing.T) {
	// 100 bytes is enough for a feed even though it would be rejected as
	// an HTML page.
	feed := `<?xml version="1.0"?><rss><channel><item><title>Logistics Officer needed in Nairobi warehouse</title></item></channel></rss>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feed))
	}))
	defer srv.Close()

	f := New(Config{})
	site := &registry.JobSiteDefinition{Name: "test", URL: srv.URL, IsXMLFeed: true, RetryAttempts: 1}

	body, err := f.Fetch(context.Background(), site)
	require.NoError(t, err)
	assert.Equal(t, feed, string(body))
}

func TestFetchAndExtractDispatchesHTML(t *testing.T) {
	html := "<html><body>" +
		`<div class="job-item"><h3 class="t">Warehouse Lead</h3></div>` +
		pageOf(40) +
		"</body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(html))
	}))
	defer srv.Close()

	f := New(Config{})
	site := &registry.JobSiteDefinition{
		Name: "test",
		URL:  srv.URL,
		Selectors: map[string]string{
			"container": ".job-item",
			"title":     ".t",
		},
	}

	jobs, err := f.FetchAndExtract(context.Background(), site)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Warehouse Lead", jobs[0].Title)
}

func TestUserAgentOverride(t *testing.T) {
	f := New(Config{UserAgent: "custom-agent/1.0"})
	assert.Equal(t, "custom-agent/1.0", f.userAgent())

	pool := New(Config{})
	assert.Contains(t, userAgents, pool.userAgent())
}
