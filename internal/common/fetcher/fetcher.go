package fetcher

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/chainjobs-ke/go-scraper/internal/common/extractor"
	"github.com/chainjobs-ke/go-scraper/internal/domain"
	"github.com/chainjobs-ke/go-scraper/internal/registry"
)

const (
	defaultTimeout = 45 * time.Second
	defaultRetries = 3

	// Bodies shorter than these are almost always block pages or empty
	// feeds and are retried like errors.
	minHTMLBodyLen = 1000
	minFeedBodyLen = 100

	errorBackoffStep     = 3 * time.Second
	shortBodyBackoffStep = 5 * time.Second
)

// userAgents mimics current desktop browsers; one is drawn per request to
// reduce trivial bot blocking.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
}

// Config tunes the fetcher defaults; individual sites may override the
// timeout and retry count in their definition.
type Config struct {
	Timeout    time.Duration
	MaxRetries int
	// UserAgent pins a fixed user agent instead of the randomized pool.
	UserAgent string
}

// Fetcher issues site requests with browser-like headers, per-site
// timeouts, and retry with backoff.
type Fetcher struct {
	cfg Config
}

func New(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultRetries
	}
	return &Fetcher{cfg: cfg}
}

// Fetch retrieves a site's body, retrying on errors and on suspiciously
// short responses. It returns an error only after the retry budget is
// exhausted; callers degrade to zero jobs for the site.
func (f *Fetcher) Fetch(ctx context.Context, site *registry.JobSiteDefinition) ([]byte, error) {
	timeout := f.cfg.Timeout
	if site.TimeoutSec > 0 {
		timeout = time.Duration(site.TimeoutSec) * time.Second
	}
	retries := f.cfg.MaxRetries
	if site.RetryAttempts > 0 {
		retries = site.RetryAttempts
	}
	minLen := minHTMLBodyLen
	if site.IsXMLFeed {
		minLen = minFeedBodyLen
	}

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		body, err := f.fetchOnce(site, timeout)
		if err != nil {
			lastErr = err
			log.Printf("[%s] fetch attempt %d/%d failed: %v", site.Name, attempt, retries, err)
			if attempt < retries && !sleepCtx(ctx, time.Duration(attempt)*errorBackoffStep) {
				return nil, ctx.Err()
			}
			continue
		}
		if len(body) < minLen {
			lastErr = fmt.Errorf("body too short (%d bytes)", len(body))
			log.Printf("[%s] fetch attempt %d/%d returned %d bytes, retrying", site.Name, attempt, retries, len(body))
			if attempt < retries && !sleepCtx(ctx, time.Duration(attempt)*shortBodyBackoffStep) {
				return nil, ctx.Err()
			}
			continue
		}
		return body, nil
	}
	return nil, fmt.Errorf("fetch %s after %d attempts: %w", site.Name, retries, lastErr)
}

// FetchAndExtract fetches a site and dispatches its body to the HTML or
// feed extractor per the site's feed flag.
func (f *Fetcher) FetchAndExtract(ctx context.Context, site *registry.JobSiteDefinition) ([]*domain.JobRecord, error) {
	body, err := f.Fetch(ctx, site)
	if err != nil {
		return nil, err
	}
	if site.IsXMLFeed {
		return extractor.ExtractJobsFromFeed(string(body), site)
	}
	return extractor.ExtractJobsFromHTML(string(body), site)
}

func (f *Fetcher) fetchOnce(site *registry.JobSiteDefinition, timeout time.Duration) ([]byte, error) {
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	)
	c.SetRequestTimeout(timeout)

	if site.RateLimitMS > 0 {
		c.Limit(&colly.LimitRule{
			DomainGlob:  "*",
			Delay:       time.Duration(site.RateLimitMS) * time.Millisecond,
			RandomDelay: time.Duration(site.RateLimitMS/2) * time.Millisecond,
		})
	}

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", f.userAgent())
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
		r.Headers.Set("Referer", "https://www.google.com/")
	})

	var body []byte
	var fetchErr error

	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
	})

	if err := c.Visit(site.URL); err != nil {
		return nil, fmt.Errorf("visit %s: %w", site.URL, err)
	}
	c.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	return body, nil
}

func (f *Fetcher) userAgent() string {
	if f.cfg.UserAgent != "" {
		return f.cfg.UserAgent
	}
	return userAgents[rand.Intn(len(userAgents))]
}

// sleepCtx waits for d unless the context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
