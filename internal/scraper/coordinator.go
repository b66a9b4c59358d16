package scraper

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chainjobs-ke/go-scraper/internal/common/dedup"
	"github.com/chainjobs-ke/go-scraper/internal/common/indexer"
	"github.com/chainjobs-ke/go-scraper/internal/domain"
	"github.com/chainjobs-ke/go-scraper/internal/registry"
)

const runLockTTL = 30 * time.Minute

// SiteFetcher fetches one site and returns its extracted records.
type SiteFetcher interface {
	FetchAndExtract(ctx context.Context, site *registry.JobSiteDefinition) ([]*domain.JobRecord, error)
}

// Mirror receives the accepted batch after the primary write.
type Mirror interface {
	BulkIndex(ctx context.Context, jobs []*domain.JobRecord) error
}

// batchGateway is the transactional fast path the postgres gateway offers.
type batchGateway interface {
	InsertBatch(ctx context.Context, jobs []*domain.JobRecord) error
}

// Config tunes the coordinator.
type Config struct {
	Concurrency int
}

// Coordinator runs the full scrape: every registry site fetched
// concurrently and independently, results aggregated and deduplicated,
// fallback records substituted when everything fails, and the final list
// handed to the persistence gateway as one clear+insert batch.
type Coordinator struct {
	sites       []registry.JobSiteDefinition
	fetcher     SiteFetcher
	gateway     indexer.Gateway
	dedup       *dedup.Deduplicator
	mirror      Mirror
	concurrency int

	// running serializes Run within this process. The redis lock only
	// guards across processes, and only when redis is configured.
	running atomic.Bool
}

// NewCoordinator wires a coordinator. mirror may be nil.
func NewCoordinator(sites []registry.JobSiteDefinition, fetcher SiteFetcher, gateway indexer.Gateway, dd *dedup.Deduplicator, mirror Mirror, cfg Config) *Coordinator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &Coordinator{
		sites:       sites,
		fetcher:     fetcher,
		gateway:     gateway,
		dedup:       dd,
		mirror:      mirror,
		concurrency: cfg.Concurrency,
	}
}

type siteResult struct {
	name string
	jobs []*domain.JobRecord
	err  error
}

// Run executes one scrape run. Per-site failures degrade to zero jobs for
// that site; only a persistence failure is surfaced as the run error.
// Runs never overlap: a call while another run is in flight returns an
// error without touching the dedup state or the store.
func (c *Coordinator) Run(ctx context.Context) (*domain.ScrapeRunResult, error) {
	start := time.Now()

	if !c.running.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("scrape run already in progress")
	}
	defer c.running.Store(false)

	release, ok := c.dedup.AcquireRunLock(ctx, runLockTTL)
	if !ok {
		return nil, fmt.Errorf("another scrape run is in progress")
	}
	defer release()
	c.dedup.Reset()

	results := c.fetchAll(ctx)

	run := &domain.ScrapeRunResult{
		PerSite: make(map[string]domain.SiteStats, len(c.sites)),
	}

	for _, res := range results {
		stats := domain.SiteStats{Fetched: len(res.jobs)}
		if res.err != nil {
			stats.Failed = true
			log.Printf("[%s] site failed: %v", res.name, res.err)
		}

		for _, job := range res.jobs {
			if c.dedup.SeenContent(ctx, job.Title, job.Company, job.Location) {
				stats.Rejected++
				continue
			}
			c.dedup.MarkContent(ctx, job.Title, job.Company, job.Location)
			run.Jobs = append(run.Jobs, job)
			stats.Valid++
		}

		run.PerSite[res.name] = stats
		log.Printf("[%s] %d fetched, %d accepted, %d duplicates, failed=%v",
			res.name, stats.Fetched, stats.Valid, stats.Rejected, stats.Failed)
	}

	if len(run.Jobs) == 0 {
		log.Printf("all sites yielded nothing, substituting fallback jobs (degraded mode)")
		run.Jobs = registry.FallbackJobs()
		run.FallbackUsed = true
	}

	if err := c.persist(ctx, run.Jobs); err != nil {
		return nil, fmt.Errorf("persist batch: %w", err)
	}

	if c.mirror != nil {
		if err := c.mirror.BulkIndex(ctx, run.Jobs); err != nil {
			log.Printf("search mirror error (non-fatal): %v", err)
		}
	}

	run.Elapsed = time.Since(start)
	log.Printf("scrape run complete: %d jobs from %d sites in %s (fallback=%v)",
		len(run.Jobs), len(c.sites), run.Elapsed.Round(time.Millisecond), run.FallbackUsed)
	return run, nil
}

// fetchAll runs every site on its own goroutine under a bounded semaphore.
// Sites share no mutable state; a slow site only consumes its own retry
// budget.
func (c *Coordinator) fetchAll(ctx context.Context) []siteResult {
	sem := make(chan struct{}, c.concurrency)
	resultCh := make(chan siteResult, len(c.sites))

	var wg sync.WaitGroup
	for i := range c.sites {
		site := c.sites[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			jobs, err := c.fetcher.FetchAndExtract(ctx, &site)
			resultCh <- siteResult{name: site.Name, jobs: jobs, err: err}
		}()
	}

	wg.Wait()
	close(resultCh)

	results := make([]siteResult, 0, len(c.sites))
	for res := range resultCh {
		results = append(results, res)
	}
	return results
}

// persist hands the batch to the gateway: one clear, then inserts. The
// transactional batch path is used when the gateway offers it.
func (c *Coordinator) persist(ctx context.Context, jobs []*domain.JobRecord) error {
	if bg, ok := c.gateway.(batchGateway); ok {
		return bg.InsertBatch(ctx, jobs)
	}

	if err := c.gateway.ClearPreviousBatch(ctx); err != nil {
		return fmt.Errorf("clear previous batch: %w", err)
	}
	for _, job := range jobs {
		if err := c.gateway.InsertJob(ctx, job); err != nil {
			return fmt.Errorf("insert job %q: %w", job.Title, err)
		}
	}
	return nil
}
