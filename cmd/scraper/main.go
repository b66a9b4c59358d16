package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/chainjobs-ke/go-scraper/internal/common/dedup"
	"github.com/chainjobs-ke/go-scraper/internal/common/fetcher"
	"github.com/chainjobs-ke/go-scraper/internal/common/indexer"
	"github.com/chainjobs-ke/go-scraper/internal/config"
	"github.com/chainjobs-ke/go-scraper/internal/registry"
	"github.com/chainjobs-ke/go-scraper/internal/scraper"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Job Scraper Service")

	once := flag.Bool("once", false, "run a single scrape and exit")
	flag.Parse()

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis is optional: it backs the run lock and cross-run dedup.
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("Redis unavailable, continuing without it: %v", err)
			rdb = nil
		} else {
			log.Println("Redis connected")
		}
	}

	gateway, err := indexer.NewPostgresGateway(cfg.Postgres.ConnectionString, cfg.Postgres.TableName)
	if err != nil {
		log.Fatalf("PostgreSQL connection failed: %v", err)
	}
	defer gateway.Close()
	log.Println("PostgreSQL connected")

	var mirror scraper.Mirror
	if cfg.Elasticsearch.Enabled {
		esMirror, err := indexer.NewElasticsearchMirror(cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Index)
		if err != nil {
			log.Printf("Elasticsearch unavailable, continuing without mirror: %v", err)
		} else {
			if err := esMirror.EnsureIndex(ctx); err != nil {
				log.Printf("Warning: ensure index failed: %v", err)
			}
			mirror = esMirror
			log.Println("Elasticsearch connected")
		}
	}

	deduplicator := dedup.New(rdb, cfg.Redis.KeyPrefix, 7*24*time.Hour)
	siteFetcher := fetcher.New(fetcher.Config{
		Timeout:    cfg.Scraper.Timeout,
		MaxRetries: cfg.Scraper.MaxRetries,
		UserAgent:  cfg.Scraper.UserAgent,
	})

	coordinator := scraper.NewCoordinator(
		registry.Sites(),
		siteFetcher,
		gateway,
		deduplicator,
		mirror,
		scraper.Config{Concurrency: cfg.Scraper.Concurrency},
	)

	if *once {
		if _, err := coordinator.Run(ctx); err != nil {
			log.Fatalf("Scrape run failed: %v", err)
		}
		return
	}

	runScrape := func() {
		if _, err := coordinator.Run(ctx); err != nil {
			log.Printf("Scrape run failed: %v", err)
		}
	}

	var wg sync.WaitGroup

	// First run immediately, then on the configured schedule.
	wg.Add(1)
	go func() {
		defer wg.Done()
		runScrape()
	}()

	// Skip a scheduled trigger that fires while the previous run is still
	// going; the coordinator also refuses overlapping runs itself.
	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := scheduler.AddFunc(cfg.Scraper.Schedule, runScrape); err != nil {
		log.Fatalf("Invalid schedule %q: %v", cfg.Scraper.Schedule, err)
	}
	scheduler.Start()
	log.Printf("Scheduled scrape runs: %s", cfg.Scraper.Schedule)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutdown signal received, stopping...")

	cancel()
	cronCtx := scheduler.Stop()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		<-cronCtx.Done()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Graceful shutdown complete")
	case <-time.After(30 * time.Second):
		log.Println("Shutdown timeout, forcing exit")
	}
}
