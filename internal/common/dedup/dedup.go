package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const runLockKey = "run:lock"

// Deduplicator tracks seen job content and guards against overlapping
// scrape runs. Redis is optional: without a client, content tracking is
// in-memory for the current run only and the run lock always succeeds.
type Deduplicator struct {
	client     *redis.Client
	prefix     string
	defaultTTL time.Duration
	seen       map[string]struct{}
}

// New creates a deduplicator. client may be nil.
func New(client *redis.Client, prefix string, defaultTTL time.Duration) *Deduplicator {
	if prefix == "" {
		prefix = "scraper"
	}
	if defaultTTL == 0 {
		defaultTTL = 7 * 24 * time.Hour
	}
	return &Deduplicator{
		client:     client,
		prefix:     prefix,
		defaultTTL: defaultTTL,
		seen:       make(map[string]struct{}),
	}
}

// AcquireRunLock prevents two scrape runs from interleaving their
// clear+insert sequences. Returns a release func and whether the lock was
// obtained.
func (d *Deduplicator) AcquireRunLock(ctx context.Context, ttl time.Duration) (func(), bool) {
	if d.client == nil {
		return func() {}, true
	}

	key := d.makeKey(runLockKey)
	ok, err := d.client.SetNX(ctx, key, time.Now().Unix(), ttl).Result()
	if err != nil {
		// Redis being down must not stop scraping; fall back to unlocked.
		log.Printf("run lock error, proceeding without lock: %v", err)
		return func() {}, true
	}
	if !ok {
		return nil, false
	}

	release := func() {
		if err := d.client.Del(context.Background(), key).Err(); err != nil {
			log.Printf("release run lock: %v", err)
		}
	}
	return release, true
}

// SeenContent reports whether a job with the same title/company/location
// content was already accepted, checking the in-run set first and redis
// second.
func (d *Deduplicator) SeenContent(ctx context.Context, title, company, location string) bool {
	hash := contentHash(title, company, location)

	if _, ok := d.seen[hash]; ok {
		return true
	}

	if d.client != nil {
		exists, err := d.client.Exists(ctx, d.makeKey("content:"+hash)).Result()
		if err == nil && exists > 0 {
			return true
		}
	}
	return false
}

// MarkContent records a job's content hash in the in-run set and, when
// available, redis.
func (d *Deduplicator) MarkContent(ctx context.Context, title, company, location string) {
	hash := contentHash(title, company, location)
	d.seen[hash] = struct{}{}

	if d.client != nil {
		key := d.makeKey("content:" + hash)
		if err := d.client.Set(ctx, key, time.Now().Unix(), d.defaultTTL).Err(); err != nil {
			log.Printf("mark content: %v", err)
		}
	}
}

// Reset clears the in-run seen set for a fresh run.
func (d *Deduplicator) Reset() {
	d.seen = make(map[string]struct{})
}

func (d *Deduplicator) makeKey(id string) string {
	return fmt.Sprintf("%s:%s", d.prefix, id)
}

func contentHash(title, company, location string) string {
	key := strings.ToLower(strings.TrimSpace(title)) + "|" +
		strings.ToLower(strings.TrimSpace(company)) + "|" +
		strings.ToLower(strings.TrimSpace(location))
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:16])
}
