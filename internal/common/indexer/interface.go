package indexer

import (
	"context"

	"github.com/chainjobs-ke/go-scraper/internal/domain"
)

// Gateway is the persistence boundary for scraped jobs. Each run clears
// the previous batch exactly once before any inserts (full-replace
// semantics, not incremental upsert).
type Gateway interface {
	// ClearPreviousBatch removes all records from the previous run.
	ClearPreviousBatch(ctx context.Context) error

	// InsertJob persists a single validated record.
	InsertJob(ctx context.Context, job *domain.JobRecord) error
}
