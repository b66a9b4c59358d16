package indexer

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainjobs-ke/go-scraper/internal/domain"
)

// stubDriver records every statement and can be told to fail the n-th one,
// standing in for postgres in batch-semantics tests.
type stubDriver struct {
	execs     []string
	failExec  int // 1-based statement index to fail, 0 = never
	commits   int
	rollbacks int
}

func (d *stubDriver) Open(string) (driver.Conn, error) { return &stubConn{d: d}, nil }

type stubConn struct{ d *stubDriver }

func (c *stubConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}
func (c *stubConn) Close() error              { return nil }
func (c *stubConn) Begin() (driver.Tx, error) { return &stubTx{d: c.d}, nil }

func (c *stubConn) ExecContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
	c.d.execs = append(c.d.execs, query)
	if c.d.failExec > 0 && len(c.d.execs) == c.d.failExec {
		return nil, errors.New("duplicate key value")
	}
	return driver.RowsAffected(1), nil
}

type stubTx struct{ d *stubDriver }

func (t *stubTx) Commit() error   { t.d.commits++; return nil }
func (t *stubTx) Rollback() error { t.d.rollbacks++; return nil }

var stubDriverSeq atomic.Int64

func newStubGateway(t *testing.T, d *stubDriver) *PostgresGateway {
	t.Helper()
	name := fmt.Sprintf("stub-postgres-%d", stubDriverSeq.Add(1))
	sql.Register(name, d)
	db, err := sql.Open(name, "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &PostgresGateway{db: db, tableName: "scraped_jobs"}
}

func batchJob(title string) *domain.JobRecord {
	return &domain.JobRecord{
		Title:    title,
		Company:  "Acme Ltd",
		Location: "Nairobi",
		JobType:  domain.JobTypeFullTime,
		Source:   "test",
	}
}

func TestInsertBatchClearsThenInserts(t *testing.T) {
	d := &stubDriver{}
	g := newStubGateway(t, d)

	jobs := []*domain.JobRecord{batchJob("Logistics Manager"), batchJob("Procurement Officer")}
	require.NoError(t, g.InsertBatch(context.Background(), jobs))

	require.Len(t, d.execs, 3)
	assert.Contains(t, d.execs[0], "DELETE FROM scraped_jobs")
	assert.Contains(t, d.execs[1], "INSERT INTO scraped_jobs")
	assert.Equal(t, 1, d.commits)
	assert.Equal(t, 0, d.rollbacks)
}

func TestInsertBatchFailedInsertAbortsBatch(t *testing.T) {
	// Statement 1 is the clear, 2 the first insert; fail the second insert.
	d := &stubDriver{failExec: 3}
	g := newStubGateway(t, d)

	jobs := []*domain.JobRecord{
		batchJob("Logistics Manager"),
		batchJob("Procurement Officer"),
		batchJob("Warehouse Supervisor"),
	}
	err := g.InsertBatch(context.Background(), jobs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `insert job "Procurement Officer"`)

	// No statements after the failure, no commit, rolled back.
	assert.Len(t, d.execs, 3)
	assert.Equal(t, 0, d.commits)
	assert.Equal(t, 1, d.rollbacks)
}
