package indexer

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/chainjobs-ke/go-scraper/internal/domain"
)

// PostgresGateway persists scraped jobs to PostgreSQL with full-replace
// batch semantics.
type PostgresGateway struct {
	db        *sql.DB
	tableName string
}

// NewPostgresGateway opens a connection and ensures the jobs table exists.
func NewPostgresGateway(connStr string, tableName string) (*PostgresGateway, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	gateway := &PostgresGateway{
		db:        db,
		tableName: tableName,
	}

	if err := gateway.ensureTable(); err != nil {
		return nil, fmt.Errorf("ensure table: %w", err)
	}

	return gateway, nil
}

func (g *PostgresGateway) ensureTable() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id SERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			company TEXT,
			location TEXT,
			job_type TEXT,
			description TEXT,
			job_url TEXT,
			application_url TEXT,
			source TEXT,
			deadline TIMESTAMP WITH TIME ZONE,
			salary TEXT,
			tags TEXT[],
			skills TEXT[],
			experience_level TEXT,
			employment_type TEXT,
			is_remote BOOLEAN DEFAULT FALSE,
			company_website TEXT,
			company_description TEXT,
			source_posted_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`, g.tableName)

	_, err := g.db.Exec(query)
	return err
}

// ClearPreviousBatch removes the previous run's records.
func (g *PostgresGateway) ClearPreviousBatch(ctx context.Context) error {
	query := fmt.Sprintf(`DELETE FROM %s`, g.tableName)
	if _, err := g.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("clear batch: %w", err)
	}
	return nil
}

// InsertJob persists a single record.
func (g *PostgresGateway) InsertJob(ctx context.Context, job *domain.JobRecord) error {
	return g.insert(ctx, g.db, job)
}

// InsertBatch replaces the stored batch inside one transaction so readers
// never observe an empty table mid-run.
func (g *PostgresGateway) InsertBatch(ctx context.Context, jobs []*domain.JobRecord) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`DELETE FROM %s`, g.tableName)
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("clear batch: %w", err)
	}

	// Postgres aborts the transaction on the first failed statement, so
	// there is no skipping a bad record here; fail the batch and let the
	// deferred rollback restore the previous one.
	for _, job := range jobs {
		if err := g.insert(ctx, tx, job); err != nil {
			return fmt.Errorf("insert job %q: %w", job.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (g *PostgresGateway) insert(ctx context.Context, db execer, job *domain.JobRecord) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (
			title, company, location, job_type, description,
			job_url, application_url, source, deadline, salary,
			tags, skills, experience_level, employment_type, is_remote,
			company_website, company_description, source_posted_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15,
			$16, $17, $18, NOW(), NOW()
		)
	`, g.tableName)

	var deadline any
	if !job.Deadline.IsZero() {
		deadline = job.Deadline
	}

	_, err := db.ExecContext(ctx, query,
		job.Title, job.Company, job.Location, string(job.JobType), job.Description,
		job.JobURL, job.ApplicationURL, job.Source, deadline, job.Salary,
		pq.Array(job.Tags), pq.Array(job.Skills), job.ExperienceLevel, job.EmploymentType, job.IsRemote,
		job.CompanyWebsite, job.CompanyDescription, job.SourcePostedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (g *PostgresGateway) Close() error {
	return g.db.Close()
}
