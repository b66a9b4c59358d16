package indexer

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/chainjobs-ke/go-scraper/internal/domain"
)

// ElasticsearchMirror bulk-indexes accepted records into a search index
// after the postgres write. Mirror failures are logged, never fatal to a
// run.
type ElasticsearchMirror struct {
	client    *elasticsearch.Client
	indexName string
}

// NewElasticsearchMirror creates a mirror and verifies connectivity.
func NewElasticsearchMirror(addresses []string, indexName string) (*ElasticsearchMirror, error) {
	cfg := elasticsearch.Config{
		Addresses: addresses,
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create es client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("es info: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("es error: %s", res.Status())
	}

	return &ElasticsearchMirror{
		client:    client,
		indexName: indexName,
	}, nil
}

// BulkIndex indexes the run's records in a single bulk request. Documents
// are keyed by a content hash so re-running a batch overwrites rather than
// duplicates.
func (m *ElasticsearchMirror) BulkIndex(ctx context.Context, jobs []*domain.JobRecord) error {
	if len(jobs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, job := range jobs {
		meta := map[string]any{
			"index": map[string]any{
				"_index": m.indexName,
				"_id":    docID(job),
			},
		}
		metaBytes, _ := json.Marshal(meta)
		buf.Write(metaBytes)
		buf.WriteByte('\n')

		docBytes, err := json.Marshal(job)
		if err != nil {
			log.Printf("marshal job %q: %v", job.Title, err)
			continue
		}
		buf.Write(docBytes)
		buf.WriteByte('\n')
	}

	res, err := m.client.Bulk(bytes.NewReader(buf.Bytes()), m.client.Bulk.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("bulk request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk error: %s", res.Status())
	}

	var bulkRes struct {
		Errors bool `json:"errors"`
		Items  []struct {
			Index struct {
				ID     string `json:"_id"`
				Status int    `json:"status"`
				Error  struct {
					Type   string `json:"type"`
					Reason string `json:"reason"`
				} `json:"error"`
			} `json:"index"`
		} `json:"items"`
	}

	if err := json.NewDecoder(res.Body).Decode(&bulkRes); err != nil {
		return fmt.Errorf("parse bulk response: %w", err)
	}

	if bulkRes.Errors {
		for _, item := range bulkRes.Items {
			if item.Index.Status >= 400 {
				log.Printf("bulk index error for %s: %s - %s",
					item.Index.ID, item.Index.Error.Type, item.Index.Error.Reason)
			}
		}
	}

	return nil
}

// EnsureIndex creates the index with field mappings if absent.
func (m *ElasticsearchMirror) EnsureIndex(ctx context.Context) error {
	res, err := m.client.Indices.Exists([]string{m.indexName})
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	res.Body.Close()

	if res.StatusCode == 200 {
		return nil
	}

	mapping := `{
		"mappings": {
			"properties": {
				"title": {
					"type": "text",
					"fields": {"keyword": {"type": "keyword"}}
				},
				"company": {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
				"location": {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
				"job_type": {"type": "keyword"},
				"description": {"type": "text"},
				"job_url": {"type": "keyword"},
				"application_url": {"type": "keyword"},
				"source": {"type": "keyword"},
				"deadline": {"type": "date"},
				"salary": {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
				"tags": {"type": "keyword"},
				"skills": {"type": "keyword"},
				"experience_level": {"type": "keyword"},
				"employment_type": {"type": "keyword"},
				"is_remote": {"type": "boolean"},
				"company_website": {"type": "keyword"},
				"source_posted_at": {"type": "date"},
				"created_at": {"type": "date"}
			}
		}
	}`

	res, err = m.client.Indices.Create(
		m.indexName,
		m.client.Indices.Create.WithBody(bytes.NewReader([]byte(mapping))),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("create index error: %s", res.Status())
	}

	return nil
}

func docID(job *domain.JobRecord) string {
	key := strings.ToLower(job.Title + "|" + job.Company + "|" + job.Location)
	h := sha1.Sum([]byte(key))
	return hex.EncodeToString(h[:])
}
