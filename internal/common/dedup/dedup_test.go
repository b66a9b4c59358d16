package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryContentDedup(t *testing.T) {
	d := New(nil, "test", time.Hour)
	ctx := context.Background()

	assert.False(t, d.SeenContent(ctx, "Logistics Manager", "Acme", "Nairobi"))
	d.MarkContent(ctx, "Logistics Manager", "Acme", "Nairobi")
	assert.True(t, d.SeenContent(ctx, "Logistics Manager", "Acme", "Nairobi"))

	// Matching is case- and whitespace-insensitive.
	assert.True(t, d.SeenContent(ctx, "  logistics manager ", "ACME", "nairobi"))

	// Different content is unaffected.
	assert.False(t, d.SeenContent(ctx, "Logistics Manager", "Other Co", "Nairobi"))
}

func TestResetClearsInRunState(t *testing.T) {
	d := New(nil, "test", time.Hour)
	ctx := context.Background()

	d.MarkContent(ctx, "Procurement Officer", "Acme", "Nairobi")
	d.Reset()
	assert.False(t, d.SeenContent(ctx, "Procurement Officer", "Acme", "Nairobi"))
}

func TestRunLockWithoutRedis(t *testing.T) {
	d := New(nil, "test", time.Hour)

	release, ok := d.AcquireRunLock(context.Background(), time.Minute)
	assert.True(t, ok)
	assert.NotNil(t, release)
	release()
}
