package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"

	"todo-engine/internal/models"
)

func TestNilSnapshotIsAMiss(t *testing.T) {
	var s *Snapshot
	ctx := context.Background()
	s.Set(ctx, []models.Todo{{ID: "1"}})
	s.Invalidate(ctx)
	if _, ok := s.Get(ctx); ok {
		t.Fatal("nil snapshot reported a hit")
	}
	if _, ok := NewSnapshot(nil, time.Minute).Get(ctx); ok {
		t.Fatal("snapshot without client reported a hit")
	}
}

// Runs against a real server when TEST_REDIS_URL is set.
func TestSnapshotRoundTrip(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("ParseURL: %v", err)
	}
	rdb := redis.NewClient(opts)
	defer rdb.Close()

	ctx := context.Background()
	s := NewSnapshot(rdb, time.Minute)
	s.key = "todos:snapshot:test"
	defer s.Invalidate(ctx)

	want := []models.Todo{{ID: "1", Title: "one", Priority: models.PriorityHigh, CreatedAt: 5}}
	s.Set(ctx, want)
	got, ok := s.Get(ctx)
	if !ok {
		t.Fatal("expected hit")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
	s.Invalidate(ctx)
	if _, ok := s.Get(ctx); ok {
		t.Fatal("expected miss after invalidate")
	}
}
