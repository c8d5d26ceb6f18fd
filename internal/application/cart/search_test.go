package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gymstore/pos-api/internal/domain/entity"
)

// blockingCatalog serves each query only after its release channel fires,
// so tests control response ordering precisely.
type blockingCatalog struct {
	mu      sync.Mutex
	release map[string]chan struct{}
}

func newBlockingCatalog(queries ...string) *blockingCatalog {
	release := make(map[string]chan struct{}, len(queries))
	for _, q := range queries {
		release[q] = make(chan struct{})
	}
	return &blockingCatalog{release: release}
}

func (b *blockingCatalog) Search(ctx context.Context, query string, limit int) ([]entity.Product, error) {
	b.mu.Lock()
	ch, ok := b.release[query]
	b.mu.Unlock()
	if ok {
		select {
		case <-ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return []entity.Product{{Name: query}}, nil
}

func (b *blockingCatalog) releaseQuery(query string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.release[query]; ok {
		close(ch)
		delete(b.release, query)
	}
}

func collectResults() (func(SearchResult), func() []SearchResult) {
	var mu sync.Mutex
	var delivered []SearchResult
	deliver := func(res SearchResult) {
		mu.Lock()
		delivered = append(delivered, res)
		mu.Unlock()
	}
	snapshot := func() []SearchResult {
		mu.Lock()
		defer mu.Unlock()
		out := make([]SearchResult, len(delivered))
		copy(out, delivered)
		return out
	}
	return deliver, snapshot
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestSearcherDeliversLatestRequest(t *testing.T) {
	catalog := newBlockingCatalog("prot", "protein")
	deliver, snapshot := collectResults()
	s := NewSearcher(catalog, 0, 20, 0, deliver)

	ctx := context.Background()
	s.Search(ctx, "prot")
	// wait until the first request is in flight before issuing the second,
	// then release the late one first
	time.Sleep(20 * time.Millisecond)
	s.Search(ctx, "protein")
	time.Sleep(20 * time.Millisecond)

	catalog.releaseQuery("protein")
	waitFor(t, func() bool { return len(snapshot()) >= 1 })

	// the first request completes after being superseded; it must be dropped
	catalog.releaseQuery("prot")
	time.Sleep(50 * time.Millisecond)

	results := snapshot()
	if len(results) != 1 {
		t.Fatalf("delivered %d results, want 1", len(results))
	}
	if results[0].Query != "protein" {
		t.Errorf("delivered query %q, want %q", results[0].Query, "protein")
	}
}

func TestRapidQueriesSupersedeInRequestOrder(t *testing.T) {
	// Sequence numbers are claimed when a query is scheduled, so the second
	// of two back-to-back queries always supersedes the first, regardless of
	// which goroutine the scheduler happens to start first.
	for i := 0; i < 10; i++ {
		catalog := newBlockingCatalog("old", "new")
		deliver, snapshot := collectResults()
		s := NewSearcher(catalog, 0, 20, 0, deliver)

		ctx := context.Background()
		s.Search(ctx, "old")
		s.Search(ctx, "new")

		catalog.releaseQuery("old")
		time.Sleep(30 * time.Millisecond)
		if results := snapshot(); len(results) != 0 {
			t.Fatalf("iteration %d: superseded query delivered %+v", i, results)
		}

		catalog.releaseQuery("new")
		waitFor(t, func() bool { return len(snapshot()) == 1 })
		if got := snapshot()[0].Query; got != "new" {
			t.Fatalf("iteration %d: delivered query %q, want %q", i, got, "new")
		}
	}
}

func TestSearcherBoundsQueryDuration(t *testing.T) {
	catalog := newBlockingCatalog("whey")
	deliver, snapshot := collectResults()
	s := NewSearcher(catalog, 0, 20, 20*time.Millisecond, deliver)

	// the catalog never answers; the query's own deadline must cut it off
	go func() {
		time.Sleep(500 * time.Millisecond)
		catalog.releaseQuery("whey")
	}()
	s.Search(context.Background(), "whey")

	waitFor(t, func() bool { return len(snapshot()) == 1 })
	if err := snapshot()[0].Err; !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("result err = %v, want deadline exceeded", err)
	}
}

func TestSearcherDebouncesKeystrokes(t *testing.T) {
	catalog := newBlockingCatalog()
	deliver, snapshot := collectResults()
	s := NewSearcher(catalog, 50*time.Millisecond, 20, 0, deliver)

	ctx := context.Background()
	// rapid typing: only the settled query should hit the catalog
	s.Search(ctx, "c")
	s.Search(ctx, "cr")
	s.Search(ctx, "cre")
	s.Search(ctx, "creatine")

	waitFor(t, func() bool { return len(snapshot()) >= 1 })
	time.Sleep(100 * time.Millisecond)

	results := snapshot()
	if len(results) != 1 {
		t.Fatalf("delivered %d results, want 1", len(results))
	}
	if results[0].Query != "creatine" {
		t.Errorf("delivered query %q, want %q", results[0].Query, "creatine")
	}
}
