package cart

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gymstore/pos-api/internal/domain/entity"
)

// Catalog is the product lookup surface the searcher queries. The cached
// product service satisfies it.
type Catalog interface {
	Search(ctx context.Context, query string, limit int) ([]entity.Product, error)
}

// SearchResult carries one delivered set of matches along with the query
// that produced them.
type SearchResult struct {
	Query    string
	Products []entity.Product
	Err      error
}

// Searcher debounces keystroke-driven catalog queries and guarantees that
// only the most recent request's results are ever delivered. Each request
// claims a monotonically increasing sequence number when it is scheduled,
// so two rapid queries supersede in request order even when the scheduler
// starts their goroutines out of order; a response whose number is no
// longer the latest is dropped.
type Searcher struct {
	catalog  Catalog
	debounce time.Duration
	limit    int
	timeout  time.Duration
	deliver  func(SearchResult)

	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

// NewSearcher creates a searcher delivering results to the given callback.
// A debounce of zero issues requests immediately. Queries run asynchronously
// after the caller has moved on, so each one is bounded by timeout rather
// than by the caller's context; a timeout of zero leaves them unbounded.
func NewSearcher(catalog Catalog, debounce time.Duration, limit int, timeout time.Duration, deliver func(SearchResult)) *Searcher {
	return &Searcher{
		catalog:  catalog,
		debounce: debounce,
		limit:    limit,
		timeout:  timeout,
		deliver:  deliver,
	}
}

// Search schedules a query. Typing again within the debounce window cancels
// the pending request and restarts the window.
func (s *Searcher) Search(ctx context.Context, query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	seq := atomic.AddUint64(&s.seq, 1)
	if s.debounce <= 0 {
		go s.issue(ctx, query, seq)
		return
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.issue(ctx, query, seq)
	})
}

func (s *Searcher) issue(ctx context.Context, query string, seq uint64) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	products, err := s.catalog.Search(ctx, query, s.limit)
	if atomic.LoadUint64(&s.seq) != seq {
		// a newer request was scheduled while this one was in flight
		return
	}
	s.deliver(SearchResult{Query: query, Products: products, Err: err})
}
