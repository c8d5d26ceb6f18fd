package cache

import (
	"sync"
	"time"
)

// Domain names the cache partitions. Each domain is an independent
// partition: invalidating one never evicts another.
type Domain string

const (
	DomainProducts   Domain = "products"
	DomainBrands     Domain = "brands"
	DomainCategories Domain = "categories"
	DomainSales      Domain = "sales"
)

type item struct {
	value    interface{}
	cachedAt time.Time
}

// Store is a domain-partitioned, time-boxed read cache over catalog-adjacent
// reads. It is constructed once in main and injected into every component
// that needs it; there is no package-level instance. Entries older than the
// TTL report a miss. Writers call Invalidate on their domain before
// reporting success (write-then-invalidate; this is a single-process cache,
// not a distributed read-your-writes guarantee).
type Store struct {
	mu      sync.RWMutex
	ttl     time.Duration
	domains map[Domain]map[string]item
	now     func() time.Time
}

// New creates a cache store with the given entry TTL
func New(ttl time.Duration) *Store {
	return &Store{
		ttl:     ttl,
		domains: make(map[Domain]map[string]item),
		now:     time.Now,
	}
}

// Get returns the cached value for key under domain if it is present and
// younger than the TTL
func (s *Store) Get(domain Domain, key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, ok := s.domains[domain]
	if !ok {
		return nil, false
	}
	it, ok := entries[key]
	if !ok {
		return nil, false
	}
	if s.now().Sub(it.cachedAt) >= s.ttl {
		return nil, false
	}
	return it.value, true
}

// Set stores a value under the domain partition
func (s *Store) Set(domain Domain, key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, ok := s.domains[domain]
	if !ok {
		entries = make(map[string]item)
		s.domains[domain] = entries
	}
	entries[key] = item{value: value, cachedAt: s.now()}
}

// Invalidate evicts every entry under the given domain, leaving the other
// partitions untouched
func (s *Store) Invalidate(domain Domain) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.domains, domain)
}

// Len reports the number of live entries under a domain (expired entries
// are counted until their next eviction)
func (s *Store) Len(domain Domain) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.domains[domain])
}
