package cache

import (
	"testing"
	"time"
)

func TestGetMissesAfterTTL(t *testing.T) {
	s := New(5 * time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }

	s.Set(DomainProducts, "search:whey", []string{"a", "b"})

	if _, ok := s.Get(DomainProducts, "search:whey"); !ok {
		t.Fatal("fresh entry should hit")
	}

	// one nanosecond short of the TTL still hits
	now = now.Add(5*time.Minute - time.Nanosecond)
	if _, ok := s.Get(DomainProducts, "search:whey"); !ok {
		t.Error("entry younger than TTL should hit")
	}

	now = now.Add(time.Nanosecond)
	if _, ok := s.Get(DomainProducts, "search:whey"); ok {
		t.Error("entry at TTL age should miss")
	}
}

func TestInvalidateOnlyEvictsOneDomain(t *testing.T) {
	s := New(5 * time.Minute)
	s.Set(DomainProducts, "id:1", "p")
	s.Set(DomainProducts, "id:2", "q")
	s.Set(DomainBrands, "all", "b")
	s.Set(DomainSales, "pending_count", int64(3))

	s.Invalidate(DomainProducts)

	if _, ok := s.Get(DomainProducts, "id:1"); ok {
		t.Error("products entry survived invalidation")
	}
	if _, ok := s.Get(DomainProducts, "id:2"); ok {
		t.Error("products entry survived invalidation")
	}
	if _, ok := s.Get(DomainBrands, "all"); !ok {
		t.Error("brands partition was evicted by a products invalidation")
	}
	if _, ok := s.Get(DomainSales, "pending_count"); !ok {
		t.Error("sales partition was evicted by a products invalidation")
	}
}

func TestGetUnknownDomainAndKey(t *testing.T) {
	s := New(time.Minute)
	if _, ok := s.Get(DomainCategories, "all"); ok {
		t.Error("empty domain should miss")
	}
	s.Set(DomainCategories, "all", "x")
	if _, ok := s.Get(DomainCategories, "other"); ok {
		t.Error("unknown key should miss")
	}
}

func TestSetOverwritesRefreshesAge(t *testing.T) {
	s := New(time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }

	s.Set(DomainSales, "pending_count", int64(1))
	now = now.Add(59 * time.Second)
	s.Set(DomainSales, "pending_count", int64(2))
	now = now.Add(30 * time.Second)

	v, ok := s.Get(DomainSales, "pending_count")
	if !ok {
		t.Fatal("rewritten entry should still be live")
	}
	if v.(int64) != 2 {
		t.Errorf("value = %v, want 2", v)
	}
}
