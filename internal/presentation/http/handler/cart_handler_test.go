package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gymstore/pos-api/internal/application/cart"
	"github.com/gymstore/pos-api/internal/domain/entity"
)

// recordingCatalog captures the liveness of the context the debounced
// search fires with, which is long after the scheduling request returned.
type recordingCatalog struct {
	mu          sync.Mutex
	called      bool
	ctxErr      error
	hadDeadline bool
}

func (r *recordingCatalog) Search(ctx context.Context, query string, limit int) ([]entity.Product, error) {
	r.mu.Lock()
	r.called = true
	r.ctxErr = ctx.Err()
	_, r.hadDeadline = ctx.Deadline()
	r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []entity.Product{{Name: query}}, nil
}

func (r *recordingCatalog) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	return nil, nil
}

func (r *recordingCatalog) state() (called bool, ctxErr error, hadDeadline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.called, r.ctxErr, r.hadDeadline
}

func TestSearchOutlivesTheSchedulingRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	catalog := &recordingCatalog{}
	carts := cart.NewService(catalog, 30*time.Millisecond, time.Second)
	h := NewCartHandler(carts)

	router := gin.New()
	router.POST("/carts/:id/search", h.Search)

	draft := carts.Create()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/carts/"+draft.ID.String()+"/search",
		strings.NewReader(`{"query":"whey"}`)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", w.Code)
	}
	// the server tears the request context down once the handler returns
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if called, _, _ := catalog.state(); called {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("debounced catalog query never fired")
		}
		time.Sleep(5 * time.Millisecond)
	}

	_, ctxErr, hadDeadline := catalog.state()
	if ctxErr != nil {
		t.Fatalf("debounced query fired with a dead context: %v", ctxErr)
	}
	if !hadDeadline {
		t.Error("detached query should still carry its own deadline")
	}

	for {
		result, ready, err := carts.SearchResults(draft.ID)
		if err != nil {
			t.Fatalf("SearchResults: %v", err)
		}
		if ready {
			if result.Err != nil || result.Query != "whey" {
				t.Errorf("result = %+v, want a delivered whey result", result)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("search result never delivered")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
