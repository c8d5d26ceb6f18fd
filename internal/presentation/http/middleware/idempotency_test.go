package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gymstore/pos-api/internal/domain/entity"
)

// fakeIdempotencyRepo stores keys in memory, scoped per user like the
// database unique index
type fakeIdempotencyRepo struct {
	keys map[string]*entity.IdempotencyKey
}

func newFakeIdempotencyRepo() *fakeIdempotencyRepo {
	return &fakeIdempotencyRepo{keys: make(map[string]*entity.IdempotencyKey)}
}

func (f *fakeIdempotencyRepo) GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	return f.keys[key+"/"+userID.String()], nil
}

func (f *fakeIdempotencyRepo) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	f.keys[ikey.Key+"/"+ikey.UserID.String()] = ikey
	return nil
}

func (f *fakeIdempotencyRepo) DeleteExpired(ctx context.Context) error { return nil }

func idempotencyTestRouter(mw gin.HandlerFunc, userID uuid.UUID, hits *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
	})
	router.POST("/customers", mw, func(c *gin.Context) {
		*hits++
		c.JSON(http.StatusCreated, gin.H{"success": true})
	})
	return router
}

func TestIdempotencyPassesThroughWithoutKey(t *testing.T) {
	repo := newFakeIdempotencyRepo()
	hits := 0
	router := idempotencyTestRouter(Idempotency(IdempotencyConfig{Repo: repo}), uuid.New(), &hits)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(`{}`)))
		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201", w.Code)
		}
	}
	if hits != 2 {
		t.Errorf("handler ran %d times, want 2 (no key, nothing to replay)", hits)
	}
	if len(repo.keys) != 0 {
		t.Error("no key should be stored when the header is absent")
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	repo := newFakeIdempotencyRepo()
	hits := 0
	router := idempotencyTestRouter(Idempotency(IdempotencyConfig{Repo: repo}), uuid.New(), &hits)

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(`{}`))
		req.Header.Set(IdempotencyKeyHeader, "key-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	first := send()
	if first.Code != http.StatusCreated {
		t.Fatalf("first status = %d, want 201", first.Code)
	}

	second := send()
	if second.Code != http.StatusCreated {
		t.Fatalf("replay status = %d, want 201", second.Code)
	}
	if second.Header().Get("X-Idempotency-Replayed") != "true" {
		t.Error("replay should be flagged with X-Idempotency-Replayed")
	}
	if hits != 1 {
		t.Errorf("handler ran %d times, want 1 (second request replayed)", hits)
	}
	if second.Body.String() != first.Body.String() {
		t.Errorf("replayed body %q differs from original %q", second.Body.String(), first.Body.String())
	}
}

func TestIdempotencyExpiredKeyRunsHandlerAgain(t *testing.T) {
	repo := newFakeIdempotencyRepo()
	userID := uuid.New()
	hits := 0
	router := idempotencyTestRouter(Idempotency(IdempotencyConfig{Repo: repo}), userID, &hits)

	repo.keys["key-2/"+userID.String()] = &entity.IdempotencyKey{
		Key:          "key-2",
		UserID:       userID,
		ResponseCode: http.StatusCreated,
		ResponseBody: `{"success":true}`,
		ExpiresAt:    time.Now().Add(-time.Minute),
	}

	req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(`{}`))
	req.Header.Set(IdempotencyKeyHeader, "key-2")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if hits != 1 {
		t.Errorf("handler ran %d times, want 1 (expired key must not replay)", hits)
	}
}
