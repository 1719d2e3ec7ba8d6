package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type countingLimiter struct {
	counts map[string]int64
	scopes []string
}

func (c *countingLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	if c.counts == nil {
		c.counts = make(map[string]int64)
	}
	c.counts[scope]++
	c.scopes = append(c.scopes, scope)
	return c.counts[scope] <= limit, c.counts[scope], nil
}

func TestRateLimitMutationsBlocksAfterLimit(t *testing.T) {
	limiter := &countingLimiter{}
	mw := RateLimitMutations(NewRateLimitPolicy("Mutations", time.Minute, 2), limiter, nil)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/items/1/purchases", nil)
		req.Header.Set("X-Forwarded-For", "10.0.0.9, 10.0.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("first two requests should pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("third request should be limited, got %d", codes[2])
	}
	if limiter.scopes[0] != "mutations:10.0.0.9" {
		t.Fatalf("unexpected scope %q", limiter.scopes[0])
	}
}

func TestRateLimitMutationsSkipsReads(t *testing.T) {
	limiter := &countingLimiter{}
	mw := RateLimitMutations(NewRateLimitPolicy("mutations", time.Minute, 1), limiter, nil)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/items", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("reads must not be limited, got %d", rec.Code)
		}
	}
	if len(limiter.scopes) != 0 {
		t.Fatalf("limiter should not be consulted for reads")
	}
}

func TestRateLimitMutationsDisabled(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	mw := RateLimitMutations(NewRateLimitPolicy("mutations", time.Minute, 0), &countingLimiter{}, nil)
	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("disabled policy should pass through, got %d", rec.Code)
	}
}
