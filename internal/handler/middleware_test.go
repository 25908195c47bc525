package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/msomdec/photolog/internal/handler"
	"github.com/msomdec/photolog/internal/service"
)

func TestSecurityHeaders(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.SecurityHeaders(next).ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected nosniff, got %q", got)
	}
	if got := resp.Header.Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("expected DENY, got %q", got)
	}
	if got := resp.Header.Get("Referrer-Policy"); got != "no-referrer" {
		t.Fatalf("expected no-referrer, got %q", got)
	}
}

func TestRateLimit_RejectsWhenBucketEmpty(t *testing.T) {
	limiter := service.NewTokenBucket(0, 2) // two requests, no refill
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	limited := handler.RateLimit(limiter, next)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		w := httptest.NewRecorder()
		limited.ServeHTTP(w, req)
		if w.Code != http.StatusNoContent {
			t.Fatalf("request %d: expected 204, got %d", i+1, w.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	w := httptest.NewRecorder()
	limited.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after bucket drained, got %d", w.Code)
	}
}

func TestRateLimit_KeysByClientIP(t *testing.T) {
	limiter := service.NewTokenBucket(0, 1)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	limited := handler.RateLimit(limiter, next)

	first := httptest.NewRequest(http.MethodPost, "/", nil)
	first.RemoteAddr = "192.0.2.1:1000"
	w := httptest.NewRecorder()
	limited.ServeHTTP(w, first)
	if w.Code != http.StatusNoContent {
		t.Fatalf("first client: expected 204, got %d", w.Code)
	}

	// A different client has its own bucket.
	second := httptest.NewRequest(http.MethodPost, "/", nil)
	second.RemoteAddr = "192.0.2.2:1000"
	w = httptest.NewRecorder()
	limited.ServeHTTP(w, second)
	if w.Code != http.StatusNoContent {
		t.Fatalf("second client: expected 204, got %d", w.Code)
	}
}
