package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mahafpc/agrichain-backend/pkg/logger"
)

type fakeCounterStore struct {
	counts map[string]int64
}

func (s *fakeCounterStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if s.counts == nil {
		s.counts = map[string]int64{}
	}
	s.counts[key]++
	return s.counts[key], nil
}

func rateLimitedHandler(store *fakeCounterStore, policy AuthRateLimitPolicy) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("error"), Output: io.Discard})
	return AuthRateLimit(policy, store, logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func loginAttempt(handler http.Handler, ip, email string) int {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"`+email+`","password":"x"}`))
	req.Header.Set("X-Forwarded-For", ip)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp.Code
}

func TestAuthRateLimitBlocksEmailAfterLimit(t *testing.T) {
	store := &fakeCounterStore{}
	handler := rateLimitedHandler(store, NewAuthRateLimitPolicy("login", time.Minute, 100, 3))

	for i := 0; i < 3; i++ {
		if code := loginAttempt(handler, "10.0.0.1", "clerk@rahurifpc.in"); code != http.StatusOK {
			t.Fatalf("attempt %d should pass, got %d", i+1, code)
		}
	}
	if code := loginAttempt(handler, "10.0.0.1", "clerk@rahurifpc.in"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after email limit, got %d", code)
	}
	// a different account from the same address still gets through
	if code := loginAttempt(handler, "10.0.0.1", "other@rahurifpc.in"); code != http.StatusOK {
		t.Fatalf("expected different email to pass, got %d", code)
	}
}

func TestAuthRateLimitBlocksIPAfterLimit(t *testing.T) {
	store := &fakeCounterStore{}
	handler := rateLimitedHandler(store, NewAuthRateLimitPolicy("login", time.Minute, 2, 100))

	loginAttempt(handler, "10.0.0.9", "a@b.in")
	loginAttempt(handler, "10.0.0.9", "c@d.in")
	if code := loginAttempt(handler, "10.0.0.9", "e@f.in"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after ip limit, got %d", code)
	}
	if code := loginAttempt(handler, "10.0.0.10", "g@h.in"); code != http.StatusOK {
		t.Fatalf("expected other ip to pass, got %d", code)
	}
}

func TestAuthRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	store := &fakeCounterStore{}
	handler := rateLimitedHandler(store, NewAuthRateLimitPolicy("login", 0, 0, 0))

	if code := loginAttempt(handler, "10.0.0.1", "clerk@rahurifpc.in"); code != http.StatusOK {
		t.Fatalf("expected passthrough, got %d", code)
	}
	if len(store.counts) != 0 {
		t.Fatal("disabled policy should never touch the store")
	}
}
