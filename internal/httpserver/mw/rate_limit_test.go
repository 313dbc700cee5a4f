package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimitBurst(t *testing.T) {
	h := RateLimit(RateLimitConfig{Burst: 2, RefillPerIPPerMin: 1})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	do := func() int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	if do() != http.StatusOK || do() != http.StatusOK {
		t.Fatal("requests within burst rejected")
	}
	if code := do(); code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429 after burst", code)
	}
}

func TestRateLimitPerIP(t *testing.T) {
	h := RateLimit(RateLimitConfig{Burst: 1, RefillPerIPPerMin: 1})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	if do("10.0.0.1:1") != http.StatusOK {
		t.Fatal("first request rejected")
	}
	if do("10.0.0.1:2") != http.StatusTooManyRequests {
		t.Fatal("same IP not limited")
	}
	if do("10.0.0.2:1") != http.StatusOK {
		t.Fatal("other IP limited by first IP's bucket")
	}
}

func TestLimiterRefill(t *testing.T) {
	l := newLimiter(RateLimitConfig{Burst: 1, RefillPerIPPerMin: 60})
	now := time.Now()

	if ok, _, _ := l.allow("ip", now); !ok {
		t.Fatal("first token denied")
	}
	if ok, _, retry := l.allow("ip", now); ok || retry < 1 {
		t.Fatalf("empty bucket allowed (retry=%d)", retry)
	}
	// one token per second at 60/min
	if ok, _, _ := l.allow("ip", now.Add(time.Second)); !ok {
		t.Fatal("bucket did not refill")
	}
}
