package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T, perMinute int) (*Limiter, *time.Time) {
	t.Helper()
	rl := NewLimiter(Config{RequestsPerMinute: perMinute, CleanupInterval: time.Hour})
	t.Cleanup(rl.Stop)

	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }
	return rl, &clock
}

func TestAllow(t *testing.T) {
	rl, clock := newTestLimiter(t, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("fourth request in the window should be refused")
	}
	if !rl.Allow("5.6.7.8") {
		t.Fatal("other clients have their own window")
	}
	if rl.Rejected() != 1 {
		t.Errorf("expected 1 rejection, got %d", rl.Rejected())
	}

	*clock = clock.Add(time.Minute)
	if !rl.Allow("1.2.3.4") {
		t.Fatal("a new window should allow requests again")
	}
}

func TestRefusedRequestsDoNotExtendWindow(t *testing.T) {
	rl, clock := newTestLimiter(t, 1)

	rl.Allow("ip")
	*clock = clock.Add(50 * time.Second)
	if rl.Allow("ip") {
		t.Fatal("expected refusal inside the window")
	}
	*clock = clock.Add(10 * time.Second)
	if !rl.Allow("ip") {
		t.Fatal("window should reset one minute after it started")
	}
}

func TestCleanupStaleEntries(t *testing.T) {
	rl, clock := newTestLimiter(t, 5)

	rl.Allow("a")
	*clock = clock.Add(11 * time.Minute)
	rl.Allow("b")

	if removed := rl.cleanupStaleEntries(); removed != 1 {
		t.Fatalf("expected 1 stale entry removed, got %d", removed)
	}
	if rl.ActiveClients() != 1 {
		t.Errorf("expected 1 active client, got %d", rl.ActiveClients())
	}
}

func TestMiddleware(t *testing.T) {
	rl, _ := newTestLimiter(t, 1)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := rl.Middleware(func(*http.Request) string { return "ip" }, nil, http.MethodPost)(ok)

	do := func(method string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(method, "/api/receipts/scan", nil))
		return rec
	}

	if rec := do(http.MethodPost); rec.Code != http.StatusNoContent {
		t.Fatalf("first POST: got %d", rec.Code)
	}
	rec := do(http.MethodPost)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second POST: got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("expected Retry-After 60, got %q", rec.Header().Get("Retry-After"))
	}
	if rec := do(http.MethodGet); rec.Code != http.StatusNoContent {
		t.Fatalf("GET should not be limited, got %d", rec.Code)
	}
}
