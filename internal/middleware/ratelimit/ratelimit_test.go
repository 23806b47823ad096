package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(perMinute int) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	l := NewLimiter(perMinute)
	l.now = clock.now
	return l, clock
}

func TestAllowWindow(t *testing.T) {
	l, clock := newTestLimiter(2)

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("first two requests should pass")
	}
	if l.Allow("a") {
		t.Error("third request within the window should be rejected")
	}
	if !l.Allow("b") {
		t.Error("other clients are counted separately")
	}

	clock.advance(time.Minute)
	if !l.Allow("a") {
		t.Error("a new window should reset the counter")
	}
}

func TestRejectedRequestsDoNotExtendWindow(t *testing.T) {
	l, clock := newTestLimiter(1)
	l.Allow("a")
	for i := 0; i < 3; i++ {
		clock.advance(15 * time.Second)
		l.Allow("a")
	}
	clock.advance(15 * time.Second)
	if !l.Allow("a") {
		t.Error("window should have rolled over despite rejected requests")
	}
}

func TestCleanExpired(t *testing.T) {
	l, clock := newTestLimiter(5)
	l.Allow("old")
	clock.advance(11 * time.Minute)
	l.Allow("fresh")

	if n := l.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
	if n := l.ActiveClients(); n != 1 {
		t.Errorf("ActiveClients() = %d, want 1", n)
	}
}

func TestMiddleware(t *testing.T) {
	l, _ := newTestLimiter(1)
	h := l.Middleware(func(r *http.Request) string { return r.RemoteAddr }, nil)(
		func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	codes := make([]int, 2)
	for i := range codes {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		rec := httptest.NewRecorder()
		h(rec, req)
		codes[i] = rec.Code
		if i == 1 && rec.Header().Get("Retry-After") != "60" {
			t.Error("missing Retry-After on rejection")
		}
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [204 429]", codes)
	}
}
