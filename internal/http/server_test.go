package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"daytrack/internal/cache"
	"daytrack/internal/core"
	"daytrack/internal/middleware/ratelimit"
	"daytrack/internal/services"
	"daytrack/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	svc := services.NewRecordService(storage.NewMemoryStore(), nil,
		cache.NewLRUCache[core.MonthlySummary](10, time.Minute), nil)
	return NewServer(":0", svc, nil, nil)
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		if rr := do(t, srv, http.MethodGet, path, ""); rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("db gone") }

func TestReadyReportsBackendFailure(t *testing.T) {
	svc := services.NewRecordService(storage.NewMemoryStore(), nil, nil, nil)
	srv := NewServer(":0", svc, failingPinger{}, nil)
	if rr := do(t, srv, http.MethodGet, "/readyz", ""); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", rr.Code)
	}
}

func TestCreateAndDuplicate(t *testing.T) {
	srv := newTestServer(t)
	body := `{"date":"2024-03-05","rise":"06:00","sleep":"23:30","salat":{"fajr":true,"isha":true},"quran":"10","expense":"12.5","badwork":"scrolling"}`

	rr := do(t, srv, http.MethodPost, "/api/daily", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing request id header")
	}
	created := decode[map[string]any](t, rr)
	if created["id"] == "" || created["riseDisplay"] != "6:00 AM" || created["sleepDisplay"] != "11:30 PM" {
		t.Fatalf("created = %v", created)
	}
	if created["sleepHours"] != 6.5 {
		t.Fatalf("sleepHours = %v", created["sleepHours"])
	}

	rr = do(t, srv, http.MethodPost, "/api/daily", body)
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate status=%d", rr.Code)
	}
	msg := decode[errorResponse](t, rr)
	if !strings.Contains(msg.Message, "An entry for 2024-03-05 already exists") {
		t.Fatalf("message = %q", msg.Message)
	}
}

func TestCreateValidation(t *testing.T) {
	srv := newTestServer(t)
	if rr := do(t, srv, http.MethodPost, "/api/daily", `{"date":`); rr.Code != http.StatusBadRequest {
		t.Fatalf("malformed body status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodPost, "/api/daily", `{"date":"next week"}`); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad date status=%d", rr.Code)
	}
	// numeric junk is stored, not rejected
	if rr := do(t, srv, http.MethodPost, "/api/daily", `{"date":"2024-03-06","expense":"a lot"}`); rr.Code != http.StatusCreated {
		t.Fatalf("junk expense status=%d", rr.Code)
	}
}

func TestUpdateDeleteAndList(t *testing.T) {
	srv := newTestServer(t)
	a := decode[map[string]any](t, do(t, srv, http.MethodPost, "/api/daily", `{"date":"2024-03-01","expense":"1"}`))
	do(t, srv, http.MethodPost, "/api/daily", `{"date":"2024-03-02"}`)
	do(t, srv, http.MethodPost, "/api/daily", `{"date":"2024-04-01"}`)
	id := a["id"].(string)

	rr := do(t, srv, http.MethodPut, "/api/daily/"+id, `{"date":"2024-03-01","expense":"3"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status=%d body=%s", rr.Code, rr.Body.String())
	}
	if got := decode[map[string]any](t, rr)["expense"]; got != "3" {
		t.Fatalf("expense = %v", got)
	}

	if rr := do(t, srv, http.MethodPut, "/api/daily/"+id, `{"date":"2024-03-02"}`); rr.Code != http.StatusConflict {
		t.Fatalf("update onto taken date status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodPut, "/api/daily/nope", `{"date":"2024-05-01"}`); rr.Code != http.StatusNotFound {
		t.Fatalf("update missing status=%d", rr.Code)
	}

	march := decode[[]map[string]any](t, do(t, srv, http.MethodGet, "/api/daily?month=2024-03", ""))
	if len(march) != 2 {
		t.Fatalf("march entries = %d", len(march))
	}
	all := decode[[]map[string]any](t, do(t, srv, http.MethodGet, "/api/daily", ""))
	if len(all) != 3 {
		t.Fatalf("all entries = %d", len(all))
	}

	if rr := do(t, srv, http.MethodDelete, "/api/daily/"+id, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/api/daily/"+id, ""); rr.Code != http.StatusNotFound {
		t.Fatalf("get deleted status=%d", rr.Code)
	}
}

func TestMonthSummary(t *testing.T) {
	srv := newTestServer(t)
	for _, body := range []string{
		`{"date":"2024-02-01","rise":"06:00","sleep":"22:00","salat":{"fajr":true,"dhuhr":true,"asr":true,"maghrib":true,"isha":true},"quran":5,"expense":"10.10"}`,
		`{"date":"2024-02-02","rise":"07:00","sleep":"23:00","quran":"3","expense":"0.15"}`,
		`{"date":"2024-03-01","expense":"99"}`,
	} {
		if rr := do(t, srv, http.MethodPost, "/api/daily", body); rr.Code != http.StatusCreated {
			t.Fatalf("seed status=%d body=%s", rr.Code, rr.Body.String())
		}
	}

	rr := do(t, srv, http.MethodGet, "/api/summary?month=2024-02", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("summary status=%d", rr.Code)
	}
	s := decode[summaryResponse](t, rr)
	if s.EntryCount != 2 || s.TotalExpenseText != "10.25" || s.TotalExpense != 10.25 {
		t.Fatalf("expense summary = %+v", s)
	}
	if s.TotalScripturePages != 8 || s.AverageSleepHours != 8.0 || s.DaysInMonth != 29 {
		t.Fatalf("summary = %+v", s)
	}
	// 5 of 5*29
	if s.PrayerAdherencePercent != 3.4 || s.PrayerCounts["fajr"] != 1 {
		t.Fatalf("adherence = %v, counts = %v", s.PrayerAdherencePercent, s.PrayerCounts)
	}
	if len(s.RecentActivity) != 2 || s.RecentActivity[0].Date != "2024-02-02" {
		t.Fatalf("recent = %+v", s.RecentActivity)
	}

	empty := decode[summaryResponse](t, do(t, srv, http.MethodGet, "/api/summary?month=2024-07", ""))
	if empty.EntryCount != 0 || empty.RecentActivity == nil || len(empty.RecentActivity) != 0 {
		t.Fatalf("empty summary = %+v", empty)
	}

	for _, q := range []string{"", "?month=2024-13", "?month=july"} {
		if rr := do(t, srv, http.MethodGet, "/api/summary"+q, ""); rr.Code != http.StatusBadRequest {
			t.Fatalf("%q status=%d", q, rr.Code)
		}
	}
}

func TestWriteRateLimit(t *testing.T) {
	srv := newTestServer(t)
	srv.LimitWrites(ratelimit.NewLimiter(1))

	if rr := do(t, srv, http.MethodPost, "/api/daily", `{"date":"2024-05-01"}`); rr.Code != http.StatusCreated {
		t.Fatalf("first create status = %d", rr.Code)
	}
	rr := do(t, srv, http.MethodPost, "/api/daily", `{"date":"2024-05-02"}`)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second create status = %d, want 429", rr.Code)
	}
	if got := decode[errorResponse](t, rr); got.Message == "" {
		t.Error("expected an error message")
	}

	// reads are never limited
	if rr := do(t, srv, http.MethodGet, "/api/daily", ""); rr.Code != http.StatusOK {
		t.Errorf("list status = %d", rr.Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"socket address", nil, "192.0.2.1"},
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.2"}, "198.51.100.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
