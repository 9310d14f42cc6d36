package handlers_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sparesledger/internal/config"
)

func TestGlobalRateLimit(t *testing.T) {
	app, _ := newTestApp(t, func(c *config.Config) { c.RateLimit = 3 })

	for i := 0; i < 4; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/items", nil))
		if err != nil {
			t.Fatal(err)
		}
		if i < 3 && resp.StatusCode == http.StatusTooManyRequests {
			t.Fatalf("hit rate limit too early at %d", i)
		}
		if i == 3 && resp.StatusCode != http.StatusTooManyRequests {
			t.Fatalf("expected 429 after limit, got %d", resp.StatusCode)
		}
	}

	// Health and metrics stay reachable.
	for _, path := range []string{"/healthz", "/metrics"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.StatusCode)
		}
	}
}

func TestBodySizeLimit(t *testing.T) {
	app, _ := newTestApp(t)
	b := newBrowser(t, app)

	oversize := bytes.Repeat([]byte("A"), (1<<20)+10)
	req := httptest.NewRequest("POST", "/transactions", bytes.NewReader(oversize))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: b.csrf})
	resp, err := app.Test(req)
	// Fiber returns an error instead of a response when body too large; treat that as pass
	if err != nil {
		if strings.Contains(err.Error(), "body size exceeds") || strings.Contains(err.Error(), "too large") {
			return
		}
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 413 for oversize, got %d body=%s", resp.StatusCode, string(body))
	}
}

func TestMetricsExposeRequestLatency(t *testing.T) {
	app, _ := newTestApp(t)
	if _, err := app.Test(httptest.NewRequest("GET", "/api/v1/items", nil)); err != nil {
		t.Fatal(err)
	}
	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	if err != nil {
		t.Fatal(err)
	}
	s := body(t, resp)
	if !strings.Contains(s, `sparesledger_http_request_duration_seconds_count{method="GET",route="/api/v1/items",status="200"}`) {
		t.Fatalf("request latency series missing:\n%s", s)
	}
	if !strings.Contains(s, "sparesledger_low_stock_items") {
		t.Fatal("ledger gauge missing")
	}
}

func TestStaticAssetsServed(t *testing.T) {
	app, _ := newTestApp(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/static/app.css", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
