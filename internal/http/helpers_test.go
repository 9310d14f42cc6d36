package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"sparesledger/internal/config"
	"sparesledger/internal/domain"
	"sparesledger/internal/http/handlers"
	applog "sparesledger/internal/log"
	"sparesledger/internal/repos"
	"sparesledger/internal/services"
)

var fixedNow = time.Date(2025, time.February, 3, 9, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T, tweak ...func(*config.Config)) (*fiber.App, *handlers.Deps) {
	t.Helper()
	cfg := config.Default()
	cfg.Environment = "test"
	for _, f := range tweak {
		f(&cfg)
	}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	deps := handlers.NewDeps(db, cfg, services.WithClock(func() time.Time { return fixedNow }))
	return handlers.NewApp(cfg, deps), deps
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// browser carries the sid and csrf_ cookies between requests.
type browser struct {
	t    *testing.T
	app  *fiber.App
	sid  string
	csrf string
}

func newBrowser(t *testing.T, app *fiber.App) *browser {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/login", nil))
	if err != nil {
		t.Fatal(err)
	}
	tok := extractCookie(resp, "csrf_")
	if tok == "" {
		t.Fatal("csrf token missing")
	}
	return &browser{t: t, app: app, csrf: tok}
}

// as binds the browser to role without going through the form.
func (b *browser) as(deps *handlers.Deps, role domain.Role) *browser {
	b.t.Helper()
	b.sid = "sid-" + string(role)
	if _, err := deps.Roles.Pick(b.sid, role, ""); err != nil {
		b.t.Fatalf("pick role: %v", err)
	}
	return b
}

func (b *browser) do(req *http.Request) *http.Response {
	b.t.Helper()
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: b.csrf})
	if b.sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: b.sid})
	}
	resp, err := b.app.Test(req, -1)
	if err != nil {
		b.t.Fatal(err)
	}
	if sid := extractCookie(resp, "sid"); sid != "" {
		b.sid = sid
	}
	return resp
}

func (b *browser) get(path string) *http.Response {
	return b.do(httptest.NewRequest("GET", path, nil))
}

func (b *browser) post(path string, form url.Values) *http.Response {
	if form == nil {
		form = url.Values{}
	}
	if form.Get("csrf") == "" {
		form.Set("csrf", b.csrf)
	}
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

type logEntry struct {
	Kind   string         `json:"kind"`
	Action string         `json:"action"`
	Role   string         `json:"role"`
	Status int            `json:"status"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf lockedBuf
	old := applog.Logger
	applog.SetOutput(&buf)
	defer func() { applog.Logger = old }()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.b.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
