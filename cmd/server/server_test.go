package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/voiceai-site/internal/db"
	"github.com/Simplici0/voiceai-site/internal/migrations"
	"github.com/Simplici0/voiceai-site/internal/ratelimit"
	"github.com/Simplici0/voiceai-site/internal/seed"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "correct horse battery"
	testSessionSecret = "test-session-secret"

	testAPIRequestsPerMinute = 50
)

var testNow = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

// newTestServer builds a server on a fresh database. requestsPerMinute
// applies to form posts; the calculator API gets testAPIRequestsPerMinute.
func newTestServer(t *testing.T, requestsPerMinute int) *server {
	t.Helper()

	database, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	if err := migrations.Up(database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if _, err := seed.Run(database, seed.Config{AdminEmail: testAdminEmail, AdminPassword: testAdminPassword}); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}

	limiter := ratelimit.NewMemory(requestsPerMinute, time.Minute)
	t.Cleanup(limiter.Stop)
	apiLimiter := ratelimit.NewMemory(testAPIRequestsPerMinute, time.Minute)
	t.Cleanup(apiLimiter.Stop)

	auth := newAuthService(database, testSessionSecret)
	auth.now = func() time.Time { return testNow }

	srv := newServer(database, auth, limiter, apiLimiter)
	srv.now = func() time.Time { return testNow }

	var next int
	srv.newID = func() string {
		next++
		return fmt.Sprintf("00000000-0000-4000-8000-%012d", next)
	}
	return srv
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func sessionCookie(t *testing.T, srv *server) *http.Cookie {
	t.Helper()

	value, err := srv.auth.createSessionValue(testAdminEmail)
	if err != nil {
		t.Fatalf("createSessionValue returned error: %v", err)
	}
	return &http.Cookie{Name: sessionCookieName, Value: value}
}

func countRows(t *testing.T, database *sql.DB, table string) int {
	t.Helper()

	var n int
	if err := database.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func assertContains(t *testing.T, body string, expected ...string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(body, want) {
			t.Fatalf("expected body to contain %q, got: %s", want, body)
		}
	}
}

func TestRoutes_PublicPagesRender(t *testing.T) {
	srv := newTestServer(t, 100)
	handler := srv.routes()

	for _, tc := range []struct {
		path     string
		expected []string
	}{
		{"/", []string{"Book a demo", "Pricing", "Starter"}},
		{"/voice-ai", []string{"$4,602", "Tell us where you're at", "Developing custom AI solution"}},
		{"/roi", []string{"$4,602", "$153", "$55,991", "$1,158"}},
		{"/login", []string{"Admin login"}},
	} {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tc.path, nil))

		if rr.Code != http.StatusOK {
			t.Fatalf("GET %s: expected status 200, got %d", tc.path, rr.Code)
		}
		if !strings.Contains(rr.Header().Get("Content-Type"), "text/html") {
			t.Fatalf("GET %s: expected html, got %q", tc.path, rr.Header().Get("Content-Type"))
		}
		assertContains(t, rr.Body.String(), tc.expected...)
	}
}

func TestRoutes_StaticAssets(t *testing.T) {
	srv := newTestServer(t, 100)

	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/roi.js", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	// Stale responses are dropped and failures surface in the status line.
	assertContains(t, rr.Body.String(), "/api/roi", "current !== seq", "[data-roi-status]", "res.status === 429")

	rr = httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/roi", nil))
	assertContains(t, rr.Body.String(), "data-roi-status")
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, 100)

	rr := httptest.NewRecorder()
	srv.handleHealth(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("unexpected health response %d %q", rr.Code, rr.Body.String())
	}
}

func TestHandleTheme_SetsCookieAndReturnsToReferer(t *testing.T) {
	srv := newTestServer(t, 100)

	req := httptest.NewRequest(http.MethodGet, "/theme?mode=dark", nil)
	req.Header.Set("Referer", "http://example.com/roi?averageOrderValue=50")
	rr := httptest.NewRecorder()
	srv.handleTheme(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", rr.Code)
	}
	if got := rr.Header().Get("Location"); got != "/roi?averageOrderValue=50" {
		t.Fatalf("unexpected redirect %q", got)
	}

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != themeCookieName || cookies[0].Value != themeDark {
		t.Fatalf("unexpected cookies: %+v", cookies)
	}
}

func TestHandleTheme_IgnoresForeignReferer(t *testing.T) {
	srv := newTestServer(t, 100)

	req := httptest.NewRequest(http.MethodGet, "/theme?mode=light", nil)
	req.Header.Set("Referer", "https://evil.test/phish")
	rr := httptest.NewRecorder()
	srv.handleTheme(rr, req)

	if got := rr.Header().Get("Location"); got != "/" {
		t.Fatalf("expected redirect to /, got %q", got)
	}
}

func TestRenderTemplate_UsesThemeCookie(t *testing.T) {
	srv := newTestServer(t, 100)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: themeCookieName, Value: themeDark})
	rr := httptest.NewRecorder()
	srv.handleHome(rr, req)

	assertContains(t, rr.Body.String(), `data-theme="dark"`, `href="/theme?mode=light"`)
}
