package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lazypower/dettato/internal/responses"
	"github.com/lazypower/dettato/internal/skill"
	"github.com/lazypower/dettato/internal/store"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func testServerWith(t *testing.T, opts Options) (*Server, *store.DB) {
	t.Helper()
	db, err := store.OpenMemory(store.WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	if opts.Logger == nil {
		opts.Logger = quiet
	}
	h := skill.New(db, responses.Default(), nil, skill.Options{Logger: quiet})
	return New(db, h, "test-version", opts), db
}

func testServer(t *testing.T) (*Server, *store.DB) {
	t.Helper()
	return testServerWith(t, Options{})
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var resp map[string]any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s %s: decode body %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w, resp
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := testServer(t)

	w, body := do(t, srv.Admin(), "GET", "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["version"] != "test-version" {
		t.Errorf("version = %v, want test-version", body["version"])
	}
	if body["db"] != true {
		t.Errorf("db = %v, want true", body["db"])
	}
	if body["schema_version"] != float64(3) {
		t.Errorf("schema_version = %v, want 3", body["schema_version"])
	}
}

func TestHealthReportsClosedDB(t *testing.T) {
	srv, db := testServer(t)
	db.Close()

	w, body := do(t, srv.Admin(), "GET", "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if body["db"] != false {
		t.Errorf("db = %v, want false", body["db"])
	}
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := testServer(t)

	req := httptest.NewRequest("GET", "/api/nope", nil)
	w := httptest.NewRecorder()
	srv.Admin().ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestWebhookHandlerDoesNotServeOperatorAPI(t *testing.T) {
	srv, db := testServer(t)
	if _, err := db.SaveNote("alice", "nota privata"); err != nil {
		t.Fatalf("SaveNote: %v", err)
	}

	reqs := []struct {
		method, path, body string
	}{
		{"GET", "/api/users/alice/notes?all=true", ""},
		{"POST", "/api/users/alice/notes", `{"content":"x"}`},
		{"PUT", "/api/users/alice/retention", `{"days":1}`},
		{"DELETE", "/api/users/alice/retention", ""},
		{"POST", "/api/users/alice/cleanup", ""},
		{"GET", "/api/sessions", ""},
		{"GET", "/api/health", ""},
	}
	for _, p := range reqs {
		var body io.Reader
		if p.body != "" {
			body = strings.NewReader(p.body)
		}
		req := httptest.NewRequest(p.method, p.path, body)
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, req)
		if w.Code < 400 {
			t.Errorf("%s %s on webhook handler: status = %d, want refusal", p.method, p.path, w.Code)
		}
		if strings.Contains(w.Body.String(), "nota privata") {
			t.Errorf("%s %s leaked note content: %s", p.method, p.path, w.Body.String())
		}
	}

	if _, ok, _ := db.RetentionDays("alice"); ok {
		t.Error("retention was set through the webhook handler")
	}
}

func TestAdminTokenRequired(t *testing.T) {
	srv, _ := testServerWith(t, Options{AdminToken: "s3cret"})

	w, _ := do(t, srv.Admin(), "GET", "/api/users/alice/notes", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	req := httptest.NewRequest("GET", "/api/users/alice/notes", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	srv.Admin().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	req = httptest.NewRequest("GET", "/api/users/alice/notes", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec = httptest.NewRecorder()
	srv.Admin().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("right token: status = %d, want %d", rec.Code, http.StatusOK)
	}
}
