package server

import (
	"net/http"
	"testing"
)

func TestSaveAndListNotes(t *testing.T) {
	srv, _ := testServer(t)

	w, resp := do(t, srv.Admin(), "POST", "/api/users/alice/notes", `{"content":"comprare il latte"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	if resp["created_at"] != "2026-03-14 09:30:00" {
		t.Errorf("created_at = %v", resp["created_at"])
	}
	do(t, srv.Admin(), "POST", "/api/users/alice/notes", `{"content":"chiamare Mario"}`)
	do(t, srv.Admin(), "POST", "/api/users/bob/notes", `{"content":"altro utente"}`)

	w, resp = do(t, srv.Admin(), "GET", "/api/users/alice/notes", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if resp["count"] != float64(2) {
		t.Fatalf("count = %v, want 2", resp["count"])
	}
	notes := resp["notes"].([]any)
	first := notes[0].(map[string]any)
	if first["content"] != "chiamare Mario" {
		t.Errorf("first note = %v, want the latest insert", first["content"])
	}

	_, resp = do(t, srv.Admin(), "GET", "/api/users/alice/notes?limit=1", "")
	if resp["count"] != float64(1) {
		t.Errorf("limited count = %v, want 1", resp["count"])
	}
	_, resp = do(t, srv.Admin(), "GET", "/api/users/alice/notes?all=true", "")
	if resp["count"] != float64(2) {
		t.Errorf("all count = %v, want 2", resp["count"])
	}
}

func TestSaveNoteRejectsEmpty(t *testing.T) {
	srv, _ := testServer(t)

	for _, body := range []string{`{"content":""}`, `not json`} {
		w, resp := do(t, srv.Admin(), "POST", "/api/users/alice/notes", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want %d", body, w.Code, http.StatusBadRequest)
		}
		if resp["error"] == nil {
			t.Errorf("%s: expected error message", body)
		}
	}
}

func TestRetentionLifecycle(t *testing.T) {
	srv, _ := testServer(t)

	_, resp := do(t, srv.Admin(), "GET", "/api/users/alice/retention", "")
	if resp["retention_days"] != nil {
		t.Errorf("unset retention = %v, want null", resp["retention_days"])
	}

	w, _ := do(t, srv.Admin(), "PUT", "/api/users/alice/retention", `{"days":7}`)
	if w.Code != http.StatusOK {
		t.Fatalf("put status = %d; body: %s", w.Code, w.Body.String())
	}
	_, resp = do(t, srv.Admin(), "GET", "/api/users/alice/retention", "")
	if resp["retention_days"] != float64(7) {
		t.Errorf("retention = %v, want 7", resp["retention_days"])
	}

	w, _ = do(t, srv.Admin(), "DELETE", "/api/users/alice/retention", "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	_, resp = do(t, srv.Admin(), "GET", "/api/users/alice/retention", "")
	if resp["retention_days"] != nil {
		t.Errorf("cleared retention = %v, want null", resp["retention_days"])
	}
}

func TestSetRetentionRejectsNonPositive(t *testing.T) {
	srv, _ := testServer(t)

	for _, body := range []string{`{"days":0}`, `{"days":-3}`} {
		w, _ := do(t, srv.Admin(), "PUT", "/api/users/alice/retention", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want %d", body, w.Code, http.StatusBadRequest)
		}
	}
}

func TestCleanupEndpoint(t *testing.T) {
	srv, db := testServer(t)

	// Seed an old note directly: the test clock is fixed, so age it in SQL.
	if _, err := db.Exec(`INSERT INTO notes (id, user_id, content, created_at) VALUES ('old', 'alice', 'vecchia', '2026-03-01 09:30:00')`); err != nil {
		t.Fatalf("seed: %v", err)
	}
	do(t, srv.Admin(), "POST", "/api/users/alice/notes", `{"content":"nuova"}`)
	do(t, srv.Admin(), "PUT", "/api/users/alice/retention", `{"days":7}`)

	w, resp := do(t, srv.Admin(), "POST", "/api/users/alice/cleanup", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if resp["deleted"] != float64(1) {
		t.Errorf("deleted = %v, want 1", resp["deleted"])
	}
}

func TestStorageErrorsAre503(t *testing.T) {
	srv, db := testServer(t)
	db.Close()

	paths := []struct {
		method, path, body string
	}{
		{"GET", "/api/users/alice/notes", ""},
		{"POST", "/api/users/alice/notes", `{"content":"x"}`},
		{"GET", "/api/users/alice/retention", ""},
		{"POST", "/api/users/alice/cleanup", ""},
		{"GET", "/api/sessions", ""},
	}
	for _, p := range paths {
		w, _ := do(t, srv.Admin(), p.method, p.path, p.body)
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s %s: status = %d, want %d", p.method, p.path, w.Code, http.StatusServiceUnavailable)
		}
	}
}

func TestListSessions(t *testing.T) {
	srv, _ := testServer(t)

	do(t, srv, "POST", "/", launchBody("sess-a", "alice"))
	do(t, srv, "POST", "/", launchBody("sess-b", "bob"))

	w, resp := do(t, srv.Admin(), "GET", "/api/sessions?limit=10", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if resp["count"] != float64(2) {
		t.Errorf("count = %v, want 2", resp["count"])
	}
}
