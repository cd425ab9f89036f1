package store

import (
	"testing"
	"time"
)

func TestInitSession(t *testing.T) {
	db := testDB(t)

	s, created, err := db.InitSession("sess-001", "user-1")
	if err != nil {
		t.Fatalf("InitSession: %v", err)
	}
	if !created {
		t.Error("expected created = true for new session")
	}
	if s.SessionID != "sess-001" {
		t.Errorf("SessionID = %q, want sess-001", s.SessionID)
	}
	if s.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", s.UserID)
	}
	if s.Status != "active" {
		t.Errorf("Status = %q, want active", s.Status)
	}
	if s.TurnCount != 0 {
		t.Errorf("TurnCount = %d, want 0", s.TurnCount)
	}
}

func TestInitSessionResume(t *testing.T) {
	db := testDB(t)

	s1, _, err := db.InitSession("sess-001", "user-1")
	if err != nil {
		t.Fatalf("InitSession: %v", err)
	}

	s2, created, err := db.InitSession("sess-001", "user-1")
	if err != nil {
		t.Fatalf("InitSession resume: %v", err)
	}
	if created {
		t.Error("expected created = false on resume")
	}
	if s1.ID != s2.ID {
		t.Errorf("resumed session ID = %d, want %d", s2.ID, s1.ID)
	}
}

func TestGetSession(t *testing.T) {
	db := testDB(t)

	// Not found returns nil
	s, err := db.GetSession("nonexistent")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if s != nil {
		t.Errorf("expected nil for nonexistent session, got %+v", s)
	}

	db.InitSession("sess-001", "user-1")
	s, err = db.GetSession("sess-001")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if s == nil {
		t.Fatal("expected session, got nil")
	}
}

func TestEndSession(t *testing.T) {
	db := testDB(t)

	db.InitSession("sess-001", "user-1")
	if err := db.EndSession("sess-001"); err != nil {
		t.Fatalf("EndSession: %v", err)
	}

	s, _ := db.GetSession("sess-001")
	if s.Status != "ended" {
		t.Errorf("Status = %q, want ended", s.Status)
	}
	if s.EndedAt == nil {
		t.Error("EndedAt should be set")
	}

	// Ending again or ending an unknown session is a no-op.
	if err := db.EndSession("sess-001"); err != nil {
		t.Fatalf("EndSession on ended: %v", err)
	}
	if err := db.EndSession("unknown"); err != nil {
		t.Fatalf("EndSession on unknown: %v", err)
	}
}

func TestIncrementTurnCount(t *testing.T) {
	db := testDB(t)

	db.InitSession("sess-001", "user-1")
	for i := 0; i < 3; i++ {
		if err := db.IncrementTurnCount("sess-001"); err != nil {
			t.Fatalf("IncrementTurnCount: %v", err)
		}
	}

	s, _ := db.GetSession("sess-001")
	if s.TurnCount != 3 {
		t.Errorf("TurnCount = %d, want 3", s.TurnCount)
	}
}

func TestGetRecentSessions(t *testing.T) {
	db, clock := testDBWithClock(t)

	db.InitSession("sess-001", "user-1")
	clock.Advance(time.Second)
	db.InitSession("sess-002", "user-2")
	clock.Advance(time.Second)
	db.InitSession("sess-003", "user-1")

	sessions, err := db.GetRecentSessions(2)
	if err != nil {
		t.Fatalf("GetRecentSessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}
	if sessions[0].SessionID != "sess-003" || sessions[1].SessionID != "sess-002" {
		t.Errorf("order = [%s %s], want [sess-003 sess-002]", sessions[0].SessionID, sessions[1].SessionID)
	}
}
