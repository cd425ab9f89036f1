package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lazypower/dettato/internal/store"
)

type noteJSON struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func toNoteJSON(notes []store.Note) []noteJSON {
	out := make([]noteJSON, len(notes))
	for i, n := range notes {
		out[i] = noteJSON{ID: n.ID, Content: n.Content, CreatedAt: n.CreatedAt}
	}
	return out
}

// storeError maps a store failure to a status: bad input is the caller's
// fault, anything else means the database is unusable.
func storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrStorageUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var (
		notes []store.Note
		err   error
	)
	if r.URL.Query().Get("all") == "true" {
		notes, err = s.db.AllNotes(userID)
	} else {
		limit := 0
		if l := r.URL.Query().Get("limit"); l != "" {
			if n, convErr := strconv.Atoi(l); convErr == nil && n > 0 {
				limit = n
			}
		}
		notes, err = s.db.RecentNotes(userID, limit)
	}
	if err != nil {
		storeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"count":   len(notes),
		"notes":   toNoteJSON(notes),
	})
}

func (s *Server) handleSaveNote(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	n, err := s.db.SaveNote(userID, req.Content)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, noteJSON{ID: n.ID, Content: n.Content, CreatedAt: n.CreatedAt})
}

func (s *Server) handleGetRetention(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	days, ok, err := s.db.RetentionDays(userID)
	if err != nil {
		storeError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"user_id": userID, "retention_days": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": userID, "retention_days": days})
}

func (s *Server) handleSetRetention(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req struct {
		Days int `json:"days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := s.db.SetRetentionDays(userID, req.Days); err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": userID, "retention_days": req.Days})
}

func (s *Server) handleClearRetention(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if err := s.db.ClearRetention(userID); err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": userID, "retention_days": nil})
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	deleted, err := s.db.CleanupExpired(userID)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": userID, "deleted": deleted})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	sessions, err := s.db.GetRecentSessions(limit)
	if err != nil {
		storeError(w, err)
		return
	}

	type sessionJSON struct {
		SessionID string `json:"session_id"`
		UserID    string `json:"user_id"`
		Status    string `json:"status"`
		TurnCount int    `json:"turn_count"`
		StartedAt int64  `json:"started_at"`
		EndedAt   *int64 `json:"ended_at,omitempty"`
	}
	out := make([]sessionJSON, len(sessions))
	for i, sess := range sessions {
		out[i] = sessionJSON{
			SessionID: sess.SessionID,
			UserID:    sess.UserID,
			Status:    sess.Status,
			TurnCount: sess.TurnCount,
			StartedAt: sess.StartedAt,
			EndedAt:   sess.EndedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(out), "sessions": out})
}
