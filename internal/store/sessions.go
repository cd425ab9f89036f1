package store

import (
	"database/sql"
	"errors"
)

// Session records that a conversation took place. It carries no dictation
// state; that travels with the conversation itself.
type Session struct {
	ID        int64
	SessionID string
	UserID    string
	StartedAt int64
	EndedAt   *int64
	Status    string
	TurnCount int
}

const sessionColumns = `id, session_id, user_id, started_at, ended_at, status, turn_count`

func scanSession(row interface{ Scan(...any) error }) (*Session, error) {
	var s Session
	var endedAt sql.NullInt64
	if err := row.Scan(&s.ID, &s.SessionID, &s.UserID, &s.StartedAt, &endedAt, &s.Status, &s.TurnCount); err != nil {
		return nil, err
	}
	if endedAt.Valid {
		s.EndedAt = &endedAt.Int64
	}
	return &s, nil
}

// InitSession returns the tracking row for sessionID, creating it when the
// conversation is new. created reports whether this call inserted it.
func (db *DB) InitSession(sessionID, userID string) (s *Session, created bool, err error) {
	if sessionID == "" {
		return nil, false, invalid("init session", "session id is empty")
	}
	now := db.Now().UnixMilli()

	result, err := db.Exec(`
		INSERT INTO sessions (session_id, user_id, started_at, status)
		VALUES (?, ?, ?, 'active')
		ON CONFLICT(session_id) DO NOTHING
	`, sessionID, userID, now)
	if err != nil {
		return nil, false, unavailable("init session", err)
	}
	rows, _ := result.RowsAffected()

	s, err = db.GetSession(sessionID)
	if err != nil {
		return nil, false, err
	}
	if s == nil {
		return nil, false, unavailable("init session", errors.New("session vanished after insert"))
	}
	return s, rows > 0, nil
}

// GetSession returns a session by its session_id, or nil if unknown.
func (db *DB) GetSession(sessionID string) (*Session, error) {
	s, err := scanSession(db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE session_id = ?`, sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("get session", err)
	}
	return s, nil
}

// EndSession marks a session ended. Ending an unknown or already ended
// session is a no-op.
func (db *DB) EndSession(sessionID string) error {
	_, err := db.Exec(`
		UPDATE sessions SET status = 'ended', ended_at = COALESCE(ended_at, ?)
		WHERE session_id = ? AND status = 'active'
	`, db.Now().UnixMilli(), sessionID)
	if err != nil {
		return unavailable("end session", err)
	}
	return nil
}

// IncrementTurnCount bumps turn_count for an active session.
func (db *DB) IncrementTurnCount(sessionID string) error {
	_, err := db.Exec(`
		UPDATE sessions SET turn_count = turn_count + 1
		WHERE session_id = ? AND status = 'active'
	`, sessionID)
	if err != nil {
		return unavailable("increment turn count", err)
	}
	return nil
}

// GetRecentSessions returns the most recent sessions, ordered by started_at DESC.
func (db *DB) GetRecentSessions(limit int) ([]Session, error) {
	rows, err := db.Query(`SELECT `+sessionColumns+` FROM sessions ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, unavailable("recent sessions", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, unavailable("recent sessions", err)
		}
		sessions = append(sessions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("recent sessions", err)
	}
	return sessions, nil
}
