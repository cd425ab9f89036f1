package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the storage layout of notes.created_at. It matches
// SQLite's CURRENT_TIMESTAMP so julianday() can read it directly.
const TimestampLayout = "2006-01-02 15:04:05"

// DefaultRecentLimit is used by RecentNotes when the caller passes no limit.
const DefaultRecentLimit = 5

// Note is a single committed dictation. Notes are never updated in place.
type Note struct {
	ID        string
	UserID    string
	Content   string
	CreatedAt string // TimestampLayout, UTC
}

// CreatedTime parses CreatedAt.
func (n Note) CreatedTime() (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, n.CreatedAt, time.UTC)
}

// SaveNote inserts a new note for userID stamped with the store clock.
func (db *DB) SaveNote(userID, content string) (*Note, error) {
	if userID == "" {
		return nil, invalid("save note", "user id is empty")
	}
	if content == "" {
		return nil, invalid("save note", "content is empty")
	}

	n := &Note{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   content,
		CreatedAt: db.Now().Format(TimestampLayout),
	}
	_, err := db.Exec(`
		INSERT INTO notes (id, user_id, content, created_at)
		VALUES (?, ?, ?, ?)
	`, n.ID, n.UserID, n.Content, n.CreatedAt)
	if err != nil {
		return nil, unavailable("save note", err)
	}
	return n, nil
}

// RecentNotes returns at most limit notes for userID, newest first. Notes
// sharing a timestamp come back in reverse insertion order.
func (db *DB) RecentNotes(userID string, limit int) ([]Note, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return db.queryNotes("recent notes", `
		SELECT id, user_id, content, created_at
		FROM notes WHERE user_id = ?
		ORDER BY created_at DESC, seq DESC
		LIMIT ?
	`, userID, limit)
}

// AllNotes returns every note for userID, newest first.
func (db *DB) AllNotes(userID string) ([]Note, error) {
	return db.queryNotes("all notes", `
		SELECT id, user_id, content, created_at
		FROM notes WHERE user_id = ?
		ORDER BY created_at DESC, seq DESC
	`, userID)
}

// CountNotes returns how many notes userID currently has.
func (db *DB) CountNotes(userID string) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM notes WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, unavailable("count notes", err)
	}
	return count, nil
}

// CleanupExpired deletes userID's notes older than their retention window
// and returns how many were removed. Users without a retention setting keep
// everything.
//
// Age is counted in whole days against the store clock. The window is read
// by a sub-select in the same statement, so the delete is atomic and the
// NULL sub-select of an unset user matches no rows.
func (db *DB) CleanupExpired(userID string) (int, error) {
	now := db.Now().Format(TimestampLayout)
	result, err := db.Exec(`
		DELETE FROM notes
		WHERE user_id = ?
		  AND CAST(julianday(?) - julianday(created_at) AS INTEGER) >
		      (SELECT retention_days FROM user_settings WHERE user_id = ?)
	`, userID, now, userID)
	if err != nil {
		return 0, unavailable("cleanup expired", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, unavailable("cleanup expired", err)
	}
	return int(n), nil
}

func (db *DB) queryNotes(op, query string, args ...any) ([]Note, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, unavailable(op, err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.Content, &n.CreatedAt); err != nil {
			return nil, unavailable(op, fmt.Errorf("scan note: %w", err))
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(op, err)
	}
	return notes, nil
}
