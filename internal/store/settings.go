package store

import (
	"database/sql"
	"errors"
)

// SetRetentionDays sets userID's retention window, replacing any previous
// value.
func (db *DB) SetRetentionDays(userID string, days int) error {
	if userID == "" {
		return invalid("set retention", "user id is empty")
	}
	if days <= 0 {
		return invalid("set retention", "days must be positive")
	}
	_, err := db.Exec(`
		INSERT INTO user_settings (user_id, retention_days, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			retention_days = excluded.retention_days,
			updated_at     = excluded.updated_at
	`, userID, days, db.Now().UnixMilli())
	if err != nil {
		return unavailable("set retention", err)
	}
	return nil
}

// RetentionDays returns userID's retention window. ok is false when none is
// configured.
func (db *DB) RetentionDays(userID string) (days int, ok bool, err error) {
	err = db.QueryRow(`SELECT retention_days FROM user_settings WHERE user_id = ?`, userID).Scan(&days)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, unavailable("get retention", err)
	}
	return days, true, nil
}

// ClearRetention removes userID's retention window. Clearing an unset user
// is not an error.
func (db *DB) ClearRetention(userID string) error {
	if _, err := db.Exec(`DELETE FROM user_settings WHERE user_id = ?`, userID); err != nil {
		return unavailable("clear retention", err)
	}
	return nil
}

// RetentionUsers lists every user with a retention window, in user id order.
func (db *DB) RetentionUsers() ([]string, error) {
	rows, err := db.Query(`SELECT user_id FROM user_settings ORDER BY user_id`)
	if err != nil {
		return nil, unavailable("retention users", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, unavailable("retention users", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("retention users", err)
	}
	return users, nil
}
