package journal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session kinds.
const (
	KindDocking    = "docking"
	KindRelativity = "relativity"
)

// Session groups the events of one pipeline or simulator lifetime.
type Session struct {
	SessionID   string `json:"session_id"`
	Kind        string `json:"kind"`
	StartedAtNs int64  `json:"started_at_ns"`
	Notes       string `json:"notes,omitempty"`
}

// StartSession inserts a new session with a fresh UUID.
func (j *Journal) StartSession(kind, notes string, at time.Time) (*Session, error) {
	s := &Session{
		SessionID:   uuid.New().String(),
		Kind:        kind,
		StartedAtNs: at.UnixNano(),
		Notes:       notes,
	}
	_, err := j.Exec(
		`INSERT INTO sessions (session_id, kind, started_at_ns, notes) VALUES (?, ?, ?, ?)`,
		s.SessionID, s.Kind, s.StartedAtNs, nullString(s.Notes),
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return s, nil
}

// GetSession retrieves a session by ID.
func (j *Journal) GetSession(id string) (*Session, error) {
	var s Session
	var notes sql.NullString
	err := j.QueryRow(
		`SELECT session_id, kind, started_at_ns, notes FROM sessions WHERE session_id = ?`, id,
	).Scan(&s.SessionID, &s.Kind, &s.StartedAtNs, &notes)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if notes.Valid {
		s.Notes = notes.String
	}
	return &s, nil
}

// Sessions lists sessions newest first.
func (j *Journal) Sessions(limit int) ([]Session, error) {
	rows, err := j.Query(
		`SELECT session_id, kind, started_at_ns, notes FROM sessions
		 ORDER BY started_at_ns DESC LIMIT ?`, limitOrDefault(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var s Session
		var notes sql.NullString
		if err := rows.Scan(&s.SessionID, &s.Kind, &s.StartedAtNs, &notes); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		s.Notes = notes.String
		out = append(out, s)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

const defaultLimit = 100

func limitOrDefault(n int) int {
	if n <= 0 {
		return defaultLimit
	}
	return n
}
