package journal

import (
	"fmt"

	"github.com/banshee-data/endurance/internal/docking"
	"github.com/banshee-data/endurance/internal/relativity"
)

// AlignmentEvent is one journalled confirmation state change.
type AlignmentEvent struct {
	EventID   int64         `json:"event_id"`
	SessionID string        `json:"session_id"`
	From      docking.State `json:"from"`
	To        docking.State `json:"to"`
	Rotation  float64       `json:"rotation"`
	AtNs      int64         `json:"at_ns"`
}

// ClockReadout is one journalled simulator readout.
type ClockReadout struct {
	ReadoutID    int64               `json:"readout_id"`
	SessionID    string              `json:"session_id"`
	Tick         uint64              `json:"tick"`
	ShipSeconds  float64             `json:"ship_seconds"`
	EarthSeconds float64             `json:"earth_seconds"`
	Gravity      float64             `json:"gravity"`
	Factor       float64             `json:"factor"`
	Severity     relativity.Severity `json:"severity"`
	AtNs         int64               `json:"at_ns"`
}

// RecordTransition appends a state change observed at the given rotation.
func (j *Journal) RecordTransition(sessionID string, tr docking.Transition, rotation float64) error {
	_, err := j.Exec(
		`INSERT INTO alignment_events (session_id, from_state, to_state, rotation, at_ns)
		 VALUES (?, ?, ?, ?, ?)`,
		sessionID, string(tr.From), string(tr.To), rotation, tr.At.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert alignment event: %w", err)
	}
	return nil
}

// RecordReadout appends a simulator readout.
func (j *Journal) RecordReadout(sessionID string, r relativity.Readout) error {
	_, err := j.Exec(
		`INSERT INTO clock_readouts (
			session_id, tick, ship_seconds, earth_seconds, gravity, factor, severity, at_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, int64(r.Tick), r.ShipSeconds, r.EarthSeconds, r.Gravity, r.Factor,
		string(r.Severity), r.At.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert clock readout: %w", err)
	}
	return nil
}

// RecentTransitions returns the latest alignment events of a session, oldest
// first. An empty sessionID spans all sessions.
func (j *Journal) RecentTransitions(sessionID string, limit int) ([]AlignmentEvent, error) {
	rows, err := j.Query(
		`SELECT event_id, session_id, from_state, to_state, rotation, at_ns FROM (
			SELECT * FROM alignment_events
			WHERE (? = '' OR session_id = ?)
			ORDER BY event_id DESC LIMIT ?
		 ) ORDER BY event_id ASC`,
		sessionID, sessionID, limitOrDefault(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("query alignment events: %w", err)
	}
	defer rows.Close()

	var out []AlignmentEvent
	for rows.Next() {
		var e AlignmentEvent
		var from, to string
		if err := rows.Scan(&e.EventID, &e.SessionID, &from, &to, &e.Rotation, &e.AtNs); err != nil {
			return nil, fmt.Errorf("scan alignment event: %w", err)
		}
		e.From, e.To = docking.State(from), docking.State(to)
		out = append(out, e)
	}
	return out, rows.Err()
}

// RecentReadouts returns the latest readouts of a session, oldest first. An
// empty sessionID spans all sessions.
func (j *Journal) RecentReadouts(sessionID string, limit int) ([]ClockReadout, error) {
	rows, err := j.Query(
		`SELECT readout_id, session_id, tick, ship_seconds, earth_seconds, gravity, factor, severity, at_ns FROM (
			SELECT * FROM clock_readouts
			WHERE (? = '' OR session_id = ?)
			ORDER BY readout_id DESC LIMIT ?
		 ) ORDER BY readout_id ASC`,
		sessionID, sessionID, limitOrDefault(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("query clock readouts: %w", err)
	}
	defer rows.Close()

	var out []ClockReadout
	for rows.Next() {
		var r ClockReadout
		var tick int64
		var severity string
		if err := rows.Scan(&r.ReadoutID, &r.SessionID, &tick, &r.ShipSeconds, &r.EarthSeconds,
			&r.Gravity, &r.Factor, &severity, &r.AtNs); err != nil {
			return nil, fmt.Errorf("scan clock readout: %w", err)
		}
		r.Tick = uint64(tick)
		r.Severity = relativity.Severity(severity)
		out = append(out, r)
	}
	return out, rows.Err()
}
