// Package cyclelog records per-cycle controller diagnostics to sqlite
// for offline analysis. Recording is optional and off the critical
// path: a failed insert is logged by the caller and the cycle proceeds.
package cyclelog

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/pathtrack/internal/control"
)

// Log is an open cycle recorder. Each Open starts a new session so
// runs are separable in one database file.
type Log struct {
	db      *sql.DB
	session string
}

// Open opens (creating if needed) the cycle database at path and
// begins a new recording session.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS cycles (
			session TEXT,
			cycle INTEGER,
			status TEXT,
			steering DOUBLE,
			throttle DOUBLE,
			cross_track DOUBLE,
			heading_err DOUBLE,
			speed_mps DOUBLE,
			solve_ms DOUBLE,
			timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Log{db: db, session: uuid.NewString()}, nil
}

// Session returns the identifier of the current recording session.
func (l *Log) Session() string { return l.session }

// Record implements control.Recorder.
func (l *Log) Record(r control.CycleRecord) error {
	_, err := l.db.Exec(
		`INSERT INTO cycles (session, cycle, status, steering, throttle, cross_track, heading_err, speed_mps, solve_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.session, r.Cycle, r.Status, r.Steering, r.Throttle, r.CrossTrack, r.HeadingErr, r.SpeedMPS, r.SolveMillis,
	)
	return err
}

// Row is one recorded cycle read back from the database.
type Row struct {
	Session     string
	Cycle       int
	Status      string
	Steering    float64
	Throttle    float64
	CrossTrack  float64
	HeadingErr  float64
	SpeedMPS    float64
	SolveMillis float64
}

// Cycles returns the recorded cycles for a session in cycle order. An
// empty session selects the most recent session in the file.
func (l *Log) Cycles(session string) ([]Row, error) {
	if session == "" {
		var err error
		session, err = l.LatestSession()
		if err != nil {
			return nil, err
		}
	}

	rows, err := l.db.Query(
		`SELECT session, cycle, status, steering, throttle, cross_track, heading_err, speed_mps, solve_ms
		 FROM cycles WHERE session = ? ORDER BY cycle ASC`, session)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.Session, &r.Cycle, &r.Status, &r.Steering, &r.Throttle,
			&r.CrossTrack, &r.HeadingErr, &r.SpeedMPS, &r.SolveMillis); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LatestSession returns the session with the most recent first record.
func (l *Log) LatestSession() (string, error) {
	var session string
	err := l.db.QueryRow(
		`SELECT session FROM cycles ORDER BY timestamp DESC, rowid DESC LIMIT 1`).Scan(&session)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("cyclelog: no recorded sessions")
	}
	if err != nil {
		return "", err
	}
	return session, nil
}

// Close releases the underlying database.
func (l *Log) Close() error { return l.db.Close() }
