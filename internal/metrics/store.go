// Package metrics is the session-telemetry store: an auxiliary record of
// connection and Ticker activity, kept in SQLite, separate from the
// command log's own file (internal/logstore). It exists so the "stats" CLI
// command has something to report after the server has exited; it is not
// part of the log's durability story (there is none, by design — see
// spec.md's Non-goals).
package metrics

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Session is a summary of one accepted TCP connection.
type Session struct {
	ID            string
	RemoteAddr    string
	OpenedAt      time.Time
	ClosedAt      *time.Time
	CommandsCount int
	BytesWritten  int64
}

// Store persists session and Ticker telemetry to a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at dbPath and runs migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening telemetry database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running telemetry migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SessionOpened records a newly accepted connection.
func (s *Store) SessionOpened(id, remoteAddr string, at time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO sessions (id, remote_addr, opened_at) VALUES (?, ?, ?)`,
		id, remoteAddr, at.UnixMilli(),
	)
	return err
}

// SessionClosed records a session's final counters at disconnect.
func (s *Store) SessionClosed(id string, at time.Time, commandsCount int, bytesWritten int64) error {
	_, err := s.db.Exec(
		`UPDATE sessions SET closed_at = ?, commands_count = ?, bytes_written = ? WHERE id = ?`,
		at.UnixMilli(), commandsCount, bytesWritten, id,
	)
	return err
}

// TickRecorded records one Ticker append.
func (s *Store) TickRecorded(at time.Time, bytes int) error {
	_, err := s.db.Exec(`INSERT INTO ticks (emitted_at, bytes) VALUES (?, ?)`, at.UnixMilli(), bytes)
	return err
}

// RecentSessions returns the most recently opened sessions, newest first.
func (s *Store) RecentSessions(limit int) ([]Session, error) {
	rows, err := s.db.Query(
		`SELECT id, remote_addr, opened_at, closed_at, commands_count, bytes_written
		 FROM sessions ORDER BY opened_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		var openedMs int64
		var closedMs sql.NullInt64
		if err := rows.Scan(&sess.ID, &sess.RemoteAddr, &openedMs, &closedMs, &sess.CommandsCount, &sess.BytesWritten); err != nil {
			return nil, err
		}
		sess.OpenedAt = time.UnixMilli(openedMs)
		if closedMs.Valid {
			t := time.UnixMilli(closedMs.Int64)
			sess.ClosedAt = &t
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// TickCount returns the total number of Ticker appends recorded.
func (s *Store) TickCount() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM ticks`).Scan(&n)
	return n, err
}
