package engine

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store is the per-session data file. It receives the whole event log once,
// at shutdown, so the frame loop never waits on disk.
type Store struct {
	db *sql.DB
}

func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	s := &Store{db: db}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			participant TEXT NOT NULL,
			session TEXT NOT NULL,
			task TEXT NOT NULL,
			monitor TEXT NOT NULL,
			refresh_rate REAL NOT NULL,
			seed INTEGER NOT NULL,
			started_at DATETIME NOT NULL,
			finished_at DATETIME,
			aborted INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			t REAL NOT NULL,
			frame INTEGER NOT NULL,
			block INTEGER NOT NULL,
			type TEXT NOT NULL,
			label TEXT NOT NULL,
			value TEXT NOT NULL DEFAULT '',
			FOREIGN KEY (session_id) REFERENCES sessions(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id, seq)`,
		`CREATE INDEX IF NOT EXISTS idx_events_type ON events(session_id, type)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// SessionRecord is the header row of one run.
type SessionRecord struct {
	ID          uuid.UUID
	Participant string
	Session     string
	Task        string
	Monitor     string
	RefreshRate float64
	Seed        int64
	StartedAt   time.Time
	FinishedAt  time.Time
	Aborted     bool
}

// SaveSession writes the session header and all events in one transaction.
func (s *Store) SaveSession(rec SessionRecord, events []EventLogEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO sessions
		(id, participant, session, task, monitor, refresh_rate, seed, started_at, finished_at, aborted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.Participant, rec.Session, rec.Task, rec.Monitor,
		rec.RefreshRate, rec.Seed, rec.StartedAt, rec.FinishedAt, rec.Aborted)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO events
		(session_id, seq, t, frame, block, type, label, value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare events: %w", err)
	}
	defer stmt.Close()

	for i, e := range events {
		if _, err := stmt.Exec(rec.ID.String(), i, e.Time.Seconds(), e.Frame, e.Block, e.Type, e.Label, e.Value); err != nil {
			return fmt.Errorf("insert event %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// markers returns the marker tags of a session in emission order.
func (s *Store) markers(id uuid.UUID) ([]string, error) {
	rows, err := s.db.Query(`SELECT label FROM events WHERE session_id = ? AND type = ? ORDER BY seq`,
		id.String(), TypeMarker)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}
