// Package storage provides SQLite-based persistence for sealed timelines.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/matthewharwood/arenic-replay/internal/sim"
)

// ErrNotFound is returned when a timeline ID does not exist in the store.
var ErrNotFound = errors.New("storage: timeline not found")

// DefaultPath is the database location used when the configuration leaves
// it empty.
const DefaultPath = "~/.arenic/timelines.db"

// Store manages the SQLite database connection for timeline persistence.
type Store struct {
	db *sql.DB
}

// TimelineEntry is the stored metadata of one sealed timeline. The
// command payload itself is loaded on demand via LoadTimeline.
type TimelineEntry struct {
	ID          int64
	Actor       string
	Archetype   sim.Archetype
	Duration    sim.Tick
	Fingerprint uint64
	Topology    uint64
	CreatedAt   time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
// An empty path selects DefaultPath.
func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		dbPath = DefaultPath
	}

	// Expand ~ to home directory
	if dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist. Fingerprint
// and topology are stored as 16-digit hex strings: SQLite integers are
// signed 64-bit and would mangle the high bit.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS timelines (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			actor TEXT NOT NULL,
			archetype TEXT NOT NULL,
			duration INTEGER NOT NULL,
			fingerprint TEXT NOT NULL,
			topology TEXT NOT NULL,
			data BLOB NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_timelines_actor ON timelines(actor);
		CREATE INDEX IF NOT EXISTS idx_timelines_topology ON timelines(topology);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveTimeline persists a sealed timeline.
// Returns the ID of the inserted record.
func (s *Store) SaveTimeline(t *sim.Timeline) (int64, error) {
	data, err := sim.Encode(t)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot encode timeline: %w", err)
	}

	result, err := s.db.Exec(
		`INSERT INTO timelines (actor, archetype, duration, fingerprint, topology, data)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.Actor(),
		string(t.Archetype()),
		int64(t.Duration()),
		fmt.Sprintf("%016x", t.Fingerprint()),
		fmt.Sprintf("%016x", t.Topology()),
		data,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save timeline: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// LoadTimeline retrieves and decodes a timeline by ID. The decode
// recomputes the fingerprint, and the result is cross-checked against the
// stored metadata, so a tampered blob or row surfaces as
// sim.ErrTimelineCorrupted.
func (s *Store) LoadTimeline(id int64) (*sim.Timeline, error) {
	var data []byte
	var fingerprint string
	err := s.db.QueryRow(
		"SELECT data, fingerprint FROM timelines WHERE id = ?", id,
	).Scan(&data, &fingerprint)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query timeline: %w", err)
	}

	t, err := sim.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("storage: timeline %d: %w", id, err)
	}
	if got := fmt.Sprintf("%016x", t.Fingerprint()); got != fingerprint {
		return nil, fmt.Errorf("%w: stored fingerprint %s, decoded %s",
			sim.ErrTimelineCorrupted, fingerprint, got)
	}
	return t, nil
}

// ListTimelines retrieves the stored metadata of every timeline, newest
// first.
func (s *Store) ListTimelines() ([]TimelineEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, actor, archetype, duration, fingerprint, topology, created_at
		 FROM timelines
		 ORDER BY id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query timelines: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// TimelinesByActor retrieves the stored metadata of one actor's
// timelines, newest first.
func (s *Store) TimelinesByActor(actor string) ([]TimelineEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, actor, archetype, duration, fingerprint, topology, created_at
		 FROM timelines
		 WHERE actor = ?
		 ORDER BY id DESC`,
		actor,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query timelines: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// DeleteTimeline removes a timeline by ID.
func (s *Store) DeleteTimeline(id int64) error {
	result, err := s.db.Exec("DELETE FROM timelines WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("storage: cannot delete timeline: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: cannot check delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}

func scanEntries(rows *sql.Rows) ([]TimelineEntry, error) {
	var entries []TimelineEntry
	for rows.Next() {
		var e TimelineEntry
		var archetype string
		var duration int64
		var fingerprint, topology string
		var createdAt any
		if err := rows.Scan(&e.ID, &e.Actor, &archetype, &duration, &fingerprint, &topology, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.Archetype = sim.Archetype(archetype)
		e.Duration = sim.Tick(duration)
		e.Fingerprint, _ = strconv.ParseUint(fingerprint, 16, 64)
		e.Topology, _ = strconv.ParseUint(topology, 16, 64)

		// Parse the datetime - handle both time.Time and string
		switch v := createdAt.(type) {
		case time.Time:
			e.CreatedAt = v
		case string:
			if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
				e.CreatedAt = parsed
			}
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}
