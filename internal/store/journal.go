package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Journal is an append-only SQLite log of sync operation outcomes, kept next
// to the snapshots so `fieldops history` can show what happened across
// sessions. Journal failures are reported but must never block or fail the
// operation being recorded.
type Journal struct {
	mu sync.Mutex
	db *sql.DB
}

// JournalEntry is one recorded operation.
type JournalEntry struct {
	ID        int64
	Op        string
	Detail    string
	OK        bool
	CreatedAt time.Time
}

// OpenJournal initializes the journal database at the given path.
func OpenJournal(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("journal: create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS journal (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		op TEXT NOT NULL,
		detail TEXT,
		ok INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_journal_op ON journal(op);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: initialize schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Record appends one entry.
func (j *Journal) Record(op, detail string, ok bool) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	_, err := j.db.Exec(
		"INSERT INTO journal (op, detail, ok) VALUES (?, ?, ?)",
		op, detail, boolToInt(ok),
	)
	if err != nil {
		return fmt.Errorf("journal: record %s: %w", op, err)
	}
	return nil
}

// Recent returns the newest entries, most recent first.
func (j *Journal) Recent(limit int) ([]JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	rows, err := j.db.Query(
		"SELECT id, op, detail, ok, created_at FROM journal ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("journal: query: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var e JournalEntry
		var ok int
		if err := rows.Scan(&e.ID, &e.Op, &e.Detail, &ok, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		e.OK = ok != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
