package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Run statuses recorded in history.
const (
	StatusSuccess = "success" // pass finished with a zero error tally
	StatusErrors  = "errors"  // pass finished but some files failed
	StatusSkipped = "skipped" // no intake folder, nothing to do
)

// Manager handles state persistence and run history
type Manager struct {
	db *sql.DB
}

// RunRecord represents a single rotation pass
type RunRecord struct {
	ID          int64
	Trigger     string // what started the pass: "manual", "startup", "interval", "cron", "watch"
	StartTime   time.Time
	EndTime     time.Time
	Status      string
	Promoted    int
	Quarantined int
	Reaped      int
	Errors      int
	Error       string
}

// NewManager creates a new state manager
func NewManager(dataDir string) (*Manager, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data directory cannot be empty")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "backrot.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Limit connection pool to prevent "database is locked" errors
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// Enable WAL mode for better concurrency and set busy timeout
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode and busy timeout: %w", err)
	}

	manager := &Manager{db: db}

	// Initialize schema
	if err := manager.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return manager, nil
}

// initSchema creates the database schema
func (m *Manager) initSchema() error {
	// "trigger" is a reserved word in SQLite, hence triggered_by
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		triggered_by TEXT NOT NULL,
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP NOT NULL,
		status TEXT NOT NULL,
		promoted INTEGER DEFAULT 0,
		quarantined INTEGER DEFAULT 0,
		reaped INTEGER DEFAULT 0,
		errors INTEGER DEFAULT 0,
		error TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_time ON runs(start_time DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
	`

	_, err := m.db.Exec(schema)
	return err
}

// SaveRun records a rotation pass
func (m *Manager) SaveRun(record RunRecord) error {
	// Validate status
	if record.Status != StatusSuccess && record.Status != StatusErrors && record.Status != StatusSkipped {
		return fmt.Errorf("invalid status: %s (must be %q, %q or %q)",
			record.Status, StatusSuccess, StatusErrors, StatusSkipped)
	}

	query := `
		INSERT INTO runs (triggered_by, start_time, end_time, status, promoted, quarantined, reaped, errors, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := m.db.Exec(query,
		record.Trigger,
		record.StartTime,
		record.EndTime,
		record.Status,
		record.Promoted,
		record.Quarantined,
		record.Reaped,
		record.Errors,
		record.Error,
	)

	if err != nil {
		return fmt.Errorf("failed to save run record: %w", err)
	}

	return nil
}

// GetHistory retrieves run history, most recent first
func (m *Manager) GetHistory(limit int) ([]RunRecord, error) {
	// Validate limit
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	query := `
		SELECT id, triggered_by, start_time, end_time, status, promoted, quarantined, reaped, errors, error
		FROM runs
		ORDER BY start_time DESC
		LIMIT ?
	`

	rows, err := m.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var record RunRecord
		err := rows.Scan(
			&record.ID,
			&record.Trigger,
			&record.StartTime,
			&record.EndTime,
			&record.Status,
			&record.Promoted,
			&record.Quarantined,
			&record.Reaped,
			&record.Errors,
			&record.Error,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}

	return records, nil
}

// GetLastRun retrieves the most recent run, or nil if none exist
func (m *Manager) GetLastRun() (*RunRecord, error) {
	return m.queryOne(`
		SELECT id, triggered_by, start_time, end_time, status, promoted, quarantined, reaped, errors, error
		FROM runs
		ORDER BY start_time DESC
		LIMIT 1
	`)
}

// GetLastSuccess retrieves the most recent clean run, or nil if none exist
func (m *Manager) GetLastSuccess() (*RunRecord, error) {
	return m.queryOne(`
		SELECT id, triggered_by, start_time, end_time, status, promoted, quarantined, reaped, errors, error
		FROM runs
		WHERE status = 'success'
		ORDER BY start_time DESC
		LIMIT 1
	`)
}

func (m *Manager) queryOne(query string, args ...any) (*RunRecord, error) {
	var record RunRecord
	err := m.db.QueryRow(query, args...).Scan(
		&record.ID,
		&record.Trigger,
		&record.StartTime,
		&record.EndTime,
		&record.Status,
		&record.Promoted,
		&record.Quarantined,
		&record.Reaped,
		&record.Errors,
		&record.Error,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	return &record, nil
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
