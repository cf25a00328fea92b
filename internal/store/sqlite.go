package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/i474232898/eco-ops-dashboard/internal/hours"
	"github.com/i474232898/eco-ops-dashboard/internal/metrics"
)

const sqliteDriverName = "sqlite"

const schemaHours = `
CREATE TABLE IF NOT EXISTS eco_ops_hours (
    id TEXT PRIMARY KEY,
    staff_name TEXT NOT NULL,
    hours REAL NOT NULL CHECK (hours >= 0),
    date TEXT NOT NULL,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_hours_date ON eco_ops_hours(date);
CREATE INDEX IF NOT EXISTS idx_hours_staff ON eco_ops_hours(staff_name);
CREATE INDEX IF NOT EXISTS idx_hours_created_at ON eco_ops_hours(created_at);
`

// SQLiteStore persists hour entries in a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens or creates the database file at path and ensures the schema exists.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// SQLite is not great with many writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaHours); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// NewSQLiteStore wraps an open database handle.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// LogHours inserts a new entry with a generated id and creation time.
func (s *SQLiteStore) LogHours(ctx context.Context, in hours.NewEntry) (hours.HourEntry, error) {
	entry := hours.HourEntry{
		ID:        uuid.NewString(),
		StaffName: in.StaffName,
		Hours:     in.Hours,
		Date:      in.Date,
		CreatedAt: s.now().UTC(),
	}
	if err := s.insert(ctx, entry); err != nil {
		return hours.HourEntry{}, err
	}
	return entry, nil
}

// Insert stores a fully populated entry, keeping its id and timestamps.
// Used by the seed command.
func (s *SQLiteStore) Insert(ctx context.Context, e hours.HourEntry) error {
	return s.insert(ctx, e)
}

func (s *SQLiteStore) insert(ctx context.Context, e hours.HourEntry) error {
	start := time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO eco_ops_hours (id, staff_name, hours, date, created_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		e.ID,
		e.StaffName,
		e.Hours,
		e.Date,
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	metrics.RecordStoreQuery("log_hours", time.Since(start), err)
	if err != nil {
		return &hours.StorageError{Op: "log_hours", Err: err}
	}
	return nil
}

// ListHours returns entries matching f, newest createdAt first.
func (s *SQLiteStore) ListHours(ctx context.Context, f hours.Filter) ([]hours.HourEntry, error) {
	var (
		conds []string
		args  []any
	)
	if f.StaffName != "" {
		conds = append(conds, "staff_name = ?")
		args = append(args, f.StaffName)
	}
	if f.Date != "" {
		conds = append(conds, "date = ?")
		args = append(args, f.Date)
	}

	q := `SELECT id, staff_name, hours, date, created_at FROM eco_ops_hours`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY created_at DESC"

	return s.query(ctx, "list_hours", q, args...)
}

// GetEntriesByDateRange returns entries with from <= date <= to, newest date first.
func (s *SQLiteStore) GetEntriesByDateRange(ctx context.Context, from, to string) ([]hours.HourEntry, error) {
	q := `SELECT id, staff_name, hours, date, created_at FROM eco_ops_hours WHERE date >= ? AND date <= ? ORDER BY date DESC`
	return s.query(ctx, "hours_by_range", q, from, to)
}

func (s *SQLiteStore) query(ctx context.Context, op, q string, args ...any) (result []hours.HourEntry, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQuery(op, time.Since(start), err)
		if err != nil {
			err = &hours.StorageError{Op: op, Err: err}
		}
	}()

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]hours.HourEntry, 0, 16)
	for rows.Next() {
		var (
			e         hours.HourEntry
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.StaffName, &e.Hours, &e.Date, &createdAt); err != nil {
			return nil, err
		}
		ts, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
		}
		e.CreatedAt = ts.UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
