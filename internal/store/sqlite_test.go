package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/i474232898/eco-ops-dashboard/internal/hours"
)

func ctx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return c
}

func newMock(t *testing.T) (*SQLiteStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteStore(db), mock
}

var hourColumns = []string{"id", "staff_name", "hours", "date", "created_at"}

func TestSQLiteStore_LogHours(t *testing.T) {
	t.Parallel()

	s, mock := newMock(t)
	fixed := time.Date(2025, 11, 23, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO eco_ops_hours (id, staff_name, hours, date, created_at)`)).
		WithArgs(sqlmock.AnyArg(), "Jane Doe", 7.5, "2025-11-23", "2025-11-23T09:00:00Z").
		WillReturnResult(sqlmock.NewResult(0, 1))

	entry, err := s.LogHours(ctx(t), hours.NewEntry{StaffName: "Jane Doe", Hours: 7.5, Date: "2025-11-23"})
	if err != nil {
		t.Fatalf("LogHours: %v", err)
	}
	if entry.ID == "" || !entry.CreatedAt.Equal(fixed) {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestSQLiteStore_LogHours_DBError(t *testing.T) {
	t.Parallel()

	s, mock := newMock(t)
	mock.ExpectExec("INSERT INTO eco_ops_hours").WillReturnError(errors.New("disk full"))

	_, err := s.LogHours(ctx(t), hours.NewEntry{StaffName: "x", Hours: 1, Date: "2025-11-23"})
	var se *hours.StorageError
	if !errors.As(err, &se) || se.Op != "log_hours" {
		t.Fatalf("expected StorageError for log_hours, got %v", err)
	}
}

func TestSQLiteStore_ListHours_NoFilters(t *testing.T) {
	t.Parallel()

	s, mock := newMock(t)
	rows := sqlmock.NewRows(hourColumns).
		AddRow("2", "Jane Doe", 7.5, "2025-11-22", "2025-11-22T09:30:00Z").
		AddRow("1", "John Smith", 8.0, "2025-11-22", "2025-11-22T09:00:00Z")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, staff_name, hours, date, created_at FROM eco_ops_hours ORDER BY created_at DESC`)).
		WillReturnRows(rows)

	got, err := s.ListHours(ctx(t), hours.Filter{})
	if err != nil {
		t.Fatalf("ListHours: %v", err)
	}
	if len(got) != 2 || got[0].ID != "2" || got[1].ID != "1" {
		t.Fatalf("unexpected rows: %+v", got)
	}
	want := time.Date(2025, 11, 22, 9, 30, 0, 0, time.UTC)
	if !got[0].CreatedAt.Equal(want) {
		t.Fatalf("CreatedAt = %v, want %v", got[0].CreatedAt, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestSQLiteStore_ListHours_WithFilters(t *testing.T) {
	t.Parallel()

	s, mock := newMock(t)
	q := `SELECT id, staff_name, hours, date, created_at FROM eco_ops_hours WHERE staff_name = ? AND date = ? ORDER BY created_at DESC`
	mock.ExpectQuery(regexp.QuoteMeta(q)).
		WithArgs("John Smith", "2025-11-21").
		WillReturnRows(sqlmock.NewRows(hourColumns).
			AddRow("4", "John Smith", 6.0, "2025-11-21", "2025-11-21T09:00:00Z"))

	got, err := s.ListHours(ctx(t), hours.Filter{StaffName: "John Smith", Date: "2025-11-21"})
	if err != nil {
		t.Fatalf("ListHours: %v", err)
	}
	if len(got) != 1 || got[0].Hours != 6 {
		t.Fatalf("unexpected rows: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestSQLiteStore_GetEntriesByDateRange(t *testing.T) {
	t.Parallel()

	s, mock := newMock(t)
	q := `SELECT id, staff_name, hours, date, created_at FROM eco_ops_hours WHERE date >= ? AND date <= ? ORDER BY date DESC`
	mock.ExpectQuery(regexp.QuoteMeta(q)).
		WithArgs("2025-11-15", "2025-11-22").
		WillReturnRows(sqlmock.NewRows(hourColumns).
			AddRow("1", "John Smith", 8.0, "2025-11-22", "2025-11-22T09:00:00Z").
			AddRow("5", "Jane Doe", 8.0, "2025-11-20", "2025-11-20T09:00:00Z"))

	got, err := s.GetEntriesByDateRange(ctx(t), "2025-11-15", "2025-11-22")
	if err != nil {
		t.Fatalf("GetEntriesByDateRange: %v", err)
	}
	if len(got) != 2 || got[0].Date != "2025-11-22" {
		t.Fatalf("unexpected rows: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestSQLiteStore_QueryError(t *testing.T) {
	t.Parallel()

	s, mock := newMock(t)
	mock.ExpectQuery("SELECT id, staff_name").WillReturnError(errors.New("locked"))

	_, err := s.GetEntriesByDateRange(ctx(t), "2025-11-15", "2025-11-22")
	var se *hours.StorageError
	if !errors.As(err, &se) || se.Op != "hours_by_range" {
		t.Fatalf("expected StorageError for hours_by_range, got %v", err)
	}
}

func TestSQLiteStore_BadTimestamp(t *testing.T) {
	t.Parallel()

	s, mock := newMock(t)
	mock.ExpectQuery("SELECT id, staff_name").
		WillReturnRows(sqlmock.NewRows(hourColumns).
			AddRow("x", "A", 1.0, "2025-11-22", "yesterday"))

	if _, err := s.ListHours(ctx(t), hours.Filter{}); err == nil {
		t.Fatal("expected parse error for malformed created_at")
	}
}
