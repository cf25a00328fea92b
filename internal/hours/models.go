package hours

import "time"

// DateLayout is the ISO date format used for entry dates and query windows.
const DateLayout = "2006-01-02"

// HourEntry is one logged block of staff work. Entries are immutable once stored.
type HourEntry struct {
	ID        string    `json:"id"`
	StaffName string    `json:"staffName"`
	Hours     float64   `json:"hours"`
	Date      string    `json:"date"`      // YYYY-MM-DD
	CreatedAt time.Time `json:"createdAt"` // always UTC
}

// NewEntry carries the caller-supplied fields of an entry to be logged.
type NewEntry struct {
	StaffName string
	Hours     float64
	Date      string
}

// Filter narrows ListHours. Empty fields match everything.
type Filter struct {
	StaffName string
	Date      string
}

// Matches reports whether e satisfies the filter.
func (f Filter) Matches(e HourEntry) bool {
	if f.StaffName != "" && e.StaffName != f.StaffName {
		return false
	}
	if f.Date != "" && e.Date != f.Date {
		return false
	}
	return true
}

// SeedEntries returns the sample data used by the in-memory store and the seed command.
func SeedEntries() []HourEntry {
	at := func(s string) time.Time {
		ts, _ := time.Parse(time.RFC3339, s)
		return ts
	}
	return []HourEntry{
		{ID: "1", StaffName: "John Smith", Hours: 8, Date: "2025-11-22", CreatedAt: at("2025-11-22T09:00:00Z")},
		{ID: "2", StaffName: "Jane Doe", Hours: 7.5, Date: "2025-11-22", CreatedAt: at("2025-11-22T09:30:00Z")},
		{ID: "3", StaffName: "Bob Wilson", Hours: 8, Date: "2025-11-21", CreatedAt: at("2025-11-21T09:00:00Z")},
		{ID: "4", StaffName: "John Smith", Hours: 6, Date: "2025-11-21", CreatedAt: at("2025-11-21T09:00:00Z")},
		{ID: "5", StaffName: "Jane Doe", Hours: 8, Date: "2025-11-20", CreatedAt: at("2025-11-20T09:00:00Z")},
	}
}
