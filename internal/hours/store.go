package hours

import (
	"context"
	"fmt"
)

// Store is the contract every hour entry backend must satisfy.
type Store interface {
	LogHours(ctx context.Context, in NewEntry) (HourEntry, error)
	// ListHours returns matching entries, newest createdAt first.
	ListHours(ctx context.Context, f Filter) ([]HourEntry, error)
	// GetEntriesByDateRange returns entries with start <= date <= end, newest date first.
	GetEntriesByDateRange(ctx context.Context, start, end string) ([]HourEntry, error)
}

// StorageError reports a failed store operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
