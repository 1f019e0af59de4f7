// Package secondary defines the secondary ports (driven adapters) for the
// application. These are the interfaces through which the application
// drives the durable store.
package secondary

import (
	"context"
	"errors"

	"github.com/example/ctr/internal/models"
)

// ErrNotFound is returned when a record does not exist for a key.
var ErrNotFound = errors.New("record not found")

// RecordRepository is the single source of truth for durable CRUD and
// change history over crew time report records. All store access goes
// through this port; nothing else touches the database directly.
type RecordRepository interface {
	// Save writes the full record for the "<dateA> to <dateB>" key,
	// incrementing its version and appending a create/update change-log
	// entry in the same transaction.
	Save(ctx context.Context, dateA, dateB string, data []models.CrewMember, crewInfo models.CrewInfo) error

	// Get retrieves a record by its date-range key. Returns ErrNotFound
	// when no record exists for the key.
	Get(ctx context.Context, dateRange string) (*models.Record, error)

	// AllDateRanges returns every stored date-range key, lexicographically
	// sorted (which is chronological for ISO dates).
	AllDateRanges(ctx context.Context) ([]string, error)

	// Delete removes a record, appending a delete log entry carrying the
	// pre-deletion snapshot. Deleting a missing key is a no-op.
	Delete(ctx context.Context, dateRange string) error

	// History returns the change-log entries for a key, newest first.
	History(ctx context.Context, dateRange string) ([]*models.ChangeLogEntry, error)

	// ChangesSince returns change-log entries with timestamp strictly
	// greater than the given unix-millisecond timestamp, newest first.
	ChangesSince(ctx context.Context, timestamp int64) ([]*models.ChangeLogEntry, error)

	// TrackFieldChange appends a granular field-level update entry.
	TrackFieldChange(ctx context.Context, dateRange, field, oldValue, newValue string) error

	// Stats summarizes record, change-log, and pending-change counts.
	Stats(ctx context.Context) (*models.DatabaseStats, error)

	// AddPending queues a partial edit for a later flush.
	AddPending(ctx context.Context, change *models.PendingChange) error

	// ListPending returns queued pending changes, oldest first.
	ListPending(ctx context.Context) ([]*models.PendingChange, error)

	// DeletePending removes one pending change by id.
	DeletePending(ctx context.Context, id int64) error

	// PendingCount returns the number of queued pending changes.
	PendingCount(ctx context.Context) (int, error)

	// ClearPending removes all queued pending changes.
	ClearPending(ctx context.Context) error
}
