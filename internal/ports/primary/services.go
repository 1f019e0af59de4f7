// Package primary defines the primary ports (driving adapters) for the
// application: the interfaces the CLI and other front-ends call.
package primary

import (
	"context"

	"github.com/example/ctr/internal/models"
)

// Save types carried by a SaveRequest.
const (
	SaveTypeAuto   = "auto"
	SaveTypeManual = "manual"
)

// SaveRequest is one write attempt submitted to the save coordinator.
// Callbacks are optional; nil callbacks are skipped.
type SaveRequest struct {
	DateRange string
	Data      []models.CrewMember
	CrewInfo  models.CrewInfo
	SaveType  string

	OnProgress func(message string)
	OnComplete func()
	OnError    func(err error)
}

// SaveService serializes all record writes into a single in-flight save at
// a time, queuing concurrent requests in FIFO order and retrying transient
// failures.
type SaveService interface {
	// SaveRecord accepts a save request. If a save is in flight the
	// request is queued and serviced later; otherwise it starts
	// immediately. Returns without waiting for completion.
	SaveRecord(req SaveRequest)

	// IsSaveInProgress reports whether a save is active, including
	// during retries.
	IsSaveInProgress() bool

	// CurrentSaveType returns "auto" or "manual" while a save is active,
	// empty otherwise.
	CurrentSaveType() string

	// QueueLength returns the number of requests waiting behind the
	// active save.
	QueueLength() int

	// ClearQueue drops all queued (not yet started) requests.
	ClearQueue()
}

// RecordService exposes read and delete operations over stored records.
type RecordService interface {
	GetRecord(ctx context.Context, dateRange string) (*models.Record, error)
	GetAllDateRanges(ctx context.Context) ([]string, error)
	DeleteRecord(ctx context.Context, dateRange string) error
	GetChangeHistory(ctx context.Context, dateRange string) ([]*models.ChangeLogEntry, error)
	GetChangesSince(ctx context.Context, timestamp int64) ([]*models.ChangeLogEntry, error)
	GetDatabaseStats(ctx context.Context) (*models.DatabaseStats, error)
}

// PropagationService forward-copies field edits into later records that
// have not yet diverged.
type PropagationService interface {
	// PropagateForward applies the given changes to every record strictly
	// after fromDate, in ascending order, stopping at the first record
	// whose current values no longer match the edits' old values.
	// Returns the number of records updated.
	PropagateForward(ctx context.Context, changes []models.CellChange, fromDate string) (int, error)
}

// PendingService manages the auto-save queue of partial edits.
type PendingService interface {
	Add(ctx context.Context, dateRange string, data []models.CrewMember, crewInfo *models.CrewInfo) error
	Flush(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
	List(ctx context.Context) ([]*models.PendingChange, error)
}
