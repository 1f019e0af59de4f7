package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/ctr/internal/models"
	"github.com/example/ctr/internal/ports/primary"
	"github.com/example/ctr/internal/ports/secondary"
)

// PendingServiceImpl manages the auto-save queue: partial edits that could
// not be committed synchronously wait here until a flush folds them into
// full record saves.
type PendingServiceImpl struct {
	repo secondary.RecordRepository
}

// NewPendingService creates a PendingService with injected dependencies.
func NewPendingService(repo secondary.RecordRepository) *PendingServiceImpl {
	return &PendingServiceImpl{repo: repo}
}

// Ensure PendingServiceImpl implements the primary port
var _ primary.PendingService = (*PendingServiceImpl)(nil)

// Add queues a partial edit for the given date range. Nil data or crewInfo
// means that part of the record is untouched.
func (s *PendingServiceImpl) Add(ctx context.Context, dateRange string, data []models.CrewMember, crewInfo *models.CrewInfo) error {
	return s.repo.AddPending(ctx, &models.PendingChange{
		DateRange: dateRange,
		Data:      data,
		CrewInfo:  crewInfo,
	})
}

// Flush folds every queued change into a full record save and removes it
// from the queue. Changes for records that no longer exist are dropped.
// Returns the number of changes folded into saves.
func (s *PendingServiceImpl) Flush(ctx context.Context) (int, error) {
	pending, err := s.repo.ListPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending changes: %w", err)
	}

	flushed := 0
	for _, change := range pending {
		record, err := s.repo.Get(ctx, change.DateRange)
		switch {
		case errors.Is(err, secondary.ErrNotFound):
			// record deleted since the edit was queued; drop the change
		case err != nil:
			return flushed, fmt.Errorf("failed to load record for pending change: %w", err)
		default:
			data := record.Data
			crewInfo := record.CrewInfo
			if change.Data != nil {
				data = change.Data
			}
			if change.CrewInfo != nil {
				crewInfo = *change.CrewInfo
			}

			dateA, dateB := models.SplitDateRange(change.DateRange)
			if err := s.repo.Save(ctx, dateA, dateB, data, crewInfo); err != nil {
				return flushed, fmt.Errorf("failed to flush pending change for %s: %w", change.DateRange, err)
			}
			flushed++
		}

		if err := s.repo.DeletePending(ctx, change.ID); err != nil {
			return flushed, fmt.Errorf("failed to remove flushed pending change: %w", err)
		}
	}

	return flushed, nil
}

// Count returns the number of queued changes.
func (s *PendingServiceImpl) Count(ctx context.Context) (int, error) {
	return s.repo.PendingCount(ctx)
}

// Clear drops every queued change without applying it.
func (s *PendingServiceImpl) Clear(ctx context.Context) error {
	return s.repo.ClearPending(ctx)
}

// List returns the queued changes, oldest first.
func (s *PendingServiceImpl) List(ctx context.Context) ([]*models.PendingChange, error) {
	return s.repo.ListPending(ctx)
}
