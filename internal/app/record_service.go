package app

import (
	"context"
	"fmt"

	"github.com/example/ctr/internal/models"
	"github.com/example/ctr/internal/ports/primary"
	"github.com/example/ctr/internal/ports/secondary"
)

// RecordServiceImpl implements the RecordService interface over the
// repository. Reads pass straight through; deletes stay idempotent.
type RecordServiceImpl struct {
	repo secondary.RecordRepository
}

// NewRecordService creates a RecordService with injected dependencies.
func NewRecordService(repo secondary.RecordRepository) *RecordServiceImpl {
	return &RecordServiceImpl{repo: repo}
}

// Ensure RecordServiceImpl implements the primary port
var _ primary.RecordService = (*RecordServiceImpl)(nil)

// GetRecord retrieves one record by its date-range key.
func (s *RecordServiceImpl) GetRecord(ctx context.Context, dateRange string) (*models.Record, error) {
	return s.repo.Get(ctx, dateRange)
}

// GetAllDateRanges lists every stored key in chronological order.
func (s *RecordServiceImpl) GetAllDateRanges(ctx context.Context) ([]string, error) {
	ranges, err := s.repo.AllDateRanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list date ranges: %w", err)
	}
	return ranges, nil
}

// DeleteRecord removes a record. Missing keys are a no-op.
func (s *RecordServiceImpl) DeleteRecord(ctx context.Context, dateRange string) error {
	return s.repo.Delete(ctx, dateRange)
}

// GetChangeHistory returns the audit trail for one key, newest first.
func (s *RecordServiceImpl) GetChangeHistory(ctx context.Context, dateRange string) ([]*models.ChangeLogEntry, error) {
	return s.repo.History(ctx, dateRange)
}

// GetChangesSince returns all changes after the given unix-millisecond
// timestamp, newest first.
func (s *RecordServiceImpl) GetChangesSince(ctx context.Context, timestamp int64) ([]*models.ChangeLogEntry, error) {
	return s.repo.ChangesSince(ctx, timestamp)
}

// GetDatabaseStats summarizes store contents.
func (s *RecordServiceImpl) GetDatabaseStats(ctx context.Context) (*models.DatabaseStats, error) {
	return s.repo.Stats(ctx)
}
