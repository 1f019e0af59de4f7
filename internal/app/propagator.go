package app

import (
	"context"
	"fmt"

	"github.com/example/ctr/internal/models"
	"github.com/example/ctr/internal/ports/primary"
	"github.com/example/ctr/internal/ports/secondary"
)

// Propagator forward-copies field edits into chronologically later records
// that still hold the pre-edit value. The first later record that no
// longer matches halts the walk: a record that diverged was customized on
// purpose and everything after it is left alone.
type Propagator struct {
	repo secondary.RecordRepository
}

// NewPropagator creates a propagator over the given repository.
func NewPropagator(repo secondary.RecordRepository) *Propagator {
	return &Propagator{repo: repo}
}

// Ensure Propagator implements the primary port
var _ primary.PropagationService = (*Propagator)(nil)

// PropagateForward visits records with a start date strictly after
// fromDate in ascending order. In each record, every change whose field
// currently equals the change's old value (exact comparison) is applied;
// a record where no change matches halts propagation. Each updated record
// is persisted and gets one field-level log entry per applied change.
//
// Failures partway through do not roll back records already updated in
// this run; each record write is independently valid.
func (p *Propagator) PropagateForward(ctx context.Context, changes []models.CellChange, fromDate string) (int, error) {
	if len(changes) == 0 {
		return 0, nil
	}

	ranges, err := p.repo.AllDateRanges(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list records for propagation: %w", err)
	}

	updated := 0
	for _, dateRange := range ranges {
		// Lexicographic comparison of ISO dates is chronological.
		if models.StartDate(dateRange) <= fromDate {
			continue
		}

		record, err := p.repo.Get(ctx, dateRange)
		if err != nil {
			return updated, fmt.Errorf("failed to load record %s during propagation: %w", dateRange, err)
		}

		var applied []models.CellChange
		for _, change := range changes {
			current, ok := record.FieldValue(change.Field)
			if !ok {
				continue
			}
			if current == change.OldValue {
				applied = append(applied, change)
			}
		}

		// No field in this record still matches: it diverged, stop here
		// rather than overwrite intentionally different future days.
		if len(applied) == 0 {
			break
		}

		for _, change := range applied {
			if err := record.SetFieldValue(change.Field, change.NewValue); err != nil {
				return updated, fmt.Errorf("failed to apply change to %s: %w", dateRange, err)
			}
		}

		dateA, dateB := models.SplitDateRange(dateRange)
		if err := p.repo.Save(ctx, dateA, dateB, record.Data, record.CrewInfo); err != nil {
			return updated, fmt.Errorf("failed to persist propagated record %s: %w", dateRange, err)
		}
		for _, change := range applied {
			if err := p.repo.TrackFieldChange(ctx, dateRange, change.Field, change.OldValue, change.NewValue); err != nil {
				return updated, fmt.Errorf("failed to log propagated change for %s: %w", dateRange, err)
			}
		}
		updated++
	}

	return updated, nil
}
