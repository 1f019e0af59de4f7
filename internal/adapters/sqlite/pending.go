package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/ctr/internal/models"
)

// Pending-change queue operations. Queued rows hold partial record patches
// produced by the auto-save path; a flush folds them into full saves.

// AddPending queues a partial edit.
func (r *RecordRepository) AddPending(ctx context.Context, change *models.PendingChange) error {
	h, err := r.handle("addPendingChange")
	if err != nil {
		return err
	}

	var dataJSON, crewInfoJSON sql.NullString
	if change.Data != nil {
		encoded, err := json.Marshal(change.Data)
		if err != nil {
			return fmt.Errorf("failed to encode pending crew data: %w", err)
		}
		dataJSON = sql.NullString{String: string(encoded), Valid: true}
	}
	if change.CrewInfo != nil {
		encoded, err := json.Marshal(change.CrewInfo)
		if err != nil {
			return fmt.Errorf("failed to encode pending crew info: %w", err)
		}
		crewInfoJSON = sql.NullString{String: string(encoded), Valid: true}
	}

	ts := change.Timestamp
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}

	_, err = h.ExecContext(ctx,
		"INSERT INTO pending_changes (date_range, data, crew_info, timestamp) VALUES (?, ?, ?, ?)",
		change.DateRange, dataJSON, crewInfoJSON, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to add pending change: %w", err)
	}
	return nil
}

// ListPending returns queued pending changes, oldest first.
func (r *RecordRepository) ListPending(ctx context.Context) ([]*models.PendingChange, error) {
	h, err := r.handle("listPendingChanges")
	if err != nil {
		return nil, err
	}

	rows, err := h.QueryContext(ctx,
		"SELECT id, date_range, data, crew_info, timestamp FROM pending_changes ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending changes: %w", err)
	}
	defer rows.Close()

	var pending []*models.PendingChange
	for rows.Next() {
		var dataJSON, crewInfoJSON sql.NullString
		change := &models.PendingChange{}
		if err := rows.Scan(&change.ID, &change.DateRange, &dataJSON, &crewInfoJSON, &change.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan pending change: %w", err)
		}
		if dataJSON.Valid {
			if err := json.Unmarshal([]byte(dataJSON.String), &change.Data); err != nil {
				return nil, fmt.Errorf("failed to decode pending crew data: %w", err)
			}
		}
		if crewInfoJSON.Valid {
			change.CrewInfo = &models.CrewInfo{}
			if err := json.Unmarshal([]byte(crewInfoJSON.String), change.CrewInfo); err != nil {
				return nil, fmt.Errorf("failed to decode pending crew info: %w", err)
			}
		}
		pending = append(pending, change)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list pending changes: %w", err)
	}
	return pending, nil
}

// DeletePending removes one pending change by id.
func (r *RecordRepository) DeletePending(ctx context.Context, id int64) error {
	h, err := r.handle("deletePendingChange")
	if err != nil {
		return err
	}

	if _, err := h.ExecContext(ctx, "DELETE FROM pending_changes WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete pending change: %w", err)
	}
	return nil
}

// PendingCount returns the number of queued pending changes.
func (r *RecordRepository) PendingCount(ctx context.Context) (int, error) {
	h, err := r.handle("getPendingChangesCount")
	if err != nil {
		return 0, err
	}

	var count int
	if err := h.QueryRowContext(ctx, "SELECT COUNT(*) FROM pending_changes").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending changes: %w", err)
	}
	return count, nil
}

// ClearPending removes all queued pending changes.
func (r *RecordRepository) ClearPending(ctx context.Context) error {
	h, err := r.handle("clearPendingChanges")
	if err != nil {
		return err
	}

	if _, err := h.ExecContext(ctx, "DELETE FROM pending_changes"); err != nil {
		return fmt.Errorf("failed to clear pending changes: %w", err)
	}
	return nil
}
