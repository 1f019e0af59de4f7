// Package sqlite contains the SQLite implementation of the record
// repository port.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/ctr/internal/db"
	"github.com/example/ctr/internal/models"
	"github.com/example/ctr/internal/ports/secondary"
)

// RecordRepository implements secondary.RecordRepository with SQLite.
// Every operation resolves the store handle through the lifecycle gate
// with a bounded retry, so calls issued while the store is still opening
// recover on their own.
type RecordRepository struct {
	gate *db.Manager

	// RetryAttempts and RetryDelay bound the not-ready retry. The delay
	// grows linearly: attempt 1 waits RetryDelay, attempt 2 waits twice
	// that, and so on. Tests lower RetryDelay to keep retries fast.
	RetryAttempts int
	RetryDelay    time.Duration
}

// NewRecordRepository creates a SQLite record repository behind the given
// lifecycle gate.
func NewRecordRepository(gate *db.Manager) *RecordRepository {
	return &RecordRepository{
		gate:          gate,
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}
}

// handle resolves the database handle, retrying while the store is not
// ready. After exhausting attempts it fails with an error naming the
// operation and attempt count.
func (r *RecordRepository) handle(op string) (*sql.DB, error) {
	var lastErr error
	for attempt := 1; attempt <= r.RetryAttempts; attempt++ {
		h, err := r.gate.GetDatabase()
		if err == nil {
			return h, nil
		}
		lastErr = err
		if attempt < r.RetryAttempts {
			time.Sleep(time.Duration(attempt) * r.RetryDelay)
		}
	}
	return nil, fmt.Errorf("%s failed after %d attempts: %w", op, r.RetryAttempts, lastErr)
}

// Save writes the full record for the "<dateA> to <dateB>" key. The record
// write and its change-log entry commit in one transaction: either both
// happen or neither does.
func (r *RecordRepository) Save(ctx context.Context, dateA, dateB string, data []models.CrewMember, crewInfo models.CrewInfo) error {
	h, err := r.handle("saveRecord")
	if err != nil {
		return err
	}

	dateRange := models.DateRangeKey(dateA, dateB)

	dataJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode crew data: %w", err)
	}
	crewInfoJSON, err := json.Marshal(crewInfo)
	if err != nil {
		return fmt.Errorf("failed to encode crew info: %w", err)
	}
	payload, err := json.Marshal(map[string]json.RawMessage{
		"data":     dataJSON,
		"crewInfo": crewInfoJSON,
	})
	if err != nil {
		return fmt.Errorf("failed to encode change payload: %w", err)
	}

	tx, err := h.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin save transaction: %w", err)
	}
	defer tx.Rollback()

	// Read the prior version to decide create-vs-update and the next
	// version number. Safe against check-then-act races because all
	// writes are serialized by the save coordinator.
	var prevVersion int
	changeType := models.ChangeCreate
	err = tx.QueryRowContext(ctx, "SELECT version FROM records WHERE date_range = ?", dateRange).Scan(&prevVersion)
	switch {
	case err == sql.ErrNoRows:
		// first write for this key
	case err != nil:
		return fmt.Errorf("failed to read existing record: %w", err)
	default:
		changeType = models.ChangeUpdate
	}

	now := time.Now().UnixMilli()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO records (date_range, data, crew_info, last_modified, version)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(date_range) DO UPDATE SET
		   data = excluded.data,
		   crew_info = excluded.crew_info,
		   last_modified = excluded.last_modified,
		   version = excluded.version`,
		dateRange, string(dataJSON), string(crewInfoJSON), now, prevVersion+1,
	)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO change_log (date_range, change_type, payload, timestamp) VALUES (?, ?, ?, ?)",
		dateRange, changeType, string(payload), now,
	)
	if err != nil {
		return fmt.Errorf("failed to log change: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit save: %w", err)
	}
	return nil
}

// Get retrieves a record by its date-range key.
func (r *RecordRepository) Get(ctx context.Context, dateRange string) (*models.Record, error) {
	h, err := r.handle("getRecord")
	if err != nil {
		return nil, err
	}

	var (
		dataJSON     string
		crewInfoJSON string
	)
	record := &models.Record{}
	err = h.QueryRowContext(ctx,
		"SELECT date_range, data, crew_info, last_modified, version FROM records WHERE date_range = ?",
		dateRange,
	).Scan(&record.DateRange, &dataJSON, &crewInfoJSON, &record.LastModified, &record.Version)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("record %s: %w", dateRange, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	if err := json.Unmarshal([]byte(dataJSON), &record.Data); err != nil {
		return nil, fmt.Errorf("failed to decode crew data: %w", err)
	}
	if err := json.Unmarshal([]byte(crewInfoJSON), &record.CrewInfo); err != nil {
		return nil, fmt.Errorf("failed to decode crew info: %w", err)
	}
	return record, nil
}

// AllDateRanges returns every stored key in lexicographic order, which is
// chronological for ISO date keys.
func (r *RecordRepository) AllDateRanges(ctx context.Context) ([]string, error) {
	h, err := r.handle("getAllDateRanges")
	if err != nil {
		return nil, err
	}

	rows, err := h.QueryContext(ctx, "SELECT date_range FROM records ORDER BY date_range")
	if err != nil {
		return nil, fmt.Errorf("failed to list date ranges: %w", err)
	}
	defer rows.Close()

	var ranges []string
	for rows.Next() {
		var dr string
		if err := rows.Scan(&dr); err != nil {
			return nil, fmt.Errorf("failed to scan date range: %w", err)
		}
		ranges = append(ranges, dr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list date ranges: %w", err)
	}
	return ranges, nil
}

// Delete removes a record, logging a delete entry with the pre-deletion
// snapshot first. Deleting a missing key is a no-op.
func (r *RecordRepository) Delete(ctx context.Context, dateRange string) error {
	h, err := r.handle("deleteRecord")
	if err != nil {
		return err
	}

	tx, err := h.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	var dataJSON, crewInfoJSON string
	err = tx.QueryRowContext(ctx,
		"SELECT data, crew_info FROM records WHERE date_range = ?", dateRange,
	).Scan(&dataJSON, &crewInfoJSON)
	if err == sql.ErrNoRows {
		return nil // idempotent: nothing to delete
	}
	if err != nil {
		return fmt.Errorf("failed to read record for delete: %w", err)
	}

	payload, err := json.Marshal(map[string]json.RawMessage{
		"data":     json.RawMessage(dataJSON),
		"crewInfo": json.RawMessage(crewInfoJSON),
	})
	if err != nil {
		return fmt.Errorf("failed to encode delete payload: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO change_log (date_range, change_type, payload, timestamp) VALUES (?, ?, ?, ?)",
		dateRange, models.ChangeDelete, string(payload), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to log delete: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE date_range = ?", dateRange); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

// Ensure RecordRepository implements the secondary port
var _ secondary.RecordRepository = (*RecordRepository)(nil)

const changeLogColumns = "id, date_range, change_type, field, old_value, new_value, payload, timestamp"

func scanChangeLogRows(rows *sql.Rows) ([]*models.ChangeLogEntry, error) {
	var entries []*models.ChangeLogEntry
	for rows.Next() {
		var (
			field    sql.NullString
			oldValue sql.NullString
			newValue sql.NullString
			payload  sql.NullString
		)
		entry := &models.ChangeLogEntry{}
		if err := rows.Scan(&entry.ID, &entry.DateRange, &entry.ChangeType, &field, &oldValue, &newValue, &payload, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan change log entry: %w", err)
		}
		entry.Field = field.String
		entry.OldValue = oldValue.String
		entry.NewValue = newValue.String
		entry.Payload = payload.String
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read change log: %w", err)
	}
	return entries, nil
}

// History returns the change-log entries for one key, newest first.
func (r *RecordRepository) History(ctx context.Context, dateRange string) ([]*models.ChangeLogEntry, error) {
	h, err := r.handle("getChangeHistory")
	if err != nil {
		return nil, err
	}

	rows, err := h.QueryContext(ctx,
		"SELECT "+changeLogColumns+" FROM change_log WHERE date_range = ? ORDER BY timestamp DESC, id DESC",
		dateRange,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get change history: %w", err)
	}
	defer rows.Close()
	return scanChangeLogRows(rows)
}

// ChangesSince returns entries newer than the given unix-millisecond
// timestamp, newest first.
func (r *RecordRepository) ChangesSince(ctx context.Context, timestamp int64) ([]*models.ChangeLogEntry, error) {
	h, err := r.handle("getChangesSince")
	if err != nil {
		return nil, err
	}

	rows, err := h.QueryContext(ctx,
		"SELECT "+changeLogColumns+" FROM change_log WHERE timestamp > ? ORDER BY timestamp DESC, id DESC",
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get changes since timestamp: %w", err)
	}
	defer rows.Close()
	return scanChangeLogRows(rows)
}

// TrackFieldChange appends a granular field-level update entry.
func (r *RecordRepository) TrackFieldChange(ctx context.Context, dateRange, field, oldValue, newValue string) error {
	h, err := r.handle("trackFieldChange")
	if err != nil {
		return err
	}

	_, err = h.ExecContext(ctx,
		"INSERT INTO change_log (date_range, change_type, field, old_value, new_value, timestamp) VALUES (?, ?, ?, ?, ?, ?)",
		dateRange, models.ChangeUpdate, field, oldValue, newValue, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to track field change: %w", err)
	}
	return nil
}

// Stats summarizes store contents. LastModified is the max last_modified
// across all records, 0 when the store is empty.
func (r *RecordRepository) Stats(ctx context.Context) (*models.DatabaseStats, error) {
	h, err := r.handle("getDatabaseStats")
	if err != nil {
		return nil, err
	}

	stats := &models.DatabaseStats{}
	err = h.QueryRowContext(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM records),
		   (SELECT COUNT(*) FROM change_log),
		   (SELECT COUNT(*) FROM pending_changes),
		   (SELECT COALESCE(MAX(last_modified), 0) FROM records)`,
	).Scan(&stats.TotalRecords, &stats.TotalChanges, &stats.PendingChanges, &stats.LastModified)
	if err != nil {
		return nil, fmt.Errorf("failed to get database stats: %w", err)
	}
	return stats, nil
}
