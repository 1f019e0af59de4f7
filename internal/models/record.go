package models

import (
	"fmt"
	"strings"
)

// Change types recorded in the change log.
const (
	ChangeCreate = "create"
	ChangeUpdate = "update"
	ChangeDelete = "delete"
)

// Record is the persisted entity for one date-range's crew/time data.
// There is at most one Record per date-range key.
type Record struct {
	DateRange    string       `json:"dateRange"`
	Data         []CrewMember `json:"data"`
	CrewInfo     CrewInfo     `json:"crewInfo"`
	LastModified int64        `json:"lastModified"` // unix milliseconds
	Version      int          `json:"version"`
}

// ChangeLogEntry is one row of the append-only audit trail.
type ChangeLogEntry struct {
	ID         int64  `json:"id"`
	DateRange  string `json:"dateRange"`
	ChangeType string `json:"changeType"`
	Field      string `json:"field,omitempty"`
	OldValue   string `json:"oldValue,omitempty"`
	NewValue   string `json:"newValue,omitempty"`
	// Payload carries the full record snapshot for create/update/delete
	// entries (JSON-encoded data + crewInfo). Empty for field-level entries.
	Payload   string `json:"payload,omitempty"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
}

// PendingChange is a queued partial edit awaiting a flush into a full save.
// Nil fields mean "leave the stored value alone".
type PendingChange struct {
	ID        int64        `json:"id"`
	DateRange string       `json:"dateRange"`
	Data      []CrewMember `json:"data,omitempty"`
	CrewInfo  *CrewInfo    `json:"crewInfo,omitempty"`
	Timestamp int64        `json:"timestamp"`
}

// CellChange describes one field-level edit: the field path, the value it
// had before the edit, and the value it has now.
type CellChange struct {
	Field    string `json:"field"`
	OldValue string `json:"oldValue"`
	NewValue string `json:"newValue"`
}

// DatabaseStats summarizes store contents.
type DatabaseStats struct {
	TotalRecords   int   `json:"totalRecords"`
	TotalChanges   int   `json:"totalChanges"`
	PendingChanges int   `json:"pendingChanges"`
	LastModified   int64 `json:"lastModified"`
}

// DateRangeKey builds the primary key for a record: "<dateA> to <dateB>".
func DateRangeKey(dateA, dateB string) string {
	return fmt.Sprintf("%s to %s", dateA, dateB)
}

// SplitDateRange splits a date-range key back into its two dates. A key
// without the " to " separator is treated as a single-date range.
func SplitDateRange(dateRange string) (string, string) {
	parts := strings.SplitN(dateRange, " to ", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return dateRange, dateRange
}

// StartDate returns the first date of a date-range key, used for
// chronological comparison against single dates.
func StartDate(dateRange string) string {
	start, _ := SplitDateRange(dateRange)
	return start
}
