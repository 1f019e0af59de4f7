package db

// SchemaSQL is the complete schema, applied on every open (IF NOT EXISTS
// throughout, so re-opening an existing store is a no-op).
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. The gate
// applies it directly; tests that need a handle without the gate apply it
// via GetSchemaSQL(), so repository code referencing a column missing here
// fails immediately with "no such column" instead of drifting silently.
const SchemaSQL = `
-- Records (one per date-range key)
CREATE TABLE IF NOT EXISTS records (
	date_range TEXT PRIMARY KEY,
	data TEXT NOT NULL,
	crew_info TEXT NOT NULL,
	last_modified INTEGER NOT NULL,
	version INTEGER NOT NULL CHECK(version >= 1)
);

-- Change log (append-only audit trail; rows are never updated or deleted)
CREATE TABLE IF NOT EXISTS change_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	date_range TEXT NOT NULL,
	change_type TEXT NOT NULL CHECK(change_type IN ('create', 'update', 'delete')),
	field TEXT,
	old_value TEXT,
	new_value TEXT,
	payload TEXT,
	timestamp INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_change_log_date_range ON change_log(date_range);
CREATE INDEX IF NOT EXISTS idx_change_log_timestamp ON change_log(timestamp);

-- Pending changes (auto-save queue, folded into full saves by a flush)
CREATE TABLE IF NOT EXISTS pending_changes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	date_range TEXT NOT NULL,
	data TEXT,
	crew_info TEXT,
	timestamp INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pending_changes_date_range ON pending_changes(date_range);
`

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// This prevents tests from hardcoding their own schema and drifting.
func GetSchemaSQL() string {
	return SchemaSQL
}
