// Package db owns the SQLite store lifecycle and schema.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotReady marks failures caused by the store not being open yet.
// Callers classify these as transient and retry.
var ErrNotReady = errors.New("database is not ready")

type gateState int

const (
	stateUninitialized gateState = iota
	stateInitializing
	stateReady
	stateFailed
)

// Manager is the lifecycle gate for the SQLite store. It owns the single
// connection handle and guarantees that concurrent callers during
// initialization share one in-flight open instead of opening twice.
//
// State machine: Uninitialized -> Initializing -> Ready. Ready drops back
// to Uninitialized only via Close/Reset. A failed open lands in Failed and
// the next GetDatabase call retries it.
type Manager struct {
	// PollAttempts and PollInterval bound WaitForDatabase. Tests lower
	// the interval to keep polling fast.
	PollAttempts int
	PollInterval time.Duration

	mu      sync.Mutex
	path    string
	db      *sql.DB
	state   gateState
	lastErr error
	opening chan struct{} // closed when the in-flight open settles
	gen     uint64        // bumped by Close/Reset to invalidate in-flight opens
}

// NewManager creates a lifecycle gate for the database at path.
// Use ":memory:" for an ephemeral store.
func NewManager(path string) *Manager {
	return &Manager{
		path:         path,
		PollAttempts: 10,
		PollInterval: 500 * time.Millisecond,
	}
}

// DefaultPath returns the path to the database file under the user's home
// directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".ctr", "ctr.db"), nil
}

// GetDatabase returns the open database handle, lazily opening the store
// on first call. Callers that arrive while another open is in flight wait
// for that open rather than starting their own.
func (m *Manager) GetDatabase() (*sql.DB, error) {
	m.mu.Lock()
	for {
		switch m.state {
		case stateReady:
			handle := m.db
			m.mu.Unlock()
			return handle, nil

		case stateInitializing:
			ch := m.opening
			m.mu.Unlock()
			<-ch
			m.mu.Lock()

		default: // Uninitialized or Failed: start (or retry) the open
			m.state = stateInitializing
			ch := make(chan struct{})
			m.opening = ch
			gen := m.gen
			m.mu.Unlock()

			handle, err := m.open()
			return m.finishOpen(gen, ch, handle, err)
		}
	}
}

// finishOpen installs the result of an open started at generation gen.
// If Close or Reset ran while the open was in flight the fresh handle is
// closed and discarded instead of resurrecting a torn-down gate.
func (m *Manager) finishOpen(gen uint64, ch chan struct{}, handle *sql.DB, err error) (*sql.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	close(ch)
	if m.opening == ch {
		m.opening = nil
	}

	if m.gen != gen {
		if handle != nil {
			handle.Close()
		}
		return nil, fmt.Errorf("%w: store closed during open", ErrNotReady)
	}
	if err != nil {
		m.state = stateFailed
		m.lastErr = err
		m.db = nil
		return nil, fmt.Errorf("%w: %v", ErrNotReady, err)
	}
	m.db = handle
	m.state = stateReady
	m.lastErr = nil
	return handle, nil
}

// open performs the actual sqlite open, schema load, and connection probe.
func (m *Manager) open() (*sql.DB, error) {
	if m.path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	handle, err := sql.Open("sqlite3", m.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Each sqlite :memory: connection gets its own database, so the pool
	// must stay at one connection or the schema vanishes between queries.
	if m.path == ":memory:" {
		handle.SetMaxOpenConns(1)
	}

	if _, err := handle.Exec("PRAGMA foreign_keys = ON"); err != nil {
		handle.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := handle.Exec(SchemaSQL); err != nil {
		handle.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	// Verify the store is actually usable before declaring it ready.
	var n int
	if err := handle.QueryRow("SELECT COUNT(*) FROM records").Scan(&n); err != nil {
		handle.Close()
		return nil, fmt.Errorf("database connection test failed: %w", err)
	}

	return handle, nil
}

// IsReady reports whether the store handle exists and is open.
func (m *Manager) IsReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == stateReady && m.db != nil
}

// WaitForDatabase polls GetDatabase until the store is ready, up to
// PollAttempts tries with PollInterval between them. It fails with a
// timeout error once attempts are exhausted.
func (m *Manager) WaitForDatabase() (*sql.DB, error) {
	var lastErr error
	for attempt := 1; attempt <= m.PollAttempts; attempt++ {
		handle, err := m.GetDatabase()
		if err == nil {
			return handle, nil
		}
		lastErr = err
		if attempt < m.PollAttempts {
			time.Sleep(m.PollInterval)
		}
	}
	return nil, fmt.Errorf("database not ready after %d attempts: %v", m.PollAttempts, lastErr)
}

// LastError returns the error from the most recent failed open, if any.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Close closes the handle and returns the gate to Uninitialized. An open
// in flight when Close is called is invalidated: its handle is discarded
// on completion rather than installed.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	if m.db != nil {
		err = m.db.Close()
	}
	m.db = nil
	m.state = stateUninitialized
	m.lastErr = nil
	m.gen++
	return err
}

// Reset tears down the handle and clears cached initialization state so a
// subsequent GetDatabase re-opens cleanly. Used to recover from a corrupt
// or failed store.
func (m *Manager) Reset() error {
	return m.Close()
}
