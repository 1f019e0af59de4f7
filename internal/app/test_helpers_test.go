package app

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/example/ctr/internal/db"
	"github.com/example/ctr/internal/models"
	"github.com/example/ctr/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// mockRecordRepository implements secondary.RecordRepository in memory.
type mockRecordRepository struct {
	mu            sync.Mutex
	records       map[string]*models.Record
	log           []*models.ChangeLogEntry
	pending       []*models.PendingChange
	nextPendingID int64

	// saveOrder records the date ranges passed to Save, in call order.
	saveOrder []string

	// beforeSave, when set, runs at the start of every Save (outside the
	// mock's lock) so tests can block the active save.
	beforeSave func()

	// failSaves makes Save return saveErr: a positive count fails that
	// many calls, -1 fails every call.
	failSaves int
	saveErr   error

	getErr  error
	listErr error
}

func newMockRecordRepository() *mockRecordRepository {
	return &mockRecordRepository{records: make(map[string]*models.Record)}
}

func (m *mockRecordRepository) Save(ctx context.Context, dateA, dateB string, data []models.CrewMember, crewInfo models.CrewInfo) error {
	if m.beforeSave != nil {
		m.beforeSave()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	dateRange := models.DateRangeKey(dateA, dateB)
	m.saveOrder = append(m.saveOrder, dateRange)

	if m.failSaves != 0 {
		if m.failSaves > 0 {
			m.failSaves--
		}
		return m.saveErr
	}

	changeType := models.ChangeCreate
	version := 1
	if existing, ok := m.records[dateRange]; ok {
		changeType = models.ChangeUpdate
		version = existing.Version + 1
	}
	m.records[dateRange] = &models.Record{
		DateRange:    dateRange,
		Data:         data,
		CrewInfo:     crewInfo,
		LastModified: time.Now().UnixMilli(),
		Version:      version,
	}
	m.log = append(m.log, &models.ChangeLogEntry{
		ID:         int64(len(m.log) + 1),
		DateRange:  dateRange,
		ChangeType: changeType,
		Timestamp:  time.Now().UnixMilli(),
	})
	return nil
}

func (m *mockRecordRepository) Get(ctx context.Context, dateRange string) (*models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	record, ok := m.records[dateRange]
	if !ok {
		return nil, fmt.Errorf("record %s: %w", dateRange, secondary.ErrNotFound)
	}
	// Deep-copy so callers mutating the result don't change stored state
	// until they Save.
	clone := *record
	clone.Data = append([]models.CrewMember(nil), record.Data...)
	for i := range clone.Data {
		clone.Data[i].Days = append([]models.Day(nil), record.Data[i].Days...)
	}
	return &clone, nil
}

func (m *mockRecordRepository) AllDateRanges(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var ranges []string
	for dateRange := range m.records {
		ranges = append(ranges, dateRange)
	}
	sort.Strings(ranges)
	return ranges, nil
}

func (m *mockRecordRepository) Delete(ctx context.Context, dateRange string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[dateRange]; !ok {
		return nil
	}
	delete(m.records, dateRange)
	m.log = append(m.log, &models.ChangeLogEntry{
		ID:         int64(len(m.log) + 1),
		DateRange:  dateRange,
		ChangeType: models.ChangeDelete,
		Timestamp:  time.Now().UnixMilli(),
	})
	return nil
}

func (m *mockRecordRepository) History(ctx context.Context, dateRange string) ([]*models.ChangeLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var entries []*models.ChangeLogEntry
	for i := len(m.log) - 1; i >= 0; i-- {
		if m.log[i].DateRange == dateRange {
			entries = append(entries, m.log[i])
		}
	}
	return entries, nil
}

func (m *mockRecordRepository) ChangesSince(ctx context.Context, timestamp int64) ([]*models.ChangeLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var entries []*models.ChangeLogEntry
	for i := len(m.log) - 1; i >= 0; i-- {
		if m.log[i].Timestamp > timestamp {
			entries = append(entries, m.log[i])
		}
	}
	return entries, nil
}

func (m *mockRecordRepository) TrackFieldChange(ctx context.Context, dateRange, field, oldValue, newValue string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log = append(m.log, &models.ChangeLogEntry{
		ID:         int64(len(m.log) + 1),
		DateRange:  dateRange,
		ChangeType: models.ChangeUpdate,
		Field:      field,
		OldValue:   oldValue,
		NewValue:   newValue,
		Timestamp:  time.Now().UnixMilli(),
	})
	return nil
}

func (m *mockRecordRepository) Stats(ctx context.Context) (*models.DatabaseStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &models.DatabaseStats{
		TotalRecords:   len(m.records),
		TotalChanges:   len(m.log),
		PendingChanges: len(m.pending),
	}
	for _, record := range m.records {
		if record.LastModified > stats.LastModified {
			stats.LastModified = record.LastModified
		}
	}
	return stats, nil
}

func (m *mockRecordRepository) AddPending(ctx context.Context, change *models.PendingChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextPendingID++
	queued := *change
	queued.ID = m.nextPendingID
	if queued.Timestamp == 0 {
		queued.Timestamp = time.Now().UnixMilli()
	}
	m.pending = append(m.pending, &queued)
	return nil
}

func (m *mockRecordRepository) ListPending(ctx context.Context) ([]*models.PendingChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.PendingChange(nil), m.pending...), nil
}

func (m *mockRecordRepository) DeletePending(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, change := range m.pending {
		if change.ID == id {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockRecordRepository) PendingCount(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending), nil
}

func (m *mockRecordRepository) ClearPending(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = nil
	return nil
}

func (m *mockRecordRepository) savedOrder() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.saveOrder...)
}

// mockGate implements StoreGate. notReadyCalls makes GetDatabase fail that
// many times with ErrNotReady; -1 fails forever.
type mockGate struct {
	mu            sync.Mutex
	notReadyCalls int
	calls         int
}

func (g *mockGate) GetDatabase() (*sql.DB, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.notReadyCalls != 0 {
		if g.notReadyCalls > 0 {
			g.notReadyCalls--
		}
		return nil, fmt.Errorf("%w: store warming up", db.ErrNotReady)
	}
	return nil, nil
}

func (g *mockGate) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// waitForIdle polls the coordinator until no save is in progress.
func waitForIdle(c *SaveCoordinator) {
	for i := 0; i < 500; i++ {
		if !c.IsSaveInProgress() {
			return
		}
		time.Sleep(time.Millisecond)
	}
}

// newTestCoordinator wires a coordinator with fast retries over the mocks.
func newTestCoordinator(repo *mockRecordRepository, gate *mockGate) *SaveCoordinator {
	c := NewSaveCoordinator(repo, gate)
	c.RetryDelay = time.Millisecond
	return c
}
