// Package app implements the application services: save coordination,
// forward propagation, and the pending-change flush.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/ctr/internal/db"
	"github.com/example/ctr/internal/models"
	"github.com/example/ctr/internal/ports/primary"
	"github.com/example/ctr/internal/ports/secondary"
)

// StoreGate is the slice of the lifecycle gate the coordinator needs:
// a readiness probe that lazily opens the store. *db.Manager satisfies it.
type StoreGate interface {
	GetDatabase() (*sql.DB, error)
}

// SaveCoordinator enforces at most one in-flight user save at a time.
// Concurrent requests queue in FIFO order and are serviced one at a time;
// transient failures retry with linear backoff.
type SaveCoordinator struct {
	repo secondary.RecordRepository
	gate StoreGate

	// RetryAttempts bounds how many times one request is tried; the wait
	// before retry N is N x RetryDelay. Tests lower RetryDelay.
	RetryAttempts int
	RetryDelay    time.Duration

	mu          sync.Mutex
	inFlight    bool
	currentType string
	queue       []primary.SaveRequest
}

// NewSaveCoordinator creates a coordinator over the given repository and
// lifecycle gate.
func NewSaveCoordinator(repo secondary.RecordRepository, gate StoreGate) *SaveCoordinator {
	return &SaveCoordinator{
		repo:          repo,
		gate:          gate,
		RetryAttempts: 3,
		RetryDelay:    2 * time.Second,
	}
}

// Ensure SaveCoordinator implements the primary port
var _ primary.SaveService = (*SaveCoordinator)(nil)

// SaveRecord accepts a save request. If a save is in flight the request
// queues behind it in FIFO order, auto and manual alike; no request is
// ever discarded. Returns immediately; outcomes arrive via the request
// callbacks.
func (c *SaveCoordinator) SaveRecord(req primary.SaveRequest) {
	if req.SaveType == "" {
		req.SaveType = primary.SaveTypeManual
	}

	c.mu.Lock()
	if c.inFlight {
		c.queue = append(c.queue, req)
		c.mu.Unlock()
		return
	}
	c.inFlight = true
	c.currentType = req.SaveType
	c.mu.Unlock()

	go c.runLoop(req)
}

// runLoop services the active request and then drains the queue, one
// request at a time, strict FIFO. The in-flight flag stays set from the
// first acceptance until the queue is empty.
func (c *SaveCoordinator) runLoop(req primary.SaveRequest) {
	for {
		c.execute(req)

		c.mu.Lock()
		if len(c.queue) == 0 {
			c.inFlight = false
			c.currentType = ""
			c.mu.Unlock()
			return
		}
		req = c.queue[0]
		c.queue = c.queue[1:]
		c.currentType = req.SaveType
		c.mu.Unlock()
	}
}

// execute runs one request through the bounded retry loop. Transient
// errors (store not ready) retry up to RetryAttempts total; permanent
// errors fail immediately.
func (c *SaveCoordinator) execute(req primary.SaveRequest) {
	requestID := uuid.NewString()[:8]
	progress(req, fmt.Sprintf("%s save %s started", req.SaveType, requestID))

	var lastErr error
	for attempt := 1; attempt <= c.RetryAttempts; attempt++ {
		err := c.attempt(req)
		if err == nil {
			progress(req, fmt.Sprintf("%s save %s completed", req.SaveType, requestID))
			if req.OnComplete != nil {
				req.OnComplete()
			}
			return
		}
		lastErr = err

		if !errors.Is(err, db.ErrNotReady) {
			break
		}
		if attempt < c.RetryAttempts {
			progress(req, fmt.Sprintf("%s save %s retrying (attempt %d/%d)", req.SaveType, requestID, attempt+1, c.RetryAttempts))
			time.Sleep(time.Duration(attempt) * c.RetryDelay)
		}
	}

	if req.OnError != nil {
		req.OnError(fmt.Errorf("%s save %s failed: %w", req.SaveType, requestID, lastErr))
	}
}

// attempt performs a single save: readiness check, then the repository
// write. Readiness failures carry db.ErrNotReady so the retry loop can
// classify them.
func (c *SaveCoordinator) attempt(req primary.SaveRequest) error {
	if _, err := c.gate.GetDatabase(); err != nil {
		return fmt.Errorf("saveRecord aborted: %w", err)
	}

	dateA, dateB := models.SplitDateRange(req.DateRange)
	return c.repo.Save(context.Background(), dateA, dateB, req.Data, req.CrewInfo)
}

// IsSaveInProgress reports whether a save is active, including during
// retries and while queued requests remain.
func (c *SaveCoordinator) IsSaveInProgress() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// CurrentSaveType returns the active save's type, empty when idle.
func (c *SaveCoordinator) CurrentSaveType() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentType
}

// QueueLength returns the number of requests waiting behind the active save.
func (c *SaveCoordinator) QueueLength() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// ClearQueue drops all queued requests. The active save, if any, finishes
// normally.
func (c *SaveCoordinator) ClearQueue() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = nil
}

func progress(req primary.SaveRequest, message string) {
	if req.OnProgress != nil {
		req.OnProgress(message)
	}
}
