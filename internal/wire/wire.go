// Package wire provides dependency injection for the CTR application.
// It creates singleton services with lazy initialization.
package wire

import (
	"log"
	"os"
	"sync"

	"github.com/example/ctr/internal/adapters/sqlite"
	"github.com/example/ctr/internal/app"
	"github.com/example/ctr/internal/config"
	"github.com/example/ctr/internal/db"
	"github.com/example/ctr/internal/ports/primary"
)

var (
	gate               *db.Manager
	recordService      primary.RecordService
	saveService        primary.SaveService
	propagationService primary.PropagationService
	pendingService     primary.PendingService
	once               sync.Once
)

// Gate returns the singleton store lifecycle gate.
func Gate() *db.Manager {
	once.Do(initServices)
	return gate
}

// RecordService returns the singleton RecordService instance.
func RecordService() primary.RecordService {
	once.Do(initServices)
	return recordService
}

// SaveService returns the singleton SaveService instance. User-initiated
// record writes go through this coordinator.
func SaveService() primary.SaveService {
	once.Do(initServices)
	return saveService
}

// PropagationService returns the singleton PropagationService instance.
func PropagationService() primary.PropagationService {
	once.Do(initServices)
	return propagationService
}

// PendingService returns the singleton PendingService instance.
func PendingService() primary.PendingService {
	once.Do(initServices)
	return pendingService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	path := databasePath()
	gate = db.NewManager(path)

	// Repository adapter (secondary port) behind the lifecycle gate
	repo := sqlite.NewRecordRepository(gate)

	// Services (primary port implementations)
	recordService = app.NewRecordService(repo)
	saveService = app.NewSaveCoordinator(repo, gate)
	propagationService = app.NewPropagator(repo)
	pendingService = app.NewPendingService(repo)
}

// databasePath resolves the store location: .ctr/config.json in the
// current directory wins, then the default under the user's home.
func databasePath() string {
	if cwd, err := os.Getwd(); err == nil {
		if cfg, err := config.LoadConfig(cwd); err == nil && cfg.DatabasePath != "" {
			return cfg.DatabasePath
		}
	}

	path, err := db.DefaultPath()
	if err != nil {
		log.Fatalf("failed to resolve database path: %v", err)
	}
	return path
}
