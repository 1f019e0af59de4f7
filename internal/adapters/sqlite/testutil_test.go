// Package sqlite_test contains integration tests for the SQLite record
// repository, run against an in-memory store opened through the lifecycle
// gate so the schema always comes from db.SchemaSQL.
package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/example/ctr/internal/adapters/sqlite"
	"github.com/example/ctr/internal/db"
	"github.com/example/ctr/internal/models"
)

// setupTestRepo creates a repository over a fresh in-memory database.
// Retry delays are lowered so not-ready paths fail fast in tests.
func setupTestRepo(t *testing.T) *sqlite.RecordRepository {
	t.Helper()

	gate := db.NewManager(":memory:")
	if _, err := gate.GetDatabase(); err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() {
		gate.Close()
	})

	repo := sqlite.NewRecordRepository(gate)
	repo.RetryDelay = time.Millisecond
	return repo
}

// testCrew returns a single-member crew with one worked day.
func testCrew(name string) []models.CrewMember {
	return []models.CrewMember{
		{
			Name:           name,
			Classification: "FFT1",
			Days: []models.Day{
				{Date: "2024-06-01", On: "0800", Off: "1800"},
			},
		},
	}
}

// mustSave saves a record and fails the test on error.
func mustSave(t *testing.T, repo *sqlite.RecordRepository, dateA, dateB string, data []models.CrewMember, info models.CrewInfo) {
	t.Helper()
	if err := repo.Save(context.Background(), dateA, dateB, data, info); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
}
