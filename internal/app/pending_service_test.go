package app

import (
	"context"
	"testing"

	"github.com/example/ctr/internal/models"
)

func TestPendingFlushFoldsIntoSave(t *testing.T) {
	repo := newMockRecordRepository()
	s := NewPendingService(repo)
	ctx := context.Background()

	seedRecord(t, repo, "2024-06-01", "Alice")

	info := models.CrewInfo{CrewName: "Bravo"}
	if err := s.Add(ctx, "2024-06-01 to 2024-06-01", nil, &info); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	count, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 pending change, got %d", count)
	}

	flushed, err := s.Flush(ctx)
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if flushed != 1 {
		t.Errorf("expected 1 flushed change, got %d", flushed)
	}

	record, err := repo.Get(ctx, "2024-06-01 to 2024-06-01")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if record.CrewInfo.CrewName != "Bravo" {
		t.Errorf("expected crew info patch applied, got %+v", record.CrewInfo)
	}
	// Crew data was not part of the patch and survives the fold.
	if len(record.Data) != 1 || record.Data[0].Name != "Alice" {
		t.Errorf("expected crew data preserved, got %+v", record.Data)
	}
	if record.Version != 2 {
		t.Errorf("expected flush to bump version to 2, got %d", record.Version)
	}

	count, _ = s.Count(ctx)
	if count != 0 {
		t.Errorf("expected queue drained after flush, got %d", count)
	}
}

func TestPendingFlushDropsOrphanedChanges(t *testing.T) {
	repo := newMockRecordRepository()
	s := NewPendingService(repo)
	ctx := context.Background()

	// Queued against a record that no longer exists.
	if err := s.Add(ctx, "2024-06-01 to 2024-06-01", testData("Ghost"), nil); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	flushed, err := s.Flush(ctx)
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if flushed != 0 {
		t.Errorf("expected orphaned change dropped, got %d flushed", flushed)
	}
	count, _ := s.Count(ctx)
	if count != 0 {
		t.Errorf("expected queue drained, got %d", count)
	}
}

func TestPendingClear(t *testing.T) {
	repo := newMockRecordRepository()
	s := NewPendingService(repo)
	ctx := context.Background()

	s.Add(ctx, "2024-06-01 to 2024-06-01", testData("Alice"), nil)
	s.Add(ctx, "2024-06-02 to 2024-06-02", testData("Bob"), nil)

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	count, _ := s.Count(ctx)
	if count != 0 {
		t.Errorf("expected empty queue after clear, got %d", count)
	}
}

func testData(name string) []models.CrewMember {
	return []models.CrewMember{{Name: name, Classification: "FFT1"}}
}
