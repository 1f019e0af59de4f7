package app

import (
	"context"
	"errors"
	"testing"

	"github.com/example/ctr/internal/models"
)

// seedRecord stores a record with one crew member whose name is the given
// value, keyed by a single-day date range.
func seedRecord(t *testing.T, repo *mockRecordRepository, date, name string) {
	t.Helper()
	err := repo.Save(context.Background(), date, date,
		[]models.CrewMember{{Name: name, Classification: "FFT1"}},
		models.CrewInfo{})
	if err != nil {
		t.Fatalf("failed to seed record: %v", err)
	}
}

func memberName(t *testing.T, repo *mockRecordRepository, date string) string {
	t.Helper()
	record, err := repo.Get(context.Background(), models.DateRangeKey(date, date))
	if err != nil {
		t.Fatalf("failed to load record: %v", err)
	}
	return record.Data[0].Name
}

func TestPropagationStopsAtDivergedRecord(t *testing.T) {
	repo := newMockRecordRepository()
	p := NewPropagator(repo)

	seedRecord(t, repo, "2024-06-01", "Alice")
	seedRecord(t, repo, "2024-06-02", "Alice")
	seedRecord(t, repo, "2024-06-03", "Bob") // diverged
	seedRecord(t, repo, "2024-06-04", "Alice")

	updated, err := p.PropagateForward(context.Background(),
		[]models.CellChange{{Field: "crew.0.name", OldValue: "Alice", NewValue: "Zoe"}},
		"2024-06-01")
	if err != nil {
		t.Fatalf("PropagateForward failed: %v", err)
	}
	if updated != 1 {
		t.Errorf("expected 1 record updated, got %d", updated)
	}

	if got := memberName(t, repo, "2024-06-02"); got != "Zoe" {
		t.Errorf("expected 2024-06-02 updated to Zoe, got %s", got)
	}
	if got := memberName(t, repo, "2024-06-03"); got != "Bob" {
		t.Errorf("expected diverged record untouched, got %s", got)
	}
	// Propagation halted at the diverged record; anything later stays
	// unmodified even though it still matches the old value.
	if got := memberName(t, repo, "2024-06-04"); got != "Alice" {
		t.Errorf("expected record past the halt untouched, got %s", got)
	}
	// The origin record itself is never touched.
	if got := memberName(t, repo, "2024-06-01"); got != "Alice" {
		t.Errorf("expected origin record untouched, got %s", got)
	}
}

func TestPropagationContinuesWhileMatching(t *testing.T) {
	repo := newMockRecordRepository()
	p := NewPropagator(repo)

	seedRecord(t, repo, "2024-06-01", "Alice")
	seedRecord(t, repo, "2024-06-02", "Alice")
	seedRecord(t, repo, "2024-06-03", "Alice")

	updated, err := p.PropagateForward(context.Background(),
		[]models.CellChange{{Field: "crew.0.name", OldValue: "Alice", NewValue: "Zoe"}},
		"2024-06-01")
	if err != nil {
		t.Fatalf("PropagateForward failed: %v", err)
	}
	if updated != 2 {
		t.Errorf("expected 2 records updated, got %d", updated)
	}
	if memberName(t, repo, "2024-06-02") != "Zoe" || memberName(t, repo, "2024-06-03") != "Zoe" {
		t.Error("expected both later records updated to Zoe")
	}
}

func TestPropagationExactMatchOnly(t *testing.T) {
	repo := newMockRecordRepository()
	p := NewPropagator(repo)

	seedRecord(t, repo, "2024-06-01", "Alice Smith")
	// Same person, abbreviated: ValuesMatch would accept this, the
	// propagation gate must not.
	seedRecord(t, repo, "2024-06-02", "A Smith")

	updated, err := p.PropagateForward(context.Background(),
		[]models.CellChange{{Field: "crew.0.name", OldValue: "Alice Smith", NewValue: "Zoe"}},
		"2024-06-01")
	if err != nil {
		t.Fatalf("PropagateForward failed: %v", err)
	}
	if updated != 0 {
		t.Errorf("expected no records updated, got %d", updated)
	}
	if got := memberName(t, repo, "2024-06-02"); got != "A Smith" {
		t.Errorf("expected fuzzy-similar record untouched, got %s", got)
	}
}

func TestPropagationAppliesMatchingSubset(t *testing.T) {
	repo := newMockRecordRepository()
	p := NewPropagator(repo)

	ctx := context.Background()
	seedRecord(t, repo, "2024-06-01", "Alice")
	// The later record matches the name edit but not the classification
	// edit; the matching change still applies.
	err := repo.Save(ctx, "2024-06-02", "2024-06-02",
		[]models.CrewMember{{Name: "Alice", Classification: "CRWB"}},
		models.CrewInfo{})
	if err != nil {
		t.Fatalf("failed to seed record: %v", err)
	}

	updated, err := p.PropagateForward(ctx,
		[]models.CellChange{
			{Field: "crew.0.name", OldValue: "Alice", NewValue: "Zoe"},
			{Field: "crew.0.classification", OldValue: "FFT1", NewValue: "FFT2"},
		},
		"2024-06-01")
	if err != nil {
		t.Fatalf("PropagateForward failed: %v", err)
	}
	if updated != 1 {
		t.Errorf("expected 1 record updated, got %d", updated)
	}

	record, err := repo.Get(ctx, "2024-06-02 to 2024-06-02")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if record.Data[0].Name != "Zoe" {
		t.Errorf("expected name change applied, got %s", record.Data[0].Name)
	}
	if record.Data[0].Classification != "CRWB" {
		t.Errorf("expected non-matching classification untouched, got %s", record.Data[0].Classification)
	}
}

func TestPropagationLogsFieldChanges(t *testing.T) {
	repo := newMockRecordRepository()
	p := NewPropagator(repo)

	seedRecord(t, repo, "2024-06-01", "Alice")
	seedRecord(t, repo, "2024-06-02", "Alice")

	_, err := p.PropagateForward(context.Background(),
		[]models.CellChange{{Field: "crew.0.name", OldValue: "Alice", NewValue: "Zoe"}},
		"2024-06-01")
	if err != nil {
		t.Fatalf("PropagateForward failed: %v", err)
	}

	history, err := repo.History(context.Background(), "2024-06-02 to 2024-06-02")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	// seed create + propagated save + field-level entry
	var fieldEntries int
	for _, entry := range history {
		if entry.Field == "crew.0.name" {
			fieldEntries++
			if entry.OldValue != "Alice" || entry.NewValue != "Zoe" {
				t.Errorf("unexpected field entry: %+v", entry)
			}
		}
	}
	if fieldEntries != 1 {
		t.Errorf("expected 1 field-level log entry, got %d", fieldEntries)
	}
}

func TestPropagationNoChanges(t *testing.T) {
	repo := newMockRecordRepository()
	p := NewPropagator(repo)

	seedRecord(t, repo, "2024-06-01", "Alice")

	updated, err := p.PropagateForward(context.Background(), nil, "2024-06-01")
	if err != nil {
		t.Fatalf("PropagateForward failed: %v", err)
	}
	if updated != 0 {
		t.Errorf("expected no updates for empty change set, got %d", updated)
	}
}

func TestPropagationSurfacesListError(t *testing.T) {
	repo := newMockRecordRepository()
	repo.listErr = errors.New("disk gone")
	p := NewPropagator(repo)

	_, err := p.PropagateForward(context.Background(),
		[]models.CellChange{{Field: "crew.0.name", OldValue: "A", NewValue: "B"}},
		"2024-06-01")
	if err == nil {
		t.Fatal("expected error when listing records fails")
	}
}
