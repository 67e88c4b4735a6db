package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/pdiddy/bookwatch/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.HistoryConfig{
		Path: filepath.Join(t.TempDir(), "nested", "history.db"),
	})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleSummary() types.RunSummary {
	return types.RunSummary{
		Total:       2,
		Available:   1,
		Unavailable: 1,
		Timestamp:   time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Results: []types.BookVerdict{
			{
				Query:   types.BookQuery{Title: "Sapiens", Author: "Harari"},
				Outcome: types.SearchOutcome{Keyword: "人类简史"},
				Verdict: types.Verdict{Available: true, Confidence: 0.95, Reasoning: "translated edition"},
			},
			{
				Query:   types.BookQuery{Title: "Dune"},
				Outcome: types.SearchOutcome{Keyword: "Dune"},
				Verdict: types.Verdict{Error: "search API returned HTTP 502"},
			},
		},
		Failed: []types.BookVerdict{
			{Query: types.BookQuery{Title: "Dune"}},
		},
	}
}

func TestRecordAndReadBack(t *testing.T) {
	s := testStore(t)

	runID, err := s.RecordRun(sampleSummary())
	if err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	runs, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("Recent = %d runs, want 1", len(runs))
	}
	r := runs[0]
	if r.ID != runID || r.Total != 2 || r.Available != 1 || r.Unavailable != 1 || r.Failed != 1 {
		t.Errorf("run = %+v", r)
	}
	if !r.Timestamp.Equal(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("Timestamp = %v", r.Timestamp)
	}

	checks, err := s.Checks(runID)
	if err != nil {
		t.Fatalf("Checks: %v", err)
	}
	if len(checks) != 2 {
		t.Fatalf("Checks = %d rows, want 2", len(checks))
	}
	if checks[0].Query.Title != "Sapiens" || !checks[0].Verdict.Available {
		t.Errorf("checks[0] = %+v", checks[0])
	}
	if checks[1].Verdict.Error == "" {
		t.Errorf("checks[1] should keep the error, got %+v", checks[1])
	}
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	s := testStore(t)

	for i := 0; i < 3; i++ {
		if _, err := s.RecordRun(sampleSummary()); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}

	runs, err := s.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Recent = %d runs, want limit of 2", len(runs))
	}
	if runs[0].ID <= runs[1].ID {
		t.Errorf("runs not newest first: %d then %d", runs[0].ID, runs[1].ID)
	}
}

func TestSchemaIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s1, err := NewStore(types.HistoryConfig{Path: path})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := s1.RecordRun(sampleSummary()); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	s1.Close()

	s2, err := NewStore(types.HistoryConfig{Path: path})
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer s2.Close()

	runs, err := s2.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("Recent = %d runs, data should survive reopening", len(runs))
	}
}
