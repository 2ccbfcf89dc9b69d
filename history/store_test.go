package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"dropbot/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRun(id string, startedAt time.Time) *types.ProcessingRun {
	return &types.ProcessingRun{
		RunID:        id,
		StartedAt:    startedAt,
		RequestedIDs: []string{"b1", "b2"},
		Items: []types.ItemResult{
			{ID: "b1", Status: types.StatusSucceeded, NewTags: []string{"go", "testing"}, Summary: "a summary"},
			{ID: "b2", Status: types.StatusFailed, FailureKind: "ContentUnavailable", Reason: "no text"},
		},
		FailedIDs: []string{"b2"},
		ElapsedMs: 1234,
	}
}

func TestAppendAndListRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	in := sampleRun(store.NewRunID(), time.Now().UTC())
	if err := store.Append(ctx, in); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	runs, err := store.List(ctx, nil)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}

	out := runs[0]
	if out.RunID != in.RunID {
		t.Fatalf("run id = %s, want %s", out.RunID, in.RunID)
	}
	if out.ElapsedMs != 1234 {
		t.Fatalf("elapsed = %d", out.ElapsedMs)
	}
	if len(out.RequestedIDs) != 2 || out.RequestedIDs[0] != "b1" {
		t.Fatalf("requested ids = %v", out.RequestedIDs)
	}
	if len(out.FailedIDs) != 1 || out.FailedIDs[0] != "b2" {
		t.Fatalf("failed ids = %v", out.FailedIDs)
	}
	if len(out.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(out.Items))
	}
	if out.Items[0].ID != "b1" || out.Items[0].Status != types.StatusSucceeded {
		t.Fatalf("item 0 = %+v", out.Items[0])
	}
	if len(out.Items[0].NewTags) != 2 || out.Items[0].NewTags[1] != "testing" {
		t.Fatalf("item 0 tags = %v", out.Items[0].NewTags)
	}
	if out.Items[1].FailureKind != "ContentUnavailable" || out.Items[1].Reason != "no text" {
		t.Fatalf("item 1 = %+v", out.Items[1])
	}
}

func TestListReverseChronological(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	ids := make([]string, 3)
	for i := 0; i < 3; i++ {
		ids[i] = store.NewRunID()
		run := sampleRun(ids[i], base.Add(time.Duration(i)*time.Hour))
		if err := store.Append(ctx, run); err != nil {
			t.Fatalf("append %d failed: %v", i, err)
		}
	}

	runs, err := store.List(ctx, nil)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	// Newest first.
	if runs[0].RunID != ids[2] || runs[2].RunID != ids[0] {
		t.Fatalf("runs out of order: %s, %s, %s", runs[0].RunID, runs[1].RunID, runs[2].RunID)
	}
}

func TestListFilters(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		run := sampleRun(store.NewRunID(), base.Add(time.Duration(i)*time.Hour))
		if err := store.Append(ctx, run); err != nil {
			t.Fatalf("append %d failed: %v", i, err)
		}
	}

	runs, err := store.List(ctx, &types.HistoryFilter{Limit: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("limit 2 returned %d runs", len(runs))
	}

	runs, err = store.List(ctx, &types.HistoryFilter{Since: base.Add(3 * time.Hour)})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("since filter returned %d runs, want 2", len(runs))
	}
	for _, run := range runs {
		if run.StartedAt.Before(base.Add(3 * time.Hour)) {
			t.Fatalf("run %s started before the since bound", run.RunID)
		}
	}
}

func TestAppendIsAtomic(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	runID := store.NewRunID()
	original := sampleRun(runID, time.Now().UTC())
	if err := store.Append(ctx, original); err != nil {
		t.Fatalf("first append failed: %v", err)
	}

	// A duplicate run id must fail without touching existing rows.
	dupe := sampleRun(runID, time.Now().UTC())
	dupe.Items = []types.ItemResult{{ID: "other", Status: types.StatusSkipped}}
	if err := store.Append(ctx, dupe); err == nil {
		t.Fatal("expected duplicate append to fail")
	}

	runs, err := store.List(ctx, nil)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 || len(runs[0].Items) != 2 {
		t.Fatalf("original run was disturbed: %+v", runs)
	}
	if runs[0].Items[0].ID != "b1" {
		t.Fatalf("item rows changed: %+v", runs[0].Items)
	}
}

func TestRunIDsAreSortable(t *testing.T) {
	store := openTestStore(t)
	prev := ""
	for i := 0; i < 10; i++ {
		id := store.NewRunID()
		if id <= prev {
			t.Fatalf("run ids not monotonically increasing: %s then %s", prev, id)
		}
		prev = id
	}
}
