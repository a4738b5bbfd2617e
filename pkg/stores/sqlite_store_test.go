package stores

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/openmission/openmission/pkg/report"
)

// setupTestStore creates a migrated SQLite store in a temp directory
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(Config{
		Path: filepath.Join(t.TempDir(), "runs.db"),
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}

	t.Cleanup(func() { _ = store.Close() })
	return store
}

// testRun inserts a running run record and returns it
func testRun(t *testing.T, store *SQLiteStore, id string) *Run {
	t.Helper()

	now := time.Now()
	run := &Run{
		ID:        id,
		Mission:   "survey",
		Behavior:  "count_twice",
		Status:    RunStatusRunning,
		StartedAt: now,
		Settings:  "- name: target\n  kind: int\n  value: 10\n",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.CreateRun(context.Background(), run); err != nil {
		t.Fatalf("failed to create run: %v", err)
	}
	return run
}

// TestStoreLifecycle tests database initialization and closure
func TestStoreLifecycle(t *testing.T) {
	store, err := NewSQLiteStore(Config{
		Path: filepath.Join(t.TempDir(), "runs.db"),
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	if err := store.HealthCheck(ctx); err != nil {
		t.Fatalf("health check failed: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
}

// TestStoreMigrations tests database migrations
func TestStoreMigrations(t *testing.T) {
	store := setupTestStore(t)

	ctx := context.Background()

	// Check that tables exist by querying them
	tables := []string{"runs", "reports"}
	for _, table := range tables {
		query := "SELECT COUNT(*) FROM " + table
		var count int
		err := store.db.QueryRowContext(ctx, query).Scan(&count)
		if err != nil {
			t.Errorf("table %s does not exist or is not accessible: %v", table, err)
		}
	}
}

// TestRunCRUD tests run record operations
func TestRunCRUD(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	run := testRun(t, store, "run-001")

	// Read
	retrieved, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}
	if retrieved.Mission != run.Mission {
		t.Errorf("expected mission %s, got %s", run.Mission, retrieved.Mission)
	}
	if retrieved.Behavior != run.Behavior {
		t.Errorf("expected behavior %s, got %s", run.Behavior, retrieved.Behavior)
	}
	if retrieved.Status != RunStatusRunning {
		t.Errorf("expected status running, got %s", retrieved.Status)
	}
	if retrieved.Outcome != nil {
		t.Errorf("a live run has no outcome, got %v", *retrieved.Outcome)
	}

	// Update to terminal state
	outcome := "success"
	if err := store.UpdateRunStatus(ctx, run.ID, RunStatusSucceeded, &outcome, nil); err != nil {
		t.Fatalf("failed to update run status: %v", err)
	}

	updated, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("failed to get updated run: %v", err)
	}
	if updated.Status != RunStatusSucceeded {
		t.Errorf("expected status succeeded, got %s", updated.Status)
	}
	if updated.Outcome == nil || *updated.Outcome != "success" {
		t.Errorf("expected outcome success, got %v", updated.Outcome)
	}
	if updated.CompletedAt == nil {
		t.Errorf("terminal status must set completed_at")
	}

	// Delete
	if err := store.DeleteRun(ctx, run.ID); err != nil {
		t.Fatalf("failed to delete run: %v", err)
	}
	if _, err := store.GetRun(ctx, run.ID); err == nil {
		t.Errorf("expected an error for the deleted run")
	}
}

// TestRunNotFound tests error paths for missing runs
func TestRunNotFound(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if _, err := store.GetRun(ctx, "ghost"); err == nil {
		t.Errorf("expected an error for a missing run")
	}
	if err := store.UpdateRunStatus(ctx, "ghost", RunStatusFailed, nil, nil); err == nil {
		t.Errorf("expected an error updating a missing run")
	}
	if err := store.DeleteRun(ctx, "ghost"); err == nil {
		t.Errorf("expected an error deleting a missing run")
	}
}

// TestListRuns tests listing with pagination
func TestListRuns(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"run-a", "run-b", "run-c"} {
		testRun(t, store, id)
	}

	runs, err := store.ListRuns(ctx, 10, 0)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}

	page, err := store.ListRuns(ctx, 2, 0)
	if err != nil {
		t.Fatalf("failed to list page: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("expected a page of 2, got %d", len(page))
	}
}

// TestReportAppendAndList tests the report trail
func TestReportAppendAndList(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	run := testRun(t, store, "run-001")

	value := 3.0
	unit := "counts"
	entries := []*Report{
		{RunID: run.ID, Behavior: "survey.count1", Level: report.LevelDebug, Message: "counting to 3 ...", Time: time.Now()},
		{RunID: run.ID, Behavior: "survey.count1", Level: report.LevelInfo, Message: "counting finished", Value: &value, Unit: &unit, Time: time.Now().Add(time.Second)},
		{RunID: run.ID, Behavior: "survey", Level: report.LevelError, Message: "something broke", Time: time.Now().Add(2 * time.Second)},
	}
	for _, e := range entries {
		if err := store.AppendReport(ctx, e); err != nil {
			t.Fatalf("failed to append report: %v", err)
		}
		if e.ID == 0 {
			t.Errorf("append must backfill the generated ID")
		}
	}

	// All entries, in time order
	all, err := store.ListReports(ctx, &run.ID, nil, 10, 0)
	if err != nil {
		t.Fatalf("failed to list reports: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(all))
	}
	if all[0].Message != "counting to 3 ..." {
		t.Errorf("expected time order, got %q first", all[0].Message)
	}
	if all[1].Value == nil || *all[1].Value != 3.0 || all[1].Unit == nil || *all[1].Unit != "counts" {
		t.Errorf("value and unit not round-tripped: %+v", all[1])
	}

	// Level filter
	level := report.LevelError
	errsOnly, err := store.ListReports(ctx, &run.ID, &level, 10, 0)
	if err != nil {
		t.Fatalf("failed to list filtered reports: %v", err)
	}
	if len(errsOnly) != 1 || errsOnly[0].Level != report.LevelError {
		t.Errorf("expected the single error entry, got %+v", errsOnly)
	}
}

// TestReportsDeletedWithRun tests that a run's trail goes with it
func TestReportsDeletedWithRun(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	run := testRun(t, store, "run-001")
	rep := &Report{RunID: run.ID, Behavior: "survey", Level: report.LevelInfo, Message: "hello", Time: time.Now()}
	if err := store.AppendReport(ctx, rep); err != nil {
		t.Fatalf("failed to append report: %v", err)
	}

	if err := store.DeleteRun(ctx, run.ID); err != nil {
		t.Fatalf("failed to delete run: %v", err)
	}

	left, err := store.ListReports(ctx, &run.ID, nil, 10, 0)
	if err != nil {
		t.Fatalf("failed to list reports: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("expected the run's reports to be deleted, %d left", len(left))
	}
}

// TestReportSink tests the report.Sink adapter
func TestReportSink(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	run := testRun(t, store, "run-001")
	sink := NewReportSink(store, run.ID, nil)

	entry := report.NewEntry("survey.count1", report.LevelInfo, "counting finished").WithValue(3, "counts")
	entry.Time = time.Now()
	sink.Add(entry)

	persisted, err := store.ListReports(ctx, &run.ID, nil, 10, 0)
	if err != nil {
		t.Fatalf("failed to list reports: %v", err)
	}
	if len(persisted) != 1 {
		t.Fatalf("expected 1 persisted entry, got %d", len(persisted))
	}
	if persisted[0].Behavior != "survey.count1" || persisted[0].Value == nil || *persisted[0].Value != 3 {
		t.Errorf("entry not mapped faithfully: %+v", persisted[0])
	}

	// A closed sink drops entries instead of writing.
	sink.Close()
	sink.Add(report.NewEntry("survey", report.LevelInfo, "late"))
	after, err := store.ListReports(ctx, &run.ID, nil, 10, 0)
	if err != nil {
		t.Fatalf("failed to list reports: %v", err)
	}
	if len(after) != 1 {
		t.Errorf("closed sink must drop entries, got %d", len(after))
	}
}

// TestStatusForOutcome tests the outcome to status mapping
func TestStatusForOutcome(t *testing.T) {
	cases := map[string]RunStatus{
		"success":    RunStatusSucceeded,
		"preemption": RunStatusPreempted,
		"failure":    RunStatusFailed,
		"blocked":    RunStatusFailed,
	}
	for outcome, want := range cases {
		if got := StatusForOutcome(outcome); got != want {
			t.Errorf("StatusForOutcome(%q) = %s, want %s", outcome, got, want)
		}
	}
}
