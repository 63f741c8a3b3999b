package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-timewarp/engine/study"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "study.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func sampleResult(runID, name string, at time.Time) study.Result {
	return study.Result{
		RunID: runID,
		Session: study.Session{
			Name:        name,
			Corrected:   true,
			HighFPS:     90,
			LowFPS:      45,
			YawRate:     120,
			Duration:    2 * time.Second,
			PhotonDelay: 5 * time.Millisecond,
		},
		Frames:       181,
		FrameRate:    90,
		MeanErrorDeg: 0.6,
		MaxErrorDeg:  0.61,
		MeanLatency:  5 * time.Millisecond,
		Blits:        181,
		RecordedAt:   at,
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestOpenTwiceAppliesMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study.db")
	for range 2 {
		store, err := Open(path)
		if err != nil {
			t.Fatalf("open store: %v", err)
		}
		var n int
		if err := store.sqlDB.QueryRow("SELECT COUNT(*) FROM " + migrationTable).Scan(&n); err != nil {
			t.Fatalf("count migrations: %v", err)
		}
		if n != 1 {
			t.Fatalf("applied migrations = %d, want 1", n)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
}

func TestRecordAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	for _, name := range []string{"yaw120_raw", "yaw120_atw"} {
		if err := store.Record(ctx, sampleResult("run-1", name, at)); err != nil {
			t.Fatalf("record %s: %v", name, err)
		}
	}

	got, err := store.List(ctx, "run-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Session.Name != "yaw120_atw" || got[1].Session.Name != "yaw120_raw" {
		t.Fatalf("order = %s, %s", got[0].Session.Name, got[1].Session.Name)
	}
	want := sampleResult("run-1", "yaw120_atw", at)
	if got[0] != want {
		t.Fatalf("round trip = %+v, want %+v", got[0], want)
	}

	empty, err := store.List(ctx, "missing")
	if err != nil {
		t.Fatalf("list missing: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("len = %d, want 0", len(empty))
	}
}

func TestRecordDuplicate(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	r := sampleResult("run-1", "yaw060_atw", time.Now())

	if err := store.Record(ctx, r); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.Record(ctx, r); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("duplicate record = %v, want ErrAlreadyExists", err)
	}
}

func TestRecordValidation(t *testing.T) {
	store := openTestStore(t)

	tests := []struct {
		name string
		r    study.Result
	}{
		{name: "missing run id", r: sampleResult("", "s", time.Now())},
		{name: "missing session", r: sampleResult("run", " ", time.Now())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.Record(context.Background(), tt.r); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.Record(ctx, sampleResult("run", "s", time.Now())); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled record = %v, want context.Canceled", err)
	}
}

func TestRuns(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	for _, r := range []study.Result{
		sampleResult("old", "a", older),
		sampleResult("old", "b", older.Add(time.Second)),
		sampleResult("new", "a", newer),
	} {
		if err := store.Record(ctx, r); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	runs, err := store.Runs(ctx)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	want := []Run{
		{ID: "new", Sessions: 1, StartedAt: newer},
		{ID: "old", Sessions: 2, StartedAt: older},
	}
	if len(runs) != len(want) {
		t.Fatalf("len = %d, want %d", len(runs), len(want))
	}
	for i := range want {
		if runs[i] != want[i] {
			t.Errorf("runs[%d] = %+v, want %+v", i, runs[i], want[i])
		}
	}
}

func TestRunnerRecordsIntoStore(t *testing.T) {
	store := openTestStore(t)
	sessions := study.DefaultSessions()[:2]
	for i := range sessions {
		sessions[i].Duration = 100 * time.Millisecond
	}

	r := study.NewRunner(study.WithRunID("integration"), study.WithRecorder(store), study.WithWorkers(2))
	if _, err := r.Run(context.Background(), sessions); err != nil {
		t.Fatalf("run: %v", err)
	}
	got, err := store.List(context.Background(), "integration")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != len(sessions) {
		t.Fatalf("stored %d, want %d", len(got), len(sessions))
	}
}

func TestCloseNil(t *testing.T) {
	var s *Store
	if err := s.Close(); err != nil {
		t.Fatalf("nil close = %v", err)
	}
}
