// Package sqlite provides a SQLite-backed store for latency study results.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-timewarp/engine/study"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/study/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// ErrAlreadyExists is returned when a result for the same run and session was already recorded.
var ErrAlreadyExists = errors.New("study result already exists")

// Run summarizes one recorded run.
type Run struct {
	ID        string
	Sessions  int
	StartedAt time.Time
}

// Store persists study results in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ study.Recorder = &Store{}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite study store and applies embedded migrations.
//
// Parameters:
//   - path: the database file path
//
// Returns:
//   - *Store: the opened store
//   - error: an open, ping or migration error
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Record inserts one session result.
//
// Parameters:
//   - ctx: the request context
//   - r: the result; RunID and Session.Name are required
//
// Returns:
//   - error: ErrAlreadyExists for a duplicate run and session, or another storage error
func (s *Store) Record(ctx context.Context, r study.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	runID := strings.TrimSpace(r.RunID)
	name := strings.TrimSpace(r.Session.Name)
	if runID == "" {
		return fmt.Errorf("run id is required")
	}
	if name == "" {
		return fmt.Errorf("session name is required")
	}
	recordedAt := r.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO study_results (
		   run_id,
		   session,
		   corrected,
		   high_fps,
		   low_fps,
		   yaw_rate,
		   duration_ns,
		   photon_delay_ns,
		   frames,
		   frame_rate,
		   mean_error_deg,
		   max_error_deg,
		   mean_latency_ns,
		   blits,
		   copies,
		   recorded_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		name,
		r.Session.Corrected,
		r.Session.HighFPS,
		r.Session.LowFPS,
		r.Session.YawRate,
		int64(r.Session.Duration),
		int64(r.Session.PhotonDelay),
		r.Frames,
		r.FrameRate,
		r.MeanErrorDeg,
		r.MaxErrorDeg,
		int64(r.MeanLatency),
		r.Blits,
		r.Copies,
		toMillis(recordedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("record study result: %w", err)
	}
	return nil
}

// List returns every result of one run ordered by session name.
//
// Parameters:
//   - ctx: the request context
//   - runID: the run identifier
//
// Returns:
//   - []study.Result: the results, empty for an unknown run
//   - error: a storage error
func (s *Store) List(ctx context.Context, runID string) ([]study.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil, fmt.Errorf("run id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT run_id, session, corrected, high_fps, low_fps, yaw_rate,
		        duration_ns, photon_delay_ns, frames, frame_rate,
		        mean_error_deg, max_error_deg, mean_latency_ns,
		        blits, copies, recorded_at
		   FROM study_results
		  WHERE run_id = ?
		  ORDER BY session ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list study results: %w", err)
	}
	defer rows.Close()

	var results []study.Result
	for rows.Next() {
		var (
			r                                  study.Result
			duration, photonDelay, meanLatency int64
			recordedAt                         int64
		)
		if err := rows.Scan(
			&r.RunID,
			&r.Session.Name,
			&r.Session.Corrected,
			&r.Session.HighFPS,
			&r.Session.LowFPS,
			&r.Session.YawRate,
			&duration,
			&photonDelay,
			&r.Frames,
			&r.FrameRate,
			&r.MeanErrorDeg,
			&r.MaxErrorDeg,
			&meanLatency,
			&r.Blits,
			&r.Copies,
			&recordedAt,
		); err != nil {
			return nil, fmt.Errorf("scan study result: %w", err)
		}
		r.Session.Duration = time.Duration(duration)
		r.Session.PhotonDelay = time.Duration(photonDelay)
		r.MeanLatency = time.Duration(meanLatency)
		r.RecordedAt = fromMillis(recordedAt)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate study results: %w", err)
	}
	return results, nil
}

// Runs returns every recorded run, most recent first.
//
// Parameters:
//   - ctx: the request context
//
// Returns:
//   - []Run: the runs
//   - error: a storage error
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT run_id, COUNT(*), MIN(recorded_at)
		   FROM study_results
		  GROUP BY run_id
		  ORDER BY MIN(recorded_at) DESC, run_id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list study runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run       Run
			startedAt int64
		)
		if err := rows.Scan(&run.ID, &run.Sessions, &startedAt); err != nil {
			return nil, fmt.Errorf("scan study run: %w", err)
		}
		run.StartedAt = fromMillis(startedAt)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate study runs: %w", err)
	}
	return runs, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE
}
