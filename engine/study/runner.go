// Package study measures residual orientation error and motion-to-photon latency of the
// time-warp path under scripted head motion, with and without correction.
package study

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of study spans.
const TracerName = "github.com/Carmen-Shannon/oxy-timewarp/engine/study"

// Recorder persists session results.
type Recorder interface {
	// Record stores one result.
	//
	// Parameters:
	//   - ctx: the request context
	//   - r: the result
	//
	// Returns:
	//   - error: a storage error, or nil
	Record(ctx context.Context, r Result) error
}

// runner is the implementation of the Runner interface.
type runner struct {
	mu *sync.Mutex

	workers  int
	tracer   trace.Tracer
	recorder Recorder
	runID    string
	clock    func() time.Time

	completed []Result
}

// Runner evaluates independent sessions concurrently on a worker pool.
type Runner interface {
	// RunID returns the identifier stamped on every result.
	RunID() string

	// Run simulates every session. Sessions run concurrently, each on its own engine.
	// Results are returned in session order; failed sessions are omitted and their
	// errors joined.
	//
	// Parameters:
	//   - ctx: cancels pending sessions
	//   - sessions: the sessions to simulate
	//
	// Returns:
	//   - []Result: results of the sessions that completed
	//   - error: the joined session and recording errors, or nil
	Run(ctx context.Context, sessions []Session) ([]Result, error)

	// Completed returns every result produced by this runner so far.
	Completed() []Result
}

var _ Runner = &runner{}

// NewRunner creates a Runner.
// Defaults to one worker per CPU, the global tracer provider, no recorder and a run ID
// derived from the current time.
//
// Parameters:
//   - options: functional options for runner configuration
//
// Returns:
//   - Runner: the newly created runner
func NewRunner(options ...RunnerBuilderOption) Runner {
	r := &runner{
		mu:      &sync.Mutex{},
		workers: runtime.NumCPU(),
		clock:   time.Now,
	}
	for _, opt := range options {
		opt(r)
	}
	if r.tracer == nil {
		r.tracer = otel.Tracer(TracerName)
	}
	r.runID = strings.TrimSpace(r.runID)
	if r.runID == "" {
		r.runID = r.clock().UTC().Format("20060102T150405.000Z")
	}
	return r
}

func (r *runner) RunID() string {
	return r.runID
}

func (r *runner) Run(ctx context.Context, sessions []Session) ([]Result, error) {
	if len(sessions) == 0 {
		return nil, nil
	}
	log := logger.With("study")

	pool := worker.NewDynamicWorkerPool(r.workers, len(sessions), time.Second)
	defer pool.Stop()

	results := make([]Result, len(sessions))
	errs := make([]error, len(sessions))
	var wg sync.WaitGroup
	for i, s := range sessions {
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID:      i,
			Payload: s,
			Do: func() (any, error) {
				defer wg.Done()
				results[i], errs[i] = r.runSession(ctx, s)
				return nil, errs[i]
			},
		})
	}
	wg.Wait()

	var (
		out    []Result
		joined []error
	)
	for i, res := range results {
		if errs[i] != nil {
			log.Error("session failed", slog.String("session", sessions[i].Name), slog.Any("error", errs[i]))
			joined = append(joined, errs[i])
			continue
		}
		if r.recorder != nil {
			if err := r.recorder.Record(ctx, res); err != nil {
				joined = append(joined, fmt.Errorf("record %s: %w", res.Session.Name, err))
			}
		}
		log.Info("session complete",
			slog.String("session", res.Session.Name),
			slog.Int("fps", res.FrameRate),
			slog.Float64("mean_error_deg", res.MeanErrorDeg),
			slog.Float64("max_error_deg", res.MaxErrorDeg),
			slog.Duration("mean_latency", res.MeanLatency),
		)
		out = append(out, res)
	}

	r.mu.Lock()
	r.completed = append(r.completed, out...)
	r.mu.Unlock()
	return out, errors.Join(joined...)
}

func (r *runner) Completed() []Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Result, len(r.completed))
	copy(out, r.completed)
	return out
}

// runSession simulates one session inside its own span.
func (r *runner) runSession(ctx context.Context, s Session) (Result, error) {
	ctx, span := r.tracer.Start(ctx, "study.session", trace.WithAttributes(
		attribute.String("study.run_id", r.runID),
		attribute.String("study.session", s.Name),
		attribute.Bool("study.corrected", s.Corrected),
		attribute.Float64("study.yaw_rate_deg", s.YawRate),
	))
	defer span.End()

	res, err := RunSession(ctx, s)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}
	res.RunID = r.runID
	res.RecordedAt = r.clock().UTC()

	span.SetAttributes(
		attribute.Int("study.frames", res.Frames),
		attribute.Int("study.fps", res.FrameRate),
		attribute.Float64("study.mean_error_deg", res.MeanErrorDeg),
		attribute.Int64("study.mean_latency_us", res.MeanLatency.Microseconds()),
	)
	return res, nil
}
