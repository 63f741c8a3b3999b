package study

import (
	"time"

	"go.opentelemetry.io/otel/trace"
)

// RunnerBuilderOption is a functional option for configuring a Runner.
type RunnerBuilderOption func(*runner)

// WithWorkers sets the maximum number of concurrent sessions. Non-positive values are ignored.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - RunnerBuilderOption: the option
func WithWorkers(n int) RunnerBuilderOption {
	return func(r *runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithTracer sets the tracer session spans are started on.
//
// Parameters:
//   - t: the tracer
//
// Returns:
//   - RunnerBuilderOption: the option
func WithTracer(t trace.Tracer) RunnerBuilderOption {
	return func(r *runner) {
		r.tracer = t
	}
}

// WithRecorder sets where completed results are persisted.
//
// Parameters:
//   - rec: the recorder
//
// Returns:
//   - RunnerBuilderOption: the option
func WithRecorder(rec Recorder) RunnerBuilderOption {
	return func(r *runner) {
		r.recorder = rec
	}
}

// WithRunID sets the identifier stamped on every result.
//
// Parameters:
//   - id: the run identifier
//
// Returns:
//   - RunnerBuilderOption: the option
func WithRunID(id string) RunnerBuilderOption {
	return func(r *runner) {
		r.runID = id
	}
}

// WithClock sets the time source used for run IDs and result timestamps.
func WithClock(now func() time.Time) RunnerBuilderOption {
	return func(r *runner) {
		if now != nil {
			r.clock = now
		}
	}
}
