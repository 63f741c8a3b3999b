package profiler

import (
	"log/slog"
	"math"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-timewarp/engine/logger"
)

// Stats is one reporting interval's summary.
type Stats struct {
	// FPS is the frame rate over the interval.
	FPS float64
	// Frames is the number of frames in the interval.
	Frames int
	// MeanErrorDeg is the mean residual orientation error of displayed frames, in degrees.
	MeanErrorDeg float64
	// MaxErrorDeg is the largest residual orientation error in the interval, in degrees.
	MaxErrorDeg float64
	// Samples is the number of error samples recorded in the interval.
	Samples int
	// HeapMB is the live heap size in megabytes.
	HeapMB float64
	// GCCount is the cumulative number of garbage collections.
	GCCount uint32
}

// Profiler tracks frame rate, residual reprojection error and memory statistics.
// Outputs stats to the engine logger at a configurable interval.
type Profiler struct {
	frameCount     int
	elapsed        time.Duration
	updateInterval time.Duration
	memStats       runtime.MemStats
	readMem        bool

	errorSum   float64
	errorMax   float64
	errorCount int

	last Stats
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		updateInterval: time.Second,
		readMem:        true,
	}
}

// SetInterval sets the reporting interval. Non-positive values are ignored.
//
// Parameters:
//   - d: the new interval
func (p *Profiler) SetInterval(d time.Duration) {
	if d > 0 {
		p.updateInterval = d
	}
}

// SetMemStats enables or disables reading runtime memory statistics at each report.
//
// Parameters:
//   - enabled: true to include heap and GC figures
func (p *Profiler) SetMemStats(enabled bool) {
	p.readMem = enabled
}

// RecordError adds one residual orientation error sample to the current interval.
//
// Parameters:
//   - radians: the angle between the displayed and the true orientation
func (p *Profiler) RecordError(radians float64) {
	deg := radians * 180 / math.Pi
	p.errorSum += deg
	p.errorCount++
	if deg > p.errorMax {
		p.errorMax = deg
	}
}

// Tick should be called once per frame with that frame's duration.
// Logs statistics when the update interval has elapsed.
//
// Parameters:
//   - dt: the duration of the frame just completed
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(dt time.Duration) bool {
	p.frameCount++
	p.elapsed += dt

	if p.elapsed < p.updateInterval {
		return false
	}

	s := Stats{
		FPS:         float64(p.frameCount) / p.elapsed.Seconds(),
		Frames:      p.frameCount,
		MaxErrorDeg: p.errorMax,
		Samples:     p.errorCount,
	}
	if p.errorCount > 0 {
		s.MeanErrorDeg = p.errorSum / float64(p.errorCount)
	}

	attrs := []any{
		slog.Float64("fps", s.FPS),
		slog.Float64("mean_error_deg", s.MeanErrorDeg),
		slog.Float64("max_error_deg", s.MaxErrorDeg),
	}
	if p.readMem {
		runtime.ReadMemStats(&p.memStats)
		s.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
		s.GCCount = p.memStats.NumGC
		attrs = append(attrs, slog.Float64("heap_mb", s.HeapMB), slog.Uint64("gc", uint64(s.GCCount)))
	}
	logger.With("profiler").Info("frame stats", attrs...)

	p.last = s
	p.frameCount = 0
	p.elapsed = 0
	p.errorSum, p.errorMax, p.errorCount = 0, 0, 0
	return true
}

// Last returns the most recently reported interval.
//
// Returns:
//   - Stats: the last report, zero before the first
func (p *Profiler) Last() Stats {
	return p.last
}
