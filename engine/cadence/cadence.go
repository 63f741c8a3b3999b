// Package cadence couples the simulated render cadence to the time-warp effect: a corrected
// path runs at the high rate, an uncorrected one at the low rate, and vertical sync is always off.
package cadence

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-timewarp/engine/logger"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/postprocess"
)

const (
	// DefaultHighFPS is the cadence selected while correction is enabled.
	DefaultHighFPS = 90
	// DefaultLowFPS is the cadence selected while correction is disabled.
	DefaultLowFPS = 45
)

var (
	// ErrVolumeMissing is returned by Start when no time-warp volume is bound.
	ErrVolumeMissing = errors.New("cadence: no time-warp volume bound")

	// ErrPacerMissing is returned by Start when no frame pacer is bound.
	ErrPacerMissing = errors.New("cadence: no frame pacer bound")
)

// FramePacer is the process-wide frame pacing state the controller drives.
type FramePacer interface {
	// SetTargetFrameRate sets the target frames per second. Non-positive values mean unlimited.
	SetTargetFrameRate(fps int)

	// SetVSyncCount sets how many vertical blanks to wait per frame. Zero disables sync.
	SetVSyncCount(count int)
}

// controller is the implementation of the Controller interface.
type controller struct {
	mu *sync.Mutex

	pacers  []FramePacer
	volume  postprocess.Volume
	profile postprocess.Profile
	high    int
	low     int

	started bool
	target  int
	applied uint64
}

// Controller selects the target cadence every frame from the bound volume's enable flag.
type Controller interface {
	// Start resolves the volume and pacer bindings. A missing binding is logged and
	// returned; Update is then a no-op until Start succeeds.
	//
	// Returns:
	//   - error: ErrPacerMissing, ErrVolumeMissing, or nil
	Start() error

	// SetTargetCadence sets the target frame rate on every pacer and disables vertical sync.
	// Both are applied on every call, even when unchanged.
	//
	// Parameters:
	//   - fps: the target frames per second
	SetTargetCadence(fps int)

	// Update re-evaluates the cadence for this frame: the high rate while the volume's
	// effect is enabled, the low rate otherwise.
	Update()

	// Target returns the last applied target frame rate, or 0 before the first application.
	//
	// Returns:
	//   - int: the frames per second
	Target() int

	// Cadence returns the configured high and low rates.
	//
	// Returns:
	//   - high: the corrected cadence
	//   - low: the uncorrected cadence
	Cadence() (high, low int)

	// Applications returns how many times SetTargetCadence has been applied.
	//
	// Returns:
	//   - uint64: the application count
	Applications() uint64
}

var _ Controller = &controller{}

// NewController creates a cadence controller that drives the given pacer.
//
// Parameters:
//   - pacer: the frame pacer to drive; more can be added with WithPacer
//   - options: functional options to configure the controller
//
// Returns:
//   - Controller: the newly created controller
func NewController(pacer FramePacer, options ...ControllerBuilderOption) Controller {
	c := &controller{
		mu:   &sync.Mutex{},
		high: DefaultHighFPS,
		low:  DefaultLowFPS,
	}
	if pacer != nil {
		c.pacers = append(c.pacers, pacer)
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	log := logger.With("cadence")
	if len(c.pacers) == 0 {
		c.started = false
		log.Error("start failed", slog.Any("error", ErrPacerMissing))
		return ErrPacerMissing
	}
	if c.resolveVolume() == nil {
		c.started = false
		log.Error("start failed", slog.Any("error", ErrVolumeMissing))
		return ErrVolumeMissing
	}
	c.started = true
	log.Debug("started", slog.Int("high", c.high), slog.Int("low", c.low))
	return nil
}

func (c *controller) SetTargetCadence(fps int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apply(fps)
}

func (c *controller) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return
	}
	vol := c.resolveVolume()
	if vol != nil && vol.Enabled() {
		c.apply(c.high)
	} else {
		c.apply(c.low)
	}
}

func (c *controller) Target() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *controller) Cadence() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.high, c.low
}

func (c *controller) Applications() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applied
}

func (c *controller) apply(fps int) {
	if c.target != fps {
		logger.With("cadence").Debug("target cadence changed", slog.Int("from", c.target), slog.Int("to", fps))
	}
	for _, p := range c.pacers {
		p.SetTargetFrameRate(fps)
		p.SetVSyncCount(0)
	}
	c.target = fps
	c.applied++
}

func (c *controller) resolveVolume() postprocess.Volume {
	if c.volume != nil {
		return c.volume
	}
	if c.profile != nil {
		return c.profile.TimeWarp()
	}
	return nil
}
