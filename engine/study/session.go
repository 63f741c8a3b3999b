package study

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Carmen-Shannon/oxy-timewarp/common"
	"github.com/Carmen-Shannon/oxy-timewarp/engine"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/cadence"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/camera"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/postprocess"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/timewarp"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultPhotonDelay is the scan-out delay between the final pose sample and photons leaving the display.
const DefaultPhotonDelay = 5 * time.Millisecond

// ErrInvalidSession is returned for sessions that cannot be simulated.
var ErrInvalidSession = errors.New("study: invalid session")

// Session describes one scripted head motion evaluated through the full frame loop.
type Session struct {
	// Name identifies the session in results.
	Name string
	// Corrected enables the reprojection effect. Cadence follows it: HighFPS when corrected, LowFPS when not.
	Corrected bool
	// HighFPS and LowFPS are the cadence controller's frame rates.
	HighFPS int
	LowFPS  int
	// YawRate is the constant head yaw speed in degrees per second.
	YawRate float64
	// Duration is the simulated session length.
	Duration time.Duration
	// PhotonDelay is the delay between the display-time pose sample and photon emission.
	PhotonDelay time.Duration
}

// Validate reports whether the session can be simulated.
//
// Returns:
//   - error: ErrInvalidSession describing the first bad field, or nil
func (s Session) Validate() error {
	switch {
	case s.Duration <= 0:
		return fmt.Errorf("%w: %s: duration must be positive", ErrInvalidSession, s.Name)
	case s.HighFPS <= 0 || s.LowFPS <= 0:
		return fmt.Errorf("%w: %s: frame rates must be positive", ErrInvalidSession, s.Name)
	case s.PhotonDelay < 0:
		return fmt.Errorf("%w: %s: photon delay must not be negative", ErrInvalidSession, s.Name)
	}
	return nil
}

// Result summarizes one simulated session.
type Result struct {
	RunID   string
	Session Session

	// Frames is the number of frames stepped.
	Frames int
	// FrameRate is the cadence the session settled on.
	FrameRate int
	// MeanErrorDeg and MaxErrorDeg measure the angle between the orientation the displayed image
	// shows and the true head orientation when its photons leave the display.
	MeanErrorDeg float64
	MaxErrorDeg  float64
	// MeanLatency is the mean motion-to-photon latency of the pose the displayed image shows.
	MeanLatency time.Duration
	// Blits and Copies count the post-process operations issued.
	Blits  int
	Copies int

	RecordedAt time.Time
}

// DefaultSessions returns the standard comparison grid: three yaw speeds, each with the effect on and off.
//
// Returns:
//   - []Session: the sessions
func DefaultSessions() []Session {
	var sessions []Session
	for _, rate := range []float64{60, 120, 240} {
		for _, corrected := range []bool{true, false} {
			mode := "raw"
			if corrected {
				mode = "atw"
			}
			sessions = append(sessions, Session{
				Name:        fmt.Sprintf("yaw%03.0f_%s", rate, mode),
				Corrected:   corrected,
				HighFPS:     cadence.DefaultHighFPS,
				LowFPS:      cadence.DefaultLowFPS,
				YawRate:     rate,
				Duration:    2 * time.Second,
				PhotonDelay: DefaultPhotonDelay,
			})
		}
	}
	return sessions
}

// yawAt returns the head orientation after t of constant yaw at rate degrees per second.
func yawAt(rate float64, t time.Duration) mgl32.Quat {
	deg := math.Mod(rate*t.Seconds(), 360)
	return mgl32.QuatRotate(float32(deg*math.Pi/180), mgl32.Vec3{0, 1, 0})
}

// RunSession simulates one session on its own engine with a simulated clock.
//
// Each frame the head pose is set at frame start (render time) and again one frame interval
// later (display time, while the frame is in flight). The displayed image shows the render-time
// pose rotated by the inverse of the uploaded correction; it is compared with the pose at photon
// time, one frame interval plus PhotonDelay after frame start.
//
// Parameters:
//   - ctx: cancels the simulation between frames
//   - s: the session
//
// Returns:
//   - Result: the session summary
//   - error: ErrInvalidSession, a binding error, or ctx.Err()
func RunSession(ctx context.Context, s Session) (Result, error) {
	if err := s.Validate(); err != nil {
		return Result{}, err
	}

	cam := camera.NewCamera(camera.WithName(s.Name))
	vol := postprocess.NewVolume(postprocess.WithEnabled(s.Corrected))
	profile := postprocess.NewProfile(postprocess.WithTimeWarp(vol))
	rec := postprocess.NewRecorder()
	eng := engine.NewEngine(engine.WithCamera(cam), engine.WithProfile(profile), engine.WithCommandSink(rec))
	if err := eng.Setup(); err != nil {
		return Result{}, err
	}
	defer eng.Shutdown()

	tw := timewarp.NewController(eng.Pipeline(), timewarp.WithCamera(cam), timewarp.WithProfile(profile))
	if err := tw.Activate(); err != nil {
		return Result{}, err
	}
	defer tw.Deactivate()

	pacer := cadence.NewController(eng, cadence.WithVolume(vol), cadence.WithCadence(s.HighFPS, s.LowFPS))
	if err := pacer.Start(); err != nil {
		return Result{}, err
	}
	pacer.Update()

	var clock, interval time.Duration
	eng.AddTickCallback(func(float32) { cam.SetOrientation(yawAt(s.YawRate, clock)) })
	eng.AddLateUpdateCallback(func(float32) { tw.LateUpdate() })
	eng.AddInFlightCallback(func(float32) { cam.SetOrientation(yawAt(s.YawRate, clock+interval)) })
	eng.AddFrameCallback(func(float32) { pacer.Update() })

	var (
		res        = Result{Session: s}
		errorSum   float64
		latencySum time.Duration
	)
	for clock < s.Duration {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		interval = eng.FrameInterval()
		rec.Reset()
		eng.Step(interval)

		op, ok := rec.Last()
		if !ok {
			clock += interval
			continue
		}

		render := tw.RenderTimeOrientation()
		shown, poseTime := render, clock
		switch op.Kind {
		case postprocess.OpBlit:
			res.Blits++
			if vol.Enabled() {
				delta := mgl32.Mat4ToQuat(op.Params[postprocess.ParamInverseMatrix]).Inverse()
				shown, poseTime = delta.Mul(render).Normalize(), clock+interval
			}
		case postprocess.OpCopy:
			res.Copies++
		}

		photon := clock + interval + s.PhotonDelay
		angle := common.QuatAngle(shown, yawAt(s.YawRate, photon))
		eng.Profiler().RecordError(angle)

		deg := angle * 180 / math.Pi
		errorSum += deg
		res.MaxErrorDeg = max(res.MaxErrorDeg, deg)
		latencySum += photon - poseTime
		res.Frames++

		clock += interval
	}

	if res.Frames > 0 {
		res.MeanErrorDeg = errorSum / float64(res.Frames)
		res.MeanLatency = latencySum / time.Duration(res.Frames)
	}
	res.FrameRate = eng.TargetFrameRate()
	return res, nil
}
