package study

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-timewarp/engine/cadence"
)

func session(name string, corrected bool, yaw float64) Session {
	return Session{
		Name:        name,
		Corrected:   corrected,
		HighFPS:     cadence.DefaultHighFPS,
		LowFPS:      cadence.DefaultLowFPS,
		YawRate:     yaw,
		Duration:    time.Second,
		PhotonDelay: DefaultPhotonDelay,
	}
}

func TestSessionValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Session)
		ok     bool
	}{
		{name: "valid", mutate: func(*Session) {}, ok: true},
		{name: "zero duration", mutate: func(s *Session) { s.Duration = 0 }},
		{name: "zero high fps", mutate: func(s *Session) { s.HighFPS = 0 }},
		{name: "negative low fps", mutate: func(s *Session) { s.LowFPS = -1 }},
		{name: "negative photon delay", mutate: func(s *Session) { s.PhotonDelay = -time.Millisecond }},
		{name: "zero photon delay", mutate: func(s *Session) { s.PhotonDelay = 0 }, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := session(tt.name, true, 90)
			tt.mutate(&s)
			err := s.Validate()
			if tt.ok && err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidSession) {
				t.Fatalf("Validate() = %v, want ErrInvalidSession", err)
			}
		})
	}
}

func TestRunSession(t *testing.T) {
	const tolerance = 0.01

	tests := []struct {
		name        string
		session     Session
		fps         int
		errorDeg    float64
		latency     time.Duration
		wantBlits   bool
		wantCorrect bool
	}{
		{
			name:      "corrected leaves only photon delay",
			session:   session("atw", true, 90),
			fps:       90,
			errorDeg:  90 * DefaultPhotonDelay.Seconds(),
			latency:   DefaultPhotonDelay,
			wantBlits: true,
		},
		{
			name:      "uncorrected lags a full low-rate frame",
			session:   session("raw", false, 90),
			fps:       45,
			errorDeg:  90 * (time.Duration(time.Second / 45).Seconds() + DefaultPhotonDelay.Seconds()),
			latency:   time.Second/45 + DefaultPhotonDelay,
			wantBlits: true,
		},
		{
			name:      "stationary head has no error",
			session:   session("still", true, 0),
			fps:       90,
			errorDeg:  0,
			latency:   DefaultPhotonDelay,
			wantBlits: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := RunSession(context.Background(), tt.session)
			if err != nil {
				t.Fatalf("RunSession() error = %v", err)
			}
			if res.FrameRate != tt.fps {
				t.Errorf("FrameRate = %d, want %d", res.FrameRate, tt.fps)
			}
			interval := time.Second / time.Duration(tt.fps)
			wantFrames := int((tt.session.Duration + interval - 1) / interval)
			if res.Frames != wantFrames {
				t.Errorf("Frames = %d, want %d", res.Frames, wantFrames)
			}
			if math.Abs(res.MeanErrorDeg-tt.errorDeg) > tolerance {
				t.Errorf("MeanErrorDeg = %f, want %f", res.MeanErrorDeg, tt.errorDeg)
			}
			if math.Abs(res.MaxErrorDeg-tt.errorDeg) > tolerance {
				t.Errorf("MaxErrorDeg = %f, want %f", res.MaxErrorDeg, tt.errorDeg)
			}
			if d := res.MeanLatency - tt.latency; d > time.Microsecond || d < -time.Microsecond {
				t.Errorf("MeanLatency = %v, want %v", res.MeanLatency, tt.latency)
			}
			if tt.wantBlits && res.Blits != res.Frames {
				t.Errorf("Blits = %d, want one per frame (%d)", res.Blits, res.Frames)
			}
			if res.Copies != 0 {
				t.Errorf("Copies = %d, want 0", res.Copies)
			}
		})
	}
}

func TestRunSessionCorrectionBeatsRaw(t *testing.T) {
	for _, rate := range []float64{60, 120, 240} {
		atw, err := RunSession(context.Background(), session("atw", true, rate))
		if err != nil {
			t.Fatal(err)
		}
		raw, err := RunSession(context.Background(), session("raw", false, rate))
		if err != nil {
			t.Fatal(err)
		}
		if atw.MeanErrorDeg >= raw.MeanErrorDeg {
			t.Errorf("rate %v: corrected error %f not below raw %f", rate, atw.MeanErrorDeg, raw.MeanErrorDeg)
		}
		if atw.MeanLatency >= raw.MeanLatency {
			t.Errorf("rate %v: corrected latency %v not below raw %v", rate, atw.MeanLatency, raw.MeanLatency)
		}
	}
}

func TestRunSessionInvalid(t *testing.T) {
	s := session("bad", true, 90)
	s.Duration = 0
	if _, err := RunSession(context.Background(), s); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("RunSession() error = %v, want ErrInvalidSession", err)
	}
}

func TestRunSessionCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := RunSession(ctx, session("cancelled", true, 90)); !errors.Is(err, context.Canceled) {
		t.Fatalf("RunSession() error = %v, want context.Canceled", err)
	}
}

func TestDefaultSessions(t *testing.T) {
	sessions := DefaultSessions()
	if len(sessions) != 6 {
		t.Fatalf("len = %d, want 6", len(sessions))
	}
	seen := map[string]bool{}
	for _, s := range sessions {
		if err := s.Validate(); err != nil {
			t.Errorf("%s: %v", s.Name, err)
		}
		if seen[s.Name] {
			t.Errorf("duplicate session name %q", s.Name)
		}
		seen[s.Name] = true
	}
	if !seen["yaw060_atw"] || !seen["yaw240_raw"] {
		t.Errorf("unexpected names: %v", seen)
	}
}
