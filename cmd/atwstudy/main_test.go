package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-timewarp/engine/study"
)

func TestPrintResults(t *testing.T) {
	var buf bytes.Buffer
	printResults(&buf, []study.Result{{
		Session:      study.Session{Name: "yaw120_atw", YawRate: 120},
		FrameRate:    90,
		MeanErrorDeg: 0.6,
		MaxErrorDeg:  0.6,
		MeanLatency:  5 * time.Millisecond,
		Blits:        181,
	}})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2:\n%s", len(lines), buf.String())
	}
	for _, want := range []string{"yaw120_atw", "90", "0.600", "5.00", "181"} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("row %q missing %q", lines[1], want)
		}
	}
}
