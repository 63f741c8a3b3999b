// Command atwstudy runs the latency study grid headless, prints a summary table and
// persists each session result to SQLite.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/Carmen-Shannon/oxy-timewarp/cmd/internal/config"
	"github.com/Carmen-Shannon/oxy-timewarp/cmd/internal/telemetry"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/logger"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/study"
	"github.com/Carmen-Shannon/oxy-timewarp/engine/study/sqlite"
)

const serviceName = "atwstudy"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "atwstudy:", err)
		os.Exit(1)
	}
}

func run() error {
	logger.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))
	log := logger.With(serviceName)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, serviceName, cfg.OtelEndpoint)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			log.Warn("telemetry shutdown", slog.Any("error", err))
		}
	}()

	options := []study.RunnerBuilderOption{study.WithWorkers(cfg.StudyWorkers)}
	if cfg.StudyDB != "" {
		store, err := sqlite.Open(cfg.StudyDB)
		if err != nil {
			return err
		}
		defer store.Close()
		options = append(options, study.WithRecorder(store))
	}

	sessions := study.DefaultSessions()
	for i := range sessions {
		sessions[i].HighFPS = cfg.HighFPS
		sessions[i].LowFPS = cfg.LowFPS
	}

	runner := study.NewRunner(options...)
	log.Info("study started", slog.String("run_id", runner.RunID()), slog.Int("sessions", len(sessions)))
	results, err := runner.Run(ctx, sessions)
	printResults(os.Stdout, results)
	return err
}

// printResults writes one aligned row per result.
//
// Parameters:
//   - w: the destination
//   - results: the results to print
func printResults(w io.Writer, results []study.Result) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "session\tfps\tyaw deg/s\tmean err deg\tmax err deg\tlatency ms\tblits\tcopies\t")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%d\t%.0f\t%.3f\t%.3f\t%.2f\t%d\t%d\t\n",
			r.Session.Name,
			r.FrameRate,
			r.Session.YawRate,
			r.MeanErrorDeg,
			r.MaxErrorDeg,
			float64(r.MeanLatency)/float64(time.Millisecond),
			r.Blits,
			r.Copies,
		)
	}
	tw.Flush()
}
