// Package maintenance runs periodic background tasks as Go tickers while
// the API server is up: refreshing the player registry and keeping the
// provider response cache warm.
package maintenance

import (
	"context"
	"log/slog"
	"time"
)

// Task is one periodic job. A zero Interval disables it.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Start launches all configured tasks. Blocks until ctx is cancelled.
// Intended to be called with `go`.
func Start(ctx context.Context, tasks []Task, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	tickers := make([]*time.Ticker, 0, len(tasks))
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	for _, task := range tasks {
		if task.Interval <= 0 || task.Run == nil {
			logger.Info("Maintenance task disabled", "task", task.Name)
			continue
		}
		t := time.NewTicker(task.Interval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, task, logger)
		logger.Info("Maintenance task scheduled", "task", task.Name, "interval", task.Interval)
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, task Task, logger *slog.Logger) {
	for {
		select {
		case <-ch:
			start := time.Now()
			if err := task.Run(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("Maintenance task failed", "task", task.Name, "error", err)
				continue
			}
			logger.Debug("Maintenance task finished", "task", task.Name,
				"duration", time.Since(start).Round(time.Millisecond))
		case <-ctx.Done():
			return
		}
	}
}
