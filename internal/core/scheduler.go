package core

// scheduler.go refreshes the collection in the background.
//
// The refresh job reloads the configured source every interval so edits to
// the shared export show up without a restart. It stops when the context is
// cancelled. A failed refresh keeps the previous dataset and is only logged.

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// StartRefreshScheduler reloads the source every interval until ctx is
// cancelled. It does not load immediately; the caller loads at startup.
func (s *Service) StartRefreshScheduler(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.src == nil {
		return
	}
	slog.Info("refresh scheduler started", "interval", interval.String(), "source", s.src.Name())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("refresh scheduler stopped")
			return
		case <-ticker.C:
			s.runRefreshJob(ctx)
		}
	}
}

// runRefreshJob performs one scheduled reload.
func (s *Service) runRefreshJob(ctx context.Context) {
	res, err := s.Reload(ContextWithTrigger(ctx, TriggerScheduler))
	switch {
	case errors.Is(err, ErrReloadBusy):
		slog.Debug("scheduled refresh skipped, reload in progress")
	case err != nil:
		// Already logged by the reload itself.
	case res.Applied:
		slog.Debug("scheduled refresh applied", "rows", res.Rows)
	}
}
