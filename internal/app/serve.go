// Package app wires configuration, the collection service and the HTTP
// server into a running viewer.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/mineraly/internal/config"
	"github.com/JonMunkholm/mineraly/internal/core"
	"github.com/JonMunkholm/mineraly/internal/source"
	"github.com/JonMunkholm/mineraly/internal/web"
)

// NewService builds the collection service described by cfg. The source is
// nil when only uploads are enabled.
func NewService(cfg *config.Config) (*core.Service, error) {
	src, err := source.New(cfg.SourceSettings())
	if err != nil {
		return nil, fmt.Errorf("create source: %w", err)
	}
	return core.NewService(src, core.Config{
		ReloadWait:    cfg.Reload.MaxWait,
		HistorySize:   cfg.Reload.HistorySize,
		UploadOptions: cfg.UploadSettings(),
	}), nil
}

// Serve loads the collection, starts the refresh scheduler and serves HTTP
// until ctx is cancelled. A failed initial load is logged and the server
// starts anyway; the page shows the failure until a reload succeeds.
func Serve(ctx context.Context, cfg *config.Config) error {
	service, err := NewService(cfg)
	if err != nil {
		return err
	}

	slog.Info("configuration loaded",
		"addr", cfg.Server.Addr(),
		"source", sourceName(service),
		"upload_enabled", cfg.Upload.Enabled,
		"refresh_interval", cfg.Source.RefreshInterval.String(),
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	if service.Source() != nil {
		if _, err := service.Reload(core.ContextWithTrigger(ctx, core.TriggerStartup)); err != nil {
			slog.Warn("initial load failed", "error", err)
		}
	}

	jobCtx, cancelJobs := context.WithCancel(ctx)
	defer cancelJobs()
	go service.StartRefreshScheduler(jobCtx, cfg.Source.RefreshInterval)

	server := web.NewServer(service, cfg)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.Server.Addr())
	}()

	select {
	case err := <-errCh:
		server.Shutdown(context.Background())
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	cancelJobs()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := service.WaitForReloads(shutdownCtx); err != nil {
		slog.Warn("reloads did not complete in time", "error", err)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

func sourceName(s *core.Service) string {
	if s.Source() == nil {
		return "upload only"
	}
	return s.Source().Name()
}
