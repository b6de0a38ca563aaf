package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/mineraly/internal/catalog"
	"github.com/JonMunkholm/mineraly/internal/logging"
	"github.com/JonMunkholm/mineraly/internal/source"
)

// ReloadResult reports one reload. Applied is false when the input had
// fewer than two lines; the previous dataset stays published.
type ReloadResult struct {
	ID       uuid.UUID     `json:"id"`
	Applied  bool          `json:"applied"`
	Rows     int           `json:"rows"`
	Source   string        `json:"source"`
	Duration time.Duration `json:"duration"`
}

// Reload fetches the configured source and publishes the parsed dataset.
// On failure the published dataset is left untouched.
func (s *Service) Reload(ctx context.Context) (ReloadResult, error) {
	if s.src == nil {
		return ReloadResult{}, ErrNoSource
	}
	return s.load(ctx, s.src)
}

// Upload publishes an uploaded file in place of the current dataset. The
// file is kept in memory only.
func (s *Service) Upload(ctx context.Context, name string, data []byte) (ReloadResult, error) {
	if len(data) == 0 {
		return ReloadResult{}, ErrEmptyFile
	}
	if _, ok := ctx.Value(ctxKeyTrigger).(string); !ok {
		ctx = ContextWithTrigger(ctx, TriggerUpload)
	}
	return s.load(ctx, &source.StaticSource{Label: name, Data: data, Options: s.upload})
}

func (s *Service) load(ctx context.Context, src source.Source) (ReloadResult, error) {
	trigger := GetTriggerFromContext(ctx)
	logger := logging.WithFields(ctx, "source", src.Name(), "trigger", trigger)

	if err := s.gate.Acquire(ctx, trigger); err != nil {
		if errors.Is(err, ErrReloadBusy) {
			reloadsTotal.WithLabelValues(outcomeBusy).Inc()
			logger.Warn("reload skipped, another reload is running")
		}
		return ReloadResult{}, err
	}
	defer s.gate.Release()

	start := time.Now()
	rec := ReloadRecord{
		ID:        uuid.New(),
		At:        start,
		Source:    src.Name(),
		Trigger:   trigger,
		IPAddress: GetIPAddressFromContext(ctx),
	}
	res := ReloadResult{ID: rec.ID, Source: rec.Source}
	finish := func() {
		res.Duration = time.Since(start)
		rec.DurationMS = res.Duration.Milliseconds()
		reloadDuration.Observe(res.Duration.Seconds())
		s.history.Add(rec)
	}

	text, err := src.Fetch(ctx)
	if err != nil {
		rec.Error = err.Error()
		finish()
		reloadFailures.Inc()
		reloadsTotal.WithLabelValues(outcomeFailed).Inc()
		logger.Error("reload failed", "reload_id", rec.ID, "error", err)
		return res, fmt.Errorf("reload: %w", err)
	}

	d, ok := catalog.Parse(text)
	if !ok {
		rec.Error = ErrMalformed.Error()
		rec.Malformed = true
		finish()
		reloadsTotal.WithLabelValues(outcomeMalformed).Inc()
		logger.Warn("reload ignored, input has fewer than two lines",
			"reload_id", rec.ID,
			"bytes", len(text),
		)
		return res, nil
	}

	s.publish(&snapshot{
		base:     catalog.NewPipeline(d),
		regions:  d.Regions(),
		loadedAt: time.Now(),
		source:   src.Name(),
	})

	rec.Applied = true
	rec.Rows = d.Len()
	res.Applied = true
	res.Rows = d.Len()
	finish()
	rowsLoaded.Set(float64(d.Len()))
	reloadsTotal.WithLabelValues(outcomeApplied).Inc()

	logger.Info("collection loaded",
		"reload_id", rec.ID,
		"rows", d.Len(),
		"delimiter", d.Delimiter(),
		"duration_ms", rec.DurationMS,
	)
	return res, nil
}
