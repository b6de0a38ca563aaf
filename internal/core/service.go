package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/JonMunkholm/mineraly/internal/catalog"
	"github.com/JonMunkholm/mineraly/internal/source"
)

var (
	// ErrNoData is returned by queries before the first successful load.
	ErrNoData = errors.New("no data loaded")
	// ErrReloadBusy is returned when another reload holds the gate too long.
	ErrReloadBusy = errors.New("reload already in progress")
	// ErrNoSource is returned by Reload when no source is configured.
	ErrNoSource = errors.New("no source configured")
	// ErrMalformed reports input with fewer than two lines. Reload does not
	// return it; callers that must fail on such input use it.
	ErrMalformed = errors.New("malformed collection file")
	// ErrEmptyFile is returned for an upload without content.
	ErrEmptyFile = errors.New("empty file")
)

// Config tunes a Service. Zero values take the package defaults.
type Config struct {
	// ReloadWait is how long a reload waits for a running one.
	ReloadWait time.Duration
	// HistorySize is the number of reload records kept.
	HistorySize int
	// UploadOptions decode uploaded files.
	UploadOptions source.Options
}

// Service owns the published dataset of the collection and answers view
// queries against it. It is safe for concurrent use.
type Service struct {
	src     source.Source
	gate    *ReloadGate
	history *History
	upload  source.Options

	mu   sync.RWMutex
	snap *snapshot
}

// snapshot is one published load. It is never modified after publication.
type snapshot struct {
	base     catalog.Pipeline
	regions  []string
	loadedAt time.Time
	source   string
}

// NewService creates a service reading from src. src may be nil, in which
// case only uploads can load data.
func NewService(src source.Source, cfg Config) *Service {
	return &Service{
		src:     src,
		gate:    NewReloadGate(cfg.ReloadWait),
		history: NewHistory(cfg.HistorySize),
		upload:  cfg.UploadOptions,
	}
}

func (s *Service) current() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *Service) publish(snap *snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

// Source returns the configured source, or nil.
func (s *Service) Source() source.Source { return s.src }

// Loaded reports whether a dataset has been published.
func (s *Service) Loaded() bool { return s.current() != nil }

// Dataset returns the published dataset.
func (s *Service) Dataset() (*catalog.Dataset, error) {
	snap := s.current()
	if snap == nil {
		return nil, ErrNoData
	}
	return snap.base.Dataset(), nil
}

// Regions returns the region choices of the published dataset.
func (s *Service) Regions() ([]string, error) {
	snap := s.current()
	if snap == nil {
		return nil, ErrNoData
	}
	return snap.regions, nil
}

// History returns recent reloads, newest first.
func (s *Service) History() []ReloadRecord {
	return s.history.List()
}

// WaitForReloads blocks until a running reload finishes or ctx is done.
func (s *Service) WaitForReloads(ctx context.Context) error {
	return s.gate.WaitForDrain(ctx)
}

// Status summarizes the service for health checks.
type Status struct {
	Loaded     bool             `json:"loaded"`
	Rows       int              `json:"rows"`
	Source     string           `json:"source,omitempty"`
	LoadedAt   time.Time        `json:"loaded_at,omitzero"`
	Delimiter  string           `json:"delimiter,omitempty"`
	Reload     ReloadGateStatus `json:"reload"`
	LastReload *ReloadRecord    `json:"last_reload,omitempty"`
}

// Status returns the current service state.
func (s *Service) Status() Status {
	st := Status{Reload: s.gate.Status()}
	if last, ok := s.history.Last(); ok {
		st.LastReload = &last
	}
	snap := s.current()
	if snap == nil {
		return st
	}
	d := snap.base.Dataset()
	st.Loaded = true
	st.Rows = d.Len()
	st.Source = snap.source
	st.LoadedAt = snap.loadedAt
	st.Delimiter = d.Delimiter()
	return st
}

// LastError returns the error of the newest reload that changed anything,
// or "" when it succeeded. Malformed reloads are skipped since they leave
// the previous outcome in place.
func (s *Service) LastError() string {
	for _, rec := range s.history.List() {
		if !rec.Malformed {
			return rec.Error
		}
	}
	return ""
}
