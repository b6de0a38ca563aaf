// Package source acquires the raw text of a mineral collection export from a
// local file, an HTTP endpoint or memory.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"
)

var (
	// ErrAcquisition matches every error returned by a Source.
	ErrAcquisition = errors.New("source acquisition failed")
	// ErrTooLarge is returned when the input exceeds the size limit.
	ErrTooLarge = errors.New("source exceeds size limit")
	// ErrStatus is returned for a non-2xx HTTP response.
	ErrStatus = errors.New("unexpected HTTP status")
)

// Source fetches the full text of the collection.
type Source interface {
	Fetch(ctx context.Context) (string, error)
	// Name identifies the source in logs and reload history.
	Name() string
}

// AcquisitionError describes a failed fetch.
type AcquisitionError struct {
	Source     string
	StatusCode int // HTTP status, 0 when not applicable
	Err        error
}

func (e *AcquisitionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Source, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// Is makes every AcquisitionError match ErrAcquisition.
func (e *AcquisitionError) Is(target error) bool { return target == ErrAcquisition }

func wrap(name string, status int, err error) error {
	return &AcquisitionError{Source: name, StatusCode: status, Err: err}
}

// FileSource reads a local file.
type FileSource struct {
	Path    string
	Options Options
}

func (s *FileSource) Name() string { return s.Path }

func (s *FileSource) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", wrap(s.Name(), 0, err)
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return "", wrap(s.Name(), 0, err)
	}
	defer f.Close()

	text, err := Decode(f, s.Options)
	if err != nil {
		return "", wrap(s.Name(), 0, err)
	}
	return text, nil
}

// HTTPSource downloads the file with GET. Each request carries a v=<unix
// millis> query parameter so intermediaries never serve a stale copy.
type HTTPSource struct {
	URL     string
	Client  *http.Client
	Options Options

	now func() time.Time
}

func (s *HTTPSource) Name() string { return s.URL }

func (s *HTTPSource) Fetch(ctx context.Context) (string, error) {
	u, err := s.requestURL()
	if err != nil {
		return "", wrap(s.Name(), 0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", wrap(s.Name(), 0, err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", wrap(s.Name(), 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", wrap(s.Name(), resp.StatusCode, ErrStatus)
	}

	text, err := Decode(resp.Body, s.Options)
	if err != nil {
		return "", wrap(s.Name(), 0, err)
	}
	return text, nil
}

func (s *HTTPSource) requestURL() (string, error) {
	u, err := url.Parse(s.URL)
	if err != nil {
		return "", err
	}
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	q := u.Query()
	q.Set("v", strconv.FormatInt(now().UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// StaticSource serves fixed bytes, such as an uploaded file.
type StaticSource struct {
	Label   string
	Data    []byte
	Options Options
}

func (s *StaticSource) Name() string {
	if s.Label == "" {
		return "static"
	}
	return s.Label
}

func (s *StaticSource) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", wrap(s.Name(), 0, err)
	}
	text, err := Decode(bytes.NewReader(s.Data), s.Options)
	if err != nil {
		return "", wrap(s.Name(), 0, err)
	}
	return text, nil
}

// Config selects and tunes a Source.
type Config struct {
	Path     string
	URL      string
	Timeout  time.Duration
	MaxBytes int64
	Charset  string
}

// New returns the source described by cfg. A URL takes precedence over a
// path. It returns nil when neither is set.
func New(cfg Config) (Source, error) {
	fallback, err := Charset(cfg.Charset)
	if err != nil {
		return nil, err
	}
	opts := Options{MaxBytes: cfg.MaxBytes, Fallback: fallback}

	switch {
	case cfg.URL != "":
		if _, err := url.ParseRequestURI(cfg.URL); err != nil {
			return nil, fmt.Errorf("invalid source URL: %w", err)
		}
		return &HTTPSource{
			URL:     cfg.URL,
			Client:  &http.Client{Timeout: cfg.Timeout},
			Options: opts,
		}, nil
	case cfg.Path != "":
		return &FileSource{Path: cfg.Path, Options: opts}, nil
	}
	return nil, nil
}

// Open picks an HTTPSource for http(s) locations and a FileSource otherwise.
func Open(location string, opts Options) Source {
	if u, err := url.Parse(location); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return &HTTPSource{URL: location, Options: opts}
	}
	return &FileSource{Path: location, Options: opts}
}
