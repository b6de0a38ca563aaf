// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Source   SourceConfig
	Viewer   ViewerConfig
	Upload   UploadConfig
	Reload   ReloadConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 15s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`

	// RequestTimeout is the middleware timeout for requests (default: 30s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// SourceConfig selects where the collection export is read from.
type SourceConfig struct {
	// Path is a local CSV file. Supports CSV_PATH for compatibility.
	Path string `env:"SOURCE_PATH" envAlt:"CSV_PATH"`

	// URL is fetched over HTTP(S) and takes precedence over Path.
	URL string `env:"SOURCE_URL"`

	// FetchTimeout bounds one acquisition (default: 30s)
	FetchTimeout time.Duration `env:"SOURCE_FETCH_TIMEOUT" default:"30s"`

	// MaxBytes is the largest accepted file (default: 20MB)
	MaxBytes ByteSize `env:"SOURCE_MAX_BYTES" default:"20MB"`

	// RefreshInterval reloads the source periodically; 0 disables (default: 0)
	RefreshInterval time.Duration `env:"SOURCE_REFRESH_INTERVAL" default:"0s"`

	// FallbackCharset decodes files that are not UTF-8; "none" disables
	// (default: windows-1250)
	FallbackCharset string `env:"SOURCE_FALLBACK_CHARSET" default:"windows-1250"`
}

// Configured reports whether a path or URL is set.
func (c *SourceConfig) Configured() bool {
	return c.Path != "" || c.URL != ""
}

// ViewerConfig holds presentation settings.
type ViewerConfig struct {
	// Title is shown in the page header (default: Sbírka minerálů)
	Title string `env:"VIEWER_TITLE" default:"Sbírka minerálů"`

	// PhotosDir serves {identifier}{PhotoExt} under /img/ when set
	PhotosDir string `env:"PHOTOS_DIR"`

	// PhotoExt is the photo file extension (default: .jpg)
	PhotoExt string `env:"PHOTOS_EXT" default:".jpg"`

	// PhotosDefault shows the photo column without ?photos=true (default: false)
	PhotosDefault bool `env:"PHOTOS_DEFAULT" default:"false"`
}

// UploadConfig holds in-memory upload settings.
type UploadConfig struct {
	// Enabled exposes POST /api/upload (default: true)
	Enabled bool `env:"UPLOAD_ENABLED" default:"true"`

	// MaxFileSize is the maximum accepted upload (default: 20MB)
	MaxFileSize ByteSize `env:"UPLOAD_MAX_FILE_SIZE" default:"20MB"`
}

// ReloadConfig holds reload coordination settings.
type ReloadConfig struct {
	// MaxWait is how long a reload waits for a running one (default: 5s)
	MaxWait time.Duration `env:"RELOAD_MAX_WAIT" default:"5s"`

	// HistorySize is the number of reloads kept in memory (default: 20)
	HistorySize int `env:"RELOAD_HISTORY_SIZE" default:"20"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 300)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`

	// ReloadLimit is requests per minute for reload and upload (default: 10)
	ReloadLimit int `env:"RATE_LIMIT_RELOAD" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey protects reload and upload with X-API-Key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + strconv.Itoa(c.Port)
	}
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// ByteSize is a size in bytes read from values such as "512", "64KB" or
// "20MB". Units are binary (1KB = 1024 bytes).
type ByteSize int64

var byteUnits = []struct {
	suffix string
	factor int64
}{
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// ParseByteSize reads a size with an optional KB, MB or GB suffix.
func ParseByteSize(s string) (ByteSize, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	factor := int64(1)
	for _, u := range byteUnits {
		if strings.HasSuffix(s, u.suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			factor = u.factor
			break
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size: %w", err)
	}
	return ByteSize(n * factor), nil
}

// String formats b with the largest exact unit.
func (b ByteSize) String() string {
	for _, u := range byteUnits[:3] {
		if b != 0 && int64(b)%u.factor == 0 {
			return strconv.FormatInt(int64(b)/u.factor, 10) + u.suffix
		}
	}
	return strconv.FormatInt(int64(b), 10) + "B"
}
