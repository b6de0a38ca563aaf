package config

import (
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/mineraly/internal/source"
)

// LookupFunc returns the value of a setting and whether it is set.
// os.LookupEnv is the usual implementation.
type LookupFunc func(key string) (string, bool)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom is Load with settings read through lookup.
func LoadFrom(lookup LookupFunc) (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem(), lookup); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// MapLookup adapts a map for LoadFrom. Empty values count as unset.
func MapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

var (
	durationType = reflect.TypeOf(time.Duration(0))
	byteSizeType = reflect.TypeOf(ByteSize(0))
	timeType     = reflect.TypeOf(time.Time{})
)

// loadStruct recursively populates struct fields from tagged settings.
func loadStruct(v reflect.Value, lookup LookupFunc) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct && field.Type != timeType {
			if err := loadStruct(fieldVal, lookup); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		if envName == "" {
			continue
		}
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")
		required := field.Tag.Get("required") == "true"

		// Primary name first, then the alternate.
		value, _ := lookup(envName)
		if value == "" && envAlt != "" {
			value, _ = lookup(envAlt)
		}

		if value == "" {
			if required {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = defaultVal
		}
		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Type() {
	case durationType:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		field.Set(reflect.ValueOf(d))
		return nil
	case byteSizeType:
		b, err := ParseByteSize(value)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(b))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(i)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		// Comma-separated, whitespace trimmed, empties dropped.
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				result = append(result, p)
			}
		}
		field.Set(reflect.ValueOf(result))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "SERVER_REQUEST_TIMEOUT must be positive")
	}

	// Source validation
	if c.Source.URL != "" {
		u, err := url.Parse(c.Source.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Sprintf("SOURCE_URL (%q) must be an absolute http(s) URL", c.Source.URL))
		}
	}
	if !c.Source.Configured() && !c.Upload.Enabled {
		errs = append(errs, "SOURCE_PATH or SOURCE_URL is required when UPLOAD_ENABLED is false")
	}
	if c.Source.FetchTimeout <= 0 {
		errs = append(errs, "SOURCE_FETCH_TIMEOUT must be positive")
	}
	if c.Source.MaxBytes <= 0 {
		errs = append(errs, "SOURCE_MAX_BYTES must be positive")
	}
	if c.Source.RefreshInterval < 0 {
		errs = append(errs, "SOURCE_REFRESH_INTERVAL must be non-negative")
	}
	if c.Source.RefreshInterval > 0 && !c.Source.Configured() {
		errs = append(errs, "SOURCE_REFRESH_INTERVAL requires SOURCE_PATH or SOURCE_URL")
	}
	if _, err := source.Charset(c.Source.FallbackCharset); err != nil {
		errs = append(errs, fmt.Sprintf("SOURCE_FALLBACK_CHARSET: %v", err))
	}

	// Viewer validation
	if c.Viewer.PhotosDir != "" {
		if fi, err := os.Stat(c.Viewer.PhotosDir); err != nil || !fi.IsDir() {
			errs = append(errs, fmt.Sprintf("PHOTOS_DIR (%q) must be an existing directory", c.Viewer.PhotosDir))
		}
	}
	if c.Viewer.PhotoExt != "" && !strings.HasPrefix(c.Viewer.PhotoExt, ".") {
		errs = append(errs, fmt.Sprintf("PHOTOS_EXT (%q) must start with a dot", c.Viewer.PhotoExt))
	}

	// Upload validation
	if c.Upload.Enabled && c.Upload.MaxFileSize <= 0 {
		errs = append(errs, "UPLOAD_MAX_FILE_SIZE must be positive")
	}

	// Reload validation
	if c.Reload.MaxWait <= 0 {
		errs = append(errs, "RELOAD_MAX_WAIT must be positive")
	}
	if c.Reload.HistorySize <= 0 {
		errs = append(errs, "RELOAD_HISTORY_SIZE must be positive")
	}

	// Rate limit validation
	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}
	if c.Rate.Enabled && c.Rate.ReloadLimit <= 0 {
		errs = append(errs, "RATE_LIMIT_RELOAD must be positive when rate limiting is enabled")
	}

	// Security validation
	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		errs = append(errs, "REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// SourceSettings converts the source section for source.New.
func (c *Config) SourceSettings() source.Config {
	return source.Config{
		Path:     c.Source.Path,
		URL:      c.Source.URL,
		Timeout:  c.Source.FetchTimeout,
		MaxBytes: int64(c.Source.MaxBytes),
		Charset:  c.Source.FallbackCharset,
	}
}

// UploadSettings returns the decode options for uploaded files. The charset
// was checked by Validate.
func (c *Config) UploadSettings() source.Options {
	fallback, _ := source.Charset(c.Source.FallbackCharset)
	return source.Options{MaxBytes: int64(c.Upload.MaxFileSize), Fallback: fallback}
}

// String returns a safe string representation of the config for logging.
// API keys and URL credentials are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Source: {Path: %q, URL: %q, MaxBytes: %s, Refresh: %s, Charset: %q}, ",
		c.Source.Path, maskURL(c.Source.URL), c.Source.MaxBytes, c.Source.RefreshInterval, c.Source.FallbackCharset))
	b.WriteString(fmt.Sprintf("Viewer: {Title: %q, PhotosDir: %q}, ", c.Viewer.Title, c.Viewer.PhotosDir))
	b.WriteString(fmt.Sprintf("Upload: {Enabled: %v, MaxFileSize: %s}, ", c.Upload.Enabled, c.Upload.MaxFileSize))
	b.WriteString(fmt.Sprintf("Rate: {Enabled: %v, RequestsPerMinute: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute))
	b.WriteString(fmt.Sprintf("Security: {RequireAPIKey: %v, APIKeys: [%d MASKED]}, ",
		c.Security.RequireAPIKey, len(c.Security.APIKeys)))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}

// maskURL hides the password of a URL with user info.
func maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "MASKED")
	}
	return u.String()
}
