package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DefaultAllowedFormats are the targets the upload endpoint passes through.
// See https://help.libreoffice.org/latest/en-US/text/shared/guide/convertfilters.html
const DefaultAllowedFormats = "pdf,docx,odt,txt,html,xml,rtf,epub,xhtml,csv,pages,xlsx,ods,xls"

type Config struct {
	Port        string
	Environment string
	CORSOrigins string

	// Conversion
	TempDir           string
	DeleteFiles       bool
	AllowedFormats    []string
	ConverterBinary   string
	ConversionTimeout time.Duration
	MaxContentLength  int64
	IsolateProfile    bool

	// Auth is disabled when empty
	AuthJWKSURL string

	// Logging
	LogDir  string
	LogKeep int

	// HTTP server
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "5000"),
		Environment: getEnv("ENVIRONMENT", "dev"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		TempDir:           getEnv("APP_TEMP_DIR", os.TempDir()),
		DeleteFiles:       getBool("APP_DELETE_FILES", true),
		AllowedFormats:    splitList(getEnv("APP_ALLOWED_FORMATS", DefaultAllowedFormats)),
		ConverterBinary:   getEnv("APP_CONVERTER_BINARY", "libreoffice"),
		ConversionTimeout: getDuration("APP_CONVERSION_TIMEOUT", DefaultConversionTimeout),
		MaxContentLength:  getInt64("APP_MAX_CONTENT_LENGTH", DefaultMaxContentLength),
		IsolateProfile:    getBool("APP_ISOLATE_PROFILE", false),

		AuthJWKSURL: getEnv("AUTH_JWKS_URL", ""),

		LogDir:  getEnv("LOG_DIR", ""),
		LogKeep: int(getInt64("LOG_KEEP", DefaultLogKeep)),

		ReadTimeout:  getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout: getDuration("WRITE_TIMEOUT", 180*time.Second),
	}
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required),
		validation.Field(&c.TempDir, validation.Required),
		validation.Field(&c.AllowedFormats, validation.Required),
		validation.Field(&c.ConverterBinary, validation.Required),
		validation.Field(&c.ConversionTimeout, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.MaxContentLength, validation.Required, validation.Min(int64(1))),
		validation.Field(&c.LogKeep, validation.Min(1)),
	)
}

// IsAllowed reports whether format (a bare name or a name:filter string) is
// in the allowed list. Matching is case-insensitive.
func (c *Config) IsAllowed(format string) bool {
	for _, f := range c.AllowedFormats {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getBool treats only "true"/"1"/"yes" (any case) as true.
func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func getInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return defaultValue
	}
	return n
}

// getDuration accepts Go durations ("90s") or a bare number of seconds.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
