// Package config provides functionality for managing configuration options
// for the JobScout binaries using command-line flags, an optional JSON config
// file, an optional .env file and environment variables.
//
// Precedence, lowest to highest: flag defaults and values, JSON file,
// environment (including values loaded from .env).
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ClientOptions holds the configuration values for the interactive client.
type ClientOptions struct {
	// BaseURL is the backend base address.
	BaseURL string `json:"base_url"`

	// User is an optional handle to log in with on startup.
	User string `json:"user"`

	// LogLevel is the zap level name.
	LogLevel string `json:"log_level"`

	// RequestTimeout bounds every HTTP call. Zero disables the timeout.
	RequestTimeout Duration `json:"request_timeout"`

	// StrictOrdering drops responses older than the newest applied one.
	StrictOrdering bool `json:"strict_ordering"`

	// CAFile is an optional PEM bundle trusted for https backends.
	CAFile string `json:"ca_file"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// ServerOptions holds the configuration values for the reference backend.
type ServerOptions struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"port"`

	// DatabaseDSN holds the database connection string.
	DatabaseDSN string `json:"database_dsn"`

	// RedisURL is the redis:// URL used to publish load-new commands.
	RedisURL string `json:"redis_url"`

	// AnalyzeWebhookURL receives uploaded resumes for analysis.
	AnalyzeWebhookURL string `json:"analyze_webhook_url"`

	// CoverLetterWebhookURL generates cover letters.
	CoverLetterWebhookURL string `json:"cover_letter_webhook_url"`

	// OfferRetention is how long offers are kept before the cleaner drops them.
	OfferRetention Duration `json:"offer_retention"`

	// CleanerSchedule is the cron spec of the offer cleaner.
	CleanerSchedule string `json:"cleaner_schedule"`

	// LogLevel is the zap level name.
	LogLevel string `json:"log_level"`

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string `json:"tls_cert_file"`
	TLSKeyFile  string `json:"tls_key_file"`

	// Config is the path to the Config file.
	Config string `json:"-"`
}

// TLSEnabled reports whether the server should serve HTTPS.
func (o *ServerOptions) TLSEnabled() bool {
	return o.TLSCertFile != "" && o.TLSKeyFile != ""
}

// Duration is a time.Duration that decodes from JSON strings like "30s".
type Duration struct {
	time.Duration
}

// UnmarshalJSON accepts a Go duration string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		d.Duration = v
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid duration %s", string(b))
	}
	d.Duration = time.Duration(n)
	return nil
}

// ParseClient parses client flags from args and applies the JSON file and
// environment overrides.
func ParseClient(args []string) (*ClientOptions, error) {
	options := &ClientOptions{}
	fset := flag.NewFlagSet("client", flag.ContinueOnError)
	fset.StringVar(&options.BaseURL, "url", "http://localhost:8080", "backend base URL")
	fset.StringVar(&options.User, "user", "", "log in as this user on startup")
	fset.StringVar(&options.LogLevel, "log-level", "warn", "log level")
	fset.DurationVar(&options.RequestTimeout.Duration, "timeout", 0, "per-request timeout (0 = none)")
	fset.BoolVar(&options.StrictOrdering, "strict-ordering", true, "drop stale overlapping responses")
	fset.StringVar(&options.CAFile, "ca", "", "path to CA cert")
	fset.StringVar(&options.Config, "config", "client.json", "path to config file")
	fset.StringVar(&options.Config, "c", "client.json", "path to config file (shorthand)")
	if err := fset.Parse(args); err != nil {
		return nil, err
	}

	loadDotEnv()

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}
	if err := readConfigFile(options.Config, options); err != nil {
		return nil, err
	}

	if v := os.Getenv("JOBSCOUT_API_BASE"); v != "" {
		options.BaseURL = v
	}
	if v := os.Getenv("JOBSCOUT_USER"); v != "" {
		options.User = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		options.LogLevel = v
	}
	if v := os.Getenv("JOBSCOUT_CA_FILE"); v != "" {
		options.CAFile = v
	}
	if v := os.Getenv("JOBSCOUT_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("JOBSCOUT_REQUEST_TIMEOUT: %w", err)
		}
		options.RequestTimeout.Duration = d
	}
	if v := os.Getenv("JOBSCOUT_STRICT_ORDERING"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("JOBSCOUT_STRICT_ORDERING: %w", err)
		}
		options.StrictOrdering = b
	}

	return options, nil
}

// ParseServer parses server flags from args and applies the JSON file and
// environment overrides.
func ParseServer(args []string) (*ServerOptions, error) {
	options := &ServerOptions{}
	fset := flag.NewFlagSet("server", flag.ContinueOnError)
	fset.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	fset.StringVar(&options.DatabaseDSN, "d", "", "db address")
	fset.StringVar(&options.RedisURL, "r", "", "redis URL")
	fset.StringVar(&options.LogLevel, "log-level", "info", "log level")
	fset.StringVar(&options.CleanerSchedule, "cleaner-schedule", "@every 1h", "cron spec of the offer cleaner")
	fset.DurationVar(&options.OfferRetention.Duration, "offer-retention", 30*24*time.Hour, "how long offers are kept")
	fset.StringVar(&options.TLSCertFile, "tls-cert", "", "TLS certificate file")
	fset.StringVar(&options.TLSKeyFile, "tls-key", "", "TLS key file")
	fset.StringVar(&options.Config, "config", "config.json", "path to config file")
	fset.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	if err := fset.Parse(args); err != nil {
		return nil, err
	}

	loadDotEnv()

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}
	if err := readConfigFile(options.Config, options); err != nil {
		return nil, err
	}

	if v := os.Getenv("SERVER_ADDRESS"); v != "" {
		options.Port = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		options.DatabaseDSN = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		options.RedisURL = v
	}
	if v := os.Getenv("ANALYZE_WEBHOOK_URL"); v != "" {
		options.AnalyzeWebhookURL = v
	}
	if v := os.Getenv("COVER_LETTER_WEBHOOK_URL"); v != "" {
		options.CoverLetterWebhookURL = v
	}
	if v := os.Getenv("CLEANER_SCHEDULE"); v != "" {
		options.CleanerSchedule = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		options.LogLevel = v
	}
	if v := os.Getenv("TLS_CERT_FILE"); v != "" {
		options.TLSCertFile = v
	}
	if v := os.Getenv("TLS_KEY_FILE"); v != "" {
		options.TLSKeyFile = v
	}
	if v := os.Getenv("OFFER_RETENTION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("OFFER_RETENTION: %w", err)
		}
		options.OfferRetention.Duration = d
	}

	return options, nil
}

// loadDotEnv loads .env into the process environment without overriding
// variables that are already set. A missing file is not an error.
func loadDotEnv() {
	_ = godotenv.Load()
}

func readConfigFile(path string, dst any) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error while reading config file: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	return nil
}
