package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int

	// Catalog
	DataDir string

	// Storage
	StorageBackend string
	SQLiteDBPath   string
	RedisURL       string

	// AMQP, empty URL disables publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// LLM
	LLMBaseURL        string
	LLMAPIKey         string
	LLMModel          string
	LLMEmbeddingModel string
	LLMTimeout        time.Duration
	LLMMaxRetries     int
	RAGEnabled        bool

	// Google Sheets export
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Worker
	ExportBatchSize int
	ExportInterval  time.Duration

	// Observability
	SentryDSN string
	LogLevel  string
	LogFormat string
}

var defaults = map[string]any{
	"PORT":                  "8080",
	"RATE_LIMIT_PER_MINUTE": 60,
	"DATA_DIR":              "./data",
	"STORAGE_BACKEND":       BackendMemory,
	"SQLITE_DB_PATH":        "./data/zaman.db",
	"REDIS_URL":             "redis://localhost:6379/0",
	"AMQP_URL":              "",
	"AMQP_EXCHANGE":         "zaman",
	"AMQP_QUEUE":            "telemetry_export",
	"LLM_BASE_URL":          "https://api.openai.com/v1",
	"LLM_MODEL":             "gpt-4o-mini",
	"LLM_EMBEDDING_MODEL":   "text-embedding-3-small",
	"LLM_TIMEOUT":           30 * time.Second,
	"LLM_MAX_RETRIES":       0,
	"RAG_ENABLED":           false,
	"GOOGLE_SHEET_NAME":     "Telemetry",
	"EXPORT_BATCH_SIZE":     10,
	"EXPORT_INTERVAL":       30 * time.Second,
	"LOG_LEVEL":             "info",
	"LOG_FORMAT":            "text",
}

// Load resolves the configuration from the environment. Call
// cli.LoadEnvFile first to pick up a local .env file.
func Load() *Config {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	return &Config{
		Port:               v.GetString("PORT"),
		RateLimitPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),

		DataDir: v.GetString("DATA_DIR"),

		StorageBackend: strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_BACKEND"))),
		SQLiteDBPath:   v.GetString("SQLITE_DB_PATH"),
		RedisURL:       v.GetString("REDIS_URL"),

		AMQPURL:      strings.TrimSpace(v.GetString("AMQP_URL")),
		AMQPExchange: v.GetString("AMQP_EXCHANGE"),
		AMQPQueue:    v.GetString("AMQP_QUEUE"),

		LLMBaseURL:        v.GetString("LLM_BASE_URL"),
		LLMAPIKey:         v.GetString("LLM_API_KEY"),
		LLMModel:          v.GetString("LLM_MODEL"),
		LLMEmbeddingModel: v.GetString("LLM_EMBEDDING_MODEL"),
		LLMTimeout:        v.GetDuration("LLM_TIMEOUT"),
		LLMMaxRetries:     v.GetInt("LLM_MAX_RETRIES"),
		RAGEnabled:        v.GetBool("RAG_ENABLED"),

		GoogleSpreadsheetID:      v.GetString("GOOGLE_SPREADSHEET_ID"),
		GoogleSheetName:          v.GetString("GOOGLE_SHEET_NAME"),
		GoogleServiceAccountJSON: v.GetString("GOOGLE_SERVICE_ACCOUNT_JSON"),
		GoogleServiceAccountFile: v.GetString("GOOGLE_SERVICE_ACCOUNT_FILE"),

		ExportBatchSize: v.GetInt("EXPORT_BATCH_SIZE"),
		ExportInterval:  v.GetDuration("EXPORT_INTERVAL"),

		SentryDSN: v.GetString("SENTRY_DSN"),
		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),
	}
}

// AMQPEnabled reports whether telemetry should be published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// SheetsEnabled reports whether the worker should write to Google Sheets.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	// Validate storage backend
	validBackends := []string{BackendMemory, BackendSQLite, BackendRedis}
	if !slices.Contains(validBackends, c.StorageBackend) {
		errors = append(errors, fmt.Sprintf("invalid storage backend '%s': must be one of %v", c.StorageBackend, validBackends))
	}

	switch c.StorageBackend {
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	case BackendRedis:
		if c.RedisURL == "" {
			errors = append(errors, "Redis URL cannot be empty when using redis backend")
		}
	}

	// Validate AMQP settings if publishing is enabled
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate LLM transport
	if u, err := url.Parse(c.LLMBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errors = append(errors, fmt.Sprintf("invalid LLM base URL '%s': must be an absolute http(s) URL", c.LLMBaseURL))
	}
	if c.LLMModel == "" {
		errors = append(errors, "LLM model cannot be empty")
	}
	if c.RAGEnabled && c.LLMEmbeddingModel == "" {
		errors = append(errors, "LLM embedding model is required when RAG is enabled")
	}
	if c.LLMTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid LLM timeout %v: must be at least 1 second", c.LLMTimeout))
	}
	if c.LLMMaxRetries < 0 || c.LLMMaxRetries > 10 {
		errors = append(errors, fmt.Sprintf("invalid LLM max retries %d: must be between 0 and 10", c.LLMMaxRetries))
	}

	// Validate Google Sheets credentials if export is enabled
	if c.GoogleSpreadsheetID != "" {
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	// Validate worker configuration
	if c.ExportBatchSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid export batch size %d: must be at least 1", c.ExportBatchSize))
	} else if c.ExportBatchSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid export batch size %d: must be at most 1000", c.ExportBatchSize))
	}
	if c.ExportInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid export interval %v: must be at least 1 second", c.ExportInterval))
	} else if c.ExportInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid export interval %v: must be at most 24 hours", c.ExportInterval))
	}

	if !slices.Contains([]string{"text", "json"}, strings.ToLower(c.LogFormat)) {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}
