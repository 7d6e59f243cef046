// Package config loads settings from PDFSUITE_* environment variables, an
// optional .env file and an optional YAML/TOML/JSON config file.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "PDFSUITE"

type Config struct {
	Port string

	// Auth. Empty disables bearer auth.
	APIKey string

	// Upload limits
	MaxFileMB     int
	MaxBatchMB    int
	MaxBatchFiles int

	// Question numbering
	MarkerCeiling int

	// Batch execution
	BatchConcurrency int
	WorkerCount      int
	MaxQueueSize     int

	// Job and session state
	JobTTL     time.Duration
	SessionTTL time.Duration

	// PDF
	ThumbnailDPI    float64
	PDFFallbackFitz bool
	OptimizeOutput  bool

	// Logging
	LogLevel  string
	LogFormat string
}

var defaults = map[string]any{
	"port":              "8090",
	"api_key":           "",
	"max_file_mb":       50,
	"max_batch_mb":      100,
	"max_batch_files":   50,
	"marker_ceiling":    10000,
	"batch_concurrency": 1,
	"worker_count":      2,
	"max_queue_size":    20,
	"job_ttl":           time.Hour,
	"session_ttl":       2 * time.Hour,
	"thumbnail_dpi":     54.0,
	"pdf_fallback_fitz": true,
	"optimize_output":   true,
	"log_level":         "info",
	"log_format":        "json",
}

// Load reads configuration. configFile overrides PDFSUITE_CONFIG; when both
// are empty only the environment and defaults apply.
func Load(configFile string) (Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile == "" {
		configFile = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	cfg := Config{
		Port:   v.GetString("port"),
		APIKey: v.GetString("api_key"),

		MaxFileMB:     v.GetInt("max_file_mb"),
		MaxBatchMB:    v.GetInt("max_batch_mb"),
		MaxBatchFiles: v.GetInt("max_batch_files"),

		MarkerCeiling: v.GetInt("marker_ceiling"),

		BatchConcurrency: v.GetInt("batch_concurrency"),
		WorkerCount:      v.GetInt("worker_count"),
		MaxQueueSize:     v.GetInt("max_queue_size"),

		JobTTL:     v.GetDuration("job_ttl"),
		SessionTTL: v.GetDuration("session_ttl"),

		ThumbnailDPI:    v.GetFloat64("thumbnail_dpi"),
		PDFFallbackFitz: v.GetBool("pdf_fallback_fitz"),
		OptimizeOutput:  v.GetBool("optimize_output"),

		LogLevel:  strings.ToLower(v.GetString("log_level")),
		LogFormat: strings.ToLower(v.GetString("log_format")),
	}

	if cfg.Port == "" {
		cfg.Port = "8090"
	}
	if cfg.MaxFileMB <= 0 {
		cfg.MaxFileMB = 50
	}
	if cfg.MaxBatchMB <= 0 {
		cfg.MaxBatchMB = 100
	}
	if cfg.MaxBatchFiles <= 0 {
		cfg.MaxBatchFiles = 50
	}
	if cfg.MarkerCeiling <= 0 {
		cfg.MarkerCeiling = 10000
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = 1
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 20
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = time.Hour
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 2 * time.Hour
	}
	if cfg.ThumbnailDPI <= 0 {
		cfg.ThumbnailDPI = 54
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%s_LOG_LEVEL must be debug, info, warn or error, got %q", EnvPrefix, c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("%s_LOG_FORMAT must be json or text, got %q", EnvPrefix, c.LogFormat)
	}
	if c.MaxFileMB > c.MaxBatchMB {
		return fmt.Errorf("%s_MAX_FILE_MB (%d) exceeds %s_MAX_BATCH_MB (%d)", EnvPrefix, c.MaxFileMB, EnvPrefix, c.MaxBatchMB)
	}
	return nil
}

// NewLogger builds the process logger described by LogLevel and LogFormat.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch c.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
