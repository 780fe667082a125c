package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	EnvProduction = "production"

	CacheBackendSQLite = "sqlite"
	CacheBackendRedis  = "redis"
)

type OpenAI struct {
	APIKey  string
	Model   string `validate:"required"`
	BaseURL string `validate:"required,url"`
}

type Browser struct {
	Headless   bool
	WindowSize string `validate:"required"`
	UserAgent  string
	RemoteURL  string
}

type Cache struct {
	Enabled       bool
	TTL           time.Duration `validate:"gt=0"`
	Backend       string        `validate:"oneof=sqlite redis"`
	RedisAddr     string        `validate:"required_if=Backend redis"`
	RedisPassword string
	RedisDB       int `validate:"gte=0"`
}

type Export struct {
	S3Bucket string
	S3Region string `validate:"required_with=S3Bucket"`
}

type Config struct {
	Env          string
	DatabasePath string `validate:"required"`
	OutputDir    string `validate:"required"`
	LogLevel     string `validate:"oneof=debug info warn warning error off"`
	LogFile      string
	ServeAddr    string `validate:"required"`

	ScrapeDelayMin time.Duration `validate:"gte=0"`
	ScrapeDelayMax time.Duration `validate:"gtefield=ScrapeDelayMin"`
	AIDelay        time.Duration `validate:"gte=0"`
	BatchSize      int           `validate:"gte=1"`

	OpenAI  OpenAI
	Browser Browser
	Cache   Cache
	Export  Export
}

// AIEnabled reports whether an API key is configured.
func (c *Config) AIEnabled() bool {
	return c.OpenAI.APIKey != ""
}

// Load reads the configuration from the environment. Outside production
// a .env file in the working directory is loaded first when present.
func Load(validate *validator.Validate) (*Config, error) {
	if !IsProduction() {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	cfg := &Config{
		Env:          getString("GO_ENV", "development"),
		DatabasePath: expandHome(getString("DATABASE_PATH", filepath.Join(home, ".leadfinder", "leadfinder.db")), home),
		OutputDir:    expandHome(getString("OUTPUT_DIR", filepath.Join(home, "Documents", "LeadFinder")), home),
		LogLevel:     strings.ToLower(getString("LOG_LEVEL", "info")),
		LogFile:      getString("LOG_FILE", "leadfinder.log"),
		ServeAddr:    getString("SERVE_ADDR", ":7070"),

		ScrapeDelayMin: getSeconds("SCRAPE_DELAY_MIN", 500*time.Millisecond),
		ScrapeDelayMax: getSeconds("SCRAPE_DELAY_MAX", 1500*time.Millisecond),
		AIDelay:        getSeconds("AI_CALL_DELAY", 500*time.Millisecond),
		BatchSize:      getInt("BATCH_SIZE", 5),

		OpenAI: OpenAI{
			APIKey:  getString("OPENAI_API_KEY", ""),
			Model:   getString("OPENAI_MODEL", "gpt-3.5-turbo"),
			BaseURL: getString("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		},
		Browser: Browser{
			Headless:   getBool("BROWSER_HEADLESS", true),
			WindowSize: getString("BROWSER_WINDOW_SIZE", "1920,1080"),
			UserAgent:  getString("BROWSER_USER_AGENT", ""),
			RemoteURL:  getString("BROWSER_REMOTE_URL", ""),
		},
		Cache: Cache{
			Enabled:       getBool("CACHE_ENABLED", true),
			TTL:           getSeconds("CACHE_EXPIRY", 24*time.Hour),
			Backend:       strings.ToLower(getString("CACHE_BACKEND", CacheBackendSQLite)),
			RedisAddr:     getString("REDIS_ADDR", ""),
			RedisPassword: getString("REDIS_PASSWORD", ""),
			RedisDB:       getInt("REDIS_DB", 0),
		},
		Export: Export{
			S3Bucket: getString("EXPORT_S3_BUCKET", ""),
			S3Region: getString("AWS_S3_REGION", ""),
		},
	}

	if err = validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func IsProduction() bool {
	return os.Getenv("GO_ENV") == EnvProduction
}

func getString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(getString(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getString(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

// getSeconds reads a duration either as Go syntax ("1.5s", "24h")
// or as a plain number of seconds ("86400", "0.5").
func getSeconds(key string, fallback time.Duration) time.Duration {
	raw := getString(key, "")
	if raw == "" {
		return fallback
	}

	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}

	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return time.Duration(secs * float64(time.Second))
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
