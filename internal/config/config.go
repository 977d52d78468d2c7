package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// EnvDevelopment relaxes secret requirements for local runs
const EnvDevelopment = "development"

// Duration decodes from strings such as "2s" or "5m"
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the complete service configuration
type Config struct {
	Env                      string `toml:"app_env"`
	HTTPAddr                 string `toml:"http_addr"`
	DBPath                   string `toml:"db_path"`
	SecretKey                string `toml:"secret_key"`
	AccessTokenExpireMinutes int    `toml:"access_token_expire_minutes"`

	Storage   StorageConfig   `toml:"storage"`
	Redis     RedisConfig     `toml:"redis"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Log       LogConfig       `toml:"log"`
	Index     IndexConfig     `toml:"index"`
	Ingestion IngestionConfig `toml:"ingestion"`

	CORSOrigins []string `toml:"cors_origins"`
}

type StorageConfig struct {
	UseS3       bool   `toml:"use_s3"`
	S3Endpoint  string `toml:"s3_endpoint"`
	S3Bucket    string `toml:"s3_bucket"`
	S3AccessKey string `toml:"s3_access_key"`
	S3SecretKey string `toml:"s3_secret_key"`
	S3Region    string `toml:"s3_region"`
	S3UseSSL    bool   `toml:"s3_use_ssl"`
	UploadDir   string `toml:"upload_dir"`
	MaxUploadMB int    `toml:"max_upload_mb"`
}

type RedisConfig struct {
	Addr string `toml:"addr"` // Empty disables redis
	DB   int    `toml:"db"`
}

type RateLimitConfig struct {
	Requests      int `toml:"requests"` // 0 disables rate limiting
	WindowSeconds int `toml:"window_seconds"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type IndexConfig struct {
	Workers         int `toml:"workers"`
	QueueSize       int `toml:"queue_size"`
	SearchCacheSize int `toml:"search_cache_size"`
}

type IngestionConfig struct {
	Workers               int      `toml:"workers"`
	Delay                 Duration `toml:"delay"`
	StuckThresholdMinutes int      `toml:"stuck_threshold_minutes"`
	SweepInterval         Duration `toml:"sweep_interval"` // 0 disables the background sweep
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Env:                      EnvDevelopment,
		HTTPAddr:                 ":8000",
		DBPath:                   "bookcatalog.db",
		AccessTokenExpireMinutes: 60,
		Storage: StorageConfig{
			UploadDir:   "uploads",
			S3Region:    "us-east-1",
			MaxUploadMB: 32,
		},
		RateLimit: RateLimitConfig{Requests: 100, WindowSeconds: 60},
		Log:       LogConfig{Level: "info", Format: "text"},
		Index:     IndexConfig{Workers: 2, QueueSize: 256, SearchCacheSize: 1000},
		Ingestion: IngestionConfig{
			Workers:               2,
			Delay:                 Duration{2 * time.Second},
			StuckThresholdMinutes: 5,
		},
		CORSOrigins: []string{"*"},
	}
}

// Load builds the configuration from defaults, then the TOML file at path
// (skipped when empty), then .env, then the process environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// .env never overrides variables that are already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: invalid integer %q", key, v))
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: invalid boolean %q", key, v))
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *Duration) {
		if v, ok := lookup(key); ok {
			if err := dst.UnmarshalText([]byte(strings.TrimSpace(v))); err != nil {
				errs = append(errs, fmt.Errorf("%s: invalid duration %q", key, v))
			}
		}
	}

	str("APP_ENV", &cfg.Env)
	str("HTTP_ADDR", &cfg.HTTPAddr)
	str("DB_PATH", &cfg.DBPath)
	str("SECRET_KEY", &cfg.SecretKey)
	integer("ACCESS_TOKEN_EXPIRE_MINUTES", &cfg.AccessTokenExpireMinutes)

	boolean("USE_S3", &cfg.Storage.UseS3)
	str("S3_ENDPOINT", &cfg.Storage.S3Endpoint)
	str("S3_BUCKET", &cfg.Storage.S3Bucket)
	str("S3_ACCESS_KEY", &cfg.Storage.S3AccessKey)
	str("S3_SECRET_KEY", &cfg.Storage.S3SecretKey)
	str("S3_REGION", &cfg.Storage.S3Region)
	boolean("S3_USE_SSL", &cfg.Storage.S3UseSSL)
	str("UPLOAD_DIR", &cfg.Storage.UploadDir)
	integer("MAX_UPLOAD_MB", &cfg.Storage.MaxUploadMB)

	str("REDIS_ADDR", &cfg.Redis.Addr)
	integer("REDIS_DB", &cfg.Redis.DB)
	integer("RATE_LIMIT_REQUESTS", &cfg.RateLimit.Requests)
	integer("RATE_LIMIT_WINDOW_SECONDS", &cfg.RateLimit.WindowSeconds)

	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)

	integer("INDEX_WORKERS", &cfg.Index.Workers)
	integer("INDEX_QUEUE_SIZE", &cfg.Index.QueueSize)
	integer("SEARCH_CACHE_SIZE", &cfg.Index.SearchCacheSize)

	integer("INGESTION_WORKERS", &cfg.Ingestion.Workers)
	duration("INGESTION_DELAY", &cfg.Ingestion.Delay)
	integer("STUCK_JOB_THRESHOLD_MINUTES", &cfg.Ingestion.StuckThresholdMinutes)
	duration("SWEEP_INTERVAL", &cfg.Ingestion.SweepInterval)

	if v, ok := lookup("CORS_ORIGINS"); ok {
		cfg.CORSOrigins = splitList(v)
	}

	return errors.Join(errs...)
}

func splitList(v string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// EnsureSecret fills an empty secret in development with a random one.
// Tokens signed with it do not survive a restart.
func (c *Config) EnsureSecret() (bool, error) {
	if c.SecretKey != "" || !c.IsDevelopment() {
		return false, nil
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return false, fmt.Errorf("failed to generate secret: %w", err)
	}
	c.SecretKey = hex.EncodeToString(buf)
	return true, nil
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error

	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("http_addr is required"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	if !c.IsDevelopment() && len(c.SecretKey) < 32 {
		errs = append(errs, errors.New("secret_key must be at least 32 characters outside development"))
	}
	if c.AccessTokenExpireMinutes <= 0 {
		errs = append(errs, errors.New("access_token_expire_minutes must be positive"))
	}

	if c.Storage.UseS3 {
		if c.Storage.S3Endpoint == "" || c.Storage.S3Bucket == "" {
			errs = append(errs, errors.New("s3_endpoint and s3_bucket are required when use_s3 is set"))
		}
		if c.Storage.S3AccessKey == "" || c.Storage.S3SecretKey == "" {
			errs = append(errs, errors.New("s3 credentials are required when use_s3 is set"))
		}
	} else if c.Storage.UploadDir == "" {
		errs = append(errs, errors.New("upload_dir is required without s3"))
	}
	if c.Storage.MaxUploadMB <= 0 {
		errs = append(errs, errors.New("max_upload_mb must be positive"))
	}

	if c.RateLimit.Requests < 0 {
		errs = append(errs, errors.New("rate_limit.requests must not be negative"))
	}
	if c.RateLimit.Requests > 0 && c.RateLimit.WindowSeconds <= 0 {
		errs = append(errs, errors.New("rate_limit.window_seconds must be positive"))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}

	for _, origin := range c.CORSOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			errs = append(errs, fmt.Errorf("cors origin %q must be * or start with http:// or https://", origin))
		}
	}

	if c.Index.Workers <= 0 || c.Index.QueueSize <= 0 {
		errs = append(errs, errors.New("index workers and queue_size must be positive"))
	}
	if c.Ingestion.Workers <= 0 {
		errs = append(errs, errors.New("ingestion.workers must be positive"))
	}
	if c.Ingestion.Delay.Duration < 0 || c.Ingestion.SweepInterval.Duration < 0 {
		errs = append(errs, errors.New("ingestion durations must not be negative"))
	}

	return errors.Join(errs...)
}
