package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigPath is read when no path is given. A missing default file is not an error.
const ConfigPath = "config.yaml"

// EnvPrefix prefixes every environment override, e.g. MALL_STORAGE_DRIVER.
const EnvPrefix = "MALL_"

const (
	StorageFile     = "file"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// FileConfig represents configuration loaded from YAML and the environment.
type FileConfig struct {
	APIBaseURL           string         `yaml:"apiBaseURL" env:"API_BASE_URL"`
	Timeout              string         `yaml:"timeout" env:"TIMEOUT"`
	LogLevel             string         `yaml:"logLevel" env:"LOG_LEVEL"`
	AdminPolicy          string         `yaml:"adminPolicy" env:"ADMIN_POLICY"`
	AdminRole            string         `yaml:"adminRole" env:"ADMIN_ROLE"`
	NotificationDuration string         `yaml:"notificationDuration" env:"NOTIFICATION_DURATION"`
	Storage              StorageConfig  `yaml:"storage" envPrefix:"STORAGE_"`
	Tracking             TrackingConfig `yaml:"tracking" envPrefix:"TRACKING_"`
	Images               ImagesConfig   `yaml:"images" envPrefix:"IMAGES_"`
	Metrics              MetricsConfig  `yaml:"metrics" envPrefix:"METRICS_"`
}

// StorageConfig selects where the session is persisted between runs.
type StorageConfig struct {
	Driver        string `yaml:"driver" env:"DRIVER"`
	Path          string `yaml:"path" env:"PATH"`
	RedisAddr     string `yaml:"redisAddr" env:"REDIS_ADDR"`
	RedisPassword string `yaml:"redisPassword" env:"REDIS_PASSWORD"`
	RedisPrefix   string `yaml:"redisPrefix" env:"REDIS_PREFIX"`
	RedisTTL      string `yaml:"redisTTL" env:"REDIS_TTL"`
	DatabaseURL   string `yaml:"databaseURL" env:"DATABASE_URL"`
	Namespace     string `yaml:"namespace" env:"NAMESPACE"`
}

// TrackingConfig throttles behavior events. Tracking is unthrottled without a Redis address.
type TrackingConfig struct {
	RedisAddr     string `yaml:"redisAddr" env:"REDIS_ADDR"`
	RedisPassword string `yaml:"redisPassword" env:"REDIS_PASSWORD"`
	PerMinute     int    `yaml:"perMinute" env:"PER_MINUTE"`
}

// ImagesConfig points at the object store used for admin product images.
type ImagesConfig struct {
	Endpoint  string `yaml:"endpoint" env:"ENDPOINT"`
	AccessKey string `yaml:"accessKey" env:"ACCESS_KEY"`
	SecretKey string `yaml:"secretKey" env:"SECRET_KEY"`
	Bucket    string `yaml:"bucket" env:"BUCKET"`
	UseSSL    bool   `yaml:"useSSL" env:"USE_SSL"`
}

type MetricsConfig struct {
	PushURL string `yaml:"pushURL" env:"PUSH_URL"`
	Job     string `yaml:"job" env:"JOB"`
}

// Load reads config from path (defaults to config.yaml), applies .env and
// MALL_* environment overrides, fills defaults and validates the result.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	explicit := path != ""
	if !explicit {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return cfg, fmt.Errorf("read config: %w", err)
	}

	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(cfg *FileConfig) {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "http://localhost:8080/api/v1"
	}
	if cfg.Timeout == "" {
		cfg.Timeout = "5s"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.AdminPolicy == "" {
		cfg.AdminPolicy = "role"
	}
	if cfg.AdminRole == "" {
		cfg.AdminRole = "ADMIN"
	}
	if cfg.NotificationDuration == "" {
		cfg.NotificationDuration = "3s"
	}
	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = StorageFile
	}
	if cfg.Storage.Driver == StorageFile && cfg.Storage.Path == "" {
		cfg.Storage.Path = defaultStoragePath()
	}
	if cfg.Storage.Namespace == "" {
		cfg.Storage.Namespace = "default"
	}
	if cfg.Tracking.RedisAddr != "" && cfg.Tracking.PerMinute == 0 {
		cfg.Tracking.PerMinute = 30
	}
	if cfg.Metrics.Job == "" {
		cfg.Metrics.Job = "storefront"
	}
}

func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".onlinemall-storage.json"
	}
	return filepath.Join(dir, "onlinemall", "storage.json")
}

func validateConfig(cfg FileConfig) error {
	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config apiBaseURL %q must be an absolute URL", cfg.APIBaseURL)
	}
	if _, err := parsePositiveDuration("timeout", cfg.Timeout); err != nil {
		return err
	}
	if _, err := parsePositiveDuration("notificationDuration", cfg.NotificationDuration); err != nil {
		return err
	}
	switch strings.ToLower(cfg.AdminPolicy) {
	case "role", "authenticated":
	default:
		return fmt.Errorf("config adminPolicy must be role or authenticated, got %q", cfg.AdminPolicy)
	}

	switch cfg.Storage.Driver {
	case StorageFile:
		if strings.TrimSpace(cfg.Storage.Path) == "" {
			return errors.New("config storage.path is required for the file driver")
		}
	case StorageRedis:
		if strings.TrimSpace(cfg.Storage.RedisAddr) == "" {
			return errors.New("config storage.redisAddr is required for the redis driver")
		}
		if cfg.Storage.RedisTTL != "" {
			if _, err := parsePositiveDuration("storage.redisTTL", cfg.Storage.RedisTTL); err != nil {
				return err
			}
		}
	case StoragePostgres:
		if strings.TrimSpace(cfg.Storage.DatabaseURL) == "" {
			return errors.New("config storage.databaseURL is required for the postgres driver")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("config storage.driver %q is not supported", cfg.Storage.Driver)
	}

	if cfg.Tracking.PerMinute < 0 {
		return errors.New("config tracking.perMinute must be >= 0")
	}
	if cfg.Images.Endpoint != "" {
		if cfg.Images.Bucket == "" || cfg.Images.AccessKey == "" || cfg.Images.SecretKey == "" {
			return errors.New("config images requires bucket, accessKey and secretKey when endpoint is set")
		}
	}
	return nil
}

// RequestTimeout is the per-call API timeout.
func (c FileConfig) RequestTimeout() time.Duration {
	return durationOr(c.Timeout, 5*time.Second)
}

func (c FileConfig) NotificationTTL() time.Duration {
	return durationOr(c.NotificationDuration, 3*time.Second)
}

// StorageTTL is the Redis key lifetime for stored session keys; zero means no expiry.
func (c FileConfig) StorageTTL() time.Duration {
	return durationOr(c.Storage.RedisTTL, 0)
}

// ImagesEnabled reports whether admin image uploads are configured.
func (c FileConfig) ImagesEnabled() bool {
	return c.Images.Endpoint != ""
}

func parsePositiveDuration(field, value string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("config %s: %w", field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config %s must be positive", field)
	}
	return d, nil
}

func durationOr(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
