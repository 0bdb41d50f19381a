package config

import (
	"encoding/json"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig    `json:"server"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	Redis     RedisConfig     `json:"redis"`
	Admin     AdminConfig     `json:"admin"`
	Probe     ProbeConfig     `json:"probe"`
	Upload    UploadConfig    `json:"upload"`
}

type ServerConfig struct {
	Port        string `json:"port"`
	Environment string `json:"environment"`
}

type RateLimitConfig struct {
	Strategy          string `json:"strategy"` // fixed_window, sliding_window, token_bucket
	Store             string `json:"store"`    // memory, redis
	RequestsPerWindow int    `json:"requests_per_window"`
	WindowSec         int    `json:"window_sec"`
}

func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSec) * time.Second
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

func (r RedisConfig) GetRedisAddr() string {
	return r.Host + ":" + r.Port
}

type AdminConfig struct {
	// Secret enables the admin surface. Empty means /auth/token and
	// /admin/* are not registered.
	Secret      string `json:"-"`
	TokenTTLMin int    `json:"token_ttl_min"`
}

func (a AdminConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLMin) * time.Minute
}

type ProbeConfig struct {
	DefaultURL        string   `json:"default_url"`
	Targets           []string `json:"targets"`
	HealthIntervalSec int      `json:"health_interval_sec"`
	TimeoutSec        int      `json:"timeout_sec"`
}

func (p ProbeConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSec) * time.Second
}

func (p ProbeConfig) HealthInterval() time.Duration {
	return time.Duration(p.HealthIntervalSec) * time.Second
}

type UploadConfig struct {
	MaxBytes int64 `json:"max_bytes"`
}

// Load builds the configuration from defaults, an optional JSON file and
// environment variable overrides, in that order.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		file, err := os.ReadFile(path)
		if err == nil {
			if err := json.Unmarshal(file, cfg); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	applyEnv(cfg)

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			Environment: "development",
		},
		RateLimit: RateLimitConfig{
			Strategy:          "fixed_window",
			Store:             "memory",
			RequestsPerWindow: 60,
			WindowSec:         60,
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: "6379",
		},
		Admin: AdminConfig{
			TokenTTLMin: 15,
		},
		Probe: ProbeConfig{
			DefaultURL:        "https://httpbin.org/get",
			HealthIntervalSec: 30,
			TimeoutSec:        10,
		},
		Upload: UploadConfig{
			MaxBytes: 10 << 20, // 10 MiB
		},
	}
}

func applyEnv(cfg *Config) {
	// PORT is what Cloud Run, Railway and Render all inject.
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.Environment, "ENVIRONMENT")

	setString(&cfg.RateLimit.Strategy, "RATE_LIMIT_STRATEGY")
	setString(&cfg.RateLimit.Store, "RATE_LIMIT_STORE")
	setInt(&cfg.RateLimit.RequestsPerWindow, "RATE_LIMIT_REQUESTS")
	setInt(&cfg.RateLimit.WindowSec, "RATE_LIMIT_WINDOW_SEC")

	setString(&cfg.Redis.Host, "REDIS_HOST")
	setString(&cfg.Redis.Port, "REDIS_PORT")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "REDIS_DB")

	setString(&cfg.Admin.Secret, "ADMIN_SECRET")
	setInt(&cfg.Admin.TokenTTLMin, "ADMIN_TOKEN_TTL_MIN")

	setString(&cfg.Probe.DefaultURL, "PROBE_DEFAULT_URL")
	setInt(&cfg.Probe.HealthIntervalSec, "PROBE_HEALTH_INTERVAL_SEC")
	setInt(&cfg.Probe.TimeoutSec, "PROBE_TIMEOUT_SEC")

	setInt64(&cfg.Upload.MaxBytes, "UPLOAD_MAX_BYTES")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}
