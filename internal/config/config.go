package config

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xxxsen/common/logger"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port          int              `json:"port"`
	BaseURL       string           `json:"base_url"`
	JWTSecret     string           `json:"jwt_secret"`
	JWTTTLHours   int              `json:"jwt_ttl_hours"`
	CORSAllowlist []string         `json:"cors_allowlist"`
	Database      DatabaseConfig   `json:"database"`
	LinkStore     LinkStoreConfig  `json:"link_store"`
	Share         ShareConfig      `json:"share"`
	Purge         PurgeConfig      `json:"purge"`
	PageCache     PageCacheConfig  `json:"page_cache"`
	LogConfig     logger.LogConfig `json:"log_config"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

type LinkStoreConfig struct {
	Type  string      `json:"type"`
	Redis RedisConfig `json:"redis"`
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Prefix   string `json:"prefix"`
}

type ShareConfig struct {
	// ExpiredStatus is the status code of the expired-link page, 410 or 404.
	ExpiredStatus       int      `json:"expired_status"`
	AutoRevokeOnPublish *bool    `json:"auto_revoke_on_publish"`
	StrictCSP           bool     `json:"strict_csp"`
	PublicTypes         []string `json:"public_types"`
	// IssueIntervalMs is the minimum gap between two issue calls for the
	// same document by the same user. Negative disables the limit.
	IssueIntervalMs int `json:"issue_interval_ms"`
}

type PurgeConfig struct {
	TimeoutMs int                  `json:"timeout_ms"`
	Backends  []PurgeBackendConfig `json:"backends"`
}

type PurgeBackendConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type PageCacheConfig struct {
	Size       int `json:"size"`
	TTLSeconds int `json:"ttl_seconds"`
}

const (
	LinkStorePostgres = "postgres"
	LinkStoreRedis    = "redis"
	LinkStoreMemory   = "memory"
)

func (c ShareConfig) AutoRevoke() bool {
	return c.AutoRevokeOnPublish == nil || *c.AutoRevokeOnPublish
}

func (c ShareConfig) IssueInterval() time.Duration {
	if c.IssueIntervalMs <= 0 {
		return 0
	}
	return time.Duration(c.IssueIntervalMs) * time.Millisecond
}

func (c PurgeConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

func (c PageCacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	var cfg Config
	if err := decode(path, raw, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// decode accepts JSON, or YAML for .yaml/.yml files. YAML is routed through
// JSON so the json tags above (and logger.LogConfig's) stay the only mapping.
func decode(path string, raw []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var tree map[string]interface{}
		if err := yaml.Unmarshal(raw, &tree); err != nil {
			return err
		}
		data, err := json.Marshal(tree)
		if err != nil {
			return err
		}
		raw = data
	}
	return json.Unmarshal(raw, cfg)
}

func (cfg *Config) applyDefaults() error {
	if cfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if cfg.Port == 0 {
		return fmt.Errorf("port is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.JWTTTLHours == 0 {
		cfg.JWTTTLHours = 72
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.LinkStore.Type == "" {
		cfg.LinkStore.Type = LinkStorePostgres
	}
	switch cfg.LinkStore.Type {
	case LinkStorePostgres, LinkStoreMemory:
	case LinkStoreRedis:
		if cfg.LinkStore.Redis.Addr == "" {
			return fmt.Errorf("link_store.redis.addr is required for redis store")
		}
		if cfg.LinkStore.Redis.Prefix == "" {
			cfg.LinkStore.Redis.Prefix = "draftshare:"
		}
	default:
		return fmt.Errorf("link_store.type must be postgres, redis or memory")
	}
	switch cfg.Share.ExpiredStatus {
	case 0:
		cfg.Share.ExpiredStatus = http.StatusGone
	case http.StatusGone, http.StatusNotFound:
	default:
		return fmt.Errorf("share.expired_status must be 404 or 410")
	}
	if len(cfg.Share.PublicTypes) == 0 {
		cfg.Share.PublicTypes = []string{"post", "page"}
	}
	if cfg.Share.IssueIntervalMs == 0 {
		cfg.Share.IssueIntervalMs = 1000
	}
	if cfg.Purge.TimeoutMs <= 0 {
		cfg.Purge.TimeoutMs = 3000
	}
	for i, backend := range cfg.Purge.Backends {
		if strings.TrimSpace(backend.Type) == "" {
			return fmt.Errorf("purge.backends[%d].type is required", i)
		}
	}
	if cfg.PageCache.Size == 0 {
		cfg.PageCache.Size = 256
	}
	if cfg.PageCache.TTLSeconds == 0 {
		cfg.PageCache.TTLSeconds = 300
	}
	return nil
}
