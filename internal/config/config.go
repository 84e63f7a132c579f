package config

import (
	"log/slog"
	"strings"
	"time"
)

// Config 汇总应用的全部配置。
type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	Log     LogConfig     `mapstructure:"log"`
	DB      DBConfig      `mapstructure:"database"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Ranking RankingConfig `mapstructure:"ranking"`
	Jobs    JobsConfig    `mapstructure:"jobs"`
	Client  ClientConfig  `mapstructure:"client"`
	Backup  BackupConfig  `mapstructure:"backup"`
}

// HTTPConfig 定义 HTTP 服务配置。
type HTTPConfig struct {
	Addr            string          `mapstructure:"addr"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	BodyLimit       int64           `mapstructure:"body_limit"`
	CORS            CORSConfig      `mapstructure:"cors"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

// CORSConfig 跨域白名单。
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig 按客户端地址的令牌桶限流；RPS <= 0 表示关闭。
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// MetricsConfig 定义 Prometheus 指标配置。
type MetricsConfig struct {
	Enabled   bool      `mapstructure:"enabled"`
	Namespace string    `mapstructure:"namespace"`
	Subsystem string    `mapstructure:"subsystem"`
	Buckets   []float64 `mapstructure:"buckets"`
}

// LogConfig 定义日志配置。
type LogConfig struct {
	Level     string        `mapstructure:"level"`
	Format    string        `mapstructure:"format"`
	AddSource bool          `mapstructure:"add_source"`
	File      LogFileConfig `mapstructure:"file"`
}

// LogFileConfig 滚动日志文件。
type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// DBConfig 定义数据库配置；driver 为 postgres 时使用 DSN。
type DBConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

// AuthConfig 定义认证配置。
type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	Issuer     string        `mapstructure:"issuer"`
	Audience   string        `mapstructure:"audience"`
	Leeway     time.Duration `mapstructure:"leeway"`
}

// RankingConfig 排行榜缓存。
type RankingConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// JobsConfig 定时任务的 cron 表达式，留空表示不启用。
type JobsConfig struct {
	SessionCleanup string `mapstructure:"session_cleanup"`
	RankingRefresh string `mapstructure:"ranking_refresh"`
}

// ClientConfig 命令行客户端与终端面板使用的配置。
type ClientConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	PublicPaths []string      `mapstructure:"public_paths"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Token       string        `mapstructure:"token"`
	DefaultUser string        `mapstructure:"default_user"`
	Cache       CacheConfig   `mapstructure:"cache"`
}

// CacheConfig 本地缓存后端：memory、sqlite 或 redis。
type CacheConfig struct {
	Backend     string `mapstructure:"backend"`
	Path        string `mapstructure:"path"`
	RedisAddr   string `mapstructure:"redis_addr"`
	RedisPrefix string `mapstructure:"redis_prefix"`
}

// BackupConfig 快照上传到 S3 兼容存储；bucket 为空表示不启用。
type BackupConfig struct {
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
