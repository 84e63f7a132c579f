package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Options 控制配置文件的查找位置，测试中指向临时目录。
type Options struct {
	// File 显式指定配置文件，优先于搜索路径。
	File string
	// SearchPaths 默认 "." 与 "/etc/lababa/"。
	SearchPaths []string
	// DotEnvDirs 查找 .env 的目录，默认 "."、".."、"../.."。
	DotEnvDirs []string
}

// Load 读取默认配置搜索路径。
func Load() (*Config, error) {
	return LoadWith(Options{})
}

// LoadWith 依次叠加默认值、config.yaml、.env 旧式键与 LABABA_ 环境变量。
func LoadWith(opts Options) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		paths := opts.SearchPaths
		if len(paths) == 0 {
			paths = []string{".", "/etc/lababa/"}
		}
		for _, p := range paths {
			v.AddConfigPath(p)
		}
	}

	v.SetEnvPrefix("LABABA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || opts.File != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := loadDotEnv(v, opts.DotEnvDirs); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", "0.0.0.0:8082")
	v.SetDefault("http.shutdown_timeout", "15s")
	v.SetDefault("http.body_limit", 1<<20)
	v.SetDefault("http.cors.allowed_origins", []string{"*"})
	v.SetDefault("http.rate_limit.rps", 20)
	v.SetDefault("http.rate_limit.burst", 40)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/lababa.db")

	v.SetDefault("auth.signing_key", "change-me")
	v.SetDefault("auth.token_ttl", "168h")
	v.SetDefault("auth.issuer", "lababa")
	v.SetDefault("auth.leeway", "30s")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "lababa")

	v.SetDefault("ranking.cache_ttl", "30s")
	v.SetDefault("jobs.session_cleanup", "@every 1h")
	v.SetDefault("jobs.ranking_refresh", "0 0 0 * * *")

	v.SetDefault("client.base_url", "http://127.0.0.1:8082")
	v.SetDefault("client.public_paths", []string{`^/api/auth/`})
	v.SetDefault("client.timeout", "15s")
	v.SetDefault("client.cache.backend", "sqlite")
	v.SetDefault("client.cache.path", "data/client-cache.db")
	v.SetDefault("client.cache.redis_prefix", "lababa")

	v.SetDefault("backup.region", "us-east-1")
	v.SetDefault("backup.prefix", "backups")
}

func loadDotEnv(v *viper.Viper, dirs []string) error {
	if len(dirs) == 0 {
		dirs = []string{".", "..", "../.."}
	}
	for _, path := range dirs {
		file := filepath.Clean(filepath.Join(path, ".env"))
		if _, err := os.Stat(file); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("stat .env: %w", err)
		}

		// .env 单独用一个 viper 实例读取，避免与主配置的类型推断互相干扰。
		envViper := viper.New()
		envViper.SetConfigFile(file)
		envViper.SetConfigType("env")
		if err := envViper.ReadInConfig(); err != nil {
			return fmt.Errorf("read .env: %w", err)
		}
		bindLegacyEnv(v, envViper)
	}
	return nil
}

// legacyMappings 旧式扁平环境变量到分层配置键的映射。
var legacyMappings = map[string]string{
	"HTTP_ADDR":        "http.addr",
	"PORT":             "http.addr",
	"SHUTDOWN_TIMEOUT": "http.shutdown_timeout",
	"LOG_LEVEL":        "log.level",
	"LOG_FORMAT":       "log.format",
	"LOG_FILE":         "log.file.path",
	"DB_DRIVER":        "database.driver",
	"DB_PATH":          "database.path",
	"DATABASE_URL":     "database.dsn",
	"AUTH_SIGNING_KEY": "auth.signing_key",
	"APP_KEY":          "auth.signing_key",
	"AUTH_TOKEN_TTL":   "auth.token_ttl",
	"AUTH_ISSUER":      "auth.issuer",
	"API_BASE_URL":     "client.base_url",
	"CLIENT_TOKEN":     "client.token",
	"S3_BUCKET":        "backup.bucket",
	"S3_ENDPOINT":      "backup.endpoint",
	"S3_REGION":        "backup.region",
}

// bindLegacyEnv 只有真实环境变量的优先级高于这里写入的值。
func bindLegacyEnv(target *viper.Viper, source *viper.Viper) {
	for oldKey, newKey := range legacyMappings {
		val := source.GetString(oldKey)
		if val == "" {
			continue
		}
		if oldKey == "PORT" && !strings.Contains(val, ":") {
			val = ":" + val
		}
		target.Set(newKey, val)
	}
	// TOKEN_TTL_SECONDS 以秒为单位，换算成 duration。
	if raw := strings.TrimSpace(source.GetString("TOKEN_TTL_SECONDS")); raw != "" {
		if secs, err := strconv.ParseInt(raw, 10, 64); err == nil && secs > 0 {
			target.Set("auth.token_ttl", fmt.Sprintf("%ds", secs))
		}
	}
}
