// Package zconf 加载 zchain 服务配置：默认值 < 配置文件 < 环境变量
package zconf

import (
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/SparkleBo/zchain/zerr"
)

// EnvPrefix 环境变量前缀，层级以 "__" 分隔：ZCHAIN_HTTP__ADDR -> http.addr
const EnvPrefix = "ZCHAIN_"

type Config struct {
	HTTP      HTTPConfig      `koanf:"http"`
	TCP       TCPConfig       `koanf:"tcp"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Log       LogConfig       `koanf:"log"`
	Pipeline  PipelineConfig  `koanf:"pipeline"`
}

type HTTPConfig struct {
	Addr string `koanf:"addr"`
}

type TCPConfig struct {
	Addr    string `koanf:"addr"`
	MaxLine int    `koanf:"max_line"`
}

// RateLimitConfig 令牌桶：RPS 每秒令牌数，Burst 桶容量
type RateLimitConfig struct {
	RPS   int `koanf:"rps"`
	Burst int `koanf:"burst"`
}

type LogConfig struct {
	Verbosity int `koanf:"verbosity"`
}

type PipelineConfig struct {
	// Intercept 开启错误拦截，节点错误统一交给错误处理器
	Intercept bool `koanf:"intercept"`
}

func defaults() map[string]any {
	return map[string]any{
		"http.addr":          ":8080",
		"tcp.addr":           ":8888",
		"tcp.max_line":       4096,
		"rate_limit.rps":     100,
		"rate_limit.burst":   200,
		"log.verbosity":      0,
		"pipeline.intercept": true,
	}
}

// Load 加载配置；path 为空时只使用默认值与环境变量
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, zerr.Wrap(err, zerr.ErrConfigLoad, "failed to load defaults")
	}

	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, zerr.Wrapf(err, zerr.ErrConfigLoad, "failed to load config from %s", path)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, zerr.Wrap(err, zerr.ErrConfigLoad, "failed to load environment")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, zerr.Wrap(err, zerr.ErrConfigLoad, "failed to decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验取值范围
func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		return zerr.New(zerr.ErrConfigInvalid, "http.addr must not be empty")
	}
	if c.TCP.Addr == "" {
		return zerr.New(zerr.ErrConfigInvalid, "tcp.addr must not be empty")
	}
	if c.TCP.MaxLine <= 0 {
		return zerr.Newf(zerr.ErrConfigInvalid, "tcp.max_line must be positive, got %d", c.TCP.MaxLine)
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return zerr.Newf(zerr.ErrConfigInvalid, "rate_limit rps/burst must be positive, got %d/%d",
			c.RateLimit.RPS, c.RateLimit.Burst)
	}
	return nil
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Parser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	default:
		return nil, zerr.Newf(zerr.ErrConfigLoad, "unsupported config format %q", filepath.Ext(path))
	}
}
