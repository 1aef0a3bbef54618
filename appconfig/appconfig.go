// Package appconfig 加载命令行/服务的运行配置。
//
// 配置分三层，后者覆盖前者：
//  1. 代码内默认值
//  2. YAML 配置文件（可选）
//  3. 环境变量 MOODBITE_*，例如 MOODBITE_RANK_MIN_SCORE=0.2 -> rank.min_score
package appconfig

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rushteam/moodbite/core"
	"github.com/rushteam/moodbite/logging"
	"github.com/rushteam/moodbite/rank"
)

// EnvPrefix 是环境变量前缀。
const EnvPrefix = "MOODBITE_"

// PathEnvVar 可指定配置文件路径。
const PathEnvVar = "MOODBITE_CONFIG"

// DefaultPaths 按顺序查找配置文件，找到第一个即使用。
var DefaultPaths = []string{
	"moodbite.yaml",
	"moodbite.yml",
	"/etc/moodbite/config.yaml",
}

// Config 是运行配置。
type Config struct {
	Log      logging.Config `koanf:"log"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Rank     RankConfig     `koanf:"rank"`
	Explain  ExplainConfig  `koanf:"explain"`
	Pipeline PipelineConfig `koanf:"pipeline"`
	Batch    BatchConfig    `koanf:"batch"`
}

// CatalogConfig 指定目录来源：Path（本地 JSON 文件）或 RedisAddr + RedisKey。
type CatalogConfig struct {
	Path      string `koanf:"path"`
	RedisAddr string `koanf:"redis_addr"`
	RedisDB   int    `koanf:"redis_db"`
	RedisKey  string `koanf:"redis_key"`

	// RedisHash 为 true 时目录按 "菜品 ID -> JSON" 存为 Hash，否则整份 JSON 存在 RedisKey 下。
	RedisHash bool `koanf:"redis_hash"`

	// RedisPrefix 加在所有 Redis key 之前，用于多环境共用实例。
	RedisPrefix string `koanf:"redis_prefix"`

	// BlacklistKey 是存储中的黑名单 key（仅 Redis 来源时生效）。
	BlacklistKey string `koanf:"blacklist_key"`

	// BloomKey 是存储中布隆排除过滤器的 key（仅 Redis 来源时生效）。
	BloomKey string `koanf:"bloom_key"`

	// Redis 连续失败 BreakerFailures 次后熔断 BreakerTimeout。
	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
}

type RankConfig struct {
	Weights  rank.Weights `koanf:"weights"`
	MinScore float64      `koanf:"min_score"`
	Limit    int          `koanf:"limit"`

	// ModelPath 指向 JSON 权重文件，设置后替代 Weights（仅默认 Pipeline 生效）。
	ModelPath string `koanf:"model_path"`
}

type ExplainConfig struct {
	Enabled bool  `koanf:"enabled"`
	Seed    int64 `koanf:"seed"`
}

// PipelineConfig.Path 指向 YAML 形式的 Pipeline 定义；为空时使用默认 Pipeline。
type PipelineConfig struct {
	Path string `koanf:"path"`
}

type BatchConfig struct {
	MaxConcurrent int `koanf:"max_concurrent"`
}

// Default 返回默认配置。
func Default() Config {
	return Config{
		Log: logging.Config{Level: "info", Format: "json"},
		Catalog: CatalogConfig{
			RedisKey:        "moodbite:catalog",
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Rank: RankConfig{
			Weights:  rank.DefaultWeights(),
			MinScore: rank.DefaultMinScore,
		},
		Explain: ExplainConfig{Enabled: true, Seed: 1},
		Batch:   BatchConfig{MaxConcurrent: 8},
	}
}

// Load 依次加载默认值、配置文件、环境变量。path 为空时按 PathEnvVar 与 DefaultPaths 查找。
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查配置取值。
func (c *Config) Validate() error {
	w := c.Rank.Weights
	if w.MoodMatch < 0 || w.CravingMatch < 0 || w.TasteMatch < 0 {
		return invalid("rank.weights must be non-negative")
	}
	if c.Rank.MinScore < 0 {
		return invalid("rank.min_score must be >= 0")
	}
	if c.Rank.Limit < 0 {
		return invalid("rank.limit must be >= 0")
	}
	if c.Batch.MaxConcurrent < 0 {
		return invalid("batch.max_concurrent must be >= 0")
	}
	return nil
}

func invalid(msg string) error {
	return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, "config: "+msg)
}

func findConfigFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		return p
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envKey 把环境变量名转为 koanf 路径：
// MOODBITE_RANK_MIN_SCORE -> rank.min_score，MOODBITE_RANK_WEIGHTS_MOOD_MATCH -> rank.weights.mood_match。
// 只有第一段（以及 rank.weights 的第二段）作为层级，其余下划线保留为字段名的一部分。
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if s == "config" {
		return ""
	}
	section, rest, ok := strings.Cut(s, "_")
	if !ok {
		return s
	}
	if section == "rank" && strings.HasPrefix(rest, "weights_") {
		return "rank.weights." + strings.TrimPrefix(rest, "weights_")
	}
	return section + "." + rest
}
