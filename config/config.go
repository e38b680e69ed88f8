// Package config 进程配置
//
// 配置在启动时构造一次并显式传递：先取默认值，再叠加可选的 YAML 文件，最后用环境变量覆盖。
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "CATALOG_"

// 集成事件传输
const (
	TransportSync   = "sync"
	TransportMemory = "memory"
	TransportRedis  = "redis"
	TransportNATS   = "nats"
)

// Config 根配置
type Config struct {
	Log      LogConfig      `yaml:"log" envPrefix:"LOG_"`
	Database DatabaseConfig `yaml:"database" envPrefix:"DB_"`
	Events   EventsConfig   `yaml:"events" envPrefix:"EVENTS_"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// DatabaseConfig 数据库配置（sqlite）
type DatabaseConfig struct {
	DSN           string        `yaml:"dsn" env:"DSN"`
	MaxOpenConns  int           `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns  int           `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	SlowThreshold time.Duration `yaml:"slow_threshold" env:"SLOW_THRESHOLD"`
	Debug         bool          `yaml:"debug" env:"DEBUG"`
	// AutoMigrate 启动时执行迁移
	AutoMigrate bool `yaml:"auto_migrate" env:"AUTO_MIGRATE"`
}

// EventsConfig 集成事件投递配置
type EventsConfig struct {
	Transport string       `yaml:"transport" env:"TRANSPORT"`
	Memory    MemoryConfig `yaml:"memory" envPrefix:"MEMORY_"`
	Redis     RedisConfig  `yaml:"redis" envPrefix:"REDIS_"`
	NATS      NATSConfig   `yaml:"nats" envPrefix:"NATS_"`
}

// MemoryConfig 内存异步传输
type MemoryConfig struct {
	QueueSize   int `yaml:"queue_size" env:"QUEUE_SIZE"`
	WorkerCount int `yaml:"worker_count" env:"WORKER_COUNT"`
}

// RedisConfig Redis Streams 传输
type RedisConfig struct {
	Addr         string        `yaml:"addr" env:"ADDR"`
	Username     string        `yaml:"username" env:"USERNAME"`
	Password     string        `yaml:"password" env:"PASSWORD"`
	DB           int           `yaml:"db" env:"DB"`
	StreamPrefix string        `yaml:"stream_prefix" env:"STREAM_PREFIX"`
	Group        string        `yaml:"group" env:"GROUP"`
	BlockTimeout time.Duration `yaml:"block_timeout" env:"BLOCK_TIMEOUT"`
	MaxLen       int64         `yaml:"max_len" env:"MAX_LEN"`
}

// NATSConfig JetStream 传输
type NATSConfig struct {
	URL           string        `yaml:"url" env:"URL"`
	Stream        string        `yaml:"stream" env:"STREAM"`
	SubjectPrefix string        `yaml:"subject_prefix" env:"SUBJECT_PREFIX"`
	Retention     string        `yaml:"retention" env:"RETENTION"`
	AckWait       time.Duration `yaml:"ack_wait" env:"ACK_WAIT"`
}

// Default 默认配置
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Database: DatabaseConfig{
			DSN:           "file:catalog.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
			MaxOpenConns:  4,
			MaxIdleConns:  4,
			SlowThreshold: 200 * time.Millisecond,
			AutoMigrate:   true,
		},
		Events: EventsConfig{
			Transport: TransportSync,
			Memory:    MemoryConfig{QueueSize: 1000, WorkerCount: 4},
			Redis:     RedisConfig{Addr: "localhost:6379", StreamPrefix: "catalog:", Group: "catalog-admin", BlockTimeout: 5 * time.Second},
			NATS:      NATSConfig{URL: "nats://127.0.0.1:4222", Stream: "CATALOG", SubjectPrefix: "catalog.", Retention: "workqueue", AckWait: 30 * time.Second},
		},
	}
}

// Load 构造配置；path 为空或文件不存在时跳过文件
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 校验取值范围
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Database.DSN) == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	switch c.Events.Transport {
	case TransportSync, TransportMemory:
	case TransportRedis:
		if c.Events.Redis.Addr == "" {
			errs = append(errs, errors.New("events.redis.addr is required for redis transport"))
		}
	case TransportNATS:
		if c.Events.NATS.URL == "" {
			errs = append(errs, errors.New("events.nats.url is required for nats transport"))
		}
	default:
		errs = append(errs, fmt.Errorf("events.transport must be one of sync, memory, redis, nats: %q", c.Events.Transport))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json: %q", c.Log.Format))
	}
	return errors.Join(errs...)
}
