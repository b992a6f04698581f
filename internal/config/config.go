// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Config struct {
	RabbitMQ RabbitMQConfig
	Logging  LoggingConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Server   ServerConfig
	Sync     SyncConfig
	Ranking  RankingConfig
	Token    TokenConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

// DatabaseConfig contains database connection configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type DatabaseConfig struct {
	Host           string
	Name           string
	User           string
	Password       string
	SSLMode        string
	Port           int
	MaxConnections int
	MinConnections int
	MaxIdleTime    time.Duration
	MaxLifetime    time.Duration
}

// RedisConfig contains the leaderboard cache configuration. An empty Addr
// disables caching entirely.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// RabbitMQConfig contains RabbitMQ connection and queue configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type RabbitMQConfig struct {
	Host       string
	User       string
	Password   string
	Exchange   string
	Queue      string
	RoutingKey string
	Port       int
}

// SyncConfig contains live-status synchronizer configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type SyncConfig struct {
	Secret          string
	LiveListURL     string
	Concurrency     int
	InterBatchDelay time.Duration
	Interval        time.Duration
	RequestTimeout  time.Duration
}

// RankingConfig contains qualification thresholds.
type RankingConfig struct {
	VIPThreshold    int
	PodiumThreshold int
}

// TokenConfig contains the subject token obfuscation key.
type TokenConfig struct {
	Key string
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string
	File  string
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set defaults
	setDefaults()

	// Read environment variables
	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")

	// Try to read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Sync.Concurrency < 1 {
		return fmt.Errorf("sync.concurrency must be at least 1, got %d", c.Sync.Concurrency)
	}
	if c.Ranking.PodiumThreshold < 1 || c.Ranking.VIPThreshold < c.Ranking.PodiumThreshold {
		return fmt.Errorf("ranking thresholds invalid: vip=%d podium=%d",
			c.Ranking.VIPThreshold, c.Ranking.PodiumThreshold)
	}
	return nil
}

func setDefaults() {
	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.shutdowntimeout", 30*time.Second)

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "fanhub")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.maxconnections", 10)
	viper.SetDefault("database.minconnections", 5)
	viper.SetDefault("database.maxidletime", 10*time.Minute)
	viper.SetDefault("database.maxlifetime", 1*time.Hour)

	// Redis
	viper.SetDefault("redis.addr", "")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.cachettl", 60*time.Second)

	// RabbitMQ
	viper.SetDefault("rabbitmq.host", "localhost")
	viper.SetDefault("rabbitmq.port", 5672)
	viper.SetDefault("rabbitmq.user", "guest")
	viper.SetDefault("rabbitmq.password", "guest")
	viper.SetDefault("rabbitmq.exchange", "fanhub.events")
	viper.SetDefault("rabbitmq.queue", "fanhub.live-status")
	viper.SetDefault("rabbitmq.routingkey", "live.status.changed")

	// Live-status sync
	viper.SetDefault("sync.secret", "")
	viper.SetDefault("sync.livelisturl", "https://api.pandalive.co.kr/v1/live")
	viper.SetDefault("sync.concurrency", 3)
	viper.SetDefault("sync.interbatchdelay", 500*time.Millisecond)
	viper.SetDefault("sync.interval", 5*time.Minute)
	viper.SetDefault("sync.requesttimeout", 30*time.Second)

	// Ranking
	viper.SetDefault("ranking.vipthreshold", 50)
	viper.SetDefault("ranking.podiumthreshold", 3)

	// Token
	viper.SetDefault("token.key", "fanhub-dev-token-key")

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")
}
