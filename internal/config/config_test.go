package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		setup   func()
		cleanup func()
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name: "load with defaults (no config file)",
			setup: func() {
				viper.Reset()
			},
			cleanup: func() {},
			wantErr: false,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Server.Port != 8080 {
					t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
				}
				if cfg.Database.Host != "localhost" {
					t.Errorf("Database.Host = %s, want localhost", cfg.Database.Host)
				}
				if cfg.Sync.Concurrency != 3 {
					t.Errorf("Sync.Concurrency = %d, want 3", cfg.Sync.Concurrency)
				}
				if cfg.Sync.InterBatchDelay != 500*time.Millisecond {
					t.Errorf("Sync.InterBatchDelay = %v, want 500ms", cfg.Sync.InterBatchDelay)
				}
				if cfg.Ranking.VIPThreshold != 50 {
					t.Errorf("Ranking.VIPThreshold = %d, want 50", cfg.Ranking.VIPThreshold)
				}
				if cfg.Ranking.PodiumThreshold != 3 {
					t.Errorf("Ranking.PodiumThreshold = %d, want 3", cfg.Ranking.PodiumThreshold)
				}
			},
		},
		{
			name: "load with environment variables",
			setup: func() {
				viper.Reset()
				viper.SetEnvPrefix("APP")
				viper.AutomaticEnv()
				os.Setenv("APP_SERVER_PORT", "9090")
				os.Setenv("APP_DATABASE_HOST", "testdb")
				os.Setenv("APP_SYNC_CONCURRENCY", "5")
				// Manually bind env vars since AutomaticEnv doesn't work with nested keys
				viper.BindEnv("server.port", "APP_SERVER_PORT")
				viper.BindEnv("database.host", "APP_DATABASE_HOST")
				viper.BindEnv("sync.concurrency", "APP_SYNC_CONCURRENCY")
			},
			cleanup: func() {
				os.Unsetenv("APP_SERVER_PORT")
				os.Unsetenv("APP_DATABASE_HOST")
				os.Unsetenv("APP_SYNC_CONCURRENCY")
			},
			wantErr: false,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Server.Port != 9090 {
					t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
				}
				if cfg.Database.Host != "testdb" {
					t.Errorf("Database.Host = %s, want testdb", cfg.Database.Host)
				}
				if cfg.Sync.Concurrency != 5 {
					t.Errorf("Sync.Concurrency = %d, want 5", cfg.Sync.Concurrency)
				}
			},
		},
		{
			name: "rejects zero sync concurrency",
			setup: func() {
				viper.Reset()
				viper.SetEnvPrefix("APP")
				viper.AutomaticEnv()
				os.Setenv("APP_SYNC_CONCURRENCY", "0")
				viper.BindEnv("sync.concurrency", "APP_SYNC_CONCURRENCY")
			},
			cleanup: func() {
				os.Unsetenv("APP_SYNC_CONCURRENCY")
			},
			wantErr: true,
		},
		{
			name: "rejects vip threshold below podium threshold",
			setup: func() {
				viper.Reset()
				viper.SetEnvPrefix("APP")
				viper.AutomaticEnv()
				os.Setenv("APP_RANKING_VIPTHRESHOLD", "2")
				viper.BindEnv("ranking.vipthreshold", "APP_RANKING_VIPTHRESHOLD")
			},
			cleanup: func() {
				os.Unsetenv("APP_RANKING_VIPTHRESHOLD")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			defer func() {
				if tt.cleanup != nil {
					tt.cleanup()
				}
			}()

			cfg, err := Load()
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && cfg == nil {
				t.Fatal("Load() returned nil config")
			}

			if tt.check != nil && cfg != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestSetDefaults(t *testing.T) {
	viper.Reset()
	setDefaults()

	tests := []struct {
		name string
		key  string
		want interface{}
	}{
		{"server port", "server.port", 8080},
		{"database host", "database.host", "localhost"},
		{"database port", "database.port", 5432},
		{"database name", "database.name", "fanhub"},
		{"database user", "database.user", "postgres"},
		{"database maxconnections", "database.maxconnections", 10},
		{"rabbitmq host", "rabbitmq.host", "localhost"},
		{"rabbitmq port", "rabbitmq.port", 5672},
		{"rabbitmq exchange", "rabbitmq.exchange", "fanhub.events"},
		{"rabbitmq routingkey", "rabbitmq.routingkey", "live.status.changed"},
		{"sync concurrency", "sync.concurrency", 3},
		{"ranking vip threshold", "ranking.vipthreshold", 50},
		{"ranking podium threshold", "ranking.podiumthreshold", 3},
		{"logging level", "logging.level", "info"},
		{"logging file", "logging.file", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := viper.Get(tt.key)
			if got != tt.want {
				t.Errorf("viper.Get(%s) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}

	// Test time.Duration defaults
	if viper.GetDuration("server.shutdowntimeout") != 30*time.Second {
		t.Errorf("server.shutdowntimeout = %v, want 30s", viper.GetDuration("server.shutdowntimeout"))
	}
	if viper.GetDuration("sync.interbatchdelay") != 500*time.Millisecond {
		t.Errorf("sync.interbatchdelay = %v, want 500ms", viper.GetDuration("sync.interbatchdelay"))
	}
	if viper.GetDuration("sync.interval") != 5*time.Minute {
		t.Errorf("sync.interval = %v, want 5m", viper.GetDuration("sync.interval"))
	}
	if viper.GetDuration("redis.cachettl") != 60*time.Second {
		t.Errorf("redis.cachettl = %v, want 60s", viper.GetDuration("redis.cachettl"))
	}
}
